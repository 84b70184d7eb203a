package model

import (
	"fmt"
	"image/color"
)

// Polygon is a closed shape owned by a class. Its colour mirrors the class
// colour at the time it was last assigned.
type Polygon struct {
	Points  []Point
	ClassID string
	Color   color.RGBA
}

// Len returns the number of vertices.
func (p *Polygon) Len() int {
	return len(p.Points)
}

// Vertex returns the vertex addressed by a flat index.
func (p *Polygon) Vertex(index int) (Point, error) {
	if !ValidIndex(index, len(p.Points)) {
		return Point{}, fmt.Errorf("vertex %d of %d: %w", index, len(p.Points), ErrPointIndex)
	}
	return p.Points[index/2], nil
}

// SetVertex moves the vertex addressed by a flat index.
func (p *Polygon) SetVertex(index int, pt Point) error {
	if !ValidIndex(index, len(p.Points)) {
		return fmt.Errorf("vertex %d of %d: %w", index, len(p.Points), ErrPointIndex)
	}
	p.Points[index/2] = pt
	return nil
}

// Append adds pt after the last vertex and returns its flat index.
func (p *Polygon) Append(pt Point) int {
	p.Points = append(p.Points, pt)
	return 2 * (len(p.Points) - 1)
}

// InsertAfter inserts pt after the vertex addressed by index and returns the
// flat index of the new vertex.
func (p *Polygon) InsertAfter(index int, pt Point) (int, error) {
	if !ValidIndex(index, len(p.Points)) {
		return -1, fmt.Errorf("insert after %d of %d: %w", index, len(p.Points), ErrPointIndex)
	}
	at := index/2 + 1
	p.Points = append(p.Points, Point{})
	copy(p.Points[at+1:], p.Points[at:])
	p.Points[at] = pt
	return 2 * at, nil
}

// Remove deletes the vertex addressed by index.
func (p *Polygon) Remove(index int) error {
	if !ValidIndex(index, len(p.Points)) {
		return fmt.Errorf("remove %d of %d: %w", index, len(p.Points), ErrPointIndex)
	}
	i := index / 2
	p.Points = append(p.Points[:i], p.Points[i+1:]...)
	return nil
}

// Midpoint returns the point halfway along the edge leaving the vertex at
// index. The last edge wraps to the first vertex.
func (p *Polygon) Midpoint(index int) (Point, error) {
	if !ValidIndex(index, len(p.Points)) {
		return Point{}, fmt.Errorf("midpoint %d of %d: %w", index, len(p.Points), ErrPointIndex)
	}
	a := p.Points[index/2]
	b := p.Points[(index/2+1)%len(p.Points)]
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}, nil
}

// Contains reports whether pt is inside the polygon using the even-odd rule.
func (p *Polygon) Contains(pt Point) bool {
	n := len(p.Points)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		a := p.Points[i]
		b := p.Points[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			x := (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y) + a.X
			if pt.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Clone returns a deep copy.
func (p Polygon) Clone() Polygon {
	out := p
	out.Points = append([]Point(nil), p.Points...)
	return out
}
