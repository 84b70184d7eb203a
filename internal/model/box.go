package model

import (
	"fmt"
	"image"
	"math"
)

// Box is the rectangular region of interest. Moving a corner sets the x
// coordinate of its next corner and the y coordinate of its previous corner
// while the opposite corner stays fixed, so the box remains an axis aligned
// rectangle. The zero value is the empty box.
type Box struct {
	corners [4]Point
	set     bool
}

type cornerLinks struct {
	next, prev, opposite int
}

// boxLinks is the adjacency table used when a corner is dragged.
var boxLinks = [4]cornerLinks{
	{next: 1, prev: 3, opposite: 2},
	{next: 2, prev: 0, opposite: 3},
	{next: 3, prev: 1, opposite: 0},
	{next: 0, prev: 2, opposite: 1},
}

// BoxCreatePoint is the flat point index that becomes active when a box is
// created. It addresses corner 1 so the initial drag stretches the box from
// its anchor.
const BoxCreatePoint = 2

// NewBox returns a degenerate box with all four corners at p.
func NewBox(p Point) Box {
	return Box{corners: [4]Point{p, p, p, p}, set: true}
}

// Empty reports whether no box has been drawn.
func (b Box) Empty() bool {
	return !b.set
}

// Corner returns corner c (0-3).
func (b Box) Corner(c int) Point {
	return b.corners[c]
}

// Points returns the four corners in winding order.
func (b Box) Points() []Point {
	if !b.set {
		return nil
	}
	out := make([]Point, 4)
	copy(out, b.corners[:])
	return out
}

// MoveCorner drags corner c to p. The next corner takes p's x and the
// previous corner takes p's y, each keeping the other coordinate of the
// opposite corner, which itself is left untouched.
func (b *Box) MoveCorner(c int, p Point) error {
	if !b.set {
		return fmt.Errorf("move corner %d: box is empty", c)
	}
	if c < 0 || c > 3 {
		return fmt.Errorf("move corner %d: %w", c, ErrPointIndex)
	}
	l := boxLinks[c]
	opp := b.corners[l.opposite]
	b.corners[c] = p
	b.corners[l.next] = Point{X: p.X, Y: opp.Y}
	b.corners[l.prev] = Point{X: opp.X, Y: p.Y}
	return nil
}

// MovePoint drags the corner addressed by a flat point index.
func (b *Box) MovePoint(index int, p Point) error {
	if !ValidIndex(index, 4) {
		return fmt.Errorf("move point %d: %w", index, ErrPointIndex)
	}
	return b.MoveCorner(index/2, p)
}

// IsRectangle reports whether every edge is axis aligned.
func (b Box) IsRectangle() bool {
	if !b.set {
		return false
	}
	for i := 0; i < 4; i++ {
		a := b.corners[i]
		n := b.corners[(i+1)%4]
		if a.X != n.X && a.Y != n.Y {
			return false
		}
	}
	return true
}

// Bounds returns the floating point extent of the box.
func (b Box) Bounds() (min, max Point) {
	min = b.corners[0]
	max = b.corners[0]
	for _, c := range b.corners[1:] {
		min.X = math.Min(min.X, c.X)
		min.Y = math.Min(min.Y, c.Y)
		max.X = math.Max(max.X, c.X)
		max.Y = math.Max(max.Y, c.Y)
	}
	return min, max
}

// Rect returns the integer pixel rectangle covered by the box. Fractional
// edges are floored on the minimum side and ceiled on the maximum side.
func (b Box) Rect() image.Rectangle {
	if !b.set {
		return image.Rectangle{}
	}
	min, max := b.Bounds()
	return image.Rect(int(math.Floor(min.X)), int(math.Floor(min.Y)), int(math.Ceil(max.X)), int(math.Ceil(max.Y)))
}
