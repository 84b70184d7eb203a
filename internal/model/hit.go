package model

// HitRadius is the pick distance for vertices and edge handles in image
// pixels.
const HitRadius = 7

// HitVertex returns the flat index of the closest point within radius of p,
// or -1.
func HitVertex(points []Point, p Point, radius float64) int {
	best := -1
	bestD := radius * radius
	for i, v := range points {
		if d := v.Dist2(p); d <= bestD {
			best = 2 * i
			bestD = d
		}
	}
	return best
}

// HitMidpoint returns the flat index of the vertex whose outgoing edge has its
// midpoint within radius of p, or -1. Polygons with fewer than two vertices
// have no edge handles.
func HitMidpoint(poly *Polygon, p Point, radius float64) int {
	n := len(poly.Points)
	if n < 2 {
		return -1
	}
	best := -1
	bestD := radius * radius
	for i := 0; i < n; i++ {
		m, _ := poly.Midpoint(2 * i)
		if d := m.Dist2(p); d <= bestD {
			best = 2 * i
			bestD = d
		}
	}
	return best
}
