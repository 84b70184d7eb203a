package model

import (
	"errors"
	"testing"
)

func square() Polygon {
	return Polygon{Points: []Point{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}}
}

func TestPolygonInsertAfter(t *testing.T) {
	p := square()
	idx, err := p.InsertAfter(2, Pt(15, 5))
	if err != nil {
		t.Fatalf("InsertAfter: %v", err)
	}
	if idx != 4 {
		t.Fatalf("new index = %d, want 4", idx)
	}
	want := []Point{Pt(0, 0), Pt(10, 0), Pt(15, 5), Pt(10, 10), Pt(0, 10)}
	for i, w := range want {
		if p.Points[i] != w {
			t.Fatalf("points = %v, want %v", p.Points, want)
		}
	}
	if _, err := p.InsertAfter(3, Pt(0, 0)); !errors.Is(err, ErrPointIndex) {
		t.Fatalf("odd index err = %v", err)
	}
}

func TestPolygonRemoveAndBounds(t *testing.T) {
	p := square()
	if err := p.Remove(8); !errors.Is(err, ErrPointIndex) {
		t.Fatalf("Remove(8) err = %v", err)
	}
	if err := p.Remove(0); err != nil {
		t.Fatalf("Remove(0): %v", err)
	}
	if p.Len() != 3 || p.Points[0] != Pt(10, 0) {
		t.Fatalf("unexpected points %v", p.Points)
	}
}

func TestPolygonContains(t *testing.T) {
	p := square()
	if !p.Contains(Pt(5, 5)) {
		t.Error("centre not inside")
	}
	if p.Contains(Pt(15, 5)) {
		t.Error("outside point reported inside")
	}
	line := Polygon{Points: []Point{Pt(0, 0), Pt(10, 10)}}
	if line.Contains(Pt(5, 5)) {
		t.Error("two point polygon has no interior")
	}
}

func TestPolygonMidpointWraps(t *testing.T) {
	p := square()
	m, err := p.Midpoint(6)
	if err != nil {
		t.Fatal(err)
	}
	if m != Pt(0, 5) {
		t.Fatalf("Midpoint(6) = %v, want (0,5)", m)
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := square()
	c := p.Clone()
	c.Points[0] = Pt(99, 99)
	if p.Points[0] == c.Points[0] {
		t.Fatal("clone shares points")
	}
}

func TestHitVertexAndMidpoint(t *testing.T) {
	p := square()
	if got := HitVertex(p.Points, Pt(9, 1), HitRadius); got != 2 {
		t.Errorf("HitVertex = %d, want 2", got)
	}
	if got := HitVertex(p.Points, Pt(5, 5), HitRadius); got != -1 {
		t.Errorf("HitVertex centre = %d, want -1", got)
	}
	if got := HitMidpoint(&p, Pt(10, 6), HitRadius); got != 2 {
		t.Errorf("HitMidpoint = %d, want 2", got)
	}
}
