package model

import (
	"errors"
	"image"
	"testing"
)

func TestNewBoxDegenerate(t *testing.T) {
	b := NewBox(Pt(10, 20))
	if b.Empty() {
		t.Fatal("new box reported empty")
	}
	for i, c := range b.Points() {
		if c != Pt(10, 20) {
			t.Fatalf("corner %d = %v, want (10,20)", i, c)
		}
	}
}

func TestMoveCornerKeepsRectangle(t *testing.T) {
	tests := []struct {
		name   string
		corner int
		to     Point
		want   [4]Point
	}{
		{"drag anchor diagonal", 2, Pt(30, 40), [4]Point{Pt(0, 0), Pt(0, 40), Pt(30, 40), Pt(30, 0)}},
		{"drag anchor", 0, Pt(-5, -6), [4]Point{Pt(-5, -6), Pt(-5, 10), Pt(10, 10), Pt(10, -6)}},
		{"drag corner one", 1, Pt(20, 5), [4]Point{Pt(10, 5), Pt(20, 5), Pt(20, 0), Pt(10, 0)}},
		{"drag corner three across", 3, Pt(15, -4), [4]Point{Pt(15, 10), Pt(0, 10), Pt(0, -4), Pt(15, -4)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBox(Pt(0, 0))
			if err := b.MoveCorner(2, Pt(10, 10)); err != nil {
				t.Fatalf("setup: %v", err)
			}
			l := boxLinks[tt.corner]
			opp := b.Corner(l.opposite)
			if err := b.MoveCorner(tt.corner, tt.to); err != nil {
				t.Fatalf("MoveCorner: %v", err)
			}
			if b.Corner(l.next).X != tt.to.X || b.Corner(l.prev).Y != tt.to.Y || b.Corner(l.opposite) != opp {
				t.Errorf("links of corner %d not honoured: %v", tt.corner, b.Points())
			}
			for i := 0; i < 4; i++ {
				if got := b.Corner(i); got != tt.want[i] {
					t.Errorf("corner %d = %v, want %v", i, got, tt.want[i])
				}
			}
			if !b.IsRectangle() {
				t.Errorf("box is not axis aligned: %v", b.Points())
			}
		})
	}
}

func TestMoveCornerOppositeUntouched(t *testing.T) {
	b := NewBox(Pt(3, 4))
	_ = b.MoveCorner(2, Pt(50, 60))
	for i := 0; i < 20; i++ {
		c := i % 4
		opp := b.Corner(boxLinks[c].opposite)
		_ = b.MoveCorner(c, Pt(float64(i*7%41), float64(i*11%37)))
		if got := b.Corner(boxLinks[c].opposite); got != opp {
			t.Fatalf("step %d: opposite corner moved from %v to %v", i, opp, got)
		}
		if !b.IsRectangle() {
			t.Fatalf("step %d: not a rectangle %v", i, b.Points())
		}
	}
}

func TestMovePointRejectsOddIndex(t *testing.T) {
	b := NewBox(Pt(0, 0))
	for _, idx := range []int{-2, 1, 3, 8} {
		if err := b.MovePoint(idx, Pt(1, 1)); !errors.Is(err, ErrPointIndex) {
			t.Errorf("MovePoint(%d) err = %v, want ErrPointIndex", idx, err)
		}
	}
	var empty Box
	if err := empty.MoveCorner(0, Pt(1, 1)); err == nil {
		t.Error("moving a corner of an empty box succeeded")
	}
}

func TestBoxRect(t *testing.T) {
	b := NewBox(Pt(20.5, 10))
	_ = b.MoveCorner(0, Pt(4.2, 2))
	if got, want := b.Rect(), image.Rect(4, 2, 21, 10); got != want {
		t.Fatalf("Rect() = %v, want %v", got, want)
	}
}
