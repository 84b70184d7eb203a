package editor

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/example/labelpaint/internal/model"
)

func TestLoadImageResets(t *testing.T) {
	s := newSession(t, "cat")
	mustTool(t, s, ToolPolygon)
	drawPolygon(t, s, model.Pt(1, 1), model.Pt(50, 1), model.Pt(50, 50))
	s.LoadImage("other.png", image.Rect(0, 0, 30, 20))
	wantState(t, s, StateIdle)
	if s.Tool() != ToolNone {
		t.Fatalf("tool = %v after load", s.Tool())
	}
	if len(s.Polygons()) != 0 || !s.Box().Empty() {
		t.Fatal("geometry survived image load")
	}
	if s.Bounds() != image.Rect(0, 0, 30, 20) {
		t.Fatalf("mask bounds %v", s.Bounds())
	}
	if s.ExportName() != "other.png" {
		t.Fatalf("export name %q", s.ExportName())
	}
	if len(s.Classes()) != 1 {
		t.Fatal("classes should survive image load")
	}
	mustTool(t, s, ToolPolygon)
}

func TestBoxGesture(t *testing.T) {
	s := newSession(t)
	mustTool(t, s, ToolBox)
	must(t, s.PointerDown(model.Pt(10, 10)))
	wantState(t, s, StateBoxing)
	if s.ActivePoint() != 2 {
		t.Fatalf("active point = %d, want 2", s.ActivePoint())
	}
	must(t, s.PointerMove(model.Pt(40, 30)))
	must(t, s.PointerUp())
	wantState(t, s, StateBox)
	if s.ActivePoint() != -1 {
		t.Fatal("active point kept after box drag")
	}
	b := s.Box()
	if got := b.Rect(); got != image.Rect(10, 10, 40, 30) {
		t.Fatalf("box rect = %v", got)
	}

	must(t, s.SetActivePoint(6))
	wantState(t, s, StateBoxing)
	must(t, s.PointerMove(model.Pt(5, 5)))
	must(t, s.PointerUp())
	b = s.Box()
	if got := b.Rect(); got != image.Rect(5, 5, 40, 30) {
		t.Fatalf("box rect after corner drag = %v", got)
	}
	if !b.IsRectangle() {
		t.Fatal("box lost its shape")
	}

	must(t, s.KeyDown(KeyDelete))
	if !s.Box().Empty() {
		t.Fatal("delete did not clear the box")
	}
}

func TestSetActivePointValidation(t *testing.T) {
	s := newSession(t)
	mustTool(t, s, ToolBox)
	if err := s.SetActivePoint(0); !errors.Is(err, ErrNoBox) {
		t.Fatalf("no box err = %v", err)
	}
	must(t, s.PointerDown(model.Pt(10, 10)))
	must(t, s.PointerUp())
	for _, idx := range []int{1, 8, -2} {
		if err := s.SetActivePoint(idx); !errors.Is(err, model.ErrPointIndex) {
			t.Errorf("SetActivePoint(%d) err = %v", idx, err)
		}
		wantState(t, s, StateBox)
	}
	mustTool(t, s, ToolPaint)
	if err := s.SetActivePoint(0); !errors.Is(err, ErrWrongState) {
		t.Fatalf("paint err = %v", err)
	}
}

func TestLeavingBoxClearsIt(t *testing.T) {
	s := newSession(t)
	mustTool(t, s, ToolBox)
	must(t, s.PointerDown(model.Pt(10, 10)))
	must(t, s.PointerMove(model.Pt(30, 30)))
	mustTool(t, s, ToolErase)
	if !s.Box().Empty() || s.ActivePoint() != -1 {
		t.Fatal("box kept after tool switch")
	}
	wantState(t, s, StateErase)
}

func TestPaintRequiresClass(t *testing.T) {
	s := newSession(t)
	mustTool(t, s, ToolPaint)
	err := s.PointerDown(model.Pt(5, 5))
	var te *TransitionError
	if !errors.As(err, &te) || !errors.Is(err, ErrNoActiveClass) {
		t.Fatalf("err = %v, want TransitionError wrapping ErrNoActiveClass", err)
	}
	if te.State != StatePaint {
		t.Fatalf("error state = %v", te.State)
	}
	wantState(t, s, StatePaint)
	if !s.Mask().Empty() {
		t.Fatal("mask painted without a class")
	}
}

func TestPaintAndErase(t *testing.T) {
	s := newSession(t, "cat")
	s.SetBrushSize(6)
	mustTool(t, s, ToolPaint)
	must(t, s.PointerDown(model.Pt(10, 50)))
	wantState(t, s, StatePainting)
	must(t, s.PointerMove(model.Pt(90, 50)))
	must(t, s.PointerUp())
	wantState(t, s, StatePaint)
	img := s.Mask().Image()
	for x := 10; x < 90; x += 5 {
		if img.RGBAAt(x, 50) != red {
			t.Fatalf("pixel (%d,50) = %v, want class colour", x, img.RGBAAt(x, 50))
		}
	}

	mustTool(t, s, ToolErase)
	must(t, s.PointerDown(model.Pt(50, 40)))
	must(t, s.PointerMove(model.Pt(50, 60)))
	must(t, s.PointerUp())
	wantState(t, s, StateErase)
	if img.RGBAAt(50, 50).A != 0 {
		t.Fatal("eraser left coverage")
	}
	if img.RGBAAt(20, 50) != red {
		t.Fatal("eraser touched pixels outside its path")
	}
}

func TestPolygonCloseThreshold(t *testing.T) {
	tests := []struct {
		name  string
		p     model.Point
		close bool
	}{
		{"distance squared 50", model.Pt(15, 15), false},
		{"distance squared 25 below", model.Pt(13, 14), false},
		{"distance squared 25 beside", model.Pt(14, 13), false},
		{"distance squared 24", model.Pt(10+math.Sqrt(24), 10), true},
		{"distance squared 18", model.Pt(13, 13), true},
		{"first vertex", model.Pt(10, 10), true},
	}
	for _, tt := range tests {
		s := newSession(t, "cat")
		mustTool(t, s, ToolPolygon)
		must(t, s.PointerDown(model.Pt(10, 10)))
		wantState(t, s, StatePolygoning)
		must(t, s.PointerUp())
		wantState(t, s, StatePolygon)
		must(t, s.PointerDown(model.Pt(60, 60)))
		must(t, s.PointerUp())

		must(t, s.PointerDown(tt.p))
		n := s.Polygons()[0].Len()
		if tt.close {
			if s.ActivePolygon() != -1 || s.ActivePoint() != -1 {
				t.Errorf("%s: polygon still active", tt.name)
			}
			wantState(t, s, StatePolygon)
			if n != 2 {
				t.Errorf("%s: closing added a point, len %d", tt.name, n)
			}
			continue
		}
		if s.ActivePolygon() != 0 || n != 3 || s.Polygons()[0].Points[2] != tt.p {
			t.Errorf("%s: want appended vertex, got %v", tt.name, s.Polygons()[0].Points)
		}
	}
}

func TestNonFinitePointsRejected(t *testing.T) {
	bad := []model.Point{
		model.Pt(math.Inf(1), 5),
		model.Pt(5, math.Inf(-1)),
		model.Pt(math.NaN(), 5),
	}
	for _, pt := range bad {
		s := newSession(t, "cat")
		mustTool(t, s, ToolPolygon)
		must(t, s.Press(model.Pt(5, 5)))
		must(t, s.PointerUp())
		ops := map[string]func() error{
			"press":       func() error { return s.Press(pt) },
			"pointerDown": func() error { return s.PointerDown(pt) },
			"pointerMove": func() error { return s.PointerMove(pt) },
		}
		for name, op := range ops {
			err := op()
			var te *TransitionError
			if !errors.As(err, &te) || !errors.Is(err, ErrBadPoint) {
				t.Errorf("%s %v: err = %v, want ErrBadPoint transition error", name, pt, err)
			}
			wantState(t, s, StatePolygon)
		}
		if got := s.Polygons()[0].Points; len(got) != 1 {
			t.Fatalf("%v: rejected point changed polygon: %v", pt, got)
		}
		must(t, s.Press(model.Pt(20, 30)))
		must(t, s.PointerUp())
		must(t, s.Press(model.Pt(40, 5)))
		must(t, s.PointerUp())
		must(t, s.Press(model.Pt(5, 5)))
		if _, err := s.Export(context.Background(), 0); err != nil {
			t.Fatalf("%v: export: %v", pt, err)
		}

		e := editFixture(t)
		must(t, e.SetActivePolygon(1))
		before := e.Polygons()[1].Len()
		if err := e.InsertPoint(2, pt); !errors.Is(err, ErrBadPoint) {
			t.Errorf("insertPoint %v: err = %v, want ErrBadPoint", pt, err)
		}
		if got := e.Polygons()[1].Len(); got != before {
			t.Errorf("insertPoint %v: len %d, want %d", pt, got, before)
		}
	}
}

func TestPolygonDragWhileDrawing(t *testing.T) {
	s := newSession(t, "cat")
	mustTool(t, s, ToolPolygon)
	must(t, s.PointerDown(model.Pt(10, 10)))
	must(t, s.PointerUp())
	must(t, s.PointerDown(model.Pt(40, 10)))
	must(t, s.PointerMove(model.Pt(45, 12)))
	must(t, s.PointerUp())
	if got := s.Polygons()[0].Points[1]; got != model.Pt(45, 12) {
		t.Fatalf("dragged vertex = %v", got)
	}
}

func TestNewPolygonsArePrepended(t *testing.T) {
	s := newSession(t, "cat", "dog")
	mustTool(t, s, ToolPolygon)
	drawPolygon(t, s, model.Pt(1, 1), model.Pt(20, 1), model.Pt(20, 20))
	drawPolygon(t, s, model.Pt(50, 50), model.Pt(70, 50), model.Pt(70, 70))
	polys := s.Polygons()
	if len(polys) != 2 || polys[0].Points[0] != model.Pt(50, 50) {
		t.Fatalf("newest polygon not first: %+v", polys)
	}
	if polys[0].ClassID != "id-2" || polys[0].Color != green {
		t.Fatalf("polygon class = %s %v", polys[0].ClassID, polys[0].Color)
	}
}

func TestEscapeCancelsPolygon(t *testing.T) {
	s := newSession(t, "cat")
	mustTool(t, s, ToolPolygon)
	must(t, s.PointerDown(model.Pt(10, 10)))
	must(t, s.PointerUp())
	must(t, s.PointerDown(model.Pt(30, 10)))
	must(t, s.PointerUp())
	must(t, s.KeyDown(KeyEscape))
	if len(s.Polygons()) != 0 || s.ActivePolygon() != -1 {
		t.Fatal("escape did not discard the polygon")
	}
	if err := s.KeyDown(KeyEscape); !errors.Is(err, ErrNoActivePolygon) {
		t.Fatalf("second escape err = %v", err)
	}
}

func TestLeavingPolygonToolDiscardsShortPolygon(t *testing.T) {
	s := newSession(t, "cat")
	mustTool(t, s, ToolPolygon)
	must(t, s.PointerDown(model.Pt(10, 10)))
	must(t, s.PointerUp())
	mustTool(t, s, ToolEdit)
	if len(s.Polygons()) != 0 {
		t.Fatal("one point polygon kept after tool switch")
	}

	mustTool(t, s, ToolPolygon)
	must(t, s.PointerDown(model.Pt(10, 10)))
	must(t, s.PointerUp())
	must(t, s.PointerDown(model.Pt(40, 40)))
	must(t, s.PointerUp())
	mustTool(t, s, ToolEdit)
	if len(s.Polygons()) != 1 {
		t.Fatal("two point polygon discarded")
	}
	if s.ActivePolygon() != -1 || s.ActivePoint() != -1 {
		t.Fatal("selection kept after tool switch")
	}
}

func TestSameToolIsNoop(t *testing.T) {
	s := newSession(t, "cat")
	mustTool(t, s, ToolPolygon)
	must(t, s.PointerDown(model.Pt(10, 10)))
	mustTool(t, s, ToolPolygon)
	wantState(t, s, StatePolygoning)
	if len(s.Polygons()) != 1 {
		t.Fatal("reselecting the tool changed geometry")
	}
}

func editFixture(t *testing.T) *Session {
	t.Helper()
	s := newSession(t, "cat", "dog")
	mustTool(t, s, ToolPolygon)
	must(t, s.SetActiveClass("id-1"))
	drawPolygon(t, s, model.Pt(10, 10), model.Pt(40, 10), model.Pt(40, 40), model.Pt(10, 40))
	must(t, s.SetActiveClass("id-2"))
	drawPolygon(t, s, model.Pt(60, 60), model.Pt(90, 60), model.Pt(90, 90))
	mustTool(t, s, ToolEdit)
	return s
}

func TestEditSelectAndDrag(t *testing.T) {
	s := editFixture(t)
	must(t, s.Press(model.Pt(25, 25)))
	if s.ActivePolygon() != 1 {
		t.Fatalf("active polygon = %d, want 1", s.ActivePolygon())
	}
	if c, _ := s.ActiveClass(); c.ID != "id-1" {
		t.Fatalf("active class = %s, want id-1", c.ID)
	}

	must(t, s.Press(model.Pt(41, 41)))
	wantState(t, s, StateEditing)
	if s.ActivePoint() != 4 {
		t.Fatalf("active point = %d, want 4", s.ActivePoint())
	}
	must(t, s.PointerMove(model.Pt(45, 45)))
	must(t, s.PointerUp())
	wantState(t, s, StateEdit)
	if got := s.Polygons()[1].Points[2]; got != model.Pt(45, 45) {
		t.Fatalf("dragged vertex = %v", got)
	}
	if s.ActivePoint() != 4 {
		t.Fatal("edited point should stay selected")
	}

	must(t, s.KeyDown(KeyDelete))
	if got := s.Polygons()[1].Len(); got != 3 {
		t.Fatalf("delete point left %d vertices", got)
	}
	must(t, s.KeyDown(KeyDelete))
	if len(s.Polygons()) != 1 {
		t.Fatal("second delete should remove the polygon")
	}
	if s.ActivePolygon() != -1 {
		t.Fatal("deleted polygon still active")
	}
}

func TestEditEmptySpaceClearsSelection(t *testing.T) {
	s := editFixture(t)
	must(t, s.SetActivePolygon(0))
	must(t, s.Press(model.Pt(50, 5)))
	if s.ActivePolygon() != -1 {
		t.Fatal("click on empty space kept the selection")
	}
	if err := s.KeyDown(KeyDelete); !errors.Is(err, ErrNoActivePolygon) {
		t.Fatalf("delete with nothing selected err = %v", err)
	}
}

func TestEditInsertAtMidpoint(t *testing.T) {
	s := editFixture(t)
	must(t, s.SetActivePolygon(1))
	must(t, s.Press(model.Pt(25, 10)))
	wantState(t, s, StateEditing)
	if s.ActivePoint() != 2 {
		t.Fatalf("inserted point index = %d, want 2", s.ActivePoint())
	}
	must(t, s.PointerMove(model.Pt(25, 0)))
	must(t, s.PointerUp())
	pts := s.Polygons()[1].Points
	if len(pts) != 5 || pts[1] != model.Pt(25, 0) {
		t.Fatalf("points after insert = %v", pts)
	}
}

func TestSetActiveClassRecoloursActivePolygon(t *testing.T) {
	s := editFixture(t)
	must(t, s.SetActivePolygon(0))
	must(t, s.SetActiveClass("id-1"))
	p := s.Polygons()[0]
	if p.ClassID != "id-1" || p.Color != red {
		t.Fatalf("polygon not recoloured: %+v", p)
	}
}

func TestSelectionOpsRejectedOutsideEdit(t *testing.T) {
	s := newSession(t, "cat")
	mustTool(t, s, ToolPaint)
	ops := map[string]func() error{
		"setActivePolygon":   func() error { return s.SetActivePolygon(0) },
		"clearActivePolygon": s.ClearActivePolygon,
		"deletePoint":        s.DeletePoint,
		"deletePolygon":      s.DeletePolygon,
		"insertPoint":        func() error { return s.InsertPoint(0, model.Pt(1, 1)) },
		"cancelPolygon":      s.CancelPolygon,
		"clearBox":           s.ClearBox,
		"delete key":         func() error { return s.KeyDown(KeyDelete) },
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, ErrWrongState) {
			t.Errorf("%s err = %v, want ErrWrongState", name, err)
		}
		wantState(t, s, StatePaint)
	}
}

func TestPointerDownWithoutImage(t *testing.T) {
	s := New(WithLogger(discardLogger()))
	mustTool(t, s, ToolBox)
	if err := s.PointerDown(model.Pt(1, 1)); !errors.Is(err, ErrNoImage) {
		t.Fatalf("err = %v", err)
	}
}

func TestResetClearsGeometry(t *testing.T) {
	s := editFixture(t)
	s.Reset()
	wantState(t, s, StateIdle)
	if len(s.Polygons()) != 0 || s.ActivePolygon() != -1 {
		t.Fatal("reset kept polygons")
	}
}
