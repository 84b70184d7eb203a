package editor

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"testing"

	"github.com/example/labelpaint/internal/model"
	"github.com/example/labelpaint/internal/palette"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPalette() *palette.Palette {
	return palette.New([]palette.Entry{
		{Name: "red", Color: red},
		{Name: "green", Color: green},
		{Name: "blue", Color: blue},
	})
}

// newSession returns a session over a 100x100 image with ids "id-1"...
func newSession(t *testing.T, classes ...string) *Session {
	t.Helper()
	list := model.NewClassList()
	n := 0
	list.SetIDFunc(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
	s := New(WithLogger(discardLogger()), WithAllocator(testPalette()), WithClassList(list))
	s.LoadImage("photo.jpg", image.Rect(0, 0, 100, 100))
	for _, c := range classes {
		if _, err := s.CreateClass(c); err != nil {
			t.Fatalf("CreateClass(%s): %v", c, err)
		}
	}
	return s
}

func mustTool(t *testing.T, s *Session, tool Tool) {
	t.Helper()
	if err := s.SetTool(tool); err != nil {
		t.Fatalf("SetTool(%v): %v", tool, err)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func wantState(t *testing.T, s *Session, want State) {
	t.Helper()
	if s.State() != want {
		t.Fatalf("state = %v, want %v", s.State(), want)
	}
}

// drawPolygon draws and closes a polygon through pts with the active class.
func drawPolygon(t *testing.T, s *Session, pts ...model.Point) {
	t.Helper()
	for _, p := range pts {
		must(t, s.PointerDown(p))
		must(t, s.PointerUp())
	}
	must(t, s.PointerDown(pts[0]))
	must(t, s.PointerUp())
}
