package editor

import (
	"context"
	"image"
	"io"
	"log/slog"
	"math"

	"github.com/example/labelpaint/internal/export"
	"github.com/example/labelpaint/internal/mask"
	"github.com/example/labelpaint/internal/model"
	"github.com/example/labelpaint/internal/palette"
)

const (
	MinBrushSize     = 2
	MaxBrushSize     = 40
	DefaultBrushSize = 20

	MaxZoom = 3
	MinZoom = -3

	// closeDist2 is the squared distance to the first vertex within which a
	// click closes the polygon being drawn.
	closeDist2 = 25
)

// Session holds everything being edited for one image. It is not safe for
// concurrent use: every method must be called from the goroutine that owns
// the session.
type Session struct {
	log   *slog.Logger
	alloc model.Allocator

	state State
	tool  Tool

	imageName string
	loaded    bool
	mask      *mask.Layer

	box           model.Box
	polygons      []model.Polygon
	activePolygon int
	activePoint   int

	classes         *model.ClassList
	activeClass     string
	classesImported bool

	strokeLast  model.Point
	strokeColor model.Class

	brushSize   int
	eraserSize  int
	maskOpacity float64
	zoom        int
	cursor      model.Point
	cursorSet   bool
	lastError   string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for rejected gestures.
func WithLogger(l *slog.Logger) Option { return func(s *Session) { s.log = l } }

// WithAllocator sets the class colour allocator.
func WithAllocator(a model.Allocator) Option { return func(s *Session) { s.alloc = a } }

// WithClassList starts the session with an existing class list.
func WithClassList(l *model.ClassList) Option { return func(s *Session) { s.classes = l } }

// WithBrushSize sets the initial brush diameter.
func WithBrushSize(n float64) Option { return func(s *Session) { s.brushSize = clampSize(n) } }

// WithEraserSize sets the initial eraser diameter.
func WithEraserSize(n float64) Option { return func(s *Session) { s.eraserSize = clampSize(n) } }

// WithMaskOpacity sets the initial mask display opacity. Only half and full
// opacity exist; anything below 1 means half.
func WithMaskOpacity(o float64) Option {
	return func(s *Session) {
		s.maskOpacity = 0.5
		if o >= 1 {
			s.maskOpacity = 1
		}
	}
}

// New creates an idle session with no image.
func New(opts ...Option) *Session {
	s := &Session{
		state:         StateIdle,
		tool:          ToolNone,
		activePolygon: -1,
		activePoint:   -1,
		brushSize:     DefaultBrushSize,
		eraserSize:    DefaultBrushSize,
		maskOpacity:   0.5,
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.alloc == nil {
		s.alloc = palette.Default()
	}
	if s.classes == nil {
		s.classes = model.NewClassList()
	}
	if s.activeClass == "" && s.classes.Len() > 0 {
		s.activeClass = s.classes.At(0).ID
	}
	return s
}

// reject logs and returns a TransitionError for op.
func (s *Session) reject(op string, err error) error {
	s.log.Warn("gesture rejected", "op", op, "state", s.state.String(), "err", err)
	return &TransitionError{Op: op, State: s.state, Err: err}
}

// LoadImage starts work on a new image. The mask is resized and cleared, the
// box and polygons are dropped and the session returns to idle with no tool.
// Classes are kept.
func (s *Session) LoadImage(name string, bounds image.Rectangle) {
	if s.mask == nil {
		s.mask = mask.New(bounds)
	} else {
		s.mask.Reset(bounds)
	}
	s.imageName = name
	s.loaded = true
	s.tool = ToolNone
	s.Reset()
}

// Reset returns to idle and clears the box and polygons.
func (s *Session) Reset() {
	s.box = model.Box{}
	s.polygons = nil
	s.activePolygon = -1
	s.activePoint = -1
	s.state = StateIdle
}

// SetTool switches tools. Geometry in flight in the tool being left is
// committed or discarded.
func (s *Session) SetTool(t Tool) error {
	if t < ToolNone || t > ToolPolygon {
		return s.reject("setTool", ErrUnknownTool)
	}
	if t == s.tool {
		return nil
	}
	switch s.state {
	case StateBox, StateBoxing:
		s.box = model.Box{}
		s.activePoint = -1
	case StateEdit, StateEditing:
		s.activePolygon = -1
		s.activePoint = -1
	case StatePolygon, StatePolygoning:
		if s.activePolygon >= 0 && s.polygons[s.activePolygon].Len() < 2 {
			s.removePolygon(s.activePolygon)
		}
		s.activePolygon = -1
		s.activePoint = -1
	}
	s.tool = t
	s.state = t.resting()
	return nil
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Tool returns the selected tool.
func (s *Session) Tool() Tool { return s.tool }

// Loaded reports whether an image has been loaded.
func (s *Session) Loaded() bool { return s.loaded }

// ImageName returns the name passed to LoadImage.
func (s *Session) ImageName() string { return s.imageName }

// ExportName is the file name used for the annotation image.
func (s *Session) ExportName() string { return export.FileName(s.imageName) }

// Bounds returns the image bounds, empty before an image is loaded.
func (s *Session) Bounds() image.Rectangle {
	if s.mask == nil {
		return image.Rectangle{}
	}
	return s.mask.Bounds()
}

// Mask returns the raster layer for rendering. Callers must not modify it.
func (s *Session) Mask() *mask.Layer { return s.mask }

// Box returns the region of interest.
func (s *Session) Box() model.Box { return s.box }

// Polygons returns copies of the polygons, most recently created first.
func (s *Session) Polygons() []model.Polygon {
	out := make([]model.Polygon, len(s.polygons))
	for i, p := range s.polygons {
		out[i] = p.Clone()
	}
	return out
}

// ActivePolygon returns the index of the selected polygon or -1.
func (s *Session) ActivePolygon() int { return s.activePolygon }

// ActivePoint returns the flat index of the selected point or -1.
func (s *Session) ActivePoint() int { return s.activePoint }

// SetBrushSize clamps n to the allowed range, rounds it and returns the
// size applied.
func (s *Session) SetBrushSize(n float64) int {
	s.brushSize = clampSize(n)
	return s.brushSize
}

// SetEraserSize clamps n to the allowed range, rounds it and returns the
// size applied.
func (s *Session) SetEraserSize(n float64) int {
	s.eraserSize = clampSize(n)
	return s.eraserSize
}

// BrushSize returns the brush diameter.
func (s *Session) BrushSize() int { return s.brushSize }

// EraserSize returns the eraser diameter.
func (s *Session) EraserSize() int { return s.eraserSize }

func clampSize(n float64) int {
	if math.IsNaN(n) {
		return DefaultBrushSize
	}
	if n < MinBrushSize {
		return MinBrushSize
	}
	if n > MaxBrushSize {
		return MaxBrushSize
	}
	return int(math.Round(n))
}

// ToggleMaskOpacity flips the mask display opacity between half and full.
func (s *Session) ToggleMaskOpacity() float64 {
	if s.maskOpacity == 0.5 {
		s.maskOpacity = 1
	} else {
		s.maskOpacity = 0.5
	}
	return s.maskOpacity
}

// MaskOpacity returns the mask display opacity.
func (s *Session) MaskOpacity() float64 { return s.maskOpacity }

// ZoomIn raises the zoom level. Zoom has no effect on rendering yet.
func (s *Session) ZoomIn() int {
	if s.zoom < MaxZoom {
		s.zoom++
	}
	return s.zoom
}

// ZoomOut lowers the zoom level.
func (s *Session) ZoomOut() int {
	if s.zoom > MinZoom {
		s.zoom--
	}
	return s.zoom
}

// Zoom returns the zoom level.
func (s *Session) Zoom() int { return s.zoom }

// Cursor returns the last pointer position seen.
func (s *Session) Cursor() (model.Point, bool) { return s.cursor, s.cursorSet }

// SetError records a message for the user.
func (s *Session) SetError(msg string) { s.lastError = msg }

// ClearError drops the user message.
func (s *Session) ClearError() { s.lastError = "" }

// LastError returns the message for the user, or "".
func (s *Session) LastError() string { return s.lastError }

// Snapshot copies the mask, polygons and class colours for export.
func (s *Session) Snapshot() (export.Snapshot, error) {
	if !s.loaded {
		return export.Snapshot{}, export.ErrNoImage
	}
	return export.Snapshot{
		Mask:     s.mask.Snapshot(),
		Polygons: s.Polygons(),
		Palette:  s.classes.Colors(),
	}, nil
}

// Export snapshots the session and quantizes it into a class-indexed image.
func (s *Session) Export(ctx context.Context, workers int) (*image.RGBA, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return export.Annotations(ctx, snap, workers)
}

// ExportClassNames writes the class names in rank order.
func (s *Session) ExportClassNames(w io.Writer) error {
	return export.EncodeClassNames(w, s.classes.Names())
}
