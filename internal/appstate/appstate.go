package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/screen"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/example/labelpaint/internal/editor"
	"github.com/example/labelpaint/internal/mask"
	"github.com/example/labelpaint/internal/model"
	"github.com/example/labelpaint/internal/render"
	"github.com/example/labelpaint/internal/theme"
)

const (
	titleHeight     = 24
	bottomHeight    = 24
	classPanelWidth = 160
	classRowHeight  = 24
	handleSize      = 8
)

var toolbarWidth = 48

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

var (
	currentTheme  = theme.Default()
	messageFace   font.Face
	backdropCache *image.RGBA

	toolButtons  []*CacheButton
	classButtons []*ClassButton

	shortcutMu    sync.Mutex
	shortcutRects []Shortcut

	hoverTool     = -1
	hoverClass    = -1
	hoverShortcut = -1
)

// shortcutsSnapshot returns the shortcut bar as last drawn.
func shortcutsSnapshot() []Shortcut {
	shortcutMu.Lock()
	defer shortcutMu.Unlock()
	return append([]Shortcut(nil), shortcutRects...)
}

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	messageFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 32, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

// setTheme switches the colors used by every widget.
func setTheme(t *theme.Theme) {
	if t == nil {
		t = theme.Default()
	}
	currentTheme = t
	backdropCache = nil
	for _, cb := range toolButtons {
		cb.invalidate()
	}
}

// fitScale returns the display scale that fits an image of bounds b into the
// canvas area of a winW x winH window.
func fitScale(b image.Rectangle, winW, winH int) float64 {
	availW := winW - toolbarWidth - classPanelWidth
	availH := winH - titleHeight - bottomHeight
	if b.Dx() == 0 || b.Dy() == 0 || availW <= 0 || availH <= 0 {
		return 1
	}
	zx := float64(availW) / float64(b.Dx())
	zy := float64(availH) / float64(b.Dy())
	if zx < zy {
		return zx
	}
	return zy
}

// imageRect returns the destination rectangle for drawing an image of bounds
// b, anchored just right of the toolbar and below the title bar.
func imageRect(b image.Rectangle, scale float64) image.Rectangle {
	w := int(float64(b.Dx()) * scale)
	h := int(float64(b.Dy()) * scale)
	return image.Rect(toolbarWidth, titleHeight, toolbarWidth+w, titleHeight+h)
}

// toImage converts a window position into image coordinates.
func toImage(x, y float32, dst image.Rectangle, scale float64) model.Point {
	return model.Pt((float64(x)-float64(dst.Min.X))/scale, (float64(y)-float64(dst.Min.Y))/scale)
}

// toScreen converts image coordinates into a window position.
func toScreen(p model.Point, dst image.Rectangle, scale float64) image.Point {
	return model.Pt(float64(dst.Min.X)+p.X*scale, float64(dst.Min.Y)+p.Y*scale).ImagePoint()
}

// drawBackdrop fills dst with the window background and a cached checkerboard
// under the canvas.
func drawBackdrop(dst *image.RGBA, canvas image.Rectangle) {
	b := dst.Bounds()
	draw.Draw(dst, b, &image.Uniform{currentTheme.Background}, image.Point{}, draw.Src)
	if backdropCache == nil || backdropCache.Bounds() != b {
		backdropCache = image.NewRGBA(b)
		render.Checkerboard(backdropCache, b, 8, currentTheme.CheckerLight, currentTheme.CheckerDark)
	}
	canvas = canvas.Intersect(b)
	draw.Draw(dst, canvas, backdropCache, canvas.Min, draw.Src)
}

func drawLabel(dst *image.RGBA, x, y int, col color.Color, s string) int {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: basicfont.Face7x13, Dot: fixed.P(x, y)}
	d.DrawString(s)
	return d.Dot.X.Ceil()
}

func measure(s string) int {
	return (&font.Drawer{Face: basicfont.Face7x13}).MeasureString(s).Ceil()
}

func drawTitle(dst *image.RGBA, st paintState) {
	rect := image.Rect(0, 0, dst.Bounds().Dx(), titleHeight)
	draw.Draw(dst, rect, &image.Uniform{currentTheme.ToolbarBackground}, image.Point{}, draw.Src)
	name := st.title
	if name == "" {
		name = "no image"
	}
	text := fmt.Sprintf("%s | %s (%s)", name, st.tool, st.state)
	drawLabel(dst, 4, 16, currentTheme.Foreground, text)
}

func drawToolbar(dst *image.RGBA, st paintState) {
	rect := image.Rect(0, titleHeight, toolbarWidth, dst.Bounds().Dy()-bottomHeight)
	draw.Draw(dst, rect, &image.Uniform{currentTheme.ToolbarBackground}, image.Point{}, draw.Src)
	y := titleHeight
	for i, cb := range toolButtons {
		tb := cb.Button.(*ToolButton)
		state := StateDefault
		if tb.tool == st.tool {
			state = StatePressed
		} else if i == st.hoverTool {
			state = StateHover
		}
		cb.Draw(dst, state)
		y = cb.Rect().Max.Y
	}

	y += 16
	fg := currentTheme.Foreground
	switch st.tool {
	case editor.ToolPaint:
		drawLabel(dst, 4, y, fg, fmt.Sprintf("brush %d", st.size))
		y += 16
	case editor.ToolErase:
		drawLabel(dst, 4, y, fg, fmt.Sprintf("eraser %d", st.size))
		y += 16
	}
	drawLabel(dst, 4, y, fg, fmt.Sprintf("mask %d%%", int(st.opacity*100+0.5)))
	y += 16
	drawLabel(dst, 4, y, fg, fmt.Sprintf("zoom %+d", st.zoom))
}

func drawClassPanel(dst *image.RGBA, st paintState, width, height int) {
	x0 := width - classPanelWidth
	rect := image.Rect(x0, titleHeight, width, height-bottomHeight)
	draw.Draw(dst, rect, &image.Uniform{currentTheme.PanelBackground}, image.Point{}, draw.Src)
	if len(st.classes) == 0 {
		drawLabel(dst, x0+6, titleHeight+16, currentTheme.PanelText, "no classes")
		return
	}
	for i, cb := range st.classes {
		if cb.Rect().Max.Y > rect.Max.Y {
			break
		}
		state := StateDefault
		if i == st.hoverClass {
			state = StateHover
		}
		cb.Draw(dst, state)
	}
}

func drawShortcuts(dst *image.RGBA, width, height int, zoom, hover int, trigger func(string)) {
	rect := image.Rect(0, height-bottomHeight, width, height)
	draw.Draw(dst, rect, &image.Uniform{currentTheme.ToolbarBackground}, image.Point{}, draw.Src)
	var drawn []Shortcut
	shortcuts := []Shortcut{
		{label: "^S:export", action: func() { trigger("export") }},
		{label: "^E:classes", action: func() { trigger("exportclasses") }},
		{label: "^C:copy", action: func() { trigger("copy") }},
		{label: "^V:paste", action: func() { trigger("paste") }},
		{label: "G:segment", action: func() { trigger("segment") }},
		{label: "^G:segment all", action: func() { trigger("segmentall") }},
		{label: "O:opacity", action: func() { trigger("opacity") }},
		{label: fmt.Sprintf("+/-:zoom (%+d)", zoom), action: func() { trigger("zoomin") }},
		{label: "Q:quit", action: func() { trigger("quit") }},
	}
	x := toolbarWidth + 4
	y := height - bottomHeight + 16
	for i := range shortcuts {
		sc := &shortcuts[i]
		w := measure(sc.label)
		sc.SetRect(image.Rect(x-2, y-14, x+w+2, y+4))
		state := StateDefault
		if i == hover {
			state = StateHover
		}
		sc.Draw(dst, state)
		drawn = append(drawn, *sc)
		x = sc.rect.Max.X + 8
	}
	shortcutMu.Lock()
	shortcutRects = drawn
	shortcutMu.Unlock()
}

func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	render.Line(img, rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Min.Y, col, thick)
	render.Line(img, rect.Max.X-1, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1, col, thick)
	render.Line(img, rect.Max.X-1, rect.Max.Y-1, rect.Min.X, rect.Max.Y-1, col, thick)
	render.Line(img, rect.Min.X, rect.Max.Y-1, rect.Min.X, rect.Min.Y, col, thick)
}

func drawDashedLine(img *image.RGBA, x0, y0, x1, y1, dash, thickness int, c1, c2 color.Color) {
	horiz := y0 == y1
	length := x1 - x0
	if !horiz {
		length = y1 - y0
	}
	step := 1
	if length < 0 {
		length = -length
		step = -1
	}
	for i := 0; i <= length; i++ {
		col := c1
		if (i/dash)%2 == 1 {
			col = c2
		}
		for t := 0; t < thickness; t++ {
			if horiz {
				img.Set(x0+i*step, y0+t, col)
			} else {
				img.Set(x0+t, y0+i*step, col)
			}
		}
	}
}

func drawDashedRect(img *image.RGBA, rect image.Rectangle, dash, thickness int, c1, c2 color.Color) {
	drawDashedLine(img, rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y, dash, thickness, c1, c2)
	drawDashedLine(img, rect.Max.X, rect.Min.Y, rect.Max.X, rect.Max.Y, dash, thickness, c1, c2)
	drawDashedLine(img, rect.Max.X, rect.Max.Y, rect.Min.X, rect.Max.Y, dash, thickness, c1, c2)
	drawDashedLine(img, rect.Min.X, rect.Max.Y, rect.Min.X, rect.Min.Y, dash, thickness, c1, c2)
}

// drawHandle draws a square vertex handle centred on p.
func drawHandle(img *image.RGBA, p image.Point, active bool) {
	hs := handleSize / 2
	r := image.Rect(p.X-hs, p.Y-hs, p.X+hs, p.Y+hs)
	fill := currentTheme.Handle
	if active {
		fill = currentTheme.HandleActive
	}
	draw.Draw(img, r.Intersect(img.Bounds()), &image.Uniform{fill}, image.Point{}, draw.Src)
	drawRect(img, r, currentTheme.SelectionDark, 1)
}

type paintState struct {
	width, height  int
	title          string
	image          *image.RGBA
	mask           *image.RGBA
	opacity        float64
	polygons       []model.Polygon
	activePolygon  int
	activePoint    int
	box            model.Box
	tool           editor.Tool
	state          editor.State
	cursor         model.Point
	cursorSet      bool
	size           int
	zoom           int
	classes        []*ClassButton
	hoverTool      int
	hoverClass     int
	hoverShortcut  int
	message        string
	messageUntil   time.Time
	handleShortcut func(string)
}

func (st paintState) brushActive() bool {
	switch st.state {
	case editor.StatePaint, editor.StatePainting, editor.StateErase, editor.StateErasing:
		return st.cursorSet
	}
	return false
}

func drawPolygons(dst *image.RGBA, st paintState, canvas image.Rectangle, scale float64) {
	for i := len(st.polygons) - 1; i >= 0; i-- {
		p := st.polygons[i]
		pts := make([]model.Point, len(p.Points))
		for j, pt := range p.Points {
			pts[j] = model.FromImagePoint(toScreen(pt, canvas, scale))
		}
		render.FillPolygon(dst, pts, p.Color, st.opacity)
		closed := !(i == st.activePolygon && st.tool == editor.ToolPolygon)
		render.Outline(dst, pts, p.Color, 2, closed)
		if i != st.activePolygon {
			continue
		}
		for j, pt := range pts {
			drawHandle(dst, pt.ImagePoint(), 2*j == st.activePoint)
		}
		if st.tool == editor.ToolEdit && len(p.Points) > 1 {
			for j := range p.Points {
				m, err := p.Midpoint(2 * j)
				if err != nil {
					continue
				}
				c := toScreen(m, canvas, scale)
				r := image.Rect(c.X-2, c.Y-2, c.X+2, c.Y+2)
				draw.Draw(dst, r.Intersect(dst.Bounds()), &image.Uniform{currentTheme.Handle}, image.Point{}, draw.Src)
			}
		}
	}
}

func drawBox(dst *image.RGBA, st paintState, canvas image.Rectangle, scale float64) {
	if st.box.Empty() {
		return
	}
	lo, hi := st.box.Bounds()
	r := image.Rectangle{Min: toScreen(lo, canvas, scale), Max: toScreen(hi, canvas, scale)}.Canon()
	drawDashedRect(dst, r, 4, 2, currentTheme.SelectionLight, currentTheme.SelectionDark)
	for i, c := range st.box.Points() {
		drawHandle(dst, toScreen(c, canvas, scale), 2*i == st.activePoint)
	}
}

func drawMessage(dst *image.RGBA, st paintState) {
	if st.message == "" || !time.Now().Before(st.messageUntil) {
		return
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(currentTheme.MessageText), Face: messageFace}
	wmsg := d.MeasureString(st.message).Ceil()
	ascent := messageFace.Metrics().Ascent.Ceil()
	descent := messageFace.Metrics().Descent.Ceil()
	px := (st.width - wmsg) / 2
	py := (st.height-ascent-descent)/2 + ascent
	rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
	draw.Draw(dst, rect, &image.Uniform{currentTheme.MessageBackground}, image.Point{}, draw.Over)
	drawRect(dst, rect, currentTheme.ButtonBorder, 2)
	d.Dot = fixed.P(px, py)
	d.DrawString(st.message)
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()

	var canvas image.Rectangle
	var scale float64
	if st.image != nil {
		scale = fitScale(st.image.Bounds(), st.width, st.height)
		canvas = imageRect(st.image.Bounds(), scale)
	}
	drawBackdrop(dst, canvas)
	if ctx.Err() != nil {
		return
	}

	if st.image != nil {
		xdraw.NearestNeighbor.Scale(dst, canvas, st.image, st.image.Bounds(), draw.Over, nil)
		if ctx.Err() != nil {
			return
		}
		render.MaskOver(dst, canvas, st.mask, st.opacity)
		if ctx.Err() != nil {
			return
		}
		drawPolygons(dst, st, canvas, scale)
		drawBox(dst, st, canvas, scale)
		if st.brushActive() {
			mask.DrawCursor(dst, toScreen(st.cursor, canvas, scale), int(float64(st.size)*scale+0.5), currentTheme.BrushCursor)
		}
	}
	if ctx.Err() != nil {
		return
	}

	drawTitle(dst, st)
	drawToolbar(dst, st)
	drawClassPanel(dst, st, st.width, st.height)
	drawShortcuts(dst, st.width, st.height, st.zoom, st.hoverShortcut, st.handleShortcut)
	if ctx.Err() != nil {
		return
	}

	drawMessage(dst, st)
	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
