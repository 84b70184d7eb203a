package appstate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"sync"
	"time"
	"unicode"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/labelpaint/internal/clipboard"
	"github.com/example/labelpaint/internal/editor"
	"github.com/example/labelpaint/internal/export"
	"github.com/example/labelpaint/internal/notify"
	"github.com/example/labelpaint/internal/segment"
	"github.com/example/labelpaint/internal/theme"
)

// ErrWindowClosed is returned by Do once the window is gone.
var ErrWindowClosed = errors.New("annotation window is closed")

// AppState holds application configuration for the UI.
type AppState struct {
	Session       *editor.Session
	Image         *image.RGBA
	ImageName     string
	Output        string
	ClassesOutput string
	Title         string
	Classifier    segment.Classifier
	Notifier      *notify.Notifier
	Theme         *theme.Theme
	Workers       int

	updateCh    chan struct{}
	sendMu      sync.Mutex
	sendControl func(controlEvent)
	closed      chan struct{}

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithSession sets the annotation session driven by the window.
func WithSession(s *editor.Session) Option { return func(a *AppState) { a.Session = s } }

// WithImage sets the source image and the name it is exported under.
func WithImage(name string, img *image.RGBA) Option {
	return func(a *AppState) {
		a.ImageName = name
		a.Image = img
	}
}

// WithOutput sets the annotation raster path. Empty means the image name
// with a .png extension.
func WithOutput(out string) Option { return func(a *AppState) { a.Output = out } }

// WithClassesOutput sets where the class list is exported.
func WithClassesOutput(out string) Option { return func(a *AppState) { a.ClassesOutput = out } }

// WithTitle sets the window title.
func WithTitle(title string) Option { return func(a *AppState) { a.Title = title } }

// WithClassifier sets the segmentation model used by the segment actions.
func WithClassifier(c segment.Classifier) Option { return func(a *AppState) { a.Classifier = c } }

// WithNotifier sets the desktop notifier.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.Notifier = n } }

// WithTheme sets the window colors.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.Theme = t } }

// WithWorkers bounds the goroutines used by export quantization.
func WithWorkers(n int) Option { return func(a *AppState) { a.Workers = n } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options. When an image is given
// it is loaded into the session.
func New(opts ...Option) *AppState {
	a := &AppState{
		updateCh:      make(chan struct{}, 1),
		closed:        make(chan struct{}),
		ClassesOutput: export.ClassFileName,
		Title:         "labelpaint",
	}
	for _, o := range opts {
		o(a)
	}
	if a.Session == nil {
		a.Session = editor.New()
	}
	if a.Theme == nil {
		a.Theme = theme.Default()
	}
	if a.Image != nil {
		a.Session.LoadImage(a.ImageName, a.Image.Bounds())
	}
	return a
}

// controlEvent runs fn against the session on the window's event goroutine.
type controlEvent struct {
	fn   func(*editor.Session) error
	done chan error
}

// segmentEvent carries a finished classifier run back to the event loop.
type segmentEvent struct {
	gen     int
	outcome segment.Outcome
	err     error
}

// segmentRun tracks the classifier run in flight. Loading another image
// bumps gen so a late result for the previous image is dropped.
type segmentRun struct {
	gen    int
	cancel context.CancelFunc
}

func (r *segmentRun) running() bool { return r.cancel != nil }

func (r *segmentRun) start(cancel context.CancelFunc) int {
	r.cancel = cancel
	return r.gen
}

// reset cancels any run and invalidates its result.
func (r *segmentRun) reset() {
	r.stop()
	r.gen++
}

func (r *segmentRun) stop() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// finish reports whether a result from generation gen still applies.
func (r *segmentRun) finish(gen int) bool {
	if gen != r.gen {
		return false
	}
	r.stop()
	return true
}

// NotifyChanged requests a repaint of the UI.
func (a *AppState) NotifyChanged() {
	if a.updateCh == nil {
		return
	}
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

// Do runs fn on the window's event goroutine, where the session may be used
// safely, and waits for it to finish. The window repaints afterwards.
func (a *AppState) Do(fn func(*editor.Session) error) error {
	a.sendMu.Lock()
	sender := a.sendControl
	a.sendMu.Unlock()
	if sender == nil {
		return ErrWindowClosed
	}
	done := make(chan error, 1)
	sender(controlEvent{fn: fn, done: done})
	select {
	case err := <-done:
		return err
	case <-a.closed:
		return ErrWindowClosed
	}
}

func (a *AppState) setControlSender(fn func(controlEvent)) {
	a.sendMu.Lock()
	a.sendControl = fn
	a.sendMu.Unlock()
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		a.setControlSender(nil)
		close(a.closed)
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

// dragging reports whether st is mid-gesture, in which case pointer events
// belong to the canvas wherever they happen.
func dragging(st editor.State) bool {
	switch st {
	case editor.StateBoxing, editor.StatePainting, editor.StateErasing, editor.StateEditing, editor.StatePolygoning:
		return true
	}
	return false
}

func (a *AppState) exportPath() string {
	if a.Output != "" {
		return a.Output
	}
	return a.Session.ExportName()
}

func (a *AppState) Main(s screen.Screen) {
	sess := a.Session
	setTheme(a.Theme)

	// Size the toolbar so every label fits.
	widest := measure("labelpaint") + 8
	toolLabels := []string{"B:Box", "P:Paint", "E:Erase", "D:Edit", "L:Polygon", "eraser 40", "mask 100%"}
	for _, lbl := range toolLabels {
		if w := measure(lbl) + 8; w > widest {
			widest = w
		}
	}
	if widest > toolbarWidth {
		toolbarWidth = widest
	}

	width, height := 1024, 768
	if a.Image != nil {
		width = a.Image.Bounds().Dx() + toolbarWidth + classPanelWidth
		height = a.Image.Bounds().Dy() + titleHeight + bottomHeight
	}
	width = min(max(width, 640), 1600)
	height = min(max(height, 480), 1000)
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: a.Title})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()

	defer a.notifyClose()

	if a.updateCh != nil {
		done := make(chan struct{})
		go func() {
			for {
				select {
				case <-a.updateCh:
					w.Send(paint.Event{})
				case <-done:
					return
				}
			}
		}()
		defer close(done)
	}

	a.setControlSender(func(ev controlEvent) { w.Send(ev) })

	var message string
	var messageUntil time.Time
	setMessage := func(msg string) {
		message = msg
		log.Print(message)
		messageUntil = time.Now().Add(2 * time.Second)
	}
	showError := func(err error) {
		if err == nil {
			return
		}
		if msg := sess.LastError(); msg != "" {
			setMessage(msg)
			sess.ClearError()
			return
		}
		setMessage(err.Error())
	}

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	defer close(paintCh)
	stopPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	var seg segmentRun
	defer seg.stop()

	refreshClasses := func() {
		active, _ := sess.ActiveClass()
		classButtons = classButtons[:0]
		y := titleHeight
		for _, c := range sess.Classes() {
			id := c.ID
			cb := &ClassButton{class: c, active: c.ID == active.ID}
			cb.SetRect(image.Rect(width-classPanelWidth, y, width, y+classRowHeight))
			cb.onSelect = func() {
				if err := sess.SetActiveClass(id); err != nil {
					log.Printf("select class: %v", err)
				}
			}
			classButtons = append(classButtons, cb)
			y += classRowHeight
		}
	}

	toolButtons = []*CacheButton{
		{Button: &ToolButton{label: "B:Box", tool: editor.ToolBox}},
		{Button: &ToolButton{label: "P:Paint", tool: editor.ToolPaint}},
		{Button: &ToolButton{label: "E:Erase", tool: editor.ToolErase}},
		{Button: &ToolButton{label: "D:Edit", tool: editor.ToolEdit}},
		{Button: &ToolButton{label: "L:Polygon", tool: editor.ToolPolygon}},
	}
	selectTool := func(t editor.Tool) func() {
		return func() {
			if err := sess.SetTool(t); err != nil {
				showError(err)
			}
		}
	}
	for i, cb := range toolButtons {
		tb := cb.Button.(*ToolButton)
		tb.onSelect = selectTool(tb.tool)
		cb.SetRect(image.Rect(0, titleHeight+24*i, toolbarWidth, titleHeight+24*(i+1)))
	}

	keyboardAction := map[KeyShortcut]string{}
	actions := map[string]func(){}
	register := func(name string, keys KeyboardShortcuts, fn func()) {
		actions[name] = fn
		if keys != nil {
			for _, sc := range keys.KeyboardShortcuts() {
				keyboardAction[sc] = name
			}
		}
	}

	quit := false
	register("box", shortcutList{{Rune: 'b'}}, selectTool(editor.ToolBox))
	register("paint", shortcutList{{Rune: 'p'}}, selectTool(editor.ToolPaint))
	register("erase", shortcutList{{Rune: 'e'}}, selectTool(editor.ToolErase))
	register("edit", shortcutList{{Rune: 'd'}}, selectTool(editor.ToolEdit))
	register("polygon", shortcutList{{Rune: 'l'}}, selectTool(editor.ToolPolygon))
	register("quit", shortcutList{{Rune: 'q'}}, func() { quit = true })

	register("zoomin", shortcutList{{Rune: '+'}, {Rune: '='}}, func() { sess.ZoomIn() })
	register("zoomout", shortcutList{{Rune: '-'}}, func() { sess.ZoomOut() })
	register("opacity", shortcutList{{Rune: 'o'}}, func() {
		setMessage(fmt.Sprintf("mask opacity %d%%", int(sess.ToggleMaskOpacity()*100)))
	})
	resize := func(delta float64) func() {
		return func() {
			if sess.Tool() == editor.ToolErase {
				sess.SetEraserSize(float64(sess.EraserSize()) + delta)
				return
			}
			sess.SetBrushSize(float64(sess.BrushSize()) + delta)
		}
	}
	register("grow", shortcutList{{Rune: ']'}}, resize(2))
	register("shrink", shortcutList{{Rune: '['}}, resize(-2))
	register("clearbox", shortcutList{{Rune: 'c'}}, func() {
		if sess.State() == editor.StateBox {
			showError(sess.ClearBox())
		}
	})
	register("deletepolygon", shortcutList{{Rune: 'x'}}, func() {
		if sess.ActivePolygon() >= 0 {
			showError(sess.DeletePolygon())
		}
	})

	annotation := func() (*image.RGBA, bool) {
		img, err := sess.Export(context.Background(), a.Workers)
		if err != nil {
			showError(err)
			return nil, false
		}
		return img, true
	}
	register("export", shortcutList{{Rune: 's', Modifiers: key.ModControl}}, func() {
		img, ok := annotation()
		if !ok {
			return
		}
		out := a.exportPath()
		if err := export.SaveFile(out, img); err != nil {
			log.Printf("export: %v", err)
			setMessage("export failed")
			return
		}
		setMessage(fmt.Sprintf("saved %s", out))
		a.Notifier.Export(out)
	})
	register("exportclasses", shortcutList{{Rune: 'e', Modifiers: key.ModControl}}, func() {
		out := a.ClassesOutput
		f, err := os.Create(out)
		if err != nil {
			log.Printf("export classes: %v", err)
			setMessage("export failed")
			return
		}
		err = sess.ExportClassNames(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(out)
			showError(err)
			return
		}
		setMessage(fmt.Sprintf("saved %s", out))
		a.Notifier.Export(out)
	})
	register("copy", shortcutList{{Rune: 'c', Modifiers: key.ModControl}}, func() {
		img, ok := annotation()
		if !ok {
			return
		}
		if err := clipboard.CopyAnnotation(img); err != nil {
			log.Printf("copy: %v", err)
			setMessage("copy failed")
			return
		}
		setMessage("annotation copied to clipboard")
		a.Notifier.Copy("annotation")
	})
	register("copyclasses", shortcutList{{Rune: 'k', Modifiers: key.ModControl}}, func() {
		if err := clipboard.CopyClassNames(sess.ClassNames()); err != nil {
			showError(err)
			return
		}
		setMessage("class list copied to clipboard")
		a.Notifier.Copy("class list")
	})
	register("pasteclasses", shortcutList{{Rune: 'i', Modifiers: key.ModControl}}, func() {
		names, err := clipboard.PasteClassNames()
		if err != nil {
			showError(err)
			return
		}
		added, err := sess.ImportClasses(names)
		if err != nil {
			showError(err)
			return
		}
		setMessage(fmt.Sprintf("imported %d classes", len(added)))
	})
	register("paste", shortcutList{{Rune: 'v', Modifiers: key.ModControl}}, func() {
		img, err := clipboard.PasteImage()
		if err != nil {
			log.Printf("paste: %v", err)
			setMessage("clipboard has no image")
			return
		}
		a.Image = img
		a.ImageName = "clipboard"
		seg.reset()
		sess.LoadImage(a.ImageName, img.Bounds())
		setMessage("pasted new image")
	})

	startSegment := func(whole bool) {
		if a.Classifier == nil {
			setMessage("no segmentation model configured")
			return
		}
		if seg.running() {
			setMessage("segmentation already running")
			return
		}
		var src image.Image
		if a.Image != nil {
			src = a.Image
		}
		req, err := sess.SegmentRequest(src, whole)
		if err != nil {
			showError(err)
			return
		}
		ctx, cancel := context.WithCancel(context.Background())
		gen := seg.start(cancel)
		setMessage("segmenting...")
		go func() {
			out, err := segment.Run(ctx, a.Classifier, req)
			w.Send(segmentEvent{gen: gen, outcome: out, err: err})
		}()
	}
	register("segment", shortcutList{{Rune: 'g'}}, func() { startSegment(false) })
	register("segmentall", shortcutList{{Rune: 'g', Modifiers: key.ModControl}}, func() { startSegment(true) })

	handleShortcut := func(action string) {
		if fn, ok := actions[action]; ok {
			fn()
		}
		w.Send(paint.Event{})
	}

	for {
		if quit {
			stopPaint()
			return
		}
		e := w.NextEvent()
		switch e := e.(type) {
		case controlEvent:
			err := e.fn(sess)
			e.done <- err
			w.Send(paint.Event{})
		case segmentEvent:
			if !seg.finish(e.gen) {
				log.Printf("segment: dropping result for a replaced image")
			} else if e.err != nil {
				log.Printf("segment: %v", e.err)
				setMessage(e.err.Error())
			} else if err := sess.ApplySegmentation(e.outcome); err != nil {
				showError(err)
			} else {
				n := len(e.outcome.PresentIDs())
				setMessage(fmt.Sprintf("segmented %d classes", n))
				a.Notifier.Segment(fmt.Sprintf("%d classes", n), sess.Mask().Snapshot())
			}
			w.Send(paint.Event{})
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stopPaint()
				return
			}
		case size.Event:
			width = e.WidthPx
			height = e.HeightPx
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil {
				if dropCount < frameDropThreshold {
					paintCancel()
					dropCount++
				}
			}
			paintMu.Unlock()
			refreshClasses()
			cursor, cursorSet := sess.Cursor()
			brush := sess.BrushSize()
			if sess.Tool() == editor.ToolErase {
				brush = sess.EraserSize()
			}
			st := paintState{
				width:          width,
				height:         height,
				title:          a.ImageName,
				opacity:        sess.MaskOpacity(),
				polygons:       sess.Polygons(),
				activePolygon:  sess.ActivePolygon(),
				activePoint:    sess.ActivePoint(),
				box:            sess.Box(),
				tool:           sess.Tool(),
				state:          sess.State(),
				cursor:         cursor,
				cursorSet:      cursorSet,
				size:           brush,
				zoom:           sess.Zoom(),
				classes:        append([]*ClassButton(nil), classButtons...),
				hoverTool:      hoverTool,
				hoverClass:     hoverClass,
				hoverShortcut:  hoverShortcut,
				message:        message,
				messageUntil:   messageUntil,
				handleShortcut: handleShortcut,
			}
			if sess.Loaded() && a.Image != nil {
				st.image = a.Image
				st.mask = sess.Mask().Snapshot()
			}
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			if message != "" && time.Now().Before(messageUntil) && e.Direction == mouse.DirPress {
				messageUntil = time.Time{}
				w.Send(paint.Event{})
				continue
			}
			p := image.Point{int(e.X), int(e.Y)}
			if !dragging(sess.State()) {
				if p.Y >= height-bottomHeight {
					hoverShortcut = -1
					for i, sc := range shortcutsSnapshot() {
						if p.In(sc.rect) {
							hoverShortcut = i
							if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
								sc.Activate()
							}
							break
						}
					}
					if e.Direction == mouse.DirNone {
						w.Send(paint.Event{})
					}
					continue
				}
				if p.Y < titleHeight {
					continue
				}
				if p.X < toolbarWidth {
					hoverTool = -1
					for i, cb := range toolButtons {
						if p.In(cb.Rect()) {
							hoverTool = i
							if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
								cb.Activate()
							}
							break
						}
					}
					w.Send(paint.Event{})
					continue
				}
				if p.X >= width-classPanelWidth {
					hoverClass = -1
					for i, cb := range classButtons {
						if p.In(cb.Rect()) {
							hoverClass = i
							if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
								cb.Activate()
							}
							break
						}
					}
					w.Send(paint.Event{})
					continue
				}
			}
			hoverTool, hoverClass, hoverShortcut = -1, -1, -1
			if a.Image == nil || !sess.Loaded() {
				if e.Direction == mouse.DirPress {
					setMessage("open an image first")
					w.Send(paint.Event{})
				}
				continue
			}
			scale := fitScale(a.Image.Bounds(), width, height)
			canvas := imageRect(a.Image.Bounds(), scale)
			if err := sess.HandleMouse(e, toImage(e.X, e.Y, canvas, scale)); err != nil && e.Direction == mouse.DirPress {
				if errors.Is(err, editor.ErrNoActiveClass) {
					setMessage("select or create a class first")
				}
			}
			w.Send(paint.Event{})
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			ks := KeyShortcut{Rune: unicode.ToLower(e.Rune), Code: e.Code, Modifiers: e.Modifiers &^ key.ModShift}
			if e.Modifiers&key.ModControl != 0 && e.Rune == 0 {
				ks.Rune = unicode.ToLower(rune(controlRune(e.Code)))
			}
			if action, ok := keyboardAction[ks]; ok {
				handleShortcut(action)
				continue
			}
			if handled, err := sess.HandleKey(e); handled {
				if err != nil {
					log.Printf("key: %v", err)
				}
				w.Send(paint.Event{})
			}
		case error:
			log.Print(e)
		}
	}
}

// controlRune recovers the letter of a Ctrl combination on drivers that
// report no rune for it.
func controlRune(c key.Code) rune {
	if c >= key.CodeA && c <= key.CodeZ {
		return 'a' + rune(c-key.CodeA)
	}
	return 0
}
