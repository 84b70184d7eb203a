package appstate

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"

	"github.com/example/labelpaint/internal/editor"
	"github.com/example/labelpaint/internal/model"
)

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button represents an interactive UI element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// CacheButton wraps another Button and caches its rendered states.
type CacheButton struct {
	Button
	cache [3]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	if cb.cache[state] == nil {
		rect := cb.Button.Rect()
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Src)
}

func (cb *CacheButton) Rect() image.Rectangle { return cb.Button.Rect() }

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [3]*image.RGBA{}
	}
}

func (cb *CacheButton) Activate() { cb.Button.Activate() }

// invalidate drops cached renders, used when the theme changes.
func (cb *CacheButton) invalidate() { cb.cache = [3]*image.RGBA{} }

func buttonColor(state ButtonState) color.RGBA {
	switch state {
	case StateHover:
		return currentTheme.ButtonBackgroundHover
	case StatePressed:
		return currentTheme.ButtonBackgroundPress
	}
	return currentTheme.ButtonBackground
}

type Shortcut struct {
	label  string
	action func()
	rect   image.Rectangle
}

func (s *Shortcut) Draw(dst *image.RGBA, state ButtonState) {
	draw.Draw(dst, s.rect, &image.Uniform{buttonColor(state)}, image.Point{}, draw.Src)
	drawRect(dst, s.rect, currentTheme.ButtonBorder, 1)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(currentTheme.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(s.rect.Min.X+2, s.rect.Min.Y+14)}
	d.DrawString(s.label)
}

func (s *Shortcut) Rect() image.Rectangle { return s.rect }

func (s *Shortcut) SetRect(r image.Rectangle) {
	if r != s.rect {
		s.rect = r
	}
}

func (s *Shortcut) Activate() {
	if s.action != nil {
		s.action()
	}
}

// ToolButton represents a toolbar button that selects an annotation tool.
type ToolButton struct {
	label string
	tool  editor.Tool
	rect  image.Rectangle
	// onSelect is called when the button is activated.
	onSelect func()
}

func (tb *ToolButton) Draw(dst *image.RGBA, state ButtonState) {
	draw.Draw(dst, tb.rect, &image.Uniform{buttonColor(state)}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(currentTheme.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(tb.rect.Min.X+4, tb.rect.Min.Y+16)}
	d.DrawString(tb.label)
}

func (tb *ToolButton) Rect() image.Rectangle { return tb.rect }

func (tb *ToolButton) SetRect(r image.Rectangle) {
	if r != tb.rect {
		tb.rect = r
	}
}

func (tb *ToolButton) Activate() {
	if tb.onSelect != nil {
		tb.onSelect()
	}
}

// ClassButton is a row of the class panel: a color swatch and the class name.
type ClassButton struct {
	class  model.Class
	active bool
	rect   image.Rectangle
	// onSelect is called when the row is clicked.
	onSelect func()
}

func (cb *ClassButton) Draw(dst *image.RGBA, state ButtonState) {
	bg := currentTheme.PanelBackground
	if state != StateDefault {
		bg = buttonColor(state)
	}
	draw.Draw(dst, cb.rect, &image.Uniform{bg}, image.Point{}, draw.Src)
	sw := image.Rect(cb.rect.Min.X+4, cb.rect.Min.Y+4, cb.rect.Min.X+20, cb.rect.Max.Y-4)
	draw.Draw(dst, sw, &image.Uniform{cb.class.Color}, image.Point{}, draw.Src)
	if cb.active {
		drawRect(dst, sw.Inset(-2), currentTheme.PanelActive, 2)
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(currentTheme.PanelText), Face: basicfont.Face7x13,
		Dot: fixed.P(sw.Max.X+6, cb.rect.Min.Y+16)}
	d.DrawString(cb.class.Name)
}

func (cb *ClassButton) Rect() image.Rectangle { return cb.rect }

func (cb *ClassButton) SetRect(r image.Rectangle) {
	if r != cb.rect {
		cb.rect = r
	}
}

func (cb *ClassButton) Activate() {
	if cb.onSelect != nil {
		cb.onSelect()
	}
}
