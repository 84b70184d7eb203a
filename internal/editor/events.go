package editor

import (
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/labelpaint/internal/model"
)

// HandleMouse feeds a window mouse event to the session. p is the event
// position already converted to image coordinates. Only the left button
// drives gestures.
func (s *Session) HandleMouse(e mouse.Event, p model.Point) error {
	switch e.Direction {
	case mouse.DirPress:
		if e.Button != mouse.ButtonLeft {
			return nil
		}
		return s.Press(p)
	case mouse.DirRelease:
		if e.Button != mouse.ButtonLeft {
			return nil
		}
		return s.PointerUp()
	case mouse.DirNone:
		return s.PointerMove(p)
	}
	return nil
}

// KeyFor maps a window key event to a session key.
func KeyFor(e key.Event) (Key, bool) {
	if e.Direction == key.DirRelease {
		return 0, false
	}
	switch e.Code {
	case key.CodeDeleteForward, key.CodeDeleteBackspace:
		return KeyDelete, true
	case key.CodeEscape:
		return KeyEscape, true
	}
	return 0, false
}

// HandleKey feeds a window key event to the session. handled is false for
// keys the session does not interpret.
func (s *Session) HandleKey(e key.Event) (handled bool, err error) {
	k, ok := KeyFor(e)
	if !ok {
		return false, nil
	}
	return true, s.KeyDown(k)
}
