//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var (
	initOnce     sync.Once
	initErr      error
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	errNoTarget  = errors.New("clipboard target unavailable")
	errTimeout   = errors.New("clipboard owner did not answer")
	backend      *x11Clipboard
)

// readTimeout bounds the wait for the selection owner's reply.
var readTimeout = 2 * time.Second

func ensureInit() error {
	initOnce.Do(func() {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			initErr = errNoDisplay
			return
		}
		backend, initErr = newX11Clipboard()
	})
	return initErr
}

func writePNG(data []byte) error {
	if err := ensureInit(); err != nil {
		return err
	}
	return backend.offer(data, backend.atoms.png)
}

func readPNG() ([]byte, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	return backend.read(backend.atoms.png)
}

// writeText offers class lists both as text and as JSON.
func writeText(text string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	a := backend.atoms
	return backend.offer([]byte(text), a.utf8, xproto.AtomString, a.textPlain, a.json)
}

func readText() (string, error) {
	if err := ensureInit(); err != nil {
		return "", err
	}
	var (
		data []byte
		err  error
	)
	for _, target := range []xproto.Atom{backend.atoms.json, backend.atoms.utf8, xproto.AtomString} {
		if data, err = backend.read(target); err == nil {
			break
		}
	}
	if err != nil {
		return "", err
	}
	// Some owners append a NUL to STRING responses.
	if len(data) > 0 && data[len(data)-1] == 0 {
		data = data[:len(data)-1]
	}
	return string(data), nil
}

type atomSet struct {
	clipboard xproto.Atom
	targets   xproto.Atom
	utf8      xproto.Atom
	textPlain xproto.Atom
	json      xproto.Atom
	png       xproto.Atom
	property  xproto.Atom
}

// x11Clipboard owns the CLIPBOARD selection through a hidden window and
// serves whatever payload was last offered.
type x11Clipboard struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  atomSet

	mu      sync.RWMutex
	payload []byte
	// targets lists the atoms payload is served under; the first names its type.
	targets []xproto.Atom
}

func newX11Clipboard() (*x11Clipboard, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	const eventMask = xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify
	if err := xproto.CreateWindowChecked(conn, screen.RootDepth, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput, screen.RootVisual, xproto.CwEventMask, []uint32{eventMask}).Check(); err != nil {
		conn.Close()
		return nil, err
	}
	atoms, err := internAtoms(conn)
	if err != nil {
		xproto.DestroyWindow(conn, window)
		conn.Close()
		return nil, err
	}
	c := &x11Clipboard{conn: conn, window: window, atoms: atoms}
	go c.serve()
	return c, nil
}

func internAtoms(conn *xgb.Conn) (atomSet, error) {
	var a atomSet
	for _, want := range []struct {
		name string
		dst  *xproto.Atom
	}{
		{"CLIPBOARD", &a.clipboard},
		{"TARGETS", &a.targets},
		{"UTF8_STRING", &a.utf8},
		{"text/plain;charset=utf-8", &a.textPlain},
		{"application/json", &a.json},
		{"image/png", &a.png},
		{"LABELPAINT_SELECTION", &a.property},
	} {
		reply, err := xproto.InternAtom(conn, false, uint16(len(want.name)), want.name).Reply()
		if err != nil {
			return atomSet{}, fmt.Errorf("intern %s: %w", want.name, err)
		}
		*want.dst = reply.Atom
	}
	return a, nil
}

// offer takes ownership of the selection with data served under targets.
func (c *x11Clipboard) offer(data []byte, targets ...xproto.Atom) error {
	c.mu.Lock()
	c.payload = append([]byte(nil), data...)
	c.targets = targets
	c.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(c.conn, c.window, c.atoms.clipboard, xproto.TimeCurrentTime).Check()
}

func (c *x11Clipboard) serve() {
	for {
		ev, err := c.conn.WaitForEvent()
		if err != nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			c.answer(e)
		case xproto.SelectionClearEvent:
			c.mu.Lock()
			c.payload, c.targets = nil, nil
			c.mu.Unlock()
		}
	}
}

// answer writes the requested target to the requestor's property and tells
// it so. Unknown targets are refused with a None property.
func (c *x11Clipboard) answer(e xproto.SelectionRequestEvent) {
	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}

	c.mu.RLock()
	payload, targets := c.payload, c.targets
	c.mu.RUnlock()

	switch {
	case e.Target == c.atoms.targets:
		list := append([]xproto.Atom{c.atoms.targets}, targets...)
		buf := make([]byte, len(list)*4)
		for i, atom := range list {
			xgb.Put32(buf[i*4:], uint32(atom))
		}
		xproto.ChangeProperty(c.conn, xproto.PropModeReplace, e.Requestor, property, xproto.AtomAtom, 32, uint32(len(list)), buf)
	case len(payload) > 0 && contains(targets, e.Target):
		xproto.ChangeProperty(c.conn, xproto.PropModeReplace, e.Requestor, property, targets[0], 8, uint32(len(payload)), payload)
	default:
		property = xproto.AtomNone
	}

	notify := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	_ = xproto.SendEvent(c.conn, false, e.Requestor, 0, string(notify.Bytes()))
}

func contains(atoms []xproto.Atom, a xproto.Atom) bool {
	for _, x := range atoms {
		if x == a {
			return true
		}
	}
	return false
}

// read converts the selection to target on a throwaway connection.
func (c *x11Clipboard) read(target xproto.Atom) ([]byte, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}
	if err := xproto.CreateWindowChecked(conn, 0, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check(); err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, window)

	if err := xproto.ConvertSelectionChecked(conn, window, c.atoms.clipboard, target, c.atoms.property, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		for {
			ev, err := conn.WaitForEvent()
			if err != nil {
				done <- result{err: err}
				return
			}
			e, ok := ev.(xproto.SelectionNotifyEvent)
			if !ok {
				continue
			}
			if e.Property == xproto.AtomNone {
				done <- result{err: errNoTarget}
				return
			}
			reply, perr := xproto.GetProperty(conn, true, window, e.Property, xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
			if perr != nil {
				done <- result{err: perr}
				return
			}
			done <- result{data: append([]byte(nil), reply.Value...)}
			return
		}
	}()
	select {
	case r := <-done:
		return r.data, r.err
	case <-time.After(readTimeout):
		return nil, errTimeout
	}
}
