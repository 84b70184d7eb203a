package editor

import (
	"errors"
	"fmt"
)

var (
	ErrWrongState      = errors.New("not allowed in the current state")
	ErrNoImage         = errors.New("no image loaded")
	ErrNoActiveClass   = errors.New("no active class")
	ErrNoActivePolygon = errors.New("no active polygon")
	ErrNoActivePoint   = errors.New("no active point")
	ErrNoBox           = errors.New("no box")
	ErrUnknownTool     = errors.New("unknown tool")
	ErrBadPoint        = errors.New("point is not finite")
)

// TransitionError reports a gesture the session refused. The session is left
// exactly as it was.
type TransitionError struct {
	Op    string
	State State
	Err   error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s in state %s: %v", e.Op, e.State, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }
