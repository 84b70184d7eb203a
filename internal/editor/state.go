// Package editor implements the annotation session: the tool driven state
// machine that edits the box, polygons, classes and the raster mask.
package editor

import (
	"fmt"
	"strings"
)

// State is the interaction state of a session. Resting states wait for a
// gesture; the -ing states are mid-gesture.
type State int

const (
	StateIdle State = iota
	StateZoomIn
	StateZoomOut
	StateBox
	StateBoxing
	StatePaint
	StatePainting
	StateErase
	StateErasing
	StateEdit
	StateEditing
	StatePolygon
	StatePolygoning
)

var stateNames = [...]string{
	StateIdle:       "idle",
	StateZoomIn:     "zoomIn",
	StateZoomOut:    "zoomOut",
	StateBox:        "box",
	StateBoxing:     "boxing",
	StatePaint:      "paint",
	StatePainting:   "painting",
	StateErase:      "erase",
	StateErasing:    "erasing",
	StateEdit:       "edit",
	StateEditing:    "editing",
	StatePolygon:    "polygon",
	StatePolygoning: "polygoning",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Tool is the mode picked by the user.
type Tool int

const (
	ToolNone Tool = iota
	ToolZoomIn
	ToolZoomOut
	ToolPaint
	ToolErase
	ToolBox
	ToolEdit
	ToolPolygon
)

var toolNames = [...]string{
	ToolNone:    "none",
	ToolZoomIn:  "zoomin",
	ToolZoomOut: "zoomout",
	ToolPaint:   "paint",
	ToolErase:   "erase",
	ToolBox:     "box",
	ToolEdit:    "edit",
	ToolPolygon: "polygon",
}

func (t Tool) String() string {
	if t >= 0 && int(t) < len(toolNames) {
		return toolNames[t]
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// Tools lists every selectable tool.
func Tools() []Tool {
	return []Tool{ToolNone, ToolZoomIn, ToolZoomOut, ToolPaint, ToolErase, ToolBox, ToolEdit, ToolPolygon}
}

// ParseTool looks a tool up by name.
func ParseTool(name string) (Tool, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range toolNames {
		if n == name {
			return Tool(i), nil
		}
	}
	return ToolNone, fmt.Errorf("unknown tool %q", name)
}

// resting is the state a tool waits in.
func (t Tool) resting() State {
	switch t {
	case ToolZoomIn:
		return StateZoomIn
	case ToolZoomOut:
		return StateZoomOut
	case ToolPaint:
		return StatePaint
	case ToolErase:
		return StateErase
	case ToolBox:
		return StateBox
	case ToolEdit:
		return StateEdit
	case ToolPolygon:
		return StatePolygon
	}
	return StateIdle
}

// Key is a keyboard command understood by the session.
type Key int

const (
	KeyDelete Key = iota + 1
	KeyEscape
)

func (k Key) String() string {
	switch k {
	case KeyDelete:
		return "delete"
	case KeyEscape:
		return "escape"
	}
	return fmt.Sprintf("Key(%d)", int(k))
}
