package editor

import (
	"github.com/example/labelpaint/internal/model"
)

// PointerDown handles a primary button press at p in image coordinates.
func (s *Session) PointerDown(p model.Point) error {
	if !s.loaded {
		return s.reject("pointerDown", ErrNoImage)
	}
	if !p.Finite() {
		return s.reject("pointerDown", ErrBadPoint)
	}
	s.setCursor(p)
	switch s.state {
	case StateBox:
		s.box = model.NewBox(p)
		s.activePoint = model.BoxCreatePoint
		s.state = StateBoxing
	case StatePaint:
		c, ok := s.ActiveClass()
		if !ok {
			return s.reject("pointerDown", ErrNoActiveClass)
		}
		s.strokeColor = c
		s.strokeLast = p
		s.mask.Dab(p, float64(s.brushSize), c.Color)
		s.state = StatePainting
	case StateErase:
		s.strokeLast = p
		s.mask.EraseDab(p, float64(s.eraserSize))
		s.state = StateErasing
	case StateEdit:
		s.activePolygon = -1
		s.activePoint = -1
	case StatePolygon:
		if s.activePolygon < 0 {
			return s.createPolygon(p)
		}
		poly := &s.polygons[s.activePolygon]
		if poly.Len() > 0 && p.Dist2(poly.Points[0]) < closeDist2 {
			s.activePolygon = -1
			s.activePoint = -1
			return nil
		}
		s.activePoint = poly.Append(p)
		s.state = StatePolygoning
	default:
		return s.reject("pointerDown", ErrWrongState)
	}
	return nil
}

func (s *Session) createPolygon(p model.Point) error {
	c, ok := s.ActiveClass()
	if !ok {
		return s.reject("createPolygon", ErrNoActiveClass)
	}
	poly := model.Polygon{Points: []model.Point{p}, ClassID: c.ID, Color: c.Color}
	s.polygons = append([]model.Polygon{poly}, s.polygons...)
	s.activePolygon = 0
	s.activePoint = 0
	s.state = StatePolygoning
	return nil
}

// PointerMove handles pointer motion. Outside a gesture it only updates the
// cursor.
func (s *Session) PointerMove(p model.Point) error {
	if !p.Finite() {
		return s.reject("pointerMove", ErrBadPoint)
	}
	s.setCursor(p)
	switch s.state {
	case StatePainting:
		s.mask.Stroke(s.strokeLast, p, float64(s.brushSize), s.strokeColor.Color)
		s.strokeLast = p
	case StateErasing:
		s.mask.EraseStroke(s.strokeLast, p, float64(s.eraserSize))
		s.strokeLast = p
	case StateBoxing:
		if err := s.box.MovePoint(s.activePoint, p); err != nil {
			return s.reject("pointerMove", err)
		}
	case StateEditing, StatePolygoning:
		if s.activePolygon < 0 {
			return s.reject("pointerMove", ErrNoActivePolygon)
		}
		if err := s.polygons[s.activePolygon].SetVertex(s.activePoint, p); err != nil {
			return s.reject("pointerMove", err)
		}
	}
	return nil
}

// PointerUp ends the current gesture and returns to the tool's resting
// state. In edit mode the dragged point stays selected so it can be deleted.
func (s *Session) PointerUp() error {
	switch s.state {
	case StateBoxing:
		s.activePoint = -1
		s.state = StateBox
	case StatePainting:
		s.state = StatePaint
	case StateErasing:
		s.state = StateErase
	case StateEditing:
		s.state = StateEdit
	case StatePolygoning:
		s.activePoint = -1
		s.state = StatePolygon
	default:
		s.log.Debug("pointer up ignored", "state", s.state.String())
	}
	return nil
}

// KeyDown handles a keyboard command.
func (s *Session) KeyDown(k Key) error {
	switch k {
	case KeyDelete:
		switch s.state {
		case StateBox:
			return s.ClearBox()
		case StateEdit:
			if s.activePoint >= 0 {
				return s.DeletePoint()
			}
			return s.DeletePolygon()
		}
	case KeyEscape:
		if s.state == StatePolygon || s.state == StatePolygoning {
			return s.CancelPolygon()
		}
	}
	return s.reject("key "+k.String(), ErrWrongState)
}

// ClearBox drops the region of interest.
func (s *Session) ClearBox() error {
	if s.state != StateBox && s.state != StateBoxing {
		return s.reject("clearBox", ErrWrongState)
	}
	s.box = model.Box{}
	s.activePoint = -1
	s.state = StateBox
	return nil
}

// SetActivePoint selects a box corner or a vertex of the active polygon by
// flat even index and starts dragging it.
func (s *Session) SetActivePoint(index int) error {
	switch s.state {
	case StateBox:
		if s.box.Empty() {
			return s.reject("setActivePoint", ErrNoBox)
		}
		if !model.ValidIndex(index, 4) {
			return s.reject("setActivePoint", model.ErrPointIndex)
		}
		s.activePoint = index
		s.state = StateBoxing
	case StateEdit:
		if s.activePolygon < 0 {
			return s.reject("setActivePoint", ErrNoActivePolygon)
		}
		if !model.ValidIndex(index, s.polygons[s.activePolygon].Len()) {
			return s.reject("setActivePoint", model.ErrPointIndex)
		}
		s.activePoint = index
		s.state = StateEditing
	default:
		return s.reject("setActivePoint", ErrWrongState)
	}
	return nil
}

// SetActivePolygon selects polygon i for editing and makes its class active.
func (s *Session) SetActivePolygon(i int) error {
	if s.state != StateEdit {
		return s.reject("setActivePolygon", ErrWrongState)
	}
	if i < 0 || i >= len(s.polygons) {
		return s.reject("setActivePolygon", ErrNoActivePolygon)
	}
	s.activePolygon = i
	s.activePoint = -1
	if _, ok := s.classes.Find(s.polygons[i].ClassID); ok {
		s.activeClass = s.polygons[i].ClassID
	}
	return nil
}

// ClearActivePolygon drops the polygon selection.
func (s *Session) ClearActivePolygon() error {
	if s.state != StateEdit {
		return s.reject("clearActivePolygon", ErrWrongState)
	}
	s.activePolygon = -1
	s.activePoint = -1
	return nil
}

// InsertPoint adds p after the vertex at index of the active polygon and
// starts dragging the new vertex.
func (s *Session) InsertPoint(index int, p model.Point) error {
	if s.state != StateEdit {
		return s.reject("insertPoint", ErrWrongState)
	}
	if s.activePolygon < 0 {
		return s.reject("insertPoint", ErrNoActivePolygon)
	}
	if !p.Finite() {
		return s.reject("insertPoint", ErrBadPoint)
	}
	at, err := s.polygons[s.activePolygon].InsertAfter(index, p)
	if err != nil {
		return s.reject("insertPoint", err)
	}
	s.activePoint = at
	s.state = StateEditing
	return nil
}

// DeletePoint removes the selected vertex. A polygon left without vertices
// is removed too.
func (s *Session) DeletePoint() error {
	if s.state != StateEdit {
		return s.reject("deletePoint", ErrWrongState)
	}
	if s.activePolygon < 0 {
		return s.reject("deletePoint", ErrNoActivePolygon)
	}
	if s.activePoint < 0 {
		return s.reject("deletePoint", ErrNoActivePoint)
	}
	poly := &s.polygons[s.activePolygon]
	if err := poly.Remove(s.activePoint); err != nil {
		return s.reject("deletePoint", err)
	}
	s.activePoint = -1
	if poly.Len() == 0 {
		s.removePolygon(s.activePolygon)
		s.activePolygon = -1
	}
	return nil
}

// DeletePolygon removes the selected polygon.
func (s *Session) DeletePolygon() error {
	if s.state != StateEdit && s.state != StatePolygoning {
		return s.reject("deletePolygon", ErrWrongState)
	}
	if s.activePolygon < 0 {
		return s.reject("deletePolygon", ErrNoActivePolygon)
	}
	s.removePolygon(s.activePolygon)
	s.activePolygon = -1
	s.activePoint = -1
	if s.state == StatePolygoning {
		s.state = StatePolygon
	}
	return nil
}

// CancelPolygon discards the polygon being drawn.
func (s *Session) CancelPolygon() error {
	if s.state != StatePolygon && s.state != StatePolygoning {
		return s.reject("cancelPolygon", ErrWrongState)
	}
	if s.activePolygon < 0 {
		return s.reject("cancelPolygon", ErrNoActivePolygon)
	}
	s.removePolygon(s.activePolygon)
	s.activePolygon = -1
	s.activePoint = -1
	s.state = StatePolygon
	return nil
}

// Press routes a click the way the canvas does: box corners and the active
// polygon's vertices and edge handles are picked first, then polygons, and
// anything else is a plain PointerDown.
func (s *Session) Press(p model.Point) error {
	if !p.Finite() {
		return s.reject("press", ErrBadPoint)
	}
	switch s.state {
	case StateBox:
		if !s.box.Empty() {
			if i := model.HitVertex(s.box.Points(), p, model.HitRadius); i >= 0 {
				s.setCursor(p)
				return s.SetActivePoint(i)
			}
		}
	case StateEdit:
		if s.activePolygon >= 0 {
			poly := &s.polygons[s.activePolygon]
			if i := model.HitVertex(poly.Points, p, model.HitRadius); i >= 0 {
				s.setCursor(p)
				return s.SetActivePoint(i)
			}
			if i := model.HitMidpoint(poly, p, model.HitRadius); i >= 0 {
				s.setCursor(p)
				return s.InsertPoint(i, p)
			}
		}
		if i := s.polygonAt(p); i >= 0 {
			s.setCursor(p)
			if i == s.activePolygon {
				return nil
			}
			return s.SetActivePolygon(i)
		}
	}
	return s.PointerDown(p)
}

// polygonAt returns the polygon under p, preferring the active one and then
// the most recently created.
func (s *Session) polygonAt(p model.Point) int {
	if s.activePolygon >= 0 && s.polygons[s.activePolygon].Contains(p) {
		return s.activePolygon
	}
	for i := range s.polygons {
		if s.polygons[i].Contains(p) {
			return i
		}
	}
	return -1
}

func (s *Session) removePolygon(i int) {
	s.polygons = append(s.polygons[:i], s.polygons[i+1:]...)
}

func (s *Session) setCursor(p model.Point) {
	s.cursor = p
	s.cursorSet = true
}
