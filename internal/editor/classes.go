package editor

import (
	"github.com/example/labelpaint/internal/model"
)

// Classes returns the classes in rank order.
func (s *Session) Classes() []model.Class { return s.classes.All() }

// ClassNames returns the class names in rank order.
func (s *Session) ClassNames() []string { return s.classes.Names() }

// ActiveClass returns the class used for painting and new polygons.
func (s *Session) ActiveClass() (model.Class, bool) {
	if s.activeClass == "" {
		return model.Class{}, false
	}
	return s.classes.Find(s.activeClass)
}

// ClassesImported reports whether a bulk import has happened.
func (s *Session) ClassesImported() bool { return s.classesImported }

// CreateClass adds a class and makes it active.
func (s *Session) CreateClass(name string) (model.Class, error) {
	c, err := s.classes.Create(name, s.alloc)
	if err != nil {
		return model.Class{}, err
	}
	s.activeClass = c.ID
	return c, nil
}

// ImportClasses adds every new name from names. Nothing is added if any name
// is invalid or the palette cannot colour them all; the failure is also kept
// as the user message.
func (s *Session) ImportClasses(names []string) ([]model.Class, error) {
	added, err := s.classes.Import(names, s.alloc)
	if err != nil {
		s.lastError = err.Error()
		return nil, err
	}
	if s.activeClass == "" && s.classes.Len() > 0 {
		s.activeClass = s.classes.At(0).ID
	}
	s.classesImported = true
	return added, nil
}

// RenameClass renames the class with id.
func (s *Session) RenameClass(id, name string) error {
	return s.classes.Rename(id, name)
}

// DeleteClass removes the class with id together with its polygons. If it
// was active, the first remaining class becomes active.
func (s *Session) DeleteClass(id string) error {
	if err := s.classes.Delete(id); err != nil {
		return err
	}
	kept := s.polygons[:0]
	active := -1
	removedActive := false
	for i, p := range s.polygons {
		if p.ClassID == id {
			if i == s.activePolygon {
				removedActive = true
			}
			continue
		}
		if i == s.activePolygon {
			active = len(kept)
		}
		kept = append(kept, p)
	}
	clear(s.polygons[len(kept):])
	s.polygons = kept
	s.activePolygon = active
	if removedActive {
		s.activePoint = -1
		switch s.state {
		case StateEditing:
			s.state = StateEdit
		case StatePolygoning:
			s.state = StatePolygon
		}
	}
	if s.activeClass == id {
		s.activeClass = ""
		if s.classes.Len() > 0 {
			s.activeClass = s.classes.At(0).ID
		}
	}
	return nil
}

// SetActiveClass makes the class with id active. The active polygon, if
// any, is moved to that class.
func (s *Session) SetActiveClass(id string) error {
	c, ok := s.classes.Find(id)
	if !ok {
		return s.reject("setActiveClass", model.ErrClassNotFound)
	}
	s.activeClass = c.ID
	if s.activePolygon >= 0 {
		s.polygons[s.activePolygon].ClassID = c.ID
		s.polygons[s.activePolygon].Color = c.Color
	}
	return nil
}
