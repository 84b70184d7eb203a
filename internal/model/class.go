package model

import (
	"errors"
	"fmt"
	"image/color"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidClassName   = errors.New("class name may contain only letters, spaces and hyphens")
	ErrDuplicateClassName = errors.New("class name already exists")
	ErrPaletteExhausted   = errors.New("no more colours are available for new classes")
	ErrClassNotFound      = errors.New("class not found")
	ErrPointIndex         = errors.New("point index out of range")
)

var classNamePattern = regexp.MustCompile(`^[A-Za-z \-]+$`)

// ValidateClassName checks the characters allowed in a class name.
func ValidateClassName(name string) error {
	if !classNamePattern.MatchString(name) {
		return fmt.Errorf("%q: %w", name, ErrInvalidClassName)
	}
	return nil
}

// Class is a named label. Its rank in the owning ClassList determines the
// value written to exported annotations.
type Class struct {
	ID    string
	Name  string
	Color color.RGBA
}

// Allocator hands out class colours. used holds the colours already taken.
type Allocator interface {
	Allocate(used []color.RGBA) (color.RGBA, bool)
	Remaining(used []color.RGBA) int
}

// ClassList is the ordered list of classes. Names are stored lowercased and
// are unique ignoring case.
type ClassList struct {
	classes []Class
	newID   func() string
}

// NewClassList returns an empty list that assigns random UUIDs.
func NewClassList() *ClassList {
	return &ClassList{newID: uuid.NewString}
}

// Len returns the number of classes.
func (l *ClassList) Len() int {
	return len(l.classes)
}

// At returns the class at rank i.
func (l *ClassList) At(i int) Class {
	return l.classes[i]
}

// All returns a copy of the classes in rank order.
func (l *ClassList) All() []Class {
	return append([]Class(nil), l.classes...)
}

// Rank returns the position of the class with id, or -1.
func (l *ClassList) Rank(id string) int {
	for i, c := range l.classes {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Find looks up a class by id.
func (l *ClassList) Find(id string) (Class, bool) {
	if i := l.Rank(id); i >= 0 {
		return l.classes[i], true
	}
	return Class{}, false
}

// FindName looks up a class by name ignoring case.
func (l *ClassList) FindName(name string) (Class, bool) {
	for _, c := range l.classes {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Class{}, false
}

// Colors returns the class colours in rank order.
func (l *ClassList) Colors() []color.RGBA {
	out := make([]color.RGBA, len(l.classes))
	for i, c := range l.classes {
		out[i] = c.Color
	}
	return out
}

// Names returns the class names in rank order.
func (l *ClassList) Names() []string {
	out := make([]string, len(l.classes))
	for i, c := range l.classes {
		out[i] = c.Name
	}
	return out
}

// Create appends a class named name with a colour from alloc.
func (l *ClassList) Create(name string, alloc Allocator) (Class, error) {
	if err := ValidateClassName(name); err != nil {
		return Class{}, err
	}
	if _, ok := l.FindName(name); ok {
		return Class{}, fmt.Errorf("%q: %w", name, ErrDuplicateClassName)
	}
	col, ok := alloc.Allocate(l.Colors())
	if !ok {
		return Class{}, ErrPaletteExhausted
	}
	c := Class{ID: l.id(), Name: strings.ToLower(name), Color: col}
	l.classes = append(l.classes, c)
	return c, nil
}

// Import appends every name not already present. The batch is applied all or
// nothing: an invalid name or too few remaining colours rejects it entirely.
// Names already present, or repeated within names, are skipped.
func (l *ClassList) Import(names []string, alloc Allocator) ([]Class, error) {
	var fresh []string
	seen := make(map[string]bool)
	for _, n := range names {
		if err := ValidateClassName(n); err != nil {
			return nil, err
		}
		key := strings.ToLower(n)
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, ok := l.FindName(key); ok {
			continue
		}
		fresh = append(fresh, key)
	}
	if len(fresh) == 0 {
		return nil, nil
	}
	used := l.Colors()
	if alloc.Remaining(used) < len(fresh) {
		return nil, fmt.Errorf("import %d classes: %w", len(fresh), ErrPaletteExhausted)
	}
	added := make([]Class, 0, len(fresh))
	for _, n := range fresh {
		col, ok := alloc.Allocate(used)
		if !ok {
			return nil, ErrPaletteExhausted
		}
		used = append(used, col)
		added = append(added, Class{ID: l.id(), Name: n, Color: col})
	}
	l.classes = append(l.classes, added...)
	return added, nil
}

// Rename changes the name of the class with id.
func (l *ClassList) Rename(id, name string) error {
	i := l.Rank(id)
	if i < 0 {
		return fmt.Errorf("rename %s: %w", id, ErrClassNotFound)
	}
	if err := ValidateClassName(name); err != nil {
		return err
	}
	if c, ok := l.FindName(name); ok && c.ID != id {
		return fmt.Errorf("%q: %w", name, ErrDuplicateClassName)
	}
	l.classes[i].Name = strings.ToLower(name)
	return nil
}

// Delete removes the class with id. Callers owning polygons are responsible
// for cascading the removal.
func (l *ClassList) Delete(id string) error {
	i := l.Rank(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrClassNotFound)
	}
	l.classes = append(l.classes[:i], l.classes[i+1:]...)
	return nil
}

// SetIDFunc replaces the id generator.
func (l *ClassList) SetIDFunc(f func() string) {
	l.newID = f
}

func (l *ClassList) id() string {
	if l.newID == nil {
		return uuid.NewString()
	}
	return l.newID()
}
