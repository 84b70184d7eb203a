package editor

import (
	"image"
	"image/color"

	"github.com/example/labelpaint/internal/segment"
)

// SegmentRequest describes what to classify: the box when one is drawn,
// otherwise the whole image. Rejections are kept as the user message.
func (s *Session) SegmentRequest(img image.Image, wholeImage bool) (segment.Request, error) {
	var (
		req segment.Request
		err error
	)
	if !s.loaded {
		err = segment.ErrNoSelection
	} else if wholeImage {
		req, err = segment.WholeImage(img)
	} else {
		req, err = segment.SelectionRequest(img, s.box)
	}
	if err != nil {
		s.lastError = err.Error()
		return segment.Request{}, err
	}
	return req, nil
}

// ApplySegmentation merges a classifier outcome: the present class names are
// imported as one batch, then the coloured overlay is composited into the
// mask at the outcome's rectangle. A rejected import leaves the mask alone.
func (s *Session) ApplySegmentation(o segment.Outcome) error {
	if !s.loaded {
		return s.reject("applySegmentation", ErrNoImage)
	}
	if _, err := s.ImportClasses(o.ClassNames()); err != nil {
		return err
	}
	colors := make(map[int]color.RGBA)
	for _, id := range o.PresentIDs() {
		if c, ok := s.classes.FindName(o.Names[id]); ok {
			colors[id] = c.Color
		}
	}
	s.mask.Composite(o.Overlay(colors), o.Rect.Min)
	return nil
}
