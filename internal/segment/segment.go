// Package segment runs a semantic segmentation classifier over the image or
// the selected region and turns its class-id buffer into a mask overlay.
package segment

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sort"

	xdraw "golang.org/x/image/draw"

	"github.com/example/labelpaint/internal/model"
)

// MinRegion is the smallest accepted selection side, exclusive.
const MinRegion = 8

var (
	ErrNoSelection    = errors.New("open an image and select a region before segmenting")
	ErrRegionTooSmall = errors.New("the selected region is too small")
	ErrBadResult      = errors.New("classifier returned a malformed result")
)

// Result is the classifier output: a row-major buffer of class ids at the
// model's own resolution. Id 0 is background. Names maps every other id
// present in IDs to a class name.
type Result struct {
	IDs    []int
	Width  int
	Height int
	Names  map[int]string
}

// Validate checks that the buffer is complete and every id is named.
func (r Result) Validate() error {
	if r.Width <= 0 || r.Height <= 0 || len(r.IDs) != r.Width*r.Height {
		return fmt.Errorf("%w: %dx%d with %d ids", ErrBadResult, r.Width, r.Height, len(r.IDs))
	}
	for _, id := range r.IDs {
		if id == 0 {
			continue
		}
		if _, ok := r.Names[id]; !ok {
			return fmt.Errorf("%w: id %d has no name", ErrBadResult, id)
		}
	}
	return nil
}

// Classifier labels every pixel of an image.
type Classifier interface {
	Classify(ctx context.Context, img image.Image) (Result, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, img image.Image) (Result, error)

// Classify calls f.
func (f ClassifierFunc) Classify(ctx context.Context, img image.Image) (Result, error) {
	return f(ctx, img)
}

// Request names the pixels to classify. Rect is in image coordinates.
type Request struct {
	Image image.Image
	Rect  image.Rectangle
}

// WholeImage requests classification of the full image.
func WholeImage(img image.Image) (Request, error) {
	if img == nil {
		return Request{}, ErrNoSelection
	}
	return Request{Image: img, Rect: img.Bounds()}, nil
}

// SelectionRequest requests classification of the area under box. Both sides
// must be larger than MinRegion pixels.
func SelectionRequest(img image.Image, box model.Box) (Request, error) {
	if img == nil || box.Empty() {
		return Request{}, ErrNoSelection
	}
	min, max := box.Bounds()
	if max.X-min.X <= MinRegion || max.Y-min.Y <= MinRegion {
		return Request{}, ErrRegionTooSmall
	}
	r := box.Rect().Intersect(img.Bounds())
	if r.Dx() <= MinRegion || r.Dy() <= MinRegion {
		return Request{}, ErrRegionTooSmall
	}
	return Request{Image: img, Rect: r}, nil
}

// Outcome is a validated result tied to the rectangle it covers.
type Outcome struct {
	Result
	Rect image.Rectangle
}

// Run crops the request and classifies it.
func Run(ctx context.Context, c Classifier, req Request) (Outcome, error) {
	if req.Image == nil || req.Rect.Empty() {
		return Outcome{}, ErrNoSelection
	}
	res, err := c.Classify(ctx, crop(req.Image, req.Rect))
	if err != nil {
		return Outcome{}, fmt.Errorf("classify: %w", err)
	}
	if err := res.Validate(); err != nil {
		return Outcome{}, err
	}
	return Outcome{Result: res, Rect: req.Rect}, nil
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// crop returns the area r of img keeping image coordinates.
func crop(img image.Image, r image.Rectangle) image.Image {
	if s, ok := img.(subImager); ok {
		return s.SubImage(r)
	}
	out := image.NewRGBA(r)
	draw.Draw(out, r, img, r.Min, draw.Src)
	return out
}

// PresentIDs returns the non-background ids found in the buffer, ascending.
func (o Outcome) PresentIDs() []int {
	seen := make(map[int]bool)
	for _, id := range o.IDs {
		if id != 0 {
			seen[id] = true
		}
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ClassNames returns the names of the present classes in ascending id order.
func (o Outcome) ClassNames() []string {
	ids := o.PresentIDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = o.Names[id]
	}
	return names
}

// Overlay renders the buffer with colors and scales it nearest-neighbour to
// the size of Rect. Background and ids without a colour stay transparent.
// The returned image has its origin at (0,0).
func (o Outcome) Overlay(colors map[int]color.RGBA) *image.RGBA {
	small := image.NewRGBA(image.Rect(0, 0, o.Width, o.Height))
	for y := 0; y < o.Height; y++ {
		for x := 0; x < o.Width; x++ {
			id := o.IDs[y*o.Width+x]
			if id == 0 {
				continue
			}
			if c, ok := colors[id]; ok {
				small.SetRGBA(x, y, c)
			}
		}
	}
	out := image.NewRGBA(image.Rect(0, 0, o.Rect.Dx(), o.Rect.Dy()))
	xdraw.NearestNeighbor.Scale(out, out.Bounds(), small, small.Bounds(), xdraw.Src, nil)
	return out
}
