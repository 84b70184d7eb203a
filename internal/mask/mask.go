// Package mask implements the paintable raster layer that sits above the
// source image.
package mask

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/example/labelpaint/internal/model"
)

// Layer owns an alpha-premultiplied RGBA surface the size of the loaded
// image. Brushes are hard edged so painted pixels always carry the exact
// class colour.
type Layer struct {
	img *image.RGBA
}

// New returns a transparent layer covering bounds.
func New(bounds image.Rectangle) *Layer {
	return &Layer{img: image.NewRGBA(bounds)}
}

// Reset discards the content and resizes the layer to bounds.
func (l *Layer) Reset(bounds image.Rectangle) {
	l.img = image.NewRGBA(bounds)
}

// Bounds returns the layer extent.
func (l *Layer) Bounds() image.Rectangle {
	return l.img.Bounds()
}

// Image exposes the backing surface for read-only rendering.
func (l *Layer) Image() *image.RGBA {
	return l.img
}

// Snapshot returns a deep copy of the surface.
func (l *Layer) Snapshot() *image.RGBA {
	out := image.NewRGBA(l.img.Bounds())
	copy(out.Pix, l.img.Pix)
	return out
}

// Empty reports whether no pixel has any coverage.
func (l *Layer) Empty() bool {
	for i := 3; i < len(l.img.Pix); i += 4 {
		if l.img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

// Dab paints a filled disc of the given diameter.
func (l *Layer) Dab(center model.Point, diameter float64, col color.RGBA) {
	l.capsule(center, center, diameter, premultiply(col))
}

// Stroke paints a segment with round caps. Consecutive strokes sharing
// endpoints join smoothly.
func (l *Layer) Stroke(from, to model.Point, width float64, col color.RGBA) {
	l.capsule(from, to, width, premultiply(col))
}

// EraseDab clears a disc of the given diameter.
func (l *Layer) EraseDab(center model.Point, diameter float64) {
	l.capsule(center, center, diameter, color.RGBA{})
}

// EraseStroke clears a segment with round caps.
func (l *Layer) EraseStroke(from, to model.Point, width float64) {
	l.capsule(from, to, width, color.RGBA{})
}

// Composite draws overlay source-over onto the layer with its top-left at at.
// Transparent overlay pixels leave the layer untouched.
func (l *Layer) Composite(overlay image.Image, at image.Point) {
	ob := overlay.Bounds()
	dr := image.Rectangle{Min: at, Max: at.Add(ob.Size())}.Intersect(l.img.Bounds())
	if dr.Empty() {
		return
	}
	sp := ob.Min.Add(dr.Min.Sub(at))
	draw.Draw(l.img, dr, overlay, sp, draw.Over)
}

// capsule sets every pixel whose centre lies within width/2 of the segment
// from a to b.
func (l *Layer) capsule(a, b model.Point, width float64, col color.RGBA) {
	r := width / 2
	if r <= 0 {
		return
	}
	area := image.Rect(
		int(math.Floor(math.Min(a.X, b.X)-r)),
		int(math.Floor(math.Min(a.Y, b.Y)-r)),
		int(math.Ceil(math.Max(a.X, b.X)+r))+1,
		int(math.Ceil(math.Max(a.Y, b.Y)+r))+1,
	).Intersect(l.img.Bounds())
	r2 := r * r
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			p := model.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			if segmentDist2(p, a, b) <= r2 {
				l.img.SetRGBA(x, y, col)
			}
		}
	}
}

func segmentDist2(p, a, b model.Point) float64 {
	d := b.Sub(a)
	len2 := d.X*d.X + d.Y*d.Y
	if len2 == 0 {
		return p.Dist2(a)
	}
	t := ((p.X-a.X)*d.X + (p.Y-a.Y)*d.Y) / len2
	t = math.Max(0, math.Min(1, t))
	return p.Dist2(model.Point{X: a.X + t*d.X, Y: a.Y + t*d.Y})
}

func premultiply(c color.RGBA) color.RGBA {
	if c.A == 255 {
		return c
	}
	a := uint32(c.A)
	return color.RGBA{
		R: uint8(uint32(c.R) * a / 255),
		G: uint8(uint32(c.G) * a / 255),
		B: uint8(uint32(c.B) * a / 255),
		A: c.A,
	}
}
