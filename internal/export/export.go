// Package export turns the editor's mask and polygons into a class-indexed
// annotation raster.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/vector"

	"github.com/example/labelpaint/internal/model"
)

var ErrNoImage = errors.New("open an image before exporting")

// Snapshot is an immutable copy of everything the exporter reads. Palette
// holds the class colours in rank order.
type Snapshot struct {
	Mask     *image.RGBA
	Polygons []model.Polygon
	Palette  []color.RGBA
}

// Flatten composites the mask and then every polygon, in list order, onto a
// new surface. Polygon fills are hard edged.
func Flatten(s Snapshot) (*image.RGBA, error) {
	if s.Mask == nil {
		return nil, ErrNoImage
	}
	b := s.Mask.Bounds()
	out := image.NewRGBA(b)
	copy(out.Pix, s.Mask.Pix)
	for i := range s.Polygons {
		fillPolygon(out, &s.Polygons[i])
	}
	return out, nil
}

// coverageThreshold is the minimum rasterizer coverage for a pixel to take
// the polygon colour.
const coverageThreshold = 0x80

// maxCoord bounds vertex coordinates handed to the rasterizer. Beyond it
// float32 no longer holds whole pixels.
const maxCoord = 1 << 24

func rasterizable(p *model.Polygon) bool {
	for _, pt := range p.Points {
		if !pt.Finite() || math.Abs(pt.X) > maxCoord || math.Abs(pt.Y) > maxCoord {
			return false
		}
	}
	return true
}

func fillPolygon(dst *image.RGBA, p *model.Polygon) {
	if p.Len() < 3 || !rasterizable(p) {
		return
	}
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	z := vector.NewRasterizer(w, h)
	ox, oy := float32(b.Min.X), float32(b.Min.Y)
	z.MoveTo(float32(p.Points[0].X)-ox, float32(p.Points[0].Y)-oy)
	for _, pt := range p.Points[1:] {
		z.LineTo(float32(pt.X)-ox, float32(pt.Y)-oy)
	}
	z.ClosePath()
	cov := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(cov, cov.Bounds(), image.Opaque, image.Point{})
	col := p.Color
	col.A = 255
	for y := 0; y < h; y++ {
		row := cov.Pix[y*cov.Stride : y*cov.Stride+w]
		for x, a := range row {
			if a >= coverageThreshold {
				dst.SetRGBA(b.Min.X+x, b.Min.Y+y, col)
			}
		}
	}
}

// Annotations flattens s and quantizes the result against s.Palette.
func Annotations(ctx context.Context, s Snapshot, workers int) (*image.RGBA, error) {
	flat, err := Flatten(s)
	if err != nil {
		return nil, err
	}
	return Quantize(ctx, flat, s.Palette, workers)
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SaveFile writes img to path, creating parent directories.
func SaveFile(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FileName derives the annotation file name from the source image name.
func FileName(imageName string) string {
	base := filepath.Base(imageName)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "annotations.png"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
}
