// Package clipboard moves annotation rasters, source images and class lists
// through the desktop clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"image"
	"image/draw"
	"image/png"
	"strings"

	"github.com/example/labelpaint/internal/export"
)

var (
	// ErrNoImage is returned when the clipboard holds no image data.
	ErrNoImage = errors.New("clipboard does not contain image data")
	// ErrNoText is returned when the clipboard holds no text data.
	ErrNoText = errors.New("clipboard does not contain text data")
)

// CopyAnnotation publishes an exported annotation raster as PNG.
func CopyAnnotation(img image.Image) error {
	var buf bytes.Buffer
	if err := export.WritePNG(&buf, img); err != nil {
		return err
	}
	return writePNG(buf.Bytes())
}

// PasteImage reads a PNG image from the clipboard to use as the source image.
func PasteImage() (*image.RGBA, error) {
	data, err := readPNG()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return toRGBA(img), nil
}

// CopyClassNames writes the class list as the same JSON array the class file uses.
func CopyClassNames(names []string) error {
	if len(names) == 0 {
		return export.ErrNoClasses
	}
	var buf bytes.Buffer
	if err := export.EncodeClassNames(&buf, names); err != nil {
		return err
	}
	return writeText(buf.String())
}

// PasteClassNames parses a JSON array of class names from the clipboard.
func PasteClassNames() ([]string, error) {
	text, err := readText()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}
	return export.DecodeClassNames(strings.NewReader(text))
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
