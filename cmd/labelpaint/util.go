package main

import (
	"fmt"
	"image"
	"image/draw"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/example/labelpaint/assets"
	"github.com/example/labelpaint/internal/config"
	"github.com/example/labelpaint/internal/editor"
	"github.com/example/labelpaint/internal/export"
)

type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, ";")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func closeWithLog(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Printf("%s: close: %v", name, err)
	}
}

// loadImage decodes any registered image format into an RGBA copy.
func loadImage(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(path, f)
	dec, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if rgba, ok := dec.(*image.RGBA); ok {
		return rgba, nil
	}
	img := image.NewRGBA(dec.Bounds())
	draw.Draw(img, img.Bounds(), dec, dec.Bounds().Min, draw.Src)
	return img, nil
}

// newSession builds a session carrying the configured palette and tool sizes.
func newSession(cfg *config.Config) *editor.Session {
	return editor.New(
		editor.WithAllocator(cfg.ClassPalette()),
		editor.WithBrushSize(cfg.BrushSize),
		editor.WithEraserSize(cfg.EraserSize),
		editor.WithMaskOpacity(cfg.MaskOpacity),
	)
}

// importClasses loads a class list file into the session.
func importClasses(sess *editor.Session, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer closeWithLog(path, f)
	names, err := export.DecodeClassNames(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if _, err := sess.ImportClasses(names); err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	return nil
}

// importPreset loads an embedded preset into the session.
func importPreset(sess *editor.Session, name string) error {
	names, err := assets.Preset(name)
	if err != nil {
		return err
	}
	if _, err := sess.ImportClasses(names); err != nil {
		return fmt.Errorf("import preset %s: %w", name, err)
	}
	return nil
}

// outputPath resolves where the annotation raster for source goes: explicit
// wins, then the configured save directory, then the working directory. It
// never returns the source itself.
func outputPath(explicit, source string, cfg *config.Config) string {
	if explicit != "" {
		return explicit
	}
	name := export.FileName(source)
	out := name
	if cfg != nil && cfg.SaveDir != "" {
		out = filepath.Join(cfg.SaveDir, name)
	}
	if sameFile(out, source) {
		out = strings.TrimSuffix(out, ".png") + ".annotations.png"
	}
	return out
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// parseRect reads "x0,y0,x1,y1".
func parseRect(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("rect %q: want x0,y0,x1,y1", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("rect %q: %w", s, err)
		}
		v[i] = n
	}
	return image.Rect(v[0], v[1], v[2], v[3]), nil
}
