package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/example/labelpaint/internal/export"
	"github.com/example/labelpaint/internal/palette"
	"github.com/example/labelpaint/internal/render"
)

// previewCmd lays an annotation raster over its source image.
type previewCmd struct {
	file    string
	mask    string
	output  string
	opacity float64
	raw     bool
	*root
	fs     *flag.FlagSet
	stdout io.Writer
}

func (p *previewCmd) FlagSet() *flag.FlagSet {
	return p.fs
}

func parsePreviewCmd(args []string, r *root) (*previewCmd, error) {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	c := &previewCmd{root: r, fs: fs, stdout: os.Stdout}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.file, "file", "", "source image")
	fs.StringVar(&c.mask, "mask", "", "annotation raster written by export")
	fs.StringVar(&c.output, "output", "preview.png", "composited output path")
	fs.Float64Var(&c.opacity, "opacity", r.cfg().MaskOpacity, "mask opacity between 0 and 1")
	fs.BoolVar(&c.raw, "raw", false, "treat -mask as a colour mask instead of class indices")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.file == "" || c.mask == "" || fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	if c.opacity < 0 || c.opacity > 1 {
		return nil, fmt.Errorf("opacity %v out of range [0, 1]", c.opacity)
	}
	return c, nil
}

func (p *previewCmd) Run() error {
	base, err := loadImage(p.file)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	labels, err := loadImage(p.mask)
	if err != nil {
		return fmt.Errorf("failed to open mask: %w", err)
	}
	if labels.Bounds().Size() != base.Bounds().Size() {
		return fmt.Errorf("mask %v does not match image %v", labels.Bounds().Size(), base.Bounds().Size())
	}
	var overlay image.Image = labels
	if !p.raw {
		entries := palette.Default().Entries()
		colors := make([]color.RGBA, len(entries))
		for i, e := range entries {
			colors[i] = e.Color
		}
		overlay = render.Colorize(labels, colors)
	}
	opts := render.DefaultPreviewOptions()
	opts.Opacity = p.opacity
	if p.root != nil && p.activeTheme != nil {
		opts.CheckerLite = p.activeTheme.CheckerLight
		opts.CheckerDark = p.activeTheme.CheckerDark
	}
	out := render.Preview(base, overlay, nil, opts)
	if err := export.SaveFile(p.output, out); err != nil {
		return fmt.Errorf("failed to save preview: %w", err)
	}
	p.notifyExport(p.output)
	return writef(p.stdout, "saved %s\n", p.output)
}
