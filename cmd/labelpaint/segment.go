package main

import (
	"flag"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/example/labelpaint/internal/segment"
)

// segmentCmd classifies an image from a label map and exports the result.
type segmentCmd struct {
	*root
	fs *flag.FlagSet
	sessionFlags
	rect   string
	stride int
	stdout io.Writer

	region image.Rectangle
}

func parseSegmentCmd(args []string, r *root) (*segmentCmd, error) {
	fs := flag.NewFlagSet("segment", flag.ExitOnError)
	c := &segmentCmd{root: r, fs: fs, stdout: os.Stdout}
	fs.Usage = usageFunc(c)
	c.register(fs, r)
	fs.StringVar(&c.rect, "rect", "", "region to classify as x0,y0,x1,y1 (default whole image)")
	fs.IntVar(&c.stride, "stride", 1, "label map sampling stride")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.file == "" || c.labels == "" || fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	if c.rect != "" {
		rect, err := parseRect(c.rect)
		if err != nil {
			return nil, err
		}
		c.region = rect.Canon()
		if c.region.Dx() <= segment.MinRegion || c.region.Dy() <= segment.MinRegion {
			return nil, fmt.Errorf("rect %s: %w", c.rect, segment.ErrRegionTooSmall)
		}
	}
	return c, nil
}

func (c *segmentCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *segmentCmd) Run() error {
	con, err := c.openConsole(c.root, c.stdout)
	if err != nil {
		return err
	}
	if lm, ok := con.classifier.(*segment.LabelMapClassifier); ok {
		lm.Stride = c.stride
	}
	lines := []string{"segment whole"}
	if !c.region.Empty() {
		lines = []string{
			"tool box",
			fmt.Sprintf("down %d %d", c.region.Min.X, c.region.Min.Y),
			fmt.Sprintf("move %d %d", c.region.Max.X, c.region.Max.Y),
			"up",
			"segment",
		}
	}
	lines = append(lines, "export")
	for _, line := range lines {
		if _, err := con.executeLine(line); err != nil {
			return err
		}
	}
	return nil
}
