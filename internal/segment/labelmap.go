package segment

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LabelMapClassifier answers from a precomputed label map whose grey level
// is the class id, the way an offline model run would be stored. The map
// covers the whole source image.
type LabelMapClassifier struct {
	Labels image.Image
	Names  map[int]string
	// Stride makes the result coarser than the input, one id per Stride
	// pixels, as a model working on reduced input would.
	Stride int
}

// LoadLabelMap decodes a label map file.
func LoadLabelMap(path string, names map[int]string) (*LabelMapClassifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode label map %s: %w", path, err)
	}
	return &LabelMapClassifier{Labels: img, Names: names}, nil
}

// Classify samples the label map over img's bounds.
func (c *LabelMapClassifier) Classify(ctx context.Context, img image.Image) (Result, error) {
	r := img.Bounds()
	if !r.In(c.Labels.Bounds()) {
		return Result{}, fmt.Errorf("label map %v does not cover %v", c.Labels.Bounds(), r)
	}
	stride := c.Stride
	if stride < 1 {
		stride = 1
	}
	w := (r.Dx() + stride - 1) / stride
	h := (r.Dy() + stride - 1) / stride
	res := Result{IDs: make([]int, 0, w*h), Width: w, Height: h, Names: map[int]string{}}
	for y := 0; y < h; y++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		for x := 0; x < w; x++ {
			g := color.GrayModel.Convert(c.Labels.At(r.Min.X+x*stride, r.Min.Y+y*stride)).(color.Gray)
			id := int(g.Y)
			if id != 0 {
				name, ok := c.Names[id]
				if !ok {
					id = 0
				} else {
					res.Names[id] = name
				}
			}
			res.IDs = append(res.IDs, id)
		}
	}
	return res, nil
}
