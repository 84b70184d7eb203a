package export

import (
	"context"
	"image"
	"image/color"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// bandRows is the number of rows handed to a worker at a time.
const bandRows = 32

// Quantize maps every pixel of img to its class index. Transparent pixels
// and colours matching no class become (0,0,0,0); a colour matching the class
// at rank i becomes (i+1, i+1, i+1, 255). Matching is on exact
// un-premultiplied RGB.
func Quantize(ctx context.Context, img image.Image, palette []color.RGBA, workers int) (*image.RGBA, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	lookup := make(map[[3]uint8]uint8, len(palette))
	for i, c := range palette {
		key := [3]uint8{c.R, c.G, c.B}
		if _, ok := lookup[key]; ok {
			continue
		}
		lookup[key] = uint8(i + 1)
	}

	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y0 := b.Min.Y; y0 < b.Max.Y; y0 += bandRows {
		y0 := y0
		y1 := min(y0+bandRows, b.Max.Y)
		g.Go(func() error {
			for y := y0; y < y1; y++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				quantizeRow(out, img, y, b, lookup)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func quantizeRow(out *image.RGBA, img image.Image, y int, b image.Rectangle, lookup map[[3]uint8]uint8) {
	row := out.Pix[(y-b.Min.Y)*out.Stride:]
	for x := b.Min.X; x < b.Max.X; x++ {
		c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
		if c.A == 0 {
			continue
		}
		v, ok := lookup[[3]uint8{c.R, c.G, c.B}]
		if !ok {
			continue
		}
		i := (x - b.Min.X) * 4
		row[i] = v
		row[i+1] = v
		row[i+2] = v
		row[i+3] = 255
	}
}
