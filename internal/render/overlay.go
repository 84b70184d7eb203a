package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/example/labelpaint/internal/model"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// PreviewOptions configures how annotations are laid over the source image.
type PreviewOptions struct {
	// Opacity of the mask and polygon fills, clamped to [0, 1].
	Opacity float64
	// Outline is the polygon outline thickness in pixels. Zero disables it.
	Outline int
	// Checker, when positive, draws a checkerboard of that square size under
	// transparent parts of the source image.
	Checker     int
	CheckerLite color.RGBA
	CheckerDark color.RGBA
}

// DefaultPreviewOptions mirrors the editor's initial display settings.
func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{
		Opacity:     0.5,
		Outline:     2,
		Checker:     8,
		CheckerLite: color.RGBA{220, 220, 220, 255},
		CheckerDark: color.RGBA{192, 192, 192, 255},
	}
}

func alphaOf(opacity float64) uint8 {
	if opacity <= 0 {
		return 0
	}
	if opacity >= 1 {
		return 255
	}
	return uint8(opacity*255 + 0.5)
}

// Checkerboard fills rect of dst with alternating squares of the two colors.
func Checkerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	rect = rect.Intersect(dst.Bounds())
	lu, du := image.NewUniform(light), image.NewUniform(dark)
	for y := rect.Min.Y; y < rect.Max.Y; y += size - (y % size) {
		y1 := min(y+size-(y%size), rect.Max.Y)
		for x := rect.Min.X; x < rect.Max.X; x += size - (x % size) {
			x1 := min(x+size-(x%size), rect.Max.X)
			src := lu
			if ((x/size)+(y/size))%2 != 0 {
				src = du
			}
			draw.Draw(dst, image.Rect(x, y, x1, y1), src, image.Point{}, draw.Src)
		}
	}
}

// MaskOver scales the mask layer into dst's rect and blends it with the given
// opacity. Transparent mask pixels leave dst untouched.
func MaskOver(dst *image.RGBA, rect image.Rectangle, mask image.Image, opacity float64) {
	a := alphaOf(opacity)
	if a == 0 || mask == nil || rect.Empty() {
		return
	}
	if a == 255 {
		xdraw.NearestNeighbor.Scale(dst, rect, mask, mask.Bounds(), draw.Over, nil)
		return
	}
	xdraw.NearestNeighbor.Scale(dst, rect, mask, mask.Bounds(), draw.Over, &xdraw.Options{
		SrcMask: image.NewUniform(color.Alpha{A: a}),
	})
}

// FillPolygon fills pts, given in dst coordinates, with col at the given
// opacity using an anti-aliased rasterizer.
func FillPolygon(dst *image.RGBA, pts []model.Point, col color.RGBA, opacity float64) {
	a := alphaOf(opacity)
	if len(pts) < 3 || a == 0 {
		return
	}
	b := dst.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	origin := model.FromImagePoint(b.Min)
	first := pts[0].Sub(origin)
	r.MoveTo(float32(first.X), float32(first.Y))
	for _, p := range pts[1:] {
		p = p.Sub(origin)
		r.LineTo(float32(p.X), float32(p.Y))
	}
	r.ClosePath()
	src := image.NewUniform(color.NRGBA{R: col.R, G: col.G, B: col.B, A: a})
	r.Draw(dst, b, src, image.Point{})
}

// Preview composes the source image, the mask layer and the polygons into a
// new zero-origin image the size of base.
func Preview(base image.Image, mask image.Image, polygons []model.Polygon, opts PreviewOptions) *image.RGBA {
	b := base.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if opts.Checker > 0 {
		Checkerboard(out, out.Bounds(), opts.Checker, opts.CheckerLite, opts.CheckerDark)
	}
	draw.Draw(out, out.Bounds(), base, b.Min, draw.Over)
	MaskOver(out, out.Bounds(), mask, opts.Opacity)
	for i := len(polygons) - 1; i >= 0; i-- {
		p := polygons[i]
		pts := make([]model.Point, len(p.Points))
		for j, pt := range p.Points {
			pts[j] = pt.Sub(model.FromImagePoint(b.Min))
		}
		FillPolygon(out, pts, p.Color, opts.Opacity)
		if opts.Outline > 0 {
			Outline(out, pts, p.Color, opts.Outline, true)
		}
	}
	return out
}

// Outline strokes the segments between consecutive points, closing the shape
// when closed is set.
func Outline(dst *image.RGBA, pts []model.Point, col color.Color, thick int, closed bool) {
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i].ImagePoint(), pts[i+1].ImagePoint()
		Line(dst, a.X, a.Y, b.X, b.Y, col, thick)
	}
	if closed && len(pts) > 2 {
		a, b := pts[len(pts)-1].ImagePoint(), pts[0].ImagePoint()
		Line(dst, a.X, a.Y, b.X, b.Y, col, thick)
	}
}

// Line draws a Bresenham line with square pixels of the given thickness.
func Line(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setThickPixel(img, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func setThickPixel(img *image.RGBA, x, y, thick int, col color.Color) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			if p := image.Pt(x+dx, y+dy); p.In(img.Bounds()) {
				img.Set(p.X, p.Y, col)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Colorize turns an exported annotation raster back into class colors: a
// pixel of value v maps to colors[v-1], anything else stays transparent.
func Colorize(labels image.Image, colors []color.RGBA) *image.RGBA {
	b := labels.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(labels.At(x, y)).(color.NRGBA)
			if c.A == 0 || c.R != c.G || c.G != c.B || c.R == 0 {
				continue
			}
			if v := int(c.R); v <= len(colors) {
				out.SetRGBA(x-b.Min.X, y-b.Min.Y, colors[v-1])
			}
		}
	}
	return out
}
