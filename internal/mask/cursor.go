package mask

import (
	"image"
	"image/color"
)

// DrawCursor outlines the brush footprint on dst. It is feedback only and
// never touches a Layer.
func DrawCursor(dst *image.RGBA, center image.Point, diameter int, col color.Color) {
	r := diameter / 2
	if r < 1 {
		r = 1
	}
	circle(dst, center.X, center.Y, r, col)
	if r > 2 {
		circle(dst, center.X, center.Y, r-1, color.Black)
	}
}

func circle(img *image.RGBA, cx, cy, r int, col color.Color) {
	x := r
	y := 0
	err := 1 - r
	for x >= y {
		pts := [][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}}
		for _, p := range pts {
			px := cx + p[0]
			py := cy + p[1]
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2 * (y - x + 1)
		}
	}
}
