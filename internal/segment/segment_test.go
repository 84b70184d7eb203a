package segment

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/example/labelpaint/internal/model"
)

func boxOf(x0, y0, x1, y1 float64) model.Box {
	b := model.NewBox(model.Pt(x0, y0))
	_ = b.MoveCorner(2, model.Pt(x1, y1))
	return b
}

func TestSelectionRequestSizes(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	tests := []struct {
		name string
		img  image.Image
		box  model.Box
		err  error
	}{
		{"no image", nil, boxOf(0, 0, 50, 50), ErrNoSelection},
		{"no box", img, model.Box{}, ErrNoSelection},
		{"eight wide", img, boxOf(10, 10, 18, 40), ErrRegionTooSmall},
		{"eight high", img, boxOf(10, 10, 40, 18), ErrRegionTooSmall},
		{"nine square", img, boxOf(10, 10, 19, 19), nil},
		{"dragged backwards", img, boxOf(60, 60, 20, 30), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SelectionRequest(tt.img, tt.box)
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestRunValidatesResult(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	req, _ := WholeImage(img)
	short := ClassifierFunc(func(ctx context.Context, img image.Image) (Result, error) {
		return Result{IDs: []int{0, 1}, Width: 2, Height: 2, Names: map[int]string{1: "cat"}}, nil
	})
	if _, err := Run(context.Background(), short, req); !errors.Is(err, ErrBadResult) {
		t.Fatalf("short buffer err = %v", err)
	}
	unnamed := ClassifierFunc(func(ctx context.Context, img image.Image) (Result, error) {
		return Result{IDs: []int{0, 3}, Width: 2, Height: 1, Names: map[int]string{}}, nil
	})
	if _, err := Run(context.Background(), unnamed, req); !errors.Is(err, ErrBadResult) {
		t.Fatalf("unnamed id err = %v", err)
	}
	failing := ClassifierFunc(func(ctx context.Context, img image.Image) (Result, error) {
		return Result{}, errors.New("model unavailable")
	})
	if _, err := Run(context.Background(), failing, req); err == nil || !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("classifier error not propagated: %v", err)
	}
}

func TestRunCropsToRequest(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	req, err := SelectionRequest(img, boxOf(10, 20, 30, 45))
	if err != nil {
		t.Fatal(err)
	}
	var seen image.Rectangle
	c := ClassifierFunc(func(ctx context.Context, img image.Image) (Result, error) {
		seen = img.Bounds()
		return Result{IDs: []int{0}, Width: 1, Height: 1}, nil
	})
	out, err := Run(context.Background(), c, req)
	if err != nil {
		t.Fatal(err)
	}
	if seen != image.Rect(10, 20, 30, 45) || out.Rect != seen {
		t.Fatalf("classifier saw %v, outcome rect %v", seen, out.Rect)
	}
}

func TestOutcomeNamesAndOverlay(t *testing.T) {
	o := Outcome{
		Result: Result{
			IDs:    []int{0, 7, 3, 7},
			Width:  2,
			Height: 2,
			Names:  map[int]string{3: "chair", 7: "person"},
		},
		Rect: image.Rect(5, 5, 9, 9),
	}
	if got := strings.Join(o.ClassNames(), ","); got != "chair,person" {
		t.Fatalf("ClassNames = %s", got)
	}
	red := color.RGBA{R: 255, A: 255}
	ov := o.Overlay(map[int]color.RGBA{7: red})
	if ov.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Fatalf("overlay bounds %v", ov.Bounds())
	}
	want := [4][4]color.RGBA{
		{{}, {}, red, red},
		{{}, {}, red, red},
		{{}, {}, red, red},
		{{}, {}, red, red},
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if got := ov.RGBAAt(x, y); got != want[y][x] {
				t.Fatalf("overlay (%d,%d) = %v, want %v", x, y, got, want[y][x])
			}
		}
	}
}

func TestLabelMapClassifier(t *testing.T) {
	labels := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 8; x < 16; x++ {
			labels.SetGray(x, y, color.Gray{Y: 4})
		}
	}
	labels.SetGray(0, 0, color.Gray{Y: 250})
	c := &LabelMapClassifier{Labels: labels, Names: ADE20K(), Stride: 2}
	src := image.NewRGBA(image.Rect(0, 0, 16, 16))
	req, _ := WholeImage(src)
	out, err := Run(context.Background(), c, req)
	if err != nil {
		t.Fatal(err)
	}
	if out.Width != 8 || out.Height != 8 {
		t.Fatalf("result size %dx%d, want 8x8", out.Width, out.Height)
	}
	if got := out.ClassNames(); len(got) != 1 || got[0] != "person" {
		t.Fatalf("ClassNames = %v", got)
	}
	if out.IDs[0] != 0 {
		t.Fatalf("unknown id kept: %d", out.IDs[0])
	}
}

func TestADE20K(t *testing.T) {
	names := ADE20K()
	if names[1] != "bed" || names[100] != "flag" {
		t.Fatal("table misaligned")
	}
	if _, ok := names[0]; ok {
		t.Fatal("background should have no name")
	}
	if len(names) != 100 {
		t.Fatalf("ADE20K has %d entries", len(ADE20K()))
	}
}
