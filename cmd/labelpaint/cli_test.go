package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/labelpaint/internal/config"
	"github.com/example/labelpaint/internal/export"
	"github.com/example/labelpaint/internal/segment"
)

func writeTestPNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

func blankImage(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{200, 200, 200, 255}), image.Point{}, draw.Src)
	path := filepath.Join(dir, "photo.png")
	writeTestPNG(t, path, img)
	return path
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}

func grayAt(img image.Image, x, y int) uint8 {
	return color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
}

func TestUsageTemplatesRender(t *testing.T) {
	cases := []HelpData{
		&root{program: "labelpaint"},
		&annotateCmd{},
		&replCmd{},
		&exportCmd{},
		&segmentCmd{},
		&classesCmd{},
		&previewCmd{},
		&colorsCmd{},
		&configCmd{},
	}
	for _, c := range cases {
		msg := (&UsageError{of: c}).Error()
		if !strings.HasPrefix(msg, "Usage: labelpaint") {
			t.Errorf("%s: unexpected help %q", c.Template(), msg)
		}
	}
}

func TestParseRequiresFile(t *testing.T) {
	var uerr *UsageError
	if _, err := parseAnnotateCmd(nil, nil); !errors.As(err, &uerr) {
		t.Fatalf("annotate: expected usage error, got %v", err)
	}
	if _, err := parseReplCmd(nil, nil); !errors.As(err, &uerr) {
		t.Fatalf("repl: expected usage error, got %v", err)
	}
	if _, err := parseExportCmd([]string{"-file", "a.png"}, nil); !errors.As(err, &uerr) {
		t.Fatalf("export: expected usage error without -script, got %v", err)
	}
	if _, err := parseSegmentCmd([]string{"-file", "a.png"}, nil); !errors.As(err, &uerr) {
		t.Fatalf("segment: expected usage error without -labels, got %v", err)
	}
}

func TestParseSegmentRejectsSmallRect(t *testing.T) {
	_, err := parseSegmentCmd([]string{"-file", "a.png", "-labels", "l.png", "-rect", "0,0,8,20"}, nil)
	if !errors.Is(err, segment.ErrRegionTooSmall) {
		t.Fatalf("expected ErrRegionTooSmall, got %v", err)
	}
}

func TestParseRect(t *testing.T) {
	r, err := parseRect("1, 2,30,40")
	if err != nil {
		t.Fatalf("parseRect: %v", err)
	}
	if r != image.Rect(1, 2, 30, 40) {
		t.Fatalf("got %v", r)
	}
	for _, bad := range []string{"", "1,2,3", "a,b,c,d"} {
		if _, err := parseRect(bad); err == nil {
			t.Errorf("parseRect(%q): expected error", bad)
		}
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "cat.jpg")
	if got := outputPath("x.png", src, nil); got != "x.png" {
		t.Fatalf("explicit output ignored: %s", got)
	}
	if got := outputPath("", src, nil); got != "cat.png" {
		t.Fatalf("derived output: %s", got)
	}
	cfg := config.New()
	cfg.SaveDir = dir
	if got := outputPath("", filepath.Join(dir, "cat.png"), cfg); got != filepath.Join(dir, "cat.annotations.png") {
		t.Fatalf("output collides with source: %s", got)
	}
}

func TestWindowTitle(t *testing.T) {
	got := windowTitle(titleOptions{File: "/tmp/dog.png", Mode: "annotate"})
	if !strings.HasPrefix(got, "labelpaint - dog.png - annotate") {
		t.Fatalf("unexpected title %q", got)
	}
}

func TestReplPaintAndExport(t *testing.T) {
	dir := t.TempDir()
	src := blankImage(t, dir)
	out := filepath.Join(dir, "mask.png")
	classes := filepath.Join(dir, "classes.json")
	cmd, err := parseReplCmd([]string{
		"-file", src,
		"-e", "class add road",
		"-e", "tool paint",
		"-e", "down 10 10",
		"-e", "up",
		"-e", "export " + out,
		"-e", "classes " + classes,
		"-e", "status",
	}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var stdout bytes.Buffer
	cmd.stdout = &stdout
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	img := readPNG(t, out)
	if v := grayAt(img, 10, 10); v != 1 {
		t.Fatalf("painted pixel = %d, want 1", v)
	}
	if v := grayAt(img, 39, 39); v != 0 {
		t.Fatalf("unpainted pixel = %d, want 0", v)
	}
	f, err := os.Open(classes)
	if err != nil {
		t.Fatalf("open classes: %v", err)
	}
	defer f.Close()
	names, err := export.DecodeClassNames(f)
	if err != nil || len(names) != 1 || names[0] != "road" {
		t.Fatalf("classes = %v, %v", names, err)
	}
	if !strings.Contains(stdout.String(), "state paint tool paint") {
		t.Fatalf("status missing from output:\n%s", stdout.String())
	}
	if !strings.Contains(stdout.String(), "class road of 1 imported=false") {
		t.Fatalf("class status missing from output:\n%s", stdout.String())
	}
}

func TestReplStopsOnRejectedGesture(t *testing.T) {
	dir := t.TempDir()
	src := blankImage(t, dir)
	cmd, err := parseReplCmd([]string{"-file", src, "-e", "tool paint", "-e", "down 1 1"}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cmd.stdout = &bytes.Buffer{}
	if err := cmd.Run(); err == nil || !strings.Contains(err.Error(), "down 1 1") {
		t.Fatalf("expected painting without a class to fail, got %v", err)
	}
}

func TestReplInteractiveKeepsGoing(t *testing.T) {
	dir := t.TempDir()
	src := blankImage(t, dir)
	cmd, err := parseReplCmd([]string{"-file", src}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var stdout, stderr bytes.Buffer
	cmd.stdin = strings.NewReader("bogus\nclass add tree\nclass list\nexit\nclass add never\n")
	cmd.stdout = &stdout
	cmd.stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr.String(), `unknown command "bogus"`) {
		t.Fatalf("stderr = %q", stderr.String())
	}
	if !strings.Contains(stdout.String(), "tree") || strings.Contains(stdout.String(), "never") {
		t.Fatalf("stdout = %q", stdout.String())
	}
}

func TestReplUsesConfiguredPalette(t *testing.T) {
	dir := t.TempDir()
	src := blankImage(t, dir)
	cfg, err := config.Parse(strings.NewReader("palette = gold, #123456\n"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	r := &root{program: "labelpaint", config: cfg}
	cmd, err := parseReplCmd([]string{"-file", src}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var stdout, stderr bytes.Buffer
	cmd.stdin = strings.NewReader("class add tree\nclass add road\nclass list\nclass add sky\nexit\n")
	cmd.stdout = &stdout
	cmd.stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"added tree gold", "added road #123456"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("stdout missing %q: %q", want, stdout.String())
		}
	}
	if stderr.Len() == 0 {
		t.Errorf("third class should exhaust a two colour palette")
	}
}

func TestReplRejectsNonFinitePoint(t *testing.T) {
	dir := t.TempDir()
	src := blankImage(t, dir)
	out := filepath.Join(dir, "mask.png")
	cmd, err := parseReplCmd([]string{"-file", src, "-output", out}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var stdout, stderr bytes.Buffer
	cmd.stdin = strings.NewReader(strings.Join([]string{
		"class add cat", "tool polygon",
		"press 5 5", "up",
		"press inf 5", "up",
		"press 20 30", "up",
		"press 5 30", "up",
		"press 5 5", "up",
		"export", "exit",
	}, "\n"))
	cmd.stdout = &stdout
	cmd.stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr.String(), "not finite") {
		t.Fatalf("stderr = %q", stderr.String())
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("export did not complete: %v", err)
	}
}

func TestExportReplaysPolygonScript(t *testing.T) {
	dir := t.TempDir()
	src := blankImage(t, dir)
	out := filepath.Join(dir, "poly.png")
	script := filepath.Join(dir, "gestures.txt")
	lines := []string{
		"# square",
		"class import sky, road",
		"class use road",
		"tool polygon",
		"down 5 5", "up",
		"down 30 5", "up",
		"down 30 30", "up",
		"down 5 30", "up",
		"down 6 6", "up",
	}
	if err := os.WriteFile(script, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	cmd, err := parseExportCmd([]string{"-file", src, "-script", script, "-output", out}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cmd.stdout = &bytes.Buffer{}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	img := readPNG(t, out)
	if v := grayAt(img, 15, 15); v != 2 {
		t.Fatalf("polygon pixel = %d, want rank of road (2)", v)
	}
	if v := grayAt(img, 35, 35); v != 0 {
		t.Fatalf("outside pixel = %d, want 0", v)
	}
}

func TestExportReportsScriptLine(t *testing.T) {
	dir := t.TempDir()
	src := blankImage(t, dir)
	script := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(script, []byte("tool box\nnope\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	cmd, err := parseExportCmd([]string{"-file", src, "-script", script, "-output", filepath.Join(dir, "o.png")}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cmd.stdout = &bytes.Buffer{}
	if err := cmd.Run(); err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line 2 failure, got %v", err)
	}
}

func TestSegmentCommandRegion(t *testing.T) {
	dir := t.TempDir()
	src := blankImage(t, dir)
	labels := image.NewGray(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if x < 20 {
				labels.SetGray(x, y, color.Gray{Y: 9})
			}
		}
	}
	labelPath := filepath.Join(dir, "labels.png")
	writeTestPNG(t, labelPath, labels)
	out := filepath.Join(dir, "seg.png")

	cmd, err := parseSegmentCmd([]string{"-file", src, "-labels", labelPath, "-rect", "0,0,30,30", "-output", out}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var stdout bytes.Buffer
	cmd.stdout = &stdout
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	img := readPNG(t, out)
	if v := grayAt(img, 5, 5); v != 1 {
		t.Fatalf("car pixel = %d, want 1", v)
	}
	if v := grayAt(img, 25, 5); v != 0 {
		t.Fatalf("background pixel = %d, want 0", v)
	}
	if v := grayAt(img, 5, 35); v != 0 {
		t.Fatalf("pixel outside the region = %d, want 0", v)
	}
	if !strings.Contains(stdout.String(), "car") {
		t.Fatalf("stdout = %q", stdout.String())
	}
}

func TestConsoleSegmentNeedsLabels(t *testing.T) {
	dir := t.TempDir()
	f := sessionFlags{file: blankImage(t, dir)}
	con, err := f.openConsole(nil, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("openConsole: %v", err)
	}
	if _, err := con.executeLine("segment whole"); !errors.Is(err, errNoClassifier) {
		t.Fatalf("expected errNoClassifier, got %v", err)
	}
}

func TestClassesShowAndExport(t *testing.T) {
	cmd, err := parseClassesCmd([]string{"show", "street"}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var stdout bytes.Buffer
	cmd.stdout = &stdout
	if err := cmd.Run(); err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(stdout.String(), "  1: ") {
		t.Fatalf("show output = %q", stdout.String())
	}

	path := filepath.Join(t.TempDir(), "street.json")
	cmd, err = parseClassesCmd([]string{"export", "street", path}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cmd.stdout = &bytes.Buffer{}
	if err := cmd.Run(); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("exported preset missing: %v", err)
	}
}

func TestPreviewColorizesMask(t *testing.T) {
	dir := t.TempDir()
	src := blankImage(t, dir)
	mask := image.NewRGBA(image.Rect(0, 0, 40, 40))
	mask.SetRGBA(3, 3, color.RGBA{1, 1, 1, 255})
	maskPath := filepath.Join(dir, "mask.png")
	writeTestPNG(t, maskPath, mask)
	out := filepath.Join(dir, "preview.png")

	cmd, err := parsePreviewCmd([]string{"-file", src, "-mask", maskPath, "-output", out, "-opacity", "1"}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cmd.stdout = &bytes.Buffer{}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	img := readPNG(t, out)
	r, g, b, _ := img.At(3, 3).RGBA()
	if r>>8 != 255 || g != 0 || b != 0 {
		t.Fatalf("rank 1 pixel = %v, want the first palette colour", img.At(3, 3))
	}
	if r, _, _, _ := img.At(20, 20).RGBA(); r>>8 != 200 {
		t.Fatalf("untouched pixel = %v", img.At(20, 20))
	}
}
