package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/example/labelpaint/internal/clipboard"
	"github.com/example/labelpaint/internal/editor"
	"github.com/example/labelpaint/internal/export"
	"github.com/example/labelpaint/internal/model"
	"github.com/example/labelpaint/internal/palette"
	"github.com/example/labelpaint/internal/segment"
)

var errNoClassifier = errors.New("no label map loaded; pass -labels")

// console executes text commands against a session. It backs both the repl
// and the headless export replay.
type console struct {
	r             *root
	sess          *editor.Session
	img           *image.RGBA
	classifier    segment.Classifier
	output        string
	classesOutput string
	workers       int
	pal           *palette.Palette
	out           io.Writer
}

// executeLine runs one command. done reports an exit request.
func (c *console) executeLine(line string) (done bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false, nil
	}
	args := strings.Fields(line)
	name, args := strings.ToLower(args[0]), args[1:]
	switch name {
	case "exit", "quit":
		return true, nil
	case "tool":
		err = c.tool(args)
	case "down", "move", "press":
		err = c.pointer(name, args)
	case "up":
		err = c.sess.PointerUp()
	case "key":
		err = c.key(args)
	case "class":
		err = c.class(args)
	case "select":
		err = c.selectPolygon(args)
	case "point":
		err = c.point(args)
	case "polygon":
		err = c.polygon(args)
	case "clearbox":
		err = c.sess.ClearBox()
	case "brush", "eraser":
		err = c.size(name, args)
	case "opacity":
		err = writef(c.out, "mask opacity %.1f\n", c.sess.ToggleMaskOpacity())
	case "zoom":
		err = c.zoom(args)
	case "segment":
		err = c.segment(args)
	case "export":
		err = c.export(args)
	case "copy":
		err = c.copy()
	case "classes":
		err = c.classes(args)
	case "status":
		err = c.status()
	default:
		err = fmt.Errorf("unknown command %q", name)
	}
	return false, err
}

func argPoint(args []string) (model.Point, error) {
	if len(args) != 2 {
		return model.Point{}, errors.New("want <x> <y>")
	}
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return model.Point{}, fmt.Errorf("x: %w", err)
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return model.Point{}, fmt.Errorf("y: %w", err)
	}
	return model.Pt(x, y), nil
}

func argIndex(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("want <index>")
	}
	return strconv.Atoi(args[0])
}

func (c *console) tool(args []string) error {
	if len(args) != 1 {
		return errors.New("tool: want <name>")
	}
	t, err := editor.ParseTool(args[0])
	if err != nil {
		return err
	}
	return c.sess.SetTool(t)
}

func (c *console) pointer(name string, args []string) error {
	p, err := argPoint(args)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	switch name {
	case "down":
		return c.sess.PointerDown(p)
	case "move":
		return c.sess.PointerMove(p)
	}
	return c.sess.Press(p)
}

func (c *console) key(args []string) error {
	if len(args) != 1 {
		return errors.New("key: want <delete|escape>")
	}
	switch strings.ToLower(args[0]) {
	case "delete", "backspace":
		return c.sess.KeyDown(editor.KeyDelete)
	case "escape", "esc":
		return c.sess.KeyDown(editor.KeyEscape)
	}
	return fmt.Errorf("key: unknown key %q", args[0])
}

// findClass matches a class by id or, ignoring case, by name.
func (c *console) findClass(ref string) (model.Class, error) {
	ref = strings.TrimSpace(ref)
	for _, cl := range c.sess.Classes() {
		if cl.ID == ref || strings.EqualFold(cl.Name, ref) {
			return cl, nil
		}
	}
	return model.Class{}, fmt.Errorf("no class %q", ref)
}

func (c *console) class(args []string) error {
	if len(args) == 0 {
		return errors.New("class: want add|import|rename|delete|use|list")
	}
	op, rest := strings.ToLower(args[0]), strings.Join(args[1:], " ")
	switch op {
	case "add":
		cl, err := c.sess.CreateClass(rest)
		if err != nil {
			return err
		}
		return writef(c.out, "added %s %s\n", cl.Name, c.colorName(cl.Color))
	case "import":
		var names []string
		for _, n := range strings.Split(rest, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		added, err := c.sess.ImportClasses(names)
		if err != nil {
			return err
		}
		return writef(c.out, "imported %d classes\n", len(added))
	case "rename":
		from, to, ok := strings.Cut(rest, "=")
		if !ok {
			return errors.New("class rename: want <name>=<new name>")
		}
		cl, err := c.findClass(from)
		if err != nil {
			return err
		}
		return c.sess.RenameClass(cl.ID, strings.TrimSpace(to))
	case "delete":
		cl, err := c.findClass(rest)
		if err != nil {
			return err
		}
		return c.sess.DeleteClass(cl.ID)
	case "use":
		cl, err := c.findClass(rest)
		if err != nil {
			return err
		}
		return c.sess.SetActiveClass(cl.ID)
	case "list":
		return c.listClasses()
	}
	return fmt.Errorf("class: unknown operation %q", op)
}

func (c *console) colorName(col color.RGBA) string {
	if c.pal == nil {
		return palette.Hex(col)
	}
	return c.pal.Name(col)
}

func (c *console) listClasses() error {
	classes := c.sess.Classes()
	if len(classes) == 0 {
		return writef(c.out, "no classes\n")
	}
	active, _ := c.sess.ActiveClass()
	for rank, cl := range classes {
		marker := " "
		if cl.ID == active.ID {
			marker = "*"
		}
		if err := writef(c.out, "%s %3d: %-20s %-14s %s\n", marker, rank+1, cl.Name, c.colorName(cl.Color), cl.ID); err != nil {
			return err
		}
	}
	return nil
}

func (c *console) selectPolygon(args []string) error {
	if len(args) == 1 && strings.EqualFold(args[0], "none") {
		return c.sess.ClearActivePolygon()
	}
	i, err := argIndex(args)
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}
	return c.sess.SetActivePolygon(i)
}

func (c *console) point(args []string) error {
	if len(args) == 1 && strings.EqualFold(args[0], "delete") {
		return c.sess.DeletePoint()
	}
	if len(args) == 4 && strings.EqualFold(args[0], "insert") {
		i, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("point insert: %w", err)
		}
		p, err := argPoint(args[2:])
		if err != nil {
			return fmt.Errorf("point insert: %w", err)
		}
		return c.sess.InsertPoint(i, p)
	}
	i, err := argIndex(args)
	if err != nil {
		return fmt.Errorf("point: %w", err)
	}
	return c.sess.SetActivePoint(i)
}

func (c *console) polygon(args []string) error {
	if len(args) != 1 {
		return errors.New("polygon: want delete|cancel")
	}
	switch strings.ToLower(args[0]) {
	case "delete":
		return c.sess.DeletePolygon()
	case "cancel":
		return c.sess.CancelPolygon()
	}
	return fmt.Errorf("polygon: unknown operation %q", args[0])
}

func (c *console) size(name string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%s: want <size>", name)
	}
	n, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if name == "brush" {
		return writef(c.out, "brush size %d\n", c.sess.SetBrushSize(n))
	}
	return writef(c.out, "eraser size %d\n", c.sess.SetEraserSize(n))
}

func (c *console) zoom(args []string) error {
	if len(args) != 1 {
		return errors.New("zoom: want in|out")
	}
	switch strings.ToLower(args[0]) {
	case "in":
		return writef(c.out, "zoom %d\n", c.sess.ZoomIn())
	case "out":
		return writef(c.out, "zoom %d\n", c.sess.ZoomOut())
	}
	return fmt.Errorf("zoom: unknown direction %q", args[0])
}

func (c *console) segment(args []string) error {
	if c.classifier == nil {
		return errNoClassifier
	}
	whole := len(args) == 1 && strings.EqualFold(args[0], "whole")
	req, err := c.sess.SegmentRequest(c.img, whole)
	if err != nil {
		return err
	}
	out, err := segment.Run(context.Background(), c.classifier, req)
	if err != nil {
		return err
	}
	if err := c.sess.ApplySegmentation(out); err != nil {
		return err
	}
	names := out.ClassNames()
	c.r.notifySegment(fmt.Sprintf("%d classes", len(names)), c.sess.Mask().Snapshot())
	return writef(c.out, "segmented %v: %s\n", out.Rect, strings.Join(names, ", "))
}

func (c *console) export(args []string) error {
	path := c.output
	if len(args) == 1 {
		path = args[0]
	}
	img, err := c.sess.Export(context.Background(), c.workers)
	if err != nil {
		return err
	}
	if err := export.SaveFile(path, img); err != nil {
		return fmt.Errorf("failed to save annotations: %w", err)
	}
	c.r.notifyExport(path)
	return writef(c.out, "saved %s\n", path)
}

func (c *console) copy() error {
	img, err := c.sess.Export(context.Background(), c.workers)
	if err != nil {
		return err
	}
	if err := clipboard.CopyAnnotation(img); err != nil {
		return fmt.Errorf("failed to copy annotations: %w", err)
	}
	c.r.notifyCopy("annotation")
	return writef(c.out, "copied annotation to clipboard\n")
}

func (c *console) classes(args []string) error {
	path := c.classesOutput
	if len(args) == 1 {
		path = args[0]
	}
	if len(c.sess.Classes()) == 0 {
		return export.ErrNoClasses
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.sess.ExportClassNames(f); err != nil {
		closeWithLog(path, f)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	c.r.notifyExport(path)
	return writef(c.out, "saved %s\n", path)
}

func (c *console) status() error {
	s := c.sess
	active := "none"
	if cl, ok := s.ActiveClass(); ok {
		active = cl.Name
	}
	lo, hi := s.Box().Bounds()
	box := "none"
	if !s.Box().Empty() {
		box = fmt.Sprintf("%v-%v", lo, hi)
	}
	if err := writef(c.out, "image %s loaded=%t\nstate %s tool %s\nclass %s of %d imported=%t\npolygons %d active %d point %d\nbox %s\nbrush %d eraser %d opacity %.1f zoom %d\n",
		s.ImageName(), s.Loaded(), s.State(), s.Tool(), active, len(s.Classes()), s.ClassesImported(),
		len(s.Polygons()), s.ActivePolygon(), s.ActivePoint(), box,
		s.BrushSize(), s.EraserSize(), s.MaskOpacity(), s.Zoom()); err != nil {
		return err
	}
	if msg := s.LastError(); msg != "" {
		return writef(c.out, "message %s\n", msg)
	}
	return nil
}
