package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/labelpaint/assets"
	"github.com/example/labelpaint/internal/export"
)

type classesCmd struct {
	*root
	fs     *flag.FlagSet
	stdout io.Writer
}

func parseClassesCmd(args []string, r *root) (*classesCmd, error) {
	fs := flag.NewFlagSet("classes", flag.ExitOnError)
	c := &classesCmd{root: r, fs: fs, stdout: os.Stdout}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *classesCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *classesCmd) Run() error {
	args := c.fs.Args()
	switch args[0] {
	case "presets":
		for _, name := range assets.PresetNames() {
			names, err := assets.Preset(name)
			if err != nil {
				return err
			}
			if err := writef(c.stdout, "%-10s %d classes\n", name, len(names)); err != nil {
				return err
			}
		}
		return nil
	case "show":
		if len(args) != 2 {
			return &UsageError{of: c}
		}
		return c.show(args[1])
	case "export":
		if len(args) < 2 || len(args) > 3 {
			return &UsageError{of: c}
		}
		path := export.ClassFileName
		if len(args) == 3 {
			path = args[2]
		}
		return c.export(args[1], path)
	}
	return fmt.Errorf("unknown classes command: %s", args[0])
}

// show prints a preset with the colours its classes would be given.
func (c *classesCmd) show(name string) error {
	names, err := assets.Preset(name)
	if err != nil {
		return err
	}
	entries := c.cfg().ClassPalette().Entries()
	for i, n := range names {
		col := "-"
		if i < len(entries) {
			col = entries[i].Name
		}
		if err := writef(c.stdout, "%3d: %-20s %s\n", i+1, strings.ToLower(n), col); err != nil {
			return err
		}
	}
	return nil
}

func (c *classesCmd) export(name, path string) error {
	names, err := assets.Preset(name)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.EncodeClassNames(f, names); err != nil {
		closeWithLog(path, f)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	c.notifyExport(path)
	return writef(c.stdout, "saved %s\n", path)
}
