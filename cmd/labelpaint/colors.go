package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/example/labelpaint/internal/palette"
)

type colorsCmd struct {
	*root
	fs     *flag.FlagSet
	stdout io.Writer
}

func parseColorsCmd(args []string, r *root) (*colorsCmd, error) {
	fs := flag.NewFlagSet("colors", flag.ExitOnError)
	cmd := &colorsCmd{root: r, fs: fs, stdout: os.Stdout}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *colorsCmd) Run() error {
	entries := c.cfg().ClassPalette().Entries()
	if len(entries) == 0 {
		fmt.Fprintln(c.stdout, "no colors available")
		return nil
	}
	fmt.Fprintln(c.stdout, "class colors in allocation order:")
	for idx, entry := range entries {
		block := fmt.Sprintf("\x1b[48;2;%d;%d;%dm  \x1b[0m", entry.Color.R, entry.Color.G, entry.Color.B)
		if err := writef(c.stdout, "%3d: %-18s %s %s\n", idx+1, entry.Name, palette.Hex(entry.Color), block); err != nil {
			return err
		}
	}
	return nil
}

func (c *colorsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}
