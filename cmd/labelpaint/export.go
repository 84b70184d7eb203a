package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
)

// exportCmd replays a gesture script headlessly and writes the raster.
type exportCmd struct {
	*root
	fs *flag.FlagSet
	sessionFlags
	script string
	stdout io.Writer
}

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	c := &exportCmd{root: r, fs: fs, stdout: os.Stdout}
	fs.Usage = usageFunc(c)
	c.register(fs, r)
	fs.StringVar(&c.script, "script", "", "gesture script to replay, - for stdin")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.file == "" || c.script == "" || fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *exportCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *exportCmd) Run() error {
	con, err := c.openConsole(c.root, c.stdout)
	if err != nil {
		return err
	}
	var in io.Reader = os.Stdin
	if c.script != "-" {
		f, err := os.Open(c.script)
		if err != nil {
			return err
		}
		defer closeWithLog(c.script, f)
		in = f
	}
	if err := replay(con, in); err != nil {
		return fmt.Errorf("%s: %w", c.script, err)
	}
	_, err = con.executeLine("export")
	return err
}

// replay runs every line of a script, stopping at the first failure.
func replay(con *console, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	n := 0
	for scanner.Scan() {
		n++
		done, err := con.executeLine(scanner.Text())
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}
