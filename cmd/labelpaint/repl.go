package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/example/labelpaint/internal/export"
	"github.com/example/labelpaint/internal/segment"
)

// sessionFlags are the inputs shared by the commands that open a session.
type sessionFlags struct {
	file    string
	classes string
	preset  string
	labels  string
	output  string
}

func (f *sessionFlags) register(fs *flag.FlagSet, r *root) {
	fs.StringVar(&f.file, "file", "", "image file to annotate")
	fs.StringVar(&f.classes, "classes", r.cfg().ClassesFile, "class list file to import")
	fs.StringVar(&f.preset, "preset", "", "embedded class preset to import")
	fs.StringVar(&f.labels, "labels", "", "label map used by segment")
	fs.StringVar(&f.output, "output", "", "annotation raster path (default <image>.png)")
}

// openConsole loads the image and classes into a fresh session.
func (f *sessionFlags) openConsole(r *root, out io.Writer) (*console, error) {
	cfg := r.cfg()
	img, err := loadImage(f.file)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	sess := newSession(cfg)
	sess.LoadImage(f.file, img.Bounds())
	if f.preset != "" {
		if err := importPreset(sess, f.preset); err != nil {
			return nil, err
		}
	}
	if f.classes != "" {
		if err := importClasses(sess, f.classes); err != nil {
			return nil, err
		}
	}
	c := &console{
		r:             r,
		sess:          sess,
		img:           img,
		output:        outputPath(f.output, f.file, cfg),
		classesOutput: export.ClassFileName,
		workers:       cfg.Workers,
		pal:           cfg.ClassPalette(),
		out:           out,
	}
	if cfg.SaveDir != "" {
		c.classesOutput = filepath.Join(cfg.SaveDir, export.ClassFileName)
	}
	if f.labels != "" {
		lm, err := segment.LoadLabelMap(f.labels, segment.ADE20K())
		if err != nil {
			return nil, err
		}
		c.classifier = lm
	}
	return c, nil
}

type replCmd struct {
	*root
	fs *flag.FlagSet
	sessionFlags
	execs commandList

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func parseReplCmd(args []string, r *root) (*replCmd, error) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	c := &replCmd{root: r, fs: fs, stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	fs.Usage = usageFunc(c)
	c.register(fs, r)
	fs.Var(&c.execs, "e", "execute a command in immediate mode (may be specified multiple times)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.file == "" || fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *replCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *replCmd) Run() error {
	con, err := c.openConsole(c.root, c.stdout)
	if err != nil {
		return err
	}
	if len(c.execs) > 0 {
		for _, line := range c.execs {
			done, err := con.executeLine(line)
			if err != nil {
				return fmt.Errorf("%s: %w", line, err)
			}
			if done {
				break
			}
		}
		return nil
	}

	fmt.Fprintln(c.stdout, "Enter commands (type 'exit' to quit)")
	scanner := bufio.NewScanner(c.stdin)
	for {
		fmt.Fprint(c.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		done, err := con.executeLine(scanner.Text())
		if err != nil {
			fmt.Fprintln(c.stderr, err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}
