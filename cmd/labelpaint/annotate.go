package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/example/labelpaint/internal/appstate"
	"github.com/example/labelpaint/internal/export"
	"github.com/example/labelpaint/internal/segment"
)

// annotateCmd represents the annotate subcommand.
type annotateCmd struct {
	file    string
	classes string
	preset  string
	output  string
	labels  string
	*root
	fs *flag.FlagSet
}

func (a *annotateCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	fs := flag.NewFlagSet("annotate", flag.ExitOnError)
	a := &annotateCmd{root: r, fs: fs}
	fs.Usage = usageFunc(a)
	fs.StringVar(&a.file, "file", "", "image file to annotate")
	fs.StringVar(&a.classes, "classes", r.cfg().ClassesFile, "class list file to import")
	fs.StringVar(&a.preset, "preset", "", "embedded class preset to import")
	fs.StringVar(&a.output, "output", "", "annotation raster path (default <image>.png)")
	fs.StringVar(&a.labels, "labels", "", "label map used by the segment actions")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if a.file == "" || fs.NArg() != 0 {
		return nil, &UsageError{of: a}
	}
	return a, nil
}

func (a *annotateCmd) Run() error {
	cfg := a.cfg()
	img, err := loadImage(a.file)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	sess := newSession(cfg)
	opts := []appstate.Option{
		appstate.WithSession(sess),
		appstate.WithImage(a.file, img),
		appstate.WithOutput(outputPath(a.output, a.file, cfg)),
		appstate.WithWorkers(cfg.Workers),
		appstate.WithTitle(windowTitle(titleOptions{File: a.file, Mode: "annotate", Detail: a.preset})),
	}
	if a.root != nil {
		opts = append(opts, appstate.WithNotifier(a.notifier), appstate.WithTheme(a.activeTheme))
	}
	if cfg.SaveDir != "" {
		opts = append(opts, appstate.WithClassesOutput(filepath.Join(cfg.SaveDir, export.ClassFileName)))
	}
	if a.preset != "" {
		if err := importPreset(sess, a.preset); err != nil {
			return err
		}
	}
	if a.classes != "" {
		if err := importClasses(sess, a.classes); err != nil {
			return err
		}
	}
	if a.labels != "" {
		c, err := segment.LoadLabelMap(a.labels, segment.ADE20K())
		if err != nil {
			return err
		}
		opts = append(opts, appstate.WithClassifier(c))
	}
	appstate.New(opts...).Run()
	return nil
}
