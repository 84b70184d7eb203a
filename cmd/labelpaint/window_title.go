package main

import (
	"fmt"
	"path/filepath"
	"strings"
)

type titleOptions struct {
	File   string
	Mode   string
	Detail string
	Extras []string
}

func windowTitle(opts titleOptions) string {
	parts := []string{"labelpaint"}

	if file := strings.TrimSpace(opts.File); file != "" {
		parts = append(parts, filepath.Base(file))
	}
	if mode := strings.TrimSpace(opts.Mode); mode != "" {
		parts = append(parts, mode)
	}
	if detail := strings.TrimSpace(opts.Detail); detail != "" {
		parts = append(parts, detail)
	}

	extras := make([]string, 0, len(opts.Extras)+2)
	if v := strings.TrimSpace(version); v != "" {
		extras = append(extras, fmt.Sprintf("v%s", v))
	}
	if c := strings.TrimSpace(commit); c != "" {
		extras = append(extras, fmt.Sprintf("commit %s", c))
	}
	extras = append(extras, opts.Extras...)

	return strings.Join(append(parts, extras...), " - ")
}
