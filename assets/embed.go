// Package assets holds the preset class lists shipped with labelpaint.
package assets

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/example/labelpaint/internal/export"
)

//go:embed classes/*.json
var embeddedClasses embed.FS

var (
	loadPresetsOnce sync.Once
	loadPresetsErr  error

	presets = map[string][]string{}
)

func loadPresets() {
	entries, err := fs.ReadDir(embeddedClasses, "classes")
	if err != nil {
		loadPresetsErr = err
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := embeddedClasses.ReadFile(path.Join("classes", name))
		if err != nil {
			loadPresetsErr = err
			return
		}
		names, err := export.DecodeClassNames(bytes.NewReader(data))
		if err != nil {
			loadPresetsErr = fmt.Errorf("preset %s: %w", name, err)
			return
		}
		presets[strings.TrimSuffix(name, ".json")] = names
	}
}

func ensurePresets() error {
	loadPresetsOnce.Do(loadPresets)
	return loadPresetsErr
}

// Preset returns a copy of the class names stored under name.
func Preset(name string) ([]string, error) {
	if err := ensurePresets(); err != nil {
		return nil, err
	}
	names, ok := presets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("class preset %q not embedded", name)
	}
	return append([]string(nil), names...), nil
}

// PresetNames lists the embedded presets.
func PresetNames() []string {
	if err := ensurePresets(); err != nil {
		return nil
	}
	out := make([]string, 0, len(presets))
	for name := range presets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
