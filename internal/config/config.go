package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/labelpaint/internal/palette"
	"github.com/example/labelpaint/internal/theme"
)

// Notify holds notification settings.
type Notify struct {
	Export  bool
	Segment bool
	Copy    bool
}

// Config holds the application configuration.
type Config struct {
	Theme       string
	SaveDir     string
	ClassesFile string
	BrushSize   float64
	EraserSize  float64
	MaskOpacity float64
	Workers     int
	// Palette replaces the built-in class colours when set.
	Palette *palette.Palette
	Notify  Notify
	Themes      map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme:       "", // Default to empty to allow fallback to Env/Default
		BrushSize:   20,
		EraserSize:  20,
		MaskOpacity: 0.5,
		Themes:      make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	if c.ClassesFile != "" {
		fmt.Fprintf(&sb, "classes_file = %s\n", c.ClassesFile)
	}
	fmt.Fprintf(&sb, "brush_size = %g\n", c.BrushSize)
	fmt.Fprintf(&sb, "eraser_size = %g\n", c.EraserSize)
	fmt.Fprintf(&sb, "mask_opacity = %g\n", c.MaskOpacity)
	if c.Workers > 0 {
		fmt.Fprintf(&sb, "workers = %d\n", c.Workers)
	}
	if c.Palette != nil {
		var names []string
		for _, e := range c.Palette.Entries() {
			names = append(names, e.Name)
		}
		fmt.Fprintf(&sb, "palette = %s\n", strings.Join(names, ", "))
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "segment = %v\n", c.Notify.Segment)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		_ = theme.Write(&sb, c.Themes[name])
		sb.WriteString("\n")
	}

	return sb.String()
}

// ClassPalette returns the configured class palette or the built-in one.
func (c *Config) ClassPalette() *palette.Palette {
	if c.Palette != nil {
		return c.Palette
	}
	return palette.Default()
}

// ResolveTheme picks the theme named by flag, then env, then the config file,
// looking in the config's own [theme.x] sections before the theme loader.
func (c *Config) ResolveTheme(flagName, envName string) (*theme.Theme, error) {
	name := flagName
	if name == "" {
		name = envName
	}
	if name == "" {
		name = c.Theme
	}
	if t, ok := c.Themes[name]; ok {
		return t, nil
	}
	t, err := theme.NewLoader().Load(name)
	if err != nil {
		return theme.Default(), err
	}
	return t, nil
}
