// Package palette hands out distinct class colours.
package palette

import (
	"fmt"
	"image/color"
	"strings"

	"golang.org/x/image/colornames"
)

// Entry is a named palette colour.
type Entry struct {
	Name  string
	Color color.RGBA
}

// defaultNames lists the class colours in allocation order. Neighbouring
// entries are picked to contrast so consecutive classes are easy to tell apart.
var defaultNames = []string{
	"red", "lime", "blue", "yellow", "cyan", "magenta",
	"orange", "purple", "teal", "maroon", "olive", "navy",
	"deeppink", "springgreen", "dodgerblue", "gold", "darkorchid", "chocolate",
	"crimson", "lawngreen", "royalblue", "khaki", "turquoise", "hotpink",
	"darkgreen", "sienna", "slateblue", "tomato", "mediumseagreen", "indigo",
	"salmon", "yellowgreen", "steelblue", "orchid", "darkkhaki", "firebrick",
	"aquamarine", "plum", "peru", "cadetblue", "greenyellow", "mediumvioletred",
	"lightcoral", "darkcyan", "tan", "limegreen", "palevioletred", "skyblue",
	"darkgoldenrod", "mediumpurple", "forestgreen", "sandybrown", "lightseagreen", "violet",
	"brown", "olivedrab", "cornflowerblue", "orangered", "darkslateblue", "rosybrown",
	"mediumaquamarine", "darkmagenta", "burlywood", "seagreen", "midnightblue", "goldenrod",
	"pink", "darkolivegreen", "lightskyblue", "coral", "thistle", "darkred",
	"paleturquoise", "mediumorchid", "wheat", "darkturquoise", "lightgreen", "deepskyblue",
	"navajowhite", "blueviolet", "lightpink", "darksalmon", "palegreen", "lightsteelblue",
	"moccasin", "darkseagreen", "powderblue", "peachpuff", "mediumslateblue", "lightsalmon",
	"chartreuse", "bisque", "mediumturquoise", "saddlebrown", "lavender", "darkviolet",
	"palegoldenrod", "indianred", "lightblue", "mediumspringgreen", "mistyrose", "slategray",
	"silver", "gray",
}

// Palette is an ordered set of distinct opaque colours.
type Palette struct {
	entries []Entry
}

// New builds a palette from entries. Duplicate colours keep their first entry.
func New(entries []Entry) *Palette {
	p := &Palette{}
	seen := make(map[color.RGBA]bool)
	for _, e := range entries {
		e.Color.A = 255
		if seen[e.Color] {
			continue
		}
		seen[e.Color] = true
		p.entries = append(p.entries, e)
	}
	return p
}

// Default returns the built-in class palette.
func Default() *Palette {
	entries := make([]Entry, 0, len(defaultNames))
	for _, n := range defaultNames {
		entries = append(entries, Entry{Name: n, Color: colornames.Map[n]})
	}
	return New(entries)
}

// FromNames builds a palette from CSS colour names or #RRGGBB values.
func FromNames(names []string) (*Palette, error) {
	entries := make([]Entry, 0, len(names))
	for _, n := range names {
		c, err := ParseColor(n)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: strings.ToLower(strings.TrimSpace(n)), Color: c})
	}
	return New(entries), nil
}

// Entries returns a copy of the palette.
func (p *Palette) Entries() []Entry {
	return append([]Entry(nil), p.entries...)
}

// Len returns the palette size.
func (p *Palette) Len() int {
	return len(p.entries)
}

// Allocate returns the first colour not present in used.
func (p *Palette) Allocate(used []color.RGBA) (color.RGBA, bool) {
	taken := usedSet(used)
	for _, e := range p.entries {
		if !taken[e.Color] {
			return e.Color, true
		}
	}
	return color.RGBA{}, false
}

// Remaining counts the colours not present in used.
func (p *Palette) Remaining(used []color.RGBA) int {
	taken := usedSet(used)
	n := 0
	for _, e := range p.entries {
		if !taken[e.Color] {
			n++
		}
	}
	return n
}

// Name returns the palette name for c, or its hex form.
func (p *Palette) Name(c color.RGBA) string {
	for _, e := range p.entries {
		if e.Color == c {
			return e.Name
		}
	}
	return Hex(c)
}

func usedSet(used []color.RGBA) map[color.RGBA]bool {
	m := make(map[color.RGBA]bool, len(used))
	for _, c := range used {
		m[c] = true
	}
	return m
}

// ParseColor accepts a CSS colour name or a #RRGGBB / #RRGGBBAA value.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		var c color.RGBA
		c.A = 255
		var err error
		switch len(s) {
		case 7:
			_, err = fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
		case 9:
			_, err = fmt.Sscanf(s, "#%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
		default:
			err = fmt.Errorf("bad length")
		}
		if err == nil {
			return c, nil
		}
	}
	return color.RGBA{}, fmt.Errorf("unknown color %q", s)
}

// Hex formats c as #RRGGBB, or #RRGGBBAA when c is translucent.
func Hex(c color.RGBA) string {
	if c.A != 255 {
		return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
