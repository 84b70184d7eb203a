package assets

import (
	"testing"

	"github.com/example/labelpaint/internal/model"
)

func TestPresetsAreValidClassLists(t *testing.T) {
	names := PresetNames()
	if len(names) == 0 {
		t.Fatal("no presets embedded")
	}
	for _, preset := range names {
		classes, err := Preset(preset)
		if err != nil {
			t.Fatalf("preset %s: %v", preset, err)
		}
		seen := map[string]bool{}
		for _, c := range classes {
			if err := model.ValidateClassName(c); err != nil {
				t.Errorf("preset %s: %q: %v", preset, c, err)
			}
			if seen[c] {
				t.Errorf("preset %s: duplicate %q", preset, c)
			}
			seen[c] = true
		}
	}
}

func TestPresetReturnsCopy(t *testing.T) {
	a, err := Preset("street")
	if err != nil {
		t.Fatal(err)
	}
	a[0] = "changed"
	b, _ := Preset("street")
	if b[0] == "changed" {
		t.Fatal("preset slice shared with caller")
	}
	if _, err := Preset("nope"); err == nil {
		t.Fatal("expected error for unknown preset")
	}
}
