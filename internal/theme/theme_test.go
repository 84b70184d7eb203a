package theme

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseAcceptsHexAndNames(t *testing.T) {
	th, err := Parse(strings.NewReader("Name: Mine\n# comment\nBackground: #102030\nHandle: red\nMessageBackground: #00000080\nUnknown: #FFFFFF\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if th.Name != "Mine" {
		t.Errorf("name = %q", th.Name)
	}
	if th.Background != (color.RGBA{0x10, 0x20, 0x30, 255}) {
		t.Errorf("background = %v", th.Background)
	}
	if th.Handle != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("handle = %v", th.Handle)
	}
	if th.MessageBackground.A != 0x80 {
		t.Errorf("message background alpha = %d", th.MessageBackground.A)
	}
	if th.CheckerDark != Default().CheckerDark {
		t.Errorf("unset keys should keep defaults")
	}
}

func TestParseRejectsBadColor(t *testing.T) {
	if _, err := Parse(strings.NewReader("Background: #zzzzzz\n")); err == nil {
		t.Fatal("expected error")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	in := Default()
	in.Name = "Round"
	in.SelectionDark = color.RGBA{1, 2, 3, 4}
	var buf bytes.Buffer
	if err := Write(&buf, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := Parse(&buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if *out != *in {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", in, out)
	}
}

func TestLoaderEmbeddedAndFiles(t *testing.T) {
	names := Names()
	if len(names) == 0 {
		t.Fatal("no embedded themes")
	}
	l := &Loader{ConfigDir: t.TempDir()}
	for _, n := range names {
		if _, err := l.Load(n); err != nil {
			t.Errorf("load %s: %v", n, err)
		}
	}
	th, err := l.Load("")
	if err != nil || th.Name != "Default" {
		t.Fatalf("empty name = %v, %v", th, err)
	}

	path := filepath.Join(l.ConfigDir, "mine.theme")
	if err := os.WriteFile(path, []byte("Name: Mine\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	th, err = l.Load("mine")
	if err != nil || th.Name != "Mine" {
		t.Fatalf("config dir theme = %v, %v", th, err)
	}
	if _, err := l.Load("nope"); err == nil {
		t.Fatal("expected not found")
	}
}
