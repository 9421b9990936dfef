package theme

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tinytelemetry/nucleus/internal/model"
)

func TestResolver_DefaultsWhenNoSources(t *testing.T) {
	t.Parallel()

	th := NewResolver().Read()
	if got := th.Accent.Hex(); got != model.DefaultAccent {
		t.Fatalf("accent = %s, want %s", got, model.DefaultAccent)
	}
	if got := th.Border.Hex(); got != model.DefaultBorder {
		t.Fatalf("border = %s, want %s", got, model.DefaultBorder)
	}
}

func TestResolver_SourceOrderAndFallthrough(t *testing.T) {
	t.Parallel()

	r := NewResolver(
		Static{TokenAccent: "not-a-colour"},
		Static{TokenAccent: "#ff0000", TokenBorder: "00ff00"},
		Static{TokenAccent: "#0000ff"},
	)
	th := r.Read()

	if got := th.Accent.Hex(); got != "#ff0000" {
		t.Fatalf("accent = %s, want #ff0000", got)
	}
	if got := th.Border.Hex(); got != "#00ff00" {
		t.Fatalf("border = %s, want #00ff00", got)
	}
}

func TestResolver_ReadsEnvEveryCall(t *testing.T) {
	t.Parallel()

	env := map[string]string{"NUCLEUS_ACCENT": "#111111"}
	r := NewResolver(Env{Prefix: "nucleus", Getenv: func(k string) string { return env[k] }})

	if got := r.Read().Accent.Hex(); got != "#111111" {
		t.Fatalf("accent = %s, want #111111", got)
	}
	env["NUCLEUS_ACCENT"] = "#222222"
	if got := r.Read().Accent.Hex(); got != "#222222" {
		t.Fatalf("accent after change = %s, want #222222", got)
	}
}

func TestCycle_NextWraps(t *testing.T) {
	t.Parallel()

	c := NewCycle(BuiltinSkins, "sunset")
	if c.Current().Name != "sunset" {
		t.Fatalf("current = %s, want sunset", c.Current().Name)
	}
	if got := c.Next().Name; got != BuiltinSkins[0].Name {
		t.Fatalf("next = %s, want %s", got, BuiltinSkins[0].Name)
	}
}

func TestSkinFile_ReloadsOnWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "skin.yml")
	if err := os.WriteFile(path, []byte("accent: \"#123456\"\nborder: \"#654321\"\n"), 0644); err != nil {
		t.Fatalf("write skin: %v", err)
	}

	sf, err := OpenSkinFile(path)
	if err != nil {
		t.Fatalf("OpenSkinFile: %v", err)
	}
	t.Cleanup(func() { sf.Close() })

	r := NewResolver(sf)
	if got := r.Read().Accent.Hex(); got != "#123456" {
		t.Fatalf("accent = %s, want #123456", got)
	}

	if err := os.WriteFile(path, []byte("accent: \"#abcdef\"\n"), 0644); err != nil {
		t.Fatalf("rewrite skin: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if r.Read().Accent.Hex() == "#abcdef" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("skin not reloaded, accent = %s", r.Read().Accent.Hex())
}

func TestOpenSkinFile_Missing(t *testing.T) {
	t.Parallel()

	if _, err := OpenSkinFile(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("expected error for missing skin file")
	}
}
