package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(dir, home) {
		t.Errorf("cacheDir() = %q, should be under home %q", dir, home)
	}
	if !strings.HasSuffix(dir, appName) {
		t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
	}

	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err = cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg", appName) {
		t.Errorf("cacheDir() = %q with XDG_CACHE_HOME set", dir)
	}
}

func TestParseFormats(t *testing.T) {
	if got := parseFormats(""); len(got) != 1 || got[0] != "svg" {
		t.Errorf("parseFormats(\"\") = %v", got)
	}
	if got := parseFormats("svg,png,dot"); len(got) != 3 || got[2] != "dot" {
		t.Errorf("parseFormats = %v", got)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"parse", "motifs", "diff", "draw", "chem", "embed", "predict", "datasets", "cache", "serve", "completion"}
	have := make(map[string]bool)
	for _, cmd := range root.Commands() {
		have[cmd.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestReadGlycans(t *testing.T) {
	c := New(io.Discard, LogInfo)
	ctx := t.Context()

	// Positional arguments win.
	seqs, err := c.readGlycans(ctx, []string{"Gal(b1-4)GlcNAc"}, "", "")
	if err != nil || len(seqs) != 1 {
		t.Fatalf("positional: %v %v", seqs, err)
	}

	// File input skips blanks and comments.
	path := filepath.Join(t.TempDir(), "glycans.txt")
	content := "# panel\nGal(b1-4)GlcNAc\n\nFuc(a1-2)Gal(b1-4)Glc\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	seqs, err = c.readGlycans(ctx, nil, "", path)
	if err != nil {
		t.Fatal(err)
	}
	if len(seqs) != 2 || seqs[1] != "Fuc(a1-2)Gal(b1-4)Glc" {
		t.Errorf("file input: %v", seqs)
	}

	// Nothing given is an error.
	if _, err := c.readGlycans(ctx, nil, "", ""); err == nil {
		t.Error("empty input accepted")
	}
}

func TestReadAbundance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abundance.csv")
	content := "glycan,s1,s2,s3\nGal(b1-4)GlcNAc,1.5,2,3\nFuc(a1-2)Gal(b1-4)Glc,4,5,6\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := readAbundance(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Features) != 2 || len(table.Samples) != 3 {
		t.Fatalf("table shape %dx%d", len(table.Features), len(table.Samples))
	}
	if table.Values[0][0] != 1.5 || table.Values[1][2] != 6 {
		t.Errorf("values = %v", table.Values)
	}

	bad := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(bad, []byte("glycan,s1\nGal,notanumber\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readAbundance(bad); err == nil {
		t.Error("non-numeric abundance accepted")
	}
}

func TestLoadLectinModelRequiresPath(t *testing.T) {
	c := New(io.Discard, LogInfo)
	if _, err := c.loadLectinModel(""); err == nil {
		t.Error("missing lectin model path accepted")
	}
}

func TestPredictCommandLectinFlags(t *testing.T) {
	c := New(io.Discard, LogInfo)
	cmd := c.predictCommand()
	for _, name := range []string{"lectin", "lectin-model"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("predict command missing --%s", name)
		}
	}
}

func TestGlycanListModelNavigation(t *testing.T) {
	entries := []GlycanEntry{
		{Sequence: "Gal(b1-4)GlcNAc", Label: "LacNAc"},
		{Sequence: "Gal(b1-4)Glc", Label: "lactose"},
	}
	m := NewGlycanListModel(entries)
	if m.Cursor != 0 {
		t.Fatalf("cursor = %d", m.Cursor)
	}
	view := m.View()
	for _, e := range entries {
		if !strings.Contains(view, e.Sequence) {
			t.Errorf("view missing %s", e.Sequence)
		}
	}
}
