package motif

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed data/motifs.json
var dataFS embed.FS

// LibraryVersion identifies the bundled motif library revision. Cached
// quantification matrices are keyed on it so a library update invalidates
// stale counts.
const LibraryVersion = "2025.08"

var (
	defaultOnce sync.Once
	defaultLib  []Motif
	defaultErr  error
)

// DefaultLibrary returns the bundled motif library, compiled and ready for
// matching. The library is loaded once; the returned slice is shared, so
// callers must not modify it.
func DefaultLibrary() ([]Motif, error) {
	defaultOnce.Do(func() {
		defaultLib, defaultErr = loadEmbedded()
	})
	return defaultLib, defaultErr
}

func loadEmbedded() ([]Motif, error) {
	data, err := dataFS.ReadFile("data/motifs.json")
	if err != nil {
		return nil, fmt.Errorf("read embedded motif library: %w", err)
	}
	return ParseLibrary(data)
}

// ParseLibrary decodes a JSON motif list and compiles every pattern.
// Returns an error naming the first motif that fails to compile.
func ParseLibrary(data []byte) ([]Motif, error) {
	var motifs []Motif
	if err := json.Unmarshal(data, &motifs); err != nil {
		return nil, fmt.Errorf("decode motif library: %w", err)
	}
	seen := make(map[string]bool, len(motifs))
	for i := range motifs {
		m := &motifs[i]
		if m.Name == "" {
			return nil, fmt.Errorf("motif %d has no name", i)
		}
		if seen[m.Name] {
			return nil, fmt.Errorf("duplicate motif name %q", m.Name)
		}
		seen[m.Name] = true
		if err := m.Compile(); err != nil {
			return nil, err
		}
	}
	return motifs, nil
}

// Lookup returns the motif with the given name from the library.
func Lookup(lib []Motif, name string) (*Motif, bool) {
	for i := range lib {
		if lib[i].Name == name {
			return &lib[i], true
		}
	}
	return nil, false
}
