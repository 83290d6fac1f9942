package store

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Glycocalex/glycowork-ab/pkg/errors"
)

//go:embed data/*.json
var embeddedFS embed.FS

// EmbeddedNames lists the reference datasets shipped with the binary.
func EmbeddedNames() []string {
	entries, _ := embeddedFS.ReadDir("data")
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// LoadEmbedded returns one of the shipped reference datasets.
func LoadEmbedded(name string) (*Dataset, error) {
	data, err := embeddedFS.ReadFile("data/" + name + ".json")
	if err != nil {
		return nil, errors.New(errors.ErrCodeDatasetNotFound, "no embedded dataset %q", name)
	}
	var d Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse embedded dataset %q: %w", name, err)
	}
	return &d, nil
}

// Resolve looks a dataset up in the given store first and falls back to
// the embedded reference datasets. A nil store searches only the
// embedded ones.
func Resolve(ctx context.Context, s Store, name string) (*Dataset, error) {
	if s != nil {
		d, err := s.Get(ctx, name)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, errors.ErrCodeDatasetNotFound) {
			return nil, err
		}
	}
	return LoadEmbedded(name)
}
