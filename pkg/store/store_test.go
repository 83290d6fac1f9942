package store

import (
	"context"
	"testing"

	"github.com/Glycocalex/glycowork-ab/pkg/errors"
	"github.com/Glycocalex/glycowork-ab/pkg/glycan"
)

func TestFileStoreRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	d := &Dataset{
		Name:    "test-set",
		Glycans: []string{"Gal(b1-4)GlcNAc", "Neu5Ac(a2-6)Gal(b1-4)GlcNAc"},
		Labels:  map[string]string{"Gal(b1-4)GlcNAc": "LacNAc"},
	}
	if err := s.Put(ctx, d); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "test-set")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Glycans) != 2 || got.Labels["Gal(b1-4)GlcNAc"] != "LacNAc" {
		t.Errorf("round trip lost data: %+v", got)
	}

	names, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "test-set" {
		t.Errorf("List = %v", names)
	}

	if err := s.Delete(ctx, "test-set"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "test-set"); !errors.Is(err, errors.ErrCodeDatasetNotFound) {
		t.Errorf("got %v, want dataset-not-found", err)
	}
	if err := s.Delete(ctx, "test-set"); err != nil {
		t.Errorf("double delete errored: %v", err)
	}
}

func TestPutRejectsInvalidDataset(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := s.Put(ctx, &Dataset{Name: "empty", Glycans: nil}); err == nil {
		t.Error("empty dataset accepted")
	}
	if err := s.Put(ctx, &Dataset{Name: "bad", Glycans: []string{"Gal(b1-4"}}); err == nil {
		t.Error("unbalanced sequence accepted")
	}
}

func TestFileStoreRejectsPathNames(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for _, name := range []string{"../escape", "a/b", ".hidden", ""} {
		if _, err := s.Get(ctx, name); !errors.Is(err, errors.ErrCodeInvalidDataset) {
			t.Errorf("Get(%q) = %v, want invalid-dataset error", name, err)
		}
		if err := s.Delete(ctx, name); !errors.Is(err, errors.ErrCodeInvalidDataset) {
			t.Errorf("Delete(%q) = %v, want invalid-dataset error", name, err)
		}
	}
}

func TestEmbeddedDatasetsParse(t *testing.T) {
	names := EmbeddedNames()
	if len(names) == 0 {
		t.Fatal("no embedded datasets")
	}
	for _, name := range names {
		d, err := LoadEmbedded(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if err := d.Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
		// Every reference sequence must parse.
		for _, seq := range d.Glycans {
			if _, err := glycan.Parse(seq); err != nil {
				t.Errorf("%s: %s: %v", name, seq, err)
			}
		}
	}
}

func TestResolveFallsBackToEmbedded(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	d, err := Resolve(ctx, s, "milk_oligosaccharides")
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "milk_oligosaccharides" {
		t.Errorf("resolved %q", d.Name)
	}

	// A stored dataset shadows the embedded one.
	custom := &Dataset{Name: "milk_oligosaccharides", Glycans: []string{"Gal(b1-4)Glc"}}
	if err := s.Put(ctx, custom); err != nil {
		t.Fatal(err)
	}
	d, err = Resolve(ctx, s, "milk_oligosaccharides")
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Glycans) != 1 {
		t.Errorf("store did not shadow embedded dataset: %v", d.Glycans)
	}

	if _, err := Resolve(ctx, nil, "missing"); !errors.Is(err, errors.ErrCodeDatasetNotFound) {
		t.Errorf("got %v, want dataset-not-found", err)
	}
}
