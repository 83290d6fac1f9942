package ml

import (
	"encoding/json"
	"math"
	"os"
	"sort"

	"github.com/Glycocalex/glycowork-ab/pkg/errors"
)

// Sort keys for embedding searches.
const (
	Euclid = iota
	Cosine
)

// Result orderings.
const (
	OrderAsc = iota
	OrderDesc
)

// Entry is one stored glycan embedding.
type Entry struct {
	Name   string    `json:"name"` // IUPAC-condensed sequence or an accession
	Vector []float64 `json:"vector"`
}

// EmbedDB is a persisted collection of glycan embeddings supporting
// exhaustive nearest-neighbor search.
type EmbedDB struct {
	Entries []Entry `json:"entries"`
}

// SearchOptions bounds and orders a search. Limit < 0 returns everything
// in range.
type SearchOptions struct {
	Limit  int
	Min    float64
	Max    float64
	SortBy int
	Order  int
}

// SearchDefault returns the 25 closest entries by cosine distance.
var SearchDefault = SearchOptions{
	Limit:  25,
	Min:    0.0,
	Max:    math.MaxFloat64,
	SortBy: Cosine,
	Order:  OrderAsc,
}

// SearchResult pairs a stored entry with its distances to the query.
type SearchResult struct {
	Entry
	Cosine, Euclid float64
}

// Add stores an embedding under a name.
func (db *EmbedDB) Add(name string, vector []float64) {
	db.Entries = append(db.Entries, Entry{Name: name, Vector: vector})
}

// Search performs an exhaustive scan of the collection and returns the
// entries within [Min, Max] of the query, ordered per the options.
func (db *EmbedDB) Search(query []float64, opts SearchOptions) []SearchResult {
	var results []SearchResult
	for _, entry := range db.Entries {
		r := SearchResult{
			Entry:  entry,
			Cosine: cosineDistance(query, entry.Vector),
			Euclid: euclidDistance(query, entry.Vector),
		}
		dist := r.Euclid
		if opts.SortBy == Cosine {
			dist = r.Cosine
		}
		if dist < opts.Min || dist > opts.Max {
			continue
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(a, b int) bool {
		da, dbv := results[a].Euclid, results[b].Euclid
		if opts.SortBy == Cosine {
			da, dbv = results[a].Cosine, results[b].Cosine
		}
		if opts.Order == OrderDesc {
			return da > dbv
		}
		return da < dbv
	})
	if opts.Limit >= 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results
}

// Save writes the collection to a JSON file.
func (db *EmbedDB) Save(path string) error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// OpenEmbedDB reads a collection from a JSON file.
func OpenEmbedDB(path string) (*EmbedDB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var db EmbedDB
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "decode embedding collection")
	}
	return &db, nil
}

func cosineDistance(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

func euclidDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
