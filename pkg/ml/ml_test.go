package ml

import (
	"math"
	"strings"
	"testing"

	"github.com/Glycocalex/glycowork-ab/pkg/errors"
)

// testModel builds a tiny two-channel network: channel 0 reacts to
// Gal/GlcNAc letters, channel 1 to sialic acid and linkage letters.
func testModel(t *testing.T) *Model {
	t.Helper()
	m, err := LoadModel(strings.NewReader(`{
		"name": "toy",
		"vocabulary": ["Gal", "GlcNAc", "Neu5Ac", "a2-3", "b1-4"],
		"conv": [
			{"weights": [[1, 1, 0, 0, 0], [0, 0, 1, 1, 1]], "bias": [0, 0]}
		],
		"head": [
			{"weights": [[1, 0], [0, 1]], "bias": [0, 0]}
		],
		"classes": ["non-sialylated", "sialylated"]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestLoadModelValidation(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"empty vocabulary", `{"vocabulary": [], "conv": [{"weights": [[1]], "bias": [0]}]}`},
		{"no conv layers", `{"vocabulary": ["Gal"], "conv": []}`},
		{"bias mismatch", `{"vocabulary": ["Gal"], "conv": [{"weights": [[1]], "bias": [0, 0]}]}`},
		{"width mismatch", `{"vocabulary": ["Gal", "Man"], "conv": [{"weights": [[1]], "bias": [0]}]}`},
		{"classes without head", `{"vocabulary": ["Gal"], "conv": [{"weights": [[1]], "bias": [0]}], "classes": ["a"]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadModel(strings.NewReader(tc.json))
			if !errors.Is(err, errors.ErrCodeInvalidModel) {
				t.Errorf("got %v, want invalid-model error", err)
			}
		})
	}
}

func TestPredict(t *testing.T) {
	m := testModel(t)
	preds, err := m.Predict([]string{
		"Gal(b1-4)GlcNAc",
		"Neu5Ac(a2-3)Gal(b1-4)GlcNAc",
	})
	if err != nil {
		t.Fatal(err)
	}
	if preds[0].Class != "non-sialylated" {
		t.Errorf("plain LacNAc classified as %s", preds[0].Class)
	}
	if preds[1].Class != "sialylated" {
		t.Errorf("sialylated glycan classified as %s", preds[1].Class)
	}
	for _, p := range preds {
		var sum float64
		for _, s := range p.Scores {
			sum += s
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("softmax scores for %s sum to %g", p.Glycan, sum)
		}
	}
}

func TestEmbedDeterministic(t *testing.T) {
	m := testModel(t)
	a, err := m.EmbedAll([]string{"Gal(b1-4)GlcNAc"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.EmbedAll([]string{"Gal(b1-4)GlcNAc"})
	if err != nil {
		t.Fatal(err)
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("embeddings differ: %v vs %v", a[0], b[0])
		}
	}
	if len(a[0]) != m.EmbedDim() {
		t.Errorf("embedding width %d, want %d", len(a[0]), m.EmbedDim())
	}
}

func TestEmbedUnknownLetter(t *testing.T) {
	m := testModel(t)
	_, err := m.EmbedAll([]string{"Xyl(b1-4)GlcNAc"})
	if !errors.Is(err, errors.ErrCodeInvalidModel) {
		t.Errorf("got %v, want invalid-model error for unknown glycoletter", err)
	}
}

func TestLectinPredict(t *testing.T) {
	lm := &LectinModel{
		Glycan:   testModel(t),
		Proteins: map[string][]float64{"MKV": {0.5, 0.5}},
		Head: []Layer{
			{Weights: [][]float64{{0, 0, 1, 1}}, Bias: []float64{0}},
		},
	}
	glycans := []string{"Gal(b1-4)GlcNAc", "Neu5Ac(a2-3)Gal(b1-4)GlcNAc"}
	scores, err := lm.Predict("MKV", glycans, LectinOptions{Sort: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 2 {
		t.Fatalf("got %d scores", len(scores))
	}
	if scores[0].Score > scores[1].Score {
		t.Error("results not sorted ascending")
	}

	corrected, err := lm.Predict("MKV", glycans, LectinOptions{
		Background: map[string]float64{"Gal(b1-4)GlcNAc": 100},
	})
	if err != nil {
		t.Fatal(err)
	}
	if corrected[0].Score > -50 {
		t.Errorf("background correction not applied, score = %g", corrected[0].Score)
	}

	if _, err := lm.Predict("UNKNOWN", glycans, LectinOptions{}); err == nil {
		t.Error("unknown protein should error")
	}
}

func TestLectinPredictBundledTable(t *testing.T) {
	conA, ok := DefaultLectins()["ConA"]
	if !ok {
		t.Fatal("bundled table has no ConA entry")
	}

	// A head sized for the bundled embedding plus the 2-dim glycan
	// embedding, reading only the glycan part.
	weights := make([]float64, len(conA)+2)
	weights[len(conA)] = 1
	weights[len(conA)+1] = 1
	lm := &LectinModel{
		Glycan:   testModel(t),
		Proteins: map[string][]float64{},
		Head: []Layer{
			{Weights: [][]float64{weights}, Bias: []float64{0}},
		},
	}
	scores, err := lm.Predict("ConA", []string{"Gal(b1-4)GlcNAc"}, LectinOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 1 {
		t.Fatalf("got %d scores", len(scores))
	}

	// A model-stored embedding of the wrong size is rejected.
	lm.Proteins["BAD"] = []float64{1}
	if _, err := lm.Predict("BAD", []string{"Gal(b1-4)GlcNAc"}, LectinOptions{}); err == nil {
		t.Error("mis-sized protein embedding accepted")
	}
}

func TestEmbedDBSearch(t *testing.T) {
	db := &EmbedDB{}
	db.Add("a", []float64{1, 0})
	db.Add("b", []float64{0.9, 0.1})
	db.Add("c", []float64{0, 1})

	opts := SearchDefault
	opts.Limit = 2
	results := db.Search([]float64{1, 0}, opts)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Name != "a" {
		t.Errorf("closest entry = %s, want a", results[0].Name)
	}
	if results[0].Cosine > results[1].Cosine {
		t.Error("results not in ascending cosine order")
	}

	far := db.Search([]float64{1, 0}, SearchOptions{Limit: -1, Min: 0.5, Max: 2, SortBy: Cosine})
	if len(far) != 1 || far[0].Name != "c" {
		t.Errorf("range search returned %v", far)
	}
}

func TestEmbedDBSaveOpen(t *testing.T) {
	db := &EmbedDB{}
	db.Add("a", []float64{1, 2})
	path := t.TempDir() + "/embeds.json"
	if err := db.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := OpenEmbedDB(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Entries) != 1 || loaded.Entries[0].Name != "a" {
		t.Errorf("round trip lost entries: %+v", loaded.Entries)
	}
}
