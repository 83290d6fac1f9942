package ml

import (
	_ "embed"
	"encoding/json"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/Glycocalex/glycowork-ab/pkg/errors"
)

//go:embed data/lectins.json
var lectinTableJSON []byte

var (
	lectinTableOnce sync.Once
	lectinTable     map[string][]float64
)

// DefaultLectins returns the bundled lectin embedding table, keyed by
// common lectin name (ConA, WGA, SNA, ...). [LectinModel.Predict] falls
// back to it for proteins the model file does not carry.
func DefaultLectins() map[string][]float64 {
	lectinTableOnce.Do(func() {
		if err := json.Unmarshal(lectinTableJSON, &lectinTable); err != nil {
			panic("ml: corrupt embedded lectin table: " + err.Error())
		}
	})
	return lectinTable
}

// LectinModel scores protein-glycan binding: a stored table of protein
// embeddings is concatenated with glycan graph embeddings and pushed
// through a small dense head emitting one binding score.
type LectinModel struct {
	Glycan   *Model               `json:"glycan"`
	Proteins map[string][]float64 `json:"proteins"` // amino acid sequence -> embedding
	Head     []Layer              `json:"head"`
}

// LectinScore is one glycan's predicted binding strength to a protein.
type LectinScore struct {
	Glycan string  `json:"glycan"`
	Score  float64 `json:"score"`
}

// LectinOptions configures a binding prediction run.
type LectinOptions struct {
	// Background holds per-glycan baseline predictions subtracted from the
	// scores. Glycans without a baseline are corrected by zero.
	Background map[string]float64
	// Sort orders results by ascending score.
	Sort bool
}

// LoadLectinModel decodes and validates a lectin model from JSON.
func LoadLectinModel(r io.Reader) (*LectinModel, error) {
	var lm LectinModel
	if err := json.NewDecoder(r).Decode(&lm); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "decode lectin model")
	}
	if lm.Glycan == nil {
		return nil, errors.New(errors.ErrCodeInvalidModel, "lectin model has no glycan network")
	}
	if err := lm.Glycan.validate(); err != nil {
		return nil, err
	}
	lm.Glycan.vocabIndex = make(map[string]int, len(lm.Glycan.Vocabulary))
	for i, letter := range lm.Glycan.Vocabulary {
		lm.Glycan.vocabIndex[letter] = i
	}
	if len(lm.Head) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidModel, "lectin model has no head")
	}
	if out := lm.Head[len(lm.Head)-1].OutDim(); out != 1 {
		return nil, errors.New(errors.ErrCodeInvalidModel, "lectin head emits %d scores, want 1", out)
	}
	return &lm, nil
}

// LoadLectinModelFile reads a lectin model from a JSON weight file.
func LoadLectinModelFile(path string) (*LectinModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "open lectin model file")
	}
	defer f.Close()
	return LoadLectinModel(f)
}

// Predict scores the binding of one protein against a list of glycans.
// The protein embedding comes from the model's own table, falling back to
// the bundled [DefaultLectins] table for common lectin names.
func (lm *LectinModel) Predict(protein string, glycans []string, opts LectinOptions) ([]LectinScore, error) {
	rep, ok := lm.Proteins[protein]
	if !ok {
		rep, ok = DefaultLectins()[protein]
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidModel, "no stored embedding for protein %q", protein)
	}
	if in := lm.Head[0].InDim(); len(rep)+lm.Glycan.EmbedDim() != in {
		return nil, errors.New(errors.ErrCodeInvalidModel,
			"protein embedding size %d and glycan embedding size %d do not fit head input %d",
			len(rep), lm.Glycan.EmbedDim(), in)
	}

	out := make([]LectinScore, len(glycans))
	for i, seq := range glycans {
		emb, err := lm.Glycan.EmbedAll([]string{seq})
		if err != nil {
			return nil, err
		}
		input := make([]float64, 0, len(rep)+len(emb[0]))
		input = append(input, rep...)
		input = append(input, emb[0]...)

		v := input
		for k, layer := range lm.Head {
			v = applyVec(layer, v, k < len(lm.Head)-1)
		}
		score := v[0]
		if opts.Background != nil {
			score -= opts.Background[seq]
		}
		out[i] = LectinScore{Glycan: seq, Score: score}
	}
	if opts.Sort {
		sort.SliceStable(out, func(a, b int) bool { return out[a].Score < out[b].Score })
	}
	return out, nil
}
