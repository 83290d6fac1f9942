package ml

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Glycocalex/glycowork-ab/pkg/errors"
)

// Layer is one dense transformation: Out[i] = sum_j Weights[i][j]*In[j] + Bias[i].
type Layer struct {
	Weights [][]float64 `json:"weights"` // one row per output unit
	Bias    []float64   `json:"bias"`
}

// InDim returns the layer's expected input width.
func (l Layer) InDim() int {
	if len(l.Weights) == 0 {
		return 0
	}
	return len(l.Weights[0])
}

// OutDim returns the layer's output width.
func (l Layer) OutDim() int { return len(l.Weights) }

// Model holds the weights of a pretrained glycan graph network: one-hot
// glycoletter features, message-passing convolution layers, and a dense
// head producing class scores.
type Model struct {
	Name       string   `json:"name"`
	Vocabulary []string `json:"vocabulary"` // sorted glycoletters the model was trained on
	Conv       []Layer  `json:"conv"`
	Head       []Layer  `json:"head"`
	Classes    []string `json:"classes,omitempty"`

	vocabIndex map[string]int
}

// LoadModel decodes and validates a model from JSON.
func LoadModel(r io.Reader) (*Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "decode model")
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	m.vocabIndex = make(map[string]int, len(m.Vocabulary))
	for i, letter := range m.Vocabulary {
		m.vocabIndex[letter] = i
	}
	return &m, nil
}

// LoadModelFile reads a model from a JSON weight file on disk.
func LoadModelFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "open model file")
	}
	defer f.Close()
	return LoadModel(f)
}

func (m *Model) validate() error {
	if len(m.Vocabulary) == 0 {
		return errors.New(errors.ErrCodeInvalidModel, "model has no vocabulary")
	}
	if len(m.Conv) == 0 {
		return errors.New(errors.ErrCodeInvalidModel, "model has no convolution layers")
	}
	width := len(m.Vocabulary)
	for i, layer := range m.Conv {
		if err := checkLayer(layer, width, fmt.Sprintf("conv[%d]", i)); err != nil {
			return err
		}
		width = layer.OutDim()
	}
	for i, layer := range m.Head {
		if err := checkLayer(layer, width, fmt.Sprintf("head[%d]", i)); err != nil {
			return err
		}
		width = layer.OutDim()
	}
	if len(m.Classes) > 0 {
		if len(m.Head) == 0 {
			return errors.New(errors.ErrCodeInvalidModel, "model declares classes but has no head")
		}
		if width != len(m.Classes) {
			return errors.New(errors.ErrCodeInvalidModel, "head emits %d scores for %d classes", width, len(m.Classes))
		}
	}
	return nil
}

func checkLayer(l Layer, in int, label string) error {
	if l.OutDim() == 0 {
		return errors.New(errors.ErrCodeInvalidModel, "%s is empty", label)
	}
	for _, row := range l.Weights {
		if len(row) != in {
			return errors.New(errors.ErrCodeInvalidModel, "%s expects input width %d, weight row has %d", label, in, len(row))
		}
	}
	if len(l.Bias) != l.OutDim() {
		return errors.New(errors.ErrCodeInvalidModel, "%s has %d bias terms for %d outputs", label, len(l.Bias), l.OutDim())
	}
	return nil
}

// EmbedDim returns the width of embeddings this model produces.
func (m *Model) EmbedDim() int {
	return m.Conv[len(m.Conv)-1].OutDim()
}
