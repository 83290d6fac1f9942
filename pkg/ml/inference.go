package ml

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/Glycocalex/glycowork-ab/pkg/errors"
	"github.com/Glycocalex/glycowork-ab/pkg/glycan"
)

// Prediction is one classified glycan.
type Prediction struct {
	Glycan      string    `json:"glycan"`
	Class       string    `json:"class"`
	Probability float64   `json:"probability"`
	Scores      []float64 `json:"scores"` // softmax over the model's class list
}

// featGraph is the network's view of a glycan: both residues and linkages
// become nodes, each carrying a one-hot glycoletter feature.
type featGraph struct {
	feats *mat.Dense // nodes x vocabulary
	adj   [][]int    // neighbor lists, self included
}

func (m *Model) featurize(g *glycan.Glycan) (*featGraph, error) {
	nodes := g.Nodes()
	sort.Slice(nodes, func(a, b int) bool { return nodes[a].ID < nodes[b].ID })

	index := make(map[string]int, len(nodes))
	var tokens []string
	for i, n := range nodes {
		index[n.ID] = i
		tokens = append(tokens, n.Mono)
	}

	adj := make([][]int, len(nodes))
	for _, e := range g.Edges() {
		// The linkage itself becomes a node between child and parent.
		li := len(tokens)
		tokens = append(tokens, e.Linkage)
		adj = append(adj, nil)

		ci, pi := index[e.Child], index[e.Parent]
		adj[ci] = append(adj[ci], li)
		adj[li] = append(adj[li], ci, pi)
		adj[pi] = append(adj[pi], li)
	}
	for i := range adj {
		adj[i] = append(adj[i], i)
	}

	feats := mat.NewDense(len(tokens), len(m.Vocabulary), nil)
	for i, tok := range tokens {
		col, ok := m.vocabIndex[tok]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidModel, "glycoletter %q not in model vocabulary", tok)
		}
		feats.Set(i, col, 1)
	}
	return &featGraph{feats: feats, adj: adj}, nil
}

// Embed runs the convolution layers over one parsed glycan and returns
// its mean-pooled embedding vector.
func (m *Model) Embed(g *glycan.Glycan) ([]float64, error) {
	fg, err := m.featurize(g)
	if err != nil {
		return nil, err
	}
	h := fg.feats
	for _, layer := range m.Conv {
		h = applyLayer(layer, neighborMean(h, fg.adj), true)
	}
	return meanPool(h), nil
}

// EmbedAll parses and embeds a list of IUPAC-condensed sequences.
func (m *Model) EmbedAll(seqs []string) ([][]float64, error) {
	out := make([][]float64, len(seqs))
	for i, seq := range seqs {
		g, err := glycan.Parse(seq)
		if err != nil {
			return nil, err
		}
		emb, err := m.Embed(g)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

// Predict classifies a list of IUPAC-condensed sequences with the model's
// dense head. The model must carry a class list.
func (m *Model) Predict(seqs []string) ([]Prediction, error) {
	if len(m.Classes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidModel, "model %s has no class list", m.Name)
	}
	out := make([]Prediction, len(seqs))
	for i, seq := range seqs {
		g, err := glycan.Parse(seq)
		if err != nil {
			return nil, err
		}
		emb, err := m.Embed(g)
		if err != nil {
			return nil, err
		}
		scores := softmax(m.head(emb))
		best := 0
		for k := range scores {
			if scores[k] > scores[best] {
				best = k
			}
		}
		out[i] = Prediction{
			Glycan:      seq,
			Class:       m.Classes[best],
			Probability: scores[best],
			Scores:      scores,
		}
	}
	return out, nil
}

// head pushes a vector through the dense layers, ReLU between all but the
// last.
func (m *Model) head(v []float64) []float64 {
	for i, layer := range m.Head {
		v = applyVec(layer, v, i < len(m.Head)-1)
	}
	return v
}

// neighborMean aggregates each node's feature row as the mean over its
// neighborhood.
func neighborMean(h *mat.Dense, adj [][]int) *mat.Dense {
	n, d := h.Dims()
	out := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for _, j := range adj[i] {
			for k := 0; k < d; k++ {
				out.Set(i, k, out.At(i, k)+h.At(j, k))
			}
		}
		inv := 1 / float64(len(adj[i]))
		for k := 0; k < d; k++ {
			out.Set(i, k, out.At(i, k)*inv)
		}
	}
	return out
}

func applyLayer(l Layer, h *mat.Dense, relu bool) *mat.Dense {
	n, _ := h.Dims()
	w := mat.NewDense(l.OutDim(), l.InDim(), nil)
	for i, row := range l.Weights {
		w.SetRow(i, row)
	}
	out := mat.NewDense(n, l.OutDim(), nil)
	out.Mul(h, w.T())
	for i := 0; i < n; i++ {
		for j := 0; j < l.OutDim(); j++ {
			v := out.At(i, j) + l.Bias[j]
			if relu && v < 0 {
				v = 0
			}
			out.Set(i, j, v)
		}
	}
	return out
}

func applyVec(l Layer, v []float64, relu bool) []float64 {
	out := make([]float64, l.OutDim())
	for i, row := range l.Weights {
		s := l.Bias[i]
		for j, w := range row {
			s += w * v[j]
		}
		if relu && s < 0 {
			s = 0
		}
		out[i] = s
	}
	return out
}

func meanPool(h *mat.Dense) []float64 {
	n, d := h.Dims()
	out := make([]float64, d)
	for j := 0; j < d; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += h.At(i, j)
		}
		out[j] = sum / float64(n)
	}
	return out
}

func softmax(v []float64) []float64 {
	maxV := math.Inf(-1)
	for _, x := range v {
		if x > maxV {
			maxV = x
		}
	}
	out := make([]float64, len(v))
	var sum float64
	for i, x := range v {
		out[i] = math.Exp(x - maxV)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
