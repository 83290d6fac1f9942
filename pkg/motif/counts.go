package motif

import (
	"fmt"
	"math"

	"github.com/Glycocalex/glycowork-ab/pkg/glycan"
)

// Profile is a bag-of-motifs vector for a single glycan: one count per
// motif in a fixed library ordering.
type Profile struct {
	Glycan string    // IUPAC-condensed sequence the profile was computed from
	Counts []float64 // Occurrence counts, indexed like the library
}

// Len returns the vector length, which always equals the library size.
func (p Profile) Len() int { return len(p.Counts) }

// Add returns the element-wise sum of two profiles.
// Add panics if the operands have different lengths.
func (p Profile) Add(q Profile) Profile {
	if p.Len() != q.Len() {
		panic("cannot add motif profiles of differing lengths")
	}
	sum := Profile{Counts: make([]float64, p.Len())}
	for i := range p.Counts {
		sum.Counts[i] = p.Counts[i] + q.Counts[i]
	}
	return sum
}

// Euclid returns the Euclidean distance between two profiles.
func (p Profile) Euclid(q Profile) float64 {
	if p.Len() != q.Len() {
		panic("cannot compare motif profiles of differing lengths")
	}
	var sum float64
	for i := range p.Counts {
		d := p.Counts[i] - q.Counts[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine distance (1 - cosine similarity) between two
// profiles. Two zero vectors have distance 1.
func (p Profile) Cosine(q Profile) float64 {
	if p.Len() != q.Len() {
		panic("cannot compare motif profiles of differing lengths")
	}
	var dot, np, nq float64
	for i := range p.Counts {
		dot += p.Counts[i] * q.Counts[i]
		np += p.Counts[i] * p.Counts[i]
		nq += q.Counts[i] * q.Counts[i]
	}
	if np == 0 || nq == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(np)*math.Sqrt(nq))
}

// Normalize returns the profile scaled to unit L2 norm.
// A zero profile is returned unchanged.
func (p Profile) Normalize() Profile {
	var norm float64
	for _, c := range p.Counts {
		norm += c * c
	}
	if norm == 0 {
		return p
	}
	norm = math.Sqrt(norm)
	out := Profile{Glycan: p.Glycan, Counts: make([]float64, p.Len())}
	for i, c := range p.Counts {
		out.Counts[i] = c / norm
	}
	return out
}

// Matrix is a motif quantification of a glycan dataset: rows are glycans,
// columns are motifs from a fixed library.
type Matrix struct {
	Glycans []string    `json:"glycans"`
	Motifs  []string    `json:"motifs"`
	Data    [][]float64 `json:"data"` // Data[i][j] = count of motif j in glycan i
}

// Row returns glycan i's profile.
func (m *Matrix) Row(i int) Profile {
	return Profile{Glycan: m.Glycans[i], Counts: m.Data[i]}
}

// Column returns the counts of one motif across all glycans.
func (m *Matrix) Column(j int) []float64 {
	out := make([]float64, len(m.Data))
	for i := range m.Data {
		out[i] = m.Data[i][j]
	}
	return out
}

// ProfileOf computes the motif profile of a single parsed glycan against
// the library.
func ProfileOf(g *glycan.Glycan, lib []Motif) (Profile, error) {
	p := Profile{Glycan: g.Canonical(), Counts: make([]float64, len(lib))}
	for j := range lib {
		n, err := lib[j].Count(g)
		if err != nil {
			return Profile{}, err
		}
		p.Counts[j] = float64(n)
	}
	return p, nil
}

// Quantify parses every sequence and counts every library motif in it,
// producing the feature matrix used by differential analysis and model
// input preparation. Sequences must be valid IUPAC-condensed; the first
// parse or pattern error aborts quantification.
func Quantify(seqs []string, lib []Motif) (*Matrix, error) {
	m := &Matrix{
		Glycans: make([]string, len(seqs)),
		Motifs:  make([]string, len(lib)),
		Data:    make([][]float64, len(seqs)),
	}
	for j := range lib {
		m.Motifs[j] = lib[j].Name
	}
	for i, seq := range seqs {
		g, err := glycan.Parse(seq)
		if err != nil {
			return nil, fmt.Errorf("glycan %d: %w", i, err)
		}
		p, err := ProfileOf(g, lib)
		if err != nil {
			return nil, fmt.Errorf("glycan %d: %w", i, err)
		}
		m.Glycans[i] = seq
		m.Data[i] = p.Counts
	}
	return m, nil
}
