package stats

import (
	"fmt"
	"slices"
)

// Table is a feature-by-sample abundance matrix: rows are glycans or
// motifs, columns are samples.
type Table struct {
	Features []string    `json:"features"`
	Samples  []string    `json:"samples"`
	Values   [][]float64 `json:"values"` // Values[i][j] = feature i in sample j
}

// NewTable allocates a zero-filled table with the given row and column
// labels.
func NewTable(features, samples []string) *Table {
	values := make([][]float64, len(features))
	for i := range values {
		values[i] = make([]float64, len(samples))
	}
	return &Table{
		Features: slices.Clone(features),
		Samples:  slices.Clone(samples),
		Values:   values,
	}
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := NewTable(t.Features, t.Samples)
	for i := range t.Values {
		copy(out.Values[i], t.Values[i])
	}
	return out
}

// Row returns the values of one feature across all samples.
// The returned slice aliases the table.
func (t *Table) Row(i int) []float64 { return t.Values[i] }

// Column returns a copy of one sample's values across all features.
func (t *Table) Column(j int) []float64 {
	out := make([]float64, len(t.Values))
	for i := range t.Values {
		out[i] = t.Values[i][j]
	}
	return out
}

// SampleIndex returns the column index of the named sample.
func (t *Table) SampleIndex(name string) (int, error) {
	for j, s := range t.Samples {
		if s == name {
			return j, nil
		}
	}
	return 0, fmt.Errorf("sample %q not in table", name)
}

// SampleIndices resolves a list of sample names to column indices.
func (t *Table) SampleIndices(names []string) ([]int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		j, err := t.SampleIndex(name)
		if err != nil {
			return nil, err
		}
		out[i] = j
	}
	return out, nil
}

// RowSubset returns the values of feature i restricted to the given
// columns.
func (t *Table) RowSubset(i int, cols []int) []float64 {
	out := make([]float64, len(cols))
	for k, j := range cols {
		out[k] = t.Values[i][j]
	}
	return out
}

// FilterRows returns a new table containing only the rows for which keep
// returns true.
func (t *Table) FilterRows(keep func(i int) bool) *Table {
	out := &Table{Samples: slices.Clone(t.Samples)}
	for i := range t.Values {
		if keep(i) {
			out.Features = append(out.Features, t.Features[i])
			out.Values = append(out.Values, slices.Clone(t.Values[i]))
		}
	}
	return out
}
