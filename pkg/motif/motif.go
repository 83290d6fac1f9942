// Package motif provides substructure matching and quantification for
// glycans: named motifs (Lewis antigens, LacNAc units, core modifications)
// are matched as rooted subtrees against glycan structures, and whole
// datasets are summarized as bag-of-motifs count matrices for downstream
// statistics and model inference.
package motif

import (
	"fmt"

	"github.com/Glycocalex/glycowork-ab/pkg/glycan"
)

// Motif is a named glycan substructure pattern.
//
// The pattern uses IUPAC-condensed syntax with two extensions:
//   - "*" matches any monosaccharide; family names ("Hex", "HexNAc",
//     "dHex", "Sia", "Pen", "HexA") match any member of that family
//   - "?" inside a linkage descriptor matches any anomeric configuration
//     or attachment position ("?1-?" matches "b1-4")
//
// Terminal motifs additionally require every pattern leaf to sit at a
// non-reducing terminus of the matched glycan.
type Motif struct {
	Name        string `json:"name"`
	Pattern     string `json:"pattern"`
	Terminal    bool   `json:"terminal,omitempty"`
	Description string `json:"description,omitempty"`

	tree *glycan.Glycan
}

// Compile parses the motif pattern. Compiling is idempotent; Match and
// Count compile lazily when needed.
func (m *Motif) Compile() error {
	if m.tree != nil {
		return nil
	}
	t, err := glycan.Parse(m.Pattern)
	if err != nil {
		return fmt.Errorf("motif %s: %w", m.Name, err)
	}
	m.tree = t
	return nil
}

// Match reports whether the motif occurs anywhere in g.
func (m *Motif) Match(g *glycan.Glycan) (bool, error) {
	n, err := m.Count(g)
	return n > 0, err
}

// Count returns the number of distinct anchor residues in g at which the
// motif matches. Overlapping occurrences anchored at different residues
// are counted separately.
func (m *Motif) Count(g *glycan.Glycan) (int, error) {
	if err := m.Compile(); err != nil {
		return 0, err
	}
	pRoot := m.tree.Root()
	if pRoot == nil {
		return 0, nil
	}

	count := 0
	g.Walk(func(n *glycan.Node, _ int) bool {
		if m.matchAt(g, n.ID, pRoot.ID) {
			count++
		}
		return true
	})
	return count, nil
}

// matchAt tests whether the pattern subtree rooted at pID maps onto the
// glycan subtree anchored at gID. Extra children in the glycan are allowed
// (containment semantics); for terminal motifs, pattern leaves must map to
// glycan leaves.
func (m *Motif) matchAt(g *glycan.Glycan, gID, pID string) bool {
	if !monoMatches(m.tree.Node(pID).Mono, g.Node(gID).Mono) {
		return false
	}

	pKids := m.tree.Children(pID)
	if len(pKids) == 0 {
		if m.Terminal && len(g.Children(gID)) > 0 {
			return false
		}
		return true
	}

	gKids := g.Children(gID)
	if len(gKids) < len(pKids) {
		return false
	}

	// Small fixed branching factors: backtracking assignment of pattern
	// children to distinct glycan children.
	used := make([]bool, len(gKids))
	var assign func(i int) bool
	assign = func(i int) bool {
		if i == len(pKids) {
			return true
		}
		pe, _ := m.tree.ParentEdge(pKids[i])
		for j, gk := range gKids {
			if used[j] {
				continue
			}
			ge, _ := g.ParentEdge(gk)
			if !linkageMatches(pe.Linkage, ge.Linkage) {
				continue
			}
			if !m.matchAt(g, gk, pKids[i]) {
				continue
			}
			used[j] = true
			if assign(i + 1) {
				return true
			}
			used[j] = false
		}
		return false
	}
	return assign(0)
}

var familyClasses = map[string]glycan.Class{
	"Hex":    glycan.ClassHexose,
	"HexNAc": glycan.ClassHexNAc,
	"dHex":   glycan.ClassDeoxyHexose,
	"Sia":    glycan.ClassSialic,
	"Pen":    glycan.ClassPentose,
	"HexA":   glycan.ClassUronic,
}

func monoMatches(pattern, actual string) bool {
	if pattern == "*" || pattern == actual {
		return true
	}
	if class, ok := familyClasses[pattern]; ok {
		return glycan.Classify(actual) == class
	}
	return false
}

// linkageMatches compares a pattern linkage against an actual one,
// treating '?' positions in the pattern as wildcards.
func linkageMatches(pattern, actual string) bool {
	if pattern == actual {
		return true
	}
	if len(pattern) != len(actual) {
		return false
	}
	for i := range pattern {
		if pattern[i] == '?' {
			continue
		}
		if pattern[i] != actual[i] {
			return false
		}
	}
	return true
}
