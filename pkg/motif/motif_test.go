package motif

import (
	"testing"

	"github.com/Glycocalex/glycowork-ab/pkg/glycan"
)

const biantennary = "Gal(b1-4)GlcNAc(b1-2)Man(a1-3)[Gal(b1-4)GlcNAc(b1-2)Man(a1-6)]Man(b1-4)GlcNAc(b1-4)GlcNAc"

func count(t *testing.T, m Motif, seq string) int {
	t.Helper()
	g := glycan.MustParse(seq)
	n, err := m.Count(g)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestCountLacNAc(t *testing.T) {
	lacNAc := Motif{Name: "LacNAc", Pattern: "Gal(b1-4)GlcNAc"}
	if got := count(t, lacNAc, biantennary); got != 2 {
		t.Errorf("LacNAc count in biantennary = %d, want 2", got)
	}
	if got := count(t, lacNAc, "Gal(b1-3)GlcNAc"); got != 0 {
		t.Errorf("type-1 chain should not match type-2 motif, got %d", got)
	}
}

func TestMatchBranchedMotif(t *testing.T) {
	lewisX := Motif{Name: "LewisX", Pattern: "Gal(b1-4)[Fuc(a1-3)]GlcNAc", Terminal: true}

	if got := count(t, lewisX, "Gal(b1-4)[Fuc(a1-3)]GlcNAc(b1-3)Gal"); got != 1 {
		t.Errorf("Lewis x count = %d, want 1", got)
	}
	// Fucose on the wrong carbon is not Lewis x.
	if got := count(t, lewisX, "Gal(b1-4)[Fuc(a1-6)]GlcNAc(b1-3)Gal"); got != 0 {
		t.Errorf("a1-6 fucose matched Lewis x, count = %d", got)
	}
}

func TestTerminalConstraint(t *testing.T) {
	term := Motif{Name: "TerminalGal", Pattern: "Gal", Terminal: true}
	// Both Gal residues in the biantennary glycan are termini.
	if got := count(t, term, biantennary); got != 2 {
		t.Errorf("terminal Gal count = %d, want 2", got)
	}
	// Capped by sialic acid: no longer terminal.
	if got := count(t, term, "Neu5Ac(a2-6)Gal(b1-4)GlcNAc"); got != 0 {
		t.Errorf("capped Gal counted as terminal, got %d", got)
	}
}

func TestWildcardLinkage(t *testing.T) {
	anyGalNAc := Motif{Name: "GalLink", Pattern: "Gal(?1-?)GlcNAc"}
	if got := count(t, anyGalNAc, "Gal(b1-3)GlcNAc"); got != 1 {
		t.Errorf("wildcard linkage should match b1-3, got %d", got)
	}
	if got := count(t, anyGalNAc, "Gal(a1-4)GlcNAc"); got != 1 {
		t.Errorf("wildcard linkage should match a1-4, got %d", got)
	}
}

func TestFamilyWildcard(t *testing.T) {
	hexNAc := Motif{Name: "AnyHexNAc", Pattern: "HexNAc", Terminal: true}
	if got := count(t, hexNAc, "GalNAc"); got != 1 {
		t.Errorf("HexNAc family should match GalNAc, got %d", got)
	}
	if got := count(t, hexNAc, "Gal"); got != 0 {
		t.Errorf("HexNAc family matched Gal, got %d", got)
	}
}

func TestCoreFucoseAnchor(t *testing.T) {
	core := Motif{Name: "CoreFucose", Pattern: "Fuc(a1-6)GlcNAc"}
	if got := count(t, core, "Man(b1-4)GlcNAc(b1-4)[Fuc(a1-6)]GlcNAc"); got != 1 {
		t.Errorf("core fucose count = %d, want 1", got)
	}
}

func TestDefaultLibrary(t *testing.T) {
	lib, err := DefaultLibrary()
	if err != nil {
		t.Fatal(err)
	}
	if len(lib) == 0 {
		t.Fatal("default library is empty")
	}
	if _, ok := Lookup(lib, "LewisX"); !ok {
		t.Error("LewisX missing from default library")
	}
	for i := range lib {
		if err := lib[i].Compile(); err != nil {
			t.Errorf("motif %s does not compile: %v", lib[i].Name, err)
		}
	}
}

func TestQuantify(t *testing.T) {
	lib := []Motif{
		{Name: "LacNAc", Pattern: "Gal(b1-4)GlcNAc"},
		{Name: "Sia_a2-3_Gal", Pattern: "Neu5Ac(a2-3)Gal"},
	}
	m, err := Quantify([]string{
		"Neu5Ac(a2-3)Gal(b1-4)GlcNAc",
		"Gal(b1-4)GlcNAc",
	}, lib)
	if err != nil {
		t.Fatal(err)
	}
	if m.Data[0][0] != 1 || m.Data[0][1] != 1 {
		t.Errorf("row 0 = %v, want [1 1]", m.Data[0])
	}
	if m.Data[1][0] != 1 || m.Data[1][1] != 0 {
		t.Errorf("row 1 = %v, want [1 0]", m.Data[1])
	}
	if got := m.Column(0); got[0] != 1 || got[1] != 1 {
		t.Errorf("Column(0) = %v", got)
	}
}

func TestProfileDistances(t *testing.T) {
	p := Profile{Counts: []float64{1, 0, 2}}
	q := Profile{Counts: []float64{1, 0, 2}}
	if d := p.Cosine(q); d > 1e-12 {
		t.Errorf("identical profiles cosine distance = %g, want 0", d)
	}
	if d := p.Euclid(q); d != 0 {
		t.Errorf("identical profiles euclid = %g", d)
	}
	zero := Profile{Counts: []float64{0, 0, 0}}
	if d := p.Cosine(zero); d != 1 {
		t.Errorf("zero profile cosine distance = %g, want 1", d)
	}
	n := p.Normalize()
	var norm float64
	for _, c := range n.Counts {
		norm += c * c
	}
	if diff := norm - 1; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("normalized profile norm² = %g, want 1", norm)
	}
}
