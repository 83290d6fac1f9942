package draw

import (
	"strings"
	"testing"

	"github.com/Glycocalex/glycowork-ab/pkg/glycan"
)

func TestSymbolFor(t *testing.T) {
	cases := []struct {
		mono  string
		shape string
		fill  string
	}{
		{"Gal", "circle", "#FFD400"},
		{"GlcNAc", "box", "#0090BC"},
		{"Fuc", "triangle", "#ED1C24"},
		{"Neu5Ac", "diamond", "#A54399"},
		{"Xyl", "star", "#F47920"},
		{"Gal6S", "circle", "#FFD400"},
		{"Unknown", "hexagon", "white"},
	}
	for _, tc := range cases {
		got := SymbolFor(tc.mono)
		if got.Shape != tc.shape || got.Fill != tc.fill {
			t.Errorf("SymbolFor(%s) = %+v, want {%s %s}", tc.mono, got, tc.shape, tc.fill)
		}
	}
}

func TestToDOT(t *testing.T) {
	g := glycan.MustParse("Gal(b1-4)[Fuc(a1-3)]GlcNAc")
	dot := ToDOT(g, Options{})

	if !strings.HasPrefix(dot, "graph G {") {
		t.Errorf("not an undirected graph:\n%s", dot)
	}
	if !strings.Contains(dot, "rankdir=RL") {
		t.Error("reducing end should sit on the right")
	}
	if !strings.Contains(dot, `label="b1-4"`) || !strings.Contains(dot, `label="a1-3"`) {
		t.Errorf("missing linkage labels:\n%s", dot)
	}
	if !strings.Contains(dot, `fillcolor="#FFD400"`) {
		t.Error("missing Gal fill color")
	}
	if !strings.Contains(dot, "shape=triangle") {
		t.Error("missing Fuc triangle")
	}
}

func TestToDOTOptions(t *testing.T) {
	g := glycan.MustParse("Gal(b1-4)GlcNAc")

	labelled := ToDOT(g, Options{Labels: true})
	if !strings.Contains(labelled, `label="Gal"`) {
		t.Errorf("missing residue labels:\n%s", labelled)
	}

	bare := ToDOT(g, Options{HideLinkages: true})
	if strings.Contains(bare, `label="b1-4"`) {
		t.Errorf("linkage label present despite HideLinkages:\n%s", bare)
	}
	if !strings.Contains(bare, `tooltip="Gal"`) {
		t.Error("symbol-only nodes should carry tooltips")
	}
}

func TestToDOTDeterministic(t *testing.T) {
	g := glycan.MustParse("Gal(b1-4)GlcNAc(b1-2)Man(a1-3)[Man(a1-6)]Man")
	if ToDOT(g, Options{}) != ToDOT(g, Options{}) {
		t.Error("DOT output is not deterministic")
	}
}

func TestWriteSVG(t *testing.T) {
	g := glycan.MustParse("Gal(b1-4)[Fuc(a1-3)]GlcNAc")
	svg := string(WriteSVG(g, Options{}))

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Fatalf("not an svg document:\n%s", svg)
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("unterminated svg document")
	}
	// One circle (Gal), one rect (GlcNAc), one triangle (Fuc), two edges.
	if strings.Count(svg, "<circle") != 1 || strings.Count(svg, "<rect") != 1 || strings.Count(svg, "<polygon") != 1 {
		t.Errorf("unexpected symbol mix:\n%s", svg)
	}
	if strings.Count(svg, "<line") != 2 {
		t.Errorf("want 2 linkage edges:\n%s", svg)
	}
	if !strings.Contains(svg, ">b1-4</text>") || !strings.Contains(svg, ">a1-3</text>") {
		t.Errorf("missing linkage annotations:\n%s", svg)
	}
}

func TestWriteSVGOptions(t *testing.T) {
	g := glycan.MustParse("Gal(b1-4)GlcNAc")

	labelled := string(WriteSVG(g, Options{Labels: true}))
	if !strings.Contains(labelled, ">Gal</text>") {
		t.Errorf("missing residue labels:\n%s", labelled)
	}

	bare := string(WriteSVG(g, Options{HideLinkages: true}))
	if strings.Contains(bare, ">b1-4</text>") {
		t.Errorf("linkage annotation present despite HideLinkages:\n%s", bare)
	}
}

func TestWriteSVGDeterministic(t *testing.T) {
	g := glycan.MustParse("Gal(b1-4)GlcNAc(b1-2)Man(a1-3)[Man(a1-6)]Man")
	if string(WriteSVG(g, Options{})) != string(WriteSVG(g, Options{})) {
		t.Error("SVG output is not deterministic")
	}
}
