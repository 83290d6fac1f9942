package glycan

import (
	"bytes"
	"testing"
)

const biantennary = "Gal(b1-4)GlcNAc(b1-2)Man(a1-3)[Gal(b1-4)GlcNAc(b1-2)Man(a1-6)]Man(b1-4)GlcNAc(b1-4)GlcNAc"

func TestParseLinearChain(t *testing.T) {
	g, err := Parse("Neu5Ac(a2-3)Gal(b1-4)Glc")
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Fatalf("got %d nodes / %d edges, want 3/2", g.NodeCount(), g.EdgeCount())
	}
	root := g.Root()
	if root.Mono != "Glc" {
		t.Errorf("root = %s, want Glc", root.Mono)
	}
	kids := g.Children(root.ID)
	if len(kids) != 1 || g.Node(kids[0]).Mono != "Gal" {
		t.Errorf("root child = %v", kids)
	}
	e, ok := g.ParentEdge(kids[0])
	if !ok || e.Linkage != "b1-4" {
		t.Errorf("Gal linkage = %+v", e)
	}
}

func TestParseBranched(t *testing.T) {
	g, err := Parse(biantennary)
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 9 || g.EdgeCount() != 8 {
		t.Fatalf("got %d nodes / %d edges, want 9/8", g.NodeCount(), g.EdgeCount())
	}
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}

	// The branching mannose carries the a1-3 and a1-6 arms.
	var branching *Node
	g.Walk(func(n *Node, _ int) bool {
		if n.Mono == "Man" && len(g.Children(n.ID)) == 2 {
			branching = n
			return false
		}
		return true
	})
	if branching == nil {
		t.Fatal("no branching Man found")
	}
	links := map[string]bool{}
	for _, c := range g.Children(branching.ID) {
		e, _ := g.ParentEdge(c)
		links[e.Linkage] = true
	}
	if !links["a1-3"] || !links["a1-6"] {
		t.Errorf("branch linkages = %v, want a1-3 and a1-6", links)
	}
}

func TestParseCoreFucose(t *testing.T) {
	g, err := Parse("Man(b1-4)GlcNAc(b1-4)[Fuc(a1-6)]GlcNAc")
	if err != nil {
		t.Fatal(err)
	}
	root := g.Root()
	if root.Mono != "GlcNAc" {
		t.Fatalf("root = %s", root.Mono)
	}
	if len(g.Children(root.ID)) != 2 {
		t.Errorf("root should carry chain and fucose, got %d children", len(g.Children(root.ID)))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		seq  string
	}{
		{"empty", ""},
		{"dangling linkage", "Gal(b1-4)"},
		{"empty residue", "Gal(b1-4)(b1-2)Man"},
		{"bad linkage", "Gal(x1-4)Glc"},
		{"unterminated linkage", "Gal(b1-4"},
		{"branch without linkage", "[Gal]Man"},
		{"unbalanced bracket", "Gal(b1-4)[Fuc(a1-3)GlcNAc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.seq); err == nil {
				t.Errorf("Parse(%q) expected error", tt.seq)
			}
		})
	}
}

func TestParseCanonicalRoundTrip(t *testing.T) {
	g := MustParse(biantennary)
	re, err := Parse(g.Canonical())
	if err != nil {
		t.Fatalf("canonical form failed to re-parse: %v", err)
	}
	if !g.Equal(re) {
		t.Error("canonical round-trip changed structure")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	g := MustParse(biantennary)
	g.Node("r0").Meta["terminal"] = true

	data, err := Marshal(g)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if !g.Equal(back) {
		t.Error("serialization round-trip changed structure")
	}
	if back.Node("r0").Meta["terminal"] != true {
		t.Error("metadata lost in round-trip")
	}
}

func TestTokenize(t *testing.T) {
	toks := Tokenize("Gal(b1-4)[Fuc(a1-3)]GlcNAc")
	want := []string{"Gal", "b1-4", "Fuc", "a1-3", "GlcNAc"}
	if len(toks) != len(want) {
		t.Fatalf("Tokenize() = %v, want %v", toks, want)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, toks[i], want[i])
		}
	}
}

func TestVocabulary(t *testing.T) {
	vocab := Vocabulary([]string{"Gal(b1-4)GlcNAc", "Gal(b1-3)GlcNAc"})
	want := []string{"Gal", "GlcNAc", "b1-3", "b1-4"}
	if len(vocab) != len(want) {
		t.Fatalf("Vocabulary() = %v", vocab)
	}
	for i := range want {
		if vocab[i] != want[i] {
			t.Errorf("vocab[%d] = %q, want %q", i, vocab[i], want[i])
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		mono string
		want Class
	}{
		{"Gal", ClassHexose},
		{"GlcNAc", ClassHexNAc},
		{"GlcNAc6S", ClassHexNAc},
		{"Fuc", ClassDeoxyHexose},
		{"Neu5Ac", ClassSialic},
		{"Xyl", ClassPentose},
		{"GlcA", ClassUronic},
		{"Unknown", ClassOther},
	}
	for _, tt := range tests {
		if got := Classify(tt.mono); got != tt.want {
			t.Errorf("Classify(%s) = %v, want %v", tt.mono, got, tt.want)
		}
	}
}
