package glycan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
)

// =============================================================================
// Glycan Serialization API
// =============================================================================

// Document is the canonical serialization format for glycan structures.
// Used for API responses, storage, caching, and cross-tool compatibility.
//
// The format is human-readable and designed for round-trip fidelity:
// parse → transform → export → re-import produces identical results.
type Document struct {
	Sequence string    `json:"sequence,omitempty" bson:"sequence,omitempty"`
	Nodes    []NodeDoc `json:"nodes" bson:"nodes"`
	Edges    []EdgeDoc `json:"edges" bson:"edges"`
	Meta     Metadata  `json:"meta,omitempty" bson:"meta,omitempty"`
}

// NodeDoc is the serialized form of a residue.
type NodeDoc struct {
	ID   string   `json:"id" bson:"id"`
	Mono string   `json:"mono" bson:"mono"`
	Meta Metadata `json:"meta,omitempty" bson:"meta,omitempty"`
}

// EdgeDoc is the serialized form of a glycosidic linkage.
type EdgeDoc struct {
	Parent  string   `json:"parent" bson:"parent"`
	Child   string   `json:"child" bson:"child"`
	Linkage string   `json:"linkage" bson:"linkage"`
	Meta    Metadata `json:"meta,omitempty" bson:"meta,omitempty"`
}

// FromGlycan converts a Glycan to its serialization format.
// Nodes are sorted by ID for deterministic output; edges keep attachment
// order. The canonical sequence is included for readability.
func FromGlycan(g *Glycan) Document {
	nodes := g.Nodes()
	slices.SortFunc(nodes, func(a, b *Node) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})

	doc := Document{
		Sequence: g.Canonical(),
		Nodes:    make([]NodeDoc, len(nodes)),
		Edges:    make([]EdgeDoc, len(g.edges)),
	}
	for i, n := range nodes {
		doc.Nodes[i] = NodeDoc{ID: n.ID, Mono: n.Mono, Meta: nonEmpty(n.Meta)}
	}
	for i, e := range g.edges {
		doc.Edges[i] = EdgeDoc{Parent: e.Parent, Child: e.Child, Linkage: e.Linkage, Meta: nonEmpty(e.Meta)}
	}
	if len(g.meta) > 0 {
		doc.Meta = g.meta
	}
	return doc
}

// ToGlycan converts a Document back into a Glycan, validating structure.
func ToGlycan(doc Document) (*Glycan, error) {
	g := New(doc.Meta)
	for _, n := range doc.Nodes {
		if err := g.AddNode(Node{ID: n.ID, Mono: n.Mono, Meta: n.Meta}); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, e := range doc.Edges {
		if err := g.AddEdge(Edge{Parent: e.Parent, Child: e.Child, Linkage: e.Linkage, Meta: e.Meta}); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.Parent, e.Child, err)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Marshal converts a Glycan to indented JSON bytes.
func Marshal(g *Glycan) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes a Glycan as JSON to an io.Writer.
func Write(g *Glycan, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromGlycan(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a Glycan to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(g *Glycan, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, f)
}

// Read decodes a JSON glycan document from an io.Reader.
// Returns validation errors for malformed documents or structural
// constraint violations.
func Read(r io.Reader) (*Glycan, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToGlycan(doc)
}

// ReadFile reads a JSON file and returns the decoded Glycan.
func ReadFile(path string) (*Glycan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

func nonEmpty(m Metadata) Metadata {
	if len(m) == 0 {
		return nil
	}
	return m
}
