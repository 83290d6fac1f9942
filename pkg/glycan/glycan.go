package glycan

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [Glycan.AddNode] when the node ID is
	// empty. All residues must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Glycan.AddNode] when a residue with
	// the same ID already exists. Node IDs must be unique within a glycan.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownParentNode is returned by [Glycan.AddEdge] when the parent
	// residue does not exist in the glycan.
	ErrUnknownParentNode = errors.New("unknown parent node")

	// ErrUnknownChildNode is returned by [Glycan.AddEdge] when the child
	// residue does not exist in the glycan.
	ErrUnknownChildNode = errors.New("unknown child node")

	// ErrMultipleParents is returned by [Glycan.AddEdge] when the child
	// residue already has a parent. Glycans are trees: each residue is
	// attached to exactly one residue closer to the reducing end.
	ErrMultipleParents = errors.New("residue already has a parent")

	// ErrNoRoot is returned by [Glycan.Validate] when no residue without a
	// parent exists. Every glycan has exactly one reducing-end residue.
	ErrNoRoot = errors.New("glycan has no root residue")

	// ErrMultipleRoots is returned by [Glycan.Validate] when more than one
	// residue has no parent, indicating a disconnected structure.
	ErrMultipleRoots = errors.New("glycan has multiple root residues")

	// ErrCycle is returned by [Glycan.Validate] when following parent links
	// revisits a residue. This indicates structural corruption.
	ErrCycle = errors.New("glycan contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to residues, linkages,
// or the glycan itself. It is commonly used to carry annotations (species,
// tissue, database accessions). Metadata maps are never nil - they are
// automatically initialized to empty maps when needed.
type Metadata map[string]any

// Node represents a single monosaccharide residue within a glycan.
//
// The zero value is not usable - ID and Mono must be set before adding to a
// Glycan.
type Node struct {
	ID   string   // Unique identifier within the glycan
	Mono string   // Monosaccharide name in IUPAC-condensed form (e.g. "GlcNAc", "Neu5Ac", "Gal6S")
	Meta Metadata // Arbitrary key-value metadata (never nil after AddNode)
}

// Edge represents a glycosidic linkage joining a child residue to its parent.
// The parent is the residue closer to the reducing end. Linkage descriptors
// read child-to-parent: "b1-4" means the child's anomeric carbon 1 binds the
// parent's carbon 4 in beta configuration.
type Edge struct {
	Parent  string   // Residue closer to the reducing end
	Child   string   // Attached residue
	Linkage string   // Linkage descriptor (e.g. "b1-4", "a2-6", "a1-?")
	Meta    Metadata // Arbitrary key-value metadata (never nil after AddEdge)
}

// Glycan is a rooted tree of monosaccharide residues joined by glycosidic
// linkages. The root is the reducing-end residue; children point toward the
// non-reducing termini. Child order is preserved as inserted, which keeps
// traversal and serialization deterministic.
//
// The zero value is not usable - use New to create a valid Glycan instance.
// Glycan is not safe for concurrent mutation without external synchronization;
// concurrent reads are safe once construction is complete.
type Glycan struct {
	nodes    map[string]*Node
	edges    []Edge
	children map[string][]string // parent ID -> child IDs, in attachment order
	parent   map[string]string   // child ID -> parent ID
	meta     Metadata
}

// New creates an empty Glycan with optional glycan-level metadata.
// The metadata parameter can be nil, in which case an empty map is created.
func New(meta Metadata) *Glycan {
	if meta == nil {
		meta = Metadata{}
	}
	return &Glycan{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
		parent:   make(map[string]string),
		meta:     meta,
	}
}

// Meta returns the glycan-level metadata map.
// The returned map is never nil and can be safely modified.
func (g *Glycan) Meta() Metadata { return g.meta }

// AddNode adds a residue to the glycan.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a residue with the same ID already exists. The node's Meta field is
// automatically initialized to an empty map if nil.
func (g *Glycan) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	g.nodes[n.ID] = &n
	return nil
}

// AddEdge attaches the child residue to the parent via the given linkage.
// Both residues must already exist, and the child must not yet have a
// parent. The edge's Meta field is initialized to an empty map if nil.
func (g *Glycan) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.Parent]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParentNode, e.Parent)
	}
	if _, ok := g.nodes[e.Child]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChildNode, e.Child)
	}
	if p, ok := g.parent[e.Child]; ok {
		return fmt.Errorf("%w: %s already attached to %s", ErrMultipleParents, e.Child, p)
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	g.edges = append(g.edges, e)
	g.children[e.Parent] = append(g.children[e.Parent], e.Child)
	g.parent[e.Child] = e.Parent
	return nil
}

// Node returns the residue with the given ID, or nil if it doesn't exist.
func (g *Glycan) Node(id string) *Node { return g.nodes[id] }

// Nodes returns all residues. The order is unspecified; callers needing
// determinism should sort or use Walk.
func (g *Glycan) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// Edges returns all linkages in insertion order.
func (g *Glycan) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of residues.
func (g *Glycan) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of linkages.
func (g *Glycan) EdgeCount() int { return len(g.edges) }

// Children returns the IDs of residues attached to the given parent,
// in attachment order. Returns nil for leaves and unknown IDs.
func (g *Glycan) Children(id string) []string {
	return slices.Clone(g.children[id])
}

// Parent returns the parent residue ID of the given child and whether the
// child has a parent. The root residue has no parent.
func (g *Glycan) Parent(id string) (string, bool) {
	p, ok := g.parent[id]
	return p, ok
}

// ParentEdge returns the linkage joining the given residue to its parent.
// Returns false for the root residue and unknown IDs.
func (g *Glycan) ParentEdge(childID string) (Edge, bool) {
	for _, e := range g.edges {
		if e.Child == childID {
			return e, true
		}
	}
	return Edge{}, false
}

// Root returns the reducing-end residue: the unique residue without a
// parent. Returns nil for an empty glycan; if the structure is invalid
// (multiple roots), the first found in ID order is returned. Use Validate
// to detect invalid structures.
func (g *Glycan) Root() *Node {
	var roots []string
	for id := range g.nodes {
		if _, ok := g.parent[id]; !ok {
			roots = append(roots, id)
		}
	}
	if len(roots) == 0 {
		return nil
	}
	slices.Sort(roots)
	return g.nodes[roots[0]]
}

// Leaves returns the IDs of all terminal (non-reducing end) residues,
// sorted by ID.
func (g *Glycan) Leaves() []string {
	var out []string
	for id := range g.nodes {
		if len(g.children[id]) == 0 {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// Walk visits every residue reachable from the root in depth-first order,
// following children in attachment order. The visit function receives the
// residue and its depth (root = 0). Returning false stops the walk.
func (g *Glycan) Walk(visit func(n *Node, depth int) bool) {
	root := g.Root()
	if root == nil {
		return
	}
	g.walk(root.ID, 0, visit)
}

func (g *Glycan) walk(id string, depth int, visit func(n *Node, depth int) bool) bool {
	if !visit(g.nodes[id], depth) {
		return false
	}
	for _, c := range g.children[id] {
		if !g.walk(c, depth+1, visit) {
			return false
		}
	}
	return true
}

// Depth returns the maximum residue depth from the root (a single residue
// has depth 0). Returns -1 for an empty glycan.
func (g *Glycan) Depth() int {
	max := -1
	g.Walk(func(_ *Node, d int) bool {
		if d > max {
			max = d
		}
		return true
	})
	return max
}

// Validate checks the structural invariants of the glycan:
// exactly one root, full connectivity, no cycles, and edges referencing
// existing residues. Returns the first violation found.
func (g *Glycan) Validate() error {
	if len(g.nodes) == 0 {
		return ErrNoRoot
	}

	var roots int
	for id := range g.nodes {
		if _, ok := g.parent[id]; !ok {
			roots++
		}
	}
	if roots == 0 {
		return ErrNoRoot
	}
	if roots > 1 {
		return fmt.Errorf("%w: found %d", ErrMultipleRoots, roots)
	}

	// Follow parent links from every residue; a cycle or broken link
	// reveals itself within NodeCount steps.
	for id := range g.nodes {
		seen := map[string]bool{id: true}
		cur := id
		for {
			p, ok := g.parent[cur]
			if !ok {
				break
			}
			if seen[p] {
				return fmt.Errorf("%w: via %s", ErrCycle, p)
			}
			seen[p] = true
			cur = p
		}
	}
	return nil
}

// Clone returns a deep copy of the glycan, including all metadata maps.
func (g *Glycan) Clone() *Glycan {
	out := New(maps.Clone(g.meta))
	for _, n := range g.nodes {
		_ = out.AddNode(Node{ID: n.ID, Mono: n.Mono, Meta: maps.Clone(n.Meta)})
	}
	for _, e := range g.edges {
		_ = out.AddEdge(Edge{Parent: e.Parent, Child: e.Child, Linkage: e.Linkage, Meta: maps.Clone(e.Meta)})
	}
	return out
}

// Composition returns the count of each monosaccharide in the glycan.
func (g *Glycan) Composition() map[string]int {
	out := make(map[string]int, len(g.nodes))
	for _, n := range g.nodes {
		out[n.Mono]++
	}
	return out
}

// Canonical returns the canonical IUPAC-condensed representation of the
// glycan. Branches at each residue are ordered deterministically (deepest
// subtree last, remaining branches sorted by their rendered form), so two
// glycans with the same structure produce identical strings regardless of
// construction order.
func (g *Glycan) Canonical() string {
	root := g.Root()
	if root == nil {
		return ""
	}
	return g.render(root.ID)
}

func (g *Glycan) render(id string) string {
	kids := g.children[id]
	if len(kids) == 0 {
		return g.nodes[id].Mono
	}

	type branch struct {
		text  string
		depth int
	}
	branches := make([]branch, 0, len(kids))
	for _, c := range kids {
		e, _ := g.ParentEdge(c)
		branches = append(branches, branch{
			text:  g.render(c) + "(" + e.Linkage + ")",
			depth: g.subtreeDepth(c),
		})
	}
	// Deepest branch continues the main chain; ties broken by rendered form.
	slices.SortFunc(branches, func(a, b branch) int {
		if a.depth != b.depth {
			return a.depth - b.depth
		}
		return strings.Compare(a.text, b.text)
	})

	var sb strings.Builder
	main := branches[len(branches)-1]
	sb.WriteString(main.text)
	for _, b := range branches[:len(branches)-1] {
		sb.WriteString("[")
		sb.WriteString(b.text)
		sb.WriteString("]")
	}
	sb.WriteString(g.nodes[id].Mono)
	return sb.String()
}

func (g *Glycan) subtreeDepth(id string) int {
	max := 0
	for _, c := range g.children[id] {
		if d := g.subtreeDepth(c) + 1; d > max {
			max = d
		}
	}
	return max
}

// Equal reports whether two glycans represent the same structure, comparing
// canonical forms. Metadata is ignored.
func (g *Glycan) Equal(other *Glycan) bool {
	if g.NodeCount() != other.NodeCount() || g.EdgeCount() != other.EdgeCount() {
		return false
	}
	return g.Canonical() == other.Canonical()
}
