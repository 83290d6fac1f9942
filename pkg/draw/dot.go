package draw

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/Glycocalex/glycowork-ab/pkg/glycan"
)

// Options configures diagram generation.
type Options struct {
	// Labels writes the monosaccharide name inside each symbol. When
	// false, symbols follow the bare SNFG convention.
	Labels bool
	// HideLinkages drops the linkage annotations from the edges.
	HideLinkages bool
}

// ToDOT converts a glycan to Graphviz DOT format, residues styled as SNFG
// symbols and the reducing end placed on the right. The resulting DOT
// string can be rendered with [RenderSVG] or [RenderPNG].
func ToDOT(g *glycan.Glycan, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=RL;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=filled, fixedsize=true, width=0.6, height=0.6, fontsize=10];\n")
	buf.WriteString("  edge [fontsize=9];\n")
	buf.WriteString("\n")

	nodes := g.Nodes()
	sort.Slice(nodes, func(a, b int) bool { return nodes[a].ID < nodes[b].ID })
	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if opts.HideLinkages {
			fmt.Fprintf(&buf, "  %q -- %q;\n", e.Child, e.Parent)
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q [label=%q];\n", e.Child, e.Parent, e.Linkage)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n *glycan.Node, opts Options) []string {
	sym := SymbolFor(n.Mono)
	label := ""
	if opts.Labels {
		label = n.Mono
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("shape=%s", sym.Shape),
		fmt.Sprintf("fillcolor=%q", sym.Fill),
	}
	if !opts.Labels {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", n.Mono))
	}
	return attrs
}
