package draw

import (
	"bytes"
	"fmt"
	"math"

	"github.com/Glycocalex/glycowork-ab/pkg/glycan"
)

const (
	symbolSize  = 34.0 // Side/diameter of an SNFG symbol
	colSpacing  = 90.0 // Horizontal distance between residue depths
	rowSpacing  = 70.0 // Vertical distance between branches
	frameMargin = 40.0
)

type placement struct {
	node *glycan.Node
	x, y float64
}

// WriteSVG draws the glycan directly as SVG without going through Graphviz.
// The reducing end sits on the right, branches spread vertically, and the
// output is deterministic for a given canonical glycan.
func WriteSVG(g *glycan.Glycan, opts Options) []byte {
	placements, width, height := layoutGlycan(g)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	buf.WriteString(`  <g stroke="black" stroke-width="1.5" fill="none">` + "\n")

	byID := make(map[string]placement, len(placements))
	for _, p := range placements {
		byID[p.node.ID] = p
	}
	for _, p := range placements {
		parent, ok := g.Parent(p.node.ID)
		if !ok {
			continue
		}
		pp := byID[parent]
		fmt.Fprintf(&buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n",
			p.x, p.y, pp.x, pp.y)
		if opts.HideLinkages {
			continue
		}
		if e, ok := g.ParentEdge(p.node.ID); ok {
			mx, my := (p.x+pp.x)/2, (p.y+pp.y)/2
			fmt.Fprintf(&buf, `    <text x="%.1f" y="%.1f" stroke="none" fill="black" font-size="10" text-anchor="middle">%s</text>`+"\n",
				mx, my-4, escapeText(e.Linkage))
		}
	}
	buf.WriteString("  </g>\n")

	for _, p := range placements {
		writeSymbol(&buf, p, opts)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// layoutGlycan assigns coordinates: x grows from leaves toward the reducing
// end, leaves take consecutive rows in traversal order, and each inner
// residue centers on its children.
func layoutGlycan(g *glycan.Glycan) ([]placement, float64, float64) {
	maxDepth := g.Depth()
	if maxDepth < 0 {
		return nil, 2 * frameMargin, 2 * frameMargin
	}

	rows := make(map[string]float64)
	nextRow := 0.0
	var assign func(id string) float64
	assign = func(id string) float64 {
		children := g.Children(id)
		if len(children) == 0 {
			rows[id] = nextRow
			nextRow++
			return rows[id]
		}
		sum := 0.0
		for _, c := range children {
			sum += assign(c)
		}
		rows[id] = sum / float64(len(children))
		return rows[id]
	}
	root := g.Root()
	assign(root.ID)

	var placements []placement
	g.Walk(func(n *glycan.Node, depth int) bool {
		placements = append(placements, placement{
			node: n,
			x:    frameMargin + float64(maxDepth-depth)*colSpacing,
			y:    frameMargin + rows[n.ID]*rowSpacing,
		})
		return true
	})

	width := 2*frameMargin + float64(maxDepth)*colSpacing
	height := 2*frameMargin + math.Max(nextRow-1, 0)*rowSpacing
	return placements, width, height
}

func writeSymbol(buf *bytes.Buffer, p placement, opts Options) {
	sym := SymbolFor(p.node.Mono)
	half := symbolSize / 2
	attrs := fmt.Sprintf(`fill="%s" stroke="black" stroke-width="1.5"`, sym.Fill)

	switch sym.Shape {
	case "circle":
		fmt.Fprintf(buf, `  <circle cx="%.1f" cy="%.1f" r="%.1f" %s/>`+"\n", p.x, p.y, half, attrs)
	case "box":
		fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" %s/>`+"\n",
			p.x-half, p.y-half, symbolSize, symbolSize, attrs)
	case "triangle":
		fmt.Fprintf(buf, `  <polygon points="%s" %s/>`+"\n", polygonPoints(p.x, p.y, half, 3, -math.Pi/2), attrs)
	case "diamond":
		fmt.Fprintf(buf, `  <polygon points="%s" %s/>`+"\n", polygonPoints(p.x, p.y, half, 4, -math.Pi/2), attrs)
	case "star":
		fmt.Fprintf(buf, `  <polygon points="%s" %s/>`+"\n", starPoints(p.x, p.y, half), attrs)
	default:
		fmt.Fprintf(buf, `  <polygon points="%s" %s/>`+"\n", polygonPoints(p.x, p.y, half, 6, 0), attrs)
	}

	if opts.Labels {
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" fill="black" font-size="10" text-anchor="middle">%s</text>`+"\n",
			p.x, p.y+half+14, escapeText(p.node.Mono))
	}
}

func polygonPoints(cx, cy, r float64, sides int, phase float64) string {
	var buf bytes.Buffer
	for i := 0; i < sides; i++ {
		a := phase + 2*math.Pi*float64(i)/float64(sides)
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "%.1f,%.1f", cx+r*math.Cos(a), cy+r*math.Sin(a))
	}
	return buf.String()
}

func starPoints(cx, cy, r float64) string {
	var buf bytes.Buffer
	inner := r * 0.45
	for i := 0; i < 10; i++ {
		a := -math.Pi/2 + math.Pi*float64(i)/5
		radius := r
		if i%2 == 1 {
			radius = inner
		}
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "%.1f,%.1f", cx+radius*math.Cos(a), cy+radius*math.Sin(a))
	}
	return buf.String()
}

func escapeText(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '&':
			buf.WriteString("&amp;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
