package draw

import "github.com/Glycocalex/glycowork-ab/pkg/glycan"

// Symbol is the SNFG depiction of a monosaccharide: a Graphviz shape and
// fill color.
type Symbol struct {
	Shape string
	Fill  string
}

// Monosaccharide-specific SNFG colors.
var snfgFills = map[string]string{
	"Glc":    "#0090BC",
	"Gal":    "#FFD400",
	"Man":    "#00A651",
	"GlcNAc": "#0090BC",
	"GalNAc": "#FFD400",
	"ManNAc": "#00A651",
	"Fuc":    "#ED1C24",
	"Rha":    "#00A651",
	"Qui":    "#0090BC",
	"Neu5Ac": "#A54399",
	"Neu5Gc": "#8FCCE9",
	"Kdn":    "#91D04F",
	"Xyl":    "#F47920",
	"Ara":    "#00A651",
	"Rib":    "#F69EA1",
	"GlcA":   "#0090BC",
	"IdoA":   "#A17A4D",
	"GalA":   "#FFD400",
}

// Class-level SNFG shapes.
var snfgShapes = map[glycan.Class]string{
	glycan.ClassHexose:      "circle",
	glycan.ClassHexNAc:      "box",
	glycan.ClassDeoxyHexose: "triangle",
	glycan.ClassSialic:      "diamond",
	glycan.ClassPentose:     "star",
	glycan.ClassUronic:      "diamond",
}

// SymbolFor maps a monosaccharide name (substituents included, e.g.
// "Gal6S") to its SNFG symbol. Unknown residues get a white hexagon.
func SymbolFor(mono string) Symbol {
	base := glycan.StripSubstituents(mono)
	shape, ok := snfgShapes[glycan.Classify(mono)]
	if !ok {
		return Symbol{Shape: "hexagon", Fill: "white"}
	}
	fill, ok := snfgFills[base]
	if !ok {
		fill = "white"
	}
	return Symbol{Shape: shape, Fill: fill}
}
