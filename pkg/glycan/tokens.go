package glycan

import (
	"fmt"
	"slices"
	"strings"
)

// Class groups monosaccharides into the families used by SNFG symbol
// assignment and ML featurization.
type Class int

const (
	// ClassOther covers residues with no dedicated family.
	ClassOther Class = iota
	// ClassHexose covers Glc, Gal, Man and relatives.
	ClassHexose
	// ClassHexNAc covers N-acetylated hexosamines (GlcNAc, GalNAc, ...).
	ClassHexNAc
	// ClassDeoxyHexose covers Fuc, Rha and other 6-deoxy hexoses.
	ClassDeoxyHexose
	// ClassSialic covers neuraminic acid derivatives (Neu5Ac, Neu5Gc, Kdn).
	ClassSialic
	// ClassPentose covers Xyl, Ara, Rib.
	ClassPentose
	// ClassUronic covers uronic acids (GlcA, IdoA, GalA).
	ClassUronic
)

// String returns the family name.
func (c Class) String() string {
	switch c {
	case ClassHexose:
		return "hexose"
	case ClassHexNAc:
		return "hexnac"
	case ClassDeoxyHexose:
		return "deoxyhexose"
	case ClassSialic:
		return "sialic"
	case ClassPentose:
		return "pentose"
	case ClassUronic:
		return "uronic"
	default:
		return "other"
	}
}

var monoClasses = map[string]Class{
	"Glc": ClassHexose, "Gal": ClassHexose, "Man": ClassHexose,
	"GlcNAc": ClassHexNAc, "GalNAc": ClassHexNAc, "ManNAc": ClassHexNAc,
	"Fuc": ClassDeoxyHexose, "Rha": ClassDeoxyHexose, "Qui": ClassDeoxyHexose,
	"Neu5Ac": ClassSialic, "Neu5Gc": ClassSialic, "Kdn": ClassSialic,
	"Xyl": ClassPentose, "Ara": ClassPentose, "Rib": ClassPentose,
	"GlcA": ClassUronic, "IdoA": ClassUronic, "GalA": ClassUronic,
}

// Classify returns the monosaccharide family for a residue name.
// Substituent suffixes (sulfation, acetylation, e.g. "Gal6S", "GlcNAc6S",
// "Neu5Ac9Ac") are stripped before lookup. Unknown residues map to
// ClassOther.
func Classify(mono string) Class {
	if c, ok := monoClasses[mono]; ok {
		return c
	}
	base := StripSubstituents(mono)
	if c, ok := monoClasses[base]; ok {
		return c
	}
	return ClassOther
}

// StripSubstituents removes trailing substituent annotations (e.g. "6S",
// "3S", "9Ac", "OS") from a residue name, returning the base
// monosaccharide. Names that already match a known monosaccharide are
// returned unchanged.
func StripSubstituents(mono string) string {
	if _, ok := monoClasses[mono]; ok {
		return mono
	}
	// Longest known prefix wins so "GlcNAc6S" resolves to GlcNAc, not Glc.
	best := ""
	for name := range monoClasses {
		if strings.HasPrefix(mono, name) && len(name) > len(best) {
			best = name
		}
	}
	if best != "" {
		return best
	}
	return mono
}

// Linkage is the parsed form of a glycosidic linkage descriptor.
type Linkage struct {
	Anomeric  byte   // 'a', 'b', or '?' when unknown
	ChildPos  string // Anomeric carbon of the child ("1" or "2")
	ParentPos string // Attachment carbon of the parent ("1".."9" or "?")
}

// ParseLinkage parses a descriptor such as "b1-4" or "a2-?".
func ParseLinkage(s string) (Linkage, error) {
	if len(s) != 4 || s[2] != '-' {
		return Linkage{}, fmt.Errorf("malformed linkage %q", s)
	}
	l := Linkage{Anomeric: s[0], ChildPos: string(s[1]), ParentPos: string(s[3])}
	if l.Anomeric != 'a' && l.Anomeric != 'b' && l.Anomeric != '?' {
		return Linkage{}, fmt.Errorf("invalid anomeric configuration in %q", s)
	}
	if l.ChildPos != "1" && l.ChildPos != "2" {
		return Linkage{}, fmt.Errorf("invalid anomeric carbon in %q", s)
	}
	if l.ParentPos != "?" && (l.ParentPos < "1" || l.ParentPos > "9") {
		return Linkage{}, fmt.Errorf("invalid attachment position in %q", s)
	}
	return l, nil
}

// String renders the linkage back to its descriptor form.
func (l Linkage) String() string {
	return string(l.Anomeric) + l.ChildPos + "-" + l.ParentPos
}

// Tokenize splits an IUPAC-condensed glycan sequence into its glycoletters:
// monosaccharide names and linkage descriptors, in reading order. Brackets
// are structural and not included. This vocabulary extraction is what ML
// featurization builds on.
func Tokenize(seq string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range seq {
		switch r {
		case '(', ')', '[', ']':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// Vocabulary returns the sorted set of unique glycoletters across the given
// sequences. This mirrors the library ("lib") concept used when featurizing
// glycans for model inference.
func Vocabulary(seqs []string) []string {
	seen := make(map[string]bool)
	for _, s := range seqs {
		for _, tok := range Tokenize(s) {
			seen[tok] = true
		}
	}
	out := make([]string, 0, len(seen))
	for tok := range seen {
		out = append(out, tok)
	}
	slices.Sort(out)
	return out
}
