// Package glycan provides the core data model for complex carbohydrates:
// rooted trees of monosaccharide residues joined by glycosidic linkages,
// parsed from and rendered to IUPAC-condensed nomenclature.
//
// # Model
//
// A [Glycan] is a tree whose root is the reducing-end residue. Each [Node]
// carries a monosaccharide name ("Gal", "GlcNAc", "Neu5Ac", possibly with
// substituents like "Gal6S") and each [Edge] a linkage descriptor read
// child-to-parent ("b1-4" = child carbon 1, beta, to parent carbon 4).
//
// # Parsing
//
//	g, err := glycan.Parse("Gal(b1-4)GlcNAc(b1-2)Man(a1-3)[Gal(b1-4)GlcNAc(b1-2)Man(a1-6)]Man(b1-4)GlcNAc(b1-4)GlcNAc")
//
// Bracketed groups are branches attached to the residue that follows them.
// [Glycan.Canonical] renders a deterministic IUPAC-condensed form usable as
// an identity key; [Glycan.Equal] compares structures through it.
//
// # Serialization
//
// [Document] is the JSON (and BSON) wire form with round-trip fidelity,
// used by storage backends, the HTTP API, and caching.
package glycan
