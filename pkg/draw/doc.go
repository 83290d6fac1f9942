// Package draw renders glycans as SNFG-style diagrams. Structures are
// laid out as DOT graphs with the reducing end on the right and rendered
// to SVG or PNG through Graphviz.
package draw
