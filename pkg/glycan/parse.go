package glycan

import (
	"fmt"

	"github.com/Glycocalex/glycowork-ab/pkg/errors"
)

// MaxParseDepth bounds branch nesting during parsing. Natural glycans stay
// well below this; the limit guards against pathological input.
const MaxParseDepth = 32

// Parse converts an IUPAC-condensed glycan sequence into its tree form.
//
// The sequence reads from the non-reducing termini on the left toward the
// reducing-end residue on the right:
//
//	Gal(b1-4)GlcNAc(b1-2)Man(a1-3)[Gal(b1-4)GlcNAc(b1-2)Man(a1-6)]Man(b1-4)GlcNAc(b1-4)GlcNAc
//
// A residue followed by "(linkage)" is attached to the next residue in
// reading order. A bracketed group "[...]" is a branch attached to the
// residue that follows the closing bracket. The final residue is the
// reducing end and becomes the root.
//
// Returns a structured error with code INVALID_GLYCAN or INVALID_LINKAGE
// for malformed input.
func Parse(seq string) (*Glycan, error) {
	if err := errors.ValidateGlycanSequence(seq); err != nil {
		return nil, err
	}

	p := &parser{
		g:   New(Metadata{"sequence": seq}),
		seq: seq,
	}
	_, trailing, err := p.chain(0)
	if err != nil {
		return nil, err
	}
	if trailing != "" {
		return nil, errors.New(errors.ErrCodeInvalidGlycan,
			"dangling linkage %q after reducing-end residue in %q", trailing, seq)
	}
	if p.pos != len(seq) {
		return nil, errors.New(errors.ErrCodeInvalidGlycan,
			"unexpected %q at position %d in %q", string(seq[p.pos]), p.pos, seq)
	}
	if err := p.g.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGlycan, err, "parsed structure invalid for %q", seq)
	}
	return p.g, nil
}

// MustParse parses seq and panics on error. Intended for tests and for
// embedding literal reference structures.
func MustParse(seq string) *Glycan {
	g, err := Parse(seq)
	if err != nil {
		panic(err)
	}
	return g
}

type parser struct {
	g    *Glycan
	seq  string
	pos  int
	next int // residue counter for ID assignment
}

// pending is a residue (or completed branch) waiting to be attached to the
// next residue read at the current nesting level.
type pending struct {
	id      string
	linkage string
}

// chain parses a residue chain at one nesting level. It returns the ID of
// the chain's last residue and, if the chain ended with "(linkage)" (only
// legal inside brackets), that trailing linkage.
func (p *parser) chain(depth int) (lastID, trailing string, err error) {
	if depth > MaxParseDepth {
		return "", "", errors.New(errors.ErrCodeInvalidGlycan, "branch nesting exceeds %d", MaxParseDepth)
	}

	var waiting []pending
	lastID = ""

	for p.pos < len(p.seq) {
		switch p.seq[p.pos] {
		case ']':
			// End of a bracketed branch: exactly one pending entry must
			// remain, carrying the branch root and its outgoing linkage.
			if depth == 0 {
				return "", "", errors.New(errors.ErrCodeInvalidGlycan, "unexpected ] at position %d", p.pos)
			}
			if len(waiting) != 1 || waiting[0].linkage == "" {
				return "", "", errors.New(errors.ErrCodeInvalidGlycan,
					"branch must end with a linkage before ] at position %d", p.pos)
			}
			return waiting[0].id, waiting[0].linkage, nil

		case '[':
			p.pos++ // consume [
			branchID, branchLink, err := p.chain(depth + 1)
			if err != nil {
				return "", "", err
			}
			if p.pos >= len(p.seq) || p.seq[p.pos] != ']' {
				return "", "", errors.New(errors.ErrCodeInvalidGlycan, "missing ] for branch")
			}
			p.pos++ // consume ]
			waiting = append(waiting, pending{id: branchID, linkage: branchLink})

		default:
			mono, err := p.residue()
			if err != nil {
				return "", "", err
			}
			id := fmt.Sprintf("r%d", p.next)
			p.next++
			if err := p.g.AddNode(Node{ID: id, Mono: mono}); err != nil {
				return "", "", errors.Wrap(errors.ErrCodeInvalidGlycan, err, "adding residue %q", mono)
			}
			// Everything waiting attaches to this residue.
			for _, w := range waiting {
				if err := p.g.AddEdge(Edge{Parent: id, Child: w.id, Linkage: w.linkage}); err != nil {
					return "", "", errors.Wrap(errors.ErrCodeInvalidGlycan, err, "attaching %s", w.id)
				}
			}
			waiting = waiting[:0]
			lastID = id

			// A linkage after the residue defers its attachment to the
			// next residue in reading order.
			if p.pos < len(p.seq) && p.seq[p.pos] == '(' {
				link, err := p.linkage()
				if err != nil {
					return "", "", err
				}
				waiting = append(waiting, pending{id: id, linkage: link})
			}
		}
	}

	if len(waiting) > 0 {
		if depth > 0 {
			// Bracket chain hit end of input without a closing bracket;
			// caller reports the missing bracket.
			return waiting[0].id, waiting[0].linkage, nil
		}
		return "", "", errors.New(errors.ErrCodeInvalidGlycan,
			"dangling linkage %q after reducing-end residue", waiting[0].linkage)
	}
	if lastID == "" {
		return "", "", errors.New(errors.ErrCodeInvalidGlycan, "empty glycan chain")
	}
	return lastID, "", nil
}

// residue consumes a monosaccharide name up to the next structural
// character.
func (p *parser) residue() (string, error) {
	start := p.pos
	for p.pos < len(p.seq) {
		c := p.seq[p.pos]
		if c == '(' || c == ')' || c == '[' || c == ']' {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return "", errors.New(errors.ErrCodeInvalidGlycan, "empty residue at position %d", start)
	}
	return p.seq[start:p.pos], nil
}

// linkage consumes "(descriptor)" and validates the descriptor.
func (p *parser) linkage() (string, error) {
	p.pos++ // consume (
	start := p.pos
	for p.pos < len(p.seq) && p.seq[p.pos] != ')' {
		p.pos++
	}
	if p.pos >= len(p.seq) {
		return "", errors.New(errors.ErrCodeInvalidGlycan, "unterminated linkage at position %d", start)
	}
	link := p.seq[start:p.pos]
	p.pos++ // consume )
	if err := errors.ValidateLinkage(link); err != nil {
		return "", err
	}
	return link, nil
}
