package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateGlycanSequence validates an IUPAC-condensed glycan string for
// safety and basic well-formedness before parsing.
//
// The validation rules are intentionally conservative:
//   - No empty sequences
//   - No control characters
//   - Balanced square brackets and parentheses
//   - Maximum length of 4096 characters
//
// Full structural validation is done by the glycan parser.
func ValidateGlycanSequence(seq string) error {
	if seq == "" {
		return New(ErrCodeInvalidGlycan, "glycan sequence cannot be empty")
	}

	if len(seq) > 4096 {
		return New(ErrCodeInvalidGlycan, "glycan sequence too long (max 4096 characters)")
	}

	for _, r := range seq {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGlycan, "glycan sequence contains control characters")
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidGlycan, "glycan sequence cannot contain whitespace")
		}
	}

	if err := checkBalanced(seq, '[', ']'); err != nil {
		return err
	}
	return checkBalanced(seq, '(', ')')
}

func checkBalanced(s string, open, close rune) error {
	depth := 0
	for _, r := range s {
		switch r {
		case open:
			depth++
		case close:
			depth--
			if depth < 0 {
				return New(ErrCodeInvalidGlycan, "unbalanced %q in glycan sequence", string(close))
			}
		}
	}
	if depth != 0 {
		return New(ErrCodeInvalidGlycan, "unbalanced %q in glycan sequence", string(open))
	}
	return nil
}

// linkageRegex matches glycosidic linkage descriptors such as "b1-4", "a2-3",
// "a2-6", or partially unknown forms like "?1-?" and "b1-?".
var linkageRegex = regexp.MustCompile(`^[ab?][12]-[1-9?]$`)

// ValidateLinkage validates a glycosidic linkage descriptor.
func ValidateLinkage(linkage string) error {
	if linkage == "" {
		return New(ErrCodeInvalidLinkage, "linkage cannot be empty")
	}
	if !linkageRegex.MatchString(linkage) {
		return New(ErrCodeInvalidLinkage, "invalid linkage descriptor: %q", linkage)
	}
	return nil
}

// ValidateDatasetName validates a dataset name for storage safety.
// It ensures the name is a simple identifier without path components.
func ValidateDatasetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidDataset, "dataset name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidDataset, "dataset name too long (max 128 characters)")
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidDataset, "dataset name cannot contain path separators")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidDataset, "dataset name cannot be a hidden file")
	}

	for _, r := range name {
		if unicode.IsControl(r) || r == '\x00' {
			return New(ErrCodeInvalidDataset, "dataset name contains invalid characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}

// accessionRegex matches GlyTouCan accession IDs (e.g. "G00026MO").
var accessionRegex = regexp.MustCompile(`^G[0-9]{5}[A-Z]{2}$`)

// ValidateAccession validates a GlyTouCan accession identifier.
func ValidateAccession(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "accession cannot be empty")
	}
	if !accessionRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid GlyTouCan accession: %q", id)
	}
	return nil
}
