// Package match finds occurrences of trigger patterns in a token range.
//
// Two matchers are provided. PhraseMatcher matches literal phrases on a
// configurable token attribute and reports document-absolute offsets.
// TokenMatcher matches structured token-attribute patterns and reports
// offsets relative to the start of the searched range. Callers normalize
// using Matcher.Offsets.
package match

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/clinctx/internal/document"
)

var (
	// ErrEmptyPattern indicates a pattern that matches no tokens.
	ErrEmptyPattern = errors.New("empty pattern")

	// ErrDuplicateKey indicates a pattern key that was already registered.
	ErrDuplicateKey = errors.New("duplicate pattern key")

	// ErrInvalidTokenPattern indicates a malformed token-attribute pattern.
	ErrInvalidTokenPattern = errors.New("invalid token pattern")

	// ErrUnknownAttr indicates an unsupported token attribute name.
	ErrUnknownAttr = errors.New("unknown token attribute")
)

// Match is one occurrence of the pattern registered under Key, covering
// tokens [Start, End).
type Match struct {
	Key   string
	Start int
	End   int
}

// OffsetBase tells how a matcher reports Match offsets.
type OffsetBase int

const (
	// OffsetAbsolute offsets index Document.Tokens directly.
	OffsetAbsolute OffsetBase = iota
	// OffsetRelative offsets are relative to the start of the searched range.
	OffsetRelative
)

// Matcher finds pattern occurrences within tokens [start, end) of a document.
type Matcher interface {
	// Len returns the number of registered patterns.
	Len() int
	// Offsets reports how returned offsets are based.
	Offsets() OffsetBase
	// Match returns all occurrences, ordered by start, end and registration order.
	Match(doc *document.Document, start, end int) []Match
}

// Attr names the token attribute a pattern compares against.
type Attr string

const (
	AttrText  Attr = "TEXT"
	AttrOrth  Attr = "ORTH"
	AttrLower Attr = "LOWER"
	AttrNorm  Attr = "NORM"
)

// ParseAttr parses an attribute name case-insensitively.
func ParseAttr(s string) (Attr, error) {
	switch a := Attr(strings.ToUpper(s)); a {
	case AttrText, AttrOrth, AttrLower, AttrNorm:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAttr, s)
	}
}

// Value returns the attribute value of tok.
func (a Attr) Value(tok document.Token) string {
	switch a {
	case AttrLower:
		return strings.ToLower(tok.Text)
	case AttrNorm:
		if tok.Norm == "" {
			return tok.Text
		}
		return tok.Norm
	default:
		return tok.Text
	}
}

// clampRange limits [start, end) to the document.
func clampRange(doc *document.Document, start, end int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > doc.Len() {
		end = doc.Len()
	}
	return start, end
}

type orderedMatch struct {
	Match
	order int
}

func sortMatches(ms []orderedMatch) []Match {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Start != ms[j].Start {
			return ms[i].Start < ms[j].Start
		}
		if ms[i].End != ms[j].End {
			return ms[i].End < ms[j].End
		}
		return ms[i].order < ms[j].order
	})

	out := make([]Match, len(ms))
	for i, m := range ms {
		out[i] = m.Match
	}
	return out
}
