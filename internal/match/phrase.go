package match

import (
	"fmt"

	"github.com/roach88/clinctx/internal/document"
)

type phrase struct {
	key    string
	values []string
	order  int
}

// PhraseMatcher matches literal phrases token by token on one attribute.
// Phrases are tokenized and normalized the same way documents are.
//
// Match reports document-absolute offsets.
type PhraseMatcher struct {
	attr       Attr
	normalizer *document.Normalizer
	byFirst    map[string][]phrase
	keys       map[string]bool
}

// NewPhraseMatcher creates a phrase matcher comparing on attr.
func NewPhraseMatcher(attr Attr) *PhraseMatcher {
	return &PhraseMatcher{
		attr:       attr,
		normalizer: document.NewNormalizer(),
		byFirst:    make(map[string][]phrase),
		keys:       make(map[string]bool),
	}
}

// Attr returns the attribute phrases are compared on.
func (m *PhraseMatcher) Attr() Attr { return m.attr }

// Add registers text under key.
func (m *PhraseMatcher) Add(key, text string) error {
	if m.keys[key] {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}

	tokens := document.Tokenize(text)
	if len(tokens) == 0 {
		return fmt.Errorf("%w: phrase %q has no tokens", ErrEmptyPattern, text)
	}
	m.normalizer.Apply(tokens)

	values := make([]string, len(tokens))
	for i, tok := range tokens {
		values[i] = m.attr.Value(tok)
	}

	m.byFirst[values[0]] = append(m.byFirst[values[0]], phrase{
		key:    key,
		values: values,
		order:  len(m.keys),
	})
	m.keys[key] = true
	return nil
}

// Len returns the number of registered phrases.
func (m *PhraseMatcher) Len() int { return len(m.keys) }

// Offsets reports OffsetAbsolute.
func (m *PhraseMatcher) Offsets() OffsetBase { return OffsetAbsolute }

// Match returns every phrase occurrence fully inside tokens [start, end).
func (m *PhraseMatcher) Match(doc *document.Document, start, end int) []Match {
	if len(m.keys) == 0 {
		return nil
	}
	start, end = clampRange(doc, start, end)

	var found []orderedMatch
	for i := start; i < end; i++ {
		for _, p := range m.byFirst[m.attr.Value(doc.Tokens[i])] {
			if i+len(p.values) > end || !m.matchesAt(doc, i, p.values) {
				continue
			}
			found = append(found, orderedMatch{
				Match: Match{Key: p.key, Start: i, End: i + len(p.values)},
				order: p.order,
			})
		}
	}
	return sortMatches(found)
}

func (m *PhraseMatcher) matchesAt(doc *document.Document, pos int, values []string) bool {
	for k, v := range values {
		if m.attr.Value(doc.Tokens[pos+k]) != v {
			return false
		}
	}
	return true
}
