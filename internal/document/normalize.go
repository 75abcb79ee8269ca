package document

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalizer produces the NORM form of token text.
//
// Lowercasing uses Unicode case folding. Non-ASCII mapping decomposes each
// character (NFD) and keeps its ASCII part, so "é" becomes "e"; a character
// without any ASCII part is kept as is.
type Normalizer struct {
	Lowercase   bool
	MapNonASCII bool
}

// NewNormalizer returns a normalizer with lowercasing and non-ASCII mapping enabled.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		Lowercase:   true,
		MapNonASCII: true,
	}
}

// Normalize returns the normalized form of text.
func (n *Normalizer) Normalize(text string) string {
	if n.Lowercase {
		// A Caser is stateful, so each call gets its own.
		text = cases.Fold().String(text)
	}
	if n.MapNonASCII {
		text = mapNonASCII(text)
	}
	return text
}

// Apply fills Norm on every token.
func (n *Normalizer) Apply(tokens []Token) {
	for i := range tokens {
		tokens[i].Norm = n.Normalize(tokens[i].Text)
	}
}

func mapNonASCII(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
			continue
		}

		mapped := asciiPart(norm.NFD.String(string(r)))
		if mapped == "" {
			b.WriteRune(r)
			continue
		}
		b.WriteString(mapped)
	}

	return b.String()
}

func asciiPart(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	return b.String()
}
