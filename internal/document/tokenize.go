package document

import (
	"regexp"
	"unicode"
)

// tokenPattern matches, in order of preference: line breaks, decimal numbers,
// words with inner hyphens/apostrophes/slashes, and any other single
// non-space character.
var tokenPattern = regexp.MustCompile(`\n|\r|\p{N}+(?:[.,]\p{N}+)+|[\p{L}\p{N}]+(?:[-'’/][\p{L}\p{N}]+)*|[^\s\p{L}\p{N}]`)

// Token is a single token of a document.
type Token struct {
	Text  string
	Norm  string
	Start int
	End   int
}

// IsPunct reports whether the token consists of punctuation or symbols only.
func (t Token) IsPunct() bool {
	if t.Text == "" {
		return false
	}
	for _, r := range t.Text {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}

// IsDigit reports whether the token consists of digits only.
func (t Token) IsDigit() bool {
	if t.Text == "" {
		return false
	}
	for _, r := range t.Text {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// IsAlpha reports whether the token consists of letters only.
func (t Token) IsAlpha() bool {
	if t.Text == "" {
		return false
	}
	for _, r := range t.Text {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Tokenize splits text into tokens. Spaces and tabs are dropped, line breaks
// are kept as tokens since they can end a sentence. Norm is left empty.
func Tokenize(text string) []Token {
	locs := tokenPattern.FindAllStringIndex(text, -1)
	tokens := make([]Token, 0, len(locs))
	for _, loc := range locs {
		tokens = append(tokens, Token{
			Text:  text[loc[0]:loc[1]],
			Start: loc[0],
			End:   loc[1],
		})
	}
	return tokens
}
