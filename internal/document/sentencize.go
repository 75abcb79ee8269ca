package document

import "unicode"

// Sentence is a contiguous token range [Start, End).
type Sentence struct {
	Start int
	End   int
}

// Len returns the number of tokens in the sentence.
func (s Sentence) Len() int { return s.End - s.Start }

// Contains reports whether token index i lies in the sentence.
func (s Sentence) Contains(i int) bool { return i >= s.Start && i < s.End }

// Sentencizer splits a token stream into sentences.
//
// Any token in EndChars can end a sentence. The next sentence then starts at
// the first token that is alphanumeric, starts with "[", or is one of
// StartPunct.
type Sentencizer struct {
	EndChars   map[string]bool
	StartPunct map[string]bool
}

// NewSentencizer returns a sentencizer with the default boundary characters.
func NewSentencizer() *Sentencizer {
	return &Sentencizer{
		EndChars:   map[string]bool{".": true, "!": true, "?": true, "\n": true, "\r": true},
		StartPunct: map[string]bool{"-": true, "*": true, "[": true, "(": true},
	}
}

func (s *Sentencizer) canStart(tok Token) bool {
	if tok.Text == "" {
		return false
	}
	first := []rune(tok.Text)[0]
	return unicode.IsLetter(first) || unicode.IsDigit(first) || first == '[' || s.StartPunct[tok.Text]
}

func (s *Sentencizer) canEnd(tok Token) bool {
	return s.EndChars[tok.Text]
}

// Split returns the sentences of tokens. The sentences are contiguous and
// together cover every token; the first sentence always starts at token 0.
func (s *Sentencizer) Split(tokens []Token) []Sentence {
	if len(tokens) == 0 {
		return nil
	}

	starts := []int{0}
	seenEnd := true

	for i, tok := range tokens {
		if seenEnd && s.canStart(tok) {
			if i > 0 {
				starts = append(starts, i)
			}
			seenEnd = false
		}
		if s.canEnd(tok) {
			seenEnd = true
		}
	}

	sentences := make([]Sentence, len(starts))
	for i, start := range starts {
		end := len(tokens)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		sentences[i] = Sentence{Start: start, End: end}
	}
	return sentences
}
