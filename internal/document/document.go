package document

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/clinctx/internal/qualifier"
)

var (
	// ErrEntityBounds indicates an entity range outside the document or empty.
	ErrEntityBounds = errors.New("entity out of document bounds")

	// ErrEntityCrossesSentence indicates an entity that spans a sentence boundary.
	ErrEntityCrossesSentence = errors.New("entity crosses sentence boundary")

	// ErrInvalidSentences indicates sentence boundaries that do not tile the tokens.
	ErrInvalidSentences = errors.New("invalid sentence boundaries")
)

// Entity is a detected span of tokens [Start, End) that qualifiers are
// assigned to.
type Entity struct {
	Start    int
	End      int
	Label    string
	Sentence int // index into Document.Sentences

	// Qualifiers is nil until a qualifier detector initializes the entity.
	Qualifiers *qualifier.Set
}

// QualifierStrings returns the "Name.Value" forms of the entity's
// qualifiers, or nil when they were never initialized.
func (e *Entity) QualifierStrings() []string {
	if e.Qualifiers == nil {
		return nil
	}
	return e.Qualifiers.Strings()
}

// QualifierDicts returns the dictionary forms of the entity's qualifiers,
// or nil when they were never initialized.
func (e *Entity) QualifierDicts() []qualifier.Dict {
	if e.Qualifiers == nil {
		return nil
	}
	return e.Qualifiers.Dicts()
}

// Document is a tokenized, sentence-split text with entities.
type Document struct {
	ID        string
	Text      string
	Tokens    []Token
	Sentences []Sentence
	Entities  []*Entity
}

// Option configures New and FromWords.
type Option func(*options)

type options struct {
	id          string
	idGen       IDGenerator
	normalizer  *Normalizer
	sentencizer *Sentencizer
}

// WithID sets a fixed document ID.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithIDGenerator sets the generator used when no fixed ID is given.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *options) { o.idGen = gen }
}

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *Normalizer) Option {
	return func(o *options) { o.normalizer = n }
}

// WithSentencizer replaces the default sentencizer.
func WithSentencizer(s *Sentencizer) Option {
	return func(o *options) { o.sentencizer = s }
}

func buildOptions(opts []Option) options {
	o := options{
		idGen:       UUIDv7Generator{},
		normalizer:  NewNormalizer(),
		sentencizer: NewSentencizer(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = o.idGen.Generate()
	}
	return o
}

// New tokenizes, normalizes and sentence-splits text.
func New(text string, opts ...Option) *Document {
	o := buildOptions(opts)

	tokens := Tokenize(text)
	o.normalizer.Apply(tokens)

	return &Document{
		ID:        o.id,
		Text:      text,
		Tokens:    tokens,
		Sentences: o.sentencizer.Split(tokens),
	}
}

// FromWords builds a document from pre-tokenized words joined by single
// spaces.
func FromWords(words []string, opts ...Option) *Document {
	o := buildOptions(opts)

	tokens := make([]Token, len(words))
	var b strings.Builder
	for i, w := range words {
		if i > 0 {
			b.WriteByte(' ')
		}
		tokens[i] = Token{Text: w, Start: b.Len(), End: b.Len() + len(w)}
		b.WriteString(w)
	}
	o.normalizer.Apply(tokens)

	return &Document{
		ID:        o.id,
		Text:      b.String(),
		Tokens:    tokens,
		Sentences: o.sentencizer.Split(tokens),
	}
}

// Len returns the number of tokens.
func (d *Document) Len() int { return len(d.Tokens) }

// SetSentences replaces the sentence boundaries with externally computed
// ones. The sentences must be contiguous and cover every token. Existing
// entities are re-assigned to their new sentence.
func (d *Document) SetSentences(sentences []Sentence) error {
	pos := 0
	for i, s := range sentences {
		if s.Start != pos || s.End <= s.Start {
			return fmt.Errorf("%w: sentence %d is [%d, %d), expected start %d", ErrInvalidSentences, i, s.Start, s.End, pos)
		}
		pos = s.End
	}
	if pos != len(d.Tokens) {
		return fmt.Errorf("%w: sentences cover %d of %d tokens", ErrInvalidSentences, pos, len(d.Tokens))
	}

	prev := d.Sentences
	d.Sentences = sentences

	assigned := make([]int, len(d.Entities))
	for i, ent := range d.Entities {
		idx, ok := d.sentenceIndex(ent.Start)
		if !ok || !d.Sentences[idx].Contains(ent.End-1) {
			d.Sentences = prev
			return fmt.Errorf("%w: entity [%d, %d)", ErrEntityCrossesSentence, ent.Start, ent.End)
		}
		assigned[i] = idx
	}
	for i, ent := range d.Entities {
		ent.Sentence = assigned[i]
	}
	return nil
}

// sentenceIndex returns the index of the sentence containing token i.
func (d *Document) sentenceIndex(i int) (int, bool) {
	idx := sort.Search(len(d.Sentences), func(k int) bool {
		return d.Sentences[k].End > i
	})
	if idx == len(d.Sentences) || !d.Sentences[idx].Contains(i) {
		return 0, false
	}
	return idx, true
}

// AddEntity adds an entity over tokens [start, end). The entity must be
// non-empty and lie within a single sentence.
func (d *Document) AddEntity(start, end int, label string) (*Entity, error) {
	if start < 0 || end > len(d.Tokens) || start >= end {
		return nil, fmt.Errorf("%w: [%d, %d) in document of %d tokens", ErrEntityBounds, start, end, len(d.Tokens))
	}

	idx, ok := d.sentenceIndex(start)
	if !ok || !d.Sentences[idx].Contains(end-1) {
		return nil, fmt.Errorf("%w: [%d, %d)", ErrEntityCrossesSentence, start, end)
	}

	ent := &Entity{Start: start, End: end, Label: label, Sentence: idx}
	d.Entities = append(d.Entities, ent)
	return ent, nil
}

// SpanText returns the original text covered by tokens [start, end).
func (d *Document) SpanText(start, end int) string {
	if start < 0 || end > len(d.Tokens) || start >= end {
		return ""
	}
	return d.Text[d.Tokens[start].Start:d.Tokens[end-1].End]
}

// EntityText returns the original text of ent.
func (d *Document) EntityText(ent *Entity) string {
	return d.SpanText(ent.Start, ent.End)
}

// SentenceEntities pairs a sentence with the entities it contains.
type SentenceEntities struct {
	Index    int
	Sentence Sentence
	Entities []*Entity
}

// SentencesWithEntities groups entities by sentence, in sentence order.
// Sentences without entities are omitted.
func (d *Document) SentencesWithEntities() []SentenceEntities {
	bySentence := make(map[int][]*Entity)
	for _, ent := range d.Entities {
		bySentence[ent.Sentence] = append(bySentence[ent.Sentence], ent)
	}

	indices := make([]int, 0, len(bySentence))
	for idx := range bySentence {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	out := make([]SentenceEntities, 0, len(indices))
	for _, idx := range indices {
		out = append(out, SentenceEntities{
			Index:    idx,
			Sentence: d.Sentences[idx],
			Entities: bySentence[idx],
		})
	}
	return out
}
