package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/clinctx/internal/qualifier"
)

func tokenTexts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text
	}
	return out
}

func TestTokenize(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want []string
	}{
		{"simple sentence", "Patient heeft geen SYMPTOOM.", []string{"Patient", "heeft", "geen", "SYMPTOOM", "."}},
		{"comma", "geen SYMPTOOM, maar wel", []string{"geen", "SYMPTOOM", ",", "maar", "wel"}},
		{"hyphenated word", "niet-roker", []string{"niet-roker"}},
		{"decimal", "temp 38.5 graden", []string{"temp", "38.5", "graden"}},
		{"newline kept", "regel een\nregel twee", []string{"regel", "een", "\n", "regel", "twee"}},
		{"empty", "", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tokenTexts(Tokenize(tc.text)))
		})
	}
}

func TestTokenizeOffsets(t *testing.T) {
	text := "geen  koorts."
	tokens := Tokenize(text)

	require.Len(t, tokens, 3)
	for _, tok := range tokens {
		assert.Equal(t, tok.Text, text[tok.Start:tok.End])
	}
}

func TestTokenFlags(t *testing.T) {
	assert.True(t, Token{Text: "."}.IsPunct())
	assert.False(t, Token{Text: "a."}.IsPunct())
	assert.True(t, Token{Text: "42"}.IsDigit())
	assert.True(t, Token{Text: "koorts"}.IsAlpha())
	assert.False(t, Token{Text: "38.5"}.IsAlpha())
}

func TestNormalizer(t *testing.T) {
	n := NewNormalizer()

	assert.Equal(t, "cafe", n.Normalize("Café"))
	assert.Equal(t, "eczeem", n.Normalize("Ëczeem"))
	assert.Equal(t, "ωmega", n.Normalize("ΩMEGA"))
	assert.Equal(t, "patient", n.Normalize("Patiënt"))
}

func TestNormalizerOptions(t *testing.T) {
	n := &Normalizer{Lowercase: false, MapNonASCII: true}
	assert.Equal(t, "Cafe", n.Normalize("Café"))

	n = &Normalizer{Lowercase: true, MapNonASCII: false}
	assert.Equal(t, "café", n.Normalize("CAFÉ"))
}

func TestSentencize(t *testing.T) {
	doc := New("Patient 1 heeft ENTITY. Patient 2 niet. Patient 3 heeft ook ENTITY.", WithID("doc"))

	assert.Equal(t, []Sentence{{0, 5}, {5, 9}, {9, 15}}, doc.Sentences)
}

func TestSentencizeStartPunct(t *testing.T) {
	doc := New("Anamnese:\n- koorts\n- hoest", WithID("doc"))

	// Anamnese : \n | - koorts \n | - hoest
	assert.Equal(t, []Sentence{{0, 3}, {3, 6}, {6, 8}}, doc.Sentences)
}

func TestSentencizeLowercaseAfterPeriodStillStarts(t *testing.T) {
	doc := New("geen koorts. wel hoest", WithID("doc"))
	assert.Equal(t, []Sentence{{0, 3}, {3, 5}}, doc.Sentences)
}

func TestSentencizeStartsOnLeadingAlphanumeric(t *testing.T) {
	doc := New("geen koorts. 3e dag stabiel. ... herstel", WithID("doc"))

	// geen koorts . | 3e dag stabiel . ... | herstel
	assert.Equal(t, []Sentence{{0, 3}, {3, 10}, {10, 11}}, doc.Sentences)
}

func TestSentencizeEmpty(t *testing.T) {
	assert.Nil(t, NewSentencizer().Split(nil))
}

func TestNewUsesGenerator(t *testing.T) {
	gen := NewFixedGenerator("doc-1", "doc-2")

	a := New("een", WithIDGenerator(gen))
	b := New("twee", WithIDGenerator(gen))

	assert.Equal(t, "doc-1", a.ID)
	assert.Equal(t, "doc-2", b.ID)
	assert.Panics(t, func() { New("drie", WithIDGenerator(gen)) })
}

func TestUUIDv7Generator(t *testing.T) {
	id := UUIDv7Generator{}.Generate()
	assert.Len(t, id, 36)
	assert.NotEqual(t, id, UUIDv7Generator{}.Generate())
}

func TestFromWords(t *testing.T) {
	doc := FromWords([]string{"dit", "is", "een", "Test"}, WithID("doc"))

	assert.Equal(t, "dit is een Test", doc.Text)
	assert.Equal(t, "test", doc.Tokens[3].Norm)
	assert.Equal(t, []Sentence{{0, 4}}, doc.Sentences)
	assert.Equal(t, "is een", doc.SpanText(1, 3))
}

func TestAddEntity(t *testing.T) {
	doc := New("Patient heeft koorts. Geen hoest.", WithID("doc"))

	ent, err := doc.AddEntity(5, 6, "symptom")
	require.NoError(t, err)
	assert.Equal(t, 1, ent.Sentence)
	assert.Equal(t, "hoest", doc.EntityText(ent))
	assert.Nil(t, ent.Qualifiers)
	assert.Nil(t, ent.QualifierStrings())
	assert.Nil(t, ent.QualifierDicts())
}

func TestAddEntityErrors(t *testing.T) {
	doc := New("Patient heeft koorts. Geen hoest.", WithID("doc"))

	_, err := doc.AddEntity(2, 2, "")
	assert.ErrorIs(t, err, ErrEntityBounds)

	_, err = doc.AddEntity(5, 99, "")
	assert.ErrorIs(t, err, ErrEntityBounds)

	_, err = doc.AddEntity(2, 6, "")
	assert.ErrorIs(t, err, ErrEntityCrossesSentence)
}

func TestSetSentences(t *testing.T) {
	doc := FromWords([]string{"a", "b", "c", "d"}, WithID("doc"))
	ent, err := doc.AddEntity(2, 3, "")
	require.NoError(t, err)

	require.NoError(t, doc.SetSentences([]Sentence{{0, 2}, {2, 4}}))
	assert.Equal(t, 1, ent.Sentence)

	err = doc.SetSentences([]Sentence{{0, 3}})
	assert.ErrorIs(t, err, ErrInvalidSentences)

	err = doc.SetSentences([]Sentence{{0, 1}, {1, 3}, {3, 4}})
	require.NoError(t, err)

	_, err = doc.AddEntity(0, 2, "")
	assert.ErrorIs(t, err, ErrEntityCrossesSentence)
}

func TestSetSentencesRejectsSplitEntity(t *testing.T) {
	doc := FromWords([]string{"a", "b", "c", "d"}, WithID("doc"))
	_, err := doc.AddEntity(1, 3, "")
	require.NoError(t, err)

	err = doc.SetSentences([]Sentence{{0, 2}, {2, 4}})
	assert.ErrorIs(t, err, ErrEntityCrossesSentence)
	assert.Equal(t, []Sentence{{0, 4}}, doc.Sentences)
}

func TestSentencesWithEntities(t *testing.T) {
	doc := New("Patient 1 heeft ENTITY. Patient 2 niet. Patient 3 heeft ook ENTITY.", WithID("doc"))
	_, err := doc.AddEntity(13, 14, "e")
	require.NoError(t, err)
	_, err = doc.AddEntity(3, 4, "e")
	require.NoError(t, err)

	groups := doc.SentencesWithEntities()
	require.Len(t, groups, 2)
	assert.Equal(t, 0, groups[0].Index)
	assert.Equal(t, 2, groups[1].Index)
	for _, g := range groups {
		require.Len(t, g.Entities, 1)
		assert.Equal(t, "ENTITY", doc.EntityText(g.Entities[0]))
	}
}

func TestEntityQualifierForms(t *testing.T) {
	neg := qualifier.MustNewClass("Negation", []string{"Affirmed", "Negated"})
	ent := &Entity{Qualifiers: qualifier.NewSet(neg.Default())}

	assert.Equal(t, []string{"Negation.Affirmed"}, ent.QualifierStrings())
	assert.Equal(t, "Affirmed", ent.QualifierDicts()[0].Value)
}
