package engine

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/clinctx/internal/document"
	"github.com/roach88/clinctx/internal/rules"
)

const clinicalNote = "Patient heeft geen koorts. Mogelijk pneumonie, maar geen hoest. " +
	"Moeder had diabetes. Dyspneu 3 weken geleden. " +
	"Familieanamnese onbekend voor migraine. Geen toename van pijn."

var clinicalTerms = []string{"koorts", "pneumonie", "hoest", "diabetes", "dyspneu", "migraine", "pijn"}

// TestDefaultRulesGolden runs the bundled rule set over a short note and
// compares every entity's qualifiers against the golden file.
//
// Regenerate with: go test ./internal/engine -run TestDefaultRulesGolden -update
func TestDefaultRulesGolden(t *testing.T) {
	rs, err := rules.Default()
	require.NoError(t, err)

	a, err := NewFromRuleSet(rs, WithLogger(quietLogger()))
	require.NoError(t, err)

	doc := document.New(clinicalNote, document.WithID("golden"))
	for i, tok := range doc.Tokens {
		if slices.Contains(clinicalTerms, tok.Norm) {
			_, err := doc.AddEntity(i, i+1, "symptom")
			require.NoError(t, err)
		}
	}
	require.Len(t, doc.Entities, len(clinicalTerms))

	require.NoError(t, a.Annotate(doc))

	var buf bytes.Buffer
	for _, ent := range doc.Entities {
		fmt.Fprintf(&buf, "%s [%d,%d) %s\n",
			doc.EntityText(ent), ent.Start, ent.End, strings.Join(ent.QualifierStrings(), " "))
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "default_rules", buf.Bytes())
}
