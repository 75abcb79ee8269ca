package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/clinctx/internal/document"
	"github.com/roach88/clinctx/internal/qualifier"
)

type annotateResponse struct {
	Status string         `json:"status"`
	Data   AnnotateResult `json:"data"`
}

func decodeAnnotate(t *testing.T, out string) AnnotateResult {
	t.Helper()
	var resp annotateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func qualifierValue(t *testing.T, qs []qualifier.Dict, name string) string {
	t.Helper()
	for _, q := range qs {
		if q.Name == name {
			return q.Value
		}
	}
	t.Fatalf("no %s qualifier in %v", name, qs)
	return ""
}

func TestAnnotateStdinText(t *testing.T) {
	out, _, err := execute(t, "Patient heeft geen koorts.", "annotate", "--term", "koorts")
	require.NoError(t, err)
	assert.Equal(t,
		"-\tkoorts\t[3,4)\tExperiencer.Patient Plausibility.Plausible Presence.Absent Temporality.Current\n",
		out)
}

func TestAnnotateFilesJSON(t *testing.T) {
	first := writeFile(t, "first.txt", "Moeder had diabetes.")
	second := writeFile(t, "second.txt", "Mogelijk pneumonie, maar geen hoest.")

	out, _, err := execute(t, "", "--format", "json", "annotate",
		"-t", "diabetes", "-t", "pneumonie", "-t", "hoest", "--label", "symptom",
		first, second)
	require.NoError(t, err)

	result := decodeAnnotate(t, out)
	require.Len(t, result.Documents, 2)

	doc := result.Documents[0]
	assert.Equal(t, first, doc.Source)
	assert.NotEmpty(t, doc.ID)
	require.Len(t, doc.Entities, 1)
	assert.Equal(t, "diabetes", doc.Entities[0].Text)
	assert.Equal(t, "symptom", doc.Entities[0].Label)
	assert.Equal(t, "Family", qualifierValue(t, doc.Entities[0].Qualifiers, "Experiencer"))

	doc = result.Documents[1]
	require.Len(t, doc.Entities, 2)
	assert.Equal(t, "Uncertain", qualifierValue(t, doc.Entities[0].Qualifiers, "Presence"))
	assert.Equal(t, "Absent", qualifierValue(t, doc.Entities[1].Qualifiers, "Presence"))
}

func TestAnnotateLongestTermWins(t *testing.T) {
	out, _, err := execute(t, "Geen hoge koorts.", "--format", "json", "annotate",
		"-t", "hoge koorts", "-t", "koorts")
	require.NoError(t, err)

	result := decodeAnnotate(t, out)
	require.Len(t, result.Documents, 1)
	ents := result.Documents[0].Entities
	require.Len(t, ents, 1)
	assert.Equal(t, "hoge koorts", ents[0].Text)
	assert.Equal(t, [2]int{1, 3}, [2]int{ents[0].Start, ents[0].End})
	assert.Equal(t, "Absent", qualifierValue(t, ents[0].Qualifiers, "Presence"))
}

func TestAnnotateTermsFromConfig(t *testing.T) {
	cfg := writeFile(t, "config.yaml", "terms: [koorts]\nlabel: finding\nformat: json\n")

	out, _, err := execute(t, "Thans geen koorts.", "--config", cfg, "annotate")
	require.NoError(t, err)

	result := decodeAnnotate(t, out)
	ents := result.Documents[0].Entities
	require.Len(t, ents, 1)
	assert.Equal(t, "finding", ents[0].Label)
}

func TestAnnotateTermsFromEnvironment(t *testing.T) {
	t.Setenv("CLINCTX_LABEL", "diagnosis")

	out, _, err := execute(t, "Geen koorts.", "--format", "json", "annotate", "-t", "koorts")
	require.NoError(t, err)

	result := decodeAnnotate(t, out)
	assert.Equal(t, "diagnosis", result.Documents[0].Entities[0].Label)
}

func TestAnnotateCustomRules(t *testing.T) {
	rulesPath := writeFile(t, "rules.yaml", `
qualifiers:
  - name: Negation
    values: [Affirmed, Negated]
rules:
  - qualifier: Negation.Negated
    direction: following
    patterns: [ontkend]
`)

	out, _, err := execute(t, "Koorts ontkend, hoest aanwezig.", "--format", "json", "annotate",
		"--rules", rulesPath, "-t", "koorts", "-t", "hoest")
	require.NoError(t, err)

	ents := decodeAnnotate(t, out).Documents[0].Entities
	require.Len(t, ents, 2)
	assert.Equal(t, "Negated", qualifierValue(t, ents[0].Qualifiers, "Negation"))
	assert.Equal(t, "Affirmed", qualifierValue(t, ents[1].Qualifiers, "Negation"))
	assert.Len(t, ents[0].Qualifiers, 1)
}

func TestAnnotateAttrText(t *testing.T) {
	out, _, err := execute(t, "Geen koorts.", "--format", "json", "annotate",
		"--attr", "text", "-t", "koorts")
	require.NoError(t, err)

	ents := decodeAnnotate(t, out).Documents[0].Entities
	require.Len(t, ents, 1)
	assert.Equal(t, "Present", qualifierValue(t, ents[0].Qualifiers, "Presence"))
}

func TestAnnotateNoEntities(t *testing.T) {
	out, _, err := execute(t, "Patient voelt zich goed.", "--format", "json", "annotate", "-t", "koorts")
	require.NoError(t, err)

	result := decodeAnnotate(t, out)
	require.Len(t, result.Documents, 1)
	assert.Empty(t, result.Documents[0].Entities)
}

func TestAnnotateErrors(t *testing.T) {
	badRules := writeFile(t, "bad.json", `{"qualifiers": [], "rules": [{"qualifier": "A.b", "direction": "up", "patterns": ["x"]}]}`)

	testCases := []struct {
		name     string
		args     []string
		wantCode string
		wantExit int
	}{
		{"no terms", []string{"annotate"}, ErrCodeNoTerms, ExitCommandError},
		{"missing input", []string{"annotate", "-t", "koorts", filepath.Join(t.TempDir(), "absent.txt")}, ErrCodeNotFound, ExitCommandError},
		{"invalid attr", []string{"annotate", "-t", "koorts", "--attr", "shape"}, ErrCodeConfig, ExitCommandError},
		{"invalid rules", []string{"annotate", "-t", "koorts", "--rules", badRules}, "E20", ExitCommandError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, _, err := execute(t, "koorts", tc.args...)
			require.Error(t, err)
			assert.Equal(t, tc.wantExit, GetExitCode(err))
			assert.Contains(t, out, tc.wantCode)
		})
	}
}

func TestAnnotateFixedDocumentIDs(t *testing.T) {
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewAnnotateCommand(rootOpts)
	t.Setenv("HOME", t.TempDir())

	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetIn(bytes.NewBufferString("Geen koorts."))
	require.NoError(t, cmd.Flags().Parse([]string{"-t", "koorts"}))

	opts := &AnnotateOptions{IDs: document.NewFixedGenerator("note-1")}
	require.NoError(t, runAnnotate(rootOpts, opts, nil, cmd))

	var resp annotateResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "note-1", resp.Data.Documents[0].ID)
}
