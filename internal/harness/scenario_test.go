package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "termination.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "termination", s.Name)
	assert.Equal(t, filepath.Join("testdata", "rules", "negation.yaml"), s.Rules)
	assert.Equal(t, []string{"SYMPTOOM"}, s.Terms)
	require.Len(t, s.Assertions, 4)
	assert.Equal(t, AssertNotQualifier, s.Assertions[2].Type)
	assert.Equal(t, 1, s.Assertions[2].Entity)
}

func TestLoadScenarioFolded(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "clinical_note.yaml"))
	require.NoError(t, err)
	assert.Empty(t, s.Rules)
	assert.Contains(t, s.Text, "geen hoest. Moeder had diabetes.")
}

func TestLoadScenarioFileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenarioUnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "misspelled assertions"
text: "geen SYMPTOOM"
terms: [SYMPTOOM]
assertion:
  - type: entity_count
    count: 1
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenarioValidation(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing name",
			body:    "description: d\ntext: t\nterms: [t]\nassertions: [{type: entity_count, count: 1}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			body:    "name: n\ntext: t\nterms: [t]\nassertions: [{type: entity_count, count: 1}]\n",
			wantErr: "description is required",
		},
		{
			name:    "missing assertions",
			body:    "name: n\ndescription: d\ntext: t\nterms: [t]\n",
			wantErr: "assertions list is required",
		},
		{
			name:    "missing text",
			body:    "name: n\ndescription: d\nterms: [t]\nassertions: [{type: entity_count, count: 1}]\n",
			wantErr: "text is required",
		},
		{
			name:    "missing terms",
			body:    "name: n\ndescription: d\ntext: t\nassertions: [{type: entity_count, count: 1}]\n",
			wantErr: "terms list is required",
		},
		{
			name:    "rules not found",
			body:    "name: n\ndescription: d\nrules: absent.yaml\ntext: t\nterms: [t]\nassertions: [{type: entity_count, count: 1}]\n",
			wantErr: "rules file not found",
		},
		{
			name:    "invalid attr",
			body:    "name: n\ndescription: d\nattr: shape\ntext: t\nterms: [t]\nassertions: [{type: entity_count, count: 1}]\n",
			wantErr: "attr",
		},
		{
			name:    "unknown assertion type",
			body:    "name: n\ndescription: d\ntext: t\nterms: [t]\nassertions: [{type: trace_contains}]\n",
			wantErr: `unknown assertion type "trace_contains"`,
		},
		{
			name:    "qualifier without reference",
			body:    "name: n\ndescription: d\ntext: t\nterms: [t]\nassertions: [{type: qualifier, entity: 0}]\n",
			wantErr: "qualifier is required",
		},
		{
			name:    "malformed qualifier reference",
			body:    "name: n\ndescription: d\ntext: t\nterms: [t]\nassertions: [{type: qualifier, qualifier: Negation_Negated}]\n",
			wantErr: "Class.Value",
		},
		{
			name:    "default without class",
			body:    "name: n\ndescription: d\ntext: t\nterms: [t]\nassertions: [{type: default, entity: 0}]\n",
			wantErr: "class is required",
		},
		{
			name:    "negative count",
			body:    "name: n\ndescription: d\ntext: t\nterms: [t]\nassertions: [{type: entity_count, count: -1}]\n",
			wantErr: "count must be non-negative",
		},
		{
			name:    "load error without code",
			body:    "name: n\ndescription: d\nassertions: [{type: load_error}]\n",
			wantErr: "code is required",
		},
		{
			name:    "load error with other assertions",
			body:    "name: n\ndescription: d\nassertions: [{type: load_error, code: E203}, {type: entity_count, count: 0}]\n",
			wantErr: "load_error must be the only assertion",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
