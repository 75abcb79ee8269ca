package qualifier

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClassDefaults(t *testing.T) {
	c, err := NewClass("Negation", []string{"Affirmed", "Negated"})
	require.NoError(t, err)

	assert.Equal(t, "Negation", c.Name())
	assert.Equal(t, []string{"Affirmed", "Negated"}, c.Values())
	assert.Equal(t, "Affirmed", c.DefaultValue())
	assert.Equal(t, 0, c.Priority("Affirmed"))
	assert.Equal(t, 1, c.Priority("Negated"))
}

func TestNewClassExplicitDefaultAndPriorities(t *testing.T) {
	c, err := NewClass("Presence", []string{"Absent", "Uncertain", "Present"},
		WithDefault("Present"),
		WithPriorities(map[string]int{"Absent": 2, "Uncertain": 1, "Present": 0}),
	)
	require.NoError(t, err)

	assert.Equal(t, "Present", c.DefaultValue())
	assert.Equal(t, 2, c.Priority("Absent"))
	assert.Equal(t, 0, c.Priority("Present"))
}

func TestNewClassErrors(t *testing.T) {
	testCases := []struct {
		name    string
		values  []string
		opts    []ClassOption
		wantErr error
	}{
		{"no values", nil, nil, ErrEmptyValues},
		{"duplicate values", []string{"A", "B", "A"}, nil, ErrDuplicateValues},
		{"default not in values", []string{"A", "B"}, []ClassOption{WithDefault("C")}, ErrDefaultNotInValues},
		{"priority for unknown value", []string{"A", "B"}, []ClassOption{WithPriorities(map[string]int{"C": 1})}, ErrUnknownPriorityValue},
		{"priorities for some values", []string{"A", "B", "C"}, []ClassOption{WithPriorities(map[string]int{"A": 1, "C": 2})}, ErrMissingPriority},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewClass("Mock", tc.values, tc.opts...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
		})
	}
}

func TestClassValuesIsCopy(t *testing.T) {
	c := MustNewClass("Mock", []string{"Mock_1", "Mock_2"})

	values := c.Values()
	values[0] = "changed"

	assert.Equal(t, []string{"Mock_1", "Mock_2"}, c.Values())
}

func TestCreate(t *testing.T) {
	c := MustNewClass("Mock", []string{"Mock_1", "Mock_2"})

	q, err := c.Create("Mock_2")
	require.NoError(t, err)
	assert.Equal(t, "Mock", q.Name)
	assert.Equal(t, "Mock_2", q.Value)
	assert.False(t, q.IsDefault)
	assert.Equal(t, 1, q.Priority)
	assert.Nil(t, q.Confidence)
}

func TestCreateDefault(t *testing.T) {
	c := MustNewClass("Mock", []string{"Mock_1", "Mock_2"})

	q, err := c.Create("")
	require.NoError(t, err)
	assert.Equal(t, "Mock_1", q.Value)
	assert.True(t, q.IsDefault)
	assert.True(t, q.Equal(c.Default()))
}

func TestCreateInvalidValue(t *testing.T) {
	c := MustNewClass("Mock", []string{"Mock_1", "Mock_2"})

	_, err := c.Create("Mock_3")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Contains(t, err.Error(), "Mock_3")
}

func TestCreateWithConfidence(t *testing.T) {
	c := MustNewClass("Mock", []string{"Mock_1", "Mock_2"})

	q, err := c.Create("Mock_1", WithConfidence(0.8))
	require.NoError(t, err)
	require.NotNil(t, q.Confidence)
	assert.InDelta(t, 0.8, *q.Confidence, 1e-9)
}

func TestQualifierEqualityIgnoresConfidence(t *testing.T) {
	c := MustNewClass("Mock", []string{"Mock_1", "Mock_2"})

	a, _ := c.Create("Mock_1", WithConfidence(0.2))
	b, _ := c.Create("Mock_1", WithConfidence(0.9))
	other, _ := c.Create("Mock_2")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(other))
}

func TestQualifierString(t *testing.T) {
	q := MustNewClass("Negation", []string{"Affirmed", "Negated"}).Default()
	assert.Equal(t, "Negation.Affirmed", q.String())
}

func TestSetAddReplacesByName(t *testing.T) {
	neg := MustNewClass("Negation", []string{"Affirmed", "Negated"})
	tmp := MustNewClass("Temporality", []string{"Current", "Historical"})

	s := NewSet(neg.Default(), tmp.Default())
	negated, _ := neg.Create("Negated")
	s.Add(negated)

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has(negated))
	assert.False(t, s.Has(neg.Default()))
	assert.Equal(t, []string{"Negation.Negated", "Temporality.Current"}, s.Strings())

	got, ok := s.Get("Temporality")
	require.True(t, ok)
	assert.True(t, got.IsDefault)
}

func TestSetDictsAndJSON(t *testing.T) {
	neg := MustNewClass("Negation", []string{"Affirmed", "Negated"})
	s := NewSet(neg.Default())

	dicts := s.Dicts()
	require.Len(t, dicts, 1)
	assert.Equal(t, Dict{Name: "Negation", Value: "Affirmed", IsDefault: true}, dicts[0])

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Negation","value":"Affirmed","is_default":true,"confidence":null}]`, string(data))
}
