package qualifier

import (
	"encoding/json"
	"sort"
)

// Set holds the qualifiers of one entity, at most one per class name.
//
// The zero value is not usable; create sets with NewSet. A nil *Set stands
// for "qualifiers not initialized".
type Set struct {
	byName map[string]Qualifier
}

// NewSet creates a set holding qs. Later qualifiers replace earlier ones
// with the same name.
func NewSet(qs ...Qualifier) *Set {
	s := &Set{byName: make(map[string]Qualifier, len(qs))}
	for _, q := range qs {
		s.Add(q)
	}
	return s
}

// Add inserts q, replacing any qualifier with the same class name.
func (s *Set) Add(q Qualifier) {
	s.byName[q.Name] = q
}

// Get returns the qualifier of the named class.
func (s *Set) Get(name string) (Qualifier, bool) {
	q, ok := s.byName[name]
	return q, ok
}

// Has reports whether the set contains a qualifier equal to q.
func (s *Set) Has(q Qualifier) bool {
	cur, ok := s.byName[q.Name]
	return ok && cur.Equal(q)
}

// Len returns the number of qualifiers.
func (s *Set) Len() int { return len(s.byName) }

// All returns the qualifiers ordered by class name.
func (s *Set) All() []Qualifier {
	out := make([]Qualifier, 0, len(s.byName))
	for _, q := range s.byName {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Strings returns the "Name.Value" forms ordered by class name.
func (s *Set) Strings() []string {
	all := s.All()
	out := make([]string, len(all))
	for i, q := range all {
		out[i] = q.String()
	}
	return out
}

// Dicts returns the dictionary forms ordered by class name.
func (s *Set) Dicts() []Dict {
	all := s.All()
	out := make([]Dict, len(all))
	for i, q := range all {
		out[i] = q.Dict()
	}
	return out
}

// MarshalJSON encodes the set as its list of dictionary forms.
func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Dicts())
}
