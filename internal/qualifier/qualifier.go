package qualifier

import (
	"fmt"
	"slices"
)

// Qualifier is one value of a qualifier class, e.g. Negation.Negated.
//
// Qualifiers are values: they are created by Class.Create and never mutated.
// Equality is defined by Equal over (Name, Value, IsDefault); Priority is
// derived from the class and Confidence is metadata set by statistical
// detectors.
type Qualifier struct {
	Name       string
	Value      string
	IsDefault  bool
	Priority   int
	Confidence *float64
}

// Equal reports whether q and other denote the same qualifier.
func (q Qualifier) Equal(other Qualifier) bool {
	return q.Name == other.Name && q.Value == other.Value && q.IsDefault == other.IsDefault
}

// String returns the "Name.Value" form.
func (q Qualifier) String() string {
	return q.Name + "." + q.Value
}

// Dict is the dictionary form of a qualifier, as exposed to downstream consumers.
type Dict struct {
	Name       string   `json:"name"`
	Value      string   `json:"value"`
	IsDefault  bool     `json:"is_default"`
	Confidence *float64 `json:"confidence"`
}

// Dict returns the dictionary form of q.
func (q Qualifier) Dict() Dict {
	return Dict{
		Name:       q.Name,
		Value:      q.Value,
		IsDefault:  q.IsDefault,
		Confidence: q.Confidence,
	}
}

// QualifierOption configures a qualifier created by Class.Create.
type QualifierOption func(*Qualifier)

// WithConfidence attaches a confidence score to the created qualifier.
func WithConfidence(confidence float64) QualifierOption {
	return func(q *Qualifier) {
		c := confidence
		q.Confidence = &c
	}
}

// Class is a named, ordered set of qualifier values with a default and
// per-value priorities. A Class is immutable once constructed.
type Class struct {
	name       string
	values     []string
	def        string
	priorities map[string]int
}

// ClassOption configures NewClass.
type ClassOption func(*classConfig)

type classConfig struct {
	def        string
	priorities map[string]int
}

// WithDefault sets the default value. Without it the first value is the default.
func WithDefault(value string) ClassOption {
	return func(c *classConfig) {
		c.def = value
	}
}

// WithPriorities sets value priorities; every value needs one. Without it
// each value's priority is its position in the value list.
func WithPriorities(priorities map[string]int) ClassOption {
	return func(c *classConfig) {
		c.priorities = priorities
	}
}

// NewClass creates a qualifier class.
func NewClass(name string, values []string, opts ...ClassOption) (*Class, error) {
	cfg := classConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyValues, name)
	}

	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return nil, fmt.Errorf("%w: %s %v", ErrDuplicateValues, name, values)
		}
		seen[v] = true
	}

	def := cfg.def
	if def == "" {
		def = values[0]
	}
	if !seen[def] {
		return nil, fmt.Errorf("%w: default %q not in %v", ErrDefaultNotInValues, def, values)
	}

	priorities := make(map[string]int, len(values))
	if len(cfg.priorities) == 0 {
		for i, v := range values {
			priorities[v] = i
		}
	} else {
		for v, p := range cfg.priorities {
			if !seen[v] {
				return nil, fmt.Errorf("%w: %s has no value %q", ErrUnknownPriorityValue, name, v)
			}
			priorities[v] = p
		}
		for _, v := range values {
			if _, ok := priorities[v]; !ok {
				return nil, fmt.Errorf("%w: %s.%s", ErrMissingPriority, name, v)
			}
		}
	}

	return &Class{
		name:       name,
		values:     slices.Clone(values),
		def:        def,
		priorities: priorities,
	}, nil
}

// MustNewClass is like NewClass but panics on error. Intended for tests and
// package-level declarations.
func MustNewClass(name string, values []string, opts ...ClassOption) *Class {
	c, err := NewClass(name, values, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// Values returns a copy of the ordered class values.
func (c *Class) Values() []string { return slices.Clone(c.values) }

// DefaultValue returns the default value.
func (c *Class) DefaultValue() string { return c.def }

// Priority returns the priority of value. Values without an explicit
// priority have priority 0.
func (c *Class) Priority(value string) int { return c.priorities[value] }

// Has reports whether value belongs to the class.
func (c *Class) Has(value string) bool {
	return slices.Contains(c.values, value)
}

// Create returns the qualifier for value. An empty value selects the default.
func (c *Class) Create(value string, opts ...QualifierOption) (Qualifier, error) {
	if value == "" {
		value = c.def
	}

	if !c.Has(value) {
		return Qualifier{}, fmt.Errorf("%w: %s cannot take value %q, choose one of %v",
			ErrInvalidValue, c.name, value, c.values)
	}

	q := Qualifier{
		Name:      c.name,
		Value:     value,
		IsDefault: value == c.def,
		Priority:  c.priorities[value],
	}
	for _, opt := range opts {
		opt(&q)
	}
	return q, nil
}

// Default returns the qualifier holding the class default.
func (c *Class) Default() Qualifier {
	return Qualifier{
		Name:      c.name,
		Value:     c.def,
		IsDefault: true,
		Priority:  c.priorities[c.def],
	}
}
