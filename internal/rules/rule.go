package rules

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/clinctx/internal/match"
	"github.com/roach88/clinctx/internal/qualifier"
)

// Pattern is either a literal phrase or a token-attribute pattern.
// Exactly one of Phrase and Tokens is set.
type Pattern struct {
	Phrase string
	Tokens []match.TokenSpec
}

// PhrasePattern returns a phrase pattern.
func PhrasePattern(phrase string) Pattern {
	return Pattern{Phrase: phrase}
}

// TokenPattern returns a token-attribute pattern.
func TokenPattern(specs ...match.TokenSpec) Pattern {
	return Pattern{Tokens: specs}
}

// IsPhrase reports whether p is a phrase pattern.
func (p Pattern) IsPhrase() bool { return p.Tokens == nil }

// Validate checks that exactly one form is set and non-empty.
func (p Pattern) Validate() error {
	switch {
	case p.Phrase != "" && p.Tokens != nil:
		return fmt.Errorf("%w: both phrase and tokens set", ErrInvalidPattern)
	case p.Tokens != nil && len(p.Tokens) == 0:
		return fmt.Errorf("%w: empty token pattern", ErrInvalidPattern)
	case p.Tokens == nil && strings.TrimSpace(p.Phrase) == "":
		return fmt.Errorf("%w: empty phrase", ErrInvalidPattern)
	}
	return nil
}

func (p Pattern) String() string {
	if p.IsPhrase() {
		return p.Phrase
	}
	b, err := json.Marshal(p.Tokens)
	if err != nil {
		return fmt.Sprintf("%v", p.Tokens)
	}
	return string(b)
}

// ContextRule pairs a trigger pattern with the qualifier it assigns and the
// direction of its scope.
type ContextRule struct {
	Pattern   Pattern
	Qualifier qualifier.Qualifier
	Direction Direction

	// MaxScope caps the scope to this many tokens beyond the trigger.
	// Zero means the scope is bounded by the sentence only.
	MaxScope int
}

func (r ContextRule) String() string {
	s := fmt.Sprintf("%s %s %q", r.Qualifier, r.Direction, r.Pattern)
	if r.MaxScope > 0 {
		s += fmt.Sprintf(" max_scope=%d", r.MaxScope)
	}
	return s
}

var qualifierRef = regexp.MustCompile(`^\w+\.\w+$`)

// ParseQualifier resolves a "Class.Value" reference against classes.
func ParseQualifier(ref string, classes []*qualifier.Class) (qualifier.Qualifier, error) {
	if !qualifierRef.MatchString(ref) {
		return qualifier.Qualifier{}, fmt.Errorf("%w: %q", ErrQualifierFormat, ref)
	}

	name, value, _ := strings.Cut(ref, ".")
	for _, c := range classes {
		if c.Name() == name {
			return c.Create(value)
		}
	}
	return qualifier.Qualifier{}, fmt.Errorf("%w: %q", ErrUnknownQualifierClass, name)
}

// RuleSet is a loaded rule document: qualifier classes in declaration order
// and the expanded rules in document order.
type RuleSet struct {
	Classes []*qualifier.Class
	Rules   []ContextRule
}

// Class returns the class named name.
func (rs *RuleSet) Class(name string) (*qualifier.Class, bool) {
	for _, c := range rs.Classes {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// Counts returns the number of rules per qualifier class name.
func (rs *RuleSet) Counts() map[string]int {
	counts := make(map[string]int, len(rs.Classes))
	for _, r := range rs.Rules {
		counts[r.Qualifier.Name]++
	}
	return counts
}
