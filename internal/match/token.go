package match

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/clinctx/internal/document"
)

// TokenSpec is one attribute-match object of a token pattern, e.g.
//
//	{"LOWER": "geleden"}
//	{"NORM": {"IN": ["jaar", "jaren"]}, "OP": "?"}
//
// Supported keys: TEXT, ORTH, LOWER, NORM (string, or object with IN,
// NOT_IN or REGEX), IS_PUNCT, IS_DIGIT, IS_ALPHA (bool) and OP (one of
// "!", "?", "+", "*").
type TokenSpec map[string]any

type quantifier int

const (
	opOne quantifier = iota
	opNot
	opOptional
	opPlus
	opStar
)

var ops = map[string]quantifier{
	"!": opNot,
	"?": opOptional,
	"+": opPlus,
	"*": opStar,
}

type attrTest struct {
	attr   Attr
	in     map[string]bool
	notIn  map[string]bool
	re     *regexp.Regexp
	equals *string
}

func (a attrTest) matches(tok document.Token) bool {
	v := a.attr.Value(tok)
	switch {
	case a.equals != nil:
		return v == *a.equals
	case a.in != nil:
		return a.in[v]
	case a.notIn != nil:
		return !a.notIn[v]
	case a.re != nil:
		return a.re.MatchString(v)
	}
	return false
}

type flagTest struct {
	check func(document.Token) bool
	want  bool
}

type tokenTest struct {
	attrs []attrTest
	flags []flagTest
	op    quantifier
}

func (t tokenTest) matches(tok document.Token) bool {
	for _, a := range t.attrs {
		if !a.matches(tok) {
			return false
		}
	}
	for _, f := range t.flags {
		if f.check(tok) != f.want {
			return false
		}
	}
	return true
}

var flagChecks = map[string]func(document.Token) bool{
	"IS_PUNCT": document.Token.IsPunct,
	"IS_DIGIT": document.Token.IsDigit,
	"IS_ALPHA": document.Token.IsAlpha,
}

func compileSpec(spec TokenSpec) (tokenTest, error) {
	var test tokenTest

	// Sorted keys keep error messages deterministic.
	keys := make([]string, 0, len(spec))
	for k := range spec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := spec[key]
		upper := strings.ToUpper(key)

		if upper == "OP" {
			s, ok := raw.(string)
			op, known := ops[s]
			if !ok || !known {
				return test, fmt.Errorf("%w: unsupported OP %v", ErrInvalidTokenPattern, raw)
			}
			test.op = op
			continue
		}

		if check, ok := flagChecks[upper]; ok {
			b, isBool := raw.(bool)
			if !isBool {
				return test, fmt.Errorf("%w: %s expects a boolean, got %T", ErrInvalidTokenPattern, key, raw)
			}
			test.flags = append(test.flags, flagTest{check: check, want: b})
			continue
		}

		attr, err := ParseAttr(upper)
		if err != nil {
			return test, fmt.Errorf("%w: %v", ErrInvalidTokenPattern, err)
		}
		at, err := compileAttrTest(attr, raw)
		if err != nil {
			return test, err
		}
		test.attrs = append(test.attrs, at)
	}

	if len(test.attrs) == 0 && len(test.flags) == 0 && test.op == opOne {
		return test, fmt.Errorf("%w: empty token spec", ErrInvalidTokenPattern)
	}
	return test, nil
}

func compileAttrTest(attr Attr, raw any) (attrTest, error) {
	at := attrTest{attr: attr}

	switch v := raw.(type) {
	case string:
		s := v
		at.equals = &s
		return at, nil
	case map[string]any:
		if len(v) != 1 {
			return at, fmt.Errorf("%w: %s expects exactly one of IN, NOT_IN, REGEX", ErrInvalidTokenPattern, attr)
		}
		for op, arg := range v {
			switch strings.ToUpper(op) {
			case "IN":
				set, err := stringSet(arg)
				if err != nil {
					return at, err
				}
				at.in = set
			case "NOT_IN":
				set, err := stringSet(arg)
				if err != nil {
					return at, err
				}
				at.notIn = set
			case "REGEX":
				expr, ok := arg.(string)
				if !ok {
					return at, fmt.Errorf("%w: REGEX expects a string", ErrInvalidTokenPattern)
				}
				re, err := regexp.Compile(expr)
				if err != nil {
					return at, fmt.Errorf("%w: %v", ErrInvalidTokenPattern, err)
				}
				at.re = re
			default:
				return at, fmt.Errorf("%w: unsupported operator %s", ErrInvalidTokenPattern, op)
			}
		}
		return at, nil
	default:
		return at, fmt.Errorf("%w: %s has unsupported value type %T", ErrInvalidTokenPattern, attr, raw)
	}
}

func stringSet(arg any) (map[string]bool, error) {
	set := make(map[string]bool)
	switch list := arg.(type) {
	case []string:
		for _, s := range list {
			set[s] = true
		}
	case []any:
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: list item %v is not a string", ErrInvalidTokenPattern, item)
			}
			set[s] = true
		}
	default:
		return nil, fmt.Errorf("%w: expected a list of strings, got %T", ErrInvalidTokenPattern, arg)
	}
	return set, nil
}

type tokenPattern struct {
	key   string
	tests []tokenTest
	order int
}

// ends collects every end position reachable from pos when matching tests[idx:].
func (p tokenPattern) ends(tokens []document.Token, pos, limit, idx int, out map[int]bool) {
	if idx == len(p.tests) {
		out[pos] = true
		return
	}

	t := p.tests[idx]
	switch t.op {
	case opOne:
		if pos < limit && t.matches(tokens[pos]) {
			p.ends(tokens, pos+1, limit, idx+1, out)
		}
	case opNot:
		if pos < limit && !t.matches(tokens[pos]) {
			p.ends(tokens, pos+1, limit, idx+1, out)
		}
	case opOptional:
		p.ends(tokens, pos, limit, idx+1, out)
		if pos < limit && t.matches(tokens[pos]) {
			p.ends(tokens, pos+1, limit, idx+1, out)
		}
	case opPlus, opStar:
		if t.op == opStar {
			p.ends(tokens, pos, limit, idx+1, out)
		}
		for k := pos; k < limit && t.matches(tokens[k]); k++ {
			p.ends(tokens, k+1, limit, idx+1, out)
		}
	}
}

// TokenMatcher matches sequences of token-attribute specs.
//
// Match reports offsets relative to the start of the searched range.
type TokenMatcher struct {
	patterns []tokenPattern
	keys     map[string]bool
}

// NewTokenMatcher creates an empty token matcher.
func NewTokenMatcher() *TokenMatcher {
	return &TokenMatcher{keys: make(map[string]bool)}
}

// Add compiles specs and registers them under key.
func (m *TokenMatcher) Add(key string, specs []TokenSpec) error {
	if m.keys[key] {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}
	if len(specs) == 0 {
		return fmt.Errorf("%w: token pattern %s has no specs", ErrEmptyPattern, key)
	}

	tests := make([]tokenTest, len(specs))
	for i, spec := range specs {
		t, err := compileSpec(spec)
		if err != nil {
			return fmt.Errorf("pattern %s, token %d: %w", key, i, err)
		}
		tests[i] = t
	}

	m.patterns = append(m.patterns, tokenPattern{key: key, tests: tests, order: len(m.patterns)})
	m.keys[key] = true
	return nil
}

// Len returns the number of registered patterns.
func (m *TokenMatcher) Len() int { return len(m.patterns) }

// Offsets reports OffsetRelative.
func (m *TokenMatcher) Offsets() OffsetBase { return OffsetRelative }

// Match returns every non-empty occurrence inside tokens [start, end), with
// offsets relative to start.
func (m *TokenMatcher) Match(doc *document.Document, start, end int) []Match {
	if len(m.patterns) == 0 {
		return nil
	}
	start, end = clampRange(doc, start, end)

	var found []orderedMatch
	for _, p := range m.patterns {
		for i := start; i < end; i++ {
			ends := make(map[int]bool)
			p.ends(doc.Tokens, i, end, 0, ends)
			for e := range ends {
				if e == i {
					continue
				}
				found = append(found, orderedMatch{
					Match: Match{Key: p.key, Start: i - start, End: e - start},
					order: p.order,
				})
			}
		}
	}
	return sortMatches(found)
}
