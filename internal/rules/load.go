package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"gopkg.in/yaml.v3"

	"github.com/roach88/clinctx/internal/match"
	"github.com/roach88/clinctx/internal/qualifier"
)

//go:embed context_rules.json
var defaultRules []byte

// Format is the encoding of a rule document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

type qualifierEntry struct {
	Name       string         `json:"name"`
	Values     []string       `json:"values"`
	Default    string         `json:"default,omitempty"`
	Priorities map[string]int `json:"priorities,omitempty"`
}

type ruleEntry struct {
	Qualifier string `json:"qualifier"`
	Direction string `json:"direction"`
	Patterns  []any  `json:"patterns"`
	MaxScope  *int   `json:"max_scope,omitempty"`
}

type ruleDocument struct {
	Qualifiers []qualifierEntry `json:"qualifiers"`
	Rules      []ruleEntry      `json:"rules"`
}

// Default returns the embedded Dutch clinical rule set.
func Default() (*RuleSet, error) {
	return parseNamed("context_rules.json", defaultRules, FormatJSON)
}

// LoadFile reads a rule document, inferring its format from the extension.
func LoadFile(path string) (*RuleSet, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, loadErr(CodeUnsupportedFormat, "", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, loadErr(CodeRead, "", err)
	}
	return parseNamed(path, data, format)
}

// Parse loads a rule document from data.
func Parse(data []byte, format Format) (*RuleSet, error) {
	return parseNamed("rules."+string(format), data, format)
}

func parseNamed(name string, data []byte, format Format) (*RuleSet, error) {
	s := loadSchema()
	s.mu.Lock()
	defer s.mu.Unlock()

	var v cue.Value
	switch format {
	case FormatJSON, FormatCUE:
		v = s.ctx.CompileBytes(data, cue.Filename(name))
	case FormatYAML:
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, loadErr(CodeRead, "", err)
		}
		v = s.ctx.Encode(raw)
	default:
		return nil, loadErr(CodeUnsupportedFormat, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format))
	}

	var doc ruleDocument
	if err := s.validate(v, &doc); err != nil {
		return nil, err
	}
	return build(&doc)
}

func build(doc *ruleDocument) (*RuleSet, error) {
	rs := &RuleSet{}

	seen := make(map[string]bool)
	for i, qe := range doc.Qualifiers {
		field := fmt.Sprintf("qualifiers[%d]", i)
		if seen[qe.Name] {
			return nil, loadErr(CodeClassDefinition, field, fmt.Errorf("%w: %s", ErrDuplicateClass, qe.Name))
		}
		seen[qe.Name] = true

		var opts []qualifier.ClassOption
		if qe.Default != "" {
			opts = append(opts, qualifier.WithDefault(qe.Default))
		}
		if qe.Priorities != nil {
			opts = append(opts, qualifier.WithPriorities(qe.Priorities))
		}
		class, err := qualifier.NewClass(qe.Name, qe.Values, opts...)
		if err != nil {
			return nil, loadErr(CodeClassDefinition, field, err)
		}
		rs.Classes = append(rs.Classes, class)
	}

	for i, re := range doc.Rules {
		expanded, err := buildRule(i, re, rs.Classes)
		if err != nil {
			return nil, err
		}
		rs.Rules = append(rs.Rules, expanded...)
	}
	return rs, nil
}

// buildRule expands one rule entry into one ContextRule per pattern.
func buildRule(i int, re ruleEntry, classes []*qualifier.Class) ([]ContextRule, error) {
	field := fmt.Sprintf("rules[%d]", i)

	q, err := ParseQualifier(re.Qualifier, classes)
	if err != nil {
		return nil, loadErr(qualifierCode(err), field+".qualifier", err)
	}

	dir, err := ParseDirection(re.Direction)
	if err != nil {
		return nil, loadErr(CodeDirection, field+".direction", err)
	}

	var maxScope int
	if re.MaxScope != nil {
		if *re.MaxScope < 1 {
			return nil, loadErr(CodeMaxScope, field+".max_scope", fmt.Errorf("%w, got %d", ErrInvalidMaxScope, *re.MaxScope))
		}
		maxScope = *re.MaxScope
	}

	out := make([]ContextRule, 0, len(re.Patterns))
	for j, raw := range re.Patterns {
		p, err := toPattern(raw)
		if err != nil {
			return nil, loadErr(CodePattern, fmt.Sprintf("%s.patterns[%d]", field, j), err)
		}
		out = append(out, ContextRule{
			Pattern:   p,
			Qualifier: q,
			Direction: dir,
			MaxScope:  maxScope,
		})
	}
	return out, nil
}

func qualifierCode(err error) string {
	switch {
	case errors.Is(err, ErrQualifierFormat):
		return CodeQualifierFormat
	case errors.Is(err, ErrUnknownQualifierClass):
		return CodeUnknownClass
	default:
		return CodeInvalidValue
	}
}

func toPattern(raw any) (Pattern, error) {
	switch v := raw.(type) {
	case string:
		p := PhrasePattern(v)
		return p, p.Validate()
	case []any:
		specs := make([]match.TokenSpec, len(v))
		for k, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return Pattern{}, fmt.Errorf("%w: token %d is %T, not an object", ErrInvalidPattern, k, item)
			}
			specs[k] = match.TokenSpec(m)
		}
		p := TokenPattern(specs...)
		if err := p.Validate(); err != nil {
			return Pattern{}, err
		}
		// Compile once so malformed specs surface at load time.
		if err := match.NewTokenMatcher().Add("check", specs); err != nil {
			return Pattern{}, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
		}
		return p, nil
	default:
		return Pattern{}, fmt.Errorf("%w: unsupported pattern type %T", ErrInvalidPattern, raw)
	}
}
