package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/clinctx/internal/match"
	"github.com/roach88/clinctx/internal/rules"
)

// Scenario defines a conformance test scenario: a rule set, a text with
// entity terms and assertions over the resulting qualifiers.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Rules is the path of the rule document. Relative paths are resolved
	// against the scenario file. Empty means the embedded rules.
	Rules string `yaml:"rules,omitempty"`

	// Attr is the token attribute phrases and terms compare on.
	// Defaults to NORM.
	Attr string `yaml:"attr,omitempty"`

	// Text is the document text.
	Text string `yaml:"text"`

	// Terms are the phrases marked as entities.
	Terms []string `yaml:"terms"`

	// Assertions validate the annotated entities.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the outcome of a scenario.
type Assertion struct {
	// Type specifies the assertion type:
	// - "qualifier": entity holds Qualifier
	// - "not_qualifier": entity does not hold Qualifier
	// - "default": entity holds the default value of Class
	// - "entity_count": exactly Count entities were found
	// - "load_error": loading the rules fails with Code
	Type string `yaml:"type"`

	// Entity is the index of the entity in document order.
	Entity int `yaml:"entity,omitempty"`

	// Qualifier is a "Class.Value" reference (qualifier, not_qualifier).
	Qualifier string `yaml:"qualifier,omitempty"`

	// Class is a qualifier class name (default).
	Class string `yaml:"class,omitempty"`

	// Count is the expected number of entities (entity_count).
	Count int `yaml:"count,omitempty"`

	// Code is the expected load error code (load_error).
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertQualifier    = "qualifier"
	AssertNotQualifier = "not_qualifier"
	AssertDefault      = "default"
	AssertEntityCount  = "entity_count"
	AssertLoadError    = "load_error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Rules != "" && !filepath.IsAbs(scenario.Rules) {
		scenario.Rules = filepath.Join(filepath.Dir(path), scenario.Rules)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Attr != "" {
		if _, err := match.ParseAttr(s.Attr); err != nil {
			return fmt.Errorf("attr: %w", err)
		}
	}

	if s.Rules != "" {
		if _, err := os.Stat(s.Rules); os.IsNotExist(err) {
			return fmt.Errorf("rules file not found: %s", s.Rules)
		}
	}

	expectsLoadError := false
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
		if assertion.Type == AssertLoadError {
			expectsLoadError = true
		}
	}

	if expectsLoadError {
		if len(s.Assertions) > 1 {
			return fmt.Errorf("load_error must be the only assertion")
		}
		return nil
	}

	if s.Text == "" {
		return fmt.Errorf("text is required")
	}

	if len(s.Terms) == 0 {
		return fmt.Errorf("terms list is required and must be non-empty")
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertQualifier, AssertNotQualifier:
		if a.Qualifier == "" {
			return fmt.Errorf("assertions[%d]: qualifier is required for %s", index, a.Type)
		}
		// Classes come from the rules, so only the reference format is checked here.
		if _, err := rules.ParseQualifier(a.Qualifier, nil); errors.Is(err, rules.ErrQualifierFormat) {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Entity < 0 {
			return fmt.Errorf("assertions[%d]: entity must be non-negative", index)
		}
	case AssertDefault:
		if a.Class == "" {
			return fmt.Errorf("assertions[%d]: class is required for default", index)
		}
		if a.Entity < 0 {
			return fmt.Errorf("assertions[%d]: entity must be non-negative", index)
		}
	case AssertEntityCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for entity_count", index)
		}
	case AssertLoadError:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for load_error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
