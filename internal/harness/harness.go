package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/clinctx/internal/document"
	"github.com/roach88/clinctx/internal/engine"
	"github.com/roach88/clinctx/internal/match"
	"github.com/roach88/clinctx/internal/rules"
)

// entityLabel is the label of scenario entities.
const entityLabel = "entity"

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load the rule document (or the embedded rules)
//  2. Build the engine and the document, marking every term as an entity
//  3. Run qualifier detection
//  4. Evaluate assertions against the annotated entities
//
// A rule document that fails to load is part of the result, not an error,
// so load_error scenarios can assert on it. Errors are returned for
// failures outside the scenario's contract, such as a detection failure.
func Run(scenario *Scenario) (*Result, error) {
	result := NewResult()

	rs, err := loadRules(scenario.Rules)
	if err != nil {
		var le *rules.LoadError
		if !errors.As(err, &le) {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
		result.LoadError = le.Code
	}

	if result.LoadError == "" {
		if err := annotate(scenario, rs, result); err != nil {
			return nil, err
		}
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

func loadRules(path string) (*rules.RuleSet, error) {
	if path == "" {
		return rules.Default()
	}
	return rules.LoadFile(path)
}

func annotate(scenario *Scenario, rs *rules.RuleSet, result *Result) error {
	attr := match.AttrNorm
	if scenario.Attr != "" {
		parsed, err := match.ParseAttr(scenario.Attr)
		if err != nil {
			return fmt.Errorf("invalid attr: %w", err)
		}
		attr = parsed
	}

	algo, err := engine.NewFromRuleSet(rs,
		engine.WithPhraseAttr(attr),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
	)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	terms := match.NewPhraseMatcher(attr)
	for i, term := range scenario.Terms {
		if err := terms.Add(fmt.Sprintf("term_%d", i), term); err != nil {
			return fmt.Errorf("term %q: %w", term, err)
		}
	}

	doc := document.New(scenario.Text, document.WithIDGenerator(document.NewFixedGenerator(scenario.Name)))
	match.AddEntities(doc, terms, entityLabel)

	if err := algo.Annotate(doc); err != nil {
		return fmt.Errorf("failed to detect qualifiers: %w", err)
	}

	for i, ent := range doc.Entities {
		outcome := EntityOutcome{
			Index:      i,
			Text:       doc.EntityText(ent),
			Start:      ent.Start,
			End:        ent.End,
			Qualifiers: ent.QualifierStrings(),
			defaults:   make(map[string]bool),
		}
		if ent.Qualifiers != nil {
			for _, q := range ent.Qualifiers.All() {
				outcome.defaults[q.Name] = q.IsDefault
			}
		}
		result.Entities = append(result.Entities, outcome)
	}
	return nil
}
