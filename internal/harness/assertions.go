package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string          // Assertion type for categorization
	Expected string          // Human-readable expected outcome
	Actual   string          // Human-readable actual outcome
	Entities []EntityOutcome // All entities for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Entities) > 0 {
		fmt.Fprintf(&buf, "\nEntities:\n")
		for _, ent := range e.Entities {
			fmt.Fprintf(&buf, "  [%d] %s [%d,%d) %s\n", ent.Index, ent.Text, ent.Start, ent.End, strings.Join(ent.Qualifiers, " "))
		}
	}

	return buf.String()
}

// entityAt returns entity i or an AssertionError when it does not exist.
func entityAt(result *Result, assertionType string, i int) (EntityOutcome, error) {
	if i >= len(result.Entities) {
		return EntityOutcome{}, &AssertionError{
			Type:     assertionType,
			Expected: fmt.Sprintf("entity %d", i),
			Actual:   fmt.Sprintf("%d entities", len(result.Entities)),
			Entities: result.Entities,
		}
	}
	return result.Entities[i], nil
}

// assertQualifier checks that the entity holds the qualifier, or with
// negate that it does not.
func assertQualifier(result *Result, assertion Assertion, negate bool) error {
	ent, err := entityAt(result, assertion.Type, assertion.Entity)
	if err != nil {
		return err
	}

	if slices.Contains(ent.Qualifiers, assertion.Qualifier) != negate {
		return nil
	}

	expected := fmt.Sprintf("entity %d (%s) has %s", ent.Index, ent.Text, assertion.Qualifier)
	if negate {
		expected = fmt.Sprintf("entity %d (%s) does not have %s", ent.Index, ent.Text, assertion.Qualifier)
	}
	return &AssertionError{
		Type:     assertion.Type,
		Expected: expected,
		Actual:   strings.Join(ent.Qualifiers, " "),
		Entities: result.Entities,
	}
}

// assertDefault checks that the entity holds the default value of a class.
func assertDefault(result *Result, assertion Assertion) error {
	ent, err := entityAt(result, assertion.Type, assertion.Entity)
	if err != nil {
		return err
	}

	if isDefault, ok := ent.defaults[assertion.Class]; ok && isDefault {
		return nil
	}

	return &AssertionError{
		Type:     assertion.Type,
		Expected: fmt.Sprintf("entity %d (%s) has the default %s value", ent.Index, ent.Text, assertion.Class),
		Actual:   strings.Join(ent.Qualifiers, " "),
		Entities: result.Entities,
	}
}

// assertEntityCount checks the number of entities.
func assertEntityCount(result *Result, assertion Assertion) error {
	if len(result.Entities) == assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     assertion.Type,
		Expected: fmt.Sprintf("%d entities", assertion.Count),
		Actual:   fmt.Sprintf("%d entities", len(result.Entities)),
		Entities: result.Entities,
	}
}

// assertLoadError checks the code of the rule loading error.
func assertLoadError(result *Result, assertion Assertion) error {
	if result.LoadError == assertion.Code {
		return nil
	}
	actual := "rules loaded"
	if result.LoadError != "" {
		actual = result.LoadError
	}
	return &AssertionError{
		Type:     assertion.Type,
		Expected: assertion.Code,
		Actual:   actual,
	}
}

// EvaluateAssertions runs all assertions and returns the failure messages.
//
// When the rules failed to load, every assertion other than load_error
// fails, since no entity was annotated.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string

	for i, assertion := range assertions {
		var err error

		if result.LoadError != "" && assertion.Type != AssertLoadError {
			err = &AssertionError{
				Type:     assertion.Type,
				Expected: "rules loaded",
				Actual:   result.LoadError,
			}
		} else {
			switch assertion.Type {
			case AssertQualifier:
				err = assertQualifier(result, assertion, false)
			case AssertNotQualifier:
				err = assertQualifier(result, assertion, true)
			case AssertDefault:
				err = assertDefault(result, assertion)
			case AssertEntityCount:
				err = assertEntityCount(result, assertion)
			case AssertLoadError:
				err = assertLoadError(result, assertion)
			default:
				err = fmt.Errorf("unknown assertion type: %s", assertion.Type)
			}
		}

		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %s", i, err.Error()))
		}
	}

	return errs
}
