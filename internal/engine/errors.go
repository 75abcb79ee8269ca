package engine

import (
	"errors"
	"fmt"
)

// ErrNoRules indicates qualifier detection on an engine without rules.
var ErrNoRules = errors.New("cannot match qualifiers without any context rule")

// RuntimeError represents an error detected while detecting qualifiers.
//
// Runtime errors include:
//   - No rules: detection was invoked before any rule was added
//   - Invalid max scope: a rule carries a negative max_scope
//   - Malformed span: an entity or trigger has End < Start
//
// Err holds the underlying sentinel so callers can use errors.Is.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// DocumentID identifies the affected document, if any.
	DocumentID string

	// RuleKey identifies the rule involved, if any.
	RuleKey string

	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeNoRules indicates the engine has no rules.
	ErrCodeNoRules RuntimeErrorCode = "NO_RULES"

	// ErrCodeInvalidMaxScope indicates a rule with max_scope below 1.
	ErrCodeInvalidMaxScope RuntimeErrorCode = "INVALID_MAX_SCOPE"

	// ErrCodeMalformedSpan indicates an entity or trigger span with End < Start.
	ErrCodeMalformedSpan RuntimeErrorCode = "MALFORMED_SPAN"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	switch {
	case e.DocumentID != "" && e.RuleKey != "":
		return fmt.Sprintf("%s: %s (doc=%s, rule=%s)", e.Code, e.Message, e.DocumentID, e.RuleKey)
	case e.DocumentID != "":
		return fmt.Sprintf("%s: %s (doc=%s)", e.Code, e.Message, e.DocumentID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying sentinel.
func (e *RuntimeError) Unwrap() error { return e.Err }

// IsNoRulesError returns true if the error reports an engine without rules.
// Uses errors.As to handle wrapped errors.
func IsNoRulesError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeNoRules
	}
	return false
}

func newNoRulesError(docID string) *RuntimeError {
	return &RuntimeError{
		Code:       ErrCodeNoRules,
		Message:    ErrNoRules.Error(),
		DocumentID: docID,
		Err:        ErrNoRules,
	}
}
