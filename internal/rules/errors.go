package rules

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

var (
	// ErrUnknownDirection indicates a direction name outside the closed set.
	ErrUnknownDirection = errors.New("unknown rule direction")

	// ErrQualifierFormat indicates a qualifier reference not of the form Class.Value.
	ErrQualifierFormat = errors.New("qualifier reference must be of the form Class.Value")

	// ErrUnknownQualifierClass indicates a reference to an undeclared qualifier class.
	ErrUnknownQualifierClass = errors.New("unknown qualifier class")

	// ErrDuplicateClass indicates a qualifier class declared twice.
	ErrDuplicateClass = errors.New("duplicate qualifier class")

	// ErrInvalidMaxScope indicates a max_scope below 1.
	ErrInvalidMaxScope = errors.New("max_scope must be at least 1")

	// ErrInvalidPattern indicates a pattern that is neither a phrase nor a
	// valid token pattern.
	ErrInvalidPattern = errors.New("invalid rule pattern")

	// ErrSchema indicates a rule document that does not match the schema.
	ErrSchema = errors.New("rule document does not match schema")

	// ErrUnsupportedFormat indicates an unknown rule document format.
	ErrUnsupportedFormat = errors.New("unsupported rule document format")
)

// Load error codes (E200-E299)
const (
	CodeRead              = "E200" // rule document cannot be read or compiled
	CodeSchema            = "E201" // structural schema violation
	CodeDirection         = "E202" // unknown direction
	CodeQualifierFormat   = "E203" // malformed qualifier reference
	CodeUnknownClass      = "E204" // undeclared qualifier class
	CodeInvalidValue      = "E205" // value not in qualifier class
	CodeMaxScope          = "E206" // max_scope below 1
	CodeClassDefinition   = "E207" // invalid qualifier class declaration
	CodePattern           = "E208" // invalid pattern
	CodeUnsupportedFormat = "E209" // unknown document format
)

// LoadError describes a rule document that could not be loaded.
type LoadError struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *LoadError) Error() string {
	var loc string
	if e.Pos.IsValid() {
		loc = fmt.Sprintf("%s:%d:%d: ", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
	}
	if e.Field != "" {
		return fmt.Sprintf("%s[%s] %s: %s", loc, e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s[%s] %s", loc, e.Code, e.Message)
}

// Unwrap returns the underlying sentinel or cause.
func (e *LoadError) Unwrap() error { return e.Err }

func loadErr(code, field string, err error) *LoadError {
	return &LoadError{Code: code, Field: field, Message: err.Error(), Err: err}
}
