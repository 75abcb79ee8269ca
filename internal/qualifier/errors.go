package qualifier

import "errors"

// Sentinel errors for qualifier construction.
var (
	// ErrEmptyValues indicates a class was declared without values.
	ErrEmptyValues = errors.New("qualifier class has no values")

	// ErrDuplicateValues indicates a class lists the same value twice.
	ErrDuplicateValues = errors.New("qualifier class has duplicate values")

	// ErrDefaultNotInValues indicates the default is not one of the class values.
	ErrDefaultNotInValues = errors.New("default value not in qualifier class values")

	// ErrUnknownPriorityValue indicates a priority was given for a value the class does not have.
	ErrUnknownPriorityValue = errors.New("priority given for unknown value")

	// ErrMissingPriority indicates priorities were given for some values of a class but not all.
	ErrMissingPriority = errors.New("no priority given for value")

	// ErrInvalidValue indicates a qualifier was requested with a value outside its class.
	ErrInvalidValue = errors.New("invalid qualifier value")
)
