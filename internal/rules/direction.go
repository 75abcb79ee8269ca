package rules

import (
	"fmt"
	"strings"
)

// Direction tells how a trigger's scope extends from the trigger.
type Direction int

const (
	// Preceding triggers precede the entity; scope runs rightward.
	Preceding Direction = iota
	// Following triggers follow the entity; scope runs leftward.
	Following
	// Bidirectional triggers scope both ways.
	Bidirectional
	// Pseudo triggers cancel overlapping triggers of the same qualifier.
	Pseudo
	// Termination triggers cut the scope of triggers of the same qualifier.
	Termination
)

var directionNames = [...]string{
	Preceding:     "PRECEDING",
	Following:     "FOLLOWING",
	Bidirectional: "BIDIRECTIONAL",
	Pseudo:        "PSEUDO",
	Termination:   "TERMINATION",
}

// Directions lists every direction in declaration order.
func Directions() []Direction {
	return []Direction{Preceding, Following, Bidirectional, Pseudo, Termination}
}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// HasScope reports whether triggers in this direction carry a scope.
func (d Direction) HasScope() bool {
	return d == Preceding || d == Following || d == Bidirectional
}

// ParseDirection parses a direction name case-insensitively.
func ParseDirection(s string) (Direction, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range directionNames {
		if name == upper {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(d.String())), nil
}
