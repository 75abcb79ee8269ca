// Package qualifier defines qualifier classes and qualifier values.
//
// A qualifier class is a named, closed set of mutually exclusive values with
// one default, e.g. Negation {Affirmed, Negated}. A qualifier is one value of
// such a class, attached to an entity. This package contains data types only
// and performs no I/O; every other internal package may import it.
//
// Key invariants:
//   - Class values are unique and the default is one of them
//   - Priorities, when given, name every value of the class and nothing else
//   - Qualifier identity is (name, value, is_default); confidence is metadata
//   - A Set holds at most one qualifier per class name
package qualifier
