// Package rules defines context rules and loads them from rule documents.
//
// A rule document declares qualifier classes and rule entries:
//
//	{
//	  "qualifiers": [{"name": "Presence", "values": ["Absent", "Present"], "default": "Present"}],
//	  "rules": [{"qualifier": "Presence.Absent", "direction": "preceding", "patterns": ["geen"]}]
//	}
//
// Documents may be JSON, YAML or CUE. Every document is first unified with
// the CUE schema #RuleDocument; only structurally valid documents are then
// resolved into qualifier classes and ContextRules. Each rule entry expands
// into one ContextRule per pattern, in document order.
//
// All loader failures are *LoadError values carrying an E2xx code and
// wrapping a package sentinel, so callers can use errors.Is.
package rules
