package rules

import (
	"fmt"
	"sort"
	"strings"
)

// LintKind classifies a rule set warning.
type LintKind string

const (
	LintDuplicate      LintKind = "duplicate"       // same phrase twice for one qualifier and direction
	LintUntrimmed      LintKind = "untrimmed"       // phrase with surrounding whitespace
	LintOverlap        LintKind = "overlap"         // phrase used in two directions of one qualifier
	LintSpuriousPseudo LintKind = "spurious_pseudo" // pseudo phrase containing no trigger phrase
)

// LintIssue is a suspicious but loadable rule.
type LintIssue struct {
	Kind      LintKind `json:"kind"`
	Qualifier string   `json:"qualifier"`
	Direction string   `json:"direction,omitempty"`
	Pattern   string   `json:"pattern"`
}

func (i LintIssue) String() string {
	if i.Direction != "" {
		return fmt.Sprintf("%s: %s %s %q", i.Kind, i.Qualifier, i.Direction, i.Pattern)
	}
	return fmt.Sprintf("%s: %s %q", i.Kind, i.Qualifier, i.Pattern)
}

// Lint reports common mistakes in the phrase patterns of rs. Token
// patterns are not inspected.
func Lint(rs *RuleSet) []LintIssue {
	type key struct {
		qualifier string
		direction Direction
	}

	var issues []LintIssue
	phrases := make(map[key][]string)
	var order []string
	seenQualifier := make(map[string]bool)

	for _, r := range rs.Rules {
		if !r.Pattern.IsPhrase() {
			continue
		}
		q := r.Qualifier.String()
		if !seenQualifier[q] {
			seenQualifier[q] = true
			order = append(order, q)
		}

		k := key{q, r.Direction}
		if strings.TrimSpace(r.Pattern.Phrase) != r.Pattern.Phrase {
			issues = append(issues, LintIssue{LintUntrimmed, q, r.Direction.String(), r.Pattern.Phrase})
		}
		for _, p := range phrases[k] {
			if p == r.Pattern.Phrase {
				issues = append(issues, LintIssue{LintDuplicate, q, r.Direction.String(), p})
				break
			}
		}
		phrases[k] = append(phrases[k], r.Pattern.Phrase)
	}

	for _, q := range order {
		triggers := make(map[string]Direction)
		for _, d := range []Direction{Preceding, Following, Bidirectional} {
			for _, p := range phrases[key{q, d}] {
				if prev, ok := triggers[p]; ok && prev != d {
					issues = append(issues, LintIssue{Kind: LintOverlap, Qualifier: q, Pattern: p})
					continue
				}
				triggers[p] = d
			}
		}

		for _, d := range []Direction{Pseudo, Termination} {
			for _, p := range phrases[key{q, d}] {
				if _, ok := triggers[p]; ok {
					issues = append(issues, LintIssue{Kind: LintOverlap, Qualifier: q, Pattern: p})
				}
			}
		}

		for _, p := range phrases[key{q, Pseudo}] {
			if !containsAny(p, triggers) {
				issues = append(issues, LintIssue{LintSpuriousPseudo, q, Pseudo.String(), p})
			}
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Kind < issues[j].Kind
	})
	return issues
}

func containsAny(s string, triggers map[string]Direction) bool {
	for t := range triggers {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
