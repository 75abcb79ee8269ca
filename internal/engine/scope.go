package engine

import (
	"fmt"
	"sort"

	"github.com/roach88/clinctx/internal/document"
	"github.com/roach88/clinctx/internal/interval"
	"github.com/roach88/clinctx/internal/rules"
)

// matchedPattern is one trigger occurrence in a sentence. start and end are
// document-absolute token offsets of the trigger itself; scopeStart and
// scopeEnd bound the tokens it can qualify.
type matchedPattern struct {
	key   string
	order int
	rule  rules.ContextRule

	start int
	end   int

	scopeStart int
	scopeEnd   int
}

// initializeScope sets the initial scope from the direction and max_scope
// of the rule, bounded by sentence. Pseudo and termination triggers get no
// scope.
func (mp *matchedPattern) initializeScope(sentence document.Sentence) error {
	if !mp.rule.Direction.HasScope() {
		return nil
	}

	maxScope := mp.rule.MaxScope
	if maxScope == 0 {
		maxScope = sentence.Len()
	}
	if maxScope < 1 {
		return &RuntimeError{
			Code:    ErrCodeInvalidMaxScope,
			Message: fmt.Sprintf("max_scope must be at least 1, got %d", mp.rule.MaxScope),
			RuleKey: mp.key,
			Err:     rules.ErrInvalidMaxScope,
		}
	}

	scopedStart := max(mp.start-maxScope, sentence.Start)
	scopedEnd := min(mp.end+maxScope, sentence.End)

	switch mp.rule.Direction {
	case rules.Preceding:
		mp.scopeStart, mp.scopeEnd = mp.start, scopedEnd
	case rules.Following:
		mp.scopeStart, mp.scopeEnd = scopedStart, mp.end
	case rules.Bidirectional:
		mp.scopeStart, mp.scopeEnd = scopedStart, scopedEnd
	}
	return nil
}

func sortByTrigger(mps []*matchedPattern) {
	sort.SliceStable(mps, func(i, j int) bool {
		a, b := mps[i], mps[j]
		if a.start != b.start {
			return a.start < b.start
		}
		if a.end != b.end {
			return a.end < b.end
		}
		return a.order < b.order
	})
}

// qualifierGroup holds the matches of one qualifier value, per direction.
type qualifierGroup struct {
	qualifier string
	byDir     map[rules.Direction][]*matchedPattern
}

// groupByQualifier groups matches by qualifier (name and value), in order
// of first appearance.
func groupByQualifier(mps []*matchedPattern) []*qualifierGroup {
	var groups []*qualifierGroup
	index := make(map[string]*qualifierGroup)

	for _, mp := range mps {
		q := mp.rule.Qualifier.String()
		g, ok := index[q]
		if !ok {
			g = &qualifierGroup{qualifier: q, byDir: make(map[rules.Direction][]*matchedPattern)}
			index[q] = g
			groups = append(groups, g)
		}
		g.byDir[mp.rule.Direction] = append(g.byDir[mp.rule.Direction], mp)
	}
	return groups
}

// computeScopes resolves the final scopes of a sentence's matches.
//
// Per qualifier group:
//  1. triggers are indexed by their own span
//  2. every trigger whose span overlaps a pseudo trigger is dropped
//  3. survivors are re-indexed by scope
//  4. each termination cuts the scopes it overlaps at the termination,
//     keeping the side that holds the trigger
//
// The returned index holds the surviving scopes of all groups.
func computeScopes(mps []*matchedPattern) (*interval.Index[*matchedPattern], error) {
	out := interval.New[*matchedPattern]()

	for _, g := range groupByQualifier(mps) {
		triggers := interval.New[*matchedPattern]()
		for _, d := range []rules.Direction{rules.Preceding, rules.Following, rules.Bidirectional} {
			for _, mp := range g.byDir[d] {
				if err := triggers.Insert(mp.start, mp.end, mp); err != nil {
					return nil, malformedSpan(mp, err)
				}
			}
		}

		for _, pseudo := range g.byDir[rules.Pseudo] {
			triggers.RemoveOverlap(pseudo.start, pseudo.end)
		}

		scopes := interval.New[*matchedPattern]()
		for _, iv := range triggers.All() {
			mp := iv.Data
			if err := scopes.Insert(mp.scopeStart, mp.scopeEnd, mp); err != nil {
				return nil, malformedSpan(mp, err)
			}
		}

		for _, term := range g.byDir[rules.Termination] {
			if err := terminate(scopes, term); err != nil {
				return nil, err
			}
		}

		for _, iv := range scopes.All() {
			if err := out.Insert(iv.Start, iv.End, iv.Data); err != nil {
				return nil, malformedSpan(iv.Data, err)
			}
		}
	}
	return out, nil
}

// terminate narrows every scope overlapping term. A scope extending
// rightward from its trigger ends at the start of term; a scope extending
// leftward starts at the end of term. A bidirectional scope may be cut on
// both sides by successive terminations.
func terminate(scopes *interval.Index[*matchedPattern], term *matchedPattern) error {
	for _, iv := range scopes.Overlap(term.start, term.end) {
		scopes.Remove(iv)
		mp := iv.Data

		if mp.rule.Direction != rules.Following && term.start >= mp.end {
			mp.scopeEnd = term.start
		}
		if mp.rule.Direction != rules.Preceding && term.end <= mp.start {
			mp.scopeStart = term.end
		}

		if err := scopes.Insert(mp.scopeStart, mp.scopeEnd, mp); err != nil {
			return malformedSpan(mp, err)
		}
	}
	return nil
}

func malformedSpan(mp *matchedPattern, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeMalformedSpan,
		Message: fmt.Sprintf("trigger [%d, %d) with scope [%d, %d): %v", mp.start, mp.end, mp.scopeStart, mp.scopeEnd, err),
		RuleKey: mp.key,
		Err:     err,
	}
}

// applicable returns the matches whose scope overlaps ent, excluding
// triggers that overlap the entity itself.
func applicable(ent *document.Entity, scopes *interval.Index[*matchedPattern]) []*matchedPattern {
	var out []*matchedPattern
	for _, iv := range scopes.Overlap(ent.Start, ent.End) {
		mp := iv.Data
		if ent.Start+1 > mp.end || ent.End < mp.start+1 {
			out = append(out, mp)
		}
	}
	return out
}
