package engine

import (
	"github.com/roach88/clinctx/internal/document"
	"github.com/roach88/clinctx/internal/interval"
)

// resolveConflicts keeps one match per qualifier class name: the one
// closest to ent, and among equally close ones the one with the highest
// priority. Remaining ties go to the first match in trigger order.
func resolveConflicts(ent *document.Entity, mps []*matchedPattern) ([]*matchedPattern, error) {
	if len(mps) <= 1 {
		return mps, nil
	}

	ordered := make([]*matchedPattern, len(mps))
	copy(ordered, mps)
	sortByTrigger(ordered)

	type candidate struct {
		mp       *matchedPattern
		distance int
	}

	var names []string
	best := make(map[string]candidate)

	for _, mp := range ordered {
		dist, err := interval.Distance(ent.Start, ent.End, mp.start, mp.end)
		if err != nil {
			return nil, &RuntimeError{
				Code:    ErrCodeMalformedSpan,
				Message: err.Error(),
				RuleKey: mp.key,
				Err:     err,
			}
		}

		name := mp.rule.Qualifier.Name
		cur, seen := best[name]
		if !seen {
			names = append(names, name)
			best[name] = candidate{mp, dist}
			continue
		}
		if dist < cur.distance ||
			(dist == cur.distance && mp.rule.Qualifier.Priority > cur.mp.rule.Qualifier.Priority) {
			best[name] = candidate{mp, dist}
		}
	}

	out := make([]*matchedPattern, len(names))
	for i, name := range names {
		out[i] = best[name].mp
	}
	return out, nil
}
