package match

import "github.com/roach88/clinctx/internal/document"

// AddEntities adds an entity labelled label for every match of m over the
// whole document. Of overlapping matches only the first in match order is
// kept. Matches that cannot become an entity, such as ones crossing a
// sentence boundary, are returned as skipped.
func AddEntities(doc *document.Document, m Matcher, label string) (added []*document.Entity, skipped []Match) {
	end := -1
	for _, mt := range m.Match(doc, 0, doc.Len()) {
		if mt.Start < end {
			continue
		}
		ent, err := doc.AddEntity(mt.Start, mt.End, label)
		if err != nil {
			skipped = append(skipped, mt)
			continue
		}
		added = append(added, ent)
		end = mt.End
	}
	return added, skipped
}
