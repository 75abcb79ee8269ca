// Package interval provides a small index of half-open integer intervals
// carrying a payload, and the interval distance used to rank trigger
// matches.
package interval

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNullInterval indicates an interval with End <= Start.
	ErrNullInterval = errors.New("null interval")

	// ErrMalformedInterval indicates an interval with End < Start.
	ErrMalformedInterval = errors.New("malformed interval")
)

// Interval is a half-open range [Start, End) with a payload.
type Interval[T any] struct {
	Start int
	End   int
	Data  T

	seq uint64
}

// Overlaps reports whether the interval shares at least one point with
// [start, end).
func (iv Interval[T]) Overlaps(start, end int) bool {
	return iv.Start < end && start < iv.End
}

// Index holds intervals ordered by start, end and insertion order.
//
// Intervals with the same bounds are kept as separate entries. Index is not
// safe for concurrent mutation.
type Index[T any] struct {
	items []Interval[T]
	next  uint64
}

// New returns an empty index.
func New[T any]() *Index[T] {
	return &Index[T]{}
}

// Insert adds [start, end) with data.
func (x *Index[T]) Insert(start, end int, data T) error {
	if end <= start {
		return fmt.Errorf("%w: [%d, %d)", ErrNullInterval, start, end)
	}

	iv := Interval[T]{Start: start, End: end, Data: data, seq: x.next}
	x.next++

	pos := sort.Search(len(x.items), func(i int) bool {
		return less(iv, x.items[i])
	})
	x.items = append(x.items, Interval[T]{})
	copy(x.items[pos+1:], x.items[pos:])
	x.items[pos] = iv
	return nil
}

func less[T any](a, b Interval[T]) bool {
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	if a.End != b.End {
		return a.End < b.End
	}
	return a.seq < b.seq
}

// Overlap returns a snapshot of every interval overlapping [start, end), in
// index order. Mutating the index does not affect the returned slice.
func (x *Index[T]) Overlap(start, end int) []Interval[T] {
	var out []Interval[T]
	for _, iv := range x.items {
		if iv.Start >= end {
			break
		}
		if iv.Overlaps(start, end) {
			out = append(out, iv)
		}
	}
	return out
}

// Remove deletes the entry iv, as previously returned by Overlap or All.
// It reports whether the entry was present.
func (x *Index[T]) Remove(iv Interval[T]) bool {
	for i, item := range x.items {
		if item.seq == iv.seq {
			x.items = append(x.items[:i], x.items[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveOverlap deletes every interval overlapping [start, end) and returns
// the number removed.
func (x *Index[T]) RemoveOverlap(start, end int) int {
	kept := x.items[:0]
	removed := 0
	for _, iv := range x.items {
		if iv.Overlaps(start, end) {
			removed++
			continue
		}
		kept = append(kept, iv)
	}
	clear(x.items[len(kept):])
	x.items = kept
	return removed
}

// All returns a snapshot of every interval in index order.
func (x *Index[T]) All() []Interval[T] {
	out := make([]Interval[T], len(x.items))
	copy(out, x.items)
	return out
}

// Len returns the number of intervals.
func (x *Index[T]) Len() int { return len(x.items) }

// Distance returns the number of positions separating [aStart, aEnd) and
// [bStart, bEnd); overlapping or touching intervals have distance 0.
func Distance(aStart, aEnd, bStart, bEnd int) (int, error) {
	if aEnd < aStart {
		return 0, fmt.Errorf("%w: [%d, %d)", ErrMalformedInterval, aStart, aEnd)
	}
	if bEnd < bStart {
		return 0, fmt.Errorf("%w: [%d, %d)", ErrMalformedInterval, bStart, bEnd)
	}
	return max(0, aStart-bEnd, bStart-aEnd), nil
}
