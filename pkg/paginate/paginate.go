// Package paginate converts offset+limit cursors into deterministic slices
// of a lazy upstream sequence. Pagination is stateless: every call is
// computed from the cursor supplied in that request alone.
package paginate

import "strconv"

// DefaultLimit is the page size used when the client supplies none, or an
// unusable one.
const DefaultLimit = 12

// Cursor identifies one page of results.
type Cursor struct {
	Offset int
	Limit  int
}

// ParseCursor coerces raw query values into a valid cursor: a non-numeric
// offset becomes 0, a non-numeric or non-positive limit becomes
// DefaultLimit. Coercing an already-valid cursor is a no-op.
func ParseCursor(offsetStr, limitStr string) Cursor {
	offset := 0
	if v, err := strconv.Atoi(offsetStr); err == nil && v >= 0 {
		offset = v
	}

	limit := DefaultLimit
	if v, err := strconv.Atoi(limitStr); err == nil && v > 0 {
		limit = v
	}

	return Cursor{Offset: offset, Limit: limit}
}

// Iterator yields successive units of an upstream sequence. ok is false at
// exhaustion; a non-nil error aborts the walk.
type Iterator[T any] interface {
	Next() (T, bool, error)
}

// Collect skips exactly cursor.Offset units, then consumes at most
// cursor.Limit further units, stopping early at exhaustion. The returned
// count is the number of units consumed in the second phase; the next
// offset is cursor.Offset + consumed regardless of how many records each
// unit later expands to.
func Collect[T any](it Iterator[T], cursor Cursor) ([]T, int, error) {
	for skipped := 0; skipped < cursor.Offset; skipped++ {
		if _, ok, err := it.Next(); err != nil {
			return nil, 0, err
		} else if !ok {
			return nil, 0, nil
		}
	}

	units := make([]T, 0, cursor.Limit)
	for len(units) < cursor.Limit {
		unit, ok, err := it.Next()
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			break
		}
		units = append(units, unit)
	}
	return units, len(units), nil
}

// ProfileHasMore reports whether a profile-backed page has a successor.
// The profile's total post count makes this authoritative.
func ProfileHasMore(cursor Cursor, consumed, totalPosts int) bool {
	return cursor.Offset+consumed < totalPosts
}

// HashtagHasMore approximates whether a hashtag-backed page has a
// successor. Hashtag totals are unknown upstream, so a full page is taken
// to mean more exist; this can report true when the sequence happened to
// end exactly at a page boundary, which is accepted.
func HashtagHasMore(cursor Cursor, consumed int) bool {
	return consumed == cursor.Limit
}

// SliceIterator adapts an in-memory slice to the Iterator interface.
type SliceIterator[T any] struct {
	items []T
	pos   int
}

// NewSliceIterator creates an iterator over items.
func NewSliceIterator[T any](items []T) *SliceIterator[T] {
	return &SliceIterator[T]{items: items}
}

func (s *SliceIterator[T]) Next() (T, bool, error) {
	if s.pos >= len(s.items) {
		var zero T
		return zero, false, nil
	}
	item := s.items[s.pos]
	s.pos++
	return item, true, nil
}
