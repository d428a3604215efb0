package instagram

// pageFetch loads one upstream page starting after the given cursor.
type pageFetch func(after string) ([]*Post, PageInfo, error)

// PostIterator lazily walks an upstream paged post sequence. Pages are
// fetched on demand, so skipping ahead never parses more pages than the
// cursor position requires.
type PostIterator struct {
	fetch    pageFetch
	buffered []*Post
	pos      int
	after    string
	hasNext  bool
	started  bool
}

func newPostIterator(fetch pageFetch) *PostIterator {
	return &PostIterator{fetch: fetch}
}

// IteratePosts returns an iterator over an in-memory post list. err, when
// non-nil, is surfaced after the listed posts are exhausted.
func IteratePosts(posts []*Post, err error) *PostIterator {
	delivered := false
	return newPostIterator(func(after string) ([]*Post, PageInfo, error) {
		if delivered {
			return nil, PageInfo{}, err
		}
		delivered = true
		return posts, PageInfo{HasNextPage: err != nil}, nil
	})
}

// Next returns the next post in the sequence. ok is false when the
// sequence is exhausted; err is a classified upstream error.
func (it *PostIterator) Next() (*Post, bool, error) {
	for it.pos >= len(it.buffered) {
		if it.started && !it.hasNext {
			return nil, false, nil
		}
		posts, page, err := it.fetch(it.after)
		if err != nil {
			return nil, false, err
		}
		it.started = true
		it.buffered = posts
		it.pos = 0
		it.after = page.EndCursor
		it.hasNext = page.HasNextPage
		if len(posts) == 0 && !it.hasNext {
			return nil, false, nil
		}
	}

	post := it.buffered[it.pos]
	it.pos++
	return post, true, nil
}
