package instagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIteratePosts(t *testing.T) {
	t.Run("yields all posts then stops", func(t *testing.T) {
		it := IteratePosts([]*Post{{ID: "1"}, {ID: "2"}}, nil)

		post, ok, err := it.Next()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "1", post.ID)

		post, ok, err = it.Next()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "2", post.ID)

		_, ok, err = it.Next()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("surfaces the error after the listed posts", func(t *testing.T) {
		boom := &Error{Type: ErrorTypeConnection, Message: "timeout"}
		it := IteratePosts([]*Post{{ID: "1"}}, boom)

		_, ok, err := it.Next()
		require.NoError(t, err)
		assert.True(t, ok)

		_, _, err = it.Next()
		assert.True(t, IsType(err, ErrorTypeConnection))
	})

	t.Run("empty list", func(t *testing.T) {
		it := IteratePosts(nil, nil)
		_, ok, err := it.Next()
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
