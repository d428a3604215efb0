package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instaview/pkg/instagram"
)

func TestHashtags(t *testing.T) {
	tests := []struct {
		name    string
		caption string
		want    []string
	}{
		{"no tags", "just a caption", []string{}},
		{"single tag", "sunset #photography", []string{"photography"}},
		{"multiple tags in order", "#cats and #dogs and #cats_forever", []string{"cats", "dogs", "cats_forever"}},
		{"empty caption", "", []string{}},
		{"bare hash ignored", "price # 100", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Hashtags(tt.caption))
		})
	}
}

func testPost() *instagram.Post {
	taken := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
	return &instagram.Post{
		ID:         "123",
		Shortcode:  "ABC123",
		Kind:       instagram.KindSingle,
		Caption:    "hello #world",
		TakenAt:    &taken,
		Comments:   7,
		Likes:      42,
		Owner:      "someuser",
		DisplayURL: "https://cdn.example.com/photo.jpg",
	}
}

func TestFlattenSingle(t *testing.T) {
	t.Run("image post", func(t *testing.T) {
		records := Flatten(testPost(), false)
		require.Len(t, records, 1)

		rec := records[0]
		assert.Equal(t, TypeImage, rec.Type)
		assert.Equal(t, "https://cdn.example.com/photo.jpg", rec.ThumbURL)
		assert.Nil(t, rec.VideoURL)
		assert.Equal(t, "hello #world", rec.Caption)
		require.NotNil(t, rec.TakenAt)
		assert.Equal(t, "2024-03-15T12:30:00Z", *rec.TakenAt)
		assert.Equal(t, 7, rec.CommentsCount)
		assert.Equal(t, 42, rec.Likes)
		assert.Equal(t, "ABC123", rec.Shortcode)
		assert.Equal(t, []string{"world"}, rec.Hashtags)
		assert.Empty(t, rec.OwnerUsername)
	})

	t.Run("video post", func(t *testing.T) {
		post := testPost()
		post.IsVideo = true
		post.VideoURL = "https://cdn.example.com/clip.mp4"

		records := Flatten(post, false)
		require.Len(t, records, 1)
		assert.Equal(t, TypeVideo, records[0].Type)
		require.NotNil(t, records[0].VideoURL)
		assert.Equal(t, "https://cdn.example.com/clip.mp4", *records[0].VideoURL)
	})

	t.Run("no timestamp", func(t *testing.T) {
		post := testPost()
		post.TakenAt = nil

		records := Flatten(post, false)
		require.Len(t, records, 1)
		assert.Nil(t, records[0].TakenAt)
	})

	t.Run("owner included in hashtag context", func(t *testing.T) {
		records := Flatten(testPost(), true)
		require.Len(t, records, 1)
		assert.Equal(t, "someuser", records[0].OwnerUsername)
	})
}

func TestFlattenCarousel(t *testing.T) {
	post := testPost()
	post.Kind = instagram.KindCarousel
	post.DisplayURL = ""
	post.Children = []instagram.Child{
		{DisplayURL: "https://cdn.example.com/1.jpg"},
		{DisplayURL: "https://cdn.example.com/2.jpg", IsVideo: true, VideoURL: "https://cdn.example.com/2.mp4"},
		{DisplayURL: "https://cdn.example.com/3.jpg"},
	}

	records := Flatten(post, false)
	require.Len(t, records, 3)

	// Every child record inherits the parent's base fields.
	for _, rec := range records {
		assert.Equal(t, "hello #world", rec.Caption)
		assert.Equal(t, 7, rec.CommentsCount)
		assert.Equal(t, 42, rec.Likes)
		assert.Equal(t, "ABC123", rec.Shortcode)
		assert.Equal(t, []string{"world"}, rec.Hashtags)
	}

	assert.Equal(t, TypeImage, records[0].Type)
	assert.Equal(t, "https://cdn.example.com/1.jpg", records[0].ThumbURL)
	assert.Nil(t, records[0].VideoURL)

	assert.Equal(t, TypeVideo, records[1].Type)
	assert.Equal(t, "https://cdn.example.com/2.jpg", records[1].ThumbURL)
	require.NotNil(t, records[1].VideoURL)
	assert.Equal(t, "https://cdn.example.com/2.mp4", *records[1].VideoURL)

	assert.Equal(t, TypeImage, records[2].Type)
}

func TestFlattenStory(t *testing.T) {
	taken := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	t.Run("image story", func(t *testing.T) {
		rec := FlattenStory(instagram.StoryItem{
			ThumbURL: "https://cdn.example.com/story.jpg",
			TakenAt:  &taken,
		})
		assert.Equal(t, TypeImage, rec.Type)
		assert.Equal(t, "https://cdn.example.com/story.jpg", rec.ThumbURL)
		assert.Nil(t, rec.VideoURL)
		require.NotNil(t, rec.TakenAt)
		assert.Equal(t, "2024-06-01T08:00:00Z", *rec.TakenAt)
		assert.Empty(t, rec.HighlightTitle)
	})

	t.Run("video story", func(t *testing.T) {
		rec := FlattenStory(instagram.StoryItem{
			ThumbURL: "https://cdn.example.com/story.jpg",
			VideoURL: "https://cdn.example.com/story.mp4",
			IsVideo:  true,
		})
		assert.Equal(t, TypeVideo, rec.Type)
		require.NotNil(t, rec.VideoURL)
		assert.Equal(t, "https://cdn.example.com/story.mp4", *rec.VideoURL)
	})
}

func TestFlattenHighlight(t *testing.T) {
	rec := FlattenHighlight(instagram.HighlightItem{
		Title: "Travel",
		StoryItem: instagram.StoryItem{
			ThumbURL: "https://cdn.example.com/h.jpg",
		},
	})
	assert.Equal(t, "Travel", rec.HighlightTitle)
	assert.Equal(t, TypeImage, rec.Type)
}
