// Package media flattens upstream posts into the uniform records the API
// returns. Normalization is pure: it needs a fully materialized post and
// performs no I/O.
package media

import (
	"regexp"
	"time"

	"instaview/pkg/instagram"
)

// Record is the normalized output unit. A carousel post yields one Record
// per child node, all sharing the parent's caption and engagement fields.
type Record struct {
	Type          string   `json:"type"`
	ThumbURL      string   `json:"thumb_url"`
	VideoURL      *string  `json:"video_url"`
	Caption       string   `json:"caption"`
	TakenAt       *string  `json:"taken_at"`
	CommentsCount int      `json:"comments_count"`
	Likes         int      `json:"likes"`
	Shortcode     string   `json:"shortcode"`
	Hashtags      []string `json:"hashtags"`
	OwnerUsername string   `json:"owner_username,omitempty"`
}

const (
	// TypeImage and TypeVideo are the two record media types.
	TypeImage = "image"
	TypeVideo = "video"
)

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// Hashtags extracts the hashtag names mentioned in a caption, in order of
// appearance, without the leading #.
func Hashtags(caption string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(caption, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

// Flatten normalizes one post into records. Carousels produce one record
// per child; single posts produce exactly one. withOwner includes the
// posting account's username, which only hashtag results expose.
func Flatten(post *instagram.Post, withOwner bool) []Record {
	base := Record{
		Caption:       post.Caption,
		TakenAt:       formatTime(post.TakenAt),
		CommentsCount: post.Comments,
		Likes:         post.Likes,
		Shortcode:     post.Shortcode,
		Hashtags:      Hashtags(post.Caption),
	}
	if withOwner {
		base.OwnerUsername = post.Owner
	}

	if post.Kind == instagram.KindCarousel {
		records := make([]Record, 0, len(post.Children))
		for _, child := range post.Children {
			rec := base
			rec.ThumbURL = child.DisplayURL
			rec.Type = mediaType(child.IsVideo)
			if child.IsVideo {
				rec.VideoURL = optional(child.VideoURL)
			}
			records = append(records, rec)
		}
		return records
	}

	rec := base
	rec.ThumbURL = post.DisplayURL
	rec.Type = mediaType(post.IsVideo)
	if post.IsVideo {
		rec.VideoURL = optional(post.VideoURL)
	}
	return []Record{rec}
}

// StoryRecord is the normalized form of a story or highlight item.
type StoryRecord struct {
	Type           string  `json:"type"`
	ThumbURL       string  `json:"thumb_url"`
	VideoURL       *string `json:"video_url"`
	TakenAt        *string `json:"taken_at"`
	HighlightTitle string  `json:"highlight_title,omitempty"`
}

// FlattenStory normalizes one story item.
func FlattenStory(item instagram.StoryItem) StoryRecord {
	rec := StoryRecord{
		Type:     mediaType(item.IsVideo),
		ThumbURL: item.ThumbURL,
		TakenAt:  formatTime(item.TakenAt),
	}
	if item.IsVideo {
		rec.VideoURL = optional(item.VideoURL)
	}
	return rec
}

// FlattenHighlight normalizes one highlight item, keeping the reel title.
func FlattenHighlight(item instagram.HighlightItem) StoryRecord {
	rec := FlattenStory(item.StoryItem)
	rec.HighlightTitle = item.Title
	return rec
}

func mediaType(isVideo bool) string {
	if isVideo {
		return TypeVideo
	}
	return TypeImage
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
