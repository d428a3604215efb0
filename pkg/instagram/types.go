package instagram

import "time"

// PostKind discriminates single-media posts from carousels. It is decided
// once when a post is ingested from the wire, never re-inspected per field.
type PostKind int

const (
	KindSingle PostKind = iota
	KindCarousel
)

// Post is one unit of an upstream paged sequence, fully materialized.
type Post struct {
	ID        string
	Shortcode string
	Kind      PostKind
	Caption   string
	TakenAt   *time.Time
	Comments  int
	Likes     int
	Owner     string

	// Single-media fields; unset for carousels.
	DisplayURL string
	IsVideo    bool
	VideoURL   string

	// Carousel children in upstream order; empty for single posts.
	Children []Child
}

// Child is one media node inside a carousel.
type Child struct {
	DisplayURL string
	IsVideo    bool
	VideoURL   string
}

// Profile is a read-only snapshot of a user profile, fetched once per
// request and never cached.
type Profile struct {
	UserID        string `json:"-"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	Biography     string `json:"biography"`
	ProfilePicURL string `json:"profile_pic"`
	Followers     int    `json:"followers"`
	Following     int    `json:"following"`
	PostsCount    int    `json:"posts_count"`
	IsVerified    bool   `json:"is_verified"`
	IsPrivate     bool   `json:"is_private"`
	FollowedByBot bool   `json:"-"`
}

// Hashtag is a resolved hashtag subject.
type Hashtag struct {
	Name       string
	MediaCount int
}

// StoryItem is one story or highlight media item.
type StoryItem struct {
	ThumbURL string
	VideoURL string
	IsVideo  bool
	TakenAt  *time.Time
}

// HighlightItem is a story item inside a titled highlight reel.
type HighlightItem struct {
	Title string
	StoryItem
}
