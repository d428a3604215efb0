package instagram

import "time"

// Wire types mirror Instagram's web API responses. They stay private to
// this package; ingestion converts them to the domain types in types.go.

// PageInfo carries the upstream cursor for a paged media connection.
type PageInfo struct {
	HasNextPage bool   `json:"has_next_page"`
	EndCursor   string `json:"end_cursor"`
}

type count struct {
	Count int `json:"count"`
}

type profileResponse struct {
	RequiresToLogin bool `json:"requires_to_login"`
	Data            struct {
		User *wireUser `json:"user"`
	} `json:"data"`
	Status string `json:"status"`
}

type wireUser struct {
	ID                       string              `json:"id"`
	Username                 string              `json:"username"`
	FullName                 string              `json:"full_name"`
	Biography                string              `json:"biography"`
	ProfilePicURL            string              `json:"profile_pic_url_hd"`
	EdgeFollowedBy           count               `json:"edge_followed_by"`
	EdgeFollow               count               `json:"edge_follow"`
	IsVerified               bool                `json:"is_verified"`
	IsPrivate                bool                `json:"is_private"`
	FollowedByViewer         bool                `json:"followed_by_viewer"`
	EdgeOwnerToTimelineMedia wireMediaConnection `json:"edge_owner_to_timeline_media"`
}

type wireMediaConnection struct {
	Count    int             `json:"count"`
	PageInfo PageInfo        `json:"page_info"`
	Edges    []wireMediaEdge `json:"edges"`
}

type wireMediaEdge struct {
	Node wireMediaNode `json:"node"`
}

// typenameSidecar marks a carousel post in GraphQL responses.
const typenameSidecar = "GraphSidecar"

type wireMediaNode struct {
	Typename         string `json:"__typename"`
	ID               string `json:"id"`
	Shortcode        string `json:"shortcode"`
	DisplayURL       string `json:"display_url"`
	IsVideo          bool   `json:"is_video"`
	VideoURL         string `json:"video_url"`
	TakenAtTimestamp int64  `json:"taken_at_timestamp"`

	EdgeMediaToCaption struct {
		Edges []struct {
			Node struct {
				Text string `json:"text"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_media_to_caption"`
	EdgeMediaToComment count `json:"edge_media_to_comment"`
	EdgeLikedBy        count `json:"edge_liked_by"`

	Owner struct {
		Username string `json:"username"`
	} `json:"owner"`

	EdgeSidecarToChildren struct {
		Edges []wireMediaEdge `json:"edges"`
	} `json:"edge_sidecar_to_children"`
}

type mediaQueryResponse struct {
	Data struct {
		User *wireUser `json:"user"`
	} `json:"data"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type tagResponse struct {
	Data struct {
		Hashtag *struct {
			Name               string              `json:"name"`
			EdgeHashtagToMedia wireMediaConnection `json:"edge_hashtag_to_media"`
		} `json:"hashtag"`
	} `json:"data"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type reelsMediaResponse struct {
	ReelsMedia []struct {
		Items []wireStoryItem `json:"items"`
	} `json:"reels_media"`
	Status string `json:"status"`
}

// Media type constants used by the private story API.
const (
	wireMediaTypeImage = 1
	wireMediaTypeVideo = 2
)

type wireStoryItem struct {
	MediaType      int   `json:"media_type"`
	TakenAt        int64 `json:"taken_at"`
	ImageVersions2 struct {
		Candidates []struct {
			URL string `json:"url"`
		} `json:"candidates"`
	} `json:"image_versions2"`
	VideoVersions []struct {
		URL string `json:"url"`
	} `json:"video_versions"`
}

type highlightsTrayResponse struct {
	Tray []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"tray"`
	Status string `json:"status"`
}

type sharedDataResponse struct {
	Config struct {
		CSRFToken string `json:"csrf_token"`
	} `json:"config"`
}

type loginResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"userId"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

type currentUserResponse struct {
	User *struct {
		Username string `json:"username"`
	} `json:"user"`
	Status string `json:"status"`
}

// toProfile converts a wire user into the domain snapshot.
func toProfile(u *wireUser) *Profile {
	return &Profile{
		UserID:        u.ID,
		Username:      u.Username,
		FullName:      u.FullName,
		Biography:     u.Biography,
		ProfilePicURL: u.ProfilePicURL,
		Followers:     u.EdgeFollowedBy.Count,
		Following:     u.EdgeFollow.Count,
		PostsCount:    u.EdgeOwnerToTimelineMedia.Count,
		IsVerified:    u.IsVerified,
		IsPrivate:     u.IsPrivate,
		FollowedByBot: u.FollowedByViewer,
	}
}

// toPost materializes one media node, deciding the Single/Carousel variant
// exactly once from the GraphQL typename.
func toPost(n *wireMediaNode) *Post {
	post := &Post{
		ID:        n.ID,
		Shortcode: n.Shortcode,
		Comments:  n.EdgeMediaToComment.Count,
		Likes:     n.EdgeLikedBy.Count,
		Owner:     n.Owner.Username,
	}
	if len(n.EdgeMediaToCaption.Edges) > 0 {
		post.Caption = n.EdgeMediaToCaption.Edges[0].Node.Text
	}
	if n.TakenAtTimestamp > 0 {
		t := time.Unix(n.TakenAtTimestamp, 0).UTC()
		post.TakenAt = &t
	}

	if n.Typename == typenameSidecar {
		post.Kind = KindCarousel
		for _, edge := range n.EdgeSidecarToChildren.Edges {
			child := Child{
				DisplayURL: edge.Node.DisplayURL,
				IsVideo:    edge.Node.IsVideo,
			}
			if edge.Node.IsVideo {
				child.VideoURL = edge.Node.VideoURL
			}
			post.Children = append(post.Children, child)
		}
		return post
	}

	post.Kind = KindSingle
	post.DisplayURL = n.DisplayURL
	post.IsVideo = n.IsVideo
	if n.IsVideo {
		post.VideoURL = n.VideoURL
	}
	return post
}

// toStoryItem converts a private-API story item. The first image candidate
// is the highest resolution one.
func toStoryItem(w *wireStoryItem) StoryItem {
	item := StoryItem{
		IsVideo: w.MediaType == wireMediaTypeVideo,
	}
	if len(w.ImageVersions2.Candidates) > 0 {
		item.ThumbURL = w.ImageVersions2.Candidates[0].URL
	}
	if item.IsVideo && len(w.VideoVersions) > 0 {
		item.VideoURL = w.VideoVersions[0].URL
	}
	if w.TakenAt > 0 {
		t := time.Unix(w.TakenAt, 0).UTC()
		item.TakenAt = &t
	}
	return item
}
