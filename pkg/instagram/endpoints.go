package instagram

import (
	"fmt"
	"net/url"
)

const (
	// BaseURL is the base URL for Instagram's web surface.
	BaseURL = "https://www.instagram.com"

	// ProfileEndpoint returns profile metadata for a username.
	ProfileEndpoint = "/api/v1/users/web_profile_info/"

	// MediaEndpoint is the GraphQL query endpoint for paged media.
	MediaEndpoint = "/graphql/query/"

	// MediaQueryHash selects the user-timeline media query.
	MediaQueryHash = "e769aa130647d2354c40ea6a439bfc08"

	// TagQueryHash selects the hashtag media query.
	TagQueryHash = "9b498c08113f1e09617a1703c22b2f32"

	// SharedDataEndpoint exposes the CSRF token needed before login.
	SharedDataEndpoint = "/api/v1/web/data/shared_data/"

	// LoginEndpoint is the web login form target.
	LoginEndpoint = "/api/v1/web/accounts/login/ajax/"

	// CurrentUserEndpoint identifies the session's account, if any.
	CurrentUserEndpoint = "/api/v1/accounts/current_user/"

	// ReelsMediaEndpoint returns story items for reel IDs.
	ReelsMediaEndpoint = "/api/v1/feed/reels_media/"

	// HighlightsTrayEndpoint lists a user's highlight reels.
	HighlightsTrayEndpoint = "/api/v1/highlights/%s/highlights_tray/"

	// MediaPageSize is how many units one upstream page request asks for.
	MediaPageSize = 50
)

// GetProfileURL constructs the URL for fetching a user's profile.
func GetProfileURL(username string) string {
	params := url.Values{}
	params.Set("username", username)
	return fmt.Sprintf("%s%s?%s", BaseURL, ProfileEndpoint, params.Encode())
}

// GetMediaURL constructs the paged timeline-media URL for a user ID.
func GetMediaURL(userID string, after string) string {
	params := url.Values{}
	params.Set("query_hash", MediaQueryHash)
	params.Set("variables", fmt.Sprintf(`{"id":%q,"first":%d,"after":%q}`, userID, MediaPageSize, after))
	return fmt.Sprintf("%s%s?%s", BaseURL, MediaEndpoint, params.Encode())
}

// GetTagMediaURL constructs the paged hashtag-media URL for a tag name.
func GetTagMediaURL(tag string, after string) string {
	params := url.Values{}
	params.Set("query_hash", TagQueryHash)
	params.Set("variables", fmt.Sprintf(`{"tag_name":%q,"first":%d,"after":%q}`, tag, MediaPageSize, after))
	return fmt.Sprintf("%s%s?%s", BaseURL, MediaEndpoint, params.Encode())
}

// GetReelsMediaURL constructs the story-items URL for one reel ID. Highlight
// reels use the "highlight:<id>" form.
func GetReelsMediaURL(reelID string) string {
	params := url.Values{}
	params.Set("reel_ids", reelID)
	return fmt.Sprintf("%s%s?%s", BaseURL, ReelsMediaEndpoint, params.Encode())
}

// GetHighlightsTrayURL constructs the highlights-tray URL for a user ID.
func GetHighlightsTrayURL(userID string) string {
	return BaseURL + fmt.Sprintf(HighlightsTrayEndpoint, userID)
}

// IsValidUsername checks a username against Instagram's character rules.
func IsValidUsername(username string) bool {
	if username == "" || len(username) > 30 {
		return false
	}
	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '.' || char == '_') {
			return false
		}
	}
	return true
}

// SanitizeUsername strips a leading @ and trailing slashes or spaces.
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}
	if username[0] == '@' {
		username = username[1:]
	}
	for len(username) > 0 && (username[len(username)-1] == '/' || username[len(username)-1] == ' ') {
		username = username[:len(username)-1]
	}
	return username
}
