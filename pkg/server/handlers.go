package server

import (
	"net/http"
	"strings"

	"instaview/pkg/instagram"
	"instaview/pkg/media"
	"instaview/pkg/paginate"
)

const (
	storiesCap    = 20
	highlightsCap = 40
	reelsCap      = 12
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScrape serves one page of a profile's media grid.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	username := instagram.SanitizeUsername(r.URL.Query().Get("username"))
	if username == "" {
		writeError(w, http.StatusBadRequest, "Username is required")
		return
	}

	client, sess := s.acquire(ModeAnonymousPreferred)

	profile, err := client.FetchProfile(username)
	if err != nil {
		writeScrapeError(w, err)
		return
	}

	if !s.accessible(profile, sess.Username) {
		writeScrapeError(w, &instagram.Error{
			Type:    instagram.ErrorTypePrivate,
			Message: "profile is private",
		})
		return
	}

	cursor := paginate.ParseCursor(r.URL.Query().Get("offset"), r.URL.Query().Get("limit"))
	posts, consumed, err := paginate.Collect[*instagram.Post](client.Posts(profile), cursor)
	if err != nil {
		writeScrapeError(w, err)
		return
	}

	records := make([]media.Record, 0, len(posts))
	for _, post := range posts {
		records = append(records, media.Flatten(post, false)...)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile":  profile,
		"media":    records,
		"offset":   cursor.Offset + consumed,
		"has_more": paginate.ProfileHasMore(cursor, consumed, profile.PostsCount),
	})
}

// accessible reports whether the profile's media can be listed with the
// current session. Private profiles need the bot to follow them, or to
// be the profile itself.
func (s *Server) accessible(profile *instagram.Profile, botUsername string) bool {
	if !profile.IsPrivate {
		return true
	}
	return profile.FollowedByBot || profile.Username == botUsername
}

type profileExtras struct {
	RequiresLogin bool                `json:"requires_login"`
	Error         string              `json:"error,omitempty"`
	Stories       []media.StoryRecord `json:"stories"`
	Highlights    []media.StoryRecord `json:"highlights"`
	Reels         []media.Record      `json:"reels"`
}

// handleProfileExtras serves a profile's stories, highlights, and reels.
// The three fetches are independent: one failing leaves the others
// intact and yields an empty list for the failed section.
func (s *Server) handleProfileExtras(w http.ResponseWriter, r *http.Request) {
	username := instagram.SanitizeUsername(r.URL.Query().Get("username"))
	if username == "" {
		writeError(w, http.StatusBadRequest, "Username is required")
		return
	}

	extras := profileExtras{
		Stories:    []media.StoryRecord{},
		Highlights: []media.StoryRecord{},
		Reels:      []media.Record{},
	}

	client, sess := s.acquire(ModePrivilegedRequired)
	if !sess.LoggedIn {
		extras.RequiresLogin = true
		extras.Error = "Backend not logged in; bot account login failed."
		writeJSON(w, http.StatusInternalServerError, extras)
		return
	}

	profile, err := client.FetchProfile(username)
	if err != nil {
		writeScrapeError(w, err)
		return
	}

	if stories, err := client.Stories(profile.UserID); err != nil {
		s.logger.WithError(err).WithField("username", username).Warn("stories fetch failed")
	} else {
		for _, item := range capStories(stories, storiesCap) {
			extras.Stories = append(extras.Stories, media.FlattenStory(item))
		}
	}

	if highlights, err := client.Highlights(profile.UserID); err != nil {
		s.logger.WithError(err).WithField("username", username).Warn("highlights fetch failed")
	} else {
		if len(highlights) > highlightsCap {
			highlights = highlights[:highlightsCap]
		}
		for _, item := range highlights {
			extras.Highlights = append(extras.Highlights, media.FlattenHighlight(item))
		}
	}

	if reels, err := collectReels(client.Posts(profile), reelsCap); err != nil {
		s.logger.WithError(err).WithField("username", username).Warn("reels fetch failed")
	} else {
		extras.Reels = reels
	}

	writeJSON(w, http.StatusOK, extras)
}

func capStories(items []instagram.StoryItem, limit int) []instagram.StoryItem {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

// collectReels walks the profile's media until limit video posts have
// been gathered. Carousels are skipped; reels are single video posts.
func collectReels(it *instagram.PostIterator, limit int) ([]media.Record, error) {
	reels := make([]media.Record, 0, limit)
	for len(reels) < limit {
		post, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if post.Kind != instagram.KindSingle || !post.IsVideo {
			continue
		}
		reels = append(reels, media.Flatten(post, false)...)
	}
	return reels, nil
}

// handleHashtag serves one page of the hashtag explorer. Only the first
// cleaned tag is queried; the full cleaned list is echoed back.
func (s *Server) handleHashtag(w http.ResponseWriter, r *http.Request) {
	tags := cleanTags(r.URL.Query().Get("tags"))
	if len(tags) == 0 {
		writeError(w, http.StatusBadRequest, "At least one hashtag is required")
		return
	}
	primary := tags[0]

	client, sess := s.acquire(ModePrivilegedRequired)
	if !sess.LoggedIn {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":          "Backend not logged in; bot account login failed.",
			"login_required": true,
		})
		return
	}

	if _, err := client.ResolveHashtag(primary); err != nil {
		writeHashtagError(w, err)
		return
	}

	cursor := paginate.ParseCursor(r.URL.Query().Get("offset"), r.URL.Query().Get("limit"))
	posts, consumed, err := paginate.Collect[*instagram.Post](client.HashtagPosts(primary), cursor)
	if err != nil {
		writeHashtagError(w, err)
		return
	}

	records := make([]media.Record, 0, len(posts))
	for _, post := range posts {
		records = append(records, media.Flatten(post, true)...)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tags":        tags,
		"primary_tag": primary,
		"media":       records,
		"offset":      cursor.Offset + consumed,
		"has_more":    paginate.HashtagHasMore(cursor, consumed),
	})
}

// cleanTags splits a comma-separated tag list, trimming whitespace and a
// leading # from each entry and dropping empties.
func cleanTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.TrimPrefix(strings.TrimSpace(part), "#")
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// handleDebugSession exposes the session manager's state for operators.
func (s *Server) handleDebugSession(w http.ResponseWriter, r *http.Request) {
	client, sess := s.acquire(ModeAnonymousPreferred)

	loggedInUser := ""
	if sess.LoggedIn {
		if who, err := client.CurrentUser(); err == nil {
			loggedInUser = who
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bot_user":            s.sessions.BotUsername(),
		"is_logged_in":        sess.LoggedIn,
		"logged_in_user":      loggedInUser,
		"session_file":        s.sessions.FilePath(),
		"session_file_exists": s.sessions.FileExists(),
	})
}
