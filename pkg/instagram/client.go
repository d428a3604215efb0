package instagram

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"instaview/pkg/logger"
	"instaview/pkg/ratelimit"
)

// Client talks to Instagram's web API. A zero-session client performs
// anonymous requests; SetSession binds it to a logged-in identity.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates an Instagram client with the given request timeout.
// The limiter may be nil, in which case upstream calls are not throttled.
func NewClient(timeout time.Duration, userAgent string, limiter ratelimit.Limiter, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept":          "*/*",
			"Accept-Language": "en-US,en;q=0.9",
			"X-IG-App-ID":     "936619743392459",
			"Sec-Fetch-Mode":  "cors",
			"Sec-Fetch-Site":  "same-origin",
		},
		baseURL: BaseURL,
		limiter: limiter,
		logger:  log,
	}
}

// SetBaseURL overrides the upstream base URL. Used by tests.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = strings.TrimSuffix(base, "/")
}

// SetHeader sets a custom header applied to every request.
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetSession binds the client to an authenticated session.
func (c *Client) SetSession(sessionID, csrfToken, userID string) {
	cookies := []string{
		"sessionid=" + sessionID,
		"csrftoken=" + csrfToken,
	}
	if userID != "" {
		cookies = append(cookies, "ds_user_id="+userID)
	}
	c.headers["Cookie"] = strings.Join(cookies, "; ")
	c.headers["x-csrftoken"] = csrfToken
}

// ClearSession reverts the client to anonymous access.
func (c *Client) ClearSession() {
	delete(c.headers, "Cookie")
	delete(c.headers, "x-csrftoken")
}

// resolveURL rewrites an absolute BaseURL endpoint onto the configured
// base, so SetBaseURL redirects every endpoint in tests.
func (c *Client) resolveURL(rawURL string) string {
	if c.baseURL != BaseURL && strings.HasPrefix(rawURL, BaseURL) {
		return c.baseURL + strings.TrimPrefix(rawURL, BaseURL)
	}
	return rawURL
}

func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	if c.limiter != nil {
		c.limiter.Wait()
	}

	start := time.Now()
	c.logger.DebugWithFields("sending upstream request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorWithFields("upstream request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, &Error{
			Type:    ErrorTypeConnection,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}

	c.logger.DebugWithFields("upstream request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})
	return resp, nil
}

// GetJSON performs a GET request and decodes the JSON response into target.
// Non-200 statuses are classified into typed errors.
func (c *Client) GetJSON(rawURL string, target interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.resolveURL(rawURL), nil)
	if err != nil {
		return &Error{Type: ErrorTypeUnknown, Message: fmt.Sprintf("failed to create request: %v", err)}
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{
			Type:    ErrorTypeConnection,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return c.classifyHTTP(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, target); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse upstream JSON", map[string]interface{}{
			"url":          rawURL,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return &Error{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}
	return nil
}

// classifyHTTP maps a non-200 upstream response to a typed error. Body
// text takes priority so the cooldown phrase always wins.
func (c *Client) classifyHTTP(status int, body []byte) *Error {
	if e := classifyMessage(string(body), status); e != nil {
		return e
	}
	switch {
	case status == http.StatusNotFound:
		return &Error{Type: ErrorTypeNotFound, Message: "resource not found", Code: status}
	case status == http.StatusTooManyRequests:
		return &Error{Type: ErrorTypeRateLimited, Message: rateLimitPhrase, Code: status}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{Type: ErrorTypeLoginRequired, Message: "login required", Code: status}
	case status >= 500:
		return &Error{Type: ErrorTypeConnection, Message: fmt.Sprintf("server returned status %d", status), Code: status}
	default:
		return &Error{Type: ErrorTypeUnknown, Message: fmt.Sprintf("unexpected status code: %d", status), Code: status}
	}
}

// FetchProfile fetches a profile snapshot for a username.
func (c *Client) FetchProfile(username string) (*Profile, error) {
	var resp profileResponse
	if err := c.GetJSON(GetProfileURL(username), &resp); err != nil {
		if IsType(err, ErrorTypeNotFound) {
			return nil, &Error{Type: ErrorTypeNotFound, Message: "Profile not found", Code: http.StatusNotFound}
		}
		return nil, classify(err)
	}

	if resp.RequiresToLogin {
		return nil, &Error{
			Type:    ErrorTypeLoginRequired,
			Message: "Instagram requires authentication to view this profile",
			Code:    http.StatusUnauthorized,
		}
	}
	if resp.Data.User == nil {
		return nil, &Error{Type: ErrorTypeNotFound, Message: "Profile not found", Code: http.StatusNotFound}
	}
	return toProfile(resp.Data.User), nil
}

// Posts returns a lazy iterator over the profile's timeline posts, newest
// first, paged through the GraphQL cursor.
func (c *Client) Posts(profile *Profile) *PostIterator {
	return newPostIterator(func(after string) ([]*Post, PageInfo, error) {
		var resp mediaQueryResponse
		if err := c.GetJSON(GetMediaURL(profile.UserID, after), &resp); err != nil {
			return nil, PageInfo{}, classify(err)
		}
		if resp.Data.User == nil {
			return nil, PageInfo{}, &Error{Type: ErrorTypeNotFound, Message: "Profile not found", Code: http.StatusNotFound}
		}
		conn := resp.Data.User.EdgeOwnerToTimelineMedia
		return toPosts(conn.Edges), conn.PageInfo, nil
	})
}

// ResolveHashtag resolves a hashtag by name.
func (c *Client) ResolveHashtag(tag string) (*Hashtag, error) {
	var resp tagResponse
	if err := c.GetJSON(GetTagMediaURL(tag, ""), &resp); err != nil {
		return nil, classify(err)
	}
	if resp.Data.Hashtag == nil {
		return nil, &Error{Type: ErrorTypeNotFound, Message: "Hashtag not found", Code: http.StatusNotFound}
	}
	return &Hashtag{
		Name:       resp.Data.Hashtag.Name,
		MediaCount: resp.Data.Hashtag.EdgeHashtagToMedia.Count,
	}, nil
}

// HashtagPosts returns a lazy iterator over a hashtag's recent posts.
func (c *Client) HashtagPosts(tag string) *PostIterator {
	return newPostIterator(func(after string) ([]*Post, PageInfo, error) {
		var resp tagResponse
		if err := c.GetJSON(GetTagMediaURL(tag, after), &resp); err != nil {
			return nil, PageInfo{}, classify(err)
		}
		if resp.Data.Hashtag == nil {
			return nil, PageInfo{}, &Error{Type: ErrorTypeNotFound, Message: "Hashtag not found", Code: http.StatusNotFound}
		}
		conn := resp.Data.Hashtag.EdgeHashtagToMedia
		return toPosts(conn.Edges), conn.PageInfo, nil
	})
}

// Stories fetches the user's current story items. Requires a session.
func (c *Client) Stories(userID string) ([]StoryItem, error) {
	var resp reelsMediaResponse
	if err := c.GetJSON(GetReelsMediaURL(userID), &resp); err != nil {
		return nil, classify(err)
	}

	var items []StoryItem
	for _, reel := range resp.ReelsMedia {
		for i := range reel.Items {
			items = append(items, toStoryItem(&reel.Items[i]))
		}
	}
	return items, nil
}

// Highlights fetches the user's highlight reels with their items. Requires
// a session.
func (c *Client) Highlights(userID string) ([]HighlightItem, error) {
	var tray highlightsTrayResponse
	if err := c.GetJSON(GetHighlightsTrayURL(userID), &tray); err != nil {
		return nil, classify(err)
	}

	var items []HighlightItem
	for _, reel := range tray.Tray {
		var resp reelsMediaResponse
		if err := c.GetJSON(GetReelsMediaURL("highlight:"+reel.ID), &resp); err != nil {
			return nil, classify(err)
		}
		for _, r := range resp.ReelsMedia {
			for i := range r.Items {
				items = append(items, HighlightItem{
					Title:     reel.Title,
					StoryItem: toStoryItem(&r.Items[i]),
				})
			}
		}
	}
	return items, nil
}

// LoginResult carries the credentials of a fresh login.
type LoginResult struct {
	UserID    string
	SessionID string
	CSRFToken string
}

// Login performs a web login with the bot account credentials and returns
// the resulting session cookies.
func (c *Client) Login(username, password string) (*LoginResult, error) {
	csrf, err := c.fetchCSRFToken()
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("enc_password", fmt.Sprintf("#PWD_INSTAGRAM_BROWSER:0:%d:%s", time.Now().Unix(), password))

	req, err := http.NewRequest(http.MethodPost, c.resolveURL(BaseURL+LoginEndpoint), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &Error{Type: ErrorTypeUnknown, Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-CSRFToken", csrf)
	req.Header.Set("Cookie", "csrftoken="+csrf)

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Type: ErrorTypeConnection, Message: fmt.Sprintf("failed to read login response: %v", err), Code: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.classifyHTTP(resp.StatusCode, body)
	}

	var login loginResponse
	if err := json.Unmarshal(body, &login); err != nil {
		return nil, &Error{Type: ErrorTypeUnknown, Message: fmt.Sprintf("failed to parse login response: %v", err), Code: resp.StatusCode}
	}
	if !login.Authenticated {
		msg := login.Message
		if msg == "" {
			msg = "authentication failed"
		}
		return nil, &Error{Type: ErrorTypeLoginRequired, Message: msg, Code: http.StatusUnauthorized}
	}

	result := &LoginResult{UserID: login.UserID, CSRFToken: csrf}
	for _, cookie := range resp.Cookies() {
		switch cookie.Name {
		case "sessionid":
			result.SessionID = cookie.Value
		case "csrftoken":
			result.CSRFToken = cookie.Value
		}
	}
	if result.SessionID == "" {
		return nil, &Error{Type: ErrorTypeUnknown, Message: "login succeeded but no session cookie was set", Code: resp.StatusCode}
	}
	return result, nil
}

// CurrentUser probes the session identity. An empty username with a nil
// error means the session carries no identity (anonymous or expired).
func (c *Client) CurrentUser() (string, error) {
	var resp currentUserResponse
	if err := c.GetJSON(c.baseURLFor(CurrentUserEndpoint), &resp); err != nil {
		if IsType(err, ErrorTypeLoginRequired) || IsType(err, ErrorTypeNotFound) {
			return "", nil
		}
		return "", err
	}
	if resp.User == nil {
		return "", nil
	}
	return resp.User.Username, nil
}

func (c *Client) fetchCSRFToken() (string, error) {
	var shared sharedDataResponse
	if err := c.GetJSON(c.baseURLFor(SharedDataEndpoint), &shared); err != nil {
		return "", err
	}
	if shared.Config.CSRFToken == "" {
		return "", &Error{Type: ErrorTypeUnknown, Message: "no csrf token in shared data"}
	}
	return shared.Config.CSRFToken, nil
}

func (c *Client) baseURLFor(endpoint string) string {
	return BaseURL + endpoint
}

func toPosts(edges []wireMediaEdge) []*Post {
	posts := make([]*Post, 0, len(edges))
	for i := range edges {
		posts = append(posts, toPost(&edges[i].Node))
	}
	return posts
}
