package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instaview/pkg/instagram"
	"instaview/pkg/logger"
)

// fakeClient records session calls and plays back scripted results.
type fakeClient struct {
	mu sync.Mutex

	sessionID   string
	cleared     bool
	currentUser string
	currentErr  error
	loginResult *instagram.LoginResult
	loginErr    error
	loginCalls  int
}

func (f *fakeClient) SetSession(sessionID, csrfToken, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionID = sessionID
	f.cleared = false
}

func (f *fakeClient) ClearSession() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionID = ""
	f.cleared = true
}

func (f *fakeClient) CurrentUser() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentUser, f.currentErr
}

func (f *fakeClient) Login(username, password string) (*instagram.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	return f.loginResult, f.loginErr
}

func sessionPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "bot.session.json")
}

func TestEnsureAnonymous(t *testing.T) {
	// Without requireLogin and with no persisted session the client stays
	// anonymous.
	m := NewManager("bot", "secret", sessionPath(t), logger.NewTestLogger())
	client := &fakeClient{}

	sess := m.Ensure(client, false)
	require.NotNil(t, sess)
	assert.False(t, sess.LoggedIn)
	assert.Empty(t, client.sessionID)
	assert.Equal(t, 0, client.loginCalls)
}

func TestEnsureLogsInWhenRequired(t *testing.T) {
	path := sessionPath(t)
	m := NewManager("bot", "secret", path, logger.NewTestLogger())
	client := &fakeClient{
		loginResult: &instagram.LoginResult{UserID: "42", SessionID: "sess1", CSRFToken: "csrf1"},
	}

	sess := m.Ensure(client, true)
	require.NotNil(t, sess)
	assert.True(t, sess.LoggedIn)
	assert.Equal(t, "sess1", sess.SessionID)
	assert.Equal(t, "sess1", client.sessionID)
	assert.Equal(t, 1, client.loginCalls)

	// The session must be persisted.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var persisted Session
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, "bot", persisted.Username)
	assert.Equal(t, "sess1", persisted.SessionID)
	assert.True(t, persisted.LoggedIn)
}

func TestEnsureReusesCachedSession(t *testing.T) {
	m := NewManager("bot", "secret", sessionPath(t), logger.NewTestLogger())
	client := &fakeClient{
		loginResult: &instagram.LoginResult{UserID: "42", SessionID: "sess1", CSRFToken: "csrf1"},
		currentUser: "bot",
	}

	m.Ensure(client, true)
	m.Ensure(client, true)
	assert.Equal(t, 1, client.loginCalls)
}

func TestEnsureLoadsPersistedSession(t *testing.T) {
	path := sessionPath(t)
	persisted := Session{
		Username:    "bot",
		UserID:      "42",
		SessionID:   "sess-disk",
		CSRFToken:   "csrf-disk",
		LoggedIn:    true,
		ValidatedAt: time.Now(),
	}
	data, err := json.Marshal(persisted)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	m := NewManager("bot", "secret", path, logger.NewTestLogger())
	client := &fakeClient{}

	sess := m.Ensure(client, true)
	assert.True(t, sess.LoggedIn)
	assert.Equal(t, "sess-disk", client.sessionID)
	assert.Equal(t, 0, client.loginCalls)
}

func TestEnsureDeletesInvalidSession(t *testing.T) {
	path := sessionPath(t)
	persisted := Session{
		Username:  "bot",
		SessionID: "sess-stale",
		LoggedIn:  true,
		// Old enough to force a probe.
		ValidatedAt: time.Now().Add(-time.Hour),
	}
	data, err := json.Marshal(persisted)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	m := NewManager("bot", "secret", path, logger.NewTestLogger())
	// Probe yields no identity: the session expired upstream.
	client := &fakeClient{
		currentUser: "",
		loginResult: &instagram.LoginResult{UserID: "42", SessionID: "sess-new", CSRFToken: "csrf-new"},
	}

	sess := m.Ensure(client, true)
	assert.True(t, sess.LoggedIn)
	assert.Equal(t, "sess-new", sess.SessionID)
	assert.Equal(t, 1, client.loginCalls)
}

func TestEnsureKeepsSessionOnTransientProbeFailure(t *testing.T) {
	path := sessionPath(t)
	persisted := Session{
		Username:    "bot",
		SessionID:   "sess-disk",
		LoggedIn:    true,
		ValidatedAt: time.Now().Add(-time.Hour),
	}
	data, err := json.Marshal(persisted)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	m := NewManager("bot", "secret", path, logger.NewTestLogger())
	client := &fakeClient{currentErr: errors.New("upstream unreachable")}

	sess := m.Ensure(client, true)
	assert.True(t, sess.LoggedIn)
	assert.Equal(t, "sess-disk", sess.SessionID)
	assert.Equal(t, 0, client.loginCalls)
	assert.True(t, m.FileExists())
}

func TestEnsureLoginFailure(t *testing.T) {
	m := NewManager("bot", "secret", sessionPath(t), logger.NewTestLogger())
	client := &fakeClient{loginErr: errors.New("bad credentials")}

	// A failed login never panics or errors; the caller sees LoggedIn false.
	sess := m.Ensure(client, true)
	require.NotNil(t, sess)
	assert.False(t, sess.LoggedIn)
	assert.False(t, m.FileExists())
}

func TestEnsureWithoutCredentials(t *testing.T) {
	log := logger.NewTestLogger()
	m := NewManager("", "", sessionPath(t), log)
	client := &fakeClient{}

	sess := m.Ensure(client, true)
	require.NotNil(t, sess)
	assert.False(t, sess.LoggedIn)
	assert.Equal(t, 0, client.loginCalls)
	assert.True(t, log.HasMessage("bot credentials not configured, cannot log in"))
}

func TestEnsureDeletesCorruptFile(t *testing.T) {
	path := sessionPath(t)
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	m := NewManager("bot", "secret", path, logger.NewTestLogger())
	client := &fakeClient{}

	sess := m.Ensure(client, false)
	assert.False(t, sess.LoggedIn)
	assert.False(t, m.FileExists())
}

func TestInvalidate(t *testing.T) {
	path := sessionPath(t)
	m := NewManager("bot", "secret", path, logger.NewTestLogger())
	client := &fakeClient{
		loginResult: &instagram.LoginResult{UserID: "42", SessionID: "sess1", CSRFToken: "csrf1"},
	}

	m.Ensure(client, true)
	require.True(t, m.FileExists())

	m.Invalidate()
	assert.False(t, m.FileExists())

	// The next privileged Ensure logs in again.
	m.Ensure(client, true)
	assert.Equal(t, 2, client.loginCalls)
}

func TestEnsureConcurrent(t *testing.T) {
	m := NewManager("bot", "secret", sessionPath(t), logger.NewTestLogger())
	client := &fakeClient{
		loginResult: &instagram.LoginResult{UserID: "42", SessionID: "sess1", CSRFToken: "csrf1"},
		currentUser: "bot",
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess := m.Ensure(client, true)
			assert.True(t, sess.LoggedIn)
		}()
	}
	wg.Wait()

	// The mutex serializes the login; only one may happen.
	assert.Equal(t, 1, client.loginCalls)
}
