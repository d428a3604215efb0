// Package session owns the service's single bot-account login session:
// loading it from disk, validating it against the upstream identity probe,
// refreshing it with a fresh login, and persisting it atomically.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"instaview/pkg/instagram"
	"instaview/pkg/logger"
)

// revalidateAfter bounds how often a cached session is re-probed upstream.
const revalidateAfter = time.Minute

// Session is the persisted state of one authenticated bot identity.
type Session struct {
	Username    string    `json:"username"`
	UserID      string    `json:"user_id"`
	SessionID   string    `json:"session_id"`
	CSRFToken   string    `json:"csrf_token"`
	LoggedIn    bool      `json:"logged_in"`
	ValidatedAt time.Time `json:"validated_at"`
}

// Client is the part of the upstream client the manager drives.
type Client interface {
	SetSession(sessionID, csrfToken, userID string)
	ClearSession()
	CurrentUser() (string, error)
	Login(username, password string) (*instagram.LoginResult, error)
}

// Manager guards the process-wide session. All check-validate-login steps
// run under one mutex so concurrent requests never race to log in.
type Manager struct {
	mu       sync.Mutex
	username string
	password string
	path     string
	current  *Session
	logger   logger.Logger
}

// NewManager creates a session manager persisting to path.
func NewManager(botUsername, botPassword, path string, log logger.Logger) *Manager {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Manager{
		username: botUsername,
		password: botPassword,
		path:     path,
		logger:   log,
	}
}

// Ensure binds the client to a valid session when one is available. With
// requireLogin, a missing or invalid session triggers a fresh login; a
// failed login is logged, never returned, so callers must check the
// returned session's LoggedIn flag. Without requireLogin the client stays
// anonymous when no valid session exists.
func (m *Manager) Ensure(client Client, requireLogin bool) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.current
	if sess == nil {
		sess = m.load()
	}

	if sess != nil && sess.LoggedIn {
		client.SetSession(sess.SessionID, sess.CSRFToken, sess.UserID)
		if time.Since(sess.ValidatedAt) >= revalidateAfter {
			sess = m.validate(client, sess)
		}
	}

	if requireLogin && (sess == nil || !sess.LoggedIn) {
		sess = m.login(client)
	}

	if sess == nil {
		sess = &Session{Username: m.username}
	}
	m.current = sess
	return sess
}

// load reads the persisted session file, if any.
func (m *Manager) load() *Session {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.WithError(err).WithField("path", m.path).Warn("failed to read session file")
		}
		return nil
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		m.logger.WithError(err).WithField("path", m.path).Warn("failed to parse session file, deleting")
		m.delete()
		return nil
	}

	m.logger.InfoWithFields("loaded persisted session", map[string]interface{}{
		"username": sess.Username,
		"path":     m.path,
	})
	return &sess
}

// validate probes the upstream identity. A probe returning no identity
// means the session expired: the persisted copy is deleted and the client
// reverted to anonymous access.
func (m *Manager) validate(client Client, sess *Session) *Session {
	who, err := client.CurrentUser()
	if err != nil {
		// Transient failure; keep the session and retry on a later request.
		m.logger.WithError(err).Warn("session probe failed")
		return sess
	}
	if who == "" {
		m.logger.WarnWithFields("persisted session is invalid, deleting", map[string]interface{}{
			"username": sess.Username,
		})
		m.delete()
		client.ClearSession()
		return nil
	}

	sess.ValidatedAt = time.Now()
	if err := m.save(sess); err != nil {
		m.logger.WithError(err).Warn("failed to persist session validation time")
	}
	return sess
}

// login performs a fresh login and persists the result. Failures are
// logged and yield a not-logged-in session.
func (m *Manager) login(client Client) *Session {
	if m.username == "" || m.password == "" {
		m.logger.Warn("bot credentials not configured, cannot log in")
		return &Session{Username: m.username}
	}

	m.logger.InfoWithFields("not logged in, performing fresh login", map[string]interface{}{
		"username": m.username,
	})

	result, err := client.Login(m.username, m.password)
	if err != nil {
		m.logger.WithError(err).WithField("username", m.username).Error("bot login failed")
		return &Session{Username: m.username}
	}

	sess := &Session{
		Username:    m.username,
		UserID:      result.UserID,
		SessionID:   result.SessionID,
		CSRFToken:   result.CSRFToken,
		LoggedIn:    true,
		ValidatedAt: time.Now(),
	}
	client.SetSession(sess.SessionID, sess.CSRFToken, sess.UserID)

	if err := m.save(sess); err != nil {
		m.logger.WithError(err).Error("failed to persist session")
	} else {
		m.logger.InfoWithFields("logged in and persisted session", map[string]interface{}{
			"username": m.username,
			"path":     m.path,
		})
	}
	return sess
}

// save writes the session file atomically via a temp file and rename.
func (m *Manager) save(sess *Session) error {
	tempPath := m.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary session file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(sess); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync session file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close session file: %w", err)
	}

	if err := os.Rename(tempPath, m.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// delete discards the persisted session and the in-memory copy.
func (m *Manager) delete() {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		m.logger.WithError(err).WithField("path", m.path).Warn("failed to delete session file")
	}
	m.current = nil
}

// Invalidate discards the current session entirely. The next Ensure call
// starts from scratch.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delete()
}

// BotUsername returns the configured bot account name.
func (m *Manager) BotUsername() string {
	return m.username
}

// FilePath returns the persisted session file path.
func (m *Manager) FilePath() string {
	return m.path
}

// FileExists reports whether a persisted session file is present.
func (m *Manager) FileExists() bool {
	_, err := os.Stat(m.path)
	return err == nil
}
