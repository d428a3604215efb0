// Package auth resolves and stores the bot account credentials the service
// logs in with. Resolution order: environment, system keychain, encrypted
// file.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Credentials are the bot account's login credentials.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Store saves and retrieves bot credentials in one backend.
type Store interface {
	Store(creds *Credentials) error
	Retrieve() (*Credentials, error)
	Delete() error
}

var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)

// Manager resolves credentials across backends, preferring the first store
// that has them, and writes to the first store that accepts them.
type Manager struct {
	stores []Store
}

// NewManager creates a credential manager with all available backends:
// environment first, then system keychain, then the encrypted file.
func NewManager() (*Manager, error) {
	stores := []Store{NewEnvironmentStore()}

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over explicit backends. Used by
// tests.
func NewManagerWithStores(stores ...Store) *Manager {
	return &Manager{stores: stores}
}

// Store saves credentials to the first writable backend.
func (m *Manager) Store(creds *Credentials) error {
	if creds == nil || creds.Username == "" || creds.Password == "" {
		return ErrInvalidCredentials
	}

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(creds); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Retrieve returns credentials from the first backend that has them.
func (m *Manager) Retrieve() (*Credentials, error) {
	for _, store := range m.stores {
		if creds, err := store.Retrieve(); err == nil && creds != nil {
			return creds, nil
		}
	}
	return nil, ErrCredentialsNotFound
}

// Delete removes credentials from every backend that has them.
func (m *Manager) Delete() error {
	var deleted bool
	var lastErr error
	for _, store := range m.stores {
		if err := store.Delete(); err == nil {
			deleted = true
		} else if !errors.Is(err, ErrCredentialsNotFound) && !errors.Is(err, ErrStoreUnavailable) {
			lastErr = err
		}
	}
	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	if !deleted {
		return ErrCredentialsNotFound
	}
	return nil
}

// Sanitize returns a copy with the password masked, for display.
func Sanitize(creds *Credentials) *Credentials {
	if creds == nil {
		return nil
	}
	return &Credentials{
		Username: creds.Username,
		Password: maskString(creds.Password),
	}
}

func maskString(s string) string {
	if len(s) <= 4 {
		return "********"
	}
	return s[:2] + "..." + s[len(s)-2:]
}

// getConfigDir returns the per-user configuration directory.
func getConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(base, "instaview")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}
