package auth

import "os"

// EnvironmentStore reads credentials from IG_BOT_USER / IG_BOT_PASS.
// It is read-only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment-variable credential store.
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Store(creds *Credentials) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Retrieve() (*Credentials, error) {
	username := os.Getenv("IG_BOT_USER")
	password := os.Getenv("IG_BOT_PASS")
	if username == "" || password == "" {
		return nil, ErrCredentialsNotFound
	}
	return &Credentials{Username: username, Password: password}, nil
}

func (e *EnvironmentStore) Delete() error {
	return ErrStoreUnavailable
}
