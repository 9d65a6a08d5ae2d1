package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vnkhanh/quiz-backend/rpc"
)

var ErrNotAuthenticated = errors.New("not logged in")

// Identity is what survives a restart.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token,omitempty"`
}

// IdentityStore persists the logged-in identity between runs.
type IdentityStore interface {
	Load() (*Identity, error)
	Save(Identity) error
	Clear() error
}

type Authenticator interface {
	Login(ctx context.Context, username, password string) (rpc.LoginResponse, error)
}

// AuthSession owns the current identity. Dependents read it through User
// and Token instead of a package-level variable.
type AuthSession struct {
	mu        sync.RWMutex
	api       Authenticator
	store     IdentityStore
	identity  *Identity
	lastError string
}

func NewAuthSession(api Authenticator, store IdentityStore) *AuthSession {
	return &AuthSession{api: api, store: store}
}

// Restore loads a saved identity. An unreadable blob is cleared and the
// session starts logged out.
func (s *AuthSession) Restore() error {
	id, err := s.store.Load()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.identity = nil
		if clearErr := s.store.Clear(); clearErr != nil {
			return fmt.Errorf("clear corrupt session: %w", clearErr)
		}
		return nil
	}
	if id != nil && id.UserID == "" {
		id = nil
	}
	s.identity = id
	return nil
}

// Login calls the backend. When the server rejects the credentials the
// previous identity is kept and the reply message is returned as an error.
func (s *AuthSession) Login(ctx context.Context, username, password string) error {
	resp, err := s.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if !resp.Success || resp.User == nil {
		msg := resp.Error
		if msg == "" {
			msg = "login failed"
		}
		s.mu.Lock()
		s.lastError = msg
		s.mu.Unlock()
		return errors.New(msg)
	}

	id := Identity{UserID: resp.User.UserID, Username: resp.User.Username, Token: resp.Token}
	s.mu.Lock()
	s.identity = &id
	s.lastError = ""
	s.mu.Unlock()
	return s.store.Save(id)
}

func (s *AuthSession) Logout() error {
	s.mu.Lock()
	s.identity = nil
	s.lastError = ""
	s.mu.Unlock()
	return s.store.Clear()
}

// User returns a copy of the identity, or nil when logged out.
func (s *AuthSession) User() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

func (s *AuthSession) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return ""
	}
	return s.identity.Token
}

func (s *AuthSession) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

func (s *AuthSession) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Require gates screens that need a user.
func (s *AuthSession) Require() (Identity, error) {
	id := s.User()
	if id == nil {
		return Identity{}, ErrNotAuthenticated
	}
	return *id, nil
}

// FileStore keeps the identity as a JSON file.
type FileStore struct {
	Path string
}

// DefaultSessionPath is under the user config dir.
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "supergenius", "session.json")
}

func (f FileStore) Load() (*Identity, error) {
	raw, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	return &id, nil
}

func (f FileStore) Save(id Identity) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, raw, 0o600)
}

func (f FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
