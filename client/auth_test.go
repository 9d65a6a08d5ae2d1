package client

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vnkhanh/quiz-backend/rpc"
)

type fakeAuthenticator struct {
	reply rpc.LoginResponse
	err   error
}

func (f fakeAuthenticator) Login(context.Context, string, string) (rpc.LoginResponse, error) {
	return f.reply, f.err
}

func okLogin(userID, name string) fakeAuthenticator {
	return fakeAuthenticator{reply: rpc.LoginResponse{
		Response: rpc.Response{Success: true},
		User:     &rpc.User{UserID: userID, Username: name},
		Token:    "tok-" + userID,
	}}
}

func TestAuthSessionPersistsAcrossRestarts(t *testing.T) {
	store := FileStore{Path: filepath.Join(t.TempDir(), "nested", "session.json")}
	s := NewAuthSession(okLogin("user001", "テスト太郎"), store)
	if err := s.Login(context.Background(), "テスト太郎", "test123"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	restored := NewAuthSession(fakeAuthenticator{}, store)
	if err := restored.Restore(); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	id, err := restored.Require()
	if err != nil {
		t.Fatalf("Require failed: %v", err)
	}
	if id.UserID != "user001" || restored.Token() != "tok-user001" {
		t.Fatalf("unexpected identity %+v", id)
	}

	if err := restored.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if restored.IsAuthenticated() {
		t.Fatalf("still authenticated after logout")
	}
	if _, err := os.Stat(store.Path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("session file should be removed, stat err = %v", err)
	}
}

func TestAuthSessionCorruptFileIsCleared(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	s := NewAuthSession(fakeAuthenticator{}, FileStore{Path: path})
	if err := s.Restore(); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if s.IsAuthenticated() {
		t.Fatalf("corrupt file must not yield an identity")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("corrupt file should be removed")
	}
	if _, err := s.Require(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestAuthSessionRejectedLoginKeepsIdentity(t *testing.T) {
	store := FileStore{Path: filepath.Join(t.TempDir(), "session.json")}
	s := NewAuthSession(okLogin("user001", "a"), store)
	if err := s.Login(context.Background(), "a", "pw"); err != nil {
		t.Fatal(err)
	}

	s.api = fakeAuthenticator{reply: rpc.LoginResponse{Response: rpc.Failure("wrong username or password")}}
	err := s.Login(context.Background(), "b", "bad")
	if err == nil || err.Error() != "wrong username or password" {
		t.Fatalf("unexpected error %v", err)
	}
	if u := s.User(); u == nil || u.UserID != "user001" {
		t.Fatalf("identity should be kept, got %+v", u)
	}
	if s.LastError() != "wrong username or password" {
		t.Fatalf("last error = %q", s.LastError())
	}

	s.api = fakeAuthenticator{err: ErrServiceUnavailable}
	if err := s.Login(context.Background(), "b", "pw"); !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	id, err := FileStore{Path: filepath.Join(t.TempDir(), "none.json")}.Load()
	if err != nil || id != nil {
		t.Fatalf("missing file should load as nil, got %v %v", id, err)
	}
}
