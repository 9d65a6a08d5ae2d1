package services

import (
	"context"
	"errors"
	"testing"

	"github.com/vnkhanh/quiz-backend/repository"
)

type staticTokens struct{}

func (staticTokens) GenerateToken(userID string) (string, error) { return "tok-" + userID, nil }

func TestAddUserNumbering(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(repository.NewMemoryStore(), Options{})

	for i, name := range []string{"alice", "bob"} {
		u, err := svc.Accounts.AddUser(ctx, name, "pw")
		if err != nil {
			t.Fatalf("AddUser failed: %v", err)
		}
		want := []string{"user001", "user002"}[i]
		if u.UserID != want {
			t.Fatalf("expected %s, got %s", want, u.UserID)
		}
	}
	if _, err := svc.Accounts.AddUser(ctx, "alice", "other"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
	if _, err := svc.Accounts.AddUser(ctx, "", "pw"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNextUserID(t *testing.T) {
	if got := NextUserID([]string{"user009", "admin", "user010"}); got != "user011" {
		t.Fatalf("expected user011, got %s", got)
	}
	if got := NextUserID(nil); got != "user001" {
		t.Fatalf("expected user001, got %s", got)
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newTestServices(store, Options{Tokens: staticTokens{}})
	if _, err := svc.Accounts.AddUser(ctx, "alice", "secret"); err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}

	u, token, err := svc.Accounts.Login(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if u.UserID != "user001" || token != "tok-user001" {
		t.Fatalf("unexpected login %+v %q", u, token)
	}
	stored, _ := store.FindUserByUsername(ctx, "alice")
	if stored.LastLogin == nil || !stored.LastLogin.Equal(fixedNow) {
		t.Fatalf("last login not updated: %+v", stored.LastLogin)
	}

	for _, creds := range [][2]string{{"alice", "wrong"}, {"mallory", "secret"}} {
		if _, _, err := svc.Accounts.Login(ctx, creds[0], creds[1]); !errors.Is(err, ErrAuth) {
			t.Fatalf("Login(%v): expected ErrAuth, got %v", creds, err)
		}
	}
}
