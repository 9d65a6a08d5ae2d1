package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vnkhanh/quiz-backend/models"
	"github.com/vnkhanh/quiz-backend/repository"
)

var userIDPattern = regexp.MustCompile(`^user(\d+)$`)

// Accounts compares passwords as stored. There is no hashing.
type Accounts struct {
	users  repository.UserRepository
	tokens TokenIssuer
	now    func() time.Time
	log    *slog.Logger
}

func (a *Accounts) Login(ctx context.Context, username, password string) (models.User, string, error) {
	u, err := a.users.FindUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && u.Password != password) {
		return models.User{}, "", authFailed("wrong username or password")
	}
	if err != nil {
		return models.User{}, "", fmt.Errorf("login: %w", err)
	}

	if err := a.users.TouchLastLogin(ctx, u.UserID, a.now()); err != nil {
		a.log.WarnContext(ctx, "last login update failed", "user_id", u.UserID, "error", err)
	}

	var token string
	if a.tokens != nil {
		if token, err = a.tokens.GenerateToken(u.UserID); err != nil {
			return models.User{}, "", fmt.Errorf("login token: %w", err)
		}
	}
	return u, token, nil
}

// AddUser creates a user with the next userNNN id.
func (a *Accounts) AddUser(ctx context.Context, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.User{}, invalid("username and password are required")
	}
	if _, err := a.users.FindUserByUsername(ctx, username); err == nil {
		return models.User{}, invalid("username %q is already taken", username)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return models.User{}, fmt.Errorf("add user: %w", err)
	}

	ids, err := a.users.UserIDs(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("add user: %w", err)
	}
	u := models.User{
		UserID:    NextUserID(ids),
		Username:  username,
		Password:  password,
		CreatedAt: a.now(),
	}
	if err := a.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return models.User{}, invalid("username %q is already taken", username)
		}
		return models.User{}, fmt.Errorf("add user: %w", err)
	}
	a.log.InfoContext(ctx, "user added", "user_id", u.UserID)
	return u, nil
}

// NextUserID continues the userNNN sequence after the highest existing id.
func NextUserID(existing []string) string {
	maxN := 0
	for _, id := range existing {
		m := userIDPattern.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > maxN {
			maxN = n
		}
	}
	return fmt.Sprintf("user%03d", maxN+1)
}
