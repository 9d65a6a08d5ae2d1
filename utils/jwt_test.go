package utils

import (
	"errors"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	j := NewJWT("secret", time.Hour)
	tok, err := j.GenerateToken("user001")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	claims, err := j.VerifyToken(tok)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if claims.UserID != "user001" {
		t.Fatalf("unexpected user %q", claims.UserID)
	}
}

func TestJWTRejects(t *testing.T) {
	j := NewJWT("secret", time.Hour)
	tok, _ := j.GenerateToken("user001")

	if _, err := NewJWT("other", time.Hour).VerifyToken(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected wrong secret rejected, got %v", err)
	}

	expired := NewJWT("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _ := expired.GenerateToken("user001")
	if _, err := j.VerifyToken(old); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}
