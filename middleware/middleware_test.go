package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/quiz-backend/utils"
)

func init() { gin.SetMode(gin.TestMode) }

func TestOptionalAuth(t *testing.T) {
	jwt := utils.NewJWT("secret", time.Hour)
	token, _ := jwt.GenerateToken("user007")

	r := gin.New()
	r.Use(OptionalAuthMiddleware(jwt))
	r.GET("/who", func(c *gin.Context) {
		id, _ := c.Get("user_id")
		c.String(http.StatusOK, "%v", id)
	})

	tests := []struct {
		name   string
		header string
		value  string
		want   string
	}{
		{"bearer", "Authorization", "Bearer " + token, "user007"},
		{"x-auth-token", "X-Auth-Token", "bearer " + token, "user007"},
		{"anonymous", "", "", "<nil>"},
		{"garbage", "Authorization", "Bearer nope", "<nil>"},
		{"wrong scheme", "Authorization", "Basic " + token, "<nil>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/who", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Body.String() != tc.want {
				t.Fatalf("got %q, want %q", w.Body.String(), tc.want)
			}
		})
	}
}

func TestAdminKey(t *testing.T) {
	r := gin.New()
	r.Use(AdminKeyMiddleware("k3y"))
	r.GET("/", func(c *gin.Context) {
		if IsAdmin(c) {
			c.String(http.StatusOK, "admin")
			return
		}
		c.String(http.StatusOK, "user")
	})

	for header, want := range map[string]string{"k3y": "admin", "nope": "user", "": "user"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Admin-Key", header)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Body.String() != want {
			t.Fatalf("key %q: got %q, want %q", header, w.Body.String(), want)
		}
	}
}

func TestRecoveryKeepsEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(slog.New(slog.DiscardHandler)))
	r.POST("/api", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["success"] != false || body["error"] == "" {
		t.Fatalf("unexpected body %v", body)
	}
}
