package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/quiz-backend/utils"
)

type TokenVerifier interface {
	VerifyToken(token string) (*utils.Claims, error)
}

// bearerToken reads "Authorization: Bearer <t>", falling back to X-Auth-Token.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		authHeader = c.GetHeader("X-Auth-Token")
	}
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

// OptionalAuthMiddleware stores the token's user_id in the context when a
// valid token is present. Anonymous and invalid tokens pass through.
func OptionalAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" || verifier == nil {
			c.Next()
			return
		}
		claims, err := verifier.VerifyToken(tokenString)
		if err != nil {
			c.Next()
			return
		}
		c.Set("user_id", claims.UserID)
		c.Next()
	}
}
