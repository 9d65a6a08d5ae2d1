package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
)

// AdminKeyMiddleware flags the request as admin when X-Admin-Key matches.
// With an empty key every request is admin.
func AdminKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-Admin-Key")
		admin := key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) == 1
		c.Set("admin", admin)
		c.Next()
	}
}

func IsAdmin(c *gin.Context) bool {
	v, ok := c.Get("admin")
	if !ok {
		return true
	}
	admin, _ := v.(bool)
	return admin
}
