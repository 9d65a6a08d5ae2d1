package ws

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vnkhanh/quiz-backend/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// TokenVerifier resolves a session token to its claims.
type TokenVerifier interface {
	VerifyToken(token string) (*utils.Claims, error)
}

// HandleEvents upgrades to the live event feed. A valid ?token= ties the
// connection to its user; without one the client only gets broadcasts.
// ?types= limits the feed to the listed event types.
func HandleEvents(hub *Hub, verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := ""
		if token := c.Query("token"); token != "" && verifier != nil {
			claims, err := verifier.VerifyToken(token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid or expired token"})
				return
			}
			userID = claims.UserID
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("websocket upgrade failed:", err)
			return
		}
		// written before the pumps start, while this goroutine is the only writer
		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"connected"}`)); err != nil {
			conn.Close()
			return
		}
		hub.Register(conn, userID, splitTypes(c.Query("types")))
		log.Printf("events ws connected: user=%q\n", userID)
	}
}

// splitTypes parses ?types=a,b into event type names.
func splitTypes(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
