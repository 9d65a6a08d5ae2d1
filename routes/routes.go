package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/quiz-backend/controllers"
	"github.com/vnkhanh/quiz-backend/middleware"
	"github.com/vnkhanh/quiz-backend/services"
	"github.com/vnkhanh/quiz-backend/utils"
	"github.com/vnkhanh/quiz-backend/ws"
)

type Deps struct {
	Services *services.Services
	Store    controllers.Pinger
	Hub      *ws.Hub
	Tokens   *utils.JWT
	AdminKey string
	Logger   *slog.Logger
}

func SetupRouter(r *gin.Engine, d Deps) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck(d.Store, d.Hub))

	rpcCtl := controllers.NewRPCController(d.Services, d.Logger)
	api := r.Group("/")
	api.Use(middleware.OptionalAuthMiddleware(d.Tokens), middleware.AdminKeyMiddleware(d.AdminKey))
	{
		api.POST("/api", rpcCtl.Handle)
		// same endpoint under the path older clients post to
		api.POST("/exec", rpcCtl.Handle)
	}

	if d.Hub != nil {
		r.GET("/ws/events", ws.HandleEvents(d.Hub, d.Tokens))
	}
	return r
}
