package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/vnkhanh/quiz-backend/cache"
	"github.com/vnkhanh/quiz-backend/config"
	"github.com/vnkhanh/quiz-backend/middleware"
	"github.com/vnkhanh/quiz-backend/routes"
	"github.com/vnkhanh/quiz-backend/services"
	"github.com/vnkhanh/quiz-backend/utils"
	"github.com/vnkhanh/quiz-backend/ws"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	store, closeStore, err := config.OpenStore(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer closeStore()

	hub := ws.NewHub()
	tokens := utils.NewJWT(cfg.JWTSecret, cfg.JWTTTL)
	opts := services.Options{
		Logger:   logger,
		Tokens:   tokens,
		Notifier: hub,
	}

	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, stats are computed on every request", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer client.Close()
			opts.Cache = cache.NewRedisStats(client, cfg.StatsCacheTTL, logger)
			logger.Info("stats cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.StatsCacheTTL.String())
		}
	}

	svc := services.New(store, opts)
	if cfg.Seed {
		if err := config.Seed(context.Background(), store, svc, logger); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	r := gin.New()
	r.Use(gin.Logger(), middleware.Recovery(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Admin-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	routes.SetupRouter(r, routes.Deps{
		Services: svc,
		Store:    store,
		Hub:      hub,
		Tokens:   tokens,
		AdminKey: cfg.AdminKey,
		Logger:   logger,
	})

	r.GET("/", func(c *gin.Context) {
		c.String(200, "Quiz server is running")
	})

	logger.Info("server starting", "port", cfg.Port, "db_driver", cfg.DBDriver)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
