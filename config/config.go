package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port          string
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPath        string
	DBLogLevel    string
	JWTSecret     string
	JWTTTL        time.Duration
	AdminKey      string
	CORSOrigins   []string
	RedisAddr     string
	RedisPassword string
	StatsCacheTTL time.Duration
	Seed          bool
}

// Load reads the environment. Call godotenv.Load first to pick up .env.
func Load() (Config, error) {
	cfg := Config{
		Port:          getenvDefault("PORT", "8080"),
		DBDriver:      strings.ToLower(getenvDefault("DB_DRIVER", "sqlite")),
		DBHost:        getenvDefault("DB_HOST", "localhost"),
		DBPort:        getenvDefault("DB_PORT", "5432"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        getenvDefault("DB_NAME", "quiz"),
		DBPath:        getenvDefault("DB_PATH", "quiz.db"),
		DBLogLevel:    getenvDefault("DB_LOG_LEVEL", "warn"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminKey:      os.Getenv("ADMIN_KEY"),
		CORSOrigins:   splitList(getenvDefault("CORS_ORIGINS", "http://localhost:5173")),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	var err error
	if cfg.JWTTTL, err = durationEnv("JWT_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.StatsCacheTTL, err = durationEnv("STATS_CACHE_TTL", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Seed, err = boolEnv("SEED", true); err != nil {
		return Config{}, err
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite", "memory":
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be postgres, sqlite or memory, got %q", cfg.DBDriver)
	}
	if cfg.JWTSecret == "" {
		log.Println("JWT_SECRET not set, using an insecure development secret")
		cfg.JWTSecret = "dev-secret-change-me"
	}
	return cfg, nil
}

// PostgresDSN builds the DSN from the DB_* variables.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Tokyo",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
