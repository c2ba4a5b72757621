package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	JWTSecret       string
	JWTIssuer       string
	AccessTTLMin    int
	RefreshTTLHours int

	MeilisearchHost   string
	MeilisearchAPIKey string
	ReindexCron       string
}

// Load reads environment variables, optionally from a .env file if present.
func Load() Config {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	return Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),

		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change"),
		JWTIssuer:       getEnv("JWT_ISSUER", "jobport"),
		AccessTTLMin:    getEnvInt("ACCESS_TTL_MINUTES", 15),
		RefreshTTLHours: getEnvInt("REFRESH_TTL_HOURS", 24*7),

		MeilisearchHost:   os.Getenv("MEILISEARCH_HOST"),
		MeilisearchAPIKey: os.Getenv("MEILISEARCH_API_KEY"),
		ReindexCron:       getEnv("REINDEX_CRON", "17 3 * * *"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
