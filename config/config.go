package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration parameters.
type Config struct {
	DatabaseURL             string
	ServerPort              int
	CORSAllowedOrigins      []string
	LeaderboardHistoryLimit int
}

// Load reads configuration from environment variables, optionally seeded
// from a .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	origins := []string{"*"}
	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	historyLimit := 50
	if raw := os.Getenv("LEADERBOARD_HISTORY_LIMIT"); raw != "" {
		historyLimit, err = strconv.Atoi(raw)
		if err != nil || historyLimit < 1 {
			return nil, fmt.Errorf("LEADERBOARD_HISTORY_LIMIT must be a positive integer, got %q", raw)
		}
	}

	return &Config{
		DatabaseURL:             dbURL,
		ServerPort:              port,
		CORSAllowedOrigins:      origins,
		LeaderboardHistoryLimit: historyLimit,
	}, nil
}
