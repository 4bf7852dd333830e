package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// loadDotEnv loads ./.env and ~/.promptarena/.env when present. Variables
// already set in the process environment win.
func loadDotEnv() error {
	for _, path := range []string{".env", filepath.Join(Dir(), ".env")} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overlays PROMPTARENA_* variables on c.
func (c *Config) ApplyEnv() {
	c.API.APIKey = firstEnv(c.API.APIKey, "PROMPTARENA_API_KEY", "OPENAI_API_KEY")
	c.API.BaseURL = firstEnv(c.API.BaseURL, "PROMPTARENA_API_BASE_URL")
	c.API.Model = firstEnv(c.API.Model, "PROMPTARENA_MODEL")
	c.API.MaxTokens = envInt("PROMPTARENA_MAX_TOKENS", c.API.MaxTokens)
	c.Game.PromptTimeLimitSecs = envInt("PROMPTARENA_PROMPT_TIME_LIMIT", c.Game.PromptTimeLimitSecs)
	c.Storage.Backend = strings.ToLower(firstEnv(c.Storage.Backend, "PROMPTARENA_STORAGE"))
	c.Storage.DatabaseURL = firstEnv(c.Storage.DatabaseURL, "PROMPTARENA_DATABASE_URL", "DATABASE_URL")
	c.Leaderboard.SharedFile = firstEnv(c.Leaderboard.SharedFile, "PROMPTARENA_LEADERBOARD_FILE")
	c.Leaderboard.Bucket = firstEnv(c.Leaderboard.Bucket, "PROMPTARENA_LEADERBOARD_BUCKET")
	c.Leaderboard.Endpoint = firstEnv(c.Leaderboard.Endpoint, "PROMPTARENA_S3_ENDPOINT")
	c.Leaderboard.Region = firstEnv(c.Leaderboard.Region, "PROMPTARENA_S3_REGION")
	c.Leaderboard.AccessKeyID = firstEnv(c.Leaderboard.AccessKeyID, "PROMPTARENA_S3_ACCESS_KEY_ID")
	c.Leaderboard.SecretAccessKey = firstEnv(c.Leaderboard.SecretAccessKey, "PROMPTARENA_S3_SECRET_ACCESS_KEY")
	c.Server.AuthToken = firstEnv(c.Server.AuthToken, "PROMPTARENA_AUTH_TOKEN")
}

// firstEnv returns the first non-empty variable among keys, or fallback.
func firstEnv(fallback string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
