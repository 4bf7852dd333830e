package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvHome overrides the data directory (default ~/.promptarena).
const EnvHome = "PROMPTARENA_HOME"

// Storage backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// APIConfig describes the chat completion endpoint used for evaluation.
type APIConfig struct {
	BaseURL      string  `json:"base_url"`
	ChatEndpoint string  `json:"chat_endpoint"`
	Model        string  `json:"model"`
	MaxTokens    int     `json:"max_tokens"`
	Temperature  float64 `json:"temperature"`
	APIKey       string  `json:"api_key,omitempty"`
	TimeoutSecs  int     `json:"timeout_secs"`
}

// GameConfig holds round timings and prompt length limits.
type GameConfig struct {
	ScenarioCountdownSecs int    `json:"scenario_countdown_secs"`
	PromptTimeLimitSecs   int    `json:"prompt_time_limit_secs"`
	TimerWarningSecs      int    `json:"timer_warning_secs"`
	TimerDangerSecs       int    `json:"timer_danger_secs"`
	MinPromptLength       int    `json:"min_prompt_length"`
	MaxPromptLength       int    `json:"max_prompt_length"`
	ScenariosFile         string `json:"scenarios_file,omitempty"` // replaces the embedded catalog
}

// StorageConfig selects where profile and history blobs live.
type StorageConfig struct {
	Backend     string `json:"backend"`                // "file", "memory" or "postgres"
	DatabaseURL string `json:"database_url,omitempty"` // postgres DSN
}

// LeaderboardConfig describes the shared leaderboard exchange.
type LeaderboardConfig struct {
	SharedFile      string `json:"shared_file,omitempty"`
	Bucket          string `json:"bucket,omitempty"`
	ObjectKey       string `json:"object_key,omitempty"`
	Endpoint        string `json:"endpoint,omitempty"` // S3-compatible endpoint, e.g. R2
	Region          string `json:"region,omitempty"`
	AccessKeyID     string `json:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty"`
}

// ServerConfig holds `promptarena serve` defaults.
type ServerConfig struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	AuthToken   string `json:"auth_token,omitempty"`
	RefreshSecs int    `json:"refresh_secs,omitempty"` // 0 disables remote leaderboard refresh
}

// Config is the user-level configuration stored in ~/.promptarena/config.json.
type Config struct {
	API         APIConfig         `json:"api"`
	Game        GameConfig        `json:"game"`
	Storage     StorageConfig     `json:"storage"`
	Leaderboard LeaderboardConfig `json:"leaderboard"`
	Server      ServerConfig      `json:"server"`
}

// Defaults returns the stock configuration.
func Defaults() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:      "https://api.openai.com/v1",
			ChatEndpoint: "/chat/completions",
			Model:        "gpt-4o",
			MaxTokens:    2000,
			Temperature:  0.7,
			TimeoutSecs:  60,
		},
		Game: GameConfig{
			ScenarioCountdownSecs: 15,
			PromptTimeLimitSecs:   120,
			TimerWarningSecs:      30,
			TimerDangerSecs:       10,
			MinPromptLength:       10,
			MaxPromptLength:       2000,
		},
		Storage: StorageConfig{Backend: BackendFile},
		Leaderboard: LeaderboardConfig{
			ObjectKey: "promptarena/leaderboard.json",
			Region:    "auto",
		},
		Server: ServerConfig{Host: "127.0.0.1", Port: 8765},
	}
}

// Dir returns the data directory (~/.promptarena), creating it if needed.
func Dir() string {
	dir := strings.TrimSpace(os.Getenv(EnvHome))
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.TempDir()
		}
		dir = filepath.Join(home, ".promptarena")
	}
	os.MkdirAll(dir, 0o755)
	return dir
}

func configPath() string {
	return filepath.Join(Dir(), "config.json")
}

// LoadFile reads config.json over the defaults, without environment overrides.
// A missing file yields the defaults.
func LoadFile() (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(configPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// Load reads config.json, then .env files, then PROMPTARENA_* variables.
func Load() (*Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return nil, err
	}
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// Save writes cfg to ~/.promptarena/config.json.
func Save(cfg *Config) error {
	if cfg == nil {
		cfg = Defaults()
	}
	cfg.fillDefaults()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	tmp := configPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return os.Rename(tmp, configPath())
}

// fillDefaults replaces zero values left by a partial config file.
func (c *Config) fillDefaults() {
	d := Defaults()
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.API.ChatEndpoint == "" {
		c.API.ChatEndpoint = d.API.ChatEndpoint
	}
	if c.API.Model == "" {
		c.API.Model = d.API.Model
	}
	if c.API.MaxTokens <= 0 {
		c.API.MaxTokens = d.API.MaxTokens
	}
	if c.API.TimeoutSecs <= 0 {
		c.API.TimeoutSecs = d.API.TimeoutSecs
	}
	g := &c.Game
	if g.ScenarioCountdownSecs <= 0 {
		g.ScenarioCountdownSecs = d.Game.ScenarioCountdownSecs
	}
	if g.PromptTimeLimitSecs <= 0 {
		g.PromptTimeLimitSecs = d.Game.PromptTimeLimitSecs
	}
	if g.TimerWarningSecs <= 0 {
		g.TimerWarningSecs = d.Game.TimerWarningSecs
	}
	if g.TimerDangerSecs <= 0 {
		g.TimerDangerSecs = d.Game.TimerDangerSecs
	}
	if g.MinPromptLength <= 0 {
		g.MinPromptLength = d.Game.MinPromptLength
	}
	if g.MaxPromptLength <= 0 {
		g.MaxPromptLength = d.Game.MaxPromptLength
	}
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = d.Storage.Backend
	}
	if c.Leaderboard.ObjectKey == "" {
		c.Leaderboard.ObjectKey = d.Leaderboard.ObjectKey
	}
	if c.Leaderboard.Region == "" {
		c.Leaderboard.Region = d.Leaderboard.Region
	}
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port <= 0 {
		c.Server.Port = d.Server.Port
	}
}

// ChatURL joins the base URL and chat endpoint.
func (a APIConfig) ChatURL() string {
	return strings.TrimRight(a.BaseURL, "/") + "/" + strings.TrimLeft(a.ChatEndpoint, "/")
}
