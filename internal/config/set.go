package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type setter func(c *Config, v string) error

var setters = map[string]setter{
	"api.base_url":         func(c *Config, v string) error { c.API.BaseURL = v; return nil },
	"api.chat_endpoint":    func(c *Config, v string) error { c.API.ChatEndpoint = v; return nil },
	"api.model":            func(c *Config, v string) error { c.API.Model = v; return nil },
	"api.key":              func(c *Config, v string) error { c.API.APIKey = v; return nil },
	"api.max_tokens":       intSetter(func(c *Config) *int { return &c.API.MaxTokens }),
	"api.timeout_secs":     intSetter(func(c *Config) *int { return &c.API.TimeoutSecs }),
	"api.temperature":      floatSetter(func(c *Config) *float64 { return &c.API.Temperature }),
	"game.countdown_secs":  intSetter(func(c *Config) *int { return &c.Game.ScenarioCountdownSecs }),
	"game.time_limit_secs": intSetter(func(c *Config) *int { return &c.Game.PromptTimeLimitSecs }),
	"game.scenarios_file":  func(c *Config, v string) error { c.Game.ScenariosFile = v; return nil },
	"storage.backend": func(c *Config, v string) error {
		v = strings.ToLower(v)
		switch v {
		case BackendFile, BackendMemory, BackendPostgres:
			c.Storage.Backend = v
			return nil
		}
		return fmt.Errorf("unknown storage backend %q (want file, memory or postgres)", v)
	},
	"storage.database_url":   func(c *Config, v string) error { c.Storage.DatabaseURL = v; return nil },
	"leaderboard.file":       func(c *Config, v string) error { c.Leaderboard.SharedFile = v; return nil },
	"leaderboard.bucket":     func(c *Config, v string) error { c.Leaderboard.Bucket = v; return nil },
	"leaderboard.object_key": func(c *Config, v string) error { c.Leaderboard.ObjectKey = v; return nil },
	"leaderboard.endpoint":   func(c *Config, v string) error { c.Leaderboard.Endpoint = v; return nil },
	"leaderboard.region":     func(c *Config, v string) error { c.Leaderboard.Region = v; return nil },
	"server.host":            func(c *Config, v string) error { c.Server.Host = v; return nil },
	"server.port":            intSetter(func(c *Config) *int { return &c.Server.Port }),
	"server.refresh_secs":    intSetter(func(c *Config) *int { return &c.Server.RefreshSecs }),
}

// Set assigns a dotted key such as "api.model".
func (c *Config) Set(key, value string) error {
	fn, ok := setters[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	return fn(c, strings.TrimSpace(value))
}

// Keys lists the keys accepted by Set.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func intSetter(field func(*Config) *int) setter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("want a non-negative integer, got %q", v)
		}
		*field(c) = n
		return nil
	}
}

func floatSetter(field func(*Config) *float64) setter {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 2 {
			return fmt.Errorf("want a number between 0 and 2, got %q", v)
		}
		*field(c) = f
		return nil
	}
}
