package cli

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"strings"
	"time"

	"github.com/agusx1211/promptarena/internal/battle"
	"github.com/agusx1211/promptarena/internal/catalog"
	"github.com/agusx1211/promptarena/internal/config"
	"github.com/agusx1211/promptarena/internal/debug"
	"github.com/agusx1211/promptarena/internal/evaluator"
	"github.com/agusx1211/promptarena/internal/llm"
	"github.com/agusx1211/promptarena/internal/profile"
	"github.com/agusx1211/promptarena/internal/prompt"
	"github.com/agusx1211/promptarena/internal/storage"
)

// app bundles the collaborators a command works with.
type app struct {
	cfg     *config.Config
	kv      *storage.Store
	catalog *catalog.Catalog
	engine  *battle.Engine
	session *battle.Session
}

// openApp loads the configuration and wires storage, the evaluator and the
// battle engine. A missing profile is not an error; see requireProfile.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	kv, err := storage.OpenConfigured(cfg.Storage, config.Dir(), storageOwner())
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	if !kv.Available() {
		fmt.Fprintf(os.Stderr, "%sWarning: storage is unavailable; progress will not be saved.%s\n", colorYellow, colorReset)
	}

	cat, err := loadCatalog(cfg.Game)
	if err != nil {
		return nil, err
	}

	eng := battle.NewEngine(kv, newEvaluator(cfg.API), cat)
	eng.Timings = battle.TimingsFromConfig(cfg.Game)
	eng.Limits = prompt.Limits{Min: cfg.Game.MinPromptLength, Max: cfg.Game.MaxPromptLength}

	p, err := eng.Profiles.Load()
	if err != nil && !errors.Is(err, profile.ErrNoProfile) {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return &app{
		cfg:     cfg,
		kv:      kv,
		catalog: cat,
		engine:  eng,
		session: battle.NewSession(p),
	}, nil
}

// requireProfile returns the saved profile or profile.ErrNoProfile.
func (a *app) requireProfile() (*profile.Profile, error) {
	p := a.session.Profile()
	if p == nil {
		return nil, profile.ErrNoProfile
	}
	return p, nil
}

func (a *app) now() time.Time {
	return a.engine.Clock.Now()
}

func loadCatalog(gc config.GameConfig) (*catalog.Catalog, error) {
	if path := strings.TrimSpace(gc.ScenariosFile); path != "" {
		cat, err := catalog.LoadWithScenarios(path)
		if err != nil {
			return nil, fmt.Errorf("loading scenarios from %s: %w", path, err)
		}
		return cat, nil
	}
	return catalog.Load()
}

// newEvaluator returns a service backed by the configured endpoint, or an
// offline one when no API key is set.
func newEvaluator(ac config.APIConfig) *evaluator.Service {
	var c llm.Completer
	if strings.TrimSpace(ac.APIKey) != "" {
		c = llm.NewClient(
			llm.WithAPIKey(ac.APIKey),
			llm.WithURL(ac.ChatURL()),
			llm.WithModel(ac.Model, ac.MaxTokens),
			llm.WithTimeout(time.Duration(ac.TimeoutSecs)*time.Second),
		)
	} else {
		debug.LogKV("cli", "no API key configured, using offline scoring")
	}
	return evaluator.NewService(c, ac.Model, ac.Temperature)
}

// storageOwner partitions rows in a shared postgres table.
func storageOwner() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := strings.TrimSpace(os.Getenv("USER")); name != "" {
		return name
	}
	return "local"
}
