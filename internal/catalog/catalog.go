// Package catalog serves the static game content: scenarios, avatars, tips
// and the tutorial. Content is embedded and read-only for the session.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
)

//go:embed data/*.json
var embedded embed.FS

// Scenario is one prompt-crafting challenge.
type Scenario struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Category         string   `json:"category,omitempty"`
	Difficulty       string   `json:"difficulty,omitempty"`
	Criteria         []string `json:"criteria"`
	Data             string   `json:"data"`
	PoorPrompt       string   `json:"poorPrompt,omitempty"`
	PoorPromptIssues []string `json:"poorPromptIssues,omitempty"`
	Hint             string   `json:"hint,omitempty"`
}

// Avatar is a selectable player picture.
type Avatar struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
	URL  string `json:"url"`
}

// Catalog holds the loaded content.
type Catalog struct {
	Scenarios []Scenario
	Avatars   []Avatar
}

// Load returns the embedded catalog.
func Load() (*Catalog, error) {
	var c Catalog
	if err := decodeEmbedded("data/scenarios.json", &c.Scenarios); err != nil {
		return nil, err
	}
	if err := decodeEmbedded("data/avatars.json", &c.Avatars); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadWithScenarios returns the embedded catalog with its scenarios replaced
// by the JSON array in path. An empty path keeps the embedded scenarios.
func LoadWithScenarios(path string) (*Catalog, error) {
	c, err := Load()
	if err != nil || strings.TrimSpace(path) == "" {
		return c, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenarios: %w", err)
	}
	var scenarios []Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("parsing scenarios %s: %w", path, err)
	}
	c.Scenarios = scenarios
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func decodeEmbedded(name string, v any) error {
	data, err := embedded.ReadFile(name)
	if err != nil {
		return fmt.Errorf("reading embedded %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing embedded %s: %w", name, err)
	}
	return nil
}

func (c *Catalog) validate() error {
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("catalog has no scenarios")
	}
	seen := make(map[string]bool, len(c.Scenarios))
	for i, s := range c.Scenarios {
		if strings.TrimSpace(s.ID) == "" || strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("scenario %d: id and title are required", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate scenario id %q", s.ID)
		}
		seen[s.ID] = true
		if len(s.Criteria) == 0 {
			return fmt.Errorf("scenario %q has no criteria", s.ID)
		}
	}
	return nil
}

// Scenario looks up a scenario by id.
func (c *Catalog) Scenario(id string) (Scenario, bool) {
	for _, s := range c.Scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}

// Random picks a scenario. A nil rng uses the global source.
func (c *Catalog) Random(rng *rand.Rand) Scenario {
	return c.Scenarios[intN(rng, len(c.Scenarios))]
}

// Avatar looks up an avatar by id.
func (c *Catalog) Avatar(id string) (Avatar, bool) {
	for _, a := range c.Avatars {
		if a.ID == id {
			return a, true
		}
	}
	return Avatar{}, false
}

func intN(rng *rand.Rand, n int) int {
	if rng == nil {
		return rand.IntN(n)
	}
	return rng.IntN(n)
}
