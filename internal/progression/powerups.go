package progression

import (
	"errors"
	"fmt"
	"time"

	"github.com/agusx1211/promptarena/internal/profile"
)

// ErrNoPowerUp is returned when consuming a power-up the player does not hold.
var ErrNoPowerUp = errors.New("no charges left")

// Power-up ids.
const (
	PowerUpDoubleSubmission = "double_submission"
	PowerUpPeerReview       = "peer_review"
	PowerUpTimeExtension    = "time_extension"
	PowerUpHint             = "hint"
)

// TimeExtension is the crafting time added by the time_extension power-up.
const TimeExtension = 60 * time.Second

// PowerUp is a consumable round modifier.
type PowerUp struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int    `json:"cost"`
}

// PowerUps is the catalog, cheapest last.
var PowerUps = []PowerUp{
	{ID: PowerUpDoubleSubmission, Name: "Double Submission", Description: "Submit twice and keep the better score", Cost: 100},
	{ID: PowerUpPeerReview, Name: "Peer Review", Description: "Get AI feedback on your draft before submitting", Cost: 50},
	{ID: PowerUpTimeExtension, Name: "Time Extension", Description: "Add 60 seconds to the crafting timer", Cost: 75},
	{ID: PowerUpHint, Name: "Hint", Description: "Reveal a hint for the current scenario", Cost: 25},
}

// FindPowerUp looks up a catalog entry by id.
func FindPowerUp(id string) (PowerUp, bool) {
	for _, pu := range PowerUps {
		if pu.ID == id {
			return pu, true
		}
	}
	return PowerUp{}, false
}

// GrantLevelRewards gives one charge of every power-up with cost <= 25*level
// for each level gained between oldLevel and newLevel. It returns the
// granted ids, one entry per charge.
func GrantLevelRewards(p *profile.Profile, oldLevel, newLevel int) []string {
	if p.PowerUps == nil {
		p.PowerUps = map[string]int{}
	}
	var granted []string
	for lvl := oldLevel + 1; lvl <= newLevel; lvl++ {
		for _, pu := range PowerUps {
			if pu.Cost <= 25*lvl {
				p.PowerUps[pu.ID]++
				granted = append(granted, pu.ID)
			}
		}
	}
	return granted
}

// ConsumePowerUp spends one charge of id.
func ConsumePowerUp(p *profile.Profile, id string) error {
	if _, ok := FindPowerUp(id); !ok {
		return fmt.Errorf("unknown power-up %q", id)
	}
	if p.PowerUps[id] <= 0 {
		return fmt.Errorf("%s: %w", id, ErrNoPowerUp)
	}
	p.PowerUps[id]--
	if p.PowerUps[id] == 0 {
		delete(p.PowerUps, id)
	}
	return nil
}
