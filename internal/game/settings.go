// internal/game/settings.go
package game

import (
	"fmt"
	"time"
)

// Settings holds the timing and sizing rules every room of a registry shares.
type Settings struct {
	Capacity   int `json:"capacity"`
	MinPlayers int `json:"minPlayers"`

	StartDelay      time.Duration `json:"startDelay"`
	ChallengeWindow time.Duration `json:"challengeWindow"`
	ResolutionPause time.Duration `json:"resolutionPause"`
	InterRoundPause time.Duration `json:"interRoundPause"`

	BotThinkDelay        time.Duration `json:"botThinkDelay"`
	BotChallengeDelayMin time.Duration `json:"botChallengeDelayMin"`
	BotChallengeDelayMax time.Duration `json:"botChallengeDelayMax"`
}

// DefaultSettings returns the standard table: four seats, a 15 second challenge window.
func DefaultSettings() Settings {
	return Settings{
		Capacity:             4,
		MinPlayers:           2,
		StartDelay:           time.Second,
		ChallengeWindow:      15 * time.Second,
		ResolutionPause:      3 * time.Second,
		InterRoundPause:      3 * time.Second,
		BotThinkDelay:        2 * time.Second,
		BotChallengeDelayMin: time.Second,
		BotChallengeDelayMax: 4 * time.Second,
	}
}

// Validate rejects settings a room cannot run with.
func (s Settings) Validate() error {
	if s.MinPlayers < 2 {
		return fmt.Errorf("minPlayers must be at least 2, got %d", s.MinPlayers)
	}
	if s.Capacity < s.MinPlayers {
		return fmt.Errorf("capacity %d is below minPlayers %d", s.Capacity, s.MinPlayers)
	}
	if s.ChallengeWindow <= 0 {
		return fmt.Errorf("challengeWindow must be positive")
	}
	if s.BotChallengeDelayMax < s.BotChallengeDelayMin {
		return fmt.Errorf("botChallengeDelayMax %s is below botChallengeDelayMin %s", s.BotChallengeDelayMax, s.BotChallengeDelayMin)
	}
	return nil
}
