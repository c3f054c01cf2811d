// internal/bot/difficulty.go
package bot

import "strings"

// Difficulty selects which decision policy a bot uses.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty maps user input onto a Difficulty, defaulting to Medium.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case Easy:
		return Easy
	case Hard:
		return Hard
	default:
		return Medium
	}
}

// Personality holds the base frequencies a policy starts from.
type Personality struct {
	BluffFrequency     float64 `json:"bluffFrequency"`
	ChallengeFrequency float64 `json:"challengeFrequency"`
}

// PersonalityFor returns the base frequencies for a difficulty.
func PersonalityFor(d Difficulty) Personality {
	switch d {
	case Easy:
		return Personality{BluffFrequency: 0.3, ChallengeFrequency: 0.25}
	case Hard:
		return Personality{BluffFrequency: 0.7, ChallengeFrequency: 0.7}
	default:
		return Personality{BluffFrequency: 0.5, ChallengeFrequency: 0.5}
	}
}

// NewPolicy returns the policy for a difficulty. Unknown values get the Medium policy.
func NewPolicy(d Difficulty) Policy {
	switch d {
	case Easy:
		return EasyPolicy{}
	case Hard:
		return HardPolicy{}
	default:
		return MediumPolicy{}
	}
}
