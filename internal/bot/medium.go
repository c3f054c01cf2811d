// internal/bot/medium.go
package bot

import "github.com/jason-s-yu/bluff/internal/cards"

// MediumPolicy follows the latest play it remembers and reads simple card counts.
type MediumPolicy struct{}

func (MediumPolicy) Difficulty() Difficulty { return Medium }

func (MediumPolicy) DecidePlayOrPass(v View) Move {
	if bernoulli(v.Rng, v.Personality.BluffFrequency) {
		return randomCandidate(v)
	}
	if last, ok := v.Memory.LastPlay(); ok {
		if m, ok := candidateFor(v, last.DeclaredRank); ok {
			return m
		}
	}
	return firstCandidate(v)
}

// DecideChallenge grows suspicious of big claims and of claims the bot's own cards make unlikely.
func (MediumPolicy) DecideChallenge(v View, play ObservedPlay) bool {
	p := v.Personality.ChallengeFrequency
	switch {
	case play.CardCount >= 4:
		p *= 1.5
	case v.OwnCount(play.DeclaredRank) > cards.CopiesPerRank-play.CardCount-1:
		p *= 2
	}
	return bernoulli(v.Rng, p)
}
