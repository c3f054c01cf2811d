// internal/bot/hard.go
package bot

import "github.com/jason-s-yu/bluff/internal/cards"

const (
	hardSmallHand      = 4
	hardSmallHandBoost = 0.1
	hardPatternBoost   = 0.05
	hardBlufferRatio   = 0.6
)

// HardPolicy counts cards, profiles opponents and counters known bluff patterns.
type HardPolicy struct{}

func (HardPolicy) Difficulty() Difficulty { return Hard }

func (HardPolicy) DecidePlayOrPass(v View) Move {
	last, seen := v.Memory.LastOpponentPlay()
	bluffs := 0
	if seen {
		sig := last.Signature()
		bluffs = v.Memory.BluffHistory[sig]
		if rank, ok := v.Memory.Counters[sig]; ok {
			if m, ok := candidateFor(v, rank); ok && m.Safe {
				return m
			}
		}
	}

	freq := v.Personality.BluffFrequency + float64(bluffs)*hardPatternBoost
	if v.HandSize <= hardSmallHand {
		freq += hardSmallHandBoost
	}
	if bernoulli(v.Rng, freq) {
		return randomCandidate(v)
	}
	for _, m := range v.Candidates {
		if m.Safe {
			return m
		}
	}
	return firstCandidate(v)
}

func (HardPolicy) DecideChallenge(v View, play ObservedPlay) bool {
	p := hardChallengeProbability(v, play)
	if p >= 1 {
		return true
	}
	return bernoulli(v.Rng, p)
}

// hardChallengeProbability returns 1 for a claim that cannot be true given the bot's own cards,
// otherwise the adjusted probability clamped to [0.05, 0.95].
func hardChallengeProbability(v View, play ObservedPlay) float64 {
	p := v.Personality.ChallengeFrequency
	if stats := v.Memory.Stats(play.Seat); stats != nil && stats.BluffRatio() > hardBlufferRatio {
		p *= 1.5
	}

	own := v.OwnCount(play.DeclaredRank)
	elsewhere := cards.CopiesPerRank - own
	if play.CardCount > elsewhere {
		return 1
	}

	proportion := float64(play.CardCount) / float64(elsewhere)
	if proportion > 0.5 {
		p += proportion * 0.4
	}
	p -= 0.1 * float64(own)
	if play.CardCount >= 3 {
		p += 0.1 * float64(play.CardCount)
	}
	return clamp(p, 0.05, 0.95)
}
