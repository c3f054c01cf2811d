// internal/bot/easy.go
package bot

// EasyPolicy bluffs at random and otherwise repeats the first play it remembers.
type EasyPolicy struct{}

func (EasyPolicy) Difficulty() Difficulty { return Easy }

func (EasyPolicy) DecidePlayOrPass(v View) Move {
	if bernoulli(v.Rng, v.Personality.BluffFrequency) {
		return randomCandidate(v)
	}
	if first, ok := v.Memory.FirstPlay(); ok {
		if m, ok := candidateFor(v, first.DeclaredRank); ok {
			return m
		}
	}
	return firstCandidate(v)
}

// DecideChallenge halves the base probability when the bot holds the declared rank itself.
func (EasyPolicy) DecideChallenge(v View, play ObservedPlay) bool {
	p := v.Personality.ChallengeFrequency
	if v.OwnCount(play.DeclaredRank) > 0 {
		p *= 0.5
	}
	return bernoulli(v.Rng, p)
}
