// internal/bot/policy.go
package bot

import (
	"math/rand"

	"github.com/jason-s-yu/bluff/internal/cards"
)

// Move is a candidate decision: a pass, or a claim of Count cards of Rank.
type Move struct {
	Pass  bool
	Rank  cards.Rank
	Count int
	Bluff bool // the cards backing the claim are not of Rank
	Safe  bool // honest claim backed by cards of Rank
}

// PassMove is the move that passes the turn.
var PassMove = Move{Pass: true}

// ObservedPlay is the most recent play as every seat at the table sees it.
type ObservedPlay struct {
	DeclaredRank cards.Rank
	CardCount    int
	Seat         int
}

// View is the observable state a policy decides against. It carries nothing a human in the
// same seat could not see.
type View struct {
	Hand         map[cards.Rank][]cards.Card
	HandSize     int
	FirstOfRound bool
	Candidates   []Move
	Personality  Personality
	Memory       *Memory
	Rng          *rand.Rand
}

// OwnCount returns how many cards of r the bot holds.
func (v View) OwnCount(r cards.Rank) int {
	return len(v.Hand[r])
}

// Policy is a difficulty-specific decision strategy.
type Policy interface {
	Difficulty() Difficulty
	DecidePlayOrPass(v View) Move
	DecideChallenge(v View, play ObservedPlay) bool
}

func randomCandidate(v View) Move {
	if len(v.Candidates) == 0 {
		return PassMove
	}
	return v.Candidates[v.Rng.Intn(len(v.Candidates))]
}

func firstCandidate(v View) Move {
	if len(v.Candidates) == 0 {
		return PassMove
	}
	return v.Candidates[0]
}

// candidateFor prefers an honest candidate declaring r, then any playing candidate declaring r.
func candidateFor(v View, r cards.Rank) (Move, bool) {
	var fallback *Move
	for i := range v.Candidates {
		m := v.Candidates[i]
		if m.Pass || m.Rank != r {
			continue
		}
		if m.Safe {
			return m, true
		}
		if fallback == nil {
			fallback = &v.Candidates[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return Move{}, false
}

func bernoulli(rng *rand.Rand, p float64) bool {
	return rng.Float64() < p
}

func clamp(p, lo, hi float64) float64 {
	if p < lo {
		return lo
	}
	if p > hi {
		return hi
	}
	return p
}
