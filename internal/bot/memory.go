// internal/bot/memory.go
package bot

import (
	"fmt"

	"github.com/jason-s-yu/bluff/internal/cards"
)

// RecentLimit bounds how many actions a bot remembers in order.
const RecentLimit = 10

// ActionType classifies a remembered action.
type ActionType string

const (
	ActionPlay              ActionType = "play"
	ActionPass              ActionType = "pass"
	ActionChallenge         ActionType = "challenge"
	ActionChallengeReceived ActionType = "challengeReceived"
	ActionReveal            ActionType = "reveal"
)

// Action is one observed or performed action.
type Action struct {
	Type         ActionType
	Seat         int // acting seat; for reveals, the seat whose play was revealed
	Target       int // challenged seat for challenges, challenger for challengeReceived
	DeclaredRank cards.Rank
	CardCount    int
	Bluff        bool // truth of a play, known for own plays and reveals
	Successful   bool // challenge outcome from the challenger's point of view
}

// Signature identifies a play pattern for the hard bot's bluff table.
func (a Action) Signature() string {
	return fmt.Sprintf("%s:%d", a.DeclaredRank, a.CardCount)
}

// OpponentStats is what a bot knows about one other seat.
type OpponentStats struct {
	BluffCount           int `json:"bluffCount"`
	HonestCount          int `json:"honestCount"`
	TotalPlays           int `json:"totalPlays"`
	SuccessfulChallenges int `json:"successfulChallenges"`
	FailedChallenges     int `json:"failedChallenges"`
}

// BluffRatio is caught bluffs over all plays seen, or 0 before any play.
func (s OpponentStats) BluffRatio() float64 {
	if s.TotalPlays == 0 {
		return 0
	}
	return float64(s.BluffCount) / float64(s.TotalPlays)
}

// Memory lives as long as the bot's room.
type Memory struct {
	Self      int
	Recent    []Action
	Opponents map[int]*OpponentStats

	// Pattern table, only filled for bots that track patterns (hard).
	BluffHistory map[string]int
	Counters     map[string]cards.Rank

	trackPatterns bool
}

// NewMemory creates an empty memory for the bot sitting at self.
func NewMemory(self int, trackPatterns bool) *Memory {
	return &Memory{
		Self:          self,
		Opponents:     make(map[int]*OpponentStats),
		BluffHistory:  make(map[string]int),
		Counters:      make(map[string]cards.Rank),
		trackPatterns: trackPatterns,
	}
}

// Record appends an action and folds it into the per-opponent statistics.
func (m *Memory) Record(a Action) {
	m.Recent = append(m.Recent, a)
	if len(m.Recent) > RecentLimit {
		m.Recent = m.Recent[len(m.Recent)-RecentLimit:]
	}

	if a.Seat == m.Self {
		return
	}
	stats := m.opponent(a.Seat)
	switch a.Type {
	case ActionPlay:
		stats.TotalPlays++
	case ActionReveal:
		if a.Bluff {
			stats.BluffCount++
			if m.trackPatterns {
				sig := a.Signature()
				m.BluffHistory[sig]++
				m.Counters[sig] = a.DeclaredRank
			}
		} else {
			stats.HonestCount++
		}
	case ActionChallenge:
		if a.Successful {
			stats.SuccessfulChallenges++
		} else {
			stats.FailedChallenges++
		}
	}
}

// Stats returns the statistics for seat, or nil if nothing was seen yet.
func (m *Memory) Stats(seat int) *OpponentStats {
	return m.Opponents[seat]
}

func (m *Memory) opponent(seat int) *OpponentStats {
	s, ok := m.Opponents[seat]
	if !ok {
		s = &OpponentStats{}
		m.Opponents[seat] = s
	}
	return s
}

// FirstPlay returns the oldest remembered play.
func (m *Memory) FirstPlay() (Action, bool) {
	for _, a := range m.Recent {
		if a.Type == ActionPlay {
			return a, true
		}
	}
	return Action{}, false
}

// LastPlay returns the newest remembered play.
func (m *Memory) LastPlay() (Action, bool) {
	for i := len(m.Recent) - 1; i >= 0; i-- {
		if m.Recent[i].Type == ActionPlay {
			return m.Recent[i], true
		}
	}
	return Action{}, false
}

// LastOpponentPlay returns the newest remembered play made by another seat.
func (m *Memory) LastOpponentPlay() (Action, bool) {
	for i := len(m.Recent) - 1; i >= 0; i-- {
		a := m.Recent[i]
		if a.Type == ActionPlay && a.Seat != m.Self {
			return a, true
		}
	}
	return Action{}, false
}
