// internal/game/bot_driver.go
package game

import (
	"time"

	"github.com/jason-s-yu/bluff/internal/bot"
)

// scheduleBotTurn lets a bot holding the turn act after its think delay. Assumes lock is held.
func (r *Room) scheduleBotTurn() {
	if r.phase != PhaseAwaitingPlay || !r.canAct(r.turnIndex) {
		return
	}
	seat := r.turnIndex
	b := r.seats[seat].Bot
	if b == nil {
		return
	}
	r.schedule(r.settings.BotThinkDelay, "bot turn", func() {
		if r.phase != PhaseAwaitingPlay || r.turnIndex != seat {
			return
		}
		r.botTurn(seat, b)
	})
}

// botTurn asks the bot for a move and applies it through the same paths a human move takes.
// Assumes lock is held.
func (r *Room) botTurn(seat int, b *bot.Bot) {
	d := b.DecidePlayOrPass(r.roundIsFresh, r.declaredRank)
	if d.Pass {
		r.pass(seat)
		return
	}
	if !r.rankAllowed(seat, d.DeclaredRank) {
		// the bot has already taken the cards out of its hand
		b.TakePenalty(d.Cards)
		r.pass(seat)
		return
	}
	r.log.Debugf("%s plays %d card(s) as %s (bluff=%v)", b.Name, len(d.Cards), d.DeclaredRank, d.Bluff)
	r.place(seat, d.Cards, d.DeclaredRank)
}

// scheduleBotChallenges gives every bot other than the player a chance to challenge the play that
// just opened the window, each after its own random delay. Assumes lock is held.
func (r *Room) scheduleBotChallenges() {
	if r.last == nil {
		return
	}
	play := bot.ObservedPlay{DeclaredRank: r.declaredRank, CardCount: r.last.count, Seat: r.last.seat}
	for i, s := range r.seats {
		if s.Bot == nil || i == play.Seat || !r.canAct(i) {
			continue
		}
		seat, b := i, s.Bot
		r.schedule(r.botChallengeDelay(), "bot challenge", func() {
			if r.phase != PhaseChallengeWindow || !r.challengeWindowOpen {
				return
			}
			if b.DecideChallenge(play) {
				r.log.Debugf("%s challenges seat %d", b.Name, play.Seat)
				r.challenge(seat)
			}
		})
	}
}

func (r *Room) botChallengeDelay() time.Duration {
	lo, hi := r.settings.BotChallengeDelayMin, r.settings.BotChallengeDelayMax
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(r.rng.Int63n(int64(hi-lo)))
}
