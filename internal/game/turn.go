// internal/game/turn.go
package game

import (
	"github.com/jason-s-yu/bluff/internal/bot"
	"github.com/jason-s-yu/bluff/internal/cards"
)

// Place handles a play from seat: cards put face down on the claim stack, claimed to be of
// declared. Plays out of turn, out of phase, or off the round's rank are ignored. Returns whether
// the play was accepted.
func (r *Room) Place(seat int, cs []cards.Card, declared cards.Rank, remainingHandSize int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	s, ok := r.turnSeat(seat, "place")
	if !ok || s.Bot != nil {
		return false
	}
	if len(cs) == 0 || len(cs) > s.HandSize {
		r.log.Debugf("Seat %d placed %d cards holding %d, ignoring", seat, len(cs), s.HandSize)
		return false
	}
	seen := make(map[cards.Card]bool, len(cs))
	for _, c := range cs {
		if !c.Valid() || seen[c] {
			r.log.Debugf("Seat %d placed invalid or repeated card %v, ignoring", seat, c)
			return false
		}
		seen[c] = true
	}
	if !r.rankAllowed(seat, declared) {
		return false
	}

	s.HandSize -= len(cs)
	if remainingHandSize != s.HandSize {
		r.log.Debugf("Seat %d reports %d cards left, server counts %d", seat, remainingHandSize, s.HandSize)
	}
	r.place(seat, cs, declared)
	return true
}

// turnSeat checks that seat holds the turn and the room awaits a play. Assumes lock is held.
func (r *Room) turnSeat(seat int, action string) (*Seat, bool) {
	if r.phase != PhaseAwaitingPlay {
		r.log.Debugf("Seat %d tried to %s during %s, ignoring", seat, action, r.phase)
		return nil, false
	}
	if seat != r.turnIndex || !r.canAct(seat) {
		r.log.Debugf("Seat %d tried to %s out of turn (turn is %d), ignoring", seat, action, r.turnIndex)
		return nil, false
	}
	return r.seats[seat], true
}

func (r *Room) rankAllowed(seat int, declared cards.Rank) bool {
	if !cards.ValidRank(declared) {
		r.log.Debugf("Seat %d declared unknown rank %q, ignoring", seat, declared)
		return false
	}
	if !r.roundIsFresh && declared != r.declaredRank {
		r.log.Debugf("Seat %d declared %s in a round of %s, ignoring", seat, declared, r.declaredRank)
		return false
	}
	return true
}

// place pushes an accepted play and opens the challenge window. Hand bookkeeping is done by the
// caller. Assumes lock is held.
func (r *Room) place(seat int, cs []cards.Card, declared cards.Rank) {
	r.claimStack = append(r.claimStack, cs...)
	if r.roundIsFresh {
		r.declaredRank = declared
		r.roundIsFresh = false
	}
	r.last = &lastPlay{seat: seat, count: len(cs)}
	if r.handSize(seat) == 0 {
		r.pendingWinner = seat
	}

	r.bump()
	r.phase = PhaseChallengeWindow
	r.challengeWindowOpen = true

	r.log.Infof("Seat %d played %d card(s) as %s, stack at %d", seat, len(cs), declared, len(r.claimStack))
	r.broadcast(RoomEvent{Type: EventPlayed, Seat: intPtr(seat), CardCount: intPtr(len(cs)), DeclaredRank: declared})
	r.broadcast(RoomEvent{Type: EventChallengeWindowOpen, Seat: intPtr(seat)})
	r.logAction(seat, "place", map[string]interface{}{
		"cards":        cs,
		"declaredRank": declared,
		"stackSize":    len(r.claimStack),
	})

	for _, s := range r.seats {
		if s.Bot != nil {
			s.Bot.ObservePlay(seat, declared, len(cs))
		}
	}
	r.scheduleBotChallenges()
	r.schedule(r.settings.ChallengeWindow, "challenge window", r.expireWindow)
}

// expireWindow closes an unchallenged window: a provisional win stands and the turn moves on.
// Assumes lock is held.
func (r *Room) expireWindow() {
	if r.phase != PhaseChallengeWindow || !r.challengeWindowOpen {
		return
	}
	r.challengeWindowOpen = false
	r.bump()
	r.broadcast(RoomEvent{Type: EventChallengeWindowClosed})
	if r.pendingWinner >= 0 {
		r.confirmWin(r.pendingWinner)
	}
	r.phase = PhaseAwaitingPlay
	r.advanceTurn()
}

// Pass handles a pass from the seat holding the turn.
func (r *Room) Pass(seat int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	s, ok := r.turnSeat(seat, "pass")
	if !ok || s.Bot != nil {
		return false
	}
	r.pass(seat)
	return true
}

// pass records the pass and either moves the turn on or ends the round when every seat still
// able to play has passed. Assumes lock is held.
func (r *Room) pass(seat int) {
	r.passedSeats[seat] = true
	r.bump()
	r.log.Infof("Seat %d passed", seat)
	r.broadcast(RoomEvent{Type: EventPlayed, Seat: intPtr(seat), CardCount: intPtr(0)})
	r.logAction(seat, "pass", nil)
	for _, s := range r.seats {
		if s.Bot != nil {
			s.Bot.ObservePass(seat)
		}
	}

	if !r.allActivePassed() {
		r.advanceTurn()
		return
	}
	r.passOut()
}

// allActivePassed reports whether every seat still able to play has passed this round.
// Assumes lock is held.
func (r *Room) allActivePassed() bool {
	for _, i := range r.activeSeats() {
		if !r.passedSeats[i] {
			return false
		}
	}
	return true
}

// passOut discards the round and schedules a fresh one. Assumes lock is held.
func (r *Room) passOut() {
	r.log.Infof("Every seat passed, discarding %d card(s)", len(r.claimStack))
	r.clearRound()
	r.phase = PhaseResolving
	r.broadcast(RoomEvent{Type: EventRoundOver})
	r.schedule(r.settings.InterRoundPause, "inter-round pause", r.startRoundAtRandom)
}

// startRoundAtRandom opens a fresh round on a uniformly random active seat. Assumes lock is held.
func (r *Room) startRoundAtRandom() {
	if r.phase != PhaseResolving {
		return
	}
	active := r.activeSeats()
	if len(active) <= 1 {
		r.advanceTurn()
		return
	}
	r.phase = PhaseAwaitingPlay
	r.setTurn(active[r.rng.Intn(len(active))])
}

// Challenge handles a challenge of the most recent play. The first challenge inside the window
// wins; later ones, and challenges after the window has expired, are ignored.
func (r *Room) Challenge(seat int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	if seat < 0 || seat >= len(r.seats) || r.seats[seat].Bot != nil {
		return false
	}
	return r.challenge(seat)
}

// challenge resolves the challenge and schedules the next round. Assumes lock is held.
func (r *Room) challenge(seat int) bool {
	if r.phase != PhaseChallengeWindow || !r.challengeWindowOpen || r.last == nil {
		r.log.Debugf("Seat %d challenged with no open window, ignoring", seat)
		return false
	}
	if seat == r.last.seat || !r.canAct(seat) {
		r.log.Debugf("Seat %d may not challenge seat %d, ignoring", seat, r.last.seat)
		return false
	}

	r.challengeWindowOpen = false
	r.bump()
	r.phase = PhaseResolving
	r.broadcast(RoomEvent{Type: EventChallengeWindowClosed})

	player := r.last.seat
	declared := r.declaredRank
	res := Resolve(r.claimStack, declared, r.last.count, player, seat, r.pendingWinner)
	r.claimStack = res.Remaining

	r.log.Infof("Seat %d challenged seat %d: bluff=%v, %d card(s) to seat %d", seat, player, res.Bluff, len(res.Revealed), res.PenaltySeat)
	r.broadcast(RoomEvent{
		Type:           EventChallengeRevealed,
		Cards:          res.Revealed,
		DeclaredRank:   declared,
		PlayerSeat:     intPtr(player),
		ChallengerSeat: intPtr(seat),
		Bluff:          boolPtr(res.Bluff),
	})
	r.logAction(seat, "challenge", map[string]interface{}{
		"playerSeat": player,
		"bluff":      res.Bluff,
		"revealed":   res.Revealed,
	})

	r.givePenalty(res.PenaltySeat, res.Revealed)
	if res.RevokeWin {
		r.pendingWinner = -1
	}
	if res.ConfirmWin {
		r.confirmWin(player)
	}

	observed := bot.ObservedPlay{DeclaredRank: declared, CardCount: r.last.count, Seat: player}
	for _, s := range r.seats {
		if s.Bot != nil {
			s.Bot.ObserveChallenge(observed, seat, res.Bluff)
		}
	}
	r.last = nil

	if len(r.remainingSeats()) <= 1 || len(r.activeSeats()) <= 1 {
		r.advanceTurn()
		return true
	}
	r.turnIndex = res.TurnSeat
	if !r.canAct(r.turnIndex) {
		r.turnIndex = r.nextActiveAfter(r.turnIndex)
	}
	r.schedule(r.settings.ResolutionPause, "resolution pause", r.finishResolution)
	return true
}

func (r *Room) givePenalty(seat int, cs []cards.Card) {
	if len(cs) == 0 {
		return
	}
	s := r.seats[seat]
	if s.Bot != nil {
		s.Bot.TakePenalty(cs)
		return
	}
	s.HandSize += len(cs)
	r.sendTo(seat, RoomEvent{Type: EventPenaltyCards, Cards: cs})
}

// finishResolution clears the table after the reveal has been on display. Assumes lock is held.
func (r *Room) finishResolution() {
	if r.phase != PhaseResolving {
		return
	}
	r.clearRound()
	r.broadcast(RoomEvent{Type: EventRoundOver})
	r.phase = PhaseAwaitingPlay
	if !r.canAct(r.turnIndex) {
		r.advanceTurn()
		return
	}
	r.setTurn(r.turnIndex)
}

// clearRound discards the claim stack and opens a fresh round. Assumes lock is held.
func (r *Room) clearRound() {
	r.claimStack = nil
	r.declaredRank = ""
	r.passedSeats = make(map[int]bool)
	r.roundIsFresh = true
	r.last = nil
}

// confirmWin moves seat into the won set. Assumes lock is held.
func (r *Room) confirmWin(seat int) {
	if r.pendingWinner == seat {
		r.pendingWinner = -1
	}
	if r.wonSeats[seat] {
		return
	}
	r.wonSeats[seat] = true
	r.wonOrder = append(r.wonOrder, seat)
	r.log.Infof("Seat %d won (%d so far)", seat, len(r.wonOrder))
	r.broadcast(RoomEvent{Type: EventSeatWon, Seat: intPtr(seat)})
	r.logAction(seat, "won", map[string]interface{}{"place": len(r.wonOrder)})
}

// advanceTurn moves the turn to the next seat able to play. When at most one seat is left in
// the game it is awarded the win and the game ends. Assumes lock is held.
func (r *Room) advanceTurn() {
	if r.phase == PhaseFinished {
		return
	}
	remaining := r.remainingSeats()
	active := r.activeSeats()
	if len(remaining) <= 1 || len(active) <= 1 {
		switch {
		case len(active) == 1:
			r.confirmWin(active[0])
		case len(remaining) == 1:
			r.confirmWin(remaining[0])
		}
		r.finish()
		return
	}
	r.phase = PhaseAwaitingPlay
	r.setTurn(r.nextActiveAfter(r.turnIndex))
}

// nextActiveAfter scans forward from seat, wrapping, for at most one lap.
func (r *Room) nextActiveAfter(seat int) int {
	n := len(r.seats)
	for step := 1; step <= n; step++ {
		idx := (seat + step) % n
		if r.canAct(idx) {
			return idx
		}
	}
	return seat
}

// setTurn hands the turn to seat and wakes its bot. Assumes lock is held.
func (r *Room) setTurn(seat int) {
	r.turnIndex = seat
	r.broadcast(RoomEvent{Type: EventTurnChanged, Seat: intPtr(seat)})
	r.scheduleBotTurn()
}

// finish ends the game. Assumes lock is held.
func (r *Room) finish() {
	r.bump()
	r.phase = PhaseFinished
	r.challengeWindowOpen = false
	r.pendingWinner = -1
	winners := append([]int(nil), r.wonOrder...)
	r.log.Infof("Game over, winners in order: %v", winners)
	r.broadcast(RoomEvent{Type: EventGameOver, Winners: winners})
	r.logAction(-1, "game_over", map[string]interface{}{"winners": winners})
}
