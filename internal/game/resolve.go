// internal/game/resolve.go
package game

import "github.com/jason-s-yu/bluff/internal/cards"

// Resolution is the outcome of challenging the most recent play.
type Resolution struct {
	Revealed  []cards.Card // popped from the top of the stack, in push order
	Remaining []cards.Card // the stack below the challenged play
	Bluff     bool

	PenaltySeat int // receives Revealed
	TurnSeat    int // holds the turn once the round restarts

	RevokeWin  bool // the player's provisional win is lost
	ConfirmWin bool // the player's provisional win stands
}

// Resolve checks the top count cards of stack against declared. Only the most recent play is
// examined; asking for more cards than the stack holds takes what is there.
func Resolve(stack []cards.Card, declared cards.Rank, count, playerSeat, challengerSeat int, pendingWinner int) Resolution {
	if count < 0 {
		count = 0
	}
	if count > len(stack) {
		count = len(stack)
	}
	split := len(stack) - count
	res := Resolution{
		Revealed:  append([]cards.Card(nil), stack[split:]...),
		Remaining: append([]cards.Card(nil), stack[:split]...),
	}
	for _, c := range res.Revealed {
		if c.Rank != declared {
			res.Bluff = true
			break
		}
	}

	provisional := pendingWinner == playerSeat
	if res.Bluff {
		res.PenaltySeat = playerSeat
		res.TurnSeat = challengerSeat
		res.RevokeWin = provisional
	} else {
		res.PenaltySeat = challengerSeat
		res.TurnSeat = playerSeat
		res.ConfirmWin = provisional
	}
	return res
}
