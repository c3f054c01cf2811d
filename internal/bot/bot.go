// internal/bot/bot.go
package bot

import (
	"fmt"
	"math/rand"

	"github.com/jason-s-yu/bluff/internal/cards"
)

// maxBluffCards caps how many cards a bluff candidate puts down.
const maxBluffCards = 3

// Decision is a move resolved against the bot's real cards.
type Decision struct {
	Pass         bool
	Cards        []cards.Card
	DeclaredRank cards.Rank
	Bluff        bool
}

// Bot occupies one seat and decides through a difficulty policy. The room owns the bot and calls
// it under the room lock, so a Bot is not safe for concurrent use on its own.
type Bot struct {
	Name        string
	Seat        int
	Difficulty  Difficulty
	Personality Personality

	policy Policy
	hand   *cards.Hand
	memory *Memory
	rng    *rand.Rand
}

// New creates a bot for seat with the policy and personality of d.
func New(d Difficulty, seat int, rng *rand.Rand) *Bot {
	return &Bot{
		Name:        fmt.Sprintf("Bot %d", seat+1),
		Seat:        seat,
		Difficulty:  d,
		Personality: PersonalityFor(d),
		policy:      NewPolicy(d),
		hand:        cards.NewHand(nil),
		memory:      NewMemory(seat, d == Hard),
		rng:         rng,
	}
}

// SetCards replaces the bot's hand, e.g. after the deal.
func (b *Bot) SetCards(cs []cards.Card) {
	b.hand = cards.NewHand(cs)
}

// TakePenalty adds penalty cards to the bot's hand.
func (b *Bot) TakePenalty(cs []cards.Card) {
	b.hand.Add(cs...)
}

// HandSize returns the number of cards the bot holds.
func (b *Bot) HandSize() int {
	return b.hand.Len()
}

// Cards returns a copy of the bot's hand.
func (b *Bot) Cards() []cards.Card {
	return b.hand.Cards()
}

// Memory exposes the bot's memory for inspection.
func (b *Bot) Memory() *Memory {
	return b.memory
}

func (b *Bot) view(firstOfRound bool, candidates []Move) View {
	return View{
		Hand:         b.hand.ByRank(),
		HandSize:     b.hand.Len(),
		FirstOfRound: firstOfRound,
		Candidates:   candidates,
		Personality:  b.Personality,
		Memory:       b.memory,
		Rng:          b.rng,
	}
}

// Candidates lists the legal moves for the bot's hand. When the round is not fresh every
// playing move declares roundRank.
func (b *Bot) Candidates(firstOfRound bool, roundRank cards.Rank) []Move {
	if b.hand.Len() == 0 {
		return []Move{PassMove}
	}
	groups := b.hand.ByRank()
	var moves []Move
	for _, r := range cards.Ranks {
		if !firstOfRound && r != roundRank {
			continue
		}
		if n := len(groups[r]); n > 0 {
			moves = append(moves, Move{Rank: r, Count: n, Safe: true})
		}
	}

	declared := roundRank
	if firstOfRound {
		declared = cards.Ranks[b.rng.Intn(len(cards.Ranks))]
	}
	if other := b.hand.Len() - len(groups[declared]); other > 0 {
		n := other
		if n > maxBluffCards {
			n = maxBluffCards
		}
		moves = append(moves, Move{Rank: declared, Count: 1 + b.rng.Intn(n), Bluff: true})
	}
	return append(moves, PassMove)
}

// DecidePlayOrPass asks the policy for a move and takes the chosen cards out of the hand.
func (b *Bot) DecidePlayOrPass(firstOfRound bool, roundRank cards.Rank) Decision {
	if b.hand.Len() == 0 {
		return Decision{Pass: true}
	}
	if !firstOfRound && roundRank == "" {
		firstOfRound = true
	}
	move := b.policy.DecidePlayOrPass(b.view(firstOfRound, b.Candidates(firstOfRound, roundRank)))
	if !firstOfRound && !move.Pass && move.Rank != roundRank {
		// policies only pick from candidates, which already declare the round rank
		move = PassMove
	}
	if move.Pass {
		b.memory.Record(Action{Type: ActionPass, Seat: b.Seat})
		return Decision{Pass: true}
	}

	d := b.apply(move)
	b.memory.Record(Action{
		Type:         ActionPlay,
		Seat:         b.Seat,
		DeclaredRank: d.DeclaredRank,
		CardCount:    len(d.Cards),
		Bluff:        d.Bluff,
	})
	return d
}

func (b *Bot) apply(m Move) Decision {
	var pool []cards.Card
	for _, c := range b.hand.Cards() {
		if (c.Rank == m.Rank) != m.Bluff {
			pool = append(pool, c)
		}
	}
	if m.Bluff {
		b.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	}
	n := m.Count
	if n > len(pool) {
		n = len(pool)
	}
	chosen := pool[:n]
	b.hand.Remove(chosen)

	bluff := false
	for _, c := range chosen {
		if c.Rank != m.Rank {
			bluff = true
			break
		}
	}
	return Decision{Cards: chosen, DeclaredRank: m.Rank, Bluff: bluff}
}

// DecideChallenge decides whether to challenge play. A bot never challenges itself.
func (b *Bot) DecideChallenge(play ObservedPlay) bool {
	if play.Seat == b.Seat || play.CardCount <= 0 {
		return false
	}
	return b.policy.DecideChallenge(b.view(false, nil), play)
}

// ObservePlay records another seat's play.
func (b *Bot) ObservePlay(seat int, rank cards.Rank, count int) {
	if seat == b.Seat {
		return
	}
	b.memory.Record(Action{Type: ActionPlay, Seat: seat, DeclaredRank: rank, CardCount: count})
}

// ObservePass records another seat's pass.
func (b *Bot) ObservePass(seat int) {
	if seat == b.Seat {
		return
	}
	b.memory.Record(Action{Type: ActionPass, Seat: seat})
}

// ObserveChallenge records a resolved challenge from every angle the bot cares about: the revealed
// play, the challenge itself, and whether the bot was the one challenged.
func (b *Bot) ObserveChallenge(play ObservedPlay, challenger int, bluff bool) {
	b.memory.Record(Action{
		Type:         ActionReveal,
		Seat:         play.Seat,
		DeclaredRank: play.DeclaredRank,
		CardCount:    play.CardCount,
		Bluff:        bluff,
	})
	b.memory.Record(Action{
		Type:       ActionChallenge,
		Seat:       challenger,
		Target:     play.Seat,
		Successful: bluff,
	})
	if play.Seat == b.Seat {
		b.memory.Record(Action{
			Type:       ActionChallengeReceived,
			Seat:       b.Seat,
			Target:     challenger,
			Successful: bluff,
		})
	}
}
