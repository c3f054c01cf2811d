// internal/cards/deck.go
package cards

import "math/rand"

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// NewDeck returns the 52 unique cards of a standard deck in rank-major order.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, r := range Ranks {
		for _, s := range Suits {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// Shuffle permutes the deck in place.
func Shuffle(deck []Card, rng *rand.Rand) {
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// Deal splits the deck evenly between seats. Each seat receives ⌊len(deck)/seats⌋ cards and the
// remainder is left undealt.
func Deal(deck []Card, seats int) [][]Card {
	if seats <= 0 {
		return nil
	}
	per := len(deck) / seats
	hands := make([][]Card, seats)
	for i := 0; i < seats; i++ {
		hand := make([]Card, per)
		copy(hand, deck[i*per:(i+1)*per])
		hands[i] = hand
	}
	return hands
}
