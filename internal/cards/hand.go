// internal/cards/hand.go
package cards

// Hand is an unordered multiset of cards held by one seat.
type Hand struct {
	cards []Card
}

// NewHand builds a hand holding a copy of the given cards.
func NewHand(cs []Card) *Hand {
	h := &Hand{}
	h.Add(cs...)
	return h
}

// Add puts cards into the hand.
func (h *Hand) Add(cs ...Card) {
	h.cards = append(h.cards, cs...)
}

// Remove takes every given card out of the hand. It removes nothing and returns false if any
// card is missing.
func (h *Hand) Remove(cs []Card) bool {
	remaining := make([]Card, len(h.cards))
	copy(remaining, h.cards)
	for _, c := range cs {
		idx := -1
		for i, held := range remaining {
			if held == c {
				idx = i
				break
			}
		}
		if idx == -1 {
			return false
		}
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	h.cards = remaining
	return true
}

// Len returns the number of cards held.
func (h *Hand) Len() int {
	return len(h.cards)
}

// CountRank returns how many cards of rank r are held.
func (h *Hand) CountRank(r Rank) int {
	n := 0
	for _, c := range h.cards {
		if c.Rank == r {
			n++
		}
	}
	return n
}

// ByRank groups the held cards by rank. Ranks with no cards are absent.
func (h *Hand) ByRank() map[Rank][]Card {
	groups := make(map[Rank][]Card)
	for _, c := range h.cards {
		groups[c.Rank] = append(groups[c.Rank], c)
	}
	return groups
}

// Cards returns a copy of the held cards.
func (h *Hand) Cards() []Card {
	out := make([]Card, len(h.cards))
	copy(out, h.cards)
	return out
}
