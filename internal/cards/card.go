// internal/cards/card.go
package cards

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Rank is a card rank as it is declared at the table ("A", "2".."10", "J", "Q", "K").
type Rank string

// Suit is one of the four suit symbols.
type Suit string

const (
	Spades   Suit = "♠"
	Clubs    Suit = "♣"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
)

// Ranks lists every rank in deck order.
var Ranks = []Rank{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// Suits lists every suit in deck order.
var Suits = []Suit{Spades, Clubs, Hearts, Diamonds}

// CopiesPerRank is the number of cards of each rank in a standard deck.
const CopiesPerRank = 4

// Card is an immutable (rank, suit) pair.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

func (c Card) String() string {
	return string(c.Rank) + string(c.Suit)
}

// Valid reports whether both rank and suit belong to a standard deck.
func (c Card) Valid() bool {
	return ValidRank(c.Rank) && validSuit(c.Suit)
}

// ValidRank reports whether r is one of the thirteen ranks.
func ValidRank(r Rank) bool {
	for _, known := range Ranks {
		if known == r {
			return true
		}
	}
	return false
}

func validSuit(s Suit) bool {
	for _, known := range Suits {
		if known == s {
			return true
		}
	}
	return false
}

// ParseRank normalises user input such as "k" or "T" into a Rank.
func ParseRank(s string) (Rank, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "T" {
		s = "10"
	}
	r := Rank(s)
	if !ValidRank(r) {
		return "", fmt.Errorf("unknown rank %q", s)
	}
	return r, nil
}

// ParseSuit accepts a suit symbol or its single letter (S, C, H, D).
func ParseSuit(s string) (Suit, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "♠", "S":
		return Spades, nil
	case "♣", "C":
		return Clubs, nil
	case "♥", "H":
		return Hearts, nil
	case "♦", "D":
		return Diamonds, nil
	}
	return "", fmt.Errorf("unknown suit %q", s)
}

// UnmarshalJSON accepts the lenient rank and suit spellings understood by ParseRank and ParseSuit.
func (c *Card) UnmarshalJSON(data []byte) error {
	var raw struct {
		Rank string `json:"rank"`
		Suit string `json:"suit"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r, err := ParseRank(raw.Rank)
	if err != nil {
		return err
	}
	s, err := ParseSuit(raw.Suit)
	if err != nil {
		return err
	}
	c.Rank, c.Suit = r, s
	return nil
}
