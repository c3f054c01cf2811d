// internal/game/events.go
package game

import (
	"github.com/jason-s-yu/bluff/internal/bot"
	"github.com/jason-s-yu/bluff/internal/cards"
)

// EventType names an outbound room event.
type EventType string

const (
	EventJoined                EventType = "joined"
	EventCardsDealt            EventType = "cardsDealt" // private
	EventGameStarted           EventType = "gameStarted"
	EventTurnChanged           EventType = "turnChanged"
	EventPlayed                EventType = "played" // a play, or a pass when cardCount is 0
	EventChallengeWindowOpen   EventType = "challengeWindowOpen"
	EventChallengeWindowClosed EventType = "challengeWindowClosed"
	EventChallengeRevealed     EventType = "challengeRevealed"
	EventPenaltyCards          EventType = "penaltyCards" // private
	EventSeatWon               EventType = "seatWon"
	EventSeatDisconnected      EventType = "seatDisconnected"
	EventRoundOver             EventType = "roundOver"
	EventGameOver              EventType = "gameOver"
)

// BotInfo describes the bot seat of a bot-augmented room.
type BotInfo struct {
	Seat       int            `json:"seat"`
	Name       string         `json:"name"`
	Difficulty bot.Difficulty `json:"difficulty"`
}

// RoomEvent is the single envelope for everything a room sends to its seats.
type RoomEvent struct {
	Type EventType `json:"type"`

	RoomID    string   `json:"roomId,omitempty"`
	Seat      *int     `json:"seat,omitempty"`
	SeatCount int      `json:"seatCount,omitempty"`
	Bot       *BotInfo `json:"bot,omitempty"`

	Cards        []cards.Card `json:"cards,omitempty"`
	CardCount    *int         `json:"cardCount,omitempty"`
	DeclaredRank cards.Rank   `json:"declaredRank,omitempty"`

	PlayerSeat     *int  `json:"playerSeat,omitempty"`
	ChallengerSeat *int  `json:"challengerSeat,omitempty"`
	Bluff          *bool `json:"bluff,omitempty"`

	Winners []int `json:"winners,omitempty"`
}

// Sink receives the events addressed to one seat. Deliver is called with the room lock held and
// must not block or call back into the room.
type Sink interface {
	Deliver(ev RoomEvent)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev RoomEvent)

func (f SinkFunc) Deliver(ev RoomEvent) { f(ev) }

func intPtr(i int) *int { return &i }

func boolPtr(b bool) *bool { return &b }
