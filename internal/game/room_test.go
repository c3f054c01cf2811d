// internal/game/room_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/bluff/internal/bot"
	"github.com/jason-s-yu/bluff/internal/cards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartDealsEvenly(t *testing.T) {
	sched := newManualScheduler()
	r := NewRoom(DefaultSettings(), testOptions(sched, 1)...)
	sinks := []*mockSink{{}, {}, {}}
	for _, s := range sinks {
		_, err := r.Join(s)
		require.NoError(t, err)
	}

	joined := sinks[2].last(EventJoined)
	require.NotNil(t, joined)
	assert.Equal(t, 2, *joined.Seat)
	assert.Equal(t, 3, joined.SeatCount)
	assert.Equal(t, r.ID.String(), joined.RoomID)

	// start is deferred until the start delay passes
	assert.Equal(t, PhaseLobby, r.Snapshot().Phase)
	sched.Advance(DefaultSettings().StartDelay)

	snap := r.Snapshot()
	assert.Equal(t, PhaseAwaitingPlay, snap.Phase)
	assert.Equal(t, 0, snap.TurnIndex)
	assert.True(t, snap.RoundIsFresh)
	for i, s := range sinks {
		dealt := s.last(EventCardsDealt)
		require.NotNil(t, dealt, "seat %d should receive its hand", i)
		assert.Len(t, dealt.Cards, 17)
		assert.Equal(t, 17, snap.HandSizes[i])

		started := s.last(EventGameStarted)
		require.NotNil(t, started)
		assert.Equal(t, 0, *started.Seat)
	}
}

func TestJoinRejectedAfterStart(t *testing.T) {
	r, _, _ := setupTestRoom(t, 2, 1)
	_, err := r.Join(&mockSink{})
	assert.ErrorIs(t, err, ErrRoomStarted)
}

func TestPlayOutOfTurnIsIgnored(t *testing.T) {
	r, sinks, _ := setupTestRoom(t, 3, 1)
	before := r.Snapshot()

	assert.False(t, r.Place(1, pickCards("K", 1), "K", 16))
	assert.False(t, r.Pass(2))
	assert.False(t, r.Challenge(1))

	assert.Equal(t, before, r.Snapshot())
	for _, s := range sinks {
		assert.Empty(t, s.all())
	}
}

func TestPlayOpensChallengeWindow(t *testing.T) {
	r, sinks, _ := setupTestRoom(t, 3, 1)

	require.True(t, r.Place(0, pickCards("K", 2), "K", 15))
	snap := r.Snapshot()
	assert.Equal(t, PhaseChallengeWindow, snap.Phase)
	assert.True(t, snap.ChallengeWindowOpen)
	assert.Equal(t, cards.Rank("K"), snap.DeclaredRank)
	assert.False(t, snap.RoundIsFresh)
	assert.Equal(t, 2, snap.ClaimStackSize)
	assert.Equal(t, 15, snap.HandSizes[0])

	played := sinks[1].last(EventPlayed)
	require.NotNil(t, played)
	assert.Equal(t, 0, *played.Seat)
	assert.Equal(t, 2, *played.CardCount)
	assert.Equal(t, cards.Rank("K"), played.DeclaredRank)
	assert.Empty(t, played.Cards, "card identities stay hidden")
	assert.NotNil(t, sinks[2].last(EventChallengeWindowOpen))

	// no new play while the window is open
	assert.False(t, r.Place(1, pickCards("K", 1), "K", 16))
	assert.Equal(t, 2, r.Snapshot().ClaimStackSize)
}

func TestWindowExpiryAdvancesTurn(t *testing.T) {
	r, sinks, sched := setupTestRoom(t, 3, 1)
	require.True(t, r.Place(0, pickCards("7", 1), "7", 16))

	sched.Advance(DefaultSettings().ChallengeWindow)

	snap := r.Snapshot()
	assert.Equal(t, PhaseAwaitingPlay, snap.Phase)
	assert.False(t, snap.ChallengeWindowOpen)
	assert.Equal(t, 1, snap.TurnIndex)
	assert.Equal(t, 1, snap.ClaimStackSize, "the stack carries over within the round")
	assert.NotNil(t, sinks[0].last(EventChallengeWindowClosed))
	turn := sinks[2].last(EventTurnChanged)
	require.NotNil(t, turn)
	assert.Equal(t, 1, *turn.Seat)
}

func TestRoundRankIsFixed(t *testing.T) {
	r, _, sched := setupTestRoom(t, 3, 1)
	require.True(t, r.Place(0, pickCards("K", 1), "K", 16))
	sched.Advance(DefaultSettings().ChallengeWindow)

	before := r.Snapshot()
	assert.False(t, r.Place(1, pickCards("Q", 1), "Q", 16))
	assert.Equal(t, before, r.Snapshot())

	assert.True(t, r.Place(1, []cards.Card{{Rank: "3", Suit: cards.Hearts}}, "K", 16))
	snap := r.Snapshot()
	assert.Equal(t, cards.Rank("K"), snap.DeclaredRank)
	assert.Equal(t, 2, snap.ClaimStackSize)
}

func TestPlayValidation(t *testing.T) {
	r, _, _ := setupTestRoom(t, 2, 1)
	before := r.Snapshot()

	assert.False(t, r.Place(0, nil, "K", 26), "empty play")
	assert.False(t, r.Place(0, pickCards("K", 1), "Z", 25), "unknown rank")
	assert.False(t, r.Place(0, []cards.Card{{Rank: "K", Suit: cards.Spades}, {Rank: "K", Suit: cards.Spades}}, "K", 24), "repeated card")
	assert.False(t, r.Place(0, []cards.Card{{Rank: "K", Suit: "x"}}, "K", 25), "invalid card")

	setHandSize(r, 0, 1)
	assert.False(t, r.Place(0, pickCards("K", 2), "K", 0), "more cards than held")
	setHandSize(r, 0, 26)
	assert.Equal(t, before, r.Snapshot())
}

func TestChallengeCatchesBluff(t *testing.T) {
	r, sinks, sched := setupTestRoom(t, 3, 1)
	played := []cards.Card{{Rank: "K", Suit: cards.Spades}, {Rank: "4", Suit: cards.Clubs}}
	require.True(t, r.Place(0, played, "K", 15))

	require.True(t, r.Challenge(2))
	snap := r.Snapshot()
	assert.Equal(t, PhaseResolving, snap.Phase)
	assert.False(t, snap.ChallengeWindowOpen)
	assert.Equal(t, 17, snap.HandSizes[0], "bluffer takes the cards back")
	assert.Equal(t, 17, snap.HandSizes[2])
	assert.Equal(t, 2, snap.TurnIndex, "challenger moves next")

	revealed := sinks[1].last(EventChallengeRevealed)
	require.NotNil(t, revealed)
	assert.Equal(t, played, revealed.Cards)
	assert.True(t, *revealed.Bluff)
	assert.Equal(t, 0, *revealed.PlayerSeat)
	assert.Equal(t, 2, *revealed.ChallengerSeat)

	penalty := sinks[0].last(EventPenaltyCards)
	require.NotNil(t, penalty)
	assert.Equal(t, played, penalty.Cards)
	assert.Nil(t, sinks[2].last(EventPenaltyCards))

	sched.Advance(DefaultSettings().ResolutionPause)
	snap = r.Snapshot()
	assert.Equal(t, PhaseAwaitingPlay, snap.Phase)
	assert.Equal(t, 0, snap.ClaimStackSize)
	assert.Empty(t, snap.DeclaredRank)
	assert.True(t, snap.RoundIsFresh)
	assert.Equal(t, 2, snap.TurnIndex)
	assert.NotNil(t, sinks[1].last(EventRoundOver))
	turn := sinks[1].last(EventTurnChanged)
	require.NotNil(t, turn)
	assert.Equal(t, 2, *turn.Seat)
}

func TestChallengeOfHonestPlayPenalizesChallenger(t *testing.T) {
	r, sinks, sched := setupTestRoom(t, 2, 1)
	played := pickCards("K", 2)
	require.True(t, r.Place(0, played, "K", 24))

	require.True(t, r.Challenge(1))
	snap := r.Snapshot()
	assert.Equal(t, 24, snap.HandSizes[0])
	assert.Equal(t, 28, snap.HandSizes[1])
	assert.False(t, *sinks[0].last(EventChallengeRevealed).Bluff)
	penalty := sinks[1].last(EventPenaltyCards)
	require.NotNil(t, penalty)
	assert.Equal(t, played, penalty.Cards)

	sched.Advance(DefaultSettings().ResolutionPause)
	assert.Equal(t, 0, r.Snapshot().TurnIndex, "turn returns to the player")
}

func TestChallengeTargetsOnlyMostRecentPlay(t *testing.T) {
	r, sinks, sched := setupTestRoom(t, 3, 1)
	require.True(t, r.Place(0, []cards.Card{{Rank: "2", Suit: cards.Spades}, {Rank: "3", Suit: cards.Spades}}, "9", 15))
	sched.Advance(DefaultSettings().ChallengeWindow)
	last := pickCards("9", 1)
	require.True(t, r.Place(1, last, "9", 16))

	require.True(t, r.Challenge(2))
	revealed := sinks[2].last(EventChallengeRevealed)
	require.NotNil(t, revealed)
	assert.Equal(t, last, revealed.Cards)
	assert.False(t, *revealed.Bluff, "the earlier bluff is not examined")
	assert.Equal(t, 2, r.Snapshot().ClaimStackSize, "the rest of the round stays until the round clears")

	sched.Advance(DefaultSettings().ResolutionPause)
	assert.Equal(t, 0, r.Snapshot().ClaimStackSize)
}

func TestChallengeRules(t *testing.T) {
	r, _, sched := setupTestRoom(t, 3, 1)
	require.True(t, r.Place(0, pickCards("5", 1), "5", 16))

	assert.False(t, r.Challenge(0), "own play")
	assert.False(t, r.Challenge(3), "empty seat")
	require.True(t, r.Challenge(1))
	assert.False(t, r.Challenge(2), "window already consumed")

	sched.Advance(DefaultSettings().ResolutionPause)
	assert.False(t, r.Challenge(2), "no play to challenge")
}

func TestChallengeBeatsExpiry(t *testing.T) {
	r, _, sched := setupTestRoom(t, 3, 1)
	require.True(t, r.Place(0, pickCards("J", 1), "J", 16))
	expiry := sched.Last()

	require.True(t, r.Challenge(1))
	before := r.Snapshot()

	// the timer fired but lost the race for the lock
	expiry.f()
	assert.Equal(t, before, r.Snapshot())
	assert.False(t, expiry.Stop(), "challenge already stopped the timer")
}

func TestExpiryBeatsChallenge(t *testing.T) {
	r, sinks, sched := setupTestRoom(t, 3, 1)
	require.True(t, r.Place(0, pickCards("J", 1), "J", 16))
	sched.Advance(DefaultSettings().ChallengeWindow)

	before := r.Snapshot()
	n := len(sinks[0].all())
	assert.False(t, r.Challenge(1))
	assert.Equal(t, before, r.Snapshot())
	assert.Len(t, sinks[0].all(), n)
}

func TestProvisionalWinConfirmedOnExpiry(t *testing.T) {
	r, sinks, sched := setupTestRoom(t, 3, 1)
	setHandSize(r, 0, 1)
	require.True(t, r.Place(0, pickCards("A", 1), "A", 0))
	assert.Equal(t, 0, r.Snapshot().PendingWinner)
	assert.Empty(t, r.Snapshot().WonSeats, "win is provisional while the window is open")

	sched.Advance(DefaultSettings().ChallengeWindow)
	snap := r.Snapshot()
	assert.Equal(t, []int{0}, snap.WonSeats)
	assert.Equal(t, -1, snap.PendingWinner)
	assert.Equal(t, 1, snap.TurnIndex)
	won := sinks[2].last(EventSeatWon)
	require.NotNil(t, won)
	assert.Equal(t, 0, *won.Seat)

	// seat 0 is skipped from now on
	require.True(t, r.Pass(1))
	require.True(t, r.Pass(2))
	snap = r.Snapshot()
	assert.Equal(t, PhaseResolving, snap.Phase, "every seat still playing has passed")
	sched.Advance(DefaultSettings().InterRoundPause)
	assert.NotEqual(t, 0, r.Snapshot().TurnIndex)
}

func TestProvisionalWinRevokedOnBluff(t *testing.T) {
	r, _, sched := setupTestRoom(t, 3, 1)
	setHandSize(r, 0, 1)
	require.True(t, r.Place(0, []cards.Card{{Rank: "2", Suit: cards.Hearts}}, "A", 0))

	require.True(t, r.Challenge(1))
	snap := r.Snapshot()
	assert.Equal(t, -1, snap.PendingWinner)
	assert.Empty(t, snap.WonSeats)
	assert.Equal(t, 1, snap.HandSizes[0])

	sched.Advance(DefaultSettings().ResolutionPause)
	assert.Equal(t, 1, r.Snapshot().TurnIndex)
}

func TestHonestLastPlayEndsTwoSeatGame(t *testing.T) {
	r, sinks, _ := setupTestRoom(t, 2, 1)
	setHandSize(r, 0, 1)
	require.True(t, r.Place(0, pickCards("A", 1), "A", 0))

	require.True(t, r.Challenge(1))
	snap := r.Snapshot()
	assert.Equal(t, PhaseFinished, snap.Phase)
	assert.Equal(t, []int{0, 1}, snap.WonSeats)
	over := sinks[1].last(EventGameOver)
	require.NotNil(t, over)
	assert.Equal(t, []int{0, 1}, over.Winners)

	assert.False(t, r.Pass(0))
	assert.False(t, r.Pass(1))
}

func TestAdvanceTurnWithOneSeatLeftFinishes(t *testing.T) {
	for _, start := range []int{0, 1, 2} {
		r, _, _ := setupTestRoom(t, 3, 1)
		r.mu.Lock()
		r.wonSeats[0], r.wonSeats[1] = true, true
		r.wonOrder = []int{0, 1}
		r.turnIndex = start
		r.advanceTurn()
		r.mu.Unlock()

		snap := r.Snapshot()
		assert.Equal(t, PhaseFinished, snap.Phase)
		assert.Equal(t, []int{0, 1, 2}, snap.WonSeats)

		r.mu.Lock()
		r.advanceTurn()
		r.mu.Unlock()
		assert.Equal(t, snap, r.Snapshot(), "advancing a finished game changes nothing")
	}
}

func TestAllPassDiscardsRound(t *testing.T) {
	r, sinks, sched := setupTestRoom(t, 3, 1)
	require.True(t, r.Place(0, pickCards("8", 2), "8", 15))
	sched.Advance(DefaultSettings().ChallengeWindow)

	require.True(t, r.Pass(1))
	assert.Equal(t, 2, r.Snapshot().TurnIndex)
	require.True(t, r.Pass(2))
	require.True(t, r.Pass(0))

	snap := r.Snapshot()
	assert.Equal(t, PhaseResolving, snap.Phase)
	assert.Equal(t, 0, snap.ClaimStackSize)
	assert.Empty(t, snap.DeclaredRank)
	assert.Empty(t, snap.PassedSeats)
	assert.True(t, snap.RoundIsFresh)
	assert.NotNil(t, sinks[1].last(EventRoundOver))

	passes := sinks[1].ofType(EventPlayed)
	require.Len(t, passes, 4)
	assert.Equal(t, 0, *passes[3].CardCount)

	sched.Advance(DefaultSettings().InterRoundPause)
	snap = r.Snapshot()
	assert.Equal(t, PhaseAwaitingPlay, snap.Phase)
	assert.Contains(t, []int{0, 1, 2}, snap.TurnIndex)
}

func TestPassOutPicksAnyActiveSeat(t *testing.T) {
	seen := make(map[int]bool)
	for seed := int64(1); seed <= 60; seed++ {
		r, _, sched := setupTestRoom(t, 3, seed)
		require.True(t, r.Pass(0))
		require.True(t, r.Pass(1))
		require.True(t, r.Pass(2))
		sched.Advance(DefaultSettings().InterRoundPause)
		seen[r.Snapshot().TurnIndex] = true
	}
	assert.Len(t, seen, 3)
}

func TestDisconnectedSeatIsSkipped(t *testing.T) {
	r, sinks, sched := setupTestRoom(t, 3, 1)
	r.Disconnect(1)

	dis := sinks[0].last(EventSeatDisconnected)
	require.NotNil(t, dis)
	assert.Equal(t, 1, *dis.Seat)
	assert.Empty(t, sinks[1].all(), "a frozen seat receives nothing")

	require.True(t, r.Place(0, pickCards("6", 1), "6", 16))
	assert.False(t, r.Challenge(1), "frozen seats cannot challenge")
	sched.Advance(DefaultSettings().ChallengeWindow)
	assert.Equal(t, 2, r.Snapshot().TurnIndex)

	// a pass-out only needs the seats still connected
	require.True(t, r.Pass(2))
	require.True(t, r.Pass(0))
	assert.Equal(t, PhaseResolving, r.Snapshot().Phase)
}

func TestDisconnectOnTurnAdvances(t *testing.T) {
	r, sinks, _ := setupTestRoom(t, 3, 1)
	r.Disconnect(0)

	snap := r.Snapshot()
	assert.Equal(t, 1, snap.TurnIndex)
	assert.Equal(t, PhaseAwaitingPlay, snap.Phase)
	turn := sinks[2].last(EventTurnChanged)
	require.NotNil(t, turn)
	assert.Equal(t, 1, *turn.Seat)
}

func TestDisconnectOnTurnCompletesPassOut(t *testing.T) {
	r, sinks, sched := setupTestRoom(t, 3, 1)
	require.True(t, r.Place(0, pickCards("8", 1), "8", 16))
	sched.Advance(DefaultSettings().ChallengeWindow)
	require.True(t, r.Pass(1))
	require.True(t, r.Pass(2))
	require.Equal(t, 0, r.Snapshot().TurnIndex)

	r.Disconnect(0)

	snap := r.Snapshot()
	assert.Equal(t, PhaseResolving, snap.Phase)
	assert.Zero(t, snap.ClaimStackSize)
	assert.Empty(t, snap.DeclaredRank)
	assert.Empty(t, snap.PassedSeats)
	assert.True(t, snap.RoundIsFresh)
	assert.NotNil(t, sinks[1].last(EventRoundOver))

	sched.Advance(DefaultSettings().InterRoundPause)
	snap = r.Snapshot()
	assert.Equal(t, PhaseAwaitingPlay, snap.Phase)
	assert.Contains(t, []int{1, 2}, snap.TurnIndex)
}

func TestDisconnectLeavingOneSeatAwardsWin(t *testing.T) {
	r, sinks, _ := setupTestRoom(t, 3, 1)
	r.Disconnect(1)
	r.Disconnect(2)

	snap := r.Snapshot()
	assert.Equal(t, PhaseFinished, snap.Phase)
	assert.Equal(t, []int{0}, snap.WonSeats)
	assert.False(t, snap.Closed)
	assert.NotNil(t, sinks[0].last(EventGameOver))
}

func TestLastHumanLeavingTearsDown(t *testing.T) {
	r, _, sched := setupTestRoom(t, 2, 1)
	var emptied bool
	r.OnEmpty = func(uuid.UUID) { emptied = true }
	require.True(t, r.Place(0, pickCards("Q", 1), "Q", 25))
	expiry := sched.Last()

	r.Disconnect(0)
	r.Disconnect(1)
	assert.True(t, emptied)
	assert.True(t, r.Closed())
	assert.Equal(t, 0, sched.Pending())

	before := r.Snapshot()
	expiry.f()
	assert.Equal(t, before, r.Snapshot(), "a stale timer never touches a torn-down room")

	assert.False(t, r.Challenge(1))
	r.Close()
	assert.Equal(t, before, r.Snapshot())
}

func TestLobbyDisconnectFreesSeat(t *testing.T) {
	sched := newManualScheduler()
	r := NewRoom(DefaultSettings(), testOptions(sched, 1)...)
	a, b := &mockSink{}, &mockSink{}
	_, err := r.Join(a)
	require.NoError(t, err)
	_, err = r.Join(b)
	require.NoError(t, err)

	r.Disconnect(1)
	sched.Advance(DefaultSettings().StartDelay)
	snap := r.Snapshot()
	assert.Equal(t, PhaseLobby, snap.Phase, "too few seats left to start")
	assert.Equal(t, []int{0}, snap.Occupied)

	seat, err := r.Join(&mockSink{})
	require.NoError(t, err)
	assert.Equal(t, 1, seat)
	sched.Advance(DefaultSettings().StartDelay)
	assert.Equal(t, PhaseAwaitingPlay, r.Snapshot().Phase)
}

func TestBotTakesItsTurn(t *testing.T) {
	sched := newManualScheduler()
	r := NewRoom(DefaultSettings(), testOptions(sched, 3)...)
	require.NoError(t, r.SeatBot(1, bot.Medium))
	human := &mockSink{}
	_, err := r.Join(human)
	require.NoError(t, err)
	sched.Advance(DefaultSettings().StartDelay)

	require.True(t, r.Pass(0))
	assert.Equal(t, 1, r.Snapshot().TurnIndex)
	human.clear()

	sched.Advance(DefaultSettings().BotThinkDelay)
	played := human.last(EventPlayed)
	require.NotNil(t, played, "the bot acts once its think delay passes")
	assert.Equal(t, 1, *played.Seat)
}

func TestHardBotChallengesImpossibleClaim(t *testing.T) {
	sched := newManualScheduler()
	r := NewRoom(DefaultSettings(), testOptions(sched, 5)...)
	require.NoError(t, r.SeatBot(1, bot.Hard))
	human := &mockSink{}
	_, err := r.Join(human)
	require.NoError(t, err)
	r.Start()

	r.mu.Lock()
	b := r.seats[1].Bot
	b.SetCards(pickCards("3", 4))
	r.mu.Unlock()

	played := append(pickCards("Q", 4), cards.Card{Rank: "J", Suit: cards.Hearts})
	require.True(t, r.Place(0, played, "Q", 21))
	sched.Advance(DefaultSettings().BotChallengeDelayMax)

	revealed := human.last(EventChallengeRevealed)
	require.NotNil(t, revealed, "five queens cannot exist")
	assert.Equal(t, 1, *revealed.ChallengerSeat)
	assert.True(t, *revealed.Bluff)
	assert.Equal(t, 26, r.Snapshot().HandSizes[0])
	assert.Len(t, human.last(EventPenaltyCards).Cards, 5)
}

func TestHardBotOnPlausibleKings(t *testing.T) {
	sched := newManualScheduler()
	r := NewRoom(DefaultSettings(), testOptions(sched, 9)...)
	require.NoError(t, r.SeatBot(1, bot.Hard))
	human := &mockSink{}
	_, err := r.Join(human)
	require.NoError(t, err)
	r.Start()

	r.mu.Lock()
	r.seats[1].Bot.SetCards(pickCards("4", 3))
	r.mu.Unlock()

	require.True(t, r.Place(0, pickCards("K", 2), "K", 24))
	sched.Advance(DefaultSettings().ChallengeWindow)

	if revealed := human.last(EventChallengeRevealed); revealed != nil {
		assert.False(t, *revealed.Bluff)
		assert.Equal(t, 5, r.Snapshot().HandSizes[1], "the bot takes both kings")
		sched.Advance(DefaultSettings().ResolutionPause)
		assert.Equal(t, 0, r.Snapshot().TurnIndex)
	} else {
		assert.Equal(t, 1, r.Snapshot().TurnIndex)
	}
}

func TestBotGameKeepsInvariants(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		sched := newManualScheduler()
		reg := NewRegistry(DefaultSettings(), testOptions(sched, seed)...)
		r, err := reg.NewBotRoom(bot.Easy, bot.Medium, bot.Hard)
		require.NoError(t, err)
		r.Start()

		for step := 0; step < 5000 && sched.Step(); step++ {
			snap := r.Snapshot()
			total := snap.ClaimStackSize
			for _, n := range snap.HandSizes {
				total += n
			}
			assert.LessOrEqual(t, total, cards.DeckSize)
			if snap.Phase == PhaseFinished {
				break
			}
			for _, w := range snap.WonSeats {
				assert.NotEqual(t, w, snap.TurnIndex, "seed %d step %d: won seat holds the turn", seed, step)
			}
			if snap.Phase == PhaseChallengeWindow {
				assert.True(t, snap.ChallengeWindowOpen)
			} else {
				assert.False(t, snap.ChallengeWindowOpen)
			}
		}
		r.Close()
	}
}
