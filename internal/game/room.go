// internal/game/room.go
package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/bluff/internal/bot"
	"github.com/jason-s-yu/bluff/internal/cache"
	"github.com/jason-s-yu/bluff/internal/cards"
	"github.com/sirupsen/logrus"
)

// Phase is the coarse state of a room.
type Phase string

const (
	PhaseLobby           Phase = "lobby"
	PhaseAwaitingPlay    Phase = "awaitingPlay"
	PhaseChallengeWindow Phase = "challengeWindow"
	PhaseResolving       Phase = "resolving" // after a challenge or a pass-out, until the next round starts
	PhaseFinished        Phase = "finished"
)

// ActionRecorder receives a record of every accepted action, e.g. for the historian queue.
type ActionRecorder interface {
	Publish(ctx context.Context, record cache.RoomActionRecord) error
}

// Seat is one place at the table, bound to a human connection or to a bot.
type Seat struct {
	Index     int
	Occupied  bool
	Connected bool
	Sink      Sink
	Bot       *bot.Bot

	// HandSize is tracked for human seats only; bots hold their real cards.
	HandSize int
}

type lastPlay struct {
	seat  int
	count int
}

// Room owns all per-session state. Every mutation happens with mu held, either from a player
// action or from a deferred task that re-validates the room generation first.
type Room struct {
	ID       uuid.UUID
	settings Settings

	mu    sync.Mutex
	seats []*Seat

	claimStack          []cards.Card
	declaredRank        cards.Rank
	turnIndex           int
	wonSeats            map[int]bool
	wonOrder            []int
	passedSeats         map[int]bool
	roundIsFresh        bool
	challengeWindowOpen bool
	pendingWinner       int
	last                *lastPlay

	phase          Phase
	generation     uint64
	closed         bool
	startScheduled bool
	pending        []Timer
	actionIndex    int

	sched    Scheduler
	rng      *rand.Rand
	log      *logrus.Entry
	recorder ActionRecorder
	actions  *actionLog

	// OnEmpty is called, without the room lock, once the last human leaves and the room is torn
	// down. Typically assigned by the registry that stores the room.
	OnEmpty func(roomID uuid.UUID)
}

// RoomOption customises a room at construction.
type RoomOption func(*Room)

// WithScheduler replaces the runtime timer scheduler, e.g. with a manual one in tests.
func WithScheduler(s Scheduler) RoomOption {
	return func(r *Room) { r.sched = s }
}

// WithRand fixes the room's random source.
func WithRand(rng *rand.Rand) RoomOption {
	return func(r *Room) { r.rng = rng }
}

// WithLogger sets the logger the room's entry derives from.
func WithLogger(l *logrus.Logger) RoomOption {
	return func(r *Room) { r.log = l.WithField("room", r.ID.String()) }
}

// WithRecorder publishes accepted actions to rec.
func WithRecorder(rec ActionRecorder) RoomOption {
	return func(r *Room) { r.recorder = rec }
}

// NewRoom builds an empty room in the lobby phase.
func NewRoom(settings Settings, opts ...RoomOption) *Room {
	id, _ := uuid.NewRandom()
	r := &Room{
		ID:            id,
		settings:      settings,
		seats:         make([]*Seat, settings.Capacity),
		wonSeats:      make(map[int]bool),
		passedSeats:   make(map[int]bool),
		roundIsFresh:  true,
		pendingWinner: -1,
		phase:         PhaseLobby,
		sched:         RealScheduler{},
	}
	for i := range r.seats {
		r.seats[i] = &Seat{Index: i}
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if r.log == nil {
		r.log = logrus.StandardLogger().WithField("room", r.ID.String())
	}
	return r
}

// SeatBot binds seat to a bot of the given difficulty for the room's lifetime.
func (r *Room) SeatBot(seat int, d bot.Difficulty) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	if r.phase != PhaseLobby {
		return ErrRoomStarted
	}
	if seat < 0 || seat >= len(r.seats) || r.seats[seat].Occupied {
		return ErrRoomFull
	}
	s := r.seats[seat]
	s.Occupied = true
	s.Bot = bot.New(d, seat, rand.New(rand.NewSource(r.rng.Int63())))
	r.log.Infof("Bot (%s) seated at %d", d, seat)
	r.maybeScheduleStart()
	return nil
}

// Join seats a human connection at the first free seat and acknowledges it privately.
func (r *Room) Join(sink Sink) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return -1, ErrRoomClosed
	}
	if r.phase != PhaseLobby {
		return -1, ErrRoomStarted
	}
	seat := -1
	for i, s := range r.seats {
		if !s.Occupied {
			seat = i
			break
		}
	}
	if seat == -1 {
		return -1, ErrRoomFull
	}

	s := r.seats[seat]
	s.Occupied = true
	s.Connected = true
	s.Sink = sink

	ev := RoomEvent{
		Type:      EventJoined,
		RoomID:    r.ID.String(),
		Seat:      intPtr(seat),
		SeatCount: r.occupiedCount(),
	}
	if b := r.botSeat(); b != nil {
		ev.Bot = &BotInfo{Seat: b.Index, Name: b.Bot.Name, Difficulty: b.Bot.Difficulty}
	}
	r.sendTo(seat, ev)
	r.log.Infof("Seat %d joined, %d/%d seats taken", seat, r.occupiedCount(), len(r.seats))
	r.logAction(seat, "join", nil)

	r.maybeScheduleStart()
	return seat, nil
}

// maybeScheduleStart schedules the deal once enough seats are taken. Assumes lock is held.
func (r *Room) maybeScheduleStart() {
	if r.phase != PhaseLobby || r.startScheduled || r.occupiedCount() < r.settings.MinPlayers {
		return
	}
	if r.connectedHumans() == 0 {
		return
	}
	r.startScheduled = true
	r.schedule(r.settings.StartDelay, "start", r.start)
}

// Start deals immediately, skipping the start delay.
func (r *Room) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.start()
}

// start shuffles, deals and opens the first round. Assumes lock is held.
func (r *Room) start() {
	r.startScheduled = false
	if r.phase != PhaseLobby {
		return
	}
	occupied := r.occupiedSeats()
	if len(occupied) < r.settings.MinPlayers {
		r.log.Infof("Start skipped, only %d seat(s) taken", len(occupied))
		return
	}

	deck := cards.NewDeck()
	cards.Shuffle(deck, r.rng)
	hands := cards.Deal(deck, len(occupied))
	for k, idx := range occupied {
		s := r.seats[idx]
		if s.Bot != nil {
			s.Bot.SetCards(hands[k])
			continue
		}
		s.HandSize = len(hands[k])
		r.sendTo(idx, RoomEvent{Type: EventCardsDealt, Cards: hands[k]})
	}

	r.bump()
	r.phase = PhaseAwaitingPlay
	r.roundIsFresh = true
	r.turnIndex = occupied[0]
	r.log.Infof("Game started with %d seats, %d cards each", len(occupied), len(hands[0]))
	r.broadcast(RoomEvent{Type: EventGameStarted, Seat: intPtr(r.turnIndex), SeatCount: len(occupied)})
	r.logAction(-1, "game_start", map[string]interface{}{"seats": len(occupied), "handSize": len(hands[0])})
	r.scheduleBotTurn()
}

// Disconnect freezes a human seat. A lobby seat is freed instead. If no human is left the room
// is torn down and OnEmpty fires.
func (r *Room) Disconnect(seat int) {
	r.mu.Lock()
	emptied := r.disconnect(seat)
	onEmpty := r.OnEmpty
	r.mu.Unlock()

	if emptied && onEmpty != nil {
		onEmpty(r.ID)
	}
}

func (r *Room) disconnect(seat int) bool {
	if r.closed || seat < 0 || seat >= len(r.seats) {
		return false
	}
	s := r.seats[seat]
	if !s.Occupied || s.Bot != nil || !s.Connected {
		return false
	}
	s.Connected = false
	s.Sink = nil
	if r.phase == PhaseLobby {
		s.Occupied = false
	}
	r.log.Infof("Seat %d disconnected", seat)
	r.broadcast(RoomEvent{Type: EventSeatDisconnected, Seat: intPtr(seat)})
	r.logAction(seat, "disconnect", nil)

	if r.connectedHumans() == 0 {
		r.close("no human seats left")
		return true
	}
	if r.phase == PhaseLobby || r.phase == PhaseFinished {
		return false
	}

	active := r.activeSeats()
	if len(active) == 1 && len(r.remainingSeats()) > 1 {
		r.log.Infof("Seat %d is the only seat still able to play", active[0])
		r.confirmWin(active[0])
		r.finish()
		return false
	}
	if r.phase == PhaseAwaitingPlay && r.turnIndex == seat {
		r.bump()
		if r.allActivePassed() {
			r.passOut()
			return false
		}
		r.advanceTurn()
	}
	return false
}

// Close tears the room down. Pending tasks are stopped and any that already fired become no-ops.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.close("closed")
}

func (r *Room) close(reason string) {
	if r.closed {
		return
	}
	r.bump()
	r.closed = true
	r.challengeWindowOpen = false
	for _, s := range r.seats {
		s.Sink = nil
	}
	r.log.Infof("Room torn down: %s", reason)
	r.logAction(-1, "room_closed", map[string]interface{}{"reason": reason})
	if r.actions != nil {
		r.actions.close()
	}
}

// Closed reports whether the room has been torn down.
func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// schedule runs fn after d unless the room changes generation or closes first. Assumes lock is
// held.
func (r *Room) schedule(d time.Duration, name string, fn func()) {
	gen := r.generation
	t := r.sched.AfterFunc(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed || r.generation != gen {
			r.log.Debugf("Stale %s task ignored (generation %d, now %d)", name, gen, r.generation)
			return
		}
		fn()
	})
	r.pending = append(r.pending, t)
}

// bump invalidates every outstanding task. Assumes lock is held.
func (r *Room) bump() {
	r.generation++
	for _, t := range r.pending {
		t.Stop()
	}
	r.pending = r.pending[:0]
}

// broadcast delivers ev to every connected seat. Assumes lock is held.
func (r *Room) broadcast(ev RoomEvent) {
	for _, s := range r.seats {
		if s.Connected && s.Sink != nil {
			s.Sink.Deliver(ev)
		}
	}
}

// sendTo delivers ev to one seat if it is connected. Assumes lock is held.
func (r *Room) sendTo(seat int, ev RoomEvent) {
	if seat < 0 || seat >= len(r.seats) {
		return
	}
	if s := r.seats[seat]; s.Connected && s.Sink != nil {
		s.Sink.Deliver(ev)
	}
}

// logAction queues an action record for the room's publisher when a recorder is configured.
// Assumes lock is held.
func (r *Room) logAction(seat int, actionType string, payload map[string]interface{}) {
	r.actionIndex++
	if r.recorder == nil {
		return
	}
	if r.actions == nil {
		r.actions = newActionLog(r.recorder, r.log)
	}
	r.actions.push(cache.RoomActionRecord{
		RoomID:        r.ID,
		ActionIndex:   r.actionIndex,
		Seat:          seat,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	})
}

func (r *Room) occupiedSeats() []int {
	var out []int
	for i, s := range r.seats {
		if s.Occupied {
			out = append(out, i)
		}
	}
	return out
}

func (r *Room) occupiedCount() int {
	return len(r.occupiedSeats())
}

func (r *Room) connectedHumans() int {
	n := 0
	for _, s := range r.seats {
		if s.Occupied && s.Bot == nil && s.Connected {
			n++
		}
	}
	return n
}

func (r *Room) hasBot() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.botSeat() != nil
}

func (r *Room) botSeat() *Seat {
	for _, s := range r.seats {
		if s.Bot != nil {
			return s
		}
	}
	return nil
}

// remainingSeats are seats in the game that have not won.
func (r *Room) remainingSeats() []int {
	var out []int
	for i, s := range r.seats {
		if s.Occupied && !r.wonSeats[i] {
			out = append(out, i)
		}
	}
	return out
}

// canAct reports whether seat may hold the turn: in the game, not won, not frozen.
func (r *Room) canAct(seat int) bool {
	if seat < 0 || seat >= len(r.seats) {
		return false
	}
	s := r.seats[seat]
	return s.Occupied && !r.wonSeats[seat] && (s.Bot != nil || s.Connected)
}

func (r *Room) activeSeats() []int {
	var out []int
	for i := range r.seats {
		if r.canAct(i) {
			out = append(out, i)
		}
	}
	return out
}

func (r *Room) handSize(seat int) int {
	s := r.seats[seat]
	if s.Bot != nil {
		return s.Bot.HandSize()
	}
	return s.HandSize
}

// Snapshot is a copy of a room's observable state.
type Snapshot struct {
	ID                  uuid.UUID    `json:"id"`
	Phase               Phase        `json:"phase"`
	Seats               int          `json:"seats"`
	Occupied            []int        `json:"occupied"`
	Connected           []int        `json:"connected"`
	HandSizes           []int        `json:"handSizes"`
	ClaimStack          []cards.Card `json:"-"`
	ClaimStackSize      int          `json:"claimStackSize"`
	DeclaredRank        cards.Rank   `json:"declaredRank,omitempty"`
	TurnIndex           int          `json:"turnIndex"`
	WonSeats            []int        `json:"wonSeats"`
	PassedSeats         []int        `json:"passedSeats"`
	RoundIsFresh        bool         `json:"roundIsFresh"`
	ChallengeWindowOpen bool         `json:"challengeWindowOpen"`
	PendingWinner       int          `json:"pendingWinner"`
	Bot                 *BotInfo     `json:"bot,omitempty"`
	Generation          uint64       `json:"generation"`
	Closed              bool         `json:"closed"`
}

// Snapshot copies the room state under the lock.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		ID:                  r.ID,
		Phase:               r.phase,
		Seats:               len(r.seats),
		HandSizes:           make([]int, len(r.seats)),
		ClaimStack:          append([]cards.Card(nil), r.claimStack...),
		ClaimStackSize:      len(r.claimStack),
		DeclaredRank:        r.declaredRank,
		TurnIndex:           r.turnIndex,
		WonSeats:            append([]int(nil), r.wonOrder...),
		RoundIsFresh:        r.roundIsFresh,
		ChallengeWindowOpen: r.challengeWindowOpen,
		PendingWinner:       r.pendingWinner,
		Generation:          r.generation,
		Closed:              r.closed,
	}
	for i, s := range r.seats {
		if s.Occupied {
			snap.Occupied = append(snap.Occupied, i)
			snap.HandSizes[i] = r.handSize(i)
		}
		if s.Connected {
			snap.Connected = append(snap.Connected, i)
		}
		if r.passedSeats[i] {
			snap.PassedSeats = append(snap.PassedSeats, i)
		}
	}
	if b := r.botSeat(); b != nil {
		snap.Bot = &BotInfo{Seat: b.Index, Name: b.Bot.Name, Difficulty: b.Bot.Difficulty}
	}
	return snap
}
