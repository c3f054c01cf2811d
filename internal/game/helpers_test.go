// internal/game/helpers_test.go
package game

import (
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/jason-s-yu/bluff/internal/cards"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// manualScheduler fires deferred tasks only when the test advances its clock.
type manualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	s       *manualScheduler
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTask) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{}
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTask{s: s, at: s.now + d, seq: s.seq, f: f}
	s.tasks = append(s.tasks, t)
	return t
}

// next pops the earliest live task due by limit. Assumes lock is held.
func (s *manualScheduler) next(limit time.Duration, bounded bool) *manualTask {
	var best *manualTask
	for _, t := range s.tasks {
		if t.stopped || t.fired || (bounded && t.at > limit) {
			continue
		}
		if best == nil || t.at < best.at || (t.at == best.at && t.seq < best.seq) {
			best = t
		}
	}
	if best != nil {
		best.fired = true
		if best.at > s.now {
			s.now = best.at
		}
	}
	return best
}

// Advance moves the clock forward by d, firing every task that falls due in order.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()
	for {
		s.mu.Lock()
		t := s.next(target, true)
		if t == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		t.f()
	}
}

// Step fires the next live task, however far away. Returns false when nothing is pending.
func (s *manualScheduler) Step() bool {
	s.mu.Lock()
	t := s.next(0, false)
	s.mu.Unlock()
	if t == nil {
		return false
	}
	t.f()
	return true
}

// Last returns the most recently scheduled task.
func (s *manualScheduler) Last() *manualTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) == 0 {
		return nil
	}
	return s.tasks[len(s.tasks)-1]
}

// Pending counts tasks that are neither stopped nor fired.
func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// mockSink collects the events delivered to one seat.
type mockSink struct {
	mu     sync.Mutex
	events []RoomEvent
}

func (m *mockSink) Deliver(ev RoomEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *mockSink) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

func (m *mockSink) all() []RoomEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RoomEvent(nil), m.events...)
}

func (m *mockSink) ofType(typ EventType) []RoomEvent {
	var out []RoomEvent
	for _, ev := range m.all() {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (m *mockSink) last(typ EventType) *RoomEvent {
	evs := m.ofType(typ)
	if len(evs) == 0 {
		return nil
	}
	return &evs[len(evs)-1]
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testOptions(sched Scheduler, seed int64) []RoomOption {
	return []RoomOption{
		WithScheduler(sched),
		WithRand(rand.New(rand.NewSource(seed))),
		WithLogger(testLogger()),
	}
}

// setupTestRoom seats n humans, deals, and clears the setup events.
func setupTestRoom(t *testing.T, n int, seed int64) (*Room, []*mockSink, *manualScheduler) {
	t.Helper()
	sched := newManualScheduler()
	r := NewRoom(DefaultSettings(), testOptions(sched, seed)...)
	sinks := make([]*mockSink, n)
	for i := range sinks {
		sinks[i] = &mockSink{}
		seat, err := r.Join(sinks[i])
		require.NoError(t, err)
		require.Equal(t, i, seat)
	}
	r.Start()
	require.Equal(t, PhaseAwaitingPlay, r.Snapshot().Phase)
	for _, s := range sinks {
		s.clear()
	}
	return r, sinks, sched
}

// setHandSize overrides a human seat's tracked hand size.
func setHandSize(r *Room, seat, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seats[seat].HandSize = n
}

// pickCards returns n distinct cards of rank.
func pickCards(rank cards.Rank, n int) []cards.Card {
	out := make([]cards.Card, 0, n)
	for _, s := range cards.Suits[:n] {
		out = append(out, cards.Card{Rank: rank, Suit: s})
	}
	return out
}
