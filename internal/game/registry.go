// internal/game/registry.go
package game

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/bluff/internal/bot"
)

// BotSeat is where a bot-augmented room seats its bot.
const BotSeat = 1

// Registry owns the live rooms of one server. Rooms remove themselves through OnEmpty.
type Registry struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*Room
	order []uuid.UUID

	settings Settings
	opts     []RoomOption
}

// NewRegistry returns an empty registry whose rooms are built with settings and opts.
func NewRegistry(settings Settings, opts ...RoomOption) *Registry {
	return &Registry{
		rooms:    make(map[uuid.UUID]*Room),
		settings: settings,
		opts:     opts,
	}
}

// Assign seats a new connection. Without a bot it joins the oldest lobby room with a free seat,
// or a fresh room if none has one. With a bot it always gets a fresh room whose bot sits at
// BotSeat.
func (g *Registry) Assign(withBot bool, d bot.Difficulty, sink Sink) (*Room, int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !withBot {
		for _, id := range g.order {
			room := g.rooms[id]
			if room.hasBot() {
				continue
			}
			seat, err := room.Join(sink)
			if err == nil {
				return room, seat, nil
			}
			if !errors.Is(err, ErrRoomFull) && !errors.Is(err, ErrRoomStarted) && !errors.Is(err, ErrRoomClosed) {
				return nil, -1, err
			}
		}
	}

	room := g.newRoom()
	if withBot {
		if err := room.SeatBot(BotSeat, d); err != nil {
			return nil, -1, fmt.Errorf("failed to seat bot: %w", err)
		}
	}
	seat, err := room.Join(sink)
	if err != nil {
		return nil, -1, fmt.Errorf("failed to join new room: %w", err)
	}
	g.add(room)
	return room, seat, nil
}

// NewBotRoom creates a room with a bot in every seat. It is not started; call Start.
func (g *Registry) NewBotRoom(difficulties ...bot.Difficulty) (*Room, error) {
	if len(difficulties) < g.settings.MinPlayers || len(difficulties) > g.settings.Capacity {
		return nil, fmt.Errorf("need between %d and %d bots, got %d", g.settings.MinPlayers, g.settings.Capacity, len(difficulties))
	}
	room := g.newRoom()
	for seat, d := range difficulties {
		if err := room.SeatBot(seat, d); err != nil {
			return nil, fmt.Errorf("failed to seat bot %d: %w", seat, err)
		}
	}
	g.mu.Lock()
	g.add(room)
	g.mu.Unlock()
	return room, nil
}

func (g *Registry) newRoom() *Room {
	room := NewRoom(g.settings, g.opts...)
	room.OnEmpty = g.Delete
	return room
}

// add stores room. Assumes lock is held.
func (g *Registry) add(room *Room) {
	g.rooms[room.ID] = room
	g.order = append(g.order, room.ID)
}

// Get retrieves a room if it exists.
func (g *Registry) Get(id uuid.UUID) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[id]
	return r, ok
}

// Delete removes a room. The room itself is not closed.
func (g *Registry) Delete(id uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.rooms[id]; !ok {
		return
	}
	delete(g.rooms, id)
	for i, rid := range g.order {
		if rid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of live rooms.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

// List snapshots every live room, oldest first.
func (g *Registry) List() []Snapshot {
	g.mu.Lock()
	rooms := make([]*Room, 0, len(g.order))
	for _, id := range g.order {
		rooms = append(rooms, g.rooms[id])
	}
	g.mu.Unlock()

	out := make([]Snapshot, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Snapshot())
	}
	return out
}

// CloseAll tears down every room, e.g. on shutdown.
func (g *Registry) CloseAll() {
	g.mu.Lock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		rooms = append(rooms, r)
	}
	g.rooms = make(map[uuid.UUID]*Room)
	g.order = nil
	g.mu.Unlock()

	for _, r := range rooms {
		r.Close()
	}
}
