// internal/handlers/connection.go
package handlers

import (
	"sync"

	"github.com/jason-s-yu/bluff/internal/game"
	"github.com/sirupsen/logrus"
)

// outChanSize bounds the per-connection queue. A client that falls this far behind is dropped.
const outChanSize = 64

// RoomConnection is one seated websocket client. It is the room's Sink for that seat and
// queues outbound messages for the write pump.
type RoomConnection struct {
	RoomID  string
	Seat    int
	OutChan chan interface{}

	overflow     chan struct{}
	overflowOnce sync.Once

	logger *logrus.Logger
}

func newRoomConnection(logger *logrus.Logger) *RoomConnection {
	return &RoomConnection{
		Seat:     -1,
		OutChan:  make(chan interface{}, outChanSize),
		overflow: make(chan struct{}),
		logger:   logger,
	}
}

// Deliver queues a room event. It never blocks.
func (conn *RoomConnection) Deliver(ev game.RoomEvent) {
	conn.Write(ev)
}

// Write pushes a message onto OutChan non-blockingly. A full queue marks the connection as
// overflowed; the write pump then closes the socket rather than let the client miss events.
func (conn *RoomConnection) Write(msg interface{}) {
	select {
	case <-conn.overflow:
		return
	default:
	}
	select {
	case conn.OutChan <- msg:
	default:
		conn.overflowOnce.Do(func() {
			conn.logger.Warnf("Room %s: OutChan for seat %d full at %T, closing connection", conn.RoomID, conn.Seat, msg)
			close(conn.overflow)
		})
	}
}

// Overflowed is closed once the connection has fallen too far behind.
func (conn *RoomConnection) Overflowed() <-chan struct{} {
	return conn.overflow
}

// WriteError sends an error object to the client.
func (conn *RoomConnection) WriteError(msg string) {
	conn.Write(map[string]interface{}{
		"type":    "error",
		"message": msg,
	})
}
