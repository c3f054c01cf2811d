// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/bluff/internal/bot"
	"github.com/jason-s-yu/bluff/internal/cards"
	"github.com/jason-s-yu/bluff/internal/game"
	"github.com/jason-s-yu/bluff/internal/middleware"
	"github.com/sirupsen/logrus"
)

// Subprotocol is the websocket subprotocol clients must request.
const Subprotocol = "bluff"

// pingInterval is how often the write pump pings an idle client.
var pingInterval = 30 * time.Second

// clientMessage is every inbound frame; only the fields of its type are read.
type clientMessage struct {
	Type              string       `json:"type"`
	Cards             []cards.Card `json:"cards"`
	DeclaredRank      string       `json:"declaredRank"`
	RemainingHandSize int          `json:"remainingHandSize"`
}

// RoomWSHandler seats each connection in a room and relays its actions. Query parameters:
// withBot=1 requests a fresh room with a bot, difficulty=easy|medium|hard picks the bot.
func RoomWSHandler(logger *logrus.Logger, reg *game.Registry, defaultDifficulty bot.Difficulty) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr
		withBot := parseBool(r.URL.Query().Get("withBot"))
		difficulty := defaultDifficulty
		if d := r.URL.Query().Get("difficulty"); d != "" {
			difficulty = bot.ParseDifficulty(d)
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the bluff subprotocol")
			return
		}

		conn := newRoomConnection(logger)
		room, seat, err := reg.Assign(withBot, difficulty, conn)
		if err != nil {
			logger.Warnf("Could not seat %s: %v", remoteAddr, err)
			c.Close(RoomUnavailableError, "no room available")
			return
		}
		conn.RoomID = room.ID.String()
		conn.Seat = seat
		middleware.LogWebSocketConnect(logger, remoteAddr, conn.RoomID, seat)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go writePump(ctx, c, conn, logger)

		err = readPump(ctx, c, room, conn, logger)

		room.Disconnect(seat)
		middleware.LogWebSocketDisconnect(logger, remoteAddr, conn.RoomID, seat, err)
	}
}

// readPump relays client frames to the room until the connection closes. A normal close
// returns nil.
func readPump(ctx context.Context, c *websocket.Conn, room *game.Room, conn *RoomConnection, logger *logrus.Logger) error {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			logger.Warnf("Room %s: non-text message type %d from seat %d, ignoring", conn.RoomID, typ, conn.Seat)
			continue
		}

		var packet clientMessage
		if err := json.Unmarshal(msg, &packet); err != nil {
			logger.Warnf("Room %s: invalid json from seat %d: %v", conn.RoomID, conn.Seat, err)
			conn.WriteError("Invalid JSON format")
			continue
		}
		handleRoomMessage(packet, room, conn, logger)
	}
}

// handleRoomMessage interprets the "type" field. Rejected moves get no reply.
func handleRoomMessage(packet clientMessage, room *game.Room, conn *RoomConnection, logger *logrus.Logger) {
	switch packet.Type {
	case "place":
		rank, err := cards.ParseRank(packet.DeclaredRank)
		if err != nil {
			conn.WriteError("Invalid declaredRank")
			return
		}
		room.Place(conn.Seat, packet.Cards, rank, packet.RemainingHandSize)
	case "pass":
		room.Pass(conn.Seat)
	case "challenge":
		room.Challenge(conn.Seat)
	case "ping":
		conn.Write(map[string]interface{}{"type": "pong"})
	default:
		logger.Debugf("Room %s: unknown message type %q from seat %d", conn.RoomID, packet.Type, conn.Seat)
		conn.WriteError("Unknown message type")
	}
}

// writePump drains OutChan to the socket and pings the client periodically. It closes the socket
// once the connection overflows, which ends the read loop and freezes the seat.
func writePump(ctx context.Context, c *websocket.Conn, conn *RoomConnection, logger *logrus.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-conn.Overflowed():
			logger.Warnf("Room %s: seat %d fell behind, closing", conn.RoomID, conn.Seat)
			c.Close(SlowConsumerError, "outbound queue overflow")
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-conn.Overflowed():
			continue
		case msg := <-conn.OutChan:
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("Room %s: failed to marshal outgoing msg for seat %d: %v", conn.RoomID, conn.Seat, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("Room %s: failed to write to seat %d: %v", conn.RoomID, conn.Seat, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("Room %s: ping to seat %d failed: %v, assuming disconnect", conn.RoomID, conn.Seat, err)
				return
			}
		}
	}
}

func parseBool(s string) bool {
	if s == "" {
		return false
	}
	b, err := strconv.ParseBool(strings.ToLower(s))
	return err == nil && b
}
