// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the room handler.
const (
	BadSubprotocolError  = 3000 // Client connected without the bluff subprotocol.
	RoomUnavailableError = 3001 // No room could seat the client.
	SlowConsumerError    = 3002 // The client fell too far behind the room's events.
)
