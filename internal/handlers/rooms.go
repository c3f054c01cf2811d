// internal/handlers/rooms.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jason-s-yu/bluff/internal/game"
)

// ListRoomsHandler returns a snapshot of every live room.
func ListRoomsHandler(reg *game.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reg.List())
	}
}

// HealthHandler reports liveness and the number of rooms.
func HealthHandler(reg *game.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "ok",
			"rooms":  reg.Len(),
		})
	}
}
