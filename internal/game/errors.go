// internal/game/errors.go
package game

import "errors"

var (
	ErrRoomClosed  = errors.New("room is closed")
	ErrRoomFull    = errors.New("room is full")
	ErrRoomStarted = errors.New("room already started")
)
