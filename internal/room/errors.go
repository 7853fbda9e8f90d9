package room

import "errors"

var (
	ErrRoomFull         = errors.New("room is full")
	ErrRoomClosed       = errors.New("room not found")
	ErrAlreadyJoined    = errors.New("connection already joined")
	ErrNotHost          = errors.New("only the host can start the game")
	ErrNotEnoughPlayers = errors.New("two players are required")
	ErrStopped          = errors.New("room stopped")
)
