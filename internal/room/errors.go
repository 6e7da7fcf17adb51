package room

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room full")
	ErrGameStarted   = errors.New("game already started")
	ErrNicknameTaken = errors.New("nickname already taken")
	ErrRoomClosed    = errors.New("room closed")
	ErrBadNickname   = errors.New("nickname must be 1-20 characters")
)
