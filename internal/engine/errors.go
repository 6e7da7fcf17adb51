package engine

import "errors"

// Illegal-action rejections. Every rejected action leaves the room state
// exactly as it was and emits no events.
var (
	ErrGameNotStarted   = errors.New("game not started")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrCardNotInHand    = errors.New("card not in hand")
	ErrNotNumberCard    = errors.New("use play_special for special cards")
	ErrJokerValue       = errors.New("joker requires a value between 0 and 9")
	ErrExceedsLimit     = errors.New("card would exceed limit")
	ErrKindMismatch     = errors.New("card does not match declared special type")
	ErrNotSpecialCard   = errors.New("use play_card for number cards")
	ErrNotEnoughPlayers = errors.New("need at least two active players")
	ErrAlreadyStarted   = errors.New("game already started")
	ErrUnknownAction    = errors.New("unknown action")
)
