package engine

import "github.com/Igoroots34/somo-network/internal/deck"

// Event is the closed set of things the engine reports after a settled
// action. The wire codec switches over the concrete types exhaustively.
type Event interface {
	isEvent()
}

type ResetReason string

const (
	ResetExactHit ResetReason = "exact_hit"
	ResetPenalty  ResetReason = "penalty"
)

// CardPlayed is emitted for every accepted number/joker play. Card carries
// the chosen value when a joker was played. Modified is the value after a
// consumed pending effect (multiplier before additive); it is display-only,
// the sum always moves by the base value.
type CardPlayed struct {
	PlayerID string
	Card     deck.Card
	Sum      int
	Modified int
}

// SumReset is a reset0 play zeroing the accumulated sum immediately.
type SumReset struct {
	ByPlayerID string
}

// EffectSet announces a fresh pending effect. Kind is deck.Plus2 or
// deck.Times2.
type EffectSet struct {
	Kind     deck.Kind
	SourceID string
}

type DirectionChanged struct {
	Clockwise bool
}

type Penalty struct {
	PlayerID   string
	TokensLeft int
}

type PlayerDraw struct {
	PlayerID string `json:"id"`
	Amount   int    `json:"amount"`
}

type DrawCards struct {
	Draws []PlayerDraw
}

type RoundReset struct {
	Reason ResetReason
}

type RoundStarted struct {
	Limit int
}

type TurnChanged struct {
	PlayerID string
}

type GameOver struct {
	WinnerID string
}

func (CardPlayed) isEvent()       {}
func (SumReset) isEvent()         {}
func (EffectSet) isEvent()        {}
func (DirectionChanged) isEvent() {}
func (Penalty) isEvent()          {}
func (DrawCards) isEvent()        {}
func (RoundReset) isEvent()       {}
func (RoundStarted) isEvent()     {}
func (TurnChanged) isEvent()      {}
func (GameOver) isEvent()         {}
