// Package engine is the server-authoritative rule engine for SOMO: it owns
// the room state machine, validates every play and resolves it into an
// ordered event log. Nothing here is safe for concurrent use; the room actor
// serializes all calls.
package engine

import (
	"github.com/Igoroots34/somo-network/internal/deck"
)

const (
	// StartingTokens is how many penalty tokens each player begins with.
	StartingTokens = 3
	// StartingHandSize is dealt to every player when the game starts.
	StartingHandSize = 7
	// RewardDraw is drawn by the player who hits the limit exactly.
	RewardDraw = 2
	// PenaltyDraw is drawn by every active player after a penalty.
	PenaltyDraw = 2
	// LimitDie is the die rolled for a fresh round limit.
	LimitDie = 20
)

// PendingEffect is a one-shot modifier created by a plus2/times2 play. It
// sticks to the room until the next numeric play consumes it. At most one
// exists at a time; a newer special play replaces it.
type PendingEffect struct {
	Multiplier int    `json:"multiplier,omitempty"`
	Additive   int    `json:"add,omitempty"`
	SourceID   string `json:"source_player_id"`
}

type Player struct {
	ID         string
	Nickname   string
	Tokens     int
	Hand       []deck.Card
	IsBot      bool
	Eliminated bool
	Connected  bool
}

func NewPlayer(id, nickname string, isBot bool) *Player {
	return &Player{
		ID:        id,
		Nickname:  nickname,
		Tokens:    StartingTokens,
		Hand:      []deck.Card{},
		IsBot:     isBot,
		Connected: !isBot,
	}
}

// Active reports whether the player still takes turns.
func (p *Player) Active() bool {
	return !p.Eliminated && p.Tokens > 0
}

func (p *Player) cardInHand(cardID string) (deck.Card, bool) {
	for _, c := range p.Hand {
		if c.ID == cardID {
			return c, true
		}
	}
	return deck.Card{}, false
}

func (p *Player) removeFromHand(cardID string) (deck.Card, bool) {
	for i, c := range p.Hand {
		if c.ID == cardID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return deck.Card{}, false
}

// Room is the full mutable state of one game session. Seating order
// (Players) is stable across eliminations; TurnOrder shrinks instead.
type Room struct {
	ID          string
	Players     []*Player
	MaxPlayers  int
	HostID      string
	Started     bool
	CurrentTurn string
	Clockwise   bool
	Sum         int
	Limit       int
	Pending     *PendingEffect
	Deck        []deck.Card
	Discard     []deck.Card
	TurnOrder   []string
}

func NewRoom(id string, maxPlayers int) *Room {
	return &Room{
		ID:         id,
		MaxPlayers: maxPlayers,
		Clockwise:  true,
		Players:    []*Player{},
		Deck:       []deck.Card{},
		Discard:    []deck.Card{},
		TurnOrder:  []string{},
	}
}

func (r *Room) PlayerByID(id string) (*Player, bool) {
	for _, p := range r.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// ActivePlayers returns the players still in the game, in seating order.
func (r *Room) ActivePlayers() []*Player {
	active := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Active() {
			active = append(active, p)
		}
	}
	return active
}

// CurrentPlayer resolves CurrentTurn, or nil before the game starts.
func (r *Room) CurrentPlayer() *Player {
	p, ok := r.PlayerByID(r.CurrentTurn)
	if !ok {
		return nil
	}
	return p
}
