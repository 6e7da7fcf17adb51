package room

import (
	"encoding/json"
	"fmt"

	"github.com/Igoroots34/somo-network/internal/deck"
	"github.com/Igoroots34/somo-network/internal/engine"
)

// clientAction is the inbound JSON envelope. Action discriminates; the
// remaining fields are only read for the action that owns them.
type clientAction struct {
	Action     string `json:"action"`
	CardID     string `json:"card_id,omitempty"`
	AsValue    *int   `json:"as_value,omitempty"`
	Type       string `json:"type,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Message    string `json:"message,omitempty"`
}

const (
	actionStartGame   = "start_game"
	actionPlayCard    = "play_card"
	actionPlaySpecial = "play_special"
	actionPassTurn    = "pass_turn"
	actionAddBot      = "add_bot"
	actionChat        = "chat"
)

// toEngineAction maps a gameplay envelope onto the engine's action union.
func (a clientAction) toEngineAction() (engine.Action, error) {
	switch a.Action {
	case actionPlayCard:
		return engine.NumberPlay{CardID: a.CardID, JokerValue: a.AsValue}, nil
	case actionPlaySpecial:
		kind := deck.Kind(a.Type)
		if !kind.IsSpecial() {
			return nil, fmt.Errorf("unknown special type %q", a.Type)
		}
		return engine.SpecialPlay{CardID: a.CardID, Kind: kind}, nil
	case actionPassTurn:
		return engine.PassTurn{}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", a.Action)
	}
}

type wireCardPlayed struct {
	Event    string    `json:"event"`
	PlayerID string    `json:"player_id"`
	Card     deck.Card `json:"card"`
	Sum      int       `json:"sum"`
	Modified int       `json:"modified_value"`
}

type wireSumReset struct {
	Event      string `json:"event"`
	ByPlayerID string `json:"by_player_id"`
}

type wireEffectSet struct {
	Event    string `json:"event"`
	Type     string `json:"type"`
	SourceID string `json:"source_player_id"`
}

type wireDirectionChanged struct {
	Event     string `json:"event"`
	Clockwise bool   `json:"clockwise"`
}

type wirePenalty struct {
	Event      string `json:"event"`
	PlayerID   string `json:"player_id"`
	TokensLeft int    `json:"tokens_left"`
}

type wireDrawCards struct {
	Event   string              `json:"event"`
	Players []engine.PlayerDraw `json:"players"`
}

type wireRoundReset struct {
	Event  string `json:"event"`
	Reason string `json:"reason"`
}

type wireRoundStarted struct {
	Event string `json:"event"`
	Limit int    `json:"limit"`
}

type wireTurnChanged struct {
	Event    string `json:"event"`
	PlayerID string `json:"player_id"`
}

type wireGameOver struct {
	Event    string `json:"event"`
	WinnerID string `json:"winner_id"`
}

type wireError struct {
	Event   string `json:"event"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type wireChat struct {
	Event    string `json:"event"`
	PlayerID string `json:"player_id"`
	Nickname string `json:"nickname"`
	Message  string `json:"message"`
}

// encodeEvent turns an engine event into its wire envelope. The switch is
// exhaustive over the engine's event union; an unknown type is a bug.
func encodeEvent(e engine.Event) ([]byte, error) {
	switch ev := e.(type) {
	case engine.CardPlayed:
		return json.Marshal(wireCardPlayed{Event: "card_played", PlayerID: ev.PlayerID, Card: ev.Card, Sum: ev.Sum, Modified: ev.Modified})
	case engine.SumReset:
		return json.Marshal(wireSumReset{Event: "sum_reset", ByPlayerID: ev.ByPlayerID})
	case engine.EffectSet:
		return json.Marshal(wireEffectSet{Event: "effect_set", Type: string(ev.Kind), SourceID: ev.SourceID})
	case engine.DirectionChanged:
		return json.Marshal(wireDirectionChanged{Event: "direction_changed", Clockwise: ev.Clockwise})
	case engine.Penalty:
		return json.Marshal(wirePenalty{Event: "penalty", PlayerID: ev.PlayerID, TokensLeft: ev.TokensLeft})
	case engine.DrawCards:
		return json.Marshal(wireDrawCards{Event: "draw_cards", Players: ev.Draws})
	case engine.RoundReset:
		return json.Marshal(wireRoundReset{Event: "round_reset", Reason: string(ev.Reason)})
	case engine.RoundStarted:
		return json.Marshal(wireRoundStarted{Event: "round_started", Limit: ev.Limit})
	case engine.TurnChanged:
		return json.Marshal(wireTurnChanged{Event: "turn_changed", PlayerID: ev.PlayerID})
	case engine.GameOver:
		return json.Marshal(wireGameOver{Event: "game_over", WinnerID: ev.WinnerID})
	default:
		return nil, fmt.Errorf("unencodable event %T", e)
	}
}

func encodeError(code, message string) []byte {
	data, _ := json.Marshal(wireError{Event: "error", Code: code, Message: message})
	return data
}

func encodeChat(playerID, nickname, message string) []byte {
	data, _ := json.Marshal(wireChat{Event: "chat", PlayerID: playerID, Nickname: nickname, Message: message})
	return data
}

// publicPlayer is a player as everyone else sees them: hand size, not hand.
type publicPlayer struct {
	ID           string `json:"id"`
	Nickname     string `json:"nickname"`
	Tokens       int    `json:"tokens"`
	HandCount    int    `json:"hand_count"`
	IsBot        bool   `json:"is_bot"`
	IsEliminated bool   `json:"is_eliminated"`
}

type publicRoom struct {
	ID          string                `json:"id"`
	Players     []publicPlayer        `json:"players"`
	MaxPlayers  int                   `json:"max_players"`
	HostID      string                `json:"host_id,omitempty"`
	GameStarted bool                  `json:"game_started"`
	CurrentTurn string                `json:"current_turn,omitempty"`
	Direction   bool                  `json:"direction"`
	Sum         int                   `json:"accumulated_sum"`
	Limit       int                   `json:"round_limit"`
	Pending     *engine.PendingEffect `json:"pending_effect,omitempty"`
	DeckCount   int                   `json:"deck_count"`
	DiscardTop  *deck.Card            `json:"discard_top,omitempty"`
	TurnOrder   []string              `json:"turn_order"`
}

type wireRoomState struct {
	Event    string      `json:"event"`
	Room     publicRoom  `json:"room"`
	SelfHand []deck.Card `json:"self_hand,omitempty"`
}

// encodeRoomState renders the redacted snapshot for one recipient: only
// their own hand rides along.
func encodeRoomState(r *engine.Room, selfID string) []byte {
	pub := publicRoom{
		ID:          r.ID,
		MaxPlayers:  r.MaxPlayers,
		HostID:      r.HostID,
		GameStarted: r.Started,
		CurrentTurn: r.CurrentTurn,
		Direction:   r.Clockwise,
		Sum:         r.Sum,
		Limit:       r.Limit,
		Pending:     r.Pending,
		DeckCount:   len(r.Deck),
		TurnOrder:   r.TurnOrder,
	}
	for _, p := range r.Players {
		pub.Players = append(pub.Players, publicPlayer{
			ID:           p.ID,
			Nickname:     p.Nickname,
			Tokens:       p.Tokens,
			HandCount:    len(p.Hand),
			IsBot:        p.IsBot,
			IsEliminated: p.Eliminated,
		})
	}
	if len(r.Discard) > 0 {
		top := r.Discard[len(r.Discard)-1]
		pub.DiscardTop = &top
	}

	state := wireRoomState{Event: "room_state", Room: pub}
	if self, ok := r.PlayerByID(selfID); ok {
		state.SelfHand = self.Hand
	}
	data, _ := json.Marshal(state)
	return data
}
