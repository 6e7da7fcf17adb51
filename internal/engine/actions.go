package engine

import "github.com/Igoroots34/somo-network/internal/deck"

// Action is the closed set of moves a seat can make on its turn.
type Action interface {
	isAction()
}

// NumberPlay plays a number card, or a joker with JokerValue set to the
// chosen 0-9 value.
type NumberPlay struct {
	CardID     string
	JokerValue *int
}

// SpecialPlay plays a special card. Kind is the declared special kind and
// must match the card.
type SpecialPlay struct {
	CardID string
	Kind   deck.Kind
}

// PassTurn takes the forced penalty instead of playing a card.
type PassTurn struct{}

func (NumberPlay) isAction()  {}
func (SpecialPlay) isAction() {}
func (PassTurn) isAction()    {}

// Move is one entry of the legal-action enumeration. Value is the card's
// base value for numbers, or a single witnessing value for a joker.
type Move struct {
	CardID string
	Kind   deck.Kind
	Value  int
	Pass   bool
}

// Action converts the enumeration entry into the action that plays it.
func (m Move) Action() Action {
	switch {
	case m.Pass:
		return PassTurn{}
	case m.Kind == deck.Number:
		return NumberPlay{CardID: m.CardID}
	case m.Kind == deck.Joker:
		v := m.Value
		return NumberPlay{CardID: m.CardID, JokerValue: &v}
	default:
		return SpecialPlay{CardID: m.CardID, Kind: m.Kind}
	}
}

// Apply dispatches an action onto the rule engine. The switch is exhaustive
// over the action union.
func Apply(r *Room, playerID string, action Action) ([]Event, error) {
	switch a := action.(type) {
	case NumberPlay:
		return PlayNumber(r, playerID, a.CardID, a.JokerValue)
	case SpecialPlay:
		return PlaySpecial(r, playerID, a.CardID, a.Kind)
	case PassTurn:
		return ForcePenalty(r, playerID)
	default:
		return nil, ErrUnknownAction
	}
}
