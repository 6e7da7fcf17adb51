package engine

import (
	"github.com/Igoroots34/somo-network/internal/deck"
)

// StartGame builds and shuffles the deck, deals the starting hands, rolls
// the rotation and opens the first round. The caller enforces the
// two-player minimum for human lobbies; the engine only needs one seat to
// not corrupt itself.
func StartGame(r *Room) ([]Event, error) {
	if r.Started {
		return nil, ErrAlreadyStarted
	}
	if len(r.ActivePlayers()) < 2 {
		return nil, ErrNotEnoughPlayers
	}
	r.Deck = deck.Shuffle(deck.Build())
	r.Discard = []deck.Card{}

	draws := make([]PlayerDraw, 0, len(r.Players))
	for _, p := range r.ActivePlayers() {
		n := drawInto(r, p, StartingHandSize)
		draws = append(draws, PlayerDraw{PlayerID: p.ID, Amount: n})
	}

	r.InitTurnOrder()
	r.Started = true
	r.ResetRound()

	return []Event{
		DrawCards{Draws: draws},
		RoundStarted{Limit: r.Limit},
		TurnChanged{PlayerID: r.CurrentTurn},
	}, nil
}

// ApplyPendingEffect computes the display value of a numeric play under a
// pending effect: multiplier first, then additive. The accumulated sum
// itself always takes the base value.
func ApplyPendingEffect(value int, eff *PendingEffect) int {
	if eff == nil {
		return value
	}
	modified := value
	if eff.Multiplier != 0 {
		modified *= eff.Multiplier
	}
	modified += eff.Additive
	return modified
}

// canPlayValue is the legality rule for numeric plays. Deliberately ignores
// any pending effect: a player cannot be blocked by a modifier they did not
// create.
func canPlayValue(value, sum, limit int) bool {
	return sum+value <= limit
}

func actingPlayer(r *Room, playerID string) (*Player, error) {
	if !r.Started {
		return nil, ErrGameNotStarted
	}
	if r.CurrentTurn != playerID {
		return nil, ErrNotYourTurn
	}
	p, ok := r.PlayerByID(playerID)
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return p, nil
}

// drawInto moves up to n cards from the deck into the player's hand,
// folding the discard pile (minus its top card) back into the deck when it
// runs dry. Returns how many cards were actually drawn.
func drawInto(r *Room, p *Player, n int) int {
	if len(r.Deck) < n && len(r.Discard) > 1 {
		r.Deck = deck.ReshuffleWithDiscard(r.Deck, r.Discard, true)
		r.Discard = r.Discard[len(r.Discard)-1:]
	}
	drawn, rest := deck.Draw(r.Deck, n)
	r.Deck = rest
	p.Hand = append(p.Hand, drawn...)
	return len(drawn)
}

// PlayNumber validates and applies a number or joker play. jokerValue is
// the chosen value for a joker and ignored for plain numbers.
func PlayNumber(r *Room, playerID, cardID string, jokerValue *int) ([]Event, error) {
	player, err := actingPlayer(r, playerID)
	if err != nil {
		return nil, err
	}
	card, ok := player.cardInHand(cardID)
	if !ok {
		return nil, ErrCardNotInHand
	}
	if card.Kind != deck.Number && card.Kind != deck.Joker {
		return nil, ErrNotNumberCard
	}

	var value int
	switch card.Kind {
	case deck.Joker:
		if jokerValue == nil || *jokerValue < 0 || *jokerValue > 9 {
			return nil, ErrJokerValue
		}
		value = *jokerValue
	default:
		value = *card.Value
	}

	if !canPlayValue(value, r.Sum, r.Limit) {
		return nil, ErrExceedsLimit
	}

	// All preconditions hold; from here on the action settles fully.
	player.removeFromHand(cardID)

	// The modified value is for the event log only; scoring uses the base
	// value, and the effect is spent either way.
	modified := ApplyPendingEffect(value, r.Pending)
	r.Sum += value
	r.Pending = nil

	played := card
	if card.Kind == deck.Joker {
		v := value
		played.Value = &v
	}
	r.Discard = append(r.Discard, played)

	events := []Event{CardPlayed{PlayerID: playerID, Card: played, Sum: r.Sum, Modified: modified}}

	switch {
	case r.Sum == r.Limit:
		n := drawInto(r, player, RewardDraw)
		events = append(events, DrawCards{Draws: []PlayerDraw{{PlayerID: playerID, Amount: n}}})
		r.ResetRound()
		events = append(events,
			RoundReset{Reason: ResetExactHit},
			RoundStarted{Limit: r.Limit},
		)
	case r.Sum > r.Limit:
		// Unreachable past the validation above, handled anyway.
		events = append(events, overflowPenalty(r, player)...)
	default:
		if next, ok := r.AdvanceTurn(); ok {
			events = append(events, TurnChanged{PlayerID: next})
		}
	}
	return events, nil
}

// PlaySpecial validates and applies a special play. declared must name the
// card's actual kind.
func PlaySpecial(r *Room, playerID, cardID string, declared deck.Kind) ([]Event, error) {
	player, err := actingPlayer(r, playerID)
	if err != nil {
		return nil, err
	}
	card, ok := player.cardInHand(cardID)
	if !ok {
		return nil, ErrCardNotInHand
	}
	if !declared.IsSpecial() {
		return nil, ErrNotSpecialCard
	}
	if card.Kind != declared {
		return nil, ErrKindMismatch
	}

	player.removeFromHand(cardID)
	r.Discard = append(r.Discard, card)

	var events []Event
	switch declared {
	case deck.Reset0:
		r.Sum = 0
		events = append(events, SumReset{ByPlayerID: playerID})
	case deck.Plus2:
		r.Pending = &PendingEffect{Additive: 2, SourceID: playerID}
		events = append(events, EffectSet{Kind: deck.Plus2, SourceID: playerID})
	case deck.Times2:
		r.Pending = &PendingEffect{Multiplier: 2, SourceID: playerID}
		events = append(events, EffectSet{Kind: deck.Times2, SourceID: playerID})
	case deck.Reverse:
		r.ReverseDirection()
		events = append(events, DirectionChanged{Clockwise: r.Clockwise})
	}

	if next, ok := r.AdvanceTurn(); ok {
		events = append(events, TurnChanged{PlayerID: next})
	}
	return events, nil
}

// ForcePenalty settles a turn where the player cannot (or will not) play:
// token lost, everyone draws, fresh round.
func ForcePenalty(r *Room, playerID string) ([]Event, error) {
	player, err := actingPlayer(r, playerID)
	if err != nil {
		return nil, err
	}
	return overflowPenalty(r, player), nil
}

// overflowPenalty is the shared tail of the overflow and forced-penalty
// paths: penalize the actor, deal two cards to every remaining active
// player, reset the round and close the game if the table just emptied.
func overflowPenalty(r *Room, player *Player) []Event {
	eliminated := r.ApplyPenalty(player.ID)

	events := []Event{Penalty{PlayerID: player.ID, TokensLeft: player.Tokens}}

	draws := make([]PlayerDraw, 0, len(r.Players))
	for _, p := range r.ActivePlayers() {
		n := drawInto(r, p, PenaltyDraw)
		draws = append(draws, PlayerDraw{PlayerID: p.ID, Amount: n})
	}
	if len(draws) > 0 {
		events = append(events, DrawCards{Draws: draws})
	}

	r.ResetRound()
	events = append(events,
		RoundReset{Reason: ResetPenalty},
		RoundStarted{Limit: r.Limit},
	)

	if eliminated {
		if winner, over := r.Winner(); over && winner != "" {
			events = append(events, GameOver{WinnerID: winner})
		}
	}
	return events
}

// LegalMoves enumerates every legal action for the player holding the turn.
// For a joker only one witnessing value is reported. An empty hand of
// options degenerates to the forced penalty.
func LegalMoves(r *Room, playerID string) []Move {
	player, ok := r.PlayerByID(playerID)
	if !ok || r.CurrentTurn != playerID {
		return nil
	}

	var moves []Move
	for _, card := range player.Hand {
		switch card.Kind {
		case deck.Number:
			if canPlayValue(*card.Value, r.Sum, r.Limit) {
				moves = append(moves, Move{CardID: card.ID, Kind: deck.Number, Value: *card.Value})
			}
		case deck.Joker:
			for value := 0; value <= 9; value++ {
				if canPlayValue(value, r.Sum, r.Limit) {
					moves = append(moves, Move{CardID: card.ID, Kind: deck.Joker, Value: value})
					break
				}
			}
		default:
			moves = append(moves, Move{CardID: card.ID, Kind: card.Kind})
		}
	}

	if len(moves) == 0 {
		moves = append(moves, Move{Pass: true})
	}
	return moves
}
