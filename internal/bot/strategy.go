// Package bot holds the pluggable decision strategies for autonomous seats.
// A strategy picks exactly one action per invocation; chaining a bot's
// consecutive turns is the room actor's job, not the bot's.
package bot

import (
	"math/rand"
	"sort"

	"github.com/Igoroots34/somo-network/internal/deck"
	"github.com/Igoroots34/somo-network/internal/engine"
)

// View is the slice of room state a bot is allowed to see: public counters
// plus its own hand, never anyone else's.
type View struct {
	SelfID  string
	Hand    []deck.Card
	Sum     int
	Limit   int
	Pending *engine.PendingEffect
}

// Strategy chooses one action from the legal-move enumeration. The second
// return is false when the bot has nothing to do (empty enumeration).
type Strategy interface {
	ChooseAction(view View, legal []engine.Move) (engine.Action, bool)
}

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ForDifficulty maps a lobby difficulty tier to its strategy. Unknown tiers
// fall back to the random bot.
func ForDifficulty(d Difficulty) Strategy {
	switch d {
	case Medium:
		return Greedy{}
	case Hard:
		return Defensive{}
	default:
		return Random{}
	}
}

// Random plays uniformly among the legal moves.
type Random struct{}

func (Random) ChooseAction(_ View, legal []engine.Move) (engine.Action, bool) {
	if len(legal) == 0 {
		return nil, false
	}
	return legal[rand.Intn(len(legal))].Action(), true
}

func splitMoves(legal []engine.Move) (numbers, specials []engine.Move) {
	for _, m := range legal {
		switch {
		case m.Pass:
		case m.Kind == deck.Number || m.Kind == deck.Joker:
			numbers = append(numbers, m)
		default:
			specials = append(specials, m)
		}
	}
	return numbers, specials
}

func firstOfKind(specials []engine.Move, kind deck.Kind) (engine.Move, bool) {
	for _, m := range specials {
		if m.Kind == kind {
			return m, true
		}
	}
	return engine.Move{}, false
}

func specialByPriority(specials []engine.Move, order []deck.Kind) (engine.Move, bool) {
	for _, kind := range order {
		if m, ok := firstOfKind(specials, kind); ok {
			return m, true
		}
	}
	return engine.Move{}, false
}

// Greedy is the aggressive tier: dump the sum with reset0 when it runs hot,
// bounce dangerous effects back with reverse, otherwise bleed out the
// lowest numbers first.
type Greedy struct{}

func (Greedy) ChooseAction(view View, legal []engine.Move) (engine.Action, bool) {
	if len(legal) == 0 {
		return nil, false
	}
	numbers, specials := splitMoves(legal)

	if float64(view.Sum) > float64(view.Limit)*0.7 {
		if m, ok := firstOfKind(specials, deck.Reset0); ok {
			return m.Action(), true
		}
	}

	if view.Pending != nil && view.Pending.SourceID != view.SelfID && dangerous(view) {
		if m, ok := firstOfKind(specials, deck.Reverse); ok {
			return m.Action(), true
		}
	}

	if len(numbers) > 0 {
		sort.SliceStable(numbers, func(i, j int) bool { return numbers[i].Value < numbers[j].Value })
		return numbers[0].Action(), true
	}

	if m, ok := specialByPriority(specials, []deck.Kind{deck.Plus2, deck.Times2, deck.Reverse, deck.Reset0}); ok {
		return m.Action(), true
	}
	return engine.PassTurn{}, true
}

// dangerous marks a pending effect worth retaliating against: any
// multiplier, or an additive that pushes the sum past 80% of the limit.
func dangerous(view View) bool {
	eff := view.Pending
	if eff == nil {
		return false
	}
	if eff.Multiplier > 1 {
		return true
	}
	if eff.Additive > 0 {
		return float64(view.Sum+eff.Additive) > float64(view.Limit)*0.8
	}
	return false
}

// Defensive is the cautious tier: reset early, spend specials to control
// the table, and burn high numbers while it is still safe to do so.
type Defensive struct{}

func (Defensive) ChooseAction(view View, legal []engine.Move) (engine.Action, bool) {
	if len(legal) == 0 {
		return nil, false
	}
	numbers, specials := splitMoves(legal)

	if float64(view.Sum) > float64(view.Limit)*0.5 {
		if m, ok := firstOfKind(specials, deck.Reset0); ok {
			return m.Action(), true
		}
	}

	if m, ok := specialByPriority(specials, []deck.Kind{deck.Reset0, deck.Reverse, deck.Plus2, deck.Times2}); ok {
		return m.Action(), true
	}

	if len(numbers) > 0 {
		sort.SliceStable(numbers, func(i, j int) bool { return numbers[i].Value > numbers[j].Value })
		return numbers[0].Action(), true
	}
	return engine.PassTurn{}, true
}
