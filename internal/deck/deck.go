// Package deck owns the card model and the fixed SOMO deck composition:
// 90 cards total, 60 numbers (six of each value 0-9), 6 reverse, 6 times2,
// 7 plus2, 7 reset0 and 4 jokers.
package deck

import (
	"math/rand"

	"github.com/google/uuid"
)

type Kind string

const (
	Number  Kind = "number"
	Joker   Kind = "joker"
	Plus2   Kind = "plus2"
	Times2  Kind = "times2"
	Reset0  Kind = "reset0"
	Reverse Kind = "reverse"
)

// IsSpecial reports whether the kind is one of the four special kinds a
// player can declare on a special play.
func (k Kind) IsSpecial() bool {
	switch k {
	case Plus2, Times2, Reset0, Reverse:
		return true
	}
	return false
}

// Card is immutable once created, except that a joker gets its chosen value
// stamped on it when it is played.
type Card struct {
	ID    string `json:"id"`
	Kind  Kind   `json:"kind"`
	Value *int   `json:"value,omitempty"`
}

func number(value int) Card {
	v := value
	return Card{ID: uuid.NewString(), Kind: Number, Value: &v}
}

func special(kind Kind) Card {
	return Card{ID: uuid.NewString(), Kind: kind}
}

// Build returns a fresh, unshuffled 90-card deck.
func Build() []Card {
	cards := make([]Card, 0, 90)
	for value := 0; value <= 9; value++ {
		for i := 0; i < 6; i++ {
			cards = append(cards, number(value))
		}
	}
	for i := 0; i < 6; i++ {
		cards = append(cards, special(Reverse))
	}
	for i := 0; i < 6; i++ {
		cards = append(cards, special(Times2))
	}
	for i := 0; i < 7; i++ {
		cards = append(cards, special(Plus2))
	}
	for i := 0; i < 7; i++ {
		cards = append(cards, special(Reset0))
	}
	for i := 0; i < 4; i++ {
		cards = append(cards, special(Joker))
	}
	return cards
}

// Shuffle returns a uniformly shuffled copy. The caller's slice is left
// untouched.
func Shuffle(cards []Card) []Card {
	shuffled := make([]Card, len(cards))
	copy(shuffled, cards)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// Draw takes up to n cards from the front of the deck. It never errors: when
// n exceeds the deck size the whole deck is drawn and the remainder is empty.
func Draw(cards []Card, n int) (drawn, rest []Card) {
	if n < 0 {
		n = 0
	}
	if n > len(cards) {
		n = len(cards)
	}
	drawn = make([]Card, n)
	copy(drawn, cards[:n])
	rest = make([]Card, len(cards)-n)
	copy(rest, cards[n:])
	return drawn, rest
}

// ReshuffleWithDiscard merges the deck with the discard pile and shuffles the
// result. With keepTop the top discard card (last element) stays out of the
// merge so the table still shows it.
func ReshuffleWithDiscard(cards, discard []Card, keepTop bool) []Card {
	merged := make([]Card, 0, len(cards)+len(discard))
	merged = append(merged, cards...)
	if keepTop && len(discard) > 0 {
		merged = append(merged, discard[:len(discard)-1]...)
	} else {
		merged = append(merged, discard...)
	}
	return Shuffle(merged)
}

// Validate checks the exact composition invariant. It is a test helper, not a
// runtime guard.
func Validate(cards []Card) bool {
	if len(cards) != 90 {
		return false
	}
	numbers := make(map[int]int)
	specials := make(map[Kind]int)
	for _, c := range cards {
		if c.Kind == Number {
			if c.Value == nil {
				return false
			}
			numbers[*c.Value]++
		} else {
			specials[c.Kind]++
		}
	}
	for value := 0; value <= 9; value++ {
		if numbers[value] != 6 {
			return false
		}
	}
	return specials[Reverse] == 6 &&
		specials[Times2] == 6 &&
		specials[Plus2] == 7 &&
		specials[Reset0] == 7 &&
		specials[Joker] == 4
}
