package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Igoroots34/somo-network/internal/deck"
)

func intp(v int) *int { return &v }

func numberCard(id string, value int) deck.Card {
	return deck.Card{ID: id, Kind: deck.Number, Value: intp(value)}
}

func specialCard(id string, kind deck.Kind) deck.Card {
	return deck.Card{ID: id, Kind: kind}
}

func give(r *Room, playerID string, cards ...deck.Card) {
	p, _ := r.PlayerByID(playerID)
	p.Hand = append(p.Hand, cards...)
}

func eventTypes(events []Event) []string {
	names := make([]string, 0, len(events))
	for _, e := range events {
		switch e.(type) {
		case CardPlayed:
			names = append(names, "card_played")
		case SumReset:
			names = append(names, "sum_reset")
		case EffectSet:
			names = append(names, "effect_set")
		case DirectionChanged:
			names = append(names, "direction_changed")
		case Penalty:
			names = append(names, "penalty")
		case DrawCards:
			names = append(names, "draw_cards")
		case RoundReset:
			names = append(names, "round_reset")
		case RoundStarted:
			names = append(names, "round_started")
		case TurnChanged:
			names = append(names, "turn_changed")
		case GameOver:
			names = append(names, "game_over")
		}
	}
	return names
}

func TestStartGame(t *testing.T) {
	r := NewRoom("RID123", 8)
	r.Players = append(r.Players,
		NewPlayer("ana", "ana", false),
		NewPlayer("bia", "bia", false),
		NewPlayer("caio", "caio", true),
	)

	events, err := StartGame(r)
	require.NoError(t, err)

	assert.True(t, r.Started)
	assert.Len(t, r.TurnOrder, 3)
	assert.Contains(t, r.TurnOrder, r.CurrentTurn)
	assert.GreaterOrEqual(t, r.Limit, 1)
	assert.LessOrEqual(t, r.Limit, 20)
	for _, p := range r.Players {
		assert.Len(t, p.Hand, StartingHandSize)
	}
	assert.Len(t, r.Deck, 90-3*StartingHandSize)
	assert.Equal(t, []string{"draw_cards", "round_started", "turn_changed"}, eventTypes(events))

	_, err = StartGame(r)
	assert.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestStartGameNeedsTwoPlayers(t *testing.T) {
	r := NewRoom("RID123", 8)
	r.Players = append(r.Players, NewPlayer("ana", "ana", false))

	_, err := StartGame(r)
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
}

func TestApplyPendingEffect(t *testing.T) {
	testCases := []struct {
		desc  string
		value int
		eff   *PendingEffect
		want  int
	}{
		{desc: "no effect", value: 7, eff: nil, want: 7},
		{desc: "additive only", value: 5, eff: &PendingEffect{Additive: 2}, want: 7},
		{desc: "multiplier only", value: 5, eff: &PendingEffect{Multiplier: 2}, want: 10},
		{desc: "multiply before add", value: 5, eff: &PendingEffect{Multiplier: 2, Additive: 3}, want: 13},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.want, ApplyPendingEffect(tC.value, tC.eff))
		})
	}
}

func TestPlayNumberRejections(t *testing.T) {
	setup := func() *Room {
		r := tableOf("ana", "bia")
		r.Sum = 15
		r.Limit = 20
		give(r, "ana", numberCard("n5", 5), numberCard("n9", 9), specialCard("j1", deck.Joker), specialCard("rev", deck.Reverse))
		return r
	}

	testCases := []struct {
		desc    string
		mutate  func(*Room)
		player  string
		card    string
		joker   *int
		wantErr error
	}{
		{desc: "game not started", mutate: func(r *Room) { r.Started = false }, player: "ana", card: "n5", wantErr: ErrGameNotStarted},
		{desc: "not your turn", player: "bia", card: "n5", wantErr: ErrNotYourTurn},
		{desc: "unknown player", mutate: func(r *Room) { r.CurrentTurn = "zeca" }, player: "zeca", card: "n5", wantErr: ErrPlayerNotFound},
		{desc: "card not in hand", player: "ana", card: "ghost", wantErr: ErrCardNotInHand},
		{desc: "special via play_card", player: "ana", card: "rev", wantErr: ErrNotNumberCard},
		{desc: "joker without value", player: "ana", card: "j1", wantErr: ErrJokerValue},
		{desc: "joker value out of range", player: "ana", card: "j1", joker: intp(10), wantErr: ErrJokerValue},
		{desc: "would exceed limit", player: "ana", card: "n9", wantErr: ErrExceedsLimit},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			r := setup()
			if tC.mutate != nil {
				tC.mutate(r)
			}
			sumBefore := r.Sum

			events, err := PlayNumber(r, tC.player, tC.card, tC.joker)

			assert.ErrorIs(t, err, tC.wantErr)
			assert.Empty(t, events, "rejections emit no events")
			assert.Equal(t, sumBefore, r.Sum, "rejections leave state untouched")
			ana, _ := r.PlayerByID("ana")
			assert.Len(t, ana.Hand, 4)
		})
	}
}

func TestPlayNumberBelowLimitAdvancesTurn(t *testing.T) {
	r := tableOf("ana", "bia")
	r.Sum = 3
	r.Limit = 20
	give(r, "ana", numberCard("n5", 5))

	events, err := PlayNumber(r, "ana", "n5", nil)
	require.NoError(t, err)

	assert.Equal(t, 8, r.Sum)
	assert.Equal(t, "bia", r.CurrentTurn)
	assert.Equal(t, []string{"card_played", "turn_changed"}, eventTypes(events))

	played := events[0].(CardPlayed)
	assert.Equal(t, 8, played.Sum)
	assert.Equal(t, 5, played.Modified)
	assert.Len(t, r.Discard, 1)
}

func TestPlayNumberExactHit(t *testing.T) {
	r := tableOf("ana", "bia")
	r.Sum = 15
	r.Limit = 20
	r.Deck = deck.Build()[:10]
	give(r, "ana", numberCard("n5", 5))

	events, err := PlayNumber(r, "ana", "n5", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"card_played", "draw_cards", "round_reset", "round_started"}, eventTypes(events))

	draw := events[1].(DrawCards)
	require.Len(t, draw.Draws, 1)
	assert.Equal(t, PlayerDraw{PlayerID: "ana", Amount: 2}, draw.Draws[0])

	reset := events[2].(RoundReset)
	assert.Equal(t, ResetExactHit, reset.Reason)

	assert.Zero(t, r.Sum)
	assert.Equal(t, "ana", r.CurrentTurn, "exact hit keeps the turn")
	ana, _ := r.PlayerByID("ana")
	assert.Len(t, ana.Hand, 2)
}

func TestPlayNumberConsumesPendingEffect(t *testing.T) {
	r := tableOf("ana", "bia")
	r.Sum = 2
	r.Limit = 20
	r.Pending = &PendingEffect{Multiplier: 2, Additive: 3, SourceID: "bia"}
	give(r, "ana", numberCard("n4", 4))

	events, err := PlayNumber(r, "ana", "n4", nil)
	require.NoError(t, err)

	assert.Equal(t, 6, r.Sum, "sum moves by the base value")
	assert.Nil(t, r.Pending, "effect is spent unconditionally")

	played := events[0].(CardPlayed)
	assert.Equal(t, 11, played.Modified)
}

func TestPlayJoker(t *testing.T) {
	r := tableOf("ana", "bia")
	r.Sum = 10
	r.Limit = 20
	give(r, "ana", specialCard("j1", deck.Joker))

	events, err := PlayNumber(r, "ana", "j1", intp(7))
	require.NoError(t, err)

	assert.Equal(t, 17, r.Sum)
	played := events[0].(CardPlayed)
	require.NotNil(t, played.Card.Value)
	assert.Equal(t, 7, *played.Card.Value, "joker is discarded bearing the chosen value")

	top := r.Discard[len(r.Discard)-1]
	assert.Equal(t, deck.Joker, top.Kind)
	require.NotNil(t, top.Value)
	assert.Equal(t, 7, *top.Value)
}

func TestPlaySpecial(t *testing.T) {
	t.Run("reset0 zeroes immediately", func(t *testing.T) {
		r := tableOf("ana", "bia")
		r.Sum = 13
		give(r, "ana", specialCard("z1", deck.Reset0))

		events, err := PlaySpecial(r, "ana", "z1", deck.Reset0)
		require.NoError(t, err)

		assert.Zero(t, r.Sum)
		assert.Nil(t, r.Pending)
		assert.Equal(t, []string{"sum_reset", "turn_changed"}, eventTypes(events))
		assert.Equal(t, "bia", r.CurrentTurn)
	})

	t.Run("plus2 sets pending effect", func(t *testing.T) {
		r := tableOf("ana", "bia")
		give(r, "ana", specialCard("p1", deck.Plus2))

		_, err := PlaySpecial(r, "ana", "p1", deck.Plus2)
		require.NoError(t, err)

		require.NotNil(t, r.Pending)
		assert.Equal(t, &PendingEffect{Additive: 2, SourceID: "ana"}, r.Pending)
	})

	t.Run("times2 replaces a prior effect", func(t *testing.T) {
		r := tableOf("ana", "bia")
		r.Pending = &PendingEffect{Additive: 2, SourceID: "bia"}
		give(r, "ana", specialCard("x1", deck.Times2))

		_, err := PlaySpecial(r, "ana", "x1", deck.Times2)
		require.NoError(t, err)

		assert.Equal(t, &PendingEffect{Multiplier: 2, SourceID: "ana"}, r.Pending)
	})

	t.Run("reverse flips and advances", func(t *testing.T) {
		r := tableOf("ana", "bia", "caio")
		give(r, "ana", specialCard("r1", deck.Reverse))

		events, err := PlaySpecial(r, "ana", "r1", deck.Reverse)
		require.NoError(t, err)

		assert.False(t, r.Clockwise)
		assert.Equal(t, []string{"direction_changed", "turn_changed"}, eventTypes(events))
		assert.Equal(t, "caio", r.CurrentTurn, "counter clockwise from ana")
	})

	t.Run("reverse with pending effect returns the turn near its source", func(t *testing.T) {
		r := tableOf("ana", "bia", "caio")
		r.CurrentTurn = "caio"
		r.Pending = &PendingEffect{Multiplier: 2, SourceID: "bia"}
		give(r, "caio", specialCard("r1", deck.Reverse))

		_, err := PlaySpecial(r, "caio", "r1", deck.Reverse)
		require.NoError(t, err)

		// the bounce lands on bia, then the usual post-play advance steps
		// once counter clockwise from bia
		assert.Equal(t, "ana", r.CurrentTurn)
	})

	t.Run("declared kind must match the card", func(t *testing.T) {
		r := tableOf("ana", "bia")
		give(r, "ana", specialCard("p1", deck.Plus2))

		_, err := PlaySpecial(r, "ana", "p1", deck.Times2)
		assert.ErrorIs(t, err, ErrKindMismatch)

		_, err = PlaySpecial(r, "ana", "p1", deck.Number)
		assert.ErrorIs(t, err, ErrNotSpecialCard)

		ana, _ := r.PlayerByID("ana")
		assert.Len(t, ana.Hand, 1)
	})
}

func TestForcePenalty(t *testing.T) {
	r := tableOf("ana", "bia", "caio")
	r.Deck = deck.Shuffle(deck.Build())

	events, err := ForcePenalty(r, "ana")
	require.NoError(t, err)

	ana, _ := r.PlayerByID("ana")
	assert.Equal(t, 2, ana.Tokens)
	assert.Equal(t, []string{"penalty", "draw_cards", "round_reset", "round_started"}, eventTypes(events))

	draw := events[1].(DrawCards)
	assert.Len(t, draw.Draws, 3, "every active player draws")
	for _, d := range draw.Draws {
		assert.Equal(t, 2, d.Amount)
	}

	reset := events[2].(RoundReset)
	assert.Equal(t, ResetPenalty, reset.Reason)
	assert.Zero(t, r.Sum)
}

func TestForcePenaltyEliminationEndsGame(t *testing.T) {
	r := tableOf("ana", "bia")
	r.Deck = deck.Shuffle(deck.Build())
	ana, _ := r.PlayerByID("ana")
	ana.Tokens = 1

	events, err := ForcePenalty(r, "ana")
	require.NoError(t, err)

	assert.True(t, ana.Eliminated)
	assert.NotContains(t, r.TurnOrder, "ana")

	last := events[len(events)-1]
	over, ok := last.(GameOver)
	require.True(t, ok, "expected a game_over event, got %T", last)
	assert.Equal(t, "bia", over.WinnerID)
}

func TestDrawPathReshufflesDiscard(t *testing.T) {
	r := tableOf("ana", "bia")
	full := deck.Shuffle(deck.Build())
	r.Deck = full[:1]
	r.Discard = full[1:20]
	top := r.Discard[len(r.Discard)-1]

	ana, _ := r.PlayerByID("ana")
	n := drawInto(r, ana, 5)

	assert.Equal(t, 5, n)
	assert.Len(t, ana.Hand, 5)
	require.Len(t, r.Discard, 1, "top discard card stays on the table")
	assert.Equal(t, top.ID, r.Discard[0].ID)
	for _, c := range ana.Hand {
		assert.NotEqual(t, top.ID, c.ID)
	}
}

func TestLegalMoves(t *testing.T) {
	t.Run("not the player's turn", func(t *testing.T) {
		r := tableOf("ana", "bia")
		assert.Nil(t, LegalMoves(r, "bia"))
	})

	t.Run("numbers filtered by limit, specials always legal", func(t *testing.T) {
		r := tableOf("ana", "bia")
		r.Sum = 15
		r.Limit = 20
		give(r, "ana",
			numberCard("n3", 3),
			numberCard("n9", 9),
			specialCard("rev", deck.Reverse),
		)

		moves := LegalMoves(r, "ana")

		require.Len(t, moves, 2)
		assert.Equal(t, Move{CardID: "n3", Kind: deck.Number, Value: 3}, moves[0])
		assert.Equal(t, Move{CardID: "rev", Kind: deck.Reverse}, moves[1])
	})

	t.Run("joker reports one witnessing value", func(t *testing.T) {
		r := tableOf("ana", "bia")
		r.Sum = 18
		r.Limit = 20
		give(r, "ana", specialCard("j1", deck.Joker))

		moves := LegalMoves(r, "ana")

		require.Len(t, moves, 1)
		assert.Equal(t, Move{CardID: "j1", Kind: deck.Joker, Value: 0}, moves[0])
	})

	t.Run("no options degenerates to forced penalty", func(t *testing.T) {
		r := tableOf("ana", "bia")
		r.Sum = 20
		r.Limit = 20
		give(r, "ana", numberCard("n9", 9))

		moves := LegalMoves(r, "ana")

		require.Len(t, moves, 1)
		assert.True(t, moves[0].Pass)
		assert.Equal(t, PassTurn{}, moves[0].Action())
	})
}
