package engine

import "math/rand"

// InitTurnOrder shuffles the active players into a fresh rotation, makes the
// first of them the current player and resets the direction to clockwise.
// No-op when nobody is active.
func (r *Room) InitTurnOrder() {
	active := r.ActivePlayers()
	if len(active) == 0 {
		return
	}
	rand.Shuffle(len(active), func(i, j int) {
		active[i], active[j] = active[j], active[i]
	})
	r.TurnOrder = make([]string, 0, len(active))
	for _, p := range active {
		r.TurnOrder = append(r.TurnOrder, p.ID)
	}
	r.CurrentTurn = r.TurnOrder[0]
	r.Clockwise = true
}

// successorOf steps one seat from the given id in the current direction.
// The rotation is recomputed from TurnOrder each call so eliminated ids are
// excluded outright, not skipped; the id itself is kept in the rotation even
// when it just lost its last token, so its successor stays well defined.
func (r *Room) successorOf(playerID string) (string, bool) {
	rotation := make([]string, 0, len(r.TurnOrder))
	for _, id := range r.TurnOrder {
		p, ok := r.PlayerByID(id)
		if id == playerID || (ok && p.Active()) {
			rotation = append(rotation, id)
		}
	}
	current := -1
	for i, id := range rotation {
		if id == playerID {
			current = i
			break
		}
	}
	if current < 0 {
		return "", false
	}
	var next int
	if r.Clockwise {
		next = (current + 1) % len(rotation)
	} else {
		next = (current - 1 + len(rotation)) % len(rotation)
	}
	if rotation[next] == playerID {
		return "", false
	}
	return rotation[next], true
}

// NextPlayer computes, without mutating anything, who comes after the
// current player in the active rotation, honoring the direction.
func (r *Room) NextPlayer() (string, bool) {
	return r.successorOf(r.CurrentTurn)
}

// AdvanceTurn moves CurrentTurn forward, reporting the new current player.
func (r *Room) AdvanceTurn() (string, bool) {
	next, ok := r.NextPlayer()
	if !ok {
		return "", false
	}
	r.CurrentTurn = next
	return next, true
}

// ReverseDirection flips the rotation. When a pending effect is live, the
// turn bounces back to whoever created it: the retaliation rule that sends a
// dangerous modifier home.
func (r *Room) ReverseDirection() {
	r.Clockwise = !r.Clockwise
	if r.Pending != nil {
		r.CurrentTurn = r.Pending.SourceID
	}
}

// Eliminate marks the player out, zeroes their tokens and drops them from
// the rotation. If they held the turn, it passes to their successor.
func (r *Room) Eliminate(playerID string) {
	p, ok := r.PlayerByID(playerID)
	if !ok {
		return
	}
	var next string
	var hasNext bool
	if r.CurrentTurn == playerID {
		next, hasNext = r.successorOf(playerID)
	}
	p.Eliminated = true
	p.Tokens = 0
	for i, id := range r.TurnOrder {
		if id == playerID {
			r.TurnOrder = append(r.TurnOrder[:i], r.TurnOrder[i+1:]...)
			break
		}
	}
	if r.CurrentTurn == playerID {
		if hasNext {
			r.CurrentTurn = next
		} else {
			r.CurrentTurn = ""
		}
	}
}

// ApplyPenalty takes one token from the player and reports whether that
// eliminated them. Already-eliminated players are left alone.
func (r *Room) ApplyPenalty(playerID string) bool {
	p, ok := r.PlayerByID(playerID)
	if !ok || p.Eliminated {
		return false
	}
	p.Tokens--
	if p.Tokens <= 0 {
		r.Eliminate(playerID)
		return true
	}
	return false
}

// Winner reports the last player standing once at most one remains. With
// zero active players there is no winner and the game is still over.
func (r *Room) Winner() (winnerID string, over bool) {
	active := r.ActivePlayers()
	if len(active) > 1 {
		return "", false
	}
	if len(active) == 1 {
		return active[0].ID, true
	}
	return "", true
}

// ResetRound zeroes the accumulated sum, clears any pending effect and rolls
// a fresh d20 round limit.
func (r *Room) ResetRound() {
	r.Sum = 0
	r.Pending = nil
	r.Limit = 1 + rand.Intn(LimitDie)
}
