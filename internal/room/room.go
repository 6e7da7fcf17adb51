package room

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Igoroots34/somo-network/internal/bot"
	"github.com/Igoroots34/somo-network/internal/engine"
)

const (
	inboxSize = 64
	// maxBotChain bounds consecutive autonomous actions per settle. Hitting
	// it means the room state is inconsistent, not that bots are slow.
	maxBotChain = 256
)

type envelope struct {
	from   *client
	action clientAction
}

type joinRequest struct {
	nickname string
	conn     Conn
	reply    chan error
}

// Room is one game session plus its actor goroutine. Every mutation of the
// embedded engine state happens inside run, so at most one action is ever
// in flight per room.
type Room struct {
	id       string
	log      zerolog.Logger
	registry *Registry

	state      *engine.Room
	strategies map[string]bot.Strategy
	clients    map[string]*client

	inbox    chan envelope
	joins    chan joinRequest
	removals chan *client

	closing    chan struct{}
	closeOnce  sync.Once
	lastActive atomic.Int64
	summary    atomic.Pointer[Summary]

	botDelay time.Duration
	autoPass bool
}

func newRoom(id string, maxPlayers int, reg *Registry, log zerolog.Logger) *Room {
	r := &Room{
		id:         id,
		log:        log.With().Str("room", id).Logger(),
		registry:   reg,
		state:      engine.NewRoom(id, maxPlayers),
		strategies: make(map[string]bot.Strategy),
		clients:    make(map[string]*client),
		inbox:      make(chan envelope, inboxSize),
		joins:      make(chan joinRequest),
		removals:   make(chan *client, inboxSize),
		closing:    make(chan struct{}),
		botDelay:   reg.botDelay,
		autoPass:   reg.autoPass,
	}
	r.touch()
	r.updateSummary()
	return r
}

func (r *Room) ID() string { return r.id }

// Summary is the lobby-listing view of a room, safe to read from any
// goroutine.
type Summary struct {
	Code       string `json:"code"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
	Started    bool   `json:"game_started"`
}

func (r *Room) Summary() Summary {
	return *r.summary.Load()
}

// updateSummary publishes a fresh snapshot. Actor goroutine only.
func (r *Room) updateSummary() {
	r.summary.Store(&Summary{
		Code:       r.id,
		Players:    len(r.state.Players),
		MaxPlayers: r.state.MaxPlayers,
		Started:    r.state.Started,
	})
}

func (r *Room) touch() {
	r.lastActive.Store(time.Now().UnixNano())
}

func (r *Room) idleSince() time.Time {
	return time.Unix(0, r.lastActive.Load())
}

// requestJoin hands a connection to the actor and waits for its verdict.
func (r *Room) requestJoin(nickname string, conn Conn) error {
	req := joinRequest{nickname: nickname, conn: conn, reply: make(chan error, 1)}
	select {
	case r.joins <- req:
		return <-req.reply
	case <-r.closing:
		return ErrRoomClosed
	}
}

func (r *Room) requestRemoval(c *client) {
	select {
	case r.removals <- c:
	case <-r.closing:
	}
}

// close asks the actor to tear the room down. Safe to call repeatedly.
func (r *Room) close() {
	r.closeOnce.Do(func() { close(r.closing) })
}

// run is the room actor: the sole goroutine allowed to touch r.state.
func (r *Room) run() {
	r.log.Info().Msg("room open")
	for {
		select {
		case env := <-r.inbox:
			r.handleAction(env)
		case req := <-r.joins:
			req.reply <- r.handleJoin(req)
		case c := <-r.removals:
			r.handleRemoval(c)
		case <-r.closing:
			r.teardown()
			return
		}
	}
}

func (r *Room) teardown() {
	for _, c := range r.clients {
		c.close()
	}
	r.clients = map[string]*client{}
	r.registry.forget(r.id)
	r.log.Info().Msg("room closed")
}

func (r *Room) handleJoin(req joinRequest) error {
	if r.state.Started {
		return ErrGameStarted
	}
	if len(r.state.Players) >= r.state.MaxPlayers {
		return ErrRoomFull
	}
	for _, p := range r.state.Players {
		if p.Nickname == req.nickname {
			return ErrNicknameTaken
		}
	}

	playerID := uuid.NewString()
	r.state.Players = append(r.state.Players, engine.NewPlayer(playerID, req.nickname, false))
	if r.state.HostID == "" {
		r.state.HostID = playerID
	}

	c := newClient(playerID, req.nickname, req.conn, r)
	r.clients[playerID] = c
	go c.readPump()
	go c.writePump()

	r.touch()
	r.log.Info().Str("player", playerID).Str("nickname", req.nickname).Msg("player joined")
	r.broadcastState()
	return nil
}

func (r *Room) handleRemoval(c *client) {
	if _, ok := r.clients[c.playerID]; !ok {
		return
	}
	delete(r.clients, c.playerID)
	c.close()
	r.touch()
	r.log.Info().Str("player", c.playerID).Msg("player left")

	if !r.state.Started {
		r.dropSeat(c.playerID)
	} else if p, ok := r.state.PlayerByID(c.playerID); ok {
		p.Connected = false
	}

	if len(r.clients) == 0 {
		r.close()
		return
	}

	r.broadcastState()
	r.settle()
}

// dropSeat removes a pre-game player entirely and re-homes the host seat.
func (r *Room) dropSeat(playerID string) {
	for i, p := range r.state.Players {
		if p.ID == playerID {
			r.state.Players = append(r.state.Players[:i], r.state.Players[i+1:]...)
			break
		}
	}
	if r.state.HostID == playerID {
		r.state.HostID = ""
		for _, p := range r.state.Players {
			if !p.IsBot {
				r.state.HostID = p.ID
				break
			}
		}
	}
}

func (r *Room) handleAction(env envelope) {
	r.touch()
	switch env.action.Action {
	case actionStartGame:
		r.handleStartGame(env.from)
	case actionAddBot:
		r.handleAddBot(env.from, env.action.Difficulty)
	case actionChat:
		r.broadcast(encodeChat(env.from.playerID, env.from.nickname, env.action.Message))
	case actionPlayCard, actionPlaySpecial, actionPassTurn:
		action, err := env.action.toEngineAction()
		if err != nil {
			env.from.send(encodeError("BAD_ACTION", err.Error()))
			return
		}
		events, err := engine.Apply(r.state, env.from.playerID, action)
		if err != nil {
			env.from.send(encodeError(errorCode(err), err.Error()))
			return
		}
		r.broadcastEvents(events)
		r.broadcastState()
		r.settle()
	default:
		env.from.send(encodeError("BAD_ACTION", fmt.Sprintf("unknown action %q", env.action.Action)))
	}
}

func (r *Room) handleStartGame(from *client) {
	if from.playerID != r.state.HostID {
		from.send(encodeError("NOT_HOST", "only the host can start the game"))
		return
	}
	events, err := engine.StartGame(r.state)
	if err != nil {
		from.send(encodeError(errorCode(err), err.Error()))
		return
	}
	r.log.Info().Int("players", len(r.state.Players)).Int("limit", r.state.Limit).Msg("game started")
	r.broadcastEvents(events)
	r.broadcastState()
	r.settle()
}

func (r *Room) handleAddBot(from *client, difficulty string) {
	if r.state.Started {
		from.send(encodeError("GAME_STARTED", ErrGameStarted.Error()))
		return
	}
	if len(r.state.Players) >= r.state.MaxPlayers {
		from.send(encodeError("ROOM_FULL", ErrRoomFull.Error()))
		return
	}
	tier := bot.Difficulty(difficulty)
	switch tier {
	case bot.Easy, bot.Medium, bot.Hard:
	default:
		tier = bot.Easy
	}

	nickname := r.botNickname(tier)
	playerID := uuid.NewString()
	r.state.Players = append(r.state.Players, engine.NewPlayer(playerID, nickname, true))
	r.strategies[playerID] = bot.ForDifficulty(tier)

	r.log.Info().Str("player", playerID).Str("nickname", nickname).Msg("bot added")
	r.broadcastState()
}

func (r *Room) botNickname(tier bot.Difficulty) string {
	label := strings.ToUpper(string(tier))
	n := 1
	for _, p := range r.state.Players {
		if p.IsBot {
			n++
		}
	}
	for {
		nickname := fmt.Sprintf("Bot %s %d", label, n)
		taken := false
		for _, p := range r.state.Players {
			if p.Nickname == nickname {
				taken = true
				break
			}
		}
		if !taken {
			return nickname
		}
		n++
	}
}

// settle drives the causal chain after a settled action: as long as the
// current seat is autonomous (a bot, or a disconnected human under the
// auto-pass policy) it produces and applies exactly one more action, then
// loops. Terminates when a connected human holds the turn, the game ends,
// or the safety cap trips.
func (r *Room) settle() {
	if !r.state.Started {
		return
	}
	for i := 0; i < maxBotChain; i++ {
		if _, over := r.state.Winner(); over {
			return
		}
		current := r.state.CurrentPlayer()
		if current == nil {
			return
		}

		var action engine.Action
		switch {
		case current.IsBot:
			action = r.chooseBotAction(current)
		case r.autoPass && !current.Connected:
			action = engine.PassTurn{}
		default:
			return
		}

		if r.botDelay > 0 {
			time.Sleep(r.botDelay)
		}

		events, err := engine.Apply(r.state, current.ID, action)
		if err != nil {
			// A strategy picked an illegal move; treat it as no action
			// available rather than corrupting the chain.
			r.log.Warn().Err(err).Str("player", current.ID).Msg("autonomous action rejected, forcing penalty")
			events, err = engine.ForcePenalty(r.state, current.ID)
			if err != nil {
				r.log.Error().Err(err).Str("player", current.ID).Msg("structural inconsistency, abandoning settle chain")
				return
			}
		}
		r.broadcastEvents(events)
		r.broadcastState()
	}
	r.log.Error().Int("cap", maxBotChain).Msg("structural inconsistency: bot chain exceeded cap")
}

func (r *Room) chooseBotAction(p *engine.Player) engine.Action {
	strategy, ok := r.strategies[p.ID]
	if !ok {
		strategy = bot.Random{}
	}
	view := bot.View{
		SelfID:  p.ID,
		Hand:    p.Hand,
		Sum:     r.state.Sum,
		Limit:   r.state.Limit,
		Pending: r.state.Pending,
	}
	action, ok := strategy.ChooseAction(view, engine.LegalMoves(r.state, p.ID))
	if !ok {
		return engine.PassTurn{}
	}
	return action
}

func (r *Room) broadcast(data []byte) {
	for _, c := range r.clients {
		c.send(data)
	}
}

func (r *Room) broadcastEvents(events []engine.Event) {
	for _, e := range events {
		data, err := encodeEvent(e)
		if err != nil {
			r.log.Error().Err(err).Msg("dropping unencodable event")
			continue
		}
		r.broadcast(data)
	}
}

// broadcastState sends each connected player their own redacted snapshot.
func (r *Room) broadcastState() {
	r.updateSummary()
	for id, c := range r.clients {
		c.send(encodeRoomState(r.state, id))
	}
}

// errorCode maps engine rejections onto stable wire codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrGameNotStarted):
		return "GAME_NOT_STARTED"
	case errors.Is(err, engine.ErrNotYourTurn):
		return "NOT_YOUR_TURN"
	case errors.Is(err, engine.ErrPlayerNotFound):
		return "PLAYER_NOT_FOUND"
	case errors.Is(err, engine.ErrCardNotInHand):
		return "CARD_NOT_IN_HAND"
	case errors.Is(err, engine.ErrNotNumberCard), errors.Is(err, engine.ErrNotSpecialCard):
		return "WRONG_CARD_KIND"
	case errors.Is(err, engine.ErrJokerValue):
		return "JOKER_VALUE_REQUIRED"
	case errors.Is(err, engine.ErrExceedsLimit):
		return "EXCEEDS_LIMIT"
	case errors.Is(err, engine.ErrKindMismatch):
		return "KIND_MISMATCH"
	case errors.Is(err, engine.ErrNotEnoughPlayers):
		return "NOT_ENOUGH_PLAYERS"
	case errors.Is(err, engine.ErrAlreadyStarted):
		return "GAME_STARTED"
	default:
		return "ILLEGAL_ACTION"
	}
}
