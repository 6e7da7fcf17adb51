package room

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Registry owns the live room table. It is an explicit service object
// constructed once at bootstrap and handed to the HTTP layer; there is no
// ambient global state.
type Registry struct {
	log         zerolog.Logger
	botDelay    time.Duration
	idleTimeout time.Duration
	autoPass    bool

	mu    sync.RWMutex
	rooms map[string]*Room
}

// Options tune registry behavior. Zero values mean: no cosmetic bot delay,
// default 30 minute idle timeout, no auto-pass for disconnected humans.
type Options struct {
	BotDelay    time.Duration
	IdleTimeout time.Duration
	AutoPass    bool
}

func NewRegistry(log zerolog.Logger, opts Options) *Registry {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Minute
	}
	reg := &Registry{
		log:         log,
		botDelay:    opts.BotDelay,
		idleTimeout: opts.IdleTimeout,
		autoPass:    opts.AutoPass,
		rooms:       make(map[string]*Room),
	}
	return reg
}

// CreateRoom opens a fresh room, runs its actor and seats the creating
// connection as host.
func (reg *Registry) CreateRoom(nickname string, maxPlayers int, conn Conn) (*Room, error) {
	if maxPlayers < 2 || maxPlayers > 8 {
		maxPlayers = 8
	}

	reg.mu.Lock()
	var code string
	for {
		code = newRoomCode()
		if _, taken := reg.rooms[code]; !taken {
			break
		}
	}
	r := newRoom(code, maxPlayers, reg, reg.log)
	reg.rooms[code] = r
	reg.mu.Unlock()

	go r.run()

	if err := r.requestJoin(nickname, conn); err != nil {
		r.close()
		return nil, err
	}
	return r, nil
}

// JoinRoom seats a connection in an existing room by its code.
func (reg *Registry) JoinRoom(code, nickname string, conn Conn) (*Room, error) {
	reg.mu.RLock()
	r, ok := reg.rooms[code]
	reg.mu.RUnlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	if err := r.requestJoin(nickname, conn); err != nil {
		return nil, err
	}
	return r, nil
}

// forget drops the room from the table. Called by the room actor during
// teardown.
func (reg *Registry) forget(code string) {
	reg.mu.Lock()
	delete(reg.rooms, code)
	reg.mu.Unlock()
}

// ListRooms snapshots every open room for the lobby listing.
func (reg *Registry) ListRooms() []Summary {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	rooms := make([]Summary, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r.Summary())
	}
	return rooms
}

func (reg *Registry) RoomCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// Sweep closes rooms idle past the timeout until the context ends. Run it
// once, as a goroutine, at bootstrap.
func (reg *Registry) Sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-reg.idleTimeout)
			reg.mu.RLock()
			stale := make([]*Room, 0)
			for _, r := range reg.rooms {
				if r.idleSince().Before(cutoff) {
					stale = append(stale, r)
				}
			}
			reg.mu.RUnlock()
			for _, r := range stale {
				reg.log.Info().Str("room", r.ID()).Msg("closing idle room")
				r.close()
			}
		}
	}
}
