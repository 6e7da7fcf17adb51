package room

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	outboxSize   = 256
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	pongWait     = time.Minute
)

// Conn abstracts the websocket so room tests can run without a network.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Ping() error
	Close()
}

type wsConn struct {
	socket *websocket.Conn
}

// NewConn wraps a gorilla connection with the ping/pong deadlines the pumps
// expect.
func NewConn(socket *websocket.Conn) Conn {
	socket.SetReadDeadline(time.Now().Add(pongWait))
	socket.SetPongHandler(func(string) error {
		return socket.SetReadDeadline(time.Now().Add(pongWait))
	})
	return &wsConn{socket: socket}
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.socket.ReadMessage()
	return data, err
}

func (c *wsConn) WriteMessage(data []byte) error {
	c.socket.SetWriteDeadline(time.Now().Add(writeWait))
	return c.socket.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Ping() error {
	c.socket.SetWriteDeadline(time.Now().Add(writeWait))
	return c.socket.WriteMessage(websocket.PingMessage, nil)
}

func (c *wsConn) Close() {
	c.socket.SetWriteDeadline(time.Now().Add(writeWait))
	c.socket.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.socket.Close()
}

// client is one connected human seat: the bridge between a websocket and
// the room actor's inbox.
type client struct {
	playerID string
	nickname string
	room     *Room
	conn     Conn
	limiter  *rate.Limiter
	outbox   chan []byte
	done     chan struct{}
}

func newClient(playerID, nickname string, conn Conn, r *Room) *client {
	return &client{
		playerID: playerID,
		nickname: nickname,
		room:     r,
		conn:     conn,
		limiter:  rate.NewLimiter(rate.Limit(5), 10),
		outbox:   make(chan []byte, outboxSize),
		done:     make(chan struct{}),
	}
}

// send queues data for the write pump. A client that cannot keep up loses
// packets rather than stalling the room.
func (c *client) send(data []byte) {
	select {
	case c.outbox <- data:
	case <-c.done:
	default:
	}
}

// readPump decodes inbound envelopes and forwards them to the room actor.
// It owns the connection's read side; exiting it means the player is gone.
func (c *client) readPump() {
	defer c.room.requestRemoval(c)

	for {
		data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if !c.limiter.Allow() {
			c.send(encodeError("RATE_LIMITED", "slow down"))
			continue
		}
		var action clientAction
		if err := json.Unmarshal(data, &action); err != nil {
			c.send(encodeError("BAD_PAYLOAD", "malformed action"))
			continue
		}
		select {
		case c.room.inbox <- envelope{from: c, action: action}:
		case <-c.done:
			return
		}
	}
}

// writePump drains the outbox and keeps the connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.outbox:
			if err := c.conn.WriteMessage(data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *client) close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}
