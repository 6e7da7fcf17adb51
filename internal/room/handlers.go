package room

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler is the HTTP surface of the room service: two websocket upgrade
// endpoints, one to open a room and one to join by code.
type Handler struct {
	registry *Registry
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(registry *Registry, log zerolog.Logger) *Handler {
	return &Handler{
		registry: registry,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is enforced by the server middleware before routing.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Register mounts the room routes on a gin group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.GET("/create", h.CreateRoomHandler)
	g.GET("/join/:code", h.JoinRoomHandler)
	g.GET("/list", h.ListRoomsHandler)
}

// ListRoomsHandler returns the open-room summaries for the lobby screen.
func (h *Handler) ListRoomsHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"rooms": h.registry.ListRooms()})
}

// CreateRoomHandler upgrades the connection and seats the caller as host of
// a fresh room. Query params: nickname (required), max_players (optional).
func (h *Handler) CreateRoomHandler(ctx *gin.Context) {
	nickname, err := parseNickname(ctx.Query("nickname"))
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	maxPlayers, _ := strconv.Atoi(ctx.DefaultQuery("max_players", "8"))

	socket, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Str("ip", ctx.ClientIP()).Msg("websocket upgrade failed")
		return
	}

	conn := NewConn(socket)
	r, err := h.registry.CreateRoom(nickname, maxPlayers, conn)
	if err != nil {
		h.rejectSeat(conn, err)
		return
	}
	h.log.Info().Str("room", r.ID()).Str("nickname", nickname).Msg("room created")
}

// JoinRoomHandler upgrades the connection and seats the caller in the room
// named by the :code path param.
func (h *Handler) JoinRoomHandler(ctx *gin.Context) {
	nickname, err := parseNickname(ctx.Query("nickname"))
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	code := strings.ToUpper(ctx.Param("code"))

	socket, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Str("ip", ctx.ClientIP()).Msg("websocket upgrade failed")
		return
	}

	conn := NewConn(socket)
	if _, err := h.registry.JoinRoom(code, nickname, conn); err != nil {
		h.rejectSeat(conn, err)
		return
	}
	h.log.Info().Str("room", code).Str("nickname", nickname).Msg("player joined room")
}

// rejectSeat tells an already-upgraded connection why it was turned away,
// then closes it.
func (h *Handler) rejectSeat(conn Conn, err error) {
	conn.WriteMessage(encodeError(joinErrorCode(err), err.Error()))
	conn.Close()
}

func parseNickname(raw string) (string, error) {
	nickname := strings.TrimSpace(raw)
	if nickname == "" || utf8.RuneCountInString(nickname) > 20 {
		return "", ErrBadNickname
	}
	return nickname, nil
}

func joinErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "ROOM_NOT_FOUND"
	case errors.Is(err, ErrRoomFull):
		return "ROOM_FULL"
	case errors.Is(err, ErrGameStarted):
		return "GAME_STARTED"
	case errors.Is(err, ErrNicknameTaken):
		return "NICKNAME_TAKEN"
	case errors.Is(err, ErrRoomClosed):
		return "ROOM_CLOSED"
	default:
		return "JOIN_FAILED"
	}
}
