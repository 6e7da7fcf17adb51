package main

import (
	"context"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Igoroots34/somo-network/internal/config"
	"github.com/Igoroots34/somo-network/internal/room"
)

// CreateServer wires the gin engine: health probe, origin gate, CORS with
// the websocket handshake headers allowed through.
func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")
		// Non-browser clients send no Origin header; let them through.
		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.JSON(http.StatusForbidden, gin.H{"error": "forbidden origin"})
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if config.Envs.GIN_MODE == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	allowedOrigins := strings.Split(config.Envs.ALLOWED_ORIGINS, ",")

	registry := room.NewRegistry(log, room.Options{
		BotDelay:    config.Envs.BOT_DELAY,
		IdleTimeout: config.Envs.IDLE_TIMEOUT,
		AutoPass:    config.Envs.AUTO_PASS,
	})
	go registry.Sweep(context.Background(), time.Minute)

	r := CreateServer(allowedOrigins)

	handler := room.NewHandler(registry, log)
	handler.Register(r.Group("/rooms"))

	log.Info().Str("addr", config.Envs.ADDR).Msg("server listening")
	if err := r.Run(config.Envs.ADDR); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
