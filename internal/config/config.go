package config

import (
	"os"
	"strconv"
	"time"
)

// Envs is the process configuration, read once at import. Every knob has a
// working default so a bare `go run` serves locally.
var Envs = struct {
	ADDR            string
	ALLOWED_ORIGINS string
	GIN_MODE        string
	BOT_DELAY       time.Duration
	IDLE_TIMEOUT    time.Duration
	AUTO_PASS       bool
}{
	ADDR:            getenv("ADDR", ":5000"),
	ALLOWED_ORIGINS: getenv("ALLOWED_ORIGINS", "http://localhost:5173"),
	GIN_MODE:        os.Getenv("GIN_MODE"),
	BOT_DELAY:       getduration("BOT_DELAY", 600*time.Millisecond),
	IDLE_TIMEOUT:    getduration("IDLE_TIMEOUT", 30*time.Minute),
	AUTO_PASS:       getbool("AUTO_PASS", false),
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getbool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
