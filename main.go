// main.go
//
// Entry point for the Jeopardy board server.
// Responsibilities:
//   - Load .env and configure zerolog.
//   - Open SQLite and apply migrations.
//   - Load the category pool and build the cached clue source.
//   - Start the HTTP server and the idle-session reaper.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/internal/categories"
	"github.com/robalobadob/jeopardy/internal/clues"
	"github.com/robalobadob/jeopardy/internal/httpserver"
	"github.com/robalobadob/jeopardy/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := categories.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load category pool")
	}

	db, err := openDB(getEnv("DB_PATH", "./data/jeopardy.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	api := clues.NewClient(getEnv("CLUES_API_URL", clues.DefaultBaseURL), 10*time.Second)
	src := clues.NewSQLCache(api, db, envDuration("CLUES_CACHE_TTL", 24*time.Hour))

	mem := store.NewMemoryStore()
	srv := httpserver.New(mem, db, httpserver.Config{
		Source:        src,
		Pick:          categories.Pick,
		Pool:          categories.Pool(),
		LoadTimeout:   envDuration("LOAD_TIMEOUT", 30*time.Second),
		JWTSecret:     getEnv("JWT_SECRET", "dev_secret_change_me"),
		TokenTTL:      time.Duration(envInt("JWT_EXPIRES_HOURS", 12)) * time.Hour,
		DailySalt:     getEnv("DAILY_SALT", "local_dev_salt"),
		ClientOrigin:  getEnv("CLIENT_ORIGIN", "http://localhost:5175"),
		CookieName:    getEnv("COOKIE_NAME", "jeopardy_host"),
		SecureCookies: os.Getenv("APP_ENV") == "production",
	})

	go store.Reap(ctx, mem, envDuration("SESSION_TIMEOUT", time.Hour), srv.Forget)

	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Int("pool", len(categories.Pool())).Msg("starting jeopardy server")
	if err := srv.Start(ctx, ":"+port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return def
}

// envDuration parses values like "30s" or "24h"; a bare number means seconds.
func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	log.Warn().Str("key", k).Str("value", v).Msg("ignoring malformed duration")
	return def
}
