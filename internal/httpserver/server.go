// internal/httpserver/server.go
//
// HTTP server wiring for the Jeopardy board.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, panic recovery, logging,
//     timeouts, JSON, CORS).
//   - Board page and static assets: "/", "/play/{id}", "/assets/*".
//   - Game endpoints: create, snapshot, start/restart, reveal, host hand-off.
//   - Live snapshots over websocket and a QR code for sharing.
//   - Daily board endpoints, mounted under /daily.
//
// Notes:
//   - Anyone with a game ID can watch; only the host (JWT bound to that game
//     ID) can start or reveal.
//   - Loads run on a context detached from the request, so a client hanging
//     up never leaves a session stuck in Loading.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"

	"github.com/robalobadob/jeopardy/assets"
	"github.com/robalobadob/jeopardy/internal/categories"
	"github.com/robalobadob/jeopardy/internal/clues"
	"github.com/robalobadob/jeopardy/internal/game"
	"github.com/robalobadob/jeopardy/internal/live"
	"github.com/robalobadob/jeopardy/internal/loader"
	"github.com/robalobadob/jeopardy/internal/store"
	"github.com/robalobadob/jeopardy/internal/view"
)

// startWait bounds how long POST /start blocks before answering 202.
const startWait = 8 * time.Second

// Config carries everything the server needs besides the store and DB.
type Config struct {
	Source        clues.Source
	Pick          loader.Picker
	Pool          []int
	LoadTimeout   time.Duration
	JWTSecret     string
	TokenTTL      time.Duration
	DailySalt     string
	ClientOrigin  string
	CookieName    string
	SecureCookies bool
}

// Server bundles router, session store, live hub, and DB handle.
type Server struct {
	r     *chi.Mux
	store store.Store
	db    *sql.DB
	hub   *live.Hub
	cfg   Config
	daily *dailyServer

	mu        sync.Mutex
	passcodes map[string][]byte // game ID → bcrypt hash
}

// New constructs a Server, installs middleware, and registers routes.
// db may be nil, in which case the daily endpoints are not mounted.
func New(st store.Store, db *sql.DB, cfg Config) *Server {
	if cfg.Pick == nil {
		cfg.Pick = categories.Pick
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev_secret_change_me"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "jeopardy_host"
	}
	if cfg.ClientOrigin == "" {
		cfg.ClientOrigin = "http://localhost:5175"
	}

	s := &Server{
		r:         chi.NewRouter(),
		store:     st,
		db:        db,
		hub:       live.NewHub(),
		cfg:       cfg,
		passcodes: make(map[string][]byte),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(requestLogger)

	// --- page + assets ---
	s.r.Get("/", servePage)
	s.r.Get("/play/{id}", servePage)
	s.r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(assets.Web()))))

	// --- long-lived / binary ---
	s.r.Get("/game/{id}/ws", s.handleWS)
	s.r.Get("/game/{id}/qr", s.handleQR)

	// --- JSON API ---
	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(jsonContentType)
		r.Use(s.cors)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		r.Post("/game/new", s.handleNewGame)
		r.Get("/game/{id}", s.handleGetGame)
		r.Post("/game/{id}/host", s.handleClaimHost)
		r.With(s.requireHost).Post("/game/{id}/start", s.handleStart)
		r.With(s.requireHost).Post("/game/{id}/reveal", s.handleReveal)

		if db != nil {
			s.mountDaily(r)
		}
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       10 * time.Minute,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Forget drops per-game server state after the store reaps a session.
func (s *Server) Forget(id string) {
	s.hub.Close(id)
	s.mu.Lock()
	delete(s.passcodes, id)
	s.mu.Unlock()
	if s.daily != nil {
		s.daily.forget(id)
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request with zerolog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("requestId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------ PAGE ---------------------------------------

func servePage(w http.ResponseWriter, r *http.Request) {
	data, err := assets.FS.ReadFile("web/index.html")
	if err != nil {
		http.Error(w, "page missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", "default-src 'self'")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(data)
}

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Passcode string `json:"passcode"` // optional; lets another device claim host
}
type newGameRes struct {
	GameID    string `json:"gameId"`
	HostToken string `json:"hostToken"`
}

// handleNewGame creates an idle session and makes the caller its host.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	var hash []byte
	if req.Passcode != "" {
		h, err := hashPasscode(req.Passcode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		hash = h
	}

	id := uuid.NewString()
	c := s.newController(id, s.cfg.Pick, "")
	if err := s.store.Save(r.Context(), c); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	if hash != nil {
		s.mu.Lock()
		s.passcodes[id] = hash
		s.mu.Unlock()
	}

	tok, err := s.issueHost(w, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	log.Info().Str("gameId", id).Msg("game created")
	writeJSON(w, http.StatusCreated, newGameRes{GameID: id, HostToken: tok})
}

// newController builds a session wired to the live hub.
func (s *Server) newController(id string, pick loader.Picker, date string) *view.Controller {
	c := view.New(view.Options{
		ID:          id,
		Source:      s.cfg.Source,
		Pick:        pick,
		LoadTimeout: s.cfg.LoadTimeout,
		Daily:       date,
	})
	c.OnChange(func(snap view.Snapshot) { s.hub.Publish(id, snap) })
	return c
}

// controller loads the session named by the {id} URL param or writes a 404.
func (s *Server) controller(w http.ResponseWriter, r *http.Request) (*view.Controller, bool) {
	c, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	return c, true
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

// handleStart starts or restarts the board. It waits briefly for the load so
// simple clients get the final state; otherwise it answers 202 and the
// outcome arrives over the websocket.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	done, err := c.Start(context.WithoutCancel(r.Context()))
	if err != nil {
		writeJSON(w, statusFor(err), errorBody(err, c.Snapshot()))
		return
	}

	timer := time.NewTimer(startWait)
	defer timer.Stop()
	select {
	case err := <-done:
		if err != nil {
			writeJSON(w, statusFor(err), errorBody(err, c.Snapshot()))
			return
		}
		writeJSON(w, http.StatusOK, c.Snapshot())
	case <-timer.C:
		writeJSON(w, http.StatusAccepted, c.Snapshot())
	case <-r.Context().Done():
		writeJSON(w, http.StatusAccepted, c.Snapshot())
	}
}

// revealReq is the request payload for POST /game/{id}/reveal.
type revealReq struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}
type revealRes struct {
	Cell     view.Cell     `json:"cell"`
	Snapshot view.Snapshot `json:"snapshot"`
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	var req revealReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Row == nil || req.Col == nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	cell, err := c.Reveal(*req.Row, *req.Col)
	if err != nil {
		writeJSON(w, statusFor(err), errorBody(err, c.Snapshot()))
		return
	}
	writeJSON(w, http.StatusOK, revealRes{Cell: cell, Snapshot: c.Snapshot()})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	s.hub.Serve(w, r, c.ID(), func() any { return c.Snapshot() })
}

// handleQR renders a PNG QR code for the spectator URL of a game.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	url := scheme + "://" + r.Host + "/play/" + c.ID()

	const qrSize = 320
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// ------------------------------ errors -------------------------------------

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var cfgErr *categories.ConfigurationError
	var fetchErr *clues.FetchError
	var shapeErr *clues.ShapeError
	switch {
	case errors.Is(err, game.ErrOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, view.ErrNotReady), errors.Is(err, view.ErrLoadInProgress):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &fetchErr), errors.As(err, &shapeErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

type errorRes struct {
	Error    string        `json:"error"`
	Snapshot view.Snapshot `json:"snapshot"`
}

func errorBody(err error, snap view.Snapshot) errorRes {
	return errorRes{Error: err.Error(), Snapshot: snap}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
