// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Board" mode.
// Exposes two endpoints under /daily:
//   - POST /daily/new         → start today's board (creates or reuses session)
//   - GET  /daily/leaderboard → fastest completions for today (or ?date=)
//
// Everyone gets the same six categories on a given UTC date. Each player can
// finish the daily board once; the completion is persisted when the last
// answer is revealed.

package httpserver

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/internal/categories"
	"github.com/robalobadob/jeopardy/internal/daily"
	"github.com/robalobadob/jeopardy/internal/view"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	sessions map[string]string // playerID|date → game ID
	mu       sync.Mutex        // guards sessions
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	salt := s.cfg.DailySalt
	if salt == "" {
		salt = "local_dev_salt"
	}
	s.daily = &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     salt,
		sessions: make(map[string]string),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.daily.handleNew)
		r.Get("/leaderboard", s.daily.handleLeaderboard)
	})
}

func (d *dailyServer) pool() []int {
	if len(d.srv.cfg.Pool) > 0 {
		return d.srv.cfg.Pool
	}
	return categories.Pool()
}

// -----------------------------------------------------------------------------
// /daily/new

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	GameID    string `json:"gameId"`
	HostToken string `json:"hostToken,omitempty"`
	Date      string `json:"date"`
	Played    bool   `json:"played"`
}

// handleNew creates or reuses today's daily session for the caller.
// - If the player already has a DB row for today → Played=true.
// - Otherwise reuse the live session, or create one with today's categories.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	pid := d.srv.ensureAnonID(w, r)
	now := time.Now().UTC()
	date := daily.DateKey(now)

	played, err := d.store.AlreadyPlayed(r.Context(), pid, date)
	if err != nil {
		log.Error().Err(err).Msg("daily already played")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
		return
	}

	key := pid + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()

	id, ok := d.sessions[key]
	if ok {
		if _, err := d.srv.store.Get(r.Context(), id); err != nil {
			ok = false // reaped while idle
		}
	}
	if !ok {
		d.pruneLocked(date)
		id = uuid.NewString()
		c := d.srv.newController(id, daily.Picker(now, d.salt, d.pool()), date)
		c.OnComplete(func(res view.Result) { d.record(pid, res) })
		if err := d.srv.store.Save(r.Context(), c); err != nil {
			writeError(w, http.StatusInternalServerError, "save_failed")
			return
		}
		d.sessions[key] = id
		log.Info().Str("gameId", id).Str("date", date).Msg("daily game created")
	}

	tok, err := d.srv.issueHost(w, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	writeJSON(w, http.StatusOK, dailyNewRes{GameID: id, HostToken: tok, Date: date})
}

// forget drops the session entry pointing at gameID.
func (d *dailyServer) forget(gameID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, id := range d.sessions {
		if id == gameID {
			delete(d.sessions, key)
		}
	}
}

// pruneLocked drops entries from earlier dates. Caller holds d.mu.
func (d *dailyServer) pruneLocked(date string) {
	for key := range d.sessions {
		if !strings.HasSuffix(key, "|"+date) {
			delete(d.sessions, key)
		}
	}
}

// record persists a finished daily board.
func (d *dailyServer) record(playerID string, res view.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := d.store.InsertResult(ctx, daily.Result{
		GameID:    res.GameID,
		PlayerID:  playerID,
		Date:      res.Daily,
		Reveals:   res.Reveals,
		ElapsedMs: res.Elapsed.Milliseconds(),
	})
	if err != nil {
		log.Warn().Err(err).Str("gameId", res.GameID).Msg("record daily result")
	}
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "bad_date")
		return
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
