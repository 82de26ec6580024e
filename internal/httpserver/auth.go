// internal/httpserver/auth.go
//
// Host authorization for game sessions.
// Responsibilities:
//   - Sign/verify host JWTs bound to one game ID.
//   - Hash and check optional host passcodes (bcrypt).
//   - Issue anonymous player IDs for daily boards.
//
// A host token travels either as "Authorization: Bearer <token>" or as a
// cookie scoped to /game/{id}, so one browser can host several games.

package httpserver

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	anonCookieName = "jeopardy_player"
	hostRole       = "host"
)

// ------------------------------- tokens ------------------------------------

func (s *Server) signHostToken(gameID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.cfg.TokenTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"gid":  gameID,
		"role": hostRole,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

// verifyHostToken reports whether tokenStr is a valid host token for gameID.
func (s *Server) verifyHostToken(tokenStr, gameID string) bool {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return false
	}
	gid, _ := claims["gid"].(string)
	role, _ := claims["role"].(string)
	return gid == gameID && role == hostRole
}

// issueHost signs a host token for gameID and sets it as a cookie.
func (s *Server) issueHost(w http.ResponseWriter, gameID string) (string, error) {
	tok, exp, err := s.signHostToken(gameID)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    tok,
		Path:     "/game/" + gameID,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: s.sameSite(),
		Expires:  exp,
	})
	return tok, nil
}

func (s *Server) sameSite() http.SameSite {
	if s.cfg.SecureCookies {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// bearerOrCookie extracts a host token from the Authorization header or cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// ---------------------------- auth middleware ------------------------------

// requireHost enforces a host token for the game named by {id}.
func (s *Server) requireHost(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := s.store.Get(r.Context(), id); err != nil {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		tok := s.bearerOrCookie(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !s.verifyHostToken(tok, id) {
			writeError(w, http.StatusForbidden, "not_host")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ passcodes ----------------------------------

var errPasscodeLength = errors.New("passcode must be 4–64 chars")

// hashPasscode checks the length and returns the bcrypt hash.
func hashPasscode(passcode string) ([]byte, error) {
	if len(passcode) < 4 || len(passcode) > 64 {
		return nil, errPasscodeLength
	}
	return bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
}

func (s *Server) checkPasscode(gameID, passcode string) bool {
	s.mu.Lock()
	h, ok := s.passcodes[gameID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(h, []byte(passcode)) == nil
}

type claimHostReq struct {
	Passcode string `json:"passcode"`
}

// handleClaimHost hands host rights to a second device that knows the passcode.
func (s *Server) handleClaimHost(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	var req claimHostReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if !s.checkPasscode(c.ID(), req.Passcode) {
		writeError(w, http.StatusForbidden, "bad_passcode")
		return
	}
	tok, err := s.issueHost(w, c.ID())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	writeJSON(w, http.StatusOK, newGameRes{GameID: c.ID(), HostToken: tok})
}

// ------------------------------ players ------------------------------------

// ensureAnonID returns the caller's anonymous player ID, minting one if needed.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := genID()
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: s.sameSite(),
		Expires:  time.Now().Add(180 * 24 * time.Hour),
	})
	return id
}

// genID returns a random 22-char URL-safe ID.
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
