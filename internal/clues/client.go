// internal/clues/client.go
//
// HTTP client for the remote trivia-category API.
// Responsibilities:
//   - GET {base}/api/category?id=N and decode {title, clues:[{question, answer}]}.
//   - Enforce the board's clue count: fewer is a ShapeError, extras are dropped.
//   - Classify transport/status/decode failures as FetchError.

package clues

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/internal/game"
)

// DefaultBaseURL is the public trivia API used when CLUES_API_URL is unset.
const DefaultBaseURL = "https://rithm-jeopardy.herokuapp.com"

// Source yields one category of clues by id.
type Source interface {
	Category(ctx context.Context, id int) (game.Category, error)
}

// FetchError wraps a network, status, or decode failure for one category.
type FetchError struct {
	ID  int
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch category %d: %v", e.ID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ShapeError means the API returned fewer clues than the grid needs.
type ShapeError struct {
	ID   int
	Got  int
	Want int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("category %d has %d clues, need %d", e.ID, e.Got, e.Want)
}

// Client talks to the trivia API.
type Client struct {
	base string
	http *http.Client
}

// NewClient builds a client for base (DefaultBaseURL if empty).
func NewClient(base string, timeout time.Duration) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base: strings.TrimSuffix(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// apiCategory matches the wire shape of /api/category.
type apiCategory struct {
	ID    int       `json:"id"`
	Title string    `json:"title"`
	Clues []apiClue `json:"clues"`
}

type apiClue struct {
	Question text `json:"question"`
	Answer   text `json:"answer"`
}

// text accepts either a JSON string or a JSON number.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("clue text: %w", err)
	}
	*t = text(n.String())
	return nil
}

// Category fetches and validates one category.
func (c *Client) Category(ctx context.Context, id int) (game.Category, error) {
	u := c.base + "/api/category?" + url.Values{"id": {strconv.Itoa(id)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return game.Category{}, &FetchError{ID: id, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return game.Category{}, &FetchError{ID: id, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return game.Category{}, &FetchError{ID: id, Err: fmt.Errorf("unexpected status %s", res.Status)}
	}

	var body apiCategory
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return game.Category{}, &FetchError{ID: id, Err: fmt.Errorf("decode: %w", err)}
	}
	log.Debug().Int("categoryId", id).Dur("took", time.Since(start)).Msg("fetched category")

	return toCategory(id, body)
}

// toCategory trims to the grid height and rejects short categories.
func toCategory(id int, body apiCategory) (game.Category, error) {
	if len(body.Clues) < game.CluesPerCategory {
		return game.Category{}, &ShapeError{ID: id, Got: len(body.Clues), Want: game.CluesPerCategory}
	}
	clues := make([]game.Clue, game.CluesPerCategory)
	for i := range clues {
		clues[i] = game.Clue{
			Question: strings.TrimSpace(string(body.Clues[i].Question)),
			Answer:   strings.TrimSpace(string(body.Clues[i].Answer)),
			Showing:  game.RevealHidden,
		}
	}
	return game.Category{ID: id, Title: strings.TrimSpace(body.Title), Clues: clues}, nil
}
