package clues

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/internal/game"
)

// SQLCache is a read-through cache in front of another Source, backed by the
// category_cache table. Only validated categories are ever written.
type SQLCache struct {
	base Source
	db   *sql.DB
	ttl  time.Duration
	now  func() time.Time
}

// NewSQLCache wraps base. A ttl <= 0 disables expiry.
func NewSQLCache(base Source, db *sql.DB, ttl time.Duration) *SQLCache {
	if base == nil {
		panic("clues.NewSQLCache: base source is nil")
	}
	return &SQLCache{base: base, db: db, ttl: ttl, now: time.Now}
}

// Category serves from the cache when fresh, otherwise asks base and stores
// the result. Cache read/write failures are logged and never fail the call.
func (c *SQLCache) Category(ctx context.Context, id int) (game.Category, error) {
	if cat, ok := c.load(ctx, id); ok {
		return cat, nil
	}
	cat, err := c.base.Category(ctx, id)
	if err != nil {
		return game.Category{}, err
	}
	c.store(ctx, cat)
	return cat, nil
}

func (c *SQLCache) load(ctx context.Context, id int) (game.Category, bool) {
	var title, cluesJSON, fetched string
	err := c.db.QueryRowContext(ctx,
		`SELECT title, clues, fetched_at FROM category_cache WHERE id=?`, id,
	).Scan(&title, &cluesJSON, &fetched)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Warn().Err(err).Int("categoryId", id).Msg("category cache read")
		}
		return game.Category{}, false
	}

	at, err := time.Parse(time.RFC3339, fetched)
	if err != nil || (c.ttl > 0 && c.now().Sub(at) > c.ttl) {
		return game.Category{}, false
	}

	var clues []game.Clue
	if err := json.Unmarshal([]byte(cluesJSON), &clues); err != nil || len(clues) != game.CluesPerCategory {
		return game.Category{}, false
	}
	for i := range clues {
		clues[i].Showing = game.RevealHidden
	}
	return game.Category{ID: id, Title: title, Clues: clues}, true
}

func (c *SQLCache) store(ctx context.Context, cat game.Category) {
	b, err := json.Marshal(cat.Clues)
	if err != nil {
		return
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO category_cache (id, title, clues, fetched_at) VALUES (?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET title=excluded.title, clues=excluded.clues, fetched_at=excluded.fetched_at`,
		cat.ID, cat.Title, string(b), c.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		log.Warn().Err(err).Int("categoryId", cat.ID).Msg("category cache write")
	}
}
