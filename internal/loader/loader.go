// internal/loader/loader.go
//
// Board loader: fetches one category per id, strictly in order, and reports
// each arrival so the caller can fill in that column's header and
// placeholders before the next request is made.
//
// Failure policy is abort-all: the first error stops the load, later ids
// are never requested and never reported.

package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/internal/clues"
	"github.com/robalobadob/jeopardy/internal/game"
)

// Progress is called after category col has arrived.
type Progress func(col int, cat game.Category)

// Picker yields n distinct category ids.
type Picker func(n int) ([]int, error)

// Error reports which column failed during a load.
type Error struct {
	Col int
	ID  int
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("load column %d (category %d): %v", e.Col, e.ID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Load fetches ids sequentially from src.
func Load(ctx context.Context, src clues.Source, ids []int, onCategory Progress) ([]game.Category, error) {
	start := time.Now()
	cats := make([]game.Category, 0, len(ids))
	for col, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Col: col, ID: id, Err: err}
		}
		cat, err := src.Category(ctx, id)
		if err != nil {
			log.Warn().Err(err).Int("col", col).Int("categoryId", id).Msg("board load aborted")
			return nil, &Error{Col: col, ID: id, Err: err}
		}
		cats = append(cats, cat)
		if onCategory != nil {
			onCategory(col, cat)
		}
	}
	log.Debug().Ints("categoryIds", ids).Dur("took", time.Since(start)).Msg("board loaded")
	return cats, nil
}

// LoadRandom picks game.NumCategories ids and loads them.
func LoadRandom(ctx context.Context, src clues.Source, pick Picker, onCategory Progress) ([]game.Category, error) {
	ids, err := pick(game.NumCategories)
	if err != nil {
		return nil, err
	}
	return Load(ctx, src, ids, onCategory)
}
