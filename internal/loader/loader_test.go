package loader

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/robalobadob/jeopardy/internal/categories"
	"github.com/robalobadob/jeopardy/internal/clues"
	"github.com/robalobadob/jeopardy/internal/game"
)

type fakeSource struct {
	requested []int
	failOn    int
	failWith  error
}

func (f *fakeSource) Category(_ context.Context, id int) (game.Category, error) {
	f.requested = append(f.requested, id)
	if id == f.failOn {
		return game.Category{}, f.failWith
	}
	clues := make([]game.Clue, game.CluesPerCategory)
	for i := range clues {
		clues[i] = game.Clue{Question: fmt.Sprintf("q%d", i), Answer: fmt.Sprintf("a%d", i)}
	}
	return game.Category{ID: id, Title: fmt.Sprintf("title-%d", id), Clues: clues}, nil
}

func TestLoadSequentialInOrder(t *testing.T) {
	src := &fakeSource{}
	ids := []int{11, 3, 8, 2, 17, 6}

	var reported []int
	cats, err := Load(context.Background(), src, ids, func(col int, cat game.Category) {
		if col != len(reported) {
			t.Fatalf("progress out of order: col %d after %d reports", col, len(reported))
		}
		reported = append(reported, cat.ID)
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cats) != len(ids) {
		t.Fatalf("expected %d categories, got %d", len(ids), len(cats))
	}
	for i, id := range ids {
		if src.requested[i] != id || reported[i] != id || cats[i].ID != id {
			t.Fatalf("column %d: requested %d reported %d loaded %d, want %d", i, src.requested[i], reported[i], cats[i].ID, id)
		}
	}
}

func TestLoadAbortsOnFirstError(t *testing.T) {
	boom := &clues.FetchError{ID: 8, Err: errors.New("connection reset")}
	src := &fakeSource{failOn: 8, failWith: boom}
	ids := []int{11, 3, 8, 2, 17, 6}

	var reported []int
	cats, err := Load(context.Background(), src, ids, func(col int, cat game.Category) {
		reported = append(reported, col)
	})
	if cats != nil {
		t.Fatalf("expected no categories on failure, got %d", len(cats))
	}

	var loadErr *Error
	if !errors.As(err, &loadErr) || loadErr.Col != 2 || loadErr.ID != 8 {
		t.Fatalf("expected load error at column 2, got %v", err)
	}
	var fetchErr *clues.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected wrapped FetchError, got %v", err)
	}
	if len(src.requested) != 3 {
		t.Fatalf("expected fetching to stop after column 2, requested %v", src.requested)
	}
	if len(reported) != 2 {
		t.Fatalf("expected only columns 0-1 reported, got %v", reported)
	}
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &fakeSource{}

	_, err := Load(ctx, src, []int{1, 2}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(src.requested) != 0 {
		t.Fatalf("expected no requests, got %v", src.requested)
	}
}

func TestLoadRandomPickerError(t *testing.T) {
	pick := func(n int) ([]int, error) {
		return categories.PickFrom([]int{1, 2, 3}, n, func(int) int { return 0 })
	}
	_, err := LoadRandom(context.Background(), &fakeSource{}, pick, nil)
	var cfgErr *categories.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestLoadRandomUsesPickedIDs(t *testing.T) {
	src := &fakeSource{}
	pick := func(n int) ([]int, error) {
		return []int{2, 4, 6, 8, 10, 12}[:n], nil
	}
	cats, err := LoadRandom(context.Background(), src, pick, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != game.NumCategories || cats[5].ID != 12 {
		t.Fatalf("unexpected categories %+v", cats)
	}
}
