package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robalobadob/jeopardy/internal/view"
)

func TestSaveGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	c := view.New(view.Options{ID: "abc"})

	if err := s.Save(ctx, c); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "abc")
	if err != nil || got != c {
		t.Fatalf("get: %v %v", got, err)
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSweepDropsIdleSessions(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	old := view.New(view.Options{ID: "old"})
	_ = s.Save(ctx, old)

	cutoff := time.Now().Add(time.Second)
	removed := s.Sweep(ctx, cutoff)
	if len(removed) != 1 || removed[0] != "old" {
		t.Fatalf("expected old to be swept, got %v", removed)
	}
	if _, err := s.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected swept session to be gone, got %v", err)
	}

	fresh := view.New(view.Options{ID: "fresh"})
	_ = s.Save(ctx, fresh)
	if removed := s.Sweep(ctx, time.Now().Add(-time.Hour)); len(removed) != 0 {
		t.Fatalf("fresh session swept: %v", removed)
	}
}
