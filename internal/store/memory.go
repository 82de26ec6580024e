// internal/store/memory.go
//
// In-memory session store.
// Sessions (one view.Controller each) are ephemeral by nature: a board is
// cheap to reload, so nothing here survives a restart.
//
// Characteristics:
//   - Stores *view.Controller keyed by game ID.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Idle sessions are dropped by Sweep, driven by Reap.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/internal/view"
)

// ErrNotFound is returned for unknown game IDs.
var ErrNotFound = errors.New("game not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, c *view.Controller) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*view.Controller, error)

	// Sweep removes sessions idle since before cutoff and returns their IDs.
	Sweep(ctx context.Context, cutoff time.Time) []string
}

type memory struct {
	mu       sync.RWMutex
	sessions map[string]*view.Controller
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*view.Controller)}
}

func (m *memory) Save(ctx context.Context, c *view.Controller) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[c.ID()] = c
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*view.Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.sessions[id]; ok {
		return c, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Sweep(ctx context.Context, cutoff time.Time) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed []string
	for id, c := range m.sessions {
		if c.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Reap sweeps sessions idle longer than idle every idle/2 until ctx ends.
// onRemove runs for each dropped ID.
func Reap(ctx context.Context, s Store, idle time.Duration, onRemove func(id string)) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, id := range s.Sweep(ctx, now.Add(-idle)) {
				log.Debug().Str("gameId", id).Msg("reaped idle session")
				if onRemove != nil {
					onRemove(id)
				}
			}
		}
	}
}
