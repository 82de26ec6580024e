package view

import (
	"time"

	"github.com/robalobadob/jeopardy/internal/game"
)

// Trigger is the start/restart control.
type Trigger struct {
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// Cell is one rendered grid position.
type Cell struct {
	Row   int              `json:"row"`
	Col   int              `json:"col"`
	Text  string           `json:"text"`
	State game.RevealState `json:"state"`
}

// Snapshot is everything a page needs to draw the session.
type Snapshot struct {
	ID        string     `json:"id"`
	Version   uint64     `json:"version"`
	Mode      Mode       `json:"mode"`
	Trigger   Trigger    `json:"trigger"`
	Visible   bool       `json:"visible"`
	Headers   []string   `json:"headers"`
	Cells     [][]Cell   `json:"cells"` // [row][col]
	Loaded    int        `json:"loaded"`
	GameOver  bool       `json:"gameOver"`
	Error     string     `json:"error,omitempty"`
	Daily     string     `json:"daily,omitempty"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
}

// Snapshot returns the current renderable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		ID:       c.id,
		Version:  c.version,
		Mode:     c.mode,
		Trigger:  c.triggerLocked(),
		Loaded:   c.loaded,
		Error:    c.errMsg,
		Daily:    c.daily,
		GameOver: c.mode != ModeLoading && c.board.IsGameOver(),
		Headers:  make([]string, game.NumCategories),
		Cells:    make([][]Cell, game.CluesPerCategory),
	}
	for row := range s.Cells {
		s.Cells[row] = make([]Cell, game.NumCategories)
		for col := range s.Cells[row] {
			s.Cells[row][col] = Cell{Row: row, Col: col, State: game.RevealHidden}
		}
	}

	switch {
	case c.mode == ModeLoading:
		// Cleared grid; columns fill in with title and "?" as they arrive.
		for col := 0; col < c.loaded; col++ {
			s.Headers[col] = c.pending[col]
			for row := range s.Cells {
				s.Cells[row][col].Text = game.Placeholder
			}
		}
	case !c.board.Empty():
		s.Visible = true
		for col, cat := range c.board.Categories() {
			s.Headers[col] = cat.Title
			for row, clue := range cat.Clues {
				s.Cells[row][col].Text = clue.Text()
				s.Cells[row][col].State = clue.Showing
			}
		}
		if !c.startedAt.IsZero() {
			t := c.startedAt
			s.StartedAt = &t
		}
	}
	return s
}

func (c *Controller) triggerLocked() Trigger {
	switch c.mode {
	case ModeLoading:
		return Trigger{Label: "Loading...", Enabled: false}
	case ModeReady:
		return Trigger{Label: "Restart", Enabled: true}
	case ModeFailed:
		if c.board.Empty() {
			return Trigger{Label: "Retry", Enabled: true}
		}
		return Trigger{Label: "Restart", Enabled: true}
	default:
		return Trigger{Label: "Start Game", Enabled: true}
	}
}
