// internal/view/controller.go
//
// View controller for a single game session.
// Responsibilities:
//   - Own the board and the loading/ready view state around it.
//   - Start/restart: enter Loading, run the board loader, then Ready or Failed.
//   - Guard against a second start while a load is in flight.
//   - Route reveal clicks to the board only while reveals are enabled.
//   - Publish snapshots on every change and fire a completion hook once.
//
// Modes:
//   idle     → nothing loaded yet; grid hidden, trigger "Start Game".
//   loading  → grid hidden and cleared, reveals disabled, trigger disabled.
//   ready    → grid shown, reveals enabled, trigger "Restart".
//   failed   → load error surfaced; the previous board (if any) stays playable.

package view

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/internal/clues"
	"github.com/robalobadob/jeopardy/internal/game"
	"github.com/robalobadob/jeopardy/internal/loader"
)

// Mode is the board-visibility state of a session.
type Mode string

const (
	ModeIdle    Mode = "idle"
	ModeLoading Mode = "loading"
	ModeReady   Mode = "ready"
	ModeFailed  Mode = "failed"
)

var (
	ErrLoadInProgress = errors.New("board load already in progress")
	ErrNotReady       = errors.New("board is not accepting reveals")
)

const defaultLoadTimeout = 30 * time.Second

// Options configures a Controller.
type Options struct {
	ID          string
	Source      clues.Source
	Pick        loader.Picker
	LoadTimeout time.Duration
	Daily       string // date key for daily boards, empty otherwise
}

// Result is reported once when a board is fully revealed.
type Result struct {
	GameID  string
	Daily   string
	Reveals int
	Elapsed time.Duration
}

// Controller owns one board and its view state. It is safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	id          string
	daily       string
	src         clues.Source
	pick        loader.Picker
	loadTimeout time.Duration

	board   game.Board
	mode    Mode
	pending [game.NumCategories]string // headers written while loading
	loaded  int
	errMsg  string
	version uint64

	startedAt  time.Time
	lastActive time.Time
	reveals    int
	completed  bool

	onChange   func(Snapshot)
	onComplete func(Result)
}

// New creates an idle controller.
func New(opts Options) *Controller {
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = defaultLoadTimeout
	}
	return &Controller{
		id:          opts.ID,
		daily:       opts.Daily,
		src:         opts.Source,
		pick:        opts.Pick,
		loadTimeout: opts.LoadTimeout,
		mode:        ModeIdle,
		lastActive:  time.Now(),
	}
}

// ID returns the session identifier.
func (c *Controller) ID() string { return c.id }

// Daily returns the date key of a daily board, or "".
func (c *Controller) Daily() string { return c.daily }

// OnChange registers fn to receive a snapshot after every change.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// OnComplete registers fn to run once each time a board is fully revealed.
func (c *Controller) OnComplete(fn func(Result)) {
	c.mu.Lock()
	c.onComplete = fn
	c.mu.Unlock()
}

// LastActive reports when the session last started a load or took a reveal.
func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// Start enters Loading and loads a fresh board in the background.
// The returned channel delivers the load outcome and is then closed.
// A start while another load is running returns ErrLoadInProgress.
func (c *Controller) Start(ctx context.Context) (<-chan error, error) {
	c.mu.Lock()
	if c.mode == ModeLoading {
		c.mu.Unlock()
		return nil, ErrLoadInProgress
	}
	c.mode = ModeLoading
	c.pending = [game.NumCategories]string{}
	c.loaded = 0
	c.errMsg = ""
	c.lastActive = time.Now()
	c.mu.Unlock()
	c.notify()

	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- c.run(ctx)
	}()
	return done, nil
}

func (c *Controller) run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.loadTimeout)
	defer cancel()

	cats, err := loader.LoadRandom(ctx, c.src, c.pick, c.progress)
	if err == nil {
		c.mu.Lock()
		err = c.board.ReplaceAll(cats)
		c.mu.Unlock()
	}

	c.mu.Lock()
	if err != nil {
		c.mode = ModeFailed
		c.errMsg = describe(err)
	} else {
		c.mode = ModeReady
		c.startedAt = time.Now()
		c.reveals = 0
		c.completed = false
	}
	c.mu.Unlock()
	c.notify()

	if err != nil {
		log.Warn().Err(err).Str("gameId", c.id).Msg("board load failed")
		return err
	}
	log.Info().Str("gameId", c.id).Msg("board ready")
	return nil
}

// progress records a loaded column: its title and "?" placeholders.
func (c *Controller) progress(col int, cat game.Category) {
	c.mu.Lock()
	c.pending[col] = cat.Title
	c.loaded = col + 1
	c.mu.Unlock()
	c.notify()
}

// Reveal applies one click to the cell at (row, col).
func (c *Controller) Reveal(row, col int) (Cell, error) {
	c.mu.Lock()
	if !c.revealsEnabled() {
		c.mu.Unlock()
		return Cell{}, ErrNotReady
	}
	before, err := c.board.Clue(row, col)
	if err != nil {
		c.mu.Unlock()
		return Cell{}, err
	}
	prev := before.Showing
	clue, err := c.board.Reveal(row, col)
	if err != nil {
		c.mu.Unlock()
		return Cell{}, err
	}
	if clue.Showing != prev {
		c.reveals++
	}
	c.lastActive = time.Now()

	var done func(Result)
	var res Result
	if !c.completed && c.board.IsGameOver() {
		c.completed = true
		done = c.onComplete
		res = Result{
			GameID:  c.id,
			Daily:   c.daily,
			Reveals: c.reveals,
			Elapsed: time.Since(c.startedAt),
		}
	}
	c.mu.Unlock()

	c.notify()
	if done != nil {
		log.Info().Str("gameId", res.GameID).Int("reveals", res.Reveals).Dur("elapsed", res.Elapsed).Msg("board complete")
		done(res)
	}
	return Cell{Row: row, Col: col, Text: clue.Text(), State: clue.Showing}, nil
}

// IsGameOver reports whether the current board is fully revealed.
func (c *Controller) IsGameOver() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.board.IsGameOver()
}

// revealsEnabled: caller holds c.mu.
func (c *Controller) revealsEnabled() bool {
	switch c.mode {
	case ModeReady:
		return true
	case ModeFailed:
		return !c.board.Empty()
	default:
		return false
	}
}

func (c *Controller) notify() {
	c.mu.Lock()
	c.version++
	fn := c.onChange
	var snap Snapshot
	if fn != nil {
		snap = c.snapshotLocked()
	}
	c.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

// describe turns a load error into user-facing text.
func describe(err error) string {
	var shapeErr *clues.ShapeError
	var fetchErr *clues.FetchError
	switch {
	case errors.As(err, &shapeErr):
		return "A category came back with too few clues. Please try again."
	case errors.As(err, &fetchErr):
		return "Couldn't reach the trivia service. Please try again."
	case errors.Is(err, context.DeadlineExceeded):
		return "Loading the board took too long. Please try again."
	default:
		return "Couldn't load a new board: " + err.Error()
	}
}
