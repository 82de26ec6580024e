// internal/game/engine.go
//
// Reveal state machine and store operations for a single board.
// Responsibilities:
//   - Replace the whole board on (re)start, validating 6x5 dimensions.
//   - Reset reveal state without dropping categories.
//   - Apply clicks: hidden → question → answer, answer is terminal.
//   - Report completion (every clue showing its answer).
//
// Notes:
//   - Cells are addressed as (row, col): row is the clue index inside a
//     category, col is the category index. Nothing else is accepted.
//   - Board is not safe for concurrent use; the view controller owns it.
package game

import "fmt"

// NewBoard builds a board from freshly loaded categories.
func NewBoard(cats []Category) (*Board, error) {
	b := &Board{}
	if err := b.ReplaceAll(cats); err != nil {
		return nil, err
	}
	return b, nil
}

// ReplaceAll discards the current categories and installs cats.
// Every clue starts hidden regardless of the state it arrived with.
func (b *Board) ReplaceAll(cats []Category) error {
	if len(cats) != NumCategories {
		return fmt.Errorf("board needs %d categories, got %d", NumCategories, len(cats))
	}
	next := make([]Category, len(cats))
	for i, c := range cats {
		if len(c.Clues) != CluesPerCategory {
			return fmt.Errorf("category %d (%q) has %d clues, want %d", c.ID, c.Title, len(c.Clues), CluesPerCategory)
		}
		clues := make([]Clue, len(c.Clues))
		copy(clues, c.Clues)
		next[i] = Category{ID: c.ID, Title: c.Title, Clues: clues}
	}
	b.categories = next
	b.Reset()
	return nil
}

// Reset hides every clue. Categories are kept.
func (b *Board) Reset() {
	for i := range b.categories {
		for j := range b.categories[i].Clues {
			b.categories[i].Clues[j].Showing = RevealHidden
		}
	}
}

// Empty reports whether the board has never been populated.
func (b *Board) Empty() bool { return len(b.categories) == 0 }

// Clue returns the clue at (row, col).
func (b *Board) Clue(row, col int) (*Clue, error) {
	if col < 0 || col >= len(b.categories) {
		return nil, fmt.Errorf("%w: row=%d col=%d", ErrOutOfRange, row, col)
	}
	clues := b.categories[col].Clues
	if row < 0 || row >= len(clues) {
		return nil, fmt.Errorf("%w: row=%d col=%d", ErrOutOfRange, row, col)
	}
	return &clues[row], nil
}

// Reveal applies one click to the clue at (row, col) and returns its new
// state. A clue already showing its answer is left untouched.
func (b *Board) Reveal(row, col int) (Clue, error) {
	c, err := b.Clue(row, col)
	if err != nil {
		return Clue{}, err
	}
	switch c.Showing {
	case RevealAnswer:
	case RevealQuestion:
		c.Showing = RevealAnswer
	default:
		c.Showing = RevealQuestion
	}
	return *c, nil
}

// CellText is what the cell at (row, col) displays.
func (b *Board) CellText(row, col int) (string, error) {
	c, err := b.Clue(row, col)
	if err != nil {
		return "", err
	}
	return c.Text(), nil
}

// IsGameOver reports whether every clue is showing its answer.
// An empty board is never over.
func (b *Board) IsGameOver() bool {
	if b.Empty() {
		return false
	}
	for _, cat := range b.categories {
		for _, c := range cat.Clues {
			if c.Showing != RevealAnswer {
				return false
			}
		}
	}
	return true
}

// Categories returns a deep copy suitable for rendering.
func (b *Board) Categories() []Category {
	out := make([]Category, len(b.categories))
	for i, c := range b.categories {
		clues := make([]Clue, len(c.Clues))
		copy(clues, c.Clues)
		out[i] = Category{ID: c.ID, Title: c.Title, Clues: clues}
	}
	return out
}

// Text maps a clue's reveal state to display text.
func (c Clue) Text() string {
	switch c.Showing {
	case RevealQuestion:
		return c.Question
	case RevealAnswer:
		return c.Answer
	default:
		return Placeholder
	}
}
