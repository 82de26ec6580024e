// internal/game/types.go
//
// Core type definitions for the Jeopardy board.
// Defines:
//   - RevealState: what a single clue cell currently shows.
//   - Clue: one question/answer pair plus its reveal state.
//   - Category: a titled column of clues.
//   - Board: the fixed 6x5 grid for one game session.

package game

import "errors"

const (
	NumCategories    = 6   // grid columns
	CluesPerCategory = 5   // grid rows
	Placeholder      = "?" // text of a cell that has not been revealed
)

// RevealState represents what a clue cell is showing.
// Possible values:
//   - "hidden":   nothing revealed yet; the cell shows the placeholder.
//   - "question": the question text is showing.
//   - "answer":   the answer text is showing (terminal).
type RevealState string

const (
	RevealHidden   RevealState = "hidden"
	RevealQuestion RevealState = "question"
	RevealAnswer   RevealState = "answer"
)

// ErrOutOfRange is returned for a (row, col) outside the 6x5 grid.
var ErrOutOfRange = errors.New("cell out of range")

// Clue holds one question/answer pair.
type Clue struct {
	Question string      `json:"question"`
	Answer   string      `json:"answer"`
	Showing  RevealState `json:"showing"`
}

// Category is one column of the board.
type Category struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Clues []Clue `json:"clues"`
}

// Board holds the categories for a single game session.
// The zero value is an empty board; ReplaceAll populates it.
type Board struct {
	categories []Category
}
