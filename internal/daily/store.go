package daily

import (
	"context"
	"database/sql"
)

// Result is one completed daily board.
type Result struct {
	GameID    string `json:"gameId"`
	PlayerID  string `json:"playerId"`
	Date      string `json:"date"`
	Reveals   int    `json:"reveals"`
	ElapsedMs int64  `json:"elapsedMs"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether playerID has a recorded completion on date.
func (s *Store) AlreadyPlayed(ctx context.Context, playerID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE player_id=? AND date=?",
		playerID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records a completion; a second one for the same player and
// date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(game_id, player_id, date, reveals, elapsed_ms)
		VALUES(?,?,?,?,?)`, r.GameID, r.PlayerID, r.Date, r.Reveals, r.ElapsedMs,
	)
	return err
}

type LBRow struct {
	PlayerID  string `json:"playerId"`
	ElapsedMs int64  `json:"elapsedMs"`
	Reveals   int    `json:"reveals"`
}

// Leaderboard lists the fastest completions for date.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, elapsed_ms, reveals
		FROM daily_results
		WHERE date=?
		ORDER BY elapsed_ms ASC, created_at ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.PlayerID, &r.ElapsedMs, &r.Reveals); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
