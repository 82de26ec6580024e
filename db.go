// db.go
//
// SQLite bootstrap. The database backs the clue-API cache and daily-board
// results; openDB hands back a handle whose schema is already current.

package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/robalobadob/jeopardy/migrations"
)

// sqliteParams: WAL so readers don't block the cache writer, a busy
// timeout instead of immediate SQLITE_BUSY, and enforced foreign keys.
const sqliteParams = "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"

// openDB opens (creating if needed) the database file at path and migrates it.
func openDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("db dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+sqliteParams)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := migrations.Apply(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
