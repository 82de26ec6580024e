// migrations/migrations.go
//
// Schema migrations for the SQLite database, embedded into the binary.
//   - Scripts are named NNN_description.sql and run in name order.
//   - The _migrations ledger holds the name of every script already run.
//   - A script that opens its own transaction (or turns foreign keys off)
//     runs bare; any other script runs in a transaction with its ledger row.

package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed *.sql
var files embed.FS

const recordSQL = `INSERT INTO _migrations(name) VALUES (?)`

// Apply runs every embedded script the ledger does not list yet.
func Apply(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("migrations: ledger: %w", err)
	}
	todo, err := pending(db)
	if err != nil {
		return err
	}
	if len(todo) == 0 {
		log.Debug().Msg("schema up to date")
		return nil
	}
	for _, name := range todo {
		script, err := files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("migrations: read %s: %w", name, err)
		}
		if err := run(db, name, string(script)); err != nil {
			return fmt.Errorf("migrations: %s: %w", name, err)
		}
		log.Info().Str("migration", name).Msg("schema migrated")
	}
	return nil
}

// pending lists embedded scripts missing from the ledger, in name order.
func pending(db *sql.DB) ([]string, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("migrations: list: %w", err)
	}

	rows, err := db.Query(`SELECT name FROM _migrations`)
	if err != nil {
		return nil, fmt.Errorf("migrations: read ledger: %w", err)
	}
	defer rows.Close()
	done := make(map[string]bool)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		done[n] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var todo []string
	for _, n := range names {
		if !done[n] {
			todo = append(todo, n)
		}
	}
	sort.Strings(todo)
	return todo, nil
}

// ownsTransaction reports scripts that cannot run inside an outer transaction.
func ownsTransaction(script string) bool {
	up := strings.ToUpper(script)
	for _, marker := range []string{"BEGIN TRANSACTION", "PRAGMA FOREIGN_KEYS=OFF", "PRAGMA FOREIGN_KEYS = OFF"} {
		if strings.Contains(up, marker) {
			return true
		}
	}
	return false
}

func run(db *sql.DB, name, script string) error {
	if ownsTransaction(script) {
		if _, err := db.Exec(script); err != nil {
			return err
		}
		_, err := db.Exec(recordSQL, name)
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec(recordSQL, name); err != nil {
		return err
	}
	return tx.Commit()
}
