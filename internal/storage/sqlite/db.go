package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// InitDB opens the SQLite file and applies the schema. Entry timestamps are
// stored as Unix nanoseconds so day-range comparisons stay exact across
// UTC offset changes.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS agents (
		id           INTEGER PRIMARY KEY,
		email        TEXT NOT NULL COLLATE NOCASE,
		display_name TEXT NOT NULL DEFAULT '',
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS entries (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		number      TEXT NOT NULL,
		agent_id    INTEGER NOT NULL REFERENCES agents(id),
		action      TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		logged_at   INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_agent_logged_at ON entries(agent_id, logged_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
