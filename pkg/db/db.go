package db

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// TableName is the single table the loader writes to.
const TableName = "stardict"

// migrationsSQL creates the output schema and relaxes durability for the bulk load.
// A crash mid-run means re-running the conversion against a fresh path.
const migrationsSQL = `
CREATE TABLE stardict (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	word VARCHAR(64) NOT NULL,
	source_html TEXT NOT NULL
);
PRAGMA synchronous = OFF;
PRAGMA journal_mode = MEMORY;
`

const insertSQL = `INSERT INTO stardict (word, source_html) VALUES (?, ?)`

// InitDB runs migrations on the given DB connection.
func InitDB(db *sql.DB) error {
	stmts := strings.Split(migrationsSQL, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
