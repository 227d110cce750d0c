package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrWriterClosed is returned when the writer was already committed or rolled back.
var ErrWriterClosed = errors.New("writer closed")

// Writer appends rows inside the single load transaction.
// It is owned by one goroutine and is not safe for concurrent use.
type Writer struct {
	store  *Store
	tx     *sql.Tx
	stmt   *sql.Stmt
	closed bool
}

// Insert appends one row. A failed insert only aborts that statement;
// the transaction stays usable.
func (w *Writer) Insert(word, sourceHTML string) error {
	if w.closed {
		return ErrWriterClosed
	}
	if _, err := w.stmt.Exec(word, sourceHTML); err != nil {
		return fmt.Errorf("insert %q: %w", word, err)
	}
	return nil
}

// Commit makes every inserted row durable. On failure the store stays in
// the populating state and must be inspected by hand.
func (w *Writer) Commit() error {
	if w.closed {
		return ErrWriterClosed
	}
	w.closed = true
	_ = w.stmt.Close()
	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("commit load tx: %w", err)
	}
	w.store.setState(StateCommitted)
	return nil
}

// Rollback discards the transaction. It is a no-op after Commit.
func (w *Writer) Rollback() error {
	if w.closed {
		return nil
	}
	w.closed = true
	_ = w.stmt.Close()
	return w.tx.Rollback()
}
