package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/zeebo/xxh3"
)

// Store is the sqlite file the definitions are loaded into.
type Store struct {
	conn   *sql.DB
	path   string
	logger *slog.Logger

	mu    sync.Mutex
	state State
}

// Open creates the store at path when nothing exists there yet, or reuses the
// existing file without touching its schema. A reused file may not have been
// created by this tool; that is logged, not validated.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	_, err := os.Stat(path)
	create := errors.Is(err, fs.ErrNotExist)
	if err != nil && !create {
		return nil, fmt.Errorf("stat store %s: %w", path, err)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	// One connection so the pragmas and the load transaction share it.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	s := &Store{conn: conn, path: path, logger: logger, state: StateUninitialized}
	if create {
		logger.Debug("initializing database", "path", path)
		if err := InitDB(conn); err != nil {
			conn.Close()
			_ = os.Remove(path)
			return nil, fmt.Errorf("initialize store %s: %w", path, err)
		}
		s.state = StateCreatedEmpty
	} else {
		logger.Warn("database already exists, skipping initialization; a database not created by this tool may cause problems",
			"path", path)
		s.state = StateReusedAsIs
	}
	return s, nil
}

// Path returns the file the store lives in.
func (s *Store) Path() string { return s.path }

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Begin opens the long-lived load transaction with a prepared insert statement.
// The transaction is detached from ctx cancellation so an interrupted load
// can still commit what it already wrote.
func (s *Store) Begin(ctx context.Context) (*Writer, error) {
	ctx = context.WithoutCancel(ctx)
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin load tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	s.setState(StatePopulating)
	return &Writer{store: s, tx: tx, stmt: stmt}, nil
}

// Count returns the number of rows in the table.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM stardict`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

// Rows returns every row ordered by id.
func (s *Store) Rows(ctx context.Context) ([]Row, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, word, source_html FROM stardict ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Word, &r.SourceHTML); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Fingerprint summarizes the (word, source_html) contents of a table
// independently of row order and ids.
type Fingerprint struct {
	Rows int64
	Sum  uint64
	Xor  uint64
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("%d-%016x%016x", f.Rows, f.Sum, f.Xor)
}

// Fingerprint hashes every row with xxh3 and folds the hashes with
// commutative operations, so two loads of the same input match whatever
// order the workers delivered records in.
func (s *Store) Fingerprint(ctx context.Context) (Fingerprint, error) {
	var fp Fingerprint
	rows, err := s.conn.QueryContext(ctx, `SELECT word, source_html FROM stardict`)
	if err != nil {
		return fp, fmt.Errorf("fingerprint: %w", err)
	}
	defer rows.Close()

	var buf []byte
	for rows.Next() {
		var word, html string
		if err := rows.Scan(&word, &html); err != nil {
			return fp, fmt.Errorf("fingerprint: %w", err)
		}
		buf = append(buf[:0], word...)
		buf = append(buf, 0)
		buf = append(buf, html...)
		h := xxh3.Hash(buf)
		fp.Rows++
		fp.Sum += h
		fp.Xor ^= h
	}
	if err := rows.Err(); err != nil {
		return fp, fmt.Errorf("fingerprint: %w", err)
	}
	return fp, nil
}
