// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/sprout/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for timer state and completion history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// Other sprout processes read the same file while the timer writes.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}
	// Writes come from the tick goroutine and the UI; one connection keeps
	// SQLite from reporting busy errors between them.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS completions (
			id INTEGER PRIMARY KEY,
			mode TEXT NOT NULL,
			seconds INTEGER NOT NULL,
			completed_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_completions_completed_at ON completions(completed_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value stored under key and whether it exists.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(timeLayout),
	)
	return err
}

// InsertCompletion appends a completed interval to the history.
func (s *Store) InsertCompletion(ctx context.Context, c model.Completion) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO completions (mode, seconds, completed_at) VALUES (?, ?, ?)`,
		string(c.Mode),
		c.Seconds,
		c.CompletedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListCompletions returns completions filtered by cfg, oldest first. Last keeps
// only the most recent N entries.
func (s *Store) ListCompletions(ctx context.Context, cfg model.StatsConfig) ([]model.Completion, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "completed_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, mode, seconds, completed_at
		FROM completions
		WHERE %s
		ORDER BY completed_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var completions []model.Completion
	for rows.Next() {
		var c model.Completion
		var mode, completedAt string
		if err := rows.Scan(&c.ID, &mode, &c.Seconds, &completedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, completedAt)
		if err != nil {
			return nil, err
		}
		c.Mode = model.Mode(mode)
		c.CompletedAt = parsed
		completions = append(completions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(completions) > cfg.Last {
		completions = completions[len(completions)-cfg.Last:]
	}
	return completions, nil
}

// CountCompletions returns the number of completions recorded for mode.
func (s *Store) CountCompletions(ctx context.Context, mode model.Mode) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM completions WHERE mode = ?`, string(mode)).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
