// Package history keeps a local SQLite log of every transcription, failed
// runs included.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/chaz8081/sargam-writer/internal/transcribe"
)

// timeLayout is fixed-width so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("history: entry not found")

// Entry is one recorded run.
type Entry struct {
	ID           string
	Source       string
	CreatedAt    time.Time
	Duration     time.Duration // length of the analyzed audio
	Notation     string
	Symbols      int
	ErrorKind    string // empty on success
	ErrorMessage string
}

// Failed reports whether the run ended in an error.
func (e Entry) Failed() bool { return e.ErrorKind != "" }

// Store manages the history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history: create dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("history: apply pragma %q: %w", pragma, err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores the outcome of one pipeline call. Exactly one of tr and
// runErr is expected to be non-nil; source labels failed runs.
func (s *Store) Record(ctx context.Context, tr *transcribe.Transcription, runErr error, source string) (Entry, error) {
	e := Entry{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
	if tr != nil {
		if tr.ID != "" {
			e.ID = tr.ID
		}
		if tr.Source != "" {
			e.Source = tr.Source
		}
		e.Duration = tr.Duration
		e.Notation = tr.Text()
		e.Symbols = len(tr.Symbols)
	}
	if runErr != nil {
		e.ErrorKind = transcribe.KindOf(runErr).String()
		e.ErrorMessage = runErr.Error()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transcriptions (
            id, source, created_at, duration_ms, notation, symbols, error_kind, error_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.Source,
		e.CreatedAt.Format(timeLayout),
		e.Duration.Milliseconds(),
		e.Notation,
		e.Symbols,
		nullableString(e.ErrorKind),
		nullableString(e.ErrorMessage),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("history: insert: %w", err)
	}
	return e, nil
}

const selectColumns = `SELECT id, source, created_at, duration_ms, notation, symbols, error_kind, error_message FROM transcriptions`

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate: %w", err)
	}
	return entries, nil
}

// Get returns the entry with the given id.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e          Entry
		created    string
		durationMS int64
		kind, msg  sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Source, &created, &durationMS, &e.Notation, &e.Symbols, &kind, &msg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("history: scan: %w", err)
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return Entry{}, fmt.Errorf("history: parse created_at %q: %w", created, err)
	}
	e.CreatedAt = t
	e.Duration = time.Duration(durationMS) * time.Millisecond
	e.ErrorKind = kind.String
	e.ErrorMessage = msg.String
	return e, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
