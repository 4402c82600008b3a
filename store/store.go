// Package store persists meeting analyses in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/maastricht-university/meeting-clarity/meeting"
)

// openDB is swapped in tests.
var openDB = sql.Open

// ErrNotFound is returned by Get for an unknown meeting id.
var ErrNotFound = errors.New("meeting not found")

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS meetings (
			id                 TEXT    PRIMARY KEY,
			owner              TEXT    NOT NULL,
			label              TEXT    NOT NULL DEFAULT '',
			created_at         INTEGER NOT NULL,
			duration_sec       REAL    NOT NULL DEFAULT 0,
			total_words        INTEGER NOT NULL DEFAULT 0,
			clarity_index      INTEGER NOT NULL,
			total_jargon_count INTEGER NOT NULL DEFAULT 0,
			analysis           TEXT    NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_meetings_owner ON meetings(owner, created_at);
	`)
	return err
}

// Save inserts a, replacing any earlier row with the same id.
func (s *Store) Save(ctx context.Context, a *meeting.Analysis) error {
	if a.ID == "" {
		return errors.New("store: meeting id is empty")
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("store: encode analysis: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO meetings
			(id, owner, label, created_at, duration_sec, total_words, clarity_index, total_jargon_count, analysis)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Owner, a.Label, a.CreatedAt.UnixNano(), a.DurationSec, a.TotalWords,
		a.ClarityIndex, a.TotalJargonCount, string(payload),
	)
	if err != nil {
		return fmt.Errorf("store: save %s: %w", a.ID, err)
	}
	return nil
}

// Get loads the full analysis for id.
func (s *Store) Get(ctx context.Context, id string) (*meeting.Analysis, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT analysis FROM meetings WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", id, err)
	}
	var a meeting.Analysis
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", id, err)
	}
	return &a, nil
}

// History lists owner's meetings, oldest first.
func (s *Store) History(ctx context.Context, owner string) ([]meeting.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, label, clarity_index, total_jargon_count, duration_sec
		FROM meetings
		WHERE owner = ?
		ORDER BY created_at ASC, id ASC`, owner)
	if err != nil {
		return nil, fmt.Errorf("store: history: %w", err)
	}
	defer rows.Close()

	out := []meeting.Summary{}
	for rows.Next() {
		var (
			m  meeting.Summary
			ns int64
		)
		if err := rows.Scan(&m.ID, &ns, &m.Label, &m.ClarityIndex, &m.TotalJargonCount, &m.DurationSec); err != nil {
			return nil, fmt.Errorf("store: history scan: %w", err)
		}
		m.CreatedAt = time.Unix(0, ns).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

// Count returns the number of stored meetings.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meetings`).Scan(&n)
	return n, err
}
