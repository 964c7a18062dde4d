package activity

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

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/types"
)

// timeFormat is fixed width so lexicographic TEXT comparison in SQLite matches
// time order. RFC3339Nano would drop trailing zeros and break ordering within
// a second.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Source, Writer, PlaylistSource, and PlaylistWriter
// on a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at basePath/coach.db.
// Pass ":memory:" for an in-memory database.
func NewSQLiteStore(basePath string) (*SQLiteStore, error) {
	var dbPath string
	if basePath == ":memory:" {
		dbPath = ":memory:"
	} else {
		dbPath = filepath.Join(basePath, "coach.db")
		if err := os.MkdirAll(basePath, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scores (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		scenario_id TEXT NOT NULL,
		score REAL NOT NULL,
		accuracy REAL NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_scores_user_time ON scores(user_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS playlists (
		user_id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		payload TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// DB exposes the handle so other stores (checkpoints) can share the database.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Insert appends one performance record. A missing ID or timestamp is filled
// in here so ingestion callers can stay minimal.
func (s *SQLiteStore) Insert(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (id, user_id, scenario_id, score, accuracy, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.ScenarioID, rec.Score, rec.Accuracy, rec.Timestamp.UTC().Format(timeFormat))
	if err != nil {
		return types.NewDataSourceError("activity", "insert", err)
	}
	return nil
}

// MostRecent returns the latest record or nil when the user has none.
func (s *SQLiteStore) MostRecent(ctx context.Context, userID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, scenario_id, score, accuracy, created_at
		 FROM scores WHERE user_id = ? ORDER BY created_at DESC LIMIT 1`, userID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, types.NewDataSourceError("activity", "most_recent", err)
	}
	return rec, nil
}

// Since returns records at or after from, newest first.
func (s *SQLiteStore) Since(ctx context.Context, userID string, from time.Time) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, scenario_id, score, accuracy, created_at
		 FROM scores WHERE user_id = ? AND created_at >= ? ORDER BY created_at DESC`,
		userID, from.UTC().Format(timeFormat))
	if err != nil {
		return nil, types.NewDataSourceError("activity", "since", err)
	}
	defer func() { _ = rows.Close() }()
	return collectRecords(rows)
}

// CountSince counts records at or after from.
func (s *SQLiteStore) CountSince(ctx context.Context, userID string, from time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scores WHERE user_id = ? AND created_at >= ?`,
		userID, from.UTC().Format(timeFormat)).Scan(&n)
	if err != nil {
		return 0, types.NewDataSourceError("activity", "count_since", err)
	}
	return n, nil
}

// ExistsAny reports whether any record exists for the user.
func (s *SQLiteStore) ExistsAny(ctx context.Context, userID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM scores WHERE user_id = ? LIMIT 1`, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, types.NewDataSourceError("activity", "exists_any", err)
	}
	return true, nil
}

// Recent returns up to limit newest records.
func (s *SQLiteStore) Recent(ctx context.Context, userID string, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, scenario_id, score, accuracy, created_at
		 FROM scores WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, types.NewDataSourceError("activity", "recent", err)
	}
	defer func() { _ = rows.Close() }()
	return collectRecords(rows)
}

// HasActive reports whether the user has an active playlist saved.
func (s *SQLiteStore) HasActive(ctx context.Context, userID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM playlists WHERE user_id = ? AND active = 1 LIMIT 1`, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, types.NewDataSourceError("playlist", "has_active", err)
	}
	return true, nil
}

// SaveActive upserts the user's active playlist.
func (s *SQLiteStore) SaveActive(ctx context.Context, userID string, payload []byte, title string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO playlists (user_id, title, payload, active, updated_at) VALUES (?, ?, ?, 1, ?)
		 ON CONFLICT(user_id) DO UPDATE SET title = excluded.title, payload = excluded.payload,
		 active = 1, updated_at = excluded.updated_at`,
		userID, title, string(payload), time.Now().UTC().Format(timeFormat))
	if err != nil {
		return types.NewDataSourceError("playlist", "save_active", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var ts string
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.ScenarioID, &rec.Score, &rec.Accuracy, &ts); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
	}
	rec.Timestamp = parsed
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, types.NewDataSourceError("activity", "scan", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewDataSourceError("activity", "rows", err)
	}
	return out, nil
}
