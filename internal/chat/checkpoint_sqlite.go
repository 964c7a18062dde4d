package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/types"
)

// timeFormat is fixed width so updated_at stays lexicographically ordered.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteCheckpointStore persists checkpoints in a SQLite table, one row per
// thread. Each Put replaces the row (last write wins).
type SQLiteCheckpointStore struct {
	db *sql.DB
}

// NewSQLiteCheckpointStore creates the checkpoints table on db if missing.
// The db handle is shared with the caller and not closed here.
func NewSQLiteCheckpointStore(db *sql.DB) (*SQLiteCheckpointStore, error) {
	schema := `
	CREATE TABLE IF NOT EXISTS checkpoints (
		thread_id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create checkpoints table: %w", err)
	}
	return &SQLiteCheckpointStore{db: db}, nil
}

func (s *SQLiteCheckpointStore) Get(ctx context.Context, threadID string) (*types.ConversationState, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM checkpoints WHERE thread_id = ?`, threadID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, types.NewDataSourceError("checkpoint", "get", err)
	}
	var state types.ConversationState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, types.NewDataSourceError("checkpoint", "decode", err)
	}
	return &state, nil
}

func (s *SQLiteCheckpointStore) Put(ctx context.Context, threadID string, state *types.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return types.NewDataSourceError("checkpoint", "encode", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO checkpoints (thread_id, state, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(thread_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		threadID, string(data), time.Now().UTC().Format(timeFormat))
	if err != nil {
		return types.NewDataSourceError("checkpoint", "put", err)
	}
	return nil
}
