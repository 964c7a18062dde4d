/*
Package activity provides access to stored aim-training performance records
and the player's active playlist.
*/
package activity

import (
	"context"
	"time"
)

// Record is a single timestamped practice run.
type Record struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ScenarioID string    `json:"scenarioId"`
	Score      float64   `json:"score"`
	Accuracy   float64   `json:"accuracy"` // 0-100
	Timestamp  time.Time `json:"timestamp"`
}

// Source reads performance records. All queries are scoped to one user and
// bounded; implementations must return records newest first.
type Source interface {
	// MostRecent returns the single latest record, or nil if none exists.
	MostRecent(ctx context.Context, userID string) (*Record, error)

	// Since returns all records with Timestamp >= from.
	Since(ctx context.Context, userID string, from time.Time) ([]Record, error)

	// CountSince counts records with Timestamp >= from.
	CountSince(ctx context.Context, userID string, from time.Time) (int, error)

	// ExistsAny reports whether the user has any record at all.
	ExistsAny(ctx context.Context, userID string) (bool, error)

	// Recent returns up to limit of the newest records.
	Recent(ctx context.Context, userID string, limit int) ([]Record, error)
}

// Writer appends performance records (score ingestion path).
type Writer interface {
	Insert(ctx context.Context, rec Record) error
}

// PlaylistSource reports whether a user currently has an active playlist.
type PlaylistSource interface {
	HasActive(ctx context.Context, userID string) (bool, error)
}

// PlaylistWriter persists a generated playlist as the user's active one.
// Saving replaces any previous active playlist for the user.
type PlaylistWriter interface {
	SaveActive(ctx context.Context, userID string, payload []byte, title string) error
}
