/*
Package detector classifies a player's engagement state from recent and
total activity history.
*/
package detector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/activity"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/types"
)

const (
	// NoActivitySentinel stands in for daysInactive when no record exists.
	NoActivitySentinel = 999

	// newScoresForAnalysis is the fresh-score count that makes an analysis
	// recommendation worthwhile.
	newScoresForAnalysis = 6

	// inactiveDaysForReturning marks a player as returning after a week away.
	inactiveDaysForReturning = 7
)

// Detector computes the discrete user context for a player.
type Detector struct {
	source activity.Source
	log    *zap.Logger
	now    func() time.Time
}

// New creates a Detector. A nil logger disables logging.
func New(source activity.Source, log *zap.Logger) *Detector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Detector{source: source, log: log, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (d *Detector) WithClock(now func() time.Time) *Detector {
	d.now = now
	return d
}

// Detect computes the player's context. Data-source failures propagate to the
// caller and abort the turn; detection is intentionally fail-fast.
func (d *Detector) Detect(ctx context.Context, userID string, hasActivePlaylist bool) (types.ContextDetectionResult, error) {
	now := d.now().UTC()

	last, err := d.source.MostRecent(ctx, userID)
	if err != nil {
		return types.ContextDetectionResult{}, fmt.Errorf("most recent activity: %w", err)
	}

	daysInactive := NoActivitySentinel
	if last != nil {
		daysInactive = int(now.Sub(last.Timestamp).Hours() / 24)
		if daysInactive < 0 {
			daysInactive = 0
		}
	}

	newScores, err := d.source.CountSince(ctx, userID, now.Add(-24*time.Hour))
	if err != nil {
		return types.ContextDetectionResult{}, fmt.Errorf("count new scores: %w", err)
	}

	isNewUser := last == nil
	if last == nil {
		// MostRecent already proves absence, but ExistsAny is the contract's
		// source of truth for the new-user flag.
		exists, err := d.source.ExistsAny(ctx, userID)
		if err != nil {
			return types.ContextDetectionResult{}, fmt.Errorf("exists any: %w", err)
		}
		isNewUser = !exists
	}

	result := types.ContextDetectionResult{
		UserContext:    classify(isNewUser, hasActivePlaylist, newScores, daysInactive),
		DaysInactive:   daysInactive,
		NewScoresCount: newScores,
		IsNewUser:      isNewUser,
	}

	d.log.Info("context detected",
		zap.String("user_id", userID),
		zap.String("user_context", string(result.UserContext)),
		zap.Int("days_inactive", result.DaysInactive),
		zap.Int("new_scores_count", result.NewScoresCount),
		zap.Bool("is_new_user", result.IsNewUser),
		zap.Bool("has_active_playlist", hasActivePlaylist))

	return result, nil
}

// classify applies the fixed priority order; first match wins.
func classify(isNewUser, hasActivePlaylist bool, newScores, daysInactive int) types.UserContext {
	switch {
	case isNewUser:
		return types.ContextNewUser
	case !hasActivePlaylist:
		return types.ContextPlaylistRecommended
	case newScores >= newScoresForAnalysis && daysInactive < 1:
		return types.ContextAnalysisRecommended
	case daysInactive >= inactiveDaysForReturning:
		return types.ContextReturningUser
	default:
		return types.ContextActiveUser
	}
}
