/*
Package pipeline implements the four coaching task pipelines and the router
that dispatches to them.

Every pipeline has the same two-phase shape: query a bounded time window of
activity, short-circuit to a deterministic fallback when the window is empty,
otherwise summarize the data and run a structured model call.
*/
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"go.uber.org/zap"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/activity"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/types"
)

// Pipeline is one task-specific data+generation procedure.
type Pipeline interface {
	Type() types.TaskType
	Run(ctx context.Context, userID string, userCtx types.UserContext) (*types.TaskResult, error)
}

// Deps carries the collaborators a pipeline needs. Everything is constructor
// injected; pipelines hold no hidden global state.
type Deps struct {
	Source       activity.Source
	Playlists    activity.PlaylistWriter // optional; nil disables playlist persistence
	ChatModel    model.BaseChatModel
	Log          *zap.Logger
	TemplatesDir string           // optional prompt overrides
	Now          func() time.Time // nil means time.Now
}

func (d Deps) clock() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) logger() *zap.Logger {
	if d.Log != nil {
		return d.Log
	}
	return zap.NewNop()
}

// Factory creates a pipeline from shared dependencies.
type Factory func(deps Deps) Pipeline

var (
	factories   = make(map[types.TaskType]Factory)
	factoriesMu sync.RWMutex
)

// RegisterFactory registers the factory for one task type. Called from init
// in each pipeline file.
func RegisterFactory(t types.TaskType, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[t] = f
}

// CreateAll instantiates every registered pipeline.
func CreateAll(deps Deps) map[types.TaskType]Pipeline {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	out := make(map[types.TaskType]Pipeline, len(factories))
	for t, f := range factories {
		out[t] = f(deps)
	}
	return out
}
