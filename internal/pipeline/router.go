package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/types"
)

// Router dispatches a requested task type to its pipeline. Pipeline errors
// never escape Execute; they are converted into failure metadata.
type Router struct {
	pipelines map[types.TaskType]Pipeline
	log       *zap.Logger
	now       func() time.Time
}

// NewRouter builds a router over the registered pipelines.
func NewRouter(deps Deps) *Router {
	return &Router{
		pipelines: CreateAll(deps),
		log:       deps.logger(),
		now: func() time.Time {
			return deps.clock()
		},
	}
}

// Execution pairs a task result with its execution metadata.
// Invariant: Metadata.Status == failure iff Result is nil.
type Execution struct {
	Result   *types.TaskResult
	Metadata types.TaskExecutionMetadata
}

// Execute runs the pipeline for taskType. Metadata always echoes the
// requested task type, success or failure.
func (r *Router) Execute(ctx context.Context, userID string, taskType types.TaskType, userCtx types.UserContext) Execution {
	log := r.log.With(zap.String("user_id", userID), zap.String("task_type", string(taskType)))
	log.Info("task execution started")

	result, err := r.run(ctx, userID, taskType, userCtx)

	meta := types.TaskExecutionMetadata{
		ExecutedAt: r.now().UTC(),
		TaskType:   taskType,
		Status:     types.StatusSuccess,
	}
	if err != nil {
		log.Error("task execution failed", zap.Error(err))
		meta.Status = types.StatusFailure
		meta.ErrorMessage = err.Error()
		return Execution{Result: nil, Metadata: meta}
	}

	log.Info("task execution finished")
	return Execution{Result: result, Metadata: meta}
}

// run isolates pipeline invocation so a panicking pipeline also degrades to
// failure metadata instead of escaping the router.
func (r *Router) run(ctx context.Context, userID string, taskType types.TaskType, userCtx types.UserContext) (result *types.TaskResult, err error) {
	p, ok := r.pipelines[taskType]
	if !ok {
		return nil, fmt.Errorf("unknown task type: %s", taskType)
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = fmt.Errorf("pipeline %s panicked: %v", taskType, rec)
		}
	}()

	result, err = p.Run(ctx, userID, userCtx)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("pipeline %s returned no result", taskType)
	}
	return result, nil
}
