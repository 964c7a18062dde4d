package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/activity"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/llm"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/prompts"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/types"
)

func init() {
	RegisterFactory(types.TaskProgressReview, func(deps Deps) Pipeline {
		return &progressReviewPipeline{deps: deps}
	})
}

// reviewHistoryLimit bounds how many past sessions feed the review.
const reviewHistoryLimit = 50

// progressReviewPipeline reviews progress for a player coming back from a break.
type progressReviewPipeline struct {
	deps Deps
}

func (p *progressReviewPipeline) Type() types.TaskType { return types.TaskProgressReview }

type reviewReply struct {
	ProgressSummary     string   `json:"progressSummary"`
	Achievements        []string `json:"achievements"`
	AreasForImprovement []string `json:"areasForImprovement"`
	NextGoals           []string `json:"nextGoals"`
}

func (p *progressReviewPipeline) Run(ctx context.Context, userID string, userCtx types.UserContext) (*types.TaskResult, error) {
	// The two reads are independent; issue them concurrently.
	var (
		wg      sync.WaitGroup
		last    *activity.Record
		lastErr error
		recent  []activity.Record
		recErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		last, lastErr = p.deps.Source.MostRecent(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		recent, recErr = p.deps.Source.Recent(ctx, userID, reviewHistoryLimit)
	}()
	wg.Wait()

	if lastErr != nil {
		return nil, fmt.Errorf("query last activity: %w", lastErr)
	}
	if recErr != nil {
		return nil, fmt.Errorf("query recent history: %w", recErr)
	}

	if len(recent) == 0 {
		return emptyProgressReview(), nil
	}

	daysInactive := 0
	if last != nil {
		daysInactive = int(p.deps.clock().UTC().Sub(last.Timestamp).Hours() / 24)
		if daysInactive < 0 {
			daysInactive = 0
		}
	}

	stats := activity.Summarize(recent)

	promptText, err := prompts.GetPrompt(prompts.KeyProgressReview, p.deps.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	chain, err := llm.NewStructuredChain[reviewReply](ctx, "progress_review", p.deps.ChatModel, promptText)
	if err != nil {
		return nil, types.NewModelServiceError("progress_review", err)
	}
	reply, err := chain.Invoke(ctx, map[string]any{
		"Stats":        stats.Describe(),
		"DaysInactive": daysInactive,
		"UserContext":  string(userCtx),
	})
	if err != nil {
		return nil, types.NewModelServiceError("progress_review", err)
	}

	review := &types.ProgressReview{
		DaysInactive:        daysInactive,
		ProgressSummary:     reply.ProgressSummary,
		Achievements:        reply.Achievements,
		AreasForImprovement: reply.AreasForImprovement,
		NextGoals:           reply.NextGoals,
	}

	return &types.TaskResult{
		Kind:    types.ResultKindReview,
		Content: reviewContent(review),
		Review:  review,
	}, nil
}

// emptyProgressReview is the deterministic no-data payload; no model call.
func emptyProgressReview() *types.TaskResult {
	review := &types.ProgressReview{
		DaysInactive:        0,
		ProgressSummary:     "No recorded sessions yet, so there is no progress to review.",
		Achievements:        []string{},
		AreasForImprovement: []string{},
		NextGoals:           []string{"Play your first scenario to start tracking progress"},
	}
	return &types.TaskResult{
		Kind:    types.ResultKindReview,
		Content: "Nothing to review yet - play your first scenario and I can start tracking your progress.",
		Review:  review,
	}
}

func reviewContent(r *types.ProgressReview) string {
	var sb strings.Builder
	if r.DaysInactive > 0 {
		fmt.Fprintf(&sb, "Welcome back after %d days. ", r.DaysInactive)
	}
	sb.WriteString(r.ProgressSummary)
	if len(r.Achievements) > 0 {
		fmt.Fprintf(&sb, "\nHighlights: %s.", strings.Join(r.Achievements, "; "))
	}
	if len(r.NextGoals) > 0 {
		fmt.Fprintf(&sb, "\nNext up: %s.", strings.Join(r.NextGoals, "; "))
	}
	return sb.String()
}
