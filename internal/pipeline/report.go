package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/activity"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/llm"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/prompts"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/types"
)

func init() {
	RegisterFactory(types.TaskDailyReport, func(deps Deps) Pipeline {
		return &dailyReportPipeline{deps: deps}
	})
}

// dailyReportPipeline summarizes the last 24 hours of practice.
type dailyReportPipeline struct {
	deps Deps
}

func (p *dailyReportPipeline) Type() types.TaskType { return types.TaskDailyReport }

// reportReply is the model-generated half of the report.
type reportReply struct {
	Achievements        []string `json:"achievements"`
	PerformanceRating   string   `json:"performanceRating"`
	TomorrowGoals       []string `json:"tomorrowGoals"`
	MotivationalMessage string   `json:"motivationalMessage"`
}

func (p *dailyReportPipeline) Run(ctx context.Context, userID string, userCtx types.UserContext) (*types.TaskResult, error) {
	since := p.deps.clock().UTC().Add(-24 * time.Hour)
	records, err := p.deps.Source.Since(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("query daily window: %w", err)
	}

	if len(records) == 0 {
		return emptyDailyReport(), nil
	}

	stats := activity.Summarize(records)

	promptText, err := prompts.GetPrompt(prompts.KeyDailyReport, p.deps.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	chain, err := llm.NewStructuredChain[reportReply](ctx, "daily_report", p.deps.ChatModel, promptText)
	if err != nil {
		return nil, types.NewModelServiceError("daily_report", err)
	}
	reply, err := chain.Invoke(ctx, map[string]any{
		"Stats":       stats.Describe(),
		"UserContext": string(userCtx),
	})
	if err != nil {
		return nil, types.NewModelServiceError("daily_report", err)
	}

	report := &types.DailyReport{
		SessionsToday:       stats.Sessions,
		TotalPracticeTime:   fmt.Sprintf("%d min", stats.EstimatedMinutes),
		Achievements:        reply.Achievements,
		PerformanceRating:   reply.PerformanceRating,
		TomorrowGoals:       reply.TomorrowGoals,
		MotivationalMessage: reply.MotivationalMessage,
	}

	return &types.TaskResult{
		Kind:    types.ResultKindReport,
		Content: reportContent(report),
		Report:  report,
	}, nil
}

// emptyDailyReport is the deterministic no-data payload; no model call.
func emptyDailyReport() *types.TaskResult {
	report := &types.DailyReport{
		SessionsToday:       0,
		TotalPracticeTime:   "0 min",
		Achievements:        []string{},
		PerformanceRating:   "no data",
		TomorrowGoals:       []string{"Play at least one warmup scenario"},
		MotivationalMessage: "No sessions recorded today. Even a short warmup keeps your aim sharp.",
	}
	return &types.TaskResult{
		Kind:    types.ResultKindReport,
		Content: "No practice sessions today. Even a short warmup keeps your aim sharp - try one scenario tomorrow.",
		Report:  report,
	}
}

func reportContent(r *types.DailyReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Daily report: %d sessions, %s of practice. Rating: %s.\n",
		r.SessionsToday, r.TotalPracticeTime, r.PerformanceRating)
	if len(r.Achievements) > 0 {
		fmt.Fprintf(&sb, "Achievements: %s.\n", strings.Join(r.Achievements, "; "))
	}
	if len(r.TomorrowGoals) > 0 {
		fmt.Fprintf(&sb, "Tomorrow: %s.\n", strings.Join(r.TomorrowGoals, "; "))
	}
	sb.WriteString(r.MotivationalMessage)
	return sb.String()
}
