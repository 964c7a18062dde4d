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
	RegisterFactory(types.TaskScoreAnalysis, func(deps Deps) Pipeline {
		return &scoreAnalysisPipeline{deps: deps}
	})
}

// scoreAnalysisPipeline analyzes the last 7 days of scores.
type scoreAnalysisPipeline struct {
	deps Deps
}

func (p *scoreAnalysisPipeline) Type() types.TaskType { return types.TaskScoreAnalysis }

type analysisReply struct {
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

func (p *scoreAnalysisPipeline) Run(ctx context.Context, userID string, userCtx types.UserContext) (*types.TaskResult, error) {
	since := p.deps.clock().UTC().Add(-7 * 24 * time.Hour)
	records, err := p.deps.Source.Since(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("query weekly window: %w", err)
	}

	if len(records) == 0 {
		return emptyScoreAnalysis(), nil
	}

	stats := activity.Summarize(records)

	promptText, err := prompts.GetPrompt(prompts.KeyScoreAnalysis, p.deps.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	chain, err := llm.NewStructuredChain[analysisReply](ctx, "score_analysis", p.deps.ChatModel, promptText)
	if err != nil {
		return nil, types.NewModelServiceError("score_analysis", err)
	}
	reply, err := chain.Invoke(ctx, map[string]any{
		"Stats":       stats.Describe(),
		"Trend":       string(stats.Trend),
		"UserContext": string(userCtx),
	})
	if err != nil {
		return nil, types.NewModelServiceError("score_analysis", err)
	}

	analysis := &types.ScoreAnalysis{
		TotalSessions:   stats.Sessions,
		AverageScore:    stats.AverageScore,
		Trend:           stats.Trend,
		Strengths:       reply.Strengths,
		Weaknesses:      reply.Weaknesses,
		Recommendations: reply.Recommendations,
	}

	return &types.TaskResult{
		Kind:     types.ResultKindAnalysis,
		Content:  analysisContent(analysis),
		Analysis: analysis,
	}, nil
}

// emptyScoreAnalysis is the deterministic no-data payload; no model call.
func emptyScoreAnalysis() *types.TaskResult {
	analysis := &types.ScoreAnalysis{
		TotalSessions:   0,
		AverageScore:    0,
		Trend:           types.TrendStable,
		Strengths:       []string{},
		Weaknesses:      []string{},
		Recommendations: []string{"Play a few scenarios this week so there is something to analyze"},
	}
	return &types.TaskResult{
		Kind:     types.ResultKindAnalysis,
		Content:  "No scores in the last 7 days to analyze. Play a few scenarios first and ask me again.",
		Analysis: analysis,
	}
}

func analysisContent(a *types.ScoreAnalysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Score analysis: %d sessions this week, average score %.1f, trend %s.\n",
		a.TotalSessions, a.AverageScore, a.Trend)
	if len(a.Strengths) > 0 {
		fmt.Fprintf(&sb, "Strengths: %s.\n", strings.Join(a.Strengths, "; "))
	}
	if len(a.Weaknesses) > 0 {
		fmt.Fprintf(&sb, "Weaknesses: %s.\n", strings.Join(a.Weaknesses, "; "))
	}
	if len(a.Recommendations) > 0 {
		fmt.Fprintf(&sb, "Recommendations: %s.", strings.Join(a.Recommendations, "; "))
	}
	return sb.String()
}
