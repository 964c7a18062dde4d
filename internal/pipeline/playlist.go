package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/activity"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/llm"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/prompts"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/types"
)

func init() {
	RegisterFactory(types.TaskPlaylistBuilding, func(deps Deps) Pipeline {
		return &playlistPipeline{deps: deps}
	})
}

// playlistPipeline builds a training playlist from 30 days of history.
type playlistPipeline struct {
	deps Deps
}

func (p *playlistPipeline) Type() types.TaskType { return types.TaskPlaylistBuilding }

type playlistReply struct {
	Title            string                   `json:"title"`
	Description      string                   `json:"description"`
	Scenarios        []types.PlaylistScenario `json:"scenarios"`
	TargetWeaknesses []string                 `json:"targetWeaknesses"`
	Reasoning        string                   `json:"reasoning"`
}

func (p *playlistPipeline) Run(ctx context.Context, userID string, userCtx types.UserContext) (*types.TaskResult, error) {
	since := p.deps.clock().UTC().Add(-30 * 24 * time.Hour)
	records, err := p.deps.Source.Since(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("query monthly window: %w", err)
	}

	var playlist *types.TrainingPlaylist
	if len(records) == 0 {
		playlist = starterPlaylist()
	} else {
		playlist, err = p.generate(ctx, userCtx, records)
		if err != nil {
			return nil, err
		}
	}

	// TotalDuration is always self-computed so the sum invariant holds no
	// matter what the model returned.
	playlist.TotalDuration = 0
	for _, sc := range playlist.Scenarios {
		playlist.TotalDuration += sc.Duration
	}

	if p.deps.Playlists != nil {
		payload, err := json.Marshal(playlist)
		if err != nil {
			return nil, fmt.Errorf("marshal playlist: %w", err)
		}
		if err := p.deps.Playlists.SaveActive(ctx, userID, payload, playlist.Title); err != nil {
			// Persistence is best effort; the generated playlist is still
			// valid for the reply.
			p.deps.logger().Warn("save active playlist failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}

	return &types.TaskResult{
		Kind:     types.ResultKindPlaylist,
		Content:  playlistContent(playlist),
		Playlist: playlist,
	}, nil
}

func (p *playlistPipeline) generate(ctx context.Context, userCtx types.UserContext, records []activity.Record) (*types.TrainingPlaylist, error) {
	stats := activity.Summarize(records)
	weakest := stats.WeakestScenarios(3)

	promptText, err := prompts.GetPrompt(prompts.KeyPlaylist, p.deps.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	chain, err := llm.NewStructuredChain[playlistReply](ctx, "playlist_building", p.deps.ChatModel, promptText)
	if err != nil {
		return nil, types.NewModelServiceError("playlist_building", err)
	}
	reply, err := chain.Invoke(ctx, map[string]any{
		"Stats":       stats.Describe(),
		"Weaknesses":  strings.Join(weakest, ", "),
		"UserContext": string(userCtx),
	})
	if err != nil {
		return nil, types.NewModelServiceError("playlist_building", err)
	}
	if len(reply.Scenarios) == 0 {
		return nil, types.NewModelServiceError("playlist_building",
			fmt.Errorf("model returned a playlist with no scenarios"))
	}

	playlist := &types.TrainingPlaylist{
		Title:            reply.Title,
		Description:      reply.Description,
		Scenarios:        reply.Scenarios,
		TargetWeaknesses: reply.TargetWeaknesses,
		Reasoning:        reply.Reasoning,
	}
	if len(playlist.TargetWeaknesses) == 0 {
		playlist.TargetWeaknesses = weakest
	}
	return playlist, nil
}

// starterPlaylist is the deterministic fallback for players with no history;
// no model call.
func starterPlaylist() *types.TrainingPlaylist {
	return &types.TrainingPlaylist{
		Title:       "Fundamentals Starter",
		Description: "A balanced first routine covering the three core aim mechanics.",
		Scenarios: []types.PlaylistScenario{
			{Name: "1wall6targets TE", Duration: 10, Difficulty: "easy", FocusSkills: []string{"clicking"}},
			{Name: "Smoothbot Easy", Duration: 10, Difficulty: "easy", FocusSkills: []string{"tracking"}},
			{Name: "Tile Frenzy", Duration: 5, Difficulty: "easy", FocusSkills: []string{"target switching"}},
			{Name: "Centering 180", Duration: 5, Difficulty: "easy", FocusSkills: []string{"crosshair placement"}},
		},
		TargetWeaknesses: []string{"no history yet - covering fundamentals"},
		Reasoning:        "No recorded sessions to mine for weaknesses, so this routine samples every core mechanic.",
	}
}

func playlistContent(pl *types.TrainingPlaylist) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Playlist %q (%d min total): ", pl.Title, pl.TotalDuration)
	names := make([]string, len(pl.Scenarios))
	for i, sc := range pl.Scenarios {
		names[i] = fmt.Sprintf("%s (%dm)", sc.Name, sc.Duration)
	}
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString(".\n")
	if len(pl.TargetWeaknesses) > 0 {
		fmt.Fprintf(&sb, "Targets: %s.\n", strings.Join(pl.TargetWeaknesses, "; "))
	}
	sb.WriteString(pl.Reasoning)
	return sb.String()
}
