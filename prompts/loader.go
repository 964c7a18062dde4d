package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PromptKey identifies a specific prompt.
type PromptKey string

const (
	KeyDailyReport    PromptKey = "DailyReport"
	KeyScoreAnalysis  PromptKey = "ScoreAnalysis"
	KeyPlaylist       PromptKey = "Playlist"
	KeyProgressReview PromptKey = "ProgressReview"
	KeyConversation   PromptKey = "Conversation"
)

// promptConfig defines the default content and override filename for a prompt.
type promptConfig struct {
	defaultContent string
	filename       string
}

var promptRegistry = map[PromptKey]promptConfig{
	KeyDailyReport:    {defaultContent: DailyReportPrompt, filename: "daily_report_prompt.txt"},
	KeyScoreAnalysis:  {defaultContent: ScoreAnalysisPrompt, filename: "score_analysis_prompt.txt"},
	KeyPlaylist:       {defaultContent: PlaylistPrompt, filename: "playlist_prompt.txt"},
	KeyProgressReview: {defaultContent: ProgressReviewPrompt, filename: "progress_review_prompt.txt"},
	KeyConversation:   {defaultContent: ConversationPrompt, filename: "conversation_prompt.txt"},
}

// GetPrompt returns a user-provided override from templatesDir when one
// exists, otherwise the built-in default.
func GetPrompt(key PromptKey, templatesDir string) (string, error) {
	config, ok := promptRegistry[key]
	if !ok {
		return "", fmt.Errorf("unrecognized prompt key: %s", key)
	}

	if strings.TrimSpace(templatesDir) == "" {
		return config.defaultContent, nil
	}

	customPath := filepath.Join(templatesDir, config.filename)
	data, err := os.ReadFile(customPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config.defaultContent, nil
		}
		return "", fmt.Errorf("read custom prompt %s: %w", customPath, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return config.defaultContent, nil
	}
	return string(data), nil
}
