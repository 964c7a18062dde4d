package prompts

import (
	"os"
	"path/filepath"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []PromptKey{
	KeyDailyReport, KeyScoreAnalysis, KeyPlaylist, KeyProgressReview, KeyConversation,
}

func TestGetPromptDefaults(t *testing.T) {
	for _, key := range allKeys {
		t.Run(string(key), func(t *testing.T) {
			got, err := GetPrompt(key, "")
			require.NoError(t, err)
			assert.NotEmpty(t, got)
		})
	}
}

func TestGetPromptUnknownKey(t *testing.T) {
	_, err := GetPrompt(PromptKey("Nope"), "")
	require.Error(t, err)
}

func TestGetPromptOverride(t *testing.T) {
	dir := t.TempDir()
	custom := "Custom playlist prompt with {{.Stats}}"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "playlist_prompt.txt"), []byte(custom), 0644))

	got, err := GetPrompt(KeyPlaylist, dir)
	require.NoError(t, err)
	assert.Equal(t, custom, got)

	// Keys without an override file fall back to the default.
	fallback, err := GetPrompt(KeyDailyReport, dir)
	require.NoError(t, err)
	assert.Equal(t, DailyReportPrompt, fallback)
}

func TestGetPromptEmptyOverrideFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conversation_prompt.txt"), []byte("  \n"), 0644))

	got, err := GetPrompt(KeyConversation, dir)
	require.NoError(t, err)
	assert.Equal(t, ConversationPrompt, got)
}

func TestDefaultPromptsAreValidTemplates(t *testing.T) {
	for _, key := range allKeys {
		t.Run(string(key), func(t *testing.T) {
			content, err := GetPrompt(key, "")
			require.NoError(t, err)
			_, err = template.New(string(key)).Parse(content)
			assert.NoError(t, err)
		})
	}
}
