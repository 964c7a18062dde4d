package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, ".aimcoach", cfg.Data.Dir)
	assert.Equal(t, "sqlite", cfg.Checkpoint.Backend)
	assert.Equal(t, cfg.Data.Dir, cfg.Checkpoint.Dir)
	assert.False(t, cfg.Verbose)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
verbose: true
llm:
  provider: ollama
  model: llama3.1
  base_url: http://localhost:11434
data:
  dir: /tmp/coach-data
  templates_dir: /tmp/coach-prompts
checkpoint:
  backend: file
  dir: /tmp/coach-checkpoints
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3.1", cfg.LLM.Model)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.BaseURL)
	assert.Equal(t, "/tmp/coach-data", cfg.Data.Dir)
	assert.Equal(t, "file", cfg.Checkpoint.Backend)
	assert.Equal(t, "/tmp/coach-checkpoints", cfg.Checkpoint.Dir)
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AIMCOACH_LLM_PROVIDER", "gemini")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
}

func TestLoadEnvReachesDefaultlessKeys(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AIMCOACH_LLM_API_KEY", "sk-test-123")
	t.Setenv("AIMCOACH_LLM_MODEL", "gpt-4o")
	t.Setenv("AIMCOACH_LLM_BASE_URL", "http://localhost:11434")
	t.Setenv("AIMCOACH_DATA_TEMPLATES_DIR", "/tmp/coach-prompts")
	t.Setenv("AIMCOACH_CHECKPOINT_DIR", "/tmp/coach-checkpoints")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-test-123", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.BaseURL)
	assert.Equal(t, "/tmp/coach-prompts", cfg.Data.TemplatesDir)
	assert.Equal(t, "/tmp/coach-checkpoints", cfg.Checkpoint.Dir)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "unknown provider",
			content: `
llm:
  provider: cohere
`,
		},
		{
			name: "unknown checkpoint backend",
			content: `
checkpoint:
  backend: redis
`,
		},
		{
			name: "malformed base url",
			content: `
llm:
  base_url: "not a url"
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validate config")
		})
	}
}

func TestLoadMissingExplicitFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
