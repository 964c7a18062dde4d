package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCrashLog(t *testing.T) {
	dir := t.TempDir()
	SetCrashBasePath(dir)
	SetCrashCommand("chat")
	t.Cleanup(func() { SetCrashBasePath(""); SetCrashCommand("") })

	path, err := writeCrashLog("something broke")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "panic:     something broke")
	assert.Contains(t, string(data), "command:   chat")
	assert.Contains(t, string(data), "goroutine")
}

func TestCleanOldCrashLogs(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < maxCrashLogs+5; i++ {
		name := fmt.Sprintf("crash_%s.log", base.Add(time.Duration(i)*time.Minute).Format("20060102_150405"))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	// An unrelated file must survive.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0644))

	require.NoError(t, cleanOldCrashLogs(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	logs := 0
	kept := false
	for _, e := range entries {
		if e.Name() == "notes.txt" {
			kept = true
			continue
		}
		logs++
	}
	assert.True(t, kept)
	assert.Equal(t, maxCrashLogs-1, logs)
	// The newest dump must be among the survivors.
	newest := fmt.Sprintf("crash_%s.log", base.Add(time.Duration(maxCrashLogs+4)*time.Minute).Format("20060102_150405"))
	_, err = os.Stat(filepath.Join(dir, newest))
	assert.NoError(t, err)
}
