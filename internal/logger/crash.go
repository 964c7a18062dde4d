package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

const (
	// crashLogDir is the directory for crash dumps, relative to the data dir.
	crashLogDir = "crash_logs"

	// maxCrashLogs bounds how many dumps are kept.
	maxCrashLogs = 10
)

// crashContext carries the process facts worth having in a crash dump.
type crashContext struct {
	mu       sync.RWMutex
	command  string
	basePath string
}

var globalCrash = &crashContext{}

// SetCrashBasePath sets where crash dumps land, typically the data directory.
func SetCrashBasePath(path string) {
	globalCrash.mu.Lock()
	defer globalCrash.mu.Unlock()
	globalCrash.basePath = path
}

// SetCrashCommand records the command being executed for crash dumps.
func SetCrashCommand(cmd string) {
	globalCrash.mu.Lock()
	defer globalCrash.mu.Unlock()
	globalCrash.command = cmd
}

// HandlePanic recovers a panic, writes a crash dump, and exits nonzero.
// Usage: defer logger.HandlePanic()
func HandlePanic() {
	r := recover()
	if r == nil {
		return
	}

	path, err := writeCrashLog(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write crash log: %v\npanic: %v\n%s\n", err, r, debug.Stack())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "aimcoach hit an unexpected error; a crash log was saved to:\n  %s\n", path)
	os.Exit(1)
}

func writeCrashLog(panicValue any) (string, error) {
	globalCrash.mu.RLock()
	basePath := globalCrash.basePath
	command := globalCrash.command
	globalCrash.mu.RUnlock()
	if basePath == "" {
		basePath = ".aimcoach"
	}

	dir := filepath.Join(basePath, crashLogDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create crash log dir: %w", err)
	}
	if err := cleanOldCrashLogs(dir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to clean old crash logs: %v\n", err)
	}

	now := time.Now()
	path := filepath.Join(dir, fmt.Sprintf("crash_%s.log", now.Format("20060102_150405")))

	var sb strings.Builder
	fmt.Fprintf(&sb, "timestamp: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&sb, "command:   %s\n", command)
	fmt.Fprintf(&sb, "go:        %s\n", runtime.Version())
	fmt.Fprintf(&sb, "os/arch:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&sb, "panic:     %v\n\n", panicValue)
	sb.Write(debug.Stack())

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return "", fmt.Errorf("write crash log: %w", err)
	}
	return path, nil
}

// cleanOldCrashLogs removes the oldest dumps past maxCrashLogs. ReadDir
// returns names sorted, and names embed the timestamp, so oldest come first.
func cleanOldCrashLogs(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var logs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "crash_") && strings.HasSuffix(e.Name(), ".log") {
			logs = append(logs, e.Name())
		}
	}
	if len(logs) < maxCrashLogs {
		return nil
	}

	for _, name := range logs[:len(logs)-maxCrashLogs+1] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("remove old crash log %s: %w", name, err)
		}
	}
	return nil
}
