package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/activity"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/chat"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/config"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/detector"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/intent"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/llm"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/logger"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/pipeline"
)

// app bundles the wired dependency graph for one command invocation.
type app struct {
	cfg          *config.Config
	log          *zap.Logger
	store        *activity.SQLiteStore
	router       *pipeline.Router
	orchestrator *chat.Orchestrator
}

// newApp loads configuration and wires every collaborator explicitly.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Verbose = true
	}
	logger.SetCrashBasePath(cfg.Data.Dir)

	log, err := logger.New(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	store, err := activity.NewSQLiteStore(cfg.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("open activity store: %w", err)
	}

	chatModel, err := llm.NewChatModel(ctx, llm.Config{
		Provider: llm.Provider(cfg.LLM.Provider),
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	router := pipeline.NewRouter(pipeline.Deps{
		Source:       store,
		Playlists:    store,
		ChatModel:    chatModel,
		Log:          log,
		TemplatesDir: cfg.Data.TemplatesDir,
	})

	checkpoints, err := buildCheckpointStore(cfg, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	orchestrator, err := chat.New(ctx, chat.Config{
		Detector:     detector.New(store, log),
		Classifier:   intent.New(),
		Router:       router,
		Playlists:    store,
		Checkpoints:  checkpoints,
		ChatModel:    chatModel,
		Log:          log,
		TemplatesDir: cfg.Data.TemplatesDir,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build orchestrator: %w", err)
	}

	return &app{
		cfg:          cfg,
		log:          log,
		store:        store,
		router:       router,
		orchestrator: orchestrator,
	}, nil
}

func buildCheckpointStore(cfg *config.Config, store *activity.SQLiteStore) (chat.CheckpointStore, error) {
	switch cfg.Checkpoint.Backend {
	case "memory":
		return chat.NewMemoryCheckpointStore(), nil
	case "file":
		dir := filepath.Join(cfg.Checkpoint.Dir, "checkpoints")
		cs, err := chat.NewFileCheckpointStore(afero.NewOsFs(), dir)
		if err != nil {
			return nil, fmt.Errorf("open file checkpoint store: %w", err)
		}
		return cs, nil
	case "sqlite":
		cs, err := chat.NewSQLiteCheckpointStore(store.DB())
		if err != nil {
			return nil, fmt.Errorf("open sqlite checkpoint store: %w", err)
		}
		return cs, nil
	default:
		return nil, fmt.Errorf("unknown checkpoint backend: %s", cfg.Checkpoint.Backend)
	}
}

func (a *app) close() {
	_ = a.log.Sync()
	_ = a.store.Close()
}

// requireUser reads the --user flag, which every data-touching command needs.
func requireUser(cmd *cobra.Command) (string, error) {
	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		return "", fmt.Errorf("--user is required")
	}
	return user, nil
}
