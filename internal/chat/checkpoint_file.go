package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/types"
)

// FileCheckpointStore persists one JSON file per thread under a directory.
// Writes go through a temp file and rename, so a crashed write never leaves a
// half-written checkpoint behind. Same last-write-wins semantics as the rest.
type FileCheckpointStore struct {
	fs  afero.Fs
	dir string
}

// NewFileCheckpointStore creates the directory if needed. Pass afero.NewOsFs()
// for real storage or an afero.MemMapFs in tests.
func NewFileCheckpointStore(fs afero.Fs, dir string) (*FileCheckpointStore, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create checkpoint directory: %w", err)
	}
	return &FileCheckpointStore{fs: fs, dir: dir}, nil
}

func (s *FileCheckpointStore) path(threadID string) string {
	// Thread ids are usually user ids; normalize anything path-hostile.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, threadID)
	return filepath.Join(s.dir, safe+".json")
}

func (s *FileCheckpointStore) Get(_ context.Context, threadID string) (*types.ConversationState, error) {
	data, err := afero.ReadFile(s.fs, s.path(threadID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, types.NewDataSourceError("checkpoint", "get", err)
	}
	var state types.ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, types.NewDataSourceError("checkpoint", "decode", err)
	}
	return &state, nil
}

func (s *FileCheckpointStore) Put(_ context.Context, threadID string, state *types.ConversationState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return types.NewDataSourceError("checkpoint", "encode", err)
	}
	target := s.path(threadID)
	tmp := target + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0644); err != nil {
		return types.NewDataSourceError("checkpoint", "write", err)
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		return types.NewDataSourceError("checkpoint", "rename", err)
	}
	return nil
}
