/*
Package chat implements the conversation orchestrator: a two-step graph that
refreshes the player's context, classifies the turn's intent, and either
answers directly or delegates to a task pipeline.
*/
package chat

import (
	"context"
	"sync"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/types"
)

// CheckpointStore persists conversation state keyed by thread id.
//
// Semantics are plain get/put with last-write-wins: no transactions, no
// optimistic concurrency. Concurrent turns on one thread can silently drop
// writes; callers must serialize per-thread access if that matters to them.
type CheckpointStore interface {
	// Get returns the state for threadID, or nil when no checkpoint exists.
	Get(ctx context.Context, threadID string) (*types.ConversationState, error)

	// Put stores state under threadID, replacing any previous checkpoint.
	Put(ctx context.Context, threadID string, state *types.ConversationState) error
}

// MemoryCheckpointStore keeps checkpoints in process memory. Useful for tests
// and single-process runs; state does not survive a restart.
type MemoryCheckpointStore struct {
	mu     sync.RWMutex
	states map[string]*types.ConversationState
}

// NewMemoryCheckpointStore creates an empty in-memory store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{states: make(map[string]*types.ConversationState)}
}

func (s *MemoryCheckpointStore) Get(_ context.Context, threadID string) (*types.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[threadID]
	if !ok {
		return nil, nil
	}
	return state.Clone(), nil
}

func (s *MemoryCheckpointStore) Put(_ context.Context, threadID string, state *types.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[threadID] = state.Clone()
	return nil
}
