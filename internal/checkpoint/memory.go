package checkpoint

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/netauto-ai/conduit/internal/thread"
	"github.com/netauto-ai/conduit/internal/types"
)

// MemoryStore implements Store in process memory. It honors the same
// version-check semantics as SQLiteStore and is intended for tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[types.ID]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[types.ID]string)}
}

// Get returns the state for threadID, or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, threadID types.ID) (*thread.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.entries[threadID]
	if !ok {
		return nil, ErrNotFound
	}
	var state thread.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, types.WrapError(types.CHECKPOINT_READ_FAILED, "decode thread state", err)
	}
	return &state, nil
}

// Put persists state with the optimistic version check.
func (s *MemoryStore) Put(ctx context.Context, state *thread.State) error {
	if err := state.Validate(); err != nil {
		return types.WrapError(types.CHECKPOINT_WRITE_FAILED, "invalid state", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var stored thread.State
	if raw, ok := s.entries[state.ThreadID]; ok {
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			return types.WrapError(types.CHECKPOINT_READ_FAILED, "decode stored state", err)
		}
		if stored.Version != state.Version {
			return ErrStaleWrite
		}
	} else if state.Version != 0 {
		return ErrStaleWrite
	}

	next := *state
	next.Version = state.Version + 1
	raw, err := json.Marshal(&next)
	if err != nil {
		return types.WrapError(types.CHECKPOINT_WRITE_FAILED, "encode thread state", err)
	}
	s.entries[state.ThreadID] = string(raw)
	state.Version = next.Version
	return nil
}

// Delete removes a thread's state.
func (s *MemoryStore) Delete(ctx context.Context, threadID types.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, threadID)
	return nil
}

// List returns thread summaries, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Summary, 0, len(s.entries))
	for _, raw := range s.entries {
		var state thread.State
		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			return nil, types.WrapError(types.CHECKPOINT_READ_FAILED, "decode thread state", err)
		}
		out = append(out, Summary{
			ThreadID:  state.ThreadID,
			Stage:     state.Stage,
			Query:     state.Query,
			UpdatedAt: state.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// PurgeExpired deletes threads not updated within ttl.
func (s *MemoryStore) PurgeExpired(ctx context.Context, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-ttl)
	purged := 0
	for id, raw := range s.entries {
		var state thread.State
		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			continue
		}
		if state.UpdatedAt.Before(cutoff) {
			delete(s.entries, id)
			purged++
		}
	}
	return purged, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
