package checkpoint

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netauto-ai/conduit/internal/thread"
	"github.com/netauto-ai/conduit/internal/types"
)

// storeFactories builds each Store implementation against a fresh backend.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "checkpoints.db"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
	}
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			state := thread.NewState(types.NewID(), "show version")
			require.NoError(t, state.Transition(thread.StageClassified))

			require.NoError(t, store.Put(t.Context(), state))
			assert.Equal(t, int64(1), state.Version)

			got, err := store.Get(t.Context(), state.ThreadID)
			require.NoError(t, err)
			assert.Equal(t, state.ThreadID, got.ThreadID)
			assert.Equal(t, thread.StageClassified, got.Stage)
			assert.Equal(t, int64(1), got.Version)
			assert.Equal(t, "show version", got.Query)
		})
	}
}

func TestStore_GetUnknown(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			_, err := store.Get(t.Context(), types.NewID())
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestStore_StaleWriteFails(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			state := thread.NewState(types.NewID(), "q")
			require.NoError(t, store.Put(t.Context(), state))

			// A second writer loads the same version and wins the race.
			winner, err := store.Get(t.Context(), state.ThreadID)
			require.NoError(t, err)
			require.NoError(t, store.Put(t.Context(), winner))

			// The first writer's copy is now stale and must fail.
			stale := *state
			err = store.Put(t.Context(), &stale)
			assert.True(t, errors.Is(err, ErrStaleWrite))

			// The winner's write is intact.
			got, err := store.Get(t.Context(), state.ThreadID)
			require.NoError(t, err)
			assert.Equal(t, int64(2), got.Version)
		})
	}
}

func TestStore_NewThreadRequiresVersionZero(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			state := thread.NewState(types.NewID(), "q")
			state.Version = 3
			err := store.Put(t.Context(), state)
			assert.True(t, errors.Is(err, ErrStaleWrite))
		})
	}
}

func TestStore_RejectsInvalidState(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			state := thread.NewState(types.NewID(), "q")
			state.Stage = thread.StageInterrupted // no pending action
			err := store.Put(t.Context(), state)
			assert.True(t, errors.Is(err, types.NewError(types.CHECKPOINT_WRITE_FAILED, "")))
		})
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			first := thread.NewState(types.NewID(), "first")
			require.NoError(t, store.Put(t.Context(), first))
			time.Sleep(5 * time.Millisecond)
			second := thread.NewState(types.NewID(), "second")
			require.NoError(t, store.Put(t.Context(), second))

			list, err := store.List(t.Context())
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, second.ThreadID, list[0].ThreadID, "newest first")

			require.NoError(t, store.Delete(t.Context(), first.ThreadID))
			list, err = store.List(t.Context())
			require.NoError(t, err)
			assert.Len(t, list, 1)

			// Deleting an unknown thread is a no-op.
			assert.NoError(t, store.Delete(t.Context(), types.NewID()))
		})
	}
}

func TestStore_PurgeExpired(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			old := thread.NewState(types.NewID(), "old")
			old.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
			old.UpdatedAt = old.CreatedAt
			require.NoError(t, store.Put(t.Context(), old))

			fresh := thread.NewState(types.NewID(), "fresh")
			require.NoError(t, store.Put(t.Context(), fresh))

			purged, err := store.PurgeExpired(t.Context(), time.Hour)
			require.NoError(t, err)
			assert.Equal(t, 1, purged)

			_, err = store.Get(t.Context(), old.ThreadID)
			assert.True(t, errors.Is(err, ErrNotFound))
			_, err = store.Get(t.Context(), fresh.ThreadID)
			assert.NoError(t, err)
		})
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoints.db")
	store, err := OpenSQLite(path)
	require.NoError(t, err)

	state := thread.NewState(types.NewID(), "delete interface Gi0/1 on R1")
	require.NoError(t, state.Transition(thread.StageClassified))
	require.NoError(t, state.Transition(thread.StagePlanned))
	state.Plan = &thread.Plan{
		Strategy: "deep_dive",
		Tasks:    []thread.Task{{Description: "remove config", Feasibility: thread.FeasibilityFeasible}},
	}
	require.NoError(t, state.Transition(thread.StageExecuting))
	require.NoError(t, state.Interrupt(&thread.PendingAction{
		ToolName:         "config_apply",
		Arguments:        map[string]any{"device": "R1"},
		AllowedDecisions: []thread.DecisionKind{thread.DecisionApprove, thread.DecisionReject},
		Channel:          "primary",
	}))
	require.NoError(t, store.Put(t.Context(), state))
	require.NoError(t, store.Close())

	// Simulated process restart.
	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(t.Context(), state.ThreadID)
	require.NoError(t, err)
	require.NoError(t, got.Validate())
	assert.Equal(t, thread.StageInterrupted, got.Stage)
	require.NotNil(t, got.Pending)
	assert.Equal(t, "config_apply", got.Pending.ToolName)
	assert.Equal(t, state.Version, got.Version)
}
