// Package checkpoint persists thread workflow state. Writes are atomic per
// thread and guarded by an optimistic version check: a stale writer fails
// with CHECKPOINT_STALE_WRITE instead of silently overwriting newer state.
package checkpoint

import (
	"context"
	"time"

	"github.com/netauto-ai/conduit/internal/thread"
	"github.com/netauto-ai/conduit/internal/types"
)

// ErrNotFound is returned by Get for unknown threads.
var ErrNotFound = types.NewError(types.CHECKPOINT_NOT_FOUND, "thread state not found")

// ErrStaleWrite is returned by Put when the caller's version is behind the
// stored version.
var ErrStaleWrite = types.NewError(types.CHECKPOINT_STALE_WRITE, "checkpoint version conflict")

// Store is the durable, thread-keyed persistence contract. On successful
// Put the passed state's Version is advanced to the stored version.
type Store interface {
	// Get returns the state for threadID, or ErrNotFound.
	Get(ctx context.Context, threadID types.ID) (*thread.State, error)

	// Put persists state atomically. state.Version must equal the stored
	// version (0 for a new thread) or ErrStaleWrite is returned.
	Put(ctx context.Context, state *thread.State) error

	// Delete removes a thread's state. Deleting an unknown thread is a
	// no-op.
	Delete(ctx context.Context, threadID types.ID) error

	// List returns summaries of all persisted threads, newest first.
	List(ctx context.Context) ([]Summary, error)

	// PurgeExpired deletes threads not updated within ttl and returns the
	// number removed.
	PurgeExpired(ctx context.Context, ttl time.Duration) (int, error)

	// Close releases underlying resources.
	Close() error
}

// Summary is a lightweight listing entry.
type Summary struct {
	ThreadID  types.ID     `json:"thread_id"`
	Stage     thread.Stage `json:"stage"`
	Query     string       `json:"query"`
	UpdatedAt time.Time    `json:"updated_at"`
}
