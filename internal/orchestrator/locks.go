package orchestrator

import (
	"sync"

	"github.com/netauto-ai/conduit/internal/types"
)

// threadLocks tracks which threads have an operation in flight. Acquisition
// never blocks: a second caller on a busy thread fails fast so interactive
// clients get an immediate answer.
type threadLocks struct {
	mu   sync.Mutex
	busy map[types.ID]struct{}
}

func newThreadLocks() *threadLocks {
	return &threadLocks{busy: make(map[types.ID]struct{})}
}

// acquire marks the thread busy. Returns false if it already is.
func (l *threadLocks) acquire(id types.ID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.busy[id]; ok {
		return false
	}
	l.busy[id] = struct{}{}
	return true
}

func (l *threadLocks) release(id types.ID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.busy, id)
}
