package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sailwallet/txengine/internal/account"
	"github.com/sailwallet/txengine/internal/engine"
)

// flowEntry holds one live transaction flow and the inputs it was
// created with.
type flowEntry struct {
	flow      *engine.Flow
	source    account.Account
	target    account.Account
	action    engine.Action
	createdAt time.Time
}

// flowRegistry tracks live flows by id. Completed and abandoned flows
// are dropped by Prune.
type flowRegistry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*flowEntry
}

func newFlowRegistry() *flowRegistry {
	return &flowRegistry{entries: make(map[uuid.UUID]*flowEntry)}
}

func (r *flowRegistry) put(id uuid.UUID, entry *flowEntry) {
	r.mu.Lock()
	r.entries[id] = entry
	r.mu.Unlock()
}

func (r *flowRegistry) get(id uuid.UUID) (*flowEntry, error) {
	r.mu.RLock()
	entry, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("flow %s not found", id)
	}
	return entry, nil
}

func (r *flowRegistry) delete(id uuid.UUID) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

// prune drops flows older than maxAge that are not mid-execution.
func (r *flowRegistry) prune(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	r.mu.Lock()
	defer r.mu.Unlock()

	var dropped int
	for id, entry := range r.entries {
		if entry.createdAt.Before(cutoff) && entry.flow.State() != engine.StateExecuting {
			delete(r.entries, id)
			dropped++
		}
	}
	return dropped
}
