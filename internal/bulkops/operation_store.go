package bulkops

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/careerbase/internal/types"
)

// DefaultRetention is how long terminal operations stay available for status
// polling before eviction.
const DefaultRetention = 30 * time.Minute

// OperationStore is the keyed registry of operation snapshots used for
// status polling. The engine writes a snapshot after every item; readers
// poll concurrently with execution.
//
// This abstraction exists so the registry can be swapped for a shared store
// (Redis) in multi-instance deployments. Cancellation flags remain
// in-process either way; cross-instance cancellation is out of scope.
type OperationStore interface {
	// Put stores or replaces a snapshot.
	Put(ctx context.Context, op types.Operation) error
	// Get returns a snapshot, or nil when the id is unknown or evicted.
	Get(ctx context.Context, id string) (*types.Operation, error)
	// Delete removes a snapshot.
	Delete(ctx context.Context, id string) error
}

// MemoryOperationStore is the default single-process registry: a mutex map
// with lazy retention-based eviction of terminal operations.
type MemoryOperationStore struct {
	mu        sync.RWMutex
	ops       map[string]types.Operation
	retention time.Duration
	now       func() time.Time
}

// NewMemoryOperationStore creates a registry retaining terminal operations
// for the given window (DefaultRetention when zero).
func NewMemoryOperationStore(retention time.Duration) *MemoryOperationStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &MemoryOperationStore{
		ops:       make(map[string]types.Operation),
		retention: retention,
		now:       time.Now,
	}
}

// Put stores a snapshot and sweeps expired entries.
func (m *MemoryOperationStore) Put(_ context.Context, op types.Operation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	m.ops[op.ID] = op
	return nil
}

// Get returns a snapshot copy, or nil when unknown or evicted.
func (m *MemoryOperationStore) Get(_ context.Context, id string) (*types.Operation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	op, ok := m.ops[id]
	if !ok {
		return nil, nil
	}
	snapshot := op.Snapshot()
	return &snapshot, nil
}

// Delete removes a snapshot.
func (m *MemoryOperationStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ops, id)
	return nil
}

func (m *MemoryOperationStore) sweepLocked() {
	cutoff := m.now().Add(-m.retention)
	for id, op := range m.ops {
		if op.Status.Terminal() && op.EndTime != nil && op.EndTime.Before(cutoff) {
			delete(m.ops, id)
		}
	}
}
