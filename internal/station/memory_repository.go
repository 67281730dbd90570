package station

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory implementation of Repository for
// development and testing.
type MemoryRepository struct {
	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewMemoryRepository creates a new in-memory snapshot repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// SaveSnapshot stores a snapshot, replacing the previous one.
func (r *MemoryRepository) SaveSnapshot(_ context.Context, snapshot *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = snapshot
	return nil
}

// LatestSnapshot retrieves the most recently saved snapshot.
func (r *MemoryRepository) LatestSnapshot(_ context.Context) (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return r.snapshot, nil
}

// Ensure MemoryRepository implements Repository interface.
var _ Repository = (*MemoryRepository)(nil)
