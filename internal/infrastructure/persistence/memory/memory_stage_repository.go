// Package memory provides in-memory implementations of domain repositories.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/reglet-dev/qmcchain/internal/domain/entities"
	"github.com/reglet-dev/qmcchain/internal/domain/repositories"
)

// Ensure interface compliance
var _ repositories.StageRepository = (*StageRepository)(nil)

// StageRepository is an in-memory implementation of StageRepository.
// It backs the stage sink of a single process run.
type StageRepository struct {
	handles []entities.StageHandle
	byID    map[string]entities.StageHandle
	mu      sync.RWMutex
}

// NewStageRepository creates a new in-memory repository.
func NewStageRepository() *StageRepository {
	return &StageRepository{
		byID: make(map[string]entities.StageHandle),
	}
}

// Append records handles in order. Appending a handle whose ID is already
// stored is a no-op for that handle, so a shared stage is listed once.
func (r *StageRepository) Append(_ context.Context, handles ...entities.StageHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range handles {
		if h == nil {
			return fmt.Errorf("cannot append nil stage handle")
		}
		if _, ok := r.byID[h.ID()]; ok {
			continue
		}
		r.byID[h.ID()] = h
		r.handles = append(r.handles, h)
	}
	return nil
}

// List returns every handle in append order.
func (r *StageRepository) List(_ context.Context) ([]entities.StageHandle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entities.StageHandle, len(r.handles))
	copy(out, r.handles)
	return out, nil
}

// FindByID retrieves a handle by its identity.
func (r *StageRepository) FindByID(_ context.Context, id string) (entities.StageHandle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("stage not found: %s", id)
	}
	return h, nil
}

// FindByLabel retrieves every handle built under label, in append order.
func (r *StageRepository) FindByLabel(_ context.Context, label string) ([]entities.StageHandle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []entities.StageHandle
	for _, h := range r.handles {
		if h.Label() == label {
			matches = append(matches, h)
		}
	}
	return matches, nil
}

// Len returns the number of stored handles.
func (r *StageRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
