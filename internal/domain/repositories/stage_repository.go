// Package repositories defines interfaces for domain persistence.
package repositories

import (
	"context"

	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

// StageRepository is the running list of every stage built across assembly calls.
// Handles are kept in append order. A sweep appends one batch per point.
type StageRepository interface {
	// Append adds newly built handles in build order.
	Append(ctx context.Context, handles ...entities.StageHandle) error

	// List returns every handle in append order.
	List(ctx context.Context) ([]entities.StageHandle, error)

	// FindByID retrieves a handle by its identity.
	FindByID(ctx context.Context, id string) (entities.StageHandle, error)

	// FindByLabel retrieves every handle built under label, in append order.
	FindByLabel(ctx context.Context, label string) ([]entities.StageHandle, error)
}
