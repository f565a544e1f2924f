package planner

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/reglet-dev/qmcchain/internal/domain/entities"
	"github.com/reglet-dev/qmcchain/internal/domain/services"
)

// Builder is a stage builder that records requests as planned handles.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a planning builder.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// Build records req as a new handle. Every dependency must offer the
// relation it is consumed for.
func (b *Builder) Build(ctx context.Context, req services.StageRequest) (entities.StageHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deps := make([]string, 0, len(req.Dependencies))
	for _, dep := range req.Dependencies {
		if dep.Handle == nil {
			return nil, fmt.Errorf("stage %s: dependency for %s has no handle", req.Label, dep.Relation)
		}
		if !slices.Contains(dep.Handle.Relations(), dep.Relation) {
			return nil, fmt.Errorf("stage %s: %s does not supply %s", req.Label, dep.Handle.Label(), dep.Relation)
		}
		deps = append(deps, dep.Handle.ID())
	}

	h := &Handle{
		id:           uuid.New(),
		label:        req.Label,
		variant:      req.Variant,
		path:         req.Path,
		options:      copyOptions(req.Options),
		dependencies: deps,
		jastrows:     factorNames(req.Jastrows),
		calculations: req.Calculations.Kinds(),
	}

	b.logger.Debug("planned stage",
		"label", h.label,
		"path", h.path,
		"id", h.ID(),
		"dependencies", len(deps),
		"options", sortedKeys(h.options))
	return h, nil
}
