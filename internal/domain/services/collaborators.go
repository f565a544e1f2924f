package services

import (
	"context"

	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

// StageRequest is the fully resolved input handed to a stage builder.
// Options never contain unset values.
type StageRequest struct {
	Variant      entities.Variant
	Label        string
	Path         string
	Location     string
	Options      map[string]any
	System       entities.SystemDescription
	Pseudos      []string
	Dependencies []entities.ResolvedDependency
	Jastrows     []entities.CorrelationFactor
	Calculations entities.Schedule
}

// StageBuilder produces a stage handle from a resolved request.
// Builders may have side effects; the assembler only guarantees call order
// and that every dependency is resolved before Build is called.
type StageBuilder interface {
	Build(ctx context.Context, req StageRequest) (entities.StageHandle, error)
}

// FactorConstructor builds a correlation factor from a structured spec.
type FactorConstructor interface {
	Construct(spec entities.JastrowSpec, system entities.SystemDescription) (entities.CorrelationFactor, error)
}

// SystemGenerator produces a system description from named parameters.
type SystemGenerator interface {
	Generate(params map[string]any) (entities.SystemDescription, error)
}
