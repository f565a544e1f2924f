// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"io"

	"github.com/reglet-dev/qmcchain/internal/application/dto"
	"github.com/reglet-dev/qmcchain/internal/domain/defaults"
	"github.com/reglet-dev/qmcchain/internal/domain/repositories"
	"github.com/reglet-dev/qmcchain/internal/domain/services"
)

// StageBuilder produces stage handles. Implemented by the planner.
type StageBuilder = services.StageBuilder

// FactorConstructor builds correlation factors. Implemented by the planner.
type FactorConstructor = services.FactorConstructor

// SystemGenerator produces systems for parameter sweeps.
type SystemGenerator = services.SystemGenerator

// RequestLoader loads a raw request document from storage.
type RequestLoader interface {
	LoadRequest(path string) (map[string]any, error)
}

// RequestValidator validates the structure of a raw request document.
type RequestValidator interface {
	ValidateRequest(doc map[string]any) error
}

// ProfileSource loads user-defined profiles.
type ProfileSource interface {
	LoadProfiles(path string) (*defaults.Store, error)
}

// GeneratorFactory compiles a generator specification.
type GeneratorFactory interface {
	NewGenerator(spec dto.GeneratorSpec) (SystemGenerator, error)
}

// StageRepositoryFactory creates the stage sink of one run.
type StageRepositoryFactory interface {
	NewStageRepository() repositories.StageRepository
}

// StageDescriber is implemented by handles that can describe themselves for output.
// Handles that do not implement it are reported by identity and label only.
// DependsOn of the description holds producer IDs, not labels.
type StageDescriber interface {
	Describe() dto.PlannedStage
}

// PlanFormatter formats plan responses.
type PlanFormatter interface {
	Format(resp *dto.PlanResponse) error
}

// CheckFormatter formats check responses.
type CheckFormatter interface {
	FormatCheck(resp *dto.CheckResponse) error
}

// FormatterOptions configures formatter construction.
type FormatterOptions struct {
	Indent      bool
	RequestPath string
}

// FormatterFactory creates formatters by name.
type FormatterFactory interface {
	Create(format string, w io.Writer, options FormatterOptions) (PlanFormatter, error)
	CreateCheck(format string, w io.Writer, options FormatterOptions) (CheckFormatter, error)
	SupportedFormats() []string
}
