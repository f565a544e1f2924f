package planner

import (
	"github.com/reglet-dev/qmcchain/internal/domain/repositories"
	"github.com/reglet-dev/qmcchain/internal/infrastructure/persistence/memory"
)

// RepositoryFactory hands out a fresh in-memory stage sink per run.
type RepositoryFactory struct{}

// NewRepositoryFactory creates a repository factory.
func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

// NewStageRepository returns an empty in-memory repository.
func (RepositoryFactory) NewStageRepository() repositories.StageRepository {
	return memory.NewStageRepository()
}
