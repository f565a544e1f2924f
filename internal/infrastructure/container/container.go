// Package container provides dependency injection for the application.
package container

import (
	"log/slog"

	"github.com/reglet-dev/qmcchain/internal/application/ports"
	"github.com/reglet-dev/qmcchain/internal/application/services"
	"github.com/reglet-dev/qmcchain/internal/domain/defaults"
	"github.com/reglet-dev/qmcchain/internal/infrastructure/config"
	"github.com/reglet-dev/qmcchain/internal/infrastructure/output"
	"github.com/reglet-dev/qmcchain/internal/infrastructure/planner"
	"github.com/reglet-dev/qmcchain/internal/infrastructure/sysgen"
	"github.com/reglet-dev/qmcchain/internal/infrastructure/system"
	"github.com/reglet-dev/qmcchain/internal/infrastructure/validation"
)

// Container holds all application dependencies.
type Container struct {
	planUseCase     *services.PlanPipelineUseCase
	checkUseCase    *services.CheckRequestUseCase
	profilesUseCase *services.ProfilesUseCase
	formatters      ports.FormatterFactory
	systemCfg       *system.Config
	logger          *slog.Logger
}

// Options configure the container.
type Options struct {
	Logger           *slog.Logger
	SystemConfigPath string
}

// New creates a new dependency injection container.
func New(opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	systemCfg, err := system.NewConfigLoader().Load(opts.SystemConfigPath)
	if err != nil {
		return nil, err
	}

	builtin := defaults.Builtin()
	profileLoader := config.NewProfileLoader(builtin)

	planUseCase := services.NewPlanPipelineUseCase(
		config.NewRequestLoader(),
		validation.NewRequestValidator(),
		profileLoader,
		sysgen.NewFactory(),
		planner.NewBuilder(opts.Logger),
		planner.NewFactorConstructor(),
		planner.NewRepositoryFactory(),
		builtin,
		opts.Logger,
	)

	return &Container{
		planUseCase:     planUseCase,
		checkUseCase:    services.NewCheckRequestUseCase(planUseCase, opts.Logger),
		profilesUseCase: services.NewProfilesUseCase(profileLoader, builtin, opts.Logger),
		formatters:      output.NewFormatterFactory(),
		systemCfg:       systemCfg,
		logger:          opts.Logger,
	}, nil
}

// PlanPipelineUseCase returns the plan use case.
func (c *Container) PlanPipelineUseCase() *services.PlanPipelineUseCase {
	return c.planUseCase
}

// CheckRequestUseCase returns the check use case.
func (c *Container) CheckRequestUseCase() *services.CheckRequestUseCase {
	return c.checkUseCase
}

// ProfilesUseCase returns the profile inspection use case.
func (c *Container) ProfilesUseCase() *services.ProfilesUseCase {
	return c.profilesUseCase
}

// Formatters returns the output formatter factory.
func (c *Container) Formatters() ports.FormatterFactory {
	return c.formatters
}

// SystemConfig returns the system configuration.
func (c *Container) SystemConfig() *system.Config {
	return c.systemCfg
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}
