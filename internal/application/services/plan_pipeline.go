// Package services contains application use cases.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/reglet-dev/qmcchain/internal/application/dto"
	apperrors "github.com/reglet-dev/qmcchain/internal/application/errors"
	"github.com/reglet-dev/qmcchain/internal/application/ports"
	"github.com/reglet-dev/qmcchain/internal/domain/defaults"
	"github.com/reglet-dev/qmcchain/internal/domain/entities"
	"github.com/reglet-dev/qmcchain/internal/domain/services"
)

// PlanPipelineUseCase orchestrates loading a request file and assembling its pipelines.
// This is a pure application layer component that depends only on ports.
type PlanPipelineUseCase struct {
	loader      ports.RequestLoader
	validator   ports.RequestValidator
	profiles    ports.ProfileSource
	generators  ports.GeneratorFactory
	builder     ports.StageBuilder
	constructor ports.FactorConstructor
	stages      ports.StageRepositoryFactory
	builtin     *defaults.Store
	resolver    *services.DependencyResolver
	logger      *slog.Logger
}

// NewPlanPipelineUseCase creates a new plan pipeline use case.
// builtin holds the profiles every request starts from.
func NewPlanPipelineUseCase(
	loader ports.RequestLoader,
	validator ports.RequestValidator,
	profiles ports.ProfileSource,
	generators ports.GeneratorFactory,
	builder ports.StageBuilder,
	constructor ports.FactorConstructor,
	stages ports.StageRepositoryFactory,
	builtin *defaults.Store,
	logger *slog.Logger,
) *PlanPipelineUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if builtin == nil {
		builtin = defaults.NewStore()
	}

	return &PlanPipelineUseCase{
		loader:      loader,
		validator:   validator,
		profiles:    profiles,
		generators:  generators,
		builder:     builder,
		constructor: constructor,
		stages:      stages,
		builtin:     builtin,
		resolver:    services.NewDependencyResolver(),
		logger:      logger,
	}
}

// Execute runs the complete plan workflow.
func (uc *PlanPipelineUseCase) Execute(ctx context.Context, req dto.PlanRequest) (*dto.PlanResponse, error) {
	startTime := time.Now()

	uc.logger.Info("loading request", "path", req.RequestPath)

	// 1-3. Load, validate and decode
	request, err := uc.loadRequest(req.RequestPath)
	if err != nil {
		return nil, err
	}

	// 4. Profiles
	store, err := uc.loadProfiles(req.ProfilePaths)
	if err != nil {
		return nil, err
	}

	kind := request.EffectiveKind()
	uc.logger.Info("request decoded", "kind", kind, "basepath", request.BasePath)

	// 5. Assemble
	points, err := uc.assemble(ctx, store, request)
	if err != nil {
		return nil, err
	}

	// 6. Response
	return uc.buildResponse(req, kind, startTime, points)
}

func (uc *PlanPipelineUseCase) loadRequest(path string) (*dto.PipelineRequest, error) {
	doc, err := uc.loader.LoadRequest(path)
	if err != nil {
		return nil, apperrors.NewValidationError("request", "failed to load request", err.Error())
	}

	if uc.validator != nil {
		if err := uc.validator.ValidateRequest(doc); err != nil {
			return nil, err
		}
	}

	request, err := DecodeRequest(doc)
	if err != nil {
		return nil, apperrors.NewValidationError("request", "failed to decode request", err.Error())
	}
	return request, nil
}

// DecodeRequest maps a raw request document onto a PipelineRequest.
// Unknown top-level fields are rejected; option bags are kept as-is.
func DecodeRequest(doc map[string]any) (*dto.PipelineRequest, error) {
	var out dto.PipelineRequest
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(doc); err != nil {
		return nil, err
	}
	if out.System != nil {
		if err := out.System.Validate(); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

func (uc *PlanPipelineUseCase) loadProfiles(paths []string) (*defaults.Store, error) {
	store := uc.builtin
	for _, p := range paths {
		if uc.profiles == nil {
			return nil, apperrors.NewConfigurationError("profiles", "no profile source configured", nil)
		}
		extra, err := uc.profiles.LoadProfiles(p)
		if err != nil {
			return nil, apperrors.NewValidationError("profiles", fmt.Sprintf("failed to load profiles from %s", p), err.Error())
		}
		uc.logger.Debug("profiles loaded", "path", p, "kinds", extra.Kinds())
		store = store.Merge(extra)
	}
	return store, nil
}

func (uc *PlanPipelineUseCase) assemble(
	ctx context.Context,
	store *defaults.Store,
	request *dto.PipelineRequest,
) ([]services.SweepPoint, error) {
	assembler := services.NewAssembler(store, uc.builder, uc.constructor, uc.logger)
	driver := services.NewSweepDriver(assembler)
	sink := uc.stages.NewStageRepository()
	options := entities.BagFrom(request.Options)
	kind := request.EffectiveKind()

	switch kind {
	case dto.KindChain:
		req := services.ChainRequest{
			Stages:       sink,
			BasePath:     request.BasePath,
			Options:      options,
			DefaultsName: request.Defaults,
		}
		// Keep the interface nil when no system was given.
		if request.System != nil {
			req.System = request.System
		}
		registry, err := assembler.Chain(ctx, req)
		if err != nil {
			return nil, err
		}
		return []services.SweepPoint{{Dir: request.BasePath, Registry: registry}}, nil

	case dto.KindEcutScan:
		sweep, err := requireSweep(kind, request)
		if err != nil {
			return nil, err
		}
		req := services.EcutScanRequest{
			Ecuts:       sweep.Ecuts,
			BasePath:    request.BasePath,
			DirName:     sweep.DirName,
			SameJastrow: sweep.SameJastrow,
			EcutJastrow: sweep.EcutJastrow,
			Stages:      sink,
			Options:     options,
		}
		if request.System != nil {
			req.System = request.System
		}
		return points(driver.EcutScan(ctx, req))

	case dto.KindSystemScan:
		sweep, err := requireSweep(kind, request)
		if err != nil {
			return nil, err
		}
		req := services.SystemScanRequest{
			BasePath:    request.BasePath,
			DirName:     sweep.DirName,
			SameJastrow: sweep.SameJastrow != nil && *sweep.SameJastrow,
			JastrowKey:  sweep.JastrowKey,
			Stages:      sink,
			Options:     options,
		}
		for i := range sweep.Systems {
			entry := sweep.Systems[i]
			if err := entry.System.Validate(); err != nil {
				return nil, apperrors.NewValidationError(fmt.Sprintf("sweep.systems[%d]", i), "invalid system", err.Error())
			}
			system := entry.System
			req.Systems = append(req.Systems, &system)
			req.SysDirs = append(req.SysDirs, entry.Dir)
			key := entry.Key
			if key == "" {
				key = entry.Dir
			}
			req.SysKeys = append(req.SysKeys, key)
		}
		return points(driver.SystemScan(ctx, req))

	case dto.KindSystemParameterScan:
		sweep, err := requireSweep(kind, request)
		if err != nil {
			return nil, err
		}
		if sweep.Generator == nil {
			return nil, apperrors.NewValidationError("sweep.generator", "system_parameter_scan requires a generator")
		}
		generator, err := uc.generators.NewGenerator(*sweep.Generator)
		if err != nil {
			return nil, apperrors.NewValidationError("sweep.generator", "failed to compile generator", err.Error())
		}
		req := services.SystemParameterScanRequest{
			BasePath:    request.BasePath,
			DirName:     sweep.DirName,
			Generator:   generator,
			Variable:    sweep.Variable,
			Values:      sweep.Values,
			Fixed:       sweep.Fixed,
			SameJastrow: sweep.SameJastrow != nil && *sweep.SameJastrow,
			JastrowKey:  sweep.JastrowKey,
			Stages:      sink,
			Options:     options,
		}
		return points(driver.SystemParameterScan(ctx, req))

	default:
		return nil, apperrors.NewValidationError("kind", fmt.Sprintf("unknown request kind %q", kind), dto.RequestKinds...)
	}
}

func requireSweep(kind string, request *dto.PipelineRequest) (*dto.SweepSpec, error) {
	if request.Sweep == nil {
		return nil, apperrors.NewValidationError("sweep", fmt.Sprintf("%s requires a sweep block", kind))
	}
	return request.Sweep, nil
}

func points(result *services.SweepResult, err error) ([]services.SweepPoint, error) {
	if err != nil {
		return nil, err
	}
	return result.Points(), nil
}

func (uc *PlanPipelineUseCase) buildResponse(
	req dto.PlanRequest,
	kind string,
	startTime time.Time,
	points []services.SweepPoint,
) (*dto.PlanResponse, error) {
	resp := &dto.PlanResponse{
		Kind:   kind,
		Points: make([]dto.PlanPoint, 0, len(points)),
		Metadata: dto.ResponseMetadata{
			RequestID:   req.Metadata.RequestID,
			ProcessedAt: time.Now(),
		},
	}

	seen := make(map[string]bool)
	for _, p := range points {
		point, err := uc.describePoint(p, seen)
		if err != nil {
			return nil, err
		}
		resp.Points = append(resp.Points, point)
	}

	resp.Metadata.Duration = time.Since(startTime)
	uc.logger.Info("pipeline planned", "points", len(resp.Points), "stages", resp.StageCount())
	return resp, nil
}

// describePoint reports every registered stage of one point. Handles seen in an
// earlier point, or registered under a label other than their own, are marked reused.
func (uc *PlanPipelineUseCase) describePoint(p services.SweepPoint, seen map[string]bool) (dto.PlanPoint, error) {
	labels := p.Registry.Labels()
	handles := p.Registry.Handles()

	labelOf := make(map[string]string, len(handles))
	for i, h := range handles {
		labelOf[h.ID()] = labels[i]
	}

	stages := make([]dto.PlannedStage, 0, len(handles))
	decls := make([]services.StageDeclaration, 0, len(handles))
	for i, h := range handles {
		stage := dto.PlannedStage{ID: h.ID()}
		if d, ok := h.(ports.StageDescriber); ok {
			stage = d.Describe()
		}
		stage.ID = h.ID()
		stage.Label = labels[i]
		stage.Reused = seen[h.ID()] || h.Label() != labels[i]

		producers := stage.DependsOn
		stage.DependsOn = nil
		for _, id := range producers {
			if label, ok := labelOf[id]; ok {
				stage.DependsOn = append(stage.DependsOn, label)
			}
		}

		stages = append(stages, stage)
		decls = append(decls, services.StageDeclaration{Label: stage.Label, DependsOn: stage.DependsOn})
	}

	levels, err := uc.resolver.Order(decls)
	if err != nil {
		return dto.PlanPoint{}, apperrors.NewAssemblyError(p.Key, "failed to order stages", err)
	}
	upstream, err := uc.resolver.Upstream(decls)
	if err != nil {
		return dto.PlanPoint{}, apperrors.NewAssemblyError(p.Key, "failed to trace producers", err)
	}
	wave := make(map[string]int, len(stages))
	for _, lvl := range levels {
		for _, d := range lvl.Stages {
			wave[d.Label] = lvl.Level
		}
	}
	for i := range stages {
		stages[i].Wave = wave[stages[i].Label]
		if up := upstream[stages[i].Label]; len(up) > 0 {
			stages[i].Upstream = up
		}
		seen[stages[i].ID] = true
	}

	return dto.PlanPoint{Key: p.Key, Dir: p.Dir, Stages: stages}, nil
}
