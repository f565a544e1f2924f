package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/qmcchain/internal/application/dto"
	apperrors "github.com/reglet-dev/qmcchain/internal/application/errors"
	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

// Diagnostic rules.
const (
	RuleInvalidRequest       = "invalid-request"
	RuleInvalidProfiles      = "invalid-profiles"
	RuleConfiguration        = "configuration"
	RuleMissingDefault       = "missing-default"
	RuleMissingRequired      = "missing-required"
	RuleMissingKeywords      = "missing-keywords"
	RuleUnrecognizedKeywords = "unrecognized-keywords"
	RuleUnresolvedDependency = "unresolved-dependency"
	RuleUnsupportedMethod    = "unsupported-method"
	RuleInvalidCostFunction  = "invalid-cost-function"
	RuleDimensionMismatch    = "dimension-mismatch"
	RuleUnnamableValue       = "unnamable-value"
	RuleUnknownProfile       = "unknown-profile"
	RuleDuplicateStage       = "duplicate-stage"
	RuleSealedRegistry       = "sealed-registry"
	RuleSharedPointNotFound  = "shared-point-not-found"
	RuleInvalidOption        = "invalid-option"
	RuleAssemblyFailed       = "assembly-failed"
	RuleEmptyPipeline        = "empty-pipeline"
	RuleSharedFactors        = "shared-factors"
)

// CheckRequestUseCase plans a request and reports every problem as diagnostics
// instead of failing on the first error.
type CheckRequestUseCase struct {
	planner *PlanPipelineUseCase
	logger  *slog.Logger
}

// NewCheckRequestUseCase creates a new check request use case.
func NewCheckRequestUseCase(planner *PlanPipelineUseCase, logger *slog.Logger) *CheckRequestUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckRequestUseCase{planner: planner, logger: logger}
}

// Execute runs the check workflow. Only cancellation is returned as an error.
func (uc *CheckRequestUseCase) Execute(ctx context.Context, req dto.CheckRequest) (*dto.CheckResponse, error) {
	resp := &dto.CheckResponse{RequestPath: req.RequestPath, Diagnostics: []dto.Diagnostic{}}

	plan, err := uc.planner.Execute(ctx, dto.PlanRequest{
		RequestPath:  req.RequestPath,
		ProfilePaths: req.ProfilePaths,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		resp.Diagnostics = append(resp.Diagnostics, Diagnose(err)...)
		uc.logger.Debug("request check failed", "path", req.RequestPath, "error", err)
		return resp, nil
	}

	resp.Kind = plan.Kind
	resp.Plan = plan

	if plan.StageCount() == 0 {
		resp.Diagnostics = append(resp.Diagnostics, dto.Diagnostic{
			Rule:     RuleEmptyPipeline,
			Severity: dto.SeverityWarning,
			Message:  "request enables no stages",
		})
	}
	for _, p := range plan.Points {
		reused := 0
		for _, s := range p.Stages {
			if s.Reused {
				reused++
			}
		}
		if reused > 0 {
			resp.Diagnostics = append(resp.Diagnostics, dto.Diagnostic{
				Rule:     RuleSharedFactors,
				Severity: dto.SeverityNote,
				Location: p.Dir,
				Message:  fmt.Sprintf("point %s reuses %d stage(s) built elsewhere", p.Key, reused),
			})
		}
	}

	uc.logger.Info("request checked", "path", req.RequestPath, "diagnostics", len(resp.Diagnostics))
	return resp, nil
}

// Diagnose converts a planning error into diagnostics.
func Diagnose(err error) []dto.Diagnostic {
	var validation *apperrors.ValidationError
	if errors.As(err, &validation) {
		rule := RuleInvalidRequest
		if validation.Field == "profiles" {
			rule = RuleInvalidProfiles
		}
		if len(validation.Details) == 0 {
			return []dto.Diagnostic{{Rule: rule, Severity: dto.SeverityError, Location: validation.Field, Message: validation.Message}}
		}
		out := make([]dto.Diagnostic, 0, len(validation.Details))
		for _, d := range validation.Details {
			out = append(out, dto.Diagnostic{
				Rule:     rule,
				Severity: dto.SeverityError,
				Location: validation.Field,
				Message:  fmt.Sprintf("%s: %s", validation.Message, d),
			})
		}
		return out
	}

	var config *apperrors.ConfigurationError
	if errors.As(err, &config) {
		return []dto.Diagnostic{{Rule: RuleConfiguration, Severity: dto.SeverityError, Location: config.Aspect, Message: err.Error()}}
	}

	rule, location := classify(err)
	return []dto.Diagnostic{{Rule: rule, Severity: dto.SeverityError, Location: location, Message: err.Error()}}
}

// classify maps a domain resolution error to its rule and location.
func classify(err error) (string, string) {
	var (
		missingDefault  *entities.MissingDefaultError
		missingRequired *entities.MissingRequiredError
		missingKeywords *entities.MissingKeywordsError
		unrecognized    *entities.UnrecognizedKeywordsError
		unresolved      *entities.UnresolvedDependencyError
		unsupported     *entities.UnsupportedMethodError
		invalidCost     *entities.InvalidCostFunctionError
		mismatch        *entities.DimensionMismatchError
		unnamable       *entities.UnnamableValueError
		unknownProfile  *entities.UnknownProfileError
		duplicate       *entities.DuplicateStageError
		sealed          *entities.SealedRegistryError
		sharedPoint     *entities.SharedPointNotFoundError
		invalidOption   *entities.InvalidOptionError
	)
	switch {
	case errors.As(err, &missingDefault):
		return RuleMissingDefault, missingDefault.Location
	case errors.As(err, &missingRequired):
		return RuleMissingRequired, missingRequired.Location
	case errors.As(err, &missingKeywords):
		return RuleMissingKeywords, missingKeywords.Location
	case errors.As(err, &unrecognized):
		return RuleUnrecognizedKeywords, unrecognized.Location
	case errors.As(err, &unresolved):
		return RuleUnresolvedDependency, unresolved.Location
	case errors.As(err, &unsupported):
		return RuleUnsupportedMethod, unsupported.Location
	case errors.As(err, &invalidCost):
		return RuleInvalidCostFunction, invalidCost.Location
	case errors.As(err, &mismatch):
		return RuleDimensionMismatch, mismatch.Location
	case errors.As(err, &unnamable):
		return RuleUnnamableValue, unnamable.Location
	case errors.As(err, &unknownProfile):
		return RuleUnknownProfile, unknownProfile.Location
	case errors.As(err, &duplicate):
		return RuleDuplicateStage, duplicate.Location
	case errors.As(err, &sealed):
		return RuleSealedRegistry, sealed.Location
	case errors.As(err, &sharedPoint):
		return RuleSharedPointNotFound, sharedPoint.Location
	case errors.As(err, &invalidOption):
		return RuleInvalidOption, invalidOption.Location
	default:
		return RuleAssemblyFailed, ""
	}
}
