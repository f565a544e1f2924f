// Package planner provides the dry-run stage builder used to plan pipelines
// without running any engine.
package planner

import (
	"sort"

	"github.com/google/uuid"

	"github.com/reglet-dev/qmcchain/internal/application/dto"
	"github.com/reglet-dev/qmcchain/internal/domain/entities"
	"github.com/reglet-dev/qmcchain/internal/domain/values"
)

// Handle is a planned stage: it records everything the builder was asked to
// produce but performs no work.
type Handle struct {
	id           uuid.UUID
	label        string
	variant      entities.Variant
	path         string
	options      map[string]any
	dependencies []string
	jastrows     []string
	calculations []string
}

// ID returns the handle's UUID.
func (h *Handle) ID() string { return h.id.String() }

// Label returns the label the stage was built under.
func (h *Handle) Label() string { return h.label }

// Variant returns the workflow variant.
func (h *Handle) Variant() entities.Variant { return h.variant }

// Relations lists what the stage supplies downstream.
func (h *Handle) Relations() []string {
	return RelationsOf(h.variant.Kind)
}

// RelationsOf returns the artifact relations a stage kind supplies.
func RelationsOf(kind values.StageKind) []string {
	switch kind {
	case values.StageGroundState, values.StageOrbitalConversion:
		return []string{entities.RelationOrbitals}
	case values.StageOptimization:
		return []string{entities.RelationJastrow}
	default:
		return nil
	}
}

// Describe reports the planned stage. DependsOn holds producer IDs.
func (h *Handle) Describe() dto.PlannedStage {
	return dto.PlannedStage{
		ID:           h.ID(),
		Label:        h.label,
		Path:         h.path,
		DependsOn:    append([]string(nil), h.dependencies...),
		Jastrows:     append([]string(nil), h.jastrows...),
		Calculations: append([]string(nil), h.calculations...),
		Options:      copyOptions(h.options),
	}
}

func copyOptions(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func factorNames(factors []entities.CorrelationFactor) []string {
	out := make([]string, 0, len(factors))
	for _, f := range factors {
		out = append(out, string(f.Kind)+":"+f.Form)
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
