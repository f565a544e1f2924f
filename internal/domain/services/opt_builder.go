package services

import (
	"math"
	"sort"

	"github.com/reglet-dev/qmcchain/internal/domain/defaults"
	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

// CostWeights is a normalized optimization cost function.
type CostWeights struct {
	Energy               float64
	UnreweightedVariance float64
	ReweightedVariance   float64
}

// energyThreshold is the energy weight below which the variance-minimization phase is skipped.
const energyThreshold = 1e-6

// NormalizeCost converts the accepted cost forms into a weight triple:
//
//	"variance"      → (0, 1, 0)
//	"energy"        → (1, 0, 0)
//	(e, r)          → (e, 0, r)
//	(e, u, r)       → unchanged
func NormalizeCost(location string, cost any) (CostWeights, error) {
	if s, ok := cost.(string); ok {
		switch s {
		case "variance":
			return CostWeights{UnreweightedVariance: 1}, nil
		case "energy":
			return CostWeights{Energy: 1}, nil
		}
		return CostWeights{}, entities.NewInvalidCostFunctionError(location, cost)
	}

	elems, ok := toSlice(cost)
	if !ok || (len(elems) != 2 && len(elems) != 3) {
		return CostWeights{}, entities.NewInvalidCostFunctionError(location, cost)
	}
	w := make([]float64, len(elems))
	for i, e := range elems {
		f, err := toFloat(location, "cost", e)
		if err != nil {
			return CostWeights{}, entities.NewInvalidCostFunctionError(location, cost)
		}
		w[i] = f
	}
	if len(w) == 2 {
		return CostWeights{Energy: w[0], ReweightedVariance: w[1]}, nil
	}
	return CostWeights{Energy: w[0], UnreweightedVariance: w[1], ReweightedVariance: w[2]}, nil
}

// OptMethod is one supported optimization method.
type OptMethod interface {
	Name() string
	Section(w CostWeights, params map[string]any) entities.Optimization
}

type linearMethod struct{}

func (linearMethod) Name() string { return "linear" }

func (m linearMethod) Section(w CostWeights, params map[string]any) entities.Optimization {
	return optimization(m.Name(), w, params)
}

type cslinearMethod struct{}

func (cslinearMethod) Name() string { return "cslinear" }

func (m cslinearMethod) Section(w CostWeights, params map[string]any) entities.Optimization {
	return optimization(m.Name(), w, params)
}

func optimization(method string, w CostWeights, params map[string]any) entities.Optimization {
	cp := make(map[string]any, len(params))
	for k, v := range params {
		cp[k] = v
	}
	return entities.Optimization{
		Method:               method,
		Energy:               w.Energy,
		UnreweightedVariance: w.UnreweightedVariance,
		ReweightedVariance:   w.ReweightedVariance,
		Parameters:           cp,
	}
}

var optMethods = map[string]OptMethod{
	"linear":   linearMethod{},
	"cslinear": cslinearMethod{},
}

// OptMethods returns the supported method names, sorted.
func OptMethods() []string {
	names := make([]string, 0, len(optMethods))
	for n := range optMethods {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LookupOptMethod returns the named method.
func LookupOptMethod(location, name string) (OptMethod, error) {
	m, ok := optMethods[name]
	if !ok {
		return nil, entities.NewUnsupportedMethodError(location, name, OptMethods())
	}
	return m, nil
}

// OptimizationBuilder resolves optimization section options into a two-phase schedule.
type OptimizationBuilder struct {
	store *defaults.Store
}

// NewOptimizationBuilder creates a new optimization schedule builder.
func NewOptimizationBuilder(store *defaults.Store) *OptimizationBuilder {
	return &OptimizationBuilder{store: store}
}

// Build resolves bag against the named opt_sections profile and its method overlay.
// A supplied opt_calcs is returned as is.
func (b *OptimizationBuilder) Build(location, profileName string, bag entities.Bag) (entities.Schedule, error) {
	part, rest, err := Partition(location, bag, KeySet{Stage: "opt_sections", Optional: defaults.OptSectionKeys})
	if err != nil {
		return nil, err
	}
	if err := RejectLeftover(location, rest); err != nil {
		return nil, err
	}
	if calcs := part.Get("opt_calcs"); calcs.IsSet() {
		return passThrough(calcs.Get()), nil
	}

	profile, err := b.store.Profile(location, defaults.KindOptSections, profileName)
	if err != nil {
		return nil, err
	}
	base, err := NewDefaultContext(profile, location).ResolveAll(part, []string{"method", "cost", "cycles", "var_cycles"})
	if err != nil {
		return nil, err
	}

	methodName, err := toString(location, "method", base["method"])
	if err != nil {
		return nil, err
	}
	method, err := LookupOptMethod(location, methodName)
	if err != nil {
		return nil, err
	}

	overlay, _ := b.store.Overlay(defaults.KindOptSections, methodName, profileName)
	params, err := NewDefaultContext(overlay, location).Lenient().ResolveAll(part, defaults.OptMethodKeys)
	if err != nil {
		return nil, err
	}

	w, err := NormalizeCost(location, base["cost"])
	if err != nil {
		return nil, err
	}
	cycles, err := toInt(location, "cycles", base["cycles"])
	if err != nil {
		return nil, err
	}

	var schedule entities.Schedule
	if math.Abs(w.Energy) > energyThreshold {
		varCycles, err := toInt(location, "var_cycles", base["var_cycles"])
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, entities.Loop{
			Max:  varCycles,
			Body: method.Section(CostWeights{UnreweightedVariance: 1}, params),
		})
	}
	schedule = append(schedule, entities.Loop{Max: cycles, Body: method.Section(w, params)})
	return schedule, nil
}

// passThrough wraps a caller-supplied schedule.
func passThrough(v any) entities.Schedule {
	switch c := v.(type) {
	case entities.Schedule:
		return c
	case []entities.Calculation:
		return entities.Schedule(c)
	}
	if elems, ok := toSlice(v); ok {
		out := make(entities.Schedule, 0, len(elems))
		for _, e := range elems {
			if calc, ok := e.(entities.Calculation); ok {
				out = append(out, calc)
				continue
			}
			out = append(out, entities.RawCalculation{Value: e})
		}
		return out
	}
	return entities.Schedule{entities.RawCalculation{Value: v}}
}
