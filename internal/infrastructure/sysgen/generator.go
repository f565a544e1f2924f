// Package sysgen builds system generators from expression specifications.
// Each derived parameter, the boundary and the pseudized flag are expr-lang
// expressions evaluated over the fixed parameters and the swept variable.
package sysgen

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/reglet-dev/qmcchain/internal/application/dto"
	"github.com/reglet-dev/qmcchain/internal/application/ports"
	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

// Factory compiles generator specifications.
type Factory struct{}

// NewFactory creates a generator factory.
func NewFactory() *Factory {
	return &Factory{}
}

type derived struct {
	name    string
	source  string
	program *vm.Program
}

// Generator evaluates compiled expressions into system descriptions.
type Generator struct {
	name       string
	parameters []derived
	boundary   *derived
	pseudized  *derived
}

// NewGenerator compiles every expression of spec. Compilation errors are
// reported before any sweep point is generated.
func (f *Factory) NewGenerator(spec dto.GeneratorSpec) (ports.SystemGenerator, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("generator name is required")
	}
	g := &Generator{name: spec.Name}

	names := make([]string, 0, len(spec.Parameters))
	for name := range spec.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d, err := compile(name, spec.Parameters[name])
		if err != nil {
			return nil, err
		}
		g.parameters = append(g.parameters, d)
	}

	if spec.Boundary != "" {
		d, err := compile("boundary", spec.Boundary)
		if err != nil {
			return nil, err
		}
		g.boundary = &d
	}
	if spec.Pseudized != "" {
		d, err := compile("pseudized", spec.Pseudized)
		if err != nil {
			return nil, err
		}
		g.pseudized = &d
	}
	return g, nil
}

func compile(name, source string) (derived, error) {
	program, err := expr.Compile(source, expr.Env(map[string]any{}), expr.AllowUndefinedVariables())
	if err != nil {
		return derived{}, fmt.Errorf("invalid expression for %s %q: %w", name, source, err)
	}
	return derived{name: name, source: source, program: program}, nil
}

// Generate evaluates the generator for one set of input parameters. The
// resulting system carries the inputs plus every derived parameter.
func (g *Generator) Generate(params map[string]any) (entities.SystemDescription, error) {
	env := make(map[string]any, len(params))
	for k, v := range params {
		env[k] = v
	}

	out := make(map[string]any, len(params)+len(g.parameters))
	for k, v := range params {
		out[k] = v
	}
	for _, d := range g.parameters {
		v, err := expr.Run(d.program, env)
		if err != nil {
			return nil, fmt.Errorf("evaluating %s = %s: %w", d.name, d.source, err)
		}
		if v == nil {
			return nil, fmt.Errorf("evaluating %s = %s: result is undefined", d.name, d.source)
		}
		out[d.name] = v
	}

	system := &entities.System{Name: g.name, Boundary: entities.BoundaryPeriodic, Parameters: out}
	if g.boundary != nil {
		v, err := expr.Run(g.boundary.program, env)
		if err != nil {
			return nil, fmt.Errorf("evaluating boundary: %w", err)
		}
		boundary, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("boundary must evaluate to a string, got %T", v)
		}
		system.Boundary = boundary
	}
	if g.pseudized != nil {
		v, err := expr.Run(g.pseudized.program, env)
		if err != nil {
			return nil, fmt.Errorf("evaluating pseudized: %w", err)
		}
		pseudized, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("pseudized must evaluate to a bool, got %T", v)
		}
		system.Pseudized = pseudized
	}
	if err := system.Validate(); err != nil {
		return nil, err
	}
	return system, nil
}
