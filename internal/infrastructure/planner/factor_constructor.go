package planner

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

// requiredParams lists the parameters each factor kind must carry. An
// absent rcut is read as no cutoff.
var requiredParams = map[entities.FactorKind][]string{
	entities.FactorJ1: {"size", "rcut"},
	entities.FactorJ2: {"size", "rcut", "init"},
	entities.FactorJ3: {"esize", "isize", "rcut"},
}

var defaultForms = map[entities.FactorKind]string{
	entities.FactorJ1: entities.FormBspline,
	entities.FactorJ2: entities.FormBspline,
	entities.FactorJ3: entities.FormPolynomial,
}

// FactorConstructor checks structured specs and turns them into factors.
type FactorConstructor struct{}

// NewFactorConstructor creates a factor constructor.
func NewFactorConstructor() *FactorConstructor {
	return &FactorConstructor{}
}

// Construct validates spec and returns the factor it describes. An empty form
// takes the kind's default. A nil rcut is legal and means no cutoff.
func (c *FactorConstructor) Construct(spec entities.JastrowSpec, system entities.SystemDescription) (entities.CorrelationFactor, error) {
	form, ok := defaultForms[spec.Kind]
	if !ok {
		return entities.CorrelationFactor{}, fmt.Errorf("unknown correlation factor kind %q", spec.Kind)
	}
	if spec.Form != "" {
		if spec.Form != form {
			return entities.CorrelationFactor{}, fmt.Errorf("%s does not support form %q", spec.Kind, spec.Form)
		}
	}

	params := make(map[string]any, len(spec.Params))
	for k, v := range spec.Params {
		params[k] = v
	}

	for _, name := range requiredParams[spec.Kind] {
		v, present := params[name]
		if !present && name != "rcut" {
			return entities.CorrelationFactor{}, fmt.Errorf("%s: missing parameter %q", spec.Kind, name)
		}
		switch name {
		case "rcut":
			if v == nil {
				params[name] = nil
				continue
			}
			f, err := cast.ToFloat64E(v)
			if err != nil || f <= 0 {
				return entities.CorrelationFactor{}, fmt.Errorf("%s: rcut must be a positive number, got %v", spec.Kind, v)
			}
			params[name] = f
		case "init":
			s, err := cast.ToStringE(v)
			if err != nil {
				return entities.CorrelationFactor{}, fmt.Errorf("%s: init must be a string, got %v", spec.Kind, v)
			}
			params[name] = s
		default:
			n, err := cast.ToIntE(v)
			if err != nil || n <= 0 {
				return entities.CorrelationFactor{}, fmt.Errorf("%s: %s must be a positive integer, got %v", spec.Kind, name, v)
			}
			params[name] = n
		}
	}

	return entities.CorrelationFactor{
		Kind:   spec.Kind,
		Form:   form,
		Params: params,
		System: systemName(system),
	}, nil
}

func systemName(system entities.SystemDescription) string {
	if s, ok := system.(*entities.System); ok && s != nil {
		return s.Name
	}
	return ""
}
