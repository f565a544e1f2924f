package services

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/reglet-dev/qmcchain/internal/domain/defaults"
	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

// JastrowBuilder turns resolved correlation-factor options into constructed factors.
//
// Each of J1, J2 and J3 accepts:
//   - false (or nil): the factor is excluded
//   - true: the factor is constructed from the resolved size and cutoff options
//   - a JastrowSpec or spec-shaped map: handed to the constructor unchanged
//   - a sequence (kind, form, positional params..., [keyword map]): mapped
//     onto a JastrowSpec, e.g. ["J2", "bspline", 8, 4.5, {init: "rpa"}]
//   - a CorrelationFactor: passed through
//
// Output order is always J1, J2, J3.
type JastrowBuilder struct {
	store       *defaults.Store
	constructor FactorConstructor
}

// NewJastrowBuilder creates a new correlation-factor builder.
func NewJastrowBuilder(store *defaults.Store, constructor FactorConstructor) *JastrowBuilder {
	return &JastrowBuilder{store: store, constructor: constructor}
}

// Build resolves bag against the named jastrow profile and constructs the factors for system.
func (b *JastrowBuilder) Build(
	location string,
	profileName string,
	bag entities.Bag,
	system entities.SystemDescription,
) ([]entities.CorrelationFactor, error) {
	profile, err := b.store.Profile(location, defaults.KindJastrow, profileName)
	if err != nil {
		return nil, err
	}
	part, rest, err := Partition(location, bag, KeySet{Stage: "jastrow", Optional: defaults.JastrowKeys})
	if err != nil {
		return nil, err
	}
	if err := RejectLeftover(location, rest); err != nil {
		return nil, err
	}
	if system == nil {
		return nil, entities.NewMissingRequiredError(location, "system")
	}

	opts, err := NewDefaultContext(profile, location).ResolveAll(part, defaults.JastrowKeys)
	if err != nil {
		return nil, err
	}
	openBC := system.IsOpenBoundary()

	var factors []entities.CorrelationFactor
	for _, kind := range entities.FactorKinds {
		factor, include, err := b.factor(location, kind, opts, openBC, system)
		if err != nil {
			return nil, err
		}
		if include {
			factors = append(factors, factor)
		}
	}
	return factors, nil
}

func (b *JastrowBuilder) factor(
	location string,
	kind entities.FactorKind,
	opts map[string]any,
	openBC bool,
	system entities.SystemDescription,
) (entities.CorrelationFactor, bool, error) {
	name := string(kind)
	switch v := opts[name].(type) {
	case nil:
		return entities.CorrelationFactor{}, false, nil
	case entities.CorrelationFactor:
		return v, true, nil
	case *entities.CorrelationFactor:
		return *v, true, nil
	case entities.JastrowSpec:
		return b.construct(location, name, defaultKind(v, kind), system)
	case *entities.JastrowSpec:
		return b.construct(location, name, defaultKind(*v, kind), system)
	case map[string]any:
		var spec entities.JastrowSpec
		if err := decodeWeak(v, &spec); err != nil {
			return entities.CorrelationFactor{}, false, entities.NewInvalidOptionError(location, name, v, err)
		}
		return b.construct(location, name, defaultKind(spec, kind), system)
	case []any:
		spec, err := specFromSequence(location, name, v)
		if err != nil {
			return entities.CorrelationFactor{}, false, err
		}
		return b.construct(location, name, spec, system)
	default:
		on, err := toBool(location, name, v)
		if err != nil || !on {
			return entities.CorrelationFactor{}, false, err
		}
	}

	spec, err := generatedSpec(location, kind, opts, openBC)
	if err != nil {
		return entities.CorrelationFactor{}, false, err
	}
	return b.construct(location, name, spec, system)
}

func (b *JastrowBuilder) construct(
	location, name string,
	spec entities.JastrowSpec,
	system entities.SystemDescription,
) (entities.CorrelationFactor, bool, error) {
	if b.constructor == nil {
		return entities.CorrelationFactor{}, false, entities.NewMissingRequiredError(location, "factor constructor")
	}
	f, err := b.constructor.Construct(spec, system)
	if err != nil {
		return entities.CorrelationFactor{}, false, entities.NewInvalidOptionError(location, name, spec, err)
	}
	return f, true, nil
}

// generatedSpec builds the spec for a factor requested with a plain true.
// J1 and J2 use the bspline form, J3 the polynomial form. On an open boundary
// an unset J1/J2 cutoff falls back to the *_rcut_open default.
func generatedSpec(location string, kind entities.FactorKind, opts map[string]any, openBC bool) (entities.JastrowSpec, error) {
	switch kind {
	case entities.FactorJ1, entities.FactorJ2:
		prefix := string(kind)
		size, err := toInt(location, prefix+"_size", opts[prefix+"_size"])
		if err != nil {
			return entities.JastrowSpec{}, err
		}
		rcut := opts[prefix+"_rcut"]
		if openBC && rcut == nil {
			rcut = opts[prefix+"_rcut_open"]
		}
		if rcut != nil {
			if rcut, err = toFloat(location, prefix+"_rcut", rcut); err != nil {
				return entities.JastrowSpec{}, err
			}
		}
		params := map[string]any{"size": size, "rcut": rcut}
		if kind == entities.FactorJ2 {
			init, err := toString(location, "J2_init", opts["J2_init"])
			if err != nil {
				return entities.JastrowSpec{}, err
			}
			params["init"] = init
		}
		return entities.JastrowSpec{Kind: kind, Form: entities.FormBspline, Params: params}, nil
	default:
		esize, err := toInt(location, "J3_esize", opts["J3_esize"])
		if err != nil {
			return entities.JastrowSpec{}, err
		}
		isize, err := toInt(location, "J3_isize", opts["J3_isize"])
		if err != nil {
			return entities.JastrowSpec{}, err
		}
		rcut := opts["J3_rcut"]
		if rcut != nil {
			if rcut, err = toFloat(location, "J3_rcut", rcut); err != nil {
				return entities.JastrowSpec{}, err
			}
		}
		return entities.JastrowSpec{
			Kind:   kind,
			Form:   entities.FormPolynomial,
			Params: map[string]any{"esize": esize, "isize": isize, "rcut": rcut},
		}, nil
	}
}

// positionalParams names the positional parameters of each factor kind in
// the sequence form.
var positionalParams = map[entities.FactorKind][]string{
	entities.FactorJ1: {"size", "rcut"},
	entities.FactorJ2: {"size", "rcut"},
	entities.FactorJ3: {"esize", "isize", "rcut"},
}

// specFromSequence maps (kind, form, params..., [keywords]) onto a spec.
func specFromSequence(location, name string, seq []any) (entities.JastrowSpec, error) {
	invalid := func(format string, args ...any) error {
		return entities.NewInvalidOptionError(location, name, seq, fmt.Errorf(format, args...))
	}
	if len(seq) == 0 {
		return entities.JastrowSpec{}, invalid("empty factor sequence")
	}
	kind, ok := seq[0].(string)
	if !ok || kind == "" {
		return entities.JastrowSpec{}, invalid("first element must name the factor kind")
	}
	spec := entities.JastrowSpec{Kind: entities.FactorKind(kind), Params: map[string]any{}}

	rest := seq[1:]
	if len(rest) > 0 {
		form, ok := rest[0].(string)
		if !ok {
			return entities.JastrowSpec{}, invalid("second element must name the form")
		}
		spec.Form = form
		rest = rest[1:]
	}
	if n := len(rest); n > 0 {
		if kw, ok := rest[n-1].(map[string]any); ok {
			for k, v := range kw {
				spec.Params[k] = v
			}
			rest = rest[:n-1]
		}
	}

	names, known := positionalParams[spec.Kind]
	if !known && len(rest) > 0 {
		return entities.JastrowSpec{}, invalid("positional parameters given for unknown kind %q", kind)
	}
	if len(rest) > len(names) {
		return entities.JastrowSpec{}, invalid("%s takes at most %d positional parameters, got %d", kind, len(names), len(rest))
	}
	for i, v := range rest {
		spec.Params[names[i]] = v
	}
	return spec, nil
}

func defaultKind(spec entities.JastrowSpec, kind entities.FactorKind) entities.JastrowSpec {
	if spec.Kind == "" {
		spec.Kind = kind
	}
	return spec
}

// decodeWeak decodes a loosely typed map into out, converting scalar types as needed.
func decodeWeak(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
