package services

import (
	"github.com/reglet-dev/qmcchain/internal/domain/defaults"
	"github.com/reglet-dev/qmcchain/internal/domain/entities"
	"github.com/reglet-dev/qmcchain/internal/domain/repositories"
	"github.com/reglet-dev/qmcchain/internal/domain/values"
)

// ChainRequest is the raw input of one pipeline assembly.
type ChainRequest struct {
	System   entities.SystemDescription
	Stages   repositories.StageRepository
	BasePath string
	// Options is the flat top-level bag: stage flags, *_inputs, *_defaults,
	// pseudopotentials and the orb_source / J2_source / J3_source handles.
	Options entities.Bag
	// DefaultsKind selects the profile kind holding the chain defaults.
	// Empty means the plain chain defaults.
	DefaultsKind string
	// DefaultsName selects the profile within DefaultsKind. Empty means v1.
	DefaultsName string
}

// StageOptions is the resolved, partitioned input of one enabled stage kind.
type StageOptions struct {
	Kind     values.StageKind
	Location string
	Profile  string
	Workflow entities.Bag
	// Jastrow is only populated for optimization.
	Jastrow  entities.Bag
	Sections entities.Bag
	// Engine holds every remaining key; it is forwarded to the stage builder.
	Engine entities.Bag
}

// Flag reads a boolean workflow key.
func (s *StageOptions) Flag(name string) (bool, error) {
	return toBool(s.Location, name, s.Workflow.Get(name).Get())
}

// WorkflowString reads a string workflow key, e.g. a profile selection.
func (s *StageOptions) WorkflowString(name string) (string, error) {
	return toString(s.Location, name, s.Workflow.Get(name).Get())
}

// ChainOptions is a fully processed chain request.
type ChainOptions struct {
	Location   string
	System     entities.SystemDescription
	Stages     repositories.StageRepository
	BasePath   string
	DFTPseudos []string
	QMCPseudos []string
	Enabled    map[values.StageKind]bool
	Stage      map[values.StageKind]*StageOptions
	OrbSource  entities.StageHandle
	J2Source   entities.StageHandle
	J3Source   entities.StageHandle
}

// IsEnabled reports whether kind will be built.
func (o *ChainOptions) IsEnabled(kind values.StageKind) bool {
	return o.Enabled[kind]
}

// WithSources returns a shallow copy of o with the given shared-factor sources.
// Nil arguments keep the current source.
func (o *ChainOptions) WithSources(j2, j3 entities.StageHandle) *ChainOptions {
	cp := *o
	if j2 != nil {
		cp.J2Source = j2
	}
	if j3 != nil {
		cp.J3Source = j3
	}
	return &cp
}

// WithBasePath returns a shallow copy of o rooted at path.
func (o *ChainOptions) WithBasePath(path string) *ChainOptions {
	cp := *o
	cp.BasePath = path
	return &cp
}

// WithEngineOption returns a copy of o where kind's engine input has name set to v.
func (o *ChainOptions) WithEngineOption(kind values.StageKind, name string, v any) *ChainOptions {
	cp := *o
	cp.Stage = make(map[values.StageKind]*StageOptions, len(o.Stage))
	for k, s := range o.Stage {
		cp.Stage[k] = s
	}
	if s, ok := o.Stage[kind]; ok {
		next := *s
		next.Engine = s.Engine.With(name, v)
		cp.Stage[kind] = &next
	}
	return &cp
}

// ProcessChainOptions validates and partitions a chain request.
//
//  1. system and stage repository must be present
//  2. unknown top-level keys are rejected
//  3. flags, inputs and profile selections are resolved against the chain defaults,
//     and supplying *_inputs turns the stage on
//  4. dft_pseudos is always required, qmc_pseudos whenever a QMC stage is on
//  5. every enabled stage's inputs are filled from its stage profile and split into
//     workflow keys (required), jastrow and section keys (optional) and the engine remainder
func ProcessChainOptions(location string, store *defaults.Store, req ChainRequest) (*ChainOptions, error) {
	if req.System == nil {
		return nil, entities.NewMissingRequiredError(location, "system")
	}
	if req.Stages == nil {
		return nil, entities.NewMissingRequiredError(location, "stages")
	}

	top, rest, err := Partition(location, req.Options, KeySet{Stage: "chain", Optional: defaults.ChainKeys})
	if err != nil {
		return nil, err
	}
	if err := RejectLeftover(location, rest); err != nil {
		return nil, err
	}

	profile, err := chainProfile(location, store, req.DefaultsKind, req.DefaultsName)
	if err != nil {
		return nil, err
	}
	dc := NewDefaultContext(profile, location)

	opts := &ChainOptions{
		Location: location,
		System:   req.System,
		Stages:   req.Stages,
		BasePath: req.BasePath,
		Enabled:  make(map[values.StageKind]bool, len(values.StageKinds)),
		Stage:    make(map[values.StageKind]*StageOptions),
	}

	dft, err := dc.Require("dft_pseudos", top.Get("dft_pseudos"))
	if err != nil {
		return nil, err
	}
	if opts.DFTPseudos, err = toStrings(location, "dft_pseudos", dft.Get()); err != nil {
		return nil, err
	}

	inputs := make(map[values.StageKind]any, len(values.StageKinds))
	profiles := make(map[values.StageKind]string, len(values.StageKinds))
	for _, kind := range values.StageKinds {
		name := kind.String()
		flag, err := dc.Default(name, top.Get(name))
		if err != nil {
			return nil, err
		}
		in, err := dc.Default(name+"_inputs", top.Get(name+"_inputs"))
		if err != nil {
			return nil, err
		}
		prof, err := dc.Default(name+"_defaults", top.Get(name+"_defaults"))
		if err != nil {
			return nil, err
		}

		on, err := toBool(location, name, flag.Get())
		if err != nil {
			return nil, err
		}
		opts.Enabled[kind] = on || in.Get() != nil
		inputs[kind] = in.Get()
		if profiles[kind], err = toString(location, name+"_defaults", prof.Get()); err != nil {
			return nil, err
		}
	}

	if opts.Enabled[values.StageOptimization] || opts.Enabled[values.StageVMC] || opts.Enabled[values.StageDMC] {
		qmc, err := dc.Require("qmc_pseudos", top.Get("qmc_pseudos"))
		if err != nil {
			return nil, err
		}
		if opts.QMCPseudos, err = toStrings(location, "qmc_pseudos", qmc.Get()); err != nil {
			return nil, err
		}
	}

	sources := []struct {
		name string
		dst  *entities.StageHandle
	}{
		{"orb_source", &opts.OrbSource},
		{"J2_source", &opts.J2Source},
		{"J3_source", &opts.J3Source},
	}
	for _, src := range sources {
		v, err := dc.Default(src.name, top.Get(src.name))
		if err != nil {
			return nil, err
		}
		if *src.dst, err = toHandle(location, src.name, v.Get()); err != nil {
			return nil, err
		}
	}

	for _, kind := range values.StageKinds {
		if !opts.Enabled[kind] {
			continue
		}
		so, err := processStage(location, store, kind, profiles[kind], inputs[kind])
		if err != nil {
			return nil, err
		}
		opts.Stage[kind] = so
	}
	return opts, nil
}

func chainProfile(location string, store *defaults.Store, kind, name string) (defaults.Profile, error) {
	if name == "" {
		name = defaults.Version
	}
	base, err := store.Profile(location, defaults.KindChain, defaults.Version)
	if err != nil {
		return defaults.Profile{}, err
	}
	if kind == "" || kind == defaults.KindChain {
		if name == defaults.Version {
			return base, nil
		}
		return store.Profile(location, defaults.KindChain, name)
	}
	p, err := store.Profile(location, kind, name)
	if err != nil {
		return defaults.Profile{}, err
	}
	// Caller defaults only override; the chain defaults fill the rest.
	return base.Extend(p.Name(), p.Values()), nil
}

func processStage(location string, store *defaults.Store, kind values.StageKind, profileName string, raw any) (*StageOptions, error) {
	name := kind.String()
	loc := location + " " + name + "_inputs"

	in, err := toBag(loc, name+"_inputs", raw)
	if err != nil {
		return nil, err
	}
	profile, err := store.Profile(loc, name, profileName)
	if err != nil {
		return nil, err
	}
	bag := in.FillFrom(profile.Bag())

	so := &StageOptions{Kind: kind, Location: loc, Profile: profile.Name()}
	so.Workflow, bag, err = Partition(loc, bag, KeySet{Stage: name, Required: defaults.WorkflowKeys[name]})
	if err != nil {
		return nil, err
	}

	switch kind {
	case values.StageOptimization:
		if so.Jastrow, bag, err = Partition(loc+" jastrows", bag, KeySet{Stage: "jastrow", Optional: defaults.JastrowKeys}); err != nil {
			return nil, err
		}
		so.Sections, bag, err = Partition(loc+" opt_methods", bag, KeySet{Stage: "opt_sections", Optional: defaults.OptSectionKeys})
	case values.StageVMC:
		so.Sections, bag, err = Partition(loc, bag, KeySet{Stage: "vmc_sections", Optional: defaults.VMCSectionKeys})
	case values.StageDMC:
		so.Sections, bag, err = Partition(loc, bag, KeySet{Stage: "dmc_sections", Optional: defaults.DMCSectionKeys})
	}
	if err != nil {
		return nil, err
	}
	so.Engine = bag
	return so, nil
}

func toHandle(location, name string, v any) (entities.StageHandle, error) {
	if v == nil {
		return nil, nil
	}
	h, ok := v.(entities.StageHandle)
	if !ok {
		return nil, entities.NewInvalidOptionError(location, name, v, nil)
	}
	return h, nil
}
