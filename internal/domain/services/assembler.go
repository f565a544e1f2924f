package services

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/reglet-dev/qmcchain/internal/domain/defaults"
	"github.com/reglet-dev/qmcchain/internal/domain/entities"
	"github.com/reglet-dev/qmcchain/internal/domain/values"
)

// DefaultLocation is the location reported by single-pipeline assembly errors.
const DefaultLocation = "qmcpack_chain"

// Assembler builds one full pipeline: it resolves every stage configuration,
// builds stages in dependency order and returns the sealed registry.
type Assembler struct {
	store    *defaults.Store
	builder  StageBuilder
	resolver *DependencyResolver
	jastrows *JastrowBuilder
	opt      *OptimizationBuilder
	sampling *SamplingBuilder
	logger   *slog.Logger
}

// NewAssembler creates a pipeline assembler. A nil logger uses slog.Default().
func NewAssembler(
	store *defaults.Store,
	builder StageBuilder,
	constructor FactorConstructor,
	logger *slog.Logger,
) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		store:    store,
		builder:  builder,
		resolver: NewDependencyResolver(),
		jastrows: NewJastrowBuilder(store, constructor),
		opt:      NewOptimizationBuilder(store),
		sampling: NewSamplingBuilder(store),
		logger:   logger,
	}
}

// Store returns the profile store the assembler resolves against.
func (a *Assembler) Store() *defaults.Store {
	return a.store
}

// Chain processes req and assembles the pipeline.
func (a *Assembler) Chain(ctx context.Context, req ChainRequest) (*entities.Registry, error) {
	opts, err := ProcessChainOptions(DefaultLocation, a.store, req)
	if err != nil {
		return nil, err
	}
	return a.Assemble(ctx, opts)
}

var (
	orbitalDeps = []entities.Dependency{entities.DependsOn("p2q", entities.RelationOrbitals)}
	j2Deps      = append(append([]entities.Dependency{}, orbitalDeps...), entities.DependsOn("optJ2", entities.RelationJastrow))
	j3Deps      = append(append([]entities.Dependency{}, orbitalDeps...), entities.DependsOn("optJ3", entities.RelationJastrow))
)

// levelDeps returns the dependencies of a sampling stage at level.
func levelDeps(level values.FactorLevel) []entities.Dependency {
	switch level {
	case values.LevelJ2:
		return j2Deps
	case values.LevelJ3:
		return j3Deps
	default:
		return orbitalDeps
	}
}

// assembly is the state of one Assemble call.
type assembly struct {
	opts     *ChainOptions
	registry *entities.Registry
	built    []entities.StageHandle
}

// Assemble builds every enabled stage of opts in the order
// scf → p2q → optJ2 → optJ3 → vmc variants → dmc variants.
//
// orb_source replaces scf and p2q, J2_source and J3_source replace the
// matching optimization. Newly built handles are appended to the stage
// repository only once the whole pipeline has been built; any error aborts
// the call and leaves the repository untouched.
func (a *Assembler) Assemble(ctx context.Context, opts *ChainOptions) (*entities.Registry, error) {
	as := &assembly{opts: opts, registry: entities.NewRegistry()}

	if err := a.orbitals(ctx, as); err != nil {
		return nil, err
	}
	if err := a.optimizations(ctx, as); err != nil {
		return nil, err
	}
	if err := a.variational(ctx, as); err != nil {
		return nil, err
	}
	if err := a.diffusion(ctx, as); err != nil {
		return nil, err
	}

	if len(as.built) > 0 {
		if err := opts.Stages.Append(ctx, as.built...); err != nil {
			return nil, fmt.Errorf("failed to record built stages: %w", err)
		}
	}
	as.registry.Seal()
	return as.registry, nil
}

func (a *Assembler) orbitals(ctx context.Context, as *assembly) error {
	opts := as.opts
	if opts.OrbSource != nil {
		return a.substitute(as, "p2q", opts.OrbSource)
	}
	if opts.IsEnabled(values.StageGroundState) {
		so := opts.Stage[values.StageGroundState]
		req := a.request(as, entities.StageVariant(values.StageGroundState), so, opts.DFTPseudos)
		if err := a.build(ctx, as, req, nil); err != nil {
			return err
		}
	}
	if opts.IsEnabled(values.StageOrbitalConversion) {
		so := opts.Stage[values.StageOrbitalConversion]
		req := a.request(as, entities.StageVariant(values.StageOrbitalConversion), so, nil)
		// Conversion runs in the ground-state directory.
		req.Path = path.Join(opts.BasePath, "scf")
		deps := []entities.Dependency{entities.DependsOn("scf", entities.RelationOrbitals)}
		if err := a.build(ctx, as, req, deps); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assembler) optimizations(ctx context.Context, as *assembly) error {
	opts := as.opts
	// Sources are registered before any optimization is built so optJ3 can
	// consume a substituted optJ2.
	if opts.J2Source != nil {
		if err := a.substitute(as, "optJ2", opts.J2Source); err != nil {
			return err
		}
	}
	if opts.J3Source != nil {
		if err := a.substitute(as, "optJ3", opts.J3Source); err != nil {
			return err
		}
	}
	if !opts.IsEnabled(values.StageOptimization) {
		return nil
	}

	so := opts.Stage[values.StageOptimization]
	jProfile, err := so.WorkflowString(defaults.JastrowDefaultsKey)
	if err != nil {
		return err
	}
	sProfile, err := so.WorkflowString(defaults.SectionsDefaultsKey)
	if err != nil {
		return err
	}

	levels := []struct {
		level  values.FactorLevel
		flag   string
		source entities.StageHandle
		deps   []entities.Dependency
	}{
		{values.LevelJ2, "J2_prod", opts.J2Source, orbitalDeps},
		{values.LevelJ3, "J3_prod", opts.J3Source, j2Deps},
	}
	for _, lvl := range levels {
		on, err := so.Flag(lvl.flag)
		if err != nil {
			return err
		}
		if !on || lvl.source != nil {
			continue
		}

		variant := entities.LeveledVariant(values.StageOptimization, lvl.level, values.MoveUnset, false)
		label := variant.Label()
		loc := so.Location + " " + label

		factors, err := a.jastrows.Build(loc+" jastrows", jProfile, levelJastrows(so.Jastrow, lvl.level), opts.System)
		if err != nil {
			return err
		}
		schedule, err := a.opt.Build(loc+" opt_sections", sProfile, so.Sections)
		if err != nil {
			return err
		}

		req := a.request(as, variant, so, opts.QMCPseudos)
		req.Jastrows = factors
		req.Calculations = schedule
		if err := a.build(ctx, as, req, lvl.deps); err != nil {
			return err
		}
	}
	return nil
}

// levelJastrows forces the factor flags for an optimization level. Flags
// already holding a structured spec or factor are left as supplied.
func levelJastrows(bag entities.Bag, level values.FactorLevel) entities.Bag {
	want := map[string]bool{"J1": true, "J2": true, "J3": level == values.LevelJ3}
	for _, name := range []string{"J1", "J2", "J3"} {
		if v := bag.Get(name); v.IsSet() && isStructuredFactor(v.Get()) && want[name] {
			continue
		}
		bag = bag.With(name, want[name])
	}
	return bag
}

func isStructuredFactor(v any) bool {
	switch v.(type) {
	case entities.JastrowSpec, *entities.JastrowSpec,
		entities.CorrelationFactor, *entities.CorrelationFactor,
		map[string]any, []any:
		return true
	}
	return false
}

// samplingVariants is the fixed build order of level variants.
var samplingVariants = []struct {
	level values.FactorLevel
	test  bool
	flag  string
}{
	{values.LevelJ0, true, "J0_test"},
	{values.LevelJ0, false, "J0_prod"},
	{values.LevelJ2, true, "J2_test"},
	{values.LevelJ2, false, "J2_prod"},
	{values.LevelJ3, true, "J3_test"},
	{values.LevelJ3, false, "J3_prod"},
}

func (a *Assembler) variational(ctx context.Context, as *assembly) error {
	opts := as.opts
	if !opts.IsEnabled(values.StageVMC) {
		return nil
	}
	so := opts.Stage[values.StageVMC]
	sProfile, err := so.WorkflowString(defaults.SectionsDefaultsKey)
	if err != nil {
		return err
	}

	for _, sv := range samplingVariants {
		on, err := so.Flag(sv.flag)
		if err != nil {
			return err
		}
		if !on {
			continue
		}
		variant := entities.LeveledVariant(values.StageVMC, sv.level, values.MoveUnset, sv.test)
		loc := so.Location + " " + variant.Label()

		schedule, err := a.sampling.VMC(loc+" vmc_sections", sProfile, so.Sections, variant.Preset())
		if err != nil {
			return err
		}
		req := a.request(as, variant, so, opts.QMCPseudos)
		req.Calculations = schedule
		if err := a.build(ctx, as, req, levelDeps(sv.level)); err != nil {
			return err
		}
	}
	return nil
}

// NonlocalMoves returns the move variants requested by the dmc workflow flags.
// With neither flag set the system decides: tmoves for pseudized systems,
// otherwise the engine default.
func NonlocalMoves(tmoves, locality bool, system entities.SystemDescription) []values.NonlocalMove {
	var moves []values.NonlocalMove
	if tmoves {
		moves = append(moves, values.MoveTmoves)
	}
	if locality {
		moves = append(moves, values.MoveLocality)
	}
	if len(moves) == 0 {
		fallback := values.MoveUnset
		if system.IsPseudized() {
			fallback = values.MoveTmoves
		}
		moves = append(moves, fallback)
	}
	return moves
}

func (a *Assembler) diffusion(ctx context.Context, as *assembly) error {
	opts := as.opts
	if !opts.IsEnabled(values.StageDMC) {
		return nil
	}
	so := opts.Stage[values.StageDMC]
	sProfile, err := so.WorkflowString(defaults.SectionsDefaultsKey)
	if err != nil {
		return err
	}
	tmoves, err := so.Flag("tmoves")
	if err != nil {
		return err
	}
	locality, err := so.Flag("locality")
	if err != nil {
		return err
	}

	for _, move := range NonlocalMoves(tmoves, locality, opts.System) {
		sections := so.Sections.With("nlmove", move)
		for _, sv := range samplingVariants {
			on, err := so.Flag(sv.flag)
			if err != nil {
				return err
			}
			if !on {
				continue
			}
			variant := entities.LeveledVariant(values.StageDMC, sv.level, move, sv.test)
			loc := so.Location + " " + variant.Label()

			schedule, err := a.sampling.DMC(loc+" dmc_sections", sProfile, sections, variant.Preset())
			if err != nil {
				return err
			}
			req := a.request(as, variant, so, opts.QMCPseudos)
			req.Calculations = schedule
			if err := a.build(ctx, as, req, levelDeps(sv.level)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Assembler) request(as *assembly, variant entities.Variant, so *StageOptions, pseudos []string) StageRequest {
	label := variant.Label()
	return StageRequest{
		Variant:  variant,
		Label:    label,
		Path:     path.Join(as.opts.BasePath, label),
		Location: so.Location,
		Options:  so.Engine.Map(),
		System:   as.opts.System,
		Pseudos:  pseudos,
	}
}

// build resolves deps, invokes the stage builder and registers the result.
func (a *Assembler) build(ctx context.Context, as *assembly, req StageRequest, deps []entities.Dependency) error {
	resolved, err := a.resolver.Resolve(as.opts.Location, req.Label, as.registry, deps)
	if err != nil {
		return err
	}
	req.Dependencies = resolved
	a.logger.Debug("resolved stage", "label", req.Label, "path", req.Path, "dependencies", len(resolved))

	h, err := a.builder.Build(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: failed to build stage %s: %w", as.opts.Location, req.Label, err)
	}
	if err := a.register(as, req.Label, h); err != nil {
		return err
	}
	as.built = append(as.built, h)
	a.logger.Info("built stage", "label", req.Label, "id", h.ID())
	return nil
}

// substitute registers an externally supplied handle in place of building label.
func (a *Assembler) substitute(as *assembly, label string, h entities.StageHandle) error {
	a.logger.Debug("using supplied stage", "label", label, "id", h.ID())
	return a.register(as, label, h)
}

func (a *Assembler) register(as *assembly, label string, h entities.StageHandle) error {
	err := as.registry.Register(label, h)
	if dup, ok := err.(*entities.DuplicateStageError); ok {
		dup.Location = as.opts.Location
	}
	return err
}
