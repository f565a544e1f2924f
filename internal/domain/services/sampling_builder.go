package services

import (
	"github.com/reglet-dev/qmcchain/internal/domain/defaults"
	"github.com/reglet-dev/qmcchain/internal/domain/entities"
	"github.com/reglet-dev/qmcchain/internal/domain/values"
)

// SamplingBuilder resolves variational and diffusion sampling schedules.
type SamplingBuilder struct {
	store *defaults.Store
}

// NewSamplingBuilder creates a new sampling schedule builder.
func NewSamplingBuilder(store *defaults.Store) *SamplingBuilder {
	return &SamplingBuilder{store: store}
}

var vmcResolved = []string{
	"walkers", "warmupsteps", "blocks", "steps", "substeps", "timestep", "checkpoint",
	"J0_warmupsteps", "J0_blocks", "J0_steps",
	"test_warmupsteps", "test_blocks", "test_steps",
}

// VMC builds a single variational section whose warmup, block and step
// counts come from the preset. A supplied vmc_calcs is returned as is.
func (b *SamplingBuilder) VMC(location, profileName string, bag entities.Bag, preset values.Preset) (entities.Schedule, error) {
	part, rest, err := Partition(location, bag, KeySet{Stage: "vmc_sections", Optional: defaults.VMCSectionKeys})
	if err != nil {
		return nil, err
	}
	if err := RejectLeftover(location, rest); err != nil {
		return nil, err
	}
	if calcs := part.Get("vmc_calcs"); calcs.IsSet() {
		return passThrough(calcs.Get()), nil
	}

	profile, err := b.store.Profile(location, defaults.KindVMCSections, profileName)
	if err != nil {
		return nil, err
	}
	opts, err := NewDefaultContext(profile, location).ResolveAll(part, vmcResolved)
	if err != nil {
		return nil, err
	}

	prefix := presetPrefix(preset)
	section := map[string]any{
		"walkers":     opts["walkers"],
		"warmupsteps": opts[prefix+"warmupsteps"],
		"blocks":      opts[prefix+"blocks"],
		"steps":       opts[prefix+"steps"],
		"substeps":    opts["substeps"],
		"timestep":    opts["timestep"],
		"checkpoint":  opts["checkpoint"],
	}
	var vmc entities.VMCSection
	if err := decodeSection(location, section, &vmc); err != nil {
		return nil, err
	}
	return entities.Schedule{vmc}, nil
}

// dmcStrict are resolved against the profile and must be defined there.
var dmcStrict = []string{
	"warmupsteps", "blocks", "steps", "timestep", "checkpoint",
	"vmc_walkers", "vmc_warmupsteps", "vmc_blocks", "vmc_steps",
	"vmc_substeps", "vmc_timestep", "vmc_checkpoint",
	"eq_dmc", "eq_warmupsteps", "eq_blocks", "eq_steps", "eq_timestep", "eq_checkpoint",
	"J0_warmupsteps", "J0_blocks", "J0_steps", "J0_checkpoint",
	"test_warmupsteps", "test_blocks", "test_steps",
	"ntimesteps", "timestep_factor",
}

// dmcLenient may stay unset.
var dmcLenient = []string{"walkers", "vmc_samples", "vmc_samplesperthread"}

// DMC builds a diffusion schedule: a variational section that generates the
// walker population, an optional equilibration section, then ntimesteps
// diffusion sections with the timestep multiplied by timestep_factor each step.
// nlmove is required. A supplied dmc_calcs is returned as is, after unknown
// keys are rejected like for VMC.
func (b *SamplingBuilder) DMC(location, profileName string, bag entities.Bag, preset values.Preset) (entities.Schedule, error) {
	known := append(append([]string(nil), defaults.DMCSectionKeys...), defaults.DMCSectionRequired...)
	part, rest, err := Partition(location, bag, KeySet{Stage: "dmc_sections", Optional: known})
	if err != nil {
		return nil, err
	}
	if err := RejectLeftover(location, rest); err != nil {
		return nil, err
	}
	if calcs := part.Get("dmc_calcs"); calcs.IsSet() {
		return passThrough(calcs.Get()), nil
	}
	if _, _, err := Partition(location, part, KeySet{
		Stage:    "dmc_sections",
		Required: defaults.DMCSectionRequired,
		Optional: defaults.DMCSectionKeys,
	}); err != nil {
		return nil, err
	}

	profile, err := b.store.Profile(location, defaults.KindDMCSections, profileName)
	if err != nil {
		return nil, err
	}
	dc := NewDefaultContext(profile, location)
	opts, err := dc.ResolveAll(part, dmcStrict)
	if err != nil {
		return nil, err
	}
	// A supplied per-thread count replaces the profile's total sample count.
	samples := map[string]any{}
	switch {
	case part.Has("vmc_samples"):
		samples["samples"] = part.Get("vmc_samples").Get()
	case part.Has("vmc_samplesperthread"):
		samples["samplesperthread"] = part.Get("vmc_samplesperthread").Get()
	default:
		lenient, err := dc.Lenient().ResolveAll(part, dmcLenient)
		if err != nil {
			return nil, err
		}
		v, ok := lenient["vmc_samples"]
		if !ok {
			v, ok = lenient["vmc_samplesperthread"]
			if !ok {
				return nil, &entities.MissingRequiredError{
					Location: location,
					Name:     "vmc_samples",
					Message:  "vmc samples (dmc walkers) not specified, provide vmc_samples or vmc_samplesperthread",
				}
			}
			samples["samplesperthread"] = v
		} else {
			samples["samples"] = v
		}
	}
	walkers, err := dc.Lenient().Default("walkers", part.Get("walkers"))
	if err != nil {
		return nil, err
	}

	move, err := values.ParseNonlocalMove(part.Get("nlmove").Get())
	if err != nil {
		return nil, entities.NewInvalidOptionError(location, "nlmove", part.Get("nlmove").Get(), err)
	}

	vmcSection := map[string]any{
		"walkers":     opts["vmc_walkers"],
		"warmupsteps": opts["vmc_warmupsteps"],
		"blocks":      opts["vmc_blocks"],
		"steps":       opts["vmc_steps"],
		"substeps":    opts["vmc_substeps"],
		"timestep":    opts["vmc_timestep"],
		"checkpoint":  opts["vmc_checkpoint"],
	}
	for k, v := range samples {
		vmcSection[k] = v
	}
	var vmc entities.VMCSection
	if err := decodeSection(location, vmcSection, &vmc); err != nil {
		return nil, err
	}
	schedule := entities.Schedule{vmc}

	eq, err := toBool(location, "eq_dmc", opts["eq_dmc"])
	if err != nil {
		return nil, err
	}
	if eq {
		section, err := dmcSection(location, map[string]any{
			"walkers":     walkers.Get(),
			"warmupsteps": opts["eq_warmupsteps"],
			"blocks":      opts["eq_blocks"],
			"steps":       opts["eq_steps"],
			"timestep":    opts["eq_timestep"],
			"checkpoint":  opts["eq_checkpoint"],
		}, move)
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, section)
	}

	ntimesteps, err := toInt(location, "ntimesteps", opts["ntimesteps"])
	if err != nil {
		return nil, err
	}
	if ntimesteps < 1 {
		return nil, entities.NewInvalidOptionError(location, "ntimesteps", ntimesteps, nil)
	}
	factor, err := toFloat(location, "timestep_factor", opts["timestep_factor"])
	if err != nil {
		return nil, err
	}
	timestep, err := toFloat(location, "timestep", opts["timestep"])
	if err != nil {
		return nil, err
	}

	prefix := presetPrefix(preset)
	checkpoint := opts["checkpoint"]
	if preset == values.PresetReference {
		checkpoint = opts["J0_checkpoint"]
	}
	for i := 0; i < ntimesteps; i++ {
		section, err := dmcSection(location, map[string]any{
			"walkers":     walkers.Get(),
			"warmupsteps": opts[prefix+"warmupsteps"],
			"blocks":      opts[prefix+"blocks"],
			"steps":       opts[prefix+"steps"],
			"timestep":    timestep,
			"checkpoint":  checkpoint,
		}, move)
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, section)
		timestep *= factor
	}
	return schedule, nil
}

func dmcSection(location string, m map[string]any, move values.NonlocalMove) (entities.DMCSection, error) {
	var s entities.DMCSection
	if err := decodeSection(location, m, &s); err != nil {
		return s, err
	}
	s.NonlocalMoves = move
	return s, nil
}

// presetPrefix returns the option prefix holding the counts for a preset.
func presetPrefix(p values.Preset) string {
	switch p {
	case values.PresetTest:
		return "test_"
	case values.PresetReference:
		return "J0_"
	default:
		return ""
	}
}

// decodeSection decodes resolved options into a typed section. Nil values
// are dropped so optional pointer fields stay nil.
func decodeSection(location string, m map[string]any, out any) error {
	clean := make(map[string]any, len(m))
	for k, v := range m {
		if v != nil {
			clean[k] = v
		}
	}
	if err := decodeWeak(clean, out); err != nil {
		return entities.NewInvalidOptionError(location, "section", m, err)
	}
	return nil
}
