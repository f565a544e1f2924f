package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/qmcchain/internal/domain/defaults"
	"github.com/reglet-dev/qmcchain/internal/domain/entities"
	"github.com/reglet-dev/qmcchain/internal/domain/values"
)

func Test_SamplingBuilder_VMC_Presets(t *testing.T) {
	b := NewSamplingBuilder(defaults.Builtin())

	tests := []struct {
		preset values.Preset
		warmup int
		blocks int
		steps  int
	}{
		{values.PresetProduction, 50, 800, 10},
		{values.PresetReference, 200, 800, 100},
		{values.PresetTest, 10, 20, 4},
	}

	for _, tt := range tests {
		t.Run(tt.preset.String(), func(t *testing.T) {
			schedule, err := b.VMC("loc", "v1", entities.NewBag(), tt.preset)
			require.NoError(t, err)
			require.Len(t, schedule, 1)

			vmc := schedule[0].(entities.VMCSection)
			assert.Equal(t, tt.warmup, vmc.WarmupSteps)
			assert.Equal(t, tt.blocks, vmc.Blocks)
			assert.Equal(t, tt.steps, vmc.Steps)
			assert.Equal(t, 3, vmc.Substeps)
			assert.Equal(t, 0.3, vmc.Timestep)
			assert.Equal(t, -1, vmc.Checkpoint)
			require.NotNil(t, vmc.Walkers)
			assert.Equal(t, 1, *vmc.Walkers)
		})
	}
}

func Test_SamplingBuilder_VMC_PresetPrecedence(t *testing.T) {
	b := NewSamplingBuilder(defaults.Builtin())

	schedule, err := b.VMC("loc", "v1", entities.NewBag(), values.SelectPreset(true, true))
	require.NoError(t, err)
	assert.Equal(t, 20, schedule[0].(entities.VMCSection).Blocks, "test wins over reference")
}

func Test_SamplingBuilder_VMC_OverridesAndErrors(t *testing.T) {
	b := NewSamplingBuilder(defaults.Builtin())

	schedule, err := b.VMC("loc", "v1", entities.NewBag("blocks", float64(64), "timestep", "0.1"), values.PresetProduction)
	require.NoError(t, err)
	vmc := schedule[0].(entities.VMCSection)
	assert.Equal(t, 64, vmc.Blocks)
	assert.Equal(t, 0.1, vmc.Timestep)

	_, err = b.VMC("loc", "v1", entities.NewBag("nlmove", true), values.PresetProduction)
	var unrec *entities.UnrecognizedKeywordsError
	require.ErrorAs(t, err, &unrec)

	calcs := entities.Schedule{entities.VMCSection{Blocks: 1}}
	out, err := b.VMC("loc", "v1", entities.NewBag("vmc_calcs", calcs), values.PresetProduction)
	require.NoError(t, err)
	assert.Equal(t, calcs, out)
}

func Test_SamplingBuilder_DMC_DefaultSchedule(t *testing.T) {
	b := NewSamplingBuilder(defaults.Builtin())

	schedule, err := b.DMC("loc", "v1", entities.NewBag("nlmove", values.MoveTmoves), values.PresetProduction)
	require.NoError(t, err)

	assert.Equal(t, []string{"vmc", "dmc"}, schedule.Kinds())
	vmc := schedule[0].(entities.VMCSection)
	require.NotNil(t, vmc.Samples)
	assert.Equal(t, 2048, *vmc.Samples)
	assert.Nil(t, vmc.SamplesPerThread)
	assert.Equal(t, 30, vmc.WarmupSteps)

	dmc := schedule[1].(entities.DMCSection)
	assert.Equal(t, 200, dmc.Blocks)
	assert.Equal(t, 0.01, dmc.Timestep)
	assert.Equal(t, values.MoveTmoves, dmc.NonlocalMoves)
	assert.Nil(t, dmc.Walkers)
}

func Test_SamplingBuilder_DMC_SamplesPerThreadWinsOverProfile(t *testing.T) {
	b := NewSamplingBuilder(defaults.Builtin())

	schedule, err := b.DMC("loc", "v1", entities.NewBag("nlmove", nil, "vmc_samplesperthread", 16), values.PresetProduction)
	require.NoError(t, err)

	vmc := schedule[0].(entities.VMCSection)
	assert.Nil(t, vmc.Samples)
	require.NotNil(t, vmc.SamplesPerThread)
	assert.Equal(t, 16, *vmc.SamplesPerThread)
}

func Test_SamplingBuilder_DMC_MissingSamples(t *testing.T) {
	p, err := defaults.Builtin().Profile("loc", defaults.KindDMCSections, "v1")
	require.NoError(t, err)
	vals := p.Values()
	delete(vals, "vmc_samples")
	store := defaults.Builtin().Merge(defaults.NewStore().Define(defaults.KindDMCSections, defaults.NewProfile("nosamples", vals)))

	_, err = NewSamplingBuilder(store).DMC("loc", "nosamples", entities.NewBag("nlmove", nil), values.PresetProduction)
	var missing *entities.MissingRequiredError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "vmc_samples", missing.Name)
}

func Test_SamplingBuilder_DMC_TimestepSeriesAndEquilibration(t *testing.T) {
	b := NewSamplingBuilder(defaults.Builtin())

	schedule, err := b.DMC("loc", "v1", entities.NewBag(
		"nlmove", "locality",
		"eq_dmc", true,
		"ntimesteps", 3,
		"timestep", 0.04,
		"walkers", 512,
	), values.PresetTest)
	require.NoError(t, err)

	assert.Equal(t, []string{"vmc", "dmc", "dmc", "dmc", "dmc"}, schedule.Kinds())

	eq := schedule[1].(entities.DMCSection)
	assert.Equal(t, 0.02, eq.Timestep)
	assert.Equal(t, 5, eq.Steps)

	var steps []float64
	for _, c := range schedule[2:] {
		d := c.(entities.DMCSection)
		steps = append(steps, d.Timestep)
		assert.Equal(t, 20, d.Blocks, "test preset blocks")
		assert.Equal(t, 2, d.WarmupSteps)
		assert.Equal(t, values.MoveLocality, d.NonlocalMoves)
		require.NotNil(t, d.Walkers)
		assert.Equal(t, 512, *d.Walkers)
	}
	assert.InDeltaSlice(t, []float64{0.04, 0.02, 0.01}, steps, 1e-12)
}

func Test_SamplingBuilder_DMC_RequiresNlmove(t *testing.T) {
	b := NewSamplingBuilder(defaults.Builtin())

	_, err := b.DMC("loc", "v1", entities.NewBag(), values.PresetProduction)
	var missing *entities.MissingKeywordsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"nlmove"}, missing.Missing)
}

func Test_SamplingBuilder_CalcsDoNotHideUnknownKeys(t *testing.T) {
	b := NewSamplingBuilder(defaults.Builtin())
	calcs := entities.Schedule{entities.VMCSection{Blocks: 1}}

	_, err := b.VMC("loc", "v1", entities.NewBag("vmc_calcs", calcs, "bogus", 1), values.PresetProduction)
	var unrec *entities.UnrecognizedKeywordsError
	require.ErrorAs(t, err, &unrec)
	assert.Equal(t, []string{"bogus"}, unrec.Keys)

	_, err = b.DMC("loc", "v1", entities.NewBag("dmc_calcs", calcs, "bogus", 1), values.PresetProduction)
	require.ErrorAs(t, err, &unrec)
	assert.Equal(t, []string{"bogus"}, unrec.Keys)
}

func Test_SamplingBuilder_DMC_CalcsPassThrough(t *testing.T) {
	b := NewSamplingBuilder(defaults.Builtin())
	calcs := entities.Schedule{entities.VMCSection{Blocks: 1}}

	out, err := b.DMC("loc", "v1", entities.NewBag("dmc_calcs", calcs), values.PresetProduction)
	require.NoError(t, err)
	assert.Equal(t, calcs, out)
}

func Test_SamplingBuilder_DMC_ReferencePreset(t *testing.T) {
	b := NewSamplingBuilder(defaults.Builtin())

	schedule, err := b.DMC("loc", "v1", entities.NewBag("nlmove", nil), values.PresetReference)
	require.NoError(t, err)
	d := schedule[1].(entities.DMCSection)
	assert.Equal(t, 400, d.Blocks)
	assert.Equal(t, values.MoveUnset, d.NonlocalMoves)
}
