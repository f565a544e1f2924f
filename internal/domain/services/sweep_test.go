package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

func (b *recordingBuilder) count(label string) int {
	n := 0
	for _, r := range b.requests {
		if r.Label == label {
			n++
		}
	}
	return n
}

func sweepOptions() entities.Bag {
	return entities.NewBag(
		"dft_pseudos", []string{"C.upf"},
		"qmc_pseudos", []string{"C.ccECP.xml"},
		"opt_inputs", map[string]any{"J2_prod": true},
		"vmc_inputs", map[string]any{"J2_prod": true},
	)
}

func Test_SweepDriver_EcutScan_SharedFactorBuiltOnce(t *testing.T) {
	builder := &recordingBuilder{}
	sink := &sliceSink{}
	driver := NewSweepDriver(newTestAssembler(builder))

	result, err := driver.EcutScan(context.Background(), EcutScanRequest{
		Ecuts:    []float64{50, 100, 75},
		BasePath: "runs",
		System:   periodic(),
		Stages:   sink,
		Options:  sweepOptions(),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"100", "50", "75"}, result.Keys())
	assert.Equal(t, 1, builder.count("optJ2"))
	assert.Equal(t, 3, builder.count("scf"))

	first, ok := result.Get("100")
	require.True(t, ok)
	shared, ok := first.Get("optJ2")
	require.True(t, ok)
	for _, key := range result.Keys() {
		reg, _ := result.Get(key)
		h, ok := reg.Get("optJ2")
		require.True(t, ok, key)
		assert.Same(t, shared, h, key)
	}

	points := result.Points()
	assert.Equal(t, "runs/ecut_scan/ecut_100", points[0].Dir)
	assert.Equal(t, "runs/ecut_scan/ecut_50", points[1].Dir)

	scf := builder.request(t, "scf")
	assert.Equal(t, 100.0, scf.Options["ecutwfc"])
	assert.Equal(t, "runs/ecut_scan/ecut_100/scf", scf.Path)

	// One batch per point; the shared stage is recorded once.
	assert.Equal(t, 3, sink.appends)
	assert.Equal(t, 1, len(mustFindLabel(t, sink, "optJ2")))
}

func mustFindLabel(t *testing.T, sink *sliceSink, label string) []entities.StageHandle {
	t.Helper()
	out, err := sink.FindByLabel(context.Background(), label)
	require.NoError(t, err)
	return out
}

func Test_SweepDriver_EcutScan_SharedPointSelection(t *testing.T) {
	near := 75.004
	missing := 60.0

	driver := NewSweepDriver(newTestAssembler(&recordingBuilder{}))
	result, err := driver.EcutScan(context.Background(), EcutScanRequest{
		Ecuts:       []float64{50, 100, 75},
		EcutJastrow: &near,
		BasePath:    "runs",
		DirName:     "cutoffs",
		System:      periodic(),
		Stages:      &sliceSink{},
		Options:     sweepOptions(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"75", "50", "100"}, result.Keys())
	assert.Equal(t, "runs/cutoffs/ecut_75", result.Points()[0].Dir)

	_, err = driver.EcutScan(context.Background(), EcutScanRequest{
		Ecuts:       []float64{50, 100, 75},
		EcutJastrow: &missing,
		BasePath:    "runs",
		System:      periodic(),
		Stages:      &sliceSink{},
		Options:     sweepOptions(),
	})
	var notFound *entities.SharedPointNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, EcutScanLocation, notFound.Location)
	assert.Equal(t, []string{"50", "100", "75"}, notFound.Available)
}

func Test_SweepDriver_EcutScan_Independent(t *testing.T) {
	builder := &recordingBuilder{}
	off := false

	result, err := NewSweepDriver(newTestAssembler(builder)).EcutScan(context.Background(), EcutScanRequest{
		Ecuts:       []float64{50, 100, 75},
		SameJastrow: &off,
		BasePath:    "runs",
		System:      periodic(),
		Stages:      &sliceSink{},
		Options:     sweepOptions(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"50", "100", "75"}, result.Keys())
	assert.Equal(t, 3, builder.count("optJ2"))
}

func Test_SweepDriver_EcutScan_Errors(t *testing.T) {
	driver := NewSweepDriver(newTestAssembler(&recordingBuilder{}))
	ctx := context.Background()
	var missing *entities.MissingRequiredError

	_, err := driver.EcutScan(ctx, EcutScanRequest{BasePath: "runs", System: periodic(), Stages: &sliceSink{}})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "ecuts", missing.Name)

	_, err = driver.EcutScan(ctx, EcutScanRequest{Ecuts: []float64{50}, System: periodic(), Stages: &sliceSink{}})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "basepath", missing.Name)

	_, err = driver.EcutScan(ctx, EcutScanRequest{
		Ecuts:    []float64{50},
		BasePath: "runs",
		System:   periodic(),
		Stages:   &sliceSink{},
		Options:  sweepOptions().With("scf", false),
	})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "scf_inputs", missing.Name)
}

func Test_SweepDriver_SystemScan(t *testing.T) {
	builder := &recordingBuilder{}
	sink := &sliceSink{}
	driver := NewSweepDriver(newTestAssembler(builder))

	result, err := driver.SystemScan(context.Background(), SystemScanRequest{
		BasePath:    "runs",
		Systems:     []entities.SystemDescription{periodic(), molecule()},
		SysDirs:     []string{"diamond", "water"},
		SysKeys:     []string{"C", "H2O"},
		SameJastrow: true,
		JastrowKey:  "H2O",
		Stages:      sink,
		Options:     sweepOptions().With("scf", true).With("p2q", true),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"H2O", "C"}, result.Keys())
	assert.Equal(t, "runs/system_scan/water", result.Points()[0].Dir)
	assert.Equal(t, 1, builder.count("optJ2"))
	assert.Equal(t, "runs/system_scan/water/optJ2", builder.request(t, "optJ2").Path)
	assert.Equal(t, "h2o", builder.request(t, "optJ2").System.(*entities.System).Name)
}

func Test_SweepDriver_SystemScan_KeysDefaultToDirs(t *testing.T) {
	result, err := NewSweepDriver(newTestAssembler(&recordingBuilder{})).SystemScan(context.Background(), SystemScanRequest{
		BasePath: "runs",
		Systems:  []entities.SystemDescription{periodic(), molecule()},
		SysDirs:  []string{"diamond", "water"},
		Stages:   &sliceSink{},
		Options:  sweepOptions().With("scf", true).With("p2q", true),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"diamond", "water"}, result.Keys())
}

func Test_SweepDriver_SystemScan_Errors(t *testing.T) {
	driver := NewSweepDriver(newTestAssembler(&recordingBuilder{}))
	ctx := context.Background()
	two := []entities.SystemDescription{periodic(), molecule()}

	var missing *entities.MissingRequiredError
	_, err := driver.SystemScan(ctx, SystemScanRequest{BasePath: "runs", Stages: &sliceSink{}})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "systems", missing.Name)

	var mismatch *entities.DimensionMismatchError
	_, err = driver.SystemScan(ctx, SystemScanRequest{BasePath: "runs", Systems: two, SysDirs: []string{"a"}})
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "sysdirs", mismatch.Dimension)
	assert.Equal(t, 1, mismatch.Got)
	assert.Equal(t, 2, mismatch.Want)

	_, err = driver.SystemScan(ctx, SystemScanRequest{BasePath: "runs", Systems: two, SysDirs: []string{"a", "b"}, SysKeys: []string{"a", "b", "c"}})
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "syskeys", mismatch.Dimension)

	_, err = driver.SystemScan(ctx, SystemScanRequest{BasePath: "runs", Systems: two, SysDirs: []string{"a", "b"}, SameJastrow: true})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "jastrow_key", missing.Name)

	var notFound *entities.SharedPointNotFoundError
	_, err = driver.SystemScan(ctx, SystemScanRequest{BasePath: "runs", Systems: two, SysDirs: []string{"a", "b"}, SameJastrow: true, JastrowKey: "c"})
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "c", notFound.Wanted)

	var invalid *entities.InvalidOptionError
	_, err = driver.SystemScan(ctx, SystemScanRequest{
		BasePath: "runs",
		Systems:  two,
		SysDirs:  []string{"a", "a"},
		Stages:   &sliceSink{},
		Options:  sweepOptions().With("scf", true).With("p2q", true),
	})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "a", invalid.Value)
}

type fakeGenerator struct {
	calls []map[string]any
	err   error
}

func (g *fakeGenerator) Generate(params map[string]any) (entities.SystemDescription, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.calls = append(g.calls, params)
	return &entities.System{Name: fmt.Sprint(params["a"]), Pseudized: true}, nil
}

func Test_SweepDriver_SystemParameterScan(t *testing.T) {
	gen := &fakeGenerator{}
	builder := &recordingBuilder{}

	result, err := NewSweepDriver(newTestAssembler(builder)).SystemParameterScan(context.Background(), SystemParameterScanRequest{
		BasePath:  "runs",
		Generator: gen,
		Variable:  "a",
		Values:    []any{3.5, []int{1, 2, 3}},
		Fixed:     map[string]any{"units": "A"},
		Stages:    &sliceSink{},
		Options:   sweepOptions().With("scf", true).With("p2q", true),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"3.5", "1_2_3"}, result.Keys())
	points := result.Points()
	assert.Equal(t, "runs/system_param_scan/a_3.5", points[0].Dir)
	assert.Equal(t, "runs/system_param_scan/a_1_2_3", points[1].Dir)

	require.Len(t, gen.calls, 2)
	assert.Equal(t, map[string]any{"a": 3.5, "units": "A"}, gen.calls[0])
	assert.Equal(t, 2, builder.count("optJ2"))
}

func Test_SweepDriver_SystemParameterScan_IntAndFloatPointsAreDistinct(t *testing.T) {
	result, err := NewSweepDriver(newTestAssembler(&recordingBuilder{})).SystemParameterScan(context.Background(), SystemParameterScanRequest{
		BasePath:  "runs",
		Generator: &fakeGenerator{},
		Variable:  "a",
		Values:    []any{2, 2.0},
		Stages:    &sliceSink{},
		Options:   sweepOptions().With("scf", true).With("p2q", true),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"2", "2.0"}, result.Keys())
	assert.Equal(t, "runs/system_param_scan/a_2.0", result.Points()[1].Dir)
}

func Test_SweepDriver_SystemParameterScan_Errors(t *testing.T) {
	driver := NewSweepDriver(newTestAssembler(&recordingBuilder{}))
	ctx := context.Background()

	var unnamable *entities.UnnamableValueError
	_, err := driver.SystemParameterScan(ctx, SystemParameterScanRequest{
		BasePath:  "runs",
		Generator: &fakeGenerator{},
		Variable:  "a",
		Values:    []any{map[string]int{"x": 1}},
	})
	require.ErrorAs(t, err, &unnamable)
	assert.Equal(t, SystemParameterScanLocation, unnamable.Location)

	boom := errors.New("bad lattice")
	_, err = driver.SystemParameterScan(ctx, SystemParameterScanRequest{
		BasePath:  "runs",
		Generator: &fakeGenerator{err: boom},
		Variable:  "a",
		Values:    []any{1.0},
	})
	require.ErrorIs(t, err, boom)

	var missing *entities.MissingRequiredError
	_, err = driver.SystemParameterScan(ctx, SystemParameterScanRequest{BasePath: "runs", Variable: "a", Values: []any{1}})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "generator", missing.Name)
}
