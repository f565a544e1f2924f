package services

import (
	"context"
	"fmt"
	"math"
	"path"

	"github.com/reglet-dev/qmcchain/internal/domain/defaults"
	"github.com/reglet-dev/qmcchain/internal/domain/entities"
	"github.com/reglet-dev/qmcchain/internal/domain/repositories"
	"github.com/reglet-dev/qmcchain/internal/domain/values"
)

// Sweep locations and default directory names.
const (
	EcutScanLocation            = "ecut_scan"
	SystemScanLocation          = "system_scan"
	SystemParameterScanLocation = "system_parameter_scan"

	ecutScanDir            = "ecut_scan"
	systemScanDir          = "system_scan"
	systemParameterScanDir = "system_param_scan"
)

// ecutTolerance is the match window when locating the shared cutoff.
const ecutTolerance = 1e-2

// SweepPoint is one assembled point of a sweep.
type SweepPoint struct {
	Key      string
	Dir      string
	Registry *entities.Registry
}

// SweepResult holds sweep points in build order.
type SweepResult struct {
	points []SweepPoint
	index  map[string]int
}

func newSweepResult(n int) *SweepResult {
	return &SweepResult{points: make([]SweepPoint, 0, n), index: make(map[string]int, n)}
}

func (r *SweepResult) add(p SweepPoint) {
	r.index[p.Key] = len(r.points)
	r.points = append(r.points, p)
}

// Get returns the registry of the point with key.
func (r *SweepResult) Get(key string) (*entities.Registry, bool) {
	i, ok := r.index[key]
	if !ok {
		return nil, false
	}
	return r.points[i].Registry, true
}

// Keys returns point keys in build order.
func (r *SweepResult) Keys() []string {
	out := make([]string, len(r.points))
	for i, p := range r.points {
		out[i] = p.Key
	}
	return out
}

// Points returns every point in build order.
func (r *SweepResult) Points() []SweepPoint {
	out := make([]SweepPoint, len(r.points))
	copy(out, r.points)
	return out
}

// Len returns the number of points.
func (r *SweepResult) Len() int {
	return len(r.points)
}

// EcutScanRequest sweeps the ground-state plane-wave cutoff.
type EcutScanRequest struct {
	Ecuts    []float64
	BasePath string
	// DirName defaults to "ecut_scan".
	DirName string
	// SameJastrow shares the optimized factors of one point with every other
	// point. Nil means true.
	SameJastrow *bool
	// EcutJastrow selects the shared point. Nil means the largest cutoff.
	EcutJastrow *float64
	System      entities.SystemDescription
	Stages      repositories.StageRepository
	Options     entities.Bag
}

// SystemScanRequest sweeps a list of externally built systems.
type SystemScanRequest struct {
	BasePath string
	// DirName defaults to "system_scan".
	DirName string
	Systems []entities.SystemDescription
	SysDirs []string
	// SysKeys defaults to SysDirs.
	SysKeys     []string
	SameJastrow bool
	// JastrowKey names the shared point; required when SameJastrow is set.
	JastrowKey string
	Stages     repositories.StageRepository
	Options    entities.Bag
}

// SystemParameterScanRequest sweeps one generator parameter.
type SystemParameterScanRequest struct {
	BasePath string
	// DirName defaults to "system_param_scan".
	DirName   string
	Generator SystemGenerator
	Variable  string
	Values    []any
	// Fixed parameters are passed to the generator on every point.
	Fixed       map[string]any
	SameJastrow bool
	// JastrowKey names the shared point by DirName of its value.
	JastrowKey string
	Stages     repositories.StageRepository
	Options    entities.Bag
}

// SweepDriver repeats pipeline assembly across sweep points. When factors are
// shared the designated point is built first and its optJ2 and optJ3 handles
// are fed to every later point as J2_source and J3_source.
type SweepDriver struct {
	assembler *Assembler
}

// NewSweepDriver creates a sweep driver over assembler.
func NewSweepDriver(assembler *Assembler) *SweepDriver {
	return &SweepDriver{assembler: assembler}
}

// EcutScan assembles one pipeline per cutoff under basepath/dirname/ecut_<value>.
func (d *SweepDriver) EcutScan(ctx context.Context, req EcutScanRequest) (*SweepResult, error) {
	loc := EcutScanLocation
	if len(req.Ecuts) == 0 {
		return nil, entities.NewMissingRequiredError(loc, "ecuts")
	}
	if req.BasePath == "" {
		return nil, entities.NewMissingRequiredError(loc, "basepath")
	}
	dir := orDefault(req.DirName, ecutScanDir)

	opts, err := ProcessChainOptions(loc, d.assembler.store, ChainRequest{
		System:       req.System,
		Stages:       req.Stages,
		BasePath:     req.BasePath,
		Options:      req.Options,
		DefaultsKind: defaults.KindEcutScan,
	})
	if err != nil {
		return nil, err
	}
	if !opts.IsEnabled(values.StageGroundState) {
		return nil, &entities.MissingRequiredError{
			Location: loc,
			Name:     "scf_inputs",
			Message:  "cannot perform ecut scan, no inputs given for scf calculations",
		}
	}

	share := req.SameJastrow == nil || *req.SameJastrow
	ecuts := append([]float64(nil), req.Ecuts...)
	if share {
		if ecuts, err = sharedEcutFirst(loc, ecuts, req.EcutJastrow); err != nil {
			return nil, err
		}
	}

	points := make([]sweepInput, 0, len(ecuts))
	for _, ecut := range ecuts {
		name, err := ecutName(loc, ecut)
		if err != nil {
			return nil, err
		}
		point := opts.WithEngineOption(values.StageGroundState, "ecutwfc", ecut).
			WithBasePath(path.Join(req.BasePath, dir, "ecut_"+name))
		points = append(points, sweepInput{key: name, dir: point.BasePath, opts: point})
	}
	return d.run(ctx, loc, points, share)
}

// sharedEcutFirst moves the shared cutoff to the front.
func sharedEcutFirst(location string, ecuts []float64, want *float64) ([]float64, error) {
	target := ecuts[0]
	if want != nil {
		target = *want
	} else {
		for _, e := range ecuts[1:] {
			target = math.Max(target, e)
		}
	}
	for i, e := range ecuts {
		if math.Abs(target-e) < ecutTolerance {
			out := make([]float64, 0, len(ecuts))
			out = append(out, e)
			out = append(out, ecuts[:i]...)
			return append(out, ecuts[i+1:]...), nil
		}
	}
	available := make([]string, len(ecuts))
	for i, e := range ecuts {
		available[i], _ = ecutName(location, e)
	}
	return nil, entities.NewSharedPointNotFoundError(location, target, available)
}

// SystemScan assembles one pipeline per system under basepath/dirname/sysdir.
func (d *SweepDriver) SystemScan(ctx context.Context, req SystemScanRequest) (*SweepResult, error) {
	return d.systemScan(ctx, SystemScanLocation, req)
}

func (d *SweepDriver) systemScan(ctx context.Context, loc string, req SystemScanRequest) (*SweepResult, error) {
	if req.BasePath == "" {
		return nil, entities.NewMissingRequiredError(loc, "basepath")
	}
	if len(req.Systems) == 0 {
		return nil, &entities.MissingRequiredError{Location: loc, Name: "systems", Message: "no systems provided"}
	}
	keys := req.SysKeys
	if keys == nil {
		keys = req.SysDirs
	}
	if len(req.SysDirs) != len(req.Systems) {
		return nil, entities.NewDimensionMismatchError(loc, "sysdirs", len(req.SysDirs), len(req.Systems))
	}
	if len(keys) != len(req.Systems) {
		return nil, entities.NewDimensionMismatchError(loc, "syskeys", len(keys), len(req.Systems))
	}
	dir := orDefault(req.DirName, systemScanDir)

	order := make([]int, len(req.Systems))
	for i := range order {
		order[i] = i
	}
	if req.SameJastrow {
		if req.JastrowKey == "" {
			return nil, &entities.MissingRequiredError{
				Location: loc,
				Name:     "jastrow_key",
				Message:  "requested same jastrow across scan but no system key was provided",
			}
		}
		shared := -1
		for i, k := range keys {
			if k == req.JastrowKey {
				shared = i
				break
			}
		}
		if shared < 0 {
			return nil, entities.NewSharedPointNotFoundError(loc, req.JastrowKey, append([]string(nil), keys...))
		}
		order = append(order[:0], shared)
		for i := range req.Systems {
			if i != shared {
				order = append(order, i)
			}
		}
	}

	points := make([]sweepInput, 0, len(order))
	for _, i := range order {
		opts, err := ProcessChainOptions(loc, d.assembler.store, ChainRequest{
			System:   req.Systems[i],
			Stages:   req.Stages,
			BasePath: path.Join(req.BasePath, dir, req.SysDirs[i]),
			Options:  req.Options,
		})
		if err != nil {
			return nil, err
		}
		points = append(points, sweepInput{key: keys[i], dir: opts.BasePath, opts: opts})
	}
	return d.run(ctx, loc, points, req.SameJastrow)
}

// SystemParameterScan generates one system per value of Variable and
// delegates to SystemScan. Points are keyed by DirName(value) and placed in
// variable_<DirName(value)>.
func (d *SweepDriver) SystemParameterScan(ctx context.Context, req SystemParameterScanRequest) (*SweepResult, error) {
	loc := SystemParameterScanLocation
	if req.BasePath == "" {
		return nil, entities.NewMissingRequiredError(loc, "basepath")
	}
	if req.Generator == nil {
		return nil, entities.NewMissingRequiredError(loc, "generator")
	}
	if req.Variable == "" {
		return nil, entities.NewMissingRequiredError(loc, "variable")
	}
	if len(req.Values) == 0 {
		return nil, entities.NewMissingRequiredError(loc, "values")
	}

	systems := make([]entities.SystemDescription, 0, len(req.Values))
	dirs := make([]string, 0, len(req.Values))
	keys := make([]string, 0, len(req.Values))
	for _, v := range req.Values {
		name, err := dirName(loc, v)
		if err != nil {
			return nil, err
		}
		params := make(map[string]any, len(req.Fixed)+1)
		for k, fv := range req.Fixed {
			params[k] = fv
		}
		params[req.Variable] = v

		system, err := req.Generator.Generate(params)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate system for %s=%v: %w", loc, req.Variable, v, err)
		}
		systems = append(systems, system)
		dirs = append(dirs, req.Variable+"_"+name)
		keys = append(keys, name)
	}

	return d.systemScan(ctx, loc, SystemScanRequest{
		BasePath:    req.BasePath,
		DirName:     orDefault(req.DirName, systemParameterScanDir),
		Systems:     systems,
		SysDirs:     dirs,
		SysKeys:     keys,
		SameJastrow: req.SameJastrow,
		JastrowKey:  req.JastrowKey,
		Stages:      req.Stages,
		Options:     req.Options,
	})
}

type sweepInput struct {
	key  string
	dir  string
	opts *ChainOptions
}

// run assembles points in order. With share set, the optimized factors of
// each point become the sources of the following ones.
func (d *SweepDriver) run(ctx context.Context, loc string, points []sweepInput, share bool) (*SweepResult, error) {
	result := newSweepResult(len(points))
	seen := make(map[string]bool, len(points))
	for _, p := range points {
		if seen[p.key] {
			return nil, entities.NewInvalidOptionError(loc, "key", p.key, fmt.Errorf("duplicate sweep key"))
		}
		seen[p.key] = true
	}

	var j2, j3 entities.StageHandle
	for _, p := range points {
		opts := p.opts.WithSources(j2, j3)
		d.assembler.logger.Info("assembling sweep point", "sweep", loc, "key", p.key, "path", p.dir)

		reg, err := d.assembler.Assemble(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("%s point %s: %w", loc, p.key, err)
		}
		result.add(SweepPoint{Key: p.key, Dir: p.dir, Registry: reg})
		if share {
			if h, ok := reg.Get("optJ2"); ok {
				j2 = h
			}
			if h, ok := reg.Get("optJ3"); ok {
				j3 = h
			}
		}
	}
	return result, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
