package values

import "fmt"

// StageKind identifies the kind of computational stage in a pipeline.
type StageKind string

const (
	// StageGroundState is the plane-wave ground-state calculation.
	StageGroundState StageKind = "scf"
	// StageOrbitalConversion converts ground-state orbitals for the QMC engine.
	StageOrbitalConversion StageKind = "p2q"
	// StageOptimization optimizes correlation factors.
	StageOptimization StageKind = "opt"
	// StageVMC is variational sampling.
	StageVMC StageKind = "vmc"
	// StageDMC is diffusion sampling.
	StageDMC StageKind = "dmc"
)

// StageKinds lists every kind in dependency order.
var StageKinds = []StageKind{
	StageGroundState,
	StageOrbitalConversion,
	StageOptimization,
	StageVMC,
	StageDMC,
}

// Order returns the position of the kind in the fixed build order.
// Earlier kinds are built first. Unknown kinds return -1.
//
// Order: scf (0) < p2q (1) < opt (2) < vmc (3) < dmc (4)
func (k StageKind) Order() int {
	for i, kind := range StageKinds {
		if kind == k {
			return i
		}
	}
	return -1
}

// IsQMC returns true for stages run by the QMC engine.
func (k StageKind) IsQMC() bool {
	return k == StageOptimization || k == StageVMC || k == StageDMC
}

// Validate returns an error if the kind is unknown.
func (k StageKind) Validate() error {
	if k.Order() < 0 {
		return fmt.Errorf("invalid stage kind: %s", k)
	}
	return nil
}

// String returns the string representation
func (k StageKind) String() string {
	return string(k)
}

// FactorLevel is the correlation-factor level a stage is built at.
// Level 0 uses no correlation factor, level 2 adds one- and two-body
// terms, level 3 adds the three-body term.
type FactorLevel int

const (
	LevelJ0 FactorLevel = 0
	LevelJ2 FactorLevel = 2
	LevelJ3 FactorLevel = 3
)

// String returns the label fragment for the level, e.g. "J2".
func (l FactorLevel) String() string {
	return fmt.Sprintf("J%d", int(l))
}
