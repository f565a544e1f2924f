package entities

import (
	"strings"

	"github.com/reglet-dev/qmcchain/internal/domain/values"
)

// Artifact relations a stage can supply downstream.
const (
	RelationOrbitals = "orbitals"
	RelationJastrow  = "jastrow"
)

// StageHandle is the opaque result of a stage builder.
type StageHandle interface {
	// ID returns a stable identity. Two handles with the same ID are the same stage.
	ID() string
	// Label returns the registry label the handle was built under.
	Label() string
	// Relations lists the artifact relations the stage can supply.
	Relations() []string
	// Variant returns the workflow variant tag.
	Variant() Variant
}

// Variant identifies one alternative build of a stage kind.
type Variant struct {
	Kind values.StageKind
	// Level is meaningful only when Leveled is true.
	Level   values.FactorLevel
	Leveled bool
	Move    values.NonlocalMove
	Test    bool
}

// StageVariant returns the variant of a stage kind that has no levels (scf, p2q).
func StageVariant(kind values.StageKind) Variant {
	return Variant{Kind: kind}
}

// LeveledVariant returns a variant at a correlation-factor level.
func LeveledVariant(kind values.StageKind, level values.FactorLevel, move values.NonlocalMove, test bool) Variant {
	return Variant{Kind: kind, Level: level, Leveled: true, Move: move, Test: test}
}

// Label derives the deterministic registry label, e.g. "dmcJ2_tm_test".
func (v Variant) Label() string {
	var sb strings.Builder
	sb.WriteString(string(v.Kind))
	if v.Leveled {
		sb.WriteString(v.Level.String())
	}
	sb.WriteString(v.Move.Suffix())
	if v.Test {
		sb.WriteString("_test")
	}
	return sb.String()
}

// Preset returns the sampling preset implied by the variant.
func (v Variant) Preset() values.Preset {
	return values.SelectPreset(v.Test, v.Leveled && v.Level == values.LevelJ0)
}

// Dependency declares that a stage consumes relation from producer.
type Dependency struct {
	Producer string
	Relation string
}

// DependsOn is shorthand for building a Dependency.
func DependsOn(producer, relation string) Dependency {
	return Dependency{Producer: producer, Relation: relation}
}

// ResolvedDependency is a dependency bound to a registered handle.
type ResolvedDependency struct {
	Handle   StageHandle
	Relation string
}
