// Package dto contains data transfer objects for application layer use cases.
package dto

import (
	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

// Request kinds.
const (
	KindChain               = "chain"
	KindEcutScan            = "ecut_scan"
	KindSystemScan          = "system_scan"
	KindSystemParameterScan = "system_parameter_scan"
)

// RequestKinds lists every accepted request kind.
var RequestKinds = []string{KindChain, KindEcutScan, KindSystemScan, KindSystemParameterScan}

// PlanRequest encapsulates all inputs needed to plan a pipeline.
type PlanRequest struct {
	RequestPath string
	// ProfilePaths are profile files merged over the builtin profiles, in order.
	ProfilePaths []string
	Metadata     RequestMetadata
}

// CheckRequest encapsulates the inputs of a validation-only run.
type CheckRequest struct {
	RequestPath  string
	ProfilePaths []string
}

// RequestMetadata contains metadata for request tracking.
type RequestMetadata struct {
	// RequestID uniquely identifies this request
	RequestID string
}

// PipelineRequest is a decoded request document.
type PipelineRequest struct {
	// Kind selects the entry point; empty means chain.
	Kind     string           `json:"kind,omitempty" yaml:"kind,omitempty" mapstructure:"kind"`
	BasePath string           `json:"basepath" yaml:"basepath" mapstructure:"basepath"`
	System   *entities.System `json:"system,omitempty" yaml:"system,omitempty" mapstructure:"system"`
	// Defaults names the chain defaults profile; empty means v1.
	Defaults string         `json:"defaults,omitempty" yaml:"defaults,omitempty" mapstructure:"defaults"`
	Options  map[string]any `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
	Sweep    *SweepSpec     `json:"sweep,omitempty" yaml:"sweep,omitempty" mapstructure:"sweep"`
}

// EffectiveKind returns Kind, defaulting to chain.
func (r *PipelineRequest) EffectiveKind() string {
	if r.Kind == "" {
		return KindChain
	}
	return r.Kind
}

// SweepSpec holds the sweep dimensions of a request.
type SweepSpec struct {
	DirName     string `json:"dirname,omitempty" yaml:"dirname,omitempty" mapstructure:"dirname"`
	SameJastrow *bool  `json:"same_jastrow,omitempty" yaml:"same_jastrow,omitempty" mapstructure:"same_jastrow"`

	// ecut_scan
	Ecuts       []float64 `json:"ecuts,omitempty" yaml:"ecuts,omitempty" mapstructure:"ecuts"`
	EcutJastrow *float64  `json:"ecut_jastrow,omitempty" yaml:"ecut_jastrow,omitempty" mapstructure:"ecut_jastrow"`

	// system_scan
	Systems    []SweepSystem `json:"systems,omitempty" yaml:"systems,omitempty" mapstructure:"systems"`
	JastrowKey string        `json:"jastrow_key,omitempty" yaml:"jastrow_key,omitempty" mapstructure:"jastrow_key"`

	// system_parameter_scan
	Variable  string         `json:"variable,omitempty" yaml:"variable,omitempty" mapstructure:"variable"`
	Values    []any          `json:"values,omitempty" yaml:"values,omitempty" mapstructure:"values"`
	Fixed     map[string]any `json:"fixed,omitempty" yaml:"fixed,omitempty" mapstructure:"fixed"`
	Generator *GeneratorSpec `json:"generator,omitempty" yaml:"generator,omitempty" mapstructure:"generator"`
}

// SweepSystem is one entry of a system scan.
type SweepSystem struct {
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
	// Key defaults to Dir.
	Key    string          `json:"key,omitempty" yaml:"key,omitempty" mapstructure:"key"`
	System entities.System `json:"system" yaml:"system" mapstructure:"system"`
}

// GeneratorSpec describes a system generator by expressions over the sweep
// variable and fixed parameters.
type GeneratorSpec struct {
	Name      string `json:"name" yaml:"name" mapstructure:"name"`
	Boundary  string `json:"boundary,omitempty" yaml:"boundary,omitempty" mapstructure:"boundary"`
	Pseudized string `json:"pseudized,omitempty" yaml:"pseudized,omitempty" mapstructure:"pseudized"`
	// Parameters maps each derived parameter to its expression.
	Parameters map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
}
