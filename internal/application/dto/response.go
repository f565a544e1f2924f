package dto

import (
	"time"
)

// PlanResponse contains the assembled pipeline of a request.
type PlanResponse struct {
	Kind   string      `json:"kind" yaml:"kind"`
	Points []PlanPoint `json:"points" yaml:"points"`

	// Metadata contains response metadata
	Metadata ResponseMetadata `json:"metadata" yaml:"metadata"`
}

// StageCount returns the number of stages across all points.
func (r *PlanResponse) StageCount() int {
	n := 0
	for _, p := range r.Points {
		n += len(p.Stages)
	}
	return n
}

// ResponseMetadata contains metadata about the response.
type ResponseMetadata struct {
	// RequestID from the original request
	RequestID string `json:"request_id,omitempty" yaml:"request_id,omitempty"`

	// ProcessedAt is when the request was processed
	ProcessedAt time.Time `json:"processed_at" yaml:"processed_at"`

	// Duration is how long the request took
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// PlanPoint is one assembled pipeline. A single chain has one point with an empty key.
type PlanPoint struct {
	Key    string         `json:"key,omitempty" yaml:"key,omitempty"`
	Dir    string         `json:"dir" yaml:"dir"`
	Stages []PlannedStage `json:"stages" yaml:"stages"`
}

// PlannedStage describes one registered stage.
type PlannedStage struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Path  string `json:"path,omitempty" yaml:"path,omitempty"`
	// Wave is the topological level within the point; stages of one wave are independent.
	Wave int `json:"wave" yaml:"wave"`
	// Reused marks a handle built by an earlier point or supplied from outside.
	Reused       bool           `json:"reused,omitempty" yaml:"reused,omitempty"`
	DependsOn    []string       `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	// Upstream lists every direct and transitive producer within the point, sorted.
	Upstream     []string       `json:"upstream,omitempty" yaml:"upstream,omitempty"`
	Jastrows     []string       `json:"jastrows,omitempty" yaml:"jastrows,omitempty"`
	Calculations []string       `json:"calculations,omitempty" yaml:"calculations,omitempty"`
	Options      map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// Diagnostic severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityNote    = "note"
)

// Diagnostic is one finding of a check run.
type Diagnostic struct {
	// Rule names the finding class, e.g. "missing-keywords".
	Rule     string `json:"rule" yaml:"rule"`
	Severity string `json:"severity" yaml:"severity"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	Message  string `json:"message" yaml:"message"`
}

// CheckResponse contains the diagnostics of a check run.
type CheckResponse struct {
	RequestPath string       `json:"request_path" yaml:"request_path"`
	Kind        string       `json:"kind,omitempty" yaml:"kind,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	// Plan is set when the request assembled successfully.
	Plan *PlanResponse `json:"plan,omitempty" yaml:"plan,omitempty"`
}

// HasErrors reports whether any diagnostic is an error.
func (r *CheckResponse) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ProfileSummary lists the profiles of one kind.
type ProfileSummary struct {
	Kind   string   `json:"kind" yaml:"kind"`
	Names  []string `json:"names" yaml:"names"`
	Latest string   `json:"latest,omitempty" yaml:"latest,omitempty"`
	// Overlays maps method to overlay profile names.
	Overlays map[string][]string `json:"overlays,omitempty" yaml:"overlays,omitempty"`
}

// ProfileDetail is the resolved content of one profile.
type ProfileDetail struct {
	Kind   string         `json:"kind" yaml:"kind"`
	Name   string         `json:"name" yaml:"name"`
	Method string         `json:"method,omitempty" yaml:"method,omitempty"`
	Values map[string]any `json:"values" yaml:"values"`
}
