package entities

import "fmt"

// SystemDescription is the view of a physical system the engine needs.
// Everything else about the system is opaque and forwarded to stage builders.
type SystemDescription interface {
	IsOpenBoundary() bool
	IsPseudized() bool
}

// Boundary conditions.
const (
	BoundaryPeriodic = "periodic"
	BoundaryOpen     = "open"
)

// System is the declarative system description read from a request file.
type System struct {
	Name       string         `json:"name" yaml:"name" mapstructure:"name"`
	Boundary   string         `json:"boundary" yaml:"boundary" mapstructure:"boundary"`
	Pseudized  bool           `json:"pseudized" yaml:"pseudized" mapstructure:"pseudized"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
}

// IsOpenBoundary reports whether the system is non-periodic.
func (s *System) IsOpenBoundary() bool {
	return s.Boundary == BoundaryOpen
}

// IsPseudized reports whether the system uses pseudopotentials.
func (s *System) IsPseudized() bool {
	return s.Pseudized
}

// Validate checks the boundary value. An empty boundary means periodic.
func (s *System) Validate() error {
	switch s.Boundary {
	case "", BoundaryPeriodic, BoundaryOpen:
		return nil
	default:
		return fmt.Errorf("invalid boundary %q for system %q: must be %s or %s",
			s.Boundary, s.Name, BoundaryPeriodic, BoundaryOpen)
	}
}
