package entities

// FactorKind tags one of the three correlation-factor levels.
type FactorKind string

const (
	FactorJ1 FactorKind = "J1"
	FactorJ2 FactorKind = "J2"
	FactorJ3 FactorKind = "J3"
)

// FactorKinds is the fixed output order of correlation factors.
var FactorKinds = []FactorKind{FactorJ1, FactorJ2, FactorJ3}

// Functional forms.
const (
	FormBspline    = "bspline"
	FormPolynomial = "polynomial"
)

// JastrowSpec is a structured request handed to the factor constructor unchanged.
// Params carries size and cutoff parameters; a nil cutoff is legal.
type JastrowSpec struct {
	Kind   FactorKind     `json:"kind" yaml:"kind" mapstructure:"kind"`
	Form   string         `json:"form" yaml:"form" mapstructure:"form"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
}

// CorrelationFactor is a constructed factor value.
type CorrelationFactor struct {
	Kind   FactorKind     `json:"kind" yaml:"kind"`
	Form   string         `json:"form" yaml:"form"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
	// System names the system the factor was constructed for, if known.
	System string `json:"system,omitempty" yaml:"system,omitempty"`
}
