package entities

import "github.com/reglet-dev/qmcchain/internal/domain/values"

// Calculation is one entry of a calculation schedule.
type Calculation interface {
	CalculationKind() string
}

// Loop repeats Body up to Max times.
type Loop struct {
	Max  int         `json:"max" yaml:"max"`
	Body Calculation `json:"body" yaml:"body"`
}

func (Loop) CalculationKind() string { return "loop" }

// Optimization is a single linear-method optimization section.
// Weights are (energy, unreweighted variance, reweighted variance).
type Optimization struct {
	Method               string         `json:"method" yaml:"method"`
	Energy               float64        `json:"energy" yaml:"energy"`
	UnreweightedVariance float64        `json:"unreweightedvariance" yaml:"unreweightedvariance"`
	ReweightedVariance   float64        `json:"reweightedvariance" yaml:"reweightedvariance"`
	Parameters           map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

func (o Optimization) CalculationKind() string { return o.Method }

// VMCSection is a variational sampling section.
type VMCSection struct {
	Walkers          *int    `json:"walkers,omitempty" yaml:"walkers,omitempty" mapstructure:"walkers"`
	WarmupSteps      int     `json:"warmupsteps" yaml:"warmupsteps" mapstructure:"warmupsteps"`
	Blocks           int     `json:"blocks" yaml:"blocks" mapstructure:"blocks"`
	Steps            int     `json:"steps" yaml:"steps" mapstructure:"steps"`
	Substeps         int     `json:"substeps" yaml:"substeps" mapstructure:"substeps"`
	Timestep         float64 `json:"timestep" yaml:"timestep" mapstructure:"timestep"`
	Checkpoint       int     `json:"checkpoint" yaml:"checkpoint" mapstructure:"checkpoint"`
	Samples          *int    `json:"samples,omitempty" yaml:"samples,omitempty" mapstructure:"samples"`
	SamplesPerThread *int    `json:"samplesperthread,omitempty" yaml:"samplesperthread,omitempty" mapstructure:"samplesperthread"`
}

func (VMCSection) CalculationKind() string { return "vmc" }

// DMCSection is a diffusion sampling section.
type DMCSection struct {
	Walkers       *int                `json:"walkers,omitempty" yaml:"walkers,omitempty" mapstructure:"walkers"`
	WarmupSteps   int                 `json:"warmupsteps" yaml:"warmupsteps" mapstructure:"warmupsteps"`
	Blocks        int                 `json:"blocks" yaml:"blocks" mapstructure:"blocks"`
	Steps         int                 `json:"steps" yaml:"steps" mapstructure:"steps"`
	Timestep      float64             `json:"timestep" yaml:"timestep" mapstructure:"timestep"`
	Checkpoint    int                 `json:"checkpoint" yaml:"checkpoint" mapstructure:"checkpoint"`
	NonlocalMoves values.NonlocalMove `json:"nonlocalmoves,omitempty" yaml:"nonlocalmoves,omitempty" mapstructure:"-"`
}

func (DMCSection) CalculationKind() string { return "dmc" }

// RawCalculation wraps a caller-supplied schedule entry that is passed through untouched.
type RawCalculation struct {
	Value any `json:"value" yaml:"value"`
}

func (RawCalculation) CalculationKind() string { return "raw" }

// Schedule is an ordered list of calculations.
type Schedule []Calculation

// Kinds lists the calculation kinds in order, descending into loops.
func (s Schedule) Kinds() []string {
	out := make([]string, 0, len(s))
	for _, c := range s {
		if l, ok := c.(Loop); ok && l.Body != nil {
			out = append(out, "loop("+l.Body.CalculationKind()+")")
			continue
		}
		out = append(out, c.CalculationKind())
	}
	return out
}
