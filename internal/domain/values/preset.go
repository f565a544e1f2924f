package values

// Preset selects the size of a sampling schedule.
type Preset int

const (
	// PresetProduction is the full-size production schedule.
	PresetProduction Preset = iota
	// PresetReference is the reference-sized schedule used for level 0 runs.
	PresetReference
	// PresetTest is the small test-sized schedule.
	PresetTest
)

// SelectPreset picks a preset from the workflow flags.
// Test takes precedence over reference, which takes precedence over production.
func SelectPreset(test, reference bool) Preset {
	switch {
	case test:
		return PresetTest
	case reference:
		return PresetReference
	default:
		return PresetProduction
	}
}

// String returns the string representation
func (p Preset) String() string {
	switch p {
	case PresetTest:
		return "test"
	case PresetReference:
		return "reference"
	default:
		return "production"
	}
}

// MarshalText renders the preset by name in JSON and YAML output.
func (p Preset) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
