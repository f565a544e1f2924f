package output

import (
	"io"

	"github.com/goccy/go-yaml"

	"github.com/reglet-dev/qmcchain/internal/application/dto"
)

// YAMLFormatter formats responses as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the plan as YAML.
func (f *YAMLFormatter) Format(resp *dto.PlanResponse) error {
	return f.write(resp)
}

// FormatCheck writes the check response as YAML.
func (f *YAMLFormatter) FormatCheck(resp *dto.CheckResponse) error {
	return f.write(resp)
}

func (f *YAMLFormatter) write(v any) error {
	encoder := yaml.NewEncoder(f.writer, yaml.Indent(2))

	if err := encoder.Encode(v); err != nil {
		return err
	}

	return encoder.Close()
}
