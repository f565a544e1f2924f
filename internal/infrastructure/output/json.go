package output

import (
	"encoding/json"
	"io"

	"github.com/reglet-dev/qmcchain/internal/application/dto"
)

// JSONFormatter formats responses as JSON.
type JSONFormatter struct {
	writer io.Writer
	indent bool
}

// NewJSONFormatter creates a new JSON formatter.
// If indent is true, the output will be pretty-printed with indentation.
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{
		writer: w,
		indent: indent,
	}
}

// Format writes the plan as JSON.
func (f *JSONFormatter) Format(resp *dto.PlanResponse) error {
	return f.write(resp)
}

// FormatCheck writes the check response as JSON.
func (f *JSONFormatter) FormatCheck(resp *dto.CheckResponse) error {
	return f.write(resp)
}

func (f *JSONFormatter) write(v any) error {
	var data []byte
	var err error

	if f.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = f.writer.Write(data)
	if err != nil {
		return err
	}

	// Add newline for better terminal output
	_, err = f.writer.Write([]byte("\n"))
	return err
}
