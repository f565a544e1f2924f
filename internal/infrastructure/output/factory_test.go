package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/qmcchain/internal/application/ports"
)

func Test_FormatterFactory_Create(t *testing.T) {
	tests := []struct {
		format   string
		wantType any
	}{
		{"table", &TableFormatter{}},
		{"json", &JSONFormatter{}},
		{"yaml", &YAMLFormatter{}},
		{"junit", &JUnitFormatter{}},
	}
	factory := NewFormatterFactory()
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := factory.Create(tt.format, &bytes.Buffer{}, ports.FormatterOptions{})
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, f)
		})
	}

	_, err := factory.Create("sarif", &bytes.Buffer{}, ports.FormatterOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format: sarif")
}

func Test_FormatterFactory_CreateCheck(t *testing.T) {
	factory := NewFormatterFactory()
	for _, format := range factory.SupportedFormats() {
		t.Run(format, func(t *testing.T) {
			f, err := factory.CreateCheck(format, &bytes.Buffer{}, ports.FormatterOptions{RequestPath: "r.yaml"})
			require.NoError(t, err)
			assert.NotNil(t, f)
		})
	}

	_, err := factory.CreateCheck("xml", &bytes.Buffer{}, ports.FormatterOptions{})
	assert.Error(t, err)
}
