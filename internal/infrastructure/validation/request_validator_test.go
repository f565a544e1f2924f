package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/reglet-dev/qmcchain/internal/application/errors"
)

func Test_RequestValidator_ValidateRequest_Valid(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
	}{
		{
			name: "chain",
			doc: map[string]any{
				"basepath": "runs",
				"system":   map[string]any{"name": "diamond", "boundary": "periodic", "pseudized": true},
				"options": map[string]any{
					"dft_pseudos": []any{"C.upf"},
					"opt_inputs":  map[string]any{"J2_prod": true, "J2_size": uint64(12)},
				},
			},
		},
		{
			name: "ecut scan with decoder integers",
			doc: map[string]any{
				"kind":     "ecut_scan",
				"basepath": "runs",
				"system":   map[string]any{"name": "diamond"},
				"sweep":    map[string]any{"ecuts": []any{uint64(50), 100, 112.5}, "ecut_jastrow": uint64(100)},
			},
		},
		{
			name: "parameter scan",
			doc: map[string]any{
				"kind":     "system_parameter_scan",
				"basepath": "runs",
				"sweep": map[string]any{
					"variable":  "a",
					"values":    []any{3.5, 3.6},
					"generator": map[string]any{"name": "diamond", "parameters": map[string]any{"volume": "a ** 3"}},
				},
			},
		},
	}
	validator := NewRequestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, validator.ValidateRequest(tt.doc))
		})
	}
}

func Test_RequestValidator_ValidateRequest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		want string
	}{
		{"missing basepath", map[string]any{}, "basepath"},
		{"unknown field", map[string]any{"basepath": "runs", "bogus": true}, "bogus"},
		{"bad kind", map[string]any{"basepath": "runs", "kind": "phonon_scan"}, "/kind"},
		{"bad boundary", map[string]any{"basepath": "runs", "system": map[string]any{"boundary": "slab"}}, "/system/boundary"},
		{"ecut scan without sweep", map[string]any{"basepath": "runs", "kind": "ecut_scan", "system": map[string]any{}}, "sweep"},
		{"negative ecut", map[string]any{
			"basepath": "runs", "kind": "ecut_scan", "system": map[string]any{},
			"sweep": map[string]any{"ecuts": []any{-1}},
		}, "/sweep/ecuts/0"},
		{"system entry without dir", map[string]any{
			"basepath": "runs", "kind": "system_scan",
			"sweep": map[string]any{"systems": []any{map[string]any{"system": map[string]any{}}}},
		}, "dir"},
		{"generator expression type", map[string]any{
			"basepath": "runs", "kind": "system_parameter_scan",
			"sweep": map[string]any{
				"variable": "a", "values": []any{1},
				"generator": map[string]any{"name": "x", "parameters": map[string]any{"volume": 3}},
			},
		}, "/sweep/generator/parameters/volume"},
	}
	validator := NewRequestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateRequest(tt.doc)
			var verr *apperrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "request", verr.Field)
			require.NotEmpty(t, verr.Details)
			assert.Contains(t, strings.Join(verr.Details, "\n"), tt.want)
		})
	}
}

func Test_RequestValidator_ValidateRequest_NotJSON(t *testing.T) {
	err := NewRequestValidator().ValidateRequest(map[string]any{"basepath": "runs", "options": map[string]any{"f": func() {}}})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "not representable as JSON")
}

func Test_Schema_IsCopy(t *testing.T) {
	s := Schema()
	require.NotEmpty(t, s)
	s[0] = 'x'
	assert.Equal(t, byte('{'), Schema()[0])
}
