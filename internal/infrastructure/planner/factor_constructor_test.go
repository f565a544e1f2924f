package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

func Test_FactorConstructor_Construct_Valid(t *testing.T) {
	system := &entities.System{Name: "diamond"}
	tests := []struct {
		name string
		spec entities.JastrowSpec
		want map[string]any
	}{
		{
			name: "J1 without cutoff",
			spec: entities.JastrowSpec{Kind: entities.FactorJ1, Form: entities.FormBspline, Params: map[string]any{"size": 8, "rcut": nil}},
			want: map[string]any{"size": 8, "rcut": nil},
		},
		{
			name: "J2 coerces numbers",
			spec: entities.JastrowSpec{Kind: entities.FactorJ2, Params: map[string]any{"size": uint64(10), "rcut": 5, "init": "rpa"}},
			want: map[string]any{"size": 10, "rcut": 5.0, "init": "rpa"},
		},
		{
			name: "J3 keeps extra params",
			spec: entities.JastrowSpec{Kind: entities.FactorJ3, Form: entities.FormPolynomial, Params: map[string]any{"esize": 3, "isize": 3, "rcut": 4.0, "extra": true}},
			want: map[string]any{"esize": 3, "isize": 3, "rcut": 4.0, "extra": true},
		},
	}
	c := NewFactorConstructor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := c.Construct(tt.spec, system)
			require.NoError(t, err)
			assert.Equal(t, tt.spec.Kind, f.Kind)
			assert.Equal(t, tt.want, f.Params)
			assert.Equal(t, "diamond", f.System)
		})
	}
}

func Test_FactorConstructor_Construct_DefaultsForm(t *testing.T) {
	f, err := NewFactorConstructor().Construct(entities.JastrowSpec{
		Kind:   entities.FactorJ3,
		Params: map[string]any{"esize": 3, "isize": 3, "rcut": nil},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, entities.FormPolynomial, f.Form)
	assert.Empty(t, f.System)
}

func Test_FactorConstructor_Construct_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec entities.JastrowSpec
		want string
	}{
		{"unknown kind", entities.JastrowSpec{Kind: "J4"}, "unknown correlation factor kind"},
		{"wrong form", entities.JastrowSpec{Kind: entities.FactorJ3, Form: entities.FormBspline}, "does not support form"},
		{"missing size", entities.JastrowSpec{Kind: entities.FactorJ1, Params: map[string]any{"rcut": nil}}, `missing parameter "size"`},
		{"zero size", entities.JastrowSpec{Kind: entities.FactorJ1, Params: map[string]any{"size": 0, "rcut": nil}}, "positive integer"},
		{"negative rcut", entities.JastrowSpec{Kind: entities.FactorJ1, Params: map[string]any{"size": 8, "rcut": -1}}, "positive number"},
		{"missing init", entities.JastrowSpec{Kind: entities.FactorJ2, Params: map[string]any{"size": 8, "rcut": nil}}, `missing parameter "init"`},
	}
	c := NewFactorConstructor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Construct(tt.spec, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func Test_FactorConstructor_Construct_DoesNotMutateSpec(t *testing.T) {
	params := map[string]any{"size": uint64(10), "rcut": 5, "init": "zero"}
	_, err := NewFactorConstructor().Construct(entities.JastrowSpec{Kind: entities.FactorJ2, Params: params}, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), params["size"])
}
