package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/reglet-dev/qmcchain/internal/application/errors"
	"github.com/reglet-dev/qmcchain/internal/domain/defaults"
	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

func Test_ProfilesUseCase_List(t *testing.T) {
	lab := defaults.NewStore().Define(defaults.KindDMC, defaults.NewProfile("v2", map[string]any{"blocks": 400}))
	uc := NewProfilesUseCase(&fakeProfiles{stores: map[string]*defaults.Store{"lab.yaml": lab}}, defaults.Builtin(), nil)

	summaries, err := uc.List([]string{"lab.yaml"})
	require.NoError(t, err)
	require.NotEmpty(t, summaries)
	assert.Equal(t, defaults.KindJastrow, summaries[0].Kind)

	byKind := map[string]int{}
	for i, s := range summaries {
		byKind[s.Kind] = i
	}
	opt := summaries[byKind[defaults.KindOptSections]]
	assert.Equal(t, []string{"jm", "ls"}, opt.Overlays["cslinear"])
	assert.Equal(t, []string{"mm", "yl", "v1"}, opt.Overlays["linear"])

	dmc := summaries[byKind[defaults.KindDMC]]
	assert.Equal(t, "v2", dmc.Latest)
	assert.Contains(t, dmc.Names, "v1")
}

func Test_ProfilesUseCase_Show(t *testing.T) {
	uc := NewProfilesUseCase(nil, defaults.Builtin(), nil)

	detail, err := uc.Show(nil, defaults.KindJastrow, "", "")
	require.NoError(t, err)
	assert.Equal(t, "v1", detail.Name)
	assert.Equal(t, 10, detail.Values["J2_size"])

	overlay, err := uc.Show(nil, defaults.KindOptSections, "mm", "linear")
	require.NoError(t, err)
	assert.Equal(t, "linear", overlay.Method)
	assert.NotEmpty(t, overlay.Values)
}

func Test_ProfilesUseCase_Show_Errors(t *testing.T) {
	uc := NewProfilesUseCase(nil, defaults.Builtin(), nil)

	_, err := uc.Show(nil, "phonon", "v1", "")
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "kind", verr.Field)

	_, err = uc.Show(nil, defaults.KindJastrow, "v9", "")
	var unknown *entities.UnknownProfileError
	assert.ErrorAs(t, err, &unknown)

	_, err = uc.Show(nil, defaults.KindOptSections, "v1", "newton")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "method", verr.Field)

	_, err = uc.Show([]string{"lab.yaml"}, defaults.KindJastrow, "v1", "")
	var cerr *apperrors.ConfigurationError
	assert.ErrorAs(t, err, &cerr)
}
