package defaults

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

func Test_Store_Profile_Unknown(t *testing.T) {
	s := Builtin()

	_, err := s.Profile("test", KindSCF, "v9")
	var unknown *entities.UnknownProfileError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, KindSCF, unknown.Kind)
	assert.Equal(t, "v9", unknown.Name)
	assert.Equal(t, []string{"minimal", "none", "v1"}, unknown.Available)
}

func Test_Store_Profile_LookupsDoNotMutate(t *testing.T) {
	s := Builtin()
	p, err := s.Profile("test", KindJastrow, "v1")
	require.NoError(t, err)

	vals := p.Values()
	vals["J1"] = false
	delete(vals, "J2")

	again, err := s.Profile("test", KindJastrow, "v1")
	require.NoError(t, err)
	v, ok := again.Lookup("J1")
	require.True(t, ok)
	assert.Equal(t, true, v)
	_, ok = again.Lookup("J2")
	assert.True(t, ok)
}

func Test_Store_Overlay_Missing(t *testing.T) {
	s := Builtin()

	p, ok := s.Overlay(KindOptSections, "linear", "mm")
	require.True(t, ok)
	v, _ := p.Lookup("samples")
	assert.Equal(t, 128000, v)

	empty, ok := s.Overlay(KindOptSections, "cslinear", "v1")
	assert.False(t, ok)
	assert.Equal(t, 0, empty.Len())
}

func Test_Store_Names_SemverOrdering(t *testing.T) {
	s := NewStore()
	for _, n := range []string{"v10", "v2", "minimal", "v1.5", "none", "v1"} {
		s.Define("k", NewProfile(n, nil))
	}

	assert.Equal(t, []string{"minimal", "none", "v1", "v1.5", "v2", "v10"}, s.Names("k"))

	latest, ok := s.Latest("k")
	require.True(t, ok)
	assert.Equal(t, "v10", latest)

	p, err := s.Profile("test", "k", Latest)
	require.NoError(t, err)
	assert.Equal(t, "v10", p.Name())
}

func Test_Store_Latest_NoVersions(t *testing.T) {
	s := NewStore().Define("k", NewProfile("minimal", nil))
	_, ok := s.Latest("k")
	assert.False(t, ok)

	_, err := s.Profile("test", "k", Latest)
	assert.Error(t, err)
}

func Test_Store_Merge_OtherWins(t *testing.T) {
	base := Builtin()
	user := NewStore().
		Define(KindSCF, NewProfile("v1", map[string]any{"conv_thr": 1e-10})).
		Define(KindSCF, NewProfile("tight", map[string]any{"conv_thr": 1e-12}))

	merged := base.Merge(user)

	p, err := merged.Profile("test", KindSCF, "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Len(), "same-named profiles are replaced wholesale")
	assert.True(t, merged.Has(KindSCF, "tight"))
	assert.True(t, merged.Has(KindSCF, "minimal"))

	orig, err := base.Profile("test", KindSCF, "v1")
	require.NoError(t, err)
	assert.Greater(t, orig.Len(), 1, "merge must not mutate the base store")
	assert.False(t, base.Has(KindSCF, "tight"))
}

func Test_Builtin_ProfilesHoldWorkflowKeys(t *testing.T) {
	s := Builtin()
	for _, kind := range StageKeys {
		for _, name := range s.Names(kind) {
			if kind == KindSCF && name == "none" {
				continue
			}
			p, err := s.Profile("test", kind, name)
			require.NoError(t, err)
			for _, key := range WorkflowKeys[kind] {
				_, ok := p.Lookup(key)
				assert.True(t, ok, "%s/%s lacks workflow key %s", kind, name, key)
			}
		}
	}
}

func Test_Builtin_EcutScanEnablesStages(t *testing.T) {
	s := Builtin()
	p, err := s.Profile("test", KindEcutScan, "v1")
	require.NoError(t, err)

	for _, k := range []string{"scf", "p2q", "opt", "vmc"} {
		v, _ := p.Lookup(k)
		assert.Equal(t, true, v, k)
	}
	v, _ := p.Lookup("dmc")
	assert.Equal(t, false, v)
	_, ok := p.Lookup("J2_source")
	assert.True(t, ok)
}

func Test_Builtin_SectionProfilesCoverKeys(t *testing.T) {
	s := Builtin()

	vmc, err := s.Profile("test", KindVMCSections, Version)
	require.NoError(t, err)
	for _, k := range VMCSectionKeys {
		if k == "vmc_calcs" {
			continue
		}
		_, ok := vmc.Lookup(k)
		assert.True(t, ok, k)
	}

	dmc, err := s.Profile("test", KindDMCSections, Version)
	require.NoError(t, err)
	for _, k := range DMCSectionKeys {
		switch k {
		case "walkers", "vmc_samplesperthread", "dmc_calcs":
			continue
		}
		_, ok := dmc.Lookup(k)
		assert.True(t, ok, k)
	}
}

func Test_OptMethodKeys(t *testing.T) {
	assert.Len(t, OptMethodKeys, 30)
	assert.Equal(t, "blocks", OptMethodKeys[0])
	assert.NotContains(t, OptMethodKeys, "opt_calcs")
}
