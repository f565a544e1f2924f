package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/qmcchain/internal/domain/defaults"
)

func Test_ProfileLoader_LoadProfilesFromReader_Valid(t *testing.T) {
	src := `
profiles:
  - kind: chain
    name: lab
    extends: v1
    values:
      scf: true
      p2q: true
  - kind: chain
    name: lab-dmc
    extends: lab
    values:
      dmc: true
  - kind: jastrow
    name: "2.0.0"
    values:
      J2_size: 12
overlays:
  - kind: opt_sections
    method: linear
    name: lab
    values:
      minmethod: quartic
`
	loader := NewProfileLoader(defaults.Builtin())
	store, err := loader.LoadProfilesFromReader(strings.NewReader(src))
	require.NoError(t, err)

	lab, err := store.Profile("test", defaults.KindChain, "lab-dmc")
	require.NoError(t, err)
	for _, key := range []string{"scf", "p2q", "dmc"} {
		v, ok := lab.Lookup(key)
		require.True(t, ok, key)
		assert.Equal(t, true, v, key)
	}
	v, ok := lab.Lookup("opt")
	require.True(t, ok)
	assert.Equal(t, false, v)

	latest, ok := store.Latest(defaults.KindJastrow)
	require.True(t, ok)
	assert.Equal(t, "2.0.0", latest)

	overlay, ok := store.Overlay(defaults.KindOptSections, "linear", "lab")
	require.True(t, ok)
	mm, _ := overlay.Lookup("minmethod")
	assert.Equal(t, "quartic", mm)

	// Only the file's profiles are returned.
	assert.False(t, store.Has(defaults.KindChain, "v1"))
}

func Test_ProfileLoader_LoadProfilesFromReader_Empty(t *testing.T) {
	store, err := NewProfileLoader(nil).LoadProfilesFromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, store.Kinds())
}

func Test_ProfileLoader_LoadProfilesFromReader_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"invalid yaml", `profiles: [[[`, "failed to decode"},
		{"unknown kind", "profiles:\n  - kind: phonon\n    name: v1\n", "unknown profile kind"},
		{"missing name", "profiles:\n  - kind: chain\n", "name is required"},
		{"reserved name", "profiles:\n  - kind: chain\n    name: latest\n", "reserved"},
		{"unknown parent", "profiles:\n  - kind: chain\n    name: lab\n    extends: v9\n", "v9"},
		{"overlay method", "overlays:\n  - kind: opt_sections\n    name: v1\n", "method is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProfileLoader(defaults.Builtin()).LoadProfilesFromReader(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func Test_ProfileLoader_LoadProfiles_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  - kind: scf\n    name: fast\n    values:\n      ecutwfc: 60\n"), 0o600))

	store, err := NewProfileLoader(nil).LoadProfiles(path)
	require.NoError(t, err)
	assert.True(t, store.Has(defaults.KindSCF, "fast"))

	_, err = NewProfileLoader(nil).LoadProfiles(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open profiles")
}
