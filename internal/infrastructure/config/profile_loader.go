package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/reglet-dev/qmcchain/internal/domain/defaults"
)

// ProfileFile is the on-disk shape of a user profile file.
type ProfileFile struct {
	Profiles []ProfileEntry `yaml:"profiles"`
	Overlays []OverlayEntry `yaml:"overlays"`
}

// ProfileEntry defines one named profile of a kind.
type ProfileEntry struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
	// Extends names a profile of the same kind, defined earlier in the file or
	// in the base store, whose values are copied before Values are applied.
	Extends string         `yaml:"extends"`
	Values  map[string]any `yaml:"values"`
}

// OverlayEntry defines one method overlay.
type OverlayEntry struct {
	Kind   string         `yaml:"kind"`
	Method string         `yaml:"method"`
	Name   string         `yaml:"name"`
	Values map[string]any `yaml:"values"`
}

// ProfileLoader handles loading default profiles from YAML files.
type ProfileLoader struct {
	base *defaults.Store
}

// NewProfileLoader creates a new profile loader. Profiles that extend a
// name not defined in the file resolve against base.
func NewProfileLoader(base *defaults.Store) *ProfileLoader {
	if base == nil {
		base = defaults.NewStore()
	}
	return &ProfileLoader{base: base}
}

// LoadProfiles loads a profile file into a new store holding only the file's profiles.
func (l *ProfileLoader) LoadProfiles(path string) (*defaults.Store, error) {
	// Security: Use os.OpenRoot to prevent path traversal attacks
	root, err := os.OpenRoot(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open profile directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open profiles: %w", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	return l.LoadProfilesFromReader(file)
}

// LoadProfilesFromReader parses a profile file.
func (l *ProfileLoader) LoadProfilesFromReader(r io.Reader) (*defaults.Store, error) {
	var pf ProfileFile
	if err := yaml.NewDecoder(r).Decode(&pf); err != nil {
		if err == io.EOF {
			return defaults.NewStore(), nil
		}
		return nil, fmt.Errorf("failed to decode profiles YAML: %w", err)
	}
	return l.build(&pf)
}

func (l *ProfileLoader) build(pf *ProfileFile) (*defaults.Store, error) {
	out := defaults.NewStore()

	for i, e := range pf.Profiles {
		if err := checkEntry(e.Kind, e.Name); err != nil {
			return nil, fmt.Errorf("profiles[%d]: %w", i, err)
		}
		p := defaults.NewProfile(e.Name, e.Values)
		if e.Extends != "" {
			parent, err := l.lookup(out, e.Kind, e.Extends)
			if err != nil {
				return nil, fmt.Errorf("profiles[%d] %s/%s: %w", i, e.Kind, e.Name, err)
			}
			p = parent.Extend(e.Name, e.Values)
		}
		out.Define(e.Kind, p)
	}

	for i, e := range pf.Overlays {
		if err := checkEntry(e.Kind, e.Name); err != nil {
			return nil, fmt.Errorf("overlays[%d]: %w", i, err)
		}
		if e.Method == "" {
			return nil, fmt.Errorf("overlays[%d]: method is required", i)
		}
		out.DefineOverlay(e.Kind, e.Method, defaults.NewProfile(e.Name, e.Values))
	}
	return out, nil
}

// lookup resolves a parent in the profiles loaded so far, then in base.
func (l *ProfileLoader) lookup(loaded *defaults.Store, kind, name string) (defaults.Profile, error) {
	if loaded.Has(kind, name) {
		return loaded.Profile("profiles", kind, name)
	}
	return l.base.Profile("profiles", kind, name)
}

func checkEntry(kind, name string) error {
	if !defaults.IsKind(kind) {
		return fmt.Errorf("unknown profile kind %q", kind)
	}
	if name == "" {
		return fmt.Errorf("profile name is required")
	}
	if name == defaults.Latest {
		return fmt.Errorf("%q is reserved", defaults.Latest)
	}
	return nil
}
