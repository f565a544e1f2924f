package defaults

import (
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

// Latest is an alias resolving to the highest versioned profile of a kind.
const Latest = "latest"

// Store maps stage kind to profile name to Profile, plus per-method overlays
// (kind to method to profile name). A Store is populated once at startup; the
// merge operations return new stores.
type Store struct {
	profiles map[string]map[string]Profile
	overlays map[string]map[string]map[string]Profile
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		profiles: make(map[string]map[string]Profile),
		overlays: make(map[string]map[string]map[string]Profile),
	}
}

// Define adds or replaces a profile for kind.
func (s *Store) Define(kind string, p Profile) *Store {
	if s.profiles[kind] == nil {
		s.profiles[kind] = make(map[string]Profile)
	}
	s.profiles[kind][p.Name()] = p
	return s
}

// DefineOverlay adds or replaces a method overlay for kind.
func (s *Store) DefineOverlay(kind, method string, p Profile) *Store {
	if s.overlays[kind] == nil {
		s.overlays[kind] = make(map[string]map[string]Profile)
	}
	if s.overlays[kind][method] == nil {
		s.overlays[kind][method] = make(map[string]Profile)
	}
	s.overlays[kind][method][p.Name()] = p
	return s
}

// Profile returns the named profile of kind. The name "latest" resolves to
// the highest versioned profile.
func (s *Store) Profile(location, kind, name string) (Profile, error) {
	if name == Latest {
		if latest, ok := s.Latest(kind); ok {
			name = latest
		}
	}
	p, ok := s.profiles[kind][name]
	if !ok {
		return Profile{}, entities.NewUnknownProfileError(location, kind, name, s.Names(kind))
	}
	return p, nil
}

// Overlay returns the method overlay for kind. A missing overlay is reported
// as an empty profile with ok=false so callers can treat it as "no extra defaults".
func (s *Store) Overlay(kind, method, name string) (Profile, bool) {
	if name == Latest {
		if latest, ok := s.Latest(kind); ok {
			name = latest
		}
	}
	p, ok := s.overlays[kind][method][name]
	if !ok {
		return NewProfile(name, nil), false
	}
	return p, true
}

// Has reports whether kind defines name.
func (s *Store) Has(kind, name string) bool {
	_, ok := s.profiles[kind][name]
	return ok
}

// Kinds returns every kind with at least one profile, sorted.
func (s *Store) Kinds() []string {
	kinds := make([]string, 0, len(s.profiles))
	for k := range s.profiles {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Methods returns the overlay methods defined for kind, sorted.
func (s *Store) Methods(kind string) []string {
	methods := make([]string, 0, len(s.overlays[kind]))
	for m := range s.overlays[kind] {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// OverlayNames returns the overlay profile names of kind and method, sorted like Names.
func (s *Store) OverlayNames(kind, method string) []string {
	names := make([]string, 0, len(s.overlays[kind][method]))
	for n := range s.overlays[kind][method] {
		names = append(names, n)
	}
	SortNames(names)
	return names
}

// Names returns the profile names of kind. Names that are not versions come
// first in lexical order, followed by versions in ascending semantic order.
func (s *Store) Names(kind string) []string {
	names := make([]string, 0, len(s.profiles[kind]))
	for n := range s.profiles[kind] {
		names = append(names, n)
	}
	SortNames(names)
	return names
}

// Latest returns the highest versioned profile name of kind.
func (s *Store) Latest(kind string) (string, bool) {
	var (
		best    string
		bestVer *semver.Version
	)
	for n := range s.profiles[kind] {
		v, err := semver.NewVersion(n)
		if err != nil {
			continue
		}
		if bestVer == nil || v.GreaterThan(bestVer) {
			best, bestVer = n, v
		}
	}
	return best, bestVer != nil
}

// Merge returns a new store holding s's profiles with other's applied on top.
// Same-named profiles are replaced wholesale. Neither input is modified.
func (s *Store) Merge(other *Store) *Store {
	out := NewStore()
	for _, src := range []*Store{s, other} {
		if src == nil {
			continue
		}
		for kind, byName := range src.profiles {
			for _, p := range byName {
				out.Define(kind, p)
			}
		}
		for kind, byMethod := range src.overlays {
			for method, byName := range byMethod {
				for _, p := range byName {
					out.DefineOverlay(kind, method, p)
				}
			}
		}
	}
	return out
}

// SortNames orders profile names in place: non-version names lexically, then versions ascending.
func SortNames(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		vi, erri := semver.NewVersion(names[i])
		vj, errj := semver.NewVersion(names[j])
		switch {
		case erri != nil && errj != nil:
			return names[i] < names[j]
		case erri != nil:
			return true
		case errj != nil:
			return false
		case vi.Equal(vj):
			return names[i] < names[j]
		default:
			return vi.LessThan(vj)
		}
	})
}
