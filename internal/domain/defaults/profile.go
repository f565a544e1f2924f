// Package defaults holds the named, versioned default profiles that fill in
// options the caller did not supply.
package defaults

import (
	"sort"

	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

// Profile is an immutable named mapping from option name to default value.
type Profile struct {
	name   string
	values map[string]any
}

// NewProfile creates a profile. The values map is copied.
func NewProfile(name string, values map[string]any) Profile {
	cp := make(map[string]any, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return Profile{name: name, values: cp}
}

// Name returns the profile name, e.g. "v1".
func (p Profile) Name() string {
	return p.name
}

// Lookup returns the default for key.
func (p Profile) Lookup(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the option names in lexical order.
func (p Profile) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values returns a copy of the profile contents.
func (p Profile) Values() map[string]any {
	cp := make(map[string]any, len(p.values))
	for k, v := range p.values {
		cp[k] = v
	}
	return cp
}

// Len returns the number of defaults.
func (p Profile) Len() int {
	return len(p.values)
}

// Bag returns the profile as an option bag ordered by key.
func (p Profile) Bag() entities.Bag {
	return entities.BagFrom(p.values)
}

// Extend returns a new profile named name holding p's values with extra applied on top.
func (p Profile) Extend(name string, extra map[string]any) Profile {
	out := p.Values()
	for k, v := range extra {
		out[k] = v
	}
	return Profile{name: name, values: out}
}
