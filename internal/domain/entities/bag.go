package entities

import (
	"sort"

	"github.com/reglet-dev/qmcchain/internal/domain/values"
)

// Bag is an ordered option mapping supplied by the caller for one stage.
// Bags are values: every mutator returns a new Bag and leaves the receiver untouched.
// A key present in the bag is a supplied value, including nil.
type Bag struct {
	keys   []string
	values map[string]any
}

// NewBag creates a bag from alternating name/value pairs in the given order.
// It panics on an odd number of arguments or a non-string name.
func NewBag(pairs ...any) Bag {
	if len(pairs)%2 != 0 {
		panic("entities.NewBag: odd number of arguments")
	}
	b := Bag{values: make(map[string]any, len(pairs)/2)}
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic("entities.NewBag: option name must be a string")
		}
		b = b.set(name, pairs[i+1])
	}
	return b
}

// BagFrom creates a bag from a map. Keys are ordered lexically since maps carry no order.
func BagFrom(m map[string]any) Bag {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b := Bag{keys: keys, values: make(map[string]any, len(m))}
	for _, k := range keys {
		b.values[k] = m[k]
	}
	return b
}

// Get returns the named value, or values.Unset if absent.
func (b Bag) Get(name string) values.Opt {
	v, ok := b.values[name]
	if !ok {
		return values.Unset
	}
	return values.Some(v)
}

// Has reports whether name was supplied.
func (b Bag) Has(name string) bool {
	_, ok := b.values[name]
	return ok
}

// Keys returns the keys in insertion order.
func (b Bag) Keys() []string {
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

// Len returns the number of supplied options.
func (b Bag) Len() int {
	return len(b.keys)
}

// IsEmpty reports whether no options were supplied.
func (b Bag) IsEmpty() bool {
	return len(b.keys) == 0
}

// With returns a copy of the bag with name set to v.
// An existing key keeps its position.
func (b Bag) With(name string, v any) Bag {
	return b.clone().set(name, v)
}

// Without returns a copy of the bag with the named keys removed.
func (b Bag) Without(names ...string) Bag {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := Bag{values: make(map[string]any, len(b.keys))}
	for _, k := range b.keys {
		if drop[k] {
			continue
		}
		out.keys = append(out.keys, k)
		out.values[k] = b.values[k]
	}
	return out
}

// FillFrom returns a copy of the bag where every key of defaults that the bag
// does not already hold is appended. Supplied values always win.
func (b Bag) FillFrom(defaults Bag) Bag {
	out := b.clone()
	for _, k := range defaults.keys {
		if _, ok := out.values[k]; ok {
			continue
		}
		out = out.set(k, defaults.values[k])
	}
	return out
}

// Merge returns a copy of the bag with every key of overlay applied on top.
func (b Bag) Merge(overlay Bag) Bag {
	out := b.clone()
	for _, k := range overlay.keys {
		out = out.set(k, overlay.values[k])
	}
	return out
}

// Map returns a shallow copy of the bag contents.
func (b Bag) Map() map[string]any {
	out := make(map[string]any, len(b.keys))
	for _, k := range b.keys {
		out[k] = b.values[k]
	}
	return out
}

func (b Bag) clone() Bag {
	out := Bag{
		keys:   make([]string, len(b.keys)),
		values: make(map[string]any, len(b.keys)),
	}
	copy(out.keys, b.keys)
	for k, v := range b.values {
		out.values[k] = v
	}
	return out
}

// set mutates b in place. Callers must own b.
func (b Bag) set(name string, v any) Bag {
	if b.values == nil {
		b.values = make(map[string]any)
	}
	if _, ok := b.values[name]; !ok {
		b.keys = append(b.keys, name)
	}
	b.values[name] = v
	return b
}
