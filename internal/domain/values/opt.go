// Package values contains immutable value objects shared across the domain.
package values

import "fmt"

// Opt is an option value that may be unset.
// The zero Opt is unset. Some(nil) is set: null is a legal option value
// and must not be confused with "the caller did not supply this".
type Opt struct {
	value any
	set   bool
}

// Unset is the canonical unset option.
var Unset = Opt{}

// Some wraps a supplied value.
func Some(v any) Opt {
	return Opt{value: v, set: true}
}

// IsSet reports whether a value was supplied.
func (o Opt) IsSet() bool {
	return o.set
}

// Get returns the wrapped value. It returns nil for an unset option, so
// callers must check IsSet when nil is meaningful.
func (o Opt) Get() any {
	return o.value
}

// OrElse returns the wrapped value or fallback when unset.
func (o Opt) OrElse(fallback any) any {
	if !o.set {
		return fallback
	}
	return o.value
}

// String returns a debug representation.
func (o Opt) String() string {
	if !o.set {
		return "<unset>"
	}
	return fmt.Sprintf("%v", o.value)
}
