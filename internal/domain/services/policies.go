// Package services contains domain services for the qmcchain domain model.
// These are stateless services that encapsulate the resolution and assembly rules.
package services

import (
	"github.com/reglet-dev/qmcchain/internal/domain/defaults"
	"github.com/reglet-dev/qmcchain/internal/domain/entities"
	"github.com/reglet-dev/qmcchain/internal/domain/values"
)

// DefaultContext is the profile, location and strictness every default
// resolution runs against. It is a value: each stage builds its own and
// nothing is shared between resolution batches.
type DefaultContext struct {
	Profile  defaults.Profile
	Location string
	Strict   bool
}

// NewDefaultContext creates a strict context.
func NewDefaultContext(profile defaults.Profile, location string) DefaultContext {
	return DefaultContext{Profile: profile, Location: location, Strict: true}
}

// Lenient returns a copy of c that tolerates missing defaults.
// Method overlays resolve this way so a base profile can stay partial.
func (c DefaultContext) Lenient() DefaultContext {
	c.Strict = false
	return c
}

// At returns a copy of c reporting errors at location.
func (c DefaultContext) At(location string) DefaultContext {
	c.Location = location
	return c
}

// Default returns v if set, otherwise the profile value for name.
// A missing profile value is an error in strict mode and Unset otherwise.
func (c DefaultContext) Default(name string, v values.Opt) (values.Opt, error) {
	if v.IsSet() {
		return v, nil
	}
	if dv, ok := c.Profile.Lookup(name); ok {
		return values.Some(dv), nil
	}
	if c.Strict {
		return values.Unset, entities.NewMissingDefaultError(c.Location, name)
	}
	return values.Unset, nil
}

// Require fails if v is unset.
func (c DefaultContext) Require(name string, v values.Opt) (values.Opt, error) {
	if !v.IsSet() {
		return values.Unset, entities.NewMissingRequiredError(c.Location, name)
	}
	return v, nil
}

// Assign writes v into target only if set.
func (c DefaultContext) Assign(target map[string]any, name string, v values.Opt) {
	if v.IsSet() {
		target[name] = v.Get()
	}
}

// AssignRequire writes v into target, failing if unset.
func (c DefaultContext) AssignRequire(target map[string]any, name string, v values.Opt) error {
	v, err := c.Require(name, v)
	if err != nil {
		return err
	}
	target[name] = v.Get()
	return nil
}

// AssignDefault resolves v against the profile and writes the result into
// target when one exists.
func (c DefaultContext) AssignDefault(target map[string]any, name string, v values.Opt) error {
	v, err := c.Default(name, v)
	if err != nil {
		return err
	}
	c.Assign(target, name, v)
	return nil
}

// ResolveAll applies AssignDefault for every name, reading overrides from bag.
// The result only ever holds supplied or defaulted values.
func (c DefaultContext) ResolveAll(bag entities.Bag, names []string) (map[string]any, error) {
	out := make(map[string]any, len(names))
	for _, name := range names {
		if err := c.AssignDefault(out, name, bag.Get(name)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
