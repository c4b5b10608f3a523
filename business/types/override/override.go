// Package override represents the tri-state per-domain capability override
// used by SMTP domain routing. A domain either inherits a capability from
// its tenancy, enables it explicitly, or disables it explicitly.
package override

import (
	"errors"
	"fmt"
)

// ErrInvalidOverride is returned when a domain tries to grant a capability
// its tenancy forbids.
var ErrInvalidOverride = errors.New("override enables a capability the tenancy disables")

// The set of override states.
var (
	Inherit  = Override{"INHERIT"}
	Enabled  = Override{"ENABLED"}
	Disabled = Override{"DISABLED"}
)

var overrides = map[string]Override{
	"INHERIT":  Inherit,
	"ENABLED":  Enabled,
	"DISABLED": Disabled,
}

// Override represents a single tri-state flag override.
type Override struct {
	value string
}

// String returns the name of the override state.
func (o Override) String() string {
	if o.value == "" {
		return Inherit.value
	}
	return o.value
}

// Equal provides support for the go-cmp package and testing.
func (o Override) Equal(o2 Override) bool {
	return o.String() == o2.String()
}

// MarshalText provides support for logging and any marshal needs.
func (o Override) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Resolve computes the effective flag value for this override given the
// tenancy level value. Inherit yields the tenancy value, anything else is
// taken verbatim.
func (o Override) Resolve(tenancyValue bool) bool {
	switch o {
	case Enabled:
		return true
	case Disabled:
		return false
	default:
		return tenancyValue
	}
}

// Validate rejects an override that grants a capability the parent tenancy
// has disabled. Every other combination is valid, including an explicit
// disable under a disabled tenancy flag.
func (o Override) Validate(tenancyValue bool) error {
	if o == Enabled && !tenancyValue {
		return ErrInvalidOverride
	}
	return nil
}

// Parse parses the string value and returns an override if one exists.
func Parse(value string) (Override, error) {
	o, exists := overrides[value]
	if !exists {
		return Override{}, fmt.Errorf("invalid override %q", value)
	}

	return o, nil
}

// MustParse parses the string value and returns an override if one exists.
// If an error occurs the function panics.
func MustParse(value string) Override {
	o, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return o
}

// FromBoolPtr converts the wire/database representation, a nullable
// boolean, into an override value.
func FromBoolPtr(v *bool) Override {
	switch {
	case v == nil:
		return Inherit
	case *v:
		return Enabled
	default:
		return Disabled
	}
}

// BoolPtr converts the override into its nullable boolean wire/database
// representation. Inherit maps to nil.
func (o Override) BoolPtr() *bool {
	switch o {
	case Enabled:
		v := true
		return &v
	case Disabled:
		v := false
		return &v
	default:
		return nil
	}
}
