package routebus

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/intradir/intradir/business/domain/tenancybus"
	"github.com/intradir/intradir/business/types/hostdomain"
	"github.com/intradir/intradir/business/types/override"
)

// Overrides carries the per-domain tri-state override for each of the
// overridable capability flags. GroupSendCheck has no per-domain override
// in the current model.
type Overrides struct {
	Presence     override.Override
	Photos       override.Override
	OutOfOffice  override.Override
	LocalGroups  override.Override
	GlobalGroups override.Override
}

// Domain represents an SMTP routing record binding a mail domain to a
// tenancy.
type Domain struct {
	ID        uuid.UUID
	TenancyID uuid.UUID
	Domain    hostdomain.HostDomain
	Priority  int
	Overrides Overrides
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDomain contains information needed to create a new SMTP domain.
type NewDomain struct {
	TenancyID uuid.UUID
	Domain    hostdomain.HostDomain
	Priority  int
	Overrides Overrides
}

// UpdateDomain contains information needed to update an SMTP domain.
type UpdateDomain struct {
	Domain    *hostdomain.HostDomain
	Priority  *int
	Overrides *Overrides
}

// EffectiveFlags is the resolved capability set for a tenancy+domain pair.
type EffectiveFlags struct {
	Presence       bool
	Photos         bool
	OutOfOffice    bool
	LocalGroups    bool
	GlobalGroups   bool
	GroupSendCheck bool
}

// Route is the result of resolving a sender domain: the matched record,
// its tenancy, and the effective flags. Callers must consult
// Tenancy.Enabled before acting on the flags.
type Route struct {
	Tenancy tenancybus.Tenancy
	Domain  Domain
	Flags   EffectiveFlags
}

// Effective computes the effective flags for the given overrides against a
// tenancy's ceiling.
func Effective(flags tenancybus.Flags, o Overrides) EffectiveFlags {
	return EffectiveFlags{
		Presence:       o.Presence.Resolve(flags.Presence),
		Photos:         o.Photos.Resolve(flags.Photos),
		OutOfOffice:    o.OutOfOffice.Resolve(flags.OutOfOffice),
		LocalGroups:    o.LocalGroups.Resolve(flags.LocalGroups),
		GlobalGroups:   o.GlobalGroups.Resolve(flags.GlobalGroups),
		GroupSendCheck: flags.GroupSendCheck,
	}
}

// =============================================================================

// OverrideViolation reports a single flag whose override would grant a
// capability the tenancy disables.
type OverrideViolation struct {
	Flag    string
	Tenancy string
}

// Error implements the error interface.
func (v OverrideViolation) Error() string {
	return fmt.Sprintf("%s cannot be enabled: tenancy %q disables it", v.Flag, v.Tenancy)
}

// OverrideViolations collects every violated flag so admin forms can show
// field-level messages.
type OverrideViolations []OverrideViolation

// Error implements the error interface.
func (vs OverrideViolations) Error() string {
	if len(vs) == 1 {
		return vs[0].Error()
	}
	return fmt.Sprintf("%d flag overrides rejected by tenancy ceiling", len(vs))
}

// ValidateOverrides checks every overridable flag against the tenancy
// ceiling. It returns nil when every override is acceptable.
func ValidateOverrides(tn tenancybus.Tenancy, o Overrides) error {
	checks := []struct {
		flag         string
		tenancyValue bool
		override     override.Override
	}{
		{"enablePresence", tn.Flags.Presence, o.Presence},
		{"enablePhotos", tn.Flags.Photos, o.Photos},
		{"enableOutOfOffice", tn.Flags.OutOfOffice, o.OutOfOffice},
		{"enableLocalGroups", tn.Flags.LocalGroups, o.LocalGroups},
		{"enableGlobalGroups", tn.Flags.GlobalGroups, o.GlobalGroups},
	}

	var vs OverrideViolations
	for _, c := range checks {
		if err := c.override.Validate(c.tenancyValue); err != nil {
			vs = append(vs, OverrideViolation{Flag: c.flag, Tenancy: tn.Name.String()})
		}
	}

	if len(vs) > 0 {
		return vs
	}

	return nil
}
