package domainapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/intradir/intradir/app/sdk/errs"
	"github.com/intradir/intradir/business/domain/routebus"
	"github.com/intradir/intradir/business/types/hostdomain"
	"github.com/intradir/intradir/business/types/override"
)

// Overrides carries the tri-state flag overrides on the wire. Each value
// is INHERIT, ENABLED or DISABLED; an omitted field means INHERIT.
type Overrides struct {
	EnablePresence     string `json:"enablePresence" validate:"omitempty,oneof=INHERIT ENABLED DISABLED"`
	EnablePhotos       string `json:"enablePhotos" validate:"omitempty,oneof=INHERIT ENABLED DISABLED"`
	EnableOutOfOffice  string `json:"enableOutOfOffice" validate:"omitempty,oneof=INHERIT ENABLED DISABLED"`
	EnableLocalGroups  string `json:"enableLocalGroups" validate:"omitempty,oneof=INHERIT ENABLED DISABLED"`
	EnableGlobalGroups string `json:"enableGlobalGroups" validate:"omitempty,oneof=INHERIT ENABLED DISABLED"`
}

func toBusOverrides(app Overrides) (routebus.Overrides, error) {
	parse := func(field, value string) (override.Override, error) {
		if value == "" {
			return override.Inherit, nil
		}

		o, err := override.Parse(value)
		if err != nil {
			return override.Override{}, fmt.Errorf("parse %s: %w", field, err)
		}
		return o, nil
	}

	var bus routebus.Overrides
	var err error

	if bus.Presence, err = parse("enablePresence", app.EnablePresence); err != nil {
		return routebus.Overrides{}, err
	}
	if bus.Photos, err = parse("enablePhotos", app.EnablePhotos); err != nil {
		return routebus.Overrides{}, err
	}
	if bus.OutOfOffice, err = parse("enableOutOfOffice", app.EnableOutOfOffice); err != nil {
		return routebus.Overrides{}, err
	}
	if bus.LocalGroups, err = parse("enableLocalGroups", app.EnableLocalGroups); err != nil {
		return routebus.Overrides{}, err
	}
	if bus.GlobalGroups, err = parse("enableGlobalGroups", app.EnableGlobalGroups); err != nil {
		return routebus.Overrides{}, err
	}

	return bus, nil
}

func toAppOverrides(bus routebus.Overrides) Overrides {
	return Overrides{
		EnablePresence:     bus.Presence.String(),
		EnablePhotos:       bus.Photos.String(),
		EnableOutOfOffice:  bus.OutOfOffice.String(),
		EnableLocalGroups:  bus.LocalGroups.String(),
		EnableGlobalGroups: bus.GlobalGroups.String(),
	}
}

// Domain represents an SMTP routing record on the admin surface.
type Domain struct {
	ID          string    `json:"id"`
	TenancyID   string    `json:"tenancyId"`
	Domain      string    `json:"domain"`
	Priority    int       `json:"priority"`
	Overrides   Overrides `json:"overrides"`
	DateCreated string    `json:"dateCreated"`
	DateUpdated string    `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (d Domain) Encode() ([]byte, string, error) {
	data, err := json.Marshal(d)
	return data, "application/json", err
}

func toAppDomain(bus routebus.Domain) Domain {
	return Domain{
		ID:          bus.ID.String(),
		TenancyID:   bus.TenancyID.String(),
		Domain:      bus.Domain.String(),
		Priority:    bus.Priority,
		Overrides:   toAppOverrides(bus.Overrides),
		DateCreated: bus.CreatedAt.Format(time.RFC3339),
		DateUpdated: bus.UpdatedAt.Format(time.RFC3339),
	}
}

func toAppDomains(domains []routebus.Domain) []Domain {
	app := make([]Domain, len(domains))
	for i, d := range domains {
		app[i] = toAppDomain(d)
	}
	return app
}

// NewDomain defines the data needed to add a new SMTP domain.
type NewDomain struct {
	TenancyID string    `json:"tenancyId" validate:"required,uuid"`
	Domain    string    `json:"domain" validate:"required"`
	Priority  int       `json:"priority" validate:"gte=0"`
	Overrides Overrides `json:"overrides"`
}

// Decode implements the web.Decoder interface.
func (app *NewDomain) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewDomain) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewDomain(app NewDomain) (routebus.NewDomain, error) {
	tenancyID, err := uuid.Parse(app.TenancyID)
	if err != nil {
		return routebus.NewDomain{}, fmt.Errorf("parse tenancy id: %w", err)
	}

	dom, err := hostdomain.Parse(app.Domain)
	if err != nil {
		return routebus.NewDomain{}, fmt.Errorf("parse domain: %w", err)
	}

	overrides, err := toBusOverrides(app.Overrides)
	if err != nil {
		return routebus.NewDomain{}, err
	}

	bus := routebus.NewDomain{
		TenancyID: tenancyID,
		Domain:    dom,
		Priority:  app.Priority,
		Overrides: overrides,
	}

	return bus, nil
}

// UpdateDomain defines the data needed to update an SMTP domain.
type UpdateDomain struct {
	Domain    *string    `json:"domain"`
	Priority  *int       `json:"priority" validate:"omitempty,gte=0"`
	Overrides *Overrides `json:"overrides"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateDomain) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateDomain) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateDomain(app UpdateDomain) (routebus.UpdateDomain, error) {
	var dom *hostdomain.HostDomain
	if app.Domain != nil {
		d, err := hostdomain.Parse(*app.Domain)
		if err != nil {
			return routebus.UpdateDomain{}, fmt.Errorf("parse domain: %w", err)
		}
		dom = &d
	}

	var overrides *routebus.Overrides
	if app.Overrides != nil {
		o, err := toBusOverrides(*app.Overrides)
		if err != nil {
			return routebus.UpdateDomain{}, err
		}
		overrides = &o
	}

	bus := routebus.UpdateDomain{
		Domain:    dom,
		Priority:  app.Priority,
		Overrides: overrides,
	}

	return bus, nil
}
