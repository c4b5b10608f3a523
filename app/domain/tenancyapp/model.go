package tenancyapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/intradir/intradir/app/sdk/errs"
	"github.com/intradir/intradir/business/domain/tenancybus"
	"github.com/intradir/intradir/business/types/name"
)

// Flags carries the capability ceiling of a tenancy on the wire.
type Flags struct {
	EnablePresence       bool `json:"enablePresence"`
	EnablePhotos         bool `json:"enablePhotos"`
	EnableOutOfOffice    bool `json:"enableOutOfOffice"`
	EnableLocalGroups    bool `json:"enableLocalGroups"`
	EnableGlobalGroups   bool `json:"enableGlobalGroups"`
	EnableGroupSendCheck bool `json:"enableGroupSendCheck"`
}

func toBusFlags(app Flags) tenancybus.Flags {
	return tenancybus.Flags{
		Presence:       app.EnablePresence,
		Photos:         app.EnablePhotos,
		OutOfOffice:    app.EnableOutOfOffice,
		LocalGroups:    app.EnableLocalGroups,
		GlobalGroups:   app.EnableGlobalGroups,
		GroupSendCheck: app.EnableGroupSendCheck,
	}
}

func toAppFlags(bus tenancybus.Flags) Flags {
	return Flags{
		EnablePresence:       bus.Presence,
		EnablePhotos:         bus.Photos,
		EnableOutOfOffice:    bus.OutOfOffice,
		EnableLocalGroups:    bus.LocalGroups,
		EnableGlobalGroups:   bus.GlobalGroups,
		EnableGroupSendCheck: bus.GroupSendCheck,
	}
}

// Tenancy represents a tenancy record on the admin surface. The client
// secret is write-only and never leaves the system.
type Tenancy struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TenantID    string `json:"tenantId"`
	ClientID    string `json:"clientId"`
	Enabled     bool   `json:"enabled"`
	Flags       Flags  `json:"flags"`
	DateCreated string `json:"dateCreated"`
	DateUpdated string `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (t Tenancy) Encode() ([]byte, string, error) {
	data, err := json.Marshal(t)
	return data, "application/json", err
}

func toAppTenancy(bus tenancybus.Tenancy) Tenancy {
	return Tenancy{
		ID:          bus.ID.String(),
		Name:        bus.Name.String(),
		TenantID:    bus.TenantID.String(),
		ClientID:    bus.ClientID,
		Enabled:     bus.Enabled,
		Flags:       toAppFlags(bus.Flags),
		DateCreated: bus.CreatedAt.Format(time.RFC3339),
		DateUpdated: bus.UpdatedAt.Format(time.RFC3339),
	}
}

func toAppTenancies(tenancies []tenancybus.Tenancy) []Tenancy {
	app := make([]Tenancy, len(tenancies))
	for i, tn := range tenancies {
		app[i] = toAppTenancy(tn)
	}
	return app
}

// NewTenancy defines the data needed to add a new tenancy.
type NewTenancy struct {
	Name         string `json:"name" validate:"required"`
	TenantID     string `json:"tenantId" validate:"required,uuid"`
	ClientID     string `json:"clientId" validate:"required"`
	ClientSecret string `json:"clientSecret" validate:"required"`
	Flags        Flags  `json:"flags"`
}

// Decode implements the web.Decoder interface.
func (app *NewTenancy) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewTenancy) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewTenancy(app NewTenancy) (tenancybus.NewTenancy, error) {
	nme, err := name.Parse(app.Name)
	if err != nil {
		return tenancybus.NewTenancy{}, fmt.Errorf("parse name: %w", err)
	}

	tenantID, err := uuid.Parse(app.TenantID)
	if err != nil {
		return tenancybus.NewTenancy{}, fmt.Errorf("parse tenant id: %w", err)
	}

	bus := tenancybus.NewTenancy{
		Name:         nme,
		TenantID:     tenantID,
		ClientID:     app.ClientID,
		ClientSecret: app.ClientSecret,
		Flags:        toBusFlags(app.Flags),
	}

	return bus, nil
}

// UpdateTenancy defines the data needed to update a tenancy. The tenant
// and client ids are immutable after creation.
type UpdateTenancy struct {
	Name         *string `json:"name"`
	ClientSecret *string `json:"clientSecret"`
	Enabled      *bool   `json:"enabled"`
	Flags        *Flags  `json:"flags"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateTenancy) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateTenancy) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateTenancy(app UpdateTenancy) (tenancybus.UpdateTenancy, error) {
	var nme *name.Name
	if app.Name != nil {
		nm, err := name.Parse(*app.Name)
		if err != nil {
			return tenancybus.UpdateTenancy{}, fmt.Errorf("parse name: %w", err)
		}
		nme = &nm
	}

	var flags *tenancybus.Flags
	if app.Flags != nil {
		f := toBusFlags(*app.Flags)
		flags = &f
	}

	bus := tenancybus.UpdateTenancy{
		Name:         nme,
		ClientSecret: app.ClientSecret,
		Enabled:      app.Enabled,
		Flags:        flags,
	}

	return bus, nil
}
