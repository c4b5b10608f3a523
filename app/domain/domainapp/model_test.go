package domainapp

import (
	"testing"

	"github.com/google/uuid"
	"github.com/intradir/intradir/business/domain/routebus"
	"github.com/intradir/intradir/business/types/override"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBusOverrides(t *testing.T) {
	bus, err := toBusOverrides(Overrides{
		EnablePresence:    "ENABLED",
		EnablePhotos:      "DISABLED",
		EnableOutOfOffice: "INHERIT",
	})
	require.NoError(t, err)

	assert.True(t, bus.Presence.Equal(override.Enabled))
	assert.True(t, bus.Photos.Equal(override.Disabled))
	assert.True(t, bus.OutOfOffice.Equal(override.Inherit))

	// Omitted fields default to inherit.
	assert.True(t, bus.LocalGroups.Equal(override.Inherit))
	assert.True(t, bus.GlobalGroups.Equal(override.Inherit))

	_, err = toBusOverrides(Overrides{EnablePresence: "enabled"})
	assert.Error(t, err)
}

func TestNewDomainValidate(t *testing.T) {
	nd := NewDomain{
		TenancyID: uuid.NewString(),
		Domain:    "example.com",
	}
	assert.NoError(t, nd.Validate())

	nd.TenancyID = "not-a-uuid"
	assert.Error(t, nd.Validate())

	nd = NewDomain{
		TenancyID: uuid.NewString(),
		Domain:    "example.com",
		Overrides: Overrides{EnablePresence: "MAYBE"},
	}
	assert.Error(t, nd.Validate())
}

func TestViolationFields(t *testing.T) {
	err := routebus.OverrideViolations{
		{Flag: "enablePhotos", Tenancy: "Contoso"},
		{Flag: "enableLocalGroups", Tenancy: "Contoso"},
	}

	fe := violationFields(err)
	require.Len(t, fe, 2)
	assert.Equal(t, "enablePhotos", fe[0].Field)
	assert.Equal(t, "enableLocalGroups", fe[1].Field)

	assert.Nil(t, violationFields(assert.AnError))
}
