package override_test

import (
	"testing"

	"github.com/intradir/intradir/business/types/override"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		override override.Override
		tenancy  bool
		want     bool
	}{
		{"inherit takes tenancy true", override.Inherit, true, true},
		{"inherit takes tenancy false", override.Inherit, false, false},
		{"enabled wins over tenancy true", override.Enabled, true, true},
		{"disabled narrows tenancy true", override.Disabled, true, false},
		{"disabled under tenancy false", override.Disabled, false, false},
		{"zero value behaves as inherit", override.Override{}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.override.Resolve(tt.tenancy))
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, override.Inherit.Validate(false))
	assert.NoError(t, override.Disabled.Validate(false))
	assert.NoError(t, override.Enabled.Validate(true))

	err := override.Enabled.Validate(false)
	require.Error(t, err)
	assert.ErrorIs(t, err, override.ErrInvalidOverride)
}

func TestParse(t *testing.T) {
	for _, value := range []string{"INHERIT", "ENABLED", "DISABLED"} {
		o, err := override.Parse(value)
		require.NoError(t, err)
		assert.Equal(t, value, o.String())
	}

	_, err := override.Parse("enabled")
	assert.Error(t, err)

	_, err = override.Parse("")
	assert.Error(t, err)
}

func TestBoolPtrRoundTrip(t *testing.T) {
	assert.Nil(t, override.Inherit.BoolPtr())

	v := override.Enabled.BoolPtr()
	require.NotNil(t, v)
	assert.True(t, *v)

	v = override.Disabled.BoolPtr()
	require.NotNil(t, v)
	assert.False(t, *v)

	assert.True(t, override.FromBoolPtr(nil).Equal(override.Inherit))
	tr := true
	assert.True(t, override.FromBoolPtr(&tr).Equal(override.Enabled))
	fa := false
	assert.True(t, override.FromBoolPtr(&fa).Equal(override.Disabled))
}
