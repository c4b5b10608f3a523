package hostdomain_test

import (
	"testing"

	"github.com/intradir/intradir/business/types/hostdomain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	valid := []struct {
		input string
		want  string
	}{
		{"example.com", "example.com"},
		{"EXAMPLE.COM", "example.com"},
		{"  Example.Com  ", "example.com"},
		{"sub.example.co", "sub.example.co"},
		{"ex-ample_1.io", "ex-ample_1.io"},
		{"0example.org", "0example.org"},
	}

	for _, tt := range valid {
		t.Run(tt.input, func(t *testing.T) {
			h, err := hostdomain.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.String())
		})
	}

	invalid := []string{
		"",
		"example",
		"-example.com",
		".example.com",
		"example.c",
		"example.com1",
		"a.io",
		"user@example.com",
		"@example.com",
	}

	for _, input := range invalid {
		t.Run("invalid "+input, func(t *testing.T) {
			_, err := hostdomain.Parse(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, hostdomain.ErrInvalid)
		})
	}
}

func TestFromEmail(t *testing.T) {
	h, err := hostdomain.FromEmail("Ana.Silva@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, "example.com", h.String())

	_, err = hostdomain.FromEmail("no-at-sign")
	assert.ErrorIs(t, err, hostdomain.ErrInvalid)

	_, err = hostdomain.FromEmail("trailing@")
	assert.ErrorIs(t, err, hostdomain.ErrInvalid)

	// Everything after the first @ must itself be a clean domain.
	_, err = hostdomain.FromEmail("a@b@example.com")
	assert.ErrorIs(t, err, hostdomain.ErrInvalid)
}
