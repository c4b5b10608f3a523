// Package password represents a password in the system.
package password

import (
	"errors"
)

// Password represents a password in the system. It never marshals its
// value into logs.
type Password struct {
	value string
}

// String returns the value of the password.
func (p Password) String() string {
	return p.value
}

// MarshalText keeps the password out of logs and marshaled output.
func (p Password) MarshalText() ([]byte, error) {
	return []byte("**********"), nil
}

// =============================================================================

// Parse parses the string value and returns a password if the value
// complies with the rules for a password.
func Parse(value string) (Password, error) {
	if len(value) < 8 {
		return Password{}, errors.New("password must be at least 8 characters")
	}

	if len(value) > 72 {
		return Password{}, errors.New("password must be at most 72 characters")
	}

	return Password{value}, nil
}

// MustParse parses the string value and returns a password if the value
// complies with the rules for a password. If an error occurs the function
// panics.
func MustParse(value string) Password {
	password, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return password
}
