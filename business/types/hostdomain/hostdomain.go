// Package hostdomain represents an SMTP domain in the system.
package hostdomain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// matcher is the accepted shape for a routable SMTP domain. The value is
// matched after lowercasing and must never contain an @.
var matcher = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-_.]+\.[a-zA-Z]{2,}$`)

// ErrInvalid is wrapped by every parse failure in this package.
var ErrInvalid = errors.New("invalid domain")

// HostDomain represents a validated, lower-cased SMTP domain.
type HostDomain struct {
	value string
}

// String returns the value of the domain.
func (h HostDomain) String() string {
	return h.value
}

// Equal provides support for the go-cmp package and testing.
func (h HostDomain) Equal(h2 HostDomain) bool {
	return h.value == h2.value
}

// MarshalText provides support for logging and any marshal needs.
func (h HostDomain) MarshalText() ([]byte, error) {
	return []byte(h.value), nil
}

// Parse parses the string value and returns a domain if the value complies
// with the rules for a domain.
func Parse(value string) (HostDomain, error) {
	value = strings.ToLower(strings.TrimSpace(value))

	if strings.Contains(value, "@") {
		return HostDomain{}, fmt.Errorf("%w %q: must not contain @", ErrInvalid, value)
	}

	if !matcher.MatchString(value) {
		return HostDomain{}, fmt.Errorf("%w %q", ErrInvalid, value)
	}

	return HostDomain{value}, nil
}

// MustParse parses the string value and returns a domain if the value
// complies with the rules for a domain. If an error occurs the function
// panics.
func MustParse(value string) HostDomain {
	h, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return h
}

// FromEmail extracts and parses the domain portion of an email address.
func FromEmail(email string) (HostDomain, error) {
	_, domain, found := strings.Cut(strings.TrimSpace(email), "@")
	if !found || domain == "" {
		return HostDomain{}, fmt.Errorf("%w: email %q missing domain", ErrInvalid, email)
	}

	return Parse(domain)
}
