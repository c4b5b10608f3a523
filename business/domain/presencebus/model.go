package presencebus

import (
	"strconv"
	"time"
)

// TTL bounds for cached presence. Requested hints are clamped into this
// window; values that fail to parse fall back to the default.
const (
	MinTTLSeconds     = 30
	MaxTTLSeconds     = 300
	DefaultTTLSeconds = 300
)

// ClampTTL forces a requested ttl into the [MinTTLSeconds, MaxTTLSeconds]
// window.
func ClampTTL(seconds int) int {
	switch {
	case seconds < MinTTLSeconds:
		return MinTTLSeconds
	case seconds > MaxTTLSeconds:
		return MaxTTLSeconds
	default:
		return seconds
	}
}

// ParseTTL parses a ttl query value. Empty or non-numeric input yields
// the default, anything else is clamped.
func ParseTTL(value string) int {
	if value == "" {
		return DefaultTTLSeconds
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return DefaultTTLSeconds
	}

	return ClampTTL(seconds)
}

// Snapshot is a cached view of a person's presence at a point in time.
type Snapshot struct {
	Activity     *string
	Availability *string
	FetchedAt    time.Time
	TTL          int
	Cached       bool
}

// Fresh reports whether the snapshot's age is within the given ttl.
func (s Snapshot) Fresh(now time.Time, ttlSeconds int) bool {
	return now.Sub(s.FetchedAt) <= time.Duration(ttlSeconds)*time.Second
}

// OutOfOffice is a cached view of a mailbox's automatic reply settings.
type OutOfOffice struct {
	Status    string
	Message   *string
	StartsAt  *time.Time
	EndsAt    *time.Time
	FetchedAt time.Time
	TTL       int
	Cached    bool
}

// Fresh reports whether the snapshot's age is within the given ttl.
func (o OutOfOffice) Fresh(now time.Time, ttlSeconds int) bool {
	return now.Sub(o.FetchedAt) <= time.Duration(ttlSeconds)*time.Second
}

// LookupOptions control one presence lookup.
type LookupOptions struct {

	// NoCache forces an upstream refresh unless the cached entry is
	// younger than the effective ttl. Without it any cached entry is
	// returned regardless of age: availability wins over freshness on
	// the non-forced path.
	NoCache bool

	// TTL is the requested ttl hint in seconds. It is clamped before use
	// and becomes both the freshness window and the write-back expiry.
	TTL int
}
