// Package presencecache implements the presencebus.CacheStorer interface
// on top of an in-process TTL cache. Each entry carries its own logical
// deadline so keys written with different ttl hints expire independently;
// the cache client's own TTL, set to the clamp ceiling, is the physical
// backstop.
package presencecache

import (
	"context"
	"time"

	"github.com/intradir/intradir/business/domain/presencebus"
	"github.com/intradir/intradir/foundation/logger"
	"github.com/viccon/sturdyc"
)

const numShards = 64

// evictionPercentage is the share of a full shard sturdyc evicts at once.
const evictionPercentage = 10

type envelope[T any] struct {
	value     T
	expiresAt time.Time
}

// Store manages the set of APIs for presence cache access.
type Store struct {
	log   *logger.Logger
	snaps *sturdyc.Client[envelope[presencebus.Snapshot]]
	ooos  *sturdyc.Client[envelope[presencebus.OutOfOffice]]
	now   func() time.Time
}

// Option overrides a Store default.
type Option func(*Store)

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore constructs the api for cache access. Capacity bounds the number
// of cached mailboxes.
func NewStore(log *logger.Logger, capacity int, opts ...Option) *Store {
	backstop := presencebus.MaxTTLSeconds * time.Second

	s := Store{
		log:   log,
		snaps: sturdyc.New[envelope[presencebus.Snapshot]](capacity, numShards, backstop, evictionPercentage),
		ooos:  sturdyc.New[envelope[presencebus.OutOfOffice]](capacity, numShards, backstop, evictionPercentage),
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(&s)
	}

	return &s
}

// GetSnapshot returns the cached presence snapshot for the key if one is
// present and not past its logical deadline.
func (s *Store) GetSnapshot(_ context.Context, key string) (presencebus.Snapshot, bool, error) {
	env, ok := s.snaps.Get(key)
	if !ok {
		return presencebus.Snapshot{}, false, nil
	}

	if s.now().After(env.expiresAt) {
		s.snaps.Delete(key)
		return presencebus.Snapshot{}, false, nil
	}

	return env.value, true, nil
}

// SetSnapshot stores the snapshot under the key with the given expiry.
func (s *Store) SetSnapshot(_ context.Context, key string, snap presencebus.Snapshot, ttl time.Duration) error {
	s.snaps.Set(key, envelope[presencebus.Snapshot]{
		value:     snap,
		expiresAt: s.now().Add(ttl),
	})

	return nil
}

// GetOutOfOffice returns the cached automatic reply settings for the key
// if present and not past their logical deadline.
func (s *Store) GetOutOfOffice(_ context.Context, key string) (presencebus.OutOfOffice, bool, error) {
	env, ok := s.ooos.Get(key)
	if !ok {
		return presencebus.OutOfOffice{}, false, nil
	}

	if s.now().After(env.expiresAt) {
		s.ooos.Delete(key)
		return presencebus.OutOfOffice{}, false, nil
	}

	return env.value, true, nil
}

// SetOutOfOffice stores the automatic reply settings under the key with
// the given expiry.
func (s *Store) SetOutOfOffice(_ context.Context, key string, ooo presencebus.OutOfOffice, ttl time.Duration) error {
	s.ooos.Set(key, envelope[presencebus.OutOfOffice]{
		value:     ooo,
		expiresAt: s.now().Add(ttl),
	})

	return nil
}
