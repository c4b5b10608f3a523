// Package presencebus provides business access to cached presence and
// out-of-office data sourced from Microsoft Graph.
package presencebus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/intradir/intradir/business/domain/tenancybus"
	"github.com/intradir/intradir/foundation/logger"
	"github.com/intradir/intradir/foundation/otel"
)

var (
	// ErrNoPresence reports that the upstream has no presence for the
	// mailbox (403/404). This is data, not a fault.
	ErrNoPresence = errors.New("no presence available")

	// ErrFetchFailed reports a hard upstream failure: timeout, 5xx, or a
	// transport error.
	ErrFetchFailed = errors.New("presence fetch failed")
)

// CacheStorer defines the behavior required for the presence cache. The
// store must honor per-key expiry; a failing store is treated as a miss,
// never as a request failure.
type CacheStorer interface {
	GetSnapshot(ctx context.Context, key string) (Snapshot, bool, error)
	SetSnapshot(ctx context.Context, key string, snap Snapshot, ttl time.Duration) error
	GetOutOfOffice(ctx context.Context, key string) (OutOfOffice, bool, error)
	SetOutOfOffice(ctx context.Context, key string, ooo OutOfOffice, ttl time.Duration) error
}

// Provider defines the behavior required to fetch presence data from the
// upstream for a given tenancy.
type Provider interface {
	UserID(ctx context.Context, tn tenancybus.Tenancy, email string) (string, error)
	Presence(ctx context.Context, tn tenancybus.Tenancy, userID string) (Snapshot, error)
	OutOfOffice(ctx context.Context, tn tenancybus.Tenancy, userID string) (OutOfOffice, error)
}

// Core manages the set of APIs for presence access.
type Core struct {
	log      *logger.Logger
	cache    CacheStorer
	provider Provider
	now      func() time.Time
}

// NewCore constructs a core for presence api access.
func NewCore(log *logger.Logger, cache CacheStorer, provider Provider) *Core {
	return &Core{
		log:      log,
		cache:    cache,
		provider: provider,
		now:      time.Now,
	}
}

// NewCoreWithClock constructs a core with an injected time source for
// tests.
func NewCoreWithClock(log *logger.Logger, cache CacheStorer, provider Provider, now func() time.Time) *Core {
	c := NewCore(log, cache, provider)
	c.now = now
	return c
}

// NormalizeEmail produces the canonical cache key form of an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Lookup returns the presence snapshot for the given email, serving from
// the cache when its semantics allow and refreshing from the upstream
// otherwise. ErrNoPresence means the mailbox exposes no presence.
func (c *Core) Lookup(ctx context.Context, tn tenancybus.Tenancy, email string, opts LookupOptions) (Snapshot, error) {
	ctx, span := otel.AddSpan(ctx, "business.presencebus.lookup")
	defer span.End()

	key := NormalizeEmail(email)
	ttl := ClampTTL(opts.TTL)

	snap, found, err := c.cache.GetSnapshot(ctx, key)
	if err != nil {
		// A broken cache store degrades to a miss.
		c.log.Error(ctx, "presencebus: cache get", "key", key, "err", err)
		found = false
	}

	if found {
		if !opts.NoCache {
			snap.Cached = true
			return snap, nil
		}

		if snap.Fresh(c.now(), ttl) {
			snap.Cached = true
			return snap, nil
		}
	}

	userID, err := c.provider.UserID(ctx, tn, key)
	if err != nil {
		return Snapshot{}, c.fetchErr(ctx, "userID", key, err)
	}

	fresh, err := c.provider.Presence(ctx, tn, userID)
	if err != nil {
		return Snapshot{}, c.fetchErr(ctx, "presence", key, err)
	}

	fresh.FetchedAt = c.now()
	fresh.TTL = ttl
	fresh.Cached = false

	if err := c.cache.SetSnapshot(ctx, key, fresh, time.Duration(ttl)*time.Second); err != nil {
		c.log.Error(ctx, "presencebus: cache set", "key", key, "err", err)
	}

	return fresh, nil
}

// LookupOutOfOffice returns the automatic reply settings for the given
// email with the same cache semantics as Lookup.
func (c *Core) LookupOutOfOffice(ctx context.Context, tn tenancybus.Tenancy, email string, opts LookupOptions) (OutOfOffice, error) {
	ctx, span := otel.AddSpan(ctx, "business.presencebus.lookupOutOfOffice")
	defer span.End()

	key := NormalizeEmail(email)
	ttl := ClampTTL(opts.TTL)

	ooo, found, err := c.cache.GetOutOfOffice(ctx, key)
	if err != nil {
		c.log.Error(ctx, "presencebus: cache get", "key", key, "err", err)
		found = false
	}

	if found {
		if !opts.NoCache {
			ooo.Cached = true
			return ooo, nil
		}

		if ooo.Fresh(c.now(), ttl) {
			ooo.Cached = true
			return ooo, nil
		}
	}

	userID, err := c.provider.UserID(ctx, tn, key)
	if err != nil {
		return OutOfOffice{}, c.fetchErr(ctx, "userID", key, err)
	}

	fresh, err := c.provider.OutOfOffice(ctx, tn, userID)
	if err != nil {
		return OutOfOffice{}, c.fetchErr(ctx, "outOfOffice", key, err)
	}

	fresh.FetchedAt = c.now()
	fresh.TTL = ttl
	fresh.Cached = false

	if err := c.cache.SetOutOfOffice(ctx, key, fresh, time.Duration(ttl)*time.Second); err != nil {
		c.log.Error(ctx, "presencebus: cache set", "key", key, "err", err)
	}

	return fresh, nil
}

// fetchErr keeps the no-presence sentinel intact and wraps everything
// else as a fetch failure. Retrying is the caller's business.
func (c *Core) fetchErr(ctx context.Context, op string, key string, err error) error {
	if errors.Is(err, ErrNoPresence) {
		return ErrNoPresence
	}

	c.log.Error(ctx, "presencebus: upstream", "op", op, "key", key, "err", err)

	return fmt.Errorf("%s[%s]: %w: %s", op, key, ErrFetchFailed, err)
}
