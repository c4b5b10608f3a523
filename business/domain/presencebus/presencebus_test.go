package presencebus_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/intradir/intradir/business/domain/presencebus"
	"github.com/intradir/intradir/business/domain/tenancybus"
	"github.com/intradir/intradir/foundation/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(os.Stdout, logger.LevelError, "TEST", nil)
}

func strPtr(v string) *string {
	return &v
}

// fakeCache is an in-memory CacheStorer whose failure modes the tests
// control.
type fakeCache struct {
	snaps   map[string]presencebus.Snapshot
	ooos    map[string]presencebus.OutOfOffice
	getErr  error
	setErr  error
	setKeys []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		snaps: make(map[string]presencebus.Snapshot),
		ooos:  make(map[string]presencebus.OutOfOffice),
	}
}

func (c *fakeCache) GetSnapshot(_ context.Context, key string) (presencebus.Snapshot, bool, error) {
	if c.getErr != nil {
		return presencebus.Snapshot{}, false, c.getErr
	}
	snap, ok := c.snaps[key]
	return snap, ok, nil
}

func (c *fakeCache) SetSnapshot(_ context.Context, key string, snap presencebus.Snapshot, _ time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.snaps[key] = snap
	c.setKeys = append(c.setKeys, key)
	return nil
}

func (c *fakeCache) GetOutOfOffice(_ context.Context, key string) (presencebus.OutOfOffice, bool, error) {
	if c.getErr != nil {
		return presencebus.OutOfOffice{}, false, c.getErr
	}
	ooo, ok := c.ooos[key]
	return ooo, ok, nil
}

func (c *fakeCache) SetOutOfOffice(_ context.Context, key string, ooo presencebus.OutOfOffice, _ time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.ooos[key] = ooo
	return nil
}

// fakeProvider counts upstream calls and returns canned answers.
type fakeProvider struct {
	userIDErr   error
	presenceErr error
	oooErr      error
	snap        presencebus.Snapshot
	ooo         presencebus.OutOfOffice
	calls       int
}

func (p *fakeProvider) UserID(_ context.Context, _ tenancybus.Tenancy, email string) (string, error) {
	if p.userIDErr != nil {
		return "", p.userIDErr
	}
	return "user-" + email, nil
}

func (p *fakeProvider) Presence(_ context.Context, _ tenancybus.Tenancy, _ string) (presencebus.Snapshot, error) {
	p.calls++
	if p.presenceErr != nil {
		return presencebus.Snapshot{}, p.presenceErr
	}
	return p.snap, nil
}

func (p *fakeProvider) OutOfOffice(_ context.Context, _ tenancybus.Tenancy, _ string) (presencebus.OutOfOffice, error) {
	p.calls++
	if p.oooErr != nil {
		return presencebus.OutOfOffice{}, p.oooErr
	}
	return p.ooo, nil
}

func TestClampTTL(t *testing.T) {
	assert.Equal(t, 30, presencebus.ClampTTL(0))
	assert.Equal(t, 30, presencebus.ClampTTL(-10))
	assert.Equal(t, 30, presencebus.ClampTTL(29))
	assert.Equal(t, 30, presencebus.ClampTTL(30))
	assert.Equal(t, 120, presencebus.ClampTTL(120))
	assert.Equal(t, 300, presencebus.ClampTTL(300))
	assert.Equal(t, 300, presencebus.ClampTTL(301))
	assert.Equal(t, 300, presencebus.ClampTTL(100000))
}

func TestParseTTL(t *testing.T) {
	assert.Equal(t, 300, presencebus.ParseTTL(""))
	assert.Equal(t, 300, presencebus.ParseTTL("abc"))
	assert.Equal(t, 300, presencebus.ParseTTL("12.5"))
	assert.Equal(t, 60, presencebus.ParseTTL("60"))
	assert.Equal(t, 30, presencebus.ParseTTL("1"))
	assert.Equal(t, 300, presencebus.ParseTTL("9999"))
}

func TestLookupMissFetchesAndWritesBack(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	cache := newFakeCache()
	provider := &fakeProvider{snap: presencebus.Snapshot{
		Activity:     strPtr("Available"),
		Availability: strPtr("Available"),
	}}

	core := presencebus.NewCoreWithClock(testLogger(), cache, provider, func() time.Time { return now })

	snap, err := core.Lookup(context.Background(), tenancybus.Tenancy{}, "Ana.Silva@Example.com ", presencebus.LookupOptions{TTL: 60})
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
	assert.False(t, snap.Cached)
	assert.Equal(t, 60, snap.TTL)
	assert.Equal(t, now, snap.FetchedAt)

	// Write-back happens under the normalized key.
	require.Len(t, cache.setKeys, 1)
	assert.Equal(t, "ana.silva@example.com", cache.setKeys[0])
}

func TestLookupServesStaleWithoutNoCache(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	cache := newFakeCache()
	cache.snaps["ana@example.com"] = presencebus.Snapshot{
		Activity:  strPtr("Away"),
		FetchedAt: now.Add(-45 * time.Minute),
		TTL:       60,
	}

	provider := &fakeProvider{}
	core := presencebus.NewCoreWithClock(testLogger(), cache, provider, func() time.Time { return now })

	snap, err := core.Lookup(context.Background(), tenancybus.Tenancy{}, "ana@example.com", presencebus.LookupOptions{TTL: 60})
	require.NoError(t, err)

	// Availability wins over freshness on the non-forced path.
	assert.Equal(t, 0, provider.calls)
	assert.True(t, snap.Cached)
	assert.Equal(t, "Away", *snap.Activity)
}

func TestLookupNoCacheAppliesFreshness(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	cache := newFakeCache()
	cache.snaps["ana@example.com"] = presencebus.Snapshot{
		Activity:  strPtr("Away"),
		FetchedAt: now.Add(-45 * time.Second),
		TTL:       60,
	}

	provider := &fakeProvider{snap: presencebus.Snapshot{Activity: strPtr("Busy")}}
	core := presencebus.NewCoreWithClock(testLogger(), cache, provider, func() time.Time { return now })

	// Entry younger than the ttl window still serves from cache.
	snap, err := core.Lookup(context.Background(), tenancybus.Tenancy{}, "ana@example.com", presencebus.LookupOptions{NoCache: true, TTL: 60})
	require.NoError(t, err)
	assert.Equal(t, 0, provider.calls)
	assert.True(t, snap.Cached)

	// Shrinking the window below the entry's age forces the refresh.
	snap, err = core.Lookup(context.Background(), tenancybus.Tenancy{}, "ana@example.com", presencebus.LookupOptions{NoCache: true, TTL: 30})
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)
	assert.False(t, snap.Cached)
	assert.Equal(t, "Busy", *snap.Activity)
}

func TestLookupCacheErrorsDegradeToMiss(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("cache down")
	cache.setErr = errors.New("cache down")

	provider := &fakeProvider{snap: presencebus.Snapshot{Activity: strPtr("Available")}}
	core := presencebus.NewCore(testLogger(), cache, provider)

	snap, err := core.Lookup(context.Background(), tenancybus.Tenancy{}, "ana@example.com", presencebus.LookupOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, "Available", *snap.Activity)
}

func TestLookupNoPresence(t *testing.T) {
	cache := newFakeCache()
	provider := &fakeProvider{presenceErr: presencebus.ErrNoPresence}
	core := presencebus.NewCore(testLogger(), cache, provider)

	_, err := core.Lookup(context.Background(), tenancybus.Tenancy{}, "ana@example.com", presencebus.LookupOptions{})
	assert.ErrorIs(t, err, presencebus.ErrNoPresence)
	assert.Empty(t, cache.setKeys)
}

func TestLookupUpstreamFailure(t *testing.T) {
	cache := newFakeCache()
	provider := &fakeProvider{presenceErr: errors.New("502 bad gateway")}
	core := presencebus.NewCore(testLogger(), cache, provider)

	_, err := core.Lookup(context.Background(), tenancybus.Tenancy{}, "ana@example.com", presencebus.LookupOptions{})
	assert.ErrorIs(t, err, presencebus.ErrFetchFailed)
	assert.Empty(t, cache.setKeys)
}

func TestLookupOutOfOffice(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	cache := newFakeCache()
	provider := &fakeProvider{ooo: presencebus.OutOfOffice{
		Status:  "scheduled",
		Message: strPtr("Back Monday"),
	}}

	core := presencebus.NewCoreWithClock(testLogger(), cache, provider, func() time.Time { return now })

	ooo, err := core.LookupOutOfOffice(context.Background(), tenancybus.Tenancy{}, "ana@example.com", presencebus.LookupOptions{TTL: 120})
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)
	assert.False(t, ooo.Cached)
	assert.Equal(t, "scheduled", ooo.Status)
	assert.Equal(t, 120, ooo.TTL)

	// Second read comes from the cache.
	ooo, err = core.LookupOutOfOffice(context.Background(), tenancybus.Tenancy{}, "ana@example.com", presencebus.LookupOptions{TTL: 120})
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)
	assert.True(t, ooo.Cached)
}
