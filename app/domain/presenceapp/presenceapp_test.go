package presenceapp_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/intradir/intradir/app/domain/presenceapp"
	"github.com/intradir/intradir/business/domain/presencebus"
	"github.com/intradir/intradir/business/domain/routebus"
	"github.com/intradir/intradir/business/domain/tenancybus"
	"github.com/intradir/intradir/business/sdk/order"
	"github.com/intradir/intradir/business/sdk/page"
	"github.com/intradir/intradir/business/sdk/sqldb"
	"github.com/intradir/intradir/business/sdk/web"
	"github.com/intradir/intradir/business/types/hostdomain"
	"github.com/intradir/intradir/business/types/name"
	"github.com/intradir/intradir/business/types/override"
	"github.com/intradir/intradir/foundation/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Fakes

type routeStorer struct {
	byDomain map[string]routebus.Domain
}

func (s *routeStorer) NewWithTx(_ sqldb.CommitRollbacker) (routebus.Storer, error) {
	return s, nil
}

func (s *routeStorer) Create(_ context.Context, d routebus.Domain) error {
	s.byDomain[d.Domain.String()] = d
	return nil
}

func (s *routeStorer) Update(_ context.Context, d routebus.Domain) error { return nil }
func (s *routeStorer) Delete(_ context.Context, d routebus.Domain) error { return nil }
func (s *routeStorer) Count(_ context.Context) (int, error)              { return len(s.byDomain), nil }

func (s *routeStorer) Query(_ context.Context, _ order.By, _ page.Page) ([]routebus.Domain, error) {
	return nil, nil
}

func (s *routeStorer) QueryByID(_ context.Context, _ uuid.UUID) (routebus.Domain, error) {
	return routebus.Domain{}, routebus.ErrNotFound
}

func (s *routeStorer) QueryByDomain(_ context.Context, domain hostdomain.HostDomain) (routebus.Domain, error) {
	d, ok := s.byDomain[domain.String()]
	if !ok {
		return routebus.Domain{}, routebus.ErrNotFound
	}
	return d, nil
}

type tenancyStorer struct {
	byID map[uuid.UUID]tenancybus.Tenancy
}

func (s *tenancyStorer) NewWithTx(_ sqldb.CommitRollbacker) (tenancybus.Storer, error) {
	return s, nil
}

func (s *tenancyStorer) Create(_ context.Context, t tenancybus.Tenancy) error { return nil }
func (s *tenancyStorer) Update(_ context.Context, t tenancybus.Tenancy) error { return nil }
func (s *tenancyStorer) Delete(_ context.Context, t tenancybus.Tenancy) error { return nil }
func (s *tenancyStorer) Count(_ context.Context) (int, error)                 { return len(s.byID), nil }

func (s *tenancyStorer) Query(_ context.Context, _ order.By, _ page.Page) ([]tenancybus.Tenancy, error) {
	return nil, nil
}

func (s *tenancyStorer) QueryByID(_ context.Context, tenancyID uuid.UUID) (tenancybus.Tenancy, error) {
	t, ok := s.byID[tenancyID]
	if !ok {
		return tenancybus.Tenancy{}, tenancybus.ErrNotFound
	}
	return t, nil
}

type memCache struct {
	snaps map[string]presencebus.Snapshot
}

func (c *memCache) GetSnapshot(_ context.Context, key string) (presencebus.Snapshot, bool, error) {
	snap, ok := c.snaps[key]
	return snap, ok, nil
}

func (c *memCache) SetSnapshot(_ context.Context, key string, snap presencebus.Snapshot, _ time.Duration) error {
	c.snaps[key] = snap
	return nil
}

func (c *memCache) GetOutOfOffice(_ context.Context, _ string) (presencebus.OutOfOffice, bool, error) {
	return presencebus.OutOfOffice{}, false, nil
}

func (c *memCache) SetOutOfOffice(_ context.Context, _ string, _ presencebus.OutOfOffice, _ time.Duration) error {
	return nil
}

type provider struct {
	err  error
	snap presencebus.Snapshot
}

func (p *provider) UserID(_ context.Context, _ tenancybus.Tenancy, email string) (string, error) {
	return "user-" + email, nil
}

func (p *provider) Presence(_ context.Context, _ tenancybus.Tenancy, _ string) (presencebus.Snapshot, error) {
	if p.err != nil {
		return presencebus.Snapshot{}, p.err
	}
	return p.snap, nil
}

func (p *provider) OutOfOffice(_ context.Context, _ tenancybus.Tenancy, _ string) (presencebus.OutOfOffice, error) {
	return presencebus.OutOfOffice{Status: "disabled"}, nil
}

// =============================================================================

type envelope struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason"`
	Error  string `json:"error"`
	Data   *struct {
		Activity     *string `json:"activity"`
		Availability *string `json:"availability"`
		FetchedAt    string  `json:"fetchedAt"`
		TTL          int     `json:"ttl"`
		Cached       bool    `json:"cached"`
	} `json:"data"`
	Meta *struct {
		Cached    bool   `json:"cached"`
		FetchedAt string `json:"fetchedAt"`
		TTL       int    `json:"ttl"`
	} `json:"meta"`
}

type testEnv struct {
	handler http.Handler
	prov    *provider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logger.New(os.Stdout, logger.LevelError, "TEST", nil)

	enabledTn := tenancybus.Tenancy{
		ID:      uuid.New(),
		Name:    name.MustParse("Contoso"),
		Enabled: true,
		Flags:   tenancybus.Flags{Presence: true, OutOfOffice: true},
	}

	disabledTn := tenancybus.Tenancy{
		ID:      uuid.New(),
		Name:    name.MustParse("Fabrikam"),
		Enabled: false,
		Flags:   tenancybus.Flags{Presence: true},
	}

	ts := &tenancyStorer{byID: map[uuid.UUID]tenancybus.Tenancy{
		enabledTn.ID:  enabledTn,
		disabledTn.ID: disabledTn,
	}}

	rs := &routeStorer{byDomain: map[string]routebus.Domain{
		"contoso.com": {
			ID:        uuid.New(),
			TenancyID: enabledTn.ID,
			Domain:    hostdomain.MustParse("contoso.com"),
		},
		"fabrikam.com": {
			ID:        uuid.New(),
			TenancyID: disabledTn.ID,
			Domain:    hostdomain.MustParse("fabrikam.com"),
		},
		"nopresence.com": {
			ID:        uuid.New(),
			TenancyID: enabledTn.ID,
			Domain:    hostdomain.MustParse("nopresence.com"),
			Overrides: routebus.Overrides{Presence: override.Disabled},
		},
	}}

	prov := &provider{snap: presencebus.Snapshot{}}

	tenancyBus := tenancybus.NewCore(log, ts)
	routeBus := routebus.NewCore(log, tenancyBus, rs)
	presenceBus := presencebus.NewCore(log, &memCache{snaps: make(map[string]presencebus.Snapshot)}, prov)

	app := web.NewApp(log.Info, nil)
	presenceapp.Routes(app, presenceapp.Config{
		Log:         log,
		RouteBus:    routeBus,
		PresenceBus: presenceBus,
	})

	return &testEnv{handler: app, prov: prov}
}

func (te *testEnv) get(t *testing.T, url string) envelope {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, url, nil)

	te.handler.ServeHTTP(w, r)

	// The addin surface always answers 200; failures are envelope data.
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	return env
}

func TestLookupSuccess(t *testing.T) {
	te := newTestEnv(t)

	activity := "Available"
	te.prov.snap = presencebus.Snapshot{Activity: &activity, Availability: &activity}

	env := te.get(t, "/v1/presence/ana@contoso.com")
	assert.True(t, env.OK)
	assert.Empty(t, env.Reason)
	require.NotNil(t, env.Data)
	assert.Equal(t, "Available", *env.Data.Activity)

	// The data object carries the cache facts alongside the payload.
	assert.False(t, env.Data.Cached)
	assert.Equal(t, 300, env.Data.TTL)
	assert.NotEmpty(t, env.Data.FetchedAt)

	require.NotNil(t, env.Meta)
	assert.False(t, env.Meta.Cached)
	assert.Equal(t, 300, env.Meta.TTL)
}

func TestLookupTTLClamped(t *testing.T) {
	te := newTestEnv(t)

	env := te.get(t, "/v1/presence/ana@contoso.com?ttl=5")
	assert.True(t, env.OK)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 30, env.Meta.TTL)

	env = te.get(t, "/v1/presence/rui@contoso.com?ttl=junk")
	require.NotNil(t, env.Meta)
	assert.Equal(t, 300, env.Meta.TTL)
}

func TestLookupInvalidEmail(t *testing.T) {
	te := newTestEnv(t)

	env := te.get(t, "/v1/presence/not-an-email")
	assert.False(t, env.OK)
	assert.Equal(t, "invalid_email", env.Reason)
	assert.Nil(t, env.Data)
}

func TestLookupUnmappedDomain(t *testing.T) {
	te := newTestEnv(t)

	env := te.get(t, "/v1/presence/ana@unknown.com")
	assert.False(t, env.OK)
	assert.Equal(t, "unmapped_domain", env.Reason)
}

func TestLookupTenancyDisabled(t *testing.T) {
	te := newTestEnv(t)

	env := te.get(t, "/v1/presence/ana@fabrikam.com")
	assert.False(t, env.OK)
	assert.Equal(t, "tenancy_disabled", env.Reason)
}

func TestLookupFeatureDisabled(t *testing.T) {
	te := newTestEnv(t)

	env := te.get(t, "/v1/presence/ana@nopresence.com")
	assert.False(t, env.OK)
	assert.Equal(t, "feature_disabled", env.Reason)
}

func TestLookupNoPresence(t *testing.T) {
	te := newTestEnv(t)
	te.prov.err = presencebus.ErrNoPresence

	// Upstream 403/404 is "unknown presence", not a fault: no error key.
	env := te.get(t, "/v1/presence/ana@contoso.com")
	assert.False(t, env.OK)
	assert.Equal(t, "no_presence", env.Reason)
	assert.Empty(t, env.Error)
	assert.Nil(t, env.Data)
}

func TestLookupFetchFailed(t *testing.T) {
	te := newTestEnv(t)
	te.prov.err = errors.New("upstream timeout")

	env := te.get(t, "/v1/presence/ana@contoso.com")
	assert.False(t, env.OK)
	assert.Equal(t, "fetch_failed", env.Reason)
	assert.Equal(t, "presence_fetch_failed", env.Error)
	assert.Nil(t, env.Data)
}

func TestOutOfOffice(t *testing.T) {
	te := newTestEnv(t)

	env := te.get(t, "/v1/outofoffice/ana@contoso.com")
	assert.True(t, env.OK)
}
