package routebus_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/intradir/intradir/business/domain/routebus"
	"github.com/intradir/intradir/business/domain/tenancybus"
	"github.com/intradir/intradir/business/sdk/order"
	"github.com/intradir/intradir/business/sdk/page"
	"github.com/intradir/intradir/business/sdk/sqldb"
	"github.com/intradir/intradir/business/types/hostdomain"
	"github.com/intradir/intradir/business/types/name"
	"github.com/intradir/intradir/business/types/override"
	"github.com/intradir/intradir/foundation/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(os.Stdout, logger.LevelError, "TEST", nil)
}

// fakeStorer holds routing records keyed by domain value.
type fakeStorer struct {
	byDomain map[string]routebus.Domain
	created  []routebus.Domain
}

func newFakeStorer() *fakeStorer {
	return &fakeStorer{byDomain: make(map[string]routebus.Domain)}
}

func (s *fakeStorer) NewWithTx(_ sqldb.CommitRollbacker) (routebus.Storer, error) {
	return s, nil
}

func (s *fakeStorer) Create(_ context.Context, d routebus.Domain) error {
	s.created = append(s.created, d)
	s.byDomain[d.Domain.String()] = d
	return nil
}

func (s *fakeStorer) Update(_ context.Context, d routebus.Domain) error {
	s.byDomain[d.Domain.String()] = d
	return nil
}

func (s *fakeStorer) Delete(_ context.Context, d routebus.Domain) error {
	delete(s.byDomain, d.Domain.String())
	return nil
}

func (s *fakeStorer) Query(_ context.Context, _ order.By, _ page.Page) ([]routebus.Domain, error) {
	var out []routebus.Domain
	for _, d := range s.byDomain {
		out = append(out, d)
	}
	return out, nil
}

func (s *fakeStorer) Count(_ context.Context) (int, error) {
	return len(s.byDomain), nil
}

func (s *fakeStorer) QueryByID(_ context.Context, domainID uuid.UUID) (routebus.Domain, error) {
	for _, d := range s.byDomain {
		if d.ID == domainID {
			return d, nil
		}
	}
	return routebus.Domain{}, routebus.ErrNotFound
}

func (s *fakeStorer) QueryByDomain(_ context.Context, domain hostdomain.HostDomain) (routebus.Domain, error) {
	d, ok := s.byDomain[domain.String()]
	if !ok {
		return routebus.Domain{}, routebus.ErrNotFound
	}
	return d, nil
}

// fakeTenancyStorer serves tenancies by ID.
type fakeTenancyStorer struct {
	byID map[uuid.UUID]tenancybus.Tenancy
}

func (s *fakeTenancyStorer) NewWithTx(_ sqldb.CommitRollbacker) (tenancybus.Storer, error) {
	return s, nil
}

func (s *fakeTenancyStorer) Create(_ context.Context, t tenancybus.Tenancy) error {
	s.byID[t.ID] = t
	return nil
}

func (s *fakeTenancyStorer) Update(_ context.Context, t tenancybus.Tenancy) error {
	s.byID[t.ID] = t
	return nil
}

func (s *fakeTenancyStorer) Delete(_ context.Context, t tenancybus.Tenancy) error {
	delete(s.byID, t.ID)
	return nil
}

func (s *fakeTenancyStorer) Query(_ context.Context, _ order.By, _ page.Page) ([]tenancybus.Tenancy, error) {
	var out []tenancybus.Tenancy
	for _, t := range s.byID {
		out = append(out, t)
	}
	return out, nil
}

func (s *fakeTenancyStorer) Count(_ context.Context) (int, error) {
	return len(s.byID), nil
}

func (s *fakeTenancyStorer) QueryByID(_ context.Context, tenancyID uuid.UUID) (tenancybus.Tenancy, error) {
	t, ok := s.byID[tenancyID]
	if !ok {
		return tenancybus.Tenancy{}, tenancybus.ErrNotFound
	}
	return t, nil
}

func testTenancy(flags tenancybus.Flags, enabled bool) tenancybus.Tenancy {
	return tenancybus.Tenancy{
		ID:      uuid.New(),
		Name:    name.MustParse("Contoso"),
		Enabled: enabled,
		Flags:   flags,
	}
}

func newCores(tenancies ...tenancybus.Tenancy) (*routebus.Core, *fakeStorer) {
	ts := &fakeTenancyStorer{byID: make(map[uuid.UUID]tenancybus.Tenancy)}
	for _, tn := range tenancies {
		ts.byID[tn.ID] = tn
	}

	log := testLogger()
	storer := newFakeStorer()

	return routebus.NewCore(log, tenancybus.NewCore(log, ts), storer), storer
}

func TestValidateOverrides(t *testing.T) {
	tn := testTenancy(tenancybus.Flags{
		Presence:     true,
		Photos:       false,
		OutOfOffice:  true,
		LocalGroups:  false,
		GlobalGroups: true,
	}, true)

	ok := routebus.Overrides{
		Presence:    override.Enabled,
		Photos:      override.Disabled,
		OutOfOffice: override.Inherit,
		LocalGroups: override.Inherit,
	}
	assert.NoError(t, routebus.ValidateOverrides(tn, ok))

	bad := routebus.Overrides{
		Photos:      override.Enabled,
		LocalGroups: override.Enabled,
	}

	err := routebus.ValidateOverrides(tn, bad)
	require.Error(t, err)

	var vs routebus.OverrideViolations
	require.ErrorAs(t, err, &vs)
	require.Len(t, vs, 2)
	assert.Equal(t, "enablePhotos", vs[0].Flag)
	assert.Equal(t, "enableLocalGroups", vs[1].Flag)
	assert.Equal(t, "Contoso", vs[0].Tenancy)
}

func TestCreateRejectsInvalidOverrides(t *testing.T) {
	tn := testTenancy(tenancybus.Flags{Presence: false}, true)
	core, storer := newCores(tn)

	nd := routebus.NewDomain{
		TenancyID: tn.ID,
		Domain:    hostdomain.MustParse("example.com"),
		Overrides: routebus.Overrides{Presence: override.Enabled},
	}

	_, err := core.Create(context.Background(), tn, nd)

	var vs routebus.OverrideViolations
	require.ErrorAs(t, err, &vs)

	// Nothing may be persisted on a rejected create.
	assert.Empty(t, storer.created)
}

func TestUpdateRevalidatesAgainstTenancy(t *testing.T) {
	tn := testTenancy(tenancybus.Flags{Presence: true, Photos: false}, true)
	core, _ := newCores(tn)

	d, err := core.Create(context.Background(), tn, routebus.NewDomain{
		TenancyID: tn.ID,
		Domain:    hostdomain.MustParse("example.com"),
	})
	require.NoError(t, err)

	bad := routebus.Overrides{Photos: override.Enabled}
	_, err = core.Update(context.Background(), tn, d, routebus.UpdateDomain{Overrides: &bad})

	var vs routebus.OverrideViolations
	require.ErrorAs(t, err, &vs)
	require.Len(t, vs, 1)
	assert.Equal(t, "enablePhotos", vs[0].Flag)
}

func TestResolveDomain(t *testing.T) {
	tn := testTenancy(tenancybus.Flags{
		Presence:       true,
		Photos:         true,
		OutOfOffice:    false,
		GroupSendCheck: true,
	}, true)
	core, _ := newCores(tn)

	_, err := core.Create(context.Background(), tn, routebus.NewDomain{
		TenancyID: tn.ID,
		Domain:    hostdomain.MustParse("example.com"),
		Overrides: routebus.Overrides{
			Photos:      override.Disabled,
			OutOfOffice: override.Disabled,
		},
	})
	require.NoError(t, err)

	route, err := core.ResolveDomain(context.Background(), hostdomain.MustParse("example.com"))
	require.NoError(t, err)

	assert.True(t, route.Tenancy.Enabled)
	assert.True(t, route.Flags.Presence)
	assert.False(t, route.Flags.Photos)
	assert.False(t, route.Flags.OutOfOffice)
	assert.False(t, route.Flags.LocalGroups)

	// GroupSendCheck has no per-domain override and tracks the tenancy.
	assert.True(t, route.Flags.GroupSendCheck)
}

func TestResolveDomainNotFound(t *testing.T) {
	core, _ := newCores()

	_, err := core.ResolveDomain(context.Background(), hostdomain.MustParse("unmapped.com"))
	assert.ErrorIs(t, err, routebus.ErrNotFound)
}

func TestResolveDomainDisabledTenancyStillReturned(t *testing.T) {
	tn := testTenancy(tenancybus.Flags{Presence: true}, false)
	core, _ := newCores(tn)

	_, err := core.Create(context.Background(), tn, routebus.NewDomain{
		TenancyID: tn.ID,
		Domain:    hostdomain.MustParse("example.com"),
	})
	require.NoError(t, err)

	route, err := core.ResolveDomain(context.Background(), hostdomain.MustParse("example.com"))
	require.NoError(t, err)
	assert.False(t, route.Tenancy.Enabled)
	assert.True(t, route.Flags.Presence)
}

func TestResolveDomainStaleOverrideAfterFlagLowered(t *testing.T) {
	tn := testTenancy(tenancybus.Flags{Presence: true}, true)

	ts := &fakeTenancyStorer{byID: map[uuid.UUID]tenancybus.Tenancy{tn.ID: tn}}
	log := testLogger()
	core := routebus.NewCore(log, tenancybus.NewCore(log, ts), newFakeStorer())

	_, err := core.Create(context.Background(), tn, routebus.NewDomain{
		TenancyID: tn.ID,
		Domain:    hostdomain.MustParse("example.com"),
		Overrides: routebus.Overrides{Presence: override.Enabled},
	})
	require.NoError(t, err)

	// Lowering the tenancy flag afterwards does not cascade into the
	// persisted override; the explicit enable keeps resolving verbatim
	// until an admin revisits the domain.
	tn.Flags.Presence = false
	ts.byID[tn.ID] = tn

	route, err := core.ResolveDomain(context.Background(), hostdomain.MustParse("example.com"))
	require.NoError(t, err)
	assert.True(t, route.Flags.Presence)
}

func TestResolveEmail(t *testing.T) {
	tn := testTenancy(tenancybus.Flags{Presence: true}, true)
	core, _ := newCores(tn)

	_, err := core.Create(context.Background(), tn, routebus.NewDomain{
		TenancyID: tn.ID,
		Domain:    hostdomain.MustParse("example.com"),
	})
	require.NoError(t, err)

	route, err := core.ResolveEmail(context.Background(), "Ana.Silva@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, "example.com", route.Domain.Domain.String())

	_, err = core.ResolveEmail(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, hostdomain.ErrInvalid)
}
