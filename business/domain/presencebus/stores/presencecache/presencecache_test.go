package presencecache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/intradir/intradir/business/domain/presencebus"
	"github.com/intradir/intradir/business/domain/presencebus/stores/presencecache"
	"github.com/intradir/intradir/foundation/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotExpiry(t *testing.T) {
	log := logger.New(os.Stdout, logger.LevelError, "TEST", nil)

	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	store := presencecache.NewStore(log, 100, presencecache.WithClock(func() time.Time { return now }))

	ctx := context.Background()

	activity := "Available"
	snap := presencebus.Snapshot{Activity: &activity, FetchedAt: now, TTL: 60}
	require.NoError(t, store.SetSnapshot(ctx, "ana@example.com", snap, 60*time.Second))

	got, found, err := store.GetSnapshot(ctx, "ana@example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Available", *got.Activity)

	// Entries written with a different ttl expire independently.
	require.NoError(t, store.SetSnapshot(ctx, "rui@example.com", snap, 30*time.Second))

	now = now.Add(45 * time.Second)

	_, found, err = store.GetSnapshot(ctx, "rui@example.com")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = store.GetSnapshot(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.True(t, found)

	now = now.Add(30 * time.Second)

	_, found, err = store.GetSnapshot(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMiss(t *testing.T) {
	log := logger.New(os.Stdout, logger.LevelError, "TEST", nil)
	store := presencecache.NewStore(log, 100)

	_, found, err := store.GetSnapshot(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = store.GetOutOfOffice(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestOutOfOfficeRoundTrip(t *testing.T) {
	log := logger.New(os.Stdout, logger.LevelError, "TEST", nil)

	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	store := presencecache.NewStore(log, 100, presencecache.WithClock(func() time.Time { return now }))

	ctx := context.Background()

	msg := "Back Monday"
	ooo := presencebus.OutOfOffice{Status: "alwaysEnabled", Message: &msg, FetchedAt: now, TTL: 300}
	require.NoError(t, store.SetOutOfOffice(ctx, "ana@example.com", ooo, 300*time.Second))

	got, found, err := store.GetOutOfOffice(ctx, "ana@example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "alwaysEnabled", got.Status)
	assert.Equal(t, "Back Monday", *got.Message)
}
