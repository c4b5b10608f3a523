package addin_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/intradir/intradir/sdk/addin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// harness drives a poller with a hand-cranked timer so tests never wait
// on the wall clock.
type harness struct {
	poller    *addin.Poller
	fetches   chan context.Context
	results   chan error
	timer     chan time.Time
	intervals chan time.Duration
	gate      chan struct{}
}

func newHarness(t *testing.T, fetchErr error) *harness {
	t.Helper()

	h := harness{
		fetches:   make(chan context.Context, 16),
		results:   make(chan error, 16),
		timer:     make(chan time.Time),
		intervals: make(chan time.Duration, 16),
	}

	fetch := func(ctx context.Context) (addin.Result, error) {
		h.fetches <- ctx
		if h.gate != nil {
			<-h.gate
		}
		if fetchErr != nil {
			return addin.Result{}, fetchErr
		}
		return addin.Result{OK: true}, nil
	}

	onResult := func(_ addin.Result, err error) {
		h.results <- err
	}

	after := func(d time.Duration) <-chan time.Time {
		h.intervals <- d
		return h.timer
	}

	h.poller = addin.NewPoller(fetch, onResult, addin.WithAfter(after))

	return &h
}

func (h *harness) waitFetch(t *testing.T) context.Context {
	t.Helper()

	select {
	case ctx := <-h.fetches:
		return ctx
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a fetch")
		return nil
	}
}

func (h *harness) waitResult(t *testing.T) error {
	t.Helper()

	select {
	case err := <-h.results:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a result")
		return nil
	}
}

func (h *harness) waitInterval(t *testing.T) time.Duration {
	t.Helper()

	select {
	case d := <-h.intervals:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the timer to arm")
		return 0
	}
}

func (h *harness) assertNoFetch(t *testing.T) {
	t.Helper()

	select {
	case <-h.fetches:
		t.Fatal("unexpected fetch")
	case <-time.After(50 * time.Millisecond):
	}
}

func (h *harness) assertNoInterval(t *testing.T) {
	t.Helper()

	select {
	case <-h.intervals:
		t.Fatal("timer armed while paused")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPollerStartsIdle(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t, addin.StateIdle, h.poller.State())
	h.assertNoFetch(t)
}

func TestPollerCadenceMeasuredFromCompletion(t *testing.T) {
	h := newHarness(t, nil)

	h.poller.Visible(context.Background())
	assert.Equal(t, addin.StatePolling, h.poller.State())

	// Entering Polling triggers an immediate forced refresh.
	h.waitFetch(t)
	require.NoError(t, h.waitResult(t))

	// The timer arms only after the fetch completed, with the full
	// interval. A slow fetch therefore drifts the grid instead of
	// stacking requests.
	assert.Equal(t, addin.DefaultInterval, h.waitInterval(t))
	h.assertNoFetch(t)

	h.timer <- time.Now()
	h.waitFetch(t)
	require.NoError(t, h.waitResult(t))
	assert.Equal(t, addin.DefaultInterval, h.waitInterval(t))

	h.poller.Teardown()
}

func TestPollerFailureKeepsCadence(t *testing.T) {
	h := newHarness(t, errors.New("fetch failed"))

	h.poller.Visible(context.Background())

	h.waitFetch(t)
	assert.Error(t, h.waitResult(t))
	h.waitInterval(t)

	// The loop survives the failure and the next tick still fires.
	h.timer <- time.Now()
	h.waitFetch(t)
	assert.Error(t, h.waitResult(t))
	h.waitInterval(t)

	h.poller.Teardown()
}

func TestPollerPauseResume(t *testing.T) {
	h := newHarness(t, nil)

	h.poller.Visible(context.Background())
	h.waitFetch(t)
	h.waitResult(t)
	h.waitInterval(t)

	h.poller.Hidden()
	assert.Equal(t, addin.StatePaused, h.poller.State())
	h.assertNoFetch(t)

	// Resuming refreshes immediately, without waiting for any timer.
	h.poller.Visible(context.Background())
	assert.Equal(t, addin.StatePolling, h.poller.State())
	h.waitFetch(t)
	h.waitResult(t)
	h.waitInterval(t)

	h.poller.Teardown()
}

func TestPollerManualRefresh(t *testing.T) {
	h := newHarness(t, nil)

	h.poller.Visible(context.Background())
	h.waitFetch(t)
	h.waitResult(t)
	h.waitInterval(t)

	h.poller.Refresh()
	h.waitFetch(t)
	h.waitResult(t)
	h.waitInterval(t)

	h.poller.Teardown()
}

func TestPollerPauseDuringFetchWins(t *testing.T) {
	h := newHarness(t, nil)
	h.gate = make(chan struct{})

	h.poller.Visible(context.Background())
	h.waitFetch(t)

	// Visibility flips twice while the fetch is still in flight. The
	// final Hidden must stick even though the intermediate signals
	// coalesced.
	h.poller.Hidden()
	h.poller.Visible(context.Background())
	h.poller.Hidden()
	assert.Equal(t, addin.StatePaused, h.poller.State())

	h.gate <- struct{}{}
	h.waitResult(t)

	// Paused means paused: no timer, no refresh, whatever signals are
	// still buffered.
	h.assertNoInterval(t)
	h.assertNoFetch(t)
	assert.Equal(t, addin.StatePaused, h.poller.State())

	// Becoming visible again resumes with an immediate refresh.
	h.poller.Visible(context.Background())
	h.waitFetch(t)
	h.gate <- struct{}{}
	h.waitResult(t)
	h.waitInterval(t)

	h.poller.Teardown()
}

func TestPollerHiddenWhileSleepingStopsTimer(t *testing.T) {
	h := newHarness(t, nil)

	h.poller.Visible(context.Background())
	h.waitFetch(t)
	h.waitResult(t)
	h.waitInterval(t)

	// Toggle while the loop sleeps on the timer. The last transition
	// is Hidden, so the poller must end up parked.
	h.poller.Hidden()
	h.poller.Visible(context.Background())
	h.waitFetch(t)
	h.waitResult(t)
	h.waitInterval(t)

	h.poller.Hidden()
	h.assertNoFetch(t)
	assert.Equal(t, addin.StatePaused, h.poller.State())

	h.poller.Teardown()
}

func TestPollerTeardownCancelsInFlight(t *testing.T) {
	h := newHarness(t, nil)

	h.poller.Visible(context.Background())

	ctx := h.waitFetch(t)

	h.poller.Teardown()
	assert.Equal(t, addin.StateTornDown, h.poller.State())

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight context was not cancelled")
	}

	// No further transitions after teardown.
	h.poller.Visible(context.Background())
	assert.Equal(t, addin.StateTornDown, h.poller.State())
	h.poller.Refresh()
	h.assertNoFetch(t)
}
