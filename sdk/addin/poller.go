package addin

import (
	"context"
	"sync"
	"time"
)

// State identifies where the poller is in its lifecycle.
type State int

// The set of poller states.
const (
	StateIdle State = iota
	StatePolling
	StatePaused
	StateTornDown
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StatePolling:
		return "POLLING"
	case StatePaused:
		return "PAUSED"
	case StateTornDown:
		return "TORNDOWN"
	}
	return "UNKNOWN"
}

// DefaultInterval is the cadence between refreshes, measured from the
// completion of the previous fetch.
const DefaultInterval = 60 * time.Second

// FetchFunc performs one forced presence refresh.
type FetchFunc func(ctx context.Context) (Result, error)

// ResultFunc receives the outcome of each refresh. A non-nil error does
// not stop the loop; the next refresh fires on the normal cadence.
type ResultFunc func(result Result, err error)

// Poller re-fetches presence for one person while their detail view is
// visible. One poller serves one selection; a new selection gets a new
// poller.
type Poller struct {
	fetch    FetchFunc
	onResult ResultFunc
	interval time.Duration
	after    func(time.Duration) <-chan time.Time

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	wake   chan struct{}
	done   chan struct{}
}

// PollerOption configures optional poller settings.
type PollerOption func(*Poller)

// WithInterval overrides the refresh cadence.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.interval = d
	}
}

// WithAfter replaces the timer source. Tests inject a channel they
// control instead of waiting on the wall clock.
func WithAfter(after func(time.Duration) <-chan time.Time) PollerOption {
	return func(p *Poller) {
		p.after = after
	}
}

// NewPoller constructs a poller in the Idle state.
func NewPoller(fetch FetchFunc, onResult ResultFunc, opts ...PollerOption) *Poller {
	p := Poller{
		fetch:    fetch,
		onResult: onResult,
		interval: DefaultInterval,
		after:    time.After,
		state:    StateIdle,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(&p)
	}

	return &p
}

// State reports the current lifecycle state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// Visible moves the poller into Polling. From Idle it starts the loop
// with an immediate forced refresh. From Paused it resumes, again with
// an immediate forced refresh. Any other state is a no-op.
func (p *Poller) Visible(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateIdle:
		ctx, cancel := context.WithCancel(ctx)
		p.cancel = cancel
		p.state = StatePolling
		go p.loop(ctx)

	case StatePaused:
		p.state = StatePolling
		p.signal()
	}
}

// Hidden moves a Polling poller into Paused. The pending timer is
// abandoned and no refresh occurs until Visible is called again.
func (p *Poller) Hidden() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StatePolling {
		return
	}

	p.state = StatePaused
	p.signal()
}

// Refresh requests an immediate forced refresh, restarting the cycle.
// It never stacks a second in-flight request. Only a Polling poller
// reacts.
func (p *Poller) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StatePolling {
		return
	}

	p.signal()
}

// Teardown cancels any in-flight request and pending timer and waits
// for the loop to exit. The poller cannot be reused afterwards.
func (p *Poller) Teardown() {
	p.mu.Lock()

	if p.state == StateTornDown {
		p.mu.Unlock()
		return
	}

	started := p.cancel != nil
	p.state = StateTornDown
	if started {
		p.cancel()
	}
	p.mu.Unlock()

	if started {
		<-p.done
	}
}

// loop owns all fetching. It is the only goroutine that calls fetch, so
// at most one request is in flight per poller. Wake signals coalesce,
// so the loop re-reads the shared state after every wakeup; the latest
// transition always wins, no matter how fast visibility toggled while a
// fetch or a sleep was in progress.
func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)

	for {
		switch p.State() {
		case StateTornDown:
			return

		case StatePaused:
			select {
			case <-ctx.Done():
				return

			case <-p.wake:
			}
			continue
		}

		result, err := p.fetch(ctx)
		if ctx.Err() != nil {
			return
		}

		if p.onResult != nil {
			p.onResult(result, err)
		}

		// A pause that landed during the fetch skips the timer.
		if p.State() != StatePolling {
			continue
		}

		// Interval counts from completion of the fetch above.
		timer := p.after(p.interval)

		select {
		case <-ctx.Done():
			return

		case <-timer:

		case <-p.wake:
		}
	}
}

// signal performs a non-blocking send so repeated notifications
// coalesce instead of blocking the caller. Callers hold p.mu, so the
// state the loop reads after draining the channel is never older than
// the signal itself.
func (p *Poller) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}
