package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/device"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/logger"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/state"
)

const defaultInterval = 500 * time.Millisecond

// Reader fetches the remote state of one signal. *device.Signal implements it.
type Reader interface {
	Read(ctx context.Context) (device.State, error)
}

// Change is emitted when a poll observes a remote state different from the
// previous snapshot.
type Change struct {
	Signal string
	Old    device.State
	New    device.State
	At     time.Time
}

// Ticker is the subset of time.Ticker the poll loop needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Options configure a Reconciler.
type Options struct {
	Signal        string
	Interval      time.Duration // zero uses 500ms
	InitialHealth state.Health  // zero value is Connected
	OnChange      func(Change)
	OnPoll        func(err error) // called after every completed poll
	NewTicker     func(time.Duration) Ticker
	Now           func() time.Time
	Logger        *logger.Logger
}

// Reconciler polls one signal and reports transitions. It owns the
// RemoteSnapshot: empty until the first successful poll, replaced wholesale
// on every later change, cleared by Stop.
type Reconciler struct {
	reader Reader
	opts   Options
	log    *logger.Logger

	pollMu sync.Mutex // serializes polls

	mu          sync.Mutex
	snapshot    device.State
	hasSnapshot bool
	health      state.Health
	stopped     bool

	lifeMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a Reconciler for reader.
func New(reader Reader, opts Options) *Reconciler {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.NewTicker == nil {
		opts.NewTicker = newTimeTicker
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Reconciler{
		reader: reader,
		opts:   opts,
		log:    log.Named("reconcile").With("signal", opts.Signal),
		health: opts.InitialHealth,
	}
}

// Health returns the health recorded by the most recent poll.
func (r *Reconciler) Health() state.Health {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.health
}

// Snapshot returns a copy of the last observed remote state and whether one
// exists yet.
func (r *Reconciler) Snapshot() (device.State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot.Clone(), r.hasSnapshot
}

// Poll runs one tick: read, fold the outcome into health, diff against the
// snapshot, emit a Change on a real transition. Errors never escape.
//
// The read is detached from ctx cancellation so an in-flight request
// completes or times out on its own; its result is discarded if ctx ended or
// the reconciler was stopped meanwhile.
func (r *Reconciler) Poll(ctx context.Context) {
	r.pollMu.Lock()
	defer r.pollMu.Unlock()

	if ctx.Err() != nil || r.isStopped() {
		return
	}

	remote, err := r.reader.Read(context.WithoutCancel(ctx))
	if ctx.Err() != nil || r.isStopped() {
		return
	}

	if err != nil {
		r.recordFailure(err)
		if r.opts.OnPoll != nil {
			r.opts.OnPoll(err)
		}
		return
	}

	r.recordSuccess()
	if r.opts.OnPoll != nil {
		r.opts.OnPoll(nil)
	}

	if change, ok := r.observe(remote); ok && r.opts.OnChange != nil {
		r.opts.OnChange(change)
	}
}

// Run polls immediately and then on every tick until ctx ends. Ticks run on
// this goroutine, so they never overlap; a tick that comes due while a poll
// is still running is dropped by the ticker rather than queued.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := r.opts.NewTicker(r.opts.Interval)
	defer ticker.Stop()

	r.log.Debugw("poll loop started", "interval", r.opts.Interval)
	for {
		r.Poll(ctx)
		select {
		case <-ctx.Done():
			r.log.Debugw("poll loop stopped")
			return
		case <-ticker.C():
		}
	}
}

// Start launches Run on its own goroutine. Calling Start twice is a no-op.
func (r *Reconciler) Start(ctx context.Context) {
	r.lifeMu.Lock()
	defer r.lifeMu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done
	go func() {
		defer close(done)
		r.Run(ctx)
	}()
}

// Stop cancels the poll loop, waits for it to exit and clears the snapshot.
// No Change is emitted and no state is mutated once Stop has begun. A stopped
// reconciler cannot be restarted; build a new one.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	r.lifeMu.Lock()
	cancel, done := r.cancel, r.done
	r.lifeMu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}

	r.mu.Lock()
	r.snapshot = nil
	r.hasSnapshot = false
	r.mu.Unlock()
}

func (r *Reconciler) isStopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

func (r *Reconciler) recordFailure(err error) {
	r.mu.Lock()
	prev := r.health
	r.health = state.Disconnected
	r.mu.Unlock()

	if prev == state.Connected {
		r.log.Warnw("device unreachable", "kind", device.Kind(err), "err", err)
		return
	}
	r.log.Debugw("poll failed", "kind", device.Kind(err), "err", err)
}

func (r *Reconciler) recordSuccess() {
	r.mu.Lock()
	prev := r.health
	r.health = state.Connected
	r.mu.Unlock()

	if prev == state.Disconnected {
		r.log.Infow("device reachable")
	}
}

// observe stores remote as the new snapshot. The first observation is a
// baseline and never a Change.
func (r *Reconciler) observe(remote device.State) (Change, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasSnapshot {
		r.snapshot = remote.Clone()
		r.hasSnapshot = true
		r.log.Debugw("baseline observed", "state", remote.String())
		return Change{}, false
	}
	if r.snapshot.Equal(remote) {
		return Change{}, false
	}

	change := Change{
		Signal: r.opts.Signal,
		Old:    r.snapshot,
		New:    remote.Clone(),
		At:     r.opts.Now(),
	}
	r.snapshot = change.New.Clone()
	r.log.Infow("remote changed", "from", change.Old.String(), "to", change.New.String())
	return change, true
}

type timeTicker struct {
	t *time.Ticker
}

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }
