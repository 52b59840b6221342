package control

import (
	"context"
	"fmt"
	"sync"

	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/device"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/logger"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/reconcile"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/state"
)

// Intent is a user action on a binding, e.g. "toggle" or "pause".
type Intent string

// Transition is the outcome of a legal intent: the new display value and the
// device commands that make the remote side follow.
type Transition struct {
	To       state.Display
	Commands []string
}

// Table maps the current display value and an intent to a Transition.
// Pairs missing from the table are illegal and ignored.
type Table map[state.Display]map[Intent]Transition

// Lookup returns the transition for intent from the display value from.
func (t Table) Lookup(from state.Display, intent Intent) (Transition, bool) {
	row, ok := t[from]
	if !ok {
		return Transition{}, false
	}
	tr, ok := row[intent]
	return tr, ok
}

// Validate checks that every target of the table is itself a row of the
// table, so the display value never leaves the enumerated set.
func (t Table) Validate() error {
	for from, row := range t {
		for intent, tr := range row {
			if _, ok := t[tr.To]; !ok {
				return fmt.Errorf("transition %s --%s--> %s: target is not a known state", from, intent, tr.To)
			}
		}
	}
	return nil
}

// Decoder maps a remote snapshot onto a display value. ok is false for
// remote states that have no display counterpart.
type Decoder func(device.State) (state.Display, bool)

// Sender delivers a named command to the device. *device.Signal implements it.
type Sender interface {
	Send(ctx context.Context, command string) error
}

// Options configure a Controller.
type Options struct {
	Signal string
	Table  Table
	Decode Decoder
	Logger *logger.Logger
}

// Controller applies intents to the display state at once and asks the
// device to follow in the background. Remote changes observed by the
// reconciler overwrite the display unconditionally.
type Controller struct {
	store  *state.Store
	sender Sender
	table  Table
	decode Decoder
	log    *logger.Logger

	// Commands of every intent, in the order the intents were applied.
	// At most one drain goroutine sends them.
	mu      sync.Mutex
	pending []string
	sending bool
	wg      sync.WaitGroup
}

// New builds a Controller around store. The store's current display value
// must be a row of opts.Table.
func New(store *state.Store, sender Sender, opts Options) (*Controller, error) {
	if store == nil {
		return nil, fmt.Errorf("state store is required")
	}
	if sender == nil {
		return nil, fmt.Errorf("sender is required")
	}
	if len(opts.Table) == 0 {
		return nil, fmt.Errorf("transition table is empty")
	}
	if err := opts.Table.Validate(); err != nil {
		return nil, err
	}
	if opts.Decode == nil {
		return nil, fmt.Errorf("decoder is required")
	}
	if current := store.Snapshot().Display; opts.Table[current] == nil {
		return nil, fmt.Errorf("initial state %q is not in the transition table", current)
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{
		store:  store,
		sender: sender,
		table:  opts.Table,
		decode: opts.Decode,
		log:    log.Named("control").With("signal", opts.Signal),
	}, nil
}

// Display returns the current display value.
func (c *Controller) Display() state.Display {
	return c.store.Snapshot().Display
}

// Allowed reports whether intent is legal from the current display value.
func (c *Controller) Allowed(intent Intent) bool {
	_, ok := c.table.Lookup(c.Display(), intent)
	return ok
}

// Do applies intent. It returns false, changing nothing and sending nothing,
// when the intent is not legal from the current display value. It never
// blocks on the network.
func (c *Controller) Do(intent Intent) bool {
	from, to, ok := c.store.Apply(func(current state.Display) (state.Display, bool) {
		tr, ok := c.table.Lookup(current, intent)
		if !ok {
			return current, false
		}
		// Queued under the store lock so command order matches apply order.
		c.enqueue(tr.Commands)
		return tr.To, true
	})
	if !ok {
		c.log.Debugw("intent ignored", "intent", intent, "state", from)
		return false
	}

	c.log.Debugw("intent applied", "intent", intent, "from", from, "to", to)
	return true
}

// OnRemoteChanged reconciles the display with a remote transition. Remote
// wins: a decodable snapshot overwrites whatever the user last did.
func (c *Controller) OnRemoteChanged(change reconcile.Change) {
	display, ok := c.decode(change.New)
	if !ok {
		c.log.Debugw("remote state has no display value", "state", change.New.String())
		return
	}
	if prev := c.store.Overwrite(display); prev != display {
		c.log.Infow("display reconciled", "from", prev, "to", display)
	}
}

// Wait blocks until every dispatched command has completed or failed.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// enqueue appends commands to the send queue and starts the drain goroutine
// if none is running. It never blocks on the network.
func (c *Controller) enqueue(commands []string) {
	if len(commands) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, commands...)
	if c.sending {
		return
	}
	c.sending = true
	c.wg.Add(1)
	go c.drain()
}

// drain sends queued commands one at a time until the queue is empty. A
// failed command is logged and the rest are still sent. No retries.
func (c *Controller) drain() {
	defer c.wg.Done()
	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.sending = false
			c.mu.Unlock()
			return
		}
		cmd := c.pending[0]
		c.pending = c.pending[1:]
		c.mu.Unlock()

		if err := c.sender.Send(context.Background(), cmd); err != nil {
			c.log.Warnw("command dispatch failed", "command", cmd, "kind", device.Kind(err), "err", err)
			continue
		}
		c.log.Debugw("command sent", "command", cmd)
	}
}
