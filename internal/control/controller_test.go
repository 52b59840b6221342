package control

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/device"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/logger"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/reconcile"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/state"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, command string) error {
	args := m.Called(command)
	return args.Error(0)
}

// recordingSender keeps the order of sent commands.
type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingSender) Send(ctx context.Context, command string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, command)
	return nil
}

func (r *recordingSender) Sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

const (
	dirty state.Display = "dirty"
	clean state.Display = "clean"
)

func lightsTable() Table {
	return Table{
		clean: {"toggle": {To: dirty, Commands: []string{"greenLight/off", "redLight/on"}}},
		dirty: {"toggle": {To: clean, Commands: []string{"redLight/off", "greenLight/on"}}},
	}
}

func decodeLights(s device.State) (state.Display, bool) {
	switch {
	case s["redLight"] == "on" && s["greenLight"] == "off":
		return dirty, true
	case s["greenLight"] == "on" && s["redLight"] == "off":
		return clean, true
	}
	return "", false
}

func newLights(t *testing.T, initial state.Display, sender Sender, log *logger.Logger) (*Controller, *state.Store) {
	t.Helper()
	store := state.NewStore(initial, state.Connected)
	c, err := New(store, sender, Options{Signal: "lights", Table: lightsTable(), Decode: decodeLights, Logger: log})
	require.NoError(t, err)
	return c, store
}

func TestDo_LegalIntentUpdatesDisplayAndDispatchesInOrder(t *testing.T) {
	sender := &recordingSender{}
	c, store := newLights(t, dirty, sender, nil)

	ok := c.Do("toggle")
	require.True(t, ok)
	assert.Equal(t, clean, store.Snapshot().Display, "display must change before dispatch completes")

	c.Wait()
	assert.Equal(t, []string{"redLight/off", "greenLight/on"}, sender.Sent())
}

// slowFirstSender holds its first command until release is closed, then
// records every command in arrival order.
type slowFirstSender struct {
	recordingSender
	release chan struct{}
	once    sync.Once
	first   chan struct{}
}

func (s *slowFirstSender) Send(ctx context.Context, command string) error {
	held := false
	s.once.Do(func() { held = true })
	if held {
		close(s.first)
		<-s.release
	}
	return s.recordingSender.Send(ctx, command)
}

func TestDo_BackToBackIntentsKeepCommandOrder(t *testing.T) {
	sender := &slowFirstSender{release: make(chan struct{}), first: make(chan struct{})}
	c, store := newLights(t, dirty, sender, nil)

	require.True(t, c.Do("toggle"))
	<-sender.first
	require.True(t, c.Do("toggle"))
	assert.Equal(t, dirty, store.Snapshot().Display)

	close(sender.release)
	c.Wait()

	// The device must end up where the display is: red on, green off.
	assert.Equal(t, []string{"redLight/off", "greenLight/on", "greenLight/off", "redLight/on"}, sender.Sent())
}

func TestDo_ManyIntentsDrainInApplyOrder(t *testing.T) {
	sender := &recordingSender{}
	c, store := newLights(t, dirty, sender, nil)

	for i := 0; i < 10; i++ {
		require.True(t, c.Do("toggle"))
	}
	c.Wait()

	assert.Equal(t, dirty, store.Snapshot().Display)
	sent := sender.Sent()
	require.Len(t, sent, 20)
	for i := 0; i < len(sent); i += 4 {
		assert.Equal(t, []string{"redLight/off", "greenLight/on", "greenLight/off", "redLight/on"}, sent[i:i+4])
	}

	// The worker restarts after the queue ran dry.
	require.True(t, c.Do("toggle"))
	c.Wait()
	assert.Equal(t, []string{"redLight/off", "greenLight/on"}, sender.Sent()[20:])
}

func TestDo_IllegalIntentIsNoOp(t *testing.T) {
	sender := &mockSender{}
	c, store := newLights(t, dirty, sender, nil)

	assert.False(t, c.Do("pause"))
	c.Wait()

	assert.Equal(t, dirty, store.Snapshot().Display)
	sender.AssertNotCalled(t, "Send", mock.Anything)
}

func TestDo_DispatchFailureKeepsOptimisticState(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sender := &mockSender{}
	netErr := &device.NetworkError{Method: "POST", URL: "http://device/api/lights/redLight/off", Err: errors.New("connection refused")}
	sender.On("Send", "redLight/off").Return(netErr).Once()
	sender.On("Send", "greenLight/on").Return(nil).Once()

	c, store := newLights(t, dirty, sender, logger.FromZap(zap.New(core)))

	require.True(t, c.Do("toggle"))
	c.Wait()

	assert.Equal(t, clean, store.Snapshot().Display)
	sender.AssertExpectations(t)

	failures := logs.FilterMessage("command dispatch failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, zapcore.WarnLevel, failures[0].Level)
	assert.Equal(t, "redLight/off", failures[0].ContextMap()["command"])
	assert.Equal(t, "network", failures[0].ContextMap()["kind"])
}

func TestDo_DoesNotBlockOnSlowDevice(t *testing.T) {
	release := make(chan struct{})
	sender := &blockingSender{release: release}
	c, store := newLights(t, dirty, sender, nil)

	require.True(t, c.Do("toggle"))
	require.True(t, c.Do("toggle"))
	assert.Equal(t, dirty, store.Snapshot().Display)

	close(release)
	c.Wait()
}

type blockingSender struct {
	release chan struct{}
}

func (b *blockingSender) Send(ctx context.Context, command string) error {
	<-b.release
	return nil
}

func TestOnRemoteChanged_RemoteWins(t *testing.T) {
	c, store := newLights(t, dirty, &recordingSender{}, nil)

	// User toggles to clean, then the device reports dirty (someone pressed
	// the physical button).
	require.True(t, c.Do("toggle"))
	c.OnRemoteChanged(reconcile.Change{
		Signal: "lights",
		Old:    device.State{"redLight": "off", "greenLight": "on"},
		New:    device.State{"redLight": "on", "greenLight": "off"},
	})
	c.Wait()

	assert.Equal(t, dirty, store.Snapshot().Display)
}

func TestOnRemoteChanged_UndecodableStateIgnored(t *testing.T) {
	c, store := newLights(t, clean, &recordingSender{}, nil)

	c.OnRemoteChanged(reconcile.Change{New: device.State{"redLight": "on", "greenLight": "on"}})
	c.OnRemoteChanged(reconcile.Change{New: device.State{"redLight": "off", "greenLight": "off"}})

	assert.Equal(t, clean, store.Snapshot().Display)
}

func TestOnRemoteChanged_NoDispatch(t *testing.T) {
	sender := &mockSender{}
	c, _ := newLights(t, clean, sender, nil)

	c.OnRemoteChanged(reconcile.Change{New: device.State{"redLight": "on", "greenLight": "off"}})
	c.Wait()

	sender.AssertNotCalled(t, "Send", mock.Anything)
}

func TestDisplay_AlwaysEnumerated(t *testing.T) {
	sender := &recordingSender{}
	c, _ := newLights(t, dirty, sender, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Do("toggle")
		}()
		go func(i int) {
			defer wg.Done()
			next := device.State{"redLight": "on", "greenLight": "off"}
			if i%2 == 0 {
				next = device.State{"redLight": "off", "greenLight": "on"}
			}
			c.OnRemoteChanged(reconcile.Change{New: next})
		}(i)
	}
	wg.Wait()
	c.Wait()

	assert.Contains(t, []state.Display{dirty, clean}, c.Display())
}

func TestAllowed(t *testing.T) {
	c, _ := newLights(t, dirty, &recordingSender{}, nil)
	assert.True(t, c.Allowed("toggle"))
	assert.False(t, c.Allowed("start"))
}

func TestNew_RejectsInvalidConfiguration(t *testing.T) {
	sender := &recordingSender{}
	tests := []struct {
		name    string
		initial state.Display
		opts    Options
	}{
		{name: "empty table", initial: dirty, opts: Options{Decode: decodeLights}},
		{name: "missing decoder", initial: dirty, opts: Options{Table: lightsTable()}},
		{name: "initial not in table", initial: "broken", opts: Options{Table: lightsTable(), Decode: decodeLights}},
		{
			name:    "dangling target",
			initial: dirty,
			opts: Options{
				Table:  Table{dirty: {"toggle": {To: "nowhere"}}},
				Decode: decodeLights,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(state.NewStore(tt.initial, state.Connected), sender, tt.opts)
			assert.Error(t, err)
		})
	}

	_, err := New(nil, sender, Options{Table: lightsTable(), Decode: decodeLights})
	assert.Error(t, err)
	_, err = New(state.NewStore(dirty, state.Connected), nil, Options{Table: lightsTable(), Decode: decodeLights})
	assert.Error(t, err)
}
