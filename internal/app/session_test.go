package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/binding"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/device"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/state"
)

// fakeDevice serves a settable state and records commands.
type fakeDevice struct {
	mu    sync.Mutex
	state device.State
	err   error
	reads int
	sent  []string
}

func (f *fakeDevice) Read(ctx context.Context) (device.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	return f.state.Clone(), nil
}

func (f *fakeDevice) Send(ctx context.Context, command string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, command)
	return nil
}

func (f *fakeDevice) set(s device.State, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = s
	f.err = err
}

func (f *fakeDevice) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func (f *fakeDevice) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

var (
	dirtyLights = device.State{"redLight": "on", "greenLight": "off"}
	cleanLights = device.State{"redLight": "off", "greenLight": "on"}
)

func startLights(t *testing.T, dev *fakeDevice) *Session {
	t.Helper()
	b, err := binding.Lights("dirty")
	require.NoError(t, err)
	s, err := StartSession(context.Background(), b, dev, SessionOptions{PollInterval: 5 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(s.Stop)
	return s
}

func TestSession_RemoteChangeUpdatesDisplay(t *testing.T) {
	dev := &fakeDevice{state: dirtyLights}
	s := startLights(t, dev)

	require.Eventually(t, func() bool { return dev.readCount() >= 2 }, time.Second, time.Millisecond)
	assert.Equal(t, binding.Dirty, s.Snapshot().Display)

	dev.set(cleanLights, nil)
	require.Eventually(t, func() bool { return s.Snapshot().Display == binding.Clean }, time.Second, time.Millisecond)
}

func TestSession_FailureMarksOffline(t *testing.T) {
	dev := &fakeDevice{state: dirtyLights}
	s := startLights(t, dev)

	dev.set(nil, &device.NetworkError{Method: "GET", URL: "http://device/api/lights", Err: errors.New("refused")})
	require.Eventually(t, func() bool { return s.Snapshot().IsOffline() }, time.Second, time.Millisecond)

	snap := s.Snapshot()
	assert.Equal(t, binding.Dirty, snap.Display)
	assert.Error(t, snap.LastError)
	assert.Positive(t, snap.ConsecutiveFailures)

	dev.set(dirtyLights, nil)
	require.Eventually(t, func() bool { return !s.Snapshot().IsOffline() }, time.Second, time.Millisecond)
	assert.Zero(t, s.Snapshot().ConsecutiveFailures)
}

func TestSession_DoDispatchesCommands(t *testing.T) {
	dev := &fakeDevice{state: dirtyLights}
	s := startLights(t, dev)

	require.True(t, s.Do(binding.Toggle))
	assert.Equal(t, binding.Clean, s.Snapshot().Display)

	require.Eventually(t, func() bool { return len(dev.commands()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"redLight/off", "greenLight/on"}, dev.commands())
}

func TestSession_StopEndsPolling(t *testing.T) {
	dev := &fakeDevice{state: dirtyLights}
	s := startLights(t, dev)
	require.Eventually(t, func() bool { return dev.readCount() >= 1 }, time.Second, time.Millisecond)

	s.Stop()
	s.Stop()
	reads := dev.readCount()
	dev.set(cleanLights, nil)
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, reads, dev.readCount())
	assert.Equal(t, binding.Dirty, s.Snapshot().Display)

	// Restart after Stop is ignored.
	s.Restart(context.Background())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, reads, dev.readCount())
}

func TestSession_RestartTakesFreshBaseline(t *testing.T) {
	dev := &fakeDevice{state: dirtyLights}
	s := startLights(t, dev)
	require.Eventually(t, func() bool { return dev.readCount() >= 1 }, time.Second, time.Millisecond)

	// User toggles to clean while the device still reports dirty; a fresh
	// reconciler must treat that report as a baseline, not a transition.
	require.True(t, s.Do(binding.Toggle))
	s.Restart(context.Background())
	before := dev.readCount()
	require.Eventually(t, func() bool { return dev.readCount() >= before+3 }, time.Second, time.Millisecond)

	assert.Equal(t, binding.Clean, s.Snapshot().Display)
}

func TestSession_RestartResetsHealth(t *testing.T) {
	dev := &fakeDevice{err: errors.New("down")}
	b, err := binding.Lights("dirty")
	require.NoError(t, err)
	s, err := StartSession(context.Background(), b, dev, SessionOptions{
		PollInterval:  time.Hour,
		InitialHealth: state.Connected,
	})
	require.NoError(t, err)
	t.Cleanup(s.Stop)

	require.Eventually(t, func() bool { return s.Snapshot().IsOffline() }, time.Second, time.Millisecond)
	require.Equal(t, 1, s.Snapshot().ConsecutiveFailures)

	// The device stays down; the restarted reconciler's first read fails
	// again and must count from zero.
	s.Restart(context.Background())
	require.Eventually(t, func() bool { return dev.readCount() >= 2 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return s.Snapshot().ConsecutiveFailures == 1 }, time.Second, time.Millisecond)
	assert.True(t, s.Snapshot().IsOffline())
	assert.Error(t, s.Snapshot().LastError)
}

func TestSession_InitialHealth(t *testing.T) {
	dev := &fakeDevice{err: errors.New("down")}
	b := binding.Timer()
	s, err := StartSession(context.Background(), b, dev, SessionOptions{
		PollInterval:  time.Hour,
		InitialHealth: state.Disconnected,
	})
	require.NoError(t, err)
	defer s.Stop()

	assert.Equal(t, "timer", s.Name())
	assert.True(t, s.Snapshot().IsOffline())
	assert.Equal(t, binding.Idle, s.Snapshot().Display)
}
