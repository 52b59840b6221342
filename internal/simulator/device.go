package simulator

import (
	"fmt"
	"sync"
)

// Light and timer values as reported on the wire.
const (
	On  = "on"
	Off = "off"

	TimerRunning = "running"
	TimerPaused  = "paused"
	TimerStopped = "stopped"
)

// Light names.
const (
	RedLight   = "redLight"
	GreenLight = "greenLight"
)

// Device is the simulated ESP32 state: two LEDs and a timer.
type Device struct {
	mu     sync.Mutex
	lights map[string]string
	timer  string
}

// NewDevice returns a device as it boots: both LEDs off, timer stopped.
func NewDevice() *Device {
	return &Device{
		lights: map[string]string{RedLight: Off, GreenLight: Off},
		timer:  TimerStopped,
	}
}

// Lights returns a copy of the LED states.
func (d *Device) Lights() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return map[string]string{RedLight: d.lights[RedLight], GreenLight: d.lights[GreenLight]}
}

// Timer returns the timer state.
func (d *Device) Timer() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer
}

// SetLight switches one LED.
func (d *Device) SetLight(name, value string) error {
	if name != RedLight && name != GreenLight {
		return fmt.Errorf("unknown light %q", name)
	}
	if value != On && value != Off {
		return fmt.Errorf("unknown light value %q", value)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lights[name] = value
	return nil
}

// TimerCommand applies start, pause or stop.
func (d *Device) TimerCommand(cmd string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch cmd {
	case "start":
		d.timer = TimerRunning
	case "pause":
		d.timer = TimerPaused
	case "stop":
		d.timer = TimerStopped
	default:
		return fmt.Errorf("unknown timer command %q", cmd)
	}
	return nil
}

// PressLightsButton emulates the GPIO 21 button: dirty becomes clean and
// anything else becomes dirty.
func (d *Device) PressLightsButton() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lights[RedLight] == On && d.lights[GreenLight] == Off {
		d.lights[RedLight], d.lights[GreenLight] = Off, On
	} else {
		d.lights[RedLight], d.lights[GreenLight] = On, Off
	}
	return map[string]string{RedLight: d.lights[RedLight], GreenLight: d.lights[GreenLight]}
}

// PressTimerButton emulates the physical timer button: running pauses,
// anything else runs.
func (d *Device) PressTimerButton() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == TimerRunning {
		d.timer = TimerPaused
	} else {
		d.timer = TimerRunning
	}
	return d.timer
}
