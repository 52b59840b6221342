package binding

import "github.com/joshuaalexanderio/kitchen-iot-hub/internal/control"

// LightsControl wraps a controller for the lights binding.
type LightsControl struct {
	*control.Controller
}

// Toggle flips dirty and clean.
func (l LightsControl) Toggle() bool { return l.Do(Toggle) }

// TimerControl wraps a controller for the timer binding.
type TimerControl struct {
	*control.Controller
}

func (t TimerControl) Start() bool    { return t.Do(Start) }
func (t TimerControl) Pause() bool    { return t.Do(Pause) }
func (t TimerControl) Reset() bool    { return t.Do(Reset) }
func (t TimerControl) Complete() bool { return t.Do(Complete) }
