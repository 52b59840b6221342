package device

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// State is one observation of a device signal: field name to enumerated
// value, e.g. {"redLight": "on", "greenLight": "off"} or {"timer": "running"}.
// Values are replaced wholesale, never edited in place.
type State map[string]string

// Equal reports structural equality over the whole mapping.
func (s State) Equal(other State) bool {
	return maps.Equal(s, other)
}

// Clone returns an independent copy.
func (s State) Clone() State {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}

// String renders fields in key order, e.g. "greenLight=off redLight=on".
func (s State) String() string {
	keys := slices.Sorted(maps.Keys(s))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+s[k])
	}
	return strings.Join(parts, " ")
}

// Endpoint describes one pollable signal of a device: where to read it, the
// schema of its fields and the named commands it accepts. Endpoints are
// immutable once built.
type Endpoint struct {
	signal   string
	readPath string
	fields   map[string][]string
	commands map[string]string
}

// NewEndpoint builds the endpoint for signal following the device's URL
// layout: reads from /api/{signal}, commands at /api/{signal}/{command}.
// fields maps each field of the signal to its allowed values; a single field
// named after the signal means the payload is a bare value.
func NewEndpoint(signal string, fields map[string][]string, commands ...string) (Endpoint, error) {
	signal = strings.TrimSpace(signal)
	if signal == "" {
		return Endpoint{}, fmt.Errorf("signal name is empty")
	}
	if len(fields) == 0 {
		return Endpoint{}, fmt.Errorf("signal %q has no fields", signal)
	}
	ep := Endpoint{
		signal:   signal,
		readPath: "/api/" + signal,
		fields:   make(map[string][]string, len(fields)),
		commands: make(map[string]string, len(commands)),
	}
	for name, values := range fields {
		if len(values) == 0 {
			return Endpoint{}, fmt.Errorf("field %q of signal %q has no allowed values", name, signal)
		}
		ep.fields[name] = slices.Clone(values)
	}
	for _, cmd := range commands {
		cmd = strings.Trim(strings.TrimSpace(cmd), "/")
		if cmd == "" {
			return Endpoint{}, fmt.Errorf("empty command for signal %q", signal)
		}
		ep.commands[cmd] = ep.readPath + "/" + cmd
	}
	return ep, nil
}

// MustEndpoint is NewEndpoint for static definitions; it panics on error.
func MustEndpoint(signal string, fields map[string][]string, commands ...string) Endpoint {
	ep, err := NewEndpoint(signal, fields, commands...)
	if err != nil {
		panic(err)
	}
	return ep
}

// Signal returns the signal name.
func (e Endpoint) Signal() string { return e.signal }

// ReadPath returns the path polled for state.
func (e Endpoint) ReadPath() string { return e.readPath }

// CommandPath returns the path for a named command.
func (e Endpoint) CommandPath(command string) (string, bool) {
	path, ok := e.commands[command]
	return path, ok
}

// Commands lists the command names in sorted order.
func (e Endpoint) Commands() []string {
	return slices.Sorted(maps.Keys(e.commands))
}

// Fields lists the field names in sorted order.
func (e Endpoint) Fields() []string {
	return slices.Sorted(maps.Keys(e.fields))
}

// AllowedValues returns the allowed values for a field.
func (e Endpoint) AllowedValues(field string) []string {
	return slices.Clone(e.fields[field])
}

// scalar reports whether the signal payload is a bare value rather than an
// object of fields.
func (e Endpoint) scalar() bool {
	_, ok := e.fields[e.signal]
	return ok && len(e.fields) == 1
}
