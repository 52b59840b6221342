package device

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrUnknownCommand is returned by Send for a command the endpoint does not define.
var ErrUnknownCommand = errors.New("unknown command")

// NetworkError reports a request that failed at the transport level or was
// answered with a non-2xx status.
type NetworkError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s returned status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the request ran out of time.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// DecodeError reports a response body that does not match the signal schema.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Kind classifies err for logging: "network", "timeout", "decode" or "other".
func Kind(err error) string {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "timeout"
		}
		return "network"
	}
	var decErr *DecodeError
	if errors.As(err, &decErr) {
		return "decode"
	}
	return "other"
}
