package device

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Client talks to the device's HTTP API. It keeps no memory of prior results
// and never retries; the next poll tick is the retry.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	timeout   time.Duration
	validate  *validator.Validate
}

const (
	defaultBaseURL        = "http://10.0.0.122"
	defaultUserAgent      = "kitchenhub/0.1"
	DefaultRequestTimeout = time.Second
	maxBodyBytes          = 64 << 10
	statusSuccess         = "success"
)

// NewClient builds a Client for the device at baseURL ("10.0.0.122",
// "http://esp32.local:8080", ...). A non-positive timeout uses
// DefaultRequestTimeout.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
		timeout:   timeout,
		validate:  validator.New(),
	}, nil
}

// BaseURL returns the normalized device URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Read fetches the current state of the endpoint's signal.
func (c *Client) Read(ctx context.Context, ep Endpoint) (State, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	body, reqURL, err := c.do(ctx, http.MethodGet, ep.ReadPath(), true)
	if err != nil {
		return nil, err
	}
	state, err := c.decodeState(body, ep)
	if err != nil {
		return nil, &DecodeError{URL: reqURL, Err: err}
	}
	return state, nil
}

// Send posts a named command. The response body is ignored; only transport
// success and a 2xx status count.
func (c *Client) Send(ctx context.Context, ep Endpoint, command string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	path, ok := ep.CommandPath(command)
	if !ok {
		return fmt.Errorf("%s %q: %w", ep.Signal(), command, ErrUnknownCommand)
	}
	_, _, err := c.do(ctx, http.MethodPost, path, false)
	return err
}

// Signal binds an endpoint to this client.
func (c *Client) Signal(ep Endpoint) *Signal {
	return &Signal{client: c, endpoint: ep}
}

// Signal is a Client bound to one endpoint, the shape the reconciler and the
// controller consume.
type Signal struct {
	client   *Client
	endpoint Endpoint
}

// Name returns the signal name.
func (s *Signal) Name() string { return s.endpoint.Signal() }

// Endpoint returns the bound endpoint.
func (s *Signal) Endpoint() Endpoint { return s.endpoint }

// Read fetches the signal's current state.
func (s *Signal) Read(ctx context.Context) (State, error) {
	return s.client.Read(ctx, s.endpoint)
}

// Send posts a named command for the signal.
func (s *Signal) Send(ctx context.Context, command string) error {
	return s.client.Send(ctx, s.endpoint, command)
}

func (c *Client) do(ctx context.Context, method, path string, wantBody bool) ([]byte, string, error) {
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path}).String()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, reqURL, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, reqURL, &NetworkError{Method: method, URL: reqURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, reqURL, &NetworkError{Method: method, URL: reqURL, StatusCode: resp.StatusCode}
	}
	if !wantBody {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, reqURL, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, reqURL, &NetworkError{Method: method, URL: reqURL, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, reqURL, nil
}

// envelope is the part of every response shared by all signals.
type envelope struct {
	Status string `validate:"required,eq=success"`
}

// decodeState validates body against the endpoint schema and fails closed:
// a missing, unknown or out-of-range field is an error.
func (c *Client) decodeState(body []byte, ep Endpoint) (State, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("parse body: %w", err)
	}

	var env envelope
	if raw, ok := top["status"]; ok {
		if err := json.Unmarshal(raw, &env.Status); err != nil {
			return nil, fmt.Errorf("status: %w", err)
		}
	}
	if err := c.validate.Struct(env); err != nil {
		return nil, fmt.Errorf("status %q is not %q", env.Status, statusSuccess)
	}

	raw, ok := top[ep.Signal()]
	if !ok {
		return nil, fmt.Errorf("missing %q", ep.Signal())
	}

	state := State{}
	if ep.scalar() {
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("%s: %w", ep.Signal(), err)
		}
		state[ep.Signal()] = value
	} else {
		if err := json.Unmarshal(raw, &state); err != nil {
			return nil, fmt.Errorf("%s: %w", ep.Signal(), err)
		}
	}

	for name := range state {
		if _, known := ep.fields[name]; !known {
			return nil, fmt.Errorf("unknown field %q", name)
		}
	}
	for _, name := range ep.Fields() {
		value, present := state[name]
		if !present {
			return nil, fmt.Errorf("missing field %q", name)
		}
		rule := "required,oneof=" + strings.Join(ep.fields[name], " ")
		if err := c.validate.Var(value, rule); err != nil {
			return nil, fmt.Errorf("field %q value %q not in %v", name, value, ep.fields[name])
		}
	}
	return state, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
