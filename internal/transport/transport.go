// Package transport fetches remote audio files. Fetches never return an
// error value: failures are carried in the Response so callers can count
// them per word and move on.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// DefaultMaxBodyBytes caps the size of a downloaded file.
const DefaultMaxBodyBytes = 10 * 1024 * 1024

// Response is the outcome of a GET.
type Response struct {
	Status int
	Body   []byte
	Err    error // transport failure, nil when a status was received
}

// OK reports whether the status is in [200,300) and no transport error occurred.
func (r Response) OK() bool {
	return r.Err == nil && r.Status >= 200 && r.Status < 300
}

// Transport performs non-throwing HTTP GETs.
type Transport interface {
	Get(ctx context.Context, url string) Response
}

// Options configures the HTTP transport.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64

	// Breaker settings: after MaxFailures consecutive failures (transport
	// errors or 5xx) requests fail fast for OpenTimeout.
	MaxFailures uint32
	OpenTimeout time.Duration
}

// DefaultOptions returns sensible defaults for fetching pronunciation files.
func DefaultOptions() Options {
	return Options{
		Timeout:      30 * time.Second,
		UserAgent:    "vocabaudio",
		MaxBodyBytes: DefaultMaxBodyBytes,
		MaxFailures:  5,
		OpenTimeout:  time.Minute,
	}
}

// HTTP is a Transport backed by net/http and guarded by a circuit breaker.
type HTTP struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	opts    Options
	logger  *slog.Logger
}

var _ Transport = (*HTTP)(nil)

type serverError struct {
	status int
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server returned %d", e.status)
}

// NewHTTP creates an HTTP transport. A nil logger discards log output.
func NewHTTP(opts Options, logger *slog.Logger) *HTTP {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = DefaultOptions().MaxFailures
	}

	t := &HTTP{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
		logger: logger,
	}
	t.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "audio-fetch",
		Timeout: opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return t
}

// State returns the circuit breaker state.
func (t *HTTP) State() gobreaker.State {
	return t.breaker.State()
}

// Get implements Transport. A 4xx status is a valid answer and does not
// count against the breaker; transport errors and 5xx do.
func (t *HTTP) Get(ctx context.Context, url string) Response {
	var status int
	result, err := t.breaker.Execute(func() (interface{}, error) {
		body, code, err := t.do(ctx, url)
		status = code
		if err != nil {
			return nil, err
		}
		if code >= 500 {
			return body, &serverError{status: code}
		}
		return body, nil
	})

	var srvErr *serverError
	switch {
	case errors.As(err, &srvErr):
		body, _ := result.([]byte)
		return Response{Status: srvErr.status, Body: body}
	case err != nil:
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			t.logger.Debug("fetch short-circuited", "url", url, "error", err)
		}
		return Response{Status: status, Err: err}
	}

	body, _ := result.([]byte)
	return Response{Status: status, Body: body}
}

func (t *HTTP) do(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	if t.opts.UserAgent != "" {
		req.Header.Set("User-Agent", t.opts.UserAgent)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if t.opts.MaxBodyBytes > 0 {
		reader = io.LimitReader(resp.Body, t.opts.MaxBodyBytes+1)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	if t.opts.MaxBodyBytes > 0 && int64(len(body)) > t.opts.MaxBodyBytes {
		return nil, resp.StatusCode, fmt.Errorf("response exceeds maximum size of %d bytes", t.opts.MaxBodyBytes)
	}

	return body, resp.StatusCode, nil
}
