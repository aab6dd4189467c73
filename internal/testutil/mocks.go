package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"codeberg.org/snonux/vocabaudio/internal/transport"
)

// MockTransport serves canned responses keyed by URL. Unknown URLs get a 404.
type MockTransport struct {
	Responses map[string]transport.Response

	// Gate, when set, blocks every Get until it is closed or receives.
	Gate chan struct{}
	// Started receives the URL of each Get before it blocks on Gate.
	Started chan string

	mu    sync.Mutex
	calls []string
}

var _ transport.Transport = (*MockTransport)(nil)

// NewMockTransport returns a transport with no canned responses.
func NewMockTransport() *MockTransport {
	return &MockTransport{Responses: make(map[string]transport.Response)}
}

// Serve registers a 200 response with body for url.
func (m *MockTransport) Serve(url string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[url] = transport.Response{Status: http.StatusOK, Body: body}
}

// Get implements transport.Transport.
func (m *MockTransport) Get(ctx context.Context, url string) transport.Response {
	m.mu.Lock()
	m.calls = append(m.calls, url)
	resp, ok := m.Responses[url]
	m.mu.Unlock()

	if m.Started != nil {
		m.Started <- url
	}
	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return transport.Response{Err: ctx.Err()}
		}
	}

	if !ok {
		return transport.Response{Status: http.StatusNotFound, Body: []byte("Not Found")}
	}
	return resp
}

// Calls returns the requested URLs in order.
func (m *MockTransport) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MockGenerator mocks a speech generator
type MockGenerator struct {
	Audio       map[string][]byte
	Err         error
	Unavailable error // returned by IsAvailable

	mu    sync.Mutex
	calls []string
}

// Generate returns the registered audio for word or a default payload.
func (m *MockGenerator) Generate(ctx context.Context, word string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, word)

	if m.Err != nil {
		return nil, m.Err
	}
	if data, ok := m.Audio[word]; ok {
		return data, nil
	}
	return []byte(fmt.Sprintf("generated %s", word)), nil
}

// Name implements audio.Generator.
func (m *MockGenerator) Name() string { return "mock" }

// IsAvailable implements audio.Generator.
func (m *MockGenerator) IsAvailable() error { return m.Unavailable }

// Calls returns the words passed to Generate.
func (m *MockGenerator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
