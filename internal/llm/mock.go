package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned answer for MockProvider. Text is a convenience
// for free-text replies; Content wins when both are set.
type MockResponse struct {
	Content json.RawMessage
	Text    string
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for tests and the "mock"
// provider setting. Responses are served FIFO and every request is kept.
// With Fallback set, an empty queue yields Fallback instead of an error.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Fallback  *MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate pops the next canned response. An empty queue without a
// Fallback returns *ErrProviderUnavailable, which callers treat like an
// outage and fall back from.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)

	var next MockResponse
	switch {
	case len(m.responses) > 0:
		next = m.responses[0]
		m.responses = m.responses[1:]
	case m.Fallback != nil:
		next = *m.Fallback
	default:
		m.mu.Unlock()
		return nil, &ErrProviderUnavailable{}
	}
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if next.Err != nil {
		return nil, next.Err
	}

	content := next.Content
	if content == nil {
		content = json.RawMessage(next.Text)
	}
	return finishResponse(req, content, next.Usage, "mock", "end")
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Requests returns a copy of the recorded requests.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.Calls...)
}
