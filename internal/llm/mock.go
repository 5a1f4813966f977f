package llm

import (
	"context"
	"sync"
)

// MockGenerator returns canned responses and records every request.
type MockGenerator struct {
	Model    string
	Response *Response
	Err      error
	// Respond, when set, takes precedence over Response and Err.
	Respond func(req Request) (*Response, error)

	mu    sync.Mutex
	Calls []Request
}

func (m *MockGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Respond != nil {
		return m.Respond(req)
	}
	return m.Response, m.Err
}

func (m *MockGenerator) ModelID() string {
	if m.Model == "" {
		return "mock"
	}
	return m.Model
}

// CallCount returns the number of Generate calls so far.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
