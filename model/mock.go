package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/aegisops/aegis/core"
)

// Mock is a scripted in-memory Provider useful for tests and examples.
// Responses are consumed in FIFO order; once the script is exhausted the last
// response repeats, which keeps loop tests that expect "the model asks for a
// tool on every call" short to set up. Every received request is recorded.
type Mock struct {
	mu       sync.Mutex
	info     Info
	script   []*Response
	err      error
	errAt    int
	calls    int
	requests []Request
}

// NewMock constructs a Mock with tool support enabled.
func NewMock(name string, optFns ...func(m *Mock)) *Mock {
	m := &Mock{
		info: Info{
			Name:          name,
			Vendor:        "mock",
			SupportsTools: true,
		},
	}

	for _, fn := range optFns {
		fn(m)
	}

	return m
}

// WithoutToolSupport marks the mock as a text-only provider.
func WithoutToolSupport() func(m *Mock) {
	return func(m *Mock) { m.info.SupportsTools = false }
}

// Enqueue appends scripted responses consumed by subsequent Generate calls.
func (m *Mock) Enqueue(resps ...*Response) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, resps...)
	return m
}

// EnqueueText is shorthand for a plain completed text response.
func (m *Mock) EnqueueText(content string, usage core.Usage) *Mock {
	return m.Enqueue(&Response{Content: content, FinishReason: FinishStop, Usage: usage})
}

// EnqueueToolCalls is shorthand for a response requesting tool executions.
func (m *Mock) EnqueueToolCalls(content string, usage core.Usage, calls ...core.ToolCall) *Mock {
	return m.Enqueue(&Response{Content: content, ToolCalls: calls, FinishReason: FinishToolCalls, Usage: usage})
}

// FailWith makes Generate return err on the n-th call (1-based). A zero n
// fails every call.
func (m *Mock) FailWith(err error, n int) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	m.errAt = n
	return m
}

// Generate implements Provider.
func (m *Mock) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.requests = append(m.requests, req)

	if m.err != nil && (m.errAt == 0 || m.calls == m.errAt) {
		return nil, m.err
	}

	if len(m.script) == 0 {
		return nil, fmt.Errorf("mock %q has no scripted responses", m.info.Name)
	}

	resp := m.script[0]
	if len(m.script) > 1 {
		m.script = m.script[1:]
	}

	return resp, nil
}

// Info implements Provider.
func (m *Mock) Info() Info { return m.info }

// Calls returns the number of Generate invocations received so far.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// RequestAt returns the i-th recorded request (0-based).
func (m *Mock) RequestAt(i int) Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[i]
}

// Requests returns a copy of all recorded requests.
func (m *Mock) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}
