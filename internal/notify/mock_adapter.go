package notify

import (
	"context"
	"sync"
)

// MockAdapter implements Adapter for testing. It records posted messages.
type MockAdapter struct {
	mu     sync.Mutex
	posts  []Message
	closed bool

	// PostErr, if set, is returned from Post.
	PostErr error
}

// NewMockAdapter creates an empty MockAdapter.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{}
}

// Post records the message.
func (m *MockAdapter) Post(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PostErr != nil {
		return m.PostErr
	}
	m.posts = append(m.posts, msg)
	return nil
}

// Close marks the adapter closed.
func (m *MockAdapter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Posts returns a copy of recorded messages.
func (m *MockAdapter) Posts() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.posts...)
}

// Closed reports whether Close was called.
func (m *MockAdapter) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
