package helpers

import (
	"context"
	"sync"
)

// MockNotifier records player-facing confirmations for assertion.
type MockNotifier struct {
	mu       sync.RWMutex
	messages []string
}

// NewMockNotifier creates an empty notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Notify records the message.
func (m *MockNotifier) Notify(ctx context.Context, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	return nil
}

// Messages returns all recorded messages in order.
func (m *MockNotifier) Messages() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string{}, m.messages...)
}

// Reset clears recorded messages.
func (m *MockNotifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}
