package notifier

import (
	"context"
	"sync"
)

// NotifyCall holds the arguments of one Notify call.
type NotifyCall struct {
	Recipient string
	Subject   string
	Body      string
}

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// NotifyFunc overrides the delivery result when set.
	NotifyFunc func(recipient, subject, body string) bool

	NotifyCalls []NotifyCall
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifyCalls = nil
}

func (m *Mock) Notify(ctx context.Context, recipient, subject, body string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifyCalls = append(m.NotifyCalls, NotifyCall{Recipient: recipient, Subject: subject, Body: body})
	if m.NotifyFunc != nil {
		return m.NotifyFunc(recipient, subject, body)
	}
	return true
}

// Calls returns a copy of the recorded calls.
func (m *Mock) Calls() []NotifyCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]NotifyCall, len(m.NotifyCalls))
	copy(out, m.NotifyCalls)
	return out
}

// Subjects returns the subjects of all recorded calls in order.
func (m *Mock) Subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.NotifyCalls))
	for i, c := range m.NotifyCalls {
		out[i] = c.Subject
	}
	return out
}
