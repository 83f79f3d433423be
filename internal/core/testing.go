package core

import "sync"

// MockWriter is a thread-safe io.Writer for testing.
type MockWriter struct {
	mu   sync.Mutex
	data []byte
}

func (w *MockWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *MockWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return string(w.data)
}

// MockReporter records events for assertions in tests.
type MockReporter struct {
	mu     sync.Mutex
	events []Event
}

func (r *MockReporter) Report(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *MockReporter) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
