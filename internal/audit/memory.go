package audit

import (
	"context"
	"sync"
)

// maxRetained bounds the in-memory event history. The activity feed only
// ever asks for the newest handful.
const maxRetained = 1000

// InMemoryStore keeps recent events in memory. It backs the activity feed
// in deployments without a durable audit sink and every test.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if len(s.events) > maxRetained {
		s.events = s.events[len(s.events)-maxRetained:]
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (s *InMemoryStore) Recent(_ context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.events)
	if limit > n {
		limit = n
	}
	out := make([]Event, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}
