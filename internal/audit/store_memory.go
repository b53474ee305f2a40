package audit

import (
	"context"
	"sync"

	"certledger/internal/registry/models"
)

// InMemoryStore keeps audit events in memory for tests and single-node runs.
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
	return nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, actor models.Identity) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []Event
	for _, event := range s.events {
		if event.Actor == actor {
			matches = append(matches, event)
		}
	}
	return matches, nil
}

// ListRecent returns the most recent N events in emission order.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := len(s.events) - limit
	if start < 0 {
		start = 0
	}
	return append([]Event{}, s.events[start:]...), nil
}
