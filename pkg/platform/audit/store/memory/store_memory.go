package memory

import (
	"context"
	"slices"
	"sync"

	id "malpot/pkg/domain"
	audit "malpot/pkg/platform/audit"
	"malpot/pkg/platform/tx"
)

// InMemoryStore keeps audit events in process. Appends made inside a memory
// transaction are discarded when the transaction rolls back.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func (s *InMemoryStore) Append(ctx context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	n := len(s.events)
	tx.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if len(s.events) >= n {
			s.events = slices.Delete(s.events, n-1, n)
		}
	})
	return nil
}

// ListByLand returns the events recorded for a land in append order.
func (s *InMemoryStore) ListByLand(_ context.Context, landID id.LandID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.LandID == landID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListAll returns every recorded event in append order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events), nil
}
