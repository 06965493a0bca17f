package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"malpot/internal/transfer/models"
	id "malpot/pkg/domain"
	"malpot/pkg/platform/sentinel"
	"malpot/pkg/platform/tx"
)

// InMemory keeps transfers in process. Like the land store, writes register
// undo steps with the memory transaction in ctx.
type InMemory struct {
	mu        sync.RWMutex
	transfers map[id.TransferID]*models.Transfer
	byLand    map[id.LandID][]id.TransferID
}

func NewInMemory() *InMemory {
	return &InMemory{
		transfers: make(map[id.TransferID]*models.Transfer),
		byLand:    make(map[id.LandID][]id.TransferID),
	}
}

// Create inserts a transfer. A second Pending transfer for the same land
// is refused with sentinel.ErrAlreadyUsed.
func (s *InMemory) Create(ctx context.Context, transfer *models.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transfers[transfer.ID]; exists {
		return fmt.Errorf("transfer %s: %w", transfer.ID, sentinel.ErrAlreadyUsed)
	}
	if transfer.IsPending() {
		for _, other := range s.byLand[transfer.LandID] {
			if s.transfers[other].IsPending() {
				return fmt.Errorf("pending transfer for land %s: %w", transfer.LandID, sentinel.ErrAlreadyUsed)
			}
		}
	}

	s.transfers[transfer.ID] = transfer.Clone()
	s.byLand[transfer.LandID] = append(s.byLand[transfer.LandID], transfer.ID)
	tx.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.transfers, transfer.ID)
		ids := s.byLand[transfer.LandID]
		if i := slices.Index(ids, transfer.ID); i >= 0 {
			s.byLand[transfer.LandID] = slices.Delete(ids, i, i+1)
		}
	})
	return nil
}

func (s *InMemory) FindByID(_ context.Context, transferID id.TransferID) (*models.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transfers[transferID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return t.Clone(), nil
}

// Execute validates and mutates a copy of the transfer under the store lock.
func (s *InMemory) Execute(ctx context.Context, transferID id.TransferID, validate func(*models.Transfer) error, mutate func(*models.Transfer)) (*models.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.transfers[transferID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := current.Clone()
	if validate != nil {
		if err := validate(working); err != nil {
			return nil, err
		}
	}
	mutate(working)

	s.transfers[transferID] = working
	tx.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.transfers[transferID] = current
	})
	return working.Clone(), nil
}

// ListByLand returns the land's transfers, newest first.
func (s *InMemory) ListByLand(_ context.Context, landID id.LandID) ([]*models.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Transfer, 0, len(s.byLand[landID]))
	for _, transferID := range s.byLand[landID] {
		out = append(out, s.transfers[transferID].Clone())
	}
	slices.SortStableFunc(out, func(a, b *models.Transfer) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	return out, nil
}
