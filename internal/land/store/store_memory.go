package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"malpot/internal/land/models"
	id "malpot/pkg/domain"
	"malpot/pkg/platform/sentinel"
	"malpot/pkg/platform/tx"
)

// InMemory is a process-local land store. Every write registers an undo with
// the memory transaction in ctx, so a failed transaction restores the
// previous record.
type InMemory struct {
	mu      sync.RWMutex
	lands   map[id.LandID]*models.Land
	parcels map[string]id.LandID
}

func NewInMemory() *InMemory {
	return &InMemory{
		lands:   make(map[id.LandID]*models.Land),
		parcels: make(map[string]id.LandID),
	}
}

func parcelKey(l *models.Land) string {
	return l.Location.District + "\x00" + l.Location.Ward + "\x00" + l.ParcelNumber
}

func (s *InMemory) Create(ctx context.Context, land *models.Land) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := parcelKey(land)
	if _, exists := s.parcels[key]; exists {
		return fmt.Errorf("parcel %s: %w", land.ParcelNumber, sentinel.ErrAlreadyUsed)
	}
	if _, exists := s.lands[land.ID]; exists {
		return fmt.Errorf("land %s: %w", land.ID, sentinel.ErrAlreadyUsed)
	}

	s.lands[land.ID] = land.Clone()
	s.parcels[key] = land.ID
	tx.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.lands, land.ID)
		delete(s.parcels, key)
	})
	return nil
}

func (s *InMemory) FindByID(_ context.Context, landID id.LandID) (*models.Land, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	land, ok := s.lands[landID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return land.Clone(), nil
}

// Execute validates and mutates a copy of the land under the store lock and
// saves it only when validate passes.
func (s *InMemory) Execute(ctx context.Context, landID id.LandID, validate func(*models.Land) error, mutate func(*models.Land)) (*models.Land, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.lands[landID]
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

	s.lands[landID] = working
	s.recordRestore(ctx, current)
	return working.Clone(), nil
}

// ReleaseTransferLock clears the lock flag whatever its current value.
func (s *InMemory) ReleaseTransferLock(ctx context.Context, landID id.LandID, now time.Time) error {
	_, err := s.Execute(ctx, landID, nil, func(l *models.Land) {
		l.ApplyTransferUnlock(now)
	})
	return err
}

func (s *InMemory) recordRestore(ctx context.Context, previous *models.Land) {
	tx.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.lands[previous.ID] = previous
	})
}
