package memory

import (
	"context"
	"sort"
	"sync"

	"islanddao-governance/internal/domain"
	"islanddao-governance/internal/storage"
)

// PowerRecordStore is an in-memory implementation of storage.PowerRecordStore.
type PowerRecordStore struct {
	mu     sync.RWMutex
	scanID string
	data   map[string]*domain.PowerRecord // keyed by wallet
}

// NewPowerRecordStore creates a new in-memory power record store.
func NewPowerRecordStore() *PowerRecordStore {
	return &PowerRecordStore{
		data: make(map[string]*domain.PowerRecord),
	}
}

// Compile-time interface check.
var _ storage.PowerRecordStore = (*PowerRecordStore)(nil)

// Replace atomically swaps the stored leaderboard for a fresh scan.
func (s *PowerRecordStore) Replace(_ context.Context, scanID string, records []*domain.PowerRecord) error {
	if scanID == "" {
		return storage.ErrInvalidInput
	}
	for _, r := range records {
		if r == nil || r.Wallet == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.scanID = scanID
	s.data = make(map[string]*domain.PowerRecord, len(records))
	for _, r := range records {
		recordCopy := *r
		s.data[r.Wallet] = &recordCopy
	}
	return nil
}

// GetAll retrieves the leaderboard ordered by total DESC, wallet ASC.
func (s *PowerRecordStore) GetAll(_ context.Context) ([]*domain.PowerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.PowerRecord, 0, len(s.data))
	for _, r := range s.data {
		recordCopy := *r
		result = append(result, &recordCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Total != result[j].Total {
			return result[i].Total > result[j].Total
		}
		return result[i].Wallet < result[j].Wallet
	})

	return result, nil
}

// GetByWallet retrieves one wallet's record. Returns ErrNotFound if absent.
func (s *PowerRecordStore) GetByWallet(_ context.Context, wallet string) (*domain.PowerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[wallet]
	if !exists {
		return nil, storage.ErrNotFound
	}

	recordCopy := *r
	return &recordCopy, nil
}
