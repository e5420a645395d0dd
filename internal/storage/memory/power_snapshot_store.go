package memory

import (
	"context"
	"sort"
	"sync"

	"islanddao-governance/internal/domain"
	"islanddao-governance/internal/storage"
)

// PowerSnapshotStore is an in-memory implementation of storage.PowerSnapshotStore.
type PowerSnapshotStore struct {
	mu   sync.RWMutex
	data map[snapshotKey]*domain.PowerSnapshotPoint
}

type snapshotKey struct {
	scanID string
	wallet string
}

// NewPowerSnapshotStore creates a new in-memory power snapshot store.
func NewPowerSnapshotStore() *PowerSnapshotStore {
	return &PowerSnapshotStore{
		data: make(map[snapshotKey]*domain.PowerSnapshotPoint),
	}
}

// Compile-time interface check.
var _ storage.PowerSnapshotStore = (*PowerSnapshotStore)(nil)

// InsertBulk appends snapshot points. Fails entire batch on duplicate
// (scan_id, wallet), leaving the store unchanged.
func (s *PowerSnapshotStore) InsertBulk(_ context.Context, points []*domain.PowerSnapshotPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Check intra-batch and existing duplicates before mutating
	seen := make(map[snapshotKey]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.ScanID == "" || p.Wallet == "" {
			return storage.ErrInvalidInput
		}
		k := snapshotKey{p.ScanID, p.Wallet}
		if _, dup := seen[k]; dup {
			return storage.ErrDuplicateKey
		}
		if _, dup := s.data[k]; dup {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, p := range points {
		pointCopy := *p
		s.data[snapshotKey{p.ScanID, p.Wallet}] = &pointCopy
	}
	return nil
}

// GetByWallet retrieves a wallet's history ordered by scanned_at ASC.
func (s *PowerSnapshotStore) GetByWallet(_ context.Context, wallet string) ([]*domain.PowerSnapshotPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PowerSnapshotPoint
	for k, p := range s.data {
		if k.wallet == wallet {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ScannedAt != result[j].ScannedAt {
			return result[i].ScannedAt < result[j].ScannedAt
		}
		return result[i].ScanID < result[j].ScanID
	})

	return result, nil
}
