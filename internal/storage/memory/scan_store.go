package memory

import (
	"context"
	"sync"

	"islanddao-governance/internal/domain"
	"islanddao-governance/internal/storage"
)

// ScanStore is an in-memory implementation of storage.ScanStore.
type ScanStore struct {
	mu    sync.RWMutex
	data  map[string]*domain.ScanSummary // keyed by scan_id
	order []string                       // insertion order, latest last
}

// NewScanStore creates a new in-memory scan store.
func NewScanStore() *ScanStore {
	return &ScanStore{
		data: make(map[string]*domain.ScanSummary),
	}
}

// Compile-time interface check.
var _ storage.ScanStore = (*ScanStore)(nil)

// Insert adds a scan summary. Returns ErrDuplicateKey if scan_id exists.
func (s *ScanStore) Insert(_ context.Context, summary *domain.ScanSummary) error {
	if summary == nil || summary.ScanID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[summary.ScanID]; exists {
		return storage.ErrDuplicateKey
	}

	summaryCopy := *summary
	s.data[summary.ScanID] = &summaryCopy
	s.order = append(s.order, summary.ScanID)
	return nil
}

// GetLatest retrieves the most recently inserted scan.
func (s *ScanStore) GetLatest(_ context.Context) (*domain.ScanSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.order) == 0 {
		return nil, storage.ErrNotFound
	}

	summaryCopy := *s.data[s.order[len(s.order)-1]]
	return &summaryCopy, nil
}
