package memory

import (
	"context"
	"errors"
	"testing"

	"islanddao-governance/internal/domain"
	"islanddao-governance/internal/storage"
)

func TestScanStore_InsertAndGetLatest(t *testing.T) {
	store := NewScanStore()
	ctx := context.Background()

	scans := []*domain.ScanSummary{
		{ScanID: "scan-1", Slot: 100, ScannedAt: 1000, Wallets: 5},
		{ScanID: "scan-2", Slot: 200, ScannedAt: 2000, Wallets: 7},
	}
	for _, s := range scans {
		if err := store.Insert(ctx, s); err != nil {
			t.Fatalf("Insert(%s): %v", s.ScanID, err)
		}
	}

	latest, err := store.GetLatest(ctx)
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if latest.ScanID != "scan-2" || latest.Slot != 200 {
		t.Errorf("latest: %+v", latest)
	}
}

func TestScanStore_DuplicateKey(t *testing.T) {
	store := NewScanStore()
	ctx := context.Background()

	s := &domain.ScanSummary{ScanID: "scan-1"}
	if err := store.Insert(ctx, s); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := store.Insert(ctx, s); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestScanStore_GetLatest_Empty(t *testing.T) {
	store := NewScanStore()
	if _, err := store.GetLatest(context.Background()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
