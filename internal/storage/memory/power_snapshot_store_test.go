package memory

import (
	"context"
	"errors"
	"testing"

	"islanddao-governance/internal/domain"
	"islanddao-governance/internal/storage"
)

func TestPowerSnapshotStore_InsertBulkAndGetByWallet(t *testing.T) {
	store := NewPowerSnapshotStore()
	ctx := context.Background()

	points := []*domain.PowerSnapshotPoint{
		{ScanID: "scan-2", Wallet: "aaa", Total: 200, ScannedAt: 2000},
		{ScanID: "scan-1", Wallet: "aaa", Total: 100, ScannedAt: 1000},
		{ScanID: "scan-1", Wallet: "bbb", Total: 50, ScannedAt: 1000},
	}
	if err := store.InsertBulk(ctx, points); err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}

	got, err := store.GetByWallet(ctx, "aaa")
	if err != nil {
		t.Fatalf("GetByWallet: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got))
	}
	// Ordered by scanned_at ASC
	if got[0].ScanID != "scan-1" || got[1].ScanID != "scan-2" {
		t.Errorf("unexpected order: %s, %s", got[0].ScanID, got[1].ScanID)
	}
}

func TestPowerSnapshotStore_DuplicateFailsWholeBatch(t *testing.T) {
	store := NewPowerSnapshotStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.PowerSnapshotPoint{
		{ScanID: "scan-1", Wallet: "aaa", Total: 100},
	}); err != nil {
		t.Fatalf("first batch: %v", err)
	}

	err := store.InsertBulk(ctx, []*domain.PowerSnapshotPoint{
		{ScanID: "scan-2", Wallet: "bbb", Total: 1},
		{ScanID: "scan-1", Wallet: "aaa", Total: 2}, // duplicate
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	// The non-duplicate point must not have been written either.
	got, _ := store.GetByWallet(ctx, "bbb")
	if len(got) != 0 {
		t.Errorf("partial batch was written: %+v", got)
	}
}

func TestPowerSnapshotStore_IntraBatchDuplicate(t *testing.T) {
	store := NewPowerSnapshotStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.PowerSnapshotPoint{
		{ScanID: "scan-1", Wallet: "aaa", Total: 1},
		{ScanID: "scan-1", Wallet: "aaa", Total: 2},
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestPowerSnapshotStore_EmptyBatchIsNoop(t *testing.T) {
	store := NewPowerSnapshotStore()
	if err := store.InsertBulk(context.Background(), nil); err != nil {
		t.Errorf("empty batch: %v", err)
	}
}

func TestPowerSnapshotStore_UnknownWalletIsEmpty(t *testing.T) {
	store := NewPowerSnapshotStore()
	got, err := store.GetByWallet(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetByWallet: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty history, got %d", len(got))
	}
}
