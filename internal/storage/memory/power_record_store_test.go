package memory

import (
	"context"
	"errors"
	"testing"

	"islanddao-governance/internal/domain"
	"islanddao-governance/internal/storage"
)

func TestPowerRecordStore_ReplaceAndGetAll(t *testing.T) {
	store := NewPowerRecordStore()
	ctx := context.Background()

	records := []*domain.PowerRecord{
		{Wallet: "aaa", Native: 100, Delegated: 0, Total: 100},
		{Wallet: "bbb", Native: 200, Delegated: 50, Total: 250},
	}
	if err := store.Replace(ctx, "scan-1", records); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	// Ordered by total DESC
	if got[0].Wallet != "bbb" || got[1].Wallet != "aaa" {
		t.Errorf("unexpected order: %s, %s", got[0].Wallet, got[1].Wallet)
	}
}

func TestPowerRecordStore_ReplaceSwapsAtomically(t *testing.T) {
	store := NewPowerRecordStore()
	ctx := context.Background()

	store.Replace(ctx, "scan-1", []*domain.PowerRecord{
		{Wallet: "old", Total: 1},
	})
	store.Replace(ctx, "scan-2", []*domain.PowerRecord{
		{Wallet: "new", Total: 2},
	})

	got, _ := store.GetAll(ctx)
	if len(got) != 1 || got[0].Wallet != "new" {
		t.Errorf("old leaderboard survived replace: %+v", got)
	}

	if _, err := store.GetByWallet(ctx, "old"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for replaced wallet, got %v", err)
	}
}

func TestPowerRecordStore_GetAll_TieOrder(t *testing.T) {
	store := NewPowerRecordStore()
	ctx := context.Background()

	store.Replace(ctx, "scan-1", []*domain.PowerRecord{
		{Wallet: "zzz", Total: 100},
		{Wallet: "aaa", Total: 100},
	})

	got, _ := store.GetAll(ctx)
	if got[0].Wallet != "aaa" || got[1].Wallet != "zzz" {
		t.Errorf("ties must order by wallet ASC: %s, %s", got[0].Wallet, got[1].Wallet)
	}
}

func TestPowerRecordStore_GetByWallet(t *testing.T) {
	store := NewPowerRecordStore()
	ctx := context.Background()

	store.Replace(ctx, "scan-1", []*domain.PowerRecord{
		{Wallet: "aaa", Native: 100, Total: 100},
	})

	got, err := store.GetByWallet(ctx, "aaa")
	if err != nil {
		t.Fatalf("GetByWallet: %v", err)
	}
	if got.Native != 100 {
		t.Errorf("native: got %d", got.Native)
	}

	if _, err := store.GetByWallet(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPowerRecordStore_InvalidInput(t *testing.T) {
	store := NewPowerRecordStore()
	ctx := context.Background()

	if err := store.Replace(ctx, "", nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("empty scan id: expected ErrInvalidInput, got %v", err)
	}
	err := store.Replace(ctx, "scan-1", []*domain.PowerRecord{{Wallet: ""}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("empty wallet: expected ErrInvalidInput, got %v", err)
	}
}
