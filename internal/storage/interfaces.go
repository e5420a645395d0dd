package storage

import (
	"context"

	"islanddao-governance/internal/domain"
)

// WalletStore provides access to wallets storage (the wallet-list capability).
// It restricts exported leaderboard views only; decoding always runs over
// every discovered voter account.
type WalletStore interface {
	// Insert adds a wallet. Returns ErrDuplicateKey if the address exists.
	Insert(ctx context.Context, w *domain.Wallet) error

	// List retrieves all wallets ordered by address ASC.
	List(ctx context.Context) ([]*domain.Wallet, error)
}

// PowerRecordStore provides access to the latest computed leaderboard.
type PowerRecordStore interface {
	// Replace atomically swaps the stored leaderboard for a fresh scan.
	Replace(ctx context.Context, scanID string, records []*domain.PowerRecord) error

	// GetAll retrieves the leaderboard ordered by total DESC, wallet ASC.
	GetAll(ctx context.Context) ([]*domain.PowerRecord, error)

	// GetByWallet retrieves one wallet's record. Returns ErrNotFound if absent.
	GetByWallet(ctx context.Context, wallet string) (*domain.PowerRecord, error)
}

// ScanStore provides access to scan summaries.
type ScanStore interface {
	// Insert adds a scan summary. Returns ErrDuplicateKey if scan_id exists.
	Insert(ctx context.Context, s *domain.ScanSummary) error

	// GetLatest retrieves the most recent scan. Returns ErrNotFound if none.
	GetLatest(ctx context.Context) (*domain.ScanSummary, error)
}

// PowerSnapshotStore provides access to historical per-scan power snapshots.
type PowerSnapshotStore interface {
	// InsertBulk appends snapshot points. Fails entire batch on duplicate
	// (scan_id, wallet).
	InsertBulk(ctx context.Context, points []*domain.PowerSnapshotPoint) error

	// GetByWallet retrieves a wallet's history ordered by scanned_at ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.PowerSnapshotPoint, error)
}
