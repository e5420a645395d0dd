package postgres

import (
	"context"
	"fmt"

	"islanddao-governance/internal/domain"
	"islanddao-governance/internal/storage"
)

// ScanStore implements storage.ScanStore using PostgreSQL.
type ScanStore struct {
	pool *Pool
}

// NewScanStore creates a new ScanStore.
func NewScanStore(pool *Pool) *ScanStore {
	return &ScanStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ScanStore = (*ScanStore)(nil)

// Insert adds a scan summary. Returns ErrDuplicateKey if scan_id exists.
func (s *ScanStore) Insert(ctx context.Context, summary *domain.ScanSummary) error {
	query := `
		INSERT INTO scans (
			scan_id, realm, governing_mint, slot, scanned_at,
			voter_accounts, decoded, skipped_malformed, overflowed, wallets
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		summary.ScanID,
		summary.Realm,
		summary.GoverningMint,
		summary.Slot,
		summary.ScannedAt,
		summary.VoterAccounts,
		summary.Decoded,
		summary.SkippedMalformed,
		summary.Overflowed,
		summary.Wallets,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert scan: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent scan by scanned_at.
func (s *ScanStore) GetLatest(ctx context.Context) (*domain.ScanSummary, error) {
	query := `
		SELECT scan_id, realm, governing_mint, slot, scanned_at,
		       voter_accounts, decoded, skipped_malformed, overflowed, wallets
		FROM scans
		ORDER BY scanned_at DESC, scan_id DESC
		LIMIT 1
	`

	summary := &domain.ScanSummary{}
	err := s.pool.QueryRow(ctx, query).Scan(
		&summary.ScanID,
		&summary.Realm,
		&summary.GoverningMint,
		&summary.Slot,
		&summary.ScannedAt,
		&summary.VoterAccounts,
		&summary.Decoded,
		&summary.SkippedMalformed,
		&summary.Overflowed,
		&summary.Wallets,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest scan: %w", err)
	}
	return summary, nil
}
