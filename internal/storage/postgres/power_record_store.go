package postgres

import (
	"context"
	"fmt"

	"islanddao-governance/internal/domain"
	"islanddao-governance/internal/storage"
)

// PowerRecordStore implements storage.PowerRecordStore using PostgreSQL.
type PowerRecordStore struct {
	pool *Pool
}

// NewPowerRecordStore creates a new PowerRecordStore.
func NewPowerRecordStore(pool *Pool) *PowerRecordStore {
	return &PowerRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PowerRecordStore = (*PowerRecordStore)(nil)

// Replace atomically swaps the stored leaderboard for a fresh scan.
// Runs in a single transaction so readers never observe a partial swap.
func (s *PowerRecordStore) Replace(ctx context.Context, scanID string, records []*domain.PowerRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM power_records`); err != nil {
		return fmt.Errorf("clear power records: %w", err)
	}

	query := `
		INSERT INTO power_records (wallet, native, delegated, total, scan_id)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, r := range records {
		if _, err := tx.Exec(ctx, query, r.Wallet, int64(r.Native), int64(r.Delegated), int64(r.Total), scanID); err != nil {
			return fmt.Errorf("insert power record %s: %w", r.Wallet, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// GetAll retrieves the leaderboard ordered by total DESC, wallet ASC.
func (s *PowerRecordStore) GetAll(ctx context.Context) ([]*domain.PowerRecord, error) {
	query := `
		SELECT wallet, native, delegated, total
		FROM power_records
		ORDER BY total DESC, wallet ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get power records: %w", err)
	}
	defer rows.Close()

	var records []*domain.PowerRecord
	for rows.Next() {
		var native, delegated, total int64
		r := &domain.PowerRecord{}
		if err := rows.Scan(&r.Wallet, &native, &delegated, &total); err != nil {
			return nil, fmt.Errorf("scan power record: %w", err)
		}
		r.Native, r.Delegated, r.Total = uint64(native), uint64(delegated), uint64(total)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate power records: %w", err)
	}

	return records, nil
}

// GetByWallet retrieves one wallet's record. Returns ErrNotFound if absent.
func (s *PowerRecordStore) GetByWallet(ctx context.Context, wallet string) (*domain.PowerRecord, error) {
	query := `
		SELECT wallet, native, delegated, total
		FROM power_records
		WHERE wallet = $1
	`

	var native, delegated, total int64
	r := &domain.PowerRecord{}
	err := s.pool.QueryRow(ctx, query, wallet).Scan(&r.Wallet, &native, &delegated, &total)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get power record by wallet: %w", err)
	}
	r.Native, r.Delegated, r.Total = uint64(native), uint64(delegated), uint64(total)
	return r, nil
}
