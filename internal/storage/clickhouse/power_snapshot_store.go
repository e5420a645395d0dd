package clickhouse

import (
	"context"
	"fmt"

	"islanddao-governance/internal/domain"
	"islanddao-governance/internal/storage"
)

// PowerSnapshotStore implements storage.PowerSnapshotStore using ClickHouse.
type PowerSnapshotStore struct {
	conn *Conn
}

// NewPowerSnapshotStore creates a new PowerSnapshotStore.
func NewPowerSnapshotStore(conn *Conn) *PowerSnapshotStore {
	return &PowerSnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PowerSnapshotStore = (*PowerSnapshotStore)(nil)

// InsertBulk appends snapshot points. Fails entire batch on duplicate
// (scan_id, wallet). MergeTree does not enforce uniqueness, so duplicates
// are checked explicitly before the batch insert.
func (s *PowerSnapshotStore) InsertBulk(ctx context.Context, points []*domain.PowerSnapshotPoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		scanID string
		wallet string
	}
	seen := make(map[key]struct{}, len(points))
	for _, p := range points {
		k := key{p.ScanID, p.Wallet}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows. All points of one
	// batch share a scan_id, so one existence probe per batch suffices.
	exists, err := s.scanExists(ctx, points[0].ScanID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO power_snapshots (
			scan_id, wallet, native, delegated, total, slot, scanned_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(
			p.ScanID,
			p.Wallet,
			p.Native,
			p.Delegated,
			p.Total,
			p.Slot,
			p.ScannedAt,
		); err != nil {
			return fmt.Errorf("append point: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// scanExists reports whether any snapshot rows exist for a scan.
func (s *PowerSnapshotStore) scanExists(ctx context.Context, scanID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `
		SELECT count() FROM power_snapshots WHERE scan_id = ?
	`, scanID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByWallet retrieves a wallet's history ordered by scanned_at ASC.
func (s *PowerSnapshotStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.PowerSnapshotPoint, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT scan_id, wallet, native, delegated, total, slot, scanned_at
		FROM power_snapshots
		WHERE wallet = ?
		ORDER BY scanned_at ASC, scan_id ASC
	`, wallet)
	if err != nil {
		return nil, fmt.Errorf("get snapshots by wallet: %w", err)
	}
	defer rows.Close()

	var points []*domain.PowerSnapshotPoint
	for rows.Next() {
		p := &domain.PowerSnapshotPoint{}
		if err := rows.Scan(&p.ScanID, &p.Wallet, &p.Native, &p.Delegated, &p.Total, &p.Slot, &p.ScannedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return points, nil
}
