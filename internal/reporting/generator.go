package reporting

import (
	"context"
	"errors"
	"time"

	"islanddao-governance/internal/storage"
)

// Generator produces reports from stored data.
type Generator struct {
	recordStore storage.PowerRecordStore
	scanStore   storage.ScanStore
	now         func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(recordStore storage.PowerRecordStore, scanStore storage.ScanStore) *Generator {
	return &Generator{
		recordStore: recordStore,
		scanStore:   scanStore,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete governance power report.
// A missing scan summary is tolerated: the report then carries only the
// leaderboard.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	report := &Report{GeneratedAt: g.now()}

	summary, err := g.scanStore.GetLatest(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if summary != nil {
		report.Scan = ScanSection{
			ScanID:           summary.ScanID,
			Realm:            summary.Realm,
			GoverningMint:    summary.GoverningMint,
			Slot:             summary.Slot,
			ScannedAt:        summary.ScannedAt,
			VoterAccounts:    summary.VoterAccounts,
			Decoded:          summary.Decoded,
			SkippedMalformed: summary.SkippedMalformed,
			Overflowed:       summary.Overflowed,
		}
	}

	records, err := g.recordStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	report.Leaderboard = make([]LeaderboardRow, len(records))
	for i, r := range records {
		report.Leaderboard[i] = LeaderboardRow{
			Rank:      i + 1,
			Wallet:    r.Wallet,
			Native:    r.Native,
			Delegated: r.Delegated,
			Total:     r.Total,
		}
	}

	return report, nil
}
