package reporting

import (
	"encoding/json"
	"fmt"

	"islanddao-governance/internal/domain"
)

// powerRecordJSON is the wire shape consumed by downstream reporting tools.
type powerRecordJSON struct {
	Wallet    string `json:"wallet"`
	Native    uint64 `json:"native"`
	Delegated uint64 `json:"delegated"`
	Total     uint64 `json:"total"`
}

// RenderJSON renders power records as a JSON array, preserving input order.
func RenderJSON(records []domain.PowerRecord) ([]byte, error) {
	out := make([]powerRecordJSON, len(records))
	for i, r := range records {
		out[i] = powerRecordJSON{
			Wallet:    r.Wallet,
			Native:    r.Native,
			Delegated: r.Delegated,
			Total:     r.Total,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal power records: %w", err)
	}
	return data, nil
}

// reportJSON is the wire shape of a full report.
type reportJSON struct {
	GeneratedAt string          `json:"generated_at"`
	Scan        scanSectionJSON `json:"scan"`
	Leaderboard []rowJSON       `json:"leaderboard"`
}

type scanSectionJSON struct {
	ScanID           string `json:"scan_id"`
	Realm            string `json:"realm,omitempty"`
	GoverningMint    string `json:"governing_mint,omitempty"`
	Slot             int64  `json:"slot"`
	ScannedAt        int64  `json:"scanned_at"`
	VoterAccounts    int    `json:"voter_accounts"`
	Decoded          int    `json:"decoded"`
	SkippedMalformed int    `json:"skipped_malformed"`
	Overflowed       int    `json:"overflowed"`
}

type rowJSON struct {
	Rank      int    `json:"rank"`
	Wallet    string `json:"wallet"`
	Native    uint64 `json:"native"`
	Delegated uint64 `json:"delegated"`
	Total     uint64 `json:"total"`
}

// RenderReportJSON renders a full report, scan section included, as JSON.
func RenderReportJSON(r *Report) ([]byte, error) {
	out := reportJSON{
		GeneratedAt: r.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Scan: scanSectionJSON{
			ScanID:           r.Scan.ScanID,
			Realm:            r.Scan.Realm,
			GoverningMint:    r.Scan.GoverningMint,
			Slot:             r.Scan.Slot,
			ScannedAt:        r.Scan.ScannedAt,
			VoterAccounts:    r.Scan.VoterAccounts,
			Decoded:          r.Scan.Decoded,
			SkippedMalformed: r.Scan.SkippedMalformed,
			Overflowed:       r.Scan.Overflowed,
		},
		Leaderboard: make([]rowJSON, len(r.Leaderboard)),
	}
	for i, row := range r.Leaderboard {
		out.Leaderboard[i] = rowJSON{
			Rank:      row.Rank,
			Wallet:    row.Wallet,
			Native:    row.Native,
			Delegated: row.Delegated,
			Total:     row.Total,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}
