package reporting

import "time"

// Report represents the governance power report structure.
type Report struct {
	// Metadata
	GeneratedAt time.Time

	// Latest scan summary
	Scan ScanSection

	// Ranked leaderboard rows (sorted by total DESC, wallet ASC)
	Leaderboard []LeaderboardRow
}

// ScanSection describes what the latest scan decoded.
type ScanSection struct {
	ScanID           string
	Realm            string
	GoverningMint    string
	Slot             int64
	ScannedAt        int64 // Unix seconds
	VoterAccounts    int
	Decoded          int
	SkippedMalformed int
	Overflowed       int
}

// LeaderboardRow represents one wallet in the ranked report.
type LeaderboardRow struct {
	Rank      int
	Wallet    string
	Native    uint64
	Delegated uint64
	Total     uint64
}
