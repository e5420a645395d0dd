package domain

// PowerRecord is the per-wallet governance power aggregate.
// Corresponds to power_records table in PostgreSQL.
type PowerRecord struct {
	Wallet    string // base58 wallet address
	Native    uint64 // power from own, un-delegated deposits
	Delegated uint64 // power received via other wallets' delegations
	Total     uint64 // Native + Delegated
}

// ScanSummary reports what a leaderboard computation actually decoded.
// Totals in the leaderboard are always consistent with these counts.
type ScanSummary struct {
	ScanID           string // deterministic hash, see scanid package
	Realm            string // base58 realm address
	GoverningMint    string // base58 governing token mint
	Slot             int64  // slot of the account snapshot (0 if unknown)
	ScannedAt        int64  // the `now` passed into the computation (unix seconds)
	VoterAccounts    int    // accounts submitted for decoding
	Decoded          int    // accounts decoded and aggregated
	SkippedMalformed int    // accounts discarded as malformed
	Overflowed       int    // wallet buckets excluded for overflow
	Wallets          int    // wallets in the resulting leaderboard
}
