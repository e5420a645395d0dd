package domain

// PowerSnapshotPoint is one wallet's power at one scan.
// Corresponds to power_snapshots table in ClickHouse.
type PowerSnapshotPoint struct {
	ScanID    string
	Wallet    string
	Native    uint64
	Delegated uint64
	Total     uint64
	Slot      int64
	ScannedAt int64 // Unix timestamp in seconds
}
