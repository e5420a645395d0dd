package scanid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeScanID computes a deterministic scan_id using SHA256.
// Formula: SHA256(registrar|slot|scanned_at)
// Returns hex-encoded hash (64 characters).
// Re-running a scan over the same snapshot yields the same id.
func ComputeScanID(registrar string, slot int64, scannedAt int64) string {
	data := fmt.Sprintf("%s|%d|%d", registrar, slot, scannedAt)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
