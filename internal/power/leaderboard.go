package power

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"islanddao-governance/internal/domain"
	"islanddao-governance/internal/vsr"
)

// ErrArithmeticOverflow is returned by recordFor when a wallet's power no
// longer fits uint64. BuildLeaderboard excludes the wallet and counts it;
// the scan itself continues.
var ErrArithmeticOverflow = errors.New("arithmetic overflow")

// recordFor converts one wallet's exact buckets into a PowerRecord.
func recordFor(addr vsr.Address, native, delegated *big.Int) (domain.PowerRecord, error) {
	total := new(big.Int).Add(native, delegated)
	if !native.IsUint64() || !delegated.IsUint64() || !total.IsUint64() {
		return domain.PowerRecord{}, fmt.Errorf("%w: wallet %s", ErrArithmeticOverflow, addr)
	}
	return domain.PowerRecord{
		Wallet:    addr.String(),
		Native:    native.Uint64(),
		Delegated: delegated.Uint64(),
		Total:     total.Uint64(),
	}, nil
}

// BuildLeaderboard merges per-wallet buckets into ranked PowerRecords.
// Sort order is total descending, ties broken by ascending wallet address
// bytes, so equal inputs always produce byte-identical output.
// Wallets whose buckets exceed uint64 are excluded and counted as overflowed.
func BuildLeaderboard(buckets *WalletBuckets, filterZero bool) (records []domain.PowerRecord, overflowed int) {
	addrs := buckets.Wallets()
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i][:], addrs[j][:]) < 0
	})

	for _, addr := range addrs {
		native, delegated := buckets.Power(addr)
		rec, err := recordFor(addr, native, delegated)
		if errors.Is(err, ErrArithmeticOverflow) {
			overflowed++
			continue
		}
		if filterZero && rec.Total == 0 {
			continue
		}
		records = append(records, rec)
	}

	// Stable keeps the pre-sorted ascending address order within equal totals.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Total > records[j].Total
	})

	return records, overflowed
}

// FilterWallets restricts records to a wallet set, preserving order.
// An empty set means no restriction.
func FilterWallets(records []domain.PowerRecord, wallets map[string]bool) []domain.PowerRecord {
	if len(wallets) == 0 {
		return records
	}
	out := make([]domain.PowerRecord, 0, len(records))
	for _, r := range records {
		if wallets[r.Wallet] {
			out = append(out, r)
		}
	}
	return out
}
