package power

import (
	"math/big"

	"islanddao-governance/internal/vsr"
)

// WalletBuckets accumulates native and delegated power per wallet.
// Attribution is single hop: a voter account's recorded delegate receives
// the account's entire power, and the chain is never followed further.
type WalletBuckets struct {
	buckets map[vsr.Address]*bucket
}

type bucket struct {
	native    *big.Int
	delegated *big.Int
}

// NewWalletBuckets creates an empty bucket set.
func NewWalletBuckets() *WalletBuckets {
	return &WalletBuckets{buckets: make(map[vsr.Address]*bucket)}
}

func (w *WalletBuckets) get(addr vsr.Address) *bucket {
	b, ok := w.buckets[addr]
	if !ok {
		b = &bucket{native: new(big.Int), delegated: new(big.Int)}
		w.buckets[addr] = b
	}
	return b
}

// Attribute routes one voter account's computed power into exactly one
// bucket: the owner's native bucket when there is no effective delegation,
// otherwise the delegate's delegated bucket. An owner may hold several
// voter accounts; all of them sum into the owner's respective buckets.
// A delegate that appears nowhere else in the input still gets an entry.
func (w *WalletBuckets) Attribute(owner, delegate vsr.Address, native *big.Int) {
	if delegate.IsZero() || delegate == owner {
		b := w.get(owner)
		b.native.Add(b.native, native)
		return
	}

	// Ensure the delegating owner appears in the output with zero native
	// power: its deposits are redirected, not lost.
	w.get(owner)
	b := w.get(delegate)
	b.delegated.Add(b.delegated, native)
}

// Wallets returns the set of wallet addresses observed in any role.
func (w *WalletBuckets) Wallets() []vsr.Address {
	out := make([]vsr.Address, 0, len(w.buckets))
	for addr := range w.buckets {
		out = append(out, addr)
	}
	return out
}

// Power returns copies of a wallet's native and delegated totals.
// Unknown wallets report zero in both buckets.
func (w *WalletBuckets) Power(addr vsr.Address) (native, delegated *big.Int) {
	b, ok := w.buckets[addr]
	if !ok {
		return new(big.Int), new(big.Int)
	}
	return new(big.Int).Set(b.native), new(big.Int).Set(b.delegated)
}

// Resolve attributes every decoded voter account for a registrar.
// The caller must have finished decoding all accounts first: a wallet's
// delegated bucket can depend on accounts anywhere in the input set.
func Resolve(accounts []*vsr.VoterAccount, reg *vsr.Registrar, now int64, bonusScaled uint64) *WalletBuckets {
	buckets := NewWalletBuckets()
	for _, v := range accounts {
		buckets.Attribute(v.Owner, v.Delegate, NativePower(v, reg, now, bonusScaled))
	}
	return buckets
}
