package power

import (
	"math/big"

	"islanddao-governance/internal/vsr"
)

var scaleBig = big.NewInt(Scale)

// NativePower sums amount × multiplier over a voter account's active
// deposit entries. Unused or zero-amount entries contribute nothing.
// Accumulation is exact: fixed-point multipliers over big integers,
// truncated to token units only after the per-account sum.
func NativePower(v *vsr.VoterAccount, reg *vsr.Registrar, now int64, bonusScaled uint64) *big.Int {
	sum := new(big.Int)
	var entry big.Int

	for i := range v.Deposits {
		d := &v.Deposits[i]
		if !d.IsUsed || d.AmountDeposited == 0 {
			continue
		}

		m := MultiplierScaled(d.LockupKind, d.LockupStart, d.LockupEnd, now, reg.LockupSaturationSec, bonusScaled)
		entry.SetUint64(d.AmountDeposited)
		entry.Mul(&entry, new(big.Int).SetUint64(m))
		sum.Add(sum, &entry)
	}

	// sum is in amount × Scale units; normalize back to token units.
	return sum.Quo(sum, scaleBig)
}
