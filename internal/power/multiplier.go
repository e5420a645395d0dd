// Package power computes per-wallet governance voting power from decoded
// voter stake registry accounts: lockup multipliers, deposit aggregation,
// single-hop delegation attribution and leaderboard construction.
package power

import (
	"math/bits"

	"islanddao-governance/internal/vsr"
)

// Scale is the fixed-point denominator for multipliers and bonus weights.
// A multiplier of 4.0 is represented as 4 * Scale.
const Scale = 1_000_000_000

// ScaleBonusWeight converts a registrar-level bonus weight (the maximum
// extra multiplier at full lockup, e.g. 3.0) into fixed-point form.
func ScaleBonusWeight(w float64) uint64 {
	if w < 0 {
		return 0
	}
	return uint64(w*Scale + 0.5)
}

// MultiplierScaled returns the voting-power multiplier for a deposit entry
// in fixed point: Scale means exactly 1.0 (baseline, no bonus).
//
// Expired lockups and kind "none" are baseline. Otherwise the remaining
// lock duration is normalized to [0, saturationSecs] and applied to the
// shared linear ramp: Scale + bonusScaled * remaining / saturationSecs.
// Unknown lockup kinds are forward-compatible and contribute baseline.
// saturationSecs == 0 is defined as baseline, never a division by zero.
// Pure and deterministic: the only clock is the passed-in now.
func MultiplierScaled(kind vsr.LockupKind, lockupStart, lockupEnd, now int64, saturationSecs, bonusScaled uint64) uint64 {
	if kind == vsr.LockupNone || now >= lockupEnd {
		return Scale
	}
	if saturationSecs == 0 || bonusScaled == 0 {
		return Scale
	}

	var remaining uint64
	switch kind {
	case vsr.LockupCliff, vsr.LockupDaily, vsr.LockupMonthly:
		// Monotonic decay toward the unlock timestamp.
		remaining = uint64(lockupEnd - now)
	case vsr.LockupConstant:
		// Constant lockups hold their full duration until closed.
		if lockupEnd <= lockupStart {
			return Scale
		}
		remaining = uint64(lockupEnd - lockupStart)
	default:
		return Scale
	}

	if remaining > saturationSecs {
		remaining = saturationSecs
	}

	// bonusScaled * remaining / saturationSecs without intermediate overflow.
	// remaining <= saturationSecs keeps the quotient <= bonusScaled.
	hi, lo := bits.Mul64(bonusScaled, remaining)
	bonus, _ := bits.Div64(hi, lo, saturationSecs)

	return Scale + bonus
}

// Multiplier returns the multiplier as a float for display and reporting.
// Internal accumulation always uses the fixed-point form.
func Multiplier(kind vsr.LockupKind, lockupStart, lockupEnd, now int64, saturationSecs, bonusScaled uint64) float64 {
	return float64(MultiplierScaled(kind, lockupStart, lockupEnd, now, saturationSecs, bonusScaled)) / Scale
}
