package vsr

import "fmt"

// Voter layout:
//
//	discriminator(8) | owner(32) | registrar(32) | delegate(32, zero = none) |
//	deposits[DepositEntryCount] × DepositEntryLen | reserved tail
//
// Each deposit entry:
//
//	lockup.start_ts(i64) | lockup.end_ts(i64) | lockup.kind(u8) | reserved(15) |
//	amount_deposited_native(u64) | amount_initially_locked(u64) | is_used(u8) |
//	reserved(31)
const (
	// DepositEntryCount is the fixed capacity of a voter's deposit array.
	DepositEntryCount = 32

	// DepositEntryLen is the byte length of one deposit entry.
	DepositEntryLen = 80

	voterHeaderLen = discriminatorLen + 3*AddressLen

	// VoterMinLen is the minimum byte length of a voter account.
	VoterMinLen = voterHeaderLen + DepositEntryCount*DepositEntryLen
)

// LockupKind identifies a deposit entry's lockup schedule.
type LockupKind byte

// Known lockup kinds. Unknown kind bytes decode without error and are
// treated as baseline (no bonus) by the multiplier.
const (
	LockupNone     LockupKind = 0
	LockupDaily    LockupKind = 1
	LockupMonthly  LockupKind = 2
	LockupCliff    LockupKind = 3
	LockupConstant LockupKind = 4
)

// String returns a human-readable lockup kind name.
func (k LockupKind) String() string {
	switch k {
	case LockupNone:
		return "none"
	case LockupDaily:
		return "daily"
	case LockupMonthly:
		return "monthly"
	case LockupCliff:
		return "cliff"
	case LockupConstant:
		return "constant"
	default:
		return fmt.Sprintf("unknown(%d)", byte(k))
	}
}

// DepositEntry is one lockup-governed stake record within a voter account.
type DepositEntry struct {
	LockupStart     int64
	LockupEnd       int64
	LockupKind      LockupKind
	AmountDeposited uint64
	AmountInitial   uint64
	IsUsed          bool
}

// VoterAccount is one decoded on-chain voter record. A non-zero delegate
// forwards the account's entire computed power to that delegate.
type VoterAccount struct {
	Address  Address // the account's own address
	Owner    Address
	Delegate Address // zero = no delegation
	Deposits [DepositEntryCount]DepositEntry
}

// HasDelegate reports whether the account has an effective delegation.
// Self-delegation means "no effective delegation".
func (v *VoterAccount) HasDelegate() bool {
	return !v.Delegate.IsZero() && v.Delegate != v.Owner
}

// DecodeVoter parses a raw voter account buffer.
// Returns ErrMalformedRecord if the buffer is shorter than VoterMinLen.
// Entries whose is_used byte is zero are retained but marked inactive.
func DecodeVoter(address Address, buf []byte) (*VoterAccount, error) {
	if len(buf) < VoterMinLen {
		return nil, fmt.Errorf("%w: voter needs %d bytes, got %d", ErrMalformedRecord, VoterMinLen, len(buf))
	}

	r := &reader{buf: buf}
	if err := r.skip(discriminatorLen); err != nil {
		return nil, err
	}

	v := &VoterAccount{Address: address}
	var err error
	if v.Owner, err = r.address(); err != nil {
		return nil, err
	}
	// Registrar back-reference: kept as layout but not needed by callers,
	// which already scope fetches to a single registrar.
	if err := r.skip(AddressLen); err != nil {
		return nil, err
	}
	if v.Delegate, err = r.address(); err != nil {
		return nil, err
	}

	for i := 0; i < DepositEntryCount; i++ {
		entry, err := decodeDepositEntry(r)
		if err != nil {
			return nil, fmt.Errorf("deposit entry %d: %w", i, err)
		}
		v.Deposits[i] = entry
	}

	return v, nil
}

// decodeDepositEntry parses one fixed-size deposit sub-record.
func decodeDepositEntry(r *reader) (DepositEntry, error) {
	var e DepositEntry
	var err error

	if e.LockupStart, err = r.i64(); err != nil {
		return e, err
	}
	if e.LockupEnd, err = r.i64(); err != nil {
		return e, err
	}
	kind, err := r.u8()
	if err != nil {
		return e, err
	}
	e.LockupKind = LockupKind(kind)
	if err := r.skip(15); err != nil {
		return e, err
	}
	if e.AmountDeposited, err = r.u64(); err != nil {
		return e, err
	}
	if e.AmountInitial, err = r.u64(); err != nil {
		return e, err
	}
	used, err := r.u8()
	if err != nil {
		return e, err
	}
	e.IsUsed = used != 0
	if err := r.skip(31); err != nil {
		return e, err
	}

	return e, nil
}
