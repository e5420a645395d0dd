// Package vsr decodes Voter Stake Registry on-chain accounts.
// All accounts are Anchor-style: an 8-byte discriminator followed by
// little-endian fields at fixed offsets. Address fields are opaque 32-byte
// identifiers compared by byte equality only.
package vsr

import (
	"encoding/binary"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ErrMalformedRecord is returned when a buffer is shorter than the minimum
// length for its record kind, or a read would exceed buffer bounds.
// Unrecognized content in forward-compatible regions is never an error.
var ErrMalformedRecord = errors.New("malformed record")

// AddressLen is the byte length of an on-chain address.
const AddressLen = 32

// Address is a fixed-width opaque account identifier.
type Address [AddressLen]byte

// zeroAddress marks "no delegate" in voter records.
var zeroAddress Address

// String returns the base58 encoding of the address.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// IsZero reports whether the address is all zero bytes.
func (a Address) IsZero() bool {
	return a == zeroAddress
}

// ParseAddress decodes a base58 string into an Address.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw, err := base58.Decode(s)
	if err != nil {
		return a, fmt.Errorf("decode address: %w", err)
	}
	if len(raw) != AddressLen {
		return a, fmt.Errorf("decode address: got %d bytes, want %d", len(raw), AddressLen)
	}
	copy(a[:], raw)
	return a, nil
}

// IsOnCurve reports whether the address is a valid ed25519 curve point.
// Program-derived addresses are intentionally off-curve.
func (a Address) IsOnCurve() bool {
	_, err := new(edwards25519.Point).SetBytes(a[:])
	return err == nil
}

// reader walks a byte buffer with bounds checks before every read.
type reader struct {
	buf []byte
	off int
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

// skip advances the cursor without interpreting the bytes.
func (r *reader) skip(n int) error {
	if r.remaining() < n {
		return fmt.Errorf("%w: skip %d bytes at offset %d, only %d left", ErrMalformedRecord, n, r.off, r.remaining())
	}
	r.off += n
	return nil
}

func (r *reader) address() (Address, error) {
	var a Address
	if r.remaining() < AddressLen {
		return a, fmt.Errorf("%w: address at offset %d, only %d bytes left", ErrMalformedRecord, r.off, r.remaining())
	}
	copy(a[:], r.buf[r.off:r.off+AddressLen])
	r.off += AddressLen
	return a, nil
}

func (r *reader) u64() (uint64, error) {
	if r.remaining() < 8 {
		return 0, fmt.Errorf("%w: u64 at offset %d, only %d bytes left", ErrMalformedRecord, r.off, r.remaining())
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off : r.off+8])
	r.off += 8
	return v, nil
}

func (r *reader) i64() (int64, error) {
	v, err := r.u64()
	return int64(v), err
}

func (r *reader) u8() (byte, error) {
	if r.remaining() < 1 {
		return 0, fmt.Errorf("%w: u8 at offset %d, buffer exhausted", ErrMalformedRecord, r.off)
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}
