package vsr

import "fmt"

// Registrar layout:
//
//	discriminator(8) | realm(32) | governing_token_mint(32) |
//	lockup_saturation_secs(u64 LE) | reserved tail (forward-compatible)
const (
	discriminatorLen = 8

	// RegistrarMinLen is the minimum byte length of a registrar account.
	RegistrarMinLen = discriminatorLen + 2*AddressLen + 8
)

// Registrar is the per-realm configuration record. Immutable once decoded.
type Registrar struct {
	Realm               Address
	GoverningTokenMint  Address
	LockupSaturationSec uint64
}

// DecodeRegistrar parses a raw registrar account buffer.
// Returns ErrMalformedRecord if the buffer is shorter than RegistrarMinLen.
func DecodeRegistrar(buf []byte) (*Registrar, error) {
	if len(buf) < RegistrarMinLen {
		return nil, fmt.Errorf("%w: registrar needs %d bytes, got %d", ErrMalformedRecord, RegistrarMinLen, len(buf))
	}

	r := &reader{buf: buf}
	if err := r.skip(discriminatorLen); err != nil {
		return nil, err
	}

	reg := &Registrar{}
	var err error
	if reg.Realm, err = r.address(); err != nil {
		return nil, err
	}
	if reg.GoverningTokenMint, err = r.address(); err != nil {
		return nil, err
	}
	if reg.LockupSaturationSec, err = r.u64(); err != nil {
		return nil, err
	}

	// Any remaining bytes are a reserved, forward-compatible tail.
	return reg, nil
}
