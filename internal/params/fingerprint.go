package params

import (
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// fingerprintVersion is bumped whenever the derivation procedure changes in
// a way that alters the generated constants.
const fingerprintVersion = 1

// descriptor is the wire-visible identity of a parameter set. Two parties
// must agree on this tuple to produce comparable digests.
type descriptor struct {
	Version       int    `cbor:"0,keyasint"`
	Modulus       []byte `cbor:"1,keyasint"`
	Rate          int    `cbor:"2,keyasint"`
	StateSize     int    `cbor:"3,keyasint"`
	FullRounds    int    `cbor:"4,keyasint"`
	PartialRounds int    `cbor:"5,keyasint"`
	Alpha         int    `cbor:"6,keyasint"`
}

var (
	encModeOnce sync.Once
	encMode     cbor.EncMode
	encModeErr  error
)

// Fingerprint returns a stable 32-byte identifier for the parameter set:
// the blake2b-256 digest of the canonical CBOR encoding of its public
// descriptor. It identifies the configuration, not the derived tables; the
// tables are a deterministic function of the descriptor.
func (p *Parameters) Fingerprint() ([32]byte, error) {
	encModeOnce.Do(func() {
		encMode, encModeErr = cbor.CanonicalEncOptions().EncMode()
	})
	if encModeErr != nil {
		return [32]byte{}, fmt.Errorf("params: cbor encoder: %w", encModeErr)
	}

	d := descriptor{
		Version:       fingerprintVersion,
		Modulus:       fr.Modulus().Bytes(),
		Rate:          p.Rate,
		StateSize:     p.StateSize,
		FullRounds:    p.FullRounds,
		PartialRounds: p.PartialRounds,
		Alpha:         p.Alpha,
	}
	raw, err := encMode.Marshal(d)
	if err != nil {
		return [32]byte{}, fmt.Errorf("params: encode descriptor: %w", err)
	}
	return blake2b.Sum256(raw), nil
}
