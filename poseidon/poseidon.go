// Package poseidon implements the Poseidon algebraic sponge hash over the
// bls12-377 scalar field. Each instance is parameterized by a
// domain-separation string and a rate (2, 4 or 8 message limbs per
// permutation); the round constants and MDS matrix are generated
// deterministically per rate, so identical configurations always produce
// identical digests.
package poseidon

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-377/twistededwards"

	"github.com/vocdoni/console377/internal/params"
)

// MaxOutputs bounds the squeeze width of a single hash call.
const MaxOutputs = 16

// ErrInvalidParameter reports a caller-supplied argument outside the
// instance's capacity: empty input, or an out-of-range output width. The
// caller can recover by choosing a correctly sized request.
var ErrInvalidParameter = errors.New("invalid parameter")

// Poseidon is a hash engine for one (domain, rate) configuration. It is
// immutable after construction and safe for concurrent use; all per-call
// state lives in the sponge.
type Poseidon struct {
	domain fr.Element
	perm   permutation
}

// New instantiates an engine for the given domain string and rate. The
// domain must fit in a single field element (at most 31 bytes); supported
// rates are 2, 4 and 8. Both violations report params.ErrConfiguration.
func New(domain string, rate int) (*Poseidon, error) {
	tag, err := domainTag(domain)
	if err != nil {
		return nil, err
	}
	p, err := params.Cached(rate)
	if err != nil {
		return nil, err
	}
	return &Poseidon{domain: tag, perm: permutation{params: p}}, nil
}

// domainTag packs the domain string into a field element, little-endian.
func domainTag(domain string) (fr.Element, error) {
	var tag fr.Element
	data := []byte(domain)
	if len(data) > fr.Bytes-1 {
		return tag, fmt.Errorf("poseidon: %w: domain %q exceeds %d bytes", params.ErrConfiguration, domain, fr.Bytes-1)
	}
	reversed := make([]byte, len(data))
	for i := range data {
		reversed[len(data)-1-i] = data[i]
	}
	tag.SetBigInt(new(big.Int).SetBytes(reversed))
	return tag, nil
}

// Rate returns the configured rate.
func (p *Poseidon) Rate() int {
	return p.perm.params.Rate
}

// Fingerprint returns the wire-visible identifier of the underlying
// parameter set.
func (p *Poseidon) Fingerprint() ([32]byte, error) {
	return p.perm.params.Fingerprint()
}

// Hash absorbs the inputs and squeezes a single field element.
//
// The sponge starts with the domain tag in the capacity slot, and the
// preimage is the input length followed by the inputs. The length prefix
// makes the zero padding of the final rate block injective across input
// lengths: inputs sharing a prefix cannot collide by padding alone.
func (p *Poseidon) Hash(inputs []fr.Element) (fr.Element, error) {
	out, err := p.HashMany(inputs, 1)
	if err != nil {
		return fr.Element{}, err
	}
	return out[0], nil
}

// HashMany absorbs the inputs and squeezes numOutputs field elements.
func (p *Poseidon) HashMany(inputs []fr.Element, numOutputs int) ([]fr.Element, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("poseidon: %w: need at least 1 input", ErrInvalidParameter)
	}
	if numOutputs < 1 || numOutputs > MaxOutputs {
		return nil, fmt.Errorf("poseidon: %w: output width %d outside [1, %d]", ErrInvalidParameter, numOutputs, MaxOutputs)
	}

	s := newSponge(&p.perm, p.domain)
	var length fr.Element
	length.SetUint64(uint64(len(inputs)))
	s.absorb([]fr.Element{length})
	s.absorb(inputs)
	return s.squeeze(numOutputs), nil
}

// HashToScalar hashes the inputs and reinterprets the digest as a scalar
// for the embedded curve's prime-order subgroup: the squeezed field element
// is truncated to one bit less than the subgroup order's bit length, which
// guarantees a canonical scalar.
func (p *Poseidon) HashToScalar(inputs []fr.Element) (*big.Int, error) {
	digest, err := p.Hash(inputs)
	if err != nil {
		return nil, err
	}
	v := digest.BigInt(new(big.Int))
	order := twistededwards.GetEdwardsCurve().Order
	mask := new(big.Int).Lsh(big.NewInt(1), uint(order.BitLen()-1))
	mask.Sub(mask, big.NewInt(1))
	return v.And(v, mask), nil
}
