package bhp

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-377/twistededwards"
)

// Hash maps the input bit sequence to a field element: the x-coordinate of
// the accumulated group element. The input is right-padded with zero bits
// to a multiple of the chunk size; instances are size-classed, so callers
// hash length-framed serializations and padding stays injective.
func (b *BHP) Hash(bits []bool) (fr.Element, error) {
	p, err := b.HashUncompressed(bits)
	if err != nil {
		return fr.Element{}, err
	}
	return p.X, nil
}

// HashUncompressed returns the accumulated group element before coordinate
// projection.
func (b *BHP) HashUncompressed(bits []bool) (twistededwards.PointAffine, error) {
	var acc twistededwards.PointAffine
	if len(bits) == 0 {
		return acc, fmt.Errorf("bhp: %w: empty input", ErrInvalidParameter)
	}
	if len(bits) > b.Capacity() {
		return acc, fmt.Errorf("bhp: %w: %d bits > %d", ErrInputTooLarge, len(bits), b.Capacity())
	}

	padded := bits
	if rem := len(bits) % chunkSize; rem != 0 {
		padded = make([]bool, len(bits)+chunkSize-rem)
		copy(padded, bits)
	}

	acc.X.SetZero()
	acc.Y.SetOne()
	numChunks := len(padded) / chunkSize
	for i := 0; i < numChunks; i++ {
		v := 0
		for j := 0; j < chunkSize; j++ {
			if padded[i*chunkSize+j] {
				v |= 1 << j
			}
		}
		window := i / b.windowSize
		slot := i % b.windowSize
		acc.Add(&acc, &b.tables[window][slot][v])
	}
	return acc, nil
}

// Commit hashes the input and blinds it with randomness before projecting:
// the commitment is x(H(bits) + r*R) for the fixed randomizer base R. R is
// derived independently of all window bases, which makes the commitment
// hiding; binding follows from the discrete log assumption.
func (b *BHP) Commit(bits []bool, randomness *big.Int) (fr.Element, error) {
	p, err := b.CommitUncompressed(bits, randomness)
	if err != nil {
		return fr.Element{}, err
	}
	return p.X, nil
}

// CommitUncompressed returns the blinded group element before coordinate
// projection. The randomness is reduced modulo the subgroup order.
func (b *BHP) CommitUncompressed(bits []bool, randomness *big.Int) (twistededwards.PointAffine, error) {
	var acc twistededwards.PointAffine
	if randomness == nil {
		return acc, fmt.Errorf("bhp: %w: nil randomness", ErrInvalidParameter)
	}
	acc, err := b.HashUncompressed(bits)
	if err != nil {
		return acc, err
	}

	r := new(big.Int).Mod(randomness, b.order)
	var blind twistededwards.PointAffine
	blind.ScalarMultiplication(&b.randomBase, r)
	acc.Add(&acc, &blind)
	return acc, nil
}
