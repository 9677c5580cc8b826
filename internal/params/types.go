// Package params generates and validates the Poseidon parameter sets used
// by the console hash engines. Generation is deterministic: the same
// (field, rate, round count) tuple always yields the same constants, so two
// parties configuring identical parameter sets produce comparable digests.
package params

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// ErrConfiguration reports a malformed or unsupported parameter set. It is
// fatal for the requested configuration; callers must fix the configuration
// rather than retry.
var ErrConfiguration = errors.New("invalid configuration")

// Parameters bundles all constants needed by the permutation.
//
// Arc holds one row of StateSize round constants per round, stored
// row-major. MDS is the StateSize x StateSize mixing matrix, row-major.
// Both are immutable after generation and shared by all callers.
type Parameters struct {
	Rate          int
	StateSize     int
	FullRounds    int
	PartialRounds int
	Alpha         int

	Arc []fr.Element
	MDS []fr.Element
}

// Rounds returns the total round count.
func (p *Parameters) Rounds() int {
	return p.FullRounds + p.PartialRounds
}

// ArcRow returns the round-constant row for the given round.
func (p *Parameters) ArcRow(round int) []fr.Element {
	t := p.StateSize
	return p.Arc[round*t : (round+1)*t]
}
