package poseidon

import "github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

type spongeMode int

const (
	absorbing spongeMode = iota
	squeezing
)

// sponge is the per-call duplex state. state[0] is the capacity slot and
// carries the domain-separation tag; state[1:] are the rate slots. A sponge
// moves one way from absorbing to squeezing and is discarded after the
// call; it never outlives a single hash invocation.
type sponge struct {
	perm  *permutation
	state []fr.Element
	mode  spongeMode
	pos   int // next rate slot
}

func newSponge(perm *permutation, domain fr.Element) *sponge {
	state := make([]fr.Element, perm.params.StateSize)
	state[0] = domain
	return &sponge{perm: perm, state: state}
}

// absorb adds elements into the rate slots, permuting each time the rate
// section fills. A partially filled final block is left in place; the
// transition to squeezing flushes it.
func (s *sponge) absorb(elems []fr.Element) {
	if s.mode != absorbing {
		panic("poseidon: absorb after squeeze")
	}
	for i := range elems {
		if s.pos == s.perm.params.Rate {
			s.perm.permute(s.state)
			s.pos = 0
		}
		s.state[1+s.pos].Add(&s.state[1+s.pos], &elems[i])
		s.pos++
	}
}

// squeeze reads n elements from the rate slots, permuting once on the
// absorb-to-squeeze transition and between output blocks.
func (s *sponge) squeeze(n int) []fr.Element {
	if s.mode == absorbing {
		s.perm.permute(s.state)
		s.mode = squeezing
		s.pos = 0
	}
	out := make([]fr.Element, 0, n)
	for len(out) < n {
		if s.pos == s.perm.params.Rate {
			s.perm.permute(s.state)
			s.pos = 0
		}
		out = append(out, s.state[1+s.pos])
		s.pos++
	}
	return out
}
