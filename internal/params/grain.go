package params

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// grainLFSR is the 80-bit Grain LFSR constant stream from the Poseidon
// reference parameter derivation. The register is seeded from the public
// parameter tuple, clocked 160 times, and then read through a pairwise
// discard rule, so the emitted stream is a pure function of the parameters.
type grainLFSR struct {
	state     [80]bool
	head      int
	fieldBits int
}

func newGrainLFSR(fieldBits, stateSize, fullRounds, partialRounds int) *grainLFSR {
	g := &grainLFSR{fieldBits: fieldBits}

	// Seed layout (big-endian within each slice):
	//   b0..b1   field tag (prime field = 1)
	//   b2..b5   S-box tag (power map = 0)
	//   b6..b17  field size in bits
	//   b18..b29 state width
	//   b30..b39 full rounds
	//   b40..b49 partial rounds
	//   b50..b79 all ones
	g.state[1] = true
	g.seed(6, 17, fieldBits)
	g.seed(18, 29, stateSize)
	g.seed(30, 39, fullRounds)
	g.seed(40, 49, partialRounds)
	for i := 50; i < 80; i++ {
		g.state[i] = true
	}

	for i := 0; i < 160; i++ {
		g.update()
	}
	return g
}

func (g *grainLFSR) seed(from, to, value int) {
	for i := to; i >= from; i-- {
		g.state[i] = value&1 == 1
		value >>= 1
	}
}

// update clocks the register once. Taps at offsets 62, 51, 38, 23, 13, 0.
func (g *grainLFSR) update() bool {
	bit := g.at(62) != g.at(51)
	bit = bit != g.at(38)
	bit = bit != g.at(23)
	bit = bit != g.at(13)
	bit = bit != g.at(0)
	g.state[g.head] = bit
	g.head = (g.head + 1) % len(g.state)
	return bit
}

func (g *grainLFSR) at(offset int) bool {
	return g.state[(g.head+offset)%len(g.state)]
}

// nextBit reads one stream bit: raw bits are consumed in pairs, a pair whose
// first bit is 0 is discarded, otherwise the second bit is emitted.
func (g *grainLFSR) nextBit() bool {
	for !g.update() {
		g.update()
	}
	return g.update()
}

// nextInteger samples fieldBits stream bits, most significant first.
func (g *grainLFSR) nextInteger() *big.Int {
	v := new(big.Int)
	for i := 0; i < g.fieldBits; i++ {
		v.Lsh(v, 1)
		if g.nextBit() {
			v.SetBit(v, 0, 1)
		}
	}
	return v
}

// nextFieldRejection samples a field element by rejection: candidates of
// fieldBits bits are drawn until one is below the modulus.
func (g *grainLFSR) nextFieldRejection() fr.Element {
	modulus := fr.Modulus()
	for {
		v := g.nextInteger()
		if v.Cmp(modulus) < 0 {
			var e fr.Element
			e.SetBigInt(v)
			return e
		}
	}
}

// nextFieldModP samples fieldBits bits and reduces them modulo the field.
func (g *grainLFSR) nextFieldModP() fr.Element {
	var e fr.Element
	e.SetBigInt(g.nextInteger())
	return e
}
