package poseidon

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/vocdoni/console377/internal/params"
)

// permutation applies the fixed-round substitution-permutation network to a
// state of StateSize field elements. Every round adds the round constants,
// applies the S-box layer, then the dense MDS mix; the middle rounds apply
// the S-box to state[0] only.
type permutation struct {
	params *params.Parameters
}

// permute mutates the state in place.
func (p *permutation) permute(state []fr.Element) {
	rF := p.params.FullRounds / 2
	round := 0

	for r := 0; r < rF; r++ {
		p.addArcRow(state, round)
		p.fullSBox(state)
		p.mixLayer(state)
		round++
	}

	for r := 0; r < p.params.PartialRounds; r++ {
		p.addArcRow(state, round)
		p.partialSBox(state)
		p.mixLayer(state)
		round++
	}

	for r := 0; r < rF; r++ {
		p.addArcRow(state, round)
		p.fullSBox(state)
		p.mixLayer(state)
		round++
	}
}

func (p *permutation) addArcRow(state []fr.Element, round int) {
	row := p.params.ArcRow(round)
	for i := range state {
		state[i].Add(&state[i], &row[i])
	}
}

func (p *permutation) mixLayer(state []fr.Element) {
	t := p.params.StateSize
	newState := make([]fr.Element, t)
	for i := 0; i < t; i++ {
		var sum fr.Element
		rowOffset := i * t
		for j := 0; j < t; j++ {
			var prod fr.Element
			coeff := p.params.MDS[rowOffset+j]
			prod.Mul(&coeff, &state[j])
			sum.Add(&sum, &prod)
		}
		newState[i] = sum
	}
	copy(state, newState)
}

func (p *permutation) fullSBox(state []fr.Element) {
	for i := range state {
		p.sbox(&state[i])
	}
}

func (p *permutation) partialSBox(state []fr.Element) {
	p.sbox(&state[0])
}

func (p *permutation) sbox(x *fr.Element) {
	if p.params.Alpha == 17 {
		exp17(x)
		return
	}
	x.Exp(*x, big.NewInt(int64(p.params.Alpha)))
}

func exp17(x *fr.Element) {
	var x2, x4, x8, x16 fr.Element
	x2.Mul(x, x)
	x4.Mul(&x2, &x2)
	x8.Mul(&x4, &x4)
	x16.Mul(&x8, &x8)
	x.Mul(&x16, x)
}
