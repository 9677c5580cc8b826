// Package hashtocurve deterministically maps domain-separation strings to
// points in the prime-order subgroup of the bls12-377 embedded twisted
// Edwards curve. The console engines use it to derive independent
// generators: distinct input strings yield unrelated base points.
package hashtocurve

import (
	"errors"
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-377/twistededwards"
	"golang.org/x/crypto/blake2b"
)

// maxAttempts bounds the try-and-increment loop. Each attempt succeeds for
// roughly half of all candidate x-coordinates, so 256 attempts failing has
// negligible probability; hitting the bound indicates a broken
// configuration, not bad luck.
const maxAttempts = 256

// ErrNoPoint reports that no subgroup point was found for the message
// within the attempt bound.
var ErrNoPoint = errors.New("no curve point found")

// MapToGroup hashes msg to a point of prime order. The derivation is
// try-and-increment: an attempt counter is appended to msg, the blake2b XOF
// output is reduced to a candidate x-coordinate, the curve equation is
// solved for y with a canonical sign choice, and the cofactor is cleared.
// The result is a pure function of msg.
func MapToGroup(msg string) (twistededwards.PointAffine, error) {
	curve := twistededwards.GetEdwardsCurve()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		x, err := candidateX(msg, byte(attempt))
		if err != nil {
			return twistededwards.PointAffine{}, err
		}

		y, ok := solveForY(&curve, &x)
		if !ok {
			continue
		}

		p := twistededwards.PointAffine{X: x, Y: y}
		// Clear the cofactor (4) so the point lands in the prime-order
		// subgroup, then reject degenerate results.
		p.Double(&p).Double(&p)
		if isIdentity(&p) {
			continue
		}

		var check twistededwards.PointAffine
		check.ScalarMultiplication(&p, &curve.Order)
		if !isIdentity(&check) {
			continue
		}
		return p, nil
	}
	return twistededwards.PointAffine{}, fmt.Errorf("hashtocurve: %w for %q", ErrNoPoint, msg)
}

// candidateX derives a candidate x-coordinate from (msg, attempt). The XOF
// output is 48 bytes, comfortably above the field size, so the modular
// reduction is statistically uniform.
func candidateX(msg string, attempt byte) (fr.Element, error) {
	var x fr.Element
	xof, err := blake2b.NewXOF(48, nil)
	if err != nil {
		return x, fmt.Errorf("hashtocurve: xof: %w", err)
	}
	if _, err := xof.Write([]byte(msg)); err != nil {
		return x, fmt.Errorf("hashtocurve: xof write: %w", err)
	}
	if _, err := xof.Write([]byte{attempt}); err != nil {
		return x, fmt.Errorf("hashtocurve: xof write: %w", err)
	}
	buf := make([]byte, 48)
	if _, err := io.ReadFull(xof, buf); err != nil {
		return x, fmt.Errorf("hashtocurve: xof read: %w", err)
	}
	x.SetBytes(buf)
	return x, nil
}

// solveForY solves a*x^2 + y^2 = 1 + d*x^2*y^2 for y, returning the
// canonical root (the lexicographically smaller of the two), or false if x
// is not on the curve.
func solveForY(curve *twistededwards.CurveParams, x *fr.Element) (fr.Element, bool) {
	var xx, num, den, yy, y fr.Element
	xx.Square(x)

	// y^2 = (1 - a*x^2) / (1 - d*x^2)
	num.Mul(&curve.A, &xx)
	one := fr.One()
	num.Sub(&one, &num)
	den.Mul(&curve.D, &xx)
	den.Sub(&one, &den)
	if den.IsZero() {
		return y, false
	}
	den.Inverse(&den)
	yy.Mul(&num, &den)

	if yy.Legendre() != 1 {
		return y, false
	}
	y.Sqrt(&yy)
	if y.LexicographicallyLargest() {
		y.Neg(&y)
	}
	return y, true
}

func isIdentity(p *twistededwards.PointAffine) bool {
	return p.X.IsZero() && p.Y.IsOne()
}
