// Package elligator2 maps field elements to points on the bls12-377
// embedded twisted Edwards curve and back.
//
// Decode is total: every field element yields a valid curve point through
// the closed-form rational map, which is why higher layers use it to
// represent arbitrary-looking field data as group elements. Encode is the
// partial inverse: the forward map covers roughly half of all curve
// points, and the identity and 2-torsion points are excluded, so Encode
// reports ErrNotEncodable for points outside the image and callers must
// branch on it.
package elligator2

import (
	"errors"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-377/twistededwards"
)

// ErrNotEncodable reports a point with no preimage under the forward map.
// Expected and recoverable: callers retry with a different point.
var ErrNotEncodable = errors.New("point is not encodable")

// mapping holds the fixed curve-specific constants shared by both
// directions: the Montgomery form of the Edwards curve and a quadratic
// non-residue. Built once, never mutated.
type mapping struct {
	a, d fr.Element // Edwards coefficients
	ma   fr.Element // Montgomery A = 2(a+d)/(a-d)
	mb   fr.Element // Montgomery B = 4/(a-d)
	qnr  fr.Element // smallest quadratic non-residue
}

var (
	constantsOnce sync.Once
	constants     mapping
)

func getMapping() *mapping {
	constantsOnce.Do(func() {
		curve := twistededwards.GetEdwardsCurve()
		constants.a = curve.A
		constants.d = curve.D

		var den, num fr.Element
		den.Sub(&constants.a, &constants.d) // a - d
		num.Add(&constants.a, &constants.d)
		num.Double(&num)
		constants.ma.Div(&num, &den) // 2(a+d)/(a-d)

		var four fr.Element
		four.SetUint64(4)
		constants.mb.Div(&four, &den) // 4/(a-d)

		// Deterministic scan for the first non-residue.
		var candidate fr.Element
		for i := uint64(2); ; i++ {
			candidate.SetUint64(i)
			if candidate.Legendre() == -1 {
				constants.qnr = candidate
				break
			}
		}
	})
	return &constants
}

// Decode maps a field element to a curve point. It never fails: every
// element lands on some valid point. The map is not injective across
// elements differing only in sign or square-root branch, so callers must
// not assume Encode(Decode(e)) == e.
func Decode(e *fr.Element) twistededwards.PointAffine {
	m := getMapping()

	// t = qnr * e^2, with the t = -1 exception folded to 0 so the
	// denominator below never vanishes.
	var t, one fr.Element
	one.SetOne()
	t.Square(e)
	t.Mul(&t, &m.qnr)
	var check fr.Element
	check.Add(&t, &one)
	if check.IsZero() {
		t.SetZero()
	}

	// x1 = -A / (1 + t); the map picks x1 or -A - x1 depending on which
	// side of the curve equation is a square.
	var den, x1 fr.Element
	den.Add(&one, &t)
	x1.Neg(&m.ma)
	x1.Div(&x1, &den)

	g1 := m.montgomeryRHS(&x1)
	var u, v fr.Element
	if g1.Legendre() >= 0 {
		// Square branch: keep x1, take the lexicographically smaller root.
		u = x1
		v.Sqrt(&g1)
		if v.LexicographicallyLargest() {
			v.Neg(&v)
		}
	} else {
		// Non-square branch: exactly one of g(x1), g(-A-x1) is a square.
		u.Neg(&m.ma)
		u.Sub(&u, &x1)
		g2 := m.montgomeryRHS(&u)
		v.Sqrt(&g2)
		if !v.LexicographicallyLargest() {
			v.Neg(&v)
		}
	}

	return m.montgomeryToEdwards(&u, &v)
}

// Encode returns the unique field element whose Decode yields p, or
// ErrNotEncodable if p lies outside the forward map's image.
func Encode(p *twistededwards.PointAffine) (fr.Element, error) {
	m := getMapping()
	var zero fr.Element

	// The identity and the 2-torsion point are the x = 0 points; both are
	// excluded from the map's image.
	if p.X.IsZero() {
		return zero, fmt.Errorf("elligator2: %w: small-order point", ErrNotEncodable)
	}

	// Montgomery coordinates: u = (1+y)/(1-y), v = u/x.
	var one, u, v, num, den fr.Element
	one.SetOne()
	num.Add(&one, &p.Y)
	den.Sub(&one, &p.Y)
	if den.IsZero() {
		return zero, fmt.Errorf("elligator2: %w: small-order point", ErrNotEncodable)
	}
	u.Div(&num, &den)
	if u.IsZero() {
		return zero, fmt.Errorf("elligator2: %w: small-order point", ErrNotEncodable)
	}
	v.Div(&u, &p.X)

	// Invert both branches of the forward map: each yields a candidate
	// r^2; a candidate root is accepted only if Decode reproduces p, which
	// also enforces the per-branch sign convention.
	var candidates []fr.Element

	// u = x1 branch: r^2 = -(u+A) / (qnr*u).
	var rsq, tmp fr.Element
	tmp.Add(&u, &m.ma)
	tmp.Neg(&tmp)
	rsq.Mul(&m.qnr, &u)
	rsq.Div(&tmp, &rsq)
	candidates = appendRoots(candidates, &rsq)

	// u = -A - x1 branch: r^2 = -u / (qnr*(u+A)).
	var uA fr.Element
	uA.Add(&u, &m.ma)
	if !uA.IsZero() {
		tmp.Neg(&u)
		rsq.Mul(&m.qnr, &uA)
		rsq.Div(&tmp, &rsq)
		candidates = appendRoots(candidates, &rsq)
	}

	for i := range candidates {
		q := Decode(&candidates[i])
		if q.X.Equal(&p.X) && q.Y.Equal(&p.Y) {
			return candidates[i], nil
		}
	}
	return zero, fmt.Errorf("elligator2: %w", ErrNotEncodable)
}

// appendRoots appends the two square roots of rsq, smaller first, when rsq
// is a quadratic residue.
func appendRoots(dst []fr.Element, rsq *fr.Element) []fr.Element {
	if rsq.Legendre() < 0 {
		return dst
	}
	var r fr.Element
	r.Sqrt(rsq)
	if r.LexicographicallyLargest() {
		r.Neg(&r)
	}
	var neg fr.Element
	neg.Neg(&r)
	return append(dst, r, neg)
}

// montgomeryRHS evaluates (u^3 + A*u^2 + u) / B, the square of the
// Montgomery v-coordinate at u.
func (m *mapping) montgomeryRHS(u *fr.Element) fr.Element {
	var uu, out fr.Element
	uu.Square(u)
	out.Mul(&uu, u)        // u^3
	uu.Mul(&uu, &m.ma)     // A*u^2
	out.Add(&out, &uu)
	out.Add(&out, u)
	out.Div(&out, &m.mb)
	return out
}

// montgomeryToEdwards converts (u, v) on B*v^2 = u^3 + A*u^2 + u to the
// Edwards curve via x = u/v, y = (u-1)/(u+1). The exceptional denominators
// correspond to the 2-torsion and identity points.
func (m *mapping) montgomeryToEdwards(u, v *fr.Element) twistededwards.PointAffine {
	var p twistededwards.PointAffine
	var one fr.Element
	one.SetOne()

	if v.IsZero() {
		// Order-2 territory: (0,0) corresponds to the Edwards point (0,-1).
		p.X.SetZero()
		p.Y.Neg(&one)
		return p
	}
	var uPlus fr.Element
	uPlus.Add(u, &one)
	if uPlus.IsZero() {
		p.X.SetZero()
		p.Y.SetOne()
		return p
	}

	p.X.Div(u, v)
	var uMinus fr.Element
	uMinus.Sub(u, &one)
	p.Y.Div(&uMinus, &uPlus)
	return p
}
