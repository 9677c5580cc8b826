package elligator2

import (
	"errors"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-377/twistededwards"
)

func randomElement(t *testing.T) fr.Element {
	t.Helper()
	var e fr.Element
	if _, err := e.SetRandom(); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestDecodeTotalAndOnCurve(t *testing.T) {
	for i := 0; i < 256; i++ {
		e := randomElement(t)
		p := Decode(&e)
		if !p.IsOnCurve() {
			t.Fatalf("Decode(%s) landed off curve", e.String())
		}
	}
}

func TestDecodeDeterministic(t *testing.T) {
	e := randomElement(t)
	a := Decode(&e)
	b := Decode(&e)
	if !a.X.Equal(&b.X) || !a.Y.Equal(&b.Y) {
		t.Fatal("same element decoded to different points")
	}
}

func TestDecodeZero(t *testing.T) {
	var zero fr.Element
	p := Decode(&zero)
	if !p.IsOnCurve() {
		t.Fatal("Decode(0) landed off curve")
	}
	q := Decode(&zero)
	if !p.X.Equal(&q.X) || !p.Y.Equal(&q.Y) {
		t.Fatal("Decode(0) is not a fixed point of the map")
	}
}

func TestDecodeSignBranchesAgree(t *testing.T) {
	// e and -e square to the same t, so they must decode identically. Any
	// divergence means the branch selection leaks the input sign.
	for i := 0; i < 64; i++ {
		e := randomElement(t)
		var neg fr.Element
		neg.Neg(&e)
		p := Decode(&e)
		q := Decode(&neg)
		if !p.X.Equal(&q.X) || !p.Y.Equal(&q.Y) {
			t.Fatalf("Decode(%s) and Decode(-%s) disagree", e.String(), e.String())
		}
	}
}

func TestRoundTripThroughDecode(t *testing.T) {
	// Every point in Decode's image must encode back, and decoding the
	// encoding must reproduce the point exactly.
	for i := 0; i < 128; i++ {
		e := randomElement(t)
		p := Decode(&e)
		if p.X.IsZero() {
			// Small-order outputs are excluded from the image on purpose.
			if _, err := Encode(&p); !errors.Is(err, ErrNotEncodable) {
				t.Fatalf("small-order point encoded: %v", err)
			}
			continue
		}
		r, err := Encode(&p)
		if err != nil {
			t.Fatalf("Encode failed on an image point: %v", err)
		}
		q := Decode(&r)
		if !q.X.Equal(&p.X) || !q.Y.Equal(&p.Y) {
			t.Fatal("Decode(Encode(p)) != p")
		}
	}
}

func TestEncodeRejectsSmallOrderPoints(t *testing.T) {
	var identity twistededwards.PointAffine
	identity.X.SetZero()
	identity.Y.SetOne()
	if _, err := Encode(&identity); !errors.Is(err, ErrNotEncodable) {
		t.Fatalf("identity: got %v", err)
	}

	var torsion twistededwards.PointAffine
	var one fr.Element
	one.SetOne()
	torsion.X.SetZero()
	torsion.Y.Neg(&one)
	if _, err := Encode(&torsion); !errors.Is(err, ErrNotEncodable) {
		t.Fatalf("2-torsion point: got %v", err)
	}
}

func TestEncodeCoversAboutHalfTheGroup(t *testing.T) {
	// The forward map hits roughly half of the prime-order subgroup; over a
	// spread of subgroup points both outcomes must occur, and every success
	// must verify.
	curve := twistededwards.GetEdwardsCurve()
	encodable, rejected := 0, 0
	for i := 1; i <= 64; i++ {
		var p twistededwards.PointAffine
		p.ScalarMultiplication(&curve.Base, big.NewInt(int64(i)))

		r, err := Encode(&p)
		if err != nil {
			if !errors.Is(err, ErrNotEncodable) {
				t.Fatalf("multiple %d: unexpected error %v", i, err)
			}
			rejected++
			continue
		}
		encodable++
		q := Decode(&r)
		if !q.X.Equal(&p.X) || !q.Y.Equal(&p.Y) {
			t.Fatalf("multiple %d: encoding does not decode back", i)
		}
	}
	if encodable == 0 {
		t.Fatal("no subgroup point was encodable")
	}
	if rejected == 0 {
		t.Fatal("every subgroup point was encodable; image should be about half")
	}
}
