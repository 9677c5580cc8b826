package poseidon

import (
	"errors"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-377/twistededwards"

	"github.com/vocdoni/console377/internal/params"
)

const testDomain = "console377.poseidon.test"

func elements(vs ...uint64) []fr.Element {
	out := make([]fr.Element, len(vs))
	for i, v := range vs {
		out[i].SetUint64(v)
	}
	return out
}

func TestHashDeterministic(t *testing.T) {
	p, err := New(testDomain, 4)
	if err != nil {
		t.Fatal(err)
	}
	inputs := elements(1, 2, 3)
	a, err := p.Hash(inputs)
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Hash(inputs)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(&b) {
		t.Fatal("same input hashed to different digests")
	}
}

func TestHashZeroInputFixedAcrossInstances(t *testing.T) {
	// The single-element input 0 with a fixed domain must reproduce the
	// same digest on independently constructed engines.
	p1, err := New(testDomain, 2)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := New(testDomain, 2)
	if err != nil {
		t.Fatal(err)
	}
	in := elements(0)
	a, err := p1.Hash(in)
	if err != nil {
		t.Fatal(err)
	}
	b, err := p2.Hash(in)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(&b) {
		t.Fatal("digest of [0] not reproducible")
	}
	if a.IsZero() {
		t.Fatal("digest of [0] is zero; permutation did not mix")
	}
}

func TestDomainSeparation(t *testing.T) {
	p1, err := New("domain one", 4)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := New("domain two", 4)
	if err != nil {
		t.Fatal(err)
	}
	in := elements(7, 8)
	a, err := p1.Hash(in)
	if err != nil {
		t.Fatal(err)
	}
	b, err := p2.Hash(in)
	if err != nil {
		t.Fatal(err)
	}
	if a.Equal(&b) {
		t.Fatal("distinct domains produced identical digests")
	}
}

func TestLengthPaddingInjective(t *testing.T) {
	// A shorter input must not collide with a longer input sharing its
	// prefix, even though the final rate block is zero padded.
	p, err := New(testDomain, 4)
	if err != nil {
		t.Fatal(err)
	}
	short, err := p.Hash(elements(5))
	if err != nil {
		t.Fatal(err)
	}
	long, err := p.Hash(elements(5, 0))
	if err != nil {
		t.Fatal(err)
	}
	if short.Equal(&long) {
		t.Fatal("zero-extended input collided with its prefix")
	}
}

func TestHashManyWidths(t *testing.T) {
	p, err := New(testDomain, 2)
	if err != nil {
		t.Fatal(err)
	}
	in := elements(1, 2, 3, 4, 5)
	out, err := p.HashMany(in, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 5 {
		t.Fatalf("expected 5 outputs, got %d", len(out))
	}
	// The first output must agree with the single-output hash.
	single, err := p.Hash(in)
	if err != nil {
		t.Fatal(err)
	}
	if !single.Equal(&out[0]) {
		t.Fatal("Hash and HashMany disagree on the first output")
	}
	// Outputs must not repeat within one squeeze.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[i].Equal(&out[j]) {
				t.Fatalf("outputs %d and %d identical", i, j)
			}
		}
	}
}

func TestHashErrors(t *testing.T) {
	p, err := New(testDomain, 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Hash(nil); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("empty input: got %v", err)
	}
	if _, err := p.HashMany(elements(1), 0); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("zero outputs: got %v", err)
	}
	if _, err := p.HashMany(elements(1), MaxOutputs+1); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("oversized squeeze: got %v", err)
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(testDomain, 3); !errors.Is(err, params.ErrConfiguration) {
		t.Fatalf("unsupported rate: got %v", err)
	}
	long := make([]byte, fr.Bytes)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := New(string(long), 2); !errors.Is(err, params.ErrConfiguration) {
		t.Fatalf("oversized domain: got %v", err)
	}
}

func TestHashToScalarCanonical(t *testing.T) {
	p, err := New(testDomain, 4)
	if err != nil {
		t.Fatal(err)
	}
	order := twistededwards.GetEdwardsCurve().Order
	for i := uint64(0); i < 32; i++ {
		s, err := p.HashToScalar(elements(i, i+1))
		if err != nil {
			t.Fatal(err)
		}
		if s.Sign() < 0 || s.Cmp(&order) >= 0 {
			t.Fatalf("scalar %d out of range", i)
		}
	}
	// Distinct inputs should give distinct scalars.
	s1, err := p.HashToScalar(elements(1))
	if err != nil {
		t.Fatal(err)
	}
	s2, err := p.HashToScalar(elements(2))
	if err != nil {
		t.Fatal(err)
	}
	if s1.Cmp(s2) == 0 {
		t.Fatal("distinct inputs yielded the same scalar")
	}
}

func TestReferenceTrace(t *testing.T) {
	// The engine's permutation must match an independently coded round
	// loop over the same parameter set.
	p, err := params.Cached(2)
	if err != nil {
		t.Fatal(err)
	}
	perm := permutation{params: p}

	state := elements(0, 1, 2)
	want := elements(0, 1, 2)

	perm.permute(state)
	referencePermute(p, want)

	for i := range state {
		if !state[i].Equal(&want[i]) {
			t.Fatalf("state[%d] diverges from reference trace", i)
		}
	}
}

// referencePermute is a deliberately naive rendition of the round function
// used only to cross check the engine.
func referencePermute(p *params.Parameters, state []fr.Element) {
	t := p.StateSize
	half := p.FullRounds / 2
	alphaBig := big.NewInt(int64(p.Alpha))
	for round := 0; round < p.Rounds(); round++ {
		for i := 0; i < t; i++ {
			state[i].Add(&state[i], &p.Arc[round*t+i])
		}
		full := round < half || round >= half+p.PartialRounds
		if full {
			for i := 0; i < t; i++ {
				state[i].Exp(state[i], alphaBig)
			}
		} else {
			state[0].Exp(state[0], alphaBig)
		}
		mixed := make([]fr.Element, t)
		for i := 0; i < t; i++ {
			for j := 0; j < t; j++ {
				var term fr.Element
				term.Mul(&p.MDS[i*t+j], &state[j])
				mixed[i].Add(&mixed[i], &term)
			}
		}
		copy(state, mixed)
	}
}

func TestCachedReturnsSharedInstance(t *testing.T) {
	a, err := Cached(testDomain, 8)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Cached(testDomain, 8)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("Cached returned distinct engines for the same configuration")
	}
	direct, err := New(testDomain, 8)
	if err != nil {
		t.Fatal(err)
	}
	in := elements(9, 9, 9)
	x, err := a.Hash(in)
	if err != nil {
		t.Fatal(err)
	}
	y, err := direct.Hash(in)
	if err != nil {
		t.Fatal(err)
	}
	if !x.Equal(&y) {
		t.Fatal("cached and direct engines disagree")
	}
}

func TestFingerprintVariesWithRate(t *testing.T) {
	p2, err := New(testDomain, 2)
	if err != nil {
		t.Fatal(err)
	}
	p8, err := New(testDomain, 8)
	if err != nil {
		t.Fatal(err)
	}
	f2, err := p2.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	f8, err := p8.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	if f2 == f8 {
		t.Fatal("rate-2 and rate-8 parameter sets share a fingerprint")
	}
}
