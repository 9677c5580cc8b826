package params

import (
	"fmt"
	"sync"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/vocdoni/console377/internal/logger"
)

// Round counts and S-box exponent for the bls12-377 scalar field at the
// 128-bit security level. Alpha is the smallest odd exponent coprime to
// p-1, which makes x^alpha a permutation of the field.
const (
	fullRounds    = 8
	partialRounds = 31
	alpha         = 17
)

// SupportedRates lists the rates (message limbs per permutation) this
// parameter family is generated for. The state width is rate+1; the extra
// limb is the capacity/domain slot.
var SupportedRates = []int{2, 4, 8}

// Generate derives the parameter set for the given rate. The derivation is
// a pure function of (field, rate, round counts): round constants come from
// the Grain LFSR stream by rejection sampling, and the MDS matrix is the
// Cauchy matrix 1/(x_i + y_j) over two LFSR-sampled vectors. A Cauchy
// matrix over distinct x_i and distinct y_j with no vanishing denominator
// is invertible, which Generate verifies before returning.
func Generate(rate int) (*Parameters, error) {
	supported := false
	for _, r := range SupportedRates {
		if r == rate {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("params: %w: unsupported rate %d", ErrConfiguration, rate)
	}

	start := time.Now()
	t := rate + 1
	g := newGrainLFSR(fr.Bits, t, fullRounds, partialRounds)

	rounds := fullRounds + partialRounds
	arc := make([]fr.Element, rounds*t)
	for i := range arc {
		arc[i] = g.nextFieldRejection()
	}

	xs := make([]fr.Element, t)
	ys := make([]fr.Element, t)
	for i := range xs {
		xs[i] = g.nextFieldModP()
	}
	for i := range ys {
		ys[i] = g.nextFieldModP()
	}
	if err := checkCauchyInputs(xs, ys); err != nil {
		return nil, err
	}

	mds := make([]fr.Element, t*t)
	for i := 0; i < t; i++ {
		for j := 0; j < t; j++ {
			var sum fr.Element
			sum.Add(&xs[i], &ys[j])
			mds[i*t+j].Inverse(&sum)
		}
	}

	p := &Parameters{
		Rate:          rate,
		StateSize:     t,
		FullRounds:    fullRounds,
		PartialRounds: partialRounds,
		Alpha:         alpha,
		Arc:           arc,
		MDS:           mds,
	}
	if err := Validate(p); err != nil {
		return nil, err
	}

	log := logger.Logger()
	log.Debug().
		Int("rate", rate).
		Int("rounds", rounds).
		Dur("took", time.Since(start)).
		Msg("generated poseidon parameters")
	return p, nil
}

// checkCauchyInputs rejects sample vectors that would make the Cauchy
// matrix singular: repeated x_i, repeated y_j, or x_i + y_j = 0.
func checkCauchyInputs(xs, ys []fr.Element) error {
	for i := range xs {
		for j := range xs {
			if i != j && xs[i].Equal(&xs[j]) {
				return fmt.Errorf("params: %w: degenerate mds sample (repeated x)", ErrConfiguration)
			}
		}
	}
	for i := range ys {
		for j := range ys {
			if i != j && ys[i].Equal(&ys[j]) {
				return fmt.Errorf("params: %w: degenerate mds sample (repeated y)", ErrConfiguration)
			}
		}
	}
	for i := range xs {
		for j := range ys {
			var sum fr.Element
			sum.Add(&xs[i], &ys[j])
			if sum.IsZero() {
				return fmt.Errorf("params: %w: degenerate mds sample (zero denominator)", ErrConfiguration)
			}
		}
	}
	return nil
}

type cacheEntry struct {
	once sync.Once
	p    *Parameters
	err  error
}

var cache sync.Map // rate -> *cacheEntry

// Cached returns the shared parameter set for the given rate, generating it
// at most once per process even under concurrent first use.
func Cached(rate int) (*Parameters, error) {
	v, _ := cache.LoadOrStore(rate, &cacheEntry{})
	entry := v.(*cacheEntry)
	entry.once.Do(func() {
		entry.p, entry.err = Generate(rate)
	})
	return entry.p, entry.err
}
