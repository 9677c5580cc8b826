// Package bhp implements the BHP windowed hash and commitment over the
// bls12-377 embedded twisted Edwards curve.
//
// The input bit sequence is split into 3-bit chunks; each chunk selects a
// precomputed multiple of a per-window generator from a lookup table, and
// the selected points are accumulated by group addition. Chunks within a
// window share a generator doubled between slots; distinct windows use
// independent generators derived from the domain string, which is what
// makes the construction collision resistant rather than just additively
// homomorphic. Hashing projects the accumulated point to its x-coordinate;
// committing first adds a randomness multiple of an independent base.
package bhp

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/twistededwards"

	"github.com/vocdoni/console377/hashtocurve"
	"github.com/vocdoni/console377/internal/logger"
	"github.com/vocdoni/console377/internal/params"
)

const (
	// chunkSize is the bit width of one lookup. Two bits select the digit
	// magnitude, the third its sign.
	chunkSize  = 3
	lookupSize = 1 << chunkSize

	// maxCapacityBits bounds the table size a single instance may request.
	maxCapacityBits = 8192
)

var (
	// ErrInputTooLarge reports an input bit sequence exceeding the
	// instance's capacity. The caller can recover by choosing a larger
	// size class.
	ErrInputTooLarge = errors.New("input exceeds capacity")

	// ErrInvalidParameter reports an empty input or missing randomness.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// BHP is a hash/commit engine for one (domain, numWindows, windowSize)
// configuration. Tables are immutable after construction; instances are
// safe for concurrent use.
type BHP struct {
	domain     string
	numWindows int
	windowSize int

	// tables[w][slot][v] is the signed multiple of window w's generator
	// selected by the raw 3-bit chunk value v at the given slot.
	tables     [][][lookupSize]twistededwards.PointAffine
	randomBase twistededwards.PointAffine
	order      *big.Int
}

// Standard size classes. The capacity in bits is
// numWindows * windowSize * 3.

func New256(domain string) (*BHP, error) { return New(domain, 3, 57) } // 513 bits

func New512(domain string) (*BHP, error) { return New(domain, 6, 43) } // 774 bits

func New768(domain string) (*BHP, error) { return New(domain, 15, 23) } // 1035 bits

func New1024(domain string) (*BHP, error) { return New(domain, 8, 54) } // 1296 bits

// New builds the lookup tables for the given configuration. Generation is
// deterministic in (domain, numWindows, windowSize); identical
// configurations always regenerate identical tables.
func New(domain string, numWindows, windowSize int) (*BHP, error) {
	if domain == "" {
		return nil, fmt.Errorf("bhp: %w: empty domain", params.ErrConfiguration)
	}
	if numWindows < 1 || windowSize < 1 {
		return nil, fmt.Errorf("bhp: %w: %d windows of size %d", params.ErrConfiguration, numWindows, windowSize)
	}
	if numWindows*windowSize*chunkSize > maxCapacityBits {
		return nil, fmt.Errorf("bhp: %w: capacity %d bits exceeds %d", params.ErrConfiguration, numWindows*windowSize*chunkSize, maxCapacityBits)
	}

	start := time.Now()
	curve := twistededwards.GetEdwardsCurve()

	b := &BHP{
		domain:     domain,
		numWindows: numWindows,
		windowSize: windowSize,
		tables:     make([][][lookupSize]twistededwards.PointAffine, numWindows),
		order:      new(big.Int).Set(&curve.Order),
	}

	for w := 0; w < numWindows; w++ {
		generator, err := hashtocurve.MapToGroup(fmt.Sprintf("%s at %d", domain, w))
		if err != nil {
			return nil, err
		}
		b.tables[w] = buildWindowTable(generator, windowSize)
	}

	randomBase, err := hashtocurve.MapToGroup(fmt.Sprintf("%s for random base", domain))
	if err != nil {
		return nil, err
	}
	b.randomBase = randomBase

	log := logger.Logger()
	log.Debug().
		Str("domain", domain).
		Int("windows", numWindows).
		Int("windowSize", windowSize).
		Dur("took", time.Since(start)).
		Msg("generated bhp tables")
	return b, nil
}

// buildWindowTable precomputes the eight signed multiples of the slot base
// for every slot of one window. The raw chunk value v = b0 + 2*b1 + 4*b2
// selects the digit d = 1 + b0 + 2*b1, negated when b2 is set, so entries
// 0..3 hold 1g..4g and entries 4..7 their negations. Slot bases are spaced
// by four doublings so digit contributions never overlap.
func buildWindowTable(generator twistededwards.PointAffine, windowSize int) [][lookupSize]twistededwards.PointAffine {
	table := make([][lookupSize]twistededwards.PointAffine, windowSize)
	base := generator
	for slot := 0; slot < windowSize; slot++ {
		var acc twistededwards.PointAffine
		acc.Set(&base)
		for v := 0; v < lookupSize/2; v++ {
			table[slot][v].Set(&acc)
			table[slot][v+lookupSize/2].Neg(&acc)
			acc.Add(&acc, &base)
		}
		for i := 0; i < chunkSize+1; i++ {
			base.Double(&base)
		}
	}
	return table
}

// Capacity returns the maximum input length in bits.
func (b *BHP) Capacity() int {
	return b.numWindows * b.windowSize * chunkSize
}

// Domain returns the configured domain string.
func (b *BHP) Domain() string {
	return b.domain
}

type cacheEntry struct {
	once sync.Once
	b    *BHP
	err  error
}

var instances sync.Map

// Cached returns the shared engine for the configuration, building its
// tables at most once per process even under concurrent first use.
func Cached(domain string, numWindows, windowSize int) (*BHP, error) {
	key := struct {
		domain                 string
		numWindows, windowSize int
	}{domain, numWindows, windowSize}
	v, _ := instances.LoadOrStore(key, &cacheEntry{})
	entry := v.(*cacheEntry)
	entry.once.Do(func() {
		entry.b, entry.err = New(domain, numWindows, windowSize)
	})
	return entry.b, entry.err
}
