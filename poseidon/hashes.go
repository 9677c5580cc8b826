package poseidon

import "sync"

// New2, New4 and New8 instantiate the standard rate classes. Rate 2 suits
// pairwise compression (Merkle nodes), rate 4 short records, rate 8 wide
// records.

func New2(domain string) (*Poseidon, error) { return New(domain, 2) }

func New4(domain string) (*Poseidon, error) { return New(domain, 4) }

func New8(domain string) (*Poseidon, error) { return New(domain, 8) }

type cacheEntry struct {
	once sync.Once
	p    *Poseidon
	err  error
}

var instances sync.Map // domain|rate -> *cacheEntry

// Cached returns the shared engine for (domain, rate), constructing it at
// most once per process even under concurrent first use.
func Cached(domain string, rate int) (*Poseidon, error) {
	key := struct {
		domain string
		rate   int
	}{domain, rate}
	v, _ := instances.LoadOrStore(key, &cacheEntry{})
	entry := v.(*cacheEntry)
	entry.once.Do(func() {
		entry.p, entry.err = New(domain, rate)
	})
	return entry.p, entry.err
}
