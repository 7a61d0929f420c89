package binpool

import (
	"fmt"
	"iter"
	"math"
	"math/rand"
	"slices"
)

// Weighted pairs a label with its initial count.
type Weighted[L comparable] struct {
	Label L
	Count int64
}

type poolConfig struct {
	shelfCapacity int
}

// PoolOption configures a BinPool.
type PoolOption func(*poolConfig)

// WithShelfCapacity sets the number of bins per shelf (default DefaultShelfCapacity).
func WithShelfCapacity(n int) PoolOption {
	return func(c *poolConfig) {
		c.shelfCapacity = n
	}
}

func buildConfig(opts []PoolOption) poolConfig {
	cfg := poolConfig{shelfCapacity: DefaultShelfCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// BinPool is the sampling surface over one shelf chain.
//
// Pools derived from a pool (SubPool, GroupPool, GroupByShape) share its bins:
// picking through any of them updates the totals of all.
type BinPool[L comparable] struct {
	arena *arena[L]
	shelf *Shelf[L]
	cfg   poolConfig
}

// NewBinPool creates an empty pool.
func NewBinPool[L comparable](opts ...PoolOption) *BinPool[L] {
	cfg := buildConfig(opts)
	a := newArena[L]()
	return &BinPool[L]{arena: a, shelf: newShelf(a, cfg.shelfCapacity), cfg: cfg}
}

// FromWeights creates a pool with one bin per entry, in order.
func FromWeights[L comparable](items []Weighted[L], opts ...PoolOption) *BinPool[L] {
	p := NewBinPool[L](opts...)
	for _, it := range items {
		p.AddBin(it.Label, it.Count)
	}
	return p
}

// derived returns an empty pool sharing p's arena.
func (p *BinPool[L]) derived() *BinPool[L] {
	return &BinPool[L]{arena: p.arena, shelf: newShelf(p.arena, p.cfg.shelfCapacity), cfg: p.cfg}
}

// AddBin creates a new bin owned by this pool's arena and appends it.
func (p *BinPool[L]) AddBin(label L, count int64) *Bin[L] {
	idx := p.arena.add(label, count)
	p.shelf.Add(idx)
	return p.arena.bins[idx]
}

// TotalCount returns the sum of counts over all bins in the pool.
func (p *BinPool[L]) TotalCount() int64 {
	return p.shelf.Total()
}

// Len returns the number of bins, including bins whose count reached zero.
func (p *BinPool[L]) Len() int {
	return p.shelf.Len()
}

// Shelf returns the head of the pool's shelf chain.
func (p *BinPool[L]) Shelf() *Shelf[L] {
	return p.shelf
}

// Sample maps fraction in [0,1) onto the pool's cumulative counts and
// returns the bin found there. The bin is not picked.
// Panics if the pool is empty or fraction is out of range.
func (p *BinPool[L]) Sample(fraction float64) *Bin[L] {
	if !(fraction >= 0 && fraction < 1) {
		panic(fmt.Sprintf("BinPool.Sample: fraction must be in [0,1), got %v", fraction))
	}
	total := p.shelf.Total()
	if total <= 0 {
		panic("BinPool.Sample: pool is empty")
	}
	offset := int64(math.Floor(fraction * float64(total)))
	if offset >= total {
		offset = total - 1
	}
	return p.shelf.Find(offset)
}

// SampleNth returns the bin whose cumulative range [before, before+count)
// contains n. Panics unless 0 <= n < TotalCount().
func (p *BinPool[L]) SampleNth(n int64) *Bin[L] {
	return p.shelf.Find(n)
}

// Draw samples a bin with rng and picks one unit from it.
// Returns false when the pool is empty.
func (p *BinPool[L]) Draw(rng *rand.Rand) (L, bool) {
	total := p.shelf.Total()
	if total <= 0 {
		var zero L
		return zero, false
	}
	return p.shelf.Find(rng.Int63n(total)).Pick(), true
}

// Bins yields the pool's bins in insertion order.
func (p *BinPool[L]) Bins() iter.Seq[*Bin[L]] {
	return func(yield func(*Bin[L]) bool) {
		p.shelf.each(yield)
	}
}

// Labels returns the label of every bin in insertion order.
func (p *BinPool[L]) Labels() []L {
	labels := make([]L, 0, p.Len())
	for b := range p.Bins() {
		labels = append(labels, b.Label())
	}
	return labels
}

// SubPool returns a pool over the bins of p carrying one of labels. The bins
// are shared, not copied, and keep p's order. Unknown labels select nothing.
func (p *BinPool[L]) SubPool(labels ...L) *BinPool[L] {
	var picked []int
	for _, l := range labels {
		for _, idx := range p.arena.byLabel[l] {
			if p.shelf.holds(idx) {
				picked = append(picked, idx)
			}
		}
	}
	// every chain lists its bins in arena order
	slices.Sort(picked)
	picked = slices.Compact(picked)

	sub := p.derived()
	for _, idx := range picked {
		sub.shelf.Add(idx)
	}
	return sub
}

// Release stops the pool from tracking its bins and empties it. Use it on
// short-lived derived pools; the bins and every other pool holding them are
// unaffected.
func (p *BinPool[L]) Release() {
	p.shelf.Detach()
}

// Reset restores every bin in the pool to its original count. Bins shared
// with other pools are reset for them too.
func (p *BinPool[L]) Reset() {
	p.shelf.Reset()
}

func (p *BinPool[L]) String() string {
	return fmt.Sprintf("BinPool{bins=%d, total=%d}", p.Len(), p.TotalCount())
}

func (p *BinPool[L]) eachIndex(fn func(idx int)) {
	for sh := p.shelf; sh != nil; sh = sh.next {
		for _, idx := range sh.slots {
			fn(idx)
		}
	}
}

// GroupPool partitions p's bins by keyOf(label) into pools that share the
// bins with p. Each group keeps the insertion order of p.
func GroupPool[K comparable, L comparable](p *BinPool[L], keyOf func(L) K) map[K]*BinPool[L] {
	groups := make(map[K]*BinPool[L])
	p.eachIndex(func(idx int) {
		key := keyOf(p.arena.bins[idx].label)
		g, ok := groups[key]
		if !ok {
			g = p.derived()
			groups[key] = g
		}
		g.shelf.Add(idx)
	})
	return groups
}
