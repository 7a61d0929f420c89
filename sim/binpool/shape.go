package binpool

// BinPoolsByShape holds one pool over every item plus one pool per shape.
// Shape pools reference the same bins as All, so an item tagged with several
// shapes is one bin visible from several pools.
type BinPoolsByShape[S comparable, L comparable] struct {
	All     *BinPool[L]
	grouped map[S]*BinPool[L]
	shapes  []S
}

// GroupByShape builds a bin per item with countOf(item) > 0 and files it under
// every shape shapesOf(item) yields. Items with a non-positive count are
// skipped and appear in no pool.
func GroupByShape[S comparable, L comparable](
	items []L,
	countOf func(L) int64,
	shapesOf func(L) []S,
	opts ...PoolOption,
) *BinPoolsByShape[S, L] {
	all := NewBinPool[L](opts...)
	members := make(map[S][]int)
	var order []S

	for _, item := range items {
		count := countOf(item)
		if count <= 0 {
			continue
		}
		idx := all.arena.add(item, count)
		all.shelf.Add(idx)

		seen := make(map[S]struct{})
		for _, s := range shapesOf(item) {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			if _, ok := members[s]; !ok {
				order = append(order, s)
			}
			members[s] = append(members[s], idx)
		}
	}

	byShape := make(map[S]*BinPool[L], len(members))
	for _, s := range order {
		pool := all.derived()
		for _, idx := range members[s] {
			pool.shelf.Add(idx)
		}
		byShape[s] = pool
	}
	return &BinPoolsByShape[S, L]{All: all, grouped: byShape, shapes: order}
}

// Pool returns the pool for shape s.
func (g *BinPoolsByShape[S, L]) Pool(s S) (*BinPool[L], bool) {
	p, ok := g.grouped[s]
	return p, ok
}

// Shapes returns every shape seen, in first-seen order.
func (g *BinPoolsByShape[S, L]) Shapes() []S {
	out := make([]S, len(g.shapes))
	copy(out, g.shapes)
	return out
}

// Reset restores every bin to its original count. Shape pools share bins
// with All, so one pass over All covers them.
func (g *BinPoolsByShape[S, L]) Reset() {
	g.All.Reset()
}
