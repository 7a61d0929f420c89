package sim

import (
	"fmt"
	"iter"
	"math/rand"
)

// maxStepCandidates bounds how many coprime step candidates are examined.
const maxStepCandidates = 1024

// Permutation visits every integer in [0,n) exactly once in a seeded,
// unpredictable order using O(1) memory: start at a random offset and keep
// adding a step coprime with n, so the additive sequence covers every
// residue before repeating. Not restartable.
type Permutation struct {
	n       int
	step    int
	running int
	emitted int
}

// NewPermutation builds a permutation of [0,n). Returns an error if n < 2.
func NewPermutation(rng *rand.Rand, n int) (*Permutation, error) {
	if n < 2 {
		return nil, fmt.Errorf("permutation range must be >= 2, got %d", n)
	}
	return &Permutation{
		n:       n,
		step:    pickStep(rng, n),
		running: rng.Intn(n),
	}, nil
}

// pickStep draws a step coprime with n uniformly among the candidates seen in
// [n/2, n), scanning cyclically from a random candidate and stopping after
// maxStepCandidates coprimes.
func pickStep(rng *rand.Rand, n int) int {
	lo := n / 2
	if lo < 1 {
		lo = 1
	}
	span := n - lo
	start := rng.Intn(span)

	chosen, seen := n-1, 0
	for i := 0; i < span && seen < maxStepCandidates; i++ {
		c := lo + (start+i)%span
		if gcd(c, n) != 1 {
			continue
		}
		seen++
		if rng.Intn(seen) == 0 {
			chosen = c
		}
	}
	return chosen
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Next returns the next value. Returns false once all n values were emitted.
func (p *Permutation) Next() (int, bool) {
	if p.emitted == p.n {
		return 0, false
	}
	v := p.running
	p.running = (p.running + p.step) % p.n
	p.emitted++
	return v, true
}

// Len returns the size of the permuted range.
func (p *Permutation) Len() int {
	return p.n
}

// Remaining returns how many values Next will still produce.
func (p *Permutation) Remaining() int {
	return p.n - p.emitted
}

// Values drains the permutation.
func (p *Permutation) Values() iter.Seq[int] {
	return func(yield func(int) bool) {
		for {
			v, ok := p.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}
