package binpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByShape_ByStringLength(t *testing.T) {
	// GIVEN "ala"(a=2), "ola"(a=1), "rurka"(a=1) grouped by length
	counts := map[string]int64{"ala": 2, "ola": 1, "rurka": 1}
	items := []string{"ala", "ola", "rurka"}

	// WHEN grouped
	g := GroupByShape(items,
		func(s string) int64 { return counts[s] },
		func(s string) []int { return []int{len(s)} })

	// THEN totals are conserved per shape: pool weights are the a counts,
	// so shape 3 holds ala(2) + ola(1)
	assert.Equal(t, int64(4), g.All.TotalCount())
	three, ok := g.Pool(3)
	require.True(t, ok)
	assert.Equal(t, int64(3), three.TotalCount())
	assert.Equal(t, 2, three.Len())
	five, ok := g.Pool(5)
	require.True(t, ok)
	assert.Equal(t, int64(1), five.TotalCount())
	assert.Equal(t, []int{3, 5}, g.Shapes())
}

func TestGroupByShape_SkipsNonPositiveCounts(t *testing.T) {
	counts := map[string]int64{"a": 3, "b": 0, "c": -2, "d": 1}
	g := GroupByShape([]string{"a", "b", "c", "d"},
		func(s string) int64 { return counts[s] },
		func(s string) []string { return []string{s} })

	assert.Equal(t, int64(4), g.All.TotalCount())
	assert.Equal(t, 2, g.All.Len())
	_, ok := g.Pool("b")
	assert.False(t, ok)
	_, ok = g.Pool("c")
	assert.False(t, ok)
}

func TestGroupByShape_MultiShapeItemsShareBins(t *testing.T) {
	// GIVEN items tagged with overlapping shapes
	counts := map[string]int64{"wolf": 4, "sheep": 6, "dog": 2}
	tags := map[string][]string{
		"wolf":  {"animal", "predator"},
		"sheep": {"animal", "prey", "prey"},
		"dog":   {"animal", "predator"},
	}
	g := GroupByShape([]string{"wolf", "sheep", "dog"},
		func(s string) int64 { return counts[s] },
		func(s string) []string { return tags[s] },
		WithShelfCapacity(1))

	animal, _ := g.Pool("animal")
	predator, _ := g.Pool("predator")
	prey, _ := g.Pool("prey")
	require.Equal(t, int64(12), animal.TotalCount())
	require.Equal(t, int64(6), predator.TotalCount())
	require.Equal(t, int64(6), prey.TotalCount())
	require.Equal(t, 1, prey.Len(), "duplicate shape must not duplicate the bin")

	// WHEN a predator is picked
	predator.SampleNth(0).PickN(4) // wolf

	// THEN every pool holding that bin sees it, and the partition predator+prey
	// still sums to the all-pool total
	assert.Equal(t, int64(8), g.All.TotalCount())
	assert.Equal(t, int64(8), animal.TotalCount())
	assert.Equal(t, predator.TotalCount()+prey.TotalCount(), g.All.TotalCount())

	// AND a reset of the group refills every pool
	g.Reset()
	assert.Equal(t, int64(12), g.All.TotalCount())
	assert.Equal(t, int64(6), predator.TotalCount())
}

func TestGroupByShape_NoShapes(t *testing.T) {
	g := GroupByShape([]string{"x"},
		func(string) int64 { return 1 },
		func(string) []int { return nil })
	assert.Equal(t, int64(1), g.All.TotalCount())
	assert.Empty(t, g.Shapes())
}
