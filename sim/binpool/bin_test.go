package binpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type deltaRecorder struct {
	deltas []int64
}

func (r *deltaRecorder) OnCountDelta(delta int64) {
	r.deltas = append(r.deltas, delta)
}

func TestBin_Pick_FiresMinusOne(t *testing.T) {
	b := newBin("ala", 2)
	rec := &deltaRecorder{}
	b.Observe(rec)

	assert.Equal(t, "ala", b.Pick())
	assert.Equal(t, int64(1), b.Count())
	assert.Equal(t, []int64{-1}, rec.deltas)
}

func TestBin_Pick_Empty_Panics(t *testing.T) {
	b := newBin("ala", 0)
	assert.PanicsWithValue(t, "Bin.Pick: bin ala is empty", func() { b.Pick() })
}

func TestBin_PickN(t *testing.T) {
	tests := []struct {
		name      string
		count     int64
		n         int64
		wantPanic bool
		want      int64
	}{
		{"partial", 5, 3, false, 2},
		{"all", 5, 5, false, 0},
		{"zero is a no-op", 5, 0, false, 5},
		{"more than available", 5, 6, true, 5},
		{"negative", 5, -1, true, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBin("x", tt.count)
			if tt.wantPanic {
				assert.Panics(t, func() { b.PickN(tt.n) })
			} else {
				b.PickN(tt.n)
			}
			assert.Equal(t, tt.want, b.Count())
		})
	}
}

func TestBin_AddAndReset_FireDeltas(t *testing.T) {
	b := newBin("ola", 1)
	rec := &deltaRecorder{}
	b.Observe(rec)

	b.Add(4)
	b.PickN(2)
	b.Reset()
	b.Reset() // already at original: no event

	assert.Equal(t, int64(1), b.Count())
	assert.Equal(t, int64(1), b.OriginalCount())
	assert.Equal(t, []int64{4, -2, -2}, rec.deltas)
}

func TestBin_Add_Negative_Panics(t *testing.T) {
	b := newBin("x", 1)
	assert.Panics(t, func() { b.Add(-2) })
}

func TestBin_Unobserve(t *testing.T) {
	b := newBin("x", 3)
	a, c := &deltaRecorder{}, &deltaRecorder{}
	b.Observe(a)
	b.Observe(c)
	b.Unobserve(a)
	b.Unobserve(&deltaRecorder{}) // unknown observer: no-op

	b.Pick()
	assert.Empty(t, a.deltas)
	assert.Equal(t, []int64{-1}, c.deltas)
}
