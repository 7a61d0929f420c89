package population

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaussianSampler_MeanMatchesParam(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s, err := NewCountSampler(DistSpec{
		Type:   "gaussian",
		Params: map[string]float64{"mean": 50, "std_dev": 10, "min": 0, "max": 200},
	})
	require.NoError(t, err)
	n := 10000
	var sum int64
	for i := 0; i < n; i++ {
		sum += s.Sample(rng)
	}
	mean := float64(sum) / float64(n)
	if math.Abs(mean-50)/50 > 0.05 {
		t.Errorf("gaussian mean = %.1f, want ≈ 50 (within 5%%)", mean)
	}
}

func TestGaussianSampler_ClampedToRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s, err := NewCountSampler(DistSpec{
		Type:   "gaussian",
		Params: map[string]float64{"mean": 5, "std_dev": 100, "min": 0, "max": 9},
	})
	require.NoError(t, err)
	for i := 0; i < 10000; i++ {
		v := s.Sample(rng)
		if v < 0 || v > 9 {
			t.Fatalf("sample %d: %d outside [0, 9]", i, v)
		}
	}
}

func TestExponentialSampler_MeanMatchesParam(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s, err := NewCountSampler(DistSpec{Type: "exponential", Params: map[string]float64{"mean": 100}})
	require.NoError(t, err)
	n := 10000
	var sum int64
	for i := 0; i < n; i++ {
		sum += s.Sample(rng)
	}
	mean := float64(sum) / float64(n)
	if math.Abs(mean-100)/100 > 0.05 {
		t.Errorf("exponential mean = %.1f, want ≈ 100 (within 5%%)", mean)
	}
}

func TestUniformSampler_InclusiveBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s, err := NewCountSampler(DistSpec{Type: "uniform", Params: map[string]float64{"min": 2, "max": 4}})
	require.NoError(t, err)
	seen := map[int64]bool{}
	for i := 0; i < 1000; i++ {
		seen[s.Sample(rng)] = true
	}
	assert.Equal(t, map[int64]bool{2: true, 3: true, 4: true}, seen)
}

func TestConstantSampler_ClampsNegative(t *testing.T) {
	s, err := NewCountSampler(DistSpec{Type: "constant", Params: map[string]float64{"value": -3}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.Sample(nil))
}

func TestEmpiricalSampler_OnlyDeclaredValues(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	s, err := NewCountSampler(DistSpec{Type: "empirical", Params: map[string]float64{"0": 1, "5": 2, "7": 0}})
	require.NoError(t, err)
	counts := map[int64]int{}
	for i := 0; i < 3000; i++ {
		counts[s.Sample(rng)]++
	}
	assert.Len(t, counts, 2)
	assert.InDelta(t, 2.0, float64(counts[5])/float64(counts[0]), 0.3)
}

func TestNewEmpiricalSampler_Empty(t *testing.T) {
	assert.Equal(t, int64(0), NewEmpiricalSampler(nil).Sample(rand.New(rand.NewSource(1))))
}

func TestNewCountSampler_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec DistSpec
	}{
		{"unknown type", DistSpec{Type: "zipf"}},
		{"gaussian missing params", DistSpec{Type: "gaussian", Params: map[string]float64{"mean": 1}}},
		{"gaussian min above max", DistSpec{Type: "gaussian", Params: map[string]float64{"mean": 1, "std_dev": 1, "min": 5, "max": 1}}},
		{"exponential non-positive mean", DistSpec{Type: "exponential", Params: map[string]float64{"mean": 0}}},
		{"empirical without params", DistSpec{Type: "empirical"}},
		{"empirical bad key", DistSpec{Type: "empirical", Params: map[string]float64{"x": 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCountSampler(tt.spec)
			assert.Error(t, err)
		})
	}
}
