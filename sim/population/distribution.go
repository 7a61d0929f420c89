package population

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
)

// CountSampler draws initial bin counts. Zero is a valid draw: such items
// are skipped when pools are grouped.
type CountSampler interface {
	// Sample returns a count >= 0.
	Sample(rng *rand.Rand) int64
}

// GaussianSampler produces clamped Gaussian counts.
type GaussianSampler struct {
	mean, stdDev float64
	min, max     int64
}

func (s *GaussianSampler) Sample(rng *rand.Rand) int64 {
	if s.min == s.max {
		return s.min
	}
	val := rng.NormFloat64()*s.stdDev + s.mean
	clamped := math.Min(float64(s.max), math.Max(float64(s.min), val))
	return nonNegative(math.Round(clamped))
}

// ExponentialSampler produces exponentially-distributed counts.
type ExponentialSampler struct {
	mean float64
}

func (s *ExponentialSampler) Sample(rng *rand.Rand) int64 {
	return nonNegative(math.Round(rng.ExpFloat64() * s.mean))
}

// UniformSampler draws integers uniformly from [min, max].
type UniformSampler struct {
	min, max int64
}

func (s *UniformSampler) Sample(rng *rand.Rand) int64 {
	if s.max <= s.min {
		return max(s.min, 0)
	}
	return max(s.min+rng.Int63n(s.max-s.min+1), 0)
}

// EmpiricalSampler samples from an empirical distribution by inverse CDF.
type EmpiricalSampler struct {
	values []int64   // sorted counts
	cdf    []float64 // cumulative probabilities, same length as values
}

// NewEmpiricalSampler creates a sampler from a PMF (count → probability),
// normalizing probabilities that do not sum to 1.
func NewEmpiricalSampler(pmf map[int64]float64) *EmpiricalSampler {
	keys := make([]int64, 0, len(pmf))
	for k := range pmf {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	totalProb := 0.0
	for _, k := range keys {
		if pmf[k] > 0 {
			totalProb += pmf[k]
		}
	}

	values := make([]int64, 0, len(keys))
	cdf := make([]float64, 0, len(keys))
	cumulative := 0.0
	for _, k := range keys {
		p := pmf[k]
		if p <= 0 {
			continue
		}
		cumulative += p / totalProb
		values = append(values, k)
		cdf = append(cdf, cumulative)
	}
	if len(cdf) > 0 {
		cdf[len(cdf)-1] = 1.0
	}
	return &EmpiricalSampler{values: values, cdf: cdf}
}

func (s *EmpiricalSampler) Sample(rng *rand.Rand) int64 {
	if len(s.values) == 0 {
		return 0
	}
	idx := sort.SearchFloat64s(s.cdf, rng.Float64())
	if idx >= len(s.values) {
		idx = len(s.values) - 1
	}
	return max(s.values[idx], 0)
}

// ConstantSampler always returns the same count.
type ConstantSampler struct {
	value int64
}

func (s *ConstantSampler) Sample(_ *rand.Rand) int64 {
	return max(s.value, 0)
}

func nonNegative(v float64) int64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > math.MaxInt64/2 {
		return math.MaxInt64 / 2
	}
	return int64(v)
}

func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// NewCountSampler creates a CountSampler from a DistSpec.
func NewCountSampler(spec DistSpec) (CountSampler, error) {
	switch spec.Type {
	case "gaussian":
		if err := requireParam(spec.Params, "mean", "std_dev", "min", "max"); err != nil {
			return nil, err
		}
		if spec.Params["min"] > spec.Params["max"] {
			return nil, fmt.Errorf("gaussian min %v exceeds max %v", spec.Params["min"], spec.Params["max"])
		}
		return &GaussianSampler{
			mean:   spec.Params["mean"],
			stdDev: spec.Params["std_dev"],
			min:    int64(spec.Params["min"]),
			max:    int64(spec.Params["max"]),
		}, nil

	case "exponential":
		if err := requireParam(spec.Params, "mean"); err != nil {
			return nil, err
		}
		if spec.Params["mean"] <= 0 {
			return nil, fmt.Errorf("exponential mean must be positive, got %v", spec.Params["mean"])
		}
		return &ExponentialSampler{mean: spec.Params["mean"]}, nil

	case "uniform":
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		return &UniformSampler{min: int64(spec.Params["min"]), max: int64(spec.Params["max"])}, nil

	case "constant":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		return &ConstantSampler{value: int64(spec.Params["value"])}, nil

	case "empirical":
		if len(spec.Params) == 0 {
			return nil, fmt.Errorf("empirical distribution requires inline params")
		}
		pmf := make(map[int64]float64, len(spec.Params))
		for k, v := range spec.Params {
			count, err := strconv.ParseInt(k, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("empirical PMF key %q is not an integer: %w", k, err)
			}
			pmf[count] = v
		}
		return NewEmpiricalSampler(pmf), nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}
