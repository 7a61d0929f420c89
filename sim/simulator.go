package sim

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inference-sim/agentsim/sim/binpool"
	"github.com/inference-sim/agentsim/sim/chunk"
	"github.com/inference-sim/agentsim/sim/ids"
	"github.com/inference-sim/agentsim/sim/population"
	"github.com/inference-sim/agentsim/sim/trace"
)

// allPool names draws taken from the pool of every item.
const allPool = "all"

// draw is one sampled outcome bound to the entity id it was issued.
type draw struct {
	id       int32
	label    string
	shape    string
	recycled bool
}

// StepResult summarizes one step.
type StepResult struct {
	Step         int              `json:"step"`
	Draws        int              `json:"draws"`
	Chunks       int              `json:"chunks"`
	MaxChunkSize int              `json:"max_chunk_size"`
	DistinctIDs  uint64           `json:"distinct_ids"`
	LabelCounts  map[string]int64 `json:"label_counts"` // label → ids in its chunk
}

// Result summarizes a run.
type Result struct {
	Steps       []StepResult
	LabelTotals map[string]int64
	Allocator   ids.AllocatorStats
	Trace       *trace.SimulationTrace
}

// Simulator runs sampling steps over a population.
//
// Each step refills the pools, draws DrawsPerStep labels on the calling
// goroutine, binds each draw to an entity id, records (id, label) pairs into
// a chunk builder from Workers goroutines, iterates the built index in
// parallel and finally frees every id for the next step.
type Simulator struct {
	cfg     SimConfig
	pools   *binpool.BinPoolsByShape[string, string]
	shapes  []string
	rng     *PartitionedRNG
	alloc   *ids.Allocator[int32]
	trace   *trace.SimulationTrace
	metrics *Metrics

	labelTotals map[string]int64
}

// NewSimulator groups items by shape and prepares the engine. reg receives
// the engine metrics; pass prometheus.NewRegistry() when nothing scrapes them.
func NewSimulator(cfg SimConfig, items []population.Item, reg prometheus.Registerer) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	byLabel := make(map[string]population.Item, len(items))
	labels := make([]string, 0, len(items))
	for _, it := range items {
		if _, dup := byLabel[it.Label]; dup {
			return nil, fmt.Errorf("duplicate item label %q", it.Label)
		}
		byLabel[it.Label] = it
		labels = append(labels, it.Label)
	}

	pools := binpool.GroupByShape(labels,
		func(l string) int64 { return byLabel[l].Count },
		func(l string) []string { return byLabel[l].Shapes },
		binpool.WithShelfCapacity(cfg.ShelfCapacity))

	alloc := ids.NewAllocator[int32](cfg.FreeListCapacity)
	s := &Simulator{
		cfg:         cfg,
		pools:       pools,
		shapes:      pools.Shapes(),
		rng:         NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
		alloc:       alloc,
		trace:       trace.NewSimulationTrace(cfg.TraceLevel),
		metrics:     NewMetrics(reg, alloc),
		labelTotals: make(map[string]int64),
	}
	logrus.Debugf("simulator: %d bins, %d shapes, total weight %d",
		pools.All.Len(), len(s.shapes), pools.All.TotalCount())
	return s, nil
}

// Pools returns the shape-grouped pools the simulator samples from.
func (s *Simulator) Pools() *binpool.BinPoolsByShape[string, string] {
	return s.pools
}

// Run executes every configured step.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	res := &Result{LabelTotals: s.labelTotals, Trace: s.trace}
	for step := 0; step < s.cfg.Steps; step++ {
		sr, err := s.Step(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}
		res.Steps = append(res.Steps, sr)
	}
	res.Allocator = s.alloc.Stats()
	return res, nil
}

// Step executes one step.
func (s *Simulator) Step(ctx context.Context, step int) (StepResult, error) {
	s.pools.Reset()

	draws := s.sample(step)

	idx, err := s.record(ctx, draws)
	if err != nil {
		return StepResult{}, err
	}

	sr := StepResult{Step: step, Draws: len(draws), LabelCounts: make(map[string]int64)}
	var mu sync.Mutex
	parts := idx.Partition(s.cfg.MaxChunkSize)
	err = idx.ForEachParallel(ctx, parts, s.cfg.Workers, func(_ context.Context, c chunk.Chunk, members []int32) error {
		mu.Lock()
		sr.LabelCounts[c.Label] += int64(len(members))
		mu.Unlock()
		return nil
	})
	if err != nil {
		return StepResult{}, err
	}

	for _, c := range idx.Chunks() {
		sr.Chunks++
		sr.MaxChunkSize = max(sr.MaxChunkSize, c.ApproximateSize())
		s.labelTotals[c.Label] += int64(c.Len)
	}
	sr.DistinctIDs = idx.AllMembers().GetCardinality()
	s.metrics.Chunks.Add(float64(sr.Chunks))

	s.release(draws)
	s.metrics.Steps.Inc()
	s.trace.RecordStep(trace.StepRecord{
		Step:         step,
		Draws:        sr.Draws,
		Chunks:       sr.Chunks,
		MaxChunkSize: sr.MaxChunkSize,
		DistinctIDs:  sr.DistinctIDs,
		PoolTotal:    s.pools.All.TotalCount(),
	})
	logrus.Debugf("step %d: %d draws into %d chunks (%d distinct ids)", step, sr.Draws, sr.Chunks, sr.DistinctIDs)
	return sr, nil
}

// sample draws up to DrawsPerStep labels. Shape pools are visited round-robin
// in a freshly permuted order; an empty shape pool falls back to the
// all-pool, and drawing stops once the all-pool is empty.
func (s *Simulator) sample(step int) []draw {
	rng := s.rng.ForSubsystem(SubsystemSampling)
	order := s.shapeOrder()
	draws := make([]draw, 0, s.cfg.DrawsPerStep)

	for i := 0; i < s.cfg.DrawsPerStep; i++ {
		shape, pool := allPool, s.pools.All
		if len(order) > 0 {
			shape = s.shapes[order[i%len(order)]]
			p, _ := s.pools.Pool(shape)
			if p.TotalCount() > 0 {
				pool = p
			} else {
				shape = allPool
				s.metrics.Fallbacks.Inc()
			}
		}
		label, ok := pool.Draw(rng)
		if !ok {
			logrus.Debugf("step %d: population exhausted after %d draws", step, i)
			break
		}

		before := s.alloc.Count()
		id := s.alloc.Allocate()
		d := draw{id: id, label: label, shape: shape, recycled: s.alloc.Count() == before}
		draws = append(draws, d)
		s.metrics.Draws.WithLabelValues(shape).Inc()

		traced := shape
		if traced == allPool {
			traced = ""
		}
		s.trace.RecordDraw(trace.DrawRecord{
			Step: step, Seq: i, Shape: traced, Label: label, EntityID: id, Recycled: d.recycled,
		})
	}
	return draws
}

// shapeOrder returns shape indices in a permuted order for this step.
func (s *Simulator) shapeOrder() []int {
	if len(s.shapes) == 0 {
		return nil
	}
	return s.permute(len(s.shapes))
}

// permute returns [0,n) in permutation order; ranges below 2 stay in order.
func (s *Simulator) permute(n int) []int {
	if n < 2 {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	p, err := NewPermutation(s.rng.ForSubsystem(SubsystemPermutation), n)
	if err != nil {
		panic(err)
	}
	out := make([]int, 0, n)
	for v := range p.Values() {
		out = append(out, v)
	}
	return out
}

// record fans draws out to Workers goroutines in a permuted order and builds
// the chunked index once every writer finished.
func (s *Simulator) record(ctx context.Context, draws []draw) (*chunk.Index, error) {
	b := chunk.NewBuilder()
	order := s.permute(len(draws))
	workers := min(s.cfg.Workers, max(len(order), 1))
	per := (len(order) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo, hi := w*per, min((w+1)*per, len(order))
		if lo >= hi {
			break
		}
		g.Go(func() error {
			for _, i := range order[lo:hi] {
				if err := gctx.Err(); err != nil {
					return err
				}
				b.Add(draws[i].id, draws[i].label)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// release frees every id issued this step.
func (s *Simulator) release(draws []draw) {
	leaked := 0
	for _, d := range draws {
		if !s.alloc.Free(d.id) {
			leaked++
		}
	}
	if leaked > 0 {
		s.metrics.Leaked.Add(float64(leaked))
		logrus.Warnf("free-list full: leaked %d entity ids (capacity %d)", leaked, s.cfg.FreeListCapacity)
	}
}

// SortedLabels returns the labels of m in lexicographic order.
func SortedLabels(m map[string]int64) []string {
	labels := make([]string, 0, len(m))
	for l := range m {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}
