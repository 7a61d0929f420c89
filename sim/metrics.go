package sim

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/inference-sim/agentsim/sim/ids"
)

const metricsNamespace = "agentsim"

// Metrics exposes engine counters to prometheus. Allocator figures are read
// on scrape from the allocator itself.
type Metrics struct {
	Steps     prometheus.Counter
	Draws     *prometheus.CounterVec // by pool: shape name or "all"
	Fallbacks prometheus.Counter     // shape pool empty, drew from the all-pool
	Chunks    prometheus.Counter
	Leaked    prometheus.Counter // ids dropped by a full free-list
}

// NewMetrics creates the engine metrics and registers them, together with
// allocator gauges for alloc, on reg.
func NewMetrics(reg prometheus.Registerer, alloc *ids.Allocator[int32]) *Metrics {
	m := &Metrics{
		Steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "steps_total",
			Help: "Simulation steps executed.",
		}),
		Draws: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "draws_total",
			Help: "Weighted draws, by pool.",
		}, []string{"pool"}),
		Fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "draw_fallbacks_total",
			Help: "Draws redirected to the all-pool because the shape pool was empty.",
		}),
		Chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "chunks_total",
			Help: "Chunks produced by per-step index builds.",
		}),
		Leaked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "ids_leaked_total",
			Help: "Entity ids dropped because the free-list was full.",
		}),
	}
	reg.MustRegister(m.Steps, m.Draws, m.Fallbacks, m.Chunks, m.Leaked)

	reg.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "ids_issued_total",
			Help: "Entity ids ever minted.",
		}, func() float64 { return float64(alloc.Stats().Issued) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "ids_recycled_total",
			Help: "Allocations served from the free-list.",
		}, func() float64 { return float64(alloc.Stats().Recycled) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace, Name: "free_list_length",
			Help: "Entity ids waiting on the free-list.",
		}, func() float64 { return float64(alloc.Stats().FreeLen) }),
	)
	return m
}
