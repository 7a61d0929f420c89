package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalSteps        int            `json:"total_steps"`
	TotalDraws        int            `json:"total_draws"`
	RecycledDraws     int            `json:"recycled_draws"`
	UniqueLabels      int            `json:"unique_labels"`
	MeanChunksPerStep float64        `json:"mean_chunks_per_step"`
	MaxChunkSize      int            `json:"max_chunk_size"`
	LabelDistribution map[string]int `json:"label_distribution"` // label → number of draws
	ShapeDistribution map[string]int `json:"shape_distribution"` // shape → number of draws ("" = all-pool)
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		LabelDistribution: make(map[string]int),
		ShapeDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalSteps = len(st.Steps)
	if len(st.Steps) > 0 {
		chunks := 0
		for _, s := range st.Steps {
			chunks += s.Chunks
			summary.TotalDraws += s.Draws
			if s.MaxChunkSize > summary.MaxChunkSize {
				summary.MaxChunkSize = s.MaxChunkSize
			}
		}
		summary.MeanChunksPerStep = float64(chunks) / float64(len(st.Steps))
	}

	for _, d := range st.Draws {
		summary.LabelDistribution[d.Label]++
		summary.ShapeDistribution[d.Shape]++
		if d.Recycled {
			summary.RecycledDraws++
		}
	}
	if len(st.Steps) == 0 {
		summary.TotalDraws = len(st.Draws)
	}
	summary.UniqueLabels = len(summary.LabelDistribution)

	return summary
}
