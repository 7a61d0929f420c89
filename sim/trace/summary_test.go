package trace

import "testing"

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceLevelDraws)

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalSteps != 0 || summary.TotalDraws != 0 {
		t.Errorf("expected zero steps and draws, got %d/%d", summary.TotalSteps, summary.TotalDraws)
	}
	if summary.UniqueLabels != 0 || len(summary.LabelDistribution) != 0 {
		t.Error("expected no labels")
	}
	if summary.MeanChunksPerStep != 0 || summary.MaxChunkSize != 0 {
		t.Error("expected zero chunk statistics")
	}
}

func TestSummarize_Nil(t *testing.T) {
	if s := Summarize(nil); s.TotalDraws != 0 || s.LabelDistribution == nil {
		t.Error("nil trace must summarize to zero values with non-nil maps")
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN two steps and their draws
	st := NewSimulationTrace(TraceLevelDraws)
	st.RecordDraw(DrawRecord{Step: 0, Label: "wolf", Shape: "predator"})
	st.RecordDraw(DrawRecord{Step: 0, Label: "sheep", Shape: "prey"})
	st.RecordStep(StepRecord{Step: 0, Draws: 2, Chunks: 2, MaxChunkSize: 1})
	st.RecordDraw(DrawRecord{Step: 1, Label: "wolf", Shape: "predator", Recycled: true})
	st.RecordStep(StepRecord{Step: 1, Draws: 1, Chunks: 1, MaxChunkSize: 1})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	if summary.TotalSteps != 2 {
		t.Errorf("expected 2 steps, got %d", summary.TotalSteps)
	}
	if summary.TotalDraws != 3 {
		t.Errorf("expected 3 draws, got %d", summary.TotalDraws)
	}
	if summary.RecycledDraws != 1 {
		t.Errorf("expected 1 recycled draw, got %d", summary.RecycledDraws)
	}
	if summary.UniqueLabels != 2 {
		t.Errorf("expected 2 unique labels, got %d", summary.UniqueLabels)
	}
	if summary.LabelDistribution["wolf"] != 2 {
		t.Errorf("expected wolf count 2, got %d", summary.LabelDistribution["wolf"])
	}
	if summary.ShapeDistribution["prey"] != 1 {
		t.Errorf("expected prey count 1, got %d", summary.ShapeDistribution["prey"])
	}
	if summary.MeanChunksPerStep != 1.5 {
		t.Errorf("expected mean chunks 1.5, got %.2f", summary.MeanChunksPerStep)
	}
}

func TestSummarize_DrawsWithoutSteps_CountsDraws(t *testing.T) {
	st := NewSimulationTrace(TraceLevelDraws)
	st.RecordDraw(DrawRecord{Label: "a"})
	st.RecordDraw(DrawRecord{Label: "a"})
	if got := Summarize(st).TotalDraws; got != 2 {
		t.Errorf("expected 2 draws, got %d", got)
	}
}
