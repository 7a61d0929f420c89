package trace

// TraceLevel controls the verbosity of draw tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelSteps captures one record per simulation step.
	TraceLevelSteps TraceLevel = "steps"
	// TraceLevelDraws captures step records plus every individual draw.
	TraceLevelDraws TraceLevel = "draws"
)

var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelSteps: true,
	TraceLevelDraws: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// SimulationTrace collects records during a run.
type SimulationTrace struct {
	Level TraceLevel
	Steps []StepRecord
	Draws []DrawRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(level TraceLevel) *SimulationTrace {
	if level == "" {
		level = TraceLevelNone
	}
	return &SimulationTrace{
		Level: level,
		Steps: make([]StepRecord, 0),
		Draws: make([]DrawRecord, 0),
	}
}

// Enabled reports whether anything is recorded.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Level != TraceLevelNone
}

// RecordDraw appends a draw record. Ignored below TraceLevelDraws.
func (st *SimulationTrace) RecordDraw(record DrawRecord) {
	if st == nil || st.Level != TraceLevelDraws {
		return
	}
	st.Draws = append(st.Draws, record)
}

// RecordStep appends a step record. Ignored at TraceLevelNone.
func (st *SimulationTrace) RecordStep(record StepRecord) {
	if !st.Enabled() {
		return
	}
	st.Steps = append(st.Steps, record)
}
