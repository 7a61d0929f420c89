package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/inference-sim/agentsim/sim"
	"github.com/inference-sim/agentsim/sim/ids"
	"github.com/inference-sim/agentsim/sim/population"
	"github.com/inference-sim/agentsim/sim/trace"
)

var (
	configPath   string // Scenario YAML
	seed         int64  // Master seed, overrides the scenario
	steps        int    // Steps to run, overrides the scenario
	drawsPerStep int    // Draws per step, overrides the scenario
	workers      int    // Worker goroutines, overrides the scenario
	traceLevel   string // Trace verbosity, overrides the scenario
	logLevel     string // Log verbosity level
	outputFormat string // "text" or "json"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "agentsim",
	Short: "Weighted sampling simulator over shape-grouped populations",
}

// runCmd executes a scenario
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a sampling scenario",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q", logLevel)
		}
		logrus.SetLevel(level)
		return runScenario(cmd.Context(), cmd, cmd.OutOrStdout())
	},
}

// report is the JSON form of a run.
type report struct {
	Seed        int64               `json:"seed"`
	Population  int64               `json:"population_total"`
	Labels      int                 `json:"labels"`
	Steps       []sim.StepResult    `json:"steps"`
	LabelTotals map[string]int64    `json:"label_totals"`
	Allocator   ids.AllocatorStats  `json:"allocator"`
	Trace       *trace.TraceSummary `json:"trace,omitempty"`
	Metrics     map[string]float64  `json:"metrics"`
}

// runScenario loads the scenario, applies flag overrides, runs it and writes
// the report to out.
func runScenario(ctx context.Context, cmd *cobra.Command, out io.Writer) error {
	if configPath == "" {
		return fmt.Errorf("--config is required")
	}
	sc, err := LoadScenario(configPath)
	if err != nil {
		return err
	}
	cfg, err := sc.Resolve(func(cfg *sim.SimConfig) {
		applyFlagOverrides(cmd.Flags(), cfg)
	})
	if err != nil {
		return err
	}

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
	items, err := population.Generate(sc.Population, rng.ForSubsystem(sim.SubsystemPopulation))
	if err != nil {
		return err
	}
	logrus.Infof("population: %d items, total weight %d", len(items), population.Total(items))

	reg := prometheus.NewRegistry()
	s, err := sim.NewSimulator(cfg, items, reg)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := s.Run(ctx)
	if err != nil {
		return err
	}

	metrics, err := gatherMetrics(reg)
	if err != nil {
		return err
	}

	switch outputFormat {
	case "json":
		rep := report{
			Seed:        cfg.Seed,
			Population:  population.Total(items),
			Labels:      len(items),
			Steps:       res.Steps,
			LabelTotals: res.LabelTotals,
			Allocator:   res.Allocator,
			Metrics:     metrics,
		}
		if res.Trace.Enabled() {
			rep.Trace = trace.Summarize(res.Trace)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "text", "":
		printSummary(out, cfg, items, res)
		return nil
	default:
		return fmt.Errorf("unknown output format %q; valid: text, json", outputFormat)
	}
}

// applyFlagOverrides copies every explicitly set run flag into cfg.
func applyFlagOverrides(flags *pflag.FlagSet, cfg *sim.SimConfig) {
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("draws-per-step") {
		cfg.DrawsPerStep = drawsPerStep
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("trace") {
		cfg.TraceLevel = trace.TraceLevel(traceLevel)
	}
}

func printSummary(out io.Writer, cfg sim.SimConfig, items []population.Item, res *sim.Result) {
	fmt.Fprintln(out, "=== Simulation Summary ===")
	fmt.Fprintf(out, "Seed               : %d\n", cfg.Seed)
	fmt.Fprintf(out, "Labels             : %d\n", len(items))
	fmt.Fprintf(out, "Population Total   : %d\n", population.Total(items))
	fmt.Fprintf(out, "Steps              : %d\n", len(res.Steps))

	draws, chunks, maxChunk := 0, 0, 0
	for _, sr := range res.Steps {
		draws += sr.Draws
		chunks += sr.Chunks
		maxChunk = max(maxChunk, sr.MaxChunkSize)
	}
	fmt.Fprintf(out, "Total Draws        : %d\n", draws)
	fmt.Fprintf(out, "Total Chunks       : %d\n", chunks)
	fmt.Fprintf(out, "Max Chunk Size     : %d\n", maxChunk)
	fmt.Fprintf(out, "IDs Issued         : %d\n", res.Allocator.Issued)
	fmt.Fprintf(out, "IDs Recycled       : %d\n", res.Allocator.Recycled)
	fmt.Fprintf(out, "IDs Leaked         : %d\n", res.Allocator.Dropped)

	fmt.Fprintln(out, "=== Label Totals ===")
	for _, l := range sim.SortedLabels(res.LabelTotals) {
		fmt.Fprintf(out, "%-18s : %d\n", l, res.LabelTotals[l])
	}

	if res.Trace.Enabled() {
		ts := trace.Summarize(res.Trace)
		fmt.Fprintln(out, "=== Trace Summary ===")
		fmt.Fprintf(out, "Traced Draws       : %d\n", ts.TotalDraws)
		fmt.Fprintf(out, "Recycled Draws     : %d\n", ts.RecycledDraws)
		fmt.Fprintf(out, "Unique Labels      : %d\n", ts.UniqueLabels)
		fmt.Fprintf(out, "Mean Chunks / Step : %.2f\n", ts.MeanChunksPerStep)
	}
}

// gatherMetrics flattens counters and gauges from reg into name{labels} keys.
func gatherMetrics(reg prometheus.Gatherer) (map[string]float64, error) {
	families, err := reg.Gather()
	if err != nil {
		return nil, fmt.Errorf("gathering metrics: %w", err)
	}
	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName() + labelSuffix(m.GetLabel())
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			}
		}
	}
	return out, nil
}

func labelSuffix(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addRunFlags binds the run flags to fs.
func addRunFlags(fs *pflag.FlagSet) {
	fs.StringVar(&configPath, "config", "", "Path to scenario YAML")
	fs.Int64Var(&seed, "seed", 42, "Master seed for every RNG subsystem")
	fs.IntVar(&steps, "steps", 10, "Number of steps to run")
	fs.IntVar(&drawsPerStep, "draws-per-step", 100, "Draws attempted per step")
	fs.IntVar(&workers, "workers", 4, "Goroutines recording and iterating chunks")
	fs.StringVar(&traceLevel, "trace", "none", "Trace verbosity: none, steps, draws")
	fs.StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	fs.StringVar(&outputFormat, "output", "text", "Output format: text, json")
}

func init() {
	addRunFlags(runCmd.Flags())

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
