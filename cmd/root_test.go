package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRunCommand returns a command with freshly bound run flags so tests do
// not see each other's overrides.
func newRunCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "run"}
	addRunFlags(c.Flags())
	require.NoError(t, c.Flags().Parse(args))
	return c
}

func TestRunScenario_TextSummary(t *testing.T) {
	// GIVEN the three-word scenario
	c := newRunCommand(t, "--config", writeScenario(t, wordScenario))
	var out bytes.Buffer

	// WHEN run with text output
	require.NoError(t, runScenario(context.Background(), c, &out))

	// THEN every unit is drawn once per step and labels are totaled
	got := out.String()
	assert.Contains(t, got, "=== Simulation Summary ===")
	assert.Contains(t, got, "Total Draws        : 12")
	assert.Contains(t, got, "IDs Issued         : 4")
	assert.Contains(t, got, "ala                : 6")
	assert.Contains(t, got, "rurka              : 3")
	assert.Contains(t, got, "=== Trace Summary ===")
}

func TestRunScenario_JSONReport(t *testing.T) {
	c := newRunCommand(t, "--config", writeScenario(t, wordScenario), "--output", "json")
	var out bytes.Buffer
	require.NoError(t, runScenario(context.Background(), c, &out))

	var rep report
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	assert.Equal(t, int64(7), rep.Seed)
	assert.Equal(t, int64(4), rep.Population)
	assert.Len(t, rep.Steps, 3)
	assert.Equal(t, int64(6), rep.LabelTotals["ala"])
	assert.Equal(t, int64(4), rep.Allocator.Issued)
	require.NotNil(t, rep.Trace)
	assert.Equal(t, 12, rep.Trace.TotalDraws)
	assert.Equal(t, 3.0, rep.Metrics["agentsim_steps_total"])
	assert.Equal(t, 4.0, rep.Metrics["agentsim_ids_issued_total"])
}

func TestRunScenario_FlagsOverrideScenario(t *testing.T) {
	c := newRunCommand(t, "--config", writeScenario(t, wordScenario),
		"--steps", "1", "--draws-per-step", "2", "--trace", "none")
	var out bytes.Buffer
	require.NoError(t, runScenario(context.Background(), c, &out))

	got := out.String()
	assert.Contains(t, got, "Steps              : 1")
	assert.Contains(t, got, "Total Draws        : 2")
	assert.NotContains(t, got, "=== Trace Summary ===")
}

func TestRunScenario_SameSeedSameOutput(t *testing.T) {
	path := writeScenario(t, wordScenario)
	run := func() string {
		c := newRunCommand(t, "--config", path, "--output", "json", "--draws-per-step", "3")
		var out bytes.Buffer
		require.NoError(t, runScenario(context.Background(), c, &out))
		return out.String()
	}
	assert.Equal(t, run(), run())
}

func TestRunScenario_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing config", nil, "--config is required"},
		{"bad workers", []string{"--workers", "0"}, "workers"},
		{"bad trace", []string{"--trace", "loud"}, "trace level"},
		{"bad output", []string{"--output", "xml"}, "unknown output format"},
	}
	path := writeScenario(t, wordScenario)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if tt.name != "missing config" {
				args = append([]string{"--config", path}, args...)
			}
			c := newRunCommand(t, args...)
			err := runScenario(context.Background(), c, &bytes.Buffer{})
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
