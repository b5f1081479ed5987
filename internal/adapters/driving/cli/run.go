package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var runShowTraces bool

var runCmd = &cobra.Command{
	Use:   "run [signal-id]",
	Short: "Run the agent pipeline for a stored signal",
	Long: `Runs the researcher-analyst-critic pipeline for one stored signal.
The researcher summarises, the analyst scores, and the critic verifies the
result before anything is persisted. Each step leaves an execution trace.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runShowTraces, "traces", false, "print step traces after the run")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	signalID := args[0]
	ctx := cmd.Context()

	result, err := pipelineService.Run(ctx, signalID)
	if result != nil {
		cmd.Printf("Run %s: %s\n", result.RunID, result.Status)
		if result.IntelligenceID != "" {
			cmd.Printf("Intelligence: %s\n", result.IntelligenceID)
		}
		if runShowTraces {
			printTraces(cmd, result.RunID)
		}
	}
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}
	return nil
}

// printTraces lists a run's step traces. Best effort; a trace store
// failure does not fail the command.
func printTraces(cmd *cobra.Command, runID string) {
	if traceStore == nil {
		return
	}

	traces, err := traceStore.ListByRun(cmd.Context(), runID)
	if err != nil {
		cmd.Printf("(could not load traces: %v)\n", err)
		return
	}

	cmd.Println()
	cmd.Println("Traces:")
	for _, trace := range traces {
		cmd.Printf("  %-12s %-12s %-10s %6dms", trace.AgentName, trace.StepName, trace.Status, trace.LatencyMS)
		if trace.ErrorMessage != "" {
			cmd.Printf("  %s", trace.ErrorMessage)
		}
		cmd.Println()
		for _, call := range trace.ToolCalls {
			outcome := "ok"
			if !call.OK {
				outcome = "failed"
			}
			cmd.Printf("    tool %s via %s: %s\n", call.Tool, call.Transport, outcome)
		}
	}
}
