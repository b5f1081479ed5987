package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
)

var (
	intelSignal   string
	intelMinScore float64
	intelLimit    int
	intelJSON     bool
)

var intelCmd = &cobra.Command{
	Use:   "intel",
	Short: "Browse stored intelligence",
	Long:  `Query stored signal analyses by signal, score floor and recency.`,
	RunE:  runIntelList,
}

var intelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored analyses",
	RunE:  runIntelList,
}

var intelShowCmd = &cobra.Command{
	Use:   "show [intelligence-id]",
	Short: "Show one stored analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runIntelShow,
}

var intelSignalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "List recently ingested signals",
	RunE:  runIntelSignals,
}

func init() {
	intelCmd.PersistentFlags().IntVarP(&intelLimit, "limit", "n", 10, "maximum number of rows")
	intelCmd.PersistentFlags().BoolVar(&intelJSON, "json", false, "output as JSON")
	intelListCmd.Flags().StringVar(&intelSignal, "signal", "", "restrict to analyses of one signal ID")
	intelListCmd.Flags().Float64Var(&intelMinScore, "min-score", 0, "drop analyses scoring below this floor")
	intelCmd.AddCommand(intelListCmd)
	intelCmd.AddCommand(intelShowCmd)
	intelCmd.AddCommand(intelSignalsCmd)
	rootCmd.AddCommand(intelCmd)
}

func runIntelList(cmd *cobra.Command, _ []string) error {
	if intelStore == nil {
		return errors.New("intelligence store not configured")
	}

	rows, err := intelStore.Query(cmd.Context(), domain.IntelligenceFilter{
		SignalID: intelSignal,
		MinScore: intelMinScore,
		Limit:    intelLimit,
	})
	if err != nil {
		return fmt.Errorf("query intelligence: %w", err)
	}

	if intelJSON {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal rows: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(rows) == 0 {
		cmd.Println("No intelligence found.")
		return nil
	}

	for i := range rows {
		printIntelSummary(cmd, &rows[i])
	}
	return nil
}

func runIntelShow(cmd *cobra.Command, args []string) error {
	if intelStore == nil {
		return errors.New("intelligence store not configured")
	}

	intel, err := intelStore.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("load intelligence %s: %w", args[0], err)
	}

	if intelJSON {
		data, err := json.MarshalIndent(intel, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal intelligence: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Intelligence %s\n", intel.ID)
	cmd.Printf("  Signal:  %s\n", intel.SignalID)
	cmd.Printf("  Agent:   %s/%s\n", intel.AgentName, intel.AgentVersion)
	cmd.Printf("  Score:   %.1f\n", intel.Output.Score)
	cmd.Printf("  Risk:    %s\n", intel.Output.Risk)
	cmd.Printf("  Summary: %s\n", intel.Output.Summary)
	for _, point := range intel.Output.KeyPoints {
		cmd.Printf("    - %s\n", point)
	}
	if len(intel.Output.Tags) > 0 {
		cmd.Printf("  Tags:    %v\n", intel.Output.Tags)
	}
	for _, ev := range intel.Output.Evidence {
		cmd.Printf("  Evidence: %s\n", ev)
	}
	return nil
}

func runIntelSignals(cmd *cobra.Command, _ []string) error {
	if signalStore == nil {
		return errors.New("signal store not configured")
	}

	signals, err := signalStore.List(cmd.Context(), intelLimit)
	if err != nil {
		return fmt.Errorf("list signals: %w", err)
	}

	if intelJSON {
		data, err := json.MarshalIndent(signals, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal signals: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(signals) == 0 {
		cmd.Println("No signals found.")
		return nil
	}

	for i := range signals {
		cmd.Printf("  %s  [%s] %s (v%d)\n",
			signals[i].ID, signals[i].Source, signals[i].Title, signals[i].Version)
	}
	return nil
}

func printIntelSummary(cmd *cobra.Command, intel *domain.ProcessedIntelligence) {
	summary := intel.Output.Summary
	if len(summary) > 100 {
		summary = summary[:100] + "..."
	}
	cmd.Printf("  %s  score %.1f  risk %s\n", intel.ID, intel.Output.Score, intel.Output.Risk)
	cmd.Printf("      %s\n", summary)
}
