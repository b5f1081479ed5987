package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
)

var (
	recommendLimit  int
	recommendSignal string
	recommendJSON   bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [query]",
	Short: "Rank stored intelligence against a query",
	Long: `Ranks stored intelligence against a free-text query or a seed signal.
Scores blend semantic similarity with recency and stored feedback; when no
embedding provider is configured, ranking degrades to metadata only.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", 0, "maximum number of results")
	recommendCmd.Flags().StringVar(&recommendSignal, "signal", "", "seed the query from a stored signal ID")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	if recommendService == nil {
		return errors.New("recommend service not configured")
	}

	query := domain.RecommendationQuery{
		SignalID: recommendSignal,
		Limit:    recommendLimit,
	}
	if len(args) > 0 {
		query.Text = args[0]
	}
	if query.Text == "" && query.SignalID == "" {
		return errors.New("provide a query or --signal")
	}

	recs, err := recommendService.Recommend(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("recommend failed: %w", err)
	}

	if recommendJSON {
		return outputRecommendJSON(cmd, recs)
	}
	return outputRecommendTable(cmd, recs)
}

func outputRecommendJSON(cmd *cobra.Command, recs []domain.Recommendation) error {
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputRecommendTable(cmd *cobra.Command, recs []domain.Recommendation) error {
	if len(recs) == 0 {
		cmd.Println("No recommendations found.")
		return nil
	}

	cmd.Println("Recommendations:")
	cmd.Println()
	for i := range recs {
		title := recs[i].Title
		if title == "" {
			title = recs[i].IntelligenceID
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, recs[i].Score)
		if recs[i].Reason != "" {
			cmd.Printf("      %s\n", recs[i].Reason)
		}
		cmd.Printf("      intelligence: %s  signal: %s\n", recs[i].IntelligenceID, recs[i].SignalID)
		cmd.Println()
	}

	return nil
}
