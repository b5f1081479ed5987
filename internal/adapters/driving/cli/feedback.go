package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback [intelligence-id] [up|down]",
	Short: "Rate a recommendation",
	Long: `Records a vote on a piece of intelligence. Votes feed back into
recommendation ranking.`,
	Args: cobra.ExactArgs(2),
	RunE: runFeedback,
}

func init() {
	rootCmd.AddCommand(feedbackCmd)
}

func runFeedback(cmd *cobra.Command, args []string) error {
	if feedbackStore == nil {
		return errors.New("feedback store not configured")
	}

	var vote int
	switch args[1] {
	case "up":
		vote = 1
	case "down":
		vote = -1
	default:
		return fmt.Errorf("invalid vote %q (expected up or down)", args[1])
	}

	fb := domain.Feedback{
		IntelligenceID: args[0],
		Vote:           vote,
		CreatedAt:      time.Now(),
	}
	if err := feedbackStore.Record(cmd.Context(), fb); err != nil {
		return fmt.Errorf("record feedback: %w", err)
	}

	cmd.Printf("Recorded %s vote for %s\n", args[1], args[0])
	return nil
}
