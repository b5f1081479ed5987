package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devpulse-labs/pulse-cli/internal/connectors/arxiv"
	"github.com/devpulse-labs/pulse-cli/internal/connectors/github"
	"github.com/devpulse-labs/pulse-cli/internal/connectors/hackernews"
	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driving"
)

var (
	ingestMax     int
	ingestQuery   string
	ingestReadmes bool
	ingestRun     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [source]",
	Short: "Fetch and admit signals from a source",
	Long: `Fetches fresh signals from the given source and admits them into the
store. Unchanged duplicates are skipped; changed content is admitted as a
new version.

Sources: github, arxiv, hackernews. Without an argument all sources are
fetched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVarP(&ingestMax, "max", "n", 0, "maximum signals per source (0 = source default)")
	ingestCmd.Flags().StringVarP(&ingestQuery, "query", "q", "", "override the source's discovery query")
	ingestCmd.Flags().BoolVar(&ingestReadmes, "readmes", false, "fetch READMEs for GitHub repositories")
	ingestCmd.Flags().BoolVar(&ingestRun, "run", false, "run the pipeline for each admitted signal")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	sources := []domain.SourceKind{domain.SourceGitHub, domain.SourceArxiv, domain.SourceHackerNews}
	if len(args) > 0 {
		kind := domain.SourceKind(args[0])
		if !kind.Valid() {
			return fmt.Errorf("unknown source %q (expected github, arxiv or hackernews)", args[0])
		}
		sources = []domain.SourceKind{kind}
	}

	ctx := cmd.Context()
	for _, kind := range sources {
		connector := buildConnector(kind)

		cmd.Printf("Fetching %s...\n", kind)
		raw, err := connector.Fetch(ctx)
		closeErr := connector.Close()
		if err != nil {
			return fmt.Errorf("fetch %s: %w", kind, err)
		}
		if closeErr != nil {
			return fmt.Errorf("close %s connector: %w", kind, closeErr)
		}

		items := make([]driving.BatchItem, len(raw))
		for i := range raw {
			items[i] = driving.BatchItem{
				Source:     raw[i].Source,
				ExternalID: raw[i].ExternalID,
				Payload:    raw[i].Payload,
			}
		}

		result, err := ingestService.IngestBatch(ctx, items)
		if err != nil {
			return fmt.Errorf("ingest %s batch: %w", kind, err)
		}

		cmd.Printf("  fetched %d, admitted %d, updated %d, skipped %d\n",
			result.Fetched, result.Admitted, result.Updated, result.Skipped)
		for _, failure := range result.Failures {
			cmd.Printf("  failed %s: %v\n", failure.ExternalID, failure.Err)
		}

		if ingestRun {
			if err := runPipelineBatch(ctx, cmd, result.SignalIDs); err != nil {
				return err
			}
		}
	}

	return nil
}

// buildConnector creates the connector for one source kind from the
// current settings.
func buildConnector(kind domain.SourceKind) driven.Connector {
	var token string
	if appSettings != nil {
		token = appSettings.Tools.GitHubToken
	}

	switch kind {
	case domain.SourceArxiv:
		return arxiv.NewConnector(arxiv.Config{
			Query:      ingestQuery,
			MaxResults: ingestMax,
		})
	case domain.SourceHackerNews:
		return hackernews.NewConnector(hackernews.Config{
			MaxResults: ingestMax,
		})
	default:
		return github.NewConnector(github.Config{
			Token:        token,
			Query:        ingestQuery,
			MaxResults:   ingestMax,
			FetchReadmes: ingestReadmes,
		})
	}
}

// runPipelineBatch runs the pipeline for each signal, reporting failures
// without aborting the batch.
func runPipelineBatch(ctx context.Context, cmd *cobra.Command, signalIDs []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	for _, id := range signalIDs {
		result, err := pipelineService.Run(ctx, id)
		if err != nil {
			cmd.Printf("  pipeline failed for %s: %v\n", id, err)
			continue
		}
		cmd.Printf("  pipeline %s: %s (run %s)\n", id, result.Status, result.RunID)
	}
	return nil
}
