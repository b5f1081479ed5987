// Package cli provides the pulse command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devpulse-labs/pulse-cli/internal/adapters/driven/ai"
	"github.com/devpulse-labs/pulse-cli/internal/adapters/driven/config/file"
	"github.com/devpulse-labs/pulse-cli/internal/adapters/driven/storage/sqlite"
	mcptools "github.com/devpulse-labs/pulse-cli/internal/adapters/driven/tools/mcp"
	"github.com/devpulse-labs/pulse-cli/internal/adapters/driven/tools/rest"
	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driving"
	"github.com/devpulse-labs/pulse-cli/internal/core/services"
	"github.com/devpulse-labs/pulse-cli/internal/logger"
	"github.com/devpulse-labs/pulse-cli/internal/normalisers"
	arxivnorm "github.com/devpulse-labs/pulse-cli/internal/normalisers/arxiv"
	githubnorm "github.com/devpulse-labs/pulse-cli/internal/normalisers/github"
	hnnorm "github.com/devpulse-labs/pulse-cli/internal/normalisers/hackernews"
)

// version is set at build time via ldflags.
var version = "dev"

// verbose enables debug logging.
var verbose bool

// Wired services. Tests inject mocks here; production wiring happens in
// initServices.
var (
	ingestService    driving.IngestService
	pipelineService  driving.PipelineService
	recommendService driving.RecommendService
	settingsService  driving.SettingsService

	signalStore   driven.SignalStore
	intelStore    driven.IntelligenceStore
	traceStore    driven.TraceStore
	feedbackStore driven.FeedbackStore

	appSettings *domain.AppSettings

	store *sqlite.Store
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Developer-signal intelligence from your terminal",
	Long: `Pulse collects developer signals (GitHub repositories, arXiv papers,
Hacker News stories), runs them through a researcher-analyst-critic agent
pipeline and recommends the most relevant results.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)

		// Tests wire their own services; don't overwrite them.
		if settingsService != nil {
			return nil
		}
		return initServices()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if store != nil {
			store.Close() //nolint:errcheck
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command. The version string is stamped by the
// build.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

// initServices wires the stores, factories and core services. AI
// collaborators are optional: an unconfigured provider leaves its
// service nil and the pipeline degrades rather than failing to start.
func initServices() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}

	promptStore, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}

	settingsService = services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	appSettings = settings

	store, err = sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening data store: %w", err)
	}

	signalStore = store.SignalStore()
	intelStore = store.IntelligenceStore()
	traceStore = store.TraceStore()
	feedbackStore = store.FeedbackStore()

	registry := normalisers.NewRegistry(
		githubnorm.New(),
		arxivnorm.New(),
		hnnorm.New(),
	)
	ingestService = services.NewIngestService(registry, store.DedupStore(), signalStore)

	var embedder driven.EmbeddingService
	if settings.Embedding.IsConfigured() {
		embedder, err = ai.CreateEmbeddingService(&settings.Embedding)
		if err != nil {
			logger.Warn("Embedding provider misconfigured, semantic ranking disabled: %v", err)
			embedder = nil
		}
	}

	var llm driven.LLMService
	if settings.LLM.IsConfigured() {
		llm, err = ai.CreateLLMService(&settings.LLM)
		if err != nil {
			logger.Warn("LLM provider misconfigured, pipeline reasoning disabled: %v", err)
			llm = nil
		}
	}

	var transports []driven.ToolTransport
	if t := mcptools.NewTransport(mcptools.Config{
		Command:  settings.Tools.MCPCommand,
		Endpoint: settings.Tools.MCPEndpoint,
	}); t != nil {
		transports = append(transports, t)
	}
	transports = append(transports, rest.NewTransport(settings.Tools.GitHubToken))
	gateway := services.NewToolGateway(settings.Tools.AttemptTimeout, transports...)

	pipelineService = services.NewPipelineService(
		signalStore,
		intelStore,
		traceStore,
		llm,
		gateway,
		promptStore,
		embedder,
		store.VectorIndex(),
		settings.Pipeline,
	)

	recommendService = services.NewRecommendService(
		intelStore,
		signalStore,
		feedbackStore,
		embedder,
		store.VectorIndex(),
		settings.Recommend,
	)

	return nil
}
