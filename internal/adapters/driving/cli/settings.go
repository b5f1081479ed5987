package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/devpulse-labs/pulse-cli/internal/adapters/driven/ai"
	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, tool transports and ranking weights.

Use subcommands to configure specific settings.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider for semantic ranking.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used by the agent pipeline.`,
	RunE:  runSettingsLLM,
}

var settingsGitHubCmd = &cobra.Command{
	Use:   "github",
	Short: "Set the GitHub token",
	Long:  `Stores the token used by the GitHub connector and the REST tool transport.`,
	RunE:  runSettingsGitHub,
}

var settingsWeightsCmd = &cobra.Command{
	Use:   "weights [alpha] [beta] [gamma]",
	Short: "Set recommendation blend weights",
	Long: `Sets the ranking blend weights. They must sum to 1 and the similarity
weight (alpha) must be at least 0.6 so semantic relevance keeps dominating.`,
	Args: cobra.ExactArgs(3),
	RunE: runSettingsWeights,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsGitHubCmd)
	settingsCmd.AddCommand(settingsWeightsCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())
	cmd.Println()

	cmd.Println("[Tools]")
	if settings.Tools.MCPCommand != "" {
		cmd.Printf("  MCP command: %s\n", settings.Tools.MCPCommand)
	} else if settings.Tools.MCPEndpoint != "" {
		cmd.Printf("  MCP endpoint: %s\n", settings.Tools.MCPEndpoint)
	} else {
		cmd.Println("  MCP: (not configured, REST fallback only)")
	}
	if settings.Tools.GitHubToken != "" {
		cmd.Printf("  GitHub token: %s\n", maskAPIKey(settings.Tools.GitHubToken))
	} else {
		cmd.Println("  GitHub token: (not set)")
	}
	cmd.Printf("  Attempt timeout: %s\n", settings.Tools.AttemptTimeout)
	cmd.Println()

	cmd.Println("[Pipeline]")
	cmd.Printf("  Agent: %s/%s\n", settings.Pipeline.AgentName, settings.Pipeline.AgentVersion)
	cmd.Printf("  Step timeout: %s\n", settings.Pipeline.StepTimeout)
	cmd.Printf("  Review threshold: %.0f\n", settings.Pipeline.ReviewThreshold)
	cmd.Println()

	cmd.Println("[Recommend]")
	cmd.Printf("  Weights: alpha=%.2f beta=%.2f gamma=%.2f\n",
		settings.Recommend.Weights.Alpha, settings.Recommend.Weights.Beta, settings.Recommend.Weights.Gamma)
	cmd.Printf("  Half-life: %s\n", settings.Recommend.HalfLife)
	cmd.Printf("  Similarity floor: %.2f\n", settings.Recommend.SimilarityFloor)
	cmd.Printf("  Top K: %d\n", settings.Recommend.TopK)

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if provider.IsLocal() && baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select Embedding Provider")
	providers := []domain.AIProvider{domain.AIProviderOllama, domain.AIProviderOpenAI}
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := validateEmbedding(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select LLM Provider")
	providers := []domain.AIProvider{domain.AIProviderOllama, domain.AIProviderOpenAI, domain.AIProviderAnthropic}
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := validateLLM(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

func runSettingsGitHub(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Print("Enter GitHub token (empty to clear): ")
	token := readPassword()
	cmd.Println()

	if err := settingsService.SetGitHubToken(token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	if token == "" {
		cmd.Println("GitHub token cleared.")
	} else {
		cmd.Println("GitHub token stored.")
	}
	return nil
}

func runSettingsWeights(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	values := make([]float64, 3)
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("invalid weight %q: %w", arg, err)
		}
		values[i] = v
	}

	weights := domain.BlendWeights{Alpha: values[0], Beta: values[1], Gamma: values[2]}
	if err := settingsService.SetBlendWeights(weights); err != nil {
		return fmt.Errorf("failed to set weights: %w", err)
	}

	cmd.Printf("Blend weights set: alpha=%.2f beta=%.2f gamma=%.2f\n",
		weights.Alpha, weights.Beta, weights.Gamma)
	return nil
}

// validateEmbedding pings the freshly configured embedding provider.
func validateEmbedding() error {
	settings, err := settingsService.Get()
	if err != nil {
		return err
	}
	return ai.ValidateEmbeddingConfig(&settings.Embedding)
}

// validateLLM pings the freshly configured LLM provider.
func validateLLM() error {
	settings, err := settingsService.Get()
	if err != nil {
		return err
	}
	return ai.ValidateLLMConfig(&settings.LLM)
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
