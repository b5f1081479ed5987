package driving

import "github.com/devpulse-labs/pulse-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetGitHubToken stores the token used by the GitHub connector and
	// the REST tool transport.
	SetGitHubToken(token string) error

	// SetBlendWeights updates the recommendation ranking weights.
	SetBlendWeights(weights domain.BlendWeights) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
