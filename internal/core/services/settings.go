package services

import (
	"fmt"
	"time"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyToolsMCPCommand   = "tools.mcp_command"
	keyToolsMCPEndpoint  = "tools.mcp_endpoint"
	keyToolsGitHubToken  = "tools.github_token"
	keyToolsTimeoutSecs  = "tools.attempt_timeout_seconds"
	keyPipelineAgent     = "pipeline.agent_name"
	keyPipelineVersion   = "pipeline.agent_version"
	keyPipelineTimeout   = "pipeline.step_timeout_seconds"
	keyPipelineThreshold = "pipeline.review_threshold"
	keyRecommendAlpha    = "recommend.alpha"
	keyRecommendBeta     = "recommend.beta"
	keyRecommendGamma    = "recommend.gamma"
	keyRecommendHalfLife = "recommend.half_life_hours"
	keyRecommendFloor    = "recommend.similarity_floor"
	keyRecommendTopK     = "recommend.top_k"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Tools: domain.ToolSettings{
			MCPCommand:     s.configStore.GetString(keyToolsMCPCommand),
			MCPEndpoint:    s.configStore.GetString(keyToolsMCPEndpoint),
			GitHubToken:    s.configStore.GetString(keyToolsGitHubToken),
			AttemptTimeout: s.getSeconds(keyToolsTimeoutSecs, defaults.Tools.AttemptTimeout),
		},
		Pipeline: domain.PipelineSettings{
			AgentName:       s.getString(keyPipelineAgent, defaults.Pipeline.AgentName),
			AgentVersion:    s.getString(keyPipelineVersion, defaults.Pipeline.AgentVersion),
			StepTimeout:     s.getSeconds(keyPipelineTimeout, defaults.Pipeline.StepTimeout),
			ReviewThreshold: s.getFloat(keyPipelineThreshold, defaults.Pipeline.ReviewThreshold),
		},
		Recommend: domain.RecommendSettings{
			Weights: domain.BlendWeights{
				Alpha: s.getFloat(keyRecommendAlpha, defaults.Recommend.Weights.Alpha),
				Beta:  s.getFloat(keyRecommendBeta, defaults.Recommend.Weights.Beta),
				Gamma: s.getFloat(keyRecommendGamma, defaults.Recommend.Weights.Gamma),
			},
			HalfLife:        s.getHours(keyRecommendHalfLife, defaults.Recommend.HalfLife),
			SimilarityFloor: s.getFloat(keyRecommendFloor, defaults.Recommend.SimilarityFloor),
			TopK:            s.getInt(keyRecommendTopK, defaults.Recommend.TopK),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	pairs := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyToolsMCPCommand, settings.Tools.MCPCommand},
		{keyToolsMCPEndpoint, settings.Tools.MCPEndpoint},
		{keyToolsTimeoutSecs, int(settings.Tools.AttemptTimeout / time.Second)},
		{keyPipelineAgent, settings.Pipeline.AgentName},
		{keyPipelineVersion, settings.Pipeline.AgentVersion},
		{keyPipelineTimeout, int(settings.Pipeline.StepTimeout / time.Second)},
		{keyPipelineThreshold, settings.Pipeline.ReviewThreshold},
		{keyRecommendAlpha, settings.Recommend.Weights.Alpha},
		{keyRecommendBeta, settings.Recommend.Weights.Beta},
		{keyRecommendGamma, settings.Recommend.Weights.Gamma},
		{keyRecommendHalfLife, int(settings.Recommend.HalfLife / time.Hour)},
		{keyRecommendFloor, settings.Recommend.SimilarityFloor},
		{keyRecommendTopK, settings.Recommend.TopK},
	}
	for _, p := range pairs {
		if err := s.configStore.Set(p.key, p.value); err != nil {
			return fmt.Errorf("save %s: %w", p.key, err)
		}
	}

	// Secrets are only written when set, so a partial save never blanks
	// a stored credential.
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	if settings.Tools.GitHubToken != "" {
		if err := s.configStore.Set(keyToolsGitHubToken, settings.Tools.GitHubToken); err != nil {
			return fmt.Errorf("save github token: %w", err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if provider == domain.AIProviderAnthropic {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	// Local providers need a base URL; cloud providers use the API default.
	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetGitHubToken stores the token used by the GitHub connector and the
// REST tool transport.
func (s *SettingsService) SetGitHubToken(token string) error {
	if token == "" {
		return fmt.Errorf("github token must not be empty")
	}
	return s.configStore.Set(keyToolsGitHubToken, token)
}

// SetBlendWeights updates the recommendation ranking weights.
func (s *SettingsService) SetBlendWeights(weights domain.BlendWeights) error {
	if err := weights.Validate(); err != nil {
		return err
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Recommend.Weights = weights
	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// getString retrieves a string value with a fallback default.
func (s *SettingsService) getString(key, defaultValue string) string {
	if value := s.configStore.GetString(key); value != "" {
		return value
	}
	return defaultValue
}

// getInt retrieves an int value with a fallback default.
func (s *SettingsService) getInt(key string, defaultValue int) int {
	if value := s.configStore.GetInt(key); value != 0 {
		return value
	}
	return defaultValue
}

// getFloat retrieves a float value with a fallback default.
func (s *SettingsService) getFloat(key string, defaultValue float64) float64 {
	if value := s.configStore.GetFloat(key); value != 0 {
		return value
	}
	return defaultValue
}

// getProvider retrieves a provider value with a fallback default.
func (s *SettingsService) getProvider(key string, defaultValue domain.AIProvider) domain.AIProvider {
	if value := s.configStore.GetString(key); value != "" {
		provider := domain.AIProvider(value)
		if provider.IsValid() {
			return provider
		}
	}
	return defaultValue
}

// getSeconds reads a duration stored as whole seconds.
func (s *SettingsService) getSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := s.configStore.GetInt(key); value > 0 {
		return time.Duration(value) * time.Second
	}
	return defaultValue
}

// getHours reads a duration stored as whole hours.
func (s *SettingsService) getHours(key string, defaultValue time.Duration) time.Duration {
	if value := s.configStore.GetInt(key); value > 0 {
		return time.Duration(value) * time.Hour
	}
	return defaultValue
}
