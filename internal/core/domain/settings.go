package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ToolSettings holds tool gateway configuration.
type ToolSettings struct {
	// MCPCommand launches a stdio MCP server (e.g. "github-mcp-server").
	// Takes precedence over MCPEndpoint when both are set.
	MCPCommand string

	// MCPEndpoint is a streamable-HTTP MCP server URL.
	MCPEndpoint string

	// GitHubToken authenticates the REST fallback and the connector.
	GitHubToken string

	// AttemptTimeout bounds each transport attempt.
	AttemptTimeout time.Duration
}

// PipelineSettings holds agent pipeline configuration.
type PipelineSettings struct {
	// AgentName stamps produced intelligence rows.
	AgentName string

	// AgentVersion stamps produced intelligence rows. Bumping it makes
	// reprocessing write new rows while retaining the old ones.
	AgentVersion string

	// StepTimeout bounds each agent step's external reasoning call.
	StepTimeout time.Duration

	// ReviewThreshold is the score above which the critic demands
	// supporting evidence.
	ReviewThreshold float64
}

// RecommendSettings holds recommendation engine configuration.
type RecommendSettings struct {
	// Weights blends similarity with recency and feedback.
	Weights BlendWeights

	// HalfLife controls recency decay.
	HalfLife time.Duration

	// SimilarityFloor drops semantic matches below this cosine score.
	SimilarityFloor float64

	// TopK bounds result sets when the query gives no limit.
	TopK int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Tools holds tool gateway settings.
	Tools ToolSettings

	// Pipeline holds agent pipeline settings.
	Pipeline PipelineSettings

	// Recommend holds recommendation engine settings.
	Recommend RecommendSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// AI features (Embedding, LLM) are left unconfigured by default; users must
// configure them via `pulse settings`.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{},
		LLM:       LLMSettings{},
		Tools: ToolSettings{
			AttemptTimeout: 15 * time.Second,
		},
		Pipeline: PipelineSettings{
			AgentName:       "relevance",
			AgentVersion:    "1.0",
			StepTimeout:     60 * time.Second,
			ReviewThreshold: 80,
		},
		Recommend: RecommendSettings{
			Weights:         DefaultBlendWeights,
			HalfLife:        7 * 24 * time.Hour,
			SimilarityFloor: 0.25,
			TopK:            10,
		},
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
