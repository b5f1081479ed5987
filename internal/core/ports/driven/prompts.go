package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, allowing user customisation,
// or provide embedded defaults.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptResearch is the researcher step's instruction header. The
	// signal's fields and any tool enrichment are appended to it.
	PromptResearch = "research"

	// PromptScore is the analyst step's instruction header. The summary
	// under scoring is appended to it.
	PromptScore = "score"
)
