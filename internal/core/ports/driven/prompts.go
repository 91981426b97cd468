package driven

import "github.com/custodia-labs/tutorforge/internal/core/domain"

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptClean is the system prompt of the clean stage.
	PromptClean = "clean"

	// PromptGlossary is the system prompt of glossary extraction.
	PromptGlossary = "glossary"

	// PromptCritic is the system prompt of the critic.
	PromptCritic = "critic"

	// PromptWriterSystem is the system prompt of every rewrite request.
	PromptWriterSystem = "writer_system"
)

// StylePromptName returns the name of the rewrite template for style.
// Templates contain a single {content} placeholder.
func StylePromptName(style domain.Style) string {
	return "rewrite_" + style.OrDefault().String()
}

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	SetPromptStore(store PromptStore)
}
