package driven

import (
	"context"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

// Generator is the generation capability consumed by the pipeline.
// Requests are routed to a backend by task category.
//
// Errors:
//   - transport or model failures wrap domain.ErrExternalService
//   - GenerateStructured returns *domain.SchemaError when the answer
//     does not decode into out
type Generator interface {
	// GenerateText returns free text.
	GenerateText(ctx context.Context, prompt, system string, category domain.TaskCategory) (string, error)

	// GenerateStructured decodes a JSON answer into out, which must be a pointer.
	GenerateStructured(ctx context.Context, prompt, system string, category domain.TaskCategory, out any) error
}

// BackendRouter picks the backend for a task category.
type BackendRouter interface {
	// Route returns the backend for category.
	Route(category domain.TaskCategory) (LLMService, error)
}
