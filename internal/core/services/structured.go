package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
)

// structured is the outcome of a structured generation call: a decoded
// value, a schema failure, or a generation failure.
type structured[T any] struct {
	Value T
	Err   error
}

// OK reports whether Value holds a decoded answer.
func (r structured[T]) OK() bool {
	return r.Err == nil
}

// SchemaError returns the schema failure, if that is what went wrong.
func (r structured[T]) SchemaError() (*domain.SchemaError, bool) {
	var se *domain.SchemaError
	if errors.As(r.Err, &se) {
		return se, true
	}
	return nil, false
}

// generateStructured asks gen for a JSON answer decoded into T.
func generateStructured[T any](
	ctx context.Context,
	gen driven.Generator,
	prompt, system string,
	category domain.TaskCategory,
) structured[T] {
	var out structured[T]
	out.Err = gen.GenerateStructured(ctx, prompt, system, category, &out.Value)
	return out
}
