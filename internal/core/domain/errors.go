package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates malformed stage input, such as a
	// non-positive chunk bound or empty raw content.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrExternalService indicates a generation, retrieval or image backend
	// was unreachable or returned an error. Timeouts are reported this way too.
	ErrExternalService = errors.New("external service error")

	// ErrSchema indicates a structured response could not be parsed
	// into the requested shape.
	ErrSchema = errors.New("schema error")

	// ErrResourceWrite indicates an artifact or store write failed.
	ErrResourceWrite = errors.New("resource write error")

	// ErrUnsupportedType indicates an unknown provider, source or file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Ingestion Errors.

	// ErrFetch indicates a source could not be retrieved.
	ErrFetch = errors.New("fetch error")

	// ErrParse indicates a retrieved source could not be turned into text.
	ErrParse = errors.New("parse error")

	// Provider Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// The knowledge store falls back to lexical ranking without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrImageUnavailable indicates no image backend could serve a request.
	ErrImageUnavailable = errors.New("image generation unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// StageError is returned when a pipeline stage aborts the run.
// It names the stage and keeps the underlying cause for errors.Is.
type StageError struct {
	Stage Stage
	Err   error
}

// Error implements error.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with the stage it occurred in.
// A nil err returns nil.
func NewStageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// SchemaError describes a structured response that did not fit its shape.
type SchemaError struct {
	// Shape is a short name of the requested shape (e.g. "critic_verdict").
	Shape string

	// Raw is the offending response, possibly truncated.
	Raw string

	// Err is the decode failure.
	Err error
}

// Error implements error.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSchema, e.Shape, e.Err)
}

// Unwrap lets errors.Is match both ErrSchema and the decode failure.
func (e *SchemaError) Unwrap() []error {
	return []error{ErrSchema, e.Err}
}
