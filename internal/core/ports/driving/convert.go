package driving

import (
	"context"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
)

// ConvertService runs end-to-end conversions.
type ConvertService interface {
	// Convert ingests, transforms and renders a document.
	// progress may be nil.
	Convert(ctx context.Context, req domain.ConvertRequest, progress driven.ProgressSink) (*domain.ConvertResult, error)
}

// PipelineRunner runs the transformation pipeline on prepared state.
type PipelineRunner interface {
	// Run drives state from the clean stage to done.
	Run(ctx context.Context, state *domain.PipelineState) error

	// RunWithProgress is Run reporting stage transitions to sink.
	RunWithProgress(ctx context.Context, state *domain.PipelineState, sink driven.ProgressSink) error
}
