package driven

import "github.com/custodia-labs/tutorforge/internal/core/domain"

// ProgressSink receives stage events from a running conversion.
// Implementations must not block.
type ProgressSink interface {
	OnStage(event domain.StageEvent)
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(domain.StageEvent)

// OnStage calls f.
func (f ProgressFunc) OnStage(event domain.StageEvent) {
	f(event)
}
