// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

// StageReported carries a pipeline stage transition to the model.
type StageReported struct {
	Event domain.StageEvent
}

// ConvertFinished carries the outcome of a conversion back to the model.
type ConvertFinished struct {
	Result *domain.ConvertResult
	Err    error
}
