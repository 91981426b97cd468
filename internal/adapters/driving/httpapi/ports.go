// Package httpapi serves conversions, knowledge queries and generated
// artifacts over HTTP.
package httpapi

import (
	"errors"

	"github.com/custodia-labs/tutorforge/internal/core/ports/driving"
)

// ErrMissingConvertService is returned when the convert service is not provided.
var ErrMissingConvertService = errors.New("httpapi: convert service is required")

// ErrMissingKnowledgeService is returned when the knowledge service is not provided.
var ErrMissingKnowledgeService = errors.New("httpapi: knowledge service is required")

// Ports aggregates the driving ports used by the HTTP server.
type Ports struct {
	Convert   driving.ConvertService
	Knowledge driving.KnowledgeService

	// ArtifactDir is served under /artifacts/. Disabled when empty.
	ArtifactDir string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Convert == nil {
		return ErrMissingConvertService
	}
	if p.Knowledge == nil {
		return ErrMissingKnowledgeService
	}
	return nil
}
