package mcp

import (
	"github.com/custodia-labs/tutorforge/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Convert runs document conversions.
	Convert driving.ConvertService

	// Knowledge queries and indexes the knowledge base.
	Knowledge driving.KnowledgeService

	// ArtifactDir is where conversions write their files. Artifact
	// resources are disabled when empty.
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
