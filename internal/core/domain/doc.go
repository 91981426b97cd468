// Package domain defines the core business entities for Tutorforge.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - PipelineState: The mutable record threaded through one conversion run
//   - Style: The target audience of a rewrite
//   - Chunk: A bounded, ordered segment of cleaned content
//   - GlossaryTerm: A term and its definition extracted from content
//   - KnowledgeItem: A text item stored in the knowledge store
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
