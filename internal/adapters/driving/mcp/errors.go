// Package mcp provides an MCP (Model Context Protocol) server adapter for TutorForge.
// It lets AI assistants convert documents and query the knowledge base.
package mcp

import "errors"

// ErrMissingConvertService is returned when the convert service is not provided.
var ErrMissingConvertService = errors.New("mcp: convert service is required")

// ErrMissingKnowledgeService is returned when the knowledge service is not provided.
var ErrMissingKnowledgeService = errors.New("mcp: knowledge service is required")
