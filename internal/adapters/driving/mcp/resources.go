package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for TutorForge resources.
	uriScheme = "tutorforge://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "styles",
		Name:        "styles",
		Description: "Target audiences a document can be rewritten for",
		MIMEType:    "application/json",
	}, s.handleStylesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "options",
		Name:        "options",
		Description: "Optional sections a tutorial can include",
		MIMEType:    "application/json",
	}, s.handleOptionsResource)

	if s.ports.ArtifactDir != "" {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "artifacts/{name}",
			Name:        "artifact",
			Description: "A generated tutorial, page or image",
		}, s.handleArtifactResource)
	}
}

func (s *Server) handleStylesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type styleInfo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Default     bool   `json:"default,omitempty"`
	}

	styles := domain.AllStyles()
	infos := make([]styleInfo, len(styles))
	for i, style := range styles {
		infos[i] = styleInfo{
			Name:        style.String(),
			Description: style.Description(),
			Default:     style == domain.DefaultStyle,
		}
	}
	return jsonResource(req.Params.URI, infos)
}

func (s *Server) handleOptionsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type optionInfo struct {
		Name        string `json:"name"`
		Instruction string `json:"instruction"`
	}

	options := domain.AllOutputOptions()
	infos := make([]optionInfo, len(options))
	for i, opt := range options {
		infos[i] = optionInfo{Name: opt.String(), Instruction: opt.Instruction()}
	}
	return jsonResource(req.Params.URI, infos)
}

// handleArtifactResource returns a file from the artifact directory.
// Text formats are returned as text, everything else as a blob.
func (s *Server) handleArtifactResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractArtifactName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := os.ReadFile(filepath.Join(s.ports.ArtifactDir, name))
	if os.IsNotExist(err) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}

	contents := &mcp.ResourceContents{
		URI:      req.Params.URI,
		MIMEType: artifactMIMEType(name),
	}
	if strings.HasPrefix(contents.MIMEType, "text/") {
		contents.Text = string(data)
	} else {
		contents.Blob = data
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{contents}}, nil
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractArtifactName extracts a plain file name from a URI like
// tutorforge://artifacts/{name}. Names with path elements are rejected.
func extractArtifactName(uri string) string {
	const prefix = uriScheme + "artifacts/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	name := strings.TrimPrefix(uri, prefix)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return ""
	}
	return name
}

func artifactMIMEType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md":
		return "text/markdown"
	case ".html":
		return "text/html"
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
