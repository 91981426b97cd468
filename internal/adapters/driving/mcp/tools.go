package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

// defaultQueryLimit applies when a query does not ask for a limit.
const defaultQueryLimit = 5

// ConvertInput is the input schema for the convert_document tool.
type ConvertInput struct {
	Source       string   `json:"source,omitempty" jsonschema:"URL, local path or github:owner/repo/path reference to convert"`
	Content      string   `json:"content,omitempty" jsonschema:"raw text to convert instead of a source"`
	Style        string   `json:"style,omitempty" jsonschema:"audience: kids, highschool, undergrad, pro or executive (default pro)"`
	CustomPrompt string   `json:"custom_prompt,omitempty" jsonschema:"extra instructions for the writer"`
	Options      []string `json:"options,omitempty" jsonschema:"optional sections: code_examples, summary_table, key_takeaways, glossary"`
	Title        string   `json:"title,omitempty" jsonschema:"title of the rendered tutorial"`
}

// ConvertOutput is the output schema for the convert_document tool.
type ConvertOutput struct {
	RunID        string `json:"run_id"`
	Title        string `json:"title"`
	Style        string `json:"style"`
	Status       string `json:"status"`
	Iterations   int    `json:"iterations"`
	Images       int    `json:"images"`
	MarkdownPath string `json:"markdown_path"`
	HTMLPath     string `json:"html_path"`
	PDFPath      string `json:"pdf_path"`
	Markdown     string `json:"markdown"`
}

// QueryInput is the input schema for the query_knowledge tool.
type QueryInput struct {
	Query string `json:"query" jsonschema:"text to search the knowledge base for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
	Type  string `json:"type,omitempty" jsonschema:"restrict results to an item type: glossary or rag_document"`
}

// QueryOutput is the output schema for the query_knowledge tool.
type QueryOutput struct {
	Results []QueryResultOutput `json:"results"`
	Count   int                 `json:"count"`
}

// QueryResultOutput is a single knowledge hit.
type QueryResultOutput struct {
	ID     string  `json:"id"`
	Type   string  `json:"type,omitempty"`
	Source string  `json:"source,omitempty"`
	Score  float64 `json:"score"`
	Text   string  `json:"text"`
}

// IndexInput is the input schema for the index_knowledge tool.
type IndexInput struct {
	Force bool `json:"force,omitempty" jsonschema:"reindex files that were already indexed"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "convert_document",
		Description: "Rewrite a document as a tutorial for a target audience and render it to Markdown, HTML and PDF",
	}, s.handleConvert)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_knowledge",
		Description: "Search the knowledge base of indexed reference documents and glossary terms",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_knowledge",
		Description: "Index new or changed files in the reference folder",
	}, s.handleIndex)
}

func (s *Server) handleConvert(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConvertInput,
) (*mcp.CallToolResult, ConvertOutput, error) {
	if input.Source == "" && input.Content == "" {
		return nil, ConvertOutput{}, fmt.Errorf("%w: source or content is required", domain.ErrInvalidArgument)
	}

	result, err := s.ports.Convert.Convert(ctx, domain.ConvertRequest{
		Source:        input.Source,
		Content:       input.Content,
		Title:         input.Title,
		Style:         domain.ParseStyle(input.Style),
		CustomPrompt:  input.CustomPrompt,
		OutputOptions: domain.ParseOutputOptions(input.Options),
	}, nil)
	if err != nil {
		return nil, ConvertOutput{}, err
	}

	return nil, ConvertOutput{
		RunID:        result.RunID,
		Title:        result.Title,
		Style:        result.Style.String(),
		Status:       string(result.Status),
		Iterations:   result.Iterations,
		Images:       result.Images,
		MarkdownPath: result.MarkdownPath,
		HTMLPath:     result.HTMLPath,
		PDFPath:      result.PDFPath,
		Markdown:     result.Markdown,
	}, nil
}

func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	hits, err := s.ports.Knowledge.Query(ctx, input.Query, limit, input.Type)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{
		Results: make([]QueryResultOutput, len(hits)),
		Count:   len(hits),
	}
	for i, hit := range hits {
		output.Results[i] = QueryResultOutput{
			ID:     hit.Item.ID,
			Type:   hit.Item.Metadata[domain.MetaType],
			Source: hit.Item.Metadata[domain.MetaSource],
			Score:  hit.Score,
			Text:   hit.Item.Text,
		}
	}
	return nil, output, nil
}

func (s *Server) handleIndex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexInput,
) (*mcp.CallToolResult, domain.IndexStats, error) {
	stats, err := s.ports.Knowledge.IndexFolder(ctx, input.Force)
	if err != nil {
		return nil, domain.IndexStats{}, err
	}
	return nil, stats, nil
}
