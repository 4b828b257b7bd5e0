package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	ingestToolName    = "ingest"
	ingestDescription = "Ingest article URLs into the knowledge base. Fetches each URL, chunks and embeds the content, and replaces the current knowledge base with the result."
)

// IngestInput represents the input arguments for the ingest tool.
type IngestInput struct {
	URLs []string `json:"urls" jsonschema:"the article URLs to ingest"`
}

// IngestOutput represents the output of the ingest tool.
type IngestOutput struct {
	URLs       []string `json:"urls"`
	ChunkCount int      `json:"chunk_count"`
}

// handleIngest processes an ingest request.
func (s *Server) handleIngest(ctx context.Context, req *mcp.CallToolRequest, input IngestInput) (*mcp.CallToolResult, IngestOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP ingest request", "urls", len(input.URLs))

	summary, err := s.config.Session.Ingest(ctx, input.URLs, nil)
	if err != nil {
		logger.Error("failed to ingest URLs", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to ingest: %v", err)},
			},
		}, IngestOutput{}, nil
	}

	output := IngestOutput{
		URLs:       summary.URLs,
		ChunkCount: summary.ChunkCount,
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("Ingested %d URLs into %d chunks", len(summary.URLs), summary.ChunkCount),
			},
		},
	}, output, nil
}
