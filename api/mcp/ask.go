package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	askToolName    = "ask"
	askDescription = "Ask a question over the ingested articles. Returns an answer grounded in the knowledge base along with the source URLs it drew on."
)

// AskInput represents the input arguments for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the ingested articles"`
}

// AskOutput represents the output of the ask tool.
type AskOutput struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// handleAsk processes an ask request.
func (s *Server) handleAsk(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP ask request", "question", input.Question)

	answer, err := s.config.Session.Answer(ctx, input.Question, nil)
	if err != nil {
		logger.Error("failed to answer question", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to answer: %v", err)},
			},
		}, AskOutput{}, nil
	}

	output := AskOutput{
		Answer:  answer.Text,
		Sources: answer.Sources,
	}

	text := answer.Text
	for i, src := range answer.Sources {
		if i == 0 {
			text += "\n\nSources:"
		}
		text += fmt.Sprintf("\n- %s", src)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, output, nil
}
