package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RememberInput defines the input schema for the remember tool.
type RememberInput struct {
	Content  string `json:"content" jsonschema:"Text to store in memory"`
	FilePath string `json:"file_path,omitempty" jsonschema:"Optional source file to stamp the memory with"`
}

// RecallInput defines the input schema for the recall tool.
type RecallInput struct {
	Question string `json:"question" jsonschema:"Question to search memory for"`
	FilePath string `json:"file_path,omitempty" jsonschema:"Optional source file to restrict the search to"`
}

// NewRememberHandler creates the remember handler.
func NewRememberHandler(deps *Dependencies) mcp.ToolHandlerFor[RememberInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RememberInput) (*mcp.CallToolResult, any, error) {
		if deps.Memory == nil {
			return ErrorResult("memory store not configured", "start the server with SurrealDB available"), nil, nil
		}
		if input.Content == "" {
			return ErrorResult("content is required", "pass the text to remember"), nil, nil
		}

		id, err := deps.Memory.Add(ctx, input.Content, input.FilePath, nil)
		if err != nil {
			return ErrorResult(fmt.Sprintf("store failed: %v", err), ""), nil, nil
		}
		return TextResult(fmt.Sprintf("stored memory %s", id)), nil, nil
	}
}

// NewRecallHandler creates the recall handler.
func NewRecallHandler(deps *Dependencies) mcp.ToolHandlerFor[RecallInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RecallInput) (*mcp.CallToolResult, any, error) {
		if deps.Memory == nil {
			return ErrorResult("memory store not configured", "start the server with SurrealDB available"), nil, nil
		}
		if input.Question == "" {
			return ErrorResult("question is required", "pass the question to search for"), nil, nil
		}

		matches, err := deps.Memory.Query(ctx, input.Question, input.FilePath)
		if err != nil {
			return ErrorResult(fmt.Sprintf("query failed: %v", err), ""), nil, nil
		}
		if len(matches) == 0 {
			return TextResult("no matching memories"), nil, nil
		}

		lines := make([]string, 0, len(matches))
		for _, m := range matches {
			line := fmt.Sprintf("[%.3f] %s", m.Score, m.Content)
			if m.Filepath != "" {
				line += fmt.Sprintf(" (source: %s)", m.Filepath)
			}
			lines = append(lines, line)
		}
		return TextResult(strings.Join(lines, "\n")), nil, nil
	}
}
