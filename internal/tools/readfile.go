package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zhiwei-liang/geofile-go/internal/geodata"
)

// ReadFileInput defines the input schema for the read_geo_file tool.
type ReadFileInput struct {
	FilePath string `json:"file_path" jsonschema:"Path to the geodata file to read and narrate"`
}

// NewReadFileHandler creates the read_geo_file handler: process the file,
// store the report in memory, and return the narrated summary.
func NewReadFileHandler(deps *Dependencies) mcp.ToolHandlerFor[ReadFileInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ReadFileInput) (*mcp.CallToolResult, any, error) {
		if input.FilePath == "" {
			return ErrorResult("file_path is required", "pass the path of the file to read"), nil, nil
		}
		deps.Logger.Debug("read_geo_file tool called", "path", input.FilePath)

		env := deps.Assistant.HandleReadGeoFile(ctx, input.FilePath, geodata.Options{})
		if env.Status != "success" {
			return ErrorResult(env.Message, ""), nil, nil
		}
		return TextResult(env.Data), nil, nil
	}
}
