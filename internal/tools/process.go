package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zhiwei-liang/geofile-go/internal/geodata"
)

// ProcessInput defines the input schema for the process_geo_data tool.
type ProcessInput struct {
	FilePath  string `json:"file_path" jsonschema:"Path to a .csv/.txt/.xlsx/.xls/.shp file"`
	LonColumn string `json:"lon_col,omitempty" jsonschema:"Longitude column name or zero-based index"`
	LatColumn string `json:"lat_col,omitempty" jsonschema:"Latitude column name or zero-based index"`
}

// NewProcessHandler creates the process_geo_data handler. On failure the
// rendered diagnostic goes back as an error result, so the model can relay
// the remediation suggestions to the user.
func NewProcessHandler(deps *Dependencies) mcp.ToolHandlerFor[ProcessInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ProcessInput) (*mcp.CallToolResult, any, error) {
		if input.FilePath == "" {
			return ErrorResult("file_path is required", "pass the path of the file to process"), nil, nil
		}
		deps.Logger.Debug("process_geo_data tool called", "path", input.FilePath)

		env := deps.Dispatcher.Process(ctx, input.FilePath, geodata.Options{
			LonColumn: input.LonColumn,
			LatColumn: input.LatColumn,
		})
		if env.Status != "success" {
			return ErrorResult(env.Message, ""), nil, nil
		}
		return TextResult(env.Data), nil, nil
	}
}
