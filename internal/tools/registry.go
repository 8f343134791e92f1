package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server. Called from main after
// server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "process_geo_data",
		Description: "Process a geodata file (csv/txt/xlsx/xls/shp) and return its analysis report or a structured diagnostic",
	}, NewProcessHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "read_geo_file",
		Description: "Process a geodata file and return a narrated plain-language summary of its contents",
	}, NewReadFileHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remember",
		Description: "Store a piece of text in the vector memory",
	}, NewRememberHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "recall",
		Description: "Search the vector memory for text relevant to a question",
	}, NewRecallHandler(deps))
}
