package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchCodeTool returns the tool definition for search_code
func searchCodeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_code",
		Description: "Search GitHub code and download every matching file to a local scratch directory",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search text followed by optional key:value qualifiers (e.g., 'http.Client language:go repo:cli/cli')",
				},
				"url": map[string]interface{}{
					"type":        "string",
					"description": "API base URL; defaults to the server's configured URL",
				},
			},
			Required: []string{"query"},
		},
	}
}

// cleanupTool returns the tool definition for cleanup
func cleanupTool() mcp.Tool {
	return mcp.Tool{
		Name:        "cleanup",
		Description: "Remove the scratch directory and every downloaded file",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
