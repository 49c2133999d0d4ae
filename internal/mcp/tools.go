package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jparise/gh-codesearch/internal/cache"
	"github.com/jparise/gh-codesearch/internal/github"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery    = -32004 // Query parameter is empty
)

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// handleSearchCode handles the search_code tool invocation. A failed search
// is reported as a tool error result; per-file download failures are part of
// the successful result.
func (s *Server) handleSearchCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	baseURL := getStringDefault(args, "url", s.opts.BaseURL)
	if baseURL == "" {
		baseURL = s.opts.BaseURL
	}
	if err := s.validateBaseURL(baseURL); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid url", map[string]interface{}{
			"param":  "url",
			"reason": err.Error(),
		})
	}

	searcher, err := s.searcher(baseURL)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to create searcher", map[string]interface{}{
			"error": err.Error(),
		})
	}

	result, err := searcher.Find(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := map[string]interface{}{
		"total_count":        result.TotalCount,
		"incomplete_results": result.Incomplete,
		"results":            result.Entries,
	}
	if result.Excluded > 0 {
		response["excluded"] = result.Excluded
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleCleanup handles the cleanup tool invocation
func (s *Server) handleCleanup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := cache.New(s.opts.CacheDir)
	if err := dir.Cleanup(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"removed": dir.Root(),
	})), nil
}

// validateBaseURL checks that a caller-supplied API URL is absolute and
// points at the configured API host, so the token never leaves it.
func (s *Server) validateBaseURL(baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return err
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("%q is not an absolute http(s) URL", baseURL)
	}

	want := github.HostFromURL(s.opts.BaseURL)
	if got := github.HostFromURL(baseURL); got != want {
		return fmt.Errorf("host %q does not match the configured host %q", got, want)
	}
	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
