// Package mcp exposes code search over the Model Context Protocol.
//
// Two tools are registered:
//   - search_code: run a query and download every hit to the scratch directory
//   - cleanup: remove the scratch directory
//
// The server talks JSON-RPC over stdio and is started by `gh codesearch mcp`.
package mcp

import (
	"context"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/jparise/gh-codesearch/internal/cache"
	"github.com/jparise/gh-codesearch/internal/codesearch"
	"github.com/jparise/gh-codesearch/internal/github"
)

// ServerName is the MCP server name
const ServerName = "gh-codesearch"

// Server wraps the MCP server with one Searcher per API base URL.
type Server struct {
	mcp  *server.MCPServer
	opts codesearch.Options

	mu        sync.Mutex
	searchers map[string]*codesearch.Searcher
}

// NewServer creates a new MCP server. opts configures every Searcher the
// server creates; only BaseURL varies per tool call.
func NewServer(opts codesearch.Options, version string) (*Server, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = github.DefaultBaseURL
	}
	if opts.CacheDir == "" {
		opts.CacheDir = cache.DefaultDir()
	}

	s := &Server{
		mcp:       server.NewMCPServer(ServerName, version),
		opts:      opts,
		searchers: make(map[string]*codesearch.Searcher),
	}

	// Fail early on a bad configuration, such as a missing token.
	if _, err := s.searcher(opts.BaseURL); err != nil {
		return nil, err
	}

	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchCodeTool(), s.handleSearchCode)
	s.mcp.AddTool(cleanupTool(), s.handleCleanup)
}

// searcher returns the Searcher for baseURL, creating it on first use.
func (s *Server) searcher(baseURL string) (*codesearch.Searcher, error) {
	key := strings.TrimRight(baseURL, "/")

	s.mu.Lock()
	defer s.mu.Unlock()

	if searcher, ok := s.searchers[key]; ok {
		return searcher, nil
	}

	opts := s.opts
	opts.BaseURL = key
	opts.ClientOpts.Host = ""

	searcher, err := codesearch.New(opts)
	if err != nil {
		return nil, err
	}
	s.searchers[key] = searcher
	return searcher, nil
}
