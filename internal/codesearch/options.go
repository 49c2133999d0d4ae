package codesearch

import (
	"log/slog"

	"github.com/jparise/gh-codesearch/internal/github"
	"github.com/jparise/gh-codesearch/internal/metrics"
)

// DefaultJobs is the default download concurrency. A search page holds at
// most 100 hits, so by default every download of a page starts at once.
const DefaultJobs = 100

// Options contains all search parameters.
type Options struct {
	BaseURL    string   // API base URL (default github.DefaultBaseURL)
	CacheDir   string   // Scratch directory for downloaded files
	Excludes   []string // Exclude patterns, matched against hit paths
	FullPath   bool     // Match excludes against the full path (default: basename only)
	IgnoreCase bool
	ClientOpts github.ClientOptions
	Jobs       int // Maximum concurrent downloads (0 = DefaultJobs)
	Logger     *slog.Logger
	Metrics    *metrics.Metrics // Optional
}
