// Package codesearch runs a code search and downloads every hit to a local
// scratch directory.
package codesearch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jparise/gh-codesearch/internal/cache"
	"github.com/jparise/gh-codesearch/internal/github"
	"github.com/jparise/gh-codesearch/internal/metrics"
	"github.com/jparise/gh-codesearch/internal/query"
	"golang.org/x/sync/singleflight"
)

// Searcher orchestrates the search-and-download process. It is safe for
// concurrent use.
type Searcher struct {
	client  *github.Client
	cache   *cache.Dir
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics
	group   singleflight.Group
}

// Result is the outcome of a search: the parsed query, the search totals, and
// one entry per hit in the API's order.
type Result struct {
	Query      query.SearchQuery
	TotalCount uint
	Incomplete bool
	Excluded   int // Hits dropped by exclude patterns
	Entries    []Entry
}

// New creates a new Searcher.
func New(opts Options) (*Searcher, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = github.DefaultBaseURL
	}
	if opts.CacheDir == "" {
		opts.CacheDir = cache.DefaultDir()
	}
	if opts.Jobs <= 0 {
		opts.Jobs = DefaultJobs
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	clientOpts := opts.ClientOpts
	if clientOpts.Host == "" {
		clientOpts.Host = github.HostFromURL(opts.BaseURL)
	}
	if clientOpts.Logger == nil {
		clientOpts.Logger = logger
	}
	if opts.Metrics != nil && clientOpts.OnRetry == nil {
		m := opts.Metrics
		clientOpts.OnRetry = func(method, _ string, _ int) {
			m.Retry(method)
		}
	}

	client, err := github.NewClient(clientOpts)
	if err != nil {
		return nil, err
	}

	return &Searcher{
		client:  client,
		cache:   cache.New(opts.CacheDir),
		opts:    opts,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Find parses rawQuery, runs the code search, downloads every hit and returns
// the aggregated result. Only a query or search failure is returned as an
// error; download failures are reported on the affected entries.
func (s *Searcher) Find(ctx context.Context, rawQuery string) (*Result, error) {
	q, err := query.Parse(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", rawQuery, err)
	}

	s.logger.DebugContext(ctx, "searching", "term", q.SearchTerm, "restrictions", q.Restrictions)

	results, err := s.client.SearchCode(ctx, s.opts.BaseURL, rawQuery)
	if err != nil {
		s.metrics.Search(err, 0)
		return nil, err
	}
	s.metrics.Search(nil, len(results.Items))

	if results.IncompleteResults {
		s.logger.WarnContext(ctx, "search results are incomplete", "total_count", results.TotalCount)
	}

	items, err := filterByExcludes(results.Items, s.opts.Excludes, s.opts.FullPath, s.opts.IgnoreCase)
	if err != nil {
		return nil, err
	}

	outcomes := s.downloadAll(ctx, items)

	return &Result{
		Query:      q,
		TotalCount: results.TotalCount,
		Incomplete: results.IncompleteResults,
		Excluded:   len(results.Items) - len(items),
		Entries:    Aggregate(q, items, outcomes),
	}, nil
}

// SearchAndDownload is Find, returning only the aggregated entries.
func (s *Searcher) SearchAndDownload(ctx context.Context, rawQuery string) ([]Entry, error) {
	result, err := s.Find(ctx, rawQuery)
	if err != nil {
		return nil, err
	}
	return result.Entries, nil
}

// Cleanup removes the scratch directory and every downloaded file.
func (s *Searcher) Cleanup() error {
	return s.cache.Cleanup()
}

// CacheDir returns the scratch directory used for downloads.
func (s *Searcher) CacheDir() string {
	return s.cache.Root()
}

// SearchAndDownload searches baseURL with the given token and downloads every
// hit into the default scratch directory.
func SearchAndDownload(ctx context.Context, rawQuery, baseURL, token string) ([]Entry, error) {
	s, err := New(Options{
		BaseURL:    baseURL,
		ClientOpts: github.ClientOptions{AuthToken: token},
	})
	if err != nil {
		return nil, err
	}
	return s.SearchAndDownload(ctx, rawQuery)
}

// Cleanup removes the default scratch directory.
func Cleanup() error {
	return cache.New(cache.DefaultDir()).Cleanup()
}
