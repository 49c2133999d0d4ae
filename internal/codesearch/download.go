package codesearch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jparise/gh-codesearch/internal/github"
	"github.com/jparise/gh-codesearch/internal/metrics"
	"golang.org/x/sync/semaphore"
)

// sharedDownloadTimeout bounds a download that outlives the caller that
// started it.
const sharedDownloadTimeout = 5 * time.Minute

// DownloadError is a failure to download a single search hit. It never
// affects other hits.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download file from %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// Download resolves a hit's contents URL to its raw download URL, fetches the
// file, and stores it in the scratch directory under a name derived from the
// hit's URL and name. If that file already exists, its path is returned
// without fetching the content again.
//
// Concurrent calls for the same hit share a single download. The shared
// download is not bound to any one caller's context: a canceled caller stops
// waiting and fails, while the others still receive the result.
func (s *Searcher) Download(ctx context.Context, item github.SearchResult) (string, error) {
	start := time.Now()
	path := s.cache.PathFor(item.URL, item.Name)

	ch := s.group.DoChan(path, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedDownloadTimeout)
		defer cancel()
		return s.download(flightCtx, item, path)
	})

	var (
		v   any
		err error
	)
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case res := <-ch:
		v, err = res.Val, res.Err
	}
	if err != nil {
		s.metrics.Download(metrics.ResultFailed, time.Since(start).Seconds())
		s.logger.DebugContext(ctx, "download failed", "url", item.URL, "error", err)
		return "", &DownloadError{URL: item.URL, Err: err}
	}

	result := v.(string)
	s.metrics.Download(result, time.Since(start).Seconds())
	s.logger.DebugContext(ctx, "download complete", "url", item.URL, "path", path, "result", result)

	return path, nil
}

// download performs the metadata and content fetches for one hit and returns
// the metrics result label.
func (s *Searcher) download(ctx context.Context, item github.SearchResult, path string) (string, error) {
	downloadURL, err := s.client.GetDownloadURL(ctx, item.URL)
	if err != nil {
		return "", err
	}

	if s.cache.Exists(path) {
		return metrics.ResultCached, nil
	}

	data, err := s.client.FetchContent(ctx, downloadURL)
	if err != nil {
		return "", err
	}

	if err := s.cache.Write(path, data); err != nil {
		return "", err
	}

	return metrics.ResultDownloaded, nil
}

// downloadAll downloads every hit concurrently and waits for all of them.
// The returned outcomes are aligned with items regardless of completion order.
func (s *Searcher) downloadAll(ctx context.Context, items []github.SearchResult) []Outcome {
	outcomes := make([]Outcome, len(items))

	var wg sync.WaitGroup
	sem := semaphore.NewWeighted(int64(s.opts.Jobs))

	for i, item := range items {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				outcomes[i] = Outcome{Err: &DownloadError{URL: item.URL, Err: err}}
				return
			}
			defer sem.Release(1)

			path, err := s.Download(ctx, item)
			outcomes[i] = Outcome{Path: path, Err: err}
		}()
	}

	wg.Wait()

	return outcomes
}
