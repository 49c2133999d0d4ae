// Package metrics provides Prometheus metrics for code-search operations.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Download results recorded by Metrics.Download.
const (
	ResultDownloaded = "downloaded"
	ResultCached     = "cached"
	ResultFailed     = "failed"
)

// Metrics holds Prometheus metrics for searches and downloads. Each instance
// owns its registry so several can coexist in one process. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Searches         *prometheus.CounterVec
	SearchResults    prometheus.Counter
	Downloads        *prometheus.CounterVec
	DownloadDuration prometheus.Histogram
	Retries          *prometheus.CounterVec
}

// New creates and registers new Prometheus metrics.
func New() (metrics *Metrics) {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	metrics = &Metrics{
		registry: reg,
		Searches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gh_codesearch_searches_total",
				Help: "Total number of code-search requests",
			},
			[]string{"status"},
		),
		SearchResults: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gh_codesearch_search_results_total",
				Help: "Total number of search hits returned",
			},
		),
		Downloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gh_codesearch_downloads_total",
				Help: "Total number of per-hit downloads by result",
			},
			[]string{"result"},
		),
		DownloadDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gh_codesearch_download_duration_seconds",
				Help:    "Time taken to resolve and download a search hit",
				Buckets: prometheus.DefBuckets,
			},
		),
		Retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gh_codesearch_http_retries_total",
				Help: "Total number of retried HTTP requests",
			},
			[]string{"method"},
		),
	}
	return metrics
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Search records the outcome of a search request and its hit count.
func (m *Metrics) Search(err error, hits int) {
	if m == nil {
		return
	}
	if err != nil {
		m.Searches.WithLabelValues("error").Inc()
		return
	}
	m.Searches.WithLabelValues("ok").Inc()
	m.SearchResults.Add(float64(hits))
}

// Download records a per-hit download result and how long it took.
func (m *Metrics) Download(result string, seconds float64) {
	if m == nil {
		return
	}
	m.Downloads.WithLabelValues(result).Inc()
	m.DownloadDuration.Observe(seconds)
}

// Retry records a retried HTTP request.
func (m *Metrics) Retry(method string) {
	if m == nil {
		return
	}
	m.Retries.WithLabelValues(method).Inc()
}

// WriteToTextfile writes the metrics in the Prometheus text format to path,
// for collection by node_exporter's textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
