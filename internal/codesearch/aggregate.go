package codesearch

import (
	"fmt"

	"github.com/jparise/gh-codesearch/internal/github"
	"github.com/jparise/gh-codesearch/internal/query"
)

// Outcome is the result of downloading one search hit: either a local path
// or an error, never both.
type Outcome struct {
	Path string
	Err  error
}

// Entry is one aggregated search result: the hit's metadata, the query's
// search term, a display label, and either a local path or an error.
type Entry struct {
	Name        string            `json:"name" yaml:"name"`
	Path        string            `json:"path" yaml:"path"`
	SHA         string            `json:"sha" yaml:"sha"`
	URL         string            `json:"url" yaml:"url"`
	GitURL      string            `json:"git_url" yaml:"git_url"`
	HTMLURL     string            `json:"html_url" yaml:"html_url"`
	Score       float64           `json:"score" yaml:"score"`
	Repository  github.Repository `json:"repository" yaml:"repository"`
	SearchTerm  string            `json:"original_search_term" yaml:"original_search_term"`
	DisplayName string            `json:"result_entry_full_name" yaml:"result_entry_full_name"`
	LocalPath   string            `json:"downloaded_local_path,omitempty" yaml:"downloaded_local_path,omitempty"`
	Error       string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the entry's download succeeded.
func (e Entry) OK() bool {
	return e.Error == ""
}

// Aggregate joins search hits with their download outcomes. outcomes must be
// aligned 1:1 with items; the output preserves the order of items.
func Aggregate(q query.SearchQuery, items []github.SearchResult, outcomes []Outcome) []Entry {
	if len(items) != len(outcomes) {
		panic(fmt.Sprintf("codesearch: %d outcomes for %d items", len(outcomes), len(items)))
	}

	entries := make([]Entry, len(items))
	for i, item := range items {
		entry := Entry{
			Name:        item.Name,
			Path:        item.Path,
			SHA:         item.SHA,
			URL:         item.URL,
			GitURL:      item.GitURL,
			HTMLURL:     item.HTMLURL,
			Score:       item.Score,
			Repository:  item.Repository,
			SearchTerm:  q.SearchTerm,
			DisplayName: item.DisplayName(),
		}

		if err := outcomes[i].Err; err != nil {
			entry.Error = err.Error()
		} else {
			entry.LocalPath = outcomes[i].Path
		}

		entries[i] = entry
	}

	return entries
}
