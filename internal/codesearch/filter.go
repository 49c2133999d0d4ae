package codesearch

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/jparise/gh-codesearch/internal/github"
)

// filterByExcludes returns the search hits that no exclude pattern matches,
// in their original ranking order. Patterns see the hit's file name unless
// fullPath is set, in which case they see its repository-relative path.
func filterByExcludes(hits []github.SearchResult, excludes []string, fullPath, ignoreCase bool) ([]github.SearchResult, error) {
	if len(excludes) == 0 {
		return hits, nil
	}

	fold := func(s string) string { return s }
	if ignoreCase {
		fold = strings.ToLower
	}

	patterns := make([]string, len(excludes))
	for i, exclude := range excludes {
		patterns[i] = fold(exclude)
	}

	kept := make([]github.SearchResult, 0, len(hits))
	for _, hit := range hits {
		subject := hit.Path
		if !fullPath {
			subject = path.Base(subject)
		}

		excluded, err := matchesAny(patterns, fold(subject))
		if err != nil {
			return nil, fmt.Errorf("bad exclude pattern for %s: %w", hit.DisplayName(), err)
		}
		if !excluded {
			kept = append(kept, hit)
		}
	}

	return kept, nil
}

// matchesAny reports whether subject matches one of the doublestar patterns.
func matchesAny(patterns []string, subject string) (bool, error) {
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, subject)
		if err != nil {
			return false, fmt.Errorf("%q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
