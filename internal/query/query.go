// Package query splits a raw code-search query into its free-text term and
// its key:value restrictions.
package query

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoSearchTerm is returned when a query yields no search term token.
var ErrNoSearchTerm = errors.New("failed to parse search term")

var (
	// markerRe matches the start of a restriction, e.g. "language:".
	markerRe = regexp.MustCompile(`[A-Za-z0-9_-]+:`)
	// restrictionRe matches a complete restriction, e.g. "language:go". RE2's
	// \s is ASCII-only, so the value class also stops at vertical tab, NEL
	// and Unicode separators such as NBSP.
	restrictionRe = regexp.MustCompile(`([A-Za-z0-9_-]+):([^\s\v\x{85}\p{Z}]+)`)
)

// SearchQuery is a parsed code-search query.
type SearchQuery struct {
	SearchTerm   string
	Restrictions map[string]string
}

// Parse splits raw into a search term and its restrictions.
//
// The search term is everything before the first "key:" marker, trimmed. Each
// restriction value runs until the next Unicode whitespace, and a repeated key
// overwrites the earlier value.
func Parse(raw string) (SearchQuery, error) {
	tokens := markerRe.Split(raw, 2)
	if len(tokens) == 0 {
		return SearchQuery{}, ErrNoSearchTerm
	}

	restrictions := make(map[string]string)
	for _, m := range restrictionRe.FindAllStringSubmatch(raw, -1) {
		restrictions[m[1]] = m[2]
	}

	return SearchQuery{
		SearchTerm:   strings.TrimSpace(tokens[0]),
		Restrictions: restrictions,
	}, nil
}
