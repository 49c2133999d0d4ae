package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// SearchCode runs a code search against baseURL. The raw query, restrictions
// included, is sent as-is in the q parameter.
func (c *Client) SearchCode(ctx context.Context, baseURL, rawQuery string) (*SearchResults, error) {
	endpoint := fmt.Sprintf("%s/search/code?q=%s",
		strings.TrimRight(baseURL, "/"), url.QueryEscape(rawQuery))

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("code search failed: %w", err)
	}

	body, err := readAll(resp)
	if err != nil {
		return nil, fmt.Errorf("code search failed: %w", err)
	}

	var results SearchResults
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("code search failed: %w", &DecodeError{URL: endpoint, Err: err})
	}

	return &results, nil
}
