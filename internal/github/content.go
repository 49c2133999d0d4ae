package github

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetDownloadURL resolves a contents API URL (a search hit's URL) into the
// raw download URL of the file.
func (c *Client) GetDownloadURL(ctx context.Context, contentsURL string) (string, error) {
	resp, err := c.get(ctx, contentsURL)
	if err != nil {
		return "", err
	}

	body, err := readAll(resp)
	if err != nil {
		return "", fmt.Errorf("failed to read file metadata: %w", err)
	}

	var content contentResponse
	if err := json.Unmarshal(body, &content); err != nil {
		return "", &DecodeError{URL: contentsURL, Err: err}
	}
	if content.DownloadURL == "" {
		return "", &DecodeError{URL: contentsURL, Err: fmt.Errorf("missing download_url")}
	}

	return content.DownloadURL, nil
}

// FetchContent downloads the raw bytes at downloadURL.
func (c *Client) FetchContent(ctx context.Context, downloadURL string) ([]byte, error) {
	resp, err := c.get(ctx, downloadURL)
	if err != nil {
		return nil, err
	}

	data, err := readAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	return data, nil
}
