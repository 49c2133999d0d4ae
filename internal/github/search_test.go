package github

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"gopkg.in/h2non/gock.v1"
)

// regexpQuote anchors a literal value for gock's regexp matchers.
func regexpQuote(s string) string {
	return "^" + regexp.QuoteMeta(s) + "$"
}

func TestSearchCode(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		mockStatus     int
		mockBody       string
		mockType       string
		wantCount      int
		wantTotal      uint
		wantIncomplete bool
		wantAPIErr     string
		wantDecodeErr  bool
	}{
		{
			name:       "results",
			query:      "foo bar language:go",
			mockStatus: 200,
			mockBody: `{"total_count": 2, "incomplete_results": false, "items": [
				{"name": "main.go", "path": "cmd/main.go", "sha": "abc", "url": "https://api.github.com/repositories/1/contents/cmd/main.go?ref=abc", "git_url": "https://api.github.com/repositories/1/git/blobs/abc", "html_url": "https://github.com/cli/cli/blob/abc/cmd/main.go", "score": 1.5, "repository": {"name": "cli", "full_name": "cli/cli"}},
				{"name": "util.go", "path": "util.go", "sha": "def", "url": "https://api.github.com/repositories/2/contents/util.go?ref=def", "git_url": "", "html_url": "", "score": 1, "repository": {"name": "go-gh", "full_name": "cli/go-gh"}}
			]}`,
			wantCount: 2,
			wantTotal: 2,
		},
		{
			name:           "incomplete results",
			query:          "foo",
			mockStatus:     200,
			mockBody:       `{"total_count": 5000, "incomplete_results": true, "items": []}`,
			wantCount:      0,
			wantTotal:      5000,
			wantIncomplete: true,
		},
		{
			name:       "api error",
			query:      "foo",
			mockStatus: 403,
			mockBody:   `{"message": "rate limited"}`,
			wantAPIErr: "rate limited",
		},
		{
			name:       "validation error",
			query:      "language:go",
			mockStatus: 422,
			mockBody:   `{"message": "Validation Failed"}`,
			wantAPIErr: "Validation Failed",
		},
		{
			name:          "undecodable success body",
			query:         "foo",
			mockStatus:    200,
			mockBody:      `{"items": "nope"}`,
			wantDecodeErr: true,
		},
		{
			name:          "undecodable error body",
			query:         "foo",
			mockStatus:    404,
			mockBody:      `not json`,
			wantDecodeErr: true,
		},
		{
			name:          "json error body without message",
			query:         "foo",
			mockStatus:    404,
			mockBody:      `{"documentation_url": "https://docs.github.com"}`,
			mockType:      "application/json",
			wantDecodeErr: true,
		},
		{
			name:       "api error with text content type",
			query:      "foo",
			mockStatus: 403,
			mockBody:   `{"message": "rate limited"}`,
			mockType:   "text/plain; charset=utf-8",
			wantAPIErr: "rate limited",
		},
		{
			name:          "html error page",
			query:         "foo",
			mockStatus:    404,
			mockBody:      `<html><body><h1>404 Not Found</h1></body></html>`,
			mockType:      "text/html",
			wantDecodeErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertMocksCalled(t)

			gock.New("https://api.github.com").
				Get("/search/code").
				MatchParam("q", regexpQuote(tt.query)).
				Reply(tt.mockStatus).
				SetHeader("Content-Type", tt.mockType).
				BodyString(tt.mockBody)

			client := testClient(t)
			got, err := client.SearchCode(context.Background(), DefaultBaseURL, tt.query)

			if tt.wantAPIErr != "" {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("SearchCode() error = %v, want *APIError", err)
				}
				if apiErr.Message != tt.wantAPIErr {
					t.Errorf("APIError.Message = %q, want %q", apiErr.Message, tt.wantAPIErr)
				}
				if apiErr.StatusCode != tt.mockStatus {
					t.Errorf("APIError.StatusCode = %d, want %d", apiErr.StatusCode, tt.mockStatus)
				}
				return
			}

			if tt.wantDecodeErr {
				var decodeErr *DecodeError
				if !errors.As(err, &decodeErr) {
					t.Fatalf("SearchCode() error = %v, want *DecodeError", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("SearchCode() unexpected error: %v", err)
			}
			if len(got.Items) != tt.wantCount {
				t.Errorf("SearchCode() returned %d items, want %d", len(got.Items), tt.wantCount)
			}
			if got.TotalCount != tt.wantTotal {
				t.Errorf("TotalCount = %d, want %d", got.TotalCount, tt.wantTotal)
			}
			if got.IncompleteResults != tt.wantIncomplete {
				t.Errorf("IncompleteResults = %v, want %v", got.IncompleteResults, tt.wantIncomplete)
			}
		})
	}
}

func TestSearchCode_PreservesOrder(t *testing.T) {
	assertMocksCalled(t)

	gock.New("https://ghe.example.com").
		Get("/api/v3/search/code").
		Reply(200).
		JSON(`{"total_count": 3, "incomplete_results": false, "items": [
			{"name": "c.go", "path": "c.go", "repository": {"full_name": "o/r"}},
			{"name": "a.go", "path": "a.go", "repository": {"full_name": "o/r"}},
			{"name": "b.go", "path": "b.go", "repository": {"full_name": "o/r"}}
		]}`)

	client := testClient(t)
	got, err := client.SearchCode(context.Background(), "https://ghe.example.com/api/v3/", "foo")
	if err != nil {
		t.Fatalf("SearchCode() unexpected error: %v", err)
	}

	want := []string{"c.go", "a.go", "b.go"}
	for i, item := range got.Items {
		if item.Name != want[i] {
			t.Errorf("Items[%d].Name = %q, want %q", i, item.Name, want[i])
		}
	}
	if got.Items[0].DisplayName() != "o/r: c.go" {
		t.Errorf("DisplayName() = %q, want %q", got.Items[0].DisplayName(), "o/r: c.go")
	}
}
