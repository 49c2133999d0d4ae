package github

import (
	"context"
	"errors"
	"testing"

	"gopkg.in/h2non/gock.v1"
)

const testContentsURL = "https://api.github.com/repositories/1/contents/README.md?ref=abc"

func TestGetDownloadURL(t *testing.T) {
	tests := []struct {
		name          string
		mockStatus    int
		mockBody      string
		want          string
		wantAPIErr    string
		wantDecodeErr bool
	}{
		{
			name:       "resolves download url",
			mockStatus: 200,
			mockBody:   `{"name": "README.md", "download_url": "https://raw.githubusercontent.com/cli/cli/abc/README.md"}`,
			want:       "https://raw.githubusercontent.com/cli/cli/abc/README.md",
		},
		{
			name:       "not found",
			mockStatus: 404,
			mockBody:   `{"message": "Not Found"}`,
			wantAPIErr: "Not Found",
		},
		{
			name:          "missing download url",
			mockStatus:    200,
			mockBody:      `{"name": "README.md", "download_url": null}`,
			wantDecodeErr: true,
		},
		{
			name:          "malformed body",
			mockStatus:    200,
			mockBody:      `[1, 2, 3]`,
			wantDecodeErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertMocksCalled(t)

			gock.New("https://api.github.com").
				Get("/repositories/1/contents/README.md").
				MatchParam("ref", "abc").
				Reply(tt.mockStatus).
				BodyString(tt.mockBody)

			client := testClient(t)
			got, err := client.GetDownloadURL(context.Background(), testContentsURL)

			switch {
			case tt.wantAPIErr != "":
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("GetDownloadURL() error = %v, want *APIError", err)
				}
				if apiErr.Message != tt.wantAPIErr {
					t.Errorf("APIError.Message = %q, want %q", apiErr.Message, tt.wantAPIErr)
				}
			case tt.wantDecodeErr:
				var decodeErr *DecodeError
				if !errors.As(err, &decodeErr) {
					t.Fatalf("GetDownloadURL() error = %v, want *DecodeError", err)
				}
				if decodeErr.URL != testContentsURL {
					t.Errorf("DecodeError.URL = %q, want %q", decodeErr.URL, testContentsURL)
				}
			default:
				if err != nil {
					t.Fatalf("GetDownloadURL() unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("GetDownloadURL() = %q, want %q", got, tt.want)
				}
			}
		})
	}
}

func TestFetchContent(t *testing.T) {
	t.Run("returns body bytes", func(t *testing.T) {
		assertMocksCalled(t)

		gock.New("https://raw.githubusercontent.com").
			Get("/cli/cli/abc/main.go").
			Reply(200).
			BodyString("package main\n")

		client := testClient(t)
		got, err := client.FetchContent(context.Background(), "https://raw.githubusercontent.com/cli/cli/abc/main.go")
		if err != nil {
			t.Fatalf("FetchContent() unexpected error: %v", err)
		}
		if string(got) != "package main\n" {
			t.Errorf("FetchContent() = %q, want %q", got, "package main\n")
		}
	})

	t.Run("error response", func(t *testing.T) {
		assertMocksCalled(t)

		gock.New("https://raw.githubusercontent.com").
			Get("/cli/cli/abc/gone.go").
			Reply(410).
			JSON(`{"message": "Gone"}`)

		client := testClient(t)
		_, err := client.FetchContent(context.Background(), "https://raw.githubusercontent.com/cli/cli/abc/gone.go")

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("FetchContent() error = %v, want *APIError", err)
		}
	})
}
