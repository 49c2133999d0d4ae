// Package github provides the GitHub code-search API client for gh-codesearch.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	// DefaultBaseURL is the public GitHub REST API endpoint.
	DefaultBaseURL = "https://api.github.com"

	// APIVersion pins the REST API version sent with every request.
	APIVersion = "2022-11-28"

	// UserAgent identifies this client to the API.
	UserAgent = "gh-codesearch"

	// MaxRetries is the number of retries after the first attempt of a
	// request that failed transiently.
	MaxRetries = 3

	defaultRetryWaitMin = 500 * time.Millisecond
	defaultRetryWaitMax = 10 * time.Second
)

// ClientOptions configures the GitHub API client.
type ClientOptions struct {
	AuthToken string
	// Host is the API hostname. It defaults to the host of DefaultBaseURL.
	Host string

	// CacheDir and CacheTTL configure go-gh's HTTP response cache, which is
	// only enabled when CacheTTL is positive.
	CacheDir string
	CacheTTL time.Duration

	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Transport is the underlying round tripper; http.DefaultTransport when nil.
	Transport http.RoundTripper
	Logger    *slog.Logger

	// OnRetry, when set, is called before every retried attempt.
	OnRetry func(method, url string, attempt int)
}

// Client wraps a go-gh HTTP client. It holds no query-specific state and is
// safe for concurrent use.
type Client struct {
	http *http.Client
}

// NewClient creates a new GitHub API client with the given options.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.AuthToken == "" {
		return nil, fmt.Errorf("failed to create GitHub client: auth token is required")
	}

	if opts.Host == "" {
		opts.Host = HostFromURL(DefaultBaseURL)
	}

	apiOpts := api.ClientOptions{
		AuthToken:   opts.AuthToken,
		Host:        opts.Host,
		Headers:     Headers(opts.AuthToken),
		Transport:   newRetryTransport(opts),
		CacheDir:    opts.CacheDir,
		CacheTTL:    opts.CacheTTL,
		EnableCache: opts.CacheTTL > 0,
	}

	httpClient, err := api.NewHTTPClient(apiOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	return &Client{
		http: httpClient,
	}, nil
}

// Headers returns the fixed headers sent with every request. go-gh drops the
// Authorization header for hosts outside the client's domain.
func Headers(token string) map[string]string {
	return map[string]string{
		"Authorization":        "Bearer " + token,
		"X-GitHub-Api-Version": APIVersion,
		"User-Agent":           UserAgent,
		"Accept":               "application/vnd.github+json",
	}
}

// newRetryTransport wraps the base transport with exponential-backoff retries.
// Network errors, 408s, 429s and 5xx responses are retried up to MaxRetries times;
// everything else is returned as-is. Once retries are exhausted the last
// response is passed through so the API error body can still be decoded.
func newRetryTransport(opts ClientOptions) http.RoundTripper {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Transport: &authTransport{token: opts.AuthToken, host: opts.Host, base: base}}
	rc.RetryMax = MaxRetries
	rc.RetryWaitMin = defaultRetryWaitMin
	rc.RetryWaitMax = defaultRetryWaitMax
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		rc.RetryWaitMax = opts.RetryWaitMax
	}
	rc.Backoff = retryablehttp.DefaultBackoff
	rc.CheckRetry = checkRetry
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	// Silent unless the caller supplies a logger.
	rc.Logger = nil
	if opts.Logger != nil {
		rc.Logger = opts.Logger
	}
	if opts.OnRetry != nil {
		rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
			if attempt > 0 {
				opts.OnRetry(req.Method, req.URL.String(), attempt)
			}
		}
	}

	return &retryablehttp.RoundTripper{Client: rc}
}

// checkRetry is retryablehttp's default policy plus 408 Request Timeout.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && ctx.Err() == nil && resp != nil && resp.StatusCode == http.StatusRequestTimeout {
		return true, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// authTransport attaches the bearer token to requests for GitHub-owned
// hosts that go-gh does not authenticate, such as raw.githubusercontent.com.
// Any other host never receives the token.
type authTransport struct {
	token string
	host  string
	base  http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Authorization") == "" && trustedHost(req.URL.Hostname(), t.host) {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	return t.base.RoundTrip(req)
}

// trustedHost reports whether requests to hostname may carry the token for
// apiHost: the API host's own domain and, for github.com, the raw content
// domain.
func trustedHost(hostname, apiHost string) bool {
	hostname = strings.ToLower(hostname)
	apiHost = strings.ToLower(apiHost)

	if isSameDomain(hostname, apiHost) {
		return true
	}
	return apiHost == "github.com" && isSameDomain(hostname, "githubusercontent.com")
}

func isSameDomain(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// get issues a GET request against an absolute URL and returns the successful
// response. Non-2xx responses are converted to *APIError when the body is a
// GitHub error payload and to *DecodeError otherwise, whatever the response's
// content type.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorFromResponse(rawURL, resp)
	}

	return resp, nil
}

// errorFromResponse reads and closes an unsuccessful response.
func errorFromResponse(rawURL string, resp *http.Response) error {
	body, err := readAll(resp)
	if err != nil {
		return &DecodeError{URL: rawURL, Err: err}
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return &DecodeError{URL: rawURL, Err: fmt.Errorf("HTTP %d: %w", resp.StatusCode, err)}
	}
	if payload.Message == "" {
		return &DecodeError{URL: rawURL, Err: fmt.Errorf("HTTP %d: error body has no message", resp.StatusCode)}
	}

	return &APIError{StatusCode: resp.StatusCode, Message: payload.Message}
}

// readAll reads and closes a response body.
func readAll(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// HostFromURL returns the hostname go-gh should associate with an API base
// URL. The public API host maps to "github.com".
func HostFromURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return "github.com"
	}

	host := strings.ToLower(u.Hostname())
	if host == "api.github.com" {
		return "github.com"
	}
	return host
}
