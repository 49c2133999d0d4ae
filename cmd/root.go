package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cli/go-gh/v2/pkg/auth"
	"github.com/cli/go-gh/v2/pkg/term"
	"github.com/jparise/gh-codesearch/internal/codesearch"
	"github.com/jparise/gh-codesearch/internal/github"
	"github.com/jparise/gh-codesearch/internal/metrics"
	"github.com/spf13/cobra"
)

// colorMode represents when to use colored output.
type colorMode string

const (
	colorAuto   colorMode = "auto"
	colorAlways colorMode = "always"
	colorNever  colorMode = "never"
)

// String is used both by fmt.Print and by Cobra in help text.
func (c *colorMode) String() string {
	return string(*c)
}

// Set must have pointer receiver to validate and set the value.
func (c *colorMode) Set(v string) error {
	switch v {
	case "auto", "always", "never":
		*c = colorMode(v)
		return nil
	default:
		return fmt.Errorf("must be one of \"auto\", \"always\", or \"never\"")
	}
}

// Type is only used in help text.
func (c *colorMode) Type() string {
	return "colorMode"
}

// outputFormat adapts codesearch.Format to a flag value.
type outputFormat codesearch.Format

func (f *outputFormat) String() string {
	return string(*f)
}

func (f *outputFormat) Set(v string) error {
	switch codesearch.Format(v) {
	case codesearch.FormatTable, codesearch.FormatJSON, codesearch.FormatYAML:
		*f = outputFormat(v)
		return nil
	default:
		return fmt.Errorf("must be one of \"table\", \"json\", or \"yaml\"")
	}
}

func (f *outputFormat) Type() string {
	return "format"
}

const (
	envURL      = "GH_CODESEARCH_URL"
	envCacheDir = "GH_CODESEARCH_CACHE_DIR"
)

var (
	version = "dev"

	// Flags.
	color        = colorAuto
	format       = outputFormat(codesearch.FormatTable)
	apiURL       string
	token        string
	cacheDir     string
	excludes     []string
	fullPath     bool
	ignoreCase   bool
	jobs         int
	hyperlinks   bool
	timeout      time.Duration
	httpCacheTTL time.Duration
	metricsFile  string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "gh-codesearch <query>...",
	Short: "Search GitHub code and download every matching file",
	Long: `gh-codesearch runs a GitHub code search and downloads every matching
file into a local scratch directory.

<query> is free text followed by optional key:value qualifiers. Multiple
arguments are joined with spaces. The text before the first qualifier is the
search term; every qualifier is sent to the API unchanged.

  language:go    Restrict to a language
  repo:cli/cli   Restrict to a repository
  path:cmd/      Restrict to a path

Downloaded files stay in the scratch directory until "gh codesearch cleanup"
removes it. Failed downloads are reported per result and do not fail the
search.

Examples:
  gh codesearch "http.Client language:go"
  gh codesearch NewRESTClient repo:cli/go-gh
  gh codesearch --format json "TODO org:cli" -E "**/vendor/**" -p
  gh codesearch --url https://ghe.example.com/api/v3 "deploy path:.github"`,
	Version: version,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if jobs < 1 || jobs > 100 {
			return fmt.Errorf("--jobs must be between 1 and 100, got %d", jobs)
		}
		if timeout < 0 {
			return fmt.Errorf("--timeout cannot be negative")
		}
		if httpCacheTTL < 0 {
			return fmt.Errorf("--http-cache-ttl cannot be negative")
		}
		if strings.TrimSpace(apiURL) == "" {
			return fmt.Errorf("--url cannot be empty")
		}
		return nil
	},
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "url", getEnv(envURL, github.DefaultBaseURL),
		"API base URL (env "+envURL+")")
	rootCmd.PersistentFlags().StringVar(&token, "token", "",
		"auth token (default: token from gh auth)")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", getEnv(envCacheDir, ""),
		"scratch directory for downloads (env "+envCacheDir+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log requests and retries to stderr")

	rootCmd.Flags().Var(&color, "color",
		"colorize output: auto, always, never")
	rootCmd.Flags().Var(&format, "format",
		"output format: table, json, yaml")
	rootCmd.Flags().BoolVar(&hyperlinks, "hyperlinks", false,
		"link results to their GitHub pages in terminal output")
	rootCmd.Flags().StringSliceVarP(&excludes, "exclude", "E", []string{},
		"exclude patterns (can be specified multiple times)")
	rootCmd.Flags().BoolVarP(&fullPath, "full-path", "p", false,
		"match exclude patterns against full path (default: basename only)")
	rootCmd.Flags().BoolVarP(&ignoreCase, "ignore-case", "i", false,
		"case-insensitive exclude matching")
	rootCmd.Flags().IntVarP(&jobs, "jobs", "j", codesearch.DefaultJobs,
		"maximum concurrent downloads")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 0,
		"overall time limit (e.g., 30s, 2m; 0 for none)")
	rootCmd.Flags().DurationVar(&httpCacheTTL, "http-cache-ttl", 0,
		"cache API responses for this long (e.g., 1h; 0 disables)")
	rootCmd.Flags().StringVar(&metricsFile, "metrics-file", "",
		"write Prometheus metrics to this file on exit")

	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(mcpCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

// getEnv returns the value of the environment variable key, or defaultValue
// if it is unset or empty.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// resolveToken returns the --token value, falling back to the token gh has
// stored for the API host.
func resolveToken(flagToken, baseURL string) (string, error) {
	if flagToken != "" {
		return flagToken, nil
	}

	host := github.HostFromURL(baseURL)
	if t, _ := auth.TokenForHost(host); t != "" {
		return t, nil
	}

	return "", fmt.Errorf("no auth token for %s: run \"gh auth login\" or pass --token", host)
}

// newLogger returns a debug-level text logger on w when verbose is set, and a
// logger that discards everything otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// searchOptions builds the codesearch options shared by the root and mcp
// commands.
func searchOptions(logger *slog.Logger, m *metrics.Metrics) (codesearch.Options, error) {
	authToken, err := resolveToken(token, apiURL)
	if err != nil {
		return codesearch.Options{}, err
	}

	return codesearch.Options{
		BaseURL:    apiURL,
		CacheDir:   cacheDir,
		Excludes:   excludes,
		FullPath:   fullPath,
		IgnoreCase: ignoreCase,
		ClientOpts: github.ClientOptions{
			AuthToken: authToken,
			CacheTTL:  httpCacheTTL,
		},
		Jobs:    jobs,
		Logger:  logger,
		Metrics: m,
	}, nil
}

func run(cmd *cobra.Command, args []string) (err error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	terminal := term.FromEnv()

	var colorize bool
	switch color {
	case colorAlways:
		colorize = true
	case colorNever:
		colorize = false
	case colorAuto:
		colorize = terminal.IsColorEnabled()
	}

	width := 0
	if terminal.IsTerminalOutput() {
		if w, _, err := terminal.Size(); err == nil {
			width = w
		}
	}

	out := codesearch.NewOutput(cmd.OutOrStdout(), cmd.ErrOrStderr(), colorize, hyperlinks, width)
	logger := newLogger(cmd.ErrOrStderr(), verbose)

	var m *metrics.Metrics
	if metricsFile != "" {
		m = metrics.New()
		defer func() {
			if werr := m.WriteToTextfile(metricsFile); werr != nil && err == nil {
				err = werr
			}
		}()
	}

	opts, err := searchOptions(logger, m)
	if err != nil {
		return err
	}

	searcher, err := codesearch.New(opts)
	if err != nil {
		return err
	}

	result, err := searcher.Find(ctx, strings.Join(args, " "))
	if err != nil {
		if rerr := out.RenderError(err, codesearch.Format(format)); rerr != nil {
			logger.Debug("failed to render error", "error", rerr)
		}
		return err
	}

	if result.Incomplete {
		out.Warningf("search timed out; results are incomplete (%d total matches)", result.TotalCount)
	}
	if result.Excluded > 0 {
		out.Infof("Excluded %d result(s) by pattern", result.Excluded)
	}

	if err := out.Render(result.Entries, codesearch.Format(format)); err != nil {
		return err
	}

	failed := 0
	for _, entry := range result.Entries {
		if !entry.OK() {
			failed++
		}
	}
	if failed > 0 {
		out.Warningf("%d of %d downloads failed", failed, len(result.Entries))
	}

	return nil
}
