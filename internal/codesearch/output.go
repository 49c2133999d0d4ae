package codesearch

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/cli/go-gh/v2/pkg/tableprinter"
	"github.com/mgutz/ansi"
	"gopkg.in/yaml.v3"
)

// Format selects how entries are rendered.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Output handles all output formatting with optional color and hyperlink support.
type Output struct {
	mu         sync.Mutex
	stdout     io.Writer
	stderr     io.Writer
	width      int
	hyperlinks bool

	cyan   func(string) string
	green  func(string) string
	white  func(string) string
	yellow func(string) string
	red    func(string) string
}

// NewOutput creates a new Output with optional color and hyperlink support.
// A positive width renders tables for a terminal of that width; zero renders
// tab-separated rows.
func NewOutput(stdout, stderr io.Writer, colorize, hyperlinks bool, width int) *Output {
	color := func(name string) func(string) string {
		if colorize {
			return ansi.ColorFunc(name)
		}
		return ansi.ColorFunc("")
	}

	return &Output{
		stdout:     stdout,
		stderr:     stderr,
		width:      width,
		hyperlinks: hyperlinks,
		cyan:       color("cyan"),
		green:      color("green+b"),
		white:      color("white"),
		yellow:     color("yellow"),
		red:        color("red+b"),
	}
}

func makeHyperlink(url, text string) string {
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

// Render writes entries in the given format.
func (o *Output) Render(entries []Entry, format Format) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch format {
	case FormatJSON:
		return o.writeJSON(entries)
	case FormatYAML:
		return o.writeYAML(entries)
	case FormatTable, "":
		return o.writeTable(entries)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// RenderError writes a top-level failure. Structured formats receive an
// {"error": ...} document so hosts can always parse stdout; tables write
// nothing and leave reporting to the caller.
func (o *Output) RenderError(err error, format Format) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	doc := struct {
		Error string `json:"error" yaml:"error"`
	}{Error: err.Error()}

	switch format {
	case FormatJSON:
		return o.writeJSON(doc)
	case FormatYAML:
		return o.writeYAML(doc)
	default:
		return nil
	}
}

func (o *Output) writeJSON(v any) error {
	encoder := json.NewEncoder(o.stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func (o *Output) writeYAML(v any) error {
	encoder := yaml.NewEncoder(o.stdout)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// writeTable writes one row per entry: the display label (owner/repo: path),
// the score, and either the local path or the download error.
func (o *Output) writeTable(entries []Entry) error {
	tp := tableprinter.New(o.stdout, o.width > 0, o.width)
	tp.AddHeader([]string{"RESULT", "SCORE", "LOCAL PATH"})

	for _, entry := range entries {
		label := fmt.Sprintf("%s: %s", o.cyan(entry.Repository.FullName), o.white(entry.Path))
		if o.hyperlinks && entry.HTMLURL != "" {
			label = makeHyperlink(entry.HTMLURL, label)
		}
		tp.AddField(label, tableprinter.WithTruncate(nil))
		tp.AddField(strconv.FormatFloat(entry.Score, 'f', 2, 64))

		if entry.OK() {
			tp.AddField(entry.LocalPath, tableprinter.WithColor(o.green))
		} else {
			tp.AddField("error: "+entry.Error, tableprinter.WithColor(o.red))
		}
		tp.EndRow()
	}

	return tp.Render()
}

// Warningf writes a formatted warning message to stderr.
func (o *Output) Warningf(format string, args ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.stderr, o.yellow("Warning: ")+format+"\n", args...)
}

// Infof writes a formatted informational message to stderr.
func (o *Output) Infof(format string, args ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.stderr, format+"\n", args...)
}
