package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Format selects how results are written.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the accepted values of ParseFormat.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML}

// ParseFormat validates a user supplied format name. The empty string means
// table output.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatTable, nil
	}
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q, expected one of %v", s, Formats)
}

// Options tunes a Renderer.
type Options struct {
	Format   Format
	Colored  bool
	Verbose  bool
	Detail   bool
	Language string
}

// Renderer writes human or machine readable results to one writer.
type Renderer struct {
	out    io.Writer
	opts   Options
	p      *message.Printer
	lg     *lipgloss.Renderer
	styles styles
}

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	bad     lipgloss.Style
	muted   lipgloss.Style
	border  lipgloss.Style
	pkgName lipgloss.Style
}

// New creates a renderer writing to out. Colors are only emitted when
// opts.Colored is set.
func New(out io.Writer, opts Options) *Renderer {
	if opts.Format == "" {
		opts.Format = FormatTable
	}
	lg := lipgloss.NewRenderer(out)
	if opts.Colored {
		lg.SetColorProfile(termenv.ANSI256)
	} else {
		lg.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		out:    out,
		opts:   opts,
		p:      NewPrinter(opts.Language),
		lg:     lg,
		styles: newStyles(lg),
	}
}

func newStyles(lg *lipgloss.Renderer) styles {
	return styles{
		title:   lg.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
		header:  lg.NewStyle().Bold(true).Padding(0, 1),
		cell:    lg.NewStyle().Padding(0, 1),
		ok:      lg.NewStyle().Foreground(lipgloss.Color("#4CAF50")),
		warn:    lg.NewStyle().Foreground(lipgloss.Color("#F7B801")),
		bad:     lg.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		muted:   lg.NewStyle().Foreground(lipgloss.Color("#999999")),
		border:  lg.NewStyle().Foreground(lipgloss.Color("#A0AEC0")),
		pkgName: lg.NewStyle().Bold(true),
	}
}

// Format returns the configured output format.
func (r *Renderer) Format() Format { return r.opts.Format }

// Printer returns the localized printer used for every message.
func (r *Renderer) Printer() *message.Printer { return r.p }

// Structured reports whether the renderer emits JSON or YAML.
func (r *Renderer) Structured() bool {
	return r.opts.Format == FormatJSON || r.opts.Format == FormatYAML
}

// Message writes one localized line.
func (r *Renderer) Message(key string, args ...any) {
	fmt.Fprintln(r.out, r.p.Sprintf(key, args...))
}

// Success writes one localized line in the success style.
func (r *Renderer) Success(key string, args ...any) {
	fmt.Fprintln(r.out, r.styles.ok.Render(r.p.Sprintf(key, args...)))
}

// Warning writes one localized line in the warning style.
func (r *Renderer) Warning(key string, args ...any) {
	fmt.Fprintln(r.out, r.styles.warn.Render(r.p.Sprintf(key, args...)))
}

// Value writes v as JSON or YAML according to the configured format.
func (r *Renderer) Value(v any) error {
	switch r.opts.Format {
	case FormatYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
}

func (r *Renderer) title(key string, args ...any) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.styles.title.Render(r.p.Sprintf(key, args...)))
}

func (r *Renderer) line(indent int, s string) {
	fmt.Fprintf(r.out, "%s%s\n", strings.Repeat("  ", indent), s)
}

// table renders rows under localized headers.
func (r *Renderer) table(headers []string, rows [][]string) {
	localized := make([]string, len(headers))
	for i, h := range headers {
		localized[i] = r.p.Sprintf(h)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.styles.border).
		Headers(localized...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.styles.header
			}
			return r.styles.cell
		})
	fmt.Fprintln(r.out, t.String())
}
