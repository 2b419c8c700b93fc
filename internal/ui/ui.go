package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/sokinpui/routepin/model"
)

var (
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	InfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	PathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("221"))
)

// Printer writes styled progress lines. Writes are serialized so lines from
// concurrent workers never interleave.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) line(style lipgloss.Style, format string, a ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, style.Render(fmt.Sprintf(format, a...)))
}

func (p *Printer) Header(format string, a ...interface{})  { p.line(HeaderStyle, format, a...) }
func (p *Printer) Info(format string, a ...interface{})    { p.line(InfoStyle, format, a...) }
func (p *Printer) Warning(format string, a ...interface{}) { p.line(WarningStyle, format, a...) }
func (p *Printer) Error(format string, a ...interface{})   { p.line(ErrorStyle, format, a...) }

// FormatEntry renders the progress line for one file outcome.
func FormatEntry(e model.Entry) string {
	path := PathStyle.Render(e.Path)
	switch e.Outcome {
	case model.Updated:
		return SuccessStyle.Render("Updated ") + path + faint(e.Detail)
	case model.SkippedPresent:
		return WarningStyle.Render("Skipping ") + path + WarningStyle.Render(" - already has directive")
	case model.SkippedNoAnchor:
		return WarningStyle.Render("Skipping ") + path + WarningStyle.Render(" - no anchor found")
	case model.Errored:
		return ErrorStyle.Render("Error processing ") + path + ErrorStyle.Render(": "+e.Detail)
	default:
		return path
	}
}

func faint(detail string) string {
	if detail == "" {
		return ""
	}
	return lipgloss.NewStyle().Faint(true).Render(" (" + detail + ")")
}

// Entry prints the progress line for one file outcome.
func (p *Printer) Entry(e model.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, FormatEntry(e))
}

// SummaryText is the plain summary block.
func SummaryText(s model.Summary) string {
	var b strings.Builder
	b.WriteString("--- Summary ---\n")
	fmt.Fprintf(&b, "Files updated: %d\n", s.Updated)
	fmt.Fprintf(&b, "Files skipped: %d\n", s.Skipped())
	if s.Errored > 0 {
		fmt.Fprintf(&b, "Errors: %d\n", s.Errored)
	}
	fmt.Fprintf(&b, "Total files: %d\n", s.Total())
	return b.String()
}

// RenderSummary is the styled summary block.
func RenderSummary(s model.Summary) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("--- Summary ---"))
	b.WriteString("\n")
	b.WriteString(SuccessStyle.Render(fmt.Sprintf("Files updated: %d", s.Updated)))
	b.WriteString("\n")
	b.WriteString(WarningStyle.Render(fmt.Sprintf("Files skipped: %d", s.Skipped())))
	b.WriteString("\n")
	if s.Errored > 0 {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Errors: %d", s.Errored)))
		b.WriteString("\n")
	}
	b.WriteString(InfoStyle.Render(fmt.Sprintf("Total files: %d", s.Total())))
	b.WriteString("\n")
	return b.String()
}

// PrintSummary prints the summary block preceded by a blank line.
func (p *Printer) PrintSummary(s model.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.w, "\n"+RenderSummary(s))
}

// CopySummary places the plain summary block and the per-file lines on the
// system clipboard.
func CopySummary(s model.Summary) error {
	var b strings.Builder
	for _, e := range s.Entries {
		fmt.Fprintf(&b, "%s %s", e.Outcome, e.Path)
		if e.Detail != "" {
			fmt.Fprintf(&b, " (%s)", e.Detail)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(SummaryText(s))

	if err := clipboard.WriteAll(b.String()); err != nil {
		return fmt.Errorf("failed to write to clipboard: %w", err)
	}
	return nil
}

// NewLogger returns the diagnostics logger.
func NewLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "routepin",
		Level:  level,
	})
}
