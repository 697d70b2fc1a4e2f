package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goodbytes/linkdetect/internal/filter"
	"github.com/goodbytes/linkdetect/internal/helpers"
	"github.com/goodbytes/linkdetect/internal/output"
	"github.com/goodbytes/linkdetect/internal/render"
	"github.com/goodbytes/linkdetect/internal/ui"
)

// printer formats text output, styling it only when stdout is a terminal.
type printer struct {
	links  *render.TerminalRenderer
	styled bool
}

func newPrinter(out *os.File) printer {
	return printer{
		styled: render.IsTerminal(out),
		links:  render.NewTerminalRenderer(render.HyperlinksAuto.Enabled(out)),
	}
}

func (p printer) style(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p printer) url(u string) string {
	if !p.styled {
		return u
	}
	return p.links.Link(u)
}

// printGroup prints one file's links, one per line:
//
//	12:5     inline     https://go.dev  "Go"
func (p printer) printGroup(w io.Writer, g fileGroup) {
	fmt.Fprintf(w, "%s %s\n\n",
		p.style(ui.SelectedStyle, "=== "+g.File),
		p.style(ui.MutedStyle, fmt.Sprintf("(%d)", len(g.Links))))

	for _, l := range g.Links {
		pos := fmt.Sprintf("%d:%d", l.Line, l.Column)
		kind := fmt.Sprintf("%-9s", l.Type)
		line := fmt.Sprintf("  %-8s %s  %s",
			pos, p.style(ui.CategoryStyle(l.Type.Category()), kind), p.url(l.URL))
		if text := helpers.TruncateText(strings.TrimSpace(l.Text), 50); text != "" {
			line += "  " + p.style(ui.MutedStyle, fmt.Sprintf("%q", text))
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}

// printSummary prints the one-line totals of a report.
func printSummary(report *output.Report, urlFilter *filter.Filter) {
	parts := []string{
		helpers.Pluralize(report.TotalLinks(), "link"),
		fmt.Sprintf("%d unique", report.UniqueURLs()),
	}
	for _, tc := range report.TypeCounts() {
		parts = append(parts, fmt.Sprintf("%d %s", tc.Count, tc.Type))
	}
	if n := urlFilter.IgnoredCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d ignored", n))
	}
	if n := len(report.Errors); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}

	fmt.Printf("\nSummary: %s\n", strings.Join(parts, " | "))
}

// printFileErrors lists the files that could not be parsed.
func printFileErrors(failed []output.FileError) {
	fmt.Printf("\n=== Parse Errors (%d) ===\n\n", len(failed))
	for _, fe := range failed {
		fmt.Printf("  [ERROR] %s\n", fe.File)
		fmt.Printf("          %s\n\n", fe.Error)
	}
}

// printIgnoredURLs displays the URLs that were ignored and why.
func printIgnoredURLs(ignored []filter.IgnoreReason) {
	if len(ignored) == 0 {
		return
	}

	fmt.Printf("\n=== Ignored URLs (%d) ===\n\n", len(ignored))
	for _, ig := range ignored {
		fmt.Printf("  [IGNORED] %s\n", ig.URL)
		fmt.Printf("            File: %s", ig.File)
		if ig.Line > 0 {
			fmt.Printf(":%d:%d", ig.Line, ig.Column)
		}
		fmt.Println()
		fmt.Printf("            Reason: %s %q\n\n", ig.Type, ig.Rule)
	}
}
