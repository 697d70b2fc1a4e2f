package output

import (
	"fmt"
	"strings"

	"github.com/goodbytes/linkdetect/internal/helpers"
	"github.com/goodbytes/linkdetect/internal/parser"
)

// MarkdownFormatter formats reports as Markdown.
type MarkdownFormatter struct{}

// Format implements Formatter.
func (*MarkdownFormatter) Format(report *Report) ([]byte, error) {
	// Pre-grow builder: estimate ~120 bytes per link + ~500 bytes header
	var b strings.Builder
	b.Grow(len(report.Links)*120 + 500)

	b.WriteString("# Link Report\n\n")
	b.WriteString(fmt.Sprintf("**Generated:** %s  \n", report.GeneratedAt.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("**Files Scanned:** %d  \n", len(report.Files)))
	b.WriteString(fmt.Sprintf("**Total Links:** %d  \n", report.TotalLinks()))
	b.WriteString(fmt.Sprintf("**Unique URLs:** %d\n\n", report.UniqueURLs()))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Type | Count |\n")
	b.WriteString("|------|-------|\n")
	for _, tc := range report.TypeCounts() {
		b.WriteString(fmt.Sprintf("| %s | %d |\n", tc.Type, tc.Count))
	}
	if len(report.Ignored) > 0 {
		b.WriteString(fmt.Sprintf("| ignored | %d |\n", len(report.Ignored)))
	}
	if len(report.Errors) > 0 {
		b.WriteString(fmt.Sprintf("| parse errors | %d |\n", len(report.Errors)))
	}
	b.WriteString("\n")

	if len(report.Links) > 0 {
		b.WriteString(fmt.Sprintf("## Links (%d)\n\n", len(report.Links)))
		for _, group := range groupByFile(report.Links) {
			b.WriteString(fmt.Sprintf("### `%s`\n\n", group[0].FilePath))
			b.WriteString("| Line | Col | Type | URL | Text |\n")
			b.WriteString("|------|-----|------|-----|------|\n")
			for _, l := range group {
				b.WriteString(fmt.Sprintf("| %d | %d | %s | %s | %s |\n",
					l.Line, l.Column, l.Type,
					escapeMarkdown(helpers.TruncateURL(l.URL, 80)),
					escapeMarkdown(helpers.TruncateText(l.Text, 40))))
			}
			b.WriteString("\n")
		}
	}

	if len(report.Ignored) > 0 {
		b.WriteString(fmt.Sprintf("## Ignored URLs (%d)\n\n", len(report.Ignored)))
		b.WriteString("| URL | File | Line | Reason | Rule |\n")
		b.WriteString("|-----|------|------|--------|------|\n")
		for _, ig := range report.Ignored {
			b.WriteString(fmt.Sprintf("| %s | %s | %d | %s | `%s` |\n",
				escapeMarkdown(helpers.TruncateURL(ig.URL, 60)), ig.File, ig.Line, ig.Type, ig.Rule))
		}
		b.WriteString("\n")
	}

	if len(report.Errors) > 0 {
		b.WriteString(fmt.Sprintf("## Parse Errors (%d)\n\n", len(report.Errors)))
		for _, e := range report.Errors {
			b.WriteString(fmt.Sprintf("- `%s`: %s\n", e.File, e.Error))
		}
		b.WriteString("\n")
	}

	if report.Stats != nil {
		b.WriteString("## Statistics\n\n```")
		b.WriteString(report.Stats.String())
		b.WriteString("```\n")
	}

	return []byte(b.String()), nil
}

// groupByFile splits links into runs of the same file, keeping order.
func groupByFile(links []parser.Link) [][]parser.Link {
	var groups [][]parser.Link
	for i, l := range links {
		if i == 0 || l.FilePath != links[i-1].FilePath {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], l)
	}
	return groups
}

// escapeMarkdown escapes characters that break table cells.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "`", "\\`")
	return s
}
