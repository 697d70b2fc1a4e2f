// Package fixer rewrites bare links in Markdown files into link syntax.
//
// Which links are bare comes from the Markdown parser: links in code, in
// link labels, or already written as inline, reference, autolink or HTML
// links are never touched.
package fixer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goodbytes/linkdetect/internal/helpers"
	"github.com/goodbytes/linkdetect/internal/parser"
	"github.com/goodbytes/linkdetect/internal/parser/markdown"
)

// Style is the syntax a bare link is rewritten to.
type Style string

const (
	// StyleAutolink rewrites to <url>.
	StyleAutolink Style = "autolink"
	// StyleInline rewrites to [url](url).
	StyleInline Style = "inline"
)

// ParseStyle parses a style name. The empty string means autolink.
func ParseStyle(s string) (Style, error) {
	switch style := Style(strings.ToLower(strings.TrimSpace(s))); style {
	case "":
		return StyleAutolink, nil
	case StyleAutolink, StyleInline:
		return style, nil
	default:
		return "", fmt.Errorf("invalid style %q (valid: autolink, inline)", s)
	}
}

// Wrap returns url written in the style.
func (s Style) Wrap(url string) string {
	if s == StyleInline {
		return "[" + url + "](" + url + ")"
	}
	return "<" + url + ">"
}

// Fix is a single bare link to rewrite.
type Fix struct {
	FilePath    string
	URL         string
	Replacement string
	Line        int
	Column      int
	Offset      int // Byte offset of URL in the file
}

// FileChanges groups all fixes for a single file, ordered by offset.
type FileChanges struct {
	FilePath   string
	Fixes      []Fix
	TotalFixes int
}

// FixResult represents the outcome of applying fixes to a file.
type FixResult struct {
	Error       error
	FilePath    string
	ChangedURLs []URLChange
	Applied     int
	Skipped     int
}

// URLChange represents a single link that was rewritten.
type URLChange struct {
	OldURL string
	NewURL string
	Line   int
}

// Fixer rewrites bare links in Markdown files.
type Fixer struct {
	Style Style
}

// New creates a Fixer. An empty style means autolink.
func New(style Style) *Fixer {
	if style == "" {
		style = StyleAutolink
	}
	return &Fixer{Style: style}
}

// IsMarkdown reports whether path has a Markdown extension.
func IsMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range markdown.New().Extensions() {
		if ext == e {
			return true
		}
	}
	return false
}

// FindFixes selects the bare links of Markdown files and groups them by
// file, sorted by path.
func (f *Fixer) FindFixes(links []parser.Link) []FileChanges {
	byFile := map[string][]Fix{}

	for _, l := range links {
		if l.Type != parser.LinkTypeBare || !IsMarkdown(l.FilePath) {
			continue
		}
		byFile[l.FilePath] = append(byFile[l.FilePath], Fix{
			FilePath:    l.FilePath,
			URL:         l.URL,
			Replacement: f.Style.Wrap(l.URL),
			Line:        l.Line,
			Column:      l.Column,
			Offset:      l.Offset,
		})
	}

	filePaths := make([]string, 0, len(byFile))
	for fp := range byFile {
		filePaths = append(filePaths, fp)
	}
	sort.Strings(filePaths)

	result := make([]FileChanges, 0, len(byFile))
	for _, fp := range filePaths {
		fixes := byFile[fp]
		sort.Slice(fixes, func(i, j int) bool { return fixes[i].Offset < fixes[j].Offset })
		result = append(result, FileChanges{
			FilePath:   fp,
			Fixes:      fixes,
			TotalFixes: len(fixes),
		})
	}

	return result
}

// FindFixesInContent parses Markdown content and returns its fixes.
func (f *Fixer) FindFixesInContent(filePath string, content []byte) (FileChanges, error) {
	links, err := markdown.ExtractLinksFromContent(content, filePath)
	if err != nil {
		return FileChanges{}, err
	}
	changes := f.FindFixes(links)
	if len(changes) == 0 {
		return FileChanges{FilePath: filePath}, nil
	}
	return changes[0], nil
}

// Rewrite applies fixes to content from the last offset to the first, so
// earlier offsets stay valid. A fix whose URL is no longer at its offset is
// skipped.
func Rewrite(content []byte, fixes []Fix) (out []byte, applied []Fix, skipped int) {
	ordered := make([]Fix, len(fixes))
	copy(ordered, fixes)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Offset > ordered[j].Offset })

	out = bytes.Clone(content)
	limit := len(out)
	for _, fix := range ordered {
		end := fix.Offset + len(fix.URL)
		if fix.Offset < 0 || end > limit || string(out[fix.Offset:end]) != fix.URL {
			skipped++
			continue
		}
		out = append(out[:fix.Offset], append([]byte(fix.Replacement), out[end:]...)...)
		applied = append(applied, fix)
		limit = fix.Offset
	}

	// Back to file order.
	for i, j := 0, len(applied)-1; i < j; i, j = i+1, j-1 {
		applied[i], applied[j] = applied[j], applied[i]
	}
	return out, applied, skipped
}

// Preview returns a formatted string showing what changes would be made.
func (*Fixer) Preview(changes []FileChanges) string {
	totalFixes := 0
	for _, fc := range changes {
		totalFixes += fc.TotalFixes
	}
	if totalFixes == 0 {
		return "No bare links found."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Found %s across %s:\n\n",
		helpers.Pluralize(totalFixes, "bare link"), helpers.Pluralize(len(changes), "file")))

	for _, fc := range changes {
		if fc.TotalFixes == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("%s (%s)\n", fc.FilePath, helpers.Pluralize(fc.TotalFixes, "link")))
		for _, fix := range fc.Fixes {
			b.WriteString(fmt.Sprintf("  Line %d: %s\n", fix.Line, helpers.TruncateURL(fix.URL, 60)))
			b.WriteString(fmt.Sprintf("          -> %s\n", helpers.TruncateURL(fix.Replacement, 60)))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// ApplyToFile applies all fixes to a single file. The file is written only
// when its content changed, keeping its permissions.
func (*Fixer) ApplyToFile(fc FileChanges) (*FixResult, error) {
	result := &FixResult{
		FilePath:    fc.FilePath,
		ChangedURLs: []URLChange{},
	}

	info, err := os.Stat(fc.FilePath)
	if err != nil {
		result.Error = fmt.Errorf("reading file: %w", err)
		return result, result.Error
	}

	content, err := os.ReadFile(fc.FilePath)
	if err != nil {
		result.Error = fmt.Errorf("reading file: %w", err)
		return result, result.Error
	}

	modified, applied, skipped := Rewrite(content, fc.Fixes)
	result.Skipped = skipped
	result.Applied = len(applied)
	for _, fix := range applied {
		result.ChangedURLs = append(result.ChangedURLs, URLChange{
			Line:   fix.Line,
			OldURL: fix.URL,
			NewURL: fix.Replacement,
		})
	}

	if bytes.Equal(modified, content) {
		return result, nil
	}

	if err := os.WriteFile(fc.FilePath, modified, info.Mode().Perm()); err != nil {
		result.Error = fmt.Errorf("writing file: %w", err)
		return result, result.Error
	}

	return result, nil
}

// ApplyAll applies fixes to all files and returns results.
func (f *Fixer) ApplyAll(changes []FileChanges) []FixResult {
	results := make([]FixResult, 0, len(changes))

	for _, fc := range changes {
		result, _ := f.ApplyToFile(fc)
		results = append(results, *result)
	}

	return results
}

// Summary returns a formatted summary of fix results.
func Summary(results []FixResult) string {
	var b strings.Builder

	totalApplied := 0
	totalSkipped := 0
	filesModified := 0
	var errors []string

	for _, r := range results {
		totalApplied += r.Applied
		totalSkipped += r.Skipped
		if r.Applied > 0 {
			filesModified++
		}
		if r.Error != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", r.FilePath, r.Error))
		}
	}

	if totalApplied == 0 && len(errors) == 0 {
		return "No changes made."
	}

	b.WriteString(fmt.Sprintf("Rewrote %s across %s.\n",
		helpers.Pluralize(totalApplied, "link"), helpers.Pluralize(filesModified, "file")))

	if totalSkipped > 0 {
		b.WriteString(fmt.Sprintf("Skipped %d (file changed since it was scanned).\n", totalSkipped))
	}

	if len(errors) > 0 {
		b.WriteString("\nErrors:\n")
		for _, e := range errors {
			b.WriteString(fmt.Sprintf("  %s\n", e))
		}
	}

	return b.String()
}

// DetailedSummary returns a summary listing each change.
func DetailedSummary(results []FixResult) string {
	var b strings.Builder

	totalApplied := 0
	filesModified := 0

	for _, r := range results {
		if r.Applied > 0 {
			totalApplied += r.Applied
			filesModified++
		}
	}

	if totalApplied == 0 {
		return "No changes made."
	}

	b.WriteString(fmt.Sprintf("Rewrote %s across %s:\n\n",
		helpers.Pluralize(totalApplied, "link"), helpers.Pluralize(filesModified, "file")))

	for _, r := range results {
		for _, change := range r.ChangedURLs {
			b.WriteString(fmt.Sprintf("  %s:%d\n", r.FilePath, change.Line))
			b.WriteString(fmt.Sprintf("    %s\n", helpers.TruncateURL(change.OldURL, 70)))
			b.WriteString(fmt.Sprintf("    -> %s\n", helpers.TruncateURL(change.NewURL, 70)))
		}
	}

	return b.String()
}
