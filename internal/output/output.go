// Package output provides formatting and file writing for link reports.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goodbytes/linkdetect/internal/filter"
	"github.com/goodbytes/linkdetect/internal/helpers"
	"github.com/goodbytes/linkdetect/internal/parser"
	"github.com/goodbytes/linkdetect/internal/stats"
)

// Format represents an output format type.
type Format string

const (
	// FormatJSON outputs as JSON.
	FormatJSON Format = "json"
	// FormatYAML outputs as YAML.
	FormatYAML Format = "yaml"
	// FormatXML outputs as generic XML.
	FormatXML Format = "xml"
	// FormatJUnit outputs as JUnit XML for CI/CD integration.
	FormatJUnit Format = "junit"
	// FormatMarkdown outputs as a Markdown report.
	FormatMarkdown Format = "markdown"
)

// ValidFormats returns all valid format strings.
func ValidFormats() []string {
	return []string{
		string(FormatJSON),
		string(FormatYAML),
		string(FormatXML),
		string(FormatJUnit),
		string(FormatMarkdown),
	}
}

// IsValidFormat checks if a format string is valid.
func IsValidFormat(s string) bool {
	switch Format(strings.ToLower(s)) {
	case FormatJSON, FormatYAML, FormatXML, FormatJUnit, FormatMarkdown:
		return true
	default:
		return false
	}
}

// FileError records a file that could not be read or parsed.
type FileError struct {
	File  string `json:"file" yaml:"file" xml:"file,attr"`
	Error string `json:"error" yaml:"error" xml:",chardata"`
}

// Report contains all data needed for output formatting.
type Report struct {
	GeneratedAt time.Time
	Files       []string
	Links       []parser.Link
	Ignored     []filter.IgnoreReason
	Errors      []FileError
	Stats       *stats.Stats // optional
}

// TypeCount is the number of links of one type.
type TypeCount struct {
	Type  parser.LinkType
	Count int
}

// TotalLinks returns the number of reported links.
func (r *Report) TotalLinks() int {
	return len(r.Links)
}

// UniqueURLs returns the number of distinct reported URLs.
func (r *Report) UniqueURLs() int {
	return helpers.CountUniqueURLs(r.Links)
}

// TypeCounts returns the link count per type, sorted by type name.
func (r *Report) TypeCounts() []TypeCount {
	counts := map[parser.LinkType]int{}
	for _, l := range r.Links {
		counts[l.Type]++
	}

	result := make([]TypeCount, 0, len(counts))
	for t, n := range counts {
		result = append(result, TypeCount{Type: t, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result
}

// typeCountMap is TypeCounts keyed by type name, for map-shaped encodings.
func (r *Report) typeCountMap() map[string]int {
	m := make(map[string]int)
	for _, tc := range r.TypeCounts() {
		m[string(tc.Type)] = tc.Count
	}
	return m
}

// Formatter is the interface that output formatters implement.
type Formatter interface {
	Format(report *Report) ([]byte, error)
}

// GetFormatter returns the appropriate formatter for a format.
func GetFormatter(format Format) (Formatter, error) {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatXML:
		return &XMLFormatter{}, nil
	case FormatJUnit:
		return &JUnitFormatter{}, nil
	case FormatMarkdown:
		return &MarkdownFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// FormatReport formats a report using the specified format.
func FormatReport(report *Report, format Format) ([]byte, error) {
	formatter, err := GetFormatter(format)
	if err != nil {
		return nil, err
	}
	return formatter.Format(report)
}

// InferFormat determines the output format from a filename extension.
func InferFormat(filename string) (Format, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".junit.xml") {
		return FormatJUnit, nil
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".xml":
		return FormatXML, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf(
			"cannot infer format from extension %q (supported: .json, .yaml, .yml, .xml, .junit.xml, .md, .markdown)",
			ext,
		)
	}
}

// WriteToFile writes a formatted report to a file. An explicit format wins
// over the one inferred from the extension.
func WriteToFile(report *Report, filename string, format Format) error {
	if format == "" {
		inferred, err := InferFormat(filename)
		if err != nil {
			return err
		}
		format = inferred
	}

	data, err := FormatReport(report, format)
	if err != nil {
		return fmt.Errorf("formatting report: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

const timeLayout = "2006-01-02T15:04:05Z07:00"
