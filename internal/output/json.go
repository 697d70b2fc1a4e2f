package output

import (
	"encoding/json"

	"github.com/goodbytes/linkdetect/internal/filter"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct{}

// jsonOutput is the JSON structure for output.
type jsonOutput struct {
	GeneratedAt string                `json:"generated_at"`
	TotalFiles  int                   `json:"total_files"`
	TotalLinks  int                   `json:"total_links"`
	UniqueURLs  int                   `json:"unique_urls"`
	Summary     jsonSummary           `json:"summary"`
	Links       []jsonLink            `json:"links"`
	Ignored     []filter.IgnoreReason `json:"ignored,omitempty"`
	Errors      []FileError           `json:"errors,omitempty"`
	Stats       map[string]any        `json:"stats,omitempty"`
}

type jsonSummary struct {
	ByType  map[string]int `json:"by_type"`
	Ignored int            `json:"ignored,omitempty"`
	Errors  int            `json:"errors,omitempty"`
}

type jsonLink struct {
	URL      string `json:"url"`
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Offset   int    `json:"offset"`
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
}

// Format implements Formatter.
func (*JSONFormatter) Format(report *Report) ([]byte, error) {
	output := jsonOutput{
		GeneratedAt: report.GeneratedAt.Format(timeLayout),
		TotalFiles:  len(report.Files),
		TotalLinks:  report.TotalLinks(),
		UniqueURLs:  report.UniqueURLs(),
		Summary: jsonSummary{
			ByType:  report.typeCountMap(),
			Ignored: len(report.Ignored),
			Errors:  len(report.Errors),
		},
		Links:   make([]jsonLink, 0, len(report.Links)),
		Ignored: report.Ignored,
		Errors:  report.Errors,
	}

	for _, l := range report.Links {
		output.Links = append(output.Links, jsonLink{
			URL:      l.URL,
			FilePath: l.FilePath,
			Line:     l.Line,
			Column:   l.Column,
			Offset:   l.Offset,
			Type:     string(l.Type),
			Text:     l.Text,
		})
	}

	if report.Stats != nil {
		output.Stats = report.Stats.ToJSON()
	}

	return json.MarshalIndent(output, "", "  ")
}
