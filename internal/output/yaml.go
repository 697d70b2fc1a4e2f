package output

import (
	"gopkg.in/yaml.v3"

	"github.com/goodbytes/linkdetect/internal/filter"
)

// YAMLFormatter formats reports as YAML.
type YAMLFormatter struct{}

// yamlOutput is the YAML structure for output.
type yamlOutput struct {
	GeneratedAt string                `yaml:"generated_at"`
	Summary     yamlSummary           `yaml:"summary"`
	Links       []yamlLink            `yaml:"links"`
	Ignored     []filter.IgnoreReason `yaml:"ignored,omitempty"`
	Errors      []FileError           `yaml:"errors,omitempty"`
	Stats       map[string]any        `yaml:"stats,omitempty"`
	TotalFiles  int                   `yaml:"total_files"`
	TotalLinks  int                   `yaml:"total_links"`
	UniqueURLs  int                   `yaml:"unique_urls"`
}

type yamlSummary struct {
	ByType  map[string]int `yaml:"by_type"`
	Ignored int            `yaml:"ignored,omitempty"`
	Errors  int            `yaml:"errors,omitempty"`
}

type yamlLink struct {
	URL      string `yaml:"url"`
	FilePath string `yaml:"file_path"`
	Type     string `yaml:"type"`
	Text     string `yaml:"text,omitempty"`
	Line     int    `yaml:"line"`
	Column   int    `yaml:"column"`
	Offset   int    `yaml:"offset"`
}

// Format implements Formatter.
func (*YAMLFormatter) Format(report *Report) ([]byte, error) {
	output := yamlOutput{
		GeneratedAt: report.GeneratedAt.Format(timeLayout),
		TotalFiles:  len(report.Files),
		TotalLinks:  report.TotalLinks(),
		UniqueURLs:  report.UniqueURLs(),
		Summary: yamlSummary{
			ByType:  report.typeCountMap(),
			Ignored: len(report.Ignored),
			Errors:  len(report.Errors),
		},
		Links:   make([]yamlLink, 0, len(report.Links)),
		Ignored: report.Ignored,
		Errors:  report.Errors,
	}

	for _, l := range report.Links {
		output.Links = append(output.Links, yamlLink{
			URL:      l.URL,
			FilePath: l.FilePath,
			Type:     string(l.Type),
			Text:     l.Text,
			Line:     l.Line,
			Column:   l.Column,
			Offset:   l.Offset,
		})
	}

	if report.Stats != nil {
		output.Stats = report.Stats.ToJSON()
	}

	return yaml.Marshal(output)
}
