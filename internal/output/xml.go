package output

import (
	"encoding/xml"
)

// XMLFormatter formats reports as generic XML.
type XMLFormatter struct{}

// xmlOutput is the XML structure for output.
type xmlOutput struct {
	Ignored     *xmlIgnored `xml:"ignored,omitempty"`
	Errors      *xmlErrors  `xml:"errors,omitempty"`
	XMLName     xml.Name    `xml:"report"`
	GeneratedAt string      `xml:"generated_at,attr"`
	Summary     xmlSummary  `xml:"summary"`
	Links       xmlLinks    `xml:"links"`
	TotalFiles  int         `xml:"total_files,attr"`
	TotalLinks  int         `xml:"total_links,attr"`
	UniqueURLs  int         `xml:"unique_urls,attr"`
}

type xmlSummary struct {
	Types   []xmlTypeCount `xml:"type"`
	Ignored int            `xml:"ignored,omitempty"`
	Errors  int            `xml:"errors,omitempty"`
}

type xmlTypeCount struct {
	Name  string `xml:"name,attr"`
	Count int    `xml:"count,attr"`
}

type xmlLinks struct {
	Links []xmlLink `xml:"link"`
}

type xmlLink struct {
	Type     string `xml:"type,attr"`
	URL      string `xml:"url"`
	FilePath string `xml:"file"`
	Text     string `xml:"text,omitempty"`
	Line     int    `xml:"line,attr"`
	Column   int    `xml:"column,attr"`
	Offset   int    `xml:"offset,attr"`
}

type xmlIgnored struct {
	Items []xmlIgnoredItem `xml:"item"`
}

type xmlIgnoredItem struct {
	URL    string `xml:"url"`
	File   string `xml:"file"`
	Reason string `xml:"reason"`
	Rule   string `xml:"rule"`
	Line   int    `xml:"line,omitempty"`
}

type xmlErrors struct {
	Items []FileError `xml:"error"`
}

// Format implements Formatter.
func (*XMLFormatter) Format(report *Report) ([]byte, error) {
	output := xmlOutput{
		GeneratedAt: report.GeneratedAt.Format(timeLayout),
		TotalFiles:  len(report.Files),
		TotalLinks:  report.TotalLinks(),
		UniqueURLs:  report.UniqueURLs(),
		Summary: xmlSummary{
			Ignored: len(report.Ignored),
			Errors:  len(report.Errors),
		},
		Links: xmlLinks{
			Links: make([]xmlLink, 0, len(report.Links)),
		},
	}

	for _, tc := range report.TypeCounts() {
		output.Summary.Types = append(output.Summary.Types, xmlTypeCount{Name: string(tc.Type), Count: tc.Count})
	}

	for _, l := range report.Links {
		output.Links.Links = append(output.Links.Links, xmlLink{
			Type:     string(l.Type),
			URL:      l.URL,
			FilePath: l.FilePath,
			Text:     l.Text,
			Line:     l.Line,
			Column:   l.Column,
			Offset:   l.Offset,
		})
	}

	if len(report.Ignored) > 0 {
		output.Ignored = &xmlIgnored{
			Items: make([]xmlIgnoredItem, len(report.Ignored)),
		}
		for i, ig := range report.Ignored {
			output.Ignored.Items[i] = xmlIgnoredItem{
				URL:    ig.URL,
				File:   ig.File,
				Reason: ig.Type,
				Rule:   ig.Rule,
				Line:   ig.Line,
			}
		}
	}

	if len(report.Errors) > 0 {
		output.Errors = &xmlErrors{Items: report.Errors}
	}

	data, err := xml.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), data...), nil
}
