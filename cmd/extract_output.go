package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/goodbytes/linkdetect/internal/filter"
	"github.com/goodbytes/linkdetect/internal/output"
	"github.com/goodbytes/linkdetect/internal/parser"
	"github.com/goodbytes/linkdetect/internal/stats"
)

// buildReport creates an output.Report from the extraction results.
// Ignored links and stats are included only when requested.
func buildReport(
	files []string, links []parser.Link, failed []output.FileError,
	urlFilter *filter.Filter, perf *stats.Stats,
) *output.Report {
	report := &output.Report{
		GeneratedAt: time.Now(),
		Files:       files,
		Links:       links,
		Errors:      failed,
	}

	if loaded.GetShowIgnored(showIgnored) {
		report.Ignored = urlFilter.IgnoredURLs()
	}
	if loaded.GetShowStats(showStats) {
		report.Stats = perf
	}

	return report
}

// outputText prints the links as human-readable text to stdout, grouped by
// file. This is the default output mode when no format flag is specified.
func outputText(report *output.Report, urlFilter *filter.Filter) {
	p := newPrinter(os.Stdout)

	switch {
	case len(report.Links) > 0:
		fmt.Println()
		for _, group := range groupByFile(report.Links) {
			p.printGroup(os.Stdout, group)
		}
	case urlFilter.IgnoredCount() > 0:
		fmt.Println("\nAll links were ignored by filter rules.")
	default:
		fmt.Println("No links found.")
	}

	printSummary(report, urlFilter)

	if len(report.Errors) > 0 {
		printFileErrors(report.Errors)
	}

	if loaded.GetShowIgnored(showIgnored) {
		printIgnoredURLs(urlFilter.IgnoredURLs())
	}
}

// fileGroup is the links of one file.
type fileGroup struct {
	File  string
	Links []parser.Link
}

// groupByFile groups links by file, keeping the order in which files first
// appear.
func groupByFile(links []parser.Link) []fileGroup {
	index := map[string]int{}
	var groups []fileGroup

	for _, l := range links {
		i, ok := index[l.FilePath]
		if !ok {
			i = len(groups)
			index[l.FilePath] = i
			groups = append(groups, fileGroup{File: l.FilePath})
		}
		groups[i].Links = append(groups[i].Links, l)
	}
	return groups
}
