package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goodbytes/linkdetect/internal/filter"
	"github.com/goodbytes/linkdetect/internal/helpers"
	"github.com/goodbytes/linkdetect/internal/logger"
	"github.com/goodbytes/linkdetect/internal/output"
	"github.com/goodbytes/linkdetect/internal/parser"
	"github.com/goodbytes/linkdetect/internal/scanner"
	"github.com/goodbytes/linkdetect/internal/stats"
)

// Flag variables for the extract command.
var (
	outputFormat string
	outputFile   string
	workers      int
	showStats    bool
	unique       bool

	// File type flags.
	fileTypes  []string
	strictMode bool

	// Ignore flags.
	ignoreDomains  []string
	ignorePatterns []string
	ignoreRegex    []string
	showIgnored    bool
)

// extractCmd represents the extract command.
var extractCmd = &cobra.Command{
	Use:   "extract [path]",
	Short: "Extract every link from the files under a path",
	Long: `Scan a directory for files and list every link they contain.

If no path is provided, scans the current directory.
By default, scans every supported file type.
Use --types to narrow the scan.

Files that cannot be parsed are skipped with a warning. With --strict
they are reported and the command fails.

Exit codes:
  0 - Extraction finished
  1 - Invalid flags, or files failed to parse in strict mode

Examples:
  linkdetect extract                         # Scan current directory
  linkdetect extract ./docs --types=md       # Markdown only
  linkdetect extract --types=json,yaml       # Structured files
  linkdetect extract --format=json           # Output JSON to stdout
  linkdetect extract --output=links.yaml     # Write YAML report to file
  linkdetect extract --output=links.junit.xml
  linkdetect extract --unique                # First occurrence of each URL
  linkdetect extract --stats                 # Show performance statistics

Note: --format and --output are mutually exclusive.

Supported file types: md, txt, json, yaml, toml, xml

Ignore patterns:
  linkdetect extract --ignore-domain=localhost,example.com
  linkdetect extract --ignore-pattern="*.local/*"
  linkdetect extract --ignore-regex=".*\\.test$"
  linkdetect extract --show-ignored          # Show which URLs were ignored

Config file (.linkdetect.yaml):
  ignore:
    domains: [localhost, example.com]
    patterns: ["*.local/*"]
    regex: [".*\\.test$"]`,
	Args: cobra.MaximumNArgs(1),
	Run:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	// Output options
	extractCmd.Flags().StringVarP(&outputFormat, "format", "f", "",
		"Output format for stdout: json, yaml, xml, junit, markdown")
	extractCmd.Flags().StringVarP(&outputFile, "output", "o", "",
		"Write report to file (format inferred from extension: .json, .yaml, .xml, .junit.xml, .md)")
	extractCmd.Flags().BoolVar(&unique, "unique", false,
		"Keep only the first occurrence of each URL")

	// File type options
	extractCmd.Flags().StringSliceVarP(&fileTypes, "types", "T", defaultTypes,
		"File types to scan (comma-separated): md, txt, json, yaml, toml, xml")
	extractCmd.Flags().BoolVar(&strictMode, "strict", false,
		"Fail on malformed files instead of skipping them")

	// Performance options
	extractCmd.Flags().IntVar(&workers, "workers", 0,
		"Number of files parsed concurrently (0 = one per CPU)")
	extractCmd.Flags().BoolVar(&showStats, "stats", false,
		"Show detailed performance statistics")

	// Ignore options
	extractCmd.Flags().StringSliceVar(&ignoreDomains, "ignore-domain", nil,
		"Domains to ignore, includes subdomains (can be repeated or comma-separated)")
	extractCmd.Flags().StringSliceVar(&ignorePatterns, "ignore-pattern", nil,
		"Glob patterns to ignore (can be repeated)")
	extractCmd.Flags().StringSliceVar(&ignoreRegex, "ignore-regex", nil,
		"Regex patterns to ignore (can be repeated)")
	extractCmd.Flags().BoolVar(&showIgnored, "show-ignored", false,
		"Show which URLs were ignored and why")
}

// runExtract is the main entry point for the extract command.
func runExtract(_ *cobra.Command, args []string) {
	perf := stats.New()
	exitOnError(validateExtractFlags(), "Invalid flags")

	path := getPathArg(args)
	format := loaded.GetOutputFormat(outputFormat)
	useStructuredOutput := format != "" && outputFile == ""
	strict := loaded.GetStrict(strictMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Phase 1: Scan for files
	files := scanFiles(path, perf, useStructuredOutput)

	// Phase 2: Extract and filter links
	links, failed, urlFilter := extractAndFilter(ctx, files, perf)

	// Phase 3: Output
	perf.Finish()
	report := buildReport(files, links, failed, urlFilter, perf)
	routeOutput(report, urlFilter, perf, output.Format(format), useStructuredOutput)

	if len(failed) > 0 && strict {
		fmt.Fprintf(os.Stderr, "%s failed to parse (strict mode)\n", helpers.Pluralize(len(failed), "file"))
		os.Exit(1)
	}
}

// validateExtractFlags checks for invalid flag combinations.
func validateExtractFlags() error {
	if outputFormat != "" && outputFile != "" {
		return errors.New("--format and --output are mutually exclusive; " +
			"use --format for stdout output, or --output for file output")
	}

	if format := loaded.GetOutputFormat(outputFormat); format != "" && !output.IsValidFormat(format) {
		return fmt.Errorf("invalid format %q; valid formats: %s",
			format, strings.Join(output.ValidFormats(), ", "))
	}

	if workers < 0 {
		return fmt.Errorf("--workers must not be negative, got %d", workers)
	}

	return nil
}

// scanFiles finds the files selected by the path, types and config patterns.
func scanFiles(path string, perf *stats.Stats, quiet bool) []string {
	opts := loaded.BuildScanOptions(path, fileTypes, defaultTypes)
	exitOnError(validateFileTypes(opts.Types), "Invalid file types")

	logger.Section("Scan")
	perf.StartScan()
	files, err := scanner.FindFilesWithOptions(opts)
	exitOnError(err, "Error scanning directory")
	perf.EndScan(len(files))

	logger.Debug("scanned %s in %s", path, stats.FormatDuration(perf.ScanDuration()))
	if !quiet {
		fmt.Printf("Found %s of type(s): %s\n",
			helpers.Pluralize(len(files), "file"), strings.Join(opts.Types, ", "))
	}
	return files
}

// extractAndFilter extracts links from files and applies the ignore rules
// and the unique setting.
func extractAndFilter(
	ctx context.Context, files []string, perf *stats.Stats,
) ([]parser.Link, []output.FileError, *filter.Filter) {
	urlFilter, err := loaded.CreateFilter(ignoreDomains, ignorePatterns, ignoreRegex)
	exitOnError(err, "Error creating filter")

	perf.StartExtract()
	links, failed, err := extractFiles(ctx, files, loaded.GetWorkers(workers, 0))
	exitOnError(err, "Extraction stopped")

	links = urlFilter.Apply(links)
	if loaded.GetUnique(unique) {
		links = helpers.UniqueLinks(links)
	}
	perf.EndExtract(len(links), helpers.CountUniqueURLs(links), urlFilter.IgnoredCount(), len(failed))

	return links, failed, urlFilter
}

// extractFiles runs the worker pool over files and returns the links in file
// order. Files that fail to parse are logged and returned as errors.
func extractFiles(ctx context.Context, files []string, n int) ([]parser.Link, []output.FileError, error) {
	logger.Section("Extract")
	start := time.Now()

	x := parser.NewExtractor(parser.Options{Workers: n})
	results, err := x.ExtractAll(ctx, files)
	if err != nil {
		return nil, nil, err
	}
	logger.Since("extracting "+helpers.Pluralize(len(files), "file"), start)

	var failed []output.FileError
	for _, r := range results {
		if r.Err != nil {
			logger.Warn("skipping %s: %v", r.Path, r.Err)
			failed = append(failed, output.FileError{File: r.Path, Error: r.Err.Error()})
		}
	}
	return parser.Flatten(results), failed, nil
}

// routeOutput handles output based on format flags.
func routeOutput(
	report *output.Report, urlFilter *filter.Filter, perf *stats.Stats,
	format output.Format, useStructuredOutput bool,
) {
	switch {
	case useStructuredOutput:
		data, err := output.FormatReport(report, format)
		exitOnError(err, "Error formatting output")
		fmt.Print(string(data))

	case outputFile != "":
		exitOnError(output.WriteToFile(report, outputFile, format), "Error writing file")
		fmt.Printf("Wrote report to %s\n", outputFile)
		printSummary(report, urlFilter)
		if len(report.Errors) > 0 {
			printFileErrors(report.Errors)
		}

	default:
		outputText(report, urlFilter)
		if loaded.GetShowStats(showStats) {
			fmt.Print(perf.String())
		}
	}
}
