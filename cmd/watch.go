package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goodbytes/linkdetect/internal/filter"
	"github.com/goodbytes/linkdetect/internal/logger"
	"github.com/goodbytes/linkdetect/internal/parser"
	"github.com/goodbytes/linkdetect/internal/scanner"
	"github.com/goodbytes/linkdetect/internal/watch"
)

// Flag variables for the watch command.
var (
	watchTypes          []string
	watchFormat         string
	watchInitial        bool
	watchDebounce       time.Duration
	watchIgnoreDomains  []string
	watchIgnorePatterns []string
	watchIgnoreRegex    []string
)

// watchCmd represents the watch command.
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Print the links of files as they change",
	Long: `Watch a directory and print the links of every file that is created
or changed. Removed files are reported too. Hidden files and directories
are ignored. Stop with Ctrl+C.

Formats:
  text  one block per changed file
  json  one JSON object per line

Examples:
  linkdetect watch ./docs
  linkdetect watch --initial --types=md
  linkdetect watch --format=json | jq .url`,
	Args: cobra.MaximumNArgs(1),
	Run:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringSliceVarP(&watchTypes, "types", "T", defaultTypes,
		"File types to watch (comma-separated): md, txt, json, yaml, toml, xml")
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "text",
		"Output format: text, json")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false,
		"Print the links of existing files before watching")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce,
		"Quiet period before a changed file is read again")
	watchCmd.Flags().StringSliceVar(&watchIgnoreDomains, "ignore-domain", nil,
		"Domains to ignore, includes subdomains")
	watchCmd.Flags().StringSliceVar(&watchIgnorePatterns, "ignore-pattern", nil,
		"Glob patterns to ignore")
	watchCmd.Flags().StringSliceVar(&watchIgnoreRegex, "ignore-regex", nil,
		"Regex patterns to ignore")
}

func runWatch(_ *cobra.Command, args []string) {
	if watchFormat != "text" && watchFormat != "json" {
		exitOnError(fmt.Errorf("invalid format %q; valid formats: text, json", watchFormat), "Invalid flags")
	}

	opts := loaded.BuildScanOptions(getPathArg(args), watchTypes, defaultTypes)
	exitOnError(validateFileTypes(opts.Types), "Invalid file types")

	urlFilter, err := loaded.CreateFilter(watchIgnoreDomains, watchIgnorePatterns, watchIgnoreRegex)
	exitOnError(err, "Error creating filter")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	extractor := parser.NewExtractor(parser.Options{Workers: loaded.GetWorkers(0, 0)})
	cp := changePrinter{out: os.Stdout, format: watchFormat, filter: urlFilter, p: newPrinter(os.Stdout)}

	if watchInitial {
		exitOnError(printInitial(ctx, extractor, opts, cp), "Error scanning directory")
	}

	w, err := watch.New(watch.Options{
		Extractor: extractor,
		Scan:      opts,
		Debounce:  watchDebounce,
	})
	exitOnError(err, "Error starting watcher")
	defer w.Close()

	logger.Info("watching %d directories", len(w.WatchList()))
	if watchFormat == "text" {
		fmt.Fprintf(os.Stderr, "Watching %s for changes. Press Ctrl+C to stop.\n", opts.Root)
	}

	for change := range w.Run(ctx) {
		if err := cp.print(change); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		}
	}
}

// printInitial prints the links of the files that exist before watching.
func printInitial(ctx context.Context, x *parser.Extractor, opts scanner.ScanOptions, cp changePrinter) error {
	files, err := scanner.FindFilesWithOptions(opts)
	if err != nil {
		return err
	}

	for r := range x.Extract(ctx, files) {
		if err := cp.print(watch.Change{Type: watch.ChangeUpdated, Path: r.Path, Links: r.Links, Err: r.Err}); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// changePrinter writes watch changes as text blocks or JSON lines.
type changePrinter struct {
	out    io.Writer
	filter *filter.Filter
	format string
	p      printer
}

// watchEvent is one line of JSON output.
type watchEvent struct {
	Change string `json:"change"`
	File   string `json:"file"`
	URL    string `json:"url,omitempty"`
	Type   string `json:"type,omitempty"`
	Text   string `json:"text,omitempty"`
	Error  string `json:"error,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// print writes one change and returns the first write error.
func (cp changePrinter) print(c watch.Change) error {
	// Ignore reasons are not reported while watching.
	links := cp.filter.Apply(c.Links)
	cp.filter.Reset()

	if cp.format == "json" {
		return cp.printJSON(c, links)
	}

	var err error
	switch {
	case c.Err != nil:
		logger.Warn("skipping %s: %v", c.Path, c.Err)
	case c.Type == watch.ChangeRemoved:
		_, err = fmt.Fprintf(cp.out, "%s removed\n\n", c.Path)
	case len(links) == 0:
		_, err = fmt.Fprintf(cp.out, "%s: no links\n\n", c.Path)
	default:
		cp.p.printGroup(cp.out, fileGroup{File: c.Path, Links: links})
	}
	return err
}

func (cp changePrinter) printJSON(c watch.Change, links []parser.Link) error {
	enc := json.NewEncoder(cp.out)

	if c.Err != nil || c.Type == watch.ChangeRemoved || len(links) == 0 {
		ev := watchEvent{Change: string(c.Type), File: c.Path}
		if c.Err != nil {
			ev.Error = c.Err.Error()
		}
		return enc.Encode(ev)
	}

	for _, l := range links {
		err := enc.Encode(watchEvent{
			Change: string(c.Type),
			File:   l.FilePath,
			URL:    l.URL,
			Type:   string(l.Type),
			Text:   l.Text,
			Line:   l.Line,
			Column: l.Column,
		})
		if err != nil {
			return fmt.Errorf("encoding event: %w", err)
		}
	}
	return nil
}
