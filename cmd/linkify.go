package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goodbytes/linkdetect/internal/filter"
	"github.com/goodbytes/linkdetect/internal/fixer"
	"github.com/goodbytes/linkdetect/internal/helpers"
	"github.com/goodbytes/linkdetect/internal/logger"
	"github.com/goodbytes/linkdetect/internal/scanner"
	"github.com/goodbytes/linkdetect/internal/stats"
)

// Flag variables for the linkify command.
var (
	linkifyDryRun         bool
	linkifyYes            bool
	linkifyStyle          string
	linkifyShowStats      bool
	linkifyIgnoreDomains  []string
	linkifyIgnorePatterns []string
	linkifyIgnoreRegex    []string
)

// linkifyTypes are the only files linkify rewrites.
var linkifyTypes = []string{"md"}

// linkifyCmd represents the linkify command.
var linkifyCmd = &cobra.Command{
	Use:   "linkify [path|-]",
	Short: "Wrap bare links in Markdown files",
	Long: `Rewrite bare URLs in Markdown files as autolinks or inline links.

Links inside code blocks and code spans, and links that are already part
of link syntax, are left untouched. Links matching ignore rules are left
as they are.

Styles:
  autolink  https://go.dev  ->  <https://go.dev>
  inline    https://go.dev  ->  [https://go.dev](https://go.dev)

By default, prompts before rewriting each file.

Exit codes:
  0 - Finished (or nothing to rewrite)
  1 - Errors occurred
  2 - Quit before all files were handled

Examples:
  linkdetect linkify                           # Interactive mode
  linkdetect linkify --dry-run                 # Preview changes only
  linkdetect linkify --yes                     # Rewrite every file without prompting
  linkdetect linkify --style=inline ./docs
  cat notes.md | linkdetect linkify -          # Rewrite stdin to stdout`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLinkify,
}

func init() {
	rootCmd.AddCommand(linkifyCmd)

	linkifyCmd.Flags().BoolVarP(&linkifyDryRun, "dry-run", "n", false,
		"Preview changes without modifying files")
	linkifyCmd.Flags().BoolVarP(&linkifyYes, "yes", "y", false,
		"Apply all changes without prompting")
	linkifyCmd.Flags().StringVar(&linkifyStyle, "style", "",
		"Rewrite style: autolink, inline (default autolink)")
	linkifyCmd.Flags().BoolVar(&linkifyShowStats, "stats", false,
		"Show detailed performance statistics")

	linkifyCmd.Flags().StringSliceVar(&linkifyIgnoreDomains, "ignore-domain", nil,
		"Domains to leave alone, includes subdomains")
	linkifyCmd.Flags().StringSliceVar(&linkifyIgnorePatterns, "ignore-pattern", nil,
		"Glob patterns to leave alone")
	linkifyCmd.Flags().StringSliceVar(&linkifyIgnoreRegex, "ignore-regex", nil,
		"Regex patterns to leave alone")
}

func runLinkify(_ *cobra.Command, args []string) {
	perf := stats.New()

	style, err := fixer.ParseStyle(loaded.GetLinkifyStyle(linkifyStyle))
	exitOnError(err, "Invalid flags")

	path := getPathArg(args)

	urlFilter, err := loaded.CreateFilter(linkifyIgnoreDomains, linkifyIgnorePatterns, linkifyIgnoreRegex)
	exitOnError(err, "Error creating filter")

	if path == "-" {
		exitOnError(linkifyStream(fixer.New(style), urlFilter, os.Stdin, os.Stdout), "Error rewriting input")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Phase 1: Scan for Markdown files
	opts := loaded.BuildScanOptions(path, linkifyTypes, linkifyTypes)
	opts.Types = linkifyTypes

	perf.StartScan()
	files, err := scanner.FindFilesWithOptions(opts)
	exitOnError(err, "Error scanning directory")
	perf.EndScan(len(files))

	fmt.Printf("Found %s\n", helpers.Pluralize(len(files), "Markdown file"))

	// Phase 2: Extract links and keep those not ignored
	perf.StartExtract()
	links, failed, err := extractFiles(ctx, files, loaded.GetWorkers(0, 0))
	exitOnError(err, "Extraction stopped")
	links = urlFilter.Apply(links)
	perf.EndExtract(len(links), helpers.CountUniqueURLs(links), urlFilter.IgnoredCount(), len(failed))

	// Phase 3: Plan and apply rewrites
	f := fixer.New(style)
	changes := f.FindFixes(links)

	showStats := loaded.GetShowStats(linkifyShowStats)
	defer func() {
		if showStats {
			perf.Finish()
			fmt.Print(perf.String())
		}
	}()

	fmt.Println()
	fmt.Print(f.Preview(changes))

	if len(changes) == 0 {
		return
	}

	switch {
	case linkifyDryRun:
		fmt.Println("Dry-run mode: no files were modified.")

	case linkifyYes:
		perf.StartOutput()
		results := f.ApplyAll(changes)
		perf.EndOutput(countApplied(results))
		fmt.Println(fixer.DetailedSummary(results))
		if hasErrors(results) {
			fmt.Print(fixer.Summary(results))
			os.Exit(1)
		}

	default:
		perf.StartOutput()
		results, quit := runInteractiveLinkify(f, changes, os.Stdin, os.Stdout)
		perf.EndOutput(countApplied(results))
		fmt.Println()
		fmt.Println(fixer.Summary(results))
		if quit {
			os.Exit(2)
		}
	}
}

// linkifyStream rewrites Markdown read from in and writes the result to out.
func linkifyStream(f *fixer.Fixer, urlFilter *filter.Filter, in io.Reader, out io.Writer) error {
	content, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	fc, err := f.FindFixesInContent("stdin.md", content)
	if err != nil {
		return err
	}

	fixes := slices.DeleteFunc(fc.Fixes, func(fix fixer.Fix) bool {
		_, _, ignored := urlFilter.Match(fix.URL)
		return ignored
	})
	rewritten, applied, _ := fixer.Rewrite(content, fixes)
	logger.Debug("rewrote %s from stdin", helpers.Pluralize(len(applied), "link"))

	_, err = out.Write(rewritten)
	return err
}

// runInteractiveLinkify prompts for each file before rewriting it. It
// reports whether the user quit before every file was handled.
func runInteractiveLinkify(
	f *fixer.Fixer, changes []fixer.FileChanges, in io.Reader, out io.Writer,
) (results []fixer.FixResult, quit bool) {
	reader := bufio.NewReader(in)
	applyAll := false

	apply := func(fc fixer.FileChanges) {
		result, err := f.ApplyToFile(fc)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		} else {
			fmt.Fprintf(out, "Rewrote %s in %s\n", helpers.Pluralize(result.Applied, "link"), fc.FilePath)
		}
		results = append(results, *result)
	}

	skip := func(fc fixer.FileChanges) {
		results = append(results, fixer.FixResult{FilePath: fc.FilePath, Skipped: fc.TotalFixes})
	}

	for i := 0; i < len(changes); i++ {
		fc := changes[i]

		if applyAll {
			apply(fc)
			continue
		}

		fmt.Fprintf(out, "\nRewrite %s? (%s) [y/n/a/q/?] ",
			fc.FilePath, helpers.Pluralize(fc.TotalFixes, "link"))

		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			// No more input: leave the remaining files alone.
			for _, rest := range changes[i:] {
				skip(rest)
			}
			return results, true
		}

		switch strings.TrimSpace(strings.ToLower(input)) {
		case "y", "yes":
			apply(fc)

		case "n", "no":
			fmt.Fprintf(out, "Skipped %s\n", fc.FilePath)
			skip(fc)

		case "a", "all":
			apply(fc)
			applyAll = true

		case "q", "quit":
			fmt.Fprintln(out, "\nQuitting. Remaining files were not modified.")
			for _, rest := range changes[i:] {
				skip(rest)
			}
			return results, true

		case "?", "help":
			printInteractiveHelp(out)
			i-- // Re-prompt for this file

		default:
			fmt.Fprintln(out, "Invalid input. Use y/n/a/q/? (or type 'help')")
			i--
		}
	}

	return results, false
}

// printInteractiveHelp displays help for interactive mode options.
func printInteractiveHelp(out io.Writer) {
	fmt.Fprintln(out, `
Interactive mode options:
  y, yes  - Rewrite this file
  n, no   - Skip this file
  a, all  - Rewrite this file and all remaining files
  q, quit - Quit without rewriting remaining files
  ?, help - Show this help`)
}

func countApplied(results []fixer.FixResult) int {
	n := 0
	for _, r := range results {
		n += r.Applied
	}
	return n
}

func hasErrors(results []fixer.FixResult) bool {
	for _, r := range results {
		if r.Error != nil {
			return true
		}
	}
	return false
}
