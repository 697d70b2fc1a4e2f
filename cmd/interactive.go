package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/goodbytes/linkdetect/internal/ui"
)

// Flag variables for the interactive command.
var (
	interactiveTypes          []string
	interactiveIgnoreDomains  []string
	interactiveIgnorePatterns []string
	interactiveIgnoreRegex    []string
)

// interactiveCmd represents the interactive command.
var interactiveCmd = &cobra.Command{
	Use:   "interactive [path]",
	Short: "Browse links in a terminal UI",
	Long: `Launch an interactive terminal UI that extracts and lists links.

Links appear as files are parsed. Select one to see where it was found.

Controls:
  ↑/↓ or j/k    Navigate through links
  /             Search by URL or file
  f             Cycle filter: all, bare, markup, structured
  ?             Toggle help
  q             Quit`,
	Args: cobra.MaximumNArgs(1),
	Run:  runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)

	interactiveCmd.Flags().StringSliceVarP(&interactiveTypes, "types", "T", defaultTypes,
		"File types to scan (comma-separated): md, txt, json, yaml, toml, xml")
	interactiveCmd.Flags().StringSliceVar(&interactiveIgnoreDomains, "ignore-domain", nil,
		"Domains to ignore, includes subdomains")
	interactiveCmd.Flags().StringSliceVar(&interactiveIgnorePatterns, "ignore-pattern", nil,
		"Glob patterns to ignore")
	interactiveCmd.Flags().StringSliceVar(&interactiveIgnoreRegex, "ignore-regex", nil,
		"Regex patterns to ignore")
}

func runInteractive(_ *cobra.Command, args []string) {
	opts := loaded.BuildScanOptions(getPathArg(args), interactiveTypes, defaultTypes)
	exitOnError(validateFileTypes(opts.Types), "Invalid file types")

	urlFilter, err := loaded.CreateFilter(interactiveIgnoreDomains, interactiveIgnorePatterns, interactiveIgnoreRegex)
	exitOnError(err, "Error creating filter")

	m := ui.New(ui.Options{
		Scan:    opts,
		Ignore:  urlFilter,
		Workers: loaded.GetWorkers(0, 0),
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if fm, ok := final.(ui.Model); ok {
		fm.Cancel()
	}
	exitOnError(err, "Error running interactive mode")
}
