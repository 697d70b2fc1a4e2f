package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goodbytes/linkdetect/internal/helpers"
	"github.com/goodbytes/linkdetect/internal/render"
	"github.com/goodbytes/linkdetect/internal/stats"
	"github.com/goodbytes/linkdetect/pkg/linkdetector"
)

// Flag variables for the render command.
var (
	renderTo         string
	renderHyperlinks string
	renderShowStats  bool
)

// renderCmd represents the render command.
var renderCmd = &cobra.Command{
	Use:   "render [file|-]",
	Short: "Render text with its links marked up",
	Long: `Render a file, or stdin, with every link marked up for the target.

Targets:
  html      escape the text and wrap links in <a href="...">
  markdown  wrap bare links as <url> autolinks
  terminal  underline links; on a terminal they become clickable
            hyperlinks (OSC 8)

Examples:
  linkdetect render notes.txt
  linkdetect render --to=html notes.txt > notes.html
  cat log.txt | linkdetect render --hyperlinks=never`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&renderTo, "to", "",
		"Render target: "+strings.Join(render.ValidTargets(), ", ")+" (default terminal)")
	renderCmd.Flags().StringVar(&renderHyperlinks, "hyperlinks", "",
		"Terminal hyperlinks: auto, always, never (default auto)")
	renderCmd.Flags().BoolVar(&renderShowStats, "stats", false,
		"Show performance statistics on stderr")
}

func runRender(_ *cobra.Command, args []string) {
	perf := stats.New()

	mode, err := render.ParseHyperlinkMode(loaded.GetHyperlinks(renderHyperlinks))
	exitOnError(err, "Invalid flags")

	r, err := render.New(render.Target(loaded.GetRenderTarget(renderTo)),
		render.Options{Hyperlinks: mode.Enabled(os.Stdout)})
	exitOnError(err, "Invalid flags")

	in, err := openInput(args)
	exitOnError(err, "Error opening input")
	defer in.Close()

	perf.StartExtract()
	fragments, err := linkdetector.ParseReader(in)
	exitOnError(err, "Error reading input")
	links := linkdetector.Links(fragments)
	urls := make([]string, len(links))
	for i, f := range links {
		urls[i] = f.String()
	}
	perf.EndExtract(len(links), helpers.CountUniqueStrings(urls), 0, 0)

	perf.StartOutput()
	exitOnError(r.Render(os.Stdout, fragments), "Error rendering")
	perf.EndOutput(len(fragments))

	if loaded.GetShowStats(renderShowStats) {
		perf.Finish()
		fmt.Fprint(os.Stderr, perf.String())
	}
}
