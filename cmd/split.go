package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goodbytes/linkdetect/internal/helpers"
	"github.com/goodbytes/linkdetect/internal/logger"
	"github.com/goodbytes/linkdetect/pkg/linkdetector"
)

// Flag variables for the split command.
var (
	splitFormat    string
	splitLinksOnly bool
)

var splitFormats = []string{"text", "json", "yaml"}

// splitCmd represents the split command.
var splitCmd = &cobra.Command{
	Use:   "split [file|-]",
	Short: "Split text into plain and link fragments",
	Long: `Split a file, or stdin, into an ordered list of fragments.

Every fragment is either plain text or a link, and the fragments joined
together give back the input exactly. Offsets are byte offsets.

Examples:
  linkdetect split notes.txt
  echo "see https://go.dev" | linkdetect split
  linkdetect split --links-only --format=json notes.txt`,
	Args: cobra.MaximumNArgs(1),
	Run:  runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)

	splitCmd.Flags().StringVarP(&splitFormat, "format", "f", "text",
		"Output format: text, json, yaml")
	splitCmd.Flags().BoolVar(&splitLinksOnly, "links-only", false,
		"Print only the link fragments")
}

func runSplit(_ *cobra.Command, args []string) {
	if !slices.Contains(splitFormats, splitFormat) {
		exitOnError(fmt.Errorf("invalid format %q; valid formats: text, json, yaml", splitFormat), "Invalid flags")
	}

	in, err := openInput(args)
	exitOnError(err, "Error opening input")
	defer in.Close()

	fragments, err := linkdetector.ParseReader(in)
	exitOnError(err, "Error reading input")

	logger.Debug("split input into %s, %s",
		helpers.Pluralize(len(fragments), "fragment"),
		helpers.Pluralize(len(linkdetector.Links(fragments)), "link"))

	if splitLinksOnly {
		fragments = linkdetector.Links(fragments)
	}

	exitOnError(writeFragments(os.Stdout, fragments, splitFormat), "Error writing output")
}

// writeFragments prints fragments in the given format.
func writeFragments(w io.Writer, fragments []linkdetector.Fragment, format string) error {
	switch format {
	case "json":
		if fragments == nil {
			fragments = []linkdetector.Fragment{}
		}
		data, err := json.MarshalIndent(fragments, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(fragments); err != nil {
			return err
		}
		return enc.Close()

	default:
		for _, f := range fragments {
			kind := "text"
			if f.IsLink() {
				kind = "link"
			}
			span := fmt.Sprintf("[%d,%d)", f.StartIndex(), f.EndIndex())
			if _, err := fmt.Fprintf(w, "%s  %-12s %q\n", kind, span, f.String()); err != nil {
				return err
			}
		}
		return nil
	}
}
