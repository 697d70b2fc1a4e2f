package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/goodbytes/linkdetect/internal/config"
	"github.com/goodbytes/linkdetect/internal/logger"
)

// version is set by main.go via SetVersion.
var version = "dev"

// Global flag variables.
var (
	verbose    bool
	configPath string
	noConfig   bool
)

// loaded is the configuration resolved before any subcommand runs.
var loaded = &LoadedConfig{cfg: &config.Config{}}

// SetVersion sets the version string (called from main).
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "linkdetect",
	Short:   "Find the links in text, Markdown and data files",
	Version: version,
	Long: `Linkdetect splits text into plain runs and links.

It finds http, https and ftp URLs in plain text, Markdown, JSON, YAML,
TOML and XML files. Use 'extract' for reports, 'render' to turn text into
HTML or hyperlinked terminal output, 'linkify' to wrap bare Markdown
links, and 'interactive' to browse links in a terminal UI.

Examples:
  linkdetect split notes.txt
  linkdetect extract ./docs --types=md,yaml
  linkdetect extract --format=json
  linkdetect render --to=html README.txt
  linkdetect linkify --dry-run
  linkdetect interactive`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Print diagnostic messages to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file to use instead of searching for .linkdetect.yaml")
	rootCmd.PersistentFlags().BoolVar(&noConfig, "no-config", false,
		"Skip loading the config file")
}

// setup loads .env, the config file and environment overrides, then
// configures logging.
func setup(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	lc, err := LoadConfig(configPath, noConfig, os.LookupEnv)
	if err != nil {
		return err
	}
	loaded = lc

	cfg := lc.Config()
	logger.SetVerbose(verbose || cfg.Verbose)
	switch {
	case cfg.Source != "":
		logger.Debug("using config %s", cfg.Source)
	case cfg.IsEmpty():
		logger.Debug("no config file or environment settings found")
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1) //nolint:revive // deep-exit is acceptable for CLI entry points
	}
}
