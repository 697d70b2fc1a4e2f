// Package config handles loading configuration from .linkdetect.yaml or
// .linkdetect.toml files and LINKDETECT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config file names, in lookup order.
const (
	DefaultConfigFileName = ".linkdetect.yaml"
	TOMLConfigFileName    = ".linkdetect.toml"
)

// Environment variables read by ApplyEnv.
const (
	EnvTypes         = "LINKDETECT_TYPES"
	EnvWorkers       = "LINKDETECT_WORKERS"
	EnvFormat        = "LINKDETECT_FORMAT"
	EnvIgnoreDomains = "LINKDETECT_IGNORE_DOMAINS"
	EnvVerbose       = "LINKDETECT_VERBOSE"
)

// Accepted values for the enumerated settings. The empty string always means
// "use the command default".
var (
	OutputFormats   = []string{"json", "yaml", "xml", "junit", "markdown"}
	RenderTargets   = []string{"html", "markdown", "terminal"}
	HyperlinkModes  = []string{"auto", "always", "never"}
	LinkifyStyles   = []string{"autolink", "inline"}
	fileNamesLookup = []string{DefaultConfigFileName, TOMLConfigFileName}
)

// Config represents the complete configuration structure.
type Config struct {
	// Types are the file types to scan (e.g., "md", "txt", "yaml").
	Types []string `yaml:"types" toml:"types"`

	// Workers is the size of the extraction worker pool. Zero means one per CPU.
	Workers int `yaml:"workers" toml:"workers"`

	// Strict fails the run when a file cannot be parsed.
	Strict bool `yaml:"strict" toml:"strict"`

	// Verbose enables diagnostic logging on stderr.
	Verbose bool `yaml:"verbose" toml:"verbose"`

	Scan    ScanConfig    `yaml:"scan" toml:"scan"`
	Ignore  IgnoreConfig  `yaml:"ignore" toml:"ignore"`
	Output  OutputConfig  `yaml:"output" toml:"output"`
	Render  RenderConfig  `yaml:"render" toml:"render"`
	Linkify LinkifyConfig `yaml:"linkify" toml:"linkify"`

	// Source is the file the config was read from, empty when none was found.
	Source string `yaml:"-" toml:"-"`
}

// ScanConfig holds file selection patterns, relative to the scanned root.
type ScanConfig struct {
	Include []string `yaml:"include" toml:"include"`
	Exclude []string `yaml:"exclude" toml:"exclude"`
}

// IgnoreConfig holds all ignore rules.
type IgnoreConfig struct {
	// Domains to ignore (automatically includes subdomains).
	// Example: "example.com" will also match "www.example.com", "api.example.com".
	Domains []string `yaml:"domains" toml:"domains"`

	// Patterns are glob patterns for URL matching.
	// Example: "*.local/*", "*/internal/*"
	Patterns []string `yaml:"patterns" toml:"patterns"`

	// Regex are regular expression patterns for URL matching.
	// Example: ".*\\.test$", ".*/v[0-9]+/draft/.*"
	Regex []string `yaml:"regex" toml:"regex"`
}

// OutputConfig controls reports of the extract command.
type OutputConfig struct {
	Format      string `yaml:"format" toml:"format"`
	ShowIgnored bool   `yaml:"show_ignored" toml:"show_ignored"`
	ShowStats   bool   `yaml:"show_stats" toml:"show_stats"`
	Unique      bool   `yaml:"unique" toml:"unique"`
}

// RenderConfig controls the render command.
type RenderConfig struct {
	To         string `yaml:"to" toml:"to"`
	Hyperlinks string `yaml:"hyperlinks" toml:"hyperlinks"`
}

// LinkifyConfig controls the linkify command.
type LinkifyConfig struct {
	Style string `yaml:"style" toml:"style"`
}

// LoadFrom reads configuration from a specific path. Files ending in .toml
// are decoded as TOML, everything else as YAML.
// Returns an empty config if the file doesn't exist (not an error).
// Returns an error only if the file exists but cannot be parsed.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.Source = path
	return cfg, nil
}

// FindAndLoad searches for a config file starting from the given directory
// and walking up to parent directories until it finds one or reaches root.
// In each directory the YAML file wins over the TOML one.
func FindAndLoad(startDir string) (*Config, error) {
	dir := startDir

	for {
		for _, name := range fileNamesLookup {
			configPath := filepath.Join(dir, name)
			if _, err := os.Stat(configPath); err == nil {
				return LoadFrom(configPath)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return &Config{}, nil
		}
		dir = parent
	}
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables already set are kept. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// ApplyEnv overrides settings from LINKDETECT_* variables found by lookup,
// typically os.LookupEnv. Ignored domains are added to the file's list.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvTypes); ok && strings.TrimSpace(v) != "" {
		c.Types = splitList(v)
	}

	if v, ok := lookup(EnvWorkers); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}

	if v, ok := lookup(EnvFormat); ok && strings.TrimSpace(v) != "" {
		c.Output.Format = strings.ToLower(strings.TrimSpace(v))
	}

	if v, ok := lookup(EnvIgnoreDomains); ok {
		c.Ignore.Domains = append(c.Ignore.Domains, splitList(v)...)
	}

	if v, ok := lookup(EnvVerbose); ok && strings.TrimSpace(v) != "" {
		verbose, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvVerbose, err)
		}
		c.Verbose = verbose
	}

	return nil
}

// Validate checks enumerated settings and numeric ranges.
func (c *Config) Validate() error {
	var errs []error

	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	errs = append(errs,
		checkOneOf("output.format", c.Output.Format, OutputFormats),
		checkOneOf("render.to", c.Render.To, RenderTargets),
		checkOneOf("render.hyperlinks", c.Render.Hyperlinks, HyperlinkModes),
		checkOneOf("linkify.style", c.Linkify.Style, LinkifyStyles),
	)

	return errors.Join(errs...)
}

func checkOneOf(field, value string, allowed []string) error {
	if value == "" || slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%s: invalid value %q (valid: %s)", field, value, strings.Join(allowed, ", "))
}

// IsEmpty returns true if the config sets nothing.
func (c *Config) IsEmpty() bool {
	return !c.HasTypes() && !c.HasIgnoreRules() && c.Workers == 0 && !c.Strict && !c.Verbose &&
		len(c.Scan.Include) == 0 && len(c.Scan.Exclude) == 0 &&
		c.Output == OutputConfig{} && c.Render == RenderConfig{} && c.Linkify == LinkifyConfig{}
}

// HasTypes reports whether file types are configured.
func (c *Config) HasTypes() bool {
	return len(c.Types) > 0
}

// HasIgnoreRules reports whether any ignore rule is configured.
func (c *Config) HasIgnoreRules() bool {
	return len(c.Ignore.Domains) > 0 ||
		len(c.Ignore.Patterns) > 0 ||
		len(c.Ignore.Regex) > 0
}

// splitList splits a comma separated list, dropping empty items.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
