package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/goodbytes/linkdetect/internal/config"
	"github.com/goodbytes/linkdetect/internal/filter"
	"github.com/goodbytes/linkdetect/internal/logger"
	"github.com/goodbytes/linkdetect/internal/parser"
	"github.com/goodbytes/linkdetect/internal/scanner"

	// Import parser subpackages to trigger their init() registration.
	_ "github.com/goodbytes/linkdetect/internal/parser/json"
	_ "github.com/goodbytes/linkdetect/internal/parser/markdown"
	_ "github.com/goodbytes/linkdetect/internal/parser/toml"
	_ "github.com/goodbytes/linkdetect/internal/parser/xml"
	_ "github.com/goodbytes/linkdetect/internal/parser/yaml"
)

// defaultTypes are scanned when neither a flag nor the config names types.
var defaultTypes = []string{"md", "txt", "json", "yaml", "toml", "xml"}

// LoadedConfig wraps a loaded configuration and provides helper methods
// for getting effective values that respect CLI overrides.
type LoadedConfig struct {
	cfg      *config.Config
	noConfig bool
}

// LoadConfig resolves the configuration. An explicit path is read as is,
// otherwise the nearest config file above the working directory is used
// unless noConfig is set. Environment overrides from lookup apply in both
// cases. Returns an error if a config file exists but is invalid.
func LoadConfig(path string, noConfig bool, lookup func(string) (string, bool)) (*LoadedConfig, error) {
	cfg := &config.Config{}

	if !noConfig {
		var err error
		if path != "" {
			cfg, err = config.LoadFrom(path)
		} else {
			var wd string
			if wd, err = os.Getwd(); err == nil {
				cfg, err = config.FindAndLoad(wd)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	if lookup != nil {
		if err := cfg.ApplyEnv(lookup); err != nil {
			return nil, fmt.Errorf("reading environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &LoadedConfig{cfg: cfg, noConfig: noConfig}, nil
}

// Config returns the underlying config for direct access.
func (lc *LoadedConfig) Config() *config.Config {
	return lc.cfg
}

// GetTypes returns the effective file types.
// CLI types override config if they differ from the CLI default.
func (lc *LoadedConfig) GetTypes(cliTypes, cliDefault []string) []string {
	if !slices.Equal(cliTypes, cliDefault) {
		return cliTypes
	}
	if lc.cfg.HasTypes() {
		return lc.cfg.Types
	}
	return cliDefault
}

// GetWorkers returns the effective worker count.
// CLI overrides config if it differs from the default.
func (lc *LoadedConfig) GetWorkers(cliValue, defaultValue int) int {
	if cliValue != defaultValue {
		return cliValue
	}
	if lc.cfg.Workers > 0 {
		return lc.cfg.Workers
	}
	return defaultValue
}

// GetStrict returns the effective strict mode setting.
// CLI true overrides config.
func (lc *LoadedConfig) GetStrict(cliValue bool) bool {
	return cliValue || lc.cfg.Strict
}

// GetOutputFormat returns the effective output format.
// CLI overrides config if set.
func (lc *LoadedConfig) GetOutputFormat(cliValue string) string {
	if cliValue != "" {
		return cliValue
	}
	return lc.cfg.Output.Format
}

// GetShowIgnored returns the effective showIgnored setting.
func (lc *LoadedConfig) GetShowIgnored(cliValue bool) bool {
	return cliValue || lc.cfg.Output.ShowIgnored
}

// GetShowStats returns the effective showStats setting.
func (lc *LoadedConfig) GetShowStats(cliValue bool) bool {
	return cliValue || lc.cfg.Output.ShowStats
}

// GetUnique returns the effective unique setting.
func (lc *LoadedConfig) GetUnique(cliValue bool) bool {
	return cliValue || lc.cfg.Output.Unique
}

// GetRenderTarget returns the effective render target, terminal by default.
func (lc *LoadedConfig) GetRenderTarget(cliValue string) string {
	return firstSet(cliValue, lc.cfg.Render.To, "terminal")
}

// GetHyperlinks returns the effective hyperlink mode, auto by default.
func (lc *LoadedConfig) GetHyperlinks(cliValue string) string {
	return firstSet(cliValue, lc.cfg.Render.Hyperlinks, "auto")
}

// GetLinkifyStyle returns the effective linkify style, autolink by default.
func (lc *LoadedConfig) GetLinkifyStyle(cliValue string) string {
	return firstSet(cliValue, lc.cfg.Linkify.Style, "autolink")
}

// BuildScanOptions creates scanner.ScanOptions from config and path.
func (lc *LoadedConfig) BuildScanOptions(path string, cliTypes, cliDefaultTypes []string) scanner.ScanOptions {
	return scanner.ScanOptions{
		Root:    path,
		Types:   lc.GetTypes(cliTypes, cliDefaultTypes),
		Include: lc.cfg.Scan.Include,
		Exclude: lc.cfg.Scan.Exclude,
	}
}

// CreateFilter builds a URL filter from the config merged with CLI flags.
func (lc *LoadedConfig) CreateFilter(cliDomains, cliPatterns, cliRegex []string) (*filter.Filter, error) {
	return CreateFilterWithConfig(lc.cfg, cliDomains, cliPatterns, cliRegex)
}

// CreateFilterWithConfig builds a URL filter using a pre-loaded config.
// CLI flags are merged additively with the config settings.
// Returns nil if no filter rules are defined.
func CreateFilterWithConfig(cfg *config.Config, cliDomains, cliPatterns, cliRegex []string) (*filter.Filter, error) {
	domains := append(slices.Clone(cfg.Ignore.Domains), cliDomains...)
	patterns := append(slices.Clone(cfg.Ignore.Patterns), cliPatterns...)
	regex := append(slices.Clone(cfg.Ignore.Regex), cliRegex...)

	if len(domains) == 0 && len(patterns) == 0 && len(regex) == 0 {
		return nil, nil
	}

	f, err := filter.New(filter.Config{
		Domains:       domains,
		GlobPatterns:  patterns,
		RegexPatterns: regex,
	})
	if err != nil {
		return nil, err
	}

	d, g, r := f.Stats()
	logger.Debug("ignore rules: %d domains, %d globs, %d regexes", d, g, r)
	return f, nil
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// exitOnError prints an error message and exits if err is not nil.
func exitOnError(err error, message string) {
	if err != nil {
		if message != "" {
			fmt.Fprintf(os.Stderr, "%s: %v\n", message, err)
		} else {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		os.Exit(1)
	}
}

// getPathArg returns the path argument or "." as default.
func getPathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// openInput opens the file named by the first argument, or stdin when there
// is none or it is "-".
func openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(args[0])
}

// validateFileTypes checks if all specified file types are supported.
func validateFileTypes(types []string) error {
	if _, err := parser.DefaultRegistry().ExtensionsForTypes(types); err != nil {
		return fmt.Errorf("%w (supported: %s)", err, strings.Join(parser.SupportedFileTypes(), ", "))
	}
	return nil
}
