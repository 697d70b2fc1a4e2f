// Package filter drops extracted links by domain, glob or regex rules.
package filter

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/gobwas/glob"

	"github.com/goodbytes/linkdetect/internal/parser"
)

// Rule kinds recorded in IgnoreReason.Type.
const (
	RuleDomain  = "domain"
	RulePattern = "pattern"
	RuleRegex   = "regex"
)

// IgnoreReason describes why a link was ignored.
type IgnoreReason struct {
	Type   string `json:"type" yaml:"type"`
	Rule   string `json:"rule" yaml:"rule"`
	URL    string `json:"url" yaml:"url"`
	File   string `json:"file" yaml:"file"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

// Filter decides which links are left out of reports.
// It is not safe for concurrent use: matches are recorded as they happen.
type Filter struct {
	// domains maps domain names for O(1) lookup.
	// Each domain also matches its subdomains.
	domains map[string]bool

	globPatterns  []compiledGlob
	regexPatterns []compiledRegex

	ignored []IgnoreReason
}

type compiledGlob struct {
	pattern  glob.Glob
	original string
}

type compiledRegex struct {
	pattern  *regexp.Regexp
	original string
}

// Config holds filter configuration.
type Config struct {
	Domains       []string // Domains to ignore (includes subdomains)
	GlobPatterns  []string // Glob patterns (e.g., "*.local/*")
	RegexPatterns []string // Regex patterns (e.g., ".*\\.internal\\..*")
}

// New creates a new Filter from the given configuration.
// Returns an error if any pattern fails to compile.
func New(cfg Config) (*Filter, error) {
	f := &Filter{
		domains: map[string]bool{},
		ignored: []IgnoreReason{},
	}

	for _, d := range cfg.Domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			f.domains[d] = true
		}
	}

	for _, p := range cfg.GlobPatterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", p, err)
		}
		f.globPatterns = append(f.globPatterns, compiledGlob{pattern: g, original: p})
	}

	for _, p := range cfg.RegexPatterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", p, err)
		}
		f.regexPatterns = append(f.regexPatterns, compiledRegex{pattern: r, original: p})
	}

	return f, nil
}

// Match returns the kind and text of the first rule that matches rawURL.
// Rules are tried cheapest first: domain, glob, regex.
func (f *Filter) Match(rawURL string) (kind, rule string, ok bool) {
	if f == nil {
		return "", "", false
	}
	if rule, ok := f.matchesDomain(rawURL); ok {
		return RuleDomain, rule, true
	}
	if rule, ok := f.matchesGlob(rawURL); ok {
		return RulePattern, rule, true
	}
	if rule, ok := f.matchesRegex(rawURL); ok {
		return RuleRegex, rule, true
	}
	return "", "", false
}

// ShouldIgnore checks if a link should be skipped and records the reason
// when it is.
func (f *Filter) ShouldIgnore(link parser.Link) bool {
	kind, rule, ok := f.Match(link.URL)
	if !ok {
		return false
	}

	f.ignored = append(f.ignored, IgnoreReason{
		Type:   kind,
		Rule:   rule,
		URL:    link.URL,
		File:   link.FilePath,
		Line:   link.Line,
		Column: link.Column,
	})
	return true
}

// Apply returns the links that no rule matches, in order.
// A nil filter keeps everything.
func (f *Filter) Apply(links []parser.Link) []parser.Link {
	if !f.HasRules() {
		return links
	}

	kept := make([]parser.Link, 0, len(links))
	for _, l := range links {
		if !f.ShouldIgnore(l) {
			kept = append(kept, l)
		}
	}
	return kept
}

// matchesDomain checks the URL's host against the ignored domains and their
// subdomains.
func (f *Filter) matchesDomain(rawURL string) (string, bool) {
	if len(f.domains) == 0 {
		return "", false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", false
	}

	if f.domains[host] {
		return host, true
	}

	// "example.com" also covers "www.example.com".
	for domain := range f.domains {
		if strings.HasSuffix(host, "."+domain) {
			return domain, true
		}
	}

	return "", false
}

func (f *Filter) matchesGlob(rawURL string) (string, bool) {
	for _, g := range f.globPatterns {
		if g.pattern.Match(rawURL) {
			return g.original, true
		}
	}
	return "", false
}

func (f *Filter) matchesRegex(rawURL string) (string, bool) {
	for _, r := range f.regexPatterns {
		if r.pattern.MatchString(rawURL) {
			return r.original, true
		}
	}
	return "", false
}

// IgnoredCount returns the number of links that were ignored.
func (f *Filter) IgnoredCount() int {
	if f == nil {
		return 0
	}
	return len(f.ignored)
}

// IgnoredURLs returns all ignored links with their reasons.
func (f *Filter) IgnoredURLs() []IgnoreReason {
	if f == nil {
		return nil
	}
	return f.ignored
}

// Reset clears the list of ignored links, e.g. before a watch re-run.
func (f *Filter) Reset() {
	if f != nil {
		f.ignored = f.ignored[:0]
	}
}

// HasRules returns true if the filter has any rules defined.
func (f *Filter) HasRules() bool {
	if f == nil {
		return false
	}
	return len(f.domains) > 0 || len(f.globPatterns) > 0 || len(f.regexPatterns) > 0
}

// Stats returns a summary of the filter's rules.
func (f *Filter) Stats() (domains, globs, regexes int) {
	if f == nil {
		return 0, 0, 0
	}
	return len(f.domains), len(f.globPatterns), len(f.regexPatterns)
}
