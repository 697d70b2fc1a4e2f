package parser

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileParser extracts links from one file format.
// Format packages register themselves from init().
type FileParser interface {
	// Extensions returns the file extensions this parser handles, with the
	// leading dot. The first one names the type (".md" -> "md").
	Extensions() []string

	// ValidateAndParse checks content and extracts its links in one pass.
	// It returns an error if the content is malformed for the format.
	ValidateAndParse(filename string, content []byte) ([]Link, error)
}

// Registry maps file extensions to parsers. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]FileParser // extension -> parser
	types   map[string]FileParser // type name -> parser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers: map[string]FileParser{},
		types:   map[string]FileParser{},
	}
}

// Register adds p for all its extensions, replacing earlier registrations.
// Every extension also becomes a type name, so "markdown" and "md" both
// select the Markdown parser.
func (r *Registry) Register(p FileParser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range p.Extensions() {
		ext = normalizeExtension(ext)
		r.parsers[ext] = p
		r.types[strings.TrimPrefix(ext, ".")] = p
	}
}

// Get returns the parser for an extension (".md", "md" and ".MD" are equal).
func (r *Registry) Get(ext string) (FileParser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parsers[normalizeExtension(ext)]
	return p, ok
}

// GetForFile returns the parser for a file name based on its extension.
func (r *Registry) GetForFile(filename string) (FileParser, bool) {
	return r.Get(filepath.Ext(filename))
}

// SupportedTypes returns the sorted primary type names, one per parser.
func (r *Registry) SupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[FileParser]struct{}{}
	result := make([]string, 0, len(r.types))
	for _, p := range r.parsers {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		if exts := p.Extensions(); len(exts) > 0 {
			result = append(result, strings.TrimPrefix(normalizeExtension(exts[0]), "."))
		}
	}

	sort.Strings(result)
	return result
}

// SupportedExtensions returns all registered extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.parsers))
	for ext := range r.parsers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// HasParser reports whether a parser is registered for the extension.
func (r *Registry) HasParser(ext string) bool {
	_, ok := r.Get(ext)
	return ok
}

// ExtensionsForTypes expands type names into every extension of the selected
// parsers: "md" yields .md, .mdx and .markdown. Unknown names are an error.
func (r *Registry) ExtensionsForTypes(types []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]struct{}{}
	extensions := make([]string, 0, len(types))
	for _, typeName := range types {
		name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(typeName)), ".")
		p, ok := r.types[name]
		if !ok {
			return nil, fmt.Errorf("unsupported file type: %s", typeName)
		}
		for _, ext := range p.Extensions() {
			ext = normalizeExtension(ext)
			if _, dup := seen[ext]; dup {
				continue
			}
			seen[ext] = struct{}{}
			extensions = append(extensions, ext)
		}
	}
	return extensions, nil
}

// normalizeExtension lowercases ext and adds the leading dot.
func normalizeExtension(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry format packages register with.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// RegisterParser registers p with the default registry.
func RegisterParser(p FileParser) {
	defaultRegistry.Register(p)
}

// GetParserForFile looks up the parser for filename in the default registry.
func GetParserForFile(filename string) (FileParser, bool) {
	return defaultRegistry.GetForFile(filename)
}

// SupportedFileTypes returns the primary type names of the default registry.
func SupportedFileTypes() []string {
	return defaultRegistry.SupportedTypes()
}
