// Package scanner finds files in a directory based on their extensions.
package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/goodbytes/linkdetect/internal/parser"
)

// FindFiles walks a directory and returns all files matching the given extensions.
// Extensions should include the leading dot (e.g., ".md", ".json").
// It skips hidden directories (starting with .) like .git.
func FindFiles(root string, extensions []string) ([]string, error) {
	if len(extensions) == 0 {
		return nil, nil
	}

	normalizedExts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		normalizedExts[strings.ToLower(ext)] = true
	}

	var files []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() && IsHidden(d.Name()) && path != root {
			return filepath.SkipDir
		}

		if !d.IsDir() && normalizedExts[strings.ToLower(filepath.Ext(d.Name()))] {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// FindFilesByTypes walks a directory and returns all files matching the given type names.
// Type names are without the leading dot (e.g., "md", "json", "yaml") and
// select every extension of the registered parser, so "yaml" also finds .yml.
func FindFilesByTypes(root string, types []string) ([]string, error) {
	if len(types) == 0 {
		return nil, nil
	}

	extensions, err := parser.DefaultRegistry().ExtensionsForTypes(types)
	if err != nil {
		return nil, err
	}

	return FindFiles(root, extensions)
}

// IsHidden reports whether a file or directory name is hidden (".git").
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// ScanOptions holds options for scanning files with filtering.
type ScanOptions struct {
	// Root is the directory to scan.
	Root string

	// Types are the file types to include (e.g., "md", "txt", "yaml").
	Types []string

	// Include patterns (glob) - if set, only matching files are included.
	Include []string

	// Exclude patterns (glob) - matching files are excluded.
	Exclude []string
}

// FindFilesWithOptions scans for files with include/exclude filtering.
// Patterns match the path relative to Root, with forward slashes.
func FindFilesWithOptions(opts ScanOptions) ([]string, error) {
	files, err := FindFilesByTypes(opts.Root, opts.Types)
	if err != nil {
		return nil, err
	}

	if len(opts.Include) > 0 {
		files, err = filterByGlobPatterns(files, opts.Root, opts.Include, true)
		if err != nil {
			return nil, err
		}
	}

	if len(opts.Exclude) > 0 {
		files, err = filterByGlobPatterns(files, opts.Root, opts.Exclude, false)
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// Matches reports whether path passes the include/exclude patterns of opts.
// It applies the same rules as FindFilesWithOptions to a single file and is
// used when files arrive one at a time.
func (opts ScanOptions) Matches(path string) (bool, error) {
	kept, err := filterByGlobPatterns([]string{path}, opts.Root, opts.Include, true)
	if err != nil || len(kept) == 0 {
		return false, err
	}
	kept, err = filterByGlobPatterns(kept, opts.Root, opts.Exclude, false)
	return len(kept) == 1, err
}

// filterByGlobPatterns filters files by glob patterns.
// If include=true, keeps only files matching any pattern.
// If include=false, removes files matching any pattern.
func filterByGlobPatterns(files []string, root string, patterns []string, include bool) ([]string, error) {
	if len(patterns) == 0 {
		return files, nil
	}

	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, g)
	}

	result := make([]string, 0, len(files))
	for _, f := range files {
		relPath, err := filepath.Rel(root, f)
		if err != nil {
			relPath = f
		}
		relPath = filepath.ToSlash(relPath)

		if matchesAnyGlob(relPath, compiled) == include {
			result = append(result, f)
		}
	}

	return result, nil
}

// matchesAnyGlob checks if a path matches any of the compiled glob patterns.
func matchesAnyGlob(path string, patterns []glob.Glob) bool {
	for _, g := range patterns {
		if g.Match(path) {
			return true
		}
	}
	return false
}
