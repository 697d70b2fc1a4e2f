package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
)

// ErrNoParser is returned for files whose extension has no registered parser.
var ErrNoParser = errors.New("no parser for file type")

// Options configures an Extractor.
type Options struct {
	// Registry selects parsers by extension. Nil means the default registry.
	Registry *Registry

	// ReadFile loads file content. Nil means os.ReadFile.
	ReadFile func(name string) ([]byte, error)

	// Workers is the number of files read and parsed concurrently.
	// Values below 1 mean runtime.NumCPU().
	Workers int
}

// DefaultWorkers is the worker count used when Options.Workers is unset.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// FileResult is the outcome of extracting one file.
type FileResult struct {
	Err   error
	Path  string
	Links []Link
	Index int // Position of Path in the input list
}

// Extractor reads files and extracts their links with a bounded worker pool.
type Extractor struct {
	opts Options
}

// NewExtractor creates an Extractor, filling unset options with defaults.
func NewExtractor(opts Options) *Extractor {
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
	}
	if opts.ReadFile == nil {
		opts.ReadFile = os.ReadFile
	}
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers()
	}
	return &Extractor{opts: opts}
}

// ExtractFile reads one file and extracts its links.
func (x *Extractor) ExtractFile(path string) ([]Link, error) {
	p, ok := x.opts.Registry.GetForFile(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNoParser)
	}

	content, err := x.opts.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	links, err := p.ValidateAndParse(path, content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return links, nil
}

// Extract processes files concurrently and streams results in completion
// order. The channel is closed once every started file is done. Canceling
// ctx stops handing out files; files not started are not reported, and a
// result waiting for room in the channel is dropped.
func (x *Extractor) Extract(ctx context.Context, files []string) <-chan FileResult {
	results := make(chan FileResult, x.opts.Workers)

	go func() {
		defer close(results)

		jobs := make(chan int, len(files))

		var wg sync.WaitGroup
		for range min(x.opts.Workers, max(len(files), 1)) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				x.worker(ctx, files, jobs, results)
			}()
		}

	sendLoop:
		for i := range files {
			select {
			case jobs <- i:
			case <-ctx.Done():
				break sendLoop
			}
		}
		close(jobs)

		wg.Wait()
	}()

	return results
}

// worker extracts the files whose indices arrive on jobs.
func (x *Extractor) worker(ctx context.Context, files []string, jobs <-chan int, results chan<- FileResult) {
	for i := range jobs {
		if ctx.Err() != nil {
			continue
		}

		links, err := x.ExtractFile(files[i])
		select {
		case results <- FileResult{Path: files[i], Links: links, Err: err, Index: i}:
		case <-ctx.Done():
			return
		}
	}
}

// ExtractAll processes files concurrently and returns one result per file in
// input order. It returns ctx.Err() when extraction was canceled.
func (x *Extractor) ExtractAll(ctx context.Context, files []string) ([]FileResult, error) {
	ordered := make([]FileResult, len(files))
	done := make([]bool, len(files))

	for r := range x.Extract(ctx, files) {
		ordered[r.Index] = r
		done[r.Index] = true
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, ok := range done {
		if !ok {
			ordered[i] = FileResult{Path: files[i], Index: i, Err: context.Canceled}
		}
	}
	return ordered, nil
}

// Flatten concatenates the links of all successful results, in order.
func Flatten(results []FileResult) []Link {
	n := 0
	for _, r := range results {
		n += len(r.Links)
	}

	links := make([]Link, 0, n)
	for _, r := range results {
		if r.Err == nil {
			links = append(links, r.Links...)
		}
	}
	return links
}
