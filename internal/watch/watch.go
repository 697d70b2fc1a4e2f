// Package watch re-extracts links from files as they change on disk.
//
// The root directory and its non-hidden subdirectories are watched with
// fsnotify. Events for one path are debounced, then the file is looked at
// again: if it still exists its links are extracted, otherwise it is
// reported as removed.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goodbytes/linkdetect/internal/helpers"
	"github.com/goodbytes/linkdetect/internal/logger"
	"github.com/goodbytes/linkdetect/internal/parser"
	"github.com/goodbytes/linkdetect/internal/scanner"
)

// DefaultDebounce is the quiet period before a changed file is extracted.
const DefaultDebounce = 200 * time.Millisecond

// ChangeType is the kind of change reported for a file.
type ChangeType string

const (
	// ChangeUpdated means the file was created or written.
	ChangeUpdated ChangeType = "updated"
	// ChangeRemoved means the file was removed or renamed away.
	ChangeRemoved ChangeType = "removed"
)

// Change is a file whose links changed.
type Change struct {
	Err   error // Extraction failure, nil on success
	Type  ChangeType
	Path  string
	Links []parser.Link
}

// Options configures a Watcher.
type Options struct {
	// Extractor extracts changed files. Nil means a default extractor.
	Extractor *parser.Extractor

	// Scan selects the files of interest: Root, Types and Include/Exclude
	// patterns apply as they do for a directory scan.
	Scan scanner.ScanOptions

	// Debounce is the quiet period per path. Zero means DefaultDebounce.
	Debounce time.Duration
}

// Watcher reports link changes under a directory.
type Watcher struct {
	fs         *fsnotify.Watcher
	extractor  *parser.Extractor
	extensions map[string]bool
	timers     map[string]*time.Timer
	opts       Options
	mu         sync.Mutex
}

// New creates a Watcher and registers the root and its non-hidden
// subdirectories.
func New(opts Options) (*Watcher, error) {
	if opts.Scan.Root == "" {
		opts.Scan.Root = "."
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Extractor == nil {
		opts.Extractor = parser.NewExtractor(parser.Options{})
	}

	exts := parser.DefaultRegistry().SupportedExtensions()
	if len(opts.Scan.Types) > 0 {
		var err error
		exts, err = parser.DefaultRegistry().ExtensionsForTypes(opts.Scan.Types)
		if err != nil {
			return nil, err
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		fs:         fsw,
		extractor:  opts.Extractor,
		extensions: make(map[string]bool, len(exts)),
		timers:     map[string]*time.Timer{},
		opts:       opts,
	}
	for _, ext := range exts {
		w.extensions[strings.ToLower(ext)] = true
	}

	if err := w.addTree(opts.Scan.Root); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return w, nil
}

// WatchList returns the directories currently watched.
func (w *Watcher) WatchList() []string {
	return w.fs.WatchList()
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	return w.fs.Close()
}

// Run delivers changes until ctx is canceled or the watcher is closed.
// The returned channel is closed when Run stops.
func (w *Watcher) Run(ctx context.Context) <-chan Change {
	changes := make(chan Change)
	ready := make(chan string)

	go func() {
		defer close(changes)

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.fs.Events:
				if !ok {
					return
				}
				w.handleEvent(ctx, ev, ready)

			case err, ok := <-w.fs.Errors:
				if !ok {
					return
				}
				logger.Warn("watch: %v", err)

			case path := <-ready:
				change := w.resolve(path)
				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return changes
}

// handleEvent schedules the file an event refers to, or extends the watch
// set when a directory appears.
func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event, ready chan<- string) {
	if w.isHiddenPath(ev.Name) {
		return
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				logger.Warn("watch: %v", err)
			}
			// Files may have landed before the directory was watched.
			w.scheduleTree(ctx, ev.Name, ready)
			return
		}
	}

	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}

	if w.Relevant(ev.Name) {
		w.schedule(ctx, ev.Name, ready)
	}
}

// Relevant reports whether path is a file the watcher reports on.
func (w *Watcher) Relevant(path string) bool {
	if w.isHiddenPath(path) || !w.extensions[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	ok, err := w.opts.Scan.Matches(path)
	if err != nil {
		logger.Warn("watch: %v", err)
		return false
	}
	return ok
}

// schedule (re)starts the debounce timer of path.
func (w *Watcher) schedule(ctx context.Context, path string, ready chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Reset(w.opts.Debounce)
		return
	}

	w.timers[path] = time.AfterFunc(w.opts.Debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
}

// scheduleTree schedules every relevant file below dir.
func (w *Watcher) scheduleTree(ctx context.Context, dir string, ready chan<- string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // a vanished entry is not worth stopping for
		}
		if d.IsDir() {
			if path != dir && scanner.IsHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.Relevant(path) {
			w.schedule(ctx, path, ready)
		}
		return nil
	})
}

// resolve turns a settled path into a Change.
func (w *Watcher) resolve(path string) Change {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		logger.Debug("watch: %s removed", path)
		return Change{Type: ChangeRemoved, Path: path}
	}

	links, err := w.extractor.ExtractFile(path)
	logger.Debug("watch: %s changed, %s", path, helpers.Pluralize(len(links), "link"))
	return Change{Type: ChangeUpdated, Path: path, Links: links, Err: err}
}

// addTree watches dir and its non-hidden subdirectories.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && scanner.IsHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// isHiddenPath reports whether any element of path below the root is hidden.
func (w *Watcher) isHiddenPath(path string) bool {
	rel, err := filepath.Rel(w.opts.Scan.Root, path)
	if err != nil {
		rel = path
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if scanner.IsHidden(part) {
			return true
		}
	}
	return false
}
