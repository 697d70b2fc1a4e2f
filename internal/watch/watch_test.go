package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodbytes/linkdetect/internal/parser"
	_ "github.com/goodbytes/linkdetect/internal/parser/markdown"
	"github.com/goodbytes/linkdetect/internal/scanner"
)

const testDebounce = 20 * time.Millisecond

func newWatcher(t *testing.T, root string, types ...string) *Watcher {
	t.Helper()

	w, err := New(Options{
		Scan:     scanner.ScanOptions{Root: root, Types: types, Exclude: []string{"vendor/**"}},
		Debounce: testDebounce,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func next(t *testing.T, changes <-chan Change) Change {
	t.Helper()

	select {
	case c, ok := <-changes:
		require.True(t, ok, "changes closed")
		return c
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for change")
		return Change{}
	}
}

func TestNew_WatchesVisibleDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "api"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))

	w := newWatcher(t, root)

	assert.ElementsMatch(t, []string{
		root,
		filepath.Join(root, "docs"),
		filepath.Join(root, "docs", "api"),
	}, w.WatchList())
}

func TestNew_UnknownType(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Scan: scanner.ScanOptions{Root: t.TempDir(), Types: []string{"docx"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestNew_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Scan: scanner.ScanOptions{Root: filepath.Join(t.TempDir(), "nope")}})
	assert.Error(t, err)
}

func TestWatcher_Relevant(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := newWatcher(t, root, "md")

	tests := []struct {
		path     string
		expected bool
	}{
		{"README.md", true},
		{"docs/guide.markdown", true},
		{"notes.txt", false},
		{".hidden/README.md", false},
		{"docs/.draft.md", false},
		{"vendor/lib/README.md", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, w.Relevant(filepath.Join(root, filepath.FromSlash(tt.path))))
		})
	}
}

func TestWatcher_HandleEvent_Debounces(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := newWatcher(t, root)
	ctx := t.Context()

	ready := make(chan string, 10)
	path := filepath.Join(root, "a.txt")

	for range 5 {
		w.handleEvent(ctx, fsnotify.Event{Name: path, Op: fsnotify.Write}, ready)
	}
	w.handleEvent(ctx, fsnotify.Event{Name: path, Op: fsnotify.Chmod}, ready)
	w.handleEvent(ctx, fsnotify.Event{Name: filepath.Join(root, "image.png"), Op: fsnotify.Write}, ready)

	select {
	case got := <-ready:
		assert.Equal(t, path, got)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for debounced path")
	}

	select {
	case got := <-ready:
		t.Fatalf("unexpected second event for %s", got)
	case <-time.After(5 * testDebounce):
	}
}

func TestWatcher_Resolve(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := newWatcher(t, root)

	path := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("see https://go.dev"), 0o600))

	c := w.resolve(path)
	assert.Equal(t, ChangeUpdated, c.Type)
	require.NoError(t, c.Err)
	require.Len(t, c.Links, 1)
	assert.Equal(t, "https://go.dev", c.Links[0].URL)

	require.NoError(t, os.Remove(path))
	c = w.resolve(path)
	assert.Equal(t, ChangeRemoved, c.Type)
	assert.Empty(t, c.Links)
}

func TestWatcher_Run(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := newWatcher(t, root)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	changes := w.Run(ctx)

	path := filepath.Join(root, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("Read https://go.dev/doc and `https://code.example`.\n"), 0o600))

	c := next(t, changes)
	assert.Equal(t, ChangeUpdated, c.Type)
	assert.Equal(t, path, c.Path)
	require.Len(t, c.Links, 1)
	assert.Equal(t, "https://go.dev/doc", c.Links[0].URL)
	assert.Equal(t, parser.LinkTypeBare, c.Links[0].Type)

	require.NoError(t, os.Remove(path))
	c = next(t, changes)
	assert.Equal(t, ChangeRemoved, c.Type)
	assert.Equal(t, path, c.Path)

	cancel()
	for range changes {
	}
}

func TestWatcher_Run_NewDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := newWatcher(t, root)

	changes := w.Run(t.Context())

	dir := filepath.Join(root, "docs")
	require.NoError(t, os.Mkdir(dir, 0o755))
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("ftp://files.example/x"), 0o600))

	c := next(t, changes)
	assert.Equal(t, ChangeUpdated, c.Type)
	assert.Equal(t, path, c.Path)
	assert.Contains(t, w.WatchList(), dir)
}
