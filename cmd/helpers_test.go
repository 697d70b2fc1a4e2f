package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodbytes/linkdetect/internal/config"
	"github.com/goodbytes/linkdetect/internal/fixer"
	"github.com/goodbytes/linkdetect/internal/parser"
	"github.com/goodbytes/linkdetect/internal/render"
	"github.com/goodbytes/linkdetect/internal/watch"
	"github.com/goodbytes/linkdetect/pkg/linkdetector"
)

func noEnv(string) (string, bool) { return "", false }

func envOf(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// =============================================================================
// CONFIG
// =============================================================================

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("ExplicitPath", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		writeTestFile(t, path, "types: [md]\nworkers: 3\noutput:\n  format: yaml\n")

		lc, err := LoadConfig(path, false, noEnv)
		require.NoError(t, err)
		assert.Equal(t, []string{"md"}, lc.Config().Types)
		assert.Equal(t, 3, lc.Config().Workers)
		assert.Equal(t, path, lc.Config().Source)
	})

	t.Run("NoConfigSkipsFile", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		writeTestFile(t, path, "types: [md]\n")

		lc, err := LoadConfig(path, true, noEnv)
		require.NoError(t, err)
		assert.Empty(t, lc.Config().Types)
		assert.True(t, lc.noConfig)
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		writeTestFile(t, path, "types: [md]\nignore:\n  domains: [localhost]\n")

		lc, err := LoadConfig(path, false, envOf(map[string]string{
			config.EnvTypes:         "txt, json",
			config.EnvIgnoreDomains: "example.com",
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"txt", "json"}, lc.Config().Types)
		assert.Equal(t, []string{"localhost", "example.com"}, lc.Config().Ignore.Domains)
	})

	t.Run("EnvironmentAppliesWithoutFile", func(t *testing.T) {
		t.Parallel()
		lc, err := LoadConfig("", true, envOf(map[string]string{config.EnvWorkers: "6"}))
		require.NoError(t, err)
		assert.Equal(t, 6, lc.Config().Workers)
	})

	t.Run("BadEnvironment", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig("", true, envOf(map[string]string{config.EnvWorkers: "many"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading environment")
	})

	t.Run("InvalidValues", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		writeTestFile(t, path, "render:\n  to: pdf\n")

		_, err := LoadConfig(path, false, noEnv)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config")
		assert.Contains(t, err.Error(), "render.to")
	})

	t.Run("Unparsable", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		writeTestFile(t, path, "types: [md\n")

		_, err := LoadConfig(path, false, noEnv)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading config")
	})
}

func TestLoadedConfig_Precedence(t *testing.T) {
	t.Parallel()

	empty := &LoadedConfig{cfg: &config.Config{}}
	full := &LoadedConfig{cfg: &config.Config{
		Types:   []string{"md"},
		Workers: 8,
		Strict:  true,
		Output:  config.OutputConfig{Format: "yaml", ShowIgnored: true, ShowStats: true, Unique: true},
		Render:  config.RenderConfig{To: "html", Hyperlinks: "never"},
		Linkify: config.LinkifyConfig{Style: "inline"},
		Scan:    config.ScanConfig{Include: []string{"docs/**"}, Exclude: []string{"vendor/**"}},
	}}

	t.Run("Types", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, defaultTypes, empty.GetTypes(defaultTypes, defaultTypes))
		assert.Equal(t, []string{"md"}, full.GetTypes(defaultTypes, defaultTypes))
		assert.Equal(t, []string{"json"}, full.GetTypes([]string{"json"}, defaultTypes))
	})

	t.Run("Workers", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0, empty.GetWorkers(0, 0))
		assert.Equal(t, 8, full.GetWorkers(0, 0))
		assert.Equal(t, 2, full.GetWorkers(2, 0))
	})

	t.Run("Booleans", func(t *testing.T) {
		t.Parallel()
		assert.False(t, empty.GetStrict(false))
		assert.True(t, empty.GetStrict(true))
		assert.True(t, full.GetStrict(false))
		assert.True(t, full.GetShowIgnored(false))
		assert.True(t, full.GetShowStats(false))
		assert.True(t, full.GetUnique(false))
	})

	t.Run("Strings", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, empty.GetOutputFormat(""))
		assert.Equal(t, "yaml", full.GetOutputFormat(""))
		assert.Equal(t, "json", full.GetOutputFormat("json"))

		assert.Equal(t, "terminal", empty.GetRenderTarget(""))
		assert.Equal(t, "html", full.GetRenderTarget(""))
		assert.Equal(t, "markdown", full.GetRenderTarget("markdown"))

		assert.Equal(t, "auto", empty.GetHyperlinks(""))
		assert.Equal(t, "never", full.GetHyperlinks(""))

		assert.Equal(t, "autolink", empty.GetLinkifyStyle(""))
		assert.Equal(t, "inline", full.GetLinkifyStyle(""))
	})

	t.Run("ScanOptions", func(t *testing.T) {
		t.Parallel()
		opts := full.BuildScanOptions("site", defaultTypes, defaultTypes)
		assert.Equal(t, "site", opts.Root)
		assert.Equal(t, []string{"md"}, opts.Types)
		assert.Equal(t, []string{"docs/**"}, opts.Include)
		assert.Equal(t, []string{"vendor/**"}, opts.Exclude)
	})
}

func TestCreateFilterWithConfig(t *testing.T) {
	t.Parallel()

	t.Run("NoRules", func(t *testing.T) {
		t.Parallel()
		f, err := CreateFilterWithConfig(&config.Config{}, nil, nil, nil)
		require.NoError(t, err)
		assert.Nil(t, f)
	})

	t.Run("MergesConfigAndFlags", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{Ignore: config.IgnoreConfig{Domains: []string{"localhost"}}}

		f, err := CreateFilterWithConfig(cfg, []string{"example.com"}, []string{"*.local/*"}, nil)
		require.NoError(t, err)
		require.NotNil(t, f)

		matched := func(u string) bool {
			_, _, ok := f.Match(u)
			return ok
		}
		assert.True(t, matched("http://localhost:8080/x"))
		assert.True(t, matched("https://docs.example.com/"))
		assert.True(t, matched("http://app.local/path"))
		assert.False(t, matched("https://go.dev"))
		assert.Equal(t, []string{"localhost"}, cfg.Ignore.Domains, "config is not modified")
	})

	t.Run("InvalidRegex", func(t *testing.T) {
		t.Parallel()
		_, err := CreateFilterWithConfig(&config.Config{}, nil, nil, []string{"("})
		assert.Error(t, err)
	})
}

func TestValidateFileTypes(t *testing.T) {
	t.Parallel()

	require.NoError(t, validateFileTypes(defaultTypes))
	require.NoError(t, validateFileTypes([]string{"MD", ".yaml"}))

	err := validateFileTypes([]string{"md", "docx"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docx")
	assert.Contains(t, err.Error(), "supported:")
}

func TestGetPathArg(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".", getPathArg(nil))
	assert.Equal(t, "docs", getPathArg([]string{"docs"}))
}

// =============================================================================
// EXTRACT
// =============================================================================

func TestExtractFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "a.md")
	bad := filepath.Join(dir, "b.json")
	writeTestFile(t, good, "Read [Go](https://go.dev) and https://pkg.go.dev\n")
	writeTestFile(t, bad, `{"url": "https://broken.example"`)

	links, failed, err := extractFiles(t.Context(), []string{good, bad}, 2)
	require.NoError(t, err)

	require.Len(t, links, 2)
	assert.Equal(t, parser.LinkTypeInline, links[0].Type)
	assert.Equal(t, "https://pkg.go.dev", links[1].URL)

	require.Len(t, failed, 1)
	assert.Equal(t, bad, failed[0].File)
}

func TestGroupByFile(t *testing.T) {
	t.Parallel()

	links := []parser.Link{
		{URL: "https://a.example", FilePath: "b.md"},
		{URL: "https://b.example", FilePath: "a.md"},
		{URL: "https://c.example", FilePath: "b.md"},
	}

	groups := groupByFile(links)
	require.Len(t, groups, 2)
	assert.Equal(t, "b.md", groups[0].File)
	assert.Len(t, groups[0].Links, 2)
	assert.Equal(t, "a.md", groups[1].File)
	assert.Empty(t, groupByFile(nil))
}

func TestPrinter_PlainGroup(t *testing.T) {
	t.Parallel()

	p := printer{links: render.NewTerminalRenderer(false)}
	var buf bytes.Buffer
	p.printGroup(&buf, fileGroup{File: "README.md", Links: []parser.Link{
		{URL: "https://go.dev", Type: parser.LinkTypeInline, Text: "Go", Line: 12, Column: 5},
		{URL: "https://pkg.go.dev", Type: parser.LinkTypeBare, Line: 14, Column: 1},
	}})

	out := buf.String()
	assert.Contains(t, out, "=== README.md (2)")
	assert.Contains(t, out, `12:5     inline     https://go.dev  "Go"`)
	assert.Contains(t, out, "14:1     bare       https://pkg.go.dev\n")
	assert.NotContains(t, out, "\x1b", "no escape codes when not styled")
}

// =============================================================================
// SPLIT
// =============================================================================

func TestWriteFragments(t *testing.T) {
	t.Parallel()

	fragments := linkdetector.Parse("see https://go.dev now")

	t.Run("Text", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, writeFragments(&buf, fragments, "text"))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "text  [0,4)"))
		assert.Contains(t, lines[1], `link  [4,18)`)
		assert.Contains(t, lines[1], `"https://go.dev"`)
		assert.Contains(t, lines[2], `" now"`)
	})

	t.Run("JSON", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, writeFragments(&buf, linkdetector.Links(fragments), "json"))

		var docs []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &docs))
		require.Len(t, docs, 1)
		assert.Equal(t, "https://go.dev", docs[0]["value"])
		assert.Equal(t, true, docs[0]["link"])
		assert.InDelta(t, 4, docs[0]["start"], 0)
	})

	t.Run("EmptyJSON", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, writeFragments(&buf, nil, "json"))
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("YAML", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, writeFragments(&buf, fragments, "yaml"))
		assert.Contains(t, buf.String(), "value: https://go.dev")
		assert.Contains(t, buf.String(), "link: true")
	})
}

// =============================================================================
// LINKIFY
// =============================================================================

func linkifyFixture(t *testing.T, names ...string) (*fixer.Fixer, []fixer.FileChanges) {
	t.Helper()

	f := fixer.New(fixer.StyleAutolink)
	dir := t.TempDir()

	var changes []fixer.FileChanges
	for _, name := range names {
		path := filepath.Join(dir, name)
		content := "See https://go.dev for details.\n"
		writeTestFile(t, path, content)

		fc, err := f.FindFixesInContent(path, []byte(content))
		require.NoError(t, err)
		require.Equal(t, 1, fc.TotalFixes)
		changes = append(changes, fc)
	}
	return f, changes
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestLinkifyStream(t *testing.T) {
	t.Parallel()

	t.Run("RewritesBareLinks", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		in := strings.NewReader("See https://go.dev and `https://code.example`.\n")
		require.NoError(t, linkifyStream(fixer.New(fixer.StyleAutolink), nil, in, &out))
		assert.Equal(t, "See <https://go.dev> and `https://code.example`.\n", out.String())
	})

	t.Run("LeavesIgnoredLinks", func(t *testing.T) {
		t.Parallel()
		f, err := CreateFilterWithConfig(&config.Config{}, []string{"example.com"}, nil, nil)
		require.NoError(t, err)

		var out bytes.Buffer
		in := strings.NewReader("https://example.com/a https://go.dev\n")
		require.NoError(t, linkifyStream(fixer.New(fixer.StyleInline), f, in, &out))
		assert.Equal(t, "https://example.com/a [https://go.dev](https://go.dev)\n", out.String())
	})

	t.Run("NoLinks", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		require.NoError(t, linkifyStream(fixer.New(fixer.StyleAutolink), nil, strings.NewReader("plain\n"), &out))
		assert.Equal(t, "plain\n", out.String())
	})
}

func TestRunInteractiveLinkify(t *testing.T) {
	t.Parallel()

	const rewritten = "See <https://go.dev> for details.\n"
	const original = "See https://go.dev for details.\n"

	t.Run("YesAndNo", func(t *testing.T) {
		t.Parallel()
		f, changes := linkifyFixture(t, "a.md", "b.md")
		var out bytes.Buffer

		results, quit := runInteractiveLinkify(f, changes, strings.NewReader("y\nn\n"), &out)
		assert.False(t, quit)
		require.Len(t, results, 2)
		assert.Equal(t, 1, results[0].Applied)
		assert.Equal(t, 1, results[1].Skipped)

		assert.Equal(t, rewritten, readTestFile(t, changes[0].FilePath))
		assert.Equal(t, original, readTestFile(t, changes[1].FilePath))
		assert.Contains(t, out.String(), "Rewrote 1 link in")
		assert.Contains(t, out.String(), "Skipped")
	})

	t.Run("All", func(t *testing.T) {
		t.Parallel()
		f, changes := linkifyFixture(t, "a.md", "b.md", "c.md")

		results, quit := runInteractiveLinkify(f, changes, strings.NewReader("a\n"), &bytes.Buffer{})
		assert.False(t, quit)
		assert.Equal(t, 3, countApplied(results))
		for _, fc := range changes {
			assert.Equal(t, rewritten, readTestFile(t, fc.FilePath))
		}
	})

	t.Run("Quit", func(t *testing.T) {
		t.Parallel()
		f, changes := linkifyFixture(t, "a.md", "b.md")

		results, quit := runInteractiveLinkify(f, changes, strings.NewReader("q\n"), &bytes.Buffer{})
		assert.True(t, quit)
		require.Len(t, results, 2)
		assert.Equal(t, 0, countApplied(results))
		assert.Equal(t, original, readTestFile(t, changes[0].FilePath))
	})

	t.Run("HelpAndInvalidReprompt", func(t *testing.T) {
		t.Parallel()
		f, changes := linkifyFixture(t, "a.md")
		var out bytes.Buffer

		results, quit := runInteractiveLinkify(f, changes, strings.NewReader("?\nmaybe\ny\n"), &out)
		assert.False(t, quit)
		assert.Equal(t, 1, countApplied(results))
		assert.Contains(t, out.String(), "Interactive mode options")
		assert.Contains(t, out.String(), "Invalid input")
		assert.Equal(t, 3, strings.Count(out.String(), "[y/n/a/q/?]"))
	})

	t.Run("EndOfInput", func(t *testing.T) {
		t.Parallel()
		f, changes := linkifyFixture(t, "a.md", "b.md")

		results, quit := runInteractiveLinkify(f, changes, strings.NewReader(""), &bytes.Buffer{})
		assert.True(t, quit)
		assert.Len(t, results, 2)
		assert.Equal(t, 0, countApplied(results))
	})
}

func TestHasErrors(t *testing.T) {
	t.Parallel()

	assert.False(t, hasErrors([]fixer.FixResult{{Applied: 1}}))
	assert.True(t, hasErrors([]fixer.FixResult{{Applied: 1}, {Error: errors.New("denied")}}))
}

// =============================================================================
// WATCH
// =============================================================================

func TestChangePrinter(t *testing.T) {
	t.Parallel()

	links := []parser.Link{
		{URL: "https://go.dev", FilePath: "a.md", Type: parser.LinkTypeBare, Line: 1, Column: 5},
		{URL: "http://localhost:3000", FilePath: "a.md", Type: parser.LinkTypeBare, Line: 2, Column: 1},
	}

	t.Run("JSONLines", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		f, err := CreateFilterWithConfig(&config.Config{}, []string{"localhost"}, nil, nil)
		require.NoError(t, err)
		cp := changePrinter{out: &buf, format: "json", filter: f}

		require.NoError(t, cp.print(watch.Change{Type: watch.ChangeUpdated, Path: "a.md", Links: links}))
		require.NoError(t, cp.print(watch.Change{Type: watch.ChangeRemoved, Path: "b.md"}))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)

		var ev watchEvent
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &ev))
		assert.Equal(t, "updated", ev.Change)
		assert.Equal(t, "https://go.dev", ev.URL)
		assert.Equal(t, 5, ev.Column)

		var removed watchEvent
		require.NoError(t, json.Unmarshal([]byte(lines[1]), &removed))
		assert.Equal(t, watchEvent{Change: "removed", File: "b.md"}, removed)
		assert.Equal(t, 0, f.IgnoredCount(), "ignore reasons are not kept")
	})

	t.Run("Text", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		f, err := CreateFilterWithConfig(&config.Config{}, []string{"localhost"}, nil, nil)
		require.NoError(t, err)
		cp := changePrinter{
			out:    &buf,
			format: "text",
			filter: f,
			p:      printer{links: render.NewTerminalRenderer(false)},
		}

		require.NoError(t, cp.print(watch.Change{Type: watch.ChangeUpdated, Path: "a.md", Links: links}))
		require.NoError(t, cp.print(watch.Change{Type: watch.ChangeUpdated, Path: "empty.md"}))
		require.NoError(t, cp.print(watch.Change{Type: watch.ChangeRemoved, Path: "b.md"}))

		out := buf.String()
		assert.Contains(t, out, "=== a.md (1)")
		assert.NotContains(t, out, "localhost")
		assert.Contains(t, out, "empty.md: no links")
		assert.Contains(t, out, "b.md removed")
	})

	t.Run("WriteErrors", func(t *testing.T) {
		t.Parallel()
		for _, format := range []string{"json", "text"} {
			cp := changePrinter{out: failingWriter{}, format: format}

			err := cp.print(watch.Change{Type: watch.ChangeRemoved, Path: "b.md"})
			require.Error(t, err, format)
			assert.ErrorIs(t, err, errWriteFailed, format)
		}

		cp := changePrinter{out: failingWriter{}, format: "json"}
		err := cp.print(watch.Change{Type: watch.ChangeUpdated, Path: "a.md", Links: links})
		assert.ErrorIs(t, err, errWriteFailed)
	})
}

var errWriteFailed = errors.New("write failed")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errWriteFailed }
