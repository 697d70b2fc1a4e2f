package ui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodbytes/linkdetect/internal/filter"
	"github.com/goodbytes/linkdetect/internal/parser"
	"github.com/goodbytes/linkdetect/internal/scanner"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testLinks() []parser.Link {
	return []parser.Link{
		{URL: "https://bare.example", FilePath: "a.txt", Line: 1, Column: 1, Type: parser.LinkTypeBare},
		{URL: "https://inline.example", FilePath: "b.md", Line: 2, Column: 5, Type: parser.LinkTypeInline, Text: "Docs"},
		{URL: "https://value.example", FilePath: "c.json", Line: 3, Column: 9, Type: parser.LinkTypeValue, Text: "home"},
		{URL: "https://bare.example", FilePath: "b.md", Line: 4, Column: 1, Type: parser.LinkTypeBare},
	}
}

// loaded runs a model through scan and extraction with canned messages.
func loaded(t *testing.T, m Model) Model {
	t.Helper()

	next, _ := m.Update(FilesFoundMsg{Files: []string{"a.txt", "b.md", "c.json", "bad.yaml"}})
	m = next.(Model)
	require.Equal(t, stateExtracting, m.state)

	next, _ = m.Update(FileExtractedMsg{Result: parser.FileResult{Path: "a.txt", Links: testLinks()}})
	m = next.(Model)
	next, _ = m.Update(FileExtractedMsg{Result: parser.FileResult{Path: "bad.yaml", Err: errors.New("invalid YAML")}})
	m = next.(Model)
	next, _ = m.Update(ExtractionCompleteMsg{})
	return next.(Model)
}

func TestFilterType(t *testing.T) {
	t.Parallel()

	f := filterAll
	names := []string{}
	for range filterCount {
		names = append(names, f.String())
		f = f.Next()
	}
	assert.Equal(t, []string{"All", "Bare", "Markup", "Structured"}, names)
	assert.Equal(t, filterAll, f, "cycles back to all")

	assert.True(t, filterMarkup.matches(parser.LinkTypeAutolink))
	assert.False(t, filterMarkup.matches(parser.LinkTypeKey))
	assert.True(t, filterStructured.matches(parser.LinkTypeKey))
	assert.True(t, filterAll.matches(parser.LinkTypeBare))
}

func TestModel_Flow(t *testing.T) {
	t.Parallel()

	m := loaded(t, New(Options{}))

	assert.Equal(t, stateResults, m.state)
	assert.Equal(t, 2, m.extracted)
	assert.Len(t, m.Links(), 4)
	assert.Len(t, m.failed, 1)
	assert.Len(t, m.list.Items(), 4)

	view := m.View()
	assert.Contains(t, view, "Scanned 4 files, found 4 links (3 unique)")
	assert.Contains(t, view, "2 bare")
	assert.Contains(t, view, "1 failed")
	assert.Contains(t, view, "Filter:")
}

func TestModel_FilterCycling(t *testing.T) {
	t.Parallel()

	m := loaded(t, New(Options{}))

	expected := []int{2, 1, 1, 4}
	for _, n := range expected {
		next, _ := m.Update(keyMsg("f"))
		m = next.(Model)
		assert.Len(t, m.list.Items(), n, m.filter.String())
	}
}

func TestModel_IgnoreRules(t *testing.T) {
	t.Parallel()

	f, err := filter.New(filter.Config{Domains: []string{"bare.example"}})
	require.NoError(t, err)

	m := loaded(t, New(Options{Ignore: f}))
	assert.Len(t, m.Links(), 2)
	assert.Equal(t, 2, m.ignored)
	assert.Contains(t, m.View(), "2 ignored")
}

func TestModel_QuitCancelsExtraction(t *testing.T) {
	t.Parallel()

	canceled := false
	m := New(Options{})
	m.extract.cancel = func() { canceled = true }

	next, cmd := m.Update(keyMsg("q"))
	m = next.(Model)

	assert.True(t, canceled)
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "Goodbye!\n", m.View())
}

func TestModel_HelpToggle(t *testing.T) {
	t.Parallel()

	m := New(Options{})
	assert.Contains(t, m.View(), "f filter")

	next, _ := m.Update(keyMsg("?"))
	m = next.(Model)
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "cycle all/bare/markup/structured")
}

func TestModel_ScanError(t *testing.T) {
	t.Parallel()

	next, _ := New(Options{}).Update(FilesFoundMsg{Err: errors.New("permission denied")})
	m := next.(Model)
	assert.Equal(t, stateResults, m.state)
	assert.Contains(t, m.View(), "Error: permission denied")
}

func TestModel_NoFiles(t *testing.T) {
	t.Parallel()

	next, cmd := New(Options{}).Update(FilesFoundMsg{})
	m := next.(Model)
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "No links found.")
}

func TestCommands_ExtractFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("see https://go.dev and ftp://x.example"), 0o600))

	msg := ScanFilesCmd(scanner.ScanOptions{Root: dir, Types: []string{"txt"}})()
	found, ok := msg.(FilesFoundMsg)
	require.True(t, ok)
	require.NoError(t, found.Err)
	require.Equal(t, []string{path}, found.Files)

	state := &ExtractState{}
	first := StartExtractingCmd(parser.NewExtractor(parser.Options{Workers: 1}), found.Files, state)()
	extracted, ok := first.(FileExtractedMsg)
	require.True(t, ok)
	assert.Len(t, extracted.Result.Links, 2)

	assert.IsType(t, ExtractionCompleteMsg{}, WaitForNextResultCmd(state)())
	state.Cancel()
}

func TestNextResult_NotStarted(t *testing.T) {
	t.Parallel()

	assert.IsType(t, ExtractionCompleteMsg{}, WaitForNextResultCmd(&ExtractState{})())
}

func TestLinkItem(t *testing.T) {
	t.Parallel()

	item := LinkItem{Link: testLinks()[2]}

	assert.Equal(t, "https://value.example", item.Title())
	assert.Equal(t, `value | c.json:3:9 | "home"`, item.Description())
	assert.Contains(t, item.FilterValue(), "c.json")

	detail := item.DetailView()
	assert.Contains(t, detail, "https://value.example")
	assert.Contains(t, detail, "Path:")
	assert.Contains(t, detail, "c.json:3:9")

	assert.Len(t, LinksToItems(testLinks()), 4)
}
