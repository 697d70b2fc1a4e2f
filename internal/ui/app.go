// Package ui is the interactive link browser.
package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/goodbytes/linkdetect/internal/filter"
	"github.com/goodbytes/linkdetect/internal/helpers"
	"github.com/goodbytes/linkdetect/internal/parser"
	"github.com/goodbytes/linkdetect/internal/scanner"
)

// =============================================================================
// STATE MACHINE
// =============================================================================

type appState int

const (
	stateScanning   appState = iota // Finding files
	stateExtracting                 // Extracting links from files
	stateResults                    // Showing results (list view)
)

// =============================================================================
// FILTER TYPES
// =============================================================================

type filterType int

const (
	filterAll        filterType = iota // Every link
	filterBare                         // Plain text links
	filterMarkup                       // Markdown and HTML link syntax
	filterStructured                   // Values and keys of data files
)

const filterCount = 4

func (f filterType) String() string {
	switch f {
	case filterAll:
		return "All"
	case filterBare:
		return "Bare"
	case filterMarkup:
		return "Markup"
	case filterStructured:
		return "Structured"
	default:
		return "Unknown"
	}
}

func (f filterType) Next() filterType {
	return (f + 1) % filterCount
}

// matches reports whether a link of type t passes the filter.
func (f filterType) matches(t parser.LinkType) bool {
	switch f {
	case filterBare:
		return t.Category() == parser.CategoryBare
	case filterMarkup:
		return t.Category() == parser.CategoryMarkup
	case filterStructured:
		return t.Category() == parser.CategoryStructured
	default:
		return true
	}
}

// =============================================================================
// MODEL
// =============================================================================

// Options configures the browser.
type Options struct {
	// Scan selects the files to extract.
	Scan scanner.ScanOptions

	// Ignore drops links before they are listed. May be nil.
	Ignore *filter.Filter

	// Workers is the extraction pool size; zero means one per CPU.
	Workers int
}

// Model is the main application model.
type Model struct {
	err error

	// Extraction state shared by all copies of the model
	extract   *ExtractState
	extractor *parser.Extractor
	ignore    *filter.Filter

	// Data
	files  []string
	links  []parser.Link
	failed []parser.FileResult

	// Components
	spinner spinner.Model
	list    list.Model
	help    help.Model
	keys    KeyMap

	scan scanner.ScanOptions

	// Progress tracking
	extracted int
	ignored   int

	state  appState
	filter filterType

	// UI state
	width    int
	height   int
	showHelp bool
	quitting bool
}

// New creates and returns a new Model.
func New(opts Options) Model {
	if opts.Scan.Root == "" {
		opts.Scan.Root = "."
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle()

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.Styles.SelectedTitle = SelectedStyle
	delegate.Styles.SelectedDesc = StatusStyle

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Links"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false) // We use our own help
	l.Styles.Title = TitleStyle

	return Model{
		state:     stateScanning,
		spinner:   s,
		list:      l,
		help:      help.New(),
		keys:      DefaultKeyMap(),
		filter:    filterAll,
		scan:      opts.Scan,
		ignore:    opts.Ignore,
		extract:   &ExtractState{},
		extractor: parser.NewExtractor(parser.Options{Workers: opts.Workers}),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, ScanFilesCmd(m.scan))
}

// Cancel stops a running extraction.
func (m Model) Cancel() {
	m.extract.Cancel()
}

// Links returns the links collected so far, in arrival order.
func (m Model) Links() []parser.Link {
	return m.links
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Reserve space for header, summary, and detail panel
		listHeight := max(msg.Height-14, 5)
		m.list.SetSize(msg.Width, listHeight)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case FilesFoundMsg:
		return m.handleFilesFound(msg)

	case FileExtractedMsg:
		return m.handleFileExtracted(msg)

	case ExtractionCompleteMsg:
		return m.handleExtractionComplete()
	}

	// Pass other messages to list if in results state
	if m.state == stateResults {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While typing a list filter, keys belong to the list.
	if m.state == stateResults && m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	if key.Matches(msg, m.keys.Quit) {
		m.extract.Cancel()
		m.quitting = true
		return m, tea.Quit
	}

	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return m, nil
	}

	if m.state == stateResults {
		if key.Matches(msg, m.keys.Filter) {
			m.filter = m.filter.Next()
			m.updateListItems()
			return m, nil
		}

		// Pass navigation keys to list
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleFilesFound(msg FilesFoundMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.err = msg.Err
		m.state = stateResults
		return m, nil
	}

	m.files = msg.Files
	if len(m.files) == 0 {
		m.state = stateResults
		return m, nil
	}

	m.state = stateExtracting
	return m, StartExtractingCmd(m.extractor, m.files, m.extract)
}

func (m Model) handleFileExtracted(msg FileExtractedMsg) (tea.Model, tea.Cmd) {
	m.extracted++

	r := msg.Result
	if r.Err != nil {
		m.failed = append(m.failed, r)
		return m, WaitForNextResultCmd(m.extract)
	}

	links := r.Links
	if m.ignore != nil {
		kept := m.ignore.Apply(links)
		m.ignored += len(links) - len(kept)
		links = kept
	}
	m.links = append(m.links, links...)

	return m, WaitForNextResultCmd(m.extract)
}

func (m Model) handleExtractionComplete() (tea.Model, tea.Cmd) {
	m.state = stateResults
	m.updateListItems()
	return m, nil
}

// updateListItems updates the list with filtered links.
func (m *Model) updateListItems() {
	filtered := m.filteredLinks()
	items := make([]list.Item, len(filtered))
	for i, l := range filtered {
		items[i] = LinkItem{Link: l}
	}
	m.list.SetItems(items)
}

// filteredLinks returns links based on current filter.
func (m Model) filteredLinks() []parser.Link {
	if m.filter == filterAll {
		return m.links
	}

	var out []parser.Link
	for _, l := range m.links {
		if m.filter.matches(l.Type) {
			out = append(out, l)
		}
	}
	return out
}

// countByCategory returns the number of links per category.
func (m Model) countByCategory() (bare, markup, structured int) {
	for _, l := range m.links {
		switch l.Type.Category() {
		case parser.CategoryMarkup:
			markup++
		case parser.CategoryStructured:
			structured++
		default:
			bare++
		}
	}
	return bare, markup, structured
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var s string

	s += TitleStyle.Render("linkdetect")
	s += "\n\n"

	if m.err != nil {
		s += ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
		s += "\n"
		s += HelpStyle.Render("Press q to quit")
		return s
	}

	switch m.state {
	case stateScanning:
		s += m.spinner.View() + " Scanning for files..."

	case stateExtracting:
		s += m.spinner.View() + fmt.Sprintf(" Extracting links... %d/%d files, %s",
			m.extracted, len(m.files), helpers.Pluralize(len(m.links), "link"))

	case stateResults:
		s += m.renderResults()
	}

	if m.showHelp {
		s += "\n\n" + m.help.View(m.keys)
	} else {
		s += "\n\n" + m.renderShortHelp()
	}

	return s
}

func (m Model) renderResults() string {
	var s string

	s += fmt.Sprintf("Scanned %s, found %s (%d unique)",
		helpers.Pluralize(len(m.files), "file"),
		helpers.Pluralize(len(m.links), "link"),
		helpers.CountUniqueURLs(m.links))
	if m.ignored > 0 {
		s += fmt.Sprintf(", %d ignored", m.ignored)
	}
	s += "\n\n"

	bare, markup, structured := m.countByCategory()
	s += fmt.Sprintf("%s | %s | %s",
		CategoryStyle(parser.CategoryBare).Render(fmt.Sprintf("%d bare", bare)),
		CategoryStyle(parser.CategoryMarkup).Render(fmt.Sprintf("%d markup", markup)),
		CategoryStyle(parser.CategoryStructured).Render(fmt.Sprintf("%d structured", structured)))
	if len(m.failed) > 0 {
		s += " | " + WarningStyle.Render(fmt.Sprintf("%d failed", len(m.failed)))
	}
	s += "\n\n"

	if len(m.links) == 0 {
		s += MutedStyle.Render("No links found.")
		return s
	}

	s += fmt.Sprintf("Filter: %s (%d/%d)\n\n",
		SelectedStyle.Render(m.filter.String()),
		len(m.filteredLinks()),
		len(m.links))

	s += m.list.View()

	if selected := m.list.SelectedItem(); selected != nil {
		if item, ok := selected.(LinkItem); ok {
			s += "\n" + item.DetailView()
		}
	}

	return s
}

func (Model) renderShortHelp() string {
	return HelpStyle.Render("↑/↓ navigate • / search • f filter • ? help • q quit")
}
