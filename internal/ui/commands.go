package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/goodbytes/linkdetect/internal/parser"
	"github.com/goodbytes/linkdetect/internal/scanner"
)

// ScanFilesCmd returns a command that finds the files selected by opts.
func ScanFilesCmd(opts scanner.ScanOptions) tea.Cmd {
	return func() tea.Msg {
		files, err := scanner.FindFilesWithOptions(opts)
		return FilesFoundMsg{Files: files, Err: err}
	}
}

// ExtractState holds the running extraction. The model keeps a pointer so
// that every copy of it sees the same channel and cancel function.
type ExtractState struct {
	resultsChan <-chan parser.FileResult
	cancel      context.CancelFunc
	mu          sync.Mutex
}

// Cancel stops a running extraction. It is safe to call at any time.
func (s *ExtractState) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *ExtractState) results() <-chan parser.FileResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultsChan
}

// StartExtractingCmd starts the worker pool and returns the first result.
func StartExtractingCmd(extractor *parser.Extractor, files []string, state *ExtractState) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())

		state.mu.Lock()
		state.cancel = cancel
		state.resultsChan = extractor.Extract(ctx, files)
		state.mu.Unlock()

		return nextResult(state)
	}
}

// WaitForNextResultCmd waits for the next result from the pool.
func WaitForNextResultCmd(state *ExtractState) tea.Cmd {
	return func() tea.Msg {
		return nextResult(state)
	}
}

func nextResult(state *ExtractState) tea.Msg {
	ch := state.results()
	if ch == nil {
		return ExtractionCompleteMsg{}
	}

	result, ok := <-ch
	if !ok {
		return ExtractionCompleteMsg{}
	}
	return FileExtractedMsg{Result: result}
}
