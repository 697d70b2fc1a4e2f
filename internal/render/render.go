// Package render writes detector fragments back out with the links marked
// up for a target: HTML anchors, Markdown autolinks, or terminal hyperlinks.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/goodbytes/linkdetect/pkg/linkdetector"
)

// Target is an output flavor.
type Target string

const (
	// TargetHTML wraps links in <a href> tags and escapes the text.
	TargetHTML Target = "html"
	// TargetMarkdown wraps bare links in <url> autolinks.
	TargetMarkdown Target = "markdown"
	// TargetTerminal underlines links and, when enabled, makes them
	// clickable with OSC 8 escape sequences.
	TargetTerminal Target = "terminal"
)

// ValidTargets returns all valid target strings.
func ValidTargets() []string {
	return []string{string(TargetHTML), string(TargetMarkdown), string(TargetTerminal)}
}

// Renderer writes fragments to w.
type Renderer interface {
	Render(w io.Writer, fragments []linkdetector.Fragment) error
}

// Options configure New.
type Options struct {
	// Hyperlinks enables OSC 8 sequences for the terminal target.
	Hyperlinks bool
}

// New returns the renderer for target.
func New(target Target, opts Options) (Renderer, error) {
	switch Target(strings.ToLower(string(target))) {
	case TargetHTML:
		return &HTMLRenderer{}, nil
	case TargetMarkdown:
		return &MarkdownRenderer{}, nil
	case TargetTerminal:
		return NewTerminalRenderer(opts.Hyperlinks), nil
	default:
		return nil, fmt.Errorf("unknown render target: %s (valid: %s)",
			target, strings.Join(ValidTargets(), ", "))
	}
}

// String renders fragments into a string.
func String(r Renderer, fragments []linkdetector.Fragment) (string, error) {
	var b strings.Builder
	if err := r.Render(&b, fragments); err != nil {
		return "", err
	}
	return b.String(), nil
}

// writeAll runs fn over every fragment with a buffered writer and flushes.
func writeAll(w io.Writer, fragments []linkdetector.Fragment, fn func(*bufio.Writer, int, linkdetector.Fragment)) error {
	bw := bufio.NewWriter(w)
	for i, f := range fragments {
		fn(bw, i, f)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
