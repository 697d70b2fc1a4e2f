package render

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"

	"github.com/goodbytes/linkdetect/pkg/linkdetector"
)

// HyperlinkMode decides when terminal output carries OSC 8 hyperlinks.
type HyperlinkMode string

const (
	HyperlinksAuto   HyperlinkMode = "auto"
	HyperlinksAlways HyperlinkMode = "always"
	HyperlinksNever  HyperlinkMode = "never"
)

// ParseHyperlinkMode parses a mode name. The empty string means auto.
func ParseHyperlinkMode(s string) (HyperlinkMode, error) {
	switch mode := HyperlinkMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return HyperlinksAuto, nil
	case HyperlinksAuto, HyperlinksAlways, HyperlinksNever:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid hyperlink mode %q (valid: auto, always, never)", s)
	}
}

// Enabled resolves the mode for an output. In auto mode hyperlinks are on
// only when out is a terminal that is not TERM=dumb.
func (m HyperlinkMode) Enabled(out *os.File) bool {
	switch m {
	case HyperlinksAlways:
		return true
	case HyperlinksNever:
		return false
	default:
		return IsTerminal(out) && os.Getenv("TERM") != "dumb"
	}
}

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// LinkStyle is the default look of links in the terminal.
var LinkStyle = lipgloss.NewStyle().
	Underline(true).
	Foreground(lipgloss.Color("39"))

// TerminalRenderer styles links for a terminal.
type TerminalRenderer struct {
	Style      lipgloss.Style
	Hyperlinks bool
}

// NewTerminalRenderer returns a renderer using LinkStyle.
func NewTerminalRenderer(hyperlinks bool) *TerminalRenderer {
	return &TerminalRenderer{Style: LinkStyle, Hyperlinks: hyperlinks}
}

// Render implements Renderer.
func (r *TerminalRenderer) Render(w io.Writer, fragments []linkdetector.Fragment) error {
	return writeAll(w, fragments, func(bw *bufio.Writer, _ int, f linkdetector.Fragment) {
		if !f.IsLink() {
			_, _ = bw.WriteString(f.String())
			return
		}
		_, _ = bw.WriteString(r.Link(f.String()))
	})
}

// Link formats a single URL.
func (r *TerminalRenderer) Link(url string) string {
	styled := r.Style.Render(url)
	if !r.Hyperlinks {
		return styled
	}
	return ansi.SetHyperlink(url) + styled + ansi.ResetHyperlink()
}
