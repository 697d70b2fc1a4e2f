package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/goodbytes/linkdetect/pkg/linkdetector"
)

// MarkdownRenderer keeps the text verbatim and writes bare links as <url>
// autolinks. Links already between angle brackets are left alone.
type MarkdownRenderer struct{}

// Render implements Renderer.
func (*MarkdownRenderer) Render(w io.Writer, fragments []linkdetector.Fragment) error {
	return writeAll(w, fragments, func(bw *bufio.Writer, i int, f linkdetector.Fragment) {
		if !f.IsLink() || isBracketed(fragments, i) {
			_, _ = bw.WriteString(f.String())
			return
		}
		_ = bw.WriteByte('<')
		_, _ = bw.WriteString(f.String())
		_ = bw.WriteByte('>')
	})
}

// isBracketed reports whether the link at i already sits in "<" and ">".
func isBracketed(fragments []linkdetector.Fragment, i int) bool {
	if i == 0 || i == len(fragments)-1 {
		return false
	}
	return strings.HasSuffix(fragments[i-1].String(), "<") &&
		strings.HasPrefix(fragments[i+1].String(), ">")
}
