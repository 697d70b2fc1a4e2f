package render

import (
	"bufio"
	"html"
	"io"

	"github.com/goodbytes/linkdetect/pkg/linkdetector"
)

// HTMLRenderer escapes text and turns links into anchors.
type HTMLRenderer struct{}

// Render implements Renderer.
func (*HTMLRenderer) Render(w io.Writer, fragments []linkdetector.Fragment) error {
	return writeAll(w, fragments, func(bw *bufio.Writer, _ int, f linkdetector.Fragment) {
		escaped := html.EscapeString(f.String())
		if !f.IsLink() {
			_, _ = bw.WriteString(escaped)
			return
		}
		_, _ = bw.WriteString(`<a href="`)
		_, _ = bw.WriteString(escaped)
		_, _ = bw.WriteString(`">`)
		_, _ = bw.WriteString(escaped)
		_, _ = bw.WriteString(`</a>`)
	})
}
