// Package linkdetector splits text into fragments that either are or are not
// links.
//
// A link is a URL-like substring using the http, https or ftp scheme. The
// detector is a heuristic, not a URL grammar: it does not validate hosts,
// decode percent-escapes or touch the network. Trailing prose punctuation
// is left out of a link, and a closing parenthesis is kept only when it
// balances an opening parenthesis inside the link, so that
//
//	Foo (https://en.wikipedia.org/wiki/Go_(programming_language)) bar
//
// yields the link "https://en.wikipedia.org/wiki/Go_(programming_language)".
//
// Concatenating the String values of the returned fragments always
// reproduces the input exactly.
package linkdetector

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Character classes of the link pattern.
//   - bodyClass: characters allowed anywhere in a link after "://".
//   - tailClass: characters a link may end on; excludes the punctuation
//     that usually belongs to the surrounding sentence.
const (
	bodyClass = `[a-zA-Z0-9\-+&@#/%?=~_|!:,.;]`
	tailClass = `[a-zA-Z0-9\-+&@#/%=~_|]`
)

// linkRegex matches links. The scheme is spelled out per letter so that case
// folding stays ASCII-only.
//
// The first alternative accepts one "(" inside the link, and a ")" that
// balances it. The second accepts links without parentheses. Go's regexp
// prefers alternatives left to right, the same choice a backtracking engine
// makes, and it runs in time linear in the input.
//
// It is compiled once at package load and never modified.
var linkRegex = regexp.MustCompile(
	`\b(?:[hH][tT][tT][pP][sS]?|[fF][tT][pP])://(?:` +
		bodyClass + `*\(` + bodyClass + `*(?:\)` + bodyClass + `*` + tailClass + `|[a-zA-Z0-9\-+&@#/%=~_|)])` +
		`|` + bodyClass + `*` + tailClass +
		`)`,
)

// Splitter splits text into fragments. Detector implements it.
type Splitter interface {
	Parse(input string) []Fragment
}

var _ Splitter = Detector{}

// Detector splits text into link and text fragments.
// The zero value is ready to use and safe for concurrent use.
type Detector struct{}

// Parse splits input into fragments using a zero Detector.
func Parse(input string) []Fragment {
	return Detector{}.Parse(input)
}

// ParseBytes splits the text in b into fragments.
func ParseBytes(b []byte) []Fragment {
	return Detector{}.Parse(string(b))
}

// ParseReader reads r to the end and splits the text into fragments.
// It returns ErrInvalidArgument when r is nil.
func ParseReader(r io.Reader) ([]Fragment, error) {
	return Detector{}.ParseReader(r)
}

// Parse splits input into fragments that, combined, represent the entire
// input. Text between links becomes text fragments; no fragment is empty.
//
// An empty input yields an empty, non-nil slice.
func (Detector) Parse(input string) []Fragment {
	fragments := []Fragment{}
	if input == "" {
		return fragments
	}

	needle := 0
	for _, span := range findLinks(input) {
		start, end := span[0], span[1]

		// Text leading up to the link.
		if start > needle {
			fragments = append(fragments, mustFragment(false, input, needle, start))
		}

		fragments = append(fragments, mustFragment(true, input, start, end))
		needle = end
	}

	// Text after the last link.
	if needle < len(input) {
		fragments = append(fragments, mustFragment(false, input, needle, len(input)))
	}

	return fragments
}

// ParseReader reads r to the end and splits the text into fragments.
func (d Detector) ParseReader(r io.Reader) ([]Fragment, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: reader cannot be nil", ErrInvalidArgument)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	return d.Parse(string(data)), nil
}

// findLinks returns the [start, end) byte spans of all links in input, in
// order and without overlap.
func findLinks(input string) [][2]int {
	var spans [][2]int

	pos := 0
	for pos < len(input) {
		loc := linkRegex.FindStringIndex(input[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]

		// \b only knows ASCII; a scheme glued to any other letter is part
		// of a word too.
		if precededByWord(input, start) {
			pos = start + 1
			continue
		}

		spans = append(spans, [2]int{start, end})
		pos = end
	}

	return spans
}

// precededByWord reports whether the rune before offset is a letter, a digit
// or an underscore.
func precededByWord(input string, offset int) bool {
	if offset == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(input[:offset])
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// mustFragment builds a fragment from a span computed by findLinks. Those
// spans always fit the input; a failure here is a bug in this package.
func mustFragment(isLink bool, input string, start, end int) Fragment {
	f, err := newFragment(isLink, input, start, end)
	if err != nil {
		panic(err)
	}
	return f
}

// Links returns only the link fragments, in order.
func Links(fragments []Fragment) []Fragment {
	links := make([]Fragment, 0, len(fragments)/2+1)
	for _, f := range fragments {
		if f.IsLink() {
			links = append(links, f)
		}
	}
	return links
}

// Join concatenates the fragment values in order. For the output of Parse
// it returns the original input.
func Join(fragments []Fragment) string {
	var b strings.Builder
	for _, f := range fragments {
		b.WriteString(f.String())
	}
	return b.String()
}
