// Package markdown extracts links from Markdown files.
//
// The detector runs over the raw source so that every link keeps its exact
// byte position. The goldmark AST decides what each link is: links inside
// code blocks and code spans are dropped, link labels are not reported
// twice, and destinations of inline links, images, autolinks, reference
// definitions and HTML tags get their own type and text.
package markdown

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"github.com/goodbytes/linkdetect/internal/parser"
	"github.com/goodbytes/linkdetect/pkg/linkdetector"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Parser implements parser.FileParser for Markdown files.
type Parser struct{}

// New creates a new Markdown parser.
func New() *Parser {
	return &Parser{}
}

// Extensions returns the file extensions this parser handles.
func (*Parser) Extensions() []string {
	return []string{".md", ".mdx", ".markdown"}
}

// ValidateAndParse extracts links from Markdown content.
// Markdown is permissive, so any content is valid.
func (*Parser) ValidateAndParse(filename string, content []byte) ([]parser.Link, error) {
	return ExtractLinksFromContent(content, filename)
}

func init() {
	parser.RegisterParser(New())
}

// htmlLinkRegex matches <a href="..."> tags and captures the anchor text.
var htmlLinkRegex = regexp.MustCompile(`(?is)<a\s[^>]*?href\s*=\s*["']([^"']+)["'][^>]*>(.*?)</a>`)

// htmlTagRegex strips tags from anchor text.
var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// refDefPrefix matches the start of a reference definition line up to
// the destination.
var refDefPrefix = regexp.MustCompile(`^ {0,3}\[([^\]]+)\]:[ \t]*<?$`)

// span is a [start, stop) byte range of the source.
type span struct {
	start, stop int
}

// spans is a set of ranges supporting containment queries.
type spans []span

// normalize sorts the ranges and merges overlapping ones.
func (s spans) normalize() spans {
	sort.Slice(s, func(i, j int) bool { return s[i].start < s[j].start })

	merged := s[:0]
	for _, r := range s {
		if n := len(merged); n > 0 && r.start <= merged[n-1].stop {
			merged[n-1].stop = max(merged[n-1].stop, r.stop)
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// contains reports whether offset lies in one of the ranges.
// s must be normalized.
func (s spans) contains(offset int) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i].start > offset })
	return i > 0 && offset < s[i-1].stop
}

// destination describes a link destination found in the AST.
type destination struct {
	text string
	kind parser.LinkType
}

// analysis is what the AST tells about byte ranges of the source.
type analysis struct {
	destinations map[int]destination // byte offset of destination -> link
	refTexts     map[string]string   // reference destination -> first label using it
	htmlTexts    map[int]string      // byte offset of href value -> anchor text
	source       []byte
	code         spans
	labels       spans
	html         spans
}

// ExtractLinksFromContent returns the links of a Markdown document in source
// order.
func ExtractLinksFromContent(content []byte, filePath string) ([]parser.Link, error) {
	if len(content) == 0 {
		return nil, nil
	}

	a := analyze(content)
	lines := parser.BuildLineIndex(content)

	links := make([]parser.Link, 0, 32)
	for _, f := range linkdetector.ParseBytes(content) {
		if !f.IsLink() {
			continue
		}

		start := f.StartIndex()
		if a.code.contains(start) || a.labels.contains(start) {
			continue
		}

		linkType, linkText := a.classify(f)
		line, col := parser.OffsetToLineCol(lines, start)
		links = append(links, parser.Link{
			URL:      f.String(),
			FilePath: filePath,
			Text:     linkText,
			Type:     linkType,
			Line:     line,
			Column:   col,
			Offset:   start,
		})
	}

	return links, nil
}

// newMarkdown builds the goldmark instance. GFM tables and strikethrough
// change where inline code starts, so they are enabled; Linkify is not, the
// detector decides what a bare link is.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
	)
}

// analyze parses content and collects code, label and HTML ranges plus the
// destinations of links.
func analyze(content []byte) *analysis {
	pctx := gmparser.NewContext()
	doc := newMarkdown().Parser().Parse(text.NewReader(content), gmparser.WithContext(pctx))

	a := &analysis{
		destinations: map[int]destination{},
		refTexts:     map[string]string{},
		htmlTexts:    map[int]string{},
		source:       content,
	}

	_ = ast.Walk(doc, a.walk)

	for _, match := range htmlLinkRegex.FindAllSubmatchIndex(content, -1) {
		anchor := htmlTagRegex.ReplaceAll(content[match[4]:match[5]], nil)
		a.htmlTexts[match[2]] = strings.TrimSpace(string(anchor))
	}

	a.code = a.code.normalize()
	a.labels = a.labels.normalize()
	a.html = a.html.normalize()
	return a
}

// walk is the AST walker.
func (a *analysis) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	switch node := n.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		a.code = appendLines(a.code, node)
		return ast.WalkSkipChildren, nil

	case *ast.CodeSpan:
		a.code = appendTextSegments(a.code, node)
		return ast.WalkSkipChildren, nil

	case *ast.HTMLBlock:
		a.html = appendLines(a.html, node)
		return ast.WalkSkipChildren, nil

	case *ast.RawHTML:
		for i := range node.Segments.Len() {
			seg := node.Segments.At(i)
			a.html = append(a.html, span{seg.Start, seg.Stop})
		}

	case *ast.Link:
		a.addLink(node, string(node.Destination), parser.LinkTypeInline)

	case *ast.Image:
		a.addLink(node, string(node.Destination), parser.LinkTypeImage)
	}

	return ast.WalkContinue, nil
}

// addLink records the label range of a link or image and, for inline
// syntax, the position of its destination.
func (a *analysis) addLink(n ast.Node, dest string, kind parser.LinkType) {
	start, stop, ok := labelRange(n)
	if !ok {
		return
	}
	a.labels = append(a.labels, span{start, stop})

	label := getNodeText(n, a.source)
	if offset, ok := a.inlineDestination(stop, dest); ok {
		a.destinations[offset] = destination{kind: kind, text: label}
		return
	}

	// Reference style: the destination lives in a definition elsewhere.
	if _, seen := a.refTexts[dest]; !seen {
		a.refTexts[dest] = label
	}
}

// inlineDestination finds dest written as "](dest" after the label ending
// at stop. Emphasis markers, nested images and whitespace may sit between.
func (a *analysis) inlineDestination(stop int, dest string) (int, bool) {
	if dest == "" {
		return 0, false
	}

	idx := bytes.Index(a.source[stop:], []byte(dest))
	if idx < 0 {
		return 0, false
	}
	offset := stop + idx

	before := bytes.TrimRight(a.source[stop:offset], " \t\n<")
	if !bytes.HasSuffix(before, []byte("](")) {
		return 0, false
	}
	return offset, true
}

// classify returns the type and text of a detected link.
func (a *analysis) classify(f linkdetector.Fragment) (parser.LinkType, string) {
	start, end := f.StartIndex(), f.EndIndex()

	if d, ok := a.destinations[start]; ok {
		return d.kind, d.text
	}

	if anchor, ok := a.htmlTexts[start]; ok {
		return parser.LinkTypeHTML, anchor
	}
	if a.html.contains(start) {
		return parser.LinkTypeHTML, ""
	}

	lineStart := bytes.LastIndexByte(a.source[:start], '\n') + 1
	if m := refDefPrefix.FindSubmatch(a.source[lineStart:start]); m != nil {
		if label, ok := a.refTexts[f.String()]; ok {
			return parser.LinkTypeReference, label
		}
		return parser.LinkTypeReference, string(m[1])
	}

	if start > 0 && a.source[start-1] == '<' && end < len(a.source) && a.source[end] == '>' {
		return parser.LinkTypeAutolink, ""
	}

	// Inline link with an empty label, which has no text node to anchor on.
	if bytes.HasSuffix(bytes.TrimRight(a.source[:start], " \t\n<"), []byte("](")) {
		return parser.LinkTypeInline, ""
	}

	return parser.LinkTypeBare, ""
}

// appendLines adds the line segments of a block node.
func appendLines(s spans, n ast.Node) spans {
	lines := n.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		s = append(s, span{seg.Start, seg.Stop})
	}
	return s
}

// appendTextSegments adds the text segments below n.
func appendTextSegments(s spans, n ast.Node) spans {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			s = append(s, span{t.Segment.Start, t.Segment.Stop})
		} else if child.HasChildren() {
			s = appendTextSegments(s, child)
		}
	}
	return s
}

// labelRange returns the range covered by the text below n.
func labelRange(n ast.Node) (start, stop int, ok bool) {
	segments := appendTextSegments(nil, n)
	if len(segments) == 0 {
		return 0, 0, false
	}

	start, stop = segments[0].start, segments[0].stop
	for _, s := range segments[1:] {
		start = min(start, s.start)
		stop = max(stop, s.stop)
	}
	return start, stop, true
}

// getNodeText concatenates the text below n.
func getNodeText(n ast.Node, source []byte) string {
	var buf bytes.Buffer

	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if textNode, ok := child.(*ast.Text); ok {
			buf.Write(textNode.Segment.Value(source))
		} else if child.HasChildren() {
			buf.WriteString(getNodeText(child, source))
		}
	}

	return buf.String()
}
