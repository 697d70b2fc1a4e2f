package parser

import (
	"bytes"

	"github.com/goodbytes/linkdetect/pkg/linkdetector"
)

// ValueExtractor turns decoded strings of a structured file into Links that
// point back into the raw file.
//
// Decoders hand out unescaped values, so a value is not always a verbatim
// slice of the file. Each link is placed exactly when the value appears
// verbatim at the hinted offset, otherwise at the next occurrence of the link
// text after the hint.
type ValueExtractor struct {
	FilePath string

	// Splitter finds links in values. Defaults to linkdetector.Detector.
	Splitter linkdetector.Splitter

	content []byte
	lines   []int
	links   []Link
}

// NewValueExtractor creates an extractor for the given file content.
func NewValueExtractor(filePath string, content []byte) *ValueExtractor {
	return &ValueExtractor{
		FilePath: filePath,
		Splitter: linkdetector.Detector{},
		content:  content,
		lines:    BuildLineIndex(content),
		links:    make([]Link, 0, 16),
	}
}

// Scan splits value and records every link in it.
// hint is the byte offset where value is expected to start in the file, or
// a position before it; path identifies the value inside the document.
func (e *ValueExtractor) Scan(value string, hint int, path string, typ LinkType) {
	for _, f := range e.Splitter.Parse(value) {
		if !f.IsLink() {
			continue
		}

		offset := e.locate(f, hint)
		line, col := OffsetToLineCol(e.lines, offset)
		e.links = append(e.links, Link{
			URL:      f.String(),
			FilePath: e.FilePath,
			Text:     path,
			Type:     typ,
			Line:     line,
			Column:   col,
			Offset:   offset,
		})
	}
}

// locate finds the byte offset of a link fragment in the file.
func (e *ValueExtractor) locate(f linkdetector.Fragment, hint int) int {
	hint = min(max(hint, 0), len(e.content))

	if start := hint + f.StartIndex(); start+f.Len() <= len(e.content) &&
		string(e.content[start:start+f.Len()]) == f.String() {
		return start
	}

	if idx := bytes.Index(e.content[hint:], []byte(f.String())); idx >= 0 {
		return hint + idx
	}
	if idx := bytes.Index(e.content, []byte(f.String())); idx >= 0 {
		return idx
	}
	return hint
}

// Lines returns the line index of the file.
func (e *ValueExtractor) Lines() []int {
	return e.lines
}

// Links returns the links recorded so far, in scan order.
func (e *ValueExtractor) Links() []Link {
	return e.links
}
