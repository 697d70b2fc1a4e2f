package parser

import (
	"github.com/goodbytes/linkdetect/pkg/linkdetector"
)

// TextParser implements FileParser for plain text files.
// The whole file is split by the detector; every link is bare.
type TextParser struct{}

// NewTextParser creates a new plain text parser.
func NewTextParser() *TextParser {
	return &TextParser{}
}

// Extensions returns the file extensions this parser handles.
func (*TextParser) Extensions() []string {
	return []string{".txt", ".text", ".log"}
}

// ValidateAndParse extracts links from text content.
// Any byte sequence is valid text.
func (*TextParser) ValidateAndParse(filename string, content []byte) ([]Link, error) {
	return ExtractLinksFromText(filename, content), nil
}

// ExtractLinksFromText returns every link in content as a bare Link.
func ExtractLinksFromText(filename string, content []byte) []Link {
	if len(content) == 0 {
		return nil
	}

	lines := BuildLineIndex(content)
	fragments := linkdetector.Links(linkdetector.ParseBytes(content))

	links := make([]Link, 0, len(fragments))
	for _, f := range fragments {
		line, col := OffsetToLineCol(lines, f.StartIndex())
		links = append(links, Link{
			URL:      f.String(),
			FilePath: filename,
			Type:     LinkTypeBare,
			Line:     line,
			Column:   col,
			Offset:   f.StartIndex(),
		})
	}
	return links
}

func init() {
	RegisterParser(NewTextParser())
}
