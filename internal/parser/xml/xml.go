// Package xml extracts links from XML files.
package xml //nolint:revive // package name matches file type being parsed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goodbytes/linkdetect/internal/parser"
)

// Parser implements parser.FileParser for XML files.
type Parser struct{}

// New creates a new XML parser.
func New() *Parser {
	return &Parser{}
}

// Extensions returns the file extensions this parser handles.
func (*Parser) Extensions() []string {
	return []string{".xml"}
}

// ValidateAndParse validates the content and extracts links from attribute
// values and character data in a single pass over the token stream.
// Comments, processing instructions and namespace declarations are skipped.
func (*Parser) ValidateAndParse(filename string, content []byte) ([]parser.Link, error) {
	if len(content) == 0 {
		return nil, nil
	}

	extractor := &linkExtractor{
		values: parser.NewValueExtractor(filename, content),
		stack:  make([]string, 0, 8),
	}

	decoder := xml.NewDecoder(bytes.NewReader(content))
	for {
		// The offset before reading is where the next token starts.
		offset := int(decoder.InputOffset())

		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, invalidXML(content, decoder, err)
		}

		extractor.processToken(token, offset)
	}

	return extractor.values.Links(), nil
}

// linkExtractor tracks the element path while tokens stream by.
type linkExtractor struct {
	values *parser.ValueExtractor
	stack  []string
}

// processToken processes a single XML token starting at offset.
func (e *linkExtractor) processToken(token xml.Token, offset int) {
	switch t := token.(type) {
	case xml.StartElement:
		e.stack = append(e.stack, t.Name.Local)
		e.extractFromElement(t, offset)
	case xml.EndElement:
		if len(e.stack) > 0 {
			e.stack = e.stack[:len(e.stack)-1]
		}
	case xml.CharData:
		e.scan(string(t), offset, e.path())
	}
}

// extractFromElement scans every attribute value of elem. Attribute values
// appear in source order, so each search resumes after the previous link.
func (e *linkExtractor) extractFromElement(elem xml.StartElement, offset int) {
	cursor := offset
	for _, attr := range elem.Attr {
		if isNamespaceDecl(attr.Name) {
			continue
		}
		cursor = e.scan(attr.Value, cursor, e.path()+"@"+attr.Name.Local)
	}
}

// scan records the links in s and returns the offset just past the last one,
// or hint when s holds none.
func (e *linkExtractor) scan(s string, hint int, path string) int {
	before := len(e.values.Links())
	e.values.Scan(s, hint, path, parser.LinkTypeValue)

	links := e.values.Links()
	if len(links) == before {
		return hint
	}
	return links[len(links)-1].End()
}

func (e *linkExtractor) path() string {
	return strings.Join(e.stack, ".")
}

// isNamespaceDecl reports whether an attribute declares a namespace. Its
// value is an identifier, not a link.
func isNamespaceDecl(name xml.Name) bool {
	return name.Space == "xmlns" || (name.Space == "" && name.Local == "xmlns")
}

// invalidXML wraps a decoder error with the line and column it stopped at.
func invalidXML(content []byte, decoder *xml.Decoder, err error) error {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("invalid XML at line %d: %w", syntaxErr.Line, err)
	}

	line, col := parser.OffsetToLineCol(parser.BuildLineIndex(content), int(decoder.InputOffset()))
	return fmt.Errorf("invalid XML at line %d, column %d: %w", line, col, err)
}

func init() {
	parser.RegisterParser(New())
}
