// Package json extracts links from JSON files.
package json //nolint:revive // package name matches file type being parsed

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/goodbytes/linkdetect/internal/parser"
	"github.com/tidwall/gjson"
)

// Parser implements parser.FileParser for JSON files.
type Parser struct{}

// New creates a new JSON parser.
func New() *Parser {
	return &Parser{}
}

// Extensions returns the file extensions this parser handles.
func (*Parser) Extensions() []string {
	return []string{".json"}
}

// ValidateAndParse validates content and extracts links from string values
// and object keys. gjson keeps the raw index of every token, so links are
// placed exactly unless the string contains escapes.
func (*Parser) ValidateAndParse(filename string, content []byte) ([]parser.Link, error) {
	trimmed := bytes.TrimLeft(content, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, nil
	}

	if !gjson.ValidBytes(trimmed) {
		return nil, invalidJSON(content)
	}

	extractor := &linkExtractor{
		values: parser.NewValueExtractor(filename, content),
		base:   len(content) - len(trimmed),
	}
	extractor.walk(gjson.ParseBytes(trimmed), "")

	return extractor.values.Links(), nil
}

// linkExtractor walks gjson results.
type linkExtractor struct {
	values *parser.ValueExtractor
	base   int // offset of the parsed text in the file
}

// walk recursively extracts links from a JSON value.
func (e *linkExtractor) walk(r gjson.Result, path string) {
	switch {
	case r.IsObject():
		r.ForEach(func(key, value gjson.Result) bool {
			e.scan(key, path, parser.LinkTypeKey)

			childPath := key.Str
			if path != "" {
				childPath = path + "." + key.Str
			}
			e.walk(value, childPath)
			return true
		})

	case r.IsArray():
		i := 0
		r.ForEach(func(_, value gjson.Result) bool {
			e.walk(value, path+"["+strconv.Itoa(i)+"]")
			i++
			return true
		})

	case r.Type == gjson.String:
		e.scan(r, path, parser.LinkTypeValue)
	}
}

// scan runs the detector over a string token. The value starts one byte
// after the opening quote.
func (e *linkExtractor) scan(r gjson.Result, path string, typ parser.LinkType) {
	e.values.Scan(r.Str, e.base+r.Index+1, path, typ)
}

// invalidJSON describes why content is not valid JSON, with a position when
// the decoder reports one.
func invalidJSON(content []byte) error {
	var v any
	err := stdjson.Unmarshal(content, &v)

	var syntaxErr *stdjson.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := parser.OffsetToLineCol(parser.BuildLineIndex(content), int(syntaxErr.Offset)-1)
		return fmt.Errorf("invalid JSON at line %d, column %d: %w", line, col, err)
	}
	if err == nil {
		err = errors.New("malformed document")
	}
	return fmt.Errorf("invalid JSON: %w", err)
}

func init() {
	parser.RegisterParser(New())
}
