// Package toml extracts links from TOML files.
package toml

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/goodbytes/linkdetect/internal/parser"
	"github.com/pelletier/go-toml/v2"
)

// Parser implements parser.FileParser for TOML files.
type Parser struct{}

// New creates a new TOML parser.
func New() *Parser {
	return &Parser{}
}

// Extensions returns the file extensions this parser handles.
func (*Parser) Extensions() []string {
	return []string{".toml"}
}

// ValidateAndParse decodes content and extracts links from string values and
// keys. Links are returned in file order.
func (*Parser) ValidateAndParse(filename string, content []byte) ([]parser.Link, error) {
	if len(content) == 0 {
		return nil, nil
	}

	var doc map[string]any
	if err := toml.Unmarshal(content, &doc); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("invalid TOML at line %d, column %d: %w", row, col, err)
		}
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}

	extractor := &linkExtractor{
		values: parser.NewValueExtractor(filename, content),
		cursor: map[string]int{},
	}
	extractor.extractFromTable(doc, "")

	links := extractor.values.Links()
	sort.SliceStable(links, func(i, j int) bool { return links[i].Offset < links[j].Offset })
	return links, nil
}

// linkExtractor walks decoded TOML values.
//
// Decoding drops positions, so each string is found by searching the source.
// cursor remembers where the last copy of a string was found so that
// repeated strings map to successive occurrences.
type linkExtractor struct {
	values *parser.ValueExtractor
	cursor map[string]int
}

// extractFromValue recursively extracts links from a TOML value.
func (e *linkExtractor) extractFromValue(v any, path string) {
	switch val := v.(type) {
	case string:
		e.scan(val, path, parser.LinkTypeValue)
	case map[string]any:
		e.extractFromTable(val, path)
	case []any:
		for i, item := range val {
			e.extractFromValue(item, path+"["+strconv.Itoa(i)+"]")
		}
	case []map[string]any:
		for i, item := range val {
			e.extractFromTable(item, path+"["+strconv.Itoa(i)+"]")
		}
	}
}

// extractFromTable walks a table in key order.
func (e *linkExtractor) extractFromTable(table map[string]any, path string) {
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		e.scan(key, path, parser.LinkTypeKey)

		childPath := key
		if path != "" {
			childPath = path + "." + key
		}
		e.extractFromValue(table[key], childPath)
	}
}

// scan runs the detector over s and advances the cursor for s.
func (e *linkExtractor) scan(s, path string, typ parser.LinkType) {
	before := len(e.values.Links())
	e.values.Scan(s, e.cursor[s], path, typ)

	if links := e.values.Links(); len(links) > before {
		e.cursor[s] = links[before].Offset + 1
	}
}

func init() {
	parser.RegisterParser(New())
}
