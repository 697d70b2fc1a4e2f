// Package yaml extracts links from YAML files.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/goodbytes/linkdetect/internal/parser"
	"gopkg.in/yaml.v3"
)

// Parser implements parser.FileParser for YAML files.
type Parser struct{}

// New creates a new YAML parser.
func New() *Parser {
	return &Parser{}
}

// Extensions returns the file extensions this parser handles.
func (*Parser) Extensions() []string {
	return []string{".yaml", ".yml"}
}

// ValidateAndParse decodes every document in content and extracts links
// from all scalars, keys included.
func (*Parser) ValidateAndParse(filename string, content []byte) ([]parser.Link, error) {
	if len(content) == 0 {
		return nil, nil
	}

	extractor := &linkExtractor{
		values: parser.NewValueExtractor(filename, content),
	}

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	for {
		var node yaml.Node
		if err := decoder.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		extractor.extractFromNode(&node, "")
	}

	return extractor.values.Links(), nil
}

// linkExtractor walks yaml.v3 node trees.
type linkExtractor struct {
	values *parser.ValueExtractor
}

// extractFromNode recursively extracts links below node.
func (e *linkExtractor) extractFromNode(node *yaml.Node, path string) {
	if node == nil {
		return
	}

	switch node.Kind {
	case yaml.DocumentNode:
		for _, content := range node.Content {
			e.extractFromNode(content, path)
		}

	case yaml.MappingNode:
		// Content alternates key, value.
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valueNode := node.Content[i+1]

			keyStr := ""
			if keyNode.Kind == yaml.ScalarNode {
				keyStr = keyNode.Value
				e.scanScalar(keyNode, path, parser.LinkTypeKey)
			}

			childPath := keyStr
			if path != "" {
				childPath = path + "." + keyStr
			}
			e.extractFromNode(valueNode, childPath)
		}

	case yaml.SequenceNode:
		for i, item := range node.Content {
			e.extractFromNode(item, path+"["+strconv.Itoa(i)+"]")
		}

	case yaml.ScalarNode:
		e.scanScalar(node, path, parser.LinkTypeValue)

	case yaml.AliasNode:
		// The anchored node was scanned where it is defined.
	}
}

// scanScalar runs the detector over a scalar. Quoted scalars start one byte
// after their reported column; block scalars start on a later line, which
// the value extractor finds by searching forward.
func (e *linkExtractor) scanScalar(node *yaml.Node, path string, typ parser.LinkType) {
	hint := parser.LineColToOffset(e.values.Lines(), node.Line, node.Column)
	if node.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		hint++
	}
	e.values.Scan(node.Value, hint, path, typ)
}

func init() {
	parser.RegisterParser(New())
}
