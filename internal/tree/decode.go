package tree

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrEmptyTree is returned when a tree file holds no document
var ErrEmptyTree = errors.New("tree: empty document")

// UnmarshalYAML accepts two node encodings. The explicit form is a mapping
// with a "kind" key plus optional value, line, column and children keys
// (this is also what JSON tree files use). The compact form is a mapping
// with a single key naming the kind, whose value is either a scalar (a
// token) or a sequence of children:
//
//	assignment:
//	  - path:
//	      - NAME: a
//	  - assignment_fragment: [...]
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("tree: line %d: syntax node must be a mapping", value.Line)
	}

	for i := 0; i+1 < len(value.Content); i += 2 {
		if value.Content[i].Value == "kind" {
			type plain Node
			var p plain
			if err := value.Decode(&p); err != nil {
				return err
			}
			*n = Node(p)
			return nil
		}
	}

	if len(value.Content) != 2 {
		return fmt.Errorf("tree: line %d: compact node must have exactly one key", value.Line)
	}
	key, body := value.Content[0], value.Content[1]
	*n = Node{Kind: key.Value, Line: key.Line, Column: key.Column}

	switch body.Kind {
	case yaml.ScalarNode:
		if body.Tag == "!!null" {
			return nil
		}
		n.Value = body.Value
	case yaml.SequenceNode:
		if err := body.Decode(&n.Children); err != nil {
			return err
		}
	default:
		return fmt.Errorf("tree: line %d: node %q must hold a scalar or a sequence", body.Line, key.Value)
	}
	return nil
}

// Decode reads a single syntax tree from r
func Decode(r io.Reader) (*Node, error) {
	var root Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyTree
		}
		return nil, fmt.Errorf("tree: decode: %w", err)
	}
	return &root, nil
}

// Load reads a syntax tree from a YAML or JSON file
func Load(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	root, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}
