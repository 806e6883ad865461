package semantic

import (
	"errors"
	"fmt"

	"github.com/lhaig/storyscript/internal/tree"
)

// Internal errors. They signal a mismatch between the grammar and the
// analyser, never a defect in the analysed program.
var (
	ErrUnknownNode   = errors.New("semantic: unknown node kind")
	ErrMalformedNode = errors.New("semantic: malformed node")
)

func unknownNode(n *tree.Node) error {
	line, col := n.Pos()
	return fmt.Errorf("%w %q at %d:%d", ErrUnknownNode, n.Kind, line, col)
}

func malformed(n *tree.Node, missing string) error {
	line, col := n.Pos()
	kind := "<nil>"
	if n != nil {
		kind = n.Kind
	}
	return fmt.Errorf("%w: %s at %d:%d has no %s", ErrMalformedNode, kind, line, col, missing)
}
