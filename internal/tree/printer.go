package tree

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// Print returns a tree-like string representation of the syntax tree for
// debugging
func Print(node *Node) string {
	if node == nil {
		return ""
	}
	root := treeprint.New()
	printNode(root, node)
	return root.String()
}

func printNode(parent treeprint.Tree, node *Node) {
	if node == nil {
		return
	}
	if node.IsToken() {
		parent.AddNode(label(node))
		return
	}
	branch := parent.AddBranch(label(node))
	for _, c := range node.Children {
		printNode(branch, c)
	}
}

// label renders a node as "kind", "KIND value" or either form followed by
// its position
func label(node *Node) string {
	s := node.Kind
	if node.Value != "" {
		s = fmt.Sprintf("%s %q", s, node.Value)
	}
	if node.Line > 0 {
		s = fmt.Sprintf("%s @%d:%d", s, node.Line, node.Column)
	}
	return s
}
