package semantic

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/lhaig/storyscript/internal/tree"
	"github.com/lhaig/storyscript/internal/types"
)

// Param is a declared function parameter
type Param struct {
	Name string
	Type *types.Type
}

// Signature describes a function definition
type Signature struct {
	Name       string
	Params     []Param
	Output     *types.Type // any when no output is declared
	OutputNode *tree.Node  // function_output node, nil when absent
	Node       *tree.Node  // function_block node
}

// Result holds the results of analysis for use by later compiler phases
type Result struct {
	Root *tree.Node
	// Scopes maps each node that introduces a scope (start, nested_block,
	// foreach_block, function_block) to that scope
	Scopes map[*tree.Node]*Scope
	// Functions lists function signatures in source order
	Functions []*Signature
}

// ScopeOf returns the scope introduced by n, or nil
func (r *Result) ScopeOf(n *tree.Node) *Scope {
	return r.Scopes[n]
}

// RootScope returns the program scope
func (r *Result) RootScope() *Scope {
	return r.Scopes[r.Root]
}

// DumpScopes renders the scopes of the result as a tree following the
// syntax tree nesting
func (r *Result) DumpScopes() string {
	root := treeprint.New()
	r.dump(root, r.Root)
	return root.String()
}

func (r *Result) dump(parent treeprint.Tree, n *tree.Node) {
	if n == nil {
		return
	}
	if scope, ok := r.Scopes[n]; ok {
		line, _ := n.Pos()
		label := fmt.Sprintf("%s (line %d)", n.Kind, line)
		if n.Is("function_block") {
			if sig, ok := r.signatureOf(n); ok {
				label = fmt.Sprintf("function %s -> %s (line %d)", sig.Name, sig.Output, line)
			}
		}
		parent = parent.AddBranch(label)
		for _, sym := range scope.Symbols() {
			parent.AddNode(fmt.Sprintf("%s: %s [%s]", sym.Name, sym.Type, sym.Kind))
		}
	}
	for _, c := range n.Children {
		r.dump(parent, c)
	}
}

func (r *Result) signatureOf(n *tree.Node) (*Signature, bool) {
	for _, sig := range r.Functions {
		if sig.Node == n {
			return sig, true
		}
	}
	return nil, false
}
