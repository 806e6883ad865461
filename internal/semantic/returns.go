package semantic

import (
	"github.com/lhaig/storyscript/internal/diagnostic"
	"github.com/lhaig/storyscript/internal/tree"
	"github.com/lhaig/storyscript/internal/types"
)

// checkReturns verifies a function with a declared output: every path must
// return (unless the output is any) and every return statement's value
// must be assignable to the output type.
func (v *visitor) checkReturns(fn *tree.Node, scope *Scope, sig *Signature) error {
	if sig.OutputNode == nil {
		return nil
	}

	if !sig.Output.IsAny() && !HasReturn(fn) {
		return diagnostic.Errorf(diagnostic.ReturnRequired, sig.OutputNode,
			"function", sig.Name, "target", sig.Output)
	}

	for _, ret := range v.returnStatements(fn, scope) {
		t, node := types.None, ret.node
		if expr := ret.node.Slot("base_expression"); expr != nil {
			var err error
			if t, err = v.resolver.Resolve(expr, ret.scope); err != nil {
				return err
			}
			node = expr
		}
		if !types.Assignable(sig.Output, t) {
			return diagnostic.Errorf(diagnostic.ReturnTypeDiffers, node,
				"target", sig.Output, "source", t)
		}
	}
	return nil
}

type scopedReturn struct {
	node  *tree.Node
	scope *Scope
}

// returnStatements finds every return_statement below fn, paired with the
// innermost recorded scope enclosing it. Nested function definitions are
// checked on their own and are not searched.
func (v *visitor) returnStatements(fn *tree.Node, scope *Scope) []scopedReturn {
	var out []scopedReturn
	var walk func(n *tree.Node, scope *Scope)
	walk = func(n *tree.Node, scope *Scope) {
		if n == nil {
			return
		}
		if n != fn {
			if n.Is("function_block") {
				return
			}
			if s, ok := v.result.Scopes[n]; ok {
				scope = s
			}
		}
		if n.Is("return_statement") {
			out = append(out, scopedReturn{node: n, scope: scope})
		}
		for _, c := range n.Children {
			walk(c, scope)
		}
	}
	walk(fn, scope)
	return out
}

// HasReturn reports whether every path through n reaches a return
// statement:
//
//   - a line whose rules hold a return_statement returns;
//   - a node whose only line is such a return returns;
//   - an if chain returns only with an else branch and every branch
//     returning;
//   - any other node with a nested block returns if any line of that block
//     returns. Loop bodies are not proven to run, so this over-approximates.
func HasReturn(n *tree.Node) bool {
	if n == nil {
		return false
	}
	if isReturn(n.Slot("rules")) {
		return true
	}
	if blk := n.Slot("block"); blk != nil && len(blk.Children) == 1 && isReturn(blk.Slot("rules")) {
		return true
	}
	if ifb := n.Slot("if_block"); ifb != nil {
		return ifReturns(ifb)
	}

	nested := n.Slot("nested_block")
	if nested == nil {
		nested = n.Child(0).Slot("nested_block")
	}
	if nested != nil {
		return anyReturns(nested)
	}
	return false
}

func isReturn(rules *tree.Node) bool {
	return rules.Slot("return_statement") != nil
}

func anyReturns(nested *tree.Node) bool {
	for _, line := range nested.Children {
		if HasReturn(line) {
			return true
		}
	}
	return false
}

// ifReturns requires an else branch and every branch body to return
func ifReturns(ifb *tree.Node) bool {
	if ifb.Slot("else_block") == nil {
		return false
	}
	for _, branch := range ifb.Children {
		switch branch.Kind {
		case "nested_block":
			if !anyReturns(branch) {
				return false
			}
		case "elseif_block", "else_block":
			if !HasReturn(branch) {
				return false
			}
		}
	}
	return true
}
