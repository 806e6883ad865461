package semantic

import (
	"strings"

	"github.com/lhaig/storyscript/internal/diagnostic"
	"github.com/lhaig/storyscript/internal/tree"
	"github.com/lhaig/storyscript/internal/types"
)

// ExpressionResolver computes semantic types for expression and type
// annotation nodes. Implementations must fail with ErrUnknownNode on node
// kinds they do not recognize instead of guessing a type.
type ExpressionResolver interface {
	// Resolve returns the type of an expression node under scope
	Resolve(node *tree.Node, scope *Scope) (*types.Type, error)
	// Types returns the type named by a type annotation node
	Types(node *tree.Node) (*types.Type, error)
}

// Resolver is the default ExpressionResolver for storyscript expressions.
// Service calls, mutations and function calls are opaque and resolve to
// any.
type Resolver struct{}

// NewResolver creates the default expression resolver
func NewResolver() *Resolver {
	return &Resolver{}
}

// operator precedence levels of the expression grammar
var binaryKinds = map[string]bool{
	"or_expression":    true,
	"and_expression":   true,
	"cmp_expression":   true,
	"arith_expression": true,
	"mul_expression":   true,
	"pow_expression":   true,
}

// nodes that wrap exactly one operand
var wrapperKinds = map[string]bool{
	"base_expression":    true,
	"expression":         true,
	"primary_expression": true,
	"entity":             true,
	"values":             true,
}

// Resolve returns the type of an expression node
func (r *Resolver) Resolve(node *tree.Node, scope *Scope) (*types.Type, error) {
	if node == nil {
		return nil, malformed(node, "expression")
	}

	switch {
	case wrapperKinds[node.Kind]:
		ops := operands(node)
		if len(ops) != 1 {
			return nil, malformed(node, "single operand")
		}
		return r.Resolve(ops[0], scope)
	case binaryKinds[node.Kind]:
		return r.resolveBinary(node, scope)
	}

	switch node.Kind {
	case "unary_expression":
		return r.resolveUnary(node, scope)
	case "number":
		return resolveNumber(node), nil
	case "string":
		return types.String, nil
	case "boolean":
		return types.Boolean, nil
	case "void":
		return types.None, nil
	case "time":
		return types.Time, nil
	case "regular_expression":
		return types.Regex, nil
	case "list":
		return r.resolveList(node, scope)
	case "map":
		return r.resolveMap(node, scope)
	case "path":
		return r.resolvePath(node, scope)
	case "service", "mutation", "call_expression", "inline_expression":
		return types.Any, nil
	}
	return nil, unknownNode(node)
}

// operands returns the rule children of an expression node, skipping
// operator nodes
func operands(node *tree.Node) []*tree.Node {
	var out []*tree.Node
	for _, c := range node.Rules() {
		if !strings.HasSuffix(c.Kind, "_operator") {
			out = append(out, c)
		}
	}
	return out
}

// operators returns the operator text of each operator child in order
func operators(node *tree.Node) []string {
	var out []string
	for _, c := range node.Rules() {
		if strings.HasSuffix(c.Kind, "_operator") {
			op := ""
			if t := c.FirstToken(); t != nil {
				op = t.Value
			}
			out = append(out, op)
		}
	}
	return out
}

func (r *Resolver) resolveBinary(node *tree.Node, scope *Scope) (*types.Type, error) {
	ops := operands(node)
	if len(ops) == 0 {
		return nil, malformed(node, "operand")
	}

	left, err := r.Resolve(ops[0], scope)
	if err != nil {
		return nil, err
	}
	if len(ops) == 1 {
		return left, nil
	}

	opTexts := operators(node)
	for i, operand := range ops[1:] {
		right, err := r.Resolve(operand, scope)
		if err != nil {
			return nil, err
		}
		op := ""
		if i < len(opTexts) {
			op = opTexts[i]
		}

		switch node.Kind {
		case "or_expression", "and_expression", "cmp_expression":
			left = types.Boolean
		default:
			left, err = arithmetic(node, op, left, right)
			if err != nil {
				return nil, err
			}
		}
	}
	return left, nil
}

// arithmetic types left op right for +, -, *, /, % and ^
func arithmetic(node *tree.Node, op string, left, right *types.Type) (*types.Type, error) {
	if left.IsAny() || right.IsAny() {
		return types.Any, nil
	}

	if left.IsNumeric() && right.IsNumeric() {
		if left.Kind() == types.KindInt && right.Kind() == types.KindInt {
			return types.Int, nil
		}
		return types.Float, nil
	}

	if op == "+" {
		switch {
		case left.Kind() == types.KindString || right.Kind() == types.KindString:
			return types.String, nil
		case left.Kind() == types.KindList && right.Kind() == types.KindList:
			if left.Elem().Equal(right.Elem()) {
				return left, nil
			}
			return types.ListOf(types.Any), nil
		}
	}

	return nil, diagnostic.Errorf(diagnostic.TypeOperationIncompatible, node,
		"op", op, "left", left, "right", right)
}

func (r *Resolver) resolveUnary(node *tree.Node, scope *Scope) (*types.Type, error) {
	ops := operands(node)
	if len(ops) != 1 {
		return nil, malformed(node, "single operand")
	}
	t, err := r.Resolve(ops[0], scope)
	if err != nil {
		return nil, err
	}

	opTexts := operators(node)
	if len(opTexts) == 0 {
		return t, nil
	}
	switch opTexts[0] {
	case "not":
		return types.Boolean, nil
	case "-", "+":
		if t.IsAny() || t.IsNumeric() {
			return t, nil
		}
		return nil, diagnostic.Errorf(diagnostic.TypeOperationIncompatible, node,
			"op", opTexts[0], "left", t, "right", t)
	}
	return t, nil
}

func resolveNumber(node *tree.Node) *types.Type {
	tok := node.FirstToken()
	if tok == nil {
		return types.Int
	}
	switch tok.Kind {
	case "INT":
		return types.Int
	case "FLOAT":
		return types.Float
	}
	if strings.ContainsAny(tok.Value, ".eE") {
		return types.Float
	}
	return types.Int
}

// common returns the shared type of ts, or any when they differ. An empty
// list also yields any.
func common(ts []*types.Type) *types.Type {
	if len(ts) == 0 {
		return types.Any
	}
	for _, t := range ts[1:] {
		if !t.Equal(ts[0]) {
			return types.Any
		}
	}
	return ts[0]
}

func (r *Resolver) resolveList(node *tree.Node, scope *Scope) (*types.Type, error) {
	var elems []*types.Type
	for _, item := range node.Rules() {
		t, err := r.Resolve(item, scope)
		if err != nil {
			return nil, err
		}
		elems = append(elems, t)
	}
	return types.ListOf(common(elems)), nil
}

func (r *Resolver) resolveMap(node *tree.Node, scope *Scope) (*types.Type, error) {
	var keys, values []*types.Type
	for _, kv := range node.Slots("key_value") {
		parts := kv.Rules()
		if len(parts) != 2 {
			return nil, malformed(kv, "key and value")
		}
		k, err := r.Resolve(parts[0], scope)
		if err != nil {
			return nil, err
		}
		v, err := r.Resolve(parts[1], scope)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
		values = append(values, v)
	}
	return types.MapOf(common(keys), common(values)), nil
}

// resolvePath looks up the head of a path. Each fragment indexes one level
// into a list or map; anything else indexed resolves to any.
func (r *Resolver) resolvePath(node *tree.Node, scope *Scope) (*types.Type, error) {
	name, ok := PathName(node)
	if !ok {
		return nil, malformed(node, "name")
	}
	sym := scope.Resolve(name)
	if sym == nil {
		return nil, diagnostic.Errorf(diagnostic.VarNotDefined, node, "name", name)
	}

	t := sym.Type
	for range node.Slots("path_fragment") {
		switch t.Kind() {
		case types.KindList, types.KindMap:
			t = t.Elem()
		default:
			t = types.Any
		}
	}
	return t, nil
}

// PathName returns the head name of a path node
func PathName(node *tree.Node) (string, bool) {
	if !node.Is("path") {
		return "", false
	}
	tok := node.Child(0)
	if !tok.IsToken() || tok.Value == "" {
		return "", false
	}
	return tok.Value, true
}

// Types returns the type named by a types / base_type / list_type /
// map_type annotation node
func (r *Resolver) Types(node *tree.Node) (*types.Type, error) {
	if node == nil {
		return nil, malformed(node, "type")
	}

	switch node.Kind {
	case "types":
		inner := node.Rules()
		if len(inner) != 1 {
			return nil, malformed(node, "single type")
		}
		return r.Types(inner[0])
	case "base_type":
		tok := node.FirstToken()
		if tok == nil {
			return nil, malformed(node, "type name")
		}
		t, ok := types.Lookup(tok.Value)
		if !ok {
			return nil, diagnostic.Errorf(diagnostic.TypeUnknown, node, "name", tok.Value)
		}
		return t, nil
	case "list_type":
		inner := node.Rules()
		if len(inner) != 1 {
			return nil, malformed(node, "element type")
		}
		elem, err := r.Types(inner[0])
		if err != nil {
			return nil, err
		}
		return types.ListOf(elem), nil
	case "map_type":
		inner := node.Rules()
		if len(inner) != 2 {
			return nil, malformed(node, "key and value types")
		}
		key, err := r.Types(inner[0])
		if err != nil {
			return nil, err
		}
		value, err := r.Types(inner[1])
		if err != nil {
			return nil, err
		}
		return types.MapOf(key, value), nil
	}
	return nil, unknownNode(node)
}
