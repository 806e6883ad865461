package semantic

import (
	"go.uber.org/zap"

	"github.com/lhaig/storyscript/internal/diagnostic"
	"github.com/lhaig/storyscript/internal/tree"
	"github.com/lhaig/storyscript/internal/types"
)

// Options configures an Analyzer
type Options struct {
	// Resolver types expressions; defaults to NewResolver()
	Resolver ExpressionResolver
	// Logger receives debug traces of scope creation and function checks;
	// defaults to a no-op logger
	Logger *zap.Logger
}

// Analyzer assigns and checks types for a syntax tree. An Analyzer holds no
// per-tree state and may analyse independent trees concurrently.
type Analyzer struct {
	resolver ExpressionResolver
	log      *zap.Logger
}

// New creates an Analyzer
func New(opts Options) *Analyzer {
	a := &Analyzer{resolver: opts.Resolver, log: opts.Logger}
	if a.resolver == nil {
		a.resolver = NewResolver()
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	return a
}

// Analyze runs the default Analyzer over a program tree
func Analyze(root *tree.Node) (*Result, error) {
	return New(Options{}).Analyze(root)
}

// Analyze walks the program rooted at a start node once, building scopes
// and checking assignments and function returns. The first violation stops
// the walk and is returned as a *diagnostic.SemanticError; grammar mismatches
// are returned wrapping ErrUnknownNode or ErrMalformedNode.
func (a *Analyzer) Analyze(root *tree.Node) (*Result, error) {
	if !root.Is("start") {
		return nil, malformed(root, "start rule")
	}

	v := &visitor{
		resolver: a.resolver,
		log:      a.log,
		result: &Result{
			Root:   root,
			Scopes: make(map[*tree.Node]*Scope),
		},
	}
	if err := v.start(root); err != nil {
		return nil, err
	}
	return v.result, nil
}

// visitor is the per-tree state of one Analyze call
type visitor struct {
	resolver ExpressionResolver
	log      *zap.Logger
	result   *Result
}

// record attaches scope to the node that introduced it
func (v *visitor) record(n *tree.Node, scope *Scope) {
	v.result.Scopes[n] = scope
	if ce := v.log.Check(zap.DebugLevel, "scope created"); ce != nil {
		line, col := n.Pos()
		ce.Write(zap.String("node", n.Kind), zap.Int("line", line), zap.Int("column", col),
			zap.Bool("isolated", scope.Parent() == nil))
	}
}

// visit dispatches on the node kind. Kinds without a handler recurse into
// their children with the scope unchanged.
func (v *visitor) visit(n *tree.Node, scope *Scope) error {
	if n == nil || n.IsToken() {
		return nil
	}

	switch n.Kind {
	case "assignment":
		return v.assignment(n, scope)
	case "nested_block":
		return v.nestedBlock(n, scope)
	case "foreach_block":
		return v.foreachBlock(n, scope)
	case "while_block", "when_block", "else_block", "catch_block", "finally_block":
		return v.body(n, scope)
	case "if_block":
		return v.ifBlock(n, scope)
	case "elseif_block":
		return v.conditional(n, "elseif_statement", scope)
	case "try_block":
		return v.tryBlock(n, scope)
	case "function_block":
		return v.functionBlock(n, scope)
	default:
		return v.visitChildren(n, scope)
	}
}

func (v *visitor) visitChildren(n *tree.Node, scope *Scope) error {
	for _, c := range n.Children {
		if err := v.visit(c, scope); err != nil {
			return err
		}
	}
	return nil
}

// start creates the root scope
func (v *visitor) start(n *tree.Node) error {
	scope := NewScope(nil)
	v.record(n, scope)
	return v.visitChildren(n, scope)
}

// assignment binds the target name in the innermost scope. Reassigning a
// name visible from an enclosing scope requires the new value to be
// assignable to the existing binding's type.
func (v *visitor) assignment(n *tree.Node, scope *Scope) error {
	path := n.Slot("path")
	expr := n.Slot("assignment_fragment").Slot("base_expression")
	if path == nil || expr == nil {
		return malformed(n, "path or expression")
	}

	t, err := v.resolver.Resolve(expr, scope)
	if err != nil {
		return err
	}

	name, ok := PathName(path)
	if !ok {
		return malformed(path, "name")
	}

	// a.b = x writes into an existing value rather than binding a name
	if len(path.Slots("path_fragment")) == 0 {
		if existing := scope.Resolve(name); existing != nil && !existing.Type.CanBeAssignedFrom(t) {
			return diagnostic.Errorf(diagnostic.TypeAssignmentDifferent, expr,
				"name", name, "var_type", existing.Type, "target", t)
		}
		scope.Insert(name, &Symbol{Name: name, Type: t, Kind: SymVariable})
	}

	return v.visitChildren(n, scope)
}

// nestedBlock opens a child scope
func (v *visitor) nestedBlock(n *tree.Node, scope *Scope) error {
	child := scope.Child()
	v.record(n, child)
	return v.visitChildren(n, child)
}

// foreachBlock opens a child scope holding the loop outputs. Outputs are
// typed any; element types of the iterated value are not propagated.
func (v *visitor) foreachBlock(n *tree.Node, scope *Scope) error {
	stmt := n.Slot("foreach_statement")
	body := n.Slot("nested_block")
	if stmt == nil || body == nil {
		return malformed(n, "foreach_statement or nested_block")
	}

	child := scope.Child()
	for _, out := range stmt.Slot("output").Tokens() {
		child.Insert(out.Value, &Symbol{Name: out.Value, Type: types.Any, Kind: SymLoopOutput})
	}
	v.record(n, child)
	return v.visitChildren(body, child)
}

// body visits the nested_block of n under the same scope. Used by the
// constructs that do not introduce bindings of their own.
func (v *visitor) body(n *tree.Node, scope *Scope) error {
	nested := n.Slot("nested_block")
	if nested == nil {
		return malformed(n, "nested_block")
	}
	return v.visitChildren(nested, scope)
}

// conditional resolves the condition held in the stmtKind slot, then visits
// the body. Branches share the enclosing scope.
func (v *visitor) conditional(n *tree.Node, stmtKind string, scope *Scope) error {
	cond := n.Slot(stmtKind).Slot("base_expression")
	if cond == nil {
		return malformed(n, stmtKind+" condition")
	}
	if _, err := v.resolver.Resolve(cond, scope); err != nil {
		return err
	}
	return v.body(n, scope)
}

// ifBlock visits the if branch and then every elseif / else branch in
// source order
func (v *visitor) ifBlock(n *tree.Node, scope *Scope) error {
	if err := v.conditional(n, "if_statement", scope); err != nil {
		return err
	}
	for _, c := range n.Children {
		if c.Is("elseif_block") || c.Is("else_block") {
			if err := v.visit(c, scope); err != nil {
				return err
			}
		}
	}
	return nil
}

// tryBlock visits the try body, then catch and finally blocks, all under
// the enclosing scope
func (v *visitor) tryBlock(n *tree.Node, scope *Scope) error {
	if err := v.body(n, scope); err != nil {
		return err
	}
	for _, c := range n.Children {
		if c.Is("catch_block") || c.Is("finally_block") {
			if err := v.visit(c, scope); err != nil {
				return err
			}
		}
	}
	return nil
}

// functionBlock analyses a function body in an isolated scope seeded with
// its parameters, then checks its returns
func (v *visitor) functionBlock(n *tree.Node, _ *Scope) error {
	body := n.Slot("nested_block")
	if body == nil {
		return malformed(n, "nested_block")
	}

	sig, err := v.signature(n)
	if err != nil {
		return err
	}
	v.result.Functions = append(v.result.Functions, sig)

	scope := Isolated()
	for _, p := range sig.Params {
		scope.Insert(p.Name, &Symbol{Name: p.Name, Type: p.Type, Kind: SymParam})
	}
	v.record(n, scope)

	if err := v.visitChildren(body, scope); err != nil {
		return err
	}

	v.log.Debug("checking function returns",
		zap.String("function", sig.Name), zap.Stringer("output", sig.Output))
	return v.checkReturns(n, scope, sig)
}

// signature reads the name, typed parameters and declared output of a
// function_block
func (v *visitor) signature(n *tree.Node) (*Signature, error) {
	stmt := n.Slot("function_statement")
	if stmt == nil {
		return nil, malformed(n, "function_statement")
	}

	sig := &Signature{Node: n, Output: types.Any}
	for _, tok := range stmt.Tokens() {
		if tok.Kind == "NAME" {
			sig.Name = tok.Value
			break
		}
	}

	for _, arg := range stmt.Slots("typed_argument") {
		name := arg.Child(0)
		if !name.IsToken() {
			return nil, malformed(arg, "argument name")
		}
		t, err := v.resolver.Types(arg.Slot("types"))
		if err != nil {
			return nil, err
		}
		sig.Params = append(sig.Params, Param{Name: name.Value, Type: t})
	}

	if out := stmt.Slot("function_output"); out != nil {
		t, err := v.resolver.Types(out.Slot("types"))
		if err != nil {
			return nil, err
		}
		sig.Output = t
		sig.OutputNode = out
	}
	return sig, nil
}
