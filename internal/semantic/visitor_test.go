package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lhaig/storyscript/internal/diagnostic"
	"github.com/lhaig/storyscript/internal/tree"
	tt "github.com/lhaig/storyscript/internal/tree/treetest"
	"github.com/lhaig/storyscript/internal/types"
)

func analyze(t *testing.T, lines ...*tree.Node) *Result {
	t.Helper()
	res, err := Analyze(tt.Program(lines...))
	require.NoError(t, err)
	return res
}

func analyzeErr(t *testing.T, lines ...*tree.Node) error {
	t.Helper()
	res, err := Analyze(tt.Program(lines...))
	require.Error(t, err)
	assert.Nil(t, res)
	return err
}

func requireCode(t *testing.T, err error, code diagnostic.Code) *diagnostic.SemanticError {
	t.Helper()
	e, ok := diagnostic.AsSemantic(err)
	require.True(t, ok, "expected semantic error %s, got %v", code, err)
	require.Equal(t, code, e.Code, "got: %v", err)
	return e
}

func TestAssignmentBindsInRootScope(t *testing.T) {
	res := analyze(t,
		tt.Assign("a", tt.Int(1)),
		tt.Assign("b", tt.List(tt.Str("x"))),
	)

	root := res.RootScope()
	require.NotNil(t, root)
	assert.Nil(t, root.Parent())
	assert.Same(t, types.Int, root.Resolve("a").Type)
	assert.Equal(t, "List[string]", root.Resolve("b").Type.String())
	assert.Equal(t, SymVariable, root.Resolve("a").Kind)
}

func TestReassignmentWithIncompatibleTypeFails(t *testing.T) {
	err := analyzeErr(t,
		tt.Assign("a", tt.Int(1)),
		tt.Assign("a", tt.Str("x")),
	)

	e := requireCode(t, err, diagnostic.TypeAssignmentDifferent)
	assert.Equal(t, "int", e.Values["var_type"])
	assert.Equal(t, "string", e.Values["target"])
	assert.Equal(t, "a", e.Values["name"])
	assert.Equal(t, "base_expression", e.Node.(*tree.Node).Kind)
}

func TestReassignmentWithAssignableTypeUpdatesBinding(t *testing.T) {
	res := analyze(t,
		tt.Assign("a", tt.Float(1.5)),
		tt.Assign("a", tt.Int(2)),
	)
	assert.Same(t, types.Int, res.RootScope().Resolve("a").Type)
}

func TestReassignmentFromAnyIsAllowed(t *testing.T) {
	res := analyze(t,
		tt.Assign("a", tt.Service("http", "fetch")),
		tt.Assign("a", tt.Str("x")),
	)
	assert.Same(t, types.String, res.RootScope().Resolve("a").Type)
}

func TestNestedBlockShadowsWithoutTouchingParent(t *testing.T) {
	nested := tt.Nested(
		tt.Assign("b", tt.Path("a")),
		tt.Assign("a", tt.Int(3)),
	)
	res := analyze(t,
		tt.Assign("a", tt.Float(1)),
		tt.Compound(nested),
	)

	root := res.RootScope()
	child := res.ScopeOf(nested)
	require.NotNil(t, child)
	assert.Same(t, root, child.Parent())

	assert.Same(t, types.Float, root.Resolve("a").Type)
	assert.Same(t, types.Int, child.ResolveLocal("a").Type)
	assert.Same(t, types.Float, child.Resolve("b").Type)
	assert.Nil(t, root.Resolve("b"))
}

func TestNestedReassignmentStillChecksOuterType(t *testing.T) {
	err := analyzeErr(t,
		tt.Assign("a", tt.Int(1)),
		tt.Compound(tt.Nested(tt.Assign("a", tt.Str("x")))),
	)
	requireCode(t, err, diagnostic.TypeAssignmentDifferent)
}

func TestFunctionScopeIsIsolated(t *testing.T) {
	err := analyzeErr(t,
		tt.Assign("x", tt.Int(1)),
		tt.Function("f", nil, tt.Type("int"), tt.Return(tt.Path("x"))),
	)
	e := requireCode(t, err, diagnostic.VarNotDefined)
	assert.Equal(t, "x", e.Values["name"])
}

func TestFunctionParametersSeedScope(t *testing.T) {
	fn := tt.FunctionBlock("f",
		tt.Args(tt.Arg("x", tt.Type("int")), tt.Arg("names", tt.ListType(tt.Type("string")))),
		tt.Type("int"),
		tt.Assign("y", tt.Path("x")),
		tt.Return(tt.Path("y")),
	)
	res := analyze(t, tt.Assign("x", tt.Str("outer")), tt.Compound(fn))

	scope := res.ScopeOf(fn)
	require.NotNil(t, scope)
	assert.Nil(t, scope.Parent())
	assert.Same(t, types.Int, scope.Resolve("x").Type)
	assert.Equal(t, SymParam, scope.Resolve("x").Kind)
	assert.Equal(t, "List[string]", scope.Resolve("names").Type.String())
	assert.Same(t, types.Int, scope.Resolve("y").Type)

	// the function body never touched the program scope
	assert.Same(t, types.String, res.RootScope().Resolve("x").Type)
	assert.Nil(t, res.RootScope().Resolve("y"))

	require.Len(t, res.Functions, 1)
	sig := res.Functions[0]
	assert.Equal(t, "f", sig.Name)
	assert.Same(t, types.Int, sig.Output)
	assert.Len(t, sig.Params, 2)
}

func TestParameterReassignmentIsChecked(t *testing.T) {
	err := analyzeErr(t,
		tt.Function("f", tt.Args(tt.Arg("x", tt.Type("int"))), nil,
			tt.Assign("x", tt.Str("nope")),
		),
	)
	requireCode(t, err, diagnostic.TypeAssignmentDifferent)
}

func TestFunctionWithoutOutputDefaultsToAny(t *testing.T) {
	res := analyze(t, tt.Function("f", nil, nil, tt.Return(tt.Int(1))))
	require.Len(t, res.Functions, 1)
	sig := res.Functions[0]
	assert.True(t, sig.Output.IsAny())
	assert.Nil(t, sig.OutputNode)
}

func TestForeachBindsOutputsInChildScope(t *testing.T) {
	loop := tt.Foreach(tt.List(tt.Int(1)), []string{"i", "item"},
		tt.Assign("x", tt.Path("item")),
	)
	res := analyze(t, tt.Assign("total", tt.Int(0)), loop)

	foreach := loop.Slot("foreach_block")
	scope := res.ScopeOf(foreach)
	require.NotNil(t, scope)
	assert.Same(t, res.RootScope(), scope.Parent())
	assert.True(t, scope.Resolve("item").Type.IsAny())
	assert.Equal(t, SymLoopOutput, scope.Resolve("i").Kind)
	assert.NotNil(t, scope.ResolveLocal("x"))

	assert.Nil(t, res.RootScope().Resolve("item"))
	assert.Nil(t, res.RootScope().Resolve("x"))
}

func TestIfBranchesShareEnclosingScope(t *testing.T) {
	res := analyze(t,
		tt.If(tt.Bool(true), tt.Body(tt.Assign("a", tt.Int(1))),
			tt.ElseIf(tt.Bool(false), tt.Assign("b", tt.Int(2))),
			tt.Else(tt.Assign("c", tt.Int(3))),
		),
	)
	root := res.RootScope()
	for _, name := range []string{"a", "b", "c"} {
		assert.NotNil(t, root.ResolveLocal(name), name)
	}
	assert.Len(t, res.Scopes, 1)
}

func TestSiblingBranchesSeeEachOthersBindings(t *testing.T) {
	err := analyzeErr(t,
		tt.If(tt.Bool(true), tt.Body(tt.Assign("a", tt.Int(1))),
			tt.Else(tt.Assign("a", tt.Str("x"))),
		),
	)
	requireCode(t, err, diagnostic.TypeAssignmentDifferent)
}

func TestConditionsAreResolved(t *testing.T) {
	err := analyzeErr(t, tt.If(tt.Path("missing"), tt.Body(tt.Assign("a", tt.Int(1)))))
	requireCode(t, err, diagnostic.VarNotDefined)

	err = analyzeErr(t, tt.If(tt.Bool(true), nil,
		tt.ElseIf(tt.Path("other"), tt.Assign("a", tt.Int(1))),
	))
	requireCode(t, err, diagnostic.VarNotDefined)
}

func TestWhileWhenTryUseEnclosingScope(t *testing.T) {
	res := analyze(t,
		tt.While(tt.Bool(true), tt.Assign("w", tt.Int(1))),
		tt.When("listener", tt.Assign("h", tt.Str("x"))),
		tt.Try(
			tt.Body(tt.Assign("t", tt.Int(1))),
			tt.Body(tt.Assign("c", tt.Int(2))),
			tt.Body(tt.Assign("f", tt.Int(3))),
		),
	)
	root := res.RootScope()
	for _, name := range []string{"w", "h", "t", "c", "f"} {
		assert.NotNil(t, root.ResolveLocal(name), name)
	}
	assert.Len(t, res.Scopes, 1)
}

func TestUnknownExpressionIsInternalError(t *testing.T) {
	err := analyzeErr(t, tt.Assign("a", tree.New("mystery")))
	assert.ErrorIs(t, err, ErrUnknownNode)
	_, ok := diagnostic.AsSemantic(err)
	assert.False(t, ok)
}

func TestMalformedNodesAreInternalErrors(t *testing.T) {
	_, err := Analyze(tree.New("block"))
	assert.ErrorIs(t, err, ErrMalformedNode)

	err = analyzeErr(t, tt.Compound(tree.New("if_block", tt.Nested())))
	assert.ErrorIs(t, err, ErrMalformedNode)

	err = analyzeErr(t, tt.Compound(tree.New("function_block", tt.Nested())))
	assert.ErrorIs(t, err, ErrMalformedNode)

	err = analyzeErr(t, tt.Line(tree.New("assignment", tt.Path("a"))))
	assert.ErrorIs(t, err, ErrMalformedNode)
}

func TestUnhandledKindsRecurse(t *testing.T) {
	res := analyze(t,
		tree.New("block", tree.New("service_block",
			tree.New("mystery_wrapper", tt.Compound(tt.Nested(tt.Assign("a", tt.Int(1))))),
		)),
	)
	assert.Len(t, res.Scopes, 2)
}

type countingResolver struct {
	*Resolver
	calls int
}

func (c *countingResolver) Resolve(n *tree.Node, s *Scope) (*types.Type, error) {
	c.calls++
	return c.Resolver.Resolve(n, s)
}

func TestCustomResolverIsUsed(t *testing.T) {
	r := &countingResolver{Resolver: NewResolver()}
	_, err := New(Options{Resolver: r}).Analyze(tt.Program(
		tt.Assign("a", tt.Int(1)),
		tt.If(tt.Bool(true), tt.Body(tt.Assign("b", tt.Int(2)))),
		tt.Function("f", nil, tt.Type("int"), tt.Return(tt.Int(3))),
	))
	require.NoError(t, err)
	assert.Equal(t, 4, r.calls)
}

func TestAnalyzerLogsScopes(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	a := New(Options{Logger: zap.New(core)})

	_, err := a.Analyze(tt.Program(
		tt.Function("f", nil, tt.Type("string"), tt.Return(tt.Str("x"))),
	))
	require.NoError(t, err)

	assert.Equal(t, 2, logs.FilterMessage("scope created").Len())
	entries := logs.FilterMessage("checking function returns").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "f", entries[0].ContextMap()["function"])
}

func TestDumpScopes(t *testing.T) {
	res := analyze(t,
		tt.Assign("a", tt.Int(1)),
		tt.Function("greet", tt.Args(tt.Arg("name", tt.Type("string"))), tt.Type("string"),
			tt.Return(tt.Path("name")),
		),
	)
	out := res.DumpScopes()
	assert.Contains(t, out, "start")
	assert.Contains(t, out, "a: int [variable]")
	assert.Contains(t, out, "function greet -> string")
	assert.Contains(t, out, "name: string [parameter]")
}
