package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/storyscript/internal/types"
)

func TestScopeResolveWalksParents(t *testing.T) {
	root := NewScope(nil)
	a := &Symbol{Name: "a", Type: types.Int}
	root.Insert("a", a)

	child := root.Child().Child()
	assert.Same(t, a, child.Resolve("a"))
	assert.Nil(t, child.ResolveLocal("a"))
	assert.Nil(t, child.Resolve("missing"))
}

func TestScopeShadowingLeavesParentUntouched(t *testing.T) {
	root := NewScope(nil)
	outer := &Symbol{Name: "a", Type: types.Int}
	root.Insert("a", outer)

	child := root.Child()
	inner := &Symbol{Name: "a", Type: types.String}
	child.Insert("a", inner)

	assert.Same(t, inner, child.Resolve("a"))
	assert.Same(t, outer, root.Resolve("a"))
}

func TestScopeInsertOverwrites(t *testing.T) {
	s := NewScope(nil)
	s.Insert("a", &Symbol{Name: "a", Type: types.Int})
	s.Insert("a", &Symbol{Name: "a", Type: types.String})

	require.Equal(t, 1, len(s.Symbols()))
	assert.Same(t, types.String, s.Resolve("a").Type)
}

func TestIsolatedScopeHasNoParent(t *testing.T) {
	root := NewScope(nil)
	root.Insert("x", &Symbol{Name: "x", Type: types.Int})

	fn := Isolated()
	assert.Nil(t, fn.Parent())
	assert.Nil(t, fn.Resolve("x"))
}

func TestScopeSymbolsSorted(t *testing.T) {
	s := NewScope(nil)
	for _, name := range []string{"c", "a", "b"} {
		s.Insert(name, &Symbol{Name: name, Type: types.Any})
	}

	var names []string
	for _, sym := range s.Symbols() {
		names = append(names, sym.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestSymbolKindString(t *testing.T) {
	assert.Equal(t, "variable", SymVariable.String())
	assert.Equal(t, "parameter", SymParam.String())
	assert.Equal(t, "loop output", SymLoopOutput.String())
	assert.Equal(t, "unknown", SymbolKind(99).String())
}
