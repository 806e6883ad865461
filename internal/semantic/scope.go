package semantic

import (
	"sort"

	"github.com/lhaig/storyscript/internal/types"
)

// SymbolKind represents the kind of symbol
type SymbolKind int

const (
	SymVariable SymbolKind = iota
	SymParam
	SymLoopOutput
)

// String returns the string representation of the symbol kind
func (sk SymbolKind) String() string {
	switch sk {
	case SymVariable:
		return "variable"
	case SymParam:
		return "parameter"
	case SymLoopOutput:
		return "loop output"
	default:
		return "unknown"
	}
}

// Symbol is a name bound to a type in exactly one scope
type Symbol struct {
	Name string
	Type *types.Type
	Kind SymbolKind
}

// Scope represents a lexical scope with a symbol table
type Scope struct {
	parent  *Scope
	symbols map[string]*Symbol
}

// NewScope creates a new scope with an optional parent
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:  parent,
		symbols: make(map[string]*Symbol),
	}
}

// Isolated creates a scope with no parent. Function bodies use isolated
// scopes: they do not see bindings of the enclosing program.
func Isolated() *Scope {
	return NewScope(nil)
}

// Child creates a new scope chained to s
func (s *Scope) Child() *Scope {
	return NewScope(s)
}

// Parent returns the enclosing scope, or nil for root and function scopes
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Insert binds sym under name in this scope, replacing any existing local
// binding. Bindings of parent scopes are never touched.
func (s *Scope) Insert(name string, sym *Symbol) {
	s.symbols[name] = sym
}

// Resolve looks up a symbol in the current scope and parent scopes
// Returns nil if the symbol is not found
func (s *Scope) Resolve(name string) *Symbol {
	if sym, ok := s.symbols[name]; ok {
		return sym
	}
	if s.parent != nil {
		return s.parent.Resolve(name)
	}
	return nil
}

// ResolveLocal looks up a symbol only in the current scope (not parent scopes)
func (s *Scope) ResolveLocal(name string) *Symbol {
	if sym, ok := s.symbols[name]; ok {
		return sym
	}
	return nil
}

// Symbols returns the local symbols sorted by name
func (s *Scope) Symbols() []*Symbol {
	out := make([]*Symbol, 0, len(s.symbols))
	for _, sym := range s.symbols {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
