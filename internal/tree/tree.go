package tree

import "unicode"

// Node is one node of a parsed storyscript program.
//
// Rule nodes carry the grammar rule name in Kind and an ordered list of
// children. Token nodes carry the terminal name (upper case, e.g. NAME or
// INT) in Kind and the matched source text in Value.
type Node struct {
	Kind     string  `yaml:"kind" json:"kind"`
	Value    string  `yaml:"value,omitempty" json:"value,omitempty"`
	Line     int     `yaml:"line,omitempty" json:"line,omitempty"`
	Column   int     `yaml:"column,omitempty" json:"column,omitempty"`
	Children []*Node `yaml:"children,omitempty" json:"children,omitempty"`
}

// New creates a rule node with the given children
func New(kind string, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// Token creates a token node
func Token(kind, value string) *Node {
	return &Node{Kind: kind, Value: value}
}

// At sets the source position of n and returns it
func (n *Node) At(line, col int) *Node {
	n.Line = line
	n.Column = col
	return n
}

// IsToken reports whether n is a terminal. Terminal kinds start with an
// upper case letter.
func (n *Node) IsToken() bool {
	if n == nil || n.Kind == "" {
		return false
	}
	for _, r := range n.Kind {
		return unicode.IsUpper(r)
	}
	return false
}

// Is reports whether n is a non-nil node of the given kind
func (n *Node) Is(kind string) bool {
	return n != nil && n.Kind == kind
}

// Slot returns the first direct child of the given kind, or nil when the
// slot is absent. Slot is safe to call on a nil node so lookups can be
// chained.
func (n *Node) Slot(kind string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c != nil && c.Kind == kind {
			return c
		}
	}
	return nil
}

// Slots returns every direct child of the given kind in source order
func (n *Node) Slots(kind string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c != nil && c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the positional child at index i, or nil
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Rules returns the direct children that are rule nodes (not tokens)
func (n *Node) Rules() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c != nil && !c.IsToken() {
			out = append(out, c)
		}
	}
	return out
}

// Tokens returns the direct children that are tokens
func (n *Node) Tokens() []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.IsToken() {
			out = append(out, c)
		}
	}
	return out
}

// FirstToken returns the first token found in a pre-order walk of n
func (n *Node) FirstToken() *Node {
	if n == nil {
		return nil
	}
	if n.IsToken() {
		return n
	}
	for _, c := range n.Children {
		if t := c.FirstToken(); t != nil {
			return t
		}
	}
	return nil
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the node just visited.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// FindAll returns n and every descendant of the given kind, in pre-order
func (n *Node) FindAll(kind string) []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c.Kind == kind {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Pos returns the source position of n. Nodes without a position of their
// own report the position of their first positioned descendant.
func (n *Node) Pos() (line, col int) {
	if n == nil {
		return 0, 0
	}
	if n.Line > 0 {
		return n.Line, n.Column
	}
	for _, c := range n.Children {
		if l, cl := c.Pos(); l > 0 {
			return l, cl
		}
	}
	return 0, 0
}
