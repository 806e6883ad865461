// Package treetest builds storyscript-shaped syntax trees for tests.
//
// Statement helpers (Assign, Return, If, Foreach, ...) return a complete
// "block" line so they can be passed straight to Program, Nested and the
// body parameters of the compound helpers. Expression helpers return the
// node that goes inside a base_expression.
package treetest

import (
	"strconv"

	"github.com/lhaig/storyscript/internal/tree"
)

var n = tree.New

// Program wraps top-level lines in a start node
func Program(lines ...*tree.Node) *tree.Node {
	return n("start", lines...)
}

// Line wraps a simple statement (assignment, return_statement, ...) in
// block → rules
func Line(stmt *tree.Node) *tree.Node {
	return n("block", n("rules", stmt))
}

// Compound wraps a compound statement (if_block, foreach_block, ...) in a
// block
func Compound(stmt *tree.Node) *tree.Node {
	return n("block", stmt)
}

// Nested builds an indented nested_block of lines
func Nested(lines ...*tree.Node) *tree.Node {
	return n("nested_block", lines...)
}

// Expr wraps an expression in a base_expression
func Expr(e *tree.Node) *tree.Node {
	return n("base_expression", e)
}

// AssignStmt builds the bare assignment node for name = e
func AssignStmt(name string, e *tree.Node) *tree.Node {
	return n("assignment",
		Path(name),
		n("assignment_fragment", tree.Token("EQUALS", "="), Expr(e)),
	)
}

// Assign builds a line assigning e to name
func Assign(name string, e *tree.Node) *tree.Node {
	return Line(AssignStmt(name, e))
}

// ReturnStmt builds a bare return_statement; a nil expression produces a
// bare return
func ReturnStmt(e *tree.Node) *tree.Node {
	if e == nil {
		return n("return_statement", tree.Token("RETURN", "return"))
	}
	return n("return_statement", tree.Token("RETURN", "return"), Expr(e))
}

// Return builds a return line
func Return(e *tree.Node) *tree.Node {
	return Line(ReturnStmt(e))
}

// IfBlock builds an if_block node. Branches are ElseIf / Else nodes.
func IfBlock(cond *tree.Node, body []*tree.Node, branches ...*tree.Node) *tree.Node {
	children := []*tree.Node{
		n("if_statement", tree.Token("IF", "if"), Expr(cond)),
		Nested(body...),
	}
	children = append(children, branches...)
	return n("if_block", children...)
}

// If builds an if line
func If(cond *tree.Node, body []*tree.Node, branches ...*tree.Node) *tree.Node {
	return Compound(IfBlock(cond, body, branches...))
}

// ElseIf builds an elseif_block branch
func ElseIf(cond *tree.Node, body ...*tree.Node) *tree.Node {
	return n("elseif_block",
		n("elseif_statement", tree.Token("ELSE", "else"), tree.Token("IF", "if"), Expr(cond)),
		Nested(body...),
	)
}

// Else builds an else_block branch
func Else(body ...*tree.Node) *tree.Node {
	return n("else_block", tree.Token("ELSE", "else"), Nested(body...))
}

// Foreach builds a foreach line binding outputs while iterating iter
func Foreach(iter *tree.Node, outputs []string, body ...*tree.Node) *tree.Node {
	out := n("output")
	for _, o := range outputs {
		out.Children = append(out.Children, tree.Token("NAME", o))
	}
	return Compound(n("foreach_block",
		n("foreach_statement", tree.Token("FOREACH", "foreach"), Expr(iter), out),
		Nested(body...),
	))
}

// While builds a while line
func While(cond *tree.Node, body ...*tree.Node) *tree.Node {
	return Compound(n("while_block",
		n("while_statement", tree.Token("WHILE", "while"), Expr(cond)),
		Nested(body...),
	))
}

// When builds a when line listening on service
func When(service string, body ...*tree.Node) *tree.Node {
	return Compound(n("when_block",
		n("when_service", tree.Token("WHEN", "when"), Path(service)),
		Nested(body...),
	))
}

// Try builds a try line; catch and finally bodies are only emitted when
// non-nil
func Try(body, catch, finally []*tree.Node) *tree.Node {
	children := []*tree.Node{tree.Token("TRY", "try"), Nested(body...)}
	if catch != nil {
		children = append(children, n("catch_block",
			n("catch_statement", tree.Token("CATCH", "catch")),
			Nested(catch...),
		))
	}
	if finally != nil {
		children = append(children, n("finally_block",
			n("finally_statement", tree.Token("FINALLY", "finally")),
			Nested(finally...),
		))
	}
	return Compound(n("try_block", children...))
}

// FunctionBlock builds a function_block node. output may be nil.
func FunctionBlock(name string, args []*tree.Node, output *tree.Node, body ...*tree.Node) *tree.Node {
	stmt := n("function_statement", tree.Token("FUNCTION", "function"), tree.Token("NAME", name))
	stmt.Children = append(stmt.Children, args...)
	if output != nil {
		stmt.Children = append(stmt.Children, n("function_output", tree.Token("RETURNS", "returns"), output))
	}
	return n("function_block", stmt, Nested(body...))
}

// Function builds a function definition line
func Function(name string, args []*tree.Node, output *tree.Node, body ...*tree.Node) *tree.Node {
	return Compound(FunctionBlock(name, args, output, body...))
}

// Arg builds a typed_argument
func Arg(name string, typ *tree.Node) *tree.Node {
	return n("typed_argument", tree.Token("NAME", name), typ)
}

// Args is a convenience for building argument lists
func Args(args ...*tree.Node) []*tree.Node { return args }

// Body is a convenience for building statement lists
func Body(lines ...*tree.Node) []*tree.Node { return lines }

// Type builds a types node for a base type such as "int" or "string"
func Type(name string) *tree.Node {
	return n("types", n("base_type", tree.Token("TYPE", name)))
}

// ListType builds a types node for List[elem]
func ListType(elem *tree.Node) *tree.Node {
	return n("types", n("list_type", elem))
}

// MapType builds a types node for Map[key, value]
func MapType(key string, value *tree.Node) *tree.Node {
	return n("types", n("map_type", n("base_type", tree.Token("TYPE", key)), value))
}

// Path builds a path expression; fragments become path_fragment nodes
func Path(name string, fragments ...string) *tree.Node {
	p := n("path", tree.Token("NAME", name))
	for _, f := range fragments {
		p.Children = append(p.Children, n("path_fragment", tree.Token("NAME", f)))
	}
	return p
}

// Str builds a string literal
func Str(s string) *tree.Node {
	return n("values", n("string", tree.Token("DOUBLE_QUOTED", strconv.Quote(s))))
}

// Int builds an integer literal
func Int(i int) *tree.Node {
	return n("values", n("number", tree.Token("INT", strconv.Itoa(i))))
}

// Float builds a float literal
func Float(f float64) *tree.Node {
	return n("values", n("number", tree.Token("FLOAT", strconv.FormatFloat(f, 'f', -1, 64))))
}

// Bool builds a boolean literal
func Bool(b bool) *tree.Node {
	if b {
		return n("values", n("boolean", tree.Token("TRUE", "true")))
	}
	return n("values", n("boolean", tree.Token("FALSE", "false")))
}

// Null builds the null literal
func Null() *tree.Node {
	return n("values", n("void", tree.Token("NULL", "null")))
}

// List builds a list literal of value expressions
func List(items ...*tree.Node) *tree.Node {
	return n("values", n("list", items...))
}

// Map builds a map literal from KV pairs
func Map(pairs ...*tree.Node) *tree.Node {
	return n("values", n("map", pairs...))
}

// KV builds a key_value pair
func KV(key, value *tree.Node) *tree.Node {
	return n("key_value", key, value)
}

// Arith builds left op right as an arith_expression
func Arith(left *tree.Node, op string, right *tree.Node) *tree.Node {
	return n("arith_expression", left, n("arith_operator", tree.Token("OP", op)), right)
}

// Mul builds left op right as a mul_expression
func Mul(left *tree.Node, op string, right *tree.Node) *tree.Node {
	return n("mul_expression", left, n("mul_operator", tree.Token("OP", op)), right)
}

// Cmp builds left op right as a cmp_expression
func Cmp(left *tree.Node, op string, right *tree.Node) *tree.Node {
	return n("cmp_expression", left, n("cmp_operator", tree.Token("OP", op)), right)
}

// And builds left and right
func And(left, right *tree.Node) *tree.Node {
	return n("and_expression", left, n("and_operator", tree.Token("AND", "and")), right)
}

// Not builds not e
func Not(e *tree.Node) *tree.Node {
	return n("unary_expression", n("unary_operator", tree.Token("NOT", "not")), e)
}

// Service builds an opaque service call such as "http fetch"
func Service(name, command string) *tree.Node {
	return n("service",
		Path(name),
		n("service_fragment", n("command", tree.Token("NAME", command))),
	)
}
