// Package formatter renders a syntax tree back to storyscript source.
package formatter

import (
	"fmt"
	"strings"

	"github.com/lhaig/storyscript/internal/tree"
)

// Format takes a program tree and returns canonical storyscript source.
func Format(root *tree.Node) string {
	f := &formatter{}
	f.formatProgram(root)
	return f.sb.String()
}

type formatter struct {
	sb     strings.Builder
	indent int
}

// --- helpers ---

func (f *formatter) emitLine(s string) {
	if s == "" {
		f.sb.WriteString("\n")
	} else {
		f.sb.WriteString(f.indentStr())
		f.sb.WriteString(s)
		f.sb.WriteString("\n")
	}
}

func (f *formatter) emitLinef(format string, args ...any) {
	f.emitLine(fmt.Sprintf(format, args...))
}

func (f *formatter) incIndent() { f.indent++ }
func (f *formatter) decIndent() { f.indent-- }

func (f *formatter) indentStr() string {
	return strings.Repeat("    ", f.indent)
}

func (f *formatter) blankLine() {
	f.sb.WriteString("\n")
}

// --- program-level ---

func (f *formatter) formatProgram(root *tree.Node) {
	var prev *tree.Node
	for _, line := range root.Rules() {
		// function definitions are set apart from their neighbours
		if prev != nil && (isFunction(line) || isFunction(prev)) {
			f.blankLine()
		}
		f.formatLine(line)
		prev = line
	}
}

func isFunction(line *tree.Node) bool {
	return line.Slot("function_block") != nil
}

// formatLine renders one block: either simple statements under rules or a
// single compound statement
func (f *formatter) formatLine(line *tree.Node) {
	if line == nil {
		return
	}
	if !line.Is("block") {
		f.formatStatement(line)
		return
	}
	for _, c := range line.Children {
		if c.Is("rules") {
			for _, stmt := range c.Children {
				f.formatStatement(stmt)
			}
			continue
		}
		f.formatStatement(c)
	}
}

// formatBody renders the lines of a nested_block one level deeper
func (f *formatter) formatBody(nested *tree.Node) {
	if nested == nil {
		return
	}
	f.incIndent()
	for _, line := range nested.Children {
		f.formatLine(line)
	}
	f.decIndent()
}

// --- statements ---

func (f *formatter) formatStatement(n *tree.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case "assignment":
		f.formatAssignment(n)
	case "return_statement":
		if expr := n.Slot("base_expression"); expr != nil {
			f.emitLinef("return %s", formatExpr(expr))
		} else {
			f.emitLine("return")
		}
	case "if_block":
		f.formatIfBlock(n)
	case "foreach_block":
		f.formatForeach(n)
	case "while_block":
		f.emitLinef("while %s", formatExpr(n.Slot("while_statement").Slot("base_expression")))
		f.formatBody(n.Slot("nested_block"))
	case "when_block":
		f.emitLinef("when %s", joinExprs(n.Slot("when_service").Rules()))
		f.formatBody(n.Slot("nested_block"))
	case "try_block":
		f.formatTry(n)
	case "function_block":
		f.formatFunction(n)
	case "nested_block":
		f.formatBody(n)
	default:
		f.emitLine(formatExpr(n))
	}
}

func (f *formatter) formatAssignment(n *tree.Node) {
	frag := n.Slot("assignment_fragment")
	op := "="
	if tok := frag.FirstToken(); tok != nil {
		op = tok.Value
	}
	f.emitLinef("%s %s %s", formatExpr(n.Slot("path")), op, formatExpr(frag.Slot("base_expression")))
}

func (f *formatter) formatIfBlock(n *tree.Node) {
	f.emitLinef("if %s", formatExpr(n.Slot("if_statement").Slot("base_expression")))
	f.formatBody(n.Slot("nested_block"))
	for _, branch := range n.Rules() {
		switch branch.Kind {
		case "elseif_block":
			f.emitLinef("else if %s", formatExpr(branch.Slot("elseif_statement").Slot("base_expression")))
			f.formatBody(branch.Slot("nested_block"))
		case "else_block":
			f.emitLine("else")
			f.formatBody(branch.Slot("nested_block"))
		}
	}
}

func (f *formatter) formatForeach(n *tree.Node) {
	stmt := n.Slot("foreach_statement")
	var outputs []string
	for _, tok := range stmt.Slot("output").Tokens() {
		outputs = append(outputs, tok.Value)
	}
	f.emitLinef("foreach %s as %s", formatExpr(stmt.Slot("base_expression")), strings.Join(outputs, ", "))
	f.formatBody(n.Slot("nested_block"))
}

func (f *formatter) formatTry(n *tree.Node) {
	f.emitLine("try")
	f.formatBody(n.Slot("nested_block"))
	if c := n.Slot("catch_block"); c != nil {
		f.emitLine("catch")
		f.formatBody(c.Slot("nested_block"))
	}
	if fin := n.Slot("finally_block"); fin != nil {
		f.emitLine("finally")
		f.formatBody(fin.Slot("nested_block"))
	}
}

func (f *formatter) formatFunction(n *tree.Node) {
	stmt := n.Slot("function_statement")
	var sb strings.Builder
	sb.WriteString("function")
	if name := stmt.Slot("NAME"); name != nil {
		sb.WriteString(" " + name.Value)
	}
	for _, arg := range stmt.Slots("typed_argument") {
		name := arg.Slot("NAME")
		if name == nil {
			continue
		}
		fmt.Fprintf(&sb, " %s:%s", name.Value, formatType(arg.Slot("types")))
	}
	if out := stmt.Slot("function_output"); out != nil {
		sb.WriteString(" returns " + formatType(out.Slot("types")))
	}
	f.emitLine(sb.String())
	f.formatBody(n.Slot("nested_block"))
}

// --- types ---

func formatType(n *tree.Node) string {
	if n == nil {
		return "any"
	}
	switch n.Kind {
	case "types":
		if rules := n.Rules(); len(rules) == 1 {
			return formatType(rules[0])
		}
	case "base_type":
		if tok := n.FirstToken(); tok != nil {
			return tok.Value
		}
	case "list_type":
		if rules := n.Rules(); len(rules) == 1 {
			return "List[" + formatType(rules[0]) + "]"
		}
	case "map_type":
		if rules := n.Rules(); len(rules) == 2 {
			return "Map[" + formatType(rules[0]) + ", " + formatType(rules[1]) + "]"
		}
	}
	return joinTokens(n)
}

// --- expressions ---

func formatExpr(n *tree.Node) string {
	if n == nil {
		return ""
	}
	if n.IsToken() {
		return n.Value
	}
	switch n.Kind {
	case "number", "string", "boolean", "void", "time", "regular_expression":
		return joinTokens(n)
	case "list":
		return "[" + joinWith(n.Children, ", ") + "]"
	case "map":
		return "{" + joinWith(n.Children, ", ") + "}"
	case "key_value":
		return joinWith(n.Children, ": ")
	case "path":
		return formatPath(n)
	case "service":
		return joinExprs(n.Children)
	case "unary_expression":
		op := joinTokens(n.Slot("unary_operator"))
		operand := formatExpr(n.Child(len(n.Children) - 1))
		if op == "not" {
			return op + " " + operand
		}
		return op + operand
	}
	if strings.HasSuffix(n.Kind, "_operator") {
		return joinTokens(n)
	}
	if len(n.Children) == 1 {
		return formatExpr(n.Children[0])
	}
	return joinExprs(n.Children)
}

func formatPath(n *tree.Node) string {
	var sb strings.Builder
	for i, c := range n.Children {
		if i == 0 {
			sb.WriteString(formatExpr(c))
			continue
		}
		part := formatExpr(c)
		if tok := c.FirstToken(); tok != nil && tok.Kind != "NAME" {
			fmt.Fprintf(&sb, "[%s]", part)
			continue
		}
		sb.WriteString("." + part)
	}
	return sb.String()
}

func joinExprs(nodes []*tree.Node) string {
	return joinWith(nodes, " ")
}

func joinWith(nodes []*tree.Node, sep string) string {
	parts := make([]string, 0, len(nodes))
	for _, c := range nodes {
		if s := formatExpr(c); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

// joinTokens renders every token below n in order
func joinTokens(n *tree.Node) string {
	var parts []string
	n.Walk(func(c *tree.Node) bool {
		if c.IsToken() {
			parts = append(parts, c.Value)
		}
		return true
	})
	return strings.Join(parts, " ")
}
