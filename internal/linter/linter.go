package linter

import (
	"fmt"
	"unicode"

	"github.com/lhaig/storyscript/internal/diagnostic"
	"github.com/lhaig/storyscript/internal/semantic"
	"github.com/lhaig/storyscript/internal/tree"
)

// Lint rule codes
const (
	EmptyBody      diagnostic.Code = "lint_empty_body"
	FunctionNaming diagnostic.Code = "lint_function_naming"
	UnusedParam    diagnostic.Code = "lint_unused_param"
	ShadowedName   diagnostic.Code = "lint_shadowed_binding"
)

// Linter performs style checks on an analysed program.
// It reports warnings (never errors) using the diagnostic system.
type Linter struct {
	res  *semantic.Result
	diag *diagnostic.Diagnostics
}

// Lint runs all lint rules on the given analysis result and returns
// diagnostics.
func Lint(res *semantic.Result) *diagnostic.Diagnostics {
	l := &Linter{
		res:  res,
		diag: diagnostic.New(),
	}
	if res == nil || res.Root == nil {
		return l.diag
	}

	l.lintFunctions()
	l.lintScopes()

	return l.diag
}

// lintFunctions checks every function definition in source order.
func (l *Linter) lintFunctions() {
	for _, sig := range l.res.Functions {
		l.checkEmptyFunctionBody(sig)
		l.checkFunctionNaming(sig)
		l.checkUnusedParams(sig)
	}
}

// lintScopes walks the scope-introducing nodes in source order.
func (l *Linter) lintScopes() {
	l.res.Root.Walk(func(n *tree.Node) bool {
		scope := l.res.ScopeOf(n)
		if scope != nil && scope.Parent() != nil {
			l.checkShadowing(n, scope)
		}
		return true
	})
}

func (l *Linter) warn(code diagnostic.Code, n *tree.Node, format string, args ...interface{}) {
	line, col := n.Pos()
	l.diag.Add(diagnostic.Diagnostic{
		Severity: diagnostic.Warning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	})
}

// --- Lint rules ---

// checkEmptyFunctionBody warns if a function body has no lines.
func (l *Linter) checkEmptyFunctionBody(sig *semantic.Signature) {
	body := sig.Node.Slot("nested_block")
	if body == nil || len(body.Children) == 0 {
		l.warn(EmptyBody, sig.Node, "function '%s' has an empty body", sig.Name)
	}
}

// checkFunctionNaming warns if a function name does not start with a
// lowercase letter.
func (l *Linter) checkFunctionNaming(sig *semantic.Signature) {
	if !isLowerIdent(sig.Name) {
		l.warn(FunctionNaming, sig.Node,
			"function '%s' should start with a lowercase letter", sig.Name)
	}
}

// checkUnusedParams warns about parameters that are never read in the body.
func (l *Linter) checkUnusedParams(sig *semantic.Signature) {
	if len(sig.Params) == 0 {
		return
	}
	used := collectUsedNames(sig.Node.Slot("nested_block"))
	for i, p := range sig.Params {
		if used[p.Name] {
			continue
		}
		at := sig.Node
		if args := sig.Node.Slot("function_statement").Slots("typed_argument"); i < len(args) {
			at = args[i]
		}
		l.warn(UnusedParam, at, "parameter '%s' in '%s' is never used", p.Name, sig.Name)
	}
}

// checkShadowing warns about bindings of a block scope that hide a binding
// of an enclosing scope.
func (l *Linter) checkShadowing(n *tree.Node, scope *semantic.Scope) {
	for _, sym := range scope.Symbols() {
		outer := scope.Parent().Resolve(sym.Name)
		if outer == nil {
			continue
		}
		l.warn(ShadowedName, n, "%s '%s' shadows a %s of the enclosing scope",
			sym.Kind, sym.Name, outer.Kind)
	}
}

// --- Name collection helpers ---

// collectUsedNames collects the head names of every path read below n.
// Plain assignment targets are writes and nested function definitions
// cannot see the enclosing names, so neither counts.
func collectUsedNames(n *tree.Node) map[string]bool {
	used := make(map[string]bool)
	targets := make(map[*tree.Node]bool)
	n.Walk(func(c *tree.Node) bool {
		switch c.Kind {
		case "function_block":
			return false
		case "assignment":
			if target := c.Slot("path"); target != nil && target.Slot("path_fragment") == nil {
				targets[target] = true
			}
		case "path":
			if name, ok := semantic.PathName(c); ok && !targets[c] {
				used[name] = true
			}
		}
		return true
	})
	return used
}

// --- Naming convention helpers ---

// isLowerIdent returns true if the name starts with a lowercase letter and
// holds only letters, digits and underscores.
func isLowerIdent(name string) bool {
	if len(name) == 0 {
		return false
	}
	for i, r := range name {
		if i == 0 && !unicode.IsLower(r) {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
