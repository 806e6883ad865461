package diagnostic

import (
	"errors"
	"fmt"
)

// Node is anything that can report a source position. Syntax tree nodes
// satisfy it.
type Node interface {
	Pos() (line, col int)
}

// SemanticError is a terminal semantic error. It carries the offending
// tree node so the caller can report a source location, and the values used
// to render its message.
type SemanticError struct {
	Code   Code
	Node   Node
	Values map[string]string
}

// Errorf creates a semantic error for node. kv is a flat list of
// placeholder name / value pairs; values are formatted with %v.
func Errorf(code Code, node Node, kv ...interface{}) *SemanticError {
	values := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		values[fmt.Sprint(kv[i])] = fmt.Sprint(kv[i+1])
	}
	return &SemanticError{Code: code, Node: node, Values: values}
}

// Pos returns the position of the offending node, or 0, 0
func (e *SemanticError) Pos() (line, col int) {
	if e.Node == nil {
		return 0, 0
	}
	return e.Node.Pos()
}

// Message returns the rendered human-readable message
func (e *SemanticError) Message() string {
	return Message(e.Code, e.Values)
}

func (e *SemanticError) Error() string {
	line, col := e.Pos()
	return fmt.Sprintf("%d:%d: %s: %s", line, col, e.Code, e.Message())
}

// Diagnostic converts e to an error-level diagnostic
func (e *SemanticError) Diagnostic(file string) Diagnostic {
	line, col := e.Pos()
	return Diagnostic{
		Severity: Error,
		Code:     e.Code,
		Message:  e.Message(),
		Line:     line,
		Column:   col,
		File:     file,
		Hint:     Hint(e.Code),
	}
}

// AsSemantic extracts a semantic error from err's chain
func AsSemantic(err error) (*SemanticError, bool) {
	var e *SemanticError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
