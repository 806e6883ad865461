package diagnostic

import (
	"sort"
	"strings"
)

// Code identifies the kind of a semantic error
type Code string

const (
	ReturnRequired            Code = "return_required"
	ReturnTypeDiffers         Code = "return_type_differs"
	TypeAssignmentDifferent   Code = "type_assignment_different"
	VarNotDefined             Code = "var_not_defined"
	TypeOperationIncompatible Code = "type_operation_incompatible"
	TypeUnknown               Code = "type_unknown"
)

// messages are the human-readable templates for each code. Placeholders of
// the form {name} are filled from SemanticError.Values.
var messages = map[Code]string{
	ReturnRequired:            "function declares an output type but not every path returns a value",
	ReturnTypeDiffers:         "`{source}` can't be returned from a function declared to return `{target}`",
	TypeAssignmentDifferent:   "can't assign `{target}` to variable of type `{var_type}`",
	VarNotDefined:             "variable `{name}` has not been defined",
	TypeOperationIncompatible: "operation `{op}` is not supported between `{left}` and `{right}`",
	TypeUnknown:               "unknown type `{name}`",
}

var hints = map[Code]string{
	ReturnRequired:          "add an else branch or a final return statement",
	TypeAssignmentDifferent: "use a new variable name for a value of a different type",
}

// Message renders the template for code with values substituted. Unknown
// codes render as the code itself.
func Message(code Code, values map[string]string) string {
	tmpl, ok := messages[code]
	if !ok {
		return string(code)
	}
	if len(values) == 0 {
		return tmpl
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", values[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// Hint returns the optional suggestion attached to code
func Hint(code Code) string {
	return hints[code]
}
