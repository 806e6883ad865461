package types

// Kind identifies the shape of a Type
type Kind int

const (
	KindAny Kind = iota
	KindNone
	KindBoolean
	KindInt
	KindFloat
	KindString
	KindTime
	KindRegex
	KindObject
	KindFunction
	KindList
	KindMap
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindNone:
		return "none"
	case KindBoolean:
		return "boolean"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	case KindRegex:
		return "regex"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	default:
		return "unknown"
	}
}

// Type is an immutable semantic type. Primitive types are the package-level
// values below; collections are built with ListOf and MapOf.
type Type struct {
	kind Kind
	key  *Type // Map key
	elem *Type // List element, Map value
}

// Builtin types
var (
	Any      = &Type{kind: KindAny}
	None     = &Type{kind: KindNone}
	Boolean  = &Type{kind: KindBoolean}
	Int      = &Type{kind: KindInt}
	Float    = &Type{kind: KindFloat}
	String   = &Type{kind: KindString}
	Time     = &Type{kind: KindTime}
	Regex    = &Type{kind: KindRegex}
	Object   = &Type{kind: KindObject}
	Function = &Type{kind: KindFunction}
)

// ListOf returns the type List[elem]. A nil elem means List[any].
func ListOf(elem *Type) *Type {
	if elem == nil {
		elem = Any
	}
	return &Type{kind: KindList, elem: elem}
}

// MapOf returns the type Map[key, value]. Nil arguments mean any.
func MapOf(key, value *Type) *Type {
	if key == nil {
		key = Any
	}
	if value == nil {
		value = Any
	}
	return &Type{kind: KindMap, key: key, elem: value}
}

// Kind returns the kind of t
func (t *Type) Kind() Kind {
	if t == nil {
		return KindAny
	}
	return t.kind
}

// Elem returns the element type of a List or the value type of a Map
func (t *Type) Elem() *Type {
	if t == nil || t.elem == nil {
		return Any
	}
	return t.elem
}

// Key returns the key type of a Map
func (t *Type) Key() *Type {
	if t == nil || t.key == nil {
		return Any
	}
	return t.key
}

// IsAny reports whether t is the any type
func (t *Type) IsAny() bool { return t.Kind() == KindAny }

// IsNumeric reports whether t is int or float
func (t *Type) IsNumeric() bool {
	k := t.Kind()
	return k == KindInt || k == KindFloat
}

// Equal checks if two types are structurally identical
func (t *Type) Equal(other *Type) bool {
	if t.Kind() != other.Kind() {
		return false
	}
	switch t.Kind() {
	case KindList:
		return t.Elem().Equal(other.Elem())
	case KindMap:
		return t.Key().Equal(other.Key()) && t.Elem().Equal(other.Elem())
	}
	return true
}

// CanBeAssignedFrom reports whether a value of type source may be stored
// where t is expected
func (t *Type) CanBeAssignedFrom(source *Type) bool {
	if t.IsAny() || source.IsAny() {
		return true
	}
	switch t.Kind() {
	case KindFloat:
		return source.IsNumeric()
	case KindList:
		return source.Kind() == KindList && t.Elem().CanBeAssignedFrom(source.Elem())
	case KindMap:
		return source.Kind() == KindMap &&
			t.Key().CanBeAssignedFrom(source.Key()) &&
			t.Elem().CanBeAssignedFrom(source.Elem())
	default:
		return t.Kind() == source.Kind()
	}
}

// Assignable reports whether source can be assigned to target
func Assignable(target, source *Type) bool {
	return target.CanBeAssignedFrom(source)
}

// String returns the string representation of the type
func (t *Type) String() string {
	switch t.Kind() {
	case KindList:
		return "List[" + t.Elem().String() + "]"
	case KindMap:
		return "Map[" + t.Key().String() + ", " + t.Elem().String() + "]"
	default:
		return t.Kind().String()
	}
}

// Lookup returns the builtin type for a type keyword such as "int" or
// "string"
func Lookup(name string) (*Type, bool) {
	switch name {
	case "any":
		return Any, true
	case "none", "null":
		return None, true
	case "boolean", "bool":
		return Boolean, true
	case "int":
		return Int, true
	case "float":
		return Float, true
	case "string":
		return String, true
	case "time":
		return Time, true
	case "regex", "regexp":
		return Regex, true
	case "object":
		return Object, true
	case "function":
		return Function, true
	}
	return nil, false
}
