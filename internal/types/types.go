// Package types implements Ace's structural type system: builtin
// primitives, aliases, generic instances, function signatures, and
// prototypal object types.
package types

import (
	"fmt"
	"strings"
)

// Kind distinguishes the flavor of a Type descriptor.
type Kind int

const (
	KindBuiltin Kind = iota
	KindAlias
	KindGenericParameter
	KindGenericInstance
	KindFunction
	KindObject
)

// Builtin enumerates the primitive type names.
type Builtin int

const (
	Any Builtin = iota
	Int
	Float
	Number
	Boolean
	String
	Null
	Undefined
	Function
	Array
	Maybe
	Event
	EventArray
	TypeType
	VarArgs
	Enum
	ModuleInfo
	GenericVariable
	GenericPlaceholder
)

var builtinNames = map[Builtin]string{
	Any: "Any", Int: "Int", Float: "Float", Number: "Number", Boolean: "Boolean",
	String: "String", Null: "Null", Undefined: "Undefined", Function: "Function",
	Array: "Array", Maybe: "Maybe", Event: "Event", EventArray: "EventArray",
	TypeType: "Type", VarArgs: "VarArgs", Enum: "Enum", ModuleInfo: "ModuleInfo",
	GenericVariable: "GenericVariable", GenericPlaceholder: "GenericPlaceholder",
}

// numericLattice gives the widening order for arithmetic promotion
//; Ace surfaces this at the source level as Int < Float.
var numericLattice = map[Builtin]int{Int: 0, Float: 1}

// Member is a named, typed slot on a generic-instance argument list or
// an object's member list, with an optional default-value expression.
// DefaultExpr is declared as `interface{}` here to avoid an import
// cycle with package ast; the analyzer stores an *ast.Expression there.
type Member struct {
	Name        string
	Type        *Type
	DefaultExpr interface{}
}

// Type is a reference-counted-in-spirit type descriptor. Equality rules
// live in Assignable/Identical below rather than on this struct, since
// Ace's assignability is not plain equality.
type Type struct {
	id       uint64
	Name     string
	Kind     Kind
	Builtin  Builtin
	Aliasee  *Type   // set when Kind == KindAlias
	Base     *Type   // generic base (KindGenericInstance) or parent object type
	Args     []Member // ordered generic-instance arguments
	Params   []Member // function parameters, or object members
	Return   *Type    // function return type
	Variadic bool     // trailing parameter is VarArgs-wrapped
	ProtoName string  // `$proto` member name for an Object type's `new`
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindBuiltin:
		return builtinNames[t.Builtin]
	case KindAlias:
		return t.Name
	case KindGenericInstance:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.Type.String()
		}
		return fmt.Sprintf("%s<%s>", t.Base.Name, strings.Join(parts, ", "))
	case KindFunction:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.Type.String()
		}
		return fmt.Sprintf("func(%s) -> %s", strings.Join(parts, ", "), t.Return.String())
	case KindObject:
		return t.Name
	case KindGenericParameter:
		return t.Name
	default:
		return "<?>"
	}
}

// ID returns the type's stable numeric id, assigned exactly once on
// first registration.
func (t *Type) ID() uint64 { return t.id }

// Resolve follows alias chains to the underlying concrete type.
// "Aliases resolve transparently".
func Resolve(t *Type) *Type {
	for t != nil && t.Kind == KindAlias {
		t = t.Aliasee
	}
	return t
}

// IsNumeric reports whether a (resolved) type participates in the
// arithmetic-promotion lattice.
func IsNumeric(t *Type) bool {
	t = Resolve(t)
	if t == nil || t.Kind != KindBuiltin {
		return false
	}
	_, ok := numericLattice[t.Builtin]
	return ok
}

// LatticeMax returns the wider of two numeric builtins, or nil if
// either is not numeric.
func LatticeMax(a, b *Type) *Type {
	ra, rb := Resolve(a), Resolve(b)
	if !IsNumeric(ra) || !IsNumeric(rb) {
		return nil
	}
	if numericLattice[ra.Builtin] >= numericLattice[rb.Builtin] {
		return ra
	}
	return rb
}
