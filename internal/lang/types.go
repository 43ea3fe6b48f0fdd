package lang

import "strings"

// TypeKind discriminates the closed set of L types.
type TypeKind int

const (
	TypeUnknown TypeKind = iota // failed inference; silences downstream checks
	TypeUnit                    // value-less, e.g. a function without "->"
	TypeInt
	TypeFloat
	TypeBool
	TypeString
	TypeStruct
	TypeFunc
)

// Type is the resolved type of a symbol or expression. Struct types carry
// the defining struct's symbol id, function types their signature.
type Type struct {
	Kind   TypeKind
	Struct SymbolID // valid when Kind == TypeStruct
	Params []Type   // valid when Kind == TypeFunc
	Result *Type    // valid when Kind == TypeFunc
}

var (
	unknownType = Type{Kind: TypeUnknown}
	unitType    = Type{Kind: TypeUnit}
	intType     = Type{Kind: TypeInt}
	floatType   = Type{Kind: TypeFloat}
	boolType    = Type{Kind: TypeBool}
	stringType  = Type{Kind: TypeString}
)

func structType(id SymbolID) Type {
	return Type{Kind: TypeStruct, Struct: id}
}

// primitiveTypes maps builtin type names. Struct names resolve separately.
var primitiveTypes = map[string]Type{
	"Int":    intType,
	"Float":  floatType,
	"Bool":   boolType,
	"String": stringType,
}

// IsStruct reports whether the type names a struct.
func (t Type) IsStruct() bool { return t.Kind == TypeStruct }

// equal compares types structurally. Unknown never equals anything; the
// checker treats it as assignable instead (see assignable).
func (t Type) equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case TypeStruct:
		return t.Struct == other.Struct
	case TypeFunc:
		if len(t.Params) != len(other.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].equal(other.Params[i]) {
				return false
			}
		}
		if (t.Result == nil) != (other.Result == nil) {
			return false
		}
		if t.Result != nil {
			return t.Result.equal(*other.Result)
		}
		return true
	default:
		return true
	}
}

// assignable reports whether a value of type t can fill a slot of type want.
// Unknown on either side passes so one error does not cascade.
func assignable(t, want Type) bool {
	if t.Kind == TypeUnknown || want.Kind == TypeUnknown {
		return true
	}
	return t.equal(want)
}

// FormatType renders a type for completion details and inlay hints. Struct
// names come from the snapshot's symbol table; a stale id renders as "?".
func (a *Analysis) FormatType(t Type) string {
	switch t.Kind {
	case TypeUnit:
		return "()"
	case TypeInt:
		return "Int"
	case TypeFloat:
		return "Float"
	case TypeBool:
		return "Bool"
	case TypeString:
		return "String"
	case TypeStruct:
		if name, ok := a.SymbolName(t.Struct); ok {
			return name
		}
		return "?"
	case TypeFunc:
		var b strings.Builder
		b.WriteString("fn(")
		for i, p := range t.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.FormatType(p))
		}
		b.WriteString(")")
		if t.Result != nil && t.Result.Kind != TypeUnit {
			b.WriteString(" -> ")
			b.WriteString(a.FormatType(*t.Result))
		}
		return b.String()
	default:
		return "?"
	}
}
