package object

type ObjectType string

const (
	VOID_OBJ     = "VOID"
	INT_OBJ      = "INT"
	FLOAT_OBJ    = "FLOAT"
	TRUE_OBJ     = "TRUE"
	NIL_OBJ      = "NIL"
	CONS_OBJ     = "CONS"
	STRING_OBJ   = "STRING"
	SYMBOL_OBJ   = "SYMBOL"
	COMPILED_OBJ = "COMPILED_FUNCTION"
	NATIVE_OBJ   = "NATIVE_FUNCTION"

	// Pseudo types used only as the expected side of a type error.
	FUNCTION_OBJ = "FUNCTION"
	NUMBER_OBJ   = "NUMBER"
	LIST_OBJ     = "LIST"
)

var (
	VOID = inline(tagVoid)
	NIL  = inline(tagNil)
	TRUE = inline(tagTrue)
)

// Int returns an inline integer value.
func Int(i int64) Value {
	return Value{n: i, hdr: uint8(tagInt)}
}

// Bool maps true to t and false to nil.
func Bool(b bool) Value {
	if b {
		return TRUE
	}
	return NIL
}

// SymbolValue wraps an interned symbol. Symbols live in their table, not in
// an arena.
func SymbolValue(sym *Symbol) Value {
	return fromPtr(sym, tagSymbol)
}

func (v Value) Type() ObjectType {
	switch v.tag() {
	case tagInt:
		return INT_OBJ
	case tagFloat:
		return FLOAT_OBJ
	case tagTrue:
		return TRUE_OBJ
	case tagNil:
		return NIL_OBJ
	case tagCons:
		return CONS_OBJ
	case tagString:
		return STRING_OBJ
	case tagSymbol:
		return SYMBOL_OBJ
	case tagCompiled:
		return COMPILED_OBJ
	case tagNative:
		return NATIVE_OBJ
	default:
		return VOID_OBJ
	}
}

func (v Value) IsNil() bool    { return v.tag() == tagNil }
func (v Value) IsTrue() bool   { return v.tag() == tagTrue }
func (v Value) IsVoid() bool   { return v.tag() == tagVoid }
func (v Value) IsInt() bool    { return v.tag() == tagInt }
func (v Value) IsFloat() bool  { return v.tag() == tagFloat }
func (v Value) IsCons() bool   { return v.tag() == tagCons }
func (v Value) IsString() bool { return v.tag() == tagString }
func (v Value) IsSymbol() bool { return v.tag() == tagSymbol }

// IsList reports whether v is a cons or nil.
func (v Value) IsList() bool { return v.IsCons() || v.IsNil() }

// IsFunction reports whether v is a compiled or native function object.
func (v Value) IsFunction() bool {
	t := v.tag()
	return t == tagCompiled || t == tagNative
}

// IsInline reports whether v carries no heap reference.
func (v Value) IsInline() bool {
	switch v.tag() {
	case tagInt, tagTrue, tagNil, tagVoid:
		return true
	}
	return false
}

// Truthy is the Lisp notion of true: anything but nil.
func (v Value) Truthy() bool { return !v.IsNil() }

// ReadOnly returns v marked as a literal constant. Inline values are
// returned unchanged.
func (v Value) ReadOnly() Value { return v.withReadOnly() }

// IsMutable reports whether v may be modified in place.
func (v Value) IsMutable() bool {
	return !v.IsInline() && !v.readOnly()
}

func (v Value) String() string { return v.Inspect() }
