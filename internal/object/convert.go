package object

import "fmt"

// Add converts a Go value into a Lisp value allocated in the arena.
// Supported: Value, nil, bool, int, int64, float64, string, *Symbol,
// []Value (as a list), CompiledFunction and NativeFunction. Any other type
// is a programming error and panics.
func (a *Arena) Add(x any) Value {
	switch x := x.(type) {
	case Value:
		return x
	case nil:
		return NIL
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int64:
		return Int(x)
	case float64:
		return a.Float(x)
	case string:
		return a.String(x)
	case *Symbol:
		return SymbolValue(x)
	case []Value:
		return a.List(x...)
	case CompiledFunction:
		return a.Compiled(x)
	case NativeFunction:
		return a.Native(x)
	}
	panic(fmt.Sprintf("object: cannot convert %T to a value", x))
}

func (v Value) AsInt() (int64, error) {
	if v.tag() != tagInt {
		return 0, NewTypeError(INT_OBJ, v)
	}
	return v.n, nil
}

func (v Value) AsFloat() (float64, error) {
	if v.tag() != tagFloat {
		return 0, NewTypeError(FLOAT_OBJ, v)
	}
	return *v.floatPtr(), nil
}

// AsNumber widens an integer or a float to float64.
func (v Value) AsNumber() (float64, error) {
	switch v.tag() {
	case tagInt:
		return float64(v.n), nil
	case tagFloat:
		return *v.floatPtr(), nil
	}
	return 0, NewTypeError(NUMBER_OBJ, v)
}

func (v Value) AsString() (string, error) {
	if v.tag() != tagString {
		return "", NewTypeError(STRING_OBJ, v)
	}
	return *v.stringPtr(), nil
}

func (v Value) AsSymbol() (*Symbol, error) {
	if v.tag() != tagSymbol {
		return nil, NewTypeError(SYMBOL_OBJ, v)
	}
	return v.symbolPtr(), nil
}

func (v Value) AsCons() (*Cons, error) {
	if v.tag() != tagCons {
		return nil, NewTypeError(CONS_OBJ, v)
	}
	return v.consPtr(), nil
}

func (v Value) AsCompiled() (*CompiledFunction, error) {
	if v.tag() != tagCompiled {
		return nil, NewTypeError(FUNCTION_OBJ, v)
	}
	return v.compiledPtr(), nil
}

func (v Value) AsNative() (*NativeFunction, error) {
	if v.tag() != tagNative {
		return nil, NewTypeError(FUNCTION_OBJ, v)
	}
	return v.nativePtr(), nil
}

// AsList accepts a cons or nil.
func (v Value) AsList() (Value, error) {
	if !v.IsList() {
		return VOID, NewTypeError(LIST_OBJ, v)
	}
	return v, nil
}

// AsBool maps nil to false and everything else to true; it never fails.
func (v Value) AsBool() bool { return v.Truthy() }

// The optional narrowings accept nil as "absent" (ok == false).

func (v Value) AsOptInt() (int64, bool, error) {
	if v.IsNil() {
		return 0, false, nil
	}
	i, err := v.AsInt()
	return i, err == nil, err
}

func (v Value) AsOptFloat() (float64, bool, error) {
	if v.IsNil() {
		return 0, false, nil
	}
	f, err := v.AsFloat()
	return f, err == nil, err
}

func (v Value) AsOptString() (string, bool, error) {
	if v.IsNil() {
		return "", false, nil
	}
	s, err := v.AsString()
	return s, err == nil, err
}

func (v Value) AsOptSymbol() (*Symbol, bool, error) {
	if v.IsNil() {
		return nil, false, nil
	}
	s, err := v.AsSymbol()
	return s, err == nil, err
}

func (v Value) AsOptCons() (*Cons, bool, error) {
	if v.IsNil() {
		return nil, false, nil
	}
	c, err := v.AsCons()
	return c, err == nil, err
}

// Native returns the Go representation of a scalar value: int64, float64,
// string, bool for t/nil, *Symbol, or nil for anything else.
func (v Value) Native() any {
	switch v.tag() {
	case tagInt:
		return v.n
	case tagFloat:
		return *v.floatPtr()
	case tagString:
		return *v.stringPtr()
	case tagTrue:
		return true
	case tagNil:
		return false
	case tagSymbol:
		return v.symbolPtr()
	}
	return nil
}

// CloneIn deep-copies v into arena. The copy is mutable and shares no cons
// cells with v; shared and cyclic structure is reproduced as such. Symbols
// and inline values are returned as they are.
func (v Value) CloneIn(arena *Arena) Value {
	c := cloner{arena: arena, seen: map[*Cons]Value{}}
	return c.clone(v)
}

type cloner struct {
	arena *Arena
	seen  map[*Cons]Value
}

func (c *cloner) clone(v Value) Value {
	switch v.tag() {
	case tagFloat:
		return c.arena.Float(*v.floatPtr())
	case tagString:
		return c.arena.String(*v.stringPtr())
	case tagCompiled:
		fn := *v.compiledPtr()
		consts := make([]Value, len(fn.Constants))
		for i, k := range fn.Constants {
			consts[i] = c.clone(k)
		}
		fn.Constants = consts
		fn.OpCodes = append([]byte(nil), fn.OpCodes...)
		return c.arena.Compiled(fn)
	case tagNative:
		return c.arena.Native(*v.nativePtr())
	case tagCons:
		return c.cloneCons(v.consPtr())
	}
	return v
}

// cloneCons walks the cdr chain iteratively so that long lists only recurse
// on their cars.
func (c *cloner) cloneCons(src *Cons) Value {
	if out, ok := c.seen[src]; ok {
		return out
	}
	head := c.arena.Cons(VOID, VOID)
	c.seen[src] = head
	dst := head.consPtr()
	for {
		dst.car = c.clone(src.car)
		next := src.cdr
		if next.tag() != tagCons {
			dst.cdr = c.clone(next)
			return head
		}
		if out, ok := c.seen[next.consPtr()]; ok {
			dst.cdr = out
			return head
		}
		cell := c.arena.Cons(VOID, VOID)
		c.seen[next.consPtr()] = cell
		dst.cdr = cell
		dst = cell.consPtr()
		src = next.consPtr()
	}
}
