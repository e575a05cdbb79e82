package object

import (
	"fmt"
	"reflect"
)

// FnArgs is the arity contract of a function.
type FnArgs struct {
	Required uint16
	Optional uint16
	Rest     bool
}

// FillCount validates an argument count against the contract and returns
// how many optional slots are left for the caller to pad with nil.
func (a FnArgs) FillCount(n int) (int, error) {
	if n < int(a.Required) {
		return 0, NewArgCountError(int(a.Required), n)
	}
	total := int(a.Required) + int(a.Optional)
	if !a.Rest && n > total {
		return 0, NewArgCountError(total, n)
	}
	if n >= total {
		return 0, nil
	}
	return total - n, nil
}

func (a FnArgs) String() string {
	s := fmt.Sprintf("%d", a.Required)
	if a.Optional > 0 {
		s += fmt.Sprintf("+%d", a.Optional)
	}
	if a.Rest {
		s += "+&rest"
	}
	return s
}

// CompiledFunction is a precompiled body run by the bytecode collaborator.
type CompiledFunction struct {
	OpCodes   []byte
	Constants []Value
	Args      FnArgs
}

// NativeFn is the calling convention of functions implemented in Go.
// Results must be allocated in the supplied arena.
type NativeFn func(args []Value, env *Env, arena *Arena) (Value, error)

// NativeFunction describes a Go function callable from Lisp.
type NativeFunction struct {
	Name string
	Fn   NativeFn
	Args FnArgs
}

func (n *NativeFunction) Inspect() string {
	return fmt.Sprintf("#<subr %s>", n.Name)
}

func (n *NativeFunction) same(o *NativeFunction) bool {
	if n == o {
		return true
	}
	if n.Name != o.Name || n.Args != o.Args {
		return false
	}
	if n.Fn == nil || o.Fn == nil {
		return n.Fn == nil && o.Fn == nil
	}
	return reflect.ValueOf(n.Fn).Pointer() == reflect.ValueOf(o.Fn).Pointer()
}

// Bytecode executes compiled function bodies on behalf of the evaluator.
type Bytecode interface {
	CallCompiled(fn *CompiledFunction, args []Value, env *Env, arena *Arena) (Value, error)
}
