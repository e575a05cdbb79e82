package evaluator

import (
	"fmt"
	"lisp/internal/object"
)

func (e *Evaluator) evalCall(sym *object.Symbol, forms object.Value) (object.Value, error) {
	fn, err := e.env.ResolveCallable(sym)
	if err != nil {
		return object.VOID, err
	}

	if fn.Kind == object.MacroCallable {
		// Macro arguments are passed as written.
		args, err := object.ToSlice(forms)
		if err != nil {
			return object.VOID, err
		}
		e.debugCall("macro", sym.Name, args)
		expansion, err := e.Funcall(fn.Form, args)
		if err != nil {
			return object.VOID, err
		}
		return e.Eval(expansion)
	}

	args, err := e.evalArgs(forms)
	if err != nil {
		return object.VOID, err
	}
	e.debugCall(fn.Kind.String(), sym.Name, args)
	return e.callResolved(fn, args)
}

func (e *Evaluator) callResolved(fn object.Callable, args []object.Value) (object.Value, error) {
	switch fn.Kind {
	case object.NativeCallable:
		return e.callNative(fn.Native, args)
	case object.CompiledCallable:
		return e.callCompiled(fn.Symbol.Name, fn.Compiled, args)
	case object.UncompiledCallable:
		return e.callForm(fn.Form, args)
	}
	// A macro cell reached through funcall.
	return object.VOID, object.NewInvalidFunctionError(object.SymbolValue(fn.Symbol))
}

// Funcall calls fn with already evaluated arguments.
func (e *Evaluator) Funcall(fn object.Value, args []object.Value) (object.Value, error) {
	switch {
	case fn.IsSymbol():
		sym, _ := fn.AsSymbol()
		resolved, err := e.env.ResolveCallable(sym)
		if err != nil {
			return object.VOID, err
		}
		return e.callResolved(resolved, args)
	case fn.IsNil():
		return object.VOID, object.NewVoidFunctionError(object.NIL_SYM)
	}
	if native, err := fn.AsNative(); err == nil {
		return e.callNative(native, args)
	}
	if compiled, err := fn.AsCompiled(); err == nil {
		return e.callCompiled("", compiled, args)
	}
	if fn.IsCons() {
		return e.callForm(fn, args)
	}
	return object.VOID, object.NewInvalidFunctionError(fn)
}

// Call invokes a closure form directly.
func (e *Evaluator) Call(closure object.Value, args []object.Value) (object.Value, error) {
	cons, err := closure.AsCons()
	if err != nil {
		return object.VOID, object.NewTypeError(object.FUNCTION_OBJ, closure)
	}
	if head, err := cons.Car().AsSymbol(); err != nil || head != object.CLOSURE {
		return object.VOID, object.NewTypeError(object.FUNCTION_OBJ, cons.Car())
	}
	return e.callClosure(cons, args)
}

// callForm runs a (closure ...) or a bare (lambda ARGLIST . BODY), the
// latter with an empty captured environment.
func (e *Evaluator) callForm(form object.Value, args []object.Value) (object.Value, error) {
	cons, _ := form.AsCons()
	head, err := cons.Car().AsSymbol()
	if err != nil {
		return object.VOID, object.NewInvalidFunctionError(form)
	}
	switch head {
	case object.CLOSURE:
		return e.callClosure(cons, args)
	case object.LAMBDA:
		return e.callBody(nil, cons.Cdr(), args)
	}
	return object.VOID, object.NewInvalidFunctionError(form)
}

// callClosure binds (closure ENV ARGLIST . BODY) in a new frame. The
// caller's lexical stack is untouched.
func (e *Evaluator) callClosure(closure *object.Cons, args []object.Value) (object.Value, error) {
	rest, err := closure.Cdr().AsCons()
	if err != nil {
		return object.VOID, object.NewMalformedClosureError("closure missing environment")
	}
	vars, err := parseClosureEnv(rest.Car())
	if err != nil {
		return object.VOID, err
	}
	return e.callBody(vars, rest.Cdr(), args)
}

// callBody binds args against the head of (ARGLIST . BODY) on top of vars
// and evaluates BODY.
func (e *Evaluator) callBody(vars []object.Value, lambda object.Value, args []object.Value) (object.Value, error) {
	fn, err := lambda.AsCons()
	if err != nil {
		return object.VOID, object.NewMalformedClosureError("closure missing argument list")
	}
	if vars, err = e.bindArgs(fn.Car(), args, vars); err != nil {
		return object.VOID, err
	}
	return e.frame(vars).implicitProgn(fn.Cdr())
}

func parseClosureEnv(env object.Value) ([]object.Value, error) {
	it, err := object.Iterate(env)
	if err != nil {
		return nil, object.NewMalformedClosureError("environment is not a list: %s", env.Inspect())
	}
	var vars []object.Value
	for it.Next() {
		member := it.Value()
		switch {
		case member.IsCons():
			vars = append(vars, member)
		case member.IsTrue():
			return vars, nil
		default:
			return nil, object.NewMalformedClosureError("invalid environment member: %s", member.Inspect())
		}
	}
	return nil, object.NewMalformedClosureError("environment did not end with t")
}

type argList struct {
	required []*object.Symbol
	optional []*object.Symbol
	rest     *object.Symbol
}

func parseArgList(list object.Value) (argList, error) {
	var out argList
	it, err := object.Iterate(list)
	if err != nil {
		return out, err
	}
	group := &out.required
	for it.Next() {
		sym, err := it.Value().AsSymbol()
		if err != nil {
			return out, err
		}
		switch sym {
		case object.AND_OPTIONAL:
			group = &out.optional
		case object.AND_REST:
			if !it.Next() {
				return out, it.Err()
			}
			if out.rest, err = it.Value().AsSymbol(); err != nil {
				return out, err
			}
			if !it.Empty() {
				return out, object.NewMalformedArgListError("more than one argument after &rest in %s", list.Inspect())
			}
			return out, it.Err()
		default:
			*group = append(*group, sym)
		}
	}
	return out, it.Err()
}

func (e *Evaluator) bindArgs(list object.Value, args []object.Value, vars []object.Value) ([]object.Value, error) {
	params, err := parseArgList(list)
	if err != nil {
		return nil, err
	}
	required, optional := len(params.required), len(params.optional)
	if len(args) < required {
		return nil, object.NewArgCountError(required, len(args))
	}
	if params.rest == nil && len(args) > required+optional {
		return nil, object.NewArgCountError(required+optional, len(args))
	}

	bind := func(sym *object.Symbol, v object.Value) {
		vars = append(vars, e.arena.Cons(object.SymbolValue(sym), v))
	}
	i := 0
	for _, sym := range params.required {
		bind(sym, args[i])
		i++
	}
	for _, sym := range params.optional {
		if i < len(args) {
			bind(sym, args[i])
			i++
		} else {
			bind(sym, object.NIL)
		}
	}
	if params.rest != nil {
		bind(params.rest, e.arena.List(args[i:]...))
	}
	return vars, nil
}

// callNative checks the descriptor's arity and pads missing optionals
// with nil.
func (e *Evaluator) callNative(fn *object.NativeFunction, args []object.Value) (object.Value, error) {
	fill, err := fn.Args.FillCount(len(args))
	if err != nil {
		return object.VOID, err
	}
	if fill > 0 {
		padded := make([]object.Value, len(args), len(args)+fill)
		copy(padded, args)
		for ; fill > 0; fill-- {
			padded = append(padded, object.NIL)
		}
		args = padded
	}
	return fn.Fn(args, e.env, e.arena)
}

func (e *Evaluator) callCompiled(name string, fn *object.CompiledFunction, args []object.Value) (object.Value, error) {
	bc := e.env.Bytecode()
	if bc == nil {
		if name == "" {
			return object.VOID, ErrNoBytecode
		}
		return object.VOID, fmt.Errorf("%w: %s", ErrNoBytecode, name)
	}
	if _, err := fn.Args.FillCount(len(args)); err != nil {
		return object.VOID, err
	}
	return bc.CallCompiled(fn, args, e.env, e.arena)
}
