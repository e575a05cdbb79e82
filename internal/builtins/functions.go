package builtins

import (
	"lisp/internal/evaluator"
	"lisp/internal/object"
)

func funcFuncall() object.NativeFunction {
	return object.NativeFunction{
		Args: args(1, 0, true),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			return evaluator.Funcall(argv[0], argv[1:], env, arena)
		},
	}
}

// funcApply spreads its last argument: (apply f 1 '(2 3)) calls (f 1 2 3).
// With a single argument the list itself holds the function.
func funcApply() object.NativeFunction {
	return object.NativeFunction{
		Args: args(1, 0, true),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			if len(argv) == 1 {
				call, err := object.ToSlice(argv[0])
				if err != nil {
					return object.VOID, err
				}
				if len(call) == 0 {
					return object.VOID, object.NewVoidFunctionError(object.NIL_SYM)
				}
				return evaluator.Funcall(call[0], call[1:], env, arena)
			}

			last := argv[len(argv)-1]
			spread, err := object.ToSlice(last)
			if err != nil {
				return object.VOID, err
			}
			callArgs := make([]object.Value, 0, len(argv)-2+len(spread))
			callArgs = append(callArgs, argv[1:len(argv)-1]...)
			callArgs = append(callArgs, spread...)
			return evaluator.Funcall(argv[0], callArgs, env, arena)
		},
	}
}

func funcEval() object.NativeFunction {
	return object.NativeFunction{
		Args: args(1, 1, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			return evaluator.Eval(argv[0], argv[1], env, arena)
		},
	}
}

func funcIdentity() object.NativeFunction {
	return object.NativeFunction{
		Args: args(1, 0, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			return argv[0], nil
		},
	}
}

// funcDefalias stores a copy of the definition in the environment's own
// arena. Captured bindings are copied with it, so later assignments in
// the defining scope do not reach the global function.
func funcDefalias() object.NativeFunction {
	return object.NativeFunction{
		Args: args(2, 1, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			sym, err := symbolArg(argv[0])
			if err != nil {
				return object.VOID, err
			}
			env.SetFunc(sym, argv[1].CloneIn(env.Arena()))
			return object.SymbolValue(sym), nil
		},
	}
}

func funcSymbolFunction() object.NativeFunction {
	return object.NativeFunction{
		Args: args(1, 0, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			sym, err := symbolArg(argv[0])
			if err != nil {
				return object.VOID, err
			}
			if fn, ok := env.Func(sym); ok {
				return fn, nil
			}
			return object.NIL, nil
		},
	}
}

// funcSymbolValue reads the global value only; lexical bindings are not
// visible to natives.
func funcSymbolValue() object.NativeFunction {
	return object.NativeFunction{
		Args: args(1, 0, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			if argv[0].IsNil() || argv[0].IsTrue() {
				return argv[0], nil
			}
			sym, err := argv[0].AsSymbol()
			if err != nil {
				return object.VOID, err
			}
			if sym.IsKeyword() {
				return argv[0], nil
			}
			if v, ok := env.Var(sym); ok {
				return v, nil
			}
			return object.VOID, object.NewVoidVariableError(sym)
		},
	}
}

func funcSet() object.NativeFunction {
	return object.NativeFunction{
		Args: args(2, 0, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			sym, err := symbolArg(argv[0])
			if err != nil {
				return object.VOID, err
			}
			if err := env.SetVar(sym, argv[1]); err != nil {
				return object.VOID, err
			}
			return argv[1], nil
		},
	}
}

func funcBoundp() object.NativeFunction {
	return object.NativeFunction{
		Args: args(1, 0, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			if argv[0].IsNil() || argv[0].IsTrue() {
				return object.TRUE, nil
			}
			sym, err := argv[0].AsSymbol()
			if err != nil {
				return object.VOID, err
			}
			_, ok := env.Var(sym)
			return object.Bool(ok || sym.IsKeyword()), nil
		},
	}
}

func funcFboundp() object.NativeFunction {
	return object.NativeFunction{
		Args: args(1, 0, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			sym, err := symbolArg(argv[0])
			if err != nil {
				return object.VOID, err
			}
			_, ok := env.Func(sym)
			return object.Bool(ok), nil
		},
	}
}

func funcIntern() object.NativeFunction {
	return object.NativeFunction{
		Args: args(1, 0, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			name, err := argv[0].AsString()
			if err != nil {
				return object.VOID, err
			}
			switch name {
			case "nil":
				return object.NIL, nil
			case "t":
				return object.TRUE, nil
			}
			return object.SymbolValue(object.Intern(name)), nil
		},
	}
}

// symbolArg accepts a symbol, mapping the nil and t literals back to their
// symbols.
func symbolArg(v object.Value) (*object.Symbol, error) {
	switch {
	case v.IsNil():
		return object.NIL_SYM, nil
	case v.IsTrue():
		return object.T_SYM, nil
	}
	return v.AsSymbol()
}
