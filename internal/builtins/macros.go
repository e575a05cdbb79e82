package builtins

import "lisp/internal/object"

var (
	symDefalias = object.Intern("defalias")
	symCons     = object.Intern("cons")
)

// macroDefun expands (defun NAME ARGLIST . BODY) into
// (defalias 'NAME #'(lambda ARGLIST . BODY)).
func macroDefun() object.NativeFunction {
	return object.NativeFunction{
		Args: args(2, 0, true),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			name, fn, err := defineForms(argv, arena)
			if err != nil {
				return object.VOID, err
			}
			return arena.List(object.SymbolValue(symDefalias), name, fn), nil
		},
	}
}

// macroDefmacro expands (defmacro NAME ARGLIST . BODY) into
// (defalias 'NAME (cons 'macro #'(lambda ARGLIST . BODY))).
func macroDefmacro() object.NativeFunction {
	return object.NativeFunction{
		Args: args(2, 0, true),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			name, fn, err := defineForms(argv, arena)
			if err != nil {
				return object.VOID, err
			}
			macro := arena.List(object.SymbolValue(symCons), quoted(object.SymbolValue(object.MACRO), arena), fn)
			return arena.List(object.SymbolValue(symDefalias), name, macro), nil
		},
	}
}

func defineForms(argv []object.Value, arena *object.Arena) (object.Value, object.Value, error) {
	if _, err := argv[0].AsSymbol(); err != nil {
		return object.VOID, object.VOID, err
	}
	if _, err := argv[1].AsList(); err != nil {
		return object.VOID, object.VOID, err
	}
	lambda := arena.Cons(object.SymbolValue(object.LAMBDA), arena.ListWithTail([]object.Value{argv[1]}, arena.List(argv[2:]...)))
	fn := arena.List(object.SymbolValue(object.FUNCTION), lambda)
	return quoted(argv[0], arena), fn, nil
}

func quoted(v object.Value, arena *object.Arena) object.Value {
	return arena.List(object.SymbolValue(object.QUOTE), v)
}
