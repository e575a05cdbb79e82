package builtins

import (
	"lisp/internal/object"
	"unicode/utf8"
)

func funcCons() object.NativeFunction {
	return object.NativeFunction{
		Args: args(2, 0, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			return arena.Cons(argv[0], argv[1]), nil
		},
	}
}

func funcCar() object.NativeFunction {
	return object.NativeFunction{
		Args: args(1, 0, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			return argv[0].Car()
		},
	}
}

func funcCdr() object.NativeFunction {
	return object.NativeFunction{
		Args: args(1, 0, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			return argv[0].Cdr()
		},
	}
}

func funcSetCar() object.NativeFunction {
	return object.NativeFunction{
		Args: args(2, 0, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			if err := argv[0].SetCar(argv[1]); err != nil {
				return object.VOID, err
			}
			return argv[1], nil
		},
	}
}

func funcSetCdr() object.NativeFunction {
	return object.NativeFunction{
		Args: args(2, 0, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			if err := argv[0].SetCdr(argv[1]); err != nil {
				return object.VOID, err
			}
			return argv[1], nil
		},
	}
}

func funcList() object.NativeFunction {
	return object.NativeFunction{
		Args: args(0, 0, true),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			return arena.List(argv...), nil
		},
	}
}

// funcLength counts list elements or string characters.
func funcLength() object.NativeFunction {
	return object.NativeFunction{
		Args: args(1, 0, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			if s, err := argv[0].AsString(); err == nil {
				return object.Int(int64(utf8.RuneCountInString(s))), nil
			}
			if !object.IsProperList(argv[0]) {
				return object.VOID, object.NewTypeError(object.LIST_OBJ, argv[0])
			}
			elems, err := object.ToSlice(argv[0])
			if err != nil {
				return object.VOID, err
			}
			return object.Int(int64(len(elems))), nil
		},
	}
}

func funcNth() object.NativeFunction {
	return object.NativeFunction{
		Args: args(2, 0, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			n, err := argv[0].AsInt()
			if err != nil {
				return object.VOID, err
			}
			list := argv[1]
			for ; n > 0 && list.IsCons(); n-- {
				if list, err = list.Cdr(); err != nil {
					return object.VOID, err
				}
			}
			return list.Car()
		},
	}
}

func funcNull() object.NativeFunction {
	return object.NativeFunction{
		Args: args(1, 0, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			return object.Bool(argv[0].IsNil()), nil
		},
	}
}

func funcEq() object.NativeFunction {
	return object.NativeFunction{
		Args: args(2, 0, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			return object.Bool(object.Eq(argv[0], argv[1])), nil
		},
	}
}

func funcEqual() object.NativeFunction {
	return object.NativeFunction{
		Args: args(2, 0, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			return object.Bool(object.Equal(argv[0], argv[1])), nil
		},
	}
}
