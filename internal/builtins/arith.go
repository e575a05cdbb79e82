package builtins

import (
	"errors"
	"fmt"
	"lisp/internal/object"
)

var ErrArith = errors.New("arith-error")

// number is an Int or a Float argument. Any float operand turns the whole
// operation into float arithmetic.
type number struct {
	i       int64
	f       float64
	isFloat bool
}

func toNumber(v object.Value) (number, error) {
	if i, err := v.AsInt(); err == nil {
		return number{i: i, f: float64(i)}, nil
	}
	f, err := v.AsNumber()
	if err != nil {
		return number{}, err
	}
	return number{f: f, isFloat: true}, nil
}

func (n number) value(arena *object.Arena) object.Value {
	if n.isFloat {
		return arena.Float(n.f)
	}
	return object.Int(n.i)
}

func (n number) compare(o number) int {
	if !n.isFloat && !o.isFloat {
		switch {
		case n.i < o.i:
			return -1
		case n.i > o.i:
			return 1
		}
		return 0
	}
	switch {
	case n.f < o.f:
		return -1
	case n.f > o.f:
		return 1
	}
	return 0
}

type intOp func(a, b int64) (int64, error)
type floatOp func(a, b float64) float64

func combine(a, b number, iop intOp, fop floatOp) (number, error) {
	if a.isFloat || b.isFloat {
		return number{f: fop(a.f, b.f), isFloat: true}, nil
	}
	i, err := iop(a.i, b.i)
	if err != nil {
		return number{}, err
	}
	return number{i: i, f: float64(i)}, nil
}

// fold applies op left to right starting from the first argument, or from
// identity when there are no arguments.
func fold(argv []object.Value, identity number, iop intOp, fop floatOp) (number, error) {
	if len(argv) == 0 {
		return identity, nil
	}
	acc, err := toNumber(argv[0])
	if err != nil {
		return number{}, err
	}
	for _, v := range argv[1:] {
		n, err := toNumber(v)
		if err != nil {
			return number{}, err
		}
		if acc, err = combine(acc, n, iop, fop); err != nil {
			return number{}, err
		}
	}
	return acc, nil
}

func add(a, b int64) (int64, error) { return a + b, nil }
func sub(a, b int64) (int64, error) { return a - b, nil }
func mul(a, b int64) (int64, error) { return a * b, nil }
func addF(a, b float64) float64 { return a + b }
func subF(a, b float64) float64 { return a - b }
func mulF(a, b float64) float64 { return a * b }
func divF(a, b float64) float64 { return a / b }
func div(a, b int64) (int64, error) {
	if b == 0 {
		return 0, fmt.Errorf("%w: division by zero", ErrArith)
	}
	return a / b, nil
}

func arithmetic(required int, identity number, iop intOp, fop floatOp) object.NativeFunction {
	return object.NativeFunction{
		Args: args(required, 0, true),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			n, err := fold(argv, identity, iop, fop)
			if err != nil {
				return object.VOID, err
			}
			return n.value(arena), nil
		},
	}
}

func funcAdd() object.NativeFunction { return arithmetic(0, number{}, add, addF) }
func funcMul() object.NativeFunction { return arithmetic(0, number{i: 1, f: 1}, mul, mulF) }

// funcSub negates a single argument.
func funcSub() object.NativeFunction {
	fn := arithmetic(0, number{}, sub, subF)
	inner := fn.Fn
	fn.Fn = func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
		if len(argv) == 1 {
			argv = []object.Value{object.Int(0), argv[0]}
		}
		return inner(argv, env, arena)
	}
	return fn
}

// funcDiv divides the first argument by the rest; a single argument is
// inverted. Integer division truncates.
func funcDiv() object.NativeFunction {
	fn := arithmetic(1, number{}, div, divF)
	inner := fn.Fn
	fn.Fn = func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
		if len(argv) == 1 {
			argv = []object.Value{object.Int(1), argv[0]}
		}
		return inner(argv, env, arena)
	}
	return fn
}

func funcAdd1() object.NativeFunction {
	return object.NativeFunction{
		Args: args(1, 0, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			n, err := fold([]object.Value{argv[0], object.Int(1)}, number{}, add, addF)
			if err != nil {
				return object.VOID, err
			}
			return n.value(arena), nil
		},
	}
}

func funcSub1() object.NativeFunction {
	return object.NativeFunction{
		Args: args(1, 0, false),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			n, err := fold([]object.Value{argv[0], object.Int(1)}, number{}, sub, subF)
			if err != nil {
				return object.VOID, err
			}
			return n.value(arena), nil
		},
	}
}

// funcCompare holds when ok accepts every adjacent pair.
func funcCompare(ok func(int) bool) object.NativeFunction {
	return object.NativeFunction{
		Args: args(1, 0, true),
		Fn: func(argv []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
			prev, err := toNumber(argv[0])
			if err != nil {
				return object.VOID, err
			}
			result := true
			for _, v := range argv[1:] {
				n, err := toNumber(v)
				if err != nil {
					return object.VOID, err
				}
				if !ok(prev.compare(n)) {
					result = false
				}
				prev = n
			}
			return object.Bool(result), nil
		},
	}
}
