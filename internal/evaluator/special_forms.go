package evaluator

import "lisp/internal/object"

func (e *Evaluator) quote(forms object.Value) (object.Value, error) {
	it, err := object.Iterate(forms)
	if err != nil {
		return object.VOID, err
	}
	if n := it.Len(); n != 1 {
		return object.VOID, object.NewArgCountError(1, n)
	}
	it.Next()
	return it.Value(), nil
}

func (e *Evaluator) evalLet(forms object.Value, parallel bool) (object.Value, error) {
	it, err := object.Iterate(forms)
	if err != nil {
		return object.VOID, err
	}
	if !it.Next() {
		return object.VOID, object.NewArgCountError(1, 0)
	}

	prev := len(e.vars)
	defer func() { e.vars = e.vars[:prev] }()

	if parallel {
		err = e.letBindParallel(it.Value())
	} else {
		err = e.letBindSerial(it.Value())
	}
	if err != nil {
		return object.VOID, err
	}
	return e.implicitProgn(it.Rest())
}

// letBindSerial makes each binding visible to the initializers after it.
func (e *Evaluator) letBindSerial(bindings object.Value) error {
	it, err := object.Iterate(bindings)
	if err != nil {
		return err
	}
	for it.Next() {
		cell, err := e.letBinding(it.Value())
		if err != nil {
			return err
		}
		e.vars = append(e.vars, cell)
	}
	return it.Err()
}

// letBindParallel evaluates every initializer in the outer scope before
// pushing any binding.
func (e *Evaluator) letBindParallel(bindings object.Value) error {
	it, err := object.Iterate(bindings)
	if err != nil {
		return err
	}
	var cells []object.Value
	for it.Next() {
		cell, err := e.letBinding(it.Value())
		if err != nil {
			return err
		}
		cells = append(cells, cell)
	}
	if err := it.Err(); err != nil {
		return err
	}
	e.vars = append(e.vars, cells...)
	return nil
}

// letBinding accepts x, (x) or (x VALUE) and returns a fresh binding cons.
func (e *Evaluator) letBinding(binding object.Value) (object.Value, error) {
	if binding.IsSymbol() {
		return e.arena.Cons(binding, object.NIL), nil
	}
	cons, err := binding.AsCons()
	if err != nil {
		return object.VOID, err
	}
	sym, err := cons.Car().AsSymbol()
	if err != nil {
		return object.VOID, err
	}

	it, err := object.Iterate(cons.Cdr())
	if err != nil {
		return object.VOID, err
	}
	value := object.NIL
	switch n := it.Len(); n {
	case 0:
	case 1:
		it.Next()
		if value, err = e.Eval(it.Value()); err != nil {
			return object.VOID, err
		}
	default:
		return object.VOID, object.NewArgCountError(1, n)
	}
	return e.arena.Cons(object.SymbolValue(sym), value), nil
}

func (e *Evaluator) evalIf(forms object.Value) (object.Value, error) {
	it, err := object.Iterate(forms)
	if err != nil {
		return object.VOID, err
	}
	if !it.Next() {
		return object.VOID, object.NewArgCountError(2, 0)
	}
	condition := it.Value()
	if !it.Next() {
		return object.VOID, object.NewArgCountError(2, 1)
	}
	then := it.Value()

	test, err := e.Eval(condition)
	if err != nil {
		return object.VOID, err
	}
	if test.Truthy() {
		return e.Eval(then)
	}
	return e.implicitProgn(it.Rest())
}

func (e *Evaluator) evalAnd(forms object.Value) (object.Value, error) {
	it, err := object.Iterate(forms)
	if err != nil {
		return object.VOID, err
	}
	last := object.TRUE
	for it.Next() {
		if last, err = e.Eval(it.Value()); err != nil {
			return object.VOID, err
		}
		if last.IsNil() {
			return last, nil
		}
	}
	return last, it.Err()
}

func (e *Evaluator) evalOr(forms object.Value) (object.Value, error) {
	it, err := object.Iterate(forms)
	if err != nil {
		return object.VOID, err
	}
	last := object.NIL
	for it.Next() {
		if last, err = e.Eval(it.Value()); err != nil {
			return object.VOID, err
		}
		if last.Truthy() {
			return last, nil
		}
	}
	return last, it.Err()
}

func (e *Evaluator) evalCond(forms object.Value) (object.Value, error) {
	it, err := object.Iterate(forms)
	if err != nil {
		return object.VOID, err
	}
	for it.Next() {
		clause, err := object.Iterate(it.Value())
		if err != nil {
			return object.VOID, err
		}
		test := object.NIL
		if clause.Next() {
			test = clause.Value()
		}
		last, err := e.Eval(test)
		if err != nil {
			return object.VOID, err
		}
		if last.Truthy() {
			if clause.Empty() {
				return last, nil
			}
			return e.implicitProgn(clause.Rest())
		}
	}
	return object.NIL, it.Err()
}

func (e *Evaluator) evalWhile(forms object.Value) (object.Value, error) {
	it, err := object.Iterate(forms)
	if err != nil {
		return object.VOID, err
	}
	if !it.Next() {
		return object.VOID, object.NewArgCountError(1, 0)
	}
	condition, body := it.Value(), it.Rest()
	for {
		test, err := e.Eval(condition)
		if err != nil {
			return object.VOID, err
		}
		if test.IsNil() {
			return object.NIL, nil
		}
		if _, err := e.implicitProgn(body); err != nil {
			return object.VOID, err
		}
	}
}

func (e *Evaluator) evalProgn(forms object.Value) (object.Value, error) {
	return e.implicitProgn(forms)
}

// evalProgX evaluates every form and returns the value of the nth.
func (e *Evaluator) evalProgX(forms object.Value, n int) (object.Value, error) {
	it, err := object.Iterate(forms)
	if err != nil {
		return object.VOID, err
	}
	count := 0
	result := object.VOID
	for it.Next() {
		v, err := e.Eval(it.Value())
		if err != nil {
			return object.VOID, err
		}
		count++
		if count == n {
			result = v
		}
	}
	if err := it.Err(); err != nil {
		return object.VOID, err
	}
	if count < n {
		return object.VOID, object.NewArgCountError(n, count)
	}
	return result, nil
}

func (e *Evaluator) setq(forms object.Value) (object.Value, error) {
	it, err := object.Iterate(forms)
	if err != nil {
		return object.VOID, err
	}
	count := 0
	last := object.VOID
	for it.Next() {
		target := it.Value()
		if !it.Next() {
			if err := it.Err(); err != nil {
				return object.VOID, err
			}
			return object.VOID, object.NewArgCountError(count, count+1)
		}
		sym, err := setqTarget(target)
		if err != nil {
			return object.VOID, err
		}
		v, err := e.Eval(it.Value())
		if err != nil {
			return object.VOID, err
		}
		if last, err = e.varSet(sym, v); err != nil {
			return object.VOID, err
		}
		count += 2
	}
	if err := it.Err(); err != nil {
		return object.VOID, err
	}
	if count == 0 {
		return object.VOID, object.NewArgCountError(2, 0)
	}
	return last, nil
}

// setqTarget maps the nil and t literals back to their symbols so that
// assigning them reports setting-constant instead of a type error.
func setqTarget(v object.Value) (*object.Symbol, error) {
	switch {
	case v.IsNil():
		return nil, object.NewSettingConstantError(object.NIL_SYM)
	case v.IsTrue():
		return nil, object.NewSettingConstantError(object.T_SYM)
	}
	return v.AsSymbol()
}

// defvar binds globally. Unlike setq it ignores lexical bindings.
func (e *Evaluator) defvar(forms object.Value, constant bool) (object.Value, error) {
	it, err := object.Iterate(forms)
	if err != nil {
		return object.VOID, err
	}
	if !it.Next() {
		return object.VOID, object.NewArgCountError(1, 0)
	}
	sym, err := setqTarget(it.Value())
	if err != nil {
		return object.VOID, err
	}
	value := object.NIL
	if it.Next() {
		if value, err = e.Eval(it.Value()); err != nil {
			return object.VOID, err
		}
	}
	if constant {
		err = e.env.DefConst(sym, value)
	} else {
		err = e.env.DefVar(sym, value)
	}
	if err != nil {
		return object.VOID, err
	}
	return value, nil
}

// evalFunction turns (lambda ARGLIST . BODY) into
// (closure ENV ARGLIST . BODY). ENV shares the binding conses of the
// current lexical stack, outermost first, and ends with t.
func (e *Evaluator) evalFunction(forms object.Value) (object.Value, error) {
	it, err := object.Iterate(forms)
	if err != nil {
		return object.VOID, err
	}
	if n := it.Len(); n != 1 {
		return object.VOID, object.NewArgCountError(1, n)
	}
	it.Next()
	arg := it.Value()

	cons, err := arg.AsCons()
	if err != nil {
		return arg, nil
	}
	if head, err := cons.Car().AsSymbol(); err != nil || head != object.LAMBDA {
		return arg, nil
	}

	env := e.arena.ListWithTail(e.vars, e.arena.List(object.TRUE))
	return e.arena.Cons(object.SymbolValue(object.CLOSURE), e.arena.Cons(env, cons.Cdr())), nil
}
