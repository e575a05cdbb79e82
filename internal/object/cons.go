package object

// Cons is a pair. Lists are chains of conses ending in nil.
type Cons struct {
	car Value
	cdr Value
}

func (c *Cons) Car() Value { return c.car }
func (c *Cons) Cdr() Value { return c.cdr }

// MutableCons is the writable view of a cons, only handed out for values
// that do not carry the read-only flag.
type MutableCons struct {
	c *Cons
}

func (m MutableCons) Cons() *Cons    { return m.c }
func (m MutableCons) Car() Value     { return m.c.car }
func (m MutableCons) Cdr() Value     { return m.c.cdr }
func (m MutableCons) SetCar(v Value) { m.c.car = v }
func (m MutableCons) SetCdr(v Value) { m.c.cdr = v }

// MutCons returns a writable view of a cons value.
func (v Value) MutCons() (MutableCons, error) {
	if v.tag() != tagCons {
		return MutableCons{}, NewTypeError(CONS_OBJ, v)
	}
	if v.readOnly() {
		return MutableCons{}, newNotMutableError(v)
	}
	return MutableCons{c: v.consPtr()}, nil
}

func (v Value) SetCar(x Value) error {
	m, err := v.MutCons()
	if err != nil {
		return err
	}
	m.SetCar(x)
	return nil
}

func (v Value) SetCdr(x Value) error {
	m, err := v.MutCons()
	if err != nil {
		return err
	}
	m.SetCdr(x)
	return nil
}

// Car of nil is nil; anything else that is not a cons is a type error.
func (v Value) Car() (Value, error) {
	switch v.tag() {
	case tagCons:
		return v.consPtr().car, nil
	case tagNil:
		return NIL, nil
	}
	return VOID, NewTypeError(LIST_OBJ, v)
}

func (v Value) Cdr() (Value, error) {
	switch v.tag() {
	case tagCons:
		return v.consPtr().cdr, nil
	case tagNil:
		return NIL, nil
	}
	return VOID, NewTypeError(LIST_OBJ, v)
}

// ListIter walks the elements of a list. An improper tail stops the walk
// and is reported by Err.
type ListIter struct {
	rest Value
	cur  Value
	err  error
}

// Iterate starts a walk over v, which must be a cons or nil.
func Iterate(v Value) (ListIter, error) {
	if !v.IsList() {
		return ListIter{}, NewTypeError(LIST_OBJ, v)
	}
	return ListIter{rest: v}, nil
}

func (it *ListIter) Next() bool {
	if it.err != nil {
		return false
	}
	switch it.rest.tag() {
	case tagCons:
		c := it.rest.consPtr()
		it.cur = c.car
		it.rest = c.cdr
		return true
	case tagNil:
		return false
	default:
		it.err = NewTypeError(LIST_OBJ, it.rest)
		return false
	}
}

func (it *ListIter) Value() Value { return it.cur }

// Rest is the unvisited remainder of the list.
func (it *ListIter) Rest() Value { return it.rest }

func (it *ListIter) Err() error { return it.err }

// Empty reports whether no elements remain.
func (it *ListIter) Empty() bool { return !it.rest.IsCons() }

// Len counts the remaining elements without consuming the iterator.
func (it *ListIter) Len() int {
	n := 0
	for v := it.rest; v.IsCons(); v = v.consPtr().cdr {
		n++
	}
	return n
}

// ToSlice collects a proper list.
func ToSlice(v Value) ([]Value, error) {
	it, err := Iterate(v)
	if err != nil {
		return nil, err
	}
	var out []Value
	for it.Next() {
		out = append(out, it.Value())
	}
	return out, it.Err()
}

// IsProperList reports whether v is a nil-terminated chain of conses.
// Circular lists are not proper.
func IsProperList(v Value) bool {
	slow := v
	for v.IsCons() {
		v = v.consPtr().cdr
		if !v.IsCons() {
			break
		}
		v = v.consPtr().cdr
		slow = slow.consPtr().cdr
		if v.IsCons() && v.consPtr() == slow.consPtr() {
			return false
		}
	}
	return v.IsNil()
}

// List builds a fresh proper list.
func (a *Arena) List(elems ...Value) Value {
	return a.ListWithTail(elems, NIL)
}

// ListWithTail builds a list whose last cdr is tail.
func (a *Arena) ListWithTail(elems []Value, tail Value) Value {
	out := tail
	for i := len(elems) - 1; i >= 0; i-- {
		out = a.Cons(elems[i], out)
	}
	return out
}
