package object

// Eq is identity: inline values by payload, symbols and heap values by
// address.
func Eq(a, b Value) bool {
	if a.tag() != b.tag() {
		return false
	}
	switch a.tag() {
	case tagInt:
		return a.n == b.n
	case tagTrue, tagNil, tagVoid:
		return true
	}
	return a.ptr == b.ptr
}

// Equal compares structurally. Numbers and strings compare by value,
// conses element-wise, symbols by identity and functions by their code.
// An int never equals a float.
func Equal(a, b Value) bool {
	return equal(a, b, map[[2]*Cons]bool{})
}

func equal(a, b Value, seen map[[2]*Cons]bool) bool {
	if a.tag() != b.tag() {
		return false
	}
	switch a.tag() {
	case tagFloat:
		return *a.floatPtr() == *b.floatPtr()
	case tagString:
		return *a.stringPtr() == *b.stringPtr()
	case tagCompiled:
		x, y := a.compiledPtr(), b.compiledPtr()
		if x == y {
			return true
		}
		if x.Args != y.Args || string(x.OpCodes) != string(y.OpCodes) || len(x.Constants) != len(y.Constants) {
			return false
		}
		for i := range x.Constants {
			if !equal(x.Constants[i], y.Constants[i], seen) {
				return false
			}
		}
		return true
	case tagNative:
		return a.nativePtr().same(b.nativePtr())
	case tagCons:
		for a.tag() == tagCons && b.tag() == tagCons {
			x, y := a.consPtr(), b.consPtr()
			if x == y {
				return true
			}
			// A pair already under comparison is assumed equal, which
			// terminates on circular structure.
			key := [2]*Cons{x, y}
			if seen[key] {
				return true
			}
			seen[key] = true
			if !equal(x.car, y.car, seen) {
				return false
			}
			a, b = x.cdr, y.cdr
		}
		return equal(a, b, seen)
	}
	return Eq(a, b)
}
