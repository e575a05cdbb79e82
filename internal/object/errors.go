package object

import "fmt"

type ErrorKind int

const (
	TypeError ErrorKind = iota + 1
	ArgCountError
	VoidVariableError
	VoidFunctionError
	InvalidFunctionError
	MalformedClosureEnvironmentError
	MalformedArgListError
	NotMutableError
	SettingConstantError
)

func (k ErrorKind) String() string {
	switch k {
	case TypeError:
		return "wrong-type-argument"
	case ArgCountError:
		return "wrong-number-of-arguments"
	case VoidVariableError:
		return "void-variable"
	case VoidFunctionError:
		return "void-function"
	case InvalidFunctionError:
		return "invalid-function"
	case MalformedClosureEnvironmentError:
		return "malformed-closure-environment"
	case MalformedArgListError:
		return "malformed-arglist"
	case NotMutableError:
		return "not-mutable"
	case SettingConstantError:
		return "setting-constant"
	default:
		return "error"
	}
}

// Error is the single error type raised by the core. Only the fields that
// belong to Kind are populated.
type Error struct {
	Kind ErrorKind

	Expected ObjectType // TypeError
	Actual   ObjectType // TypeError

	Want int // ArgCountError
	Got  int // ArgCountError

	Symbol *Symbol // VoidVariable, VoidFunction, SettingConstant
	Value  Value   // InvalidFunction, TypeError

	Detail string // malformed forms
}

// Sentinels for errors.Is; Is matches on Kind only.
var (
	ErrType                        = &Error{Kind: TypeError}
	ErrArgCount                    = &Error{Kind: ArgCountError}
	ErrVoidVariable                = &Error{Kind: VoidVariableError}
	ErrVoidFunction                = &Error{Kind: VoidFunctionError}
	ErrInvalidFunction             = &Error{Kind: InvalidFunctionError}
	ErrMalformedClosureEnvironment = &Error{Kind: MalformedClosureEnvironmentError}
	ErrMalformedArgList            = &Error{Kind: MalformedArgListError}
	ErrNotMutable                  = &Error{Kind: NotMutableError}
	ErrSettingConstant             = &Error{Kind: SettingConstantError}
)

func (e *Error) Error() string {
	switch e.Kind {
	case TypeError:
		if e.Value.IsVoid() {
			return fmt.Sprintf("%s: expected %s, got %s", e.Kind, e.Expected, e.Actual)
		}
		return fmt.Sprintf("%s: expected %s, got %s %s", e.Kind, e.Expected, e.Actual, e.Value.Inspect())
	case ArgCountError:
		return fmt.Sprintf("%s: expected %d, got %d", e.Kind, e.Want, e.Got)
	case VoidVariableError, VoidFunctionError, SettingConstantError:
		return fmt.Sprintf("%s: %s", e.Kind, e.Symbol.Name)
	case InvalidFunctionError:
		return fmt.Sprintf("%s: %s", e.Kind, e.Value.Inspect())
	default:
		if e.Detail == "" {
			return e.Kind.String()
		}
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func NewTypeError(expected ObjectType, actual Value) *Error {
	return &Error{Kind: TypeError, Expected: expected, Actual: actual.Type(), Value: actual}
}

func NewArgCountError(want, got int) *Error {
	return &Error{Kind: ArgCountError, Want: want, Got: got}
}

func NewVoidVariableError(sym *Symbol) *Error {
	return &Error{Kind: VoidVariableError, Symbol: sym}
}

func NewVoidFunctionError(sym *Symbol) *Error {
	return &Error{Kind: VoidFunctionError, Symbol: sym}
}

func NewInvalidFunctionError(v Value) *Error {
	return &Error{Kind: InvalidFunctionError, Value: v}
}

func NewSettingConstantError(sym *Symbol) *Error {
	return &Error{Kind: SettingConstantError, Symbol: sym}
}

func NewMalformedClosureError(format string, a ...interface{}) *Error {
	return &Error{Kind: MalformedClosureEnvironmentError, Detail: fmt.Sprintf(format, a...)}
}

func NewMalformedArgListError(format string, a ...interface{}) *Error {
	return &Error{Kind: MalformedArgListError, Detail: fmt.Sprintf(format, a...)}
}

func newNotMutableError(v Value) *Error {
	return &Error{Kind: NotMutableError, Value: v, Detail: v.Inspect()}
}
