package evaluator

import (
	"context"
	"errors"
	"fmt"
	"lisp/internal/object"
	"log/slog"
	"strings"
)

var (
	// ErrDepthExceeded is returned when evaluation nests deeper than the
	// limit set with WithMaxDepth.
	ErrDepthExceeded = errors.New("max-lisp-eval-depth exceeded")
	// ErrNoBytecode is returned when a compiled function is called and no
	// bytecode executor was installed.
	ErrNoBytecode = errors.New("no bytecode executor for compiled function")
	// ErrLexicalEnvironment rejects a lexical argument to eval other than
	// t or nil.
	ErrLexicalEnvironment = errors.New("lexical environments are not supported")
)

// Evaluator walks forms. vars is the lexical stack: binding conses
// (SYMBOL . VALUE), innermost last.
type Evaluator struct {
	vars   []object.Value
	env    *object.Env
	arena  *object.Arena
	logger *slog.Logger
}

type Option func(*Evaluator)

// WithBytecode installs the executor used for compiled functions.
func WithBytecode(b object.Bytecode) Option {
	return func(e *Evaluator) { e.env.SetBytecode(b) }
}

// WithLogger sets the logger on the environment, so evaluators started by
// natives such as funcall and eval log there too.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		e.env.SetLogger(logger)
		e.logger = logger
	}
}

// WithMaxDepth bounds the nesting of evaluation; 0 means unlimited.
func WithMaxDepth(n int) Option {
	return func(e *Evaluator) { e.env.SetMaxDepth(n) }
}

func New(env *object.Env, arena *object.Arena, opts ...Option) *Evaluator {
	e := &Evaluator{env: env, arena: arena, logger: env.Logger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// frame returns an evaluator sharing e's environment with a fresh
// lexical stack.
func (e *Evaluator) frame(vars []object.Value) *Evaluator {
	return &Evaluator{vars: vars, env: e.env, arena: e.arena, logger: e.logger}
}

// Eval evaluates form with an empty lexical stack. lexical must be t, nil
// or Void (absent).
func Eval(form, lexical object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
	if !lexical.IsTrue() && !lexical.IsNil() && !lexical.IsVoid() {
		return object.VOID, fmt.Errorf("%w: found %s", ErrLexicalEnvironment, lexical.Inspect())
	}
	return New(env, arena).Eval(form)
}

// Call invokes a (closure ENV ARGLIST . BODY) form with evaluated
// arguments.
func Call(closure object.Value, args []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
	return New(env, arena).Call(closure, args)
}

// Funcall invokes anything callable: a symbol with a function cell, a
// native or compiled function, or a closure or lambda form.
func Funcall(fn object.Value, args []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
	return New(env, arena).Funcall(fn, args)
}

func (e *Evaluator) Eval(form object.Value) (object.Value, error) {
	if !e.env.Enter() {
		return object.VOID, ErrDepthExceeded
	}
	defer e.env.Leave()

	switch {
	case form.IsSymbol():
		sym, _ := form.AsSymbol()
		return e.varRef(sym)
	case form.IsCons():
		cons, _ := form.AsCons()
		return e.evalSexp(cons)
	}
	return form, nil
}

func (e *Evaluator) evalSexp(cons *object.Cons) (object.Value, error) {
	forms := cons.Cdr()
	sym, err := cons.Car().AsSymbol()
	if err != nil {
		return object.VOID, object.NewInvalidFunctionError(cons.Car())
	}

	switch sym {
	case object.QUOTE:
		return e.quote(forms)
	case object.LET:
		return e.evalLet(forms, true)
	case object.LET_STAR:
		return e.evalLet(forms, false)
	case object.IF:
		return e.evalIf(forms)
	case object.AND:
		return e.evalAnd(forms)
	case object.OR:
		return e.evalOr(forms)
	case object.COND:
		return e.evalCond(forms)
	case object.WHILE:
		return e.evalWhile(forms)
	case object.PROGN:
		return e.evalProgn(forms)
	case object.PROG1:
		return e.evalProgX(forms, 1)
	case object.PROG2:
		return e.evalProgX(forms, 2)
	case object.SETQ:
		return e.setq(forms)
	case object.DEFVAR:
		return e.defvar(forms, false)
	case object.DEFCONST:
		return e.defvar(forms, true)
	case object.FUNCTION:
		return e.evalFunction(forms)
	default:
		return e.evalCall(sym, forms)
	}
}

func (e *Evaluator) varRef(sym *object.Symbol) (object.Value, error) {
	switch {
	case sym.IsKeyword():
		return object.SymbolValue(sym), nil
	case sym == object.NIL_SYM:
		return object.NIL, nil
	case sym == object.T_SYM:
		return object.TRUE, nil
	}
	if cell, ok := e.lookup(sym); ok {
		return cell.Cdr()
	}
	if v, ok := e.env.Var(sym); ok {
		return v, nil
	}
	return object.VOID, object.NewVoidVariableError(sym)
}

// varSet assigns the innermost lexical binding of sym, or the global one
// when sym is not lexically bound.
func (e *Evaluator) varSet(sym *object.Symbol, v object.Value) (object.Value, error) {
	if cell, ok := e.lookup(sym); ok {
		if err := cell.SetCdr(v); err != nil {
			return object.VOID, err
		}
		return v, nil
	}
	if err := e.env.SetVar(sym, v); err != nil {
		return object.VOID, err
	}
	return v, nil
}

func (e *Evaluator) lookup(sym *object.Symbol) (object.Value, bool) {
	for i := len(e.vars) - 1; i >= 0; i-- {
		cell := e.vars[i]
		car, _ := cell.Car()
		if s, err := car.AsSymbol(); err == nil && s == sym {
			return cell, true
		}
	}
	return object.VOID, false
}

func (e *Evaluator) implicitProgn(forms object.Value) (object.Value, error) {
	it, err := object.Iterate(forms)
	if err != nil {
		return object.VOID, err
	}
	last := object.NIL
	for it.Next() {
		if last, err = e.Eval(it.Value()); err != nil {
			return object.VOID, err
		}
	}
	if err := it.Err(); err != nil {
		return object.VOID, err
	}
	return last, nil
}

func (e *Evaluator) evalArgs(forms object.Value) ([]object.Value, error) {
	it, err := object.Iterate(forms)
	if err != nil {
		return nil, err
	}
	args := make([]object.Value, 0, it.Len())
	for it.Next() {
		v, err := e.Eval(it.Value())
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, it.Err()
}

func (e *Evaluator) debugCall(kind string, name string, args []object.Value) {
	if !e.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	e.logger.Debug("call",
		slog.String("kind", kind),
		slog.String("function", name),
		slog.Any("args", valueList(args)))
}

// valueList renders lazily in log records.
type valueList []object.Value

func (l valueList) LogValue() slog.Value {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.Inspect()
	}
	return slog.StringValue("(" + strings.Join(parts, " ") + ")")
}
