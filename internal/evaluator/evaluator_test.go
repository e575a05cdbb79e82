package evaluator_test

import (
	"bytes"
	"errors"
	"lisp/internal/builtins"
	"lisp/internal/evaluator"
	"lisp/internal/object"
	"lisp/internal/reader"
	"log/slog"
	"strings"
	"testing"
)

func newEnv() *object.Env {
	env := object.NewEnv()
	builtins.Register(env)
	return env
}

func read(t *testing.T, input string, arena *object.Arena) object.Value {
	t.Helper()
	form, _, err := reader.Read(input, arena)
	if err != nil {
		t.Fatalf("read %q: %v", input, err)
	}
	return form
}

func testEval(t *testing.T, input string) (object.Value, error) {
	t.Helper()
	arena := object.NewArena()
	return evaluator.Eval(read(t, input, arena), object.VOID, newEnv(), arena)
}

type evalCase struct {
	input    string
	expected string
}

func runCases(t *testing.T, cases []evalCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			got, err := testEval(t, c.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Inspect() != c.expected {
				t.Errorf("expected %s, got %s", c.expected, got.Inspect())
			}
		})
	}
}

func TestSelfEvaluating(t *testing.T) {
	runCases(t, []evalCase{
		{"1", "1"},
		{"1.5", "1.5"},
		{"nil", "nil"},
		{"t", "t"},
		{`"foo"`, `"foo"`},
		{"'(1 2)", "(1 2)"},
		{":key", ":key"},
	})
}

func TestVariables(t *testing.T) {
	runCases(t, []evalCase{
		{"(let ())", "nil"},
		{"(let (x) x)", "nil"},
		{"(let ((x)) x)", "nil"},
		{"(let ((x 1)) x)", "1"},
		{"(let ((x 1)))", "nil"},
		{"(let ((x 1) (y 2)) x y)", "2"},
		{"(let ((x 1)) (let ((x 3)) x))", "3"},
		{"(let ((x 1)) (let ((y 3)) x))", "1"},
		{"(let ((x 1)) (let ((x 3))) x)", "1"},
		{"(let ((x 1)) (setq x 2) x)", "2"},
		{"(let* ())", "nil"},
		{"(let* ((x 1) (y x)) y)", "1"},
		{"(progn (setq x 1) (let ((x 2) (y x)) y))", "1"},
		{"(progn (setq a 1 b 2) (+ a b))", "3"},
		{"(progn (defvar v 3) v)", "3"},
		{"(progn (defvar v) v)", "nil"},
		{"(progn (defconst c 4) c)", "4"},
		{"(progn (let ((v 1)) (defvar v 5)) v)", "5"},
	})
}

func TestConditionals(t *testing.T) {
	runCases(t, []evalCase{
		{"(if nil 1)", "nil"},
		{"(if t 1)", "1"},
		{"(if nil 1 2)", "2"},
		{"(if t 1 2)", "1"},
		{"(if nil 1 2 3)", "3"},
		{"(and)", "t"},
		{"(and 1)", "1"},
		{"(and 1 2)", "2"},
		{"(and 1 nil)", "nil"},
		{"(and nil 1)", "nil"},
		{"(or)", "nil"},
		{"(or nil)", "nil"},
		{"(or nil 1)", "1"},
		{"(or 1 2)", "1"},
		{"(cond)", "nil"},
		{"(cond nil)", "nil"},
		{"(cond (1))", "1"},
		{"(cond (1 2))", "2"},
		{"(cond (nil 1) (2 3))", "3"},
		{"(cond (nil 1) (2 3) (4 5))", "3"},
	})
}

func TestSpecialForms(t *testing.T) {
	runCases(t, []evalCase{
		{"(prog1 1 2 3)", "1"},
		{"(prog2 1 2 3)", "2"},
		{"(progn 1 2 3 4)", "4"},
		{"(progn)", "nil"},
		{"(function 1)", "1"},
		{"(quote 1)", "1"},
		{"(if 1 2 3)", "2"},
		{"(if nil 2 3)", "3"},
		{"(if (and 1 nil) 2 3)", "3"},
		{"(let ((i 0) (acc nil)) (while (< i 3) (setq acc (cons i acc)) (setq i (1+ i))) acc)", "(2 1 0)"},
		{"(while nil 1)", "nil"},
	})
}

func TestFunctions(t *testing.T) {
	runCases(t, []evalCase{
		{"(function (lambda))", "(closure (t))"},
		{"(function (lambda (x) x))", "(closure (t) (x) x)"},
		{"(let ((y 1)) (function (lambda (x) x)))", "(closure ((y . 1) t) (x) x)"},
		{"(let ((x #'(lambda (x &optional y &rest z) (cons x (cons y z))))) (funcall x 5))", "(5 nil)"},
		{"(let ((x #'(lambda (x &optional y &rest z) (cons x (cons y z))))) (funcall x 5 7))", "(5 7)"},
		{"(let ((x #'(lambda (x &optional y &rest z) (cons x (cons y z))))) (funcall x 5 7 11))", "(5 7 11)"},
		{"(funcall #'(lambda (&rest z) z))", "nil"},
		{"(funcall #'(lambda (a &rest z) z) 1 2 3)", "(2 3)"},
		{"(funcall #'(lambda (x &optional y) y) 1)", "nil"},
		{"(funcall #'(lambda (x &optional y) y) 1 2)", "2"},
		{"(funcall '(lambda (x) (* x 2)) 4)", "8"},
	})
}

func TestCall(t *testing.T) {
	runCases(t, []evalCase{
		{"(let ((x #'(lambda (x) x))) (funcall x 5))", "5"},
		{"(let ((x #'(lambda () 3))) (funcall x))", "3"},
		{"(progn (defalias 'int-test-call #'(lambda (x) (+ x 3))) (int-test-call 7))", "10"},
		{"(let* ((y 7) (x #'(lambda () y))) (funcall x))", "7"},
		{"(let* ((y 7) (x #'(lambda (x) (+ x y)))) (funcall x 3))", "10"},
		{"(progn (setq func (let ((x 3)) #'(lambda (y) (+ y x)))) (funcall func 5))", "8"},
		{"(progn (setq funcs (let ((x 3)) (cons #'(lambda (y) (+ y x)) #'(lambda (y) (- y x))))) (* (funcall (car funcs) 5) (funcall (cdr funcs) 1)))", "-16"},
		// closures share the binding cell
		{"(progn (setq funcs (let ((x 3)) (cons #'(lambda (y) (setq x y)) #'(lambda (y) (+ y x))))) (funcall (car funcs) 5) (funcall (cdr funcs) 4))", "9"},
		// global definitions keep the value they were defined with
		{"(progn (setq func (let ((x 3)) (defalias 'int-test-no-cap #'(lambda (y) (+ y x))) #'(lambda (y) (setq x y)))) (funcall func 4) (int-test-no-cap 5))", "8"},
		{"(progn (defun sq (x) (* x x)) (sq 4))", "16"},
		{"(progn (defun fact (n) (if (<= n 1) 1 (* n (fact (1- n))))) (fact 10))", "3628800"},
		{"(progn (defalias 'square 'sq) (defun sq (x) (* x x)) (square 3))", "9"},
		{"(apply #'+ 1 '(2 3))", "6"},
		{"(eval '(+ 1 2))", "3"},
	})
}

func TestMacros(t *testing.T) {
	runCases(t, []evalCase{
		{"(progn (defmacro my-unless (c a b) (list 'if c b a)) (my-unless nil 1 2))", "1"},
		{"(progn (defmacro q (x) (list 'quote x)) (q (undefined)))", "(undefined)"},
		{"(progn (defmacro inc (v) (list 'setq v (list '1+ v))) (let ((n 1)) (inc n) n))", "2"},
	})
}

func TestErrors(t *testing.T) {
	cases := []struct {
		input string
		err   error
	}{
		{"undefined-var", object.ErrVoidVariable},
		{"(undefined-fn)", object.ErrVoidFunction},
		{"(1 2)", object.ErrInvalidFunction},
		{`("f" 2)`, object.ErrInvalidFunction},
		{"(let ((x 1) (y x)) y)", object.ErrVoidVariable},
		{"(let)", object.ErrArgCount},
		{"(let (1))", object.ErrType},
		{"(let ((x 1 2)))", object.ErrArgCount},
		{"(quote 1 2)", object.ErrArgCount},
		{"(quote)", object.ErrArgCount},
		{"(if)", object.ErrArgCount},
		{"(if t)", object.ErrArgCount},
		{"(while)", object.ErrArgCount},
		{"(prog1)", object.ErrArgCount},
		{"(prog2 1)", object.ErrArgCount},
		{"(setq)", object.ErrArgCount},
		{"(setq x)", object.ErrArgCount},
		{"(setq x 1 y)", object.ErrArgCount},
		{"(setq 1 2)", object.ErrType},
		{"(setq nil 2)", object.ErrSettingConstant},
		{"(progn (defconst c 1) (setq c 2))", object.ErrSettingConstant},
		{"(defvar)", object.ErrArgCount},
		{"(funcall #'(lambda (x) x))", object.ErrArgCount},
		{"(funcall #'(lambda (x) x) 1 2)", object.ErrArgCount},
		{"(funcall #'(lambda (x &optional y) x))", object.ErrArgCount},
		{"(funcall #'(lambda (&rest a b) a))", object.ErrMalformedArgList},
		{"(funcall #'(lambda (1) 1) 1)", object.ErrType},
		{"(funcall '(closure ((x . 1)) () x))", object.ErrMalformedClosureEnvironment},
		{"(funcall '(closure (1 t) () x))", object.ErrMalformedClosureEnvironment},
		{"(funcall 1)", object.ErrInvalidFunction},
		{"(car 1)", object.ErrType},
		{"(car)", object.ErrArgCount},
		{"(setcar '(1 2) 3)", object.ErrNotMutable},
		{"(progn (defmacro m () 1) (funcall 'm))", object.ErrInvalidFunction},
		{"(+ 1 \"a\")", object.ErrType},
	}

	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			got, err := testEval(t, c.input)
			if !errors.Is(err, c.err) {
				t.Errorf("expected %v, got %v (value %s)", c.err, err, got)
			}
		})
	}
}

func TestLetUnwindsOnError(t *testing.T) {
	env := newEnv()
	arena := object.NewArena()
	e := evaluator.New(env, arena)

	if _, err := e.Eval(read(t, "(let ((x 1)) (car 1))", arena)); err == nil {
		t.Fatalf("expected an error")
	}
	if _, err := e.Eval(read(t, "x", arena)); !errors.Is(err, object.ErrVoidVariable) {
		t.Errorf("let binding leaked after error: %v", err)
	}
}

func TestSetqPartialEffects(t *testing.T) {
	env := newEnv()
	arena := object.NewArena()
	e := evaluator.New(env, arena)

	if _, err := e.Eval(read(t, "(setq a 1 b (car 1))", arena)); !errors.Is(err, object.ErrType) {
		t.Fatalf("expected type error, got %v", err)
	}
	if v, ok := env.Var(object.Intern("a")); !ok || !object.Eq(v, object.Int(1)) {
		t.Errorf("first assignment should stay, got %s", v)
	}
	if _, ok := env.Var(object.Intern("b")); ok {
		t.Errorf("second assignment should not happen")
	}
}

func TestEvalLexicalArgument(t *testing.T) {
	env := newEnv()
	arena := object.NewArena()

	for _, lexical := range []object.Value{object.VOID, object.NIL, object.TRUE} {
		if _, err := evaluator.Eval(object.Int(1), lexical, env, arena); err != nil {
			t.Errorf("lexical %s rejected: %v", lexical, err)
		}
	}
	if _, err := evaluator.Eval(object.Int(1), object.Int(2), env, arena); !errors.Is(err, evaluator.ErrLexicalEnvironment) {
		t.Errorf("expected lexical environment error, got %v", err)
	}
}

func TestCallClosure(t *testing.T) {
	env := newEnv()
	arena := object.NewArena()

	closure, err := evaluator.Eval(read(t, "(let ((n 10)) #'(lambda (x) (+ x n)))", arena), object.VOID, env, arena)
	if err != nil {
		t.Fatal(err)
	}
	got, err := evaluator.Call(closure, []object.Value{object.Int(2)}, env, arena)
	if err != nil {
		t.Fatal(err)
	}
	if !object.Eq(got, object.Int(12)) {
		t.Errorf("expected 12, got %s", got)
	}

	if _, err := evaluator.Call(object.Int(1), nil, env, arena); !errors.Is(err, object.ErrType) {
		t.Errorf("expected type error, got %v", err)
	}
	if _, err := evaluator.Call(read(t, "(lambda (x) x)", arena), nil, env, arena); !errors.Is(err, object.ErrType) {
		t.Errorf("expected type error for a bare lambda, got %v", err)
	}
}

func TestLoggerReachesNatives(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	env := newEnv()
	arena := object.NewArena()
	e := evaluator.New(env, arena, evaluator.WithLogger(logger))

	got, err := e.Eval(read(t, "(eval '(car '(1 2)))", arena))
	if err != nil {
		t.Fatal(err)
	}
	if got.Inspect() != "1" {
		t.Errorf("expected 1, got %s", got.Inspect())
	}

	out := buf.String()
	for _, fn := range []string{"function=eval", "function=car"} {
		if !strings.Contains(out, fn) {
			t.Errorf("expected %s in log output %q", fn, out)
		}
	}
}

func TestMaxDepth(t *testing.T) {
	env := newEnv()
	arena := object.NewArena()
	e := evaluator.New(env, arena, evaluator.WithMaxDepth(100))

	_, err := e.Eval(read(t, "(progn (defun forever (n) (forever n)) (forever 1))", arena))
	if !errors.Is(err, evaluator.ErrDepthExceeded) {
		t.Fatalf("expected depth error, got %v", err)
	}
	if env.Depth() != 0 {
		t.Errorf("depth not unwound: %d", env.Depth())
	}

	got, err := e.Eval(read(t, "(progn (defun count (n) (if (= n 0) 0 (1+ (count (1- n))))) (count 5))", arena))
	if err != nil || !object.Eq(got, object.Int(5)) {
		t.Errorf("shallow recursion failed: %s %v", got, err)
	}
}

type constBytecode struct {
	calls int
}

func (b *constBytecode) CallCompiled(fn *object.CompiledFunction, args []object.Value, env *object.Env, arena *object.Arena) (object.Value, error) {
	b.calls++
	return arena.List(append([]object.Value{object.Int(42)}, args...)...), nil
}

func TestCompiledFunctions(t *testing.T) {
	env := newEnv()
	arena := object.NewArena()
	sym := object.Intern("compiled-fn")
	env.SetFunc(sym, env.Arena().Compiled(object.CompiledFunction{Args: object.FnArgs{Required: 1}}))

	if _, err := evaluator.New(env, arena).Eval(read(t, "(compiled-fn 1)", arena)); !errors.Is(err, evaluator.ErrNoBytecode) {
		t.Errorf("expected missing bytecode error, got %v", err)
	}

	bc := &constBytecode{}
	e := evaluator.New(env, arena, evaluator.WithBytecode(bc))
	got, err := e.Eval(read(t, "(compiled-fn (+ 1 2))", arena))
	if err != nil {
		t.Fatal(err)
	}
	if got.Inspect() != "(42 3)" || bc.calls != 1 {
		t.Errorf("unexpected result %s after %d calls", got, bc.calls)
	}
	if _, err := e.Eval(read(t, "(compiled-fn)", arena)); !errors.Is(err, object.ErrArgCount) {
		t.Errorf("expected arity error, got %v", err)
	}
}
