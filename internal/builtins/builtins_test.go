package builtins

import (
	"errors"
	"lisp/internal/evaluator"
	"lisp/internal/object"
	"lisp/internal/reader"
	"testing"
)

func evalString(t *testing.T, input string) (object.Value, error) {
	t.Helper()
	env := object.NewEnv()
	Register(env)
	arena := object.NewArena()
	forms, err := reader.ReadAll(input, arena)
	if err != nil {
		t.Fatalf("read %q: %v", input, err)
	}
	e := evaluator.New(env, arena)
	result := object.NIL
	for _, form := range forms {
		if result, err = e.Eval(form); err != nil {
			return object.VOID, err
		}
	}
	return result, nil
}

func TestBuiltins(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"(cons 1 2)", "(1 . 2)"},
		{"(car '(1 2))", "1"},
		{"(cdr '(1 2))", "(2)"},
		{"(car nil)", "nil"},
		{"(cdr nil)", "nil"},
		{"(list)", "nil"},
		{"(list 1 (list 2) \"x\")", "(1 (2) \"x\")"},
		{"(let ((c (cons 1 2))) (setcar c 3) c)", "(3 . 2)"},
		{"(let ((c (list 1 2))) (setcdr c 5) c)", "(1 . 5)"},
		{"(length '(1 2 3))", "3"},
		{"(length nil)", "0"},
		{"(length \"héllo\")", "5"},
		{"(nth 1 '(a b c))", "b"},
		{"(nth 5 '(a b c))", "nil"},
		{"(null nil)", "t"},
		{"(not 1)", "nil"},
		{"(eq 'a 'a)", "t"},
		{"(eq \"a\" \"a\")", "nil"},
		{"(equal \"a\" \"a\")", "t"},
		{"(equal '(1 (2)) (list 1 (list 2)))", "t"},
		{"(funcall #'car '(1))", "1"},
		{"(funcall 'list 1 2)", "(1 2)"},
		{"(apply #'list 1 2 '(3 4))", "(1 2 3 4)"},
		{"(apply '(+ 1 2))", "3"},
		{"(eval '(if t 1 2))", "1"},
		{"(eval ''x t)", "x"},
		{"(identity 'x)", "x"},
		{"(defalias 'head #'car)", "head"},
		{"(progn (defalias 'head #'car) (head '(9)))", "9"},
		{"(progn (fset 'twice #'(lambda (x) (* 2 x))) (twice 4))", "8"},
		{"(symbol-function 'undefined-fn)", "nil"},
		{"(progn (defun f () 1) (car (symbol-function 'f)))", "closure"},
		{"(symbol-value :k)", ":k"},
		{"(progn (set 'sv 3) (symbol-value 'sv))", "3"},
		{"(boundp 'unbound-var)", "nil"},
		{"(progn (setq bound-var 1) (boundp 'bound-var))", "t"},
		{"(boundp nil)", "t"},
		{"(fboundp 'car)", "t"},
		{"(fboundp 'no-such-function)", "nil"},
		{"(intern \"abc\")", "abc"},
		{"(eq (intern \"abc\") 'abc)", "t"},
		{"(intern \"nil\")", "nil"},
		{"(+)", "0"},
		{"(+ 1 2 3)", "6"},
		{"(+ 1 2.5)", "3.5"},
		{"(- 5)", "-5"},
		{"(- 10 1 2)", "7"},
		{"(*)", "1"},
		{"(* 2 3.0)", "6.0"},
		{"(/ 7 2)", "3"},
		{"(/ 7.0 2)", "3.5"},
		{"(/ 2)", "0"},
		{"(/ 2.0)", "0.5"},
		{"(1+ 1)", "2"},
		{"(1- 1.5)", "0.5"},
		{"(< 1 2 3)", "t"},
		{"(< 1 3 2)", "nil"},
		{"(> 3 2.5)", "t"},
		{"(<= 2 2)", "t"},
		{"(>= 1 2)", "nil"},
		{"(= 1 1.0)", "t"},
		{"(= 1)", "t"},
	}

	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			got, err := evalString(t, c.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Inspect() != c.expected {
				t.Errorf("expected %s, got %s", c.expected, got.Inspect())
			}
		})
	}
}

func TestBuiltinErrors(t *testing.T) {
	cases := []struct {
		input string
		err   error
	}{
		{"(/ 1 0)", ErrArith},
		{"(+ 'a)", object.ErrType},
		{"(< 1 'a)", object.ErrType},
		{"(cons 1)", object.ErrArgCount},
		{"(cons 1 2 3)", object.ErrArgCount},
		{"(car 'a)", object.ErrType},
		{"(length '(1 . 2))", object.ErrType},
		{"(nth 'a '(1))", object.ErrType},
		{"(symbol-value 'unbound-var)", object.ErrVoidVariable},
		{"(set nil 1)", object.ErrSettingConstant},
		{"(defalias 1 2)", object.ErrType},
		{"(apply #'+ 1 2)", object.ErrType},
		{"(apply nil)", object.ErrVoidFunction},
		{"(funcall nil)", object.ErrVoidFunction},
		{"(eval 1 2)", evaluator.ErrLexicalEnvironment},
		{"(intern 1)", object.ErrType},
		{"(defun 1 ())", object.ErrType},
		{"(defun f 1)", object.ErrType},
	}

	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			_, err := evalString(t, c.input)
			if !errors.Is(err, c.err) {
				t.Errorf("expected %v, got %v", c.err, err)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	env := object.NewEnv()
	Register(env)

	for _, name := range Names() {
		fn, err := env.ResolveCallable(object.Intern(name))
		if err != nil {
			t.Errorf("%s not registered: %v", name, err)
			continue
		}
		if _, isMacro := macros[name]; isMacro {
			if fn.Kind != object.MacroCallable {
				t.Errorf("%s should be a macro, got %s", name, fn.Kind)
			}
			continue
		}
		if fn.Kind != object.NativeCallable || fn.Native.Name != name {
			t.Errorf("%s resolved to %s %+v", name, fn.Kind, fn.Native)
		}
	}
}

func TestDefaliasSnapshot(t *testing.T) {
	got, err := evalString(t, `
(setq setter (let ((x 1))
               (defun get-x () x)
               #'(lambda (v) (setq x v))))
(funcall setter 100)
(get-x)`)
	if err != nil {
		t.Fatal(err)
	}
	if !object.Eq(got, object.Int(1)) {
		t.Errorf("global function observed a later assignment: %s", got)
	}
}
