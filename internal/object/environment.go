package object

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

var nextEnvID atomic.Uint64

// Binding is a global variable slot.
type Binding struct {
	Value    Value
	Constant bool // defconst; setq fails
	Special  bool // introduced by defvar or defconst
}

// Env is the global binding store: variable and function cells keyed by
// symbol identity. Lexical bindings never live here.
//
// mu guards the cells only. The evaluation settings (bytecode, logger,
// depth limit) are set before evaluation starts, and depth is owned by the
// one evaluation running on the Env at a time.
type Env struct {
	ID uint64

	vars  map[*Symbol]*Binding
	funcs map[*Symbol]Value

	// arena holds values baked into function cells; it lives as long as
	// the Env.
	arena    *Arena
	bytecode Bytecode
	logger   *slog.Logger

	maxDepth int
	depth    int

	mu sync.RWMutex
}

func NewEnv() *Env {
	return &Env{
		ID:    nextEnvID.Add(1),
		vars:  make(map[*Symbol]*Binding),
		funcs: make(map[*Symbol]Value),
		arena: NewArena(),
	}
}

// Arena returns the arena owned by the environment.
func (e *Env) Arena() *Arena { return e.arena }

// Var returns the global value of sym.
func (e *Env) Var(sym *Symbol) (Value, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.vars[sym]
	if !ok {
		return VOID, false
	}
	return b.Value, true
}

// Binding returns a copy of the global binding record of sym.
func (e *Env) Binding(sym *Symbol) (Binding, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.vars[sym]
	if !ok {
		return Binding{}, false
	}
	return *b, true
}

// SetVar assigns the global value of sym, creating the binding if needed.
func (e *Env) SetVar(sym *Symbol, v Value) error {
	if sym == NIL_SYM || sym == T_SYM || sym.IsKeyword() {
		return NewSettingConstantError(sym)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.vars[sym]
	if !ok {
		e.vars[sym] = &Binding{Value: v}
		return nil
	}
	if b.Constant {
		return NewSettingConstantError(sym)
	}
	b.Value = v
	return nil
}

// DefVar binds sym globally and marks it special.
func (e *Env) DefVar(sym *Symbol, v Value) error {
	return e.define(sym, v, false)
}

// DefConst binds sym globally as a constant. Redefining a constant with
// defconst is allowed; assigning it with setq is not.
func (e *Env) DefConst(sym *Symbol, v Value) error {
	return e.define(sym, v, true)
}

func (e *Env) define(sym *Symbol, v Value, constant bool) error {
	if sym == NIL_SYM || sym == T_SYM || sym.IsKeyword() {
		return NewSettingConstantError(sym)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.vars[sym] = &Binding{Value: v, Constant: constant, Special: true}
	slog.Debug("global defined",
		slog.String("symbol", sym.Name),
		slog.Bool("constant", constant))
	return nil
}

// Unbind removes the global value of sym.
func (e *Env) Unbind(sym *Symbol) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.vars, sym)
}

// SetFunc installs v in the function cell of sym. Setting nil clears it.
func (e *Env) SetFunc(sym *Symbol, v Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v.IsNil() {
		delete(e.funcs, sym)
		return
	}
	e.funcs[sym] = v
}

// Func returns the raw function cell of sym.
func (e *Env) Func(sym *Symbol) (Value, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.funcs[sym]
	return v, ok
}

// Vars returns a snapshot of the global variable bindings.
func (e *Env) Vars() map[*Symbol]Binding {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[*Symbol]Binding, len(e.vars))
	for sym, b := range e.vars {
		out[sym] = *b
	}
	return out
}

// Funcs returns a snapshot of the function cells.
func (e *Env) Funcs() map[*Symbol]Value {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[*Symbol]Value, len(e.funcs))
	for sym, v := range e.funcs {
		out[sym] = v
	}
	return out
}

func (e *Env) SetBytecode(b Bytecode) { e.bytecode = b }

func (e *Env) Bytecode() Bytecode { return e.bytecode }

// SetLogger sets the logger of every evaluator working on the Env.
func (e *Env) SetLogger(l *slog.Logger) { e.logger = l }

// Logger falls back to the default logger when none was set.
func (e *Env) Logger() *slog.Logger {
	if e.logger == nil {
		return slog.Default()
	}
	return e.logger
}

// SetMaxDepth limits the nesting of evaluation; 0 disables the limit.
func (e *Env) SetMaxDepth(n int) { e.maxDepth = n }

func (e *Env) MaxDepth() int { return e.maxDepth }

// Enter records one more level of evaluation and reports whether the
// limit still holds. Every successful Enter must be paired with Leave.
func (e *Env) Enter() bool {
	if e.maxDepth > 0 && e.depth >= e.maxDepth {
		return false
	}
	e.depth++
	return true
}

func (e *Env) Leave() { e.depth-- }

func (e *Env) Depth() int { return e.depth }

type CallableKind int

const (
	CompiledCallable CallableKind = iota + 1
	NativeCallable
	MacroCallable
	UncompiledCallable
)

func (k CallableKind) String() string {
	switch k {
	case CompiledCallable:
		return "compiled"
	case NativeCallable:
		return "native"
	case MacroCallable:
		return "macro"
	case UncompiledCallable:
		return "uncompiled"
	}
	return "unknown"
}

// Callable is a resolved function cell. Symbol is the last symbol of the
// alias chain. For macros Form is the expander (anything callable); for
// uncompiled functions it is the (closure ...) or (lambda ...) form.
type Callable struct {
	Kind     CallableKind
	Symbol   *Symbol
	Compiled *CompiledFunction
	Native   *NativeFunction
	Form     Value
}

// ResolveCallable follows the function cell of sym through symbol aliases
// and classifies what it finds.
func (e *Env) ResolveCallable(sym *Symbol) (Callable, error) {
	seen := map[*Symbol]bool{}
	for {
		if seen[sym] {
			return Callable{}, NewInvalidFunctionError(SymbolValue(sym))
		}
		seen[sym] = true

		cell, ok := e.Func(sym)
		if !ok || cell.IsNil() {
			return Callable{}, NewVoidFunctionError(sym)
		}
		if cell.IsSymbol() {
			sym = cell.symbolPtr()
			continue
		}
		return classify(sym, cell)
	}
}

func classify(sym *Symbol, cell Value) (Callable, error) {
	switch cell.tag() {
	case tagCompiled:
		return Callable{Kind: CompiledCallable, Symbol: sym, Compiled: cell.compiledPtr(), Form: cell}, nil
	case tagNative:
		return Callable{Kind: NativeCallable, Symbol: sym, Native: cell.nativePtr(), Form: cell}, nil
	case tagCons:
		c := cell.consPtr()
		if c.car.IsSymbol() {
			switch c.car.symbolPtr() {
			case MACRO:
				return Callable{Kind: MacroCallable, Symbol: sym, Form: c.cdr}, nil
			case CLOSURE, LAMBDA:
				return Callable{Kind: UncompiledCallable, Symbol: sym, Form: cell}, nil
			}
		}
	}
	return Callable{}, NewInvalidFunctionError(cell)
}
