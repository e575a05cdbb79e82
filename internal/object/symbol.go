package object

import (
	"strconv"
	"strings"
	"sync"
)

// Symbol is the canonical record for a name. After interning, symbols are
// compared by pointer identity.
type Symbol struct {
	Name string
	id   uint64
}

func (s *Symbol) ID() uint64 { return s.id }

// IsKeyword reports whether the symbol evaluates to itself.
func (s *Symbol) IsKeyword() bool { return strings.HasPrefix(s.Name, ":") }

func (s *Symbol) Inspect() string { return escapeSymbolName(s.Name) }

func (s *Symbol) String() string { return s.Name }

// SymbolTable interns names. The process-wide table is created on first use
// and never torn down; private tables exist for isolated callers.
type SymbolTable struct {
	mu      sync.Mutex
	symbols map[string]*Symbol
	next    uint64
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: map[string]*Symbol{}}
}

func (t *SymbolTable) Intern(name string) *Symbol {
	t.mu.Lock()
	defer t.mu.Unlock()

	if sym, ok := t.symbols[name]; ok {
		return sym
	}
	t.next++
	sym := &Symbol{Name: name, id: t.next}
	t.symbols[name] = sym
	return sym
}

// Lookup returns the symbol for name without creating it.
func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sym, ok := t.symbols[name]
	return sym, ok
}

func (t *SymbolTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.symbols)
}

var globalSymbols = sync.OnceValue(NewSymbolTable)

// Intern returns the canonical symbol for name in the process-wide table.
func Intern(name string) *Symbol {
	return globalSymbols().Intern(name)
}

// Symbols returns the process-wide table.
func Symbols() *SymbolTable {
	return globalSymbols()
}

// Well-known symbols recognised by the evaluator.
var (
	QUOTE        = Intern("quote")
	FUNCTION     = Intern("function")
	LAMBDA       = Intern("lambda")
	CLOSURE      = Intern("closure")
	MACRO        = Intern("macro")
	LET          = Intern("let")
	LET_STAR     = Intern("let*")
	IF           = Intern("if")
	AND          = Intern("and")
	OR           = Intern("or")
	COND         = Intern("cond")
	WHILE        = Intern("while")
	PROGN        = Intern("progn")
	PROG1        = Intern("prog1")
	PROG2        = Intern("prog2")
	SETQ         = Intern("setq")
	DEFVAR       = Intern("defvar")
	DEFCONST     = Intern("defconst")
	AND_OPTIONAL = Intern("&optional")
	AND_REST     = Intern("&rest")
	NIL_SYM      = Intern("nil")
	T_SYM        = Intern("t")
)

// symbolChar reports whether r can appear unescaped in a printed symbol.
func symbolChar(r rune) bool {
	switch r {
	case '(', ')', '[', ']', '#', ',', '`', ';', '"', '\'', '\\', '.':
		return false
	}
	return r > ' '
}

func escapeSymbolName(name string) string {
	if name == "" {
		return "##"
	}
	var out strings.Builder
	if looksNumeric(name) {
		out.WriteByte('\\')
	}
	for _, r := range name {
		if !symbolChar(r) && !(r == '.' && len(name) > 1) {
			out.WriteByte('\\')
		}
		out.WriteRune(r)
	}
	return out.String()
}

func looksNumeric(name string) bool {
	return IsNumberSyntax(name)
}

// IsNumberSyntax reports whether s reads as an integer or a float. Only
// decimal digits, signs, a point and an exponent are accepted, so names
// like "inf" or "nan" stay symbols.
func IsNumberSyntax(s string) bool {
	digits := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits = true
		case r == '+' || r == '-' || r == '.' || r == 'e' || r == 'E':
		default:
			return false
		}
	}
	if !digits {
		return false
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return true
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
