package builtins

import (
	"lisp/internal/object"
	"log/slog"
	"sort"
)

var builtins = map[string]object.NativeFunction{
	// lists
	"cons":   funcCons(),
	"car":    funcCar(),
	"cdr":    funcCdr(),
	"setcar": funcSetCar(),
	"setcdr": funcSetCdr(),
	"list":   funcList(),
	"length": funcLength(),
	"nth":    funcNth(),

	// predicates
	"null":  funcNull(),
	"not":   funcNull(),
	"eq":    funcEq(),
	"equal": funcEqual(),

	// functions and symbols
	"funcall":         funcFuncall(),
	"apply":           funcApply(),
	"eval":            funcEval(),
	"identity":        funcIdentity(),
	"defalias":        funcDefalias(),
	"fset":            funcDefalias(),
	"symbol-function": funcSymbolFunction(),
	"symbol-value":    funcSymbolValue(),
	"set":             funcSet(),
	"boundp":          funcBoundp(),
	"fboundp":         funcFboundp(),
	"intern":          funcIntern(),

	// arithmetic
	"+":  funcAdd(),
	"-":  funcSub(),
	"*":  funcMul(),
	"/":  funcDiv(),
	"1+": funcAdd1(),
	"1-": funcSub1(),
	"<":  funcCompare(func(c int) bool { return c < 0 }),
	">":  funcCompare(func(c int) bool { return c > 0 }),
	"<=": funcCompare(func(c int) bool { return c <= 0 }),
	">=": funcCompare(func(c int) bool { return c >= 0 }),
	"=":  funcCompare(func(c int) bool { return c == 0 }),
}

// macros are installed as (macro . #<subr NAME>).
var macros = map[string]object.NativeFunction{
	"defun":    macroDefun(),
	"defmacro": macroDefmacro(),
}

// Register installs the native library into the function cells of env.
func Register(env *object.Env) {
	arena := env.Arena()
	for _, name := range sortedNames(builtins) {
		fn := builtins[name]
		fn.Name = name
		env.SetFunc(object.Intern(name), arena.Native(fn))
	}
	for _, name := range sortedNames(macros) {
		fn := macros[name]
		fn.Name = name
		env.SetFunc(object.Intern(name), arena.Cons(object.SymbolValue(object.MACRO), arena.Native(fn)))
	}
	slog.Debug("builtins registered",
		slog.Uint64("env", env.ID),
		slog.Int("functions", len(builtins)),
		slog.Int("macros", len(macros)))
}

// Names lists every registered function and macro name.
func Names() []string {
	names := append(sortedNames(builtins), sortedNames(macros)...)
	sort.Strings(names)
	return names
}

func sortedNames(m map[string]object.NativeFunction) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func args(required, optional int, rest bool) object.FnArgs {
	return object.FnArgs{Required: uint16(required), Optional: uint16(optional), Rest: rest}
}
