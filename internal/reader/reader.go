package reader

import (
	"errors"
	"fmt"
	"lisp/internal/object"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	ErrEOF                = errors.New("end of input")
	ErrUnbalanced         = errors.New("unbalanced parentheses")
	ErrUnterminatedString = errors.New("unterminated string")
	ErrInvalidSyntax      = errors.New("invalid read syntax")
)

// SyntaxError locates a read failure in the source text.
type SyntaxError struct {
	Pos    int
	Err    error
	Detail string
}

func (e *SyntaxError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s at offset %d", e.Err, e.Pos)
	}
	return fmt.Sprintf("%s at offset %d: %s", e.Err, e.Pos, e.Detail)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

type Reader struct {
	input        string
	position     int  // byte offset of ch
	readPosition int  // byte offset of the rune after ch
	ch           rune // current rune; only meaningful when !eof()
	arena        *object.Arena
}

func New(input string, arena *object.Arena) *Reader {
	r := &Reader{input: input, arena: arena}
	r.readChar()
	return r
}

// Read parses the first form of text into arena and returns it together
// with the number of bytes consumed. Conses and strings in the result are
// read-only literals. Input holding no form yields ErrEOF.
func Read(text string, arena *object.Arena) (object.Value, int, error) {
	r := New(text, arena)
	v, err := r.Next()
	return v, r.Offset(), err
}

// ReadAll parses every form in text.
func ReadAll(text string, arena *object.Arena) ([]object.Value, error) {
	r := New(text, arena)
	var forms []object.Value
	for {
		v, err := r.Next()
		if err == ErrEOF {
			return forms, nil
		}
		if err != nil {
			return forms, err
		}
		forms = append(forms, v)
	}
}

// Offset is the byte offset of the first unread rune.
func (r *Reader) Offset() int { return r.position }

// Next reads the following form.
func (r *Reader) Next() (object.Value, error) {
	r.skipWhitespace()
	if r.eof() {
		return object.VOID, ErrEOF
	}

	start := r.position
	switch r.ch {
	case '(':
		r.readChar()
		return r.readList(start)
	case ')':
		r.readChar()
		return object.VOID, r.errorf(start, ErrUnbalanced, "unexpected )")
	case '\'':
		r.readChar()
		return r.readPrefixed(start, object.QUOTE)
	case '#':
		if r.peekChar() == '\'' {
			r.readChar()
			r.readChar()
			return r.readPrefixed(start, object.FUNCTION)
		}
		return object.VOID, r.errorf(start, ErrInvalidSyntax, "#")
	case '"':
		r.readChar()
		return r.readString(start)
	}
	if !symbolChar(r.ch) && r.ch != '\\' {
		ch := r.ch
		r.readChar()
		return object.VOID, r.errorf(start, ErrInvalidSyntax, "%q", ch)
	}
	return r.readAtom(start)
}

func (r *Reader) readPrefixed(start int, sym *object.Symbol) (object.Value, error) {
	v, err := r.Next()
	if errors.Is(err, ErrEOF) {
		return object.VOID, r.errorf(start, ErrEOF, "nothing after %s", sym.Name)
	}
	if err != nil {
		return object.VOID, err
	}
	return r.literal(r.arena.List(object.SymbolValue(sym), v)), nil
}

func (r *Reader) readList(start int) (object.Value, error) {
	var elems []object.Value
	for {
		r.skipWhitespace()
		if r.eof() {
			return object.VOID, r.errorf(start, ErrUnbalanced, "missing )")
		}
		switch {
		case r.ch == ')':
			r.readChar()
			return r.literal(r.arena.List(elems...)), nil
		case r.ch == '.' && delimiter(r.peekChar()):
			dot := r.position
			r.readChar()
			if len(elems) == 0 {
				return object.VOID, r.errorf(dot, ErrInvalidSyntax, "nothing before .")
			}
			tail, err := r.Next()
			if errors.Is(err, ErrEOF) {
				return object.VOID, r.errorf(start, ErrUnbalanced, "missing )")
			}
			if err != nil {
				return object.VOID, err
			}
			r.skipWhitespace()
			if r.eof() {
				return object.VOID, r.errorf(start, ErrUnbalanced, "missing )")
			}
			if r.ch != ')' {
				return object.VOID, r.errorf(r.position, ErrInvalidSyntax, "more than one form after .")
			}
			r.readChar()
			return r.literal(r.arena.ListWithTail(elems, tail)), nil
		}
		v, err := r.Next()
		if err != nil {
			return object.VOID, err
		}
		elems = append(elems, v)
	}
}

func (r *Reader) readString(start int) (object.Value, error) {
	var out strings.Builder
	for !r.eof() {
		ch := r.ch
		r.readChar()
		switch ch {
		case '"':
			return r.literal(r.arena.String(out.String())), nil
		case '\\':
			if r.eof() {
				break
			}
			switch r.ch {
			case 'n':
				out.WriteByte('\n')
			case 't':
				out.WriteByte('\t')
			case 'r':
				out.WriteByte('\r')
			case '\n':
				// escaped newline continues the string
			default:
				out.WriteRune(r.ch)
			}
			r.readChar()
		default:
			out.WriteRune(ch)
		}
	}
	return object.VOID, r.errorf(start, ErrUnterminatedString, "")
}

// readAtom reads a number or a symbol. Escaped characters always make a
// symbol: \1 is the symbol named "1".
func (r *Reader) readAtom(start int) (object.Value, error) {
	var name strings.Builder
	escaped := false
	for !r.eof() {
		if r.ch == '\\' {
			r.readChar()
			if r.eof() {
				return object.VOID, r.errorf(start, ErrEOF, "after \\")
			}
			escaped = true
			name.WriteRune(r.ch)
			r.readChar()
			continue
		}
		if !symbolChar(r.ch) {
			break
		}
		name.WriteRune(r.ch)
		r.readChar()
	}

	text := name.String()
	if !escaped {
		if text == "." {
			return object.VOID, r.errorf(start, ErrInvalidSyntax, ".")
		}
		if object.IsNumberSyntax(text) {
			if i, err := strconv.ParseInt(text, 10, 64); err == nil {
				return object.Int(i), nil
			}
			f, _ := strconv.ParseFloat(text, 64)
			return r.literal(r.arena.Float(f)), nil
		}
		switch text {
		case "nil":
			return object.NIL, nil
		case "t":
			return object.TRUE, nil
		}
	}
	return object.SymbolValue(object.Intern(text)), nil
}

func (r *Reader) literal(v object.Value) object.Value {
	return v.ReadOnly()
}

func (r *Reader) skipWhitespace() {
	for !r.eof() {
		switch {
		case r.ch == ';':
			for !r.eof() && r.ch != '\n' {
				r.readChar()
			}
		case r.ch <= ' ':
			r.readChar()
		default:
			return
		}
	}
}

func (r *Reader) eof() bool {
	return r.position >= len(r.input)
}

// readChar advances by one UTF-8 rune.
func (r *Reader) readChar() {
	if r.readPosition >= len(r.input) {
		r.ch = 0
		r.position = len(r.input)
		r.readPosition = len(r.input)
		return
	}
	ch, size := utf8.DecodeRuneInString(r.input[r.readPosition:])
	r.ch = ch
	r.position = r.readPosition
	r.readPosition += size
}

// peekChar returns the rune after ch, or 0 at the end of input.
func (r *Reader) peekChar() rune {
	if r.readPosition >= len(r.input) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(r.input[r.readPosition:])
	return ch
}

func (r *Reader) errorf(pos int, err error, format string, a ...any) error {
	return &SyntaxError{Pos: pos, Err: err, Detail: fmt.Sprintf(format, a...)}
}

func symbolChar(ch rune) bool {
	switch ch {
	case '(', ')', '[', ']', '#', ',', '`', ';', '"', '\'', '\\':
		return false
	}
	return ch > ' '
}

func delimiter(ch rune) bool {
	return ch <= ' ' || ch == '(' || ch == ')' || ch == '"' || ch == ';' || ch == '\''
}
