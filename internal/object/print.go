package object

import (
	"math"
	"strconv"
	"strings"
)

const cycleMarker = "#<cycle>"

// Inspect renders v in reader syntax where one exists.
func (v Value) Inspect() string {
	var p printer
	p.print(v)
	return p.out.String()
}

type printer struct {
	out  strings.Builder
	path map[*Cons]bool
}

func (p *printer) print(v Value) {
	switch v.tag() {
	case tagInt:
		p.out.WriteString(strconv.FormatInt(v.n, 10))
	case tagFloat:
		p.out.WriteString(formatFloat(*v.floatPtr()))
	case tagTrue:
		p.out.WriteString("t")
	case tagNil:
		p.out.WriteString("nil")
	case tagString:
		p.out.WriteString(quoteString(*v.stringPtr()))
	case tagSymbol:
		p.out.WriteString(v.symbolPtr().Inspect())
	case tagCompiled:
		p.out.WriteString("#<bytecode " + v.compiledPtr().Args.String() + ">")
	case tagNative:
		p.out.WriteString(v.nativePtr().Inspect())
	case tagCons:
		p.printCons(v.consPtr())
	default:
		p.out.WriteString("Void")
	}
}

func (p *printer) printCons(c *Cons) {
	if p.path == nil {
		p.path = map[*Cons]bool{}
	}
	if p.path[c] {
		p.out.WriteString(cycleMarker)
		return
	}
	if prefix, ok := readerPrefix(c); ok {
		p.path[c] = true
		p.out.WriteString(prefix)
		p.print(c.cdr.consPtr().car)
		delete(p.path, c)
		return
	}

	var spine []*Cons
	p.out.WriteByte('(')
	cur := c
	for {
		p.path[cur] = true
		spine = append(spine, cur)
		p.print(cur.car)
		next := cur.cdr
		if next.tag() != tagCons {
			if !next.IsNil() {
				p.out.WriteString(" . ")
				p.print(next)
			}
			break
		}
		p.out.WriteByte(' ')
		if p.path[next.consPtr()] {
			p.out.WriteString(". " + cycleMarker)
			break
		}
		cur = next.consPtr()
	}
	p.out.WriteByte(')')
	for _, s := range spine {
		delete(p.path, s)
	}
}

// readerPrefix recognises (quote x) and (function x).
func readerPrefix(c *Cons) (string, bool) {
	if c.car.tag() != tagSymbol || c.cdr.tag() != tagCons || !c.cdr.consPtr().cdr.IsNil() {
		return "", false
	}
	switch c.car.symbolPtr() {
	case QUOTE:
		return "'", true
	case FUNCTION:
		return "#'", true
	}
	return "", false
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "1.0e+INF"
	case math.IsInf(f, -1):
		return "-1.0e+INF"
	case math.IsNaN(f):
		return "0.0e+NaN"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// The mantissa always keeps a fractional digit: 1e+21 prints as 1.0e+21.
	if e := strings.IndexByte(s, 'e'); e >= 0 && !strings.Contains(s[:e], ".") {
		s = s[:e] + ".0" + s[e:]
	}
	return s
}

func quoteString(s string) string {
	var out strings.Builder
	out.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			out.WriteByte('\\')
			out.WriteRune(r)
		default:
			out.WriteRune(r)
		}
	}
	out.WriteByte('"')
	return out.String()
}

// Readable reports whether Inspect output of v reads back as an equal
// value: no functions implemented outside Lisp, no Void and no cycles.
func Readable(v Value) bool {
	return readable(v, map[*Cons]bool{})
}

func readable(v Value, path map[*Cons]bool) bool {
	switch v.tag() {
	case tagCompiled, tagNative, tagVoid:
		return false
	case tagFloat:
		f := *v.floatPtr()
		return !math.IsInf(f, 0) && !math.IsNaN(f)
	case tagCons:
		var spine []*Cons
		defer func() {
			for _, c := range spine {
				delete(path, c)
			}
		}()
		for cur := v; cur.tag() == tagCons; cur = cur.consPtr().cdr {
			c := cur.consPtr()
			if path[c] {
				return false
			}
			path[c] = true
			spine = append(spine, c)
			if !readable(c.car, path) {
				return false
			}
			if next := c.cdr; next.tag() != tagCons && !readable(next, path) {
				return false
			}
		}
	}
	return true
}
