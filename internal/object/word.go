package object

import "unsafe"

// tag is the discriminant stored in the low nibble of a Value header.
type tag uint8

const (
	tagVoid tag = iota
	tagInt
	tagFloat
	tagTrue
	tagNil
	tagCons
	tagString
	tagSymbol
	tagCompiled
	tagNative
)

const (
	tagMask     uint8 = 0x0f
	readOnlyBit uint8 = 0x10
)

// Value is a Lisp datum. The header byte holds the tag and the read-only
// flag; Int keeps its payload in n and every pointer-bearing variant keeps
// an arena (or symbol table) address in ptr. The zero Value is Void.
//
// This file is the only place that packs or unpacks a Value.
type Value struct {
	ptr unsafe.Pointer
	n   int64
	hdr uint8
}

func inline(t tag) Value {
	return Value{hdr: uint8(t)}
}

func fromPtr[T any](p *T, t tag) Value {
	return Value{ptr: unsafe.Pointer(p), hdr: uint8(t)}
}

func (v Value) tag() tag {
	return tag(v.hdr & tagMask)
}

func (v Value) readOnly() bool {
	return v.hdr&readOnlyBit != 0
}

func (v Value) withReadOnly() Value {
	if v.ptr == nil {
		return v
	}
	v.hdr |= readOnlyBit
	return v
}

func (v Value) consPtr() *Cons                 { return (*Cons)(v.ptr) }
func (v Value) floatPtr() *float64             { return (*float64)(v.ptr) }
func (v Value) stringPtr() *string             { return (*string)(v.ptr) }
func (v Value) symbolPtr() *Symbol             { return (*Symbol)(v.ptr) }
func (v Value) compiledPtr() *CompiledFunction { return (*CompiledFunction)(v.ptr) }
func (v Value) nativePtr() *NativeFunction     { return (*NativeFunction)(v.ptr) }

// address is used for identity comparisons and arena ownership checks.
func (v Value) address() uintptr {
	return uintptr(v.ptr)
}
