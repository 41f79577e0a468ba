// Package binary implements the serde visitor over a custom binary format.
//
// A document is a string table plus a contiguous element stream. Every
// element starts with a fixed 6-byte header carrying its type, the string
// table index of its name, and the byte count of its payload; adding the
// payload size to the end of the header yields the next element. Arrays
// prefix their body with a 4-byte header carrying the inner type and the
// element count.
//
// Layout (EH = element header, AH = array header):
// - scalar elements: EH|data
// - arrays: EH|AH|data
//
// Writing the same name twice in a scope retags the earlier element as Null;
// closing the writer compacts the stream so a finalized document carries no
// Null element. Integers on the wire are host-endian.
package binary

import (
	"encoding/binary"
	"fmt"
)

type elementType uint8

const (
	typeInt elementType = iota
	typeUint
	typeFloat
	typeBool
	typeString
	typeObject
	typeArray

	// typeNull marks an element that was overridden, or an array of opaque
	// bytes that the caller understands. A finalized stream never contains a
	// Null-typed element.
	typeNull
)

const (
	headerSize      = 6
	arrayHeaderSize = 4

	maxNameIndex = 8191
	maxArrayLen  = 1<<29 - 1

	initialBufferSize = 4096
	growthFactor      = 2
)

func (t elementType) isNumeric() bool {
	return t <= typeBool
}

// putHeader writes an element header at the start of b.
func putHeader(b []byte, typ elementType, name int, size int) {
	binary.NativeEndian.PutUint16(b, uint16(typ)&0x7|uint16(name)<<3)
	binary.NativeEndian.PutUint32(b[2:], uint32(size))
}

// header reads the element header at the start of b.
func header(b []byte) (typ elementType, name int, size int) {
	bits := binary.NativeEndian.Uint16(b)
	size32 := binary.NativeEndian.Uint32(b[2:])

	return elementType(bits & 0x7), int(bits >> 3), int(size32)
}

// retagNull rewrites only the type field of the element header at the start
// of b, so that walkers still stride past the payload.
func retagNull(b []byte) {
	bits := binary.NativeEndian.Uint16(b)
	binary.NativeEndian.PutUint16(b, bits&^0x7|uint16(typeNull))
}

// putArrayHeader writes an array header at the start of b.
func putArrayHeader(b []byte, inner elementType, count int) {
	if count > maxArrayLen {
		panic(fmt.Sprintf("binary: array of %d elements exceeds the maximum of %d", count, maxArrayLen))
	}

	binary.NativeEndian.PutUint32(b, uint32(inner)&0x7|uint32(count)<<3)
}

// arrayHeader reads the array header at the start of b.
func arrayHeader(b []byte) (inner elementType, count int) {
	bits := binary.NativeEndian.Uint32(b)

	return elementType(bits & 0x7), int(bits >> 3)
}

// Document owns the string table and the element stream. It is created
// empty, filled through a Writer, and immutable once the writer is closed.
type Document struct {
	strings []string
	data    []byte
}

// New returns an empty document.
func New() *Document {
	return &Document{}
}

// Len returns the used size of the element stream in bytes.
func (d *Document) Len() int {
	return len(d.data)
}

// StringTable returns the interned strings, in insertion order. The caller
// must not mutate the returned slice.
func (d *Document) StringTable() []string {
	return d.strings
}

// reserve extends the used size by n bytes and returns the offset of the
// reserved span. The buffer starts at 4096 bytes and doubles until the
// request fits; it never shrinks.
func (d *Document) reserve(n int) int {
	off := len(d.data)
	if off+n > cap(d.data) {
		newCap := cap(d.data)
		if newCap == 0 {
			newCap = initialBufferSize
		}
		for newCap < off+n {
			newCap *= growthFactor
		}

		grown := make([]byte, off, newCap)
		copy(grown, d.data)
		d.data = grown
	}

	d.data = d.data[:off+n]

	return off
}

func (d *Document) append(p []byte) {
	off := d.reserve(len(p))
	copy(d.data[off:], p)
}

func (d *Document) appendUint32(v uint32) {
	off := d.reserve(4)
	binary.NativeEndian.PutUint32(d.data[off:], v)
}

// intern returns the string table index for s, inserting it on first use.
func (d *Document) intern(s string) int {
	for i, str := range d.strings {
		if str == s {
			return i
		}
	}

	idx := len(d.strings)
	if idx > maxNameIndex {
		panic(fmt.Sprintf("binary: string table overflow, the maximum index is %d", maxNameIndex))
	}

	d.strings = append(d.strings, s)

	return idx
}

// removeNullElements compacts the element stream in data by striding over
// every element and dropping the Null ones. It returns the compacted size.
func removeNullElements(data []byte) int {
	read := 0
	write := 0
	for read < len(data) {
		typ, _, size := header(data[read:])
		next := read + headerSize + size

		if typ == typeNull {
			read = next
			continue
		}

		if write != read {
			copy(data[write:], data[read:next])
		}

		write += headerSize + size
		read = next
	}

	return write
}
