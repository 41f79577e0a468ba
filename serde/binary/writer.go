package binary

import (
	"encoding/binary"
	"math"

	"github.com/borjaportugal/Serializer/serde"
)

// Writer appends elements to a document.
//
// A writer owns one frame: the span of the stream written through it. The
// root writer's frame starts at offset 0; the writers handed to Object and
// WriteObjectArray callbacks share the document but anchor their frame where
// the nested payload begins. Writing a name already present in the frame
// retags the earlier element as Null, so the last write to a name wins.
//
// Close compacts the frame by dropping the Null elements. Every frame is
// compacted exactly once, by the writer that owns it: nested writers are
// closed by the operation that opened them, before the enclosing header size
// is patched, so the caller only closes the root writer.
//
// - implements serde.Serializer
type Writer struct {
	doc        *Document
	frameStart int
}

// NewWriter returns a writer appending to the document. The caller must
// close it to finalize the stream.
func NewWriter(doc *Document) *Writer {
	return &Writer{doc: doc, frameStart: len(doc.data)}
}

func newSubWriter(doc *Document) *Writer {
	return &Writer{doc: doc, frameStart: len(doc.data)}
}

// Close compacts the writer's frame so that it contains no Null element.
func (w *Writer) Close() {
	frame := w.doc.data[w.frameStart:]
	size := removeNullElements(frame)
	w.doc.data = w.doc.data[:w.frameStart+size]
}

// nullifyUpTo retags as Null every element of the frame below the end offset
// whose name index equals nameIdx. Size and name are preserved so walkers
// still stride past the payload.
func (w *Writer) nullifyUpTo(nameIdx, end int) {
	data := w.doc.data
	off := w.frameStart
	for off < end {
		_, name, size := header(data[off:])
		if name == nameIdx {
			retagNull(data[off:])
		}

		off += headerSize + size
	}
}

func (w *Writer) nullify(nameIdx int) {
	w.nullifyUpTo(nameIdx, len(w.doc.data))
}

func (w *Writer) writeScalar(name serde.Name, typ elementType, bits uint32) {
	nameIdx := w.doc.intern(name.String())
	w.nullify(nameIdx)

	off := w.doc.reserve(headerSize + 4)
	putHeader(w.doc.data[off:], typ, nameIdx, 4)
	binary.NativeEndian.PutUint32(w.doc.data[off+headerSize:], bits)
}

// IsReader implements serde.Serializer. It returns false.
func (w *Writer) IsReader() bool {
	return false
}

// HasMember implements serde.Serializer. It reports whether the frame holds
// a live element with the given name.
func (w *Writer) HasMember(name serde.Name) bool {
	data := w.doc.data
	off := w.frameStart
	for off < len(data) {
		typ, nameIdx, size := header(data[off:])
		if typ != typeNull && w.doc.strings[nameIdx] == name.String() {
			return true
		}

		off += headerSize + size
	}

	return false
}

// Int32 implements serde.Serializer.
func (w *Writer) Int32(name serde.Name, v *int32) {
	w.writeScalar(name, typeInt, uint32(*v))
}

// Uint32 implements serde.Serializer.
func (w *Writer) Uint32(name serde.Name, v *uint32) {
	w.writeScalar(name, typeUint, *v)
}

// Float32 implements serde.Serializer.
func (w *Writer) Float32(name serde.Name, v *float32) {
	w.writeScalar(name, typeFloat, math.Float32bits(*v))
}

// Bool implements serde.Serializer.
func (w *Writer) Bool(name serde.Name, v *bool) {
	nameIdx := w.doc.intern(name.String())
	w.nullify(nameIdx)

	var c byte
	if *v {
		c = 1
	}

	off := w.doc.reserve(headerSize + 1)
	putHeader(w.doc.data[off:], typeBool, nameIdx, 1)
	w.doc.data[off+headerSize] = c
}

// Str implements serde.Serializer. The value is interned in the string
// table; the payload carries its index.
func (w *Writer) Str(name serde.Name, v *string) {
	valueIdx := w.doc.intern(*v)
	nameIdx := w.doc.intern(name.String())
	w.nullify(nameIdx)

	off := w.doc.reserve(headerSize + 4)
	putHeader(w.doc.data[off:], typeString, nameIdx, 4)
	binary.NativeEndian.PutUint32(w.doc.data[off+headerSize:], uint32(valueIdx))
}

// Object implements serde.Serializer. It reserves the header, runs the
// callback with a writer anchored at the payload, and patches the header
// once the payload size is known. A callback that emits nothing rolls the
// reservation back so no element is persisted.
func (w *Writer) Object(name serde.Name, fn serde.ObjectFn) {
	start := w.doc.reserve(headerSize)

	sub := newSubWriter(w.doc)
	fn(sub)
	sub.Close()

	if len(w.doc.data) == start+headerSize {
		w.doc.data = w.doc.data[:start]
		return
	}

	nameIdx := w.doc.intern(name.String())
	w.nullifyUpTo(nameIdx, start)

	size := len(w.doc.data) - start - headerSize
	putHeader(w.doc.data[start:], typeObject, nameIdx, size)
}

// Iterate implements serde.Serializer. It walks the live elements of the
// frame in insertion order.
func (w *Writer) Iterate(fn serde.IterateFn) {
	data := w.doc.data
	off := w.frameStart
	for off < len(data) {
		typ, nameIdx, size := header(data[off:])
		if typ != typeNull {
			if !fn(w, serde.NewName(w.doc.strings[nameIdx])) {
				break
			}
		}

		off += headerSize + size
	}
}

func writeNumericArray[T any](w *Writer, name serde.Name, inner elementType, arr serde.Array[T], enc func(T) uint32) {
	nameIdx := w.doc.intern(name.String())
	w.nullify(nameIdx)

	n := arr.Len()

	off := w.doc.reserve(headerSize + arrayHeaderSize)
	putHeader(w.doc.data[off:], typeArray, nameIdx, arrayHeaderSize+n*4)
	putArrayHeader(w.doc.data[off+headerSize:], inner, n)

	if bulk, ok := arr.(serde.BulkArray[T]); ok && bulk.Bulk() {
		for _, v := range bulk.All() {
			w.doc.appendUint32(enc(v))
		}
		return
	}

	for i := 0; i < n; i++ {
		w.doc.appendUint32(enc(arr.Get(i)))
	}
}

// Int32Array implements serde.Serializer.
func (w *Writer) Int32Array(name serde.Name, arr serde.Array[int32]) {
	writeNumericArray(w, name, typeInt, arr, func(v int32) uint32 { return uint32(v) })
}

// Uint32Array implements serde.Serializer.
func (w *Writer) Uint32Array(name serde.Name, arr serde.Array[uint32]) {
	writeNumericArray(w, name, typeUint, arr, func(v uint32) uint32 { return v })
}

// Float32Array implements serde.Serializer.
func (w *Writer) Float32Array(name serde.Name, arr serde.Array[float32]) {
	writeNumericArray(w, name, typeFloat, arr, math.Float32bits)
}

// BoolArray implements serde.Serializer. Elements are stored as one byte
// each.
func (w *Writer) BoolArray(name serde.Name, arr serde.Array[bool]) {
	nameIdx := w.doc.intern(name.String())
	w.nullify(nameIdx)

	n := arr.Len()

	off := w.doc.reserve(headerSize + arrayHeaderSize + n)
	putHeader(w.doc.data[off:], typeArray, nameIdx, arrayHeaderSize+n)
	putArrayHeader(w.doc.data[off+headerSize:], typeBool, n)

	body := w.doc.data[off+headerSize+arrayHeaderSize:]
	for i := 0; i < n; i++ {
		if arr.Get(i) {
			body[i] = 1
		} else {
			body[i] = 0
		}
	}
}

// StringArray implements serde.Serializer. Every value is interned; the body
// carries the string table indices.
func (w *Writer) StringArray(name serde.Name, arr serde.Array[string]) {
	nameIdx := w.doc.intern(name.String())
	w.nullify(nameIdx)

	n := arr.Len()

	off := w.doc.reserve(headerSize + arrayHeaderSize)
	putHeader(w.doc.data[off:], typeArray, nameIdx, arrayHeaderSize+n*4)
	putArrayHeader(w.doc.data[off+headerSize:], typeString, n)

	for i := 0; i < n; i++ {
		w.doc.appendUint32(uint32(w.doc.intern(arr.Get(i))))
	}
}

// WriteObjectArray implements serde.Serializer. Each slot is preceded by its
// payload size; a slot whose callback emits nothing keeps size 0 and reads
// back as null. When no slot emits anything the whole element is rolled
// back.
func (w *Writer) WriteObjectArray(name serde.Name, count int, fn serde.ObjectArrayFn) {
	start := w.doc.reserve(headerSize + arrayHeaderSize)

	for i := 0; i < count; i++ {
		sizeOff := w.doc.reserve(4)

		sub := newSubWriter(w.doc)
		fn(sub, i)
		sub.Close()

		binary.NativeEndian.PutUint32(w.doc.data[sizeOff:], uint32(len(w.doc.data)-sizeOff-4))
	}

	nameIdx := w.doc.intern(name.String())
	w.nullifyUpTo(nameIdx, start)

	if len(w.doc.data) == start+headerSize+arrayHeaderSize+4*count {
		w.doc.data = w.doc.data[:start]
		return
	}

	size := len(w.doc.data) - start - headerSize
	putHeader(w.doc.data[start:], typeArray, nameIdx, size)
	putArrayHeader(w.doc.data[start+headerSize:], typeObject, count)
}

// ReadObjectArraySize implements serde.Serializer. It panics: the writer
// does not read.
func (w *Writer) ReadObjectArraySize(name serde.Name) int {
	panic("binary: ReadObjectArraySize called on a writer")
}

// ReadObjectArray implements serde.Serializer. It panics: the writer does
// not read.
func (w *Writer) ReadObjectArray(name serde.Name, fn serde.ObjectArrayFn) {
	panic("binary: ReadObjectArray called on a writer")
}

// WriteChunk embeds opaque bytes under the name, as an array whose inner
// type is Null. The caller is expected to understand the bytes when reading
// them back.
func (w *Writer) WriteChunk(name serde.Name, chunk []byte) {
	nameIdx := w.doc.intern(name.String())
	w.nullify(nameIdx)

	off := w.doc.reserve(headerSize + arrayHeaderSize)
	putHeader(w.doc.data[off:], typeArray, nameIdx, arrayHeaderSize+len(chunk))
	putArrayHeader(w.doc.data[off+headerSize:], typeNull, len(chunk))

	w.doc.append(chunk)
}
