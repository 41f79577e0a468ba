package binary

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/borjaportugal/Serializer/serde"
)

// Reader materializes values out of a finalized document. It borrows the
// string table and the element stream; strings handed out stay valid as long
// as the document does.
//
// Readers for sub-objects share the string table and narrow the byte slice
// to the payload of the parent element.
//
// - implements serde.Serializer
type Reader struct {
	strings []string
	data    []byte
}

// NewReader returns a reader over the document's root frame.
func NewReader(doc *Document) *Reader {
	return &Reader{strings: doc.strings, data: doc.data}
}

func newSubReader(strings []string, data []byte) *Reader {
	return &Reader{strings: strings, data: data}
}

// element is a decoded view over one element of the frame.
type element struct {
	typ     elementType
	payload []byte
}

// findElement walks the frame and returns the first element whose resolved
// name equals the requested one. Comparison is by string, not by table
// index, so names that were never interned can still be looked up.
func (r *Reader) findElement(name serde.Name) (element, bool) {
	off := 0
	for off < len(r.data) {
		typ, nameIdx, size := header(r.data[off:])
		next := off + headerSize + size
		if next > len(r.data) || nameIdx >= len(r.strings) {
			panic(fmt.Sprintf("binary: corrupted stream, element at offset %d runs past the frame", off))
		}

		if r.strings[nameIdx] == name.String() {
			return element{typ: typ, payload: r.data[off+headerSize : next]}, true
		}

		off = next
	}

	return element{}, false
}

func (r *Reader) readNumericElement(name serde.Name) (numeric, bool) {
	el, ok := r.findElement(name)
	if !ok {
		return numeric{}, false
	}

	return readNumeric(el.typ, el.payload)
}

// IsReader implements serde.Serializer. It returns true.
func (r *Reader) IsReader() bool {
	return true
}

// HasMember implements serde.Serializer.
func (r *Reader) HasMember(name serde.Name) bool {
	_, ok := r.findElement(name)
	return ok
}

// Int32 implements serde.Serializer.
func (r *Reader) Int32(name serde.Name, v *int32) {
	if n, ok := r.readNumericElement(name); ok {
		*v = n.toInt32()
	}
}

// Uint32 implements serde.Serializer.
func (r *Reader) Uint32(name serde.Name, v *uint32) {
	if n, ok := r.readNumericElement(name); ok {
		*v = n.toUint32()
	}
}

// Float32 implements serde.Serializer.
func (r *Reader) Float32(name serde.Name, v *float32) {
	if n, ok := r.readNumericElement(name); ok {
		*v = n.toFloat32()
	}
}

// Bool implements serde.Serializer.
func (r *Reader) Bool(name serde.Name, v *bool) {
	if n, ok := r.readNumericElement(name); ok {
		*v = n.toBool()
	}
}

// Str implements serde.Serializer. The assigned string points into the
// string table.
func (r *Reader) Str(name serde.Name, v *string) {
	el, ok := r.findElement(name)
	if !ok || el.typ != typeString {
		return
	}

	*v = r.stringAt(binary.NativeEndian.Uint32(el.payload))
}

func (r *Reader) stringAt(idx uint32) string {
	if int(idx) >= len(r.strings) {
		panic(fmt.Sprintf("binary: corrupted stream, string index %d outside the table of %d entries", idx, len(r.strings)))
	}

	return r.strings[idx]
}

// Object implements serde.Serializer. The callback runs with a reader
// scoped to the element payload.
func (r *Reader) Object(name serde.Name, fn serde.ObjectFn) {
	el, ok := r.findElement(name)
	if !ok || el.typ != typeObject {
		return
	}

	fn(newSubReader(r.strings, el.payload))
}

// Iterate implements serde.Serializer. Null elements are skipped; a
// finalized document contains none.
func (r *Reader) Iterate(fn serde.IterateFn) {
	off := 0
	for off < len(r.data) {
		typ, nameIdx, size := header(r.data[off:])
		if typ != typeNull {
			if !fn(r, serde.NewName(r.strings[nameIdx])) {
				break
			}
		}

		off += headerSize + size
	}
}

func strideOf(inner elementType) int {
	if inner == typeBool {
		return 1
	}

	return 4
}

func readNumericArray[T any](r *Reader, name serde.Name, want elementType, arr serde.Array[T], dec func(uint32) T, conv func(numeric) T) {
	el, ok := r.findElement(name)
	if !ok {
		return
	}

	if el.typ != typeArray {
		// A scalar of a convertible kind loads as a single-element array.
		n, ok := readNumeric(el.typ, el.payload)
		if !ok {
			return
		}

		arr.Resize(1)
		arr.Set(0, conv(n))

		return
	}

	inner, count := arrayHeader(el.payload)
	body := el.payload[arrayHeaderSize:]

	if inner == want {
		if bulk, ok := arr.(serde.BulkArray[T]); ok && bulk.Bulk() {
			vs := make([]T, count)
			for i := range vs {
				vs[i] = dec(binary.NativeEndian.Uint32(body[i*4:]))
			}
			bulk.SetAll(vs)

			return
		}

		arr.Resize(count)
		for i := 0; i < count; i++ {
			arr.Set(i, dec(binary.NativeEndian.Uint32(body[i*4:])))
		}

		return
	}

	if !inner.isNumeric() {
		return
	}

	// Mismatched numeric inner type: convert element by element.
	arr.Resize(count)
	stride := strideOf(inner)
	for i := 0; i < count; i++ {
		n, ok := readNumeric(inner, body[i*stride:])
		if !ok {
			return
		}

		arr.Set(i, conv(n))
	}
}

// Int32Array implements serde.Serializer.
func (r *Reader) Int32Array(name serde.Name, arr serde.Array[int32]) {
	readNumericArray(r, name, typeInt, arr,
		func(bits uint32) int32 { return int32(bits) },
		numeric.toInt32)
}

// Uint32Array implements serde.Serializer.
func (r *Reader) Uint32Array(name serde.Name, arr serde.Array[uint32]) {
	readNumericArray(r, name, typeUint, arr,
		func(bits uint32) uint32 { return bits },
		numeric.toUint32)
}

// Float32Array implements serde.Serializer.
func (r *Reader) Float32Array(name serde.Name, arr serde.Array[float32]) {
	readNumericArray(r, name, typeFloat, arr,
		math.Float32frombits,
		numeric.toFloat32)
}

// BoolArray implements serde.Serializer.
func (r *Reader) BoolArray(name serde.Name, arr serde.Array[bool]) {
	el, ok := r.findElement(name)
	if !ok {
		return
	}

	if el.typ != typeArray {
		n, ok := readNumeric(el.typ, el.payload)
		if !ok {
			return
		}

		arr.Resize(1)
		arr.Set(0, n.toBool())

		return
	}

	inner, count := arrayHeader(el.payload)
	if !inner.isNumeric() {
		return
	}

	body := el.payload[arrayHeaderSize:]

	arr.Resize(count)
	stride := strideOf(inner)
	for i := 0; i < count; i++ {
		n, ok := readNumeric(inner, body[i*stride:])
		if !ok {
			return
		}

		arr.Set(i, n.toBool())
	}
}

// StringArray implements serde.Serializer. There is no conversion between
// strings and other kinds; a mismatched element is ignored.
func (r *Reader) StringArray(name serde.Name, arr serde.Array[string]) {
	el, ok := r.findElement(name)
	if !ok {
		return
	}

	switch el.typ {
	case typeArray:
		inner, count := arrayHeader(el.payload)
		if inner != typeString {
			return
		}

		body := el.payload[arrayHeaderSize:]

		arr.Resize(count)
		for i := 0; i < count; i++ {
			arr.Set(i, r.stringAt(binary.NativeEndian.Uint32(body[i*4:])))
		}

	case typeString:
		arr.Resize(1)
		arr.Set(0, r.stringAt(binary.NativeEndian.Uint32(el.payload)))
	}
}

// WriteObjectArray implements serde.Serializer. It panics: the reader does
// not write.
func (r *Reader) WriteObjectArray(name serde.Name, count int, fn serde.ObjectArrayFn) {
	panic("binary: WriteObjectArray called on a reader")
}

// ReadObjectArraySize implements serde.Serializer.
func (r *Reader) ReadObjectArraySize(name serde.Name) int {
	el, ok := r.findElement(name)
	if !ok || el.typ != typeArray {
		return 0
	}

	inner, count := arrayHeader(el.payload)
	if inner != typeObject {
		return 0
	}

	return count
}

// ReadObjectArray implements serde.Serializer. Slots are walked through
// their size prefixes; a slot of size 0 is null and skipped.
func (r *Reader) ReadObjectArray(name serde.Name, fn serde.ObjectArrayFn) {
	el, ok := r.findElement(name)
	if !ok || el.typ != typeArray {
		return
	}

	inner, count := arrayHeader(el.payload)
	if inner != typeObject {
		return
	}

	body := el.payload[arrayHeaderSize:]
	off := 0
	for i := 0; i < count; i++ {
		if off+4 > len(body) {
			panic(fmt.Sprintf("binary: corrupted stream, object array slot %d runs past the element", i))
		}

		size := int(binary.NativeEndian.Uint32(body[off:]))
		off += 4
		if size == 0 {
			// Null slot.
			continue
		}

		if off+size > len(body) {
			panic(fmt.Sprintf("binary: corrupted stream, object array slot %d runs past the element", i))
		}

		fn(newSubReader(r.strings, body[off:off+size]), i)
		off += size
	}
}

// ReadChunk returns the opaque bytes stored under the name by WriteChunk,
// or nil when the name is absent or holds something else. The returned
// slice points into the document.
func (r *Reader) ReadChunk(name serde.Name) []byte {
	el, ok := r.findElement(name)
	if !ok || el.typ != typeArray {
		return nil
	}

	inner, count := arrayHeader(el.payload)
	if inner != typeNull {
		return nil
	}

	return el.payload[arrayHeaderSize : arrayHeaderSize+count]
}
