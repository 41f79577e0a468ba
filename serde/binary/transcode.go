package binary

import (
	"encoding/binary"
	"math"

	"github.com/borjaportugal/Serializer/serde"
)

// Transcode walks the document and replays its content as visitor events on
// dst, which must be a writer. Recording the events with another backend
// converts the document to that format.
//
// Chunks (arrays with inner type Null) carry bytes only their producer
// understands and are not replayed.
func Transcode(doc *Document, dst serde.Serializer) {
	if dst.IsReader() {
		panic("binary: Transcode expects a writer")
	}

	transcodeFrame(doc.strings, doc.data, dst)
}

func transcodeFrame(strings []string, data []byte, dst serde.Serializer) {
	off := 0
	for off < len(data) {
		typ, nameIdx, size := header(data[off:])
		transcodeElement(strings, typ, serde.NewName(strings[nameIdx]), data[off+headerSize:off+headerSize+size], dst)
		off += headerSize + size
	}
}

func transcodeElement(strings []string, typ elementType, name serde.Name, payload []byte, dst serde.Serializer) {
	switch {
	case typ.isNumeric():
		n, _ := readNumeric(typ, payload)
		switch typ {
		case typeInt:
			serde.WriteInt32(dst, name, n.toInt32())
		case typeUint:
			serde.WriteUint32(dst, name, n.toUint32())
		case typeFloat:
			serde.WriteFloat32(dst, name, n.toFloat32())
		case typeBool:
			serde.WriteBool(dst, name, n.toBool())
		}

	case typ == typeString:
		idx := binary.NativeEndian.Uint32(payload)
		serde.WriteStr(dst, name, strings[idx])

	case typ == typeObject:
		serde.SerializeObject(dst, name, func(sub serde.Serializer) {
			transcodeFrame(strings, payload, sub)
		})

	case typ == typeArray:
		transcodeArray(strings, name, payload, dst)
	}
}

func transcodeArray(strings []string, name serde.Name, payload []byte, dst serde.Serializer) {
	inner, count := arrayHeader(payload)
	body := payload[arrayHeaderSize:]

	switch inner {
	case typeInt:
		dst.Int32Array(name, rawArray[int32]{body: body, count: count,
			dec: func(bits uint32) int32 { return int32(bits) }})
	case typeUint:
		dst.Uint32Array(name, rawArray[uint32]{body: body, count: count,
			dec: func(bits uint32) uint32 { return bits }})
	case typeFloat:
		dst.Float32Array(name, rawArray[float32]{body: body, count: count,
			dec: math.Float32frombits})
	case typeBool:
		dst.BoolArray(name, boolRawArray{body: body, count: count})
	case typeString:
		dst.StringArray(name, stringIndexArray{strings: strings, body: body, count: count})
	case typeObject:
		serde.WriteObjectArray(dst, name, count, func(sub serde.Serializer, idx int) {
			off := 0
			for i := 0; i < idx; i++ {
				off += 4 + int(binary.NativeEndian.Uint32(body[off:]))
			}

			size := int(binary.NativeEndian.Uint32(body[off:]))
			transcodeFrame(strings, body[off+4:off+4+size], sub)
		})
	}
}

// rawArray is a read-only adapter over the contiguous body of a numeric
// array element.
//
// - implements serde.Array
type rawArray[T any] struct {
	body  []byte
	count int
	dec   func(uint32) T
}

func (a rawArray[T]) Len() int {
	return a.count
}

func (a rawArray[T]) Get(i int) T {
	return a.dec(binary.NativeEndian.Uint32(a.body[i*4:]))
}

func (a rawArray[T]) Resize(n int) {
	panic("binary: resize of a document-backed array")
}

func (a rawArray[T]) Set(i int, v T) {
	panic("binary: write to a document-backed array")
}

// boolRawArray is a read-only adapter over the one-byte-per-element body of
// a bool array element.
//
// - implements serde.Array
type boolRawArray struct {
	body  []byte
	count int
}

func (a boolRawArray) Len() int {
	return a.count
}

func (a boolRawArray) Get(i int) bool {
	return a.body[i] > 0
}

func (a boolRawArray) Resize(n int) {
	panic("binary: resize of a document-backed array")
}

func (a boolRawArray) Set(i int, v bool) {
	panic("binary: write to a document-backed array")
}

// stringIndexArray is a read-only adapter resolving string table indices out
// of a string array element.
//
// - implements serde.Array
type stringIndexArray struct {
	strings []string
	body    []byte
	count   int
}

func (a stringIndexArray) Len() int {
	return a.count
}

func (a stringIndexArray) Get(i int) string {
	return a.strings[binary.NativeEndian.Uint32(a.body[i*4:])]
}

func (a stringIndexArray) Resize(n int) {
	panic("binary: resize of a document-backed array")
}

func (a stringIndexArray) Set(i int, v string) {
	panic("binary: write to a document-backed array")
}
