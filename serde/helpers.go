package serde

// Free-function wrappers over the Serializer operations. They keep call sites
// uniform no matter the direction, and they carry the helpers for types the
// interface does not serialize natively (small integers, plain slices).

// SerializeObject serializes a named sub-object through fn.
func SerializeObject(s Serializer, name Name, fn ObjectFn) {
	s.Object(name, fn)
}

// IterateElements invokes fn once per child element of the current scope
// until fn returns false.
func IterateElements(s Serializer, fn IterateFn) {
	s.Iterate(fn)
}

// WriteObjectArray stores a heterogeneous array of count slots. Writers only.
func WriteObjectArray(s Serializer, name Name, count int, fn ObjectArrayFn) {
	if s.IsReader() {
		panic("serde: WriteObjectArray called on a reader")
	}

	s.WriteObjectArray(name, count, fn)
}

// ReadObjectArray loads a heterogeneous array, invoking fn once per non-null
// slot. Readers only.
func ReadObjectArray(s Serializer, name Name, fn ObjectArrayFn) {
	if !s.IsReader() {
		panic("serde: ReadObjectArray called on a writer")
	}

	s.ReadObjectArray(name, fn)
}

// Small integer slots are serialized through the 32-bit primitives, so a
// document never distinguishes them on the wire.

// Int8 serializes an int8 slot.
func Int8(s Serializer, name Name, v *int8) {
	tmp := int32(*v)
	s.Int32(name, &tmp)

	if s.IsReader() {
		*v = int8(tmp)
	}
}

// Int16 serializes an int16 slot.
func Int16(s Serializer, name Name, v *int16) {
	tmp := int32(*v)
	s.Int32(name, &tmp)

	if s.IsReader() {
		*v = int16(tmp)
	}
}

// Uint8 serializes a uint8 slot.
func Uint8(s Serializer, name Name, v *uint8) {
	tmp := uint32(*v)
	s.Uint32(name, &tmp)

	if s.IsReader() {
		*v = uint8(tmp)
	}
}

// Uint16 serializes a uint16 slot.
func Uint16(s Serializer, name Name, v *uint16) {
	tmp := uint32(*v)
	s.Uint32(name, &tmp)

	if s.IsReader() {
		*v = uint16(tmp)
	}
}

// Write-only forms for values the caller does not hold in a mutable slot.

func requireWriter(s Serializer, op string) {
	if s.IsReader() {
		panic("serde: " + op + " called on a reader")
	}
}

// WriteInt32 stores a value under the name. Writers only.
func WriteInt32(s Serializer, name Name, v int32) {
	requireWriter(s, "WriteInt32")
	s.Int32(name, &v)
}

// WriteUint32 stores a value under the name. Writers only.
func WriteUint32(s Serializer, name Name, v uint32) {
	requireWriter(s, "WriteUint32")
	s.Uint32(name, &v)
}

// WriteFloat32 stores a value under the name. Writers only.
func WriteFloat32(s Serializer, name Name, v float32) {
	requireWriter(s, "WriteFloat32")
	s.Float32(name, &v)
}

// WriteBool stores a value under the name. Writers only.
func WriteBool(s Serializer, name Name, v bool) {
	requireWriter(s, "WriteBool")
	s.Bool(name, &v)
}

// WriteStr stores a string under the name. Writers only.
func WriteStr(s Serializer, name Name, v string) {
	requireWriter(s, "WriteStr")
	s.Str(name, &v)
}

// Slice helpers over the array primitives.

// Int32Slice serializes a slice slot.
func Int32Slice(s Serializer, name Name, v *[]int32) {
	s.Int32Array(name, NewSliceArray(v))
}

// Uint32Slice serializes a slice slot.
func Uint32Slice(s Serializer, name Name, v *[]uint32) {
	s.Uint32Array(name, NewSliceArray(v))
}

// Float32Slice serializes a slice slot.
func Float32Slice(s Serializer, name Name, v *[]float32) {
	s.Float32Array(name, NewSliceArray(v))
}

// BoolSlice serializes a slice slot.
func BoolSlice(s Serializer, name Name, v *[]bool) {
	s.BoolArray(name, NewSliceArray(v))
}

// StringSlice serializes a slice slot.
func StringSlice(s Serializer, name Name, v *[]string) {
	s.StringArray(name, NewSliceArray(v))
}
