// Package serde defines the primitives to serialize and deserialize (serde)
// structured data against multiple formats.
//
// Application code implements a single free function that, given a Serializer
// and the data, invokes the visitor primitives. The same function both loads
// and saves the data: the serializer's mode tells conditional logic (for
// instance a container resize) which side to take. Slots are passed as
// pointers on both sides; a writer reads them, a reader assigns them.
//
// The format can be chosen among:
// - binary (serde/binary)
// - JSON (serde/json)
package serde

// ObjectFn is the callback invoked with a serializer scoped to a sub-object.
type ObjectFn func(Serializer)

// IterateFn is the callback invoked once per child element. Return false to
// stop the iteration.
type IterateFn func(Serializer, Name) bool

// ObjectArrayFn is the callback invoked once per slot of a heterogeneous
// array, with a serializer scoped to that slot.
type ObjectArrayFn func(Serializer, int)

// Serializer is the uniform read/write API applied to user data. A serializer
// is either a reader or a writer for its whole lifetime.
//
// Reading a name that is not present leaves the slot untouched. Reading a
// slot of one scalar kind when the stored element is of another performs the
// lossy conversions documented on each backend; string and non-string never
// convert into each other.
type Serializer interface {
	// IsReader returns true when the serializer loads data into the slots it
	// is given, false when it stores them.
	IsReader() bool

	// HasMember returns true when the current scope contains an element with
	// the given name.
	HasMember(name Name) bool

	Int32(name Name, v *int32)
	Uint32(name Name, v *uint32)
	Float32(name Name, v *float32)
	Bool(name Name, v *bool)

	// Str serializes a string slot. On read the assigned string shares the
	// backing document and stays valid as long as the document does.
	Str(name Name, v *string)

	// Object serializes a named sub-object. The callback runs with a
	// serializer scoped to it. On write, a callback that emits nothing
	// produces no element at all.
	Object(name Name, fn ObjectFn)

	// Iterate invokes fn once per child element of the current scope, in
	// insertion order, until fn returns false.
	Iterate(fn IterateFn)

	Int32Array(name Name, arr Array[int32])
	Uint32Array(name Name, arr Array[uint32])
	Float32Array(name Name, arr Array[float32])
	BoolArray(name Name, arr Array[bool])
	StringArray(name Name, arr Array[string])

	// WriteObjectArray stores a heterogeneous array of count slots, invoking
	// fn once per index with a serializer scoped to that slot. A slot whose
	// callback emits nothing is stored as null. Writers only.
	WriteObjectArray(name Name, count int, fn ObjectArrayFn)

	// ReadObjectArraySize returns the slot count of a stored heterogeneous
	// array, or 0 when absent. Readers only.
	ReadObjectArraySize(name Name) int

	// ReadObjectArray invokes fn once per non-null slot of a stored
	// heterogeneous array; null slots are skipped silently. Readers only.
	ReadObjectArray(name Name, fn ObjectArrayFn)
}
