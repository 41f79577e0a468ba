// Package json implements the serde visitor over a JSON document.
//
// The document model is the sonic AST, which keeps object members in
// insertion order. The writer binds a mutable node and turns it into an
// object on the first write; the reader borrows a parsed node. Numbers
// follow the scalar conversion policy of the visitor, with JSON integers
// and reals both treated as numeric.
package json

import (
	"strconv"

	"github.com/bytedance/sonic/ast"

	"github.com/borjaportugal/Serializer/serde"
)

func formatInt(v int64) ast.Node {
	return ast.NewNumber(strconv.FormatInt(v, 10))
}

func formatUint(v uint64) ast.Node {
	return ast.NewNumber(strconv.FormatUint(v, 10))
}

func formatFloat(v float32) ast.Node {
	s := strconv.FormatFloat(float64(v), 'g', -1, 32)
	if !hasRealMarker(s) {
		// A whole-valued float must keep a fractional marker, otherwise it
		// reads back as an integer.
		s += ".0"
	}

	return ast.NewNumber(s)
}

func isBool(n *ast.Node) bool {
	t := n.Type()
	return t == ast.V_TRUE || t == ast.V_FALSE
}

func hasRealMarker(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', 'e', 'E':
			return true
		}
	}

	return false
}

// isReal reports whether a number node carries a fractional or exponent
// notation in its raw text.
func isReal(n *ast.Node) bool {
	raw, err := n.Raw()
	if err != nil {
		return false
	}

	return hasRealMarker(raw)
}

// Writer stores visitor events into a JSON node.
//
// - implements serde.Serializer
type Writer struct {
	node *ast.Node
}

// NewWriter returns a writer binding the given node. The node is replaced by
// an object on the first write.
func NewWriter(node *ast.Node) *Writer {
	return &Writer{node: node}
}

func (w *Writer) set(name serde.Name, child ast.Node) {
	if w.node.Type() != ast.V_OBJECT {
		*w.node = ast.NewObject(nil)
	}

	w.node.Set(name.String(), child)
}

// IsReader implements serde.Serializer. It returns false.
func (w *Writer) IsReader() bool {
	return false
}

// HasMember implements serde.Serializer.
func (w *Writer) HasMember(name serde.Name) bool {
	if w.node.Type() != ast.V_OBJECT {
		return false
	}

	child := w.node.Get(name.String())

	return child.Exists() && child.Type() != ast.V_NULL
}

// Int32 implements serde.Serializer.
func (w *Writer) Int32(name serde.Name, v *int32) {
	w.set(name, formatInt(int64(*v)))
}

// Uint32 implements serde.Serializer.
func (w *Writer) Uint32(name serde.Name, v *uint32) {
	w.set(name, formatUint(uint64(*v)))
}

// Float32 implements serde.Serializer.
func (w *Writer) Float32(name serde.Name, v *float32) {
	w.set(name, formatFloat(*v))
}

// Bool implements serde.Serializer.
func (w *Writer) Bool(name serde.Name, v *bool) {
	w.set(name, ast.NewBool(*v))
}

// Str implements serde.Serializer.
func (w *Writer) Str(name serde.Name, v *string) {
	w.set(name, ast.NewString(*v))
}

// Object implements serde.Serializer. A callback that emits nothing leaves
// the sub-node null and no member is inserted.
func (w *Writer) Object(name serde.Name, fn serde.ObjectFn) {
	sub := ast.NewNull()
	fn(NewWriter(&sub))

	if sub.Type() != ast.V_NULL {
		w.set(name, sub)
	}
}

// Iterate implements serde.Serializer.
func (w *Writer) Iterate(fn serde.IterateFn) {
	if w.node.Type() != ast.V_OBJECT {
		return
	}

	w.node.ForEach(func(path ast.Sequence, node *ast.Node) bool {
		return fn(w, serde.NewName(*path.Key))
	})
}

func writeArray[T any](w *Writer, name serde.Name, arr serde.Array[T], conv func(T) ast.Node) {
	n := arr.Len()
	nodes := make([]ast.Node, n)
	for i := 0; i < n; i++ {
		nodes[i] = conv(arr.Get(i))
	}

	w.set(name, ast.NewArray(nodes))
}

// Int32Array implements serde.Serializer.
func (w *Writer) Int32Array(name serde.Name, arr serde.Array[int32]) {
	writeArray(w, name, arr, func(v int32) ast.Node { return formatInt(int64(v)) })
}

// Uint32Array implements serde.Serializer.
func (w *Writer) Uint32Array(name serde.Name, arr serde.Array[uint32]) {
	writeArray(w, name, arr, func(v uint32) ast.Node { return formatUint(uint64(v)) })
}

// Float32Array implements serde.Serializer.
func (w *Writer) Float32Array(name serde.Name, arr serde.Array[float32]) {
	writeArray(w, name, arr, formatFloat)
}

// BoolArray implements serde.Serializer.
func (w *Writer) BoolArray(name serde.Name, arr serde.Array[bool]) {
	writeArray(w, name, arr, ast.NewBool)
}

// StringArray implements serde.Serializer.
func (w *Writer) StringArray(name serde.Name, arr serde.Array[string]) {
	writeArray(w, name, arr, ast.NewString)
}

// WriteObjectArray implements serde.Serializer. Slots whose callback emits
// nothing stay null in the JSON array.
func (w *Writer) WriteObjectArray(name serde.Name, count int, fn serde.ObjectArrayFn) {
	nodes := make([]ast.Node, count)
	for i := 0; i < count; i++ {
		nodes[i] = ast.NewNull()
		fn(NewWriter(&nodes[i]), i)
	}

	w.set(name, ast.NewArray(nodes))
}

// ReadObjectArraySize implements serde.Serializer. It panics: the writer
// does not read.
func (w *Writer) ReadObjectArraySize(name serde.Name) int {
	panic("json: ReadObjectArraySize called on a writer")
}

// ReadObjectArray implements serde.Serializer. It panics: the writer does
// not read.
func (w *Writer) ReadObjectArray(name serde.Name, fn serde.ObjectArrayFn) {
	panic("json: ReadObjectArray called on a writer")
}

// Reader loads visitor slots out of a JSON node.
//
// - implements serde.Serializer
type Reader struct {
	node *ast.Node
}

// NewReader returns a reader borrowing the given node.
func NewReader(node *ast.Node) *Reader {
	return &Reader{node: node}
}

// child returns the named member, or nil when the scope is not an object or
// the member is absent. A null member resolves like an absent one.
func (r *Reader) child(name serde.Name) *ast.Node {
	if r.node.Type() != ast.V_OBJECT {
		return nil
	}

	c := r.node.Get(name.String())
	if !c.Exists() || c.Type() == ast.V_NULL {
		return nil
	}

	return c
}

// IsReader implements serde.Serializer. It returns true.
func (r *Reader) IsReader() bool {
	return true
}

// HasMember implements serde.Serializer.
func (r *Reader) HasMember(name serde.Name) bool {
	return r.child(name) != nil
}

func readInt64(c *ast.Node) int64 {
	if isReal(c) {
		f, _ := c.Float64()
		return int64(f)
	}

	i, _ := c.Int64()

	return i
}

// Int32 implements serde.Serializer.
func (r *Reader) Int32(name serde.Name, v *int32) {
	c := r.child(name)
	if c == nil {
		return
	}

	if c.Type() == ast.V_NUMBER {
		*v = int32(readInt64(c))
	} else if isBool(c) {
		b, _ := c.Bool()
		if b {
			*v = 1
		} else {
			*v = 0
		}
	}
}

// Uint32 implements serde.Serializer.
func (r *Reader) Uint32(name serde.Name, v *uint32) {
	c := r.child(name)
	if c == nil {
		return
	}

	if c.Type() == ast.V_NUMBER {
		*v = uint32(readInt64(c))
	} else if isBool(c) {
		b, _ := c.Bool()
		if b {
			*v = 1
		} else {
			*v = 0
		}
	}
}

// Float32 implements serde.Serializer.
func (r *Reader) Float32(name serde.Name, v *float32) {
	c := r.child(name)
	if c == nil {
		return
	}

	if c.Type() == ast.V_NUMBER {
		f, _ := c.Float64()
		*v = float32(f)
	} else if isBool(c) {
		b, _ := c.Bool()
		if b {
			*v = 1
		} else {
			*v = 0
		}
	}
}

// Bool implements serde.Serializer.
func (r *Reader) Bool(name serde.Name, v *bool) {
	c := r.child(name)
	if c == nil {
		return
	}

	if isBool(c) {
		b, _ := c.Bool()
		*v = b
	} else if c.Type() == ast.V_NUMBER {
		f, _ := c.Float64()
		*v = f != 0
	}
}

// Str implements serde.Serializer.
func (r *Reader) Str(name serde.Name, v *string) {
	c := r.child(name)
	if c == nil || c.Type() != ast.V_STRING {
		return
	}

	s, _ := c.String()
	*v = s
}

// Object implements serde.Serializer.
func (r *Reader) Object(name serde.Name, fn serde.ObjectFn) {
	c := r.child(name)
	if c == nil || c.Type() != ast.V_OBJECT {
		return
	}

	fn(NewReader(c))
}

// Iterate implements serde.Serializer.
func (r *Reader) Iterate(fn serde.IterateFn) {
	if r.node.Type() != ast.V_OBJECT {
		return
	}

	r.node.ForEach(func(path ast.Sequence, node *ast.Node) bool {
		return fn(r, serde.NewName(*path.Key))
	})
}

func readArray[T any](r *Reader, name serde.Name, arr serde.Array[T], conv func(*ast.Node) (T, bool)) {
	c := r.child(name)
	if c == nil {
		return
	}

	if c.Type() == ast.V_ARRAY {
		n, _ := c.Len()
		arr.Resize(n)
		for i := 0; i < n; i++ {
			if v, ok := conv(c.Index(i)); ok {
				arr.Set(i, v)
			} else {
				var zero T
				arr.Set(i, zero)
			}
		}

		return
	}

	// Single-element coercion: a scalar of a convertible kind loads as a
	// one-element array.
	if v, ok := conv(c); ok {
		arr.Resize(1)
		arr.Set(0, v)
	}
}

func convInt32(c *ast.Node) (int32, bool) {
	if c.Type() == ast.V_NUMBER {
		return int32(readInt64(c)), true
	}
	if isBool(c) {
		b, _ := c.Bool()
		if b {
			return 1, true
		}
		return 0, true
	}

	return 0, false
}

func convUint32(c *ast.Node) (uint32, bool) {
	v, ok := convInt32(c)
	return uint32(v), ok
}

func convFloat32(c *ast.Node) (float32, bool) {
	if c.Type() == ast.V_NUMBER {
		f, _ := c.Float64()
		return float32(f), true
	}
	if isBool(c) {
		b, _ := c.Bool()
		if b {
			return 1, true
		}
		return 0, true
	}

	return 0, false
}

func convBool(c *ast.Node) (bool, bool) {
	if isBool(c) {
		b, _ := c.Bool()
		return b, true
	}
	if c.Type() == ast.V_NUMBER {
		f, _ := c.Float64()
		return f != 0, true
	}

	return false, false
}

func convString(c *ast.Node) (string, bool) {
	if c.Type() != ast.V_STRING {
		return "", false
	}

	s, _ := c.String()

	return s, true
}

// Int32Array implements serde.Serializer.
func (r *Reader) Int32Array(name serde.Name, arr serde.Array[int32]) {
	readArray(r, name, arr, convInt32)
}

// Uint32Array implements serde.Serializer.
func (r *Reader) Uint32Array(name serde.Name, arr serde.Array[uint32]) {
	readArray(r, name, arr, convUint32)
}

// Float32Array implements serde.Serializer.
func (r *Reader) Float32Array(name serde.Name, arr serde.Array[float32]) {
	readArray(r, name, arr, convFloat32)
}

// BoolArray implements serde.Serializer.
func (r *Reader) BoolArray(name serde.Name, arr serde.Array[bool]) {
	readArray(r, name, arr, convBool)
}

// StringArray implements serde.Serializer.
func (r *Reader) StringArray(name serde.Name, arr serde.Array[string]) {
	readArray(r, name, arr, convString)
}

// WriteObjectArray implements serde.Serializer. It panics: the reader does
// not write.
func (r *Reader) WriteObjectArray(name serde.Name, count int, fn serde.ObjectArrayFn) {
	panic("json: WriteObjectArray called on a reader")
}

// ReadObjectArraySize implements serde.Serializer.
func (r *Reader) ReadObjectArraySize(name serde.Name) int {
	c := r.child(name)
	if c == nil || c.Type() != ast.V_ARRAY {
		return 0
	}

	n, _ := c.Len()

	return n
}

// ReadObjectArray implements serde.Serializer. Null elements of the JSON
// array are skipped: the callback is not invoked for their index.
func (r *Reader) ReadObjectArray(name serde.Name, fn serde.ObjectArrayFn) {
	c := r.child(name)
	if c == nil || c.Type() != ast.V_ARRAY {
		return
	}

	n, _ := c.Len()
	for i := 0; i < n; i++ {
		elem := c.Index(i)
		if elem.Type() == ast.V_NULL {
			continue
		}

		fn(NewReader(elem), i)
	}
}
