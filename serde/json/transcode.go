package json

import (
	"github.com/bytedance/sonic/ast"

	"github.com/borjaportugal/Serializer/serde"
)

type valueKind int

const (
	kindOther valueKind = iota
	kindObject
	kindInt
	kindReal
	kindString
	kindBool
)

func kindOf(n *ast.Node) valueKind {
	switch n.Type() {
	case ast.V_OBJECT:
		return kindObject
	case ast.V_STRING:
		return kindString
	case ast.V_TRUE, ast.V_FALSE:
		return kindBool
	case ast.V_NUMBER:
		if isReal(n) {
			return kindReal
		}
		return kindInt
	}

	return kindOther
}

// Transcode walks a JSON document and replays its content as visitor events
// on dst, which must be a writer. The root node must be an object; to
// transcode a root array, use TranscodeMember with the name the array should
// take.
func Transcode(root *ast.Node, dst serde.Serializer) {
	if dst.IsReader() {
		panic("json: Transcode expects a writer")
	}
	if root.Type() != ast.V_OBJECT {
		panic("json: the visitor surface has an object at its root")
	}

	transcodeChildren(root, dst)
}

// TranscodeMember replays a single JSON value on dst under the given name.
func TranscodeMember(value *ast.Node, name serde.Name, dst serde.Serializer) {
	if dst.IsReader() {
		panic("json: TranscodeMember expects a writer")
	}

	transcodeValue(value, name, dst)
}

func transcodeChildren(obj *ast.Node, dst serde.Serializer) {
	obj.ForEach(func(path ast.Sequence, node *ast.Node) bool {
		transcodeValue(node, serde.NewName(*path.Key), dst)
		return true
	})
}

func transcodeValue(value *ast.Node, name serde.Name, dst serde.Serializer) {
	switch value.Type() {
	case ast.V_OBJECT:
		serde.SerializeObject(dst, name, func(sub serde.Serializer) {
			transcodeChildren(value, sub)
		})

	case ast.V_ARRAY:
		transcodeArray(value, name, dst)

	case ast.V_NUMBER:
		if isReal(value) {
			f, _ := value.Float64()
			serde.WriteFloat32(dst, name, float32(f))
		} else {
			i, _ := value.Int64()
			serde.WriteInt32(dst, name, int32(i))
		}

	case ast.V_STRING:
		s, _ := value.String()
		serde.WriteStr(dst, name, s)

	case ast.V_TRUE, ast.V_FALSE:
		b, _ := value.Bool()
		serde.WriteBool(dst, name, b)

	case ast.V_NULL:
		// Nothing to replay.
	}
}

func transcodeArray(value *ast.Node, name serde.Name, dst serde.Serializer) {
	n, _ := value.Len()
	if n == 0 {
		return
	}

	// The element type is the type of element 0, except that an array mixing
	// integers and reals is promoted to real.
	kind := kindOf(value.Index(0))
	for i := 1; i < n; i++ {
		if kindOf(value.Index(i)) == kindReal && kind == kindInt {
			kind = kindReal
		}
	}

	switch kind {
	case kindObject:
		serde.WriteObjectArray(dst, name, n, func(sub serde.Serializer, idx int) {
			elem := value.Index(idx)
			if elem.Type() == ast.V_OBJECT {
				transcodeChildren(elem, sub)
			}
		})

	case kindInt:
		dst.Int32Array(name, nodeArray[int32]{arr: value, count: n, conv: convInt32})

	case kindReal:
		dst.Float32Array(name, nodeArray[float32]{arr: value, count: n, conv: convFloat32})

	case kindString:
		dst.StringArray(name, nodeArray[string]{arr: value, count: n, conv: convString})

	case kindBool:
		dst.BoolArray(name, nodeArray[bool]{arr: value, count: n, conv: convBool})
	}
}

// nodeArray is a read-only adapter over a JSON array node. Elements that do
// not convert resolve to the zero value.
//
// - implements serde.Array
type nodeArray[T any] struct {
	arr   *ast.Node
	count int
	conv  func(*ast.Node) (T, bool)
}

func (a nodeArray[T]) Len() int {
	return a.count
}

func (a nodeArray[T]) Get(i int) T {
	v, _ := a.conv(a.arr.Index(i))
	return v
}

func (a nodeArray[T]) Resize(n int) {
	panic("json: resize of a document-backed array")
}

func (a nodeArray[T]) Set(i int, v T) {
	panic("json: write to a document-backed array")
}
