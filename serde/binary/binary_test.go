package binary

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/borjaportugal/Serializer/serde"
)

func roundTrip(t *testing.T, write func(serde.Serializer)) *Reader {
	t.Helper()

	doc := New()

	writer := NewWriter(doc)
	write(writer)
	writer.Close()

	// Reopen through the file form so the test covers it as well.
	reopened, err := FromBytes(doc.Bytes())
	require.NoError(t, err)

	return NewReader(reopened)
}

func TestWriter_Scalars(t *testing.T) {
	reader := roundTrip(t, func(s serde.Serializer) {
		serde.WriteInt32(s, serde.N("a"), 1)
		serde.WriteUint32(s, serde.N("b"), 2)
		serde.WriteFloat32(s, serde.N("c"), 1.5)
		serde.WriteBool(s, serde.N("d"), true)
	})

	var a int32
	var b uint32
	var c float32
	var d bool

	reader.Int32(serde.N("a"), &a)
	reader.Uint32(serde.N("b"), &b)
	reader.Float32(serde.N("c"), &c)
	reader.Bool(serde.N("d"), &d)

	require.Equal(t, int32(1), a)
	require.Equal(t, uint32(2), b)
	require.Equal(t, float32(1.5), c)
	require.True(t, d)

	require.True(t, reader.HasMember(serde.N("a")))
	require.False(t, reader.HasMember(serde.N("missing")))
}

func TestWriter_String(t *testing.T) {
	reader := roundTrip(t, func(s serde.Serializer) {
		serde.WriteStr(s, serde.N("greeting"), "hello there")
	})

	var str string
	reader.Str(serde.N("greeting"), &str)
	require.Equal(t, "hello there", str)
}

func TestWriter_Override(t *testing.T) {
	reader := roundTrip(t, func(s serde.Serializer) {
		serde.WriteInt32(s, serde.N("i"), -32)
		serde.WriteStr(s, serde.N("f"), "waaa")
		serde.SerializeObject(s, serde.N("nested"), func(sub serde.Serializer) {
			serde.WriteStr(sub, serde.N("blah"), "x")
		})
		serde.WriteStr(s, serde.N("i"), "test")
		serde.WriteFloat32(s, serde.N("f"), 3.4)
		serde.WriteInt32(s, serde.N("nested"), -34)
	})

	var i string
	var f float32
	var nested int32

	reader.Str(serde.N("i"), &i)
	reader.Float32(serde.N("f"), &f)
	reader.Int32(serde.N("nested"), &nested)

	require.Equal(t, "test", i)
	require.Equal(t, float32(3.4), f)
	require.Equal(t, int32(-34), nested)

	// The survivors show up once each, in the order they were appended.
	var names []string
	reader.Iterate(func(s serde.Serializer, name serde.Name) bool {
		names = append(names, name.String())
		return true
	})
	require.Equal(t, []string{"i", "f", "nested"}, names)
}

func TestWriter_DeepRecursion(t *testing.T) {
	const depth = 10

	var write func(s serde.Serializer, level int32)
	write = func(s serde.Serializer, level int32) {
		serde.WriteInt32(s, serde.N("aaa"), level)
		if level < depth-1 {
			serde.SerializeObject(s, serde.N("child"), func(sub serde.Serializer) {
				write(sub, level+1)
			})
		}
	}

	reader := roundTrip(t, func(s serde.Serializer) {
		write(s, 0)
	})

	var read func(s serde.Serializer, level int32)
	read = func(s serde.Serializer, level int32) {
		var value int32 = -1
		s.Int32(serde.N("aaa"), &value)
		require.Equal(t, level, value)

		if level < depth-1 {
			visited := false
			serde.SerializeObject(s, serde.N("child"), func(sub serde.Serializer) {
				visited = true
				read(sub, level+1)
			})
			require.True(t, visited)
		}
	}

	read(reader, 0)
}

func TestArrays_RoundTrip(t *testing.T) {
	ints := make([]int32, 1453)
	for i := range ints {
		v := int32(i + 1)
		if i%2 != 0 {
			v = -v
		}
		ints[i] = v
	}

	uints := []uint32{0, 1, 4294967295}
	floats := []float32{-1.5, 0, 3.25}
	bools := []bool{true, false, true, true}
	strs := []string{"alpha", "beta", "alpha", ""}

	reader := roundTrip(t, func(s serde.Serializer) {
		serde.Int32Slice(s, serde.N("ints"), &ints)
		serde.Uint32Slice(s, serde.N("uints"), &uints)
		serde.Float32Slice(s, serde.N("floats"), &floats)
		serde.BoolSlice(s, serde.N("bools"), &bools)
		serde.StringSlice(s, serde.N("strs"), &strs)
	})

	var gotInts []int32
	var gotUints []uint32
	var gotFloats []float32
	var gotBools []bool
	var gotStrs []string

	serde.Int32Slice(reader, serde.N("ints"), &gotInts)
	serde.Uint32Slice(reader, serde.N("uints"), &gotUints)
	serde.Float32Slice(reader, serde.N("floats"), &gotFloats)
	serde.BoolSlice(reader, serde.N("bools"), &gotBools)
	serde.StringSlice(reader, serde.N("strs"), &gotStrs)

	require.Equal(t, ints, gotInts)
	require.Equal(t, uints, gotUints)
	require.Equal(t, floats, gotFloats)
	require.Equal(t, bools, gotBools)
	require.Equal(t, strs, gotStrs)
}

func TestArrays_ScalarCoercion(t *testing.T) {
	reader := roundTrip(t, func(s serde.Serializer) {
		serde.WriteInt32(s, serde.N("lonely"), 42)
		serde.WriteStr(s, serde.N("word"), "one")
	})

	var ints []int32
	serde.Int32Slice(reader, serde.N("lonely"), &ints)
	require.Equal(t, []int32{42}, ints)

	var strs []string
	serde.StringSlice(reader, serde.N("word"), &strs)
	require.Equal(t, []string{"one"}, strs)
}

func TestArrays_InnerTypeConversion(t *testing.T) {
	floats := []float32{1.5, -2, 3}

	reader := roundTrip(t, func(s serde.Serializer) {
		serde.Float32Slice(s, serde.N("xs"), &floats)
	})

	var ints []int32
	serde.Int32Slice(reader, serde.N("xs"), &ints)
	require.Equal(t, []int32{1, -2, 3}, ints)
}

func TestObjectArray_RoundTrip(t *testing.T) {
	values := []int32{10, 20, 30}

	reader := roundTrip(t, func(s serde.Serializer) {
		serde.WriteObjectArray(s, serde.N("entries"), len(values), func(sub serde.Serializer, idx int) {
			if idx == 1 {
				// Emits nothing: stored as a null slot.
				return
			}

			serde.WriteInt32(sub, serde.N("v"), values[idx])
		})
	})

	require.Equal(t, 3, reader.ReadObjectArraySize(serde.N("entries")))

	got := map[int]int32{}
	serde.ReadObjectArray(reader, serde.N("entries"), func(sub serde.Serializer, idx int) {
		var v int32
		sub.Int32(serde.N("v"), &v)
		got[idx] = v
	})

	require.Equal(t, map[int]int32{0: 10, 2: 30}, got)
}

func TestObjectArray_AllEmptyIsElided(t *testing.T) {
	reader := roundTrip(t, func(s serde.Serializer) {
		serde.WriteObjectArray(s, serde.N("entries"), 4, func(sub serde.Serializer, idx int) {})
	})

	require.False(t, reader.HasMember(serde.N("entries")))
	require.Equal(t, 0, reader.ReadObjectArraySize(serde.N("entries")))
}

func TestEmptyObject_Elision(t *testing.T) {
	doc := New()

	writer := NewWriter(doc)
	serde.SerializeObject(writer, serde.N("empty"), func(sub serde.Serializer) {})
	writer.Close()

	require.Equal(t, 0, doc.Len())

	reader := NewReader(doc)
	require.False(t, reader.HasMember(serde.N("empty")))

	reader.Iterate(func(s serde.Serializer, name serde.Name) bool {
		require.Fail(t, "no element expected")
		return true
	})
}

func TestMissingMember_Inert(t *testing.T) {
	reader := roundTrip(t, func(s serde.Serializer) {
		serde.WriteInt32(s, serde.N("present"), 1)
	})

	i := int32(7)
	u := uint32(8)
	f := float32(9.5)
	b := true
	str := "unchanged"

	reader.Int32(serde.N("absent"), &i)
	reader.Uint32(serde.N("absent"), &u)
	reader.Float32(serde.N("absent"), &f)
	reader.Bool(serde.N("absent"), &b)
	reader.Str(serde.N("absent"), &str)

	require.Equal(t, int32(7), i)
	require.Equal(t, uint32(8), u)
	require.Equal(t, float32(9.5), f)
	require.True(t, b)
	require.Equal(t, "unchanged", str)
}

func TestConversionTable(t *testing.T) {
	reader := roundTrip(t, func(s serde.Serializer) {
		serde.WriteInt32(s, serde.N("int"), -5)
		serde.WriteInt32(s, serde.N("zero"), 0)
		serde.WriteUint32(s, serde.N("uint"), 7)
		serde.WriteFloat32(s, serde.N("float"), 2.9)
		serde.WriteBool(s, serde.N("bool"), true)
		serde.WriteStr(s, serde.N("str"), "nope")
	})

	t.Run("to int32", func(t *testing.T) {
		table := map[string]int32{
			"int":   -5,
			"uint":  7,
			"float": 2,
			"bool":  1,
		}
		for name, expected := range table {
			var v int32
			reader.Int32(serde.NewName(name), &v)
			require.Equal(t, expected, v, name)
		}
	})

	t.Run("to uint32", func(t *testing.T) {
		table := map[string]uint32{
			"int":   4294967291,
			"uint":  7,
			"float": 2,
			"bool":  1,
		}
		for name, expected := range table {
			var v uint32
			reader.Uint32(serde.NewName(name), &v)
			require.Equal(t, expected, v, name)
		}
	})

	t.Run("to float32", func(t *testing.T) {
		table := map[string]float32{
			"int":   -5,
			"uint":  7,
			"float": 2.9,
			"bool":  1,
		}
		for name, expected := range table {
			var v float32
			reader.Float32(serde.NewName(name), &v)
			require.Equal(t, expected, v, name)
		}
	})

	t.Run("to bool", func(t *testing.T) {
		table := map[string]bool{
			"int":   true,
			"zero":  false,
			"uint":  true,
			"float": true,
			"bool":  true,
		}
		for name, expected := range table {
			v := !expected
			reader.Bool(serde.NewName(name), &v)
			require.Equal(t, expected, v, name)
		}
	})

	t.Run("string never converts", func(t *testing.T) {
		v := int32(11)
		reader.Int32(serde.N("str"), &v)
		require.Equal(t, int32(11), v)

		str := "unchanged"
		reader.Str(serde.N("int"), &str)
		require.Equal(t, "unchanged", str)
	})
}

func TestWideningHelpers(t *testing.T) {
	i8 := int8(-12)
	i16 := int16(-1234)
	u8 := uint8(250)
	u16 := uint16(65000)

	reader := roundTrip(t, func(s serde.Serializer) {
		serde.Int8(s, serde.N("i8"), &i8)
		serde.Int16(s, serde.N("i16"), &i16)
		serde.Uint8(s, serde.N("u8"), &u8)
		serde.Uint16(s, serde.N("u16"), &u16)
	})

	var gi8 int8
	var gi16 int16
	var gu8 uint8
	var gu16 uint16

	serde.Int8(reader, serde.N("i8"), &gi8)
	serde.Int16(reader, serde.N("i16"), &gi16)
	serde.Uint8(reader, serde.N("u8"), &gu8)
	serde.Uint16(reader, serde.N("u16"), &gu16)

	require.Equal(t, i8, gi8)
	require.Equal(t, i16, gi16)
	require.Equal(t, u8, gu8)
	require.Equal(t, u16, gu16)
}

func TestIterate_Cancellation(t *testing.T) {
	reader := roundTrip(t, func(s serde.Serializer) {
		serde.WriteInt32(s, serde.N("one"), 1)
		serde.WriteInt32(s, serde.N("two"), 2)
		serde.WriteInt32(s, serde.N("three"), 3)
	})

	var names []string
	reader.Iterate(func(s serde.Serializer, name serde.Name) bool {
		names = append(names, name.String())
		return len(names) < 2
	})

	require.Equal(t, []string{"one", "two"}, names)
}

func TestStringTable_Interning(t *testing.T) {
	doc := New()

	writer := NewWriter(doc)
	serde.WriteStr(writer, serde.N("a"), "shared")
	serde.WriteStr(writer, serde.N("b"), "shared")
	serde.WriteStr(writer, serde.N("c"), "a")
	writer.Close()

	// "shared", "a", "b", "c": values and names deduplicated together.
	require.Equal(t, []string{"shared", "a", "b", "c"}, doc.StringTable())
}

func TestMemoryChunks_SubDocuments(t *testing.T) {
	buildSub := func(value int32) *Document {
		sub := New()
		w := NewWriter(sub)
		serde.WriteInt32(w, serde.N("value"), value)
		serde.WriteStr(w, serde.N("tag"), "sub")
		w.Close()

		return sub
	}

	subA := buildSub(1)
	subB := buildSub(2)

	parent := New()
	writer := NewWriter(parent)
	WriteSubDocument(writer, serde.N("a"), subA)
	WriteSubDocument(writer, serde.N("b"), subB)
	writer.Close()

	reopened, err := FromBytes(parent.Bytes())
	require.NoError(t, err)

	reader := NewReader(reopened)

	for name, expected := range map[string]int32{"a": 1, "b": 2} {
		sub, err := ReadSubDocument(reader, serde.NewName(name))
		require.NoError(t, err)

		var value int32
		var tag string
		subReader := NewReader(sub)
		subReader.Int32(serde.N("value"), &value)
		subReader.Str(serde.N("tag"), &tag)

		require.Equal(t, expected, value)
		require.Equal(t, "sub", tag)
	}

	_, err = ReadSubDocument(reader, serde.N("missing"))
	require.Error(t, err)
}

func TestChunk_Override(t *testing.T) {
	doc := New()

	writer := NewWriter(doc)
	writer.WriteChunk(serde.N("blob"), []byte{1, 2, 3})
	writer.WriteChunk(serde.N("blob"), []byte{4, 5})
	writer.Close()

	reader := NewReader(doc)
	require.Equal(t, []byte{4, 5}, reader.ReadChunk(serde.N("blob")))
	require.Nil(t, reader.ReadChunk(serde.N("missing")))
}

func TestSaveLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.bin")

	doc := New()
	writer := NewWriter(doc)
	serde.WriteInt32(writer, serde.N("answer"), 42)
	serde.WriteStr(writer, serde.N("q"), "life")
	writer.Close()

	require.NoError(t, Save(path, doc))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, doc.StringTable(), loaded.StringTable())

	var answer int32
	NewReader(loaded).Int32(serde.N("answer"), &answer)
	require.Equal(t, int32(42), answer)

	_, err = Load(filepath.Join(t.TempDir(), "missing.bin"))
	require.Error(t, err)
}

func TestFromBytes_Malformed(t *testing.T) {
	_, err := FromBytes([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestModeMisuse_Panics(t *testing.T) {
	doc := New()
	writer := NewWriter(doc)
	defer writer.Close()

	require.Panics(t, func() {
		writer.ReadObjectArray(serde.N("x"), func(serde.Serializer, int) {})
	})
	require.Panics(t, func() {
		writer.ReadObjectArraySize(serde.N("x"))
	})

	reader := NewReader(doc)
	require.Panics(t, func() {
		reader.WriteObjectArray(serde.N("x"), 1, func(serde.Serializer, int) {})
	})
}

func TestWriter_HasMemberSkipsOverridden(t *testing.T) {
	doc := New()

	writer := NewWriter(doc)
	serde.WriteInt32(writer, serde.N("x"), 1)
	serde.WriteInt32(writer, serde.N("x"), 2)

	// Before Close the overridden element is still in the buffer, retagged.
	require.True(t, writer.HasMember(serde.N("x")))
	require.False(t, writer.HasMember(serde.N("y")))

	var names []string
	writer.Iterate(func(s serde.Serializer, name serde.Name) bool {
		names = append(names, name.String())
		return true
	})
	require.Equal(t, []string{"x"}, names)

	writer.Close()
}
