package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/borjaportugal/Serializer/serde"
	"github.com/borjaportugal/Serializer/serde/binary"
)

func makeDocument(t *testing.T, value int32) *binary.Document {
	t.Helper()

	doc := binary.New()
	writer := binary.NewWriter(doc)
	serde.WriteInt32(writer, serde.N("value"), value)
	serde.WriteStr(writer, serde.N("tag"), "stored")
	writer.Close()

	return doc
}

func TestStore_SaveLoad(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	defer db.Close()

	require.NoError(t, db.Save("first", makeDocument(t, 1)))
	require.NoError(t, db.Save("second", makeDocument(t, 2)))

	doc, err := db.Load("second")
	require.NoError(t, err)

	var value int32
	var tag string
	reader := binary.NewReader(doc)
	reader.Int32(serde.N("value"), &value)
	reader.Str(serde.N("tag"), &tag)

	require.Equal(t, int32(2), value)
	require.Equal(t, "stored", tag)

	_, err = db.Load("missing")
	require.Error(t, err)
}

func TestStore_Replace(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	defer db.Close()

	require.NoError(t, db.Save("doc", makeDocument(t, 1)))
	require.NoError(t, db.Save("doc", makeDocument(t, 7)))

	doc, err := db.Load("doc")
	require.NoError(t, err)

	var value int32
	binary.NewReader(doc).Int32(serde.N("value"), &value)
	require.Equal(t, int32(7), value)
}

func TestStore_KeysDelete(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	defer db.Close()

	keys, err := db.Keys()
	require.NoError(t, err)
	require.Empty(t, keys)

	require.NoError(t, db.Save("b", makeDocument(t, 1)))
	require.NoError(t, db.Save("a", makeDocument(t, 2)))

	keys, err = db.Keys()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, db.Delete("a"))
	require.NoError(t, db.Delete("never-existed"))

	keys, err = db.Keys()
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, keys)
}
