package binary

import (
	"encoding/binary"
	"os"

	"golang.org/x/xerrors"

	"github.com/borjaportugal/Serializer/serde"
)

// File form of a document, host-endian:
//
//	u64 string_count
//	string_count times: u64 byte_length, bytes
//	u64 stream_bytes
//	stream
//
// There is no magic number or version tag.

// Bytes serializes the document to its file form.
func (d *Document) Bytes() []byte {
	size := 8 + 8 + len(d.data)
	for _, s := range d.strings {
		size += 8 + len(s)
	}

	out := make([]byte, 0, size)

	var scratch [8]byte
	putUint64 := func(v uint64) {
		binary.NativeEndian.PutUint64(scratch[:], v)
		out = append(out, scratch[:]...)
	}

	putUint64(uint64(len(d.strings)))
	for _, s := range d.strings {
		putUint64(uint64(len(s)))
		out = append(out, s...)
	}

	putUint64(uint64(len(d.data)))
	out = append(out, d.data...)

	return out
}

// FromBytes parses the file form of a document. The returned document
// borrows data; the caller must keep it alive and unmodified.
func FromBytes(data []byte) (*Document, error) {
	next := func(n int) ([]byte, error) {
		if len(data) < n {
			return nil, xerrors.New("unexpected end of data")
		}

		chunk := data[:n]
		data = data[n:]

		return chunk, nil
	}

	nextUint64 := func() (uint64, error) {
		chunk, err := next(8)
		if err != nil {
			return 0, err
		}

		return binary.NativeEndian.Uint64(chunk), nil
	}

	stringNum, err := nextUint64()
	if err != nil {
		return nil, xerrors.Errorf("failed to read string count: %v", err)
	}

	doc := &Document{strings: make([]string, 0, stringNum)}

	for i := uint64(0); i < stringNum; i++ {
		length, err := nextUint64()
		if err != nil {
			return nil, xerrors.Errorf("failed to read length of string %d: %v", i, err)
		}

		chunk, err := next(int(length))
		if err != nil {
			return nil, xerrors.Errorf("failed to read string %d: %v", i, err)
		}

		doc.strings = append(doc.strings, string(chunk))
	}

	streamBytes, err := nextUint64()
	if err != nil {
		return nil, xerrors.Errorf("failed to read stream size: %v", err)
	}

	doc.data, err = next(int(streamBytes))
	if err != nil {
		return nil, xerrors.Errorf("failed to read element stream: %v", err)
	}

	return doc, nil
}

// Save writes the document to a file.
func Save(path string, doc *Document) error {
	err := os.WriteFile(path, doc.Bytes(), 0644)
	if err != nil {
		return xerrors.Errorf("failed to write file: %v", err)
	}

	return nil
}

// Load populates a document from a file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("failed to read file: %v", err)
	}

	doc, err := FromBytes(data)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode %s: %v", path, err)
	}

	return doc, nil
}

// WriteSubDocument embeds a whole document under the name, as a chunk
// holding its file form.
func WriteSubDocument(w *Writer, name serde.Name, doc *Document) {
	w.WriteChunk(name, doc.Bytes())
}

// ReadSubDocument extracts a document embedded with WriteSubDocument. The
// returned document borrows the parent's storage.
func ReadSubDocument(r *Reader, name serde.Name) (*Document, error) {
	chunk := r.ReadChunk(name)
	if chunk == nil {
		return nil, xerrors.Errorf("no sub-document under name %q", name.String())
	}

	doc, err := FromBytes(chunk)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode sub-document %q: %v", name.String(), err)
	}

	return doc, nil
}
