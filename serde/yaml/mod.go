// Package yaml feeds YAML documents into the serde visitor.
//
// YAML is a source format only: a document is walked and replayed as events
// on a destination writer, which records it in its own format. Supporting
// the format therefore took a single transcoding function, which is the
// extension path intended for any further format.
//
// Documents are materialized as yaml.MapSlice so member order survives the
// parse, matching the iteration contract of the destination backends.
package yaml

import (
	"fmt"
	"os"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"

	"github.com/borjaportugal/Serializer/serde"
)

// Parse materializes a YAML document. The top level must be a mapping.
func Parse(data []byte) (yaml.MapSlice, error) {
	var doc yaml.MapSlice

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse: %v", err)
	}

	return doc, nil
}

// Load populates a document from a file.
func Load(path string) (yaml.MapSlice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("failed to read file: %v", err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode %s: %v", path, err)
	}

	return doc, nil
}

// Transcode walks a YAML document and replays its content as visitor events
// on dst, which must be a writer.
func Transcode(doc yaml.MapSlice, dst serde.Serializer) {
	if dst.IsReader() {
		panic("yaml: Transcode expects a writer")
	}

	transcodeChildren(doc, dst)
}

func transcodeChildren(doc yaml.MapSlice, dst serde.Serializer) {
	for _, item := range doc {
		transcodeValue(item.Value, nameOf(item.Key), dst)
	}
}

func nameOf(key interface{}) serde.Name {
	if s, ok := key.(string); ok {
		return serde.NewName(s)
	}

	return serde.NewName(fmt.Sprint(key))
}

func transcodeValue(value interface{}, name serde.Name, dst serde.Serializer) {
	switch v := value.(type) {
	case nil:
		// Nothing to replay.

	case yaml.MapSlice:
		serde.SerializeObject(dst, name, func(sub serde.Serializer) {
			transcodeChildren(v, sub)
		})

	case []interface{}:
		transcodeSequence(v, name, dst)

	case int:
		serde.WriteInt32(dst, name, int32(v))

	case int64:
		serde.WriteInt32(dst, name, int32(v))

	case uint64:
		serde.WriteUint32(dst, name, uint32(v))

	case float64:
		serde.WriteFloat32(dst, name, float32(v))

	case bool:
		serde.WriteBool(dst, name, v)

	case string:
		serde.WriteStr(dst, name, v)
	}
}

func transcodeSequence(seq []interface{}, name serde.Name, dst serde.Serializer) {
	if len(seq) == 0 {
		return
	}

	// The element type comes from element 0, except that a sequence mixing
	// integers and floats is promoted to float.
	switch seq[0].(type) {
	case yaml.MapSlice:
		serde.WriteObjectArray(dst, name, len(seq), func(sub serde.Serializer, idx int) {
			if obj, ok := seq[idx].(yaml.MapSlice); ok {
				transcodeChildren(obj, sub)
			}
		})

	case int, int64, uint64, float64:
		if isIntegral(seq) {
			vs := make([]int32, len(seq))
			for i, e := range seq {
				vs[i] = int32(asFloat(e))
			}
			dst.Int32Array(name, serde.NewValuesArray(vs))

			return
		}

		vs := make([]float32, len(seq))
		for i, e := range seq {
			vs[i] = float32(asFloat(e))
		}
		dst.Float32Array(name, serde.NewValuesArray(vs))

	case bool:
		vs := make([]bool, len(seq))
		for i, e := range seq {
			b, _ := e.(bool)
			vs[i] = b
		}
		dst.BoolArray(name, serde.NewValuesArray(vs))

	case string:
		vs := make([]string, len(seq))
		for i, e := range seq {
			s, _ := e.(string)
			vs[i] = s
		}
		dst.StringArray(name, serde.NewValuesArray(vs))
	}
}

func isIntegral(seq []interface{}) bool {
	for _, e := range seq {
		if _, ok := e.(float64); ok {
			return false
		}
	}

	return true
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case float64:
		return n
	}

	return 0
}
