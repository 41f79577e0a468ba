package binary

import (
	"encoding/binary"
	"math"
)

// numeric holds a decoded scalar payload together with its stored type, and
// materializes it as any of the scalar kinds with lossy conversions:
// numeric to numeric is a plain cast, bool becomes 0/1, and nonzero becomes
// true.
type numeric struct {
	typ  elementType
	bits uint32
}

// readNumeric decodes the scalar payload of an element of the given type.
// The second return value is false when the type has no numeric reading.
func readNumeric(typ elementType, payload []byte) (numeric, bool) {
	switch typ {
	case typeInt, typeUint, typeFloat:
		return numeric{typ: typ, bits: binary.NativeEndian.Uint32(payload)}, true
	case typeBool:
		var bits uint32
		if payload[0] > 0 {
			bits = 1
		}

		return numeric{typ: typeBool, bits: bits}, true
	}

	return numeric{}, false
}

func (n numeric) toInt32() int32 {
	switch n.typ {
	case typeInt:
		return int32(n.bits)
	case typeUint:
		return int32(n.bits)
	case typeFloat:
		return int32(math.Float32frombits(n.bits))
	case typeBool:
		return int32(n.bits)
	}

	return 0
}

func (n numeric) toUint32() uint32 {
	switch n.typ {
	case typeInt:
		return uint32(int32(n.bits))
	case typeUint:
		return n.bits
	case typeFloat:
		return uint32(math.Float32frombits(n.bits))
	case typeBool:
		return n.bits
	}

	return 0
}

func (n numeric) toFloat32() float32 {
	switch n.typ {
	case typeInt:
		return float32(int32(n.bits))
	case typeUint:
		return float32(n.bits)
	case typeFloat:
		return math.Float32frombits(n.bits)
	case typeBool:
		return float32(n.bits)
	}

	return 0
}

func (n numeric) toBool() bool {
	switch n.typ {
	case typeInt, typeUint, typeBool:
		return n.bits != 0
	case typeFloat:
		return math.Float32frombits(n.bits) != 0
	}

	return false
}
