package serde

import "fmt"

// maxNameLength is the largest name a backend is required to store.
const maxNameLength = 65535

// Name is the key of every named serializer operation. The static flag marks
// names with program-lifetime storage, which permits a backend to retain the
// value without copying it. Equality is bytewise.
type Name struct {
	value  string
	static bool
}

// N returns a static name. Meant for literals: serde.N("health").
func N(s string) Name {
	if len(s) > maxNameLength {
		panic(fmt.Sprintf("serde: name of %d bytes exceeds the maximum of %d", len(s), maxNameLength))
	}

	return Name{value: s, static: true}
}

// NewName returns a name for a string whose storage the caller controls.
func NewName(s string) Name {
	if len(s) > maxNameLength {
		panic(fmt.Sprintf("serde: name of %d bytes exceeds the maximum of %d", len(s), maxNameLength))
	}

	return Name{value: s}
}

// String returns the textual value of the name.
func (n Name) String() string {
	return n.value
}

// Static returns true when the name has program-lifetime storage.
func (n Name) Static() bool {
	return n.static
}

// Equal returns true when both names carry the same bytes, regardless of
// their static flags.
func (n Name) Equal(other Name) bool {
	return n.value == other.value
}

// EqualString returns true when the name carries the same bytes as s.
func (n Name) EqualString(s string) bool {
	return n.value == s
}
