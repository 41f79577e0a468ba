package serde

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestName_Equality(t *testing.T) {
	require.True(t, N("abc").Equal(NewName("abc")))
	require.False(t, N("abc").Equal(N("abd")))
	require.True(t, N("abc").EqualString("abc"))
	require.False(t, N("abc").EqualString("ab"))

	// Empty names are legal.
	require.True(t, N("").Equal(NewName("")))
}

func TestName_Static(t *testing.T) {
	require.True(t, N("lit").Static())
	require.False(t, NewName("dyn").Static())
}

func TestNewName_TooLong(t *testing.T) {
	require.Panics(t, func() {
		NewName(strings.Repeat("a", 65536))
	})

	require.NotPanics(t, func() {
		NewName(strings.Repeat("a", 65535))
	})
}
