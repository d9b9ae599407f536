package keyhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasher_Deterministic(t *testing.T) {
	a := New().String("Prop1").Int(2).Bool(true).Sum()
	b := New().String("Prop1").Int(2).Bool(true).Sum()
	require.Equal(t, a, b)

	c := New().String("Prop1").Int(2).Bool(false).Sum()
	require.NotEqual(t, a, c)
}

func TestHasher_StringSeparation(t *testing.T) {
	a := New().String("ab").String("c").Sum()
	b := New().String("a").String("bc").Sum()
	require.NotEqual(t, a, b)
}

func TestFingerprint(t *testing.T) {
	f1 := Fingerprint("get", "Prop1")
	require.Len(t, f1, 32)
	require.Equal(t, f1, Fingerprint("get", "Prop1"))
	require.NotEqual(t, f1, Fingerprint("getP", "rop1"))
	require.NotEqual(t, f1, Fingerprint("get", "Prop2"))
}
