// Package keyhash provides the two hashes used for structural cache keys:
// a fast FNV-1a accumulator for bucket selection and a blake2b fingerprint
// for stable, collision-resistant key identities.
package keyhash

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

const (
	offset64 = 14695981039346656037
	prime64  = 1099511628211
)

// Hasher accumulates an FNV-1a 64 bit hash without allocating.
type Hasher uint64

// New returns a Hasher in its initial state.
func New() Hasher { return offset64 }

// String mixes s followed by a separator byte.
func (h Hasher) String(s string) Hasher {
	for i := 0; i < len(s); i++ {
		h ^= Hasher(s[i])
		h *= prime64
	}
	return h.Byte(0)
}

// Byte mixes a single byte.
func (h Hasher) Byte(b byte) Hasher {
	h ^= Hasher(b)
	h *= prime64
	return h
}

// Bool mixes a flag.
func (h Hasher) Bool(b bool) Hasher {
	if b {
		return h.Byte(1)
	}
	return h.Byte(2)
}

// Int mixes an integer.
func (h Hasher) Int(n int) Hasher {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	for _, b := range buf {
		h = h.Byte(b)
	}
	return h
}

// Sum returns the accumulated hash.
func (h Hasher) Sum() uint64 { return uint64(h) }

// Fingerprint returns a hex encoded 128 bit blake2b digest over parts.
// Parts are length-prefixed so that ("ab","c") and ("a","bc") differ.
func Fingerprint(parts ...string) string {
	d, _ := blake2b.New(16, nil)
	var lenBuf [4]byte
	for _, p := range parts {
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(p)))
		d.Write(lenBuf[:])
		d.Write([]byte(p))
	}
	return hex.EncodeToString(d.Sum(nil))
}
