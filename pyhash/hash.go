// Package pyhash reproduces CPython's str hash and set iteration order.
//
// Tag and link lists produced by the reference ledger tool are Python frozensets, so their
// enumeration order depends on the interpreter's SipHash-1-3 secret. Hash computes the same
// 64-bit value CPython would for a given secret, and Ordering replays set insertion to yield the
// same iteration order.
package pyhash

import (
	"encoding/binary"
	"math/bits"
	"os"
	"strconv"
	"strings"
)

// DefaultSeed is the PYTHONHASHSEED the default key corresponds to.
const DefaultSeed = 979

// Key is the 128-bit SipHash secret.
type Key struct {
	K0 uint64
	K1 uint64
}

// DefaultKey is the secret CPython derives from PYTHONHASHSEED=979.
var DefaultKey = Key{K0: 0x935fc1c7e57669a3, K1: 0xd8e8de5e363d06c1}

// KeyFromSeed derives the key CPython uses for a PYTHONHASHSEED value. Seed 0 disables
// randomization and yields the zero key. A blank, "random" or out of range seed yields
// DefaultKey.
func KeyFromSeed(seed string) Key {
	seed = strings.TrimSpace(seed)
	if seed == "" || strings.EqualFold(seed, "random") {
		return DefaultKey
	}
	n, err := strconv.ParseUint(seed, 10, 32)
	if err != nil {
		return DefaultKey
	}
	if n == 0 {
		return Key{}
	}
	return lcgKey(uint32(n))
}

// KeyFromEnv reads PYTHONHASHSEED from the environment.
func KeyFromEnv() Key {
	return KeyFromSeed(os.Getenv("PYTHONHASHSEED"))
}

// lcgKey fills the secret the way CPython's lcg_urandom does and takes its first 16 bytes as
// two little endian words.
func lcgKey(seed uint32) Key {
	var secret [16]byte
	x := seed
	for i := range secret {
		x = x*214013 + 2531011
		secret[i] = byte(x >> 16)
	}
	return Key{
		K0: binary.LittleEndian.Uint64(secret[:8]),
		K1: binary.LittleEndian.Uint64(secret[8:]),
	}
}

// Hash returns CPython's hash(s) under key. The empty string hashes to 0 and -1 is remapped
// to -2.
func (k Key) Hash(s string) int64 {
	if s == "" {
		return 0
	}
	return fold(siphash13(k.K0, k.K1, encode(s)))
}

// fold reinterprets a digest as a signed hash. -1 is reserved as an error marker in CPython,
// so it becomes -2.
func fold(digest uint64) int64 {
	h := int64(digest)
	if h == -1 {
		return -2
	}
	return h
}

// encode lays the string out the way CPython stores it: the narrowest fixed width (1, 2 or 4
// bytes, little endian) that fits every code point.
func encode(s string) []byte {
	runes := []rune(s)
	maxRune := rune(0)
	for _, r := range runes {
		maxRune = max(maxRune, r)
	}

	switch {
	case maxRune <= 0xff:
		buf := make([]byte, len(runes))
		for i, r := range runes {
			buf[i] = byte(r)
		}
		return buf
	case maxRune <= 0xffff:
		buf := make([]byte, 2*len(runes))
		for i, r := range runes {
			binary.LittleEndian.PutUint16(buf[2*i:], uint16(r))
		}
		return buf
	default:
		buf := make([]byte, 4*len(runes))
		for i, r := range runes {
			binary.LittleEndian.PutUint32(buf[4*i:], uint32(r))
		}
		return buf
	}
}

func siphash13(k0, k1 uint64, data []byte) uint64 {
	v0 := k0 ^ 0x736f6d6570736575
	v1 := k1 ^ 0x646f72616e646f6d
	v2 := k0 ^ 0x6c7967656e657261
	v3 := k1 ^ 0x7465646279746573

	round := func() {
		v0 += v1
		v1 = bits.RotateLeft64(v1, 13)
		v1 ^= v0
		v0 = bits.RotateLeft64(v0, 32)
		v2 += v3
		v3 = bits.RotateLeft64(v3, 16)
		v3 ^= v2
		v0 += v3
		v3 = bits.RotateLeft64(v3, 21)
		v3 ^= v0
		v2 += v1
		v1 = bits.RotateLeft64(v1, 17)
		v1 ^= v2
		v2 = bits.RotateLeft64(v2, 32)
	}

	n := len(data)
	for len(data) >= 8 {
		m := binary.LittleEndian.Uint64(data)
		v3 ^= m
		round()
		v0 ^= m
		data = data[8:]
	}

	last := uint64(n) << 56
	for i, b := range data {
		last |= uint64(b) << (8 * i)
	}
	v3 ^= last
	round()
	v0 ^= last

	v2 ^= 0xff
	round()
	round()
	round()
	return v0 ^ v1 ^ v2 ^ v3
}
