// Package symmetric provides the hash and extendable-output functions shared
// by the lattice schemes: SHA3-256, SHA3-512, SHAKE128 and SHAKE256.
package symmetric

import (
	"golang.org/x/crypto/sha3"
)

// Rates of the SHAKE sponges in bytes. Squeezing whole blocks of this size
// avoids partial permutations.
const (
	Shake128Rate = 168
	Shake256Rate = 136
)

// XOF absorbs with Write and squeezes with Read. Writing after the first Read
// panics.
type XOF = sha3.ShakeHash

// NewShake128 returns a fresh SHAKE128 stream.
func NewShake128() XOF {
	return sha3.NewShake128()
}

// NewShake256 returns a fresh SHAKE256 stream.
func NewShake256() XOF {
	return sha3.NewShake256()
}

// Shake256 fills out with SHAKE256 of the concatenated parts.
func Shake256(out []byte, parts ...[]byte) {
	h := sha3.NewShake256()
	for _, p := range parts {
		h.Write(p)
	}
	h.Read(out)
}

// H is SHA3-256.
func H(parts ...[]byte) (out [32]byte) {
	h := sha3.New256()
	for _, p := range parts {
		h.Write(p)
	}
	h.Sum(out[:0])
	return out
}

// G is SHA3-512 split into two 32-byte halves.
func G(parts ...[]byte) (a, b [32]byte) {
	h := sha3.New512()
	for _, p := range parts {
		h.Write(p)
	}
	var out [64]byte
	h.Sum(out[:0])
	copy(a[:], out[:32])
	copy(b[:], out[32:])
	return a, b
}

// J is SHAKE256 truncated to 32 bytes, used to derive the implicit rejection
// secret from z and the ciphertext.
func J(z, c []byte) (out [32]byte) {
	Shake256(out[:], z, c)
	return out
}

// PRF fills out with SHAKE256(s || b).
func PRF(out, s []byte, b byte) {
	Shake256(out, s, []byte{b})
}
