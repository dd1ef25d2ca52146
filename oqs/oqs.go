// Package oqs exposes the ML-KEM and ML-DSA implementations through a
// uniform, name-addressed interface in the style of liboqs.
//
// Every algorithm is described by an Algorithm value and driven through raw
// byte buffers whose lengths are fixed by that description:
//
//	k, err := oqs.KEMByName("ML-KEM-768")
//	if err != nil {
//	    // handle error
//	}
//	pk, sk, err := k.Keypair(nil)
//	ct, ss, err := k.Encaps(pk, nil)
//	ss2, err := k.Decaps(ct, sk)
//
// The same algorithms are also available as hpqc kem.Scheme and sign.Scheme
// values through KEMScheme and SignScheme.
package oqs

import (
	"errors"
	"io"

	"github.com/katzenpost/hpqc/sign"
)

// Backend is the arithmetic backend reported by every descriptor.
const Backend = "portable"

var (
	// ErrInvalidLength is returned when a buffer does not have the length
	// fixed by the algorithm descriptor.
	ErrInvalidLength = errors.New("oqs: invalid buffer length")

	// ErrUnknownAlgorithm is returned by the registry lookups.
	ErrUnknownAlgorithm = errors.New("oqs: unknown algorithm")

	// ErrVerification reports a signature that does not verify.
	ErrVerification = errors.New("oqs: signature verification failed")

	// ErrContextNotSupported is returned when a non-empty context string is
	// passed to a scheme without context support.
	ErrContextNotSupported = sign.ErrContextNotSupported
)

// Algorithm describes one algorithm variant.
type Algorithm struct {
	Name    string
	Version string

	// NISTLevel is the claimed NIST security category.
	NISTLevel int

	// INDCCA is set for KEMs, EUFCMA for signature schemes.
	INDCCA bool
	EUFCMA bool

	SigWithCtxSupport bool

	PublicKeySize    int
	SecretKeySize    int
	CiphertextSize   int
	SharedSecretSize int
	SignatureSize    int

	// SeedSize is the length of the seed accepted by the derandomized
	// key generation entry point.
	SeedSize int

	Backend string
}

// KEM is a key-encapsulation mechanism operating on encoded keys.
//
// A nil rand selects the hpqc system reader.
type KEM interface {
	Algorithm() Algorithm
	Keypair(rand io.Reader) (pk, sk []byte, err error)
	KeypairDerand(seed []byte) (pk, sk []byte, err error)
	Encaps(pk []byte, rand io.Reader) (ct, ss []byte, err error)
	EncapsDerand(pk, m []byte) (ct, ss []byte, err error)
	// Decaps returns a shared secret for every ciphertext of the right
	// length, including inauthentic ones.
	Decaps(ct, sk []byte) (ss []byte, err error)
	PublicFromPrivate(sk []byte) (pk []byte, err error)
}

// Signature is a signature scheme operating on encoded keys.
//
// Keypair draws from rand, or from the hpqc system reader when rand is nil.
// The signing entry points hedge with rand and are deterministic when rand
// is nil. Verification failures of any kind are reported as ErrVerification
// or ErrInvalidLength.
type Signature interface {
	Algorithm() Algorithm
	Keypair(rand io.Reader) (pk, sk []byte, err error)
	KeypairFromSeed(seed []byte) (pk, sk []byte, err error)
	Sign(msg, sk []byte, rand io.Reader) ([]byte, error)
	Verify(msg, sig, pk []byte) error
	SignWithCtx(msg, ctx, sk []byte, rand io.Reader) ([]byte, error)
	VerifyWithCtx(msg, sig, ctx, pk []byte) error
	SignAttached(msg, ctx, sk []byte, rand io.Reader) ([]byte, error)
	Open(sm, ctx, pk []byte) ([]byte, error)
	PublicFromPrivate(sk []byte) (pk []byte, err error)
}
