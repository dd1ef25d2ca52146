// Package mldsa implements ML-DSA (Module-Lattice Digital Signature Algorithm)
// as specified in FIPS 204, and the round 3 Dilithium signature scheme it was
// derived from.
//
// ML-DSA is a post-quantum digital signature scheme standardized by NIST.
// This package supports three security levels:
//   - ML-DSA-44: NIST security level 2 (comparable to AES-128)
//   - ML-DSA-65: NIST security level 3 (comparable to AES-192)
//   - ML-DSA-87: NIST security level 5 (comparable to AES-256)
//
// The Dilithium2, Dilithium3 and Dilithium5 parameter sets produce the
// round 3.1 encodings. They have no context string and a shorter transcript
// hash, and exist for interoperability with older deployments.
//
// Basic usage:
//
//	key, err := mldsa.GenerateKey(mldsa.MLDSA65, rand.Reader)
//	if err != nil {
//	    // handle error
//	}
//	sig, err := key.SignWithContext(rand.Reader, message, nil)
//	if err != nil {
//	    // handle error
//	}
//	valid := key.PublicKey().Verify(sig, message, nil)
package mldsa

import (
	"crypto"
	"errors"
)

// Global ML-DSA constants from FIPS 204.
const (
	// n is the number of coefficients in polynomials.
	n = 256

	// q is the modulus: q = 2^23 - 2^13 + 1 = 8380417
	q = 8380417

	// d is the number of dropped bits from t.
	d = 13

	// SeedSize is the size of the random seed used for key generation.
	SeedSize = 32

	// MaxContextSize is the largest context string, which is length-prefixed
	// by a single byte.
	MaxContextSize = 255
)

// Derived constants.
const (
	qMinus1Div2 = (q - 1) / 2

	gamma2QMinus1Div88 = (q - 1) / 88 // ML-DSA-44
	gamma2QMinus1Div32 = (q - 1) / 32 // ML-DSA-65, ML-DSA-87
)

// maxSignAttempts bounds the rejection loop. The expected number of attempts
// is below 5 for every parameter set.
const maxSignAttempts = 1000

var (
	ErrInvalidSeed         = errors.New("mldsa: invalid seed length")
	ErrInvalidPublicKey    = errors.New("mldsa: invalid public key length")
	ErrInvalidPrivateKey   = errors.New("mldsa: invalid private key")
	ErrContextTooLong      = errors.New("mldsa: context too long")
	ErrContextNotSupported = errors.New("mldsa: context not supported by parameter set")
	ErrPreHashed           = errors.New("mldsa: cannot sign pre-hashed messages")
	ErrSignFailed          = errors.New("mldsa: signing did not converge")
	ErrVerification        = errors.New("mldsa: signature verification failed")
)

// Parameters describes one ML-DSA or Dilithium parameter set.
type Parameters struct {
	name       string
	k, l       int
	eta        int
	tau        int
	omega      int
	gamma1Bits int
	gamma2     uint32
	lambda     int
	nistLevel  int

	// legacy selects the round 3.1 Dilithium encodings: no domain bytes in
	// key generation, 32-byte tr and challenge seed, and mu = H(tr || M).
	legacy bool
}

// The parameter sets of FIPS 204 Table 1 and their round 3.1 counterparts.
var (
	MLDSA44 = &Parameters{name: "ML-DSA-44", k: 4, l: 4, eta: 2, tau: 39, omega: 80,
		gamma1Bits: 17, gamma2: gamma2QMinus1Div88, lambda: 128, nistLevel: 2}
	MLDSA65 = &Parameters{name: "ML-DSA-65", k: 6, l: 5, eta: 4, tau: 49, omega: 55,
		gamma1Bits: 19, gamma2: gamma2QMinus1Div32, lambda: 192, nistLevel: 3}
	MLDSA87 = &Parameters{name: "ML-DSA-87", k: 8, l: 7, eta: 2, tau: 60, omega: 75,
		gamma1Bits: 19, gamma2: gamma2QMinus1Div32, lambda: 256, nistLevel: 5}

	Dilithium2 = &Parameters{name: "Dilithium2", k: 4, l: 4, eta: 2, tau: 39, omega: 80,
		gamma1Bits: 17, gamma2: gamma2QMinus1Div88, lambda: 128, nistLevel: 2, legacy: true}
	Dilithium3 = &Parameters{name: "Dilithium3", k: 6, l: 5, eta: 4, tau: 49, omega: 55,
		gamma1Bits: 19, gamma2: gamma2QMinus1Div32, lambda: 128, nistLevel: 3, legacy: true}
	Dilithium5 = &Parameters{name: "Dilithium5", k: 8, l: 7, eta: 2, tau: 60, omega: 75,
		gamma1Bits: 19, gamma2: gamma2QMinus1Div32, lambda: 128, nistLevel: 5, legacy: true}
)

// ParameterSets lists every supported parameter set.
func ParameterSets() []*Parameters {
	return []*Parameters{MLDSA44, MLDSA65, MLDSA87, Dilithium2, Dilithium3, Dilithium5}
}

// Name returns the parameter set name, for example "ML-DSA-65".
func (p *Parameters) Name() string { return p.name }

// NISTLevel returns the claimed NIST security category.
func (p *Parameters) NISTLevel() int { return p.nistLevel }

// SupportsContext reports whether signatures bind a context string.
func (p *Parameters) SupportsContext() bool { return !p.legacy }

// PublicKeySize returns the size of an encoded public key.
func (p *Parameters) PublicKeySize() int {
	return 32 + p.k*encodingSize10
}

// PrivateKeySize returns the size of an encoded private key.
func (p *Parameters) PrivateKeySize() int {
	return 32 + 32 + p.trSize() + (p.k+p.l)*p.etaSize() + p.k*encodingSize13
}

// SignatureSize returns the size of a signature.
func (p *Parameters) SignatureSize() int {
	return p.cTildeSize() + p.l*p.zSize() + p.omega + p.k
}

func (p *Parameters) beta() uint32 { return uint32(p.eta * p.tau) }

func (p *Parameters) gamma1() uint32 { return 1 << p.gamma1Bits }

func (p *Parameters) trSize() int {
	if p.legacy {
		return 32
	}
	return 64
}

func (p *Parameters) cTildeSize() int { return p.lambda / 4 }

func (p *Parameters) etaSize() int {
	if p.eta == 2 {
		return encodingSize3
	}
	return encodingSize4
}

func (p *Parameters) zSize() int { return n * (p.gamma1Bits + 1) / 8 }

func (p *Parameters) w1Bits() int {
	if p.gamma2 == gamma2QMinus1Div88 {
		return 6
	}
	return 4
}

// Encoding size constants (bytes per polynomial).
const (
	encodingSize3  = n * 3 / 8  // eta=2 packed
	encodingSize4  = n * 4 / 8  // eta=4 packed or 4-bit w1
	encodingSize10 = n * 10 / 8 // t1 packed
	encodingSize13 = n * 13 / 8 // t0 packed
)

// SignerOpts implements crypto.SignerOpts for ML-DSA signing operations.
// It allows specifying an optional context string for domain separation.
type SignerOpts struct {
	// Context is an optional context string for domain separation (max 255 bytes).
	// If nil, no context is used.
	Context []byte
}

// HashFunc returns 0 to indicate that ML-DSA does not use pre-hashing.
// ML-DSA signs messages directly rather than message digests.
func (opts *SignerOpts) HashFunc() crypto.Hash {
	return 0
}

var _ crypto.Signer = (*PrivateKey)(nil)
