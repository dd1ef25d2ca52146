package mldsa

import (
	"crypto"
	"crypto/subtle"
	"io"

	"github.com/KarpelesLab/pqc/internal/ct"
	"github.com/KarpelesLab/pqc/internal/symmetric"
)

// PrivateKey is an ML-DSA or Dilithium private key.
type PrivateKey struct {
	p       *Parameters
	seed    [SeedSize]byte
	hasSeed bool

	rho [32]byte // public seed
	key [32]byte // private seed for signing
	tr  [64]byte // H(pk), first p.trSize() bytes used
	s1  []ringElement
	s2  []ringElement
	t0  []ringElement
	t1  []ringElement
	a   []nttElement // matrix A in NTT form
}

// PublicKey is an ML-DSA or Dilithium public key.
type PublicKey struct {
	p   *Parameters
	rho [32]byte
	t1  []ringElement
	tr  [64]byte
	a   []nttElement
}

// GenerateKey generates a new key pair, drawing the seed from rand.
func GenerateKey(p *Parameters, rand io.Reader) (*PrivateKey, error) {
	var seed [SeedSize]byte
	if _, err := io.ReadFull(rand, seed[:]); err != nil {
		return nil, err
	}
	defer ct.Zero(seed[:])
	return NewKey(p, seed[:])
}

// NewKey deterministically derives a key pair from a 32-byte seed.
// Implements FIPS 204 Algorithm 6 (ML-DSA.KeyGen_internal).
func NewKey(p *Parameters, seed []byte) (*PrivateKey, error) {
	if len(seed) != SeedSize {
		return nil, ErrInvalidSeed
	}

	sk := &PrivateKey{p: p, hasSeed: true}
	copy(sk.seed[:], seed)

	// (rho, rho', K) = H(seed || k || l), without the dimensions for Dilithium.
	var expanded [128]byte
	if p.legacy {
		symmetric.Shake256(expanded[:], seed)
	} else {
		symmetric.Shake256(expanded[:], seed, []byte{byte(p.k), byte(p.l)})
	}
	defer ct.Zero(expanded[:])

	copy(sk.rho[:], expanded[:32])
	rhoPrime := expanded[32:96]
	copy(sk.key[:], expanded[96:])

	sk.a = expandMatrix(sk.rho[:], p.k, p.l)
	sk.s1, sk.s2 = expandS(rhoPrime, p)

	sk.t1, sk.t0 = sk.computeT()

	symmetric.Shake256(sk.tr[:p.trSize()], sk.publicKeyBytes())
	return sk, nil
}

// computeT returns the high and low parts of t = A*s1 + s2.
func (sk *PrivateKey) computeT() (t1, t0 []ringElement) {
	p := sk.p
	t := matrixMul(sk.a, nttVector(sk.s1), p.k, p.l)
	t1 = make([]ringElement, p.k)
	t0 = make([]ringElement, p.k)
	for i := range t {
		t[i] = polyAdd(t[i], sk.s2[i])
		for j := 0; j < n; j++ {
			t1[i][j], t0[i][j] = power2Round(t[i][j])
		}
	}
	return t1, t0
}

func (sk *PrivateKey) publicKeyBytes() []byte {
	b := make([]byte, 0, sk.p.PublicKeySize())
	b = append(b, sk.rho[:]...)
	for i := range sk.t1 {
		b = packT1(b, &sk.t1[i])
	}
	return b
}

// NewPrivateKey parses an encoded private key
// rho || K || tr || s1 || s2 || t0.
func NewPrivateKey(p *Parameters, b []byte) (*PrivateKey, error) {
	if len(b) != p.PrivateKeySize() {
		return nil, ErrInvalidPrivateKey
	}

	sk := &PrivateKey{p: p}
	copy(sk.rho[:], b[:32])
	copy(sk.key[:], b[32:64])
	trSize := p.trSize()
	copy(sk.tr[:trSize], b[64:64+trSize])
	b = b[64+trSize:]

	etaSize := p.etaSize()
	sk.s1 = make([]ringElement, p.l)
	sk.s2 = make([]ringElement, p.k)
	var err error
	for i := range sk.s1 {
		if sk.s1[i], err = unpackEta(b[:etaSize], p.eta); err != nil {
			return nil, ErrInvalidPrivateKey
		}
		b = b[etaSize:]
	}
	for i := range sk.s2 {
		if sk.s2[i], err = unpackEta(b[:etaSize], p.eta); err != nil {
			return nil, ErrInvalidPrivateKey
		}
		b = b[etaSize:]
	}
	sk.t0 = make([]ringElement, p.k)
	for i := range sk.t0 {
		sk.t0[i] = unpackT0(b[:encodingSize13])
		b = b[encodingSize13:]
	}

	sk.a = expandMatrix(sk.rho[:], p.k, p.l)
	sk.t1, _ = sk.computeT()
	return sk, nil
}

// NewPublicKey parses an encoded public key rho || t1.
func NewPublicKey(p *Parameters, b []byte) (*PublicKey, error) {
	if len(b) != p.PublicKeySize() {
		return nil, ErrInvalidPublicKey
	}

	pk := &PublicKey{p: p}
	copy(pk.rho[:], b[:32])
	pk.t1 = make([]ringElement, p.k)
	for i := range pk.t1 {
		off := 32 + i*encodingSize10
		pk.t1[i] = unpackT1(b[off : off+encodingSize10])
	}
	pk.a = expandMatrix(pk.rho[:], p.k, p.l)
	symmetric.Shake256(pk.tr[:p.trSize()], b)
	return pk, nil
}

// Parameters returns the parameter set of the key.
func (sk *PrivateKey) Parameters() *Parameters { return sk.p }

// Seed returns the 32-byte seed the key was derived from, or nil if the key
// was parsed from its encoded form.
func (sk *PrivateKey) Seed() []byte {
	if !sk.hasSeed {
		return nil
	}
	return append([]byte(nil), sk.seed[:]...)
}

// Bytes returns the encoded private key.
func (sk *PrivateKey) Bytes() []byte {
	p := sk.p
	b := make([]byte, 0, p.PrivateKeySize())
	b = append(b, sk.rho[:]...)
	b = append(b, sk.key[:]...)
	b = append(b, sk.tr[:p.trSize()]...)
	for i := range sk.s1 {
		b = packEta(b, &sk.s1[i], p.eta)
	}
	for i := range sk.s2 {
		b = packEta(b, &sk.s2[i], p.eta)
	}
	for i := range sk.t0 {
		b = packT0(b, &sk.t0[i])
	}
	return b
}

// PublicKey returns the public key of the key pair. For a parsed private key
// it is recomputed from s1 and s2.
func (sk *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{
		p:   sk.p,
		rho: sk.rho,
		t1:  sk.t1,
		tr:  sk.tr,
		a:   sk.a,
	}
}

// Public returns the public key corresponding to this private key.
// This implements the crypto.Signer interface.
func (sk *PrivateKey) Public() crypto.PublicKey {
	return sk.PublicKey()
}

// Equal reports whether sk and other are the same private key.
func (sk *PrivateKey) Equal(other crypto.PrivateKey) bool {
	o, ok := other.(*PrivateKey)
	if !ok || o.p != sk.p {
		return false
	}
	return subtle.ConstantTimeCompare(sk.Bytes(), o.Bytes()) == 1
}

// Parameters returns the parameter set of the key.
func (pk *PublicKey) Parameters() *Parameters { return pk.p }

// Bytes returns the encoded public key.
func (pk *PublicKey) Bytes() []byte {
	b := make([]byte, 0, pk.p.PublicKeySize())
	b = append(b, pk.rho[:]...)
	for i := range pk.t1 {
		b = packT1(b, &pk.t1[i])
	}
	return b
}

// Equal reports whether pk and other are the same public key.
func (pk *PublicKey) Equal(other crypto.PublicKey) bool {
	o, ok := other.(*PublicKey)
	if !ok || o.p != pk.p {
		return false
	}
	return subtle.ConstantTimeCompare(pk.Bytes(), o.Bytes()) == 1
}
