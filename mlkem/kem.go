package mlkem

import (
	"errors"
	"io"

	"github.com/KarpelesLab/pqc/internal/ct"
	"github.com/KarpelesLab/pqc/internal/symmetric"
)

var (
	ErrInvalidSeed       = errors.New("mlkem: invalid seed length")
	ErrInvalidMessage    = errors.New("mlkem: invalid message length")
	ErrInvalidPublicKey  = errors.New("mlkem: invalid encapsulation key")
	ErrInvalidPrivateKey = errors.New("mlkem: invalid decapsulation key")
	ErrInvalidCiphertext = errors.New("mlkem: invalid ciphertext length")
)

// EncapsulationKey is the public key of an ML-KEM key pair.
type EncapsulationKey struct {
	p   *Parameters
	t   []nttElement // NTT-domain public vector
	rho [32]byte     // matrix seed
	h   [32]byte     // H(ek)
	a   []nttElement // expanded matrix A, a[i*k+j]
}

// DecapsulationKey is the private key of an ML-KEM key pair.
type DecapsulationKey struct {
	d       [32]byte
	z       [32]byte // implicit rejection seed
	hasSeed bool
	s       []nttElement // NTT-domain secret vector
	ek      EncapsulationKey
}

// GenerateKey generates a new decapsulation key, drawing the d || z seed
// from rand.
func GenerateKey(p *Parameters, rand io.Reader) (*DecapsulationKey, error) {
	var seed [SeedSize]byte
	if _, err := io.ReadFull(rand, seed[:]); err != nil {
		return nil, err
	}
	defer ct.Zero(seed[:])
	return NewDecapsulationKeyFromSeed(p, seed[:])
}

// NewDecapsulationKeyFromSeed deterministically derives a decapsulation key
// from the 64-byte seed d || z.
// Implements FIPS 203 Algorithm 16 (ML-KEM.KeyGen_internal).
func NewDecapsulationKeyFromSeed(p *Parameters, seed []byte) (*DecapsulationKey, error) {
	if len(seed) != SeedSize {
		return nil, ErrInvalidSeed
	}
	dk := &DecapsulationKey{hasSeed: true}
	copy(dk.d[:], seed[:32])
	copy(dk.z[:], seed[32:])
	dk.s = pkeKeyGen(p, &dk.ek, dk.d[:])
	dk.ek.h = symmetric.H(dk.ek.Bytes())
	return dk, nil
}

// NewEncapsulationKey parses an encoded encapsulation key. It fails if the
// key has the wrong length or if any coefficient is not reduced modulo q.
func NewEncapsulationKey(p *Parameters, b []byte) (*EncapsulationKey, error) {
	if len(b) != p.EncapsulationKeySize() {
		return nil, ErrInvalidPublicKey
	}
	ek := &EncapsulationKey{p: p}
	if err := checkPublicKey(p, b, ek); err != nil {
		return nil, err
	}
	copy(ek.rho[:], b[p.k*encodingSize12:])
	ek.h = symmetric.H(b)
	ek.a = expandMatrix(ek.rho[:], p.k)
	return ek, nil
}

// checkPublicKey decodes the t vector of b into ek, reducing every
// coefficient, re-encodes it and compares the result with the input.
// Implements the encapsulation key check of FIPS 203 Section 7.2.
func checkPublicKey(p *Parameters, b []byte, ek *EncapsulationKey) error {
	ek.t = make([]nttElement, p.k)
	reencoded := make([]byte, 0, p.k*encodingSize12)
	for i := range ek.t {
		ek.t[i] = polyByteDecode[nttElement](b[i*encodingSize12 : (i+1)*encodingSize12])
		reencoded = polyByteEncode(reencoded, ek.t[i])
	}
	if ct.Compare(reencoded, b[:p.k*encodingSize12]) != 1 {
		return ErrInvalidPublicKey
	}
	return nil
}

// NewDecapsulationKey parses an encoded (expanded) decapsulation key.
// It fails if the embedded hash does not match the embedded encapsulation
// key.
func NewDecapsulationKey(p *Parameters, b []byte) (*DecapsulationKey, error) {
	if len(b) != p.DecapsulationKeySize() {
		return nil, ErrInvalidPrivateKey
	}
	if err := checkPrivateKey(p, b); err != nil {
		return nil, err
	}

	dkPKE := b[:p.k*encodingSize12]
	ekBytes := b[len(dkPKE) : len(dkPKE)+p.EncapsulationKeySize()]

	ek, err := NewEncapsulationKey(p, ekBytes)
	if err != nil {
		return nil, ErrInvalidPrivateKey
	}
	dk := &DecapsulationKey{ek: *ek}
	copy(dk.z[:], b[len(b)-32:])
	dk.s = make([]nttElement, p.k)
	for i := range dk.s {
		dk.s[i] = polyByteDecode[nttElement](dkPKE[i*encodingSize12 : (i+1)*encodingSize12])
	}
	return dk, nil
}

// checkPrivateKey verifies that the hash stored in an encoded decapsulation
// key matches H of the embedded encapsulation key.
// Implements the decapsulation key check of FIPS 203 Section 7.3.
func checkPrivateKey(p *Parameters, b []byte) error {
	off := p.k * encodingSize12
	ekBytes := b[off : off+p.EncapsulationKeySize()]
	stored := b[len(b)-64 : len(b)-32]
	h := symmetric.H(ekBytes)
	if ct.Compare(h[:], stored) != 1 {
		return ErrInvalidPrivateKey
	}
	return nil
}

// Parameters returns the parameter set of the key.
func (ek *EncapsulationKey) Parameters() *Parameters { return ek.p }

// Bytes returns the encoded encapsulation key t || rho.
func (ek *EncapsulationKey) Bytes() []byte {
	b := make([]byte, 0, ek.p.EncapsulationKeySize())
	for i := range ek.t {
		b = polyByteEncode(b, ek.t[i])
	}
	return append(b, ek.rho[:]...)
}

// Encapsulate generates a shared secret and its ciphertext, drawing the
// 32-byte message from rand.
func (ek *EncapsulationKey) Encapsulate(rand io.Reader) (ciphertext, sharedKey []byte, err error) {
	var m [MessageSize]byte
	if _, err := io.ReadFull(rand, m[:]); err != nil {
		return nil, nil, err
	}
	defer ct.Zero(m[:])
	return ek.EncapsulateDerand(m[:])
}

// EncapsulateDerand is the deterministic form of Encapsulate, taking the
// 32-byte message explicitly. The same message must never be reused.
// Implements FIPS 203 Algorithm 17 (ML-KEM.Encaps_internal).
func (ek *EncapsulationKey) EncapsulateDerand(m []byte) (ciphertext, sharedKey []byte, err error) {
	if len(m) != MessageSize {
		return nil, nil, ErrInvalidMessage
	}
	key, r := symmetric.G(m, ek.h[:])
	defer ct.Zero(r[:])
	c := pkeEncrypt(ek, m, r[:])
	return c, key[:], nil
}

// EncapsulationKey returns the public key of the key pair.
func (dk *DecapsulationKey) EncapsulationKey() *EncapsulationKey {
	ek := dk.ek
	return &ek
}

// Bytes returns the expanded encoding dk_PKE || ek || H(ek) || z.
func (dk *DecapsulationKey) Bytes() []byte {
	b := make([]byte, 0, dk.ek.p.DecapsulationKeySize())
	for i := range dk.s {
		b = polyByteEncode(b, dk.s[i])
	}
	b = append(b, dk.ek.Bytes()...)
	b = append(b, dk.ek.h[:]...)
	return append(b, dk.z[:]...)
}

// Seed returns the 64-byte d || z seed the key was derived from, or nil if
// the key was parsed from its expanded encoding.
func (dk *DecapsulationKey) Seed() []byte {
	if !dk.hasSeed {
		return nil
	}
	seed := make([]byte, 0, SeedSize)
	seed = append(seed, dk.d[:]...)
	return append(seed, dk.z[:]...)
}

// Decapsulate returns the shared secret for ciphertext c. A ciphertext of
// the right length that fails re-encryption yields the implicit rejection
// secret J(z || c) instead of an error, chosen without branching on the
// comparison.
// Implements FIPS 203 Algorithm 18 (ML-KEM.Decaps_internal).
func (dk *DecapsulationKey) Decapsulate(c []byte) (sharedKey []byte, err error) {
	if len(c) != dk.ek.p.CiphertextSize() {
		return nil, ErrInvalidCiphertext
	}
	if err := dk.check(); err != nil {
		return nil, err
	}

	m := pkeDecrypt(dk.ek.p, dk.s, c)
	defer ct.Zero(m)

	kPrime, r := symmetric.G(m, dk.ek.h[:])
	defer ct.Zero(kPrime[:])
	defer ct.Zero(r[:])

	kBar := symmetric.J(dk.z[:], c)
	c1 := pkeEncrypt(&dk.ek, m, r[:])
	ct.Move(kBar[:], kPrime[:], ct.Compare(c, c1))
	return kBar[:], nil
}

// check repeats the decapsulation key check on the parsed key: the cached
// H(ek) must still match the embedded encapsulation key.
func (dk *DecapsulationKey) check() error {
	h := symmetric.H(dk.ek.Bytes())
	if ct.Compare(h[:], dk.ek.h[:]) != 1 {
		return ErrInvalidPrivateKey
	}
	return nil
}

// Parameters returns the parameter set of the key.
func (dk *DecapsulationKey) Parameters() *Parameters { return dk.ek.p }
