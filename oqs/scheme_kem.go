package oqs

import (
	"crypto/subtle"
	"fmt"

	"github.com/katzenpost/hpqc/kem"
	"github.com/katzenpost/hpqc/kem/pem"
	"github.com/katzenpost/hpqc/rand"

	"github.com/KarpelesLab/pqc/mlkem"
)

// tell the type checker that we obey these interfaces
var _ kem.Scheme = (*kemScheme)(nil)
var _ kem.PublicKey = (*KEMPublicKey)(nil)
var _ kem.PrivateKey = (*KEMPrivateKey)(nil)

var kemSchemes = make(map[string]*kemScheme)

func init() {
	for _, p := range mlkem.ParameterSets() {
		kemSchemes[normalizeName(p.Name())] = &kemScheme{p: p}
	}
}

// KEMScheme returns the hpqc kem.Scheme for the named ML-KEM parameter set,
// or nil if there is none.
func KEMScheme(name string) kem.Scheme {
	s, ok := kemSchemes[normalizeName(name)]
	if !ok {
		return nil
	}
	return s
}

type kemScheme struct {
	p *mlkem.Parameters
}

// KEMPublicKey is an ML-KEM encapsulation key usable with hpqc.
type KEMPublicKey struct {
	scheme *kemScheme
	ek     *mlkem.EncapsulationKey
}

func (k *KEMPublicKey) Scheme() kem.Scheme { return k.scheme }

func (k *KEMPublicKey) MarshalText() ([]byte, error) {
	return pem.ToPublicPEMBytes(k), nil
}

func (k *KEMPublicKey) MarshalBinary() ([]byte, error) {
	return k.ek.Bytes(), nil
}

func (k *KEMPublicKey) Equal(other kem.PublicKey) bool {
	o, ok := other.(*KEMPublicKey)
	if !ok || o.scheme != k.scheme {
		return false
	}
	return subtle.ConstantTimeCompare(o.ek.Bytes(), k.ek.Bytes()) == 1
}

// EncapsulationKey returns the underlying key.
func (k *KEMPublicKey) EncapsulationKey() *mlkem.EncapsulationKey { return k.ek }

// KEMPrivateKey is an ML-KEM decapsulation key usable with hpqc.
type KEMPrivateKey struct {
	scheme *kemScheme
	dk     *mlkem.DecapsulationKey
}

func (k *KEMPrivateKey) Scheme() kem.Scheme { return k.scheme }

func (k *KEMPrivateKey) MarshalBinary() ([]byte, error) {
	return k.dk.Bytes(), nil
}

func (k *KEMPrivateKey) Equal(other kem.PrivateKey) bool {
	o, ok := other.(*KEMPrivateKey)
	if !ok || o.scheme != k.scheme {
		return false
	}
	return subtle.ConstantTimeCompare(o.dk.Bytes(), k.dk.Bytes()) == 1
}

func (k *KEMPrivateKey) Public() kem.PublicKey {
	return &KEMPublicKey{scheme: k.scheme, ek: k.dk.EncapsulationKey()}
}

// DecapsulationKey returns the underlying key.
func (k *KEMPrivateKey) DecapsulationKey() *mlkem.DecapsulationKey { return k.dk }

func (s *kemScheme) Name() string { return s.p.Name() }

func (s *kemScheme) keyPair(dk *mlkem.DecapsulationKey) (*KEMPublicKey, *KEMPrivateKey) {
	return &KEMPublicKey{scheme: s, ek: dk.EncapsulationKey()}, &KEMPrivateKey{scheme: s, dk: dk}
}

func (s *kemScheme) GenerateKeyPair() (kem.PublicKey, kem.PrivateKey, error) {
	dk, err := mlkem.GenerateKey(s.p, rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	pk, sk := s.keyPair(dk)
	return pk, sk, nil
}

func (s *kemScheme) Encapsulate(pk kem.PublicKey) (ct, ss []byte, err error) {
	k, ok := pk.(*KEMPublicKey)
	if !ok || k.scheme != s {
		return nil, nil, kem.ErrTypeMismatch
	}
	return k.ek.Encapsulate(rand.Reader)
}

func (s *kemScheme) Decapsulate(sk kem.PrivateKey, ct []byte) ([]byte, error) {
	k, ok := sk.(*KEMPrivateKey)
	if !ok || k.scheme != s {
		return nil, kem.ErrTypeMismatch
	}
	if len(ct) != s.CiphertextSize() {
		return nil, kem.ErrCiphertextSize
	}
	return k.dk.Decapsulate(ct)
}

func (s *kemScheme) UnmarshalBinaryPublicKey(b []byte) (kem.PublicKey, error) {
	if len(b) != s.PublicKeySize() {
		return nil, kem.ErrPubKeySize
	}
	ek, err := mlkem.NewEncapsulationKey(s.p, b)
	if err != nil {
		return nil, kem.ErrPubKey
	}
	return &KEMPublicKey{scheme: s, ek: ek}, nil
}

func (s *kemScheme) UnmarshalBinaryPrivateKey(b []byte) (kem.PrivateKey, error) {
	if len(b) != s.PrivateKeySize() {
		return nil, kem.ErrPrivKeySize
	}
	dk, err := mlkem.NewDecapsulationKey(s.p, b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}
	return &KEMPrivateKey{scheme: s, dk: dk}, nil
}

func (s *kemScheme) UnmarshalTextPublicKey(text []byte) (kem.PublicKey, error) {
	return pem.FromPublicPEMBytes(text, s)
}

func (s *kemScheme) UnmarshalTextPrivateKey(text []byte) (kem.PrivateKey, error) {
	return pem.FromPrivatePEMBytes(text, s)
}

func (s *kemScheme) CiphertextSize() int { return s.p.CiphertextSize() }
func (s *kemScheme) SharedKeySize() int  { return mlkem.SharedKeySize }
func (s *kemScheme) PrivateKeySize() int { return s.p.DecapsulationKeySize() }
func (s *kemScheme) PublicKeySize() int  { return s.p.EncapsulationKeySize() }
func (s *kemScheme) SeedSize() int       { return mlkem.SeedSize }

// DeriveKeyPair panics if seed is not SeedSize bytes long.
func (s *kemScheme) DeriveKeyPair(seed []byte) (kem.PublicKey, kem.PrivateKey) {
	if len(seed) != mlkem.SeedSize {
		panic(kem.ErrSeedSize)
	}
	dk, err := mlkem.NewDecapsulationKeyFromSeed(s.p, seed)
	if err != nil {
		panic(err)
	}
	return s.keyPair(dk)
}
