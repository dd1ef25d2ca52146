package oqs

import (
	"crypto"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"github.com/katzenpost/hpqc/rand"
	"github.com/katzenpost/hpqc/sign"
	"github.com/katzenpost/hpqc/sign/pem"

	"github.com/KarpelesLab/pqc/mldsa"
)

var _ sign.Scheme = (*signScheme)(nil)
var _ sign.PublicKey = (*SignPublicKey)(nil)
var _ sign.PrivateKey = (*SignPrivateKey)(nil)

var signSchemes = make(map[string]*signScheme)

func init() {
	for _, p := range mldsa.ParameterSets() {
		signSchemes[normalizeName(p.Name())] = &signScheme{p: p}
	}
}

// SignScheme returns the hpqc sign.Scheme for the named ML-DSA or Dilithium
// parameter set, or nil if there is none.
func SignScheme(name string) sign.Scheme {
	s, ok := signSchemes[normalizeName(name)]
	if !ok {
		return nil
	}
	return s
}

type signScheme struct {
	p *mldsa.Parameters
}

// SignPublicKey is an ML-DSA public key usable with hpqc.
type SignPublicKey struct {
	scheme *signScheme
	pk     *mldsa.PublicKey
}

func (k *SignPublicKey) Scheme() sign.Scheme { return k.scheme }

func (k *SignPublicKey) MarshalBinary() ([]byte, error) {
	return k.pk.Bytes(), nil
}

func (k *SignPublicKey) MarshalText() ([]byte, error) {
	return pem.ToPublicPEMBytes(k), nil
}

func (k *SignPublicKey) Equal(other crypto.PublicKey) bool {
	o, ok := other.(*SignPublicKey)
	if !ok || o.scheme != k.scheme {
		return false
	}
	return subtle.ConstantTimeCompare(o.pk.Bytes(), k.pk.Bytes()) == 1
}

// PublicKey returns the underlying key.
func (k *SignPublicKey) PublicKey() *mldsa.PublicKey { return k.pk }

// SignPrivateKey is an ML-DSA private key usable with hpqc. It signs as a
// crypto.Signer, taking the context from *mldsa.SignerOpts.
type SignPrivateKey struct {
	scheme *signScheme
	sk     *mldsa.PrivateKey
}

func (k *SignPrivateKey) Scheme() sign.Scheme { return k.scheme }

func (k *SignPrivateKey) Public() crypto.PublicKey {
	return &SignPublicKey{scheme: k.scheme, pk: k.sk.PublicKey()}
}

func (k *SignPrivateKey) Sign(r io.Reader, message []byte, opts crypto.SignerOpts) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	return mapSignError(k.sk.Sign(r, message, opts))
}

func (k *SignPrivateKey) MarshalBinary() ([]byte, error) {
	return k.sk.Bytes(), nil
}

// UnmarshalBinary replaces the key with the decoding of b. The receiver
// must already be bound to a scheme.
func (k *SignPrivateKey) UnmarshalBinary(b []byte) error {
	if k.scheme == nil {
		return sign.ErrTypeMismatch
	}
	if len(b) != k.scheme.PrivateKeySize() {
		return sign.ErrPrivKeySize
	}
	sk, err := mldsa.NewPrivateKey(k.scheme.p, b)
	if err != nil {
		return err
	}
	k.sk = sk
	return nil
}

func (k *SignPrivateKey) Equal(other crypto.PrivateKey) bool {
	o, ok := other.(*SignPrivateKey)
	if !ok || o.scheme != k.scheme {
		return false
	}
	return k.sk.Equal(o.sk)
}

// PrivateKey returns the underlying key.
func (k *SignPrivateKey) PrivateKey() *mldsa.PrivateKey { return k.sk }

func (s *signScheme) Name() string { return s.p.Name() }

func (s *signScheme) keyPair(sk *mldsa.PrivateKey) (*SignPublicKey, *SignPrivateKey) {
	return &SignPublicKey{scheme: s, pk: sk.PublicKey()}, &SignPrivateKey{scheme: s, sk: sk}
}

func (s *signScheme) GenerateKey() (sign.PublicKey, sign.PrivateKey, error) {
	sk, err := mldsa.GenerateKey(s.p, rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	pk, priv := s.keyPair(sk)
	return pk, priv, nil
}

// Sign panics on failure, including a context on a scheme without context
// support, as the hpqc interface has no error return.
func (s *signScheme) Sign(sk sign.PrivateKey, message []byte, opts *sign.SignatureOpts) []byte {
	k, ok := sk.(*SignPrivateKey)
	if !ok || k.scheme != s {
		panic(sign.ErrTypeMismatch)
	}
	var context []byte
	if opts != nil && opts.Context != "" {
		if !s.SupportsContext() {
			panic(sign.ErrContextNotSupported)
		}
		context = []byte(opts.Context)
	}
	sig, err := k.sk.SignWithContext(rand.Reader, message, context)
	if err != nil {
		panic(err)
	}
	return sig
}

func (s *signScheme) Verify(pk sign.PublicKey, message []byte, signature []byte, opts *sign.SignatureOpts) bool {
	k, ok := pk.(*SignPublicKey)
	if !ok || k.scheme != s {
		panic(sign.ErrTypeMismatch)
	}
	var context []byte
	if opts != nil && opts.Context != "" {
		if !s.SupportsContext() {
			return false
		}
		context = []byte(opts.Context)
	}
	return k.pk.Verify(signature, message, context)
}

// DeriveKey panics if seed is not SeedSize bytes long.
func (s *signScheme) DeriveKey(seed []byte) (sign.PublicKey, sign.PrivateKey) {
	if len(seed) != mldsa.SeedSize {
		panic(sign.ErrSeedSize)
	}
	sk, err := mldsa.NewKey(s.p, seed)
	if err != nil {
		panic(err)
	}
	return s.keyPair(sk)
}

func (s *signScheme) UnmarshalBinaryPublicKey(b []byte) (sign.PublicKey, error) {
	if len(b) != s.PublicKeySize() {
		return nil, sign.ErrPubKeySize
	}
	pk, err := mldsa.NewPublicKey(s.p, b)
	if err != nil {
		return nil, err
	}
	return &SignPublicKey{scheme: s, pk: pk}, nil
}

func (s *signScheme) UnmarshalBinaryPrivateKey(b []byte) (sign.PrivateKey, error) {
	k := &SignPrivateKey{scheme: s}
	if err := k.UnmarshalBinary(b); err != nil {
		if errors.Is(err, sign.ErrPrivKeySize) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}
	return k, nil
}

func (s *signScheme) PublicKeySize() int    { return s.p.PublicKeySize() }
func (s *signScheme) PrivateKeySize() int   { return s.p.PrivateKeySize() }
func (s *signScheme) SignatureSize() int    { return s.p.SignatureSize() }
func (s *signScheme) SeedSize() int         { return mldsa.SeedSize }
func (s *signScheme) SupportsContext() bool { return s.p.SupportsContext() }
